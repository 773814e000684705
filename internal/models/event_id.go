package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NormalizeEventID produces a stable event identifier for a matchup. Feed
// event ids are kept when they are plain strings or integers; float-shaped
// ids (e.g. "2023020123.0") are unstable across exports and are reduced to
// their integer form. When no usable id is supplied the identifier falls
// back to HOME-AWAY-YYYY-MM-DD.
func NormalizeEventID(rawID, homeAbbr, awayAbbr, dateStr string, startTime time.Time) string {
	raw := strings.TrimSpace(rawID)
	if raw != "" {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			if f == float64(int64(f)) {
				return strconv.FormatInt(int64(f), 10)
			}
			// Non-integral numeric ids drift between feed exports.
			raw = ""
		} else {
			return raw
		}
	}

	datePart := dateStr
	if len(datePart) > 10 {
		datePart = datePart[:10]
	}
	if datePart == "" && !startTime.IsZero() {
		datePart = startTime.Format("2006-01-02")
	}

	if homeAbbr != "" && awayAbbr != "" && datePart != "" {
		return fmt.Sprintf("%s-%s-%s", homeAbbr, awayAbbr, datePart)
	}
	return raw
}
