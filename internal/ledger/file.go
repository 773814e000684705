package ledger

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-tracker/internal/metrics"
	"github.com/yourusername/value-tracker/internal/models"
)

const (
	lockRetryInterval = 50 * time.Millisecond
	lockStaleAfter    = 10 * time.Minute
)

// FileStore persists the ledger as a headered CSV file. Writes go through a
// temp file in the same directory followed by a rename, so the ledger on disk
// is always either the previous complete state or the new complete state.
// Cross-process exclusion uses a sidecar lock file held for the duration of
// each read-modify-write pass.
type FileStore struct {
	path   string
	mu     sync.Mutex
	log    *logrus.Logger
	closed bool
}

// NewFileStore creates a file-backed store at path, creating the parent
// directory if needed.
func NewFileStore(path string, log *logrus.Logger) (*FileStore, error) {
	if log == nil {
		log = logrus.New()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}
	return &FileStore{path: path, log: log}, nil
}

// Load reads every parseable record from the ledger file. A missing file is
// an empty ledger. Malformed rows are logged and skipped; one corrupt line
// must not take the audit trail down with it.
func (s *FileStore) Load(ctx context.Context) ([]models.BetRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, models.ErrStoreClosed
	}
	return s.loadLocked(ctx)
}

func (s *FileStore) loadLocked(ctx context.Context) ([]models.BetRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	// Read record by record: a CSV-syntax error on one line must skip that
	// line, not abort the whole ledger read.
	var records []models.BetRecord
	for line := 1; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			metrics.LedgerMalformedRowsTotal.Inc()
			s.log.WithError(err).WithFields(logrus.Fields{
				"line": line,
				"path": s.path,
			}).Warn("Skipping unparseable ledger line")
			continue
		}
		if line == 1 {
			continue // header
		}
		record, err := decodeRow(row)
		if err != nil {
			metrics.LedgerMalformedRowsTotal.Inc()
			s.log.WithError(err).WithFields(logrus.Fields{
				"line": line,
				"path": s.path,
			}).Warn("Skipping malformed ledger row")
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// Replace writes the complete new ledger state. The temp file is synced
// before the rename; on any failure the previous file is left untouched.
func (s *FileStore) Replace(ctx context.Context, records []models.BetRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return models.ErrStoreClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp ledger file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	if err := w.Write(betFields); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write ledger header: %w", err)
	}
	for _, record := range records {
		if err := w.Write(encodeRow(record)); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write ledger row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush ledger rows: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp ledger file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp ledger file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace ledger file: %w", err)
	}
	return nil
}

// Ping verifies the ledger directory is accessible.
func (s *FileStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := os.Stat(filepath.Dir(s.path))
	return err
}

// Close marks the store closed.
func (s *FileStore) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Acquire takes the cross-process lock, blocking until it is held or the
// context expires. A lock file older than lockStaleAfter is treated as left
// over from a crashed pass and broken.
func (s *FileStore) Acquire(ctx context.Context) (release func(), err error) {
	lockPath := s.path + ".lock"
	for {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintf(f, "%d %s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
			f.Close()
			return func() { os.Remove(lockPath) }, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to acquire ledger lock: %w", err)
		}

		if info, statErr := os.Stat(lockPath); statErr == nil && time.Since(info.ModTime()) > lockStaleAfter {
			s.log.WithField("path", lockPath).Warn("Breaking stale ledger lock")
			os.Remove(lockPath)
			continue
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("timed out waiting for ledger lock: %w", ctx.Err())
		case <-time.After(lockRetryInterval):
		}
	}
}
