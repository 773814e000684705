package feed

// StaticTeamMap resolves bookmaker participant names to league
// abbreviations from a fixed table.
type StaticTeamMap struct {
	byName map[string]string
}

// NewStaticTeamMap builds a mapper from participant name to abbreviation.
func NewStaticTeamMap(byName map[string]string) *StaticTeamMap {
	m := make(map[string]string, len(byName))
	for name, abbr := range byName {
		m[name] = abbr
	}
	return &StaticTeamMap{byName: m}
}

// Abbreviation implements TeamMapper.
func (t *StaticTeamMap) Abbreviation(participant string) (string, bool) {
	abbr, ok := t.byName[participant]
	return abbr, ok
}

// DefaultNHLTeams maps the odds feed's full team names to NHL
// abbreviations.
func DefaultNHLTeams() map[string]string {
	return map[string]string{
		"Anaheim Ducks":         "ANA",
		"Boston Bruins":         "BOS",
		"Buffalo Sabres":        "BUF",
		"Calgary Flames":        "CGY",
		"Carolina Hurricanes":   "CAR",
		"Chicago Blackhawks":    "CHI",
		"Colorado Avalanche":    "COL",
		"Columbus Blue Jackets": "CBJ",
		"Dallas Stars":          "DAL",
		"Detroit Red Wings":     "DET",
		"Edmonton Oilers":       "EDM",
		"Florida Panthers":      "FLA",
		"Los Angeles Kings":     "LAK",
		"Minnesota Wild":        "MIN",
		"Montreal Canadiens":    "MTL",
		"Nashville Predators":   "NSH",
		"New Jersey Devils":     "NJD",
		"New York Islanders":    "NYI",
		"New York Rangers":      "NYR",
		"Ottawa Senators":       "OTT",
		"Philadelphia Flyers":   "PHI",
		"Pittsburgh Penguins":   "PIT",
		"San Jose Sharks":       "SJS",
		"Seattle Kraken":        "SEA",
		"St. Louis Blues":       "STL",
		"Tampa Bay Lightning":   "TBL",
		"Toronto Maple Leafs":   "TOR",
		"Utah Hockey Club":      "UTA",
		"Vancouver Canucks":     "VAN",
		"Vegas Golden Knights":  "VGK",
		"Washington Capitals":   "WSH",
		"Winnipeg Jets":         "WPG",
	}
}
