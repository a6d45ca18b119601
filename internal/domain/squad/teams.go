package squad

// fullTeamNames maps Fantrax roster abbreviations to the full names the
// lineup provider uses.
var fullTeamNames = map[string]string{
	"ARS": "Arsenal",
	"AVL": "Aston Villa",
	"BOU": "Bournemouth",
	"BRF": "Brentford",
	"BHA": "Brighton",
	"CHE": "Chelsea",
	"CRY": "Crystal Palace",
	"EVE": "Everton",
	"FUL": "Fulham",
	"IPS": "Ipswich Town",
	"LEE": "Leeds United",
	"LEI": "Leicester City",
	"LIV": "Liverpool",
	"MCI": "Manchester City",
	"MUN": "Manchester United",
	"NEW": "Newcastle United",
	"NOT": "Nottingham Forest",
	"SOU": "Southampton",
	"SUN": "Sunderland",
	"TOT": "Tottenham",
	"WHU": "West Ham United",
	"WOL": "Wolverhampton Wanderers",
}

// teamNameVariants folds the aliases different data sources use for the
// same club, normalized form to normalized canonical form.
var teamNameVariants = map[string]string{
	"brighton & hove albion":   "brighton",
	"brighton and hove albion": "brighton",
	"tottenham hotspur":        "tottenham",
	"spurs":                    "tottenham",
	"man united":               "manchester united",
	"man city":                 "manchester city",
	"newcastle":                "newcastle united",
	"west ham":                 "west ham united",
	"wolves":                   "wolverhampton wanderers",
	"nottm forest":             "nottingham forest",
}

// FullTeamName expands a roster abbreviation; unknown abbreviations come
// back unchanged.
func FullTeamName(abbreviation string) string {
	if full, ok := fullTeamNames[abbreviation]; ok {
		return full
	}
	return abbreviation
}

// CanonicalTeamName normalizes a team name and folds known aliases so
// roster and provider names compare equal.
func CanonicalTeamName(name string) string {
	normalized := NormalizeName(name)
	if canonical, ok := teamNameVariants[normalized]; ok {
		return canonical
	}
	return normalized
}
