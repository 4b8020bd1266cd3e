package services

import "strings"

// nicheCategory maps a category name to the bio keywords that signal it
type nicheCategory struct {
	Name     string
	Keywords []string
}

// nicheTaxonomy is checked in order so inferred tag lists are deterministic
var nicheTaxonomy = []nicheCategory{
	{"beauty", []string{"beauty", "skincare", "makeup", "cosmetic"}},
	{"fitness", []string{"fitness", "workout", "gym", "training", "exercise"}},
	{"food", []string{"food", "recipe", "cook", "chef", "baking"}},
	{"fashion", []string{"fashion", "style", "outfit", "clothing"}},
	{"travel", []string{"travel", "adventure", "explore", "wanderlust"}},
	{"health", []string{"health", "wellness", "nutrition", "supplement", "pelvic", "postpartum", "menopause"}},
	{"lifestyle", []string{"lifestyle", "daily", "life", "mom", "mother"}},
	{"home", []string{"home", "decor", "interior", "diy", "garden"}},
	{"parenting", []string{"parent", "mom", "dad", "baby", "kids"}},
	{"education", []string{"education", "teach", "learn", "book"}},
	{"intimate apparel", []string{"underwear", "leakproof", "period", "incontinence", "intimate"}},
}

// InferNiches returns every taxonomy category whose keywords appear in
// the bio. A bio matching nothing gets the fallback tag.
func InferNiches(bio, fallback string) []string {
	bioLower := strings.ToLower(bio)

	var found []string
	for _, cat := range nicheTaxonomy {
		for _, kw := range cat.Keywords {
			if strings.Contains(bioLower, kw) {
				found = append(found, cat.Name)
				break
			}
		}
	}

	if len(found) == 0 {
		return []string{fallback}
	}
	return found
}

// usStates are the two-letter postal abbreviations, plus DC
var usStates = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true, "CO": true,
	"CT": true, "DE": true, "FL": true, "GA": true, "HI": true, "ID": true,
	"IL": true, "IN": true, "IA": true, "KS": true, "KY": true, "LA": true,
	"ME": true, "MD": true, "MA": true, "MI": true, "MN": true, "MS": true,
	"MO": true, "MT": true, "NE": true, "NV": true, "NH": true, "NJ": true,
	"NM": true, "NY": true, "NC": true, "ND": true, "OH": true, "OK": true,
	"OR": true, "PA": true, "RI": true, "SC": true, "SD": true, "TN": true,
	"TX": true, "UT": true, "VT": true, "VA": true, "WA": true, "WV": true,
	"WI": true, "WY": true, "DC": true,
}

// countryEntry pairs a location keyword with its country code.
// Checked in order; the first hit wins.
type countryEntry struct {
	Keyword string
	Code    string
}

var countryKeywords = []countryEntry{
	{"UK", "UK"}, {"UNITED KINGDOM", "UK"}, {"ENGLAND", "UK"}, {"LONDON", "UK"},
	{"SCOTLAND", "UK"}, {"WALES", "UK"},
	{"CANADA", "CA"}, {"TORONTO", "CA"}, {"VANCOUVER", "CA"}, {"MONTREAL", "CA"},
	{"AUSTRALIA", "AU"}, {"SYDNEY", "AU"}, {"MELBOURNE", "AU"},
	{"GERMANY", "DE"}, {"BERLIN", "DE"}, {"MUNICH", "DE"},
	{"FRANCE", "FR"}, {"PARIS", "FR"},
}

// InferCountry maps free-form location text like "Austin, TX" or
// "London, UK" to an ISO-ish country code. Returns "" when nothing matches.
func InferCountry(location string) string {
	if location == "" {
		return ""
	}

	locationUpper := strings.ToUpper(location)

	for _, part := range strings.Split(locationUpper, ",") {
		if usStates[strings.TrimSpace(part)] {
			return "US"
		}
	}
	if strings.Contains(locationUpper, "USA") || strings.Contains(locationUpper, "UNITED STATES") {
		return "US"
	}

	for _, entry := range countryKeywords {
		if strings.Contains(locationUpper, entry.Keyword) {
			return entry.Code
		}
	}

	return ""
}
