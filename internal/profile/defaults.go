package profile

// locationCuisineDefaults maps a country to the cuisines a brand-new user is
// most likely to enjoy, used when the conversation yields no explicit dietary
// preferences.
var locationCuisineDefaults = map[string][]string{
	// Europe
	"Italy":          {"Mediterranean", "Italian"},
	"Spain":          {"Mediterranean", "Spanish"},
	"Greece":         {"Mediterranean", "Greek"},
	"France":         {"French", "Mediterranean"},
	"Germany":        {"German", "European"},
	"United Kingdom": {"British", "European"},
	"Poland":         {"Polish", "Eastern European"},
	"Ukraine":        {"Ukrainian", "Eastern European"},

	// Asia
	"Japan":       {"Japanese", "Asian"},
	"China":       {"Chinese", "Asian"},
	"South Korea": {"Korean", "Asian"},
	"Thailand":    {"Thai", "Asian"},
	"Vietnam":     {"Vietnamese", "Asian"},
	"India":       {"Indian", "South Asian"},

	// Americas
	"United States": {"American", "Diverse"},
	"Mexico":        {"Mexican", "Latin American"},
	"Brazil":        {"Brazilian", "Latin American"},
	"Argentina":     {"Argentine", "Latin American"},
	"Canada":        {"North American", "Diverse"},

	// Middle East & Africa
	"Turkey":  {"Turkish", "Mediterranean"},
	"Israel":  {"Israeli", "Mediterranean", "Middle Eastern"},
	"Morocco": {"Moroccan", "North African"},
	"Egypt":   {"Egyptian", "Middle Eastern"},
}

// DefaultCuisines returns default cuisine preferences for a country. Unknown
// countries map to a single generic tag.
func DefaultCuisines(country string) []string {
	if cuisines, ok := locationCuisineDefaults[country]; ok {
		return append([]string(nil), cuisines...)
	}
	return []string{"International"}
}
