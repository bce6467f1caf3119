package pipeline

// countryNames maps the ISO 3166 alpha-3 codes found in the datatable to
// display names. Codes not listed here are kept as they are.
var countryNames = map[string]string{
	"AUS": "Australia",
	"BEL": "Belgium",
	"BHS": "Bahamas",
	"BMU": "Bermuda",
	"BRA": "Brazil",
	"CAN": "Canada",
	"CHE": "Switzerland",
	"CHL": "Chile",
	"CYM": "Cayman Islands",
	"DEU": "Germany",
	"DNK": "Denmark",
	"ESP": "Spain",
	"FIN": "Finland",
	"FRA": "France",
	"GBR": "United Kingdom",
	"HKG": "Hong Kong",
	"IDN": "Indonesia",
	"IND": "India",
	"IRL": "Ireland",
	"ISR": "Israel",
	"ITA": "Italy",
	"JPN": "Japan",
	"KOR": "South Korea",
	"LBR": "Liberia",
	"PAN": "Panama",
	"USA": "United States",
	"VGB": "British Virgin Islands",
}

// CountryName returns the display name for code, or code itself when unknown.
func CountryName(code string) string {
	if name, ok := countryNames[code]; ok {
		return name
	}
	return code
}

// CountryCount is the number of mapped codes.
func CountryCount() int {
	return len(countryNames)
}
