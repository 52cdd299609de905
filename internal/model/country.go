package model

import "strings"

// countryCodes maps lowercased country names, and the few common
// non-ISO abbreviations, to ISO 3166-1 alpha-2 codes
var countryCodes = map[string]string{
	"netherlands":                 "NL",
	"the netherlands":             "NL",
	"kingdom of the netherlands":  "NL",
	"holland":                     "NL",
	"germany":                     "DE",
	"federal republic of germany": "DE",
	"switzerland":                 "CH",
	"swiss":                       "CH",
	"poland":                      "PL",
	"france":                      "FR",
	"spain":                       "ES",
	"italy":                       "IT",
	"belgium":                     "BE",
	"united kingdom":              "GB",
	"great britain":               "GB",
	"england":                     "GB",
	"scotland":                    "GB",
	"wales":                       "GB",
	"uk":                          "GB",
	"united states":               "US",
	"united states of america":    "US",
	"usa":                         "US",
	"canada":                      "CA",
	"china":                       "CN",
	"japan":                       "JP",
	"sweden":                      "SE",
	"denmark":                     "DK",
	"norway":                      "NO",
	"finland":                     "FI",
	"austria":                     "AT",
	"australia":                   "AU",
	"mexico":                      "MX",
	"brazil":                      "BR",
	"south korea":                 "KR",
	"czech republic":              "CZ",
	"czechia":                     "CZ",
	"ireland":                     "IE",
	"portugal":                    "PT",
	"united arab emirates":        "AE",
	"uae":                         "AE",
	"russia":                      "RU",
	"india":                       "IN",
	"turkey":                      "TR",
	"singapore":                   "SG",
	"malaysia":                    "MY",
	"taiwan":                      "TW",
}

// knownCodes is the set of codes countryCodes resolves to
var knownCodes = func() map[string]bool {
	codes := make(map[string]bool, len(countryCodes))
	for _, code := range countryCodes {
		codes[code] = true
	}
	return codes
}()

// NormalizeCountry maps a country name or code to an ISO 3166-1 alpha-2 code.
// Two-letter input must be a known code; unknown names and codes return nil.
func NormalizeCountry(value string) *string {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}
	if code, ok := countryCodes[strings.ToLower(v)]; ok {
		return &code
	}
	if len(v) == 2 {
		code := strings.ToUpper(v)
		if knownCodes[code] {
			return &code
		}
	}
	return nil
}
