// Package slug derives URL-friendly identifiers from display names.
package slug

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// diacritics maps common accented Latin characters to ASCII equivalents so
// that "Véhicules" and "Vehicules" slug to the same value.
var diacritics = strings.NewReplacer(
	"à", "a", "á", "a", "â", "a", "ä", "a", "ã", "a", "å", "a",
	"ç", "c", "č", "c",
	"è", "e", "é", "e", "ê", "e", "ë", "e",
	"ì", "i", "í", "i", "î", "i", "ï", "i", "ı", "i",
	"ñ", "n",
	"ò", "o", "ó", "o", "ô", "o", "ö", "o", "õ", "o", "ø", "o",
	"š", "s", "ş", "s", "ß", "ss",
	"ù", "u", "ú", "u", "û", "u", "ü", "u",
	"ý", "y",
	"ž", "z", "ğ", "g",
)

// Generate creates a URL-friendly slug from the given name.
//
// Examples:
//   - "Hello   World!" → "hello-world"
//   - "Vélos & Scooters" → "velos-scooters"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = diacritics.Replace(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
