package player

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var suffixes = map[string]string{
	"jr":  "Jr.",
	"jr.": "Jr.",
	"sr":  "Sr.",
	"sr.": "Sr.",
	"ii":  "II",
	"iii": "III",
	"iv":  "IV",
}

// aliases maps spellings used by other sources onto the NHL roster name.
var aliases = map[string]string{
	"Alexander Ovechkin": "Alex Ovechkin",
	"Mitchell Marner":    "Mitch Marner",
	"Tim Stuetzle":       "Tim Stutzle",
	"Matty Beniers":      "Matthew Beniers",
	"Nicholas Suzuki":    "Nick Suzuki",
	"Joshua Morrissey":   "Josh Morrissey",
	"Mike Matheson":      "Michael Matheson",
	"Tony DeAngelo":      "Anthony DeAngelo",
	"Sammy Blais":        "Samuel Blais",
	"JT Miller":          "J.T. Miller",
	"TJ Oshie":           "T.J. Oshie",
}

// NormalizeName strips diacritics, collapses whitespace, standardizes
// generational suffixes and resolves known alias spellings.
func NormalizeName(raw string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), raw)
	if err != nil {
		folded = raw
	}

	tokens := strings.Fields(folded)
	for i, tok := range tokens {
		if i > 0 {
			if s, ok := suffixes[strings.ToLower(tok)]; ok {
				tokens[i] = s
			}
		}
	}
	name := strings.Join(tokens, " ")
	if alias, ok := aliases[name]; ok {
		return alias
	}
	return name
}

// SplitName splits at the first space. A single token is both first and last.
func SplitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if i := strings.IndexByte(full, ' '); i > 0 {
		return full[:i], strings.TrimSpace(full[i+1:])
	}
	return full, full
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
