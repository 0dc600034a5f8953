// Package similarity provides the lexical and vector similarity primitives
// used by the topic engine.
package similarity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD and removes combining marks, so "atención"
// and "atencion" tokenize identically.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// stopwords are tokens that carry no topical signal: Spanish/English articles
// and prepositions plus generic review-business nouns that appear in almost
// every topic name.
var stopwords = map[string]bool{
	// Articles
	"el": true, "la": true, "los": true, "las": true, "lo": true,
	"un": true, "una": true, "unos": true, "unas": true,
	"the": true, "an": true,
	// Prepositions and connectives
	"de": true, "del": true, "al": true, "en": true, "con": true,
	"por": true, "para": true, "sin": true, "sobre": true, "entre": true,
	"que": true, "su": true, "sus": true, "mas": true, "muy": true,
	"of": true, "in": true, "on": true, "at": true, "for": true,
	"with": true, "and": true, "or": true, "to": true, "from": true,
	// Copulas (diacritics already stripped, so "está" arrives as "esta")
	"es": true, "son": true, "esta": true, "estan": true,
	"era": true, "eran": true, "fue": true, "ser": true,
	"is": true, "are": true, "was": true,
	// Generic business nouns
	"cliente": true, "clientes": true,
	"servicio": true, "servicios": true,
	"producto": true, "productos": true,
	"tema": true, "temas": true,
}

// NormalizeTokens converts a topic name into its comparable token set:
// lowercase, NFD-decomposed with diacritic marks stripped, split on any
// non-alphanumeric run, with single-character tokens and stopwords dropped.
func NormalizeTokens(name string) map[string]bool {
	lowered := strings.ToLower(name)
	folded, _, err := transform.String(stripMarks, lowered)
	if err != nil {
		folded = lowered
	}

	words := strings.FieldsFunc(folded, func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	})

	tokens := make(map[string]bool, len(words))
	for _, w := range words {
		if len(w) <= 1 || stopwords[w] {
			continue
		}
		tokens[w] = true
	}
	return tokens
}

// Jaccard calculates |A∩B| / |A∪B| over two token sets.
// Returns 0 when either set is empty.
func Jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for t := range a {
		if b[t] {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
