package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTokens_StripsDiacriticsAndStopwords(t *testing.T) {
	tokens := NormalizeTokens("La atención al cliente es lenta")

	assert.True(t, tokens["atencion"], "diacritics should be stripped")
	assert.True(t, tokens["lenta"])
	assert.False(t, tokens["la"], "articles are stopwords")
	assert.False(t, tokens["al"], "prepositions are stopwords")
	assert.False(t, tokens["cliente"], "generic business nouns are stopwords")
	assert.False(t, tokens["es"], "copulas are stopwords")
}

func TestNormalizeTokens_DropsCopulas(t *testing.T) {
	tokens := NormalizeTokens("El personal está cansado y fue grosero")

	assert.Equal(t, map[string]bool{"personal": true, "cansado": true, "grosero": true}, tokens)
}

func TestNormalizeTokens_SplitsOnNonAlphanumericRuns(t *testing.T) {
	tokens := NormalizeTokens("Wifi/internet  --  lento!!")

	assert.Equal(t, map[string]bool{"wifi": true, "internet": true, "lento": true}, tokens)
}

func TestNormalizeTokens_DropsSingleCharTokens(t *testing.T) {
	tokens := NormalizeTokens("a b c comida")

	assert.Equal(t, map[string]bool{"comida": true}, tokens)
}

func TestJaccard_EmptySetIsAlwaysZero(t *testing.T) {
	empty := map[string]bool{}
	full := map[string]bool{"wifi": true, "lento": true}

	assert.Zero(t, Jaccard(empty, full))
	assert.Zero(t, Jaccard(full, empty))
	assert.Zero(t, Jaccard(empty, empty))
}

func TestJaccard_IdenticalSets(t *testing.T) {
	a := map[string]bool{"wifi": true, "lento": true}
	b := map[string]bool{"wifi": true, "lento": true}

	assert.Equal(t, 1.0, Jaccard(a, b))
}

func TestJaccard_PartialOverlap(t *testing.T) {
	// "atención lenta" vs "mala atención": 1 shared of 3 unique tokens.
	a := NormalizeTokens("Atención lenta")
	b := NormalizeTokens("Mala atención")

	assert.InDelta(t, 1.0/3.0, Jaccard(a, b), 1e-9)
}

func TestJaccard_NoOverlap(t *testing.T) {
	a := NormalizeTokens("Atención lenta")
	b := NormalizeTokens("Wifi lento")

	assert.Zero(t, Jaccard(a, b))
}
