package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	return NewResolver(newTestCatalog(t))
}

func TestFindBestMatchBlankInput(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t)

	_, ok := r.FindBestMatch("")
	assert.False(t, ok)
	_, ok = r.FindBestMatch("   ")
	assert.False(t, ok)
}

func TestFindBestMatchExact(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t)

	rec, ok := r.FindBestMatch("blue jay")
	require.True(t, ok)
	assert.Equal(t, "Blue Jay", rec.CommonName)

	rec, ok = r.FindBestMatch("CYANOCITTA CRISTATA")
	require.True(t, ok)
	assert.Equal(t, "Blue Jay", rec.CommonName)
}

func TestFindBestMatchParentheticalAIFormat(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t)

	rec, ok := r.FindBestMatch("Common Kingfisher (Alcedo atthis)")
	require.True(t, ok)
	assert.Equal(t, "Common Kingfisher", rec.CommonName)
	assert.Equal(t, "Alcedo atthis", rec.ScientificName)
}

func TestFindBestMatchScientificPartIsAuthoritative(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t)

	// Misspelled common portion; the parenthetical scientific name decides.
	rec, ok := r.FindBestMatch("Comon Kingfishr (Alcedo atthis)")
	require.True(t, ok)
	assert.Equal(t, "Common Kingfisher", rec.CommonName)
}

func TestFindBestMatchCommonPortionAlone(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t)

	// Unknown scientific segment, but the common portion matches exactly.
	rec, ok := r.FindBestMatch("Blue Jay (Cyanocitta wrongname)")
	require.True(t, ok)
	assert.Equal(t, "Blue Jay", rec.CommonName)
}

func TestFindBestMatchFuzzyFallback(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t)

	// "Eagle, Bald" shares both tokens of "Bald Eagle".
	rec, ok := r.FindBestMatch("Eagle, Bald")
	require.True(t, ok)
	assert.Equal(t, "Bald Eagle", rec.CommonName)

	// Sharing only one of two tokens is not a strict majority.
	_, ok = r.FindBestMatch("Eagle")
	assert.False(t, ok)
}

func TestFindBestMatchFuzzyMajorityOfCandidateTokens(t *testing.T) {
	t.Parallel()

	c := New([]Record{
		{CommonName: "Great Spotted Woodpecker", ScientificName: "Dendrocopos major"},
		{CommonName: "Lesser Spotted Woodpecker", ScientificName: "Dryobates minor"},
	})
	r := NewResolver(c)

	// 2 of 3 candidate tokens present: qualifies.
	rec, ok := r.FindBestMatch("a spotted woodpecker in the garden")
	require.True(t, ok)
	// Both candidates tie on shared tokens and ratio; alphabetical tie-break.
	assert.Equal(t, "Great Spotted Woodpecker", rec.CommonName)
}

func TestFindBestMatchGarbage(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t)

	_, ok := r.FindBestMatch("qwerty uiop 12345")
	assert.False(t, ok)
	_, ok = r.FindBestMatch("(((((")
	assert.False(t, ok)
}

func TestRoundTripAllCatalogSpecies(t *testing.T) {
	t.Parallel()

	catalog, err := LoadEmbedded()
	require.NoError(t, err)
	r := NewResolver(catalog)

	for _, rec := range catalog.All() {
		got, ok := r.FindBestMatch(rec.CommonName)
		require.True(t, ok, "no match for %q", rec.CommonName)
		assert.Equal(t, rec.CommonName, got.CommonName)

		got, ok = r.FindBestMatch(rec.ScientificName)
		require.True(t, ok, "no match for %q", rec.ScientificName)
		assert.Equal(t, rec.ScientificName, got.ScientificName)
	}
}

func TestNormalizeSpeciesName(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t)

	assert.Equal(t, "Common Kingfisher", r.NormalizeSpeciesName("Common Kingfisher (Alcedo atthis)"))
	assert.Equal(t, "Blue Jay", r.NormalizeSpeciesName("blue jay"))

	// Unknown input passes through unchanged, never errors.
	assert.Equal(t, "Martian Skylark", r.NormalizeSpeciesName("Martian Skylark"))
	assert.Equal(t, "", r.NormalizeSpeciesName(""))
}

func TestNormalizeSpeciesNameIdempotent(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t)

	inputs := []string{
		"Common Kingfisher (Alcedo atthis)",
		"bald eagle",
		"total garbage",
		"",
	}
	for _, in := range inputs {
		once := r.NormalizeSpeciesName(in)
		assert.Equal(t, once, r.NormalizeSpeciesName(once), "input %q", in)
	}
}

func TestWikiTitleAndReferenceCode(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t)

	title, ok := r.WikiTitle("bald eagle")
	require.True(t, ok)
	assert.Equal(t, "Bald eagle", title)

	code, ok := r.ReferenceCode("Haliaeetus leucocephalus")
	require.True(t, ok)
	assert.Equal(t, "baleag", code)

	// Record without an article title.
	_, ok = r.WikiTitle("Piebald Starling")
	assert.False(t, ok)

	// Record without a reference code.
	_, ok = r.ReferenceCode("Halcyon Sparrow")
	assert.False(t, ok)

	// Unknown species.
	_, ok = r.WikiTitle("Dodo")
	assert.False(t, ok)

	// No fuzzy step for auxiliary lookups.
	_, ok = r.ReferenceCode("Eagle, Bald")
	assert.False(t, ok)
}

func TestCustomFuzzyThreshold(t *testing.T) {
	t.Parallel()

	c := New([]Record{
		{CommonName: "Northern Hawk Owl", ScientificName: "Surnia ulula"},
	})

	// At a 0.3 threshold one of three tokens qualifies.
	loose := NewResolverWithThreshold(c, 0.3)
	rec, ok := loose.FindBestMatch("saw an owl today")
	require.True(t, ok)
	assert.Equal(t, "Northern Hawk Owl", rec.CommonName)

	// Out-of-range thresholds fall back to the strict-majority default.
	fallback := NewResolverWithThreshold(c, 1.5)
	_, ok = fallback.FindBestMatch("saw an owl today")
	assert.False(t, ok)
}
