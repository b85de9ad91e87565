package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRecords is a small fixed catalog exercising prefix, substring and
// overlapping-name cases.
var testRecords = []Record{
	{CommonName: "Bald Eagle", ScientificName: "Haliaeetus leucocephalus", ReferenceCode: "baleag", ArticleTitle: "Bald eagle"},
	{CommonName: "Golden Eagle", ScientificName: "Aquila chrysaetos", ReferenceCode: "goleag", ArticleTitle: "Golden eagle"},
	{CommonName: "Piebald Starling", ScientificName: "Gracupica contra", ReferenceCode: "piesta"},
	{CommonName: "Common Kingfisher", ScientificName: "Alcedo atthis", ReferenceCode: "comkin1", ArticleTitle: "Common kingfisher"},
	{CommonName: "Belted Kingfisher", ScientificName: "Megaceryle alcyon", ReferenceCode: "belkin1", ArticleTitle: "Belted kingfisher"},
	{CommonName: "Blue Jay", ScientificName: "Cyanocitta cristata", ReferenceCode: "blujay", ArticleTitle: "Blue jay"},
	{CommonName: "Halcyon Sparrow", ScientificName: "Passer imaginarius"},
}

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	return New(testRecords)
}

func TestLookupCaseInsensitive(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)

	rec, ok := c.LookupCommon("bald eagle")
	require.True(t, ok)
	assert.Equal(t, "Bald Eagle", rec.CommonName)

	rec, ok = c.LookupCommon("  BALD EAGLE  ")
	require.True(t, ok)
	assert.Equal(t, "Haliaeetus leucocephalus", rec.ScientificName)

	rec, ok = c.LookupScientific("haliaeetus leucocephalus")
	require.True(t, ok)
	assert.Equal(t, "Bald Eagle", rec.CommonName)

	_, ok = c.LookupCommon("Dodo")
	assert.False(t, ok)
}

func TestSearchEmptyQuery(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)

	assert.Empty(t, c.Search("", 8))
	assert.Empty(t, c.Search("   ", 8))
	assert.Empty(t, c.Search("\t\n", 8))
}

func TestSearchPrefixOutranksSubstring(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)

	// "bald" is a prefix of Bald Eagle but only a substring of
	// Piebald Starling; the prefix match must surface first.
	results := c.Search("bald", 5)
	require.NotEmpty(t, results)
	assert.Equal(t, "Bald Eagle", results[0].Common)
	assert.Equal(t, "Haliaeetus leucocephalus", results[0].Scientific)

	require.Len(t, results, 2)
	assert.Equal(t, "Piebald Starling", results[1].Common)
}

func TestSearchScientificPrefixRanksSecondTier(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)

	// "hal" matches Halcyon Sparrow by common-name prefix (rank 0) and
	// Bald Eagle by scientific-name prefix (rank 1).
	results := c.Search("hal", 8)
	require.Len(t, results, 2)
	assert.Equal(t, "Halcyon Sparrow", results[0].Common)
	assert.Equal(t, "Bald Eagle", results[1].Common)
}

func TestSearchAlphabeticalWithinRank(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)

	results := c.Search("kingfisher", 8)
	require.Len(t, results, 2)
	// Both are substring matches; order must be alphabetical by common name.
	assert.Equal(t, "Belted Kingfisher", results[0].Common)
	assert.Equal(t, "Common Kingfisher", results[1].Common)
}

func TestSearchWhitespaceInsensitive(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)

	assert.Equal(t, c.Search("bald", 8), c.Search(" Bald ", 8))
}

func TestSearchLimitClamping(t *testing.T) {
	t.Parallel()

	// Build a catalog with more entries than any limit under test.
	var records []Record
	for i := 0; i < 40; i++ {
		records = append(records, Record{
			CommonName:     "Warbler " + string(rune('A'+i)),
			ScientificName: "Warblerus " + string(rune('a'+i)),
		})
	}
	c := New(records)

	assert.Len(t, c.Search("warbler", 0), DefaultSearchLimit)
	assert.Len(t, c.Search("warbler", -3), DefaultSearchLimit)
	assert.Len(t, c.Search("warbler", 1), 1)
	assert.Len(t, c.Search("warbler", 100), MaxSearchLimit)
}

func TestSearchExcludesNonMatches(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)

	assert.Empty(t, c.Search("zzzz", 8))
}

func TestAllReturnsCopy(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)

	all := c.All()
	require.Len(t, all, len(testRecords))
	all[0].CommonName = "mutated"

	rec, ok := c.LookupScientific("Haliaeetus leucocephalus")
	require.True(t, ok)
	assert.Equal(t, "Bald Eagle", rec.CommonName)
}
