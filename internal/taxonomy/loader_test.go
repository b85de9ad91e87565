package taxonomy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/birddex/internal/errors"
)

func TestParseRecords(t *testing.T) {
	t.Parallel()

	data := `# comment line
Bald Eagle,Haliaeetus leucocephalus,baleag,Bald eagle
Wild Turkey,Meleagris gallopavo,wiltur
Mystery Bird,Mysteria incognita
`
	records, err := ParseRecords(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "Bald Eagle", records[0].CommonName)
	assert.Equal(t, "baleag", records[0].ReferenceCode)
	assert.Equal(t, "Bald eagle", records[0].ArticleTitle)

	// Missing 4th column is tolerated for older datasets.
	assert.Equal(t, "wiltur", records[1].ReferenceCode)
	assert.Empty(t, records[1].ArticleTitle)

	// Two-column rows are the minimum.
	assert.Empty(t, records[2].ReferenceCode)
	assert.Empty(t, records[2].ArticleTitle)
}

func TestParseRecordsTooFewColumns(t *testing.T) {
	t.Parallel()

	_, err := ParseRecords(strings.NewReader("OnlyOneColumn\n"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileParsing))
}

func TestLoadEmbedded(t *testing.T) {
	t.Parallel()

	catalog, err := LoadEmbedded()
	require.NoError(t, err)
	assert.Greater(t, catalog.Len(), 50)

	rec, ok := catalog.LookupCommon("Bald Eagle")
	require.True(t, ok)
	assert.Equal(t, "Haliaeetus leucocephalus", rec.ScientificName)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "taxonomy.csv")
	content := "Blue Jay,Cyanocitta cristata,blujay,Blue jay\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	catalog, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, catalog.Len())
}

func TestLoadFileMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileIO))
}

func TestLoadFallsBackToEmbedded(t *testing.T) {
	t.Parallel()

	catalog, err := Load("")
	require.NoError(t, err)
	assert.Greater(t, catalog.Len(), 0)
}
