package taxonomy

import (
	"embed"
	"encoding/csv"
	"io"
	"os"

	"github.com/tphakala/birddex/internal/errors"
)

//go:embed data/taxonomy.csv
var embeddedData embed.FS

// ParseRecords reads taxonomy records from CSV data. Each row is
// (commonName, scientificName, referenceCode, articleTitle); the reference
// code may be empty and the article title column may be missing entirely in
// older datasets. Rows starting with '#' are comments.
func ParseRecords(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1 // rows carry 2 to 4 columns
	reader.TrimLeadingSpace = true

	var records []Record
	line := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.New(err).
				Component("taxonomy").
				Category(errors.CategoryFileParsing).
				Context("line", line).
				Build()
		}
		if len(row) < 2 {
			return nil, errors.Newf("taxonomy row %d has %d columns, need at least 2", line, len(row)).
				Component("taxonomy").
				Category(errors.CategoryFileParsing).
				Build()
		}
		rec := Record{
			CommonName:     row[0],
			ScientificName: row[1],
		}
		if len(row) > 2 {
			rec.ReferenceCode = row[2]
		}
		if len(row) > 3 {
			rec.ArticleTitle = row[3]
		}
		records = append(records, rec)
	}
	return records, nil
}

// LoadFile builds a catalog from a CSV file on disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(err).
			Component("taxonomy").
			Category(errors.CategoryFileIO).
			FileContext(path, -1).
			Build()
	}
	defer f.Close()

	records, err := ParseRecords(f)
	if err != nil {
		return nil, err
	}
	return New(records), nil
}

// LoadEmbedded builds a catalog from the dataset compiled into the binary.
func LoadEmbedded() (*Catalog, error) {
	f, err := embeddedData.Open("data/taxonomy.csv")
	if err != nil {
		return nil, errors.New(err).
			Component("taxonomy").
			Category(errors.CategoryTaxonomyLoad).
			Build()
	}
	defer f.Close()

	records, err := ParseRecords(f)
	if err != nil {
		return nil, err
	}
	return New(records), nil
}

// Load builds the catalog from the configured dataset path, falling back to
// the embedded dataset when no path is given.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return LoadEmbedded()
	}
	return LoadFile(path)
}
