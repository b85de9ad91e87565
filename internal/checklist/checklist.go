// Package checklist imports field checklists exported as CSV into the
// datastore. Every species name funnels through the resolver so a checklist
// written with scientific names or AI-style parenthetical names lands under
// the same dex keys as observations recorded live.
package checklist

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tphakala/birddex/internal/datastore"
	"github.com/tphakala/birddex/internal/dex"
	"github.com/tphakala/birddex/internal/errors"
	"github.com/tphakala/birddex/internal/taxonomy"
)

// Row is one parsed checklist line before canonicalization.
type Row struct {
	SpeciesName string
	Count       int
	Certainty   dex.Certainty
	Notes       string
}

// Options describe the outing a checklist belongs to.
type Options struct {
	UserID       string
	StartTime    time.Time
	EndTime      time.Time
	LocationName string
	Notes        string
	// Confirmed marks every imported observation confirmed instead of
	// pending, for checklists the birder already vetted on paper.
	Confirmed bool
}

// Parse reads checklist rows from CSV data. Each row is
// (speciesName, count, certainty, notes); count defaults to 1, certainty to
// pending, and the trailing columns may be missing. Rows starting with '#'
// are comments.
func Parse(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1 // rows carry 1 to 4 columns
	reader.TrimLeadingSpace = true

	var rows []Row
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.New(err).
				Component("checklist").
				Category(errors.CategoryFileParsing).
				Context("line", line).
				Build()
		}

		row := Row{
			SpeciesName: strings.TrimSpace(record[0]),
			Count:       1,
			Certainty:   dex.CertaintyPending,
		}
		if row.SpeciesName == "" {
			return nil, errors.Newf("checklist row %d has no species name", line).
				Component("checklist").
				Category(errors.CategoryFileParsing).
				Build()
		}
		if len(record) > 1 && strings.TrimSpace(record[1]) != "" {
			count, err := strconv.Atoi(strings.TrimSpace(record[1]))
			if err != nil || count < 1 {
				return nil, errors.Newf("checklist row %d has invalid count %q", line, record[1]).
					Component("checklist").
					Category(errors.CategoryFileParsing).
					Build()
			}
			row.Count = count
		}
		if len(record) > 2 && strings.TrimSpace(record[2]) != "" {
			certainty := dex.Certainty(strings.TrimSpace(record[2]))
			if !certainty.Valid() {
				return nil, errors.Newf("checklist row %d has invalid certainty %q", line, record[2]).
					Component("checklist").
					Category(errors.CategoryFileParsing).
					Build()
			}
			row.Certainty = certainty
		}
		if len(record) > 3 {
			row.Notes = strings.TrimSpace(record[3])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ParseFile reads checklist rows from a CSV file on disk.
func ParseFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(err).
			Component("checklist").
			Category(errors.CategoryFileIO).
			FileContext(path, -1).
			Build()
	}
	defer f.Close()
	return Parse(f)
}

// Import stores a checklist as a new outing plus its observations and
// returns them. Species names are canonicalized through the resolver; names
// the catalog does not know survive verbatim, per the resolver's contract.
// Import does not touch the dex itself: confirmed rows reach the dex when
// the caller rebuilds it or confirms through the API.
func Import(ds datastore.Interface, resolver *taxonomy.Resolver, rows []Row, opts Options) (dex.Outing, []dex.Observation, error) {
	if opts.UserID == "" {
		opts.UserID = "default"
	}
	if opts.StartTime.IsZero() {
		return dex.Outing{}, nil, errors.Newf("checklist import needs a start time").
			Component("checklist").
			Category(errors.CategoryImport).
			Build()
	}
	if opts.EndTime.IsZero() {
		opts.EndTime = opts.StartTime
	}
	if opts.EndTime.Before(opts.StartTime) {
		return dex.Outing{}, nil, errors.Newf("checklist end time precedes start time").
			Component("checklist").
			Category(errors.CategoryImport).
			Build()
	}

	outing := dex.Outing{
		UserID:       opts.UserID,
		StartTime:    opts.StartTime.UTC(),
		EndTime:      opts.EndTime.UTC(),
		LocationName: opts.LocationName,
		Notes:        opts.Notes,
	}
	if err := ds.SaveOuting(&outing); err != nil {
		return dex.Outing{}, nil, errors.New(err).
			Component("checklist").
			Category(errors.CategoryImport).
			Build()
	}

	observations := make([]dex.Observation, 0, len(rows))
	for _, row := range rows {
		certainty := row.Certainty
		if opts.Confirmed {
			certainty = dex.CertaintyConfirmed
		}
		observations = append(observations, dex.Observation{
			OutingID:    outing.ID,
			SpeciesName: resolver.NormalizeSpeciesName(row.SpeciesName),
			Count:       row.Count,
			Certainty:   certainty,
			Notes:       row.Notes,
		})
	}
	if err := ds.SaveObservations(observations); err != nil {
		return dex.Outing{}, nil, errors.New(err).
			Component("checklist").
			Category(errors.CategoryImport).
			Build()
	}
	return outing, observations, nil
}

// ImportFile parses a checklist file and imports it in one call.
func ImportFile(ds datastore.Interface, resolver *taxonomy.Resolver, path string, opts Options) (dex.Outing, []dex.Observation, error) {
	rows, err := ParseFile(path)
	if err != nil {
		return dex.Outing{}, nil, err
	}
	return Import(ds, resolver, rows, opts)
}
