// Package taxonomy provides the species reference catalog and name
// resolution used to canonicalize freeform species names from AI output,
// checklist imports and user searches.
package taxonomy

import (
	"sort"
	"strings"
)

// Record holds the reference data for a single species. Records are
// immutable once loaded into a Catalog.
type Record struct {
	CommonName     string `json:"common_name"`
	ScientificName string `json:"scientific_name"`
	ReferenceCode  string `json:"reference_code,omitempty"` // external reference code, e.g. eBird species code
	ArticleTitle   string `json:"article_title,omitempty"`  // reference article title, e.g. Wikipedia page name
}

// Result is a single search hit returned to autocomplete consumers.
type Result struct {
	Common     string `json:"common"`
	Scientific string `json:"scientific"`
}

// Search limit bounds. Requests outside the valid range are clamped,
// non-positive values fall back to the default.
const (
	DefaultSearchLimit = 8
	MaxSearchLimit     = 25
)

// Catalog is the process-resident species table with derived lookup
// indices. It is built once and read-only thereafter, so unsynchronized
// concurrent reads are safe.
type Catalog struct {
	records      []Record
	foldedCommon []string // folded common names, parallel to records
	foldedSci    []string // folded scientific names, parallel to records
	byCommon     map[string]int
	bySci        map[string]int
}

// fold normalizes a name for case-insensitive, whitespace-trimmed matching.
func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// New builds a Catalog from an ordered list of records. The first record
// wins when two records fold to the same common or scientific name.
func New(records []Record) *Catalog {
	c := &Catalog{
		records:      make([]Record, len(records)),
		foldedCommon: make([]string, len(records)),
		foldedSci:    make([]string, len(records)),
		byCommon:     make(map[string]int, len(records)),
		bySci:        make(map[string]int, len(records)),
	}
	copy(c.records, records)
	for i := range c.records {
		cn := fold(c.records[i].CommonName)
		sn := fold(c.records[i].ScientificName)
		c.foldedCommon[i] = cn
		c.foldedSci[i] = sn
		if _, exists := c.byCommon[cn]; !exists {
			c.byCommon[cn] = i
		}
		if _, exists := c.bySci[sn]; !exists {
			c.bySci[sn] = i
		}
	}
	return c
}

// Len returns the number of records in the catalog.
func (c *Catalog) Len() int {
	return len(c.records)
}

// All returns a copy of the catalog records in their original order.
func (c *Catalog) All() []Record {
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// LookupCommon returns the record whose common name matches the given name,
// case-insensitively and ignoring surrounding whitespace.
func (c *Catalog) LookupCommon(name string) (Record, bool) {
	i, ok := c.byCommon[fold(name)]
	if !ok {
		return Record{}, false
	}
	return c.records[i], true
}

// LookupScientific returns the record whose scientific name matches the
// given name, case-insensitively and ignoring surrounding whitespace.
func (c *Catalog) LookupScientific(name string) (Record, bool) {
	i, ok := c.bySci[fold(name)]
	if !ok {
		return Record{}, false
	}
	return c.records[i], true
}

// searchRank orders hits: common-name prefix matches first, scientific-name
// prefix matches second, substring matches anywhere last.
const (
	rankCommonPrefix     = 0
	rankScientificPrefix = 1
	rankSubstring        = 2
)

// Search returns up to limit species matching the query, best matches
// first. A blank query yields no results. The limit is clamped to
// [1, MaxSearchLimit]; non-positive values fall back to DefaultSearchLimit.
//
// Ordering within a rank is alphabetical by common name. The comparator is
// explicit on (rank, common name) rather than relying on sort stability, so
// a prefix match always surfaces before any substring-only match no matter
// how many of the latter exist.
func (c *Catalog) Search(query string, limit int) []Result {
	q := fold(query)
	if q == "" {
		return nil
	}

	if limit <= 0 {
		limit = DefaultSearchLimit
	} else if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	type hit struct {
		rank int
		idx  int
	}
	var hits []hit
	for i := range c.records {
		cn := c.foldedCommon[i]
		sn := c.foldedSci[i]
		var rank int
		switch {
		case strings.HasPrefix(cn, q):
			rank = rankCommonPrefix
		case strings.HasPrefix(sn, q):
			rank = rankScientificPrefix
		case strings.Contains(cn, q) || strings.Contains(sn, q):
			rank = rankSubstring
		default:
			continue
		}
		hits = append(hits, hit{rank: rank, idx: i})
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].rank != hits[b].rank {
			return hits[a].rank < hits[b].rank
		}
		return c.records[hits[a].idx].CommonName < c.records[hits[b].idx].CommonName
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		results = append(results, Result{
			Common:     c.records[h.idx].CommonName,
			Scientific: c.records[h.idx].ScientificName,
		})
	}
	return results
}
