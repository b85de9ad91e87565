package taxonomy

import (
	"sort"
	"strings"
)

// DefaultFuzzyMinRatio is the fraction of a candidate's own name tokens that
// must appear in the input before the fuzzy fallback accepts it. The match
// must be a strict majority (ratio strictly greater than the threshold), so
// at 0.5 a two-word name needs both words and a three-word name needs two.
// The exact threshold is a tunable, not a contract.
const DefaultFuzzyMinRatio = 0.5

// Resolver canonicalizes freeform species names against a Catalog. It is
// total: no input causes an error, a miss is reported as a false bool.
type Resolver struct {
	catalog       *Catalog
	fuzzyMinRatio float64
}

// NewResolver creates a Resolver over the given catalog with the default
// fuzzy threshold.
func NewResolver(catalog *Catalog) *Resolver {
	return &Resolver{catalog: catalog, fuzzyMinRatio: DefaultFuzzyMinRatio}
}

// NewResolverWithThreshold creates a Resolver with a custom fuzzy token
// ratio. Values outside (0, 1) fall back to the default.
func NewResolverWithThreshold(catalog *Catalog, minRatio float64) *Resolver {
	if minRatio <= 0 || minRatio >= 1 {
		minRatio = DefaultFuzzyMinRatio
	}
	return &Resolver{catalog: catalog, fuzzyMinRatio: minRatio}
}

// splitParenthetical splits an AI-style "Common Name (Scientific Name)"
// string at the first opening parenthesis. The returned scientific part is
// empty when there is no parenthetical segment.
func splitParenthetical(name string) (commonPart, sciPart string) {
	i := strings.Index(name, "(")
	if i < 0 {
		return name, ""
	}
	commonPart = strings.TrimSpace(name[:i])
	sciPart = name[i+1:]
	if j := strings.Index(sciPart, ")"); j >= 0 {
		sciPart = sciPart[:j]
	}
	return commonPart, strings.TrimSpace(sciPart)
}

// FindBestMatch resolves a freeform name to a catalog record. Matching
// tiers are tried in order, first success wins:
//
//  1. exact common name, then exact scientific name
//  2. "Common (Scientific)" form: the scientific segment is authoritative
//     even when the common portion is misspelled
//  3. the common portion alone with the parenthetical stripped
//  4. fuzzy word-overlap fallback
//
// Blank input and unmatched garbage both return false, never an error.
func (r *Resolver) FindBestMatch(raw string) (Record, bool) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return Record{}, false
	}

	if rec, ok := r.catalog.LookupCommon(name); ok {
		return rec, true
	}
	if rec, ok := r.catalog.LookupScientific(name); ok {
		return rec, true
	}

	if commonPart, sciPart := splitParenthetical(name); sciPart != "" {
		if rec, ok := r.catalog.LookupScientific(sciPart); ok {
			return rec, true
		}
		if rec, ok := r.catalog.LookupCommon(commonPart); ok {
			return rec, true
		}
	}

	return r.fuzzyMatch(name)
}

// fuzzyMatch finds the catalog record whose common-name tokens are best
// covered by the input tokens. A candidate qualifies only when a strict
// majority of its own tokens appear in the input. Ties break on coverage
// ratio and then alphabetically so the result is deterministic.
func (r *Resolver) fuzzyMatch(name string) (Record, bool) {
	inputTokens := map[string]bool{}
	for _, tok := range strings.Fields(fold(name)) {
		inputTokens[strings.Trim(tok, "(),.")] = true
	}
	if len(inputTokens) == 0 {
		return Record{}, false
	}

	type candidate struct {
		idx    int
		shared int
		ratio  float64
	}
	var candidates []candidate
	for i := range r.catalog.records {
		tokens := strings.Fields(r.catalog.foldedCommon[i])
		if len(tokens) == 0 {
			continue
		}
		shared := 0
		for _, tok := range tokens {
			if inputTokens[tok] {
				shared++
			}
		}
		ratio := float64(shared) / float64(len(tokens))
		if ratio > r.fuzzyMinRatio {
			candidates = append(candidates, candidate{idx: i, shared: shared, ratio: ratio})
		}
	}
	if len(candidates) == 0 {
		return Record{}, false
	}

	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].shared != candidates[b].shared {
			return candidates[a].shared > candidates[b].shared
		}
		if candidates[a].ratio != candidates[b].ratio {
			return candidates[a].ratio > candidates[b].ratio
		}
		return r.catalog.records[candidates[a].idx].CommonName < r.catalog.records[candidates[b].idx].CommonName
	})

	return r.catalog.records[candidates[0].idx], true
}

// NormalizeSpeciesName returns the authoritative common name for a freeform
// species name, or the input unchanged when nothing matches. It never fails,
// so it is safe to call on arbitrary AI-generated or imported text, and it
// is idempotent.
func (r *Resolver) NormalizeSpeciesName(name string) string {
	if rec, ok := r.FindBestMatch(name); ok {
		return rec.CommonName
	}
	return name
}

// resolveExact looks a name up by exact common or scientific name only.
// Auxiliary identifier lookups deliberately skip the fuzzy tier.
func (r *Resolver) resolveExact(name string) (Record, bool) {
	if rec, ok := r.catalog.LookupCommon(name); ok {
		return rec, true
	}
	return r.catalog.LookupScientific(name)
}

// WikiTitle returns the reference-article title for a species name, or
// false when the species is unknown or carries no article title.
func (r *Resolver) WikiTitle(name string) (string, bool) {
	rec, ok := r.resolveExact(name)
	if !ok || rec.ArticleTitle == "" {
		return "", false
	}
	return rec.ArticleTitle, true
}

// ReferenceCode returns the external reference code for a species name, or
// false when the species is unknown or carries no code.
func (r *Resolver) ReferenceCode(name string) (string, bool) {
	rec, ok := r.resolveExact(name)
	if !ok || rec.ReferenceCode == "" {
		return "", false
	}
	return rec.ReferenceCode, true
}
