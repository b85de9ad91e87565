package dex

import (
	"sort"
	"time"
)

// speciesStats accumulates one species' roll-up while walking observations
// in input order.
type speciesStats struct {
	firstSeen  time.Time
	lastSeen   time.Time
	totalCount int
	outingIDs  map[string]struct{}
	lastPhoto  string // photo id of the last photo-bearing observation seen
}

// computeStats folds confirmed observations with live outings into
// per-species stats. Observations whose certainty is not confirmed are
// discarded, as are observations whose outing no longer exists (dangling
// references are dropped silently; see Rebuild).
func computeStats(outings map[string]Outing, observations []Observation) map[string]*speciesStats {
	stats := make(map[string]*speciesStats)
	for i := range observations {
		obs := &observations[i]
		if obs.Certainty != CertaintyConfirmed {
			continue
		}
		outing, live := outings[obs.OutingID]
		if !live {
			continue
		}

		s := stats[obs.SpeciesName]
		if s == nil {
			s = &speciesStats{outingIDs: make(map[string]struct{})}
			stats[obs.SpeciesName] = s
		}

		if s.firstSeen.IsZero() || outing.StartTime.Before(s.firstSeen) {
			s.firstSeen = outing.StartTime
		}
		if outing.StartTime.After(s.lastSeen) {
			s.lastSeen = outing.StartTime
		}
		s.totalCount += obs.Count
		s.outingIDs[obs.OutingID] = struct{}{}
		if obs.RepresentativePhotoID != "" {
			s.lastPhoto = obs.RepresentativePhotoID
		}
	}
	return stats
}

// entryFromStats builds a dex entry from accumulated stats, carrying the
// sticky user-owned fields forward from a prior entry when one exists.
func entryFromStats(species string, s *speciesStats, prior *Entry, now time.Time) Entry {
	entry := Entry{
		SpeciesName:  species,
		FirstSeen:    s.firstSeen,
		LastSeen:     s.lastSeen,
		TotalOutings: len(s.outingIDs),
		TotalCount:   s.totalCount,
		BestPhotoID:  s.lastPhoto,
		AddedAt:      now,
	}
	if prior != nil {
		entry.AddedAt = prior.AddedAt
		entry.Notes = prior.Notes
		if entry.BestPhotoID == "" {
			entry.BestPhotoID = prior.BestPhotoID
		}
	}
	return entry
}

// indexOutings builds an id lookup over the live outings.
func indexOutings(outings []Outing) map[string]Outing {
	m := make(map[string]Outing, len(outings))
	for _, o := range outings {
		m[o.ID] = o
	}
	return m
}

// indexEntries builds a species-name lookup over existing dex entries.
func indexEntries(entries []Entry) map[string]Entry {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		m[e.SpeciesName] = e
	}
	return m
}

// sortEntries orders entries alphabetically by species name in code-point
// order, so output is deterministic across runs and implementations.
func sortEntries(entries []Entry) []Entry {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].SpeciesName < entries[j].SpeciesName
	})
	return entries
}

// Rebuild recomputes the entire dex from raw outings and observations.
//
// Only confirmed observations backed by a live outing count; an observation
// whose outing id resolves to nothing is dropped silently rather than
// reported (an observation outliving its outing points at an upstream
// referential-integrity problem, but hiding it is the established
// behavior). A species with no surviving observations gets no entry, so
// deleting the last backing outing removes the species from the dex.
//
// AddedAt and Notes carry forward unchanged from existing entries; a
// species seen for the first time gets AddedAt=now and empty notes.
// BestPhotoID is the photo of the last photo-bearing observation in input
// order, falling back to the existing entry's photo when the current
// observations carry none.
func Rebuild(outings []Outing, observations []Observation, existing []Entry, now time.Time) []Entry {
	outingsByID := indexOutings(outings)
	existingByName := indexEntries(existing)
	stats := computeStats(outingsByID, observations)

	entries := make([]Entry, 0, len(stats))
	for species, s := range stats {
		var prior *Entry
		if e, ok := existingByName[species]; ok {
			prior = &e
		}
		entries = append(entries, entryFromStats(species, s, prior, now))
	}
	return sortEntries(entries)
}

// ApplyNewConfirmed folds a freshly confirmed batch of observations from a
// single outing into the dex, recomputing only the species the batch
// touches. Each touched species is recomputed over all historically
// confirmed observations, so its entry is identical to what a full Rebuild
// would produce; entries for untouched species pass through unchanged.
//
// The second return value is the number of batch species that had no prior
// dex entry. The confirmed outing and batch observations are folded into
// allOutings/allObservations if the caller's snapshots don't include them
// yet, with the batch taking precedence on observation id collisions.
func ApplyNewConfirmed(outing Outing, newlyConfirmed []Observation, allOutings []Outing, allObservations []Observation, existing []Entry, now time.Time) ([]Entry, int) {
	outingsByID := indexOutings(allOutings)
	if _, ok := outingsByID[outing.ID]; !ok && outing.ID != "" {
		outingsByID[outing.ID] = outing
	}

	batchByID := make(map[string]Observation, len(newlyConfirmed))
	for _, obs := range newlyConfirmed {
		batchByID[obs.ID] = obs
	}
	combined := make([]Observation, 0, len(allObservations)+len(newlyConfirmed))
	for _, obs := range allObservations {
		if fresh, ok := batchByID[obs.ID]; ok {
			combined = append(combined, fresh)
			delete(batchByID, obs.ID)
			continue
		}
		combined = append(combined, obs)
	}
	for _, obs := range newlyConfirmed {
		if _, pending := batchByID[obs.ID]; pending {
			combined = append(combined, obs)
		}
	}

	touched := make(map[string]bool, len(newlyConfirmed))
	for _, obs := range newlyConfirmed {
		touched[obs.SpeciesName] = true
	}

	stats := computeStats(outingsByID, combined)
	existingByName := indexEntries(existing)

	newSpecies := 0
	entries := make([]Entry, 0, len(existing)+len(touched))
	for _, e := range existing {
		if !touched[e.SpeciesName] {
			entries = append(entries, e)
		}
	}
	for species := range touched {
		s, ok := stats[species]
		if !ok {
			// Batch species with no surviving confirmed observation:
			// the entry (if any) is dropped per the existence invariant.
			continue
		}
		var prior *Entry
		if e, exists := existingByName[species]; exists {
			prior = &e
		} else {
			newSpecies++
		}
		entries = append(entries, entryFromStats(species, s, prior, now))
	}
	return sortEntries(entries), newSpecies
}

// minTime returns the earlier of two times, ignoring zero values.
func minTime(a, b time.Time) time.Time {
	if a.IsZero() {
		return b
	}
	if !b.IsZero() && b.Before(a) {
		return b
	}
	return a
}

// maxTime returns the later of two times.
func maxTime(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

// MergeExternal folds an imported dex export into the existing dex. The
// import is not backed by the local observation table, so for overlapping
// species the date range widens (min first seen, max last seen) while
// TotalOutings and TotalCount are summed rather than recomputed — if the
// import double-reports sightings already present locally, the totals
// double-count. AddedAt and Notes stay with the existing entry; the
// imported values fill in only where the existing entry is empty.
func MergeExternal(incoming, existing []Entry, now time.Time) []Entry {
	merged := indexEntries(existing)
	for _, in := range incoming {
		ex, overlap := merged[in.SpeciesName]
		if !overlap {
			if in.AddedAt.IsZero() {
				in.AddedAt = now
			}
			merged[in.SpeciesName] = in
			continue
		}

		ex.FirstSeen = minTime(ex.FirstSeen, in.FirstSeen)
		ex.LastSeen = maxTime(ex.LastSeen, in.LastSeen)
		ex.TotalOutings += in.TotalOutings
		ex.TotalCount += in.TotalCount
		if ex.BestPhotoID == "" {
			ex.BestPhotoID = in.BestPhotoID
		}
		if ex.Notes == "" {
			ex.Notes = in.Notes
		}
		merged[in.SpeciesName] = ex
	}

	entries := make([]Entry, 0, len(merged))
	for _, e := range merged {
		entries = append(entries, e)
	}
	return sortEntries(entries)
}
