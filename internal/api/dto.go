package api

import (
	"fmt"
	"time"

	"github.com/tphakala/birddex/internal/dex"
)

// DexEntryDTO is the wire shape of a dex entry. All dates are ISO-8601
// strings and notes is never null.
type DexEntryDTO struct {
	SpeciesName  string `json:"species_name"`
	FirstSeen    string `json:"first_seen"`
	LastSeen     string `json:"last_seen"`
	AddedAt      string `json:"added_at"`
	TotalOutings int    `json:"total_outings"`
	TotalCount   int    `json:"total_count"`
	BestPhotoID  string `json:"best_photo_id,omitempty"`
	Notes        string `json:"notes"`
}

func formatInstant(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseInstant(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

func entryToDTO(e *dex.Entry) DexEntryDTO {
	return DexEntryDTO{
		SpeciesName:  e.SpeciesName,
		FirstSeen:    formatInstant(e.FirstSeen),
		LastSeen:     formatInstant(e.LastSeen),
		AddedAt:      formatInstant(e.AddedAt),
		TotalOutings: e.TotalOutings,
		TotalCount:   e.TotalCount,
		BestPhotoID:  e.BestPhotoID,
		Notes:        e.Notes,
	}
}

func entriesToDTO(entries []dex.Entry) []DexEntryDTO {
	out := make([]DexEntryDTO, 0, len(entries))
	for i := range entries {
		out = append(out, entryToDTO(&entries[i]))
	}
	return out
}

func dtoToEntry(d *DexEntryDTO) (dex.Entry, error) {
	firstSeen, err := parseInstant(d.FirstSeen)
	if err != nil {
		return dex.Entry{}, err
	}
	lastSeen, err := parseInstant(d.LastSeen)
	if err != nil {
		return dex.Entry{}, err
	}
	addedAt, err := parseInstant(d.AddedAt)
	if err != nil {
		return dex.Entry{}, err
	}
	if d.SpeciesName == "" {
		return dex.Entry{}, fmt.Errorf("species_name is required")
	}
	if d.TotalOutings < 0 || d.TotalCount < 0 {
		return dex.Entry{}, fmt.Errorf("totals must be non-negative")
	}
	return dex.Entry{
		SpeciesName:  d.SpeciesName,
		FirstSeen:    firstSeen,
		LastSeen:     lastSeen,
		AddedAt:      addedAt,
		TotalOutings: d.TotalOutings,
		TotalCount:   d.TotalCount,
		BestPhotoID:  d.BestPhotoID,
		Notes:        d.Notes,
	}, nil
}
