// Package dex implements the life-list aggregation core: deterministic,
// mergeable roll-up of raw outing and observation records into per-species
// summary entries. Every function in this package is pure — no I/O, no
// hidden state, no errors. Callers own read-modify-write atomicity against
// their store; these functions must not run concurrently against the same
// user's data without external serialization.
package dex

import "time"

// Certainty classifies how confident an observation is. Only confirmed
// observations contribute to the life list.
type Certainty string

const (
	CertaintyConfirmed Certainty = "confirmed"
	CertaintyPossible  Certainty = "possible"
	CertaintyPending   Certainty = "pending"
	CertaintyRejected  Certainty = "rejected"
)

// Valid reports whether c is one of the known certainty levels.
func (c Certainty) Valid() bool {
	switch c {
	case CertaintyConfirmed, CertaintyPossible, CertaintyPending, CertaintyRejected:
		return true
	}
	return false
}

// Outing is a single birding trip. An outing owns its observations;
// deleting an outing removes them.
type Outing struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	LocationName string    `json:"location_name"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
}

// Observation records one species sighted during an outing. SpeciesName is
// the canonical display string produced by the name resolver; all ingestion
// paths funnel through it before an Observation is constructed so one
// species never fragments into several dex entries.
type Observation struct {
	ID                    string    `json:"id"`
	OutingID              string    `json:"outing_id"`
	SpeciesName           string    `json:"species_name"`
	Count                 int       `json:"count"`
	Certainty             Certainty `json:"certainty"`
	RepresentativePhotoID string    `json:"representative_photo_id,omitempty"`
	AIConfidence          *float64  `json:"ai_confidence,omitempty"`
	Notes                 string    `json:"notes"`
}

// Entry is the per-species life-list summary. SpeciesName is the unique
// key within one user's dex. AddedAt and Notes are user-owned: once set
// they survive rebuilds unchanged.
type Entry struct {
	SpeciesName  string    `json:"species_name"`
	FirstSeen    time.Time `json:"first_seen"`
	LastSeen     time.Time `json:"last_seen"`
	AddedAt      time.Time `json:"added_at"`
	TotalOutings int       `json:"total_outings"`
	TotalCount   int       `json:"total_count"`
	BestPhotoID  string    `json:"best_photo_id,omitempty"`
	Notes        string    `json:"notes"`
}
