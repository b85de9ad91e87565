package datastore

import (
	"time"

	"github.com/tphakala/birddex/internal/dex"
)

// OutingRecord is the persisted form of a dex.Outing.
type OutingRecord struct {
	ID           string    `gorm:"primaryKey;size:36"`
	UserID       string    `gorm:"index;size:64"`
	StartTime    time.Time `gorm:"index"`
	EndTime      time.Time
	LocationName string
	Latitude     *float64
	Longitude    *float64
	Notes        string
	CreatedAt    time.Time
}

// TableName sets the table name for outing records.
func (OutingRecord) TableName() string {
	return "outings"
}

// ObservationRecord is the persisted form of a dex.Observation.
type ObservationRecord struct {
	ID                    string `gorm:"primaryKey;size:36"`
	OutingID              string `gorm:"index;size:36"`
	SpeciesName           string `gorm:"index"`
	Count                 int
	Certainty             string `gorm:"index;size:16"`
	RepresentativePhotoID string
	AIConfidence          *float64
	Notes                 string
}

// TableName sets the table name for observation records.
func (ObservationRecord) TableName() string {
	return "observations"
}

// DexEntryRecord is the persisted form of a dex.Entry, keyed per user and
// species.
type DexEntryRecord struct {
	UserID       string `gorm:"primaryKey;size:64"`
	SpeciesName  string `gorm:"primaryKey;size:128"`
	FirstSeen    time.Time
	LastSeen     time.Time
	AddedAt      time.Time
	TotalOutings int
	TotalCount   int
	BestPhotoID  string
	Notes        string
}

// TableName sets the table name for dex entry records.
func (DexEntryRecord) TableName() string {
	return "dex_entries"
}

func outingToRecord(o *dex.Outing) OutingRecord {
	return OutingRecord{
		ID:           o.ID,
		UserID:       o.UserID,
		StartTime:    o.StartTime,
		EndTime:      o.EndTime,
		LocationName: o.LocationName,
		Latitude:     o.Latitude,
		Longitude:    o.Longitude,
		Notes:        o.Notes,
		CreatedAt:    o.CreatedAt,
	}
}

func recordToOuting(r *OutingRecord) dex.Outing {
	return dex.Outing{
		ID:           r.ID,
		UserID:       r.UserID,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		LocationName: r.LocationName,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		Notes:        r.Notes,
		CreatedAt:    r.CreatedAt,
	}
}

func observationToRecord(o *dex.Observation) ObservationRecord {
	return ObservationRecord{
		ID:                    o.ID,
		OutingID:              o.OutingID,
		SpeciesName:           o.SpeciesName,
		Count:                 o.Count,
		Certainty:             string(o.Certainty),
		RepresentativePhotoID: o.RepresentativePhotoID,
		AIConfidence:          o.AIConfidence,
		Notes:                 o.Notes,
	}
}

func recordToObservation(r *ObservationRecord) dex.Observation {
	return dex.Observation{
		ID:                    r.ID,
		OutingID:              r.OutingID,
		SpeciesName:           r.SpeciesName,
		Count:                 r.Count,
		Certainty:             dex.Certainty(r.Certainty),
		RepresentativePhotoID: r.RepresentativePhotoID,
		AIConfidence:          r.AIConfidence,
		Notes:                 r.Notes,
	}
}

func entryToRecord(userID string, e *dex.Entry) DexEntryRecord {
	return DexEntryRecord{
		UserID:       userID,
		SpeciesName:  e.SpeciesName,
		FirstSeen:    e.FirstSeen,
		LastSeen:     e.LastSeen,
		AddedAt:      e.AddedAt,
		TotalOutings: e.TotalOutings,
		TotalCount:   e.TotalCount,
		BestPhotoID:  e.BestPhotoID,
		Notes:        e.Notes,
	}
}

func recordToEntry(r *DexEntryRecord) dex.Entry {
	return dex.Entry{
		SpeciesName:  r.SpeciesName,
		FirstSeen:    r.FirstSeen,
		LastSeen:     r.LastSeen,
		AddedAt:      r.AddedAt,
		TotalOutings: r.TotalOutings,
		TotalCount:   r.TotalCount,
		BestPhotoID:  r.BestPhotoID,
		Notes:        r.Notes,
	}
}
