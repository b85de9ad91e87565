// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tphakala/birddex/internal/conf"
	"github.com/tphakala/birddex/internal/dex"
)

// Interface abstracts the underlying database implementation and defines
// the operations the application needs. Aggregation itself is pure and
// lives in the dex package; the store only moves raw records and computed
// entries in and out. Callers must serialize read-modify-write cycles
// against one user's dex themselves.
type Interface interface {
	Open() error
	Close() error

	SaveOuting(outing *dex.Outing) error
	GetOuting(id string) (dex.Outing, error)
	GetOutings(userID string) ([]dex.Outing, error)
	DeleteOuting(id string) error

	SaveObservations(observations []dex.Observation) error
	SetObservationsCertainty(ids []string, certainty dex.Certainty) error
	GetObservations(userID string) ([]dex.Observation, error)
	GetObservationsByOuting(outingID string) ([]dex.Observation, error)

	GetDexEntries(userID string) ([]dex.Entry, error)
	ReplaceDexEntries(userID string, entries []dex.Entry) error
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB
}

// New creates a datastore instance based on the enabled output backend.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{Settings: settings}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{Settings: settings}
	default:
		return nil
	}
}

// SaveOuting inserts or updates an outing, assigning an id and creation
// time when missing.
func (ds *DataStore) SaveOuting(outing *dex.Outing) error {
	if outing.ID == "" {
		outing.ID = uuid.NewString()
	}
	if outing.CreatedAt.IsZero() {
		outing.CreatedAt = time.Now().UTC()
	}

	record := outingToRecord(outing)
	if err := ds.DB.Save(&record).Error; err != nil {
		return fmt.Errorf("saving outing %s: %w", outing.ID, err)
	}
	return nil
}

// GetOuting retrieves an outing by its id.
func (ds *DataStore) GetOuting(id string) (dex.Outing, error) {
	var record OutingRecord
	if err := ds.DB.First(&record, "id = ?", id).Error; err != nil {
		return dex.Outing{}, fmt.Errorf("getting outing %s: %w", id, err)
	}
	return recordToOuting(&record), nil
}

// GetOutings retrieves all outings of a user ordered by start time.
func (ds *DataStore) GetOutings(userID string) ([]dex.Outing, error) {
	var records []OutingRecord
	if err := ds.DB.Where("user_id = ?", userID).Order("start_time").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("getting outings for user %s: %w", userID, err)
	}

	outings := make([]dex.Outing, 0, len(records))
	for i := range records {
		outings = append(outings, recordToOuting(&records[i]))
	}
	return outings, nil
}

// DeleteOuting removes an outing and cascades to its observations in a
// single transaction.
func (ds *DataStore) DeleteOuting(id string) error {
	return ds.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("outing_id = ?", id).Delete(&ObservationRecord{}).Error; err != nil {
			return fmt.Errorf("deleting observations of outing %s: %w", id, err)
		}
		if err := tx.Delete(&OutingRecord{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("deleting outing %s: %w", id, err)
		}
		return nil
	})
}

// SaveObservations inserts or updates a batch of observations in a single
// transaction, assigning ids where missing.
func (ds *DataStore) SaveObservations(observations []dex.Observation) error {
	if len(observations) == 0 {
		return nil
	}
	return ds.DB.Transaction(func(tx *gorm.DB) error {
		for i := range observations {
			if observations[i].ID == "" {
				observations[i].ID = uuid.NewString()
			}
			record := observationToRecord(&observations[i])
			if err := tx.Save(&record).Error; err != nil {
				return fmt.Errorf("saving observation %s: %w", observations[i].ID, err)
			}
		}
		return nil
	})
}

// SetObservationsCertainty updates the certainty of the given observations.
func (ds *DataStore) SetObservationsCertainty(ids []string, certainty dex.Certainty) error {
	if len(ids) == 0 {
		return nil
	}
	if !certainty.Valid() {
		return fmt.Errorf("invalid certainty %q", certainty)
	}
	if err := ds.DB.Model(&ObservationRecord{}).
		Where("id IN ?", ids).
		Update("certainty", string(certainty)).Error; err != nil {
		return fmt.Errorf("updating certainty: %w", err)
	}
	return nil
}

// GetObservations retrieves all observations belonging to a user's outings.
func (ds *DataStore) GetObservations(userID string) ([]dex.Observation, error) {
	var records []ObservationRecord
	err := ds.DB.
		Select("observations.*").
		Joins("JOIN outings ON outings.id = observations.outing_id").
		Where("outings.user_id = ?", userID).
		Order("observations.id").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("getting observations for user %s: %w", userID, err)
	}

	observations := make([]dex.Observation, 0, len(records))
	for i := range records {
		observations = append(observations, recordToObservation(&records[i]))
	}
	return observations, nil
}

// GetObservationsByOuting retrieves the observations of one outing.
func (ds *DataStore) GetObservationsByOuting(outingID string) ([]dex.Observation, error) {
	var records []ObservationRecord
	if err := ds.DB.Where("outing_id = ?", outingID).Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("getting observations for outing %s: %w", outingID, err)
	}

	observations := make([]dex.Observation, 0, len(records))
	for i := range records {
		observations = append(observations, recordToObservation(&records[i]))
	}
	return observations, nil
}

// GetDexEntries retrieves a user's dex sorted by species name.
func (ds *DataStore) GetDexEntries(userID string) ([]dex.Entry, error) {
	var records []DexEntryRecord
	if err := ds.DB.Where("user_id = ?", userID).Order("species_name").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("getting dex entries for user %s: %w", userID, err)
	}

	entries := make([]dex.Entry, 0, len(records))
	for i := range records {
		entries = append(entries, recordToEntry(&records[i]))
	}
	return entries, nil
}

// ReplaceDexEntries replaces a user's dex with the given entries verbatim
// in a single transaction. The aggregation functions produce the complete
// entry set, so replacement is the only write shape needed.
func (ds *DataStore) ReplaceDexEntries(userID string, entries []dex.Entry) error {
	return ds.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&DexEntryRecord{}).Error; err != nil {
			return fmt.Errorf("clearing dex entries for user %s: %w", userID, err)
		}
		for i := range entries {
			record := entryToRecord(userID, &entries[i])
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("saving dex entry %s: %w", entries[i].SpeciesName, err)
			}
		}
		return nil
	})
}
