package datastore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tphakala/birddex/internal/dex"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *DataStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&OutingRecord{}, &ObservationRecord{}, &DexEntryRecord{})
	require.NoError(t, err)

	return &DataStore{DB: db}
}

func testOuting(userID string, start time.Time) *dex.Outing {
	return &dex.Outing{
		UserID:       userID,
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
		LocationName: "Central Park",
	}
}

func TestSaveAndGetOuting(t *testing.T) {
	ds := setupTestDB(t)

	outing := testOuting("u1", time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC))
	require.NoError(t, ds.SaveOuting(outing))
	assert.NotEmpty(t, outing.ID, "id is assigned on save")
	assert.False(t, outing.CreatedAt.IsZero())

	got, err := ds.GetOuting(outing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Central Park", got.LocationName)
	assert.Equal(t, "u1", got.UserID)
}

func TestGetOutingsOrderedByStartTime(t *testing.T) {
	ds := setupTestDB(t)

	later := testOuting("u1", time.Date(2025, 8, 1, 8, 0, 0, 0, time.UTC))
	earlier := testOuting("u1", time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC))
	other := testOuting("u2", time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, ds.SaveOuting(later))
	require.NoError(t, ds.SaveOuting(earlier))
	require.NoError(t, ds.SaveOuting(other))

	outings, err := ds.GetOutings("u1")
	require.NoError(t, err)
	require.Len(t, outings, 2)
	assert.Equal(t, earlier.ID, outings[0].ID)
	assert.Equal(t, later.ID, outings[1].ID)
}

func TestDeleteOutingCascades(t *testing.T) {
	ds := setupTestDB(t)

	outing := testOuting("u1", time.Now().UTC())
	require.NoError(t, ds.SaveOuting(outing))

	obs := []dex.Observation{
		{OutingID: outing.ID, SpeciesName: "Blue Jay", Count: 2, Certainty: dex.CertaintyConfirmed},
		{OutingID: outing.ID, SpeciesName: "Mallard", Count: 1, Certainty: dex.CertaintyPending},
	}
	require.NoError(t, ds.SaveObservations(obs))

	require.NoError(t, ds.DeleteOuting(outing.ID))

	_, err := ds.GetOuting(outing.ID)
	assert.Error(t, err)

	remaining, err := ds.GetObservationsByOuting(outing.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestSaveObservationsAssignsIDs(t *testing.T) {
	ds := setupTestDB(t)

	outing := testOuting("u1", time.Now().UTC())
	require.NoError(t, ds.SaveOuting(outing))

	obs := []dex.Observation{
		{OutingID: outing.ID, SpeciesName: "Blue Jay", Count: 3, Certainty: dex.CertaintyConfirmed},
	}
	require.NoError(t, ds.SaveObservations(obs))
	assert.NotEmpty(t, obs[0].ID)

	got, err := ds.GetObservationsByOuting(outing.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, dex.CertaintyConfirmed, got[0].Certainty)
	assert.Equal(t, 3, got[0].Count)
}

func TestSetObservationsCertainty(t *testing.T) {
	ds := setupTestDB(t)

	outing := testOuting("u1", time.Now().UTC())
	require.NoError(t, ds.SaveOuting(outing))

	obs := []dex.Observation{
		{OutingID: outing.ID, SpeciesName: "Blue Jay", Count: 1, Certainty: dex.CertaintyPending},
		{OutingID: outing.ID, SpeciesName: "Mallard", Count: 1, Certainty: dex.CertaintyPending},
	}
	require.NoError(t, ds.SaveObservations(obs))

	require.NoError(t, ds.SetObservationsCertainty([]string{obs[0].ID}, dex.CertaintyConfirmed))

	got, err := ds.GetObservationsByOuting(outing.ID)
	require.NoError(t, err)
	byID := map[string]dex.Observation{}
	for _, o := range got {
		byID[o.ID] = o
	}
	assert.Equal(t, dex.CertaintyConfirmed, byID[obs[0].ID].Certainty)
	assert.Equal(t, dex.CertaintyPending, byID[obs[1].ID].Certainty)

	assert.Error(t, ds.SetObservationsCertainty([]string{obs[0].ID}, dex.Certainty("bogus")))
	assert.NoError(t, ds.SetObservationsCertainty(nil, dex.CertaintyConfirmed))
}

func TestGetObservationsJoinsUserOutings(t *testing.T) {
	ds := setupTestDB(t)

	mine := testOuting("u1", time.Now().UTC())
	theirs := testOuting("u2", time.Now().UTC())
	require.NoError(t, ds.SaveOuting(mine))
	require.NoError(t, ds.SaveOuting(theirs))

	require.NoError(t, ds.SaveObservations([]dex.Observation{
		{OutingID: mine.ID, SpeciesName: "Blue Jay", Count: 1, Certainty: dex.CertaintyConfirmed},
		{OutingID: theirs.ID, SpeciesName: "Mallard", Count: 1, Certainty: dex.CertaintyConfirmed},
	}))

	got, err := ds.GetObservations("u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Blue Jay", got[0].SpeciesName)
}

func TestReplaceDexEntries(t *testing.T) {
	ds := setupTestDB(t)

	first := []dex.Entry{
		{SpeciesName: "Blue Jay", TotalOutings: 1, TotalCount: 2, AddedAt: time.Now().UTC(), Notes: "spring"},
		{SpeciesName: "Mallard", TotalOutings: 1, TotalCount: 1, AddedAt: time.Now().UTC()},
	}
	require.NoError(t, ds.ReplaceDexEntries("u1", first))

	got, err := ds.GetDexEntries("u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Blue Jay", got[0].SpeciesName)
	assert.Equal(t, "spring", got[0].Notes)

	// Replacement is verbatim: dropped species disappear.
	second := []dex.Entry{
		{SpeciesName: "Mallard", TotalOutings: 2, TotalCount: 4, AddedAt: time.Now().UTC()},
	}
	require.NoError(t, ds.ReplaceDexEntries("u1", second))

	got, err = ds.GetDexEntries("u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Mallard", got[0].SpeciesName)
	assert.Equal(t, 4, got[0].TotalCount)

	// Other users are untouched.
	other, err := ds.GetDexEntries("u2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestRebuildRoundTripThroughStore(t *testing.T) {
	ds := setupTestDB(t)

	start := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)
	outing := testOuting("u1", start)
	require.NoError(t, ds.SaveOuting(outing))
	require.NoError(t, ds.SaveObservations([]dex.Observation{
		{OutingID: outing.ID, SpeciesName: "Blue Jay", Count: 3, Certainty: dex.CertaintyConfirmed},
	}))

	outings, err := ds.GetOutings("u1")
	require.NoError(t, err)
	observations, err := ds.GetObservations("u1")
	require.NoError(t, err)
	existing, err := ds.GetDexEntries("u1")
	require.NoError(t, err)

	now := time.Now().UTC()
	entries := dex.Rebuild(outings, observations, existing, now)
	require.NoError(t, ds.ReplaceDexEntries("u1", entries))

	stored, err := ds.GetDexEntries("u1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Blue Jay", stored[0].SpeciesName)
	assert.Equal(t, 3, stored[0].TotalCount)
	assert.True(t, stored[0].FirstSeen.Equal(start))
}

func TestNewSelectsBackend(t *testing.T) {
	sqliteSettings := validTestSettings()
	store := New(sqliteSettings)
	_, ok := store.(*SQLiteStore)
	assert.True(t, ok)

	mysqlSettings := validTestSettings()
	mysqlSettings.Output.SQLite.Enabled = false
	mysqlSettings.Output.MySQL.Enabled = true
	store = New(mysqlSettings)
	_, ok = store.(*MySQLStore)
	assert.True(t, ok)

	none := validTestSettings()
	none.Output.SQLite.Enabled = false
	assert.Nil(t, New(none))
}
