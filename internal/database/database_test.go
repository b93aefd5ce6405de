package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/s/lms/internal/fixtures"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(sqlite.Open(":memory:"), 1, 0)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a second connection would see a different in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, AutoMigrate(db))
	return db
}

func TestSeedAndLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)
	set, err := fixtures.Default()
	require.NoError(t, err)

	require.NoError(t, Seed(db, set))
	got, err := LoadFixtures(db)
	require.NoError(t, err)

	assert.Equal(t, set, got)
}

func TestSeedIsRepeatable(t *testing.T) {
	db := openTestDB(t)
	set, err := fixtures.Default()
	require.NoError(t, err)

	require.NoError(t, Seed(db, set))
	set.Users[0].Name = "John Renamed"
	set.Courses[0].Price = 9.99
	require.NoError(t, Seed(db, set))

	var users int64
	require.NoError(t, db.Model(&UserRow{}).Count(&users).Error)
	assert.Equal(t, int64(len(set.Users)), users)

	got, err := LoadFixtures(db)
	require.NoError(t, err)
	assert.Equal(t, "John Renamed", got.Users[0].Name)
	assert.Equal(t, 9.99, got.Courses[0].Price)
}

func TestLoadFixturesEmpty(t *testing.T) {
	db := openTestDB(t)
	set, err := LoadFixtures(db)
	require.NoError(t, err)
	assert.Empty(t, set.Users)
	assert.Empty(t, set.Courses)
}

func TestDayNormalisesZone(t *testing.T) {
	zone := time.FixedZone("", 0)
	got := day(datatypes.Date(time.Date(2024, 5, 6, 13, 0, 0, 0, zone)))
	assert.Equal(t, time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), got)
	assert.True(t, day(datatypes.Date(time.Time{})).IsZero())
}
