// Package databasetest opens migrated in-memory SQLite databases for tests.
package databasetest

import (
	"fmt"
	"testing"

	"property-service/internal/model"
	"property-service/pkg/database"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Amenities and HouseRules are the catalog entries Seed inserts
var (
	Amenities  = []string{"Fitness Center", "Pet Friendly", "Pool", "Parking", "Wi-Fi"}
	HouseRules = []string{"No Smoking", "No Parties", "Quiet Hours"}
)

// New returns a fresh, migrated database private to the calling test. A single
// connection is used so every statement sees the same in-memory database.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// Seed inserts the catalog vocabularies
func Seed(t *testing.T, db *gorm.DB) {
	t.Helper()

	for _, name := range Amenities {
		require.NoError(t, db.Create(&model.Amenity{Name: name}).Error)
	}
	for _, name := range HouseRules {
		require.NoError(t, db.Create(&model.HouseRule{Name: name}).Error)
	}
}

// CreateUser inserts a user with the given role and returns it
func CreateUser(t *testing.T, db *gorm.DB, role model.UserRole) model.User {
	t.Helper()

	id := uuid.New()
	user := model.User{
		ID:    id,
		Email: id.String() + "@example.com",
		Name:  "Test " + string(role),
		Role:  role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}
