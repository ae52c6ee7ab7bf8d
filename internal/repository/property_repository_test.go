package repository

import (
	"context"
	"testing"
	"time"

	"property-service/internal/model"
	"property-service/pkg/database/databasetest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newID() uuid.UUID {
	return uuid.New()
}

func insertProperty(t *testing.T, repo *PropertyRepository, landlordID uuid.UUID, price float64, createdAt time.Time) *model.Property {
	t.Helper()

	p := &model.Property{
		LandlordID:   landlordID,
		Title:        "Flat",
		MonthlyPrice: price,
		Address:      "1 Main St",
		Status:       model.PropertyStatusDraft,
		TargetTenant: model.TargetTenantAny,
		CreatedAt:    createdAt,
	}
	require.NoError(t, repo.CreateProperty(context.Background(), p))
	return p
}

func setup(t *testing.T) (*gorm.DB, *PropertyRepository, model.User) {
	t.Helper()

	db := databasetest.New(t)
	databasetest.Seed(t, db)
	return db, NewPropertyRepository(db), databasetest.CreateUser(t, db, model.RoleLandlord)
}

func TestPropertyRepository_LoadAggregate(t *testing.T) {
	db, repo, landlord := setup(t)
	ctx := context.Background()

	p := insertProperty(t, repo, landlord.ID, 1500, time.Now())
	require.NotEqual(t, uuid.Nil, p.ID)

	require.NoError(t, repo.InsertImages(ctx, []model.PropertyImage{
		{PropertyID: p.ID, ImageURL: "b.jpg"},
		{PropertyID: p.ID, ImageURL: "a.jpg", IsMain: true},
	}))
	amenities, _, err := NewCatalogRepository(db, nil).ResolveAmenities(ctx, []string{"Pool", "Fitness Center"})
	require.NoError(t, err)
	require.NoError(t, repo.InsertAmenityLinks(ctx, p.ID, amenities))
	require.NoError(t, repo.SaveSpecifications(ctx, &model.PropertySpecifications{
		PropertyID: p.ID, Bedrooms: 2, Bathrooms: 1, AreaSqft: 80,
	}))

	loaded, err := repo.LoadAggregate(ctx, p.ID)
	require.NoError(t, err)

	require.Len(t, loaded.Images, 2)
	assert.True(t, loaded.Images[0].IsMain, "main image first")
	require.Len(t, loaded.Amenities, 2)
	assert.Equal(t, "Fitness Center", loaded.Amenities[0].Name)
	assert.Empty(t, loaded.HouseRules)
	require.NotNil(t, loaded.Specifications)
	assert.Equal(t, 2, loaded.Specifications.Bedrooms)
	assert.Nil(t, loaded.DetailedLocation)
}

func TestPropertyRepository_SoftDeleteHidesProperty(t *testing.T) {
	_, repo, landlord := setup(t)
	ctx := context.Background()
	p := insertProperty(t, repo, landlord.ID, 900, time.Now())

	n, err := repo.SoftDelete(ctx, p.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.FindActive(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.LoadAggregate(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err = repo.SoftDelete(ctx, p.ID, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.UpdateFields(ctx, p.ID, map[string]interface{}{"title": "ghost", "updated_at": time.Now()})
	require.NoError(t, err)
	assert.Zero(t, n, "deleted rows are never updated")

	items, total, err := repo.List(ctx, ListQuery{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}

func TestPropertyRepository_TransactionRollsBack(t *testing.T) {
	db, repo, landlord := setup(t)
	ctx := context.Background()

	failure := assert.AnError
	err := repo.Transaction(ctx, func(store PropertyStore) error {
		p := &model.Property{LandlordID: landlord.ID, Title: "Flat", MonthlyPrice: 1, Address: "x"}
		require.NoError(t, store.CreateProperty(ctx, p))
		return failure
	})
	assert.ErrorIs(t, err, failure)

	var count int64
	require.NoError(t, db.Model(&model.Property{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPropertyRepository_ListFiltersAndOrder(t *testing.T) {
	db, repo, landlord := setup(t)
	ctx := context.Background()
	other := databasetest.CreateUser(t, db, model.RoleLandlord)

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	cheap := insertProperty(t, repo, landlord.ID, 500, base)
	mid := insertProperty(t, repo, landlord.ID, 1000, base.Add(time.Hour))
	dear := insertProperty(t, repo, other.ID, 2000, base.Add(2*time.Hour))

	available := datatypes.Date(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	published := model.PropertyStatusPublished
	_, err := repo.UpdateFields(ctx, mid.ID, map[string]interface{}{
		"status":            published,
		"availability_date": available,
	})
	require.NoError(t, err)

	items, total, err := repo.List(ctx, ListQuery{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 3)
	assert.Equal(t, []uuid.UUID{dear.ID, mid.ID, cheap.ID}, []uuid.UUID{items[0].ID, items[1].ID, items[2].ID})

	minPrice, maxPrice := 600.0, 1500.0
	items, total, err = repo.List(ctx, ListQuery{MinPrice: &minPrice, MaxPrice: &maxPrice, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, mid.ID, items[0].ID)

	exact := 500.0
	_, total, err = repo.List(ctx, ListQuery{MinPrice: &exact, MaxPrice: &exact, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total, "price range is inclusive")

	_, total, err = repo.List(ctx, ListQuery{LandlordID: &landlord.ID, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	items, total, err = repo.List(ctx, ListQuery{Status: &published, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, mid.ID, items[0].ID)

	items, total, err = repo.List(ctx, ListQuery{AvailabilityDate: &available, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, mid.ID, items[0].ID)

	items, total, err = repo.List(ctx, ListQuery{Offset: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total, "total ignores pagination")
	require.Len(t, items, 1)
	assert.Equal(t, cheap.ID, items[0].ID)
}
