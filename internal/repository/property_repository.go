package repository

import (
	"context"
	"time"

	"property-service/internal/model"
	"property-service/prometheus"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a lookup matches no live row
var ErrNotFound = errors.New("record not found")

// NotDeleted restricts a query to properties that have not been soft deleted.
// Every read of the properties table goes through it.
func NotDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("properties.deleted_at IS NULL")
}

// withChildren eager-loads the whole aggregate in a stable order
func withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_main DESC").Order("id ASC")
		}).
		Preload("Amenities", func(db *gorm.DB) *gorm.DB {
			return db.Order("name ASC")
		}).
		Preload("HouseRules", func(db *gorm.DB) *gorm.DB {
			return db.Order("name ASC")
		}).
		Preload("Specifications").
		Preload("DetailedLocation")
}

// PropertyStore is the persistence boundary of the property aggregate. The
// store handed to a Transaction callback runs every call on that transaction.
type PropertyStore interface {
	Transaction(ctx context.Context, fn func(store PropertyStore) error) error

	CreateProperty(ctx context.Context, property *model.Property) error
	FindActive(ctx context.Context, id uuid.UUID) (*model.Property, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (int64, error)
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) (int64, error)

	InsertImages(ctx context.Context, images []model.PropertyImage) error
	DeleteImages(ctx context.Context, propertyID uuid.UUID) error
	InsertAmenityLinks(ctx context.Context, propertyID uuid.UUID, amenityIDs []uint) error
	DeleteAmenityLinks(ctx context.Context, propertyID uuid.UUID) error
	InsertHouseRuleLinks(ctx context.Context, propertyID uuid.UUID, houseRuleIDs []uint) error
	DeleteHouseRuleLinks(ctx context.Context, propertyID uuid.UUID) error

	FindSpecifications(ctx context.Context, propertyID uuid.UUID) (*model.PropertySpecifications, error)
	SaveSpecifications(ctx context.Context, specs *model.PropertySpecifications) error
	FindDetailedLocation(ctx context.Context, propertyID uuid.UUID) (*model.PropertyDetailedLocation, error)
	SaveDetailedLocation(ctx context.Context, location *model.PropertyDetailedLocation) error

	LoadAggregate(ctx context.Context, id uuid.UUID) (*model.Property, error)
	List(ctx context.Context, query ListQuery) ([]model.Property, int64, error)
}

// ListQuery is a filtered, paginated read of live properties. Nil filters are ignored.
type ListQuery struct {
	Status           *model.PropertyStatus
	Type             *model.PropertyType
	Furnishing       *model.Furnishing
	TargetTenant     *model.TargetTenant
	MinPrice         *float64
	MaxPrice         *float64
	LandlordID       *uuid.UUID
	AvailabilityDate *datatypes.Date
	Offset           int
	Limit            int
}

func (q ListQuery) filters(db *gorm.DB) *gorm.DB {
	if q.Status != nil {
		db = db.Where("properties.status = ?", *q.Status)
	}
	if q.Type != nil {
		db = db.Where("properties.type = ?", *q.Type)
	}
	if q.Furnishing != nil {
		db = db.Where("properties.furnishing = ?", *q.Furnishing)
	}
	if q.TargetTenant != nil {
		db = db.Where("properties.target_tenant = ?", *q.TargetTenant)
	}
	if q.MinPrice != nil {
		db = db.Where("properties.monthly_price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		db = db.Where("properties.monthly_price <= ?", *q.MaxPrice)
	}
	if q.LandlordID != nil {
		db = db.Where("properties.landlord_id = ?", *q.LandlordID)
	}
	if q.AvailabilityDate != nil {
		db = db.Where("properties.availability_date = ?", *q.AvailabilityDate)
	}
	return db
}

// PropertyRepository implements PropertyStore on gorm
type PropertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

// Transaction runs fn on a store bound to one database transaction. The
// transaction is rolled back when fn returns an error, which is returned as is.
func (r *PropertyRepository) Transaction(ctx context.Context, fn func(store PropertyStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PropertyRepository{db: tx})
	})
}

// CreateProperty inserts the property row only; children are written separately
func (r *PropertyRepository) CreateProperty(ctx context.Context, property *model.Property) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(property).Error; err != nil {
		return errors.Wrap(err, "failed to insert property")
	}
	return nil
}

// FindActive loads the property row without children
func (r *PropertyRepository) FindActive(ctx context.Context, id uuid.UUID) (*model.Property, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var property model.Property
	err := r.db.WithContext(ctx).Scopes(NotDeleted).Where("properties.id = ?", id).First(&property).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "failed to load property %s", id)
	}
	return &property, nil
}

// UpdateFields writes the given columns of a live property and reports how many
// rows matched. Zero means the property is gone or was deleted concurrently.
func (r *PropertyRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())

	result := r.db.WithContext(ctx).
		Model(&model.Property{}).
		Scopes(NotDeleted).
		Where("properties.id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return 0, errors.Wrapf(result.Error, "failed to update property %s", id)
	}
	return result.RowsAffected, nil
}

// SoftDelete stamps deleted_at on a live property
func (r *PropertyRepository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) (int64, error) {
	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := r.db.WithContext(ctx).
		Model(&model.Property{}).
		Scopes(NotDeleted).
		Where("properties.id = ?", id).
		UpdateColumn("deleted_at", at)
	if result.Error != nil {
		return 0, errors.Wrapf(result.Error, "failed to delete property %s", id)
	}
	return result.RowsAffected, nil
}

func (r *PropertyRepository) InsertImages(ctx context.Context, images []model.PropertyImage) error {
	if len(images) == 0 {
		return nil
	}
	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := r.db.WithContext(ctx).Create(&images).Error; err != nil {
		return errors.Wrap(err, "failed to insert property images")
	}
	return nil
}

func (r *PropertyRepository) DeleteImages(ctx context.Context, propertyID uuid.UUID) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())

	err := r.db.WithContext(ctx).Where("property_id = ?", propertyID).Delete(&model.PropertyImage{}).Error
	if err != nil {
		return errors.Wrap(err, "failed to delete property images")
	}
	return nil
}

func (r *PropertyRepository) InsertAmenityLinks(ctx context.Context, propertyID uuid.UUID, amenityIDs []uint) error {
	if len(amenityIDs) == 0 {
		return nil
	}
	defer prometheus.TrackDBOperation("insert")(time.Now())

	links := make([]model.PropertyAmenity, 0, len(amenityIDs))
	for _, id := range amenityIDs {
		links = append(links, model.PropertyAmenity{PropertyID: propertyID, AmenityID: id})
	}
	if err := r.db.WithContext(ctx).Create(&links).Error; err != nil {
		return errors.Wrap(err, "failed to link amenities")
	}
	return nil
}

func (r *PropertyRepository) DeleteAmenityLinks(ctx context.Context, propertyID uuid.UUID) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())

	err := r.db.WithContext(ctx).Where("property_id = ?", propertyID).Delete(&model.PropertyAmenity{}).Error
	if err != nil {
		return errors.Wrap(err, "failed to unlink amenities")
	}
	return nil
}

func (r *PropertyRepository) InsertHouseRuleLinks(ctx context.Context, propertyID uuid.UUID, houseRuleIDs []uint) error {
	if len(houseRuleIDs) == 0 {
		return nil
	}
	defer prometheus.TrackDBOperation("insert")(time.Now())

	links := make([]model.PropertyHouseRule, 0, len(houseRuleIDs))
	for _, id := range houseRuleIDs {
		links = append(links, model.PropertyHouseRule{PropertyID: propertyID, HouseRuleID: id})
	}
	if err := r.db.WithContext(ctx).Create(&links).Error; err != nil {
		return errors.Wrap(err, "failed to link house rules")
	}
	return nil
}

func (r *PropertyRepository) DeleteHouseRuleLinks(ctx context.Context, propertyID uuid.UUID) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())

	err := r.db.WithContext(ctx).Where("property_id = ?", propertyID).Delete(&model.PropertyHouseRule{}).Error
	if err != nil {
		return errors.Wrap(err, "failed to unlink house rules")
	}
	return nil
}

func (r *PropertyRepository) FindSpecifications(ctx context.Context, propertyID uuid.UUID) (*model.PropertySpecifications, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var specs model.PropertySpecifications
	err := r.db.WithContext(ctx).Where("property_id = ?", propertyID).First(&specs).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to load specifications")
	}
	return &specs, nil
}

// SaveSpecifications inserts the record when it has no id yet, otherwise overwrites it
func (r *PropertyRepository) SaveSpecifications(ctx context.Context, specs *model.PropertySpecifications) error {
	defer prometheus.TrackDBOperation("upsert")(time.Now())

	if err := r.db.WithContext(ctx).Save(specs).Error; err != nil {
		return errors.Wrap(err, "failed to save specifications")
	}
	return nil
}

func (r *PropertyRepository) FindDetailedLocation(ctx context.Context, propertyID uuid.UUID) (*model.PropertyDetailedLocation, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var location model.PropertyDetailedLocation
	err := r.db.WithContext(ctx).Where("property_id = ?", propertyID).First(&location).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to load detailed location")
	}
	return &location, nil
}

func (r *PropertyRepository) SaveDetailedLocation(ctx context.Context, location *model.PropertyDetailedLocation) error {
	defer prometheus.TrackDBOperation("upsert")(time.Now())

	if err := r.db.WithContext(ctx).Save(location).Error; err != nil {
		return errors.Wrap(err, "failed to save detailed location")
	}
	return nil
}

// LoadAggregate loads a live property with all of its children
func (r *PropertyRepository) LoadAggregate(ctx context.Context, id uuid.UUID) (*model.Property, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var property model.Property
	err := r.db.WithContext(ctx).
		Scopes(NotDeleted, withChildren).
		Where("properties.id = ?", id).
		First(&property).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "failed to load property %s", id)
	}
	return &property, nil
}

// List returns one page of live properties, newest first, and the number of
// rows matching the filters before pagination.
func (r *PropertyRepository) List(ctx context.Context, query ListQuery) ([]model.Property, int64, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Property{}).
		Scopes(NotDeleted, query.filters).
		Count(&total).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to count properties")
	}

	properties := []model.Property{}
	if total == 0 {
		return properties, 0, nil
	}

	err = r.db.WithContext(ctx).
		Scopes(NotDeleted, query.filters, withChildren).
		Order("properties.created_at DESC").
		Order("properties.id DESC").
		Offset(query.Offset).
		Limit(query.Limit).
		Find(&properties).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list properties")
	}

	return properties, total, nil
}
