package service

import (
	"time"

	"property-service/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Replacement is an optional update of a whole child collection. The zero
// value leaves the collection alone; a set Replacement swaps it for Values,
// and an empty set clears it.
type Replacement[T any] struct {
	set    bool
	values []T
}

// Replace builds a set Replacement
func Replace[T any](values ...T) Replacement[T] {
	if values == nil {
		values = []T{}
	}
	return Replacement[T]{set: true, values: values}
}

func (r Replacement[T]) IsSet() bool { return r.set }

func (r Replacement[T]) Values() []T { return r.values }

// ImageInput describes one image of a property
type ImageInput struct {
	URL    string `validate:"required,max=2048"`
	IsMain bool
}

// SpecificationsInput is the complete specification required on create
type SpecificationsInput struct {
	Bedrooms         int     `validate:"gte=0"`
	Bathrooms        int     `validate:"gte=0"`
	Floor            int
	ParkingSpaces    int     `validate:"gte=0"`
	AreaSqft         float64 `validate:"gt=0"`
	DetailedLocation string
}

// DetailedLocationInput is the structured address. On update only the non-nil
// fields are merged into the stored record.
type DetailedLocationInput struct {
	Floor          *int
	City           *string  `validate:"omitempty,max=100"`
	Area           *string  `validate:"omitempty,max=100"`
	StreetName     *string  `validate:"omitempty,max=255"`
	BuildingNumber *string  `validate:"omitempty,max=50"`
	UnitApt        *string  `validate:"omitempty,max=50"`
	LocationLat    *float64 `validate:"omitempty,gte=-90,lte=90"`
	LocationLong   *float64 `validate:"omitempty,gte=-180,lte=180"`
}

// Coordinates is a point on the map
type Coordinates struct {
	Lat  float64 `validate:"gte=-90,lte=90"`
	Long float64 `validate:"gte=-180,lte=180"`
}

// CreatePropertyInput carries everything needed to create a listing
type CreatePropertyInput struct {
	Title            string  `validate:"required,max=255"`
	Description      string  `validate:"max=10000"`
	MonthlyPrice     float64 `validate:"gt=0"`
	SecurityDeposit  float64 `validate:"gte=0"`
	Address          string  `validate:"required,max=500"`
	Type             *model.PropertyType `validate:"omitempty,enum"`
	Furnishing       *model.Furnishing   `validate:"omitempty,enum"`
	TargetTenant     *model.TargetTenant `validate:"omitempty,enum"`
	AvailabilityDate *time.Time
	Images           []ImageInput `validate:"required,min=1,dive"`
	AmenityNames     []string     `validate:"dive,required"`
	HouseRuleNames   []string     `validate:"dive,required"`
	Specifications   SpecificationsInput
	DetailedLocation *DetailedLocationInput `validate:"omitempty"`
}

func (in *CreatePropertyInput) normalize() {
	in.Type = normalizeEnum(in.Type)
	in.Furnishing = normalizeEnum(in.Furnishing)
	in.TargetTenant = normalizeEnum(in.TargetTenant)
}

// SpecificationsPatch merges field by field into the stored specifications
type SpecificationsPatch struct {
	Bedrooms         *int     `validate:"omitempty,gte=0"`
	Bathrooms        *int     `validate:"omitempty,gte=0"`
	Floor            *int
	ParkingSpaces    *int     `validate:"omitempty,gte=0"`
	AreaSqft         *float64 `validate:"omitempty,gt=0"`
	DetailedLocation *string
}

func (p *SpecificationsPatch) apply(specs *model.PropertySpecifications) {
	if p.Bedrooms != nil {
		specs.Bedrooms = *p.Bedrooms
	}
	if p.Bathrooms != nil {
		specs.Bathrooms = *p.Bathrooms
	}
	if p.Floor != nil {
		specs.Floor = *p.Floor
	}
	if p.ParkingSpaces != nil {
		specs.ParkingSpaces = *p.ParkingSpaces
	}
	if p.AreaSqft != nil {
		specs.AreaSqft = *p.AreaSqft
	}
	if p.DetailedLocation != nil {
		specs.DetailedLocation = *p.DetailedLocation
	}
}

func (in *DetailedLocationInput) apply(location *model.PropertyDetailedLocation) {
	if in.Floor != nil {
		location.Floor = in.Floor
	}
	if in.City != nil {
		location.City = *in.City
	}
	if in.Area != nil {
		location.Area = *in.Area
	}
	if in.StreetName != nil {
		location.StreetName = *in.StreetName
	}
	if in.BuildingNumber != nil {
		location.BuildingNumber = *in.BuildingNumber
	}
	if in.UnitApt != nil {
		location.UnitApt = *in.UnitApt
	}
	if in.LocationLat != nil {
		location.LocationLat = in.LocationLat
	}
	if in.LocationLong != nil {
		location.LocationLong = in.LocationLong
	}
}

// UpdatePropertyInput is a partial update. Nil scalars are left untouched,
// collections follow Replacement, and the patches merge into their records.
type UpdatePropertyInput struct {
	Title            *string  `validate:"omitempty,min=1,max=255"`
	Description      *string  `validate:"omitempty,max=10000"`
	MonthlyPrice     *float64 `validate:"omitempty,gt=0"`
	SecurityDeposit  *float64 `validate:"omitempty,gte=0"`
	Address          *string  `validate:"omitempty,min=1,max=500"`
	Coordinates      *Coordinates
	Type             *model.PropertyType   `validate:"omitempty,enum"`
	Furnishing       *model.Furnishing     `validate:"omitempty,enum"`
	Status           *model.PropertyStatus `validate:"omitempty,enum"`
	TargetTenant     *model.TargetTenant   `validate:"omitempty,enum"`
	AvailabilityDate *time.Time

	Images         Replacement[ImageInput]
	AmenityNames   Replacement[string]
	HouseRuleNames Replacement[string]

	Specifications   *SpecificationsPatch   `validate:"omitempty"`
	DetailedLocation *DetailedLocationInput `validate:"omitempty"`
}

func (in *UpdatePropertyInput) normalize() {
	in.Type = normalizeEnum(in.Type)
	in.Furnishing = normalizeEnum(in.Furnishing)
	in.Status = normalizeEnum(in.Status)
	in.TargetTenant = normalizeEnum(in.TargetTenant)
}

// scalarFields returns the property columns the update writes
func (in *UpdatePropertyInput) scalarFields() map[string]interface{} {
	fields := map[string]interface{}{}
	if in.Title != nil {
		fields["title"] = *in.Title
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.MonthlyPrice != nil {
		fields["monthly_price"] = *in.MonthlyPrice
	}
	if in.SecurityDeposit != nil {
		fields["security_deposit"] = *in.SecurityDeposit
	}
	if in.Address != nil {
		fields["address"] = *in.Address
	}
	if in.Type != nil {
		fields["type"] = *in.Type
	}
	if in.Furnishing != nil {
		fields["furnishing"] = *in.Furnishing
	}
	if in.Status != nil {
		fields["status"] = *in.Status
	}
	if in.TargetTenant != nil {
		fields["target_tenant"] = *in.TargetTenant
	}
	if in.AvailabilityDate != nil {
		fields["availability_date"] = *dateOnly(in.AvailabilityDate)
	}
	return fields
}

// locationPatch folds Coordinates into the detailed location patch
func (in *UpdatePropertyInput) locationPatch() *DetailedLocationInput {
	if in.DetailedLocation == nil && in.Coordinates == nil {
		return nil
	}

	patch := DetailedLocationInput{}
	if in.DetailedLocation != nil {
		patch = *in.DetailedLocation
	}
	if in.Coordinates != nil {
		lat, long := in.Coordinates.Lat, in.Coordinates.Long
		patch.LocationLat = &lat
		patch.LocationLong = &long
	}
	return &patch
}

// ListFilter selects a page of live properties. Nil filters match everything;
// zero Page and Limit fall back to 1 and 10.
type ListFilter struct {
	Status           *model.PropertyStatus `validate:"omitempty,enum"`
	Type             *model.PropertyType   `validate:"omitempty,enum"`
	Furnishing       *model.Furnishing     `validate:"omitempty,enum"`
	TargetTenant     *model.TargetTenant   `validate:"omitempty,enum"`
	MinPrice         *float64              `validate:"omitempty,gte=0"`
	MaxPrice         *float64              `validate:"omitempty,gte=0"`
	LandlordID       *uuid.UUID
	AvailabilityDate *time.Time
	Page             int `validate:"gte=0"`
	Limit            int `validate:"gte=0,lte=100"`
}

func (f *ListFilter) normalize() {
	f.Status = normalizeEnum(f.Status)
	f.Type = normalizeEnum(f.Type)
	f.Furnishing = normalizeEnum(f.Furnishing)
	f.TargetTenant = normalizeEnum(f.TargetTenant)
	if f.Page == 0 {
		f.Page = DefaultPage
	}
	if f.Limit == 0 {
		f.Limit = DefaultLimit
	}
}

// Pagination describes the page a list call returned
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// ListResult is one page of properties
type ListResult struct {
	Items      []model.Property `json:"items"`
	Pagination Pagination       `json:"pagination"`
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

func normalizeEnum[T ~string](v *T) *T {
	if v == nil {
		return nil
	}
	n := model.Normalize(*v)
	return &n
}

// dateOnly truncates to the calendar date in UTC
func dateOnly(t *time.Time) *datatypes.Date {
	if t == nil {
		return nil
	}
	y, m, d := t.Date()
	date := datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	return &date
}
