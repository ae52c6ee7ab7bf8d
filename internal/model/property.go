package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Property is the aggregate root of a rental listing. DeletedAt is a plain
// nullable column; reads filter it explicitly (see repository.NotDeleted)
// instead of relying on gorm's soft-delete mode.
type Property struct {
	ID               uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	LandlordID       uuid.UUID       `json:"landlord_id" gorm:"type:char(36);index;not null"`
	Title            string          `json:"title" gorm:"type:varchar(255);not null"`
	Description      string          `json:"description" gorm:"type:text"`
	MonthlyPrice     float64         `json:"monthly_price" gorm:"type:decimal(12,2);not null;index"`
	SecurityDeposit  float64         `json:"security_deposit" gorm:"type:decimal(12,2);not null;default:0"`
	Address          string          `json:"address" gorm:"type:varchar(500);not null"`
	Type             *PropertyType   `json:"type" gorm:"type:varchar(20);index"`
	Furnishing       *Furnishing     `json:"furnishing" gorm:"type:varchar(20);index"`
	Status           PropertyStatus  `json:"status" gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	TargetTenant     TargetTenant    `json:"target_tenant" gorm:"type:varchar(20);not null;default:'ANY';index"`
	AvailabilityDate *datatypes.Date `json:"availability_date" gorm:"index"`
	CreatedAt        time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        *time.Time      `json:"-" gorm:"index"`

	Images           []PropertyImage           `json:"images" gorm:"foreignKey:PropertyID"`
	Amenities        []Amenity                 `json:"amenities" gorm:"many2many:property_amenities;joinForeignKey:PropertyID;joinReferences:AmenityID"`
	HouseRules       []HouseRule               `json:"house_rules" gorm:"many2many:property_house_rules;joinForeignKey:PropertyID;joinReferences:HouseRuleID"`
	Specifications   *PropertySpecifications   `json:"specifications" gorm:"foreignKey:PropertyID"`
	DetailedLocation *PropertyDetailedLocation `json:"detailed_location" gorm:"foreignKey:PropertyID"`
}

// BeforeCreate assigns the identifier when the caller did not
func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PropertyImage is one picture of a property; at most one per property is main
type PropertyImage struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	PropertyID uuid.UUID `json:"property_id" gorm:"type:char(36);index;not null"`
	ImageURL   string    `json:"image_url" gorm:"type:text;not null"`
	IsMain     bool      `json:"is_main" gorm:"not null;default:false"`
}

// PropertySpecifications holds the physical specification of a property
type PropertySpecifications struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	PropertyID       uuid.UUID `json:"property_id" gorm:"type:char(36);uniqueIndex;not null"`
	Bedrooms         int       `json:"bedrooms" gorm:"not null"`
	Bathrooms        int       `json:"bathrooms" gorm:"not null"`
	Floor            int       `json:"floor" gorm:"not null"`
	ParkingSpaces    int       `json:"parking_spaces" gorm:"not null;default:0"`
	AreaSqft         float64   `json:"area_sqft" gorm:"type:decimal(10,2);not null"`
	DetailedLocation string    `json:"detailed_location" gorm:"type:text"`
}

// PropertyDetailedLocation is the optional structured address of a property
type PropertyDetailedLocation struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	PropertyID     uuid.UUID `json:"property_id" gorm:"type:char(36);uniqueIndex;not null"`
	Floor          *int      `json:"floor"`
	City           string    `json:"city" gorm:"type:varchar(100)"`
	Area           string    `json:"area" gorm:"type:varchar(100)"`
	StreetName     string    `json:"street_name" gorm:"type:varchar(255)"`
	BuildingNumber string    `json:"building_number" gorm:"type:varchar(50)"`
	UnitApt        string    `json:"unit_apt" gorm:"type:varchar(50)"`
	LocationLat    *float64  `json:"location_lat" gorm:"type:decimal(9,6)"`
	LocationLong   *float64  `json:"location_long" gorm:"type:decimal(9,6)"`
}

// TableName keeps the one-to-one tables consistently pluralised
func (PropertySpecifications) TableName() string { return "property_specifications" }

func (PropertyDetailedLocation) TableName() string { return "property_detailed_locations" }
