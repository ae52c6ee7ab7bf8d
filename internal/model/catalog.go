package model

import "github.com/google/uuid"

// Amenity is an entry of the externally seeded amenity vocabulary
type Amenity struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
}

// HouseRule is an entry of the externally seeded house-rule vocabulary
type HouseRule struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
}

// PropertyAmenity links a property to an amenity
type PropertyAmenity struct {
	PropertyID uuid.UUID `gorm:"type:char(36);primaryKey"`
	AmenityID  uint      `gorm:"primaryKey"`
}

// PropertyHouseRule links a property to a house rule
type PropertyHouseRule struct {
	PropertyID  uuid.UUID `gorm:"type:char(36);primaryKey"`
	HouseRuleID uint      `gorm:"primaryKey"`
}
