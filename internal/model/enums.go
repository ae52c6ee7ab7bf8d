package model

import "strings"

// PropertyType is the kind of dwelling a listing describes
type PropertyType string

const (
	PropertyTypeApartment PropertyType = "APARTMENT"
	PropertyTypeVilla     PropertyType = "VILLA"
	PropertyTypeStudio    PropertyType = "STUDIO"
	PropertyTypeChalet    PropertyType = "CHALET"
)

// Furnishing describes how furnished a property is
type Furnishing string

const (
	FurnishingFully       Furnishing = "FULLY"
	FurnishingSemi        Furnishing = "SEMI"
	FurnishingUnfurnished Furnishing = "UNFURNISHED"
)

// PropertyStatus is the publication state of a listing
type PropertyStatus string

const (
	PropertyStatusDraft     PropertyStatus = "DRAFT"
	PropertyStatusPublished PropertyStatus = "PUBLISHED"
	PropertyStatusRented    PropertyStatus = "RENTED"
)

// TargetTenant is the audience a listing is aimed at
type TargetTenant string

const (
	TargetTenantAny      TargetTenant = "ANY"
	TargetTenantStudents TargetTenant = "STUDENTS"
	TargetTenantFamilies TargetTenant = "FAMILIES"
	TargetTenantTourists TargetTenant = "TOURISTS"
)

// UserRole is the role a user holds on the platform
type UserRole string

const (
	RoleLandlord UserRole = "LANDLORD"
	RoleTenant   UserRole = "TENANT"
	RoleAdmin    UserRole = "ADMIN"
)

func (t PropertyType) Valid() bool {
	switch t {
	case PropertyTypeApartment, PropertyTypeVilla, PropertyTypeStudio, PropertyTypeChalet:
		return true
	}
	return false
}

func (f Furnishing) Valid() bool {
	switch f {
	case FurnishingFully, FurnishingSemi, FurnishingUnfurnished:
		return true
	}
	return false
}

func (s PropertyStatus) Valid() bool {
	switch s {
	case PropertyStatusDraft, PropertyStatusPublished, PropertyStatusRented:
		return true
	}
	return false
}

func (t TargetTenant) Valid() bool {
	switch t {
	case TargetTenantAny, TargetTenantStudents, TargetTenantFamilies, TargetTenantTourists:
		return true
	}
	return false
}

// Normalize upper-cases and trims enum input, so "Published" and "PUBLISHED"
// name the same value.
func Normalize[T ~string](v T) T {
	return T(strings.ToUpper(strings.TrimSpace(string(v))))
}
