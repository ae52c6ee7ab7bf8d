package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a platform account. Rows are written by the auth service; this
// service only reads them to check landlord identity and role.
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Email     string    `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	Name      string    `json:"name" gorm:"type:varchar(255)"`
	Role      UserRole  `json:"role" gorm:"type:varchar(20);not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
