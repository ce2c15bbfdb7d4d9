package models

import (
	"time"

	"paired/internal/domain"

	"gorm.io/gorm"
)

// UserLocation is the single location record per user: live position plus an
// optional fixed home anchor. Separate lat/lng columns keep it portable and
// Haversine-friendly. Home fields and current-position fields are written by
// disjoint operations and must never clobber each other.
type UserLocation struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	Latitude      float64        `gorm:"type:decimal(10,8);not null" json:"latitude"`
	Longitude     float64        `gorm:"type:decimal(11,8);not null" json:"longitude"`
	Address       *string        `gorm:"size:255" json:"address"`
	IsOnline      bool           `gorm:"default:false" json:"is_online"`
	LastUpdatedAt time.Time      `gorm:"not null;index" json:"last_updated_at"`
	HomeLatitude  *float64       `gorm:"type:decimal(10,8)" json:"home_latitude"`
	HomeLongitude *float64       `gorm:"type:decimal(11,8)" json:"home_longitude"`
	HomeAddress   *string        `gorm:"size:255" json:"home_address"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (UserLocation) TableName() string {
	return domain.TableUserLocations
}

// HasHome reports whether the home anchor has been set.
func (l *UserLocation) HasHome() bool {
	return l.HomeLatitude != nil && l.HomeLongitude != nil
}
