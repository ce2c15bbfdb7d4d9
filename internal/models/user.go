package models

import (
	"time"

	"paired/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Email       string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	DisplayName string         `gorm:"size:100" json:"display_name"`
	// PartnerID links the two halves of a pair; each side points at the other.
	PartnerID  *uint          `gorm:"index" json:"partner_id"`
	LastSeenAt *time.Time     `gorm:"index" json:"last_seen_at"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return domain.TableUsers
}
