package database

import (
	"log"

	"paired/internal/models"

	"gorm.io/gorm"
)

// Features records which optional columns exist in this deployment. Older
// schemas predate the home-anchor and last_seen_at migrations; the probe runs
// once at startup and the flags gate the dependent writes, instead of every
// call swallowing a column error.
type Features struct {
	HomeAnchor bool
	LastSeen   bool
}

// ProbeFeatures inspects the live schema for optional columns.
func ProbeFeatures(db *gorm.DB) Features {
	m := db.Migrator()
	f := Features{
		HomeAnchor: m.HasColumn(&models.UserLocation{}, "home_latitude") &&
			m.HasColumn(&models.UserLocation{}, "home_longitude"),
		LastSeen: m.HasColumn(&models.User{}, "last_seen_at"),
	}
	if !f.HomeAnchor {
		log.Printf("[schema] home anchor columns missing; set-home disabled")
	}
	if !f.LastSeen {
		log.Printf("[schema] last_seen_at column missing; presence will read as offline")
	}
	return f
}
