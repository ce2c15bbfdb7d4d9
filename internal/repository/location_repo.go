package repository

import (
	"context"
	"errors"
	"log"
	"time"

	"paired/internal/database"
	"paired/internal/models"
	"paired/internal/realtime"

	"gorm.io/gorm"
)

var (
	// ErrNotFound signals that no location record exists for the user yet.
	ErrNotFound = errors.New("record not found")
	// ErrHomeUnsupported signals that this deployment's schema predates the
	// home anchor columns. Soft condition; callers degrade, never crash.
	ErrHomeUnsupported = errors.New("home anchor not supported by schema")
)

// LocationRepository owns the single UserLocation record per user. Writes are
// upsert-by-user-id, last write wins. Successful writes are announced on the
// change bus so peers can refetch.
type LocationRepository struct {
	db       *gorm.DB
	features database.Features
	bus      realtime.Bus
	now      func() time.Time
}

func NewLocationRepository(db *gorm.DB, features database.Features, bus realtime.Bus) *LocationRepository {
	return &LocationRepository{db: db, features: features, bus: bus, now: time.Now}
}

func (r *LocationRepository) GetByUserID(userID uint) (*models.UserLocation, error) {
	var loc models.UserLocation
	err := r.db.Where("user_id = ?", userID).First(&loc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !r.features.HomeAnchor {
		loc.HomeLatitude, loc.HomeLongitude, loc.HomeAddress = nil, nil, nil
	}
	return &loc, nil
}

// UpsertCurrent writes the live position, stamping last_updated_at and
// is_online. Home fields on an existing record are left untouched. The record
// is created on first write.
func (r *LocationRepository) UpsertCurrent(userID uint, lat, lng float64, address *string) (*models.UserLocation, error) {
	loc, err := r.GetByUserID(userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if loc == nil {
		loc = &models.UserLocation{UserID: userID}
	}
	loc.Latitude = lat
	loc.Longitude = lng
	loc.Address = address
	loc.IsOnline = true
	loc.LastUpdatedAt = r.now()
	tx := r.db
	if !r.features.HomeAnchor {
		// Old schema: the home columns do not exist, keep them out of the
		// generated INSERT/UPDATE.
		tx = tx.Omit("HomeLatitude", "HomeLongitude", "HomeAddress")
	}
	if err := tx.Save(loc).Error; err != nil {
		return nil, err
	}
	r.announce(userID)
	return loc, nil
}

// SetHome writes only the home anchor fields. It refuses to create a record:
// a UserLocation must always carry a valid current position, so the current
// position has to be established first.
func (r *LocationRepository) SetHome(userID uint, lat, lng float64, address *string) (*models.UserLocation, error) {
	if !r.features.HomeAnchor {
		return nil, ErrHomeUnsupported
	}
	loc, err := r.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	err = r.db.Model(loc).
		Select("home_latitude", "home_longitude", "home_address").
		Updates(map[string]interface{}{
			"home_latitude":  lat,
			"home_longitude": lng,
			"home_address":   address,
		}).Error
	if err != nil {
		return nil, err
	}
	loc.HomeLatitude = &lat
	loc.HomeLongitude = &lng
	loc.HomeAddress = address
	r.announce(userID)
	return loc, nil
}

func (r *LocationRepository) announce(userID uint) {
	if r.bus == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.bus.Publish(ctx, models.UserLocation{}.TableName(), userID); err != nil {
		log.Printf("[location] publish change for user %d: %v", userID, err)
	}
}
