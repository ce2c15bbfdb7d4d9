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

type UserRepository struct {
	db       *gorm.DB
	features database.Features
	bus      realtime.Bus
	now      func() time.Time
}

func NewUserRepository(db *gorm.DB, features database.Features, bus realtime.Bus) *UserRepository {
	return &UserRepository{db: db, features: features, bus: bus, now: time.Now}
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// PartnerOf resolves the other half of the user's pair.
func (r *UserRepository) PartnerOf(userID uint) (*models.User, error) {
	user, err := r.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user.PartnerID == nil {
		return nil, ErrNotFound
	}
	return r.GetByID(*user.PartnerID)
}

// TouchLastSeen is the heartbeat write: last_seen_at = now. On schemas
// without the column it is a no-op; the user simply reads as offline.
func (r *UserRepository) TouchLastSeen(userID uint) error {
	if !r.features.LastSeen {
		return nil
	}
	err := r.db.Model(&models.User{}).Where("id = ?", userID).
		Update("last_seen_at", r.now()).Error
	if err != nil {
		return err
	}
	r.announce(userID)
	return nil
}

// LastSeen reads the heartbeat timestamp; nil when the user has never beat
// or the deployment lacks the column.
func (r *UserRepository) LastSeen(userID uint) (*time.Time, error) {
	if !r.features.LastSeen {
		return nil, nil
	}
	user, err := r.GetByID(userID)
	if err != nil {
		return nil, err
	}
	return user.LastSeenAt, nil
}

func (r *UserRepository) announce(userID uint) {
	if r.bus == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.bus.Publish(ctx, models.User{}.TableName(), userID); err != nil {
		log.Printf("[user] publish change for user %d: %v", userID, err)
	}
}
