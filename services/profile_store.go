package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/igtharvillage/thar-api/model"
	"gorm.io/gorm"
)

// ErrProfileNotFound is returned when no profile exists for a uid
var ErrProfileNotFound = errors.New("profile not found")

// ProfileStore reads and writes user profiles keyed by identity uid
type ProfileStore struct {
	db *gorm.DB
}

func NewProfileStore(db *gorm.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// RoleOf returns the role recorded for uid. found is false when there is no
// profile.
func (s *ProfileStore) RoleOf(ctx context.Context, uid string) (role string, found bool, err error) {
	var profile model.UserProfile
	err = s.db.WithContext(ctx).Select("role").Where("id = ?", uid).Take(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return profile.Role, true, nil
}

// Get returns the full profile of uid
func (s *ProfileStore) Get(ctx context.Context, uid string) (*model.UserProfile, error) {
	var profile model.UserProfile
	if err := s.db.WithContext(ctx).Where("id = ?", uid).Take(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// Create inserts a new profile
func (s *ProfileStore) Create(ctx context.Context, profile *model.UserProfile) error {
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// TouchLastLogin records a successful login time
func (s *ProfileStore) TouchLastLogin(ctx context.Context, uid string, at time.Time) error {
	result := s.db.WithContext(ctx).
		Model(&model.UserProfile{}).
		Where("id = ?", uid).
		Update("last_login", at.UTC())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// SetRole changes the role of uid
func (s *ProfileStore) SetRole(ctx context.Context, uid, role string) error {
	result := s.db.WithContext(ctx).
		Model(&model.UserProfile{}).
		Where("id = ?", uid).
		Update("role", role)
	if result.Error != nil {
		return fmt.Errorf("failed to update role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// List returns profiles ordered by creation, newest first, optionally
// narrowed to one role
func (s *ProfileStore) List(ctx context.Context, role string, page, limit int) ([]model.UserProfile, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.UserProfile{})
	if role != "" {
		query = query.Where("role = ?", role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	profiles := []model.UserProfile{}
	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&profiles).Error; err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

// SetDisplayName changes the display name of uid; an empty name clears it
func (s *ProfileStore) SetDisplayName(ctx context.Context, uid, name string) error {
	var value interface{}
	if name != "" {
		value = name
	}
	result := s.db.WithContext(ctx).
		Model(&model.UserProfile{}).
		Where("id = ?", uid).
		Update("display_name", value)
	if result.Error != nil {
		return fmt.Errorf("failed to update display name: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}
