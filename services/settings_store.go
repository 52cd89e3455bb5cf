package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/igtharvillage/thar-api/config"
	"github.com/igtharvillage/thar-api/model"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSettingNotFound is returned by Get for an unknown key
var ErrSettingNotFound = errors.New("setting not found")

// SettingsChannel is the notification channel for settings changes
const SettingsChannel = "site_settings_changed"

// Notifier publishes a change notification to other instances
type Notifier interface {
	Notify(ctx context.Context, channel, payload string) error
}

// DefaultSiteSettings are served when the settings rows cannot be read
func DefaultSiteSettings(env *config.EnvironmentVariable) model.SiteSettings {
	defaults := model.SiteSettings{
		SiteName:   "IG Thar Village",
		Tagline:    "Farm stays and desert experiences in the Thar",
		Address:    "Jaisalmer, Rajasthan, India",
		Email:      "hello@igtharvillage.com",
		IsLaunched: false,
	}
	if env == nil {
		return defaults
	}
	if env.SITE_NAME != "" {
		defaults.SiteName = env.SITE_NAME
	}
	if env.SITE_TAGLINE != "" {
		defaults.Tagline = env.SITE_TAGLINE
	}
	if env.SITE_EMAIL != "" {
		defaults.Email = env.SITE_EMAIL
	}
	if env.SITE_PHONE != "" {
		defaults.Phone = env.SITE_PHONE
	}
	return defaults
}

// SettingsStore holds the site settings snapshot shared by every request.
// It is built once at startup and passed to whoever needs it.
type SettingsStore struct {
	db       *gorm.DB
	defaults model.SiteSettings
	notifier Notifier
	now      func() time.Time

	mu      sync.RWMutex
	current model.SiteSettings
}

func NewSettingsStore(db *gorm.DB, defaults model.SiteSettings, notifier Notifier) *SettingsStore {
	return &SettingsStore{
		db:       db,
		defaults: defaults,
		notifier: notifier,
		now:      time.Now,
		current:  defaults,
	}
}

// Current returns a copy of the snapshot
func (s *SettingsStore) Current() model.SiteSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Load reads the settings rows into the snapshot. Read failures are logged
// and leave the defaults in place.
func (s *SettingsStore) Load(ctx context.Context) model.SiteSettings {
	settings, err := s.read(ctx)
	if err != nil {
		zap.S().Errorf("[SETTINGS] failed to load site settings, using defaults: %v", err)
		settings = s.defaults
	}

	s.mu.Lock()
	s.current = settings
	s.mu.Unlock()
	return settings
}

func (s *SettingsStore) read(ctx context.Context) (model.SiteSettings, error) {
	var rows []model.AppSetting
	if err := s.db.WithContext(ctx).
		Where("category = ?", model.SettingCategorySite).
		Find(&rows).Error; err != nil {
		return model.SiteSettings{}, err
	}
	if len(rows) == 0 {
		return model.SiteSettings{}, errors.New("no site settings stored")
	}

	settings := s.defaults
	values := make(map[string]interface{}, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
		if settings.CreatedAt.IsZero() || row.CreatedAt.Before(settings.CreatedAt) {
			settings.CreatedAt = row.CreatedAt
		}
		if row.UpdatedAt.After(settings.UpdatedAt) {
			settings.UpdatedAt = row.UpdatedAt
		}
	}

	if err := mapstructure.WeakDecode(values, &settings); err != nil {
		return model.SiteSettings{}, fmt.Errorf("failed to decode site settings: %w", err)
	}
	return settings, nil
}

// Update writes the supplied fields, refreshes the snapshot and tells other
// instances to reload
func (s *SettingsStore) Update(ctx context.Context, patch model.SiteSettingsPatch) (model.SiteSettings, error) {
	var fields map[string]interface{}
	if err := mapstructure.Decode(patch, &fields); err != nil {
		return model.SiteSettings{}, fmt.Errorf("failed to read settings patch: %w", err)
	}
	if len(fields) == 0 {
		return s.Current(), nil
	}

	now := s.now().UTC()
	rows := make([]model.AppSetting, 0, len(fields))
	for key, value := range fields {
		valueType := "string"
		if _, ok := value.(*bool); ok {
			valueType = "bool"
		}
		rows = append(rows, model.AppSetting{
			Key:       key,
			Value:     cast.ToString(value),
			Type:      valueType,
			IsPublic:  true,
			Category:  model.SettingCategorySite,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "type", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return model.SiteSettings{}, fmt.Errorf("failed to save site settings: %w", err)
	}

	settings := s.Load(ctx)

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, SettingsChannel, now.Format(time.RFC3339Nano)); err != nil {
			zap.S().Warnf("[SETTINGS] failed to notify other instances: %v", err)
		}
	}
	return settings, nil
}

// All returns every stored setting row
func (s *SettingsStore) All(ctx context.Context) ([]model.AppSetting, error) {
	settings := []model.AppSetting{}
	if err := s.db.WithContext(ctx).Order("category ASC, key ASC").Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// Get returns one stored setting row
func (s *SettingsStore) Get(ctx context.Context, key string) (*model.AppSetting, error) {
	var setting model.AppSetting
	if err := s.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}
		return nil, err
	}
	return &setting, nil
}
