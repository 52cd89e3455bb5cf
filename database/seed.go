package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/igtharvillage/thar-api/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountCreator registers credentials with the identity provider and
// returns the new account's uid
type AccountCreator interface {
	CreateAccount(ctx context.Context, email, password string) (*model.Account, error)
}

// Seeder handles database seeding operations
type Seeder struct {
	db       *gorm.DB
	accounts AccountCreator
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, accounts AccountCreator) *Seeder {
	return &Seeder{db: db, accounts: accounts}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll(ctx context.Context, site model.SiteSettings, adminEmail, adminPassword string) error {
	zap.S().Info("[SEED] starting database seeding")

	if err := s.SeedSiteSettings(ctx, site); err != nil {
		return fmt.Errorf("failed to seed site settings: %w", err)
	}

	if err := s.SeedAdmin(ctx, adminEmail, adminPassword); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	zap.S().Info("[SEED] database seeding completed")
	return nil
}

// SeedSiteSettings writes one row per site setting. Existing rows are kept.
func (s *Seeder) SeedSiteSettings(ctx context.Context, site model.SiteSettings) error {
	now := time.Now().UTC()
	rows := []model.AppSetting{
		{Key: "site_name", Value: site.SiteName, Type: "string", Description: "Site name shown in the header"},
		{Key: "tagline", Value: site.Tagline, Type: "string", Description: "Tagline shown under the site name"},
		{Key: "logo_url", Value: site.LogoURL, Type: "string", Description: "Logo image URL"},
		{Key: "favicon_url", Value: site.FaviconURL, Type: "string", Description: "Favicon URL"},
		{Key: "address", Value: site.Address, Type: "string", Description: "Postal address in the footer"},
		{Key: "phone", Value: site.Phone, Type: "string", Description: "Contact phone number"},
		{Key: "email", Value: site.Email, Type: "string", Description: "Contact email address"},
		{Key: "is_launched", Value: fmt.Sprintf("%t", site.IsLaunched), Type: "bool", Description: "Whether the public site is live"},
	}
	for i := range rows {
		rows[i].IsPublic = true
		rows[i].Category = model.SettingCategorySite
		rows[i].CreatedAt = now
		rows[i].UpdatedAt = now
	}

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	if result.Error != nil {
		return result.Error
	}

	zap.S().Infof("[SEED] site settings: %d rows created", result.RowsAffected)
	return nil
}

// SeedAdmin creates the first admin account and its profile. It is skipped
// when credentials are not supplied or an admin profile already exists. An
// account left without a profile by an earlier run is reused.
func (s *Seeder) SeedAdmin(ctx context.Context, email, password string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.UserProfile{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		zap.S().Info("[SEED] admin profile already exists, skipping")
		return nil
	}

	if email == "" || password == "" {
		zap.S().Warn("[SEED] ADMIN_EMAIL and ADMIN_PASSWORD not set, skipping admin creation")
		return nil
	}

	account, err := s.adminAccount(ctx, email, password)
	if err != nil {
		return err
	}

	profile := &model.UserProfile{
		ID:        account.UID,
		Email:     account.Email,
		Role:      model.RoleAdmin,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(profile).Error; err != nil {
		return err
	}

	zap.S().Infof("[SEED] created admin user %s", profile.Email)
	return nil
}

func (s *Seeder) adminAccount(ctx context.Context, email, password string) (*model.Account, error) {
	var existing model.Account
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&existing).Error
	switch {
	case err == nil:
		zap.S().Infof("[SEED] reusing existing account %s for admin profile", existing.Email)
		return &existing, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	return s.accounts.CreateAccount(ctx, email, password)
}
