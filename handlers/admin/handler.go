package admin

import (
	"context"

	"github.com/igtharvillage/thar-api/model"
	"github.com/igtharvillage/thar-api/repository"
	"github.com/igtharvillage/thar-api/services"
	"github.com/igtharvillage/thar-api/utils/validation"
	"gorm.io/gorm"
)

// UserDirectory lists profiles and changes their role
type UserDirectory interface {
	Get(ctx context.Context, uid string) (*model.UserProfile, error)
	List(ctx context.Context, role string, page, limit int) ([]model.UserProfile, int64, error)
	SetRole(ctx context.Context, uid, role string) error
}

// SessionRevoker invalidates every token issued to an identity
type SessionRevoker interface {
	RevokeAll(ctx context.Context, uid string) error
}

// AdminHandler serves the admin panel's settings, user and audit screens
type AdminHandler struct {
	db        *gorm.DB
	content   []repository.Counter
	settings  *services.SettingsStore
	users     UserDirectory
	sessions  SessionRevoker
	validator *validation.Validator
}

func NewAdminHandler(db *gorm.DB, settings *services.SettingsStore, users UserDirectory, sessions SessionRevoker) *AdminHandler {
	return &AdminHandler{
		db:        db,
		content:   repository.NewStore(db).Counters(),
		settings:  settings,
		users:     users,
		sessions:  sessions,
		validator: validation.NewValidator(),
	}
}
