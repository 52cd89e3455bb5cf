package services

import (
	"context"
	"errors"
	"time"

	"github.com/igtharvillage/thar-api/model"
	"github.com/igtharvillage/thar-api/services/identity"
	"go.uber.org/zap"
)

// Failure codes added by the gate on top of the provider codes
const (
	CodeAdminRequired   = "gate/admin-required"
	CodeProfileNotFound = "gate/profile-not-found"
)

const (
	MessageAdminRequired   = "Admin privileges required"
	MessageProfileNotFound = "Profile not found"
)

// LoginError is a failed admin login with a message fit for the operator
type LoginError struct {
	Code    string
	Message string
	Err     error
}

func (e *LoginError) Error() string {
	return e.Message
}

func (e *LoginError) Unwrap() error {
	return e.Err
}

// MessageFor maps a provider error code to the message shown on the login form
func MessageFor(code string) string {
	switch code {
	case identity.CodeUserNotFound:
		return "No account found with this email"
	case identity.CodeWrongPassword:
		return "Incorrect password"
	case identity.CodeInvalidEmail:
		return "Invalid email address"
	case identity.CodeUserDisabled:
		return "This account has been disabled"
	case identity.CodeTooManyRequests:
		return "Too many failed attempts. Please try again later"
	default:
		return "Login failed. Please try again"
	}
}

// AdminSession is a successful admin login
type AdminSession struct {
	Session *identity.Session  `json:"session"`
	Profile *model.UserProfile `json:"profile"`
}

// SessionState describes the holder of a token
type SessionState struct {
	Identity *identity.Identity `json:"identity"`
	Profile  *model.UserProfile `json:"profile"`
	IsAdmin  bool               `json:"is_admin"`
}

// Profiles is the profile lookup the gate depends on
type Profiles interface {
	RoleOf(ctx context.Context, uid string) (role string, found bool, err error)
	Get(ctx context.Context, uid string) (*model.UserProfile, error)
	TouchLastLogin(ctx context.Context, uid string, at time.Time) error
}

// RoleGate lets only admin-role identities through to the admin area
type RoleGate struct {
	provider identity.Provider
	profiles Profiles
	now      func() time.Time
}

func NewRoleGate(provider identity.Provider, profiles Profiles) *RoleGate {
	return &RoleGate{provider: provider, profiles: profiles, now: time.Now}
}

// AdminLogin signs in and then authorizes the identity as an admin. An
// identity that fails authorization is signed out again before returning.
func (g *RoleGate) AdminLogin(ctx context.Context, email, password string) (*AdminSession, error) {
	session, err := g.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	profile, err := g.authorizeOrRevert(ctx, session)
	if err != nil {
		return nil, err
	}

	now := g.now().UTC()
	if err := g.profiles.TouchLastLogin(ctx, profile.ID, now); err != nil {
		zap.S().Warnf("[GATE] failed to update last login for %s: %v", profile.ID, err)
	} else {
		profile.LastLogin = &now
	}

	return &AdminSession{Session: session, Profile: profile}, nil
}

// authenticate is the first phase: no session exists when it fails
func (g *RoleGate) authenticate(ctx context.Context, email, password string) (*identity.Session, error) {
	session, err := g.provider.SignIn(ctx, email, password)
	if err != nil {
		code := identity.CodeOf(err)
		return nil, &LoginError{Code: code, Message: MessageFor(code), Err: err}
	}
	return session, nil
}

// authorizeOrRevert is the second phase: on any failure the session created
// by authenticate is signed out
func (g *RoleGate) authorizeOrRevert(ctx context.Context, session *identity.Session) (*model.UserProfile, error) {
	uid := session.Identity.UID

	role, found, err := g.profiles.RoleOf(ctx, uid)
	if err != nil {
		zap.S().Errorf("[GATE] role lookup for %s failed: %v", uid, err)
	}
	if err != nil || !found || role != model.RoleAdmin {
		g.revert(ctx, session)
		return nil, &LoginError{Code: CodeAdminRequired, Message: MessageAdminRequired, Err: err}
	}

	profile, err := g.profiles.Get(ctx, uid)
	if err != nil || profile == nil {
		g.revert(ctx, session)
		return nil, &LoginError{Code: CodeProfileNotFound, Message: MessageProfileNotFound, Err: err}
	}

	return profile, nil
}

func (g *RoleGate) revert(ctx context.Context, session *identity.Session) {
	// the caller may already be gone; the revocation must still happen
	if err := g.provider.SignOut(context.WithoutCancel(ctx), session); err != nil {
		zap.S().Errorf("[GATE] failed to sign out %s after denied login: %v", session.Identity.UID, err)
	}
}

// Logout signs the session out
func (g *RoleGate) Logout(ctx context.Context, token string) error {
	return g.provider.SignOut(ctx, &identity.Session{Token: token})
}

// CheckSession resolves a token to its identity, profile and admin flag
func (g *RoleGate) CheckSession(ctx context.Context, token string) (*SessionState, error) {
	id, err := g.provider.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	profile, isAdmin := g.lookup(ctx, id)
	return &SessionState{Identity: id, Profile: profile, IsAdmin: isAdmin}, nil
}

// OnAuthStateChangedWithRole calls cb on every auth-state transition. A
// sign-out is reported synchronously as (nil, nil, false) without a store
// query; a sign-in is reported after the role lookup completes.
func (g *RoleGate) OnAuthStateChangedWithRole(cb func(*identity.Identity, *model.UserProfile, bool)) func() {
	return g.provider.OnAuthStateChanged(func(id *identity.Identity) {
		if id == nil {
			cb(nil, nil, false)
			return
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			profile, isAdmin := g.lookup(ctx, id)
			cb(id, profile, isAdmin)
		}()
	})
}

func (g *RoleGate) lookup(ctx context.Context, id *identity.Identity) (*model.UserProfile, bool) {
	role, found, err := g.profiles.RoleOf(ctx, id.UID)
	if err != nil {
		zap.S().Errorf("[GATE] role lookup for %s failed: %v", id.UID, err)
	}
	isAdmin := err == nil && found && role == model.RoleAdmin

	profile, err := g.profiles.Get(ctx, id.UID)
	if err != nil {
		if !errors.Is(err, ErrProfileNotFound) {
			zap.S().Errorf("[GATE] profile lookup for %s failed: %v", id.UID, err)
		}
		return nil, isAdmin
	}
	return profile, isAdmin
}
