package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/igtharvillage/thar-api/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Identity is an authenticated principal
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// Session is the result of a successful sign-in
type Session struct {
	Identity  Identity  `json:"identity"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Provider authenticates credentials and tracks session state
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, session *Session) error
	Verify(ctx context.Context, token string) (*Identity, error)
	OnAuthStateChanged(cb func(*Identity)) (unsubscribe func())
}

// Config configures the local provider
type Config struct {
	JWT        JWTConfig
	BcryptCost int
	Throttle   *Throttle
}

// LocalProvider keeps accounts in the application database and issues
// HS256 access tokens. Signed-out tokens are revoked by JTI.
type LocalProvider struct {
	db       *gorm.DB
	jwt      *JWTManager
	throttle *Throttle
	cost     int
	validate *validator.Validate
	now      func() time.Time

	mu        sync.Mutex
	nextSub   int
	listeners map[int]func(*Identity)
}

func NewLocalProvider(db *gorm.DB, cfg Config) *LocalProvider {
	return &LocalProvider{
		db:        db,
		jwt:       NewJWTManager(cfg.JWT),
		throttle:  cfg.Throttle,
		cost:      cfg.BcryptCost,
		validate:  validator.New(),
		now:       time.Now,
		listeners: map[int]func(*Identity){},
	}
}

// WithClock replaces the time source for token issue and revocation
func (p *LocalProvider) WithClock(now func() time.Time) *LocalProvider {
	p.now = now
	p.jwt.now = now
	return p
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *LocalProvider) checkEmail(email string) error {
	if err := p.validate.Var(email, "required,email,max=255"); err != nil {
		return newError(CodeInvalidEmail, err)
	}
	return nil
}

// CreateAccount registers a new email/password account
func (p *LocalProvider) CreateAccount(ctx context.Context, email, password string) (*model.Account, error) {
	email = normalizeEmail(email)
	if err := p.checkEmail(email); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password, p.cost)
	if err != nil {
		if errors.Is(err, ErrPasswordTooShort) {
			return nil, newError(CodeWeakPassword, err)
		}
		return nil, newError(CodeInternal, err)
	}

	var existing int64
	if err := p.db.WithContext(ctx).Model(&model.Account{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, newError(CodeInternal, err)
	}
	if existing > 0 {
		return nil, newError(CodeEmailInUse, nil)
	}

	now := p.now().UTC()
	account := &model.Account{
		UID:          uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.db.WithContext(ctx).Create(account).Error; err != nil {
		return nil, newError(CodeInternal, fmt.Errorf("failed to create account: %w", err))
	}
	return account, nil
}

// DeleteAccount removes an account and its credentials. Removing a missing
// account is not an error.
func (p *LocalProvider) DeleteAccount(ctx context.Context, uid string) error {
	if err := p.db.WithContext(ctx).Where("uid = ?", uid).Delete(&model.Account{}).Error; err != nil {
		return newError(CodeInternal, fmt.Errorf("failed to delete account: %w", err))
	}
	return nil
}

// SignIn checks the credential pair and issues a session token
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if err := p.checkEmail(email); err != nil {
		return nil, err
	}

	if locked, retryAfter := p.throttle.Locked(ctx, email); locked {
		return nil, newError(CodeTooManyRequests, fmt.Errorf("retry in %s", retryAfter.Round(time.Second)))
	}

	var account model.Account
	if err := p.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			p.throttle.RecordFailure(ctx, email)
			return nil, newError(CodeUserNotFound, nil)
		}
		return nil, newError(CodeInternal, err)
	}

	if account.Disabled {
		return nil, newError(CodeUserDisabled, nil)
	}

	if err := VerifyPassword(account.PasswordHash, password); err != nil {
		if errors.Is(err, ErrPasswordMismatch) {
			p.throttle.RecordFailure(ctx, email)
			return nil, newError(CodeWrongPassword, nil)
		}
		return nil, newError(CodeInternal, err)
	}
	p.throttle.RecordSuccess(ctx, email)

	token, claims, err := p.jwt.GenerateAccessToken(account.UID, account.Email, account.TokenVersion)
	if err != nil {
		return nil, newError(CodeInternal, err)
	}

	session := &Session{
		Identity:  Identity{UID: account.UID, Email: account.Email},
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	identity := session.Identity
	p.notify(&identity)
	return session, nil
}

// SignOut revokes the session's token. Signing out an already invalid token
// is not an error.
func (p *LocalProvider) SignOut(ctx context.Context, session *Session) error {
	if session == nil || session.Token == "" {
		return nil
	}

	claims, err := p.jwt.ValidateToken(session.Token)
	if err != nil {
		return nil
	}

	if err := p.revoke(ctx, claims, "sign_out"); err != nil {
		return newError(CodeInternal, err)
	}

	p.notify(nil)
	return nil
}

// Verify returns the identity a token was issued to, if it is still valid
func (p *LocalProvider) Verify(ctx context.Context, token string) (*Identity, error) {
	claims, err := p.jwt.ValidateToken(token)
	if err != nil {
		return nil, newError(CodeInvalidToken, err)
	}

	var revoked int64
	if err := p.db.WithContext(ctx).
		Model(&model.JWTTokenBlacklist{}).
		Where("token = ?", claims.ID).
		Count(&revoked).Error; err != nil {
		return nil, newError(CodeInternal, err)
	}
	if revoked > 0 {
		return nil, newError(CodeInvalidToken, errors.New("token revoked"))
	}

	var account model.Account
	if err := p.db.WithContext(ctx).
		Select("uid", "email", "disabled", "token_version").
		Where("uid = ?", claims.UID).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(CodeInvalidToken, errors.New("account no longer exists"))
		}
		return nil, newError(CodeInternal, err)
	}
	if account.Disabled {
		return nil, newError(CodeUserDisabled, nil)
	}
	if account.TokenVersion != claims.TokenVersion {
		return nil, newError(CodeInvalidToken, errors.New("token version superseded"))
	}

	return &Identity{UID: account.UID, Email: account.Email}, nil
}

// RevokeAll invalidates every token issued to uid
func (p *LocalProvider) RevokeAll(ctx context.Context, uid string) error {
	return p.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("uid = ?", uid).
		UpdateColumn("token_version", gorm.Expr("token_version + ?", 1)).
		Error
}

// PurgeExpiredRevocations removes revocation entries whose tokens have expired
func (p *LocalProvider) PurgeExpiredRevocations(ctx context.Context) (int64, error) {
	result := p.db.WithContext(ctx).
		Where("expires_at < ?", p.now().UTC()).
		Delete(&model.JWTTokenBlacklist{})
	return result.RowsAffected, result.Error
}

// OnAuthStateChanged registers cb for every sign-in (with the identity) and
// sign-out (with nil)
func (p *LocalProvider) OnAuthStateChanged(cb func(*Identity)) func() {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.listeners[id] = cb
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

func (p *LocalProvider) revoke(ctx context.Context, claims *Claims, reason string) error {
	entry := model.JWTTokenBlacklist{
		Token:     claims.ID,
		UID:       claims.UID,
		Reason:    reason,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
		CreatedAt: p.now().UTC(),
	}
	err := p.db.WithContext(ctx).Where(model.JWTTokenBlacklist{Token: claims.ID}).FirstOrCreate(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	zap.S().Debugf("[IDENTITY] revoked token %s for %s (%s)", claims.ID, claims.UID, reason)
	return nil
}

func (p *LocalProvider) notify(identity *Identity) {
	p.mu.Lock()
	callbacks := make([]func(*Identity), 0, len(p.listeners))
	for _, cb := range p.listeners {
		callbacks = append(callbacks, cb)
	}
	p.mu.Unlock()

	for _, cb := range callbacks {
		cb(identity)
	}
}
