package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/igtharvillage/thar-api/services/identity"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T, models ...interface{}) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(models...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// fakeProvider keeps accounts and live tokens in memory
type fakeProvider struct {
	mu        sync.Mutex
	accounts  map[string]fakeAccount // by email
	active    map[string]identity.Identity
	listeners []func(*identity.Identity)
	signOuts  int
}

type fakeAccount struct {
	uid      string
	password string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{accounts: map[string]fakeAccount{}, active: map[string]identity.Identity{}}
}

func (p *fakeProvider) add(email, password string) string {
	uid := uuid.New().String()
	p.accounts[email] = fakeAccount{uid: uid, password: password}
	return uid
}

func (p *fakeProvider) SignIn(ctx context.Context, email, password string) (*identity.Session, error) {
	p.mu.Lock()
	account, ok := p.accounts[email]
	if !ok {
		p.mu.Unlock()
		return nil, &identity.Error{Code: identity.CodeUserNotFound}
	}
	if account.password != password {
		p.mu.Unlock()
		return nil, &identity.Error{Code: identity.CodeWrongPassword}
	}
	token := uuid.New().String()
	id := identity.Identity{UID: account.uid, Email: email}
	p.active[token] = id
	listeners := append([]func(*identity.Identity){}, p.listeners...)
	p.mu.Unlock()

	for _, cb := range listeners {
		cb(&id)
	}
	return &identity.Session{Identity: id, Token: token}, nil
}

func (p *fakeProvider) SignOut(ctx context.Context, session *identity.Session) error {
	p.mu.Lock()
	delete(p.active, session.Token)
	p.signOuts++
	listeners := append([]func(*identity.Identity){}, p.listeners...)
	p.mu.Unlock()

	for _, cb := range listeners {
		cb(nil)
	}
	return nil
}

func (p *fakeProvider) Verify(ctx context.Context, token string) (*identity.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id, ok := p.active[token]
	if !ok {
		return nil, &identity.Error{Code: identity.CodeInvalidToken, Err: errors.New("unknown token")}
	}
	return &id, nil
}

func (p *fakeProvider) OnAuthStateChanged(cb func(*identity.Identity)) func() {
	p.mu.Lock()
	p.listeners = append(p.listeners, cb)
	index := len(p.listeners) - 1
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		p.listeners[index] = func(*identity.Identity) {}
		p.mu.Unlock()
	}
}

func (p *fakeProvider) activeSessions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.active)
}
