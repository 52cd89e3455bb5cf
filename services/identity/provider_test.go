package identity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/igtharvillage/thar-api/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type memoryCounter struct {
	mu     sync.Mutex
	values map[string]int64
	ttls   map[string]time.Duration
}

func newMemoryCounter() *memoryCounter {
	return &memoryCounter{values: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCounter) Increment(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key]++
	return m.values[key], nil
}

func (m *memoryCounter) Expire(ctx context.Context, key string, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ttls[key] = expiration
	return nil
}

func (m *memoryCounter) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = 1
	m.ttls[key] = expiration
	return nil
}

func (m *memoryCounter) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	return ok, nil
}

func (m *memoryCounter) TTL(ctx context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ttls[key], nil
}

func (m *memoryCounter) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
		delete(m.ttls, key)
	}
	return nil
}

func newTestProvider(t *testing.T, counter Counter) (*LocalProvider, *gorm.DB) {
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

	if err := db.AutoMigrate(&model.Account{}, &model.JWTTokenBlacklist{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	var throttle *Throttle
	if counter != nil {
		throttle = NewThrottle(counter)
	}
	provider := NewLocalProvider(db, Config{
		JWT:        JWTConfig{Secret: "test-secret", Expiry: time.Hour, Issuer: "test"},
		BcryptCost: bcrypt.MinCost,
		Throttle:   throttle,
	})
	return provider, db
}

func mustCreate(t *testing.T, p *LocalProvider, email, password string) *model.Account {
	t.Helper()
	account, err := p.CreateAccount(context.Background(), email, password)
	if err != nil {
		t.Fatalf("create account failed: %v", err)
	}
	return account
}

func TestSignInAndVerify(t *testing.T) {
	p, _ := newTestProvider(t, nil)
	ctx := context.Background()
	account := mustCreate(t, p, "Owner@IGThar.com", "desert-sun-42")

	session, err := p.SignIn(ctx, "owner@igthar.com", "desert-sun-42")
	if err != nil {
		t.Fatalf("sign in failed: %v", err)
	}
	if session.Identity.UID != account.UID || session.Identity.Email != "owner@igthar.com" {
		t.Fatalf("unexpected identity %+v", session.Identity)
	}

	identity, err := p.Verify(ctx, session.Token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if identity.UID != account.UID {
		t.Fatalf("verify uid = %s, want %s", identity.UID, account.UID)
	}
}

func TestSignInErrorCodes(t *testing.T) {
	p, db := newTestProvider(t, nil)
	ctx := context.Background()
	mustCreate(t, p, "guest@igthar.com", "camel-caravan")
	disabled := mustCreate(t, p, "gone@igthar.com", "camel-caravan")
	if err := db.Model(&model.Account{}).Where("uid = ?", disabled.UID).Update("disabled", true).Error; err != nil {
		t.Fatalf("failed to disable: %v", err)
	}

	cases := []struct {
		name, email, password, code string
	}{
		{"unknown user", "nobody@igthar.com", "camel-caravan", CodeUserNotFound},
		{"wrong password", "guest@igthar.com", "wrong-password", CodeWrongPassword},
		{"malformed email", "not-an-email", "camel-caravan", CodeInvalidEmail},
		{"disabled", "gone@igthar.com", "camel-caravan", CodeUserDisabled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.SignIn(ctx, tc.email, tc.password)
			if got := CodeOf(err); got != tc.code {
				t.Fatalf("code = %s, want %s (err %v)", got, tc.code, err)
			}
		})
	}
}

func TestSignOutRevokesToken(t *testing.T) {
	p, _ := newTestProvider(t, nil)
	ctx := context.Background()
	mustCreate(t, p, "guest@igthar.com", "camel-caravan")

	session, err := p.SignIn(ctx, "guest@igthar.com", "camel-caravan")
	if err != nil {
		t.Fatalf("sign in failed: %v", err)
	}
	if err := p.SignOut(ctx, session); err != nil {
		t.Fatalf("sign out failed: %v", err)
	}

	_, err = p.Verify(ctx, session.Token)
	if CodeOf(err) != CodeInvalidToken {
		t.Fatalf("expected revoked token to be invalid, got %v", err)
	}

	// signing out twice is harmless
	if err := p.SignOut(ctx, session); err != nil {
		t.Fatalf("second sign out failed: %v", err)
	}
}

func TestRevokeAllInvalidatesOutstandingTokens(t *testing.T) {
	p, _ := newTestProvider(t, nil)
	ctx := context.Background()
	account := mustCreate(t, p, "guest@igthar.com", "camel-caravan")

	session, err := p.SignIn(ctx, "guest@igthar.com", "camel-caravan")
	if err != nil {
		t.Fatalf("sign in failed: %v", err)
	}
	if err := p.RevokeAll(ctx, account.UID); err != nil {
		t.Fatalf("revoke all failed: %v", err)
	}
	if _, err := p.Verify(ctx, session.Token); CodeOf(err) != CodeInvalidToken {
		t.Fatalf("expected invalid token, got %v", err)
	}

	fresh, err := p.SignIn(ctx, "guest@igthar.com", "camel-caravan")
	if err != nil {
		t.Fatalf("sign in failed: %v", err)
	}
	if _, err := p.Verify(ctx, fresh.Token); err != nil {
		t.Fatalf("fresh token rejected: %v", err)
	}
}

func TestVerifyRejectsExpiredAndForeignTokens(t *testing.T) {
	p, _ := newTestProvider(t, nil)
	ctx := context.Background()
	mustCreate(t, p, "guest@igthar.com", "camel-caravan")

	now := time.Now()
	p.WithClock(func() time.Time { return now })
	session, err := p.SignIn(ctx, "guest@igthar.com", "camel-caravan")
	if err != nil {
		t.Fatalf("sign in failed: %v", err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := p.Verify(ctx, session.Token); CodeOf(err) != CodeInvalidToken {
		t.Fatalf("expected expired token to be invalid, got %v", err)
	}

	if _, err := p.Verify(ctx, "not.a.token"); CodeOf(err) != CodeInvalidToken {
		t.Fatalf("expected garbage token to be invalid, got %v", err)
	}
}

func TestCreateAccountValidation(t *testing.T) {
	p, _ := newTestProvider(t, nil)
	ctx := context.Background()
	mustCreate(t, p, "guest@igthar.com", "camel-caravan")

	if _, err := p.CreateAccount(ctx, "GUEST@igthar.com", "camel-caravan"); CodeOf(err) != CodeEmailInUse {
		t.Errorf("duplicate email: got %v", err)
	}
	if _, err := p.CreateAccount(ctx, "new@igthar.com", "short"); CodeOf(err) != CodeWeakPassword {
		t.Errorf("short password: got %v", err)
	}
	if _, err := p.CreateAccount(ctx, "nope", "camel-caravan"); CodeOf(err) != CodeInvalidEmail {
		t.Errorf("bad email: got %v", err)
	}
}

func TestDeleteAccountFreesEmail(t *testing.T) {
	p, _ := newTestProvider(t, nil)
	ctx := context.Background()
	account := mustCreate(t, p, "guest@igthar.com", "camel-caravan")

	if err := p.DeleteAccount(ctx, account.UID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := p.DeleteAccount(ctx, account.UID); err != nil {
		t.Fatalf("deleting a missing account: %v", err)
	}
	if _, err := p.SignIn(ctx, "guest@igthar.com", "camel-caravan"); CodeOf(err) != CodeUserNotFound {
		t.Fatalf("sign in after delete: %v", err)
	}
	mustCreate(t, p, "guest@igthar.com", "camel-caravan")
}

func TestThrottleLocksAfterRepeatedFailures(t *testing.T) {
	counter := newMemoryCounter()
	p, _ := newTestProvider(t, counter)
	ctx := context.Background()
	mustCreate(t, p, "guest@igthar.com", "camel-caravan")

	for i := 0; i < 5; i++ {
		if _, err := p.SignIn(ctx, "guest@igthar.com", "bad-password"); CodeOf(err) != CodeWrongPassword {
			t.Fatalf("attempt %d: got %v", i+1, err)
		}
	}

	// correct password is refused while locked
	if _, err := p.SignIn(ctx, "guest@igthar.com", "camel-caravan"); CodeOf(err) != CodeTooManyRequests {
		t.Fatalf("expected lockout, got %v", err)
	}
	if ttl := counter.ttls[lockKey("guest@igthar.com")]; ttl != 2*time.Minute {
		t.Fatalf("lock ttl = %v, want 2m", ttl)
	}

	counter.Delete(ctx, lockKey("guest@igthar.com"))
	if _, err := p.SignIn(ctx, "guest@igthar.com", "camel-caravan"); err != nil {
		t.Fatalf("sign in after lock expiry failed: %v", err)
	}
	if _, ok := counter.values[attemptKey("guest@igthar.com")]; ok {
		t.Fatalf("successful sign in should clear the attempt counter")
	}
}

func TestLockoutFor(t *testing.T) {
	cases := map[int64]time.Duration{
		1:  0,
		4:  0,
		5:  2 * time.Minute,
		9:  2 * time.Minute,
		10: time.Hour,
		24: time.Hour,
		25: 24 * time.Hour,
	}
	for attempts, want := range cases {
		if got := LockoutFor(attempts); got != want {
			t.Errorf("LockoutFor(%d) = %v, want %v", attempts, got, want)
		}
	}
}

func TestOnAuthStateChanged(t *testing.T) {
	p, _ := newTestProvider(t, nil)
	ctx := context.Background()
	mustCreate(t, p, "guest@igthar.com", "camel-caravan")

	var events []*Identity
	unsubscribe := p.OnAuthStateChanged(func(identity *Identity) {
		events = append(events, identity)
	})

	session, err := p.SignIn(ctx, "guest@igthar.com", "camel-caravan")
	if err != nil {
		t.Fatalf("sign in failed: %v", err)
	}
	if err := p.SignOut(ctx, session); err != nil {
		t.Fatalf("sign out failed: %v", err)
	}
	unsubscribe()
	if _, err := p.SignIn(ctx, "guest@igthar.com", "camel-caravan"); err != nil {
		t.Fatalf("sign in failed: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0] == nil || events[0].Email != "guest@igthar.com" {
		t.Errorf("first event = %+v", events[0])
	}
	if events[1] != nil {
		t.Errorf("second event should be sign-out, got %+v", events[1])
	}
}

func TestPurgeExpiredRevocations(t *testing.T) {
	p, db := newTestProvider(t, nil)
	ctx := context.Background()
	now := time.Now().UTC()

	entries := []model.JWTTokenBlacklist{
		{Token: "old", UID: "u", ExpiresAt: now.Add(-time.Hour), CreatedAt: now},
		{Token: "live", UID: "u", ExpiresAt: now.Add(time.Hour), CreatedAt: now},
	}
	if err := db.Create(&entries).Error; err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	removed, err := p.PurgeExpiredRevocations(ctx)
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
}
