package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/igtharvillage/thar-api/model"
	"github.com/igtharvillage/thar-api/services"
	"github.com/igtharvillage/thar-api/services/identity"
	"github.com/igtharvillage/thar-api/utils/middleware"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type fixture struct {
	app      *fiber.App
	provider *identity.LocalProvider
	profiles *services.ProfileStore
}

func newFixture(t *testing.T) *fixture {
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

	if err := db.AutoMigrate(&model.Account{}, &model.JWTTokenBlacklist{}, &model.UserProfile{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	provider := identity.NewLocalProvider(db, identity.Config{
		JWT:        identity.JWTConfig{Secret: "test-secret", Expiry: time.Hour, Issuer: "test"},
		BcryptCost: bcrypt.MinCost,
	})
	profiles := services.NewProfileStore(db)
	gate := services.NewRoleGate(provider, profiles)
	handler := NewAuthHandler(gate, provider, profiles)
	authMiddleware := middleware.NewAuthMiddleware(provider, profiles)

	app := fiber.New()
	app.Post("/api/v1/auth/register", handler.Register)
	app.Get("/api/v1/auth/profile", authMiddleware.Required(), handler.GetProfile)
	app.Put("/api/v1/auth/profile", authMiddleware.Required(), handler.UpdateProfile)
	app.Post("/api/v1/admin/login", handler.AdminLogin)
	app.Post("/api/v1/admin/logout", authMiddleware.Required(), handler.Logout)
	app.Get("/api/v1/admin/session", handler.Session)

	return &fixture{app: app, provider: provider, profiles: profiles}
}

func (f *fixture) account(t *testing.T, email, role string) {
	t.Helper()
	ctx := context.Background()
	account, err := f.provider.CreateAccount(ctx, email, "camel-safari-42")
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if role == "" {
		return
	}
	if err := f.profiles.Create(ctx, &model.UserProfile{ID: account.UID, Email: account.Email, Role: role}); err != nil {
		t.Fatalf("create profile: %v", err)
	}
}

func (f *fixture) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	return resp.StatusCode, env
}

func (f *fixture) session(t *testing.T, token string) SessionResponse {
	t.Helper()
	status, env := f.do(t, http.MethodGet, "/api/v1/admin/session", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("session status = %d", status)
	}
	var s SessionResponse
	if err := json.Unmarshal(env.Data, &s); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return s
}

func TestAdminLoginSucceedsForAdmin(t *testing.T) {
	f := newFixture(t)
	f.account(t, "owner@igthar.in", model.RoleAdmin)

	status, env := f.do(t, http.MethodPost, "/api/v1/admin/login", "", LoginRequest{Email: "owner@igthar.in", Password: "camel-safari-42"})
	if status != fiber.StatusOK {
		t.Fatalf("login status = %d (%+v)", status, env.Error)
	}
	var login LoginResponse
	if err := json.Unmarshal(env.Data, &login); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if login.AccessToken == "" || login.Profile == nil || login.Profile.Role != model.RoleAdmin {
		t.Fatalf("unexpected login response %+v", login)
	}

	s := f.session(t, login.AccessToken)
	if !s.Authenticated || !s.IsAdmin {
		t.Fatalf("session after admin login = %+v", s)
	}

	if status, _ := f.do(t, http.MethodPost, "/api/v1/admin/logout", login.AccessToken, nil); status != fiber.StatusOK {
		t.Fatalf("logout status = %d", status)
	}
	if s := f.session(t, login.AccessToken); s.Authenticated {
		t.Fatalf("token still valid after logout")
	}
}

func TestAdminLoginDeniedForNonAdmin(t *testing.T) {
	f := newFixture(t)
	f.account(t, "guest@igthar.in", model.RoleUser)

	var signedIn string
	unsubscribe := f.provider.OnAuthStateChanged(func(id *identity.Identity) {
		if id != nil {
			signedIn = id.UID
		}
	})
	defer unsubscribe()

	status, env := f.do(t, http.MethodPost, "/api/v1/admin/login", "", LoginRequest{Email: "guest@igthar.in", Password: "camel-safari-42"})
	if status != fiber.StatusForbidden {
		t.Fatalf("status = %d, want 403", status)
	}
	if env.Error.Code != services.CodeAdminRequired || env.Error.Message != services.MessageAdminRequired {
		t.Fatalf("unexpected error %+v", env.Error)
	}
	if signedIn == "" {
		t.Fatalf("provider sign-in was never attempted")
	}
}

func TestAdminLoginErrorMessages(t *testing.T) {
	f := newFixture(t)
	f.account(t, "owner@igthar.in", model.RoleAdmin)

	cases := []struct {
		email, password string
		status          int
		message         string
	}{
		{"nobody@igthar.in", "camel-safari-42", fiber.StatusUnauthorized, "No account found with this email"},
		{"owner@igthar.in", "wrong-password", fiber.StatusUnauthorized, "Incorrect password"},
		{"not-an-email", "camel-safari-42", fiber.StatusUnauthorized, "Invalid email address"},
	}
	for _, tc := range cases {
		status, env := f.do(t, http.MethodPost, "/api/v1/admin/login", "", LoginRequest{Email: tc.email, Password: tc.password})
		if status != tc.status || env.Error == nil || env.Error.Message != tc.message {
			t.Errorf("%s/%s: status %d, error %+v", tc.email, tc.password, status, env.Error)
		}
	}
}

func TestAdminLoginMissingProfile(t *testing.T) {
	f := newFixture(t)
	f.account(t, "orphan@igthar.in", "")

	status, env := f.do(t, http.MethodPost, "/api/v1/admin/login", "", LoginRequest{Email: "orphan@igthar.in", Password: "camel-safari-42"})
	if status != fiber.StatusForbidden || env.Error.Code != services.CodeAdminRequired {
		t.Fatalf("status %d, error %+v", status, env.Error)
	}
}

func TestSessionWithoutToken(t *testing.T) {
	f := newFixture(t)
	if s := f.session(t, ""); s.Authenticated || s.IsAdmin {
		t.Fatalf("anonymous session = %+v", s)
	}
	if s := f.session(t, "garbage"); s.Authenticated {
		t.Fatalf("garbage token accepted")
	}
}

func TestRegisterCreatesUserProfile(t *testing.T) {
	f := newFixture(t)

	status, env := f.do(t, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{
		Email:       "Visitor@Example.com",
		Password:    "dune-walker-9",
		DisplayName: "Visitor",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("register status = %d (%+v)", status, env.Error)
	}
	var profile model.UserProfile
	if err := json.Unmarshal(env.Data, &profile); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if profile.Role != model.RoleUser || profile.Email != "visitor@example.com" || profile.ID == "" {
		t.Fatalf("unexpected profile %+v", profile)
	}

	status, _ = f.do(t, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{
		Email:    "visitor@example.com",
		Password: "dune-walker-9",
	})
	if status != fiber.StatusConflict {
		t.Fatalf("duplicate register status = %d, want 409", status)
	}
}

// failingProfiles rejects the first n profile writes
type failingProfiles struct {
	*services.ProfileStore
	failures int
}

func (p *failingProfiles) Create(ctx context.Context, profile *model.UserProfile) error {
	if p.failures > 0 {
		p.failures--
		return errors.New("profile table unavailable")
	}
	return p.ProfileStore.Create(ctx, profile)
}

func TestRegisterRemovesAccountWhenProfileFails(t *testing.T) {
	f := newFixture(t)

	profiles := &failingProfiles{ProfileStore: f.profiles, failures: 1}
	handler := NewAuthHandler(services.NewRoleGate(f.provider, profiles), f.provider, profiles)
	app := fiber.New()
	app.Post("/api/v1/auth/register", handler.Register)
	flaky := *f
	flaky.app = app

	req := RegisterRequest{Email: "guest@example.com", Password: "dune-walker-9"}
	if status, _ := flaky.do(t, http.MethodPost, "/api/v1/auth/register", "", req); status != fiber.StatusInternalServerError {
		t.Fatalf("first register status = %d, want 500", status)
	}
	if _, err := f.provider.SignIn(context.Background(), req.Email, req.Password); identity.CodeOf(err) != identity.CodeUserNotFound {
		t.Fatalf("sign in after failed register: %v, want user-not-found", err)
	}

	status, env := flaky.do(t, http.MethodPost, "/api/v1/auth/register", "", req)
	if status != fiber.StatusCreated {
		t.Fatalf("retry status = %d (%+v)", status, env.Error)
	}
	if _, err := f.profiles.Get(context.Background(), mustProfileID(t, env)); err != nil {
		t.Fatalf("profile after retry: %v", err)
	}
}

func mustProfileID(t *testing.T, env envelope) string {
	t.Helper()
	var profile model.UserProfile
	if err := json.Unmarshal(env.Data, &profile); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return profile.ID
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	status, env := f.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": "bad", "password": "short"})
	if status != fiber.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", status)
	}
	if env.Error.Details["email"] == "" || env.Error.Details["password"] == "" {
		t.Fatalf("details = %v", env.Error.Details)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.account(t, "owner@igthar.in", model.RoleAdmin)

	session, err := f.provider.SignIn(context.Background(), "owner@igthar.in", "camel-safari-42")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}

	if status, _ := f.do(t, http.MethodGet, "/api/v1/auth/profile", "", nil); status != fiber.StatusUnauthorized {
		t.Fatalf("anonymous profile status = %d", status)
	}

	status, env := f.do(t, http.MethodPut, "/api/v1/auth/profile", session.Token, UpdateProfileRequest{DisplayName: "Village Host"})
	if status != fiber.StatusOK {
		t.Fatalf("update status = %d (%+v)", status, env.Error)
	}
	var profile model.UserProfile
	if err := json.Unmarshal(env.Data, &profile); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if profile.DisplayName == nil || *profile.DisplayName != "Village Host" {
		t.Fatalf("display name not updated: %+v", profile)
	}
}
