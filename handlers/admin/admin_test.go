package admin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/igtharvillage/thar-api/model"
	"github.com/igtharvillage/thar-api/services"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingRevoker struct {
	revoked []string
	err     error
}

func (r *recordingRevoker) RevokeAll(ctx context.Context, uid string) error {
	r.revoked = append(r.revoked, uid)
	return r.err
}

type fixture struct {
	app      *fiber.App
	db       *gorm.DB
	settings *services.SettingsStore
	revoker  *recordingRevoker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(model.Tables...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	settings := services.NewSettingsStore(db, services.DefaultSiteSettings(nil), nil)
	revoker := &recordingRevoker{}
	h := NewAdminHandler(db, settings, services.NewProfileStore(db), revoker)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "admin-1")
		return c.Next()
	})
	app.Get("/admin/dashboard", h.GetDashboard)
	app.Get("/admin/settings", h.GetSiteSettings)
	app.Put("/admin/settings", h.UpdateSiteSettings)
	app.Get("/admin/settings/raw", h.ListSettings)
	app.Get("/admin/settings/:key", h.GetSetting)
	app.Get("/admin/users", h.ListUsers)
	app.Put("/admin/users/:id/role", h.UpdateUserRole)
	app.Get("/admin/audit", h.ListAuditLogs)
	app.Get("/admin/audit/:id", h.GetAuditLog)

	now := time.Now().UTC()
	profiles := []model.UserProfile{
		{ID: "admin-1", Email: "admin@example.com", Role: model.RoleAdmin, CreatedAt: now},
		{ID: "user-1", Email: "guest@example.com", Role: model.RoleUser, CreatedAt: now},
	}
	if err := db.Create(&profiles).Error; err != nil {
		t.Fatalf("seed profiles: %v", err)
	}

	return &fixture{app: app, db: db, settings: settings, revoker: revoker}
}

func (f *fixture) do(t *testing.T, method, path, body string) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}

	var decoded map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

func TestUpdateSiteSettings(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodPut, "/admin/settings", `{"site_name":"Thar Haveli","is_launched":true}`)
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, body %v", status, body)
	}
	data := body["data"].(map[string]interface{})
	if data["site_name"] != "Thar Haveli" || data["is_launched"] != true {
		t.Fatalf("data = %v", data)
	}
	if got := f.settings.Current(); got.SiteName != "Thar Haveli" || !got.IsLaunched {
		t.Fatalf("snapshot = %+v", got)
	}

	status, _ = f.do(t, http.MethodGet, "/admin/settings/site_name", "")
	if status != fiber.StatusOK {
		t.Fatalf("get stored key status = %d", status)
	}
	status, _ = f.do(t, http.MethodGet, "/admin/settings/unknown", "")
	if status != fiber.StatusNotFound {
		t.Fatalf("get unknown key status = %d", status)
	}

	status, body = f.do(t, http.MethodGet, "/admin/settings/raw", "")
	if rows := body["data"].([]interface{}); status != fiber.StatusOK || len(rows) != 2 {
		t.Fatalf("raw settings: status %d, body %v", status, body)
	}
}

func TestUpdateSiteSettingsValidation(t *testing.T) {
	f := newFixture(t)
	before := f.settings.Current()

	status, body := f.do(t, http.MethodPut, "/admin/settings", `{"email":"not-an-email","logo_url":"nope"}`)
	if status != fiber.StatusUnprocessableEntity {
		t.Fatalf("status = %d", status)
	}
	details := body["error"].(map[string]interface{})["details"].(map[string]interface{})
	if _, ok := details["email"]; !ok {
		t.Fatalf("details = %v", details)
	}
	if _, ok := details["logo_url"]; !ok {
		t.Fatalf("details = %v", details)
	}
	if f.settings.Current() != before {
		t.Fatal("snapshot changed after a rejected update")
	}
}

func TestUpdateUserRoleRevokesSessions(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodPut, "/admin/users/user-1/role", `{"role":"admin"}`)
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, body %v", status, body)
	}
	if data := body["data"].(map[string]interface{}); data["role"] != model.RoleAdmin {
		t.Fatalf("data = %v", data)
	}
	if len(f.revoker.revoked) != 1 || f.revoker.revoked[0] != "user-1" {
		t.Fatalf("revoked = %v", f.revoker.revoked)
	}

	var profile model.UserProfile
	f.db.First(&profile, "id = ?", "user-1")
	if profile.Role != model.RoleAdmin {
		t.Fatalf("stored role = %q", profile.Role)
	}
}

func TestUpdateUserRoleRejections(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		path, body string
		status     int
	}{
		{"/admin/users/admin-1/role", `{"role":"user"}`, fiber.StatusBadRequest},
		{"/admin/users/user-1/role", `{"role":"owner"}`, fiber.StatusUnprocessableEntity},
		{"/admin/users/missing/role", `{"role":"admin"}`, fiber.StatusNotFound},
	}
	for _, tc := range cases {
		if status, _ := f.do(t, http.MethodPut, tc.path, tc.body); status != tc.status {
			t.Errorf("%s %s: status = %d, want %d", tc.path, tc.body, status, tc.status)
		}
	}
	if len(f.revoker.revoked) != 0 {
		t.Fatalf("sessions revoked on a rejected change: %v", f.revoker.revoked)
	}
}

func TestUpdateUserRoleSurvivesRevokeFailure(t *testing.T) {
	f := newFixture(t)
	f.revoker.err = errors.New("db down")

	if status, _ := f.do(t, http.MethodPut, "/admin/users/user-1/role", `{"role":"admin"}`); status != fiber.StatusOK {
		t.Fatalf("status = %d", status)
	}
}

func TestListUsersAndAudit(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodGet, "/admin/users?role=user", "")
	if users := body["data"].([]interface{}); status != fiber.StatusOK || len(users) != 1 {
		t.Fatalf("users: status %d, body %v", status, body)
	}

	entries := []model.AdminAuditLog{
		{AdminID: "admin-1", Action: "product_create", Resource: "products", ResourceID: "1", CreatedAt: time.Now().UTC()},
		{AdminID: "admin-1", Action: "settings_update", Resource: "settings", CreatedAt: time.Now().UTC()},
	}
	f.db.Create(&entries)

	status, body = f.do(t, http.MethodGet, "/admin/audit?resource=products", "")
	if logs := body["data"].([]interface{}); status != fiber.StatusOK || len(logs) != 1 {
		t.Fatalf("audit: status %d, body %v", status, body)
	}

	if status, _ := f.do(t, http.MethodGet, "/admin/audit/999", ""); status != fiber.StatusNotFound {
		t.Fatalf("missing audit entry status = %d", status)
	}
	if status, _ := f.do(t, http.MethodGet, "/admin/audit/abc", ""); status != fiber.StatusBadRequest {
		t.Fatalf("invalid audit id status = %d", status)
	}
}

func TestDashboardCounts(t *testing.T) {
	f := newFixture(t)

	products := []model.Product{
		{Name: "Ghee", Price: 450, Unit: "jar", Category: "dairy", InStock: true},
		{Name: "Bajra", Price: 60, Unit: "kg", Category: "grains", InStock: false},
	}
	if err := f.db.Create(&products).Error; err != nil {
		t.Fatalf("seed products: %v", err)
	}

	status, body := f.do(t, http.MethodGet, "/admin/dashboard", "")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d", status)
	}

	data := body["data"].(map[string]interface{})
	product := data["content"].(map[string]interface{})["products"].(map[string]interface{})
	if product["total"] != float64(2) || product["visible"] != float64(1) {
		t.Fatalf("products = %v", product)
	}
	if data["admins"] != float64(1) || data["users"] != float64(1) {
		t.Fatalf("profile counts = %v / %v", data["admins"], data["users"])
	}
}

func TestDashboardUsesCollectionVisibility(t *testing.T) {
	f := newFixture(t)

	posts := []model.BlogPost{
		{Title: "Monsoon on the dunes", Slug: "monsoon-dunes", Published: true},
		{Title: "Draft: camel fair", Slug: "camel-fair", Published: false},
	}
	if err := f.db.Create(&posts).Error; err != nil {
		t.Fatalf("seed posts: %v", err)
	}

	_, body := f.do(t, http.MethodGet, "/admin/dashboard", "")
	blogs := body["data"].(map[string]interface{})["content"].(map[string]interface{})["blogs"].(map[string]interface{})
	if blogs["total"] != float64(2) || blogs["visible"] != float64(1) {
		t.Fatalf("blogs = %v", blogs)
	}
}

func TestDashboardSurvivesMissingTables(t *testing.T) {
	f := newFixture(t)

	if err := f.db.Migrator().DropTable(&model.CronJobLog{}, &model.Service{}); err != nil {
		t.Fatalf("drop tables: %v", err)
	}

	status, body := f.do(t, http.MethodGet, "/admin/dashboard", "")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d", status)
	}
	data := body["data"].(map[string]interface{})
	services := data["content"].(map[string]interface{})["services"].(map[string]interface{})
	if services["total"] != float64(0) || services["visible"] != float64(0) {
		t.Fatalf("services = %v", services)
	}
	if jobs, ok := data["last_jobs"].([]interface{}); !ok || len(jobs) != 0 {
		t.Fatalf("last_jobs = %v", data["last_jobs"])
	}
	if data["admins"] != float64(1) {
		t.Fatalf("admins = %v", data["admins"])
	}
}
