package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/igtharvillage/thar-api/config"
	"github.com/igtharvillage/thar-api/model"
)

type recordingNotifier struct {
	mu       sync.Mutex
	channels []string
	err      error
}

func (n *recordingNotifier) Notify(ctx context.Context, channel, payload string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.channels = append(n.channels, channel)
	return n.err
}

func seedSettings(t *testing.T, store *SettingsStore) {
	t.Helper()
	rows := []model.AppSetting{
		{Key: "site_name", Value: "Thar Haveli", Type: "string", Category: model.SettingCategorySite},
		{Key: "is_launched", Value: "true", Type: "bool", Category: model.SettingCategorySite},
		{Key: "unrelated", Value: "x", Type: "string", Category: "other"},
	}
	if err := store.db.Create(&rows).Error; err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}

func TestSettingsLoadDecodesRows(t *testing.T) {
	db := newTestDB(t, &model.AppSetting{})
	defaults := DefaultSiteSettings(nil)
	store := NewSettingsStore(db, defaults, nil)
	seedSettings(t, store)

	got := store.Load(context.Background())
	if got.SiteName != "Thar Haveli" {
		t.Errorf("site name = %q", got.SiteName)
	}
	if !got.IsLaunched {
		t.Errorf("is_launched should decode from \"true\"")
	}
	if got.Tagline != defaults.Tagline {
		t.Errorf("missing rows should keep defaults, tagline = %q", got.Tagline)
	}
	if store.Current().SiteName != "Thar Haveli" {
		t.Errorf("snapshot not refreshed")
	}
}

func TestSettingsFallBackToDefaults(t *testing.T) {
	env := &config.EnvironmentVariable{SITE_NAME: "IG Thar (staging)", SITE_PHONE: "+91 99999 00000"}
	defaults := DefaultSiteSettings(env)

	// empty table
	db := newTestDB(t, &model.AppSetting{})
	store := NewSettingsStore(db, defaults, nil)
	if got := store.Load(context.Background()); got.SiteName != "IG Thar (staging)" || got.Phone != "+91 99999 00000" {
		t.Errorf("empty table: got %+v", got)
	}

	// unreadable table
	broken := newTestDB(t)
	store = NewSettingsStore(broken, defaults, nil)
	if got := store.Load(context.Background()); got != defaults {
		t.Errorf("read failure: got %+v, want defaults", got)
	}
}

func TestSettingsUpdateMergesAndNotifies(t *testing.T) {
	db := newTestDB(t, &model.AppSetting{})
	notifier := &recordingNotifier{}
	store := NewSettingsStore(db, DefaultSiteSettings(nil), notifier)
	seedSettings(t, store)
	ctx := context.Background()
	store.Load(ctx)

	phone := "+91 12345 67890"
	launched := false
	got, err := store.Update(ctx, model.SiteSettingsPatch{Phone: &phone, IsLaunched: &launched})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got.Phone != phone || got.IsLaunched {
		t.Errorf("patched fields not applied: %+v", got)
	}
	if got.SiteName != "Thar Haveli" {
		t.Errorf("untouched field changed: %q", got.SiteName)
	}

	row, err := store.Get(ctx, "is_launched")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if row.Value != "false" || row.Type != "bool" {
		t.Errorf("stored row = %+v", row)
	}

	if len(notifier.channels) != 1 || notifier.channels[0] != SettingsChannel {
		t.Errorf("notifications = %v", notifier.channels)
	}
}

func TestSettingsUpdateSurvivesNotifyFailure(t *testing.T) {
	db := newTestDB(t, &model.AppSetting{})
	store := NewSettingsStore(db, DefaultSiteSettings(nil), &recordingNotifier{err: errors.New("no listener")})

	name := "IG Thar Village"
	if _, err := store.Update(context.Background(), model.SiteSettingsPatch{SiteName: &name}); err != nil {
		t.Fatalf("update should succeed when notify fails: %v", err)
	}
}

func TestSettingsGetUnknownKey(t *testing.T) {
	db := newTestDB(t, &model.AppSetting{})
	store := NewSettingsStore(db, DefaultSiteSettings(nil), nil)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrSettingNotFound) {
		t.Fatalf("expected ErrSettingNotFound, got %v", err)
	}
}
