package database

import (
	"context"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SettingsChannel is the Postgres NOTIFY channel used when site settings change
const SettingsChannel = "site_settings_changed"

// PGNotifier publishes change notifications through pg_notify
type PGNotifier struct {
	db *gorm.DB
}

func NewPGNotifier(db *gorm.DB) *PGNotifier {
	return &PGNotifier{db: db}
}

// Notify sends payload on channel. Listeners on every instance receive it,
// including the sender.
func (n *PGNotifier) Notify(ctx context.Context, channel, payload string) error {
	return n.db.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", channel, payload).Error
}

// ListenForChanges subscribes to channel on its own connection and calls
// onChange for every notification until ctx is cancelled. A reconnect also
// triggers onChange, since notifications may have been missed while the
// connection was down.
func ListenForChanges(ctx context.Context, dsn, channel string, onChange func(payload string)) error {
	listener := pq.NewListener(dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			zap.S().Warnf("[DB] listener on %s: %v", channel, err)
		}
	})
	if err := listener.Listen(channel); err != nil {
		listener.Close()
		return err
	}

	zap.S().Infof("[DB] listening on channel %s", channel)

	go func() {
		defer listener.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case n := <-listener.Notify:
				// nil after a reconnect
				if n == nil {
					onChange("")
					continue
				}
				onChange(n.Extra)
			case <-time.After(90 * time.Second):
				if err := listener.Ping(); err != nil {
					zap.S().Warnf("[DB] listener ping on %s failed: %v", channel, err)
				}
			}
		}
	}()

	return nil
}
