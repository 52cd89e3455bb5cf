package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/igtharvillage/thar-api/model"
	"gorm.io/gorm"
)

// RevocationPurger removes revocation entries for expired tokens
type RevocationPurger interface {
	PurgeExpiredRevocations(ctx context.Context) (int64, error)
}

// PurgeRevokedTokensJob runs hourly. Expired tokens fail validation on their
// own, so their revocation entries are no longer needed.
func PurgeRevokedTokensJob(purger RevocationPurger) Job {
	return Job{
		Name: "purge_revoked_tokens",
		Spec: "0 0 * * * *",
		Run: func(ctx context.Context) (string, error) {
			removed, err := purger.PurgeExpiredRevocations(ctx)
			if err != nil {
				return "", fmt.Errorf("failed to purge token blacklist: %w", err)
			}
			return fmt.Sprintf("removed %d expired revocations", removed), nil
		},
	}
}

// PruneLogsJob runs daily at 3 AM and deletes audit and job log entries
// older than retention
func PruneLogsJob(db *gorm.DB, retention time.Duration) Job {
	return Job{
		Name: "prune_logs",
		Spec: "0 0 3 * * *",
		Run: func(ctx context.Context) (string, error) {
			cutoff := time.Now().UTC().Add(-retention)

			audit := db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&model.AdminAuditLog{})
			if audit.Error != nil {
				return "", fmt.Errorf("failed to prune audit logs: %w", audit.Error)
			}

			jobs := db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&model.CronJobLog{})
			if jobs.Error != nil {
				return "", fmt.Errorf("failed to prune cron logs: %w", jobs.Error)
			}

			return fmt.Sprintf("removed %d audit logs and %d cron logs", audit.RowsAffected, jobs.RowsAffected), nil
		},
	}
}

// ReindexJob rebuilds the search index every six hours
func ReindexJob(reindex func(ctx context.Context) (int, error)) Job {
	return Job{
		Name:    "reindex_search",
		Spec:    "0 30 */6 * * *",
		Timeout: 30 * time.Minute,
		Run: func(ctx context.Context) (string, error) {
			count, err := reindex(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("indexed %d documents", count), nil
		},
	}
}
