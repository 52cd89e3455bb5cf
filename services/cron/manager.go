package cron

import (
	"context"
	"time"

	"github.com/igtharvillage/thar-api/model"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Job is a scheduled maintenance task. Run returns a short summary for the
// job log.
type Job struct {
	Name    string
	Spec    string // six-field cron spec, seconds first
	Timeout time.Duration
	Run     func(ctx context.Context) (string, error)
}

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron *cron.Cron
	db   *gorm.DB
	jobs []Job
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB, jobs ...Job) *CronManager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron: c,
		db:   db,
		jobs: jobs,
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	zap.S().Info("[CRON] starting cron jobs")

	for _, job := range m.jobs {
		job := job
		if _, err := m.cron.AddFunc(job.Spec, func() { m.RunJob(job) }); err != nil {
			return err
		}
		zap.S().Infof("[CRON] registered %s (%s)", job.Name, job.Spec)
	}

	m.cron.Start()
	return nil
}

// Stop stops all cron jobs and waits for running ones
func (m *CronManager) Stop() {
	zap.S().Info("[CRON] stopping cron jobs")
	ctx := m.cron.Stop()
	<-ctx.Done()
	zap.S().Info("[CRON] cron jobs stopped")
}

// RunJob runs one job now and records the outcome in the job log
func (m *CronManager) RunJob(job Job) {
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	entry := m.logJobStart(job.Name)
	message, err := job.Run(ctx)
	if err != nil {
		m.logJobError(entry, err)
		return
	}
	m.logJobComplete(entry, message)
}

// logJobStart logs the start of a cron job
func (m *CronManager) logJobStart(jobName string) *model.CronJobLog {
	zap.S().Infof("[CRON] starting job %s", jobName)

	entry := &model.CronJobLog{
		JobName:   jobName,
		Status:    "running",
		StartedAt: time.Now().UTC(),
	}
	if err := m.db.Create(entry).Error; err != nil {
		zap.S().Warnf("[CRON] failed to record start of %s: %v", jobName, err)
	}
	return entry
}

// logJobComplete logs successful completion of a cron job
func (m *CronManager) logJobComplete(entry *model.CronJobLog, message string) {
	zap.S().Infof("[CRON] completed job %s: %s", entry.JobName, message)
	m.finish(entry, map[string]interface{}{
		"status":  "completed",
		"message": message,
	})
}

// logJobError logs a cron job error
func (m *CronManager) logJobError(entry *model.CronJobLog, err error) {
	zap.S().Errorf("[CRON] job %s failed: %v", entry.JobName, err)
	m.finish(entry, map[string]interface{}{
		"status":    "failed",
		"error_msg": err.Error(),
	})
}

func (m *CronManager) finish(entry *model.CronJobLog, updates map[string]interface{}) {
	if entry.ID == 0 {
		return
	}
	now := time.Now().UTC()
	updates["completed_at"] = now
	updates["duration"] = now.Sub(entry.StartedAt).Milliseconds()

	if err := m.db.Model(&model.CronJobLog{}).Where("id = ?", entry.ID).Updates(updates).Error; err != nil {
		zap.S().Warnf("[CRON] failed to record outcome of %s: %v", entry.JobName, err)
	}
}
