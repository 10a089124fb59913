// Package cron schedules the background maintenance jobs: the admin inbox
// index rebuild, the presence sweep, and log cleanup. Every run is recorded
// as a CronJobLog row.
package cron

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/nstclasses/tutor-api/database"
	"github.com/nstclasses/tutor-api/model"
	"github.com/nstclasses/tutor-api/services"
)

// Manager owns the cron scheduler and the dependencies its jobs need
type Manager struct {
	cron   *cron.Cron
	db     *gorm.DB
	chat   *services.ChatService
	remote *database.RemoteStore
}

// NewManager creates the scheduler without starting it
func NewManager(db *gorm.DB, chat *services.ChatService, remote *database.RemoteStore) *Manager {
	return &Manager{
		cron:   cron.New(cron.WithSeconds()),
		db:     db,
		chat:   chat,
		remote: remote,
	}
}

// Start registers all jobs and starts the scheduler
func (m *Manager) Start() error {
	jobs := []struct {
		spec string
		name string
		run  func(context.Context) (int, error)
	}{
		{"0 */5 * * * *", "rebuild_chat_index", m.rebuildChatIndex},
		{"0 */2 * * * *", "presence_sweep", m.presenceSweep},
		{"0 0 3 * * *", "cleanup_old_logs", m.cleanupOldLogs},
	}

	for _, j := range jobs {
		j := j
		if _, err := m.cron.AddFunc(j.spec, func() { m.runJob(j.name, j.run) }); err != nil {
			return err
		}
	}

	m.cron.Start()
	log.Printf("Cron manager started with %d jobs", len(jobs))
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish
func (m *Manager) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
}

// runJob wraps a job with logging to the cron_job_logs table
func (m *Manager) runJob(name string, fn func(context.Context) (int, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	entry := model.CronJobLog{
		JobName:   name,
		Status:    model.CronJobRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := m.db.Create(&entry).Error; err != nil {
		log.Printf("Cron %s: failed to record start: %v", name, err)
	}

	count, err := fn(ctx)

	finished := time.Now().UTC()
	entry.FinishedAt = &finished
	entry.ItemCount = count
	if err != nil {
		entry.Status = model.CronJobFailed
		entry.Error = err.Error()
		log.Printf("Cron %s failed: %v", name, err)
	} else {
		entry.Status = model.CronJobCompleted
	}

	if entry.ID != 0 {
		if err := m.db.Save(&entry).Error; err != nil {
			log.Printf("Cron %s: failed to record result: %v", name, err)
		}
	}
}
