package cron

import (
	"context"
	"time"

	"github.com/nstclasses/tutor-api/model"
)

// presenceTimeout is how long after the last presence touch a user still
// counts as online
const presenceTimeout = 5 * time.Minute

// logRetention is how long cron job log rows are kept
const logRetention = 30 * 24 * time.Hour

// rebuildChatIndex regenerates the cached admin inbox index from a full scan
// of the private chat trees
func (m *Manager) rebuildChatIndex(ctx context.Context) (int, error) {
	return m.chat.RebuildSessionIndex(ctx)
}

// presenceSweep marks users offline when their last presence touch is stale.
// The full record goes back out through both stores so clients watching the
// live tree see the flag flip.
func (m *Manager) presenceSweep(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-presenceTimeout)

	var stale []model.User
	err := m.db.WithContext(ctx).
		Where("is_online = ? AND (last_active_time IS NULL OR last_active_time < ?)", true, cutoff).
		Find(&stale).Error
	if err != nil {
		return 0, err
	}

	swept := 0
	for i := range stale {
		stale[i].IsOnline = false
		if err := m.remote.SaveUser(ctx, &stale[i]); err != nil {
			return swept, err
		}
		swept++
	}
	return swept, nil
}

// cleanupOldLogs hard-deletes cron job log rows past retention
func (m *Manager) cleanupOldLogs(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-logRetention)

	res := m.db.WithContext(ctx).
		Unscoped().
		Where("created_at < ?", cutoff).
		Delete(&model.CronJobLog{})
	return int(res.RowsAffected), res.Error
}
