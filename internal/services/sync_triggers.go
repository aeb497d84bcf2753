package services

import (
	"log/slog"
	"time"

	"github.com/quintaverde/taskroster/internal/database"
	"github.com/quintaverde/taskroster/internal/models"
	"github.com/quintaverde/taskroster/internal/utils"
	"gorm.io/gorm"
)

// TriggerConfig holds the padding applied around today when a definition
// change re-triggers synchronization.
type TriggerConfig struct {
	PastDays      int
	FutureDays    int
	MaxFutureDays int
}

// SyncTriggers is the re-trigger layer: it reacts to task definition and
// roster mutations by scheduling a bounded synchronizer run after the
// enclosing transaction commits. Runs scheduled here read committed state,
// and their failures are logged and swallowed so an asynchronous side effect
// can never make the original write appear to fail.
type SyncTriggers struct {
	sync       *SyncService
	suppressor *Suppressor
	cfg        TriggerConfig
	logger     *slog.Logger

	// now is swappable for tests
	now func() time.Time
}

// NewSyncTriggers creates a new SyncTriggers
func NewSyncTriggers(sync *SyncService, suppressor *Suppressor, cfg TriggerConfig, logger *slog.Logger) *SyncTriggers {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncTriggers{
		sync:       sync,
		suppressor: suppressor,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// TaskDefinitionSaved schedules a sync for the window affected by a created
// or updated definition.
func (t *SyncTriggers) TaskDefinitionSaved(tx *gorm.DB, task *models.TaskDefinition) {
	start, end := t.windowForTask(task)
	t.scheduleRange(tx, start, end)
}

// TaskDefinitionScopeChanged schedules a sync after the definition's
// farm/building/room scope sets were edited; scope decides which snapshots
// match, so the same window applies as for a field change.
func (t *SyncTriggers) TaskDefinitionScopeChanged(tx *gorm.DB, task *models.TaskDefinition) {
	t.TaskDefinitionSaved(tx, task)
}

// RosterEntrySaved schedules a single-day sync for a created or updated
// roster entry. When an update moved the entry to another date, the old date
// is synced too so the vacated day releases its assignments.
func (t *SyncTriggers) RosterEntrySaved(tx *gorm.DB, entry *models.ShiftAssignment, previousDate *time.Time) {
	dates := map[string]time.Time{}
	if !entry.Date.IsZero() {
		day := utils.Day(entry.Date)
		dates[utils.DateKey(day)] = day
	}
	if previousDate != nil && !previousDate.IsZero() {
		day := utils.Day(*previousDate)
		dates[utils.DateKey(day)] = day
	}
	for _, day := range dates {
		t.scheduleRange(tx, day, day)
	}
}

// RosterEntryDeleted schedules a single-day sync for a deleted roster entry.
func (t *SyncTriggers) RosterEntryDeleted(tx *gorm.DB, entry *models.ShiftAssignment) {
	if entry.Date.IsZero() {
		return
	}
	day := utils.Day(entry.Date)
	t.scheduleRange(tx, day, day)
}

// windowForTask computes the affected window for a definition change:
// [today - past, today + future], widened to cover ScheduledFor when it
// falls outside, and capped to a maximum forward horizon. A one-time task
// with a scheduled date collapses to exactly that day.
func (t *SyncTriggers) windowForTask(task *models.TaskDefinition) (time.Time, time.Time) {
	today := utils.Day(t.now())

	if task.TaskType == models.TaskTypeOneTime && task.ScheduledFor != nil {
		scheduled := utils.Day(*task.ScheduledFor)
		return scheduled, scheduled
	}

	start := today.AddDate(0, 0, -max(t.cfg.PastDays, 0))
	end := today.AddDate(0, 0, max(t.cfg.FutureDays, 0))

	if task.ScheduledFor != nil {
		scheduled := utils.Day(*task.ScheduledFor)
		if scheduled.Before(start) {
			start = scheduled
		}
		if scheduled.After(end) {
			end = scheduled
		}
	}

	maxWindow := max(t.cfg.MaxFutureDays, t.cfg.FutureDays)
	if maxWindow > 0 {
		maxEnd := start.AddDate(0, 0, maxWindow)
		if end.After(maxEnd) {
			end = maxEnd
		}
	}

	return start, end
}

// scheduleRange defers a synchronizer run for [start, end] until the
// transaction enclosing tx commits. While suppression is active the trigger
// is a no-op.
func (t *SyncTriggers) scheduleRange(tx *gorm.DB, start, end time.Time) {
	if t.suppressor != nil && t.suppressor.Suppressed() {
		return
	}

	if start.After(end) {
		start, end = end, start
	}

	database.OnCommit(tx, func() {
		if _, err := t.sync.SyncRange(start, end); err != nil {
			t.logger.Error("deferred assignment sync failed",
				"start", utils.DateKey(start),
				"end", utils.DateKey(end),
				"error", err,
			)
		}
	})
}
