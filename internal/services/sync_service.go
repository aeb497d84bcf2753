package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/quintaverde/taskroster/internal/constants"
	"github.com/quintaverde/taskroster/internal/repository"
	"github.com/quintaverde/taskroster/internal/utils"
)

var (
	ErrInvalidDateRange = errors.New("start date must not be after end date")
	ErrInvalidChunkSize = errors.New("chunk size must be a positive number of days")
)

// SyncService converges persisted task assignments onto what the active task
// definitions and the live roster say they should be for a date range.
type SyncService struct {
	taskRepo       repository.TaskDefinitionRepository
	rosterRepo     repository.RosterRepository
	assignmentRepo repository.AssignmentRepository
	suppressor     *Suppressor
	logger         *slog.Logger
}

// NewSyncService creates a new SyncService
func NewSyncService(
	taskRepo repository.TaskDefinitionRepository,
	rosterRepo repository.RosterRepository,
	assignmentRepo repository.AssignmentRepository,
	suppressor *Suppressor,
	logger *slog.Logger,
) *SyncService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncService{
		taskRepo:       taskRepo,
		rosterRepo:     rosterRepo,
		assignmentRepo: assignmentRepo,
		suppressor:     suppressor,
		logger:         logger,
	}
}

// SyncRange synchronizes assignments for the closed date range [start, end].
// An inverted range is rejected, never silently swapped.
func (s *SyncService) SyncRange(start, end time.Time) (ReconcileStats, error) {
	start, end = utils.Day(start), utils.Day(end)
	if start.After(end) {
		return ReconcileStats{}, ErrInvalidDateRange
	}

	runID := uuid.NewString()
	logger := s.logger.With("run_id", runID, "start", utils.DateKey(start), "end", utils.DateKey(end))
	logger.Debug("sync run starting")

	rules, err := s.loadTaskRules()
	if err != nil {
		return ReconcileStats{}, err
	}
	if len(rules) == 0 {
		logger.Debug("sync run finished", "reason", "no active task definitions")
		return ReconcileStats{}, nil
	}

	snapshotsByDate, err := s.buildSnapshots(start, end)
	if err != nil {
		return ReconcileStats{}, err
	}

	targets := s.buildTargets(rules, snapshotsByDate, start, end)

	taskIDs := make([]uint64, len(rules))
	for i, rule := range rules {
		taskIDs[i] = rule.TaskID()
	}

	rec := &reconciler{repo: s.assignmentRepo}
	stats, err := rec.reconcile(targets, taskIDs, start, end)
	if err != nil {
		return ReconcileStats{}, err
	}

	logger.Info("sync run finished",
		"targets", len(targets),
		"created", stats.Created,
		"updated", stats.Updated,
		"orphaned", stats.Orphaned,
		"matched", stats.Matched,
	)
	return stats, nil
}

func (s *SyncService) loadTaskRules() ([]*TaskRule, error) {
	tasks, err := s.taskRepo.ListActive()
	if err != nil {
		return nil, fmt.Errorf("failed to load active task definitions: %w", err)
	}

	rules := make([]*TaskRule, len(tasks))
	for i := range tasks {
		rules[i] = NewTaskRule(&tasks[i])
	}
	return rules, nil
}

// buildSnapshots reads the roster for the range and reduces it to one
// snapshot per (position, date) and per (operator, date). The repository
// returns rows ordered so that the first occurrence is the one from the
// highest-priority overlapping calendar; later duplicates are dropped.
func (s *SyncService) buildSnapshots(start, end time.Time) (map[string][]Snapshot, error) {
	entries, err := s.rosterRepo.ListEffectiveInRange(start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster entries: %w", err)
	}

	type positionDate struct {
		positionID uint64
		date       string
	}
	type operatorDate struct {
		operatorID uint64
		date       string
	}

	seenPosition := make(map[positionDate]struct{})
	seenOperator := make(map[operatorDate]struct{})
	snapshotsByDate := make(map[string][]Snapshot)

	for i := range entries {
		entry := &entries[i]
		if entry.PositionID == 0 {
			continue
		}

		date := utils.Day(entry.Date)
		dateKey := utils.DateKey(date)

		positionKey := positionDate{positionID: entry.PositionID, date: dateKey}
		if _, ok := seenPosition[positionKey]; ok {
			continue
		}
		if entry.OperatorID != nil {
			operatorKey := operatorDate{operatorID: *entry.OperatorID, date: dateKey}
			if _, ok := seenOperator[operatorKey]; ok {
				continue
			}
			seenOperator[operatorKey] = struct{}{}
		}
		seenPosition[positionKey] = struct{}{}

		roomIDs := make(map[uint64]struct{}, len(entry.Position.Rooms))
		for _, room := range entry.Position.Rooms {
			roomIDs[room.ID] = struct{}{}
		}

		var farmID *uint64
		if entry.Position.FarmID != 0 {
			id := entry.Position.FarmID
			farmID = &id
		}

		snapshotsByDate[dateKey] = append(snapshotsByDate[dateKey], Snapshot{
			Date:       date,
			OperatorID: entry.OperatorID,
			PositionID: entry.PositionID,
			FarmID:     farmID,
			BuildingID: entry.Position.BuildingID,
			RoomIDs:    roomIDs,
		})
	}

	return snapshotsByDate, nil
}

// buildTargets combines every rule's due dates with the day's snapshots.
// Each matching snapshot produces its own target, which is how one task
// replicates across several concurrently matching roster entries.
func (s *SyncService) buildTargets(rules []*TaskRule, snapshotsByDate map[string][]Snapshot, start, end time.Time) map[targetKey]Target {
	targets := make(map[targetKey]Target)

	for _, rule := range rules {
		for _, dueDate := range rule.DueDates(start, end) {
			snapshots := snapshotsByDate[utils.DateKey(dueDate)]

			matchedAny := false
			for _, snapshot := range snapshots {
				if !rule.MatchesSnapshot(snapshot) {
					continue
				}
				matchedAny = true
				key := keyFor(rule.TaskID(), dueDate, snapshot.OperatorID)
				targets[key] = Target{
					TaskDefinitionID: rule.TaskID(),
					DueDate:          dueDate,
					CollaboratorID:   snapshot.OperatorID,
				}
			}
			if matchedAny {
				continue
			}

			fallbackID := rule.FallbackCollaboratorID(dueDate)
			if fallbackID == nil && !rule.RequiresOrphanOnEmpty() {
				continue
			}
			key := keyFor(rule.TaskID(), dueDate, fallbackID)
			targets[key] = Target{
				TaskDefinitionID: rule.TaskID(),
				DueDate:          dueDate,
				CollaboratorID:   fallbackID,
			}
		}
	}

	return targets
}

// BackfillOptions configures a chunked manual synchronization.
type BackfillOptions struct {
	Start     time.Time
	End       time.Time
	ChunkDays int
	Suppress  bool
}

// Backfill drives SyncRange over [Start, End] in windows of ChunkDays days,
// optionally with automatic triggers suppressed for the whole run. Long
// ranges are chunked here, by the caller side, so that a single run stays
// short and retryable.
func (s *SyncService) Backfill(opts BackfillOptions) (ReconcileStats, error) {
	if opts.ChunkDays == 0 {
		opts.ChunkDays = constants.DefaultSyncChunkDays
	}
	if opts.ChunkDays < 0 {
		return ReconcileStats{}, ErrInvalidChunkSize
	}

	start, end := utils.Day(opts.Start), utils.Day(opts.End)
	if start.After(end) {
		return ReconcileStats{}, ErrInvalidDateRange
	}

	run := func() (ReconcileStats, error) {
		var total ReconcileStats
		for windowStart := start; !windowStart.After(end); windowStart = windowStart.AddDate(0, 0, opts.ChunkDays) {
			windowEnd := windowStart.AddDate(0, 0, opts.ChunkDays-1)
			if windowEnd.After(end) {
				windowEnd = end
			}
			stats, err := s.SyncRange(windowStart, windowEnd)
			if err != nil {
				return total, fmt.Errorf("failed to sync window %s to %s: %w",
					utils.DateKey(windowStart), utils.DateKey(windowEnd), err)
			}
			total.add(stats)
		}
		return total, nil
	}

	if opts.Suppress && s.suppressor != nil {
		var total ReconcileStats
		err := s.suppressor.Suppress(func() error {
			var runErr error
			total, runErr = run()
			return runErr
		})
		return total, err
	}

	return run()
}

// DefaultBackfillRange derives a backfill range from the stored data when
// the operator did not pass explicit bounds: the span of all effective
// calendars widened to cover every one-time task's scheduled date, clamped
// to include today.
func (s *SyncService) DefaultBackfillRange(today time.Time) (time.Time, time.Time, error) {
	today = utils.Day(today)
	start, end := today, today

	calStart, calEnd, ok, err := s.rosterRepo.CalendarBounds()
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to resolve calendar bounds: %w", err)
	}
	if ok {
		if utils.Day(calStart).Before(start) {
			start = utils.Day(calStart)
		}
		if utils.Day(calEnd).After(end) {
			end = utils.Day(calEnd)
		}
	}

	tasks, err := s.taskRepo.ListActive()
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to load active task definitions: %w", err)
	}
	for i := range tasks {
		scheduled := tasks[i].ScheduledFor
		if scheduled == nil {
			continue
		}
		day := utils.Day(*scheduled)
		if day.Before(start) {
			start = day
		}
		if day.After(end) {
			end = day
		}
	}

	return start, end, nil
}
