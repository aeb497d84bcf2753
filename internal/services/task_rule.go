package services

import (
	"time"

	"github.com/quintaverde/taskroster/internal/models"
	"github.com/quintaverde/taskroster/internal/utils"
)

// Snapshot is one deduplicated roster fact for a (position, date) pair,
// annotated with everything scope matching needs. Snapshots are rebuilt on
// every synchronizer run and never persisted.
type Snapshot struct {
	Date       time.Time
	OperatorID *uint64
	PositionID uint64
	FarmID     *uint64
	BuildingID *uint64
	RoomIDs    map[uint64]struct{}
}

// Target is a desired (task, due date, collaborator) triple the reconciler
// tries to realize. A nil CollaboratorID marks an orphan placeholder: the
// task is known to be due but nobody matched.
type Target struct {
	TaskDefinitionID uint64
	DueDate          time.Time
	CollaboratorID   *uint64
}

// TaskRule wraps a task definition with its scope sets and recurrence arrays
// cached as lookup sets, so that evaluating a multi-week window does not
// re-walk the relation slices per day.
type TaskRule struct {
	task *models.TaskDefinition

	farmIDs     map[uint64]struct{}
	buildingIDs map[uint64]struct{}
	roomIDs     map[uint64]struct{}

	weeklyDays      map[int]struct{}
	monthDays       map[int]struct{}
	fortnightDays   map[int]struct{}
	monthlyWeekDays map[int]struct{}
}

// NewTaskRule builds a rule from a definition loaded with its scope
// relations.
func NewTaskRule(task *models.TaskDefinition) *TaskRule {
	rule := &TaskRule{
		task:            task,
		farmIDs:         make(map[uint64]struct{}, len(task.Farms)),
		buildingIDs:     make(map[uint64]struct{}, len(task.Buildings)),
		roomIDs:         make(map[uint64]struct{}, len(task.Rooms)),
		weeklyDays:      intSet(task.WeeklyDays),
		monthDays:       intSet(task.MonthDays),
		fortnightDays:   intSet(task.FortnightDays),
		monthlyWeekDays: intSet(task.MonthlyWeekDays),
	}

	for _, farm := range task.Farms {
		rule.farmIDs[farm.ID] = struct{}{}
	}
	for _, building := range task.Buildings {
		rule.buildingIDs[building.ID] = struct{}{}
	}
	for _, room := range task.Rooms {
		rule.roomIDs[room.ID] = struct{}{}
	}

	return rule
}

func intSet(values []int) map[int]struct{} {
	set := make(map[int]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// TaskID returns the wrapped definition's id.
func (r *TaskRule) TaskID() uint64 {
	return r.task.ID
}

// DueDates returns every date in [start, end] on which the task is due.
// A definition without a task type never fires; a one-time task fires on its
// scheduled date when it falls in range; a recurring task fires on any date
// matched by at least one of its recurrence dimensions.
func (r *TaskRule) DueDates(start, end time.Time) []time.Time {
	if start.After(end) {
		return nil
	}
	if r.task.TaskType == "" {
		return nil
	}

	if r.task.TaskType == models.TaskTypeOneTime {
		scheduled := r.task.ScheduledFor
		if scheduled == nil {
			return nil
		}
		day := utils.Day(*scheduled)
		if day.Before(start) || day.After(end) {
			return nil
		}
		return []time.Time{day}
	}

	if !r.task.HasRecurrence() {
		return nil
	}

	var dates []time.Time
	for current := utils.Day(start); !current.After(end); current = current.AddDate(0, 0, 1) {
		if r.matchesRecurringDate(current) {
			dates = append(dates, current)
		}
	}
	return dates
}

func (r *TaskRule) matchesRecurringDate(date time.Time) bool {
	if _, ok := r.weeklyDays[utils.WeekdayIndex(date)]; ok {
		return true
	}

	day := date.Day()
	if _, ok := r.monthDays[day]; ok {
		return true
	}
	if _, ok := r.fortnightDays[utils.FortnightDay(day)]; ok {
		return true
	}
	if _, ok := r.monthlyWeekDays[utils.WeekOfMonth(day)]; ok {
		return true
	}

	return false
}

// MatchesSnapshot reports whether the snapshot falls inside the task's
// scope. Dimensions combine conjunctively; within the room dimension a
// single overlapping room qualifies. A task with no scope at all matches
// every snapshot.
func (r *TaskRule) MatchesSnapshot(snapshot Snapshot) bool {
	if r.task.PositionID != nil && snapshot.PositionID != *r.task.PositionID {
		return false
	}

	if r.task.CollaboratorID != nil {
		if snapshot.OperatorID == nil || *snapshot.OperatorID != *r.task.CollaboratorID {
			return false
		}
	}

	if len(r.farmIDs) > 0 {
		if snapshot.FarmID == nil {
			return false
		}
		if _, ok := r.farmIDs[*snapshot.FarmID]; !ok {
			return false
		}
	}

	if len(r.buildingIDs) > 0 {
		if snapshot.BuildingID == nil {
			return false
		}
		if _, ok := r.buildingIDs[*snapshot.BuildingID]; !ok {
			return false
		}
	}

	if len(r.roomIDs) > 0 && !overlaps(snapshot.RoomIDs, r.roomIDs) {
		return false
	}

	return true
}

func overlaps(a, b map[uint64]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for id := range a {
		if _, ok := b[id]; ok {
			return true
		}
	}
	return false
}

// hasContextualScope reports whether any scope dimension other than the
// pinned collaborator is configured.
func (r *TaskRule) hasContextualScope() bool {
	return r.task.PositionID != nil || len(r.farmIDs) > 0 || len(r.buildingIDs) > 0 || len(r.roomIDs) > 0
}

// FallbackCollaboratorID resolves the collaborator to assign when no roster
// snapshot matched. Only a task pinned to a collaborator and carrying no
// contextual scope falls back, and only while that collaborator is
// employment-active on the due date.
func (r *TaskRule) FallbackCollaboratorID(dueDate time.Time) *uint64 {
	collaborator := r.task.Collaborator
	if collaborator == nil {
		return nil
	}

	if r.hasContextualScope() {
		// Contextual scope means a shift has to match before we assign.
		return nil
	}

	if collaborator.IsActiveOn(dueDate) {
		id := collaborator.ID
		return &id
	}
	return nil
}

// RequiresOrphanOnEmpty reports whether an orphan placeholder should be
// persisted when nothing matched. Only a task that is scheduled to occur and
// carries no contextual scope qualifies: an orphan flags "due but unknown
// who", which is meaningless when the scope itself disproved relevance that
// day. Scoped tasks with no match simply do not fire.
func (r *TaskRule) RequiresOrphanOnEmpty() bool {
	return r.task.TaskType != "" && !r.hasContextualScope()
}
