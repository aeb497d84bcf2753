package repository

import (
	"time"

	"github.com/quintaverde/taskroster/internal/models"
)

// TaskDefinitionRepository defines the interface for task definition data access
type TaskDefinitionRepository interface {
	// Create creates a new task definition
	Create(task *models.TaskDefinition) error

	// FindByID finds a task definition by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.TaskDefinition, error)

	// List retrieves task definitions with filtering and pagination
	List(filter TaskDefinitionFilter) ([]models.TaskDefinition, int64, error)

	// ListActive returns every definition whose status is active, with the
	// scope relations the synchronizer needs already loaded
	ListActive() ([]models.TaskDefinition, error)

	// Update updates a task definition
	Update(task *models.TaskDefinition) error

	// ReplaceScope replaces the farm/building/room scope sets of a definition
	ReplaceScope(task *models.TaskDefinition, farmIDs, buildingIDs, roomIDs []uint64) error

	// FindStatusByID finds a task status row
	FindStatusByID(id uint64) (*models.TaskStatus, error)
}

// TaskDefinitionFilter holds filtering options for listing task definitions
type TaskDefinitionFilter struct {
	StatusID   *uint64
	CategoryID *uint64
	TaskType   *models.TaskType
	ActiveOnly bool
	Page       int
	PageSize   int
}

// RosterRepository defines the interface for shift calendar and roster data access
type RosterRepository interface {
	// CreateCalendar creates a shift calendar
	CreateCalendar(calendar *models.ShiftCalendar) error

	// FindCalendarByID finds a calendar by ID
	FindCalendarByID(id uint64) (*models.ShiftCalendar, error)

	// ListCalendars lists calendars, newest first
	ListCalendars(page, pageSize int) ([]models.ShiftCalendar, int64, error)

	// UpdateCalendar updates a calendar
	UpdateCalendar(calendar *models.ShiftCalendar) error

	// CreateEntry creates a roster entry
	CreateEntry(entry *models.ShiftAssignment) error

	// FindEntryByID finds a roster entry by ID
	FindEntryByID(id uint64, preload ...string) (*models.ShiftAssignment, error)

	// UpdateEntry updates a roster entry
	UpdateEntry(entry *models.ShiftAssignment) error

	// DeleteEntry deletes a roster entry
	DeleteEntry(id uint64) error

	// ListEffectiveInRange returns the roster entries for the date range from
	// currently effective calendars (draft/approved/modified), ordered by
	// date, then calendar status priority (modified > approved > draft), then
	// most recently updated calendar, most recently created calendar, and
	// calendar id for determinism
	ListEffectiveInRange(start, end time.Time) ([]models.ShiftAssignment, error)

	// CalendarBounds returns the minimum start and maximum end dates across
	// all effective calendars; ok is false when none exist
	CalendarBounds() (start, end time.Time, ok bool, err error)
}

// AssignmentRepository defines the interface for task assignment data access.
// Reconciliation only ever creates rows and rewrites collaborator fields;
// completion fields are written through UpdateCompletion alone, and nothing
// here deletes a row.
type AssignmentRepository interface {
	// Create creates a new assignment row
	Create(assignment *models.TaskAssignment) error

	// FindByID finds an assignment by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.TaskAssignment, error)

	// List retrieves assignments with filtering and pagination
	List(filter AssignmentFilter) ([]models.TaskAssignment, int64, error)

	// ListForTasksInRange returns every assignment for the given task ids with
	// a due date inside [start, end], ordered by due date then task id
	ListForTasksInRange(taskIDs []uint64, start, end time.Time) ([]models.TaskAssignment, error)

	// UpdateCollaborator persists only the collaborator ownership fields of
	// the row (collaborator, previous collaborator, updated_at)
	UpdateCollaborator(assignment *models.TaskAssignment) error

	// UpdateCompletion persists only the completion fields of the row
	UpdateCompletion(assignment *models.TaskAssignment) error

	// AddEvidence attaches an evidence record to an assignment
	AddEvidence(evidence *models.TaskAssignmentEvidence) error

	// InTransaction runs fn against a repository bound to a single database
	// transaction; all mutations inside fn commit or roll back together
	InTransaction(fn func(repo AssignmentRepository) error) error
}

// AssignmentFilter holds filtering options for listing assignments
type AssignmentFilter struct {
	TaskDefinitionID *uint64
	CollaboratorID   *uint64
	OrphansOnly      bool
	DueDateFrom      *time.Time
	DueDateTo        *time.Time
	Page             int
	PageSize         int
}
