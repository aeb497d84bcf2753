package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/quintaverde/taskroster/internal/database"
	"github.com/quintaverde/taskroster/internal/models"
	"github.com/quintaverde/taskroster/internal/repository"
	"github.com/quintaverde/taskroster/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTaskDefinitionNotFound  = errors.New("task definition not found")
	ErrTaskNameRequired        = errors.New("name is required")
	ErrScheduledForRequired    = errors.New("a one-time task requires a scheduled date")
	ErrRecurrenceOnOneTime     = errors.New("a one-time task cannot carry recurrence days")
	ErrScheduledForOnRecurring = errors.New("a recurring task cannot carry a scheduled date")
	ErrRecurrenceRequired      = errors.New("a recurring task requires at least one recurrence day")
	ErrInvalidWeeklyDay        = errors.New("weekly days must be between 0 (Monday) and 6 (Sunday)")
	ErrInvalidMonthDay         = errors.New("month days must be between 1 and 31")
	ErrInvalidFortnightDay     = errors.New("fortnight days must be between 1 and 15")
	ErrInvalidMonthlyWeekDay   = errors.New("monthly week days must be between 1 and 5")
	ErrUnknownTaskType         = errors.New("unknown task type")
	ErrTaskStatusNotFound      = errors.New("task status not found")
	ErrStatusStillActive       = errors.New("deactivation requires an inactive status")
)

// TaskDefinitionService handles task definition business logic. Every
// mutation runs inside a hook-carrying transaction and registers the
// matching sync trigger, so assignments follow definition edits
// automatically once the write commits.
type TaskDefinitionService struct {
	db       *gorm.DB
	repo     repository.TaskDefinitionRepository
	triggers *SyncTriggers
}

// NewTaskDefinitionService creates a new TaskDefinitionService
func NewTaskDefinitionService(db *gorm.DB, repo repository.TaskDefinitionRepository, triggers *SyncTriggers) *TaskDefinitionService {
	return &TaskDefinitionService{db: db, repo: repo, triggers: triggers}
}

// CreateTaskDefinitionInput represents input for creating a task definition
type CreateTaskDefinitionInput struct {
	Name                string
	Description         string
	DisplayOrder        int
	StatusID            uint64
	CategoryID          *uint64
	TaskType            models.TaskType
	ScheduledFor        *time.Time
	WeeklyDays          []int
	MonthDays           []int
	FortnightDays       []int
	MonthlyWeekDays     []int
	PositionID          *uint64
	CollaboratorID      *uint64
	EvidenceRequirement string
}

// UpdateTaskDefinitionInput represents input for updating a task definition;
// nil fields are left unchanged.
type UpdateTaskDefinitionInput struct {
	Name                *string
	Description         *string
	DisplayOrder        *int
	StatusID            *uint64
	CategoryID          *uint64
	TaskType            *models.TaskType
	ScheduledFor        *time.Time
	ClearScheduledFor   bool
	WeeklyDays          []int
	MonthDays           []int
	FortnightDays       []int
	MonthlyWeekDays     []int
	PositionID          *uint64
	ClearPosition       bool
	CollaboratorID      *uint64
	ClearCollaborator   bool
	EvidenceRequirement *string
}

// ScopeInput replaces the farm/building/room scope sets of a definition
type ScopeInput struct {
	FarmIDs     []uint64
	BuildingIDs []uint64
	RoomIDs     []uint64
}

// List retrieves task definitions
func (s *TaskDefinitionService) List(filter repository.TaskDefinitionFilter) ([]models.TaskDefinition, int64, error) {
	definitions, total, err := s.repo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list task definitions: %w", err)
	}
	return definitions, total, nil
}

// Get returns a definition with its scope relations loaded
func (s *TaskDefinitionService) Get(id uint64) (*models.TaskDefinition, error) {
	task, err := s.repo.FindByID(id, "Status", "Category", "Position", "Collaborator", "Farms", "Buildings", "Rooms")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskDefinitionNotFound
		}
		return nil, fmt.Errorf("failed to find task definition: %w", err)
	}
	return task, nil
}

// Create creates a task definition and schedules the initial sync
func (s *TaskDefinitionService) Create(input CreateTaskDefinitionInput) (*models.TaskDefinition, error) {
	if input.Name == "" {
		return nil, ErrTaskNameRequired
	}

	task := &models.TaskDefinition{
		Name:                input.Name,
		Description:         input.Description,
		DisplayOrder:        input.DisplayOrder,
		StatusID:            input.StatusID,
		CategoryID:          input.CategoryID,
		TaskType:            input.TaskType,
		ScheduledFor:        normalizeDatePtr(input.ScheduledFor),
		WeeklyDays:          normalizeDays(input.WeeklyDays),
		MonthDays:           normalizeDays(input.MonthDays),
		FortnightDays:       normalizeDays(input.FortnightDays),
		MonthlyWeekDays:     normalizeDays(input.MonthlyWeekDays),
		PositionID:          input.PositionID,
		CollaboratorID:      input.CollaboratorID,
		EvidenceRequirement: input.EvidenceRequirement,
	}

	if err := validateSchedule(task); err != nil {
		return nil, err
	}

	err := database.Transaction(s.db, func(tx *gorm.DB) error {
		if err := repository.NewTaskDefinitionRepository(tx).Create(task); err != nil {
			return fmt.Errorf("failed to create task definition: %w", err)
		}
		s.triggers.TaskDefinitionSaved(tx, task)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(task.ID)
}

// Update applies a partial update and schedules a sync for the affected window
func (s *TaskDefinitionService) Update(id uint64, input UpdateTaskDefinitionInput) (*models.TaskDefinition, error) {
	task, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskDefinitionNotFound
		}
		return nil, fmt.Errorf("failed to find task definition: %w", err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, ErrTaskNameRequired
		}
		task.Name = *input.Name
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.DisplayOrder != nil {
		task.DisplayOrder = *input.DisplayOrder
	}
	if input.StatusID != nil {
		task.StatusID = *input.StatusID
	}
	if input.CategoryID != nil {
		task.CategoryID = input.CategoryID
	}
	if input.TaskType != nil {
		task.TaskType = *input.TaskType
	}
	if input.ClearScheduledFor {
		task.ScheduledFor = nil
	} else if input.ScheduledFor != nil {
		task.ScheduledFor = normalizeDatePtr(input.ScheduledFor)
	}
	if input.WeeklyDays != nil {
		task.WeeklyDays = normalizeDays(input.WeeklyDays)
	}
	if input.MonthDays != nil {
		task.MonthDays = normalizeDays(input.MonthDays)
	}
	if input.FortnightDays != nil {
		task.FortnightDays = normalizeDays(input.FortnightDays)
	}
	if input.MonthlyWeekDays != nil {
		task.MonthlyWeekDays = normalizeDays(input.MonthlyWeekDays)
	}
	if input.ClearPosition {
		task.PositionID = nil
	} else if input.PositionID != nil {
		task.PositionID = input.PositionID
	}
	if input.ClearCollaborator {
		task.CollaboratorID = nil
	} else if input.CollaboratorID != nil {
		task.CollaboratorID = input.CollaboratorID
	}
	if input.EvidenceRequirement != nil {
		task.EvidenceRequirement = *input.EvidenceRequirement
	}

	if err := validateSchedule(task); err != nil {
		return nil, err
	}

	err = database.Transaction(s.db, func(tx *gorm.DB) error {
		if err := repository.NewTaskDefinitionRepository(tx).Update(task); err != nil {
			return fmt.Errorf("failed to update task definition: %w", err)
		}
		s.triggers.TaskDefinitionSaved(tx, task)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(task.ID)
}

// Deactivate moves a definition to an inactive status. Inactive
// definitions stop producing targets; their existing assignment rows are
// left untouched.
func (s *TaskDefinitionService) Deactivate(id uint64, statusID uint64) (*models.TaskDefinition, error) {
	task, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskDefinitionNotFound
		}
		return nil, fmt.Errorf("failed to find task definition: %w", err)
	}

	var status models.TaskStatus
	if err := s.db.First(&status, statusID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskStatusNotFound
		}
		return nil, fmt.Errorf("failed to find task status: %w", err)
	}
	if status.IsActive {
		return nil, ErrStatusStillActive
	}

	task.StatusID = status.ID

	err = database.Transaction(s.db, func(tx *gorm.DB) error {
		if err := repository.NewTaskDefinitionRepository(tx).Update(task); err != nil {
			return fmt.Errorf("failed to deactivate task definition: %w", err)
		}
		s.triggers.TaskDefinitionSaved(tx, task)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(task.ID)
}

// SetScope replaces the definition's farm/building/room sets and schedules a
// sync, since scope membership decides which snapshots match.
func (s *TaskDefinitionService) SetScope(id uint64, input ScopeInput) (*models.TaskDefinition, error) {
	task, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskDefinitionNotFound
		}
		return nil, fmt.Errorf("failed to find task definition: %w", err)
	}

	err = database.Transaction(s.db, func(tx *gorm.DB) error {
		repo := repository.NewTaskDefinitionRepository(tx)
		if err := repo.ReplaceScope(task, input.FarmIDs, input.BuildingIDs, input.RoomIDs); err != nil {
			return fmt.Errorf("failed to replace task scope: %w", err)
		}
		s.triggers.TaskDefinitionScopeChanged(tx, task)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(task.ID)
}

// validateSchedule enforces the coherence rules between task type, scheduled
// date, and the recurrence arrays.
func validateSchedule(task *models.TaskDefinition) error {
	if err := validateDayRange(task.WeeklyDays, 0, 6, ErrInvalidWeeklyDay); err != nil {
		return err
	}
	if err := validateDayRange(task.MonthDays, 1, 31, ErrInvalidMonthDay); err != nil {
		return err
	}
	if err := validateDayRange(task.FortnightDays, 1, 15, ErrInvalidFortnightDay); err != nil {
		return err
	}
	if err := validateDayRange(task.MonthlyWeekDays, 1, 5, ErrInvalidMonthlyWeekDay); err != nil {
		return err
	}

	switch task.TaskType {
	case "":
		return nil
	case models.TaskTypeOneTime:
		if task.ScheduledFor == nil {
			return ErrScheduledForRequired
		}
		if task.HasRecurrence() {
			return ErrRecurrenceOnOneTime
		}
	case models.TaskTypeRecurring:
		if task.ScheduledFor != nil {
			return ErrScheduledForOnRecurring
		}
		if !task.HasRecurrence() {
			return ErrRecurrenceRequired
		}
	default:
		return ErrUnknownTaskType
	}

	return nil
}

func validateDayRange(days []int, min, max int, rangeErr error) error {
	for _, day := range days {
		if day < min || day > max {
			return rangeErr
		}
	}
	return nil
}

// normalizeDays sorts and deduplicates a recurrence array so equality and
// storage stay canonical.
func normalizeDays(days []int) []int {
	if len(days) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(days))
	normalized := make([]int, 0, len(days))
	for _, day := range days {
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		normalized = append(normalized, day)
	}
	sort.Ints(normalized)
	return normalized
}

func normalizeDatePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	day := utils.Day(*t)
	return &day
}
