package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/quintaverde/taskroster/internal/database"
	"github.com/quintaverde/taskroster/internal/models"
	"github.com/quintaverde/taskroster/internal/repository"
	"github.com/quintaverde/taskroster/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrCalendarNotFound     = errors.New("shift calendar not found")
	ErrRosterEntryNotFound  = errors.New("roster entry not found")
	ErrCalendarNameRequired = errors.New("calendar name is required")
	ErrCalendarRangeInvalid = errors.New("calendar start date must not be after end date")
	ErrCalendarNotDraft     = errors.New("only a draft calendar can be approved")
	ErrEntryOutsideCalendar = errors.New("entry date falls outside the calendar range")
	ErrPositionNotFound     = errors.New("position not found")
	ErrPositionNotActive    = errors.New("position is not active on the entry date")
)

// RosterService handles shift calendar and roster entry business logic.
// Entry mutations register single-day sync triggers; an entry update
// captures its previous date first so a moved entry re-syncs both days.
type RosterService struct {
	db       *gorm.DB
	repo     repository.RosterRepository
	triggers *SyncTriggers
}

// NewRosterService creates a new RosterService
func NewRosterService(db *gorm.DB, repo repository.RosterRepository, triggers *SyncTriggers) *RosterService {
	return &RosterService{db: db, repo: repo, triggers: triggers}
}

// CreateCalendarInput represents input for creating a shift calendar
type CreateCalendarInput struct {
	Name           string
	StartDate      time.Time
	EndDate        time.Time
	Status         models.CalendarStatus
	BaseCalendarID *uint64
	Notes          string
}

// CreateEntryInput represents input for creating a roster entry
type CreateEntryInput struct {
	CalendarID     uint64
	PositionID     uint64
	Date           time.Time
	OperatorID     *uint64
	IsAutoAssigned bool
	Notes          string
}

// UpdateEntryInput represents input for updating a roster entry; nil fields
// are left unchanged.
type UpdateEntryInput struct {
	Date          *time.Time
	OperatorID    *uint64
	ClearOperator bool
	Notes         *string
}

// checkPositionActive rejects booking a position on a date outside its
// validity window.
func (s *RosterService) checkPositionActive(positionID uint64, date time.Time) error {
	var position models.PositionDefinition
	if err := s.db.First(&position, positionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPositionNotFound
		}
		return fmt.Errorf("failed to find position: %w", err)
	}
	if !position.IsActiveOn(date) {
		return ErrPositionNotActive
	}
	return nil
}

// ListCalendars lists calendars, newest first
func (s *RosterService) ListCalendars(page, pageSize int) ([]models.ShiftCalendar, int64, error) {
	calendars, total, err := s.repo.ListCalendars(page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list calendars: %w", err)
	}
	return calendars, total, nil
}

// CreateCalendar creates a shift calendar
func (s *RosterService) CreateCalendar(input CreateCalendarInput) (*models.ShiftCalendar, error) {
	if input.Name == "" {
		return nil, ErrCalendarNameRequired
	}

	start, end := utils.Day(input.StartDate), utils.Day(input.EndDate)
	if start.After(end) {
		return nil, ErrCalendarRangeInvalid
	}

	status := input.Status
	if status == "" {
		status = models.CalendarStatusDraft
	}

	calendar := &models.ShiftCalendar{
		Name:           input.Name,
		StartDate:      start,
		EndDate:        end,
		Status:         status,
		BaseCalendarID: input.BaseCalendarID,
		Notes:          input.Notes,
	}

	if err := s.repo.CreateCalendar(calendar); err != nil {
		return nil, fmt.Errorf("failed to create calendar: %w", err)
	}

	return calendar, nil
}

// ApproveCalendar moves a draft calendar to approved and re-syncs its whole
// span, since its entries just became authoritative over plain drafts.
func (s *RosterService) ApproveCalendar(id uint64) (*models.ShiftCalendar, error) {
	calendar, err := s.repo.FindCalendarByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCalendarNotFound
		}
		return nil, fmt.Errorf("failed to find calendar: %w", err)
	}

	if calendar.Status != models.CalendarStatusDraft {
		return nil, ErrCalendarNotDraft
	}

	now := time.Now()
	calendar.Status = models.CalendarStatusApproved
	calendar.ApprovedAt = &now

	err = database.Transaction(s.db, func(tx *gorm.DB) error {
		if err := repository.NewRosterRepository(tx).UpdateCalendar(calendar); err != nil {
			return fmt.Errorf("failed to approve calendar: %w", err)
		}
		s.triggers.scheduleRange(tx, calendar.StartDate, calendar.EndDate)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return calendar, nil
}

// ListEntries lists the roster entries of one calendar
func (s *RosterService) ListEntries(calendarID uint64) ([]models.ShiftAssignment, error) {
	calendar, err := s.repo.FindCalendarByID(calendarID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCalendarNotFound
		}
		return nil, fmt.Errorf("failed to find calendar: %w", err)
	}

	entries, err := s.repo.ListEffectiveInRange(calendar.StartDate, calendar.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster entries: %w", err)
	}

	filtered := entries[:0]
	for _, entry := range entries {
		if entry.CalendarID == calendarID {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}

// CreateEntry creates a roster entry and schedules a sync for its date
func (s *RosterService) CreateEntry(input CreateEntryInput) (*models.ShiftAssignment, error) {
	calendar, err := s.repo.FindCalendarByID(input.CalendarID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCalendarNotFound
		}
		return nil, fmt.Errorf("failed to find calendar: %w", err)
	}

	date := utils.Day(input.Date)
	if date.Before(calendar.StartDate) || date.After(calendar.EndDate) {
		return nil, ErrEntryOutsideCalendar
	}

	if err := s.checkPositionActive(input.PositionID, date); err != nil {
		return nil, err
	}

	entry := &models.ShiftAssignment{
		CalendarID:     input.CalendarID,
		PositionID:     input.PositionID,
		Date:           date,
		OperatorID:     input.OperatorID,
		IsAutoAssigned: input.IsAutoAssigned,
		Notes:          input.Notes,
	}

	err = database.Transaction(s.db, func(tx *gorm.DB) error {
		if err := repository.NewRosterRepository(tx).CreateEntry(entry); err != nil {
			return fmt.Errorf("failed to create roster entry: %w", err)
		}
		s.triggers.RosterEntrySaved(tx, entry, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// UpdateEntry applies a partial update to a roster entry. The previous date
// is captured before saving so that an entry moved across days re-syncs the
// day it vacated as well as the day it landed on.
func (s *RosterService) UpdateEntry(id uint64, input UpdateEntryInput) (*models.ShiftAssignment, error) {
	entry, err := s.repo.FindEntryByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRosterEntryNotFound
		}
		return nil, fmt.Errorf("failed to find roster entry: %w", err)
	}

	previousDate := entry.Date

	if input.Date != nil {
		entry.Date = utils.Day(*input.Date)
		if err := s.checkPositionActive(entry.PositionID, entry.Date); err != nil {
			return nil, err
		}
	}
	if input.ClearOperator {
		entry.OperatorID = nil
	} else if input.OperatorID != nil {
		entry.OperatorID = input.OperatorID
	}
	if input.Notes != nil {
		entry.Notes = *input.Notes
	}

	err = database.Transaction(s.db, func(tx *gorm.DB) error {
		if err := repository.NewRosterRepository(tx).UpdateEntry(entry); err != nil {
			return fmt.Errorf("failed to update roster entry: %w", err)
		}
		s.triggers.RosterEntrySaved(tx, entry, &previousDate)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// DeleteEntry removes a roster entry and schedules a sync for its date so
// the assignments it backed are orphaned.
func (s *RosterService) DeleteEntry(id uint64) error {
	entry, err := s.repo.FindEntryByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRosterEntryNotFound
		}
		return fmt.Errorf("failed to find roster entry: %w", err)
	}

	return database.Transaction(s.db, func(tx *gorm.DB) error {
		if err := repository.NewRosterRepository(tx).DeleteEntry(id); err != nil {
			return fmt.Errorf("failed to delete roster entry: %w", err)
		}
		s.triggers.RosterEntryDeleted(tx, entry)
		return nil
	})
}
