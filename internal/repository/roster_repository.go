package repository

import (
	"time"

	"github.com/quintaverde/taskroster/internal/constants"
	"github.com/quintaverde/taskroster/internal/database"
	"github.com/quintaverde/taskroster/internal/models"
	"github.com/quintaverde/taskroster/internal/utils"
	"gorm.io/gorm"
)

// GormRosterRepository is a GORM implementation of RosterRepository
type GormRosterRepository struct {
	db *gorm.DB
}

// NewRosterRepository creates a new RosterRepository
func NewRosterRepository(db *gorm.DB) RosterRepository {
	return &GormRosterRepository{db: db}
}

// CreateCalendar creates a shift calendar
func (r *GormRosterRepository) CreateCalendar(calendar *models.ShiftCalendar) error {
	return r.db.Create(calendar).Error
}

// FindCalendarByID finds a calendar by ID
func (r *GormRosterRepository) FindCalendarByID(id uint64) (*models.ShiftCalendar, error) {
	var calendar models.ShiftCalendar
	if err := r.db.First(&calendar, id).Error; err != nil {
		return nil, err
	}
	return &calendar, nil
}

// ListCalendars lists calendars, newest first
func (r *GormRosterRepository) ListCalendars(page, pageSize int) ([]models.ShiftCalendar, int64, error) {
	var calendars []models.ShiftCalendar

	query := r.db.Model(&models.ShiftCalendar{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("shift_calendars.created_at DESC, shift_calendars.id DESC")
	if page > 0 && pageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   page,
			Limit:  pageSize,
			Offset: (page - 1) * pageSize,
		}))
	}

	if err := listQuery.Find(&calendars).Error; err != nil {
		return nil, 0, err
	}

	return calendars, total, nil
}

// UpdateCalendar updates a calendar
func (r *GormRosterRepository) UpdateCalendar(calendar *models.ShiftCalendar) error {
	return r.db.Save(calendar).Error
}

// CreateEntry creates a roster entry
func (r *GormRosterRepository) CreateEntry(entry *models.ShiftAssignment) error {
	return r.db.Create(entry).Error
}

// FindEntryByID finds a roster entry by ID
func (r *GormRosterRepository) FindEntryByID(id uint64, preload ...string) (*models.ShiftAssignment, error) {
	var entry models.ShiftAssignment
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&entry, id).Error; err != nil {
		return nil, err
	}

	return &entry, nil
}

// UpdateEntry updates a roster entry
func (r *GormRosterRepository) UpdateEntry(entry *models.ShiftAssignment) error {
	return r.db.Save(entry).Error
}

// DeleteEntry deletes a roster entry
func (r *GormRosterRepository) DeleteEntry(id uint64) error {
	return r.db.Delete(&models.ShiftAssignment{}, id).Error
}

// statusPriorityCase ranks calendar statuses so that when the same position
// or operator appears in several overlapping calendars, the modified one
// wins over the approved one, and the approved one over the draft.
const statusPriorityCase = `CASE shift_calendars.status
	WHEN 'modified' THEN 0
	WHEN 'approved' THEN 1
	WHEN 'draft' THEN 2
	ELSE 3 END`

// ListEffectiveInRange returns the roster entries feeding the synchronizer,
// in the deterministic order the snapshot builder's first-wins deduplication
// relies on.
func (r *GormRosterRepository) ListEffectiveInRange(start, end time.Time) ([]models.ShiftAssignment, error) {
	var entries []models.ShiftAssignment

	err := r.db.
		Joins("JOIN shift_calendars ON shift_calendars.id = shift_assignments.calendar_id").
		Where("shift_assignments.date BETWEEN ? AND ?", start, end).
		Where("shift_calendars.status IN ?", models.EffectiveCalendarStatuses).
		Order("shift_assignments.date").
		Order(statusPriorityCase).
		Order("shift_calendars.updated_at DESC").
		Order("shift_calendars.created_at DESC").
		Order("shift_assignments.calendar_id").
		Preload("Calendar").
		Preload("Position").
		Preload("Position.Rooms").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// CalendarBounds returns the minimum start and maximum end dates across all
// effective calendars. The aggregate columns are scanned untyped: sqlite
// loses the date affinity on MIN/MAX and hands the value back as text.
func (r *GormRosterRepository) CalendarBounds() (time.Time, time.Time, bool, error) {
	row := r.db.Model(&models.ShiftCalendar{}).
		Select("MIN(start_date), MAX(end_date)").
		Where("status IN ?", models.EffectiveCalendarStatuses).
		Row()

	var minRaw, maxRaw interface{}
	if err := row.Scan(&minRaw, &maxRaw); err != nil {
		return time.Time{}, time.Time{}, false, err
	}

	minStart, ok := dayFromColumn(minRaw)
	if !ok {
		return time.Time{}, time.Time{}, false, nil
	}
	maxEnd, ok := dayFromColumn(maxRaw)
	if !ok {
		return time.Time{}, time.Time{}, false, nil
	}

	return minStart, maxEnd, true, nil
}

// dayFromColumn converts a scanned date column to a day, accepting the
// text form drivers fall back to when the column type is unknown.
func dayFromColumn(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return utils.Day(v), true
	case string:
		return parseDayPrefix(v)
	case []byte:
		return parseDayPrefix(string(v))
	}
	return time.Time{}, false
}

func parseDayPrefix(value string) (time.Time, bool) {
	if len(value) < len(constants.DateLayout) {
		return time.Time{}, false
	}
	parsed, err := utils.ParseDate(value[:len(constants.DateLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}
