package models

import "time"

type CalendarStatus string

const (
	CalendarStatusDraft      CalendarStatus = "draft"
	CalendarStatusApproved   CalendarStatus = "approved"
	CalendarStatusModified   CalendarStatus = "modified"
	CalendarStatusCancelled  CalendarStatus = "cancelled"
	CalendarStatusSuperseded CalendarStatus = "superseded"
)

// EffectiveCalendarStatuses are the statuses whose entries feed the
// synchronizer, in descending priority when the same position or operator is
// double-booked on a day.
var EffectiveCalendarStatuses = []CalendarStatus{
	CalendarStatusModified,
	CalendarStatusApproved,
	CalendarStatusDraft,
}

// ShiftCalendar groups the roster entries produced by one planning pass.
type ShiftCalendar struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	Name           string         `gorm:"type:varchar(150);not null" json:"name"`
	StartDate      time.Time      `gorm:"type:date;not null" json:"start_date"`
	EndDate        time.Time      `gorm:"type:date;not null" json:"end_date"`
	Status         CalendarStatus `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	BaseCalendarID *uint64        `json:"base_calendar_id"`
	ApprovedAt     *time.Time     `json:"approved_at"`
	Notes          string         `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`

	// Relations
	BaseCalendar *ShiftCalendar    `gorm:"foreignKey:BaseCalendarID" json:"base_calendar,omitempty"`
	Entries      []ShiftAssignment `gorm:"foreignKey:CalendarID" json:"entries,omitempty"`
}

// ShiftAssignment is one roster entry: a position booked for a date,
// optionally with the operator who covers it.
type ShiftAssignment struct {
	ID             uint64    `gorm:"primarykey" json:"id"`
	CalendarID     uint64    `gorm:"not null;uniqueIndex:idx_shift_calendar_position_date,priority:1;uniqueIndex:idx_shift_calendar_operator_date,priority:1" json:"calendar_id"`
	PositionID     uint64    `gorm:"not null;uniqueIndex:idx_shift_calendar_position_date,priority:2" json:"position_id"`
	Date           time.Time `gorm:"type:date;not null;index;uniqueIndex:idx_shift_calendar_position_date,priority:3;uniqueIndex:idx_shift_calendar_operator_date,priority:3" json:"date"`
	OperatorID     *uint64   `gorm:"uniqueIndex:idx_shift_calendar_operator_date,priority:2" json:"operator_id"`
	IsAutoAssigned bool      `gorm:"default:false" json:"is_auto_assigned"`
	Notes          string    `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Calendar ShiftCalendar      `gorm:"foreignKey:CalendarID" json:"calendar,omitempty"`
	Position PositionDefinition `gorm:"foreignKey:PositionID" json:"position,omitempty"`
	Operator *Operator          `gorm:"foreignKey:OperatorID" json:"operator,omitempty"`
}
