package models

import "time"

type TaskType string

const (
	TaskTypeOneTime   TaskType = "one_time"
	TaskTypeRecurring TaskType = "recurring"
)

// TaskStatus is the lifecycle status a definition is in. Only definitions
// whose status has IsActive set are evaluated by the synchronizer.
// IsActive carries no column default: GORM drops zero values for defaulted
// fields, which would make an inactive status impossible to store.
type TaskStatus struct {
	ID       uint64 `gorm:"primarykey" json:"id"`
	Name     string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	IsActive bool   `json:"is_active"`
}

type TaskCategory struct {
	ID          uint64 `gorm:"primarykey" json:"id"`
	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	IsActive    bool   `json:"is_active"`
}

// TaskDefinition is one logical task. The four recurrence arrays are
// independent dimensions ORed together when computing due dates; the scope
// sets (position, collaborator, farms, buildings, rooms) narrow which roster
// entries the task binds to. Weekdays use the Monday=0 .. Sunday=6 convention.
type TaskDefinition struct {
	ID                  uint64     `gorm:"primarykey" json:"id"`
	Name                string     `gorm:"type:varchar(200);not null" json:"name"`
	Description         string     `gorm:"type:text" json:"description"`
	DisplayOrder        int        `gorm:"default:0;index" json:"display_order"`
	StatusID            uint64     `gorm:"not null" json:"status_id"`
	CategoryID          *uint64    `json:"category_id"`
	TaskType            TaskType   `gorm:"type:varchar(20)" json:"task_type"`
	ScheduledFor        *time.Time `gorm:"type:date" json:"scheduled_for"`
	WeeklyDays          []int      `gorm:"serializer:json" json:"weekly_days"`
	MonthDays           []int      `gorm:"serializer:json" json:"month_days"`
	FortnightDays       []int      `gorm:"serializer:json" json:"fortnight_days"`
	MonthlyWeekDays     []int      `gorm:"serializer:json" json:"monthly_week_days"`
	PositionID          *uint64    `json:"position_id"`
	CollaboratorID      *uint64    `json:"collaborator_id"`
	EvidenceRequirement string     `gorm:"type:varchar(30)" json:"evidence_requirement"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`

	// Relations
	Status       TaskStatus          `gorm:"foreignKey:StatusID" json:"status,omitempty"`
	Category     *TaskCategory       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Position     *PositionDefinition `gorm:"foreignKey:PositionID" json:"position,omitempty"`
	Collaborator *Operator           `gorm:"foreignKey:CollaboratorID" json:"collaborator,omitempty"`
	Farms        []Farm              `gorm:"many2many:task_definition_farms;" json:"farms,omitempty"`
	Buildings    []Building          `gorm:"many2many:task_definition_buildings;" json:"buildings,omitempty"`
	Rooms        []Room              `gorm:"many2many:task_definition_rooms;" json:"rooms,omitempty"`
}

// HasRecurrence reports whether any recurrence dimension is configured.
func (t *TaskDefinition) HasRecurrence() bool {
	return len(t.WeeklyDays) > 0 || len(t.MonthDays) > 0 ||
		len(t.FortnightDays) > 0 || len(t.MonthlyWeekDays) > 0
}
