// Package fixtures bulk-loads a farm, roster, and task definition dataset
// from a YAML document. Loading runs with the automatic sync triggers
// suppressed and finishes with a single bounded synchronizer pass over the
// loaded date span, so a fixture with hundreds of rows costs one sync
// instead of one per row.
package fixtures

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/quintaverde/taskroster/internal/models"
	"github.com/quintaverde/taskroster/internal/services"
	"github.com/quintaverde/taskroster/internal/utils"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

var ErrUnknownReference = errors.New("fixture references an undefined name")

// Document is the root of a fixture file. Cross-references use names and
// codes (farm name, position code, operator document id) rather than ids.
type Document struct {
	Farms           []FarmFixture           `yaml:"farms"`
	Operators       []OperatorFixture       `yaml:"operators"`
	Positions       []PositionFixture       `yaml:"positions"`
	Statuses        []StatusFixture         `yaml:"statuses"`
	Categories      []CategoryFixture       `yaml:"categories"`
	Calendars       []CalendarFixture       `yaml:"calendars"`
	TaskDefinitions []TaskDefinitionFixture `yaml:"task_definitions"`
}

type FarmFixture struct {
	Name      string            `yaml:"name"`
	Buildings []BuildingFixture `yaml:"buildings"`
}

type BuildingFixture struct {
	Name   string        `yaml:"name"`
	AreaM2 float64       `yaml:"area_m2"`
	Rooms  []RoomFixture `yaml:"rooms"`
}

type RoomFixture struct {
	Name   string  `yaml:"name"`
	AreaM2 float64 `yaml:"area_m2"`
}

type OperatorFixture struct {
	DocumentID      string  `yaml:"document_id"`
	FirstName       string  `yaml:"first_name"`
	LastName        string  `yaml:"last_name"`
	Phone           string  `yaml:"phone"`
	EmploymentStart *string `yaml:"employment_start"`
	EmploymentEnd   *string `yaml:"employment_end"`
}

type PositionFixture struct {
	Code       string   `yaml:"code"`
	Name       string   `yaml:"name"`
	Farm       string   `yaml:"farm"`
	Building   string   `yaml:"building"`
	Rooms      []string `yaml:"rooms"`
	ValidFrom  string   `yaml:"valid_from"`
	ValidUntil *string  `yaml:"valid_until"`
}

type StatusFixture struct {
	Name     string `yaml:"name"`
	IsActive bool   `yaml:"is_active"`
}

type CategoryFixture struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type CalendarFixture struct {
	Name    string         `yaml:"name"`
	Status  string         `yaml:"status"`
	Start   string         `yaml:"start"`
	End     string         `yaml:"end"`
	Entries []EntryFixture `yaml:"entries"`
}

type EntryFixture struct {
	Position string  `yaml:"position"`
	Date     string  `yaml:"date"`
	Operator *string `yaml:"operator"`
}

type TaskDefinitionFixture struct {
	Name            string   `yaml:"name"`
	Description     string   `yaml:"description"`
	Status          string   `yaml:"status"`
	Category        *string  `yaml:"category"`
	TaskType        string   `yaml:"task_type"`
	ScheduledFor    *string  `yaml:"scheduled_for"`
	WeeklyDays      []int    `yaml:"weekly_days"`
	MonthDays       []int    `yaml:"month_days"`
	FortnightDays   []int    `yaml:"fortnight_days"`
	MonthlyWeekDays []int    `yaml:"monthly_week_days"`
	Position        *string  `yaml:"position"`
	Collaborator    *string  `yaml:"collaborator"`
	Farms           []string `yaml:"farms"`
	Buildings       []string `yaml:"buildings"`
	Rooms           []string `yaml:"rooms"`
}

// Load parses a fixture file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse fixture file: %w", err)
	}
	return &doc, nil
}

// Loader applies fixture documents against a database.
type Loader struct {
	db         *gorm.DB
	sync       *services.SyncService
	suppressor *services.Suppressor

	// SkipSync leaves assignments ungenerated after the load. Useful for
	// large imports followed by one manual backfill run.
	SkipSync bool
}

// NewLoader creates a Loader.
func NewLoader(db *gorm.DB, sync *services.SyncService, suppressor *services.Suppressor) *Loader {
	return &Loader{db: db, sync: sync, suppressor: suppressor}
}

// Apply inserts the document's rows under suppression, then runs one sync
// over the span the fixture covers. It returns the stats of that sync.
func (l *Loader) Apply(doc *Document) (services.ReconcileStats, error) {
	var span dateSpan

	err := l.suppressor.Suppress(func() error {
		return l.db.Transaction(func(tx *gorm.DB) error {
			return l.insert(tx, doc, &span)
		})
	})
	if err != nil {
		return services.ReconcileStats{}, err
	}

	if l.SkipSync || !span.valid() {
		return services.ReconcileStats{}, nil
	}
	return l.sync.SyncRange(span.start, span.end)
}

type dateSpan struct {
	start, end time.Time
}

func (s *dateSpan) widen(day time.Time) {
	if s.start.IsZero() || day.Before(s.start) {
		s.start = day
	}
	if s.end.IsZero() || day.After(s.end) {
		s.end = day
	}
}

func (s *dateSpan) valid() bool {
	return !s.start.IsZero() && !s.end.IsZero()
}

func (l *Loader) insert(tx *gorm.DB, doc *Document, span *dateSpan) error {
	farms := map[string]*models.Farm{}
	buildings := map[string]*models.Building{}
	rooms := map[string]*models.Room{}
	operators := map[string]*models.Operator{}
	positions := map[string]*models.PositionDefinition{}
	statuses := map[string]*models.TaskStatus{}
	categories := map[string]*models.TaskCategory{}

	for _, f := range doc.Farms {
		farm := &models.Farm{Name: f.Name}
		if err := tx.Create(farm).Error; err != nil {
			return fmt.Errorf("failed to create farm %q: %w", f.Name, err)
		}
		farms[f.Name] = farm

		for _, b := range f.Buildings {
			building := &models.Building{FarmID: farm.ID, Name: b.Name, AreaM2: b.AreaM2}
			if err := tx.Create(building).Error; err != nil {
				return fmt.Errorf("failed to create building %q: %w", b.Name, err)
			}
			buildings[b.Name] = building

			for _, r := range b.Rooms {
				room := &models.Room{BuildingID: building.ID, Name: r.Name, AreaM2: r.AreaM2}
				if err := tx.Create(room).Error; err != nil {
					return fmt.Errorf("failed to create room %q: %w", r.Name, err)
				}
				rooms[r.Name] = room
			}
		}
	}

	for _, o := range doc.Operators {
		start, err := optionalDate(o.EmploymentStart)
		if err != nil {
			return fmt.Errorf("operator %q: %w", o.DocumentID, err)
		}
		end, err := optionalDate(o.EmploymentEnd)
		if err != nil {
			return fmt.Errorf("operator %q: %w", o.DocumentID, err)
		}
		operator := &models.Operator{
			DocumentID:          o.DocumentID,
			FirstName:           o.FirstName,
			LastName:            o.LastName,
			Phone:               o.Phone,
			EmploymentStartDate: start,
			EmploymentEndDate:   end,
		}
		if err := tx.Create(operator).Error; err != nil {
			return fmt.Errorf("failed to create operator %q: %w", o.DocumentID, err)
		}
		operators[o.DocumentID] = operator
	}

	for _, p := range doc.Positions {
		farm, ok := farms[p.Farm]
		if !ok {
			return fmt.Errorf("position %q farm %q: %w", p.Code, p.Farm, ErrUnknownReference)
		}
		validFrom, err := utils.ParseDate(p.ValidFrom)
		if err != nil {
			return fmt.Errorf("position %q: %w", p.Code, err)
		}
		validUntil, err := optionalDate(p.ValidUntil)
		if err != nil {
			return fmt.Errorf("position %q: %w", p.Code, err)
		}

		position := &models.PositionDefinition{
			Code:       p.Code,
			Name:       p.Name,
			FarmID:     farm.ID,
			ValidFrom:  validFrom,
			ValidUntil: validUntil,
		}
		if p.Building != "" {
			building, ok := buildings[p.Building]
			if !ok {
				return fmt.Errorf("position %q building %q: %w", p.Code, p.Building, ErrUnknownReference)
			}
			position.BuildingID = &building.ID
		}
		for _, name := range p.Rooms {
			room, ok := rooms[name]
			if !ok {
				return fmt.Errorf("position %q room %q: %w", p.Code, name, ErrUnknownReference)
			}
			position.Rooms = append(position.Rooms, *room)
		}
		if err := tx.Create(position).Error; err != nil {
			return fmt.Errorf("failed to create position %q: %w", p.Code, err)
		}
		positions[p.Code] = position
	}

	for _, st := range doc.Statuses {
		status := &models.TaskStatus{Name: st.Name, IsActive: st.IsActive}
		if err := tx.Create(status).Error; err != nil {
			return fmt.Errorf("failed to create status %q: %w", st.Name, err)
		}
		statuses[st.Name] = status
	}

	for _, cat := range doc.Categories {
		category := &models.TaskCategory{Name: cat.Name, Description: cat.Description, IsActive: true}
		if err := tx.Create(category).Error; err != nil {
			return fmt.Errorf("failed to create category %q: %w", cat.Name, err)
		}
		categories[cat.Name] = category
	}

	for _, c := range doc.Calendars {
		start, err := utils.ParseDate(c.Start)
		if err != nil {
			return fmt.Errorf("calendar %q: %w", c.Name, err)
		}
		end, err := utils.ParseDate(c.End)
		if err != nil {
			return fmt.Errorf("calendar %q: %w", c.Name, err)
		}
		status := models.CalendarStatus(c.Status)
		if status == "" {
			status = models.CalendarStatusDraft
		}

		calendar := &models.ShiftCalendar{Name: c.Name, StartDate: start, EndDate: end, Status: status}
		if err := tx.Create(calendar).Error; err != nil {
			return fmt.Errorf("failed to create calendar %q: %w", c.Name, err)
		}
		span.widen(start)
		span.widen(end)

		for _, e := range c.Entries {
			position, ok := positions[e.Position]
			if !ok {
				return fmt.Errorf("calendar %q position %q: %w", c.Name, e.Position, ErrUnknownReference)
			}
			date, err := utils.ParseDate(e.Date)
			if err != nil {
				return fmt.Errorf("calendar %q entry: %w", c.Name, err)
			}

			entry := &models.ShiftAssignment{
				CalendarID: calendar.ID,
				PositionID: position.ID,
				Date:       date,
			}
			if e.Operator != nil {
				operator, ok := operators[*e.Operator]
				if !ok {
					return fmt.Errorf("calendar %q operator %q: %w", c.Name, *e.Operator, ErrUnknownReference)
				}
				entry.OperatorID = &operator.ID
			}
			if err := tx.Create(entry).Error; err != nil {
				return fmt.Errorf("failed to create roster entry in %q: %w", c.Name, err)
			}
		}
	}

	for _, td := range doc.TaskDefinitions {
		status, ok := statuses[td.Status]
		if !ok {
			return fmt.Errorf("task %q status %q: %w", td.Name, td.Status, ErrUnknownReference)
		}
		scheduledFor, err := optionalDate(td.ScheduledFor)
		if err != nil {
			return fmt.Errorf("task %q: %w", td.Name, err)
		}

		task := &models.TaskDefinition{
			Name:            td.Name,
			Description:     td.Description,
			StatusID:        status.ID,
			TaskType:        models.TaskType(td.TaskType),
			ScheduledFor:    scheduledFor,
			WeeklyDays:      td.WeeklyDays,
			MonthDays:       td.MonthDays,
			FortnightDays:   td.FortnightDays,
			MonthlyWeekDays: td.MonthlyWeekDays,
		}
		if td.Category != nil {
			category, ok := categories[*td.Category]
			if !ok {
				return fmt.Errorf("task %q category %q: %w", td.Name, *td.Category, ErrUnknownReference)
			}
			task.CategoryID = &category.ID
		}
		if td.Position != nil {
			position, ok := positions[*td.Position]
			if !ok {
				return fmt.Errorf("task %q position %q: %w", td.Name, *td.Position, ErrUnknownReference)
			}
			task.PositionID = &position.ID
		}
		if td.Collaborator != nil {
			operator, ok := operators[*td.Collaborator]
			if !ok {
				return fmt.Errorf("task %q collaborator %q: %w", td.Name, *td.Collaborator, ErrUnknownReference)
			}
			task.CollaboratorID = &operator.ID
		}
		for _, name := range td.Farms {
			farm, ok := farms[name]
			if !ok {
				return fmt.Errorf("task %q farm %q: %w", td.Name, name, ErrUnknownReference)
			}
			task.Farms = append(task.Farms, *farm)
		}
		for _, name := range td.Buildings {
			building, ok := buildings[name]
			if !ok {
				return fmt.Errorf("task %q building %q: %w", td.Name, name, ErrUnknownReference)
			}
			task.Buildings = append(task.Buildings, *building)
		}
		for _, name := range td.Rooms {
			room, ok := rooms[name]
			if !ok {
				return fmt.Errorf("task %q room %q: %w", td.Name, name, ErrUnknownReference)
			}
			task.Rooms = append(task.Rooms, *room)
		}

		if err := tx.Create(task).Error; err != nil {
			return fmt.Errorf("failed to create task definition %q: %w", td.Name, err)
		}
		if scheduledFor != nil {
			span.widen(*scheduledFor)
		}
	}

	return nil
}

func optionalDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	day, err := utils.ParseDate(*value)
	if err != nil {
		return nil, err
	}
	return &day, nil
}
