package services

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/quintaverde/taskroster/internal/database"
	"github.com/quintaverde/taskroster/internal/models"
	"github.com/quintaverde/taskroster/internal/repository"
	"github.com/quintaverde/taskroster/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testTriggerConfig() TriggerConfig {
	return TriggerConfig{PastDays: 7, FutureDays: 30, MaxFutureDays: 120}
}

func TestSyncTriggers_WindowForTask_Default(t *testing.T) {
	triggers := NewSyncTriggers(nil, nil, testTriggerConfig(), nil)
	triggers.now = func() time.Time { return day("2024-02-15") }

	start, end := triggers.windowForTask(&models.TaskDefinition{TaskType: models.TaskTypeRecurring})

	assert.Equal(t, "2024-02-08", utils.DateKey(start))
	assert.Equal(t, "2024-03-16", utils.DateKey(end))
}

func TestSyncTriggers_WindowForTask_OneTimeCollapses(t *testing.T) {
	triggers := NewSyncTriggers(nil, nil, testTriggerConfig(), nil)
	triggers.now = func() time.Time { return day("2024-02-15") }

	scheduled := day("2024-06-01")
	start, end := triggers.windowForTask(&models.TaskDefinition{
		TaskType:     models.TaskTypeOneTime,
		ScheduledFor: &scheduled,
	})

	assert.Equal(t, "2024-06-01", utils.DateKey(start))
	assert.Equal(t, "2024-06-01", utils.DateKey(end))
}

func TestSyncTriggers_WindowForTask_WidenedToScheduledDate(t *testing.T) {
	triggers := NewSyncTriggers(nil, nil, testTriggerConfig(), nil)
	triggers.now = func() time.Time { return day("2024-02-15") }

	past := day("2024-01-01")
	start, _ := triggers.windowForTask(&models.TaskDefinition{
		TaskType:     models.TaskTypeRecurring,
		ScheduledFor: &past,
	})
	assert.Equal(t, "2024-01-01", utils.DateKey(start))

	// A scheduled date far in the future widens the end but stays under the
	// forward cap measured from the window start.
	future := day("2025-06-01")
	start, end := triggers.windowForTask(&models.TaskDefinition{
		TaskType:     models.TaskTypeRecurring,
		ScheduledFor: &future,
	})
	assert.Equal(t, "2024-02-08", utils.DateKey(start))
	assert.Equal(t, "2024-06-07", utils.DateKey(end), "capped 120 days after start")
}

// SyncTriggersTestSuite exercises the deferred runs end to end against a
// real database.
type SyncTriggersTestSuite struct {
	suite.Suite
	db         *gorm.DB
	triggers   *SyncTriggers
	suppressor *Suppressor
}

func (suite *SyncTriggersTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)
	suite.Require().NoError(database.MigrateDatabase(suite.db))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	suite.suppressor = NewSuppressor()
	sync := NewSyncService(
		repository.NewTaskDefinitionRepository(suite.db),
		repository.NewRosterRepository(suite.db),
		repository.NewAssignmentRepository(suite.db),
		suite.suppressor,
		logger,
	)
	suite.triggers = NewSyncTriggers(sync, suite.suppressor, testTriggerConfig(), logger)
	suite.triggers.now = func() time.Time { return day("2024-01-08") }
}

func (suite *SyncTriggersTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *SyncTriggersTestSuite) createGlobalTask() *models.TaskDefinition {
	status := &models.TaskStatus{Name: "active", IsActive: true}
	suite.Require().NoError(suite.db.Create(status).Error)

	task := &models.TaskDefinition{
		Name:       "Generator check",
		StatusID:   status.ID,
		TaskType:   models.TaskTypeRecurring,
		WeeklyDays: []int{0},
	}
	suite.Require().NoError(suite.db.Create(task).Error)
	return task
}

func (suite *SyncTriggersTestSuite) countAssignments() int64 {
	var count int64
	suite.Require().NoError(suite.db.Model(&models.TaskAssignment{}).Count(&count).Error)
	return count
}

// TestTaskDefinitionSaved_RunsAfterCommit registers the trigger inside a
// transaction and checks the deferred sync ran once it committed.
func (suite *SyncTriggersTestSuite) TestTaskDefinitionSaved_RunsAfterCommit() {
	task := suite.createGlobalTask()

	err := database.Transaction(suite.db, func(tx *gorm.DB) error {
		suite.triggers.TaskDefinitionSaved(tx, task)
		return nil
	})
	suite.Require().NoError(err)

	assert.Greater(suite.T(), suite.countAssignments(), int64(0), "deferred sync ran")
}

// TestTaskDefinitionSaved_SuppressedIsNoOp wraps the write in a suppression
// scope; no sync run may be scheduled.
func (suite *SyncTriggersTestSuite) TestTaskDefinitionSaved_SuppressedIsNoOp() {
	task := suite.createGlobalTask()

	err := suite.suppressor.Suppress(func() error {
		return database.Transaction(suite.db, func(tx *gorm.DB) error {
			suite.triggers.TaskDefinitionSaved(tx, task)
			return nil
		})
	})
	suite.Require().NoError(err)

	assert.EqualValues(suite.T(), 0, suite.countAssignments())
}

// TestTaskDefinitionSaved_DiscardedOnRollback rolls the transaction back;
// the scheduled run must be dropped with it.
func (suite *SyncTriggersTestSuite) TestTaskDefinitionSaved_DiscardedOnRollback() {
	task := suite.createGlobalTask()

	err := database.Transaction(suite.db, func(tx *gorm.DB) error {
		suite.triggers.TaskDefinitionSaved(tx, task)
		return assert.AnError
	})
	suite.Require().Error(err)

	assert.EqualValues(suite.T(), 0, suite.countAssignments())
}

// TestRosterEntrySaved_SyncsOldAndNewDate moves an entry between dates and
// checks both days get reconciled: the vacated Monday is orphaned and the
// new Monday staffed.
func (suite *SyncTriggersTestSuite) TestRosterEntrySaved_SyncsOldAndNewDate() {
	status := &models.TaskStatus{Name: "active", IsActive: true}
	suite.Require().NoError(suite.db.Create(status).Error)

	farm := &models.Farm{Name: "North"}
	suite.Require().NoError(suite.db.Create(farm).Error)
	position := &models.PositionDefinition{Name: "P1", Code: "P1", FarmID: farm.ID, ValidFrom: day("2020-01-01")}
	suite.Require().NoError(suite.db.Create(position).Error)
	operator := &models.Operator{DocumentID: "OP-A", FirstName: "Test", LastName: "A"}
	suite.Require().NoError(suite.db.Create(operator).Error)
	calendar := &models.ShiftCalendar{Name: "Jan", StartDate: day("2024-01-01"), EndDate: day("2024-01-31"), Status: models.CalendarStatusApproved}
	suite.Require().NoError(suite.db.Create(calendar).Error)

	task := &models.TaskDefinition{
		Name:       "Wash lines",
		StatusID:   status.ID,
		TaskType:   models.TaskTypeRecurring,
		WeeklyDays: []int{0},
		PositionID: &position.ID,
	}
	suite.Require().NoError(suite.db.Create(task).Error)

	entry := &models.ShiftAssignment{
		CalendarID: calendar.ID,
		PositionID: position.ID,
		Date:       day("2024-01-08"),
		OperatorID: &operator.ID,
	}
	suite.Require().NoError(suite.db.Create(entry).Error)

	err := database.Transaction(suite.db, func(tx *gorm.DB) error {
		suite.triggers.RosterEntrySaved(tx, entry, nil)
		return nil
	})
	suite.Require().NoError(err)
	suite.Require().EqualValues(1, suite.countAssignments())

	// Move the entry to the following Monday.
	previous := entry.Date
	entry.Date = day("2024-01-15")
	suite.Require().NoError(suite.db.Save(entry).Error)

	err = database.Transaction(suite.db, func(tx *gorm.DB) error {
		suite.triggers.RosterEntrySaved(tx, entry, &previous)
		return nil
	})
	suite.Require().NoError(err)

	var assignments []models.TaskAssignment
	suite.Require().NoError(suite.db.Order("due_date").Find(&assignments).Error)
	suite.Require().Len(assignments, 2)
	assert.Nil(suite.T(), assignments[0].CollaboratorID, "vacated day orphaned")
	suite.Require().NotNil(assignments[1].CollaboratorID)
	assert.Equal(suite.T(), operator.ID, *assignments[1].CollaboratorID)
}

func TestSyncTriggersTestSuite(t *testing.T) {
	suite.Run(t, new(SyncTriggersTestSuite))
}
