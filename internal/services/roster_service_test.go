package services

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/quintaverde/taskroster/internal/database"
	"github.com/quintaverde/taskroster/internal/models"
	"github.com/quintaverde/taskroster/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// RosterServiceTestSuite defines the test suite for RosterService
type RosterServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *RosterService

	position *models.PositionDefinition
	operator *models.Operator
}

func (suite *RosterServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)
	suite.Require().NoError(database.MigrateDatabase(suite.db))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	suppressor := NewSuppressor()
	rosterRepo := repository.NewRosterRepository(suite.db)
	sync := NewSyncService(
		repository.NewTaskDefinitionRepository(suite.db),
		rosterRepo,
		repository.NewAssignmentRepository(suite.db),
		suppressor,
		logger,
	)
	triggers := NewSyncTriggers(sync, suppressor, testTriggerConfig(), logger)
	triggers.now = func() time.Time { return day("2024-01-03") }
	suite.service = NewRosterService(suite.db, rosterRepo, triggers)

	farm := &models.Farm{Name: "North"}
	suite.Require().NoError(suite.db.Create(farm).Error)
	suite.position = &models.PositionDefinition{Name: "P1", Code: "P1", FarmID: farm.ID, ValidFrom: day("2020-01-01")}
	suite.Require().NoError(suite.db.Create(suite.position).Error)
	suite.operator = &models.Operator{DocumentID: "OP-A", FirstName: "Test", LastName: "A"}
	suite.Require().NoError(suite.db.Create(suite.operator).Error)
}

func (suite *RosterServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *RosterServiceTestSuite) createPositionTask() *models.TaskDefinition {
	status := &models.TaskStatus{Name: "active", IsActive: true}
	suite.Require().NoError(suite.db.Create(status).Error)

	task := &models.TaskDefinition{
		Name:       "Wash lines",
		StatusID:   status.ID,
		TaskType:   models.TaskTypeRecurring,
		WeeklyDays: []int{0},
		PositionID: &suite.position.ID,
	}
	suite.Require().NoError(suite.db.Create(task).Error)
	return task
}

func (suite *RosterServiceTestSuite) createCalendar(status models.CalendarStatus) *models.ShiftCalendar {
	calendar, err := suite.service.CreateCalendar(CreateCalendarInput{
		Name:      "January",
		StartDate: day("2024-01-01"),
		EndDate:   day("2024-01-31"),
		Status:    status,
	})
	suite.Require().NoError(err)
	return calendar
}

func (suite *RosterServiceTestSuite) countAssignments() int64 {
	var count int64
	suite.Require().NoError(suite.db.Model(&models.TaskAssignment{}).Count(&count).Error)
	return count
}

func (suite *RosterServiceTestSuite) TestCreateCalendar_DefaultsToDraft() {
	calendar, err := suite.service.CreateCalendar(CreateCalendarInput{
		Name:      "January",
		StartDate: day("2024-01-01"),
		EndDate:   day("2024-01-31"),
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.CalendarStatusDraft, calendar.Status)
}

func (suite *RosterServiceTestSuite) TestCreateCalendar_Validation() {
	_, err := suite.service.CreateCalendar(CreateCalendarInput{
		StartDate: day("2024-01-01"),
		EndDate:   day("2024-01-31"),
	})
	assert.ErrorIs(suite.T(), err, ErrCalendarNameRequired)

	_, err = suite.service.CreateCalendar(CreateCalendarInput{
		Name:      "Backwards",
		StartDate: day("2024-01-31"),
		EndDate:   day("2024-01-01"),
	})
	assert.ErrorIs(suite.T(), err, ErrCalendarRangeInvalid)
}

// TestCreateEntry_SyncsItsDay books the position on a Monday inside the task
// window; the deferred single-day sync assigns the operator.
func (suite *RosterServiceTestSuite) TestCreateEntry_SyncsItsDay() {
	suite.createPositionTask()
	calendar := suite.createCalendar(models.CalendarStatusApproved)

	_, err := suite.service.CreateEntry(CreateEntryInput{
		CalendarID: calendar.ID,
		PositionID: suite.position.ID,
		Date:       day("2024-01-08"),
		OperatorID: &suite.operator.ID,
	})
	suite.Require().NoError(err)

	var assignments []models.TaskAssignment
	suite.Require().NoError(suite.db.Find(&assignments).Error)
	suite.Require().Len(assignments, 1)
	suite.Require().NotNil(assignments[0].CollaboratorID)
	assert.Equal(suite.T(), suite.operator.ID, *assignments[0].CollaboratorID)
}

func (suite *RosterServiceTestSuite) TestCreateEntry_OutsideCalendarRejected() {
	calendar := suite.createCalendar(models.CalendarStatusApproved)

	_, err := suite.service.CreateEntry(CreateEntryInput{
		CalendarID: calendar.ID,
		PositionID: suite.position.ID,
		Date:       day("2024-02-05"),
	})
	assert.ErrorIs(suite.T(), err, ErrEntryOutsideCalendar)
}

// TestCreateEntry_RejectsRetiredPosition books a position past its validity
// window.
func (suite *RosterServiceTestSuite) TestCreateEntry_RejectsRetiredPosition() {
	calendar := suite.createCalendar(models.CalendarStatusApproved)

	until := day("2023-12-31")
	retired := &models.PositionDefinition{
		Name:       "P2",
		Code:       "P2",
		FarmID:     suite.position.FarmID,
		ValidFrom:  day("2020-01-01"),
		ValidUntil: &until,
	}
	suite.Require().NoError(suite.db.Create(retired).Error)

	_, err := suite.service.CreateEntry(CreateEntryInput{
		CalendarID: calendar.ID,
		PositionID: retired.ID,
		Date:       day("2024-01-08"),
	})
	assert.ErrorIs(suite.T(), err, ErrPositionNotActive)
}

func (suite *RosterServiceTestSuite) TestUpdateEntry_MoveReleasesVacatedDay() {
	suite.createPositionTask()
	calendar := suite.createCalendar(models.CalendarStatusApproved)

	entry, err := suite.service.CreateEntry(CreateEntryInput{
		CalendarID: calendar.ID,
		PositionID: suite.position.ID,
		Date:       day("2024-01-08"),
		OperatorID: &suite.operator.ID,
	})
	suite.Require().NoError(err)
	suite.Require().EqualValues(1, suite.countAssignments())

	moved := day("2024-01-15")
	_, err = suite.service.UpdateEntry(entry.ID, UpdateEntryInput{Date: &moved})
	suite.Require().NoError(err)

	var assignments []models.TaskAssignment
	suite.Require().NoError(suite.db.Order("due_date").Find(&assignments).Error)
	suite.Require().Len(assignments, 2)
	assert.Nil(suite.T(), assignments[0].CollaboratorID, "vacated Monday orphaned")
	suite.Require().NotNil(assignments[1].CollaboratorID)
	assert.Equal(suite.T(), suite.operator.ID, *assignments[1].CollaboratorID)
}

func (suite *RosterServiceTestSuite) TestDeleteEntry_OrphansItsAssignments() {
	suite.createPositionTask()
	calendar := suite.createCalendar(models.CalendarStatusApproved)

	entry, err := suite.service.CreateEntry(CreateEntryInput{
		CalendarID: calendar.ID,
		PositionID: suite.position.ID,
		Date:       day("2024-01-08"),
		OperatorID: &suite.operator.ID,
	})
	suite.Require().NoError(err)
	suite.Require().EqualValues(1, suite.countAssignments())

	suite.Require().NoError(suite.service.DeleteEntry(entry.ID))

	var assignments []models.TaskAssignment
	suite.Require().NoError(suite.db.Find(&assignments).Error)
	suite.Require().Len(assignments, 1, "row survives the roster delete")
	assert.Nil(suite.T(), assignments[0].CollaboratorID)
}

func (suite *RosterServiceTestSuite) TestApproveCalendar() {
	suite.createPositionTask()
	calendar := suite.createCalendar(models.CalendarStatusDraft)

	approved, err := suite.service.ApproveCalendar(calendar.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.CalendarStatusApproved, approved.Status)
	assert.NotNil(suite.T(), approved.ApprovedAt)

	_, err = suite.service.ApproveCalendar(calendar.ID)
	assert.ErrorIs(suite.T(), err, ErrCalendarNotDraft)
}

func TestRosterServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RosterServiceTestSuite))
}
