package services

import (
	"io"
	"log/slog"
	"testing"

	"github.com/quintaverde/taskroster/internal/database"
	"github.com/quintaverde/taskroster/internal/models"
	"github.com/quintaverde/taskroster/internal/repository"
	"github.com/quintaverde/taskroster/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SyncServiceTestSuite defines the test suite for SyncService
type SyncServiceTestSuite struct {
	suite.Suite
	db             *gorm.DB
	sync           *SyncService
	assignmentRepo repository.AssignmentRepository
	suppressor     *Suppressor

	activeStatus *models.TaskStatus
}

// SetupTest runs before each test
func (suite *SyncServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = database.MigrateDatabase(suite.db)
	suite.Require().NoError(err)

	suite.assignmentRepo = repository.NewAssignmentRepository(suite.db)
	suite.suppressor = NewSuppressor()
	suite.sync = NewSyncService(
		repository.NewTaskDefinitionRepository(suite.db),
		repository.NewRosterRepository(suite.db),
		suite.assignmentRepo,
		suite.suppressor,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	suite.activeStatus = &models.TaskStatus{Name: "active", IsActive: true}
	suite.Require().NoError(suite.db.Create(suite.activeStatus).Error)
}

// TearDownTest runs after each test
func (suite *SyncServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper functions to create test data

func (suite *SyncServiceTestSuite) createTestFarm(name string) *models.Farm {
	farm := &models.Farm{Name: name}
	suite.Require().NoError(suite.db.Create(farm).Error)
	return farm
}

func (suite *SyncServiceTestSuite) createTestBuilding(farmID uint64, name string) *models.Building {
	building := &models.Building{FarmID: farmID, Name: name}
	suite.Require().NoError(suite.db.Create(building).Error)
	return building
}

func (suite *SyncServiceTestSuite) createTestRoom(buildingID uint64, name string) *models.Room {
	room := &models.Room{BuildingID: buildingID, Name: name}
	suite.Require().NoError(suite.db.Create(room).Error)
	return room
}

func (suite *SyncServiceTestSuite) createTestOperator(documentID string) *models.Operator {
	operator := &models.Operator{
		DocumentID: documentID,
		FirstName:  "Test",
		LastName:   documentID,
	}
	suite.Require().NoError(suite.db.Create(operator).Error)
	return operator
}

func (suite *SyncServiceTestSuite) createTestPosition(code string, farmID uint64, rooms ...*models.Room) *models.PositionDefinition {
	position := &models.PositionDefinition{
		Name:      code,
		Code:      code,
		FarmID:    farmID,
		ValidFrom: day("2020-01-01"),
	}
	for _, room := range rooms {
		position.Rooms = append(position.Rooms, *room)
	}
	suite.Require().NoError(suite.db.Create(position).Error)
	return position
}

func (suite *SyncServiceTestSuite) createTestCalendar(status models.CalendarStatus, start, end string) *models.ShiftCalendar {
	calendar := &models.ShiftCalendar{
		Name:      string(status) + " " + start,
		StartDate: day(start),
		EndDate:   day(end),
		Status:    status,
	}
	suite.Require().NoError(suite.db.Create(calendar).Error)
	return calendar
}

func (suite *SyncServiceTestSuite) createTestEntry(calendarID, positionID uint64, date string, operator *models.Operator) *models.ShiftAssignment {
	entry := &models.ShiftAssignment{
		CalendarID: calendarID,
		PositionID: positionID,
		Date:       day(date),
	}
	if operator != nil {
		// copy so later entry updates cannot write back into the operator
		id := operator.ID
		entry.OperatorID = &id
	}
	suite.Require().NoError(suite.db.Create(entry).Error)
	return entry
}

func (suite *SyncServiceTestSuite) createTestTask(task *models.TaskDefinition) *models.TaskDefinition {
	if task.StatusID == 0 {
		task.StatusID = suite.activeStatus.ID
	}
	suite.Require().NoError(suite.db.Create(task).Error)
	return task
}

func (suite *SyncServiceTestSuite) loadAssignments() []models.TaskAssignment {
	var assignments []models.TaskAssignment
	suite.Require().NoError(suite.db.Order("id").Find(&assignments).Error)
	return assignments
}

// TestSyncRange_CreatesAssignmentForMatchingShift covers the base flow: a
// weekly Monday task scoped to a position, the position staffed that Monday.
func (suite *SyncServiceTestSuite) TestSyncRange_CreatesAssignmentForMatchingShift() {
	farm := suite.createTestFarm("North")
	position := suite.createTestPosition("P1", farm.ID)
	operator := suite.createTestOperator("OP-A")
	calendar := suite.createTestCalendar(models.CalendarStatusApproved, "2024-01-01", "2024-01-31")
	suite.createTestEntry(calendar.ID, position.ID, "2024-01-08", operator)

	task := suite.createTestTask(&models.TaskDefinition{
		Name:       "Wash lines",
		TaskType:   models.TaskTypeRecurring,
		WeeklyDays: []int{0},
		PositionID: &position.ID,
	})

	stats, err := suite.sync.SyncRange(day("2024-01-08"), day("2024-01-08"))
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 1, stats.Created)

	assignments := suite.loadAssignments()
	suite.Require().Len(assignments, 1)
	assert.Equal(suite.T(), task.ID, assignments[0].TaskDefinitionID)
	assert.Equal(suite.T(), "2024-01-08", utils.DateKey(assignments[0].DueDate))
	suite.Require().NotNil(assignments[0].CollaboratorID)
	assert.Equal(suite.T(), operator.ID, *assignments[0].CollaboratorID)
}

// TestSyncRange_SecondRunIsIdempotent reruns the same range and expects zero
// mutations the second time.
func (suite *SyncServiceTestSuite) TestSyncRange_SecondRunIsIdempotent() {
	farm := suite.createTestFarm("North")
	position := suite.createTestPosition("P1", farm.ID)
	operator := suite.createTestOperator("OP-A")
	calendar := suite.createTestCalendar(models.CalendarStatusApproved, "2024-01-01", "2024-01-31")
	suite.createTestEntry(calendar.ID, position.ID, "2024-01-08", operator)

	suite.createTestTask(&models.TaskDefinition{
		Name:       "Wash lines",
		TaskType:   models.TaskTypeRecurring,
		WeeklyDays: []int{0},
		PositionID: &position.ID,
	})

	_, err := suite.sync.SyncRange(day("2024-01-08"), day("2024-01-08"))
	suite.Require().NoError(err)

	stats, err := suite.sync.SyncRange(day("2024-01-08"), day("2024-01-08"))
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 0, stats.Created)
	assert.Equal(suite.T(), 0, stats.Updated)
	assert.Equal(suite.T(), 0, stats.Orphaned)
	assert.Equal(suite.T(), 1, stats.Matched)
	assert.Len(suite.T(), suite.loadAssignments(), 1)
}

// TestSyncRange_OrphansWhenShiftRemoved removes the roster entry after the
// first run; the re-run must keep the row and null its collaborator.
func (suite *SyncServiceTestSuite) TestSyncRange_OrphansWhenShiftRemoved() {
	farm := suite.createTestFarm("North")
	position := suite.createTestPosition("P1", farm.ID)
	operator := suite.createTestOperator("OP-A")
	calendar := suite.createTestCalendar(models.CalendarStatusApproved, "2024-01-01", "2024-01-31")
	entry := suite.createTestEntry(calendar.ID, position.ID, "2024-01-08", operator)

	suite.createTestTask(&models.TaskDefinition{
		Name:       "Wash lines",
		TaskType:   models.TaskTypeRecurring,
		WeeklyDays: []int{0},
		PositionID: &position.ID,
	})

	_, err := suite.sync.SyncRange(day("2024-01-08"), day("2024-01-08"))
	suite.Require().NoError(err)
	before := suite.loadAssignments()
	suite.Require().Len(before, 1)

	suite.Require().NoError(suite.db.Delete(&models.ShiftAssignment{}, entry.ID).Error)

	stats, err := suite.sync.SyncRange(day("2024-01-08"), day("2024-01-08"))
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 1, stats.Orphaned)

	after := suite.loadAssignments()
	suite.Require().Len(after, 1, "row count unchanged")
	assert.Equal(suite.T(), before[0].ID, after[0].ID)
	assert.Nil(suite.T(), after[0].CollaboratorID)
	suite.Require().NotNil(after[0].PreviousCollaboratorID)
	assert.Equal(suite.T(), operator.ID, *after[0].PreviousCollaboratorID)
}

// TestSyncRange_ReplicatesAcrossMatchingPositions scopes a task to a room
// covered by two staffed positions; each match becomes its own assignment.
func (suite *SyncServiceTestSuite) TestSyncRange_ReplicatesAcrossMatchingPositions() {
	farm := suite.createTestFarm("North")
	building := suite.createTestBuilding(farm.ID, "B1")
	room := suite.createTestRoom(building.ID, "R1")
	position1 := suite.createTestPosition("P1", farm.ID, room)
	position2 := suite.createTestPosition("P2", farm.ID, room)
	operatorA := suite.createTestOperator("OP-A")
	operatorB := suite.createTestOperator("OP-B")
	calendar := suite.createTestCalendar(models.CalendarStatusApproved, "2024-01-01", "2024-01-31")
	suite.createTestEntry(calendar.ID, position1.ID, "2024-01-08", operatorA)
	suite.createTestEntry(calendar.ID, position2.ID, "2024-01-08", operatorB)

	suite.createTestTask(&models.TaskDefinition{
		Name:       "Check room",
		TaskType:   models.TaskTypeRecurring,
		WeeklyDays: []int{0},
		Rooms:      []models.Room{*room},
	})

	stats, err := suite.sync.SyncRange(day("2024-01-08"), day("2024-01-08"))
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 2, stats.Created)

	assignments := suite.loadAssignments()
	suite.Require().Len(assignments, 2)
	collaborators := map[uint64]bool{}
	for _, assignment := range assignments {
		suite.Require().NotNil(assignment.CollaboratorID)
		collaborators[*assignment.CollaboratorID] = true
	}
	assert.True(suite.T(), collaborators[operatorA.ID])
	assert.True(suite.T(), collaborators[operatorB.ID])
}

// TestSyncRange_PinnedCollaboratorFallback pins a collaborator on an
// unscoped task; with no roster at all the pinned collaborator is assigned.
func (suite *SyncServiceTestSuite) TestSyncRange_PinnedCollaboratorFallback() {
	operator := suite.createTestOperator("OP-A")

	suite.createTestTask(&models.TaskDefinition{
		Name:           "Call the vet",
		TaskType:       models.TaskTypeRecurring,
		WeeklyDays:     []int{4},
		CollaboratorID: &operator.ID,
	})

	// 2024-01-05 is a Friday.
	stats, err := suite.sync.SyncRange(day("2024-01-05"), day("2024-01-05"))
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 1, stats.Created)

	assignments := suite.loadAssignments()
	suite.Require().Len(assignments, 1)
	suite.Require().NotNil(assignments[0].CollaboratorID)
	assert.Equal(suite.T(), operator.ID, *assignments[0].CollaboratorID)
}

// TestSyncRange_PinnedCollaboratorInactive ends the pinned collaborator's
// employment before the due date; the task still surfaces, as an orphan.
func (suite *SyncServiceTestSuite) TestSyncRange_PinnedCollaboratorInactive() {
	operator := suite.createTestOperator("OP-A")
	end := day("2023-12-31")
	suite.Require().NoError(suite.db.Model(operator).Update("employment_end_date", &end).Error)

	suite.createTestTask(&models.TaskDefinition{
		Name:           "Call the vet",
		TaskType:       models.TaskTypeRecurring,
		WeeklyDays:     []int{4},
		CollaboratorID: &operator.ID,
	})

	stats, err := suite.sync.SyncRange(day("2024-01-05"), day("2024-01-05"))
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 1, stats.Created)

	assignments := suite.loadAssignments()
	suite.Require().Len(assignments, 1)
	assert.Nil(suite.T(), assignments[0].CollaboratorID)
}

// TestSyncRange_ScopedTaskWithoutMatchDoesNothing gives a farm-scoped task no
// matching roster; it must not even leave an orphan behind.
func (suite *SyncServiceTestSuite) TestSyncRange_ScopedTaskWithoutMatchDoesNothing() {
	farm := suite.createTestFarm("North")

	suite.createTestTask(&models.TaskDefinition{
		Name:       "Farm walk",
		TaskType:   models.TaskTypeRecurring,
		WeeklyDays: []int{0},
		Farms:      []models.Farm{*farm},
	})

	stats, err := suite.sync.SyncRange(day("2024-01-08"), day("2024-01-08"))
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 0, stats.Total())
	assert.Empty(suite.T(), suite.loadAssignments())
}

// TestSyncRange_GlobalTaskCreatesOrphan leaves a fully unscoped recurring
// task with no roster; it surfaces as an orphan placeholder.
func (suite *SyncServiceTestSuite) TestSyncRange_GlobalTaskCreatesOrphan() {
	suite.createTestTask(&models.TaskDefinition{
		Name:       "Generator check",
		TaskType:   models.TaskTypeRecurring,
		WeeklyDays: []int{0},
	})

	stats, err := suite.sync.SyncRange(day("2024-01-08"), day("2024-01-08"))
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 1, stats.Created)

	assignments := suite.loadAssignments()
	suite.Require().Len(assignments, 1)
	assert.Nil(suite.T(), assignments[0].CollaboratorID)
}

// TestSyncRange_CalendarPriority books the same position on the same day in
// a draft and in a modified calendar; the modified calendar's operator wins.
func (suite *SyncServiceTestSuite) TestSyncRange_CalendarPriority() {
	farm := suite.createTestFarm("North")
	position := suite.createTestPosition("P1", farm.ID)
	operatorA := suite.createTestOperator("OP-A")
	operatorB := suite.createTestOperator("OP-B")

	draft := suite.createTestCalendar(models.CalendarStatusDraft, "2024-01-01", "2024-01-31")
	modified := suite.createTestCalendar(models.CalendarStatusModified, "2024-01-01", "2024-01-31")
	suite.createTestEntry(draft.ID, position.ID, "2024-01-08", operatorA)
	suite.createTestEntry(modified.ID, position.ID, "2024-01-08", operatorB)

	suite.createTestTask(&models.TaskDefinition{
		Name:       "Wash lines",
		TaskType:   models.TaskTypeRecurring,
		WeeklyDays: []int{0},
		PositionID: &position.ID,
	})

	_, err := suite.sync.SyncRange(day("2024-01-08"), day("2024-01-08"))
	suite.Require().NoError(err)

	assignments := suite.loadAssignments()
	suite.Require().Len(assignments, 1)
	suite.Require().NotNil(assignments[0].CollaboratorID)
	assert.Equal(suite.T(), operatorB.ID, *assignments[0].CollaboratorID)
}

// TestSyncRange_DoubleBookedOperatorKeptOnce books one operator on two
// positions in overlapping calendars; only the higher-priority booking feeds
// the synchronizer, so the task scoped to the other position stays silent.
func (suite *SyncServiceTestSuite) TestSyncRange_DoubleBookedOperatorKeptOnce() {
	farm := suite.createTestFarm("North")
	position1 := suite.createTestPosition("P1", farm.ID)
	position2 := suite.createTestPosition("P2", farm.ID)
	operator := suite.createTestOperator("OP-A")

	modified := suite.createTestCalendar(models.CalendarStatusModified, "2024-01-01", "2024-01-31")
	draft := suite.createTestCalendar(models.CalendarStatusDraft, "2024-01-01", "2024-01-31")
	suite.createTestEntry(modified.ID, position1.ID, "2024-01-08", operator)
	suite.createTestEntry(draft.ID, position2.ID, "2024-01-08", operator)

	suite.createTestTask(&models.TaskDefinition{
		Name:       "Line one",
		TaskType:   models.TaskTypeRecurring,
		WeeklyDays: []int{0},
		PositionID: &position1.ID,
	})
	suite.createTestTask(&models.TaskDefinition{
		Name:       "Line two",
		TaskType:   models.TaskTypeRecurring,
		WeeklyDays: []int{0},
		PositionID: &position2.ID,
	})

	_, err := suite.sync.SyncRange(day("2024-01-08"), day("2024-01-08"))
	suite.Require().NoError(err)

	assignments := suite.loadAssignments()
	suite.Require().Len(assignments, 1)
	suite.Require().NotNil(assignments[0].CollaboratorID)
	assert.Equal(suite.T(), operator.ID, *assignments[0].CollaboratorID)
}

// TestSyncRange_RepurposesOrphanKeepingRowID completes an orphan row, then
// staffs the roster; the orphan must be reassigned in place, with its
// completion state untouched.
func (suite *SyncServiceTestSuite) TestSyncRange_RepurposesOrphanKeepingRowID() {
	suite.createTestTask(&models.TaskDefinition{
		Name:       "Generator check",
		TaskType:   models.TaskTypeRecurring,
		WeeklyDays: []int{0},
	})

	_, err := suite.sync.SyncRange(day("2024-01-08"), day("2024-01-08"))
	suite.Require().NoError(err)
	orphans := suite.loadAssignments()
	suite.Require().Len(orphans, 1)
	suite.Require().Nil(orphans[0].CollaboratorID)

	completed := day("2024-01-08")
	orphans[0].CompletedOn = &completed
	orphans[0].CompletionNote = "done early"
	suite.Require().NoError(suite.assignmentRepo.UpdateCompletion(&orphans[0]))

	farm := suite.createTestFarm("North")
	position := suite.createTestPosition("P1", farm.ID)
	operator := suite.createTestOperator("OP-A")
	calendar := suite.createTestCalendar(models.CalendarStatusApproved, "2024-01-01", "2024-01-31")
	suite.createTestEntry(calendar.ID, position.ID, "2024-01-08", operator)

	stats, err := suite.sync.SyncRange(day("2024-01-08"), day("2024-01-08"))
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 1, stats.Updated)
	assert.Equal(suite.T(), 0, stats.Created)

	after := suite.loadAssignments()
	suite.Require().Len(after, 1)
	assert.Equal(suite.T(), orphans[0].ID, after[0].ID, "same row id")
	suite.Require().NotNil(after[0].CollaboratorID)
	assert.Equal(suite.T(), operator.ID, *after[0].CollaboratorID)
	suite.Require().NotNil(after[0].CompletedOn)
	assert.Equal(suite.T(), "done early", after[0].CompletionNote)
}

// TestSyncRange_CollaboratorChangeDemotesOldRow swaps the operator on the
// roster entry between runs; the stale row is demoted, not deleted.
func (suite *SyncServiceTestSuite) TestSyncRange_CollaboratorChangeDemotesOldRow() {
	farm := suite.createTestFarm("North")
	position := suite.createTestPosition("P1", farm.ID)
	operatorA := suite.createTestOperator("OP-A")
	operatorB := suite.createTestOperator("OP-B")
	calendar := suite.createTestCalendar(models.CalendarStatusApproved, "2024-01-01", "2024-01-31")
	entry := suite.createTestEntry(calendar.ID, position.ID, "2024-01-08", operatorA)

	suite.createTestTask(&models.TaskDefinition{
		Name:       "Wash lines",
		TaskType:   models.TaskTypeRecurring,
		WeeklyDays: []int{0},
		PositionID: &position.ID,
	})

	_, err := suite.sync.SyncRange(day("2024-01-08"), day("2024-01-08"))
	suite.Require().NoError(err)

	suite.Require().NoError(suite.db.Model(entry).Update("operator_id", operatorB.ID).Error)

	stats, err := suite.sync.SyncRange(day("2024-01-08"), day("2024-01-08"))
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 1, stats.Created)
	assert.Equal(suite.T(), 1, stats.Orphaned)

	assignments := suite.loadAssignments()
	suite.Require().Len(assignments, 2)
	byCollaborator := map[uint64]*models.TaskAssignment{}
	var orphan *models.TaskAssignment
	for i := range assignments {
		if assignments[i].CollaboratorID == nil {
			orphan = &assignments[i]
			continue
		}
		byCollaborator[*assignments[i].CollaboratorID] = &assignments[i]
	}
	suite.Require().NotNil(orphan, "old row demoted")
	suite.Require().NotNil(orphan.PreviousCollaboratorID)
	assert.Equal(suite.T(), operatorA.ID, *orphan.PreviousCollaboratorID)
	assert.Contains(suite.T(), byCollaborator, operatorB.ID)
}

// TestSyncRange_RecurrenceChangeOrphansStaleRows moves the task off Monday
// after an assignment exists there; the next Monday run demotes it.
func (suite *SyncServiceTestSuite) TestSyncRange_RecurrenceChangeOrphansStaleRows() {
	farm := suite.createTestFarm("North")
	position := suite.createTestPosition("P1", farm.ID)
	operator := suite.createTestOperator("OP-A")
	calendar := suite.createTestCalendar(models.CalendarStatusApproved, "2024-01-01", "2024-01-31")
	suite.createTestEntry(calendar.ID, position.ID, "2024-01-08", operator)

	task := suite.createTestTask(&models.TaskDefinition{
		Name:       "Wash lines",
		TaskType:   models.TaskTypeRecurring,
		WeeklyDays: []int{0},
		PositionID: &position.ID,
	})

	_, err := suite.sync.SyncRange(day("2024-01-08"), day("2024-01-08"))
	suite.Require().NoError(err)
	suite.Require().Len(suite.loadAssignments(), 1)

	// Tuesdays only from now on.
	suite.Require().NoError(suite.db.Model(task).Update("weekly_days", `[1]`).Error)

	stats, err := suite.sync.SyncRange(day("2024-01-08"), day("2024-01-08"))
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 1, stats.Orphaned)

	assignments := suite.loadAssignments()
	suite.Require().Len(assignments, 1)
	assert.Nil(suite.T(), assignments[0].CollaboratorID)
}

// TestSyncRange_InactiveTaskIgnored deactivates the status; the synchronizer
// must not evaluate the task at all.
func (suite *SyncServiceTestSuite) TestSyncRange_InactiveTaskIgnored() {
	inactive := &models.TaskStatus{Name: "archived", IsActive: false}
	suite.Require().NoError(suite.db.Create(inactive).Error)

	suite.createTestTask(&models.TaskDefinition{
		Name:       "Generator check",
		StatusID:   inactive.ID,
		TaskType:   models.TaskTypeRecurring,
		WeeklyDays: []int{0},
	})

	stats, err := suite.sync.SyncRange(day("2024-01-08"), day("2024-01-08"))
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 0, stats.Total())
	assert.Empty(suite.T(), suite.loadAssignments())
}

// TestSyncRange_OneTimeTask schedules a one-time task and checks it fires
// exactly on its date and nowhere else.
func (suite *SyncServiceTestSuite) TestSyncRange_OneTimeTask() {
	scheduled := day("2024-01-10")
	suite.createTestTask(&models.TaskDefinition{
		Name:         "Install sensor",
		TaskType:     models.TaskTypeOneTime,
		ScheduledFor: &scheduled,
	})

	stats, err := suite.sync.SyncRange(day("2024-01-01"), day("2024-01-31"))
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 1, stats.Created)

	assignments := suite.loadAssignments()
	suite.Require().Len(assignments, 1)
	assert.Equal(suite.T(), "2024-01-10", utils.DateKey(assignments[0].DueDate))

	stats, err = suite.sync.SyncRange(day("2024-02-01"), day("2024-02-28"))
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 0, stats.Created)
}

// TestSyncRange_InvertedRangeRejected asserts the range is validated, not
// silently swapped.
func (suite *SyncServiceTestSuite) TestSyncRange_InvertedRangeRejected() {
	_, err := suite.sync.SyncRange(day("2024-01-31"), day("2024-01-01"))
	assert.ErrorIs(suite.T(), err, ErrInvalidDateRange)
}

// TestBackfill_ChunksCoverRange runs a daily task over ten days in
// three-day chunks and expects every day covered exactly once.
func (suite *SyncServiceTestSuite) TestBackfill_ChunksCoverRange() {
	suite.createTestTask(&models.TaskDefinition{
		Name:       "Daily walk",
		TaskType:   models.TaskTypeRecurring,
		WeeklyDays: []int{0, 1, 2, 3, 4, 5, 6},
	})

	stats, err := suite.sync.Backfill(BackfillOptions{
		Start:     day("2024-01-01"),
		End:       day("2024-01-10"),
		ChunkDays: 3,
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 10, stats.Created)
	assert.Len(suite.T(), suite.loadAssignments(), 10)
}

func (suite *SyncServiceTestSuite) TestBackfill_RejectsNegativeChunk() {
	_, err := suite.sync.Backfill(BackfillOptions{
		Start:     day("2024-01-01"),
		End:       day("2024-01-10"),
		ChunkDays: -1,
	})
	assert.ErrorIs(suite.T(), err, ErrInvalidChunkSize)
}

// TestDefaultBackfillRange derives the range from calendar bounds and
// scheduled one-time dates, clamped to include today.
func (suite *SyncServiceTestSuite) TestDefaultBackfillRange() {
	suite.createTestCalendar(models.CalendarStatusApproved, "2024-01-01", "2024-01-31")
	scheduled := day("2024-03-05")
	suite.createTestTask(&models.TaskDefinition{
		Name:         "Install sensor",
		TaskType:     models.TaskTypeOneTime,
		ScheduledFor: &scheduled,
	})

	start, end, err := suite.sync.DefaultBackfillRange(day("2024-02-10"))
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "2024-01-01", utils.DateKey(start))
	assert.Equal(suite.T(), "2024-03-05", utils.DateKey(end))
}

func (suite *SyncServiceTestSuite) TestDefaultBackfillRange_NoData() {
	start, end, err := suite.sync.DefaultBackfillRange(day("2024-02-10"))
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "2024-02-10", utils.DateKey(start))
	assert.Equal(suite.T(), "2024-02-10", utils.DateKey(end))
}

// TestSyncServiceTestSuite runs the test suite
func TestSyncServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SyncServiceTestSuite))
}
