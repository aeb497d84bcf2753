package services

import (
	"testing"

	"github.com/quintaverde/taskroster/internal/database"
	"github.com/quintaverde/taskroster/internal/models"
	"github.com/quintaverde/taskroster/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// AssignmentServiceTestSuite defines the test suite for AssignmentService
type AssignmentServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AssignmentService

	task *models.TaskDefinition
}

func (suite *AssignmentServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)
	suite.Require().NoError(database.MigrateDatabase(suite.db))

	suite.service = NewAssignmentService(repository.NewAssignmentRepository(suite.db))

	status := &models.TaskStatus{Name: "active", IsActive: true}
	suite.Require().NoError(suite.db.Create(status).Error)
	suite.task = &models.TaskDefinition{Name: "Wash lines", StatusID: status.ID, TaskType: models.TaskTypeRecurring}
	suite.Require().NoError(suite.db.Create(suite.task).Error)
}

func (suite *AssignmentServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *AssignmentServiceTestSuite) createTestAssignment() *models.TaskAssignment {
	assignment := &models.TaskAssignment{
		TaskDefinitionID: suite.task.ID,
		DueDate:          day("2024-01-08"),
	}
	suite.Require().NoError(suite.db.Create(assignment).Error)
	return assignment
}

func (suite *AssignmentServiceTestSuite) TestComplete_Success() {
	assignment := suite.createTestAssignment()

	completed, err := suite.service.Complete(assignment.ID, day("2024-01-08"), "done before lunch")
	suite.Require().NoError(err)

	suite.Require().NotNil(completed.CompletedOn)
	assert.Equal(suite.T(), "done before lunch", completed.CompletionNote)
}

func (suite *AssignmentServiceTestSuite) TestComplete_AlreadyCompleted() {
	assignment := suite.createTestAssignment()

	_, err := suite.service.Complete(assignment.ID, day("2024-01-08"), "")
	suite.Require().NoError(err)

	_, err = suite.service.Complete(assignment.ID, day("2024-01-09"), "")
	assert.ErrorIs(suite.T(), err, ErrAssignmentCompleted)
}

func (suite *AssignmentServiceTestSuite) TestComplete_NotFound() {
	_, err := suite.service.Complete(9999, day("2024-01-08"), "")
	assert.ErrorIs(suite.T(), err, ErrAssignmentNotFound)
}

func (suite *AssignmentServiceTestSuite) TestAddEvidence() {
	assignment := suite.createTestAssignment()

	evidence, err := suite.service.AddEvidence(assignment.ID, AddEvidenceInput{
		MediaType:   "photo",
		Note:        "after cleaning",
		ContentType: "image/jpeg",
		FileSize:    2048,
	})
	suite.Require().NoError(err)

	assert.NotEmpty(suite.T(), evidence.StorageKey)
	assert.Equal(suite.T(), assignment.ID, evidence.AssignmentID)

	second, err := suite.service.AddEvidence(assignment.ID, AddEvidenceInput{MediaType: "photo"})
	suite.Require().NoError(err)
	assert.NotEqual(suite.T(), evidence.StorageKey, second.StorageKey)
}

func (suite *AssignmentServiceTestSuite) TestAddEvidence_Validation() {
	assignment := suite.createTestAssignment()

	_, err := suite.service.AddEvidence(assignment.ID, AddEvidenceInput{})
	assert.ErrorIs(suite.T(), err, ErrMediaTypeRequired)

	_, err = suite.service.AddEvidence(9999, AddEvidenceInput{MediaType: "photo"})
	assert.ErrorIs(suite.T(), err, ErrAssignmentNotFound)
}

func (suite *AssignmentServiceTestSuite) TestList_ByTask() {
	suite.createTestAssignment()

	rows, total, err := suite.service.List(repository.AssignmentFilter{TaskDefinitionID: &suite.task.ID})
	suite.Require().NoError(err)
	assert.EqualValues(suite.T(), 1, total)
	assert.Len(suite.T(), rows, 1)
}

func TestAssignmentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AssignmentServiceTestSuite))
}
