package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quintaverde/taskroster/internal/models"
	"github.com/quintaverde/taskroster/internal/repository"
	"github.com/quintaverde/taskroster/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrAssignmentNotFound  = errors.New("assignment not found")
	ErrMediaTypeRequired   = errors.New("evidence media type is required")
	ErrAssignmentCompleted = errors.New("assignment is already completed")
)

// AssignmentService is the task-execution boundary: listing assignments and
// writing the completion/evidence fields that reconciliation never touches.
type AssignmentService struct {
	repo repository.AssignmentRepository
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(repo repository.AssignmentRepository) *AssignmentService {
	return &AssignmentService{repo: repo}
}

// List retrieves assignments with filtering and pagination
func (s *AssignmentService) List(filter repository.AssignmentFilter) ([]models.TaskAssignment, int64, error) {
	assignments, total, err := s.repo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, total, nil
}

// Get returns an assignment with its relations loaded
func (s *AssignmentService) Get(id uint64) (*models.TaskAssignment, error) {
	assignment, err := s.repo.FindByID(id, "TaskDefinition", "Collaborator", "Evidence")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}
	return assignment, nil
}

// Complete marks an assignment completed on a date with an optional note.
func (s *AssignmentService) Complete(id uint64, completedOn time.Time, note string) (*models.TaskAssignment, error) {
	assignment, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}

	if assignment.CompletedOn != nil {
		return nil, ErrAssignmentCompleted
	}

	day := utils.Day(completedOn)
	assignment.CompletedOn = &day
	assignment.CompletionNote = note

	if err := s.repo.UpdateCompletion(assignment); err != nil {
		return nil, fmt.Errorf("failed to complete assignment: %w", err)
	}

	return assignment, nil
}

// AddEvidenceInput represents input for attaching evidence to an assignment
type AddEvidenceInput struct {
	MediaType    string
	Note         string
	ContentType  string
	FileSize     int64
	UploadedByID *uint64
}

// AddEvidence attaches an evidence record, minting its storage key.
func (s *AssignmentService) AddEvidence(assignmentID uint64, input AddEvidenceInput) (*models.TaskAssignmentEvidence, error) {
	if input.MediaType == "" {
		return nil, ErrMediaTypeRequired
	}

	if _, err := s.repo.FindByID(assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}

	evidence := &models.TaskAssignmentEvidence{
		AssignmentID: assignmentID,
		StorageKey:   uuid.NewString(),
		MediaType:    input.MediaType,
		Note:         input.Note,
		ContentType:  input.ContentType,
		FileSize:     input.FileSize,
		UploadedByID: input.UploadedByID,
		UploadedAt:   time.Now(),
	}

	if err := s.repo.AddEvidence(evidence); err != nil {
		return nil, fmt.Errorf("failed to store evidence: %w", err)
	}

	return evidence, nil
}
