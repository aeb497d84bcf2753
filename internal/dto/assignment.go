package dto

import (
	"time"

	"github.com/quintaverde/taskroster/internal/models"
)

// AssignmentDTO represents a task assignment in API responses
type AssignmentDTO struct {
	ID                     uint64       `json:"id"`
	TaskDefinitionID       uint64       `json:"task_definition_id"`
	TaskName               string       `json:"task_name,omitempty"`
	DueDate                time.Time    `json:"due_date"`
	CollaboratorID         *uint64      `json:"collaborator_id"`
	PreviousCollaboratorID *uint64      `json:"previous_collaborator_id"`
	Orphan                 bool         `json:"orphan"`
	CompletedOn            *time.Time   `json:"completed_on"`
	CompletionNote         string       `json:"completion_note,omitempty"`
	Collaborator           *OperatorDTO `json:"collaborator,omitempty"`
	CreatedAt              time.Time    `json:"created_at"`
	UpdatedAt              time.Time    `json:"updated_at"`
}

// EvidenceDTO represents an evidence record in API responses
type EvidenceDTO struct {
	ID          uint64    `json:"id"`
	StorageKey  string    `json:"storage_key"`
	MediaType   string    `json:"media_type"`
	Note        string    `json:"note,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	FileSize    int64     `json:"file_size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// AssignmentListResponse represents a paginated list of assignments
type AssignmentListResponse struct {
	Assignments []AssignmentDTO `json:"assignments"`
	Page        int             `json:"page"`
	PageSize    int             `json:"page_size"`
	TotalCount  int64           `json:"total_count"`
}

// ToAssignmentDTO converts a TaskAssignment model to AssignmentDTO
func ToAssignmentDTO(assignment models.TaskAssignment) AssignmentDTO {
	dto := AssignmentDTO{
		ID:                     assignment.ID,
		TaskDefinitionID:       assignment.TaskDefinitionID,
		DueDate:                assignment.DueDate,
		CollaboratorID:         assignment.CollaboratorID,
		PreviousCollaboratorID: assignment.PreviousCollaboratorID,
		Orphan:                 assignment.IsOrphan(),
		CompletedOn:            assignment.CompletedOn,
		CompletionNote:         assignment.CompletionNote,
		CreatedAt:              assignment.CreatedAt,
		UpdatedAt:              assignment.UpdatedAt,
	}

	if assignment.TaskDefinition.ID != 0 {
		dto.TaskName = assignment.TaskDefinition.Name
	}
	if assignment.Collaborator != nil {
		collaborator := ToOperatorDTO(*assignment.Collaborator)
		dto.Collaborator = &collaborator
	}

	return dto
}

// ToEvidenceDTO converts an evidence model to EvidenceDTO
func ToEvidenceDTO(evidence models.TaskAssignmentEvidence) EvidenceDTO {
	return EvidenceDTO{
		ID:          evidence.ID,
		StorageKey:  evidence.StorageKey,
		MediaType:   evidence.MediaType,
		Note:        evidence.Note,
		ContentType: evidence.ContentType,
		FileSize:    evidence.FileSize,
		UploadedAt:  evidence.UploadedAt,
	}
}

// ToAssignmentListResponse converts a slice of assignments to a list response
func ToAssignmentListResponse(assignments []models.TaskAssignment, page, pageSize int, totalCount int64) AssignmentListResponse {
	items := make([]AssignmentDTO, len(assignments))
	for i, assignment := range assignments {
		items[i] = ToAssignmentDTO(assignment)
	}

	return AssignmentListResponse{
		Assignments: items,
		Page:        page,
		PageSize:    pageSize,
		TotalCount:  totalCount,
	}
}
