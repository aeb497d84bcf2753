package dto

import (
	"time"

	"github.com/quintaverde/taskroster/internal/models"
)

// OperatorDTO represents a collaborator in API responses
type OperatorDTO struct {
	ID         uint64 `json:"id"`
	DocumentID string `json:"document_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
}

// ScopeRefDTO is a named id inside a scope set
type ScopeRefDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// TaskDefinitionDTO represents a task definition in API responses
type TaskDefinitionDTO struct {
	ID                  uint64          `json:"id"`
	Name                string          `json:"name"`
	Description         string          `json:"description"`
	DisplayOrder        int             `json:"display_order"`
	StatusID            uint64          `json:"status_id"`
	CategoryID          *uint64         `json:"category_id"`
	TaskType            models.TaskType `json:"task_type"`
	ScheduledFor        *time.Time      `json:"scheduled_for"`
	WeeklyDays          []int           `json:"weekly_days"`
	MonthDays           []int           `json:"month_days"`
	FortnightDays       []int           `json:"fortnight_days"`
	MonthlyWeekDays     []int           `json:"monthly_week_days"`
	PositionID          *uint64         `json:"position_id"`
	CollaboratorID      *uint64         `json:"collaborator_id"`
	EvidenceRequirement string          `json:"evidence_requirement"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
	Collaborator        *OperatorDTO    `json:"collaborator,omitempty"`
	Farms               []ScopeRefDTO   `json:"farms,omitempty"`
	Buildings           []ScopeRefDTO   `json:"buildings,omitempty"`
	Rooms               []ScopeRefDTO   `json:"rooms,omitempty"`
}

// TaskDefinitionListResponse represents a paginated list of task definitions
type TaskDefinitionListResponse struct {
	TaskDefinitions []TaskDefinitionDTO `json:"task_definitions"`
	Page            int                 `json:"page"`
	PageSize        int                 `json:"page_size"`
	TotalCount      int64               `json:"total_count"`
}

// ToOperatorDTO converts an Operator model to OperatorDTO
func ToOperatorDTO(operator models.Operator) OperatorDTO {
	return OperatorDTO{
		ID:         operator.ID,
		DocumentID: operator.DocumentID,
		FirstName:  operator.FirstName,
		LastName:   operator.LastName,
	}
}

// ToTaskDefinitionDTO converts a TaskDefinition model to TaskDefinitionDTO
func ToTaskDefinitionDTO(task models.TaskDefinition) TaskDefinitionDTO {
	dto := TaskDefinitionDTO{
		ID:                  task.ID,
		Name:                task.Name,
		Description:         task.Description,
		DisplayOrder:        task.DisplayOrder,
		StatusID:            task.StatusID,
		CategoryID:          task.CategoryID,
		TaskType:            task.TaskType,
		ScheduledFor:        task.ScheduledFor,
		WeeklyDays:          task.WeeklyDays,
		MonthDays:           task.MonthDays,
		FortnightDays:       task.FortnightDays,
		MonthlyWeekDays:     task.MonthlyWeekDays,
		PositionID:          task.PositionID,
		CollaboratorID:      task.CollaboratorID,
		EvidenceRequirement: task.EvidenceRequirement,
		CreatedAt:           task.CreatedAt,
		UpdatedAt:           task.UpdatedAt,
	}

	if task.Collaborator != nil {
		collaborator := ToOperatorDTO(*task.Collaborator)
		dto.Collaborator = &collaborator
	}

	for _, farm := range task.Farms {
		dto.Farms = append(dto.Farms, ScopeRefDTO{ID: farm.ID, Name: farm.Name})
	}
	for _, building := range task.Buildings {
		dto.Buildings = append(dto.Buildings, ScopeRefDTO{ID: building.ID, Name: building.Name})
	}
	for _, room := range task.Rooms {
		dto.Rooms = append(dto.Rooms, ScopeRefDTO{ID: room.ID, Name: room.Name})
	}

	return dto
}

// ToTaskDefinitionListResponse converts a slice of definitions to a list response
func ToTaskDefinitionListResponse(tasks []models.TaskDefinition, page, pageSize int, totalCount int64) TaskDefinitionListResponse {
	items := make([]TaskDefinitionDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDefinitionDTO(task)
	}

	return TaskDefinitionListResponse{
		TaskDefinitions: items,
		Page:            page,
		PageSize:        pageSize,
		TotalCount:      totalCount,
	}
}
