package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quintaverde/taskroster/internal/dto"
	apierrors "github.com/quintaverde/taskroster/internal/errors"
	"github.com/quintaverde/taskroster/internal/middleware"
	"github.com/quintaverde/taskroster/internal/models"
	"github.com/quintaverde/taskroster/internal/repository"
	"github.com/quintaverde/taskroster/internal/services"
	"github.com/quintaverde/taskroster/internal/utils"
)

type TaskDefinitionHandler struct {
	service *services.TaskDefinitionService
}

func NewTaskDefinitionHandler(service *services.TaskDefinitionService) *TaskDefinitionHandler {
	return &TaskDefinitionHandler{service: service}
}

// ListTaskDefinitions returns task definitions, optionally filtered to
// active ones.
func (h *TaskDefinitionHandler) ListTaskDefinitions(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := repository.TaskDefinitionFilter{
		ActiveOnly: c.Query("active") == "true",
		Page:       params.Page,
		PageSize:   params.Limit,
	}
	if taskType := c.Query("task_type"); taskType != "" {
		tt := models.TaskType(taskType)
		filter.TaskType = &tt
	}

	tasks, total, err := h.service.List(filter)
	if err != nil {
		apierrors.InternalError(c, "Failed to list task definitions")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDefinitionListResponse(tasks, params.Page, params.Limit, total))
}

// GetTaskDefinition returns the definition loaded by RequireTaskDefinition
func (h *TaskDefinitionHandler) GetTaskDefinition(c *gin.Context) {
	task, ok := middleware.GetTaskDefinition(c)
	if !ok {
		apierrors.InternalError(c, "Task definition not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDefinitionDTO(task))
}

type scheduleRequest struct {
	TaskType        string  `json:"task_type"`
	ScheduledFor    *string `json:"scheduled_for"`
	WeeklyDays      []int   `json:"weekly_days"`
	MonthDays       []int   `json:"month_days"`
	FortnightDays   []int   `json:"fortnight_days"`
	MonthlyWeekDays []int   `json:"monthly_week_days"`
}

// CreateTaskDefinition creates a task definition
func (h *TaskDefinitionHandler) CreateTaskDefinition(c *gin.Context) {
	type createRequest struct {
		scheduleRequest
		Name                string  `json:"name" binding:"required"`
		Description         string  `json:"description"`
		DisplayOrder        int     `json:"display_order"`
		StatusID            uint64  `json:"status_id" binding:"required"`
		CategoryID          *uint64 `json:"category_id"`
		PositionID          *uint64 `json:"position_id"`
		CollaboratorID      *uint64 `json:"collaborator_id"`
		EvidenceRequirement string  `json:"evidence_requirement"`
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	scheduledFor, ok := parseOptionalDate(c, req.ScheduledFor)
	if !ok {
		return
	}

	task, err := h.service.Create(services.CreateTaskDefinitionInput{
		Name:                req.Name,
		Description:         req.Description,
		DisplayOrder:        req.DisplayOrder,
		StatusID:            req.StatusID,
		CategoryID:          req.CategoryID,
		TaskType:            models.TaskType(req.TaskType),
		ScheduledFor:        scheduledFor,
		WeeklyDays:          req.WeeklyDays,
		MonthDays:           req.MonthDays,
		FortnightDays:       req.FortnightDays,
		MonthlyWeekDays:     req.MonthlyWeekDays,
		PositionID:          req.PositionID,
		CollaboratorID:      req.CollaboratorID,
		EvidenceRequirement: req.EvidenceRequirement,
	})
	if err != nil {
		respondTaskDefinitionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDefinitionDTO(*task))
}

// UpdateTaskDefinition applies a partial update
func (h *TaskDefinitionHandler) UpdateTaskDefinition(c *gin.Context) {
	task, ok := middleware.GetTaskDefinition(c)
	if !ok {
		apierrors.InternalError(c, "Task definition not found in context")
		return
	}

	type updateRequest struct {
		Name                *string `json:"name"`
		Description         *string `json:"description"`
		DisplayOrder        *int    `json:"display_order"`
		StatusID            *uint64 `json:"status_id"`
		CategoryID          *uint64 `json:"category_id"`
		TaskType            *string `json:"task_type"`
		ScheduledFor        *string `json:"scheduled_for"`
		ClearScheduledFor   bool    `json:"clear_scheduled_for"`
		WeeklyDays          []int   `json:"weekly_days"`
		MonthDays           []int   `json:"month_days"`
		FortnightDays       []int   `json:"fortnight_days"`
		MonthlyWeekDays     []int   `json:"monthly_week_days"`
		PositionID          *uint64 `json:"position_id"`
		ClearPosition       bool    `json:"clear_position"`
		CollaboratorID      *uint64 `json:"collaborator_id"`
		ClearCollaborator   bool    `json:"clear_collaborator"`
		EvidenceRequirement *string `json:"evidence_requirement"`
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	scheduledFor, ok := parseOptionalDate(c, req.ScheduledFor)
	if !ok {
		return
	}

	input := services.UpdateTaskDefinitionInput{
		Name:                req.Name,
		Description:         req.Description,
		DisplayOrder:        req.DisplayOrder,
		StatusID:            req.StatusID,
		CategoryID:          req.CategoryID,
		ScheduledFor:        scheduledFor,
		ClearScheduledFor:   req.ClearScheduledFor,
		WeeklyDays:          req.WeeklyDays,
		MonthDays:           req.MonthDays,
		FortnightDays:       req.FortnightDays,
		MonthlyWeekDays:     req.MonthlyWeekDays,
		PositionID:          req.PositionID,
		ClearPosition:       req.ClearPosition,
		CollaboratorID:      req.CollaboratorID,
		ClearCollaborator:   req.ClearCollaborator,
		EvidenceRequirement: req.EvidenceRequirement,
	}
	if req.TaskType != nil {
		tt := models.TaskType(*req.TaskType)
		input.TaskType = &tt
	}

	updated, err := h.service.Update(task.ID, input)
	if err != nil {
		respondTaskDefinitionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDefinitionDTO(*updated))
}

// SetTaskDefinitionScope replaces the farm/building/room scope sets
func (h *TaskDefinitionHandler) SetTaskDefinitionScope(c *gin.Context) {
	task, ok := middleware.GetTaskDefinition(c)
	if !ok {
		apierrors.InternalError(c, "Task definition not found in context")
		return
	}

	type scopeRequest struct {
		FarmIDs     []uint64 `json:"farm_ids"`
		BuildingIDs []uint64 `json:"building_ids"`
		RoomIDs     []uint64 `json:"room_ids"`
	}

	var req scopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.service.SetScope(task.ID, services.ScopeInput{
		FarmIDs:     req.FarmIDs,
		BuildingIDs: req.BuildingIDs,
		RoomIDs:     req.RoomIDs,
	})
	if err != nil {
		respondTaskDefinitionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDefinitionDTO(*updated))
}

// DeactivateTaskDefinition moves the definition to an inactive status
func (h *TaskDefinitionHandler) DeactivateTaskDefinition(c *gin.Context) {
	task, ok := middleware.GetTaskDefinition(c)
	if !ok {
		apierrors.InternalError(c, "Task definition not found in context")
		return
	}

	type deactivateRequest struct {
		StatusID uint64 `json:"status_id" binding:"required"`
	}

	var req deactivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.service.Deactivate(task.ID, req.StatusID)
	if err != nil {
		respondTaskDefinitionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDefinitionDTO(*updated))
}

func respondTaskDefinitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskDefinitionNotFound):
		apierrors.NotFound(c, "Task definition not found")
	case errors.Is(err, services.ErrTaskNameRequired),
		errors.Is(err, services.ErrScheduledForRequired),
		errors.Is(err, services.ErrRecurrenceOnOneTime),
		errors.Is(err, services.ErrScheduledForOnRecurring),
		errors.Is(err, services.ErrRecurrenceRequired),
		errors.Is(err, services.ErrInvalidWeeklyDay),
		errors.Is(err, services.ErrInvalidMonthDay),
		errors.Is(err, services.ErrInvalidFortnightDay),
		errors.Is(err, services.ErrInvalidMonthlyWeekDay),
		errors.Is(err, services.ErrUnknownTaskType),
		errors.Is(err, services.ErrTaskStatusNotFound),
		errors.Is(err, services.ErrStatusStillActive):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Failed to save task definition")
	}
}

// parseOptionalDate parses a YYYY-MM-DD request field, responding with 400
// on a malformed value. The bool result is false after a response was sent.
func parseOptionalDate(c *gin.Context, value *string) (*time.Time, bool) {
	if value == nil || *value == "" {
		return nil, true
	}
	day, err := utils.ParseDate(*value)
	if err != nil {
		apierrors.BadRequest(c, "Invalid date: "+*value)
		return nil, false
	}
	return &day, true
}
