package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quintaverde/taskroster/internal/dto"
	apierrors "github.com/quintaverde/taskroster/internal/errors"
	"github.com/quintaverde/taskroster/internal/repository"
	"github.com/quintaverde/taskroster/internal/services"
	"github.com/quintaverde/taskroster/internal/utils"
)

type AssignmentHandler struct {
	service *services.AssignmentService
}

func NewAssignmentHandler(service *services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: service}
}

// ListAssignments returns assignments filtered by date range, collaborator,
// task definition, or orphan state.
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := repository.AssignmentFilter{
		OrphansOnly: c.Query("orphans") == "true",
		Page:        params.Page,
		PageSize:    params.Limit,
	}

	if from := c.Query("from"); from != "" {
		day, err := utils.ParseDate(from)
		if err != nil {
			apierrors.BadRequest(c, "Invalid from date")
			return
		}
		filter.DueDateFrom = &day
	}
	if to := c.Query("to"); to != "" {
		day, err := utils.ParseDate(to)
		if err != nil {
			apierrors.BadRequest(c, "Invalid to date")
			return
		}
		filter.DueDateTo = &day
	}
	if collaborator := c.Query("collaborator_id"); collaborator != "" {
		id, err := strconv.ParseUint(collaborator, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid collaborator_id")
			return
		}
		filter.CollaboratorID = &id
	}
	if task := c.Query("task_definition_id"); task != "" {
		id, err := strconv.ParseUint(task, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid task_definition_id")
			return
		}
		filter.TaskDefinitionID = &id
	}

	assignments, total, err := h.service.List(filter)
	if err != nil {
		apierrors.InternalError(c, "Failed to list assignments")
		return
	}

	c.JSON(http.StatusOK, dto.ToAssignmentListResponse(assignments, params.Page, params.Limit, total))
}

// CompleteAssignment marks an assignment completed. Completion is the
// task-execution subsystem's write; reconciliation never touches it.
func (h *AssignmentHandler) CompleteAssignment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	type completeRequest struct {
		CompletedOn string `json:"completed_on"`
		Note        string `json:"note"`
	}

	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	completedOn := time.Now()
	if req.CompletedOn != "" {
		day, err := utils.ParseDate(req.CompletedOn)
		if err != nil {
			apierrors.BadRequest(c, "Invalid completed_on date")
			return
		}
		completedOn = day
	}

	assignment, err := h.service.Complete(id, completedOn, req.Note)
	if err != nil {
		respondAssignmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAssignmentDTO(*assignment))
}

// AddEvidence attaches an evidence record to an assignment
func (h *AssignmentHandler) AddEvidence(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	type evidenceRequest struct {
		MediaType    string  `json:"media_type" binding:"required"`
		Note         string  `json:"note"`
		ContentType  string  `json:"content_type"`
		FileSize     int64   `json:"file_size"`
		UploadedByID *uint64 `json:"uploaded_by_id"`
	}

	var req evidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	evidence, err := h.service.AddEvidence(id, services.AddEvidenceInput{
		MediaType:    req.MediaType,
		Note:         req.Note,
		ContentType:  req.ContentType,
		FileSize:     req.FileSize,
		UploadedByID: req.UploadedByID,
	})
	if err != nil {
		respondAssignmentError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToEvidenceDTO(*evidence))
}

func respondAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAssignmentNotFound):
		apierrors.NotFound(c, "Assignment not found")
	case errors.Is(err, services.ErrAssignmentCompleted):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrMediaTypeRequired):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Failed to save assignment")
	}
}
