package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/quintaverde/taskroster/internal/errors"
	"github.com/quintaverde/taskroster/internal/models"
	"github.com/quintaverde/taskroster/internal/services"
	"github.com/quintaverde/taskroster/internal/utils"
)

type RosterHandler struct {
	service *services.RosterService
}

func NewRosterHandler(service *services.RosterService) *RosterHandler {
	return &RosterHandler{service: service}
}

// ListCalendars lists shift calendars, newest first
func (h *RosterHandler) ListCalendars(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	calendars, total, err := h.service.ListCalendars(params.Page, params.Limit)
	if err != nil {
		apierrors.InternalError(c, "Failed to list calendars")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"calendars": calendars,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// CreateCalendar creates a shift calendar
func (h *RosterHandler) CreateCalendar(c *gin.Context) {
	type createRequest struct {
		Name           string  `json:"name" binding:"required"`
		StartDate      string  `json:"start_date" binding:"required"`
		EndDate        string  `json:"end_date" binding:"required"`
		Status         string  `json:"status"`
		BaseCalendarID *uint64 `json:"base_calendar_id"`
		Notes          string  `json:"notes"`
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		apierrors.BadRequest(c, "Invalid start_date")
		return
	}
	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		apierrors.BadRequest(c, "Invalid end_date")
		return
	}

	calendar, err := h.service.CreateCalendar(services.CreateCalendarInput{
		Name:           req.Name,
		StartDate:      start,
		EndDate:        end,
		Status:         models.CalendarStatus(req.Status),
		BaseCalendarID: req.BaseCalendarID,
		Notes:          req.Notes,
	})
	if err != nil {
		respondRosterError(c, err)
		return
	}

	c.JSON(http.StatusCreated, calendar)
}

// ApproveCalendar promotes a draft calendar to approved
func (h *RosterHandler) ApproveCalendar(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	calendar, err := h.service.ApproveCalendar(id)
	if err != nil {
		respondRosterError(c, err)
		return
	}

	c.JSON(http.StatusOK, calendar)
}

// ListEntries lists the entries of one calendar
func (h *RosterHandler) ListEntries(c *gin.Context) {
	calendarIDStr := c.Query("calendar_id")
	calendarID, err := strconv.ParseUint(calendarIDStr, 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid calendar_id")
		return
	}

	entries, err := h.service.ListEntries(calendarID)
	if err != nil {
		respondRosterError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// CreateEntry creates a roster entry
func (h *RosterHandler) CreateEntry(c *gin.Context) {
	type createRequest struct {
		CalendarID     uint64  `json:"calendar_id" binding:"required"`
		PositionID     uint64  `json:"position_id" binding:"required"`
		Date           string  `json:"date" binding:"required"`
		OperatorID     *uint64 `json:"operator_id"`
		IsAutoAssigned bool    `json:"is_auto_assigned"`
		Notes          string  `json:"notes"`
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		apierrors.BadRequest(c, "Invalid date")
		return
	}

	entry, err := h.service.CreateEntry(services.CreateEntryInput{
		CalendarID:     req.CalendarID,
		PositionID:     req.PositionID,
		Date:           date,
		OperatorID:     req.OperatorID,
		IsAutoAssigned: req.IsAutoAssigned,
		Notes:          req.Notes,
	})
	if err != nil {
		respondRosterError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// UpdateEntry applies a partial update to a roster entry
func (h *RosterHandler) UpdateEntry(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	type updateRequest struct {
		Date          *string `json:"date"`
		OperatorID    *uint64 `json:"operator_id"`
		ClearOperator bool    `json:"clear_operator"`
		Notes         *string `json:"notes"`
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateEntryInput{
		OperatorID:    req.OperatorID,
		ClearOperator: req.ClearOperator,
		Notes:         req.Notes,
	}
	if req.Date != nil {
		date, err := utils.ParseDate(*req.Date)
		if err != nil {
			apierrors.BadRequest(c, "Invalid date")
			return
		}
		input.Date = &date
	}

	entry, err := h.service.UpdateEntry(id, input)
	if err != nil {
		respondRosterError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// DeleteEntry removes a roster entry
func (h *RosterHandler) DeleteEntry(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.service.DeleteEntry(id); err != nil {
		respondRosterError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Roster entry deleted"})
}

func respondRosterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrCalendarNotFound):
		apierrors.NotFound(c, "Calendar not found")
	case errors.Is(err, services.ErrRosterEntryNotFound):
		apierrors.NotFound(c, "Roster entry not found")
	case errors.Is(err, services.ErrPositionNotFound):
		apierrors.NotFound(c, "Position not found")
	case errors.Is(err, services.ErrCalendarNameRequired),
		errors.Is(err, services.ErrCalendarRangeInvalid),
		errors.Is(err, services.ErrEntryOutsideCalendar),
		errors.Is(err, services.ErrPositionNotActive):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrCalendarNotDraft):
		apierrors.InvalidOperation(c, err.Error())
	default:
		apierrors.InternalError(c, "Failed to save roster data")
	}
}

func parseIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid ID")
		return 0, false
	}
	return id, true
}
