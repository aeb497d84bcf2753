package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/quintaverde/taskroster/internal/errors"
	"github.com/quintaverde/taskroster/internal/services"
	"github.com/quintaverde/taskroster/internal/utils"
)

type SyncHandler struct {
	service *services.SyncService
}

func NewSyncHandler(service *services.SyncService) *SyncHandler {
	return &SyncHandler{service: service}
}

// RunSync runs a manual chunked synchronization over a date range and
// reports the mutations applied.
func (h *SyncHandler) RunSync(c *gin.Context) {
	type syncRequest struct {
		Start            string `json:"start" binding:"required"`
		End              string `json:"end" binding:"required"`
		ChunkDays        int    `json:"chunk_days"`
		SuppressTriggers bool   `json:"suppress_triggers"`
	}

	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	start, err := utils.ParseDate(req.Start)
	if err != nil {
		apierrors.BadRequest(c, "Invalid start date")
		return
	}
	end, err := utils.ParseDate(req.End)
	if err != nil {
		apierrors.BadRequest(c, "Invalid end date")
		return
	}

	stats, err := h.service.Backfill(services.BackfillOptions{
		Start:     start,
		End:       end,
		ChunkDays: req.ChunkDays,
		Suppress:  req.SuppressTriggers,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidDateRange), errors.Is(err, services.ErrInvalidChunkSize):
			apierrors.BadRequest(c, err.Error())
		default:
			apierrors.InternalError(c, "Synchronization failed")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"start": utils.DateKey(start),
		"end":   utils.DateKey(end),
		"stats": stats,
	})
}
