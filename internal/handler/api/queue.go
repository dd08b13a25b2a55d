package api

import (
	"errors"
	"net/http"

	resdto "vinyl-reserve/internal/handler/dto/response"
	"vinyl-reserve/internal/handler/httperr"
	"vinyl-reserve/internal/handler/middleware"
	"vinyl-reserve/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type QueueHandler struct {
	queueCommands commands.QueueCommands
}

func NewQueueHandler(queueCommands commands.QueueCommands) *QueueHandler {
	return &QueueHandler{queueCommands: queueCommands}
}

// @Summary Join queue
// @Description Join the waiting queue for a reserved record
// @Tags queue
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Success 201 {object} resdto.QueueEntryResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /records/{id}/queue [post]
func (h *QueueHandler) Join(c *gin.Context) {
	alias, ok := middleware.GetAlias(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid record ID", nil)
		return
	}

	entry, err := h.queueCommands.Join(c.Request.Context(), recordID, alias)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrRecordNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Record not found", nil)
		case errors.Is(err, commands.ErrAlreadyQueued):
			httperr.AbortWithError(c, http.StatusConflict, err, "Already in the queue for this record", nil)
		case errors.Is(err, commands.ErrQueueFull):
			httperr.AbortWithError(c, http.StatusConflict, err, "Queue is full", nil)
		case errors.Is(err, commands.ErrItemSold):
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Record is sold", nil)
		case errors.Is(err, commands.ErrItemNotReserved):
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err,
				"Record has no active reservation to queue behind", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	rank, err := h.queueCommands.EffectiveRank(c.Request.Context(), recordID, alias)
	if err != nil {
		// The join itself is durable; reading the rank back is a view.
		rank = 0
	}

	c.JSON(http.StatusCreated, resdto.FromQueueEntry(entry, rank))
}

// @Summary Leave queue
// @Description Leave the waiting queue for a record. Leaving a queue the alias is not in is a no-op.
// @Tags queue
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Success 204
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /records/{id}/queue [delete]
func (h *QueueHandler) Leave(c *gin.Context) {
	alias, ok := middleware.GetAlias(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid record ID", nil)
		return
	}

	if err := h.queueCommands.Leave(c.Request.Context(), recordID, alias); err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Get queue rank
// @Description Return the alias's effective rank in the record's queue
// @Tags queue
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Success 200 {object} resdto.QueueRankResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /records/{id}/queue [get]
func (h *QueueHandler) Rank(c *gin.Context) {
	alias, ok := middleware.GetAlias(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid record ID", nil)
		return
	}

	rank, err := h.queueCommands.EffectiveRank(c.Request.Context(), recordID, alias)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrRecordNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Record not found", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.QueueRankResponse{
		RecordID:      recordID,
		EffectiveRank: rank,
	})
}
