package api

import (
	"errors"
	"net/http"

	resdto "vinyl-reserve/internal/handler/dto/response"
	"vinyl-reserve/internal/handler/httperr"
	"vinyl-reserve/internal/handler/middleware"
	"vinyl-reserve/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StatusHandler struct {
	statusQueries queries.StatusQueries
}

func NewStatusHandler(statusQueries queries.StatusQueries) *StatusHandler {
	return &StatusHandler{statusQueries: statusQueries}
}

// @Summary Get record status
// @Description Resolve the record's status for the current viewer. Anonymous viewers get the public view.
// @Tags records
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} resdto.StatusResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /records/{id}/status [get]
func (h *StatusHandler) GetStatus(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid record ID", nil)
		return
	}

	// Empty alias means anonymous; the resolver returns the public view.
	alias, _ := middleware.GetAlias(c)

	status, err := h.statusQueries.GetStatus(c.Request.Context(), recordID, alias)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrRecordNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Record not found", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromStatus(recordID, status))
}

// @Summary Refresh record status
// @Description Re-read one record's facts from storage into the status cache
// @Tags records
// @Produce json
// @Param id path string true "Record ID"
// @Success 204
// @Failure 400 {object} httperr.Response
// @Router /records/{id}/refresh [post]
func (h *StatusHandler) RefreshRecord(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid record ID", nil)
		return
	}

	if err := h.statusQueries.RefreshRecord(c.Request.Context(), recordID); err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Refresh all statuses
// @Description Rebuild the status cache from storage
// @Tags records
// @Produce json
// @Success 204
// @Router /refresh [post]
func (h *StatusHandler) RefreshAll(c *gin.Context) {
	alias, _ := middleware.GetAlias(c)

	if err := h.statusQueries.RefreshAll(c.Request.Context(), alias); err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.Status(http.StatusNoContent)
}
