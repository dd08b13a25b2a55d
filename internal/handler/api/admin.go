package api

import (
	"errors"
	"net/http"

	"vinyl-reserve/internal/handler/httperr"
	"vinyl-reserve/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminHandler struct {
	adminCommands commands.AdminCommands
}

func NewAdminHandler(adminCommands commands.AdminCommands) *AdminHandler {
	return &AdminHandler{adminCommands: adminCommands}
}

// @Summary Mark record sold
// @Description Mark a record as sold and settle its reservations. Marking an already-sold record is a no-op.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Success 204
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /admin/records/{id}/sold [post]
func (h *AdminHandler) MarkRecordSold(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid record ID", nil)
		return
	}

	if err := h.adminCommands.MarkRecordSold(c.Request.Context(), recordID); err != nil {
		switch {
		case errors.Is(err, commands.ErrRecordNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Record not found", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Expire reservation
// @Description Force-expire a reservation. Expiring a settled reservation is a no-op.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 204
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /admin/reservations/{id}/expire [post]
func (h *AdminHandler) ExpireReservation(c *gin.Context) {
	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid reservation ID", nil)
		return
	}

	if err := h.adminCommands.ExpireReservation(c.Request.Context(), reservationID); err != nil {
		switch {
		case errors.Is(err, commands.ErrReservationNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Reservation not found", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.Status(http.StatusNoContent)
}
