package api

import (
	"errors"
	"net/http"

	resdto "vinyl-reserve/internal/handler/dto/response"
	"vinyl-reserve/internal/handler/httperr"
	"vinyl-reserve/internal/handler/middleware"
	"vinyl-reserve/internal/usecase/commands"
	"vinyl-reserve/internal/usecase/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CartHandler struct {
	cartCommands  commands.CartCommands
	cartValidator *validator.CartValidator
}

func NewCartHandler(cartCommands commands.CartCommands, cartValidator *validator.CartValidator) *CartHandler {
	return &CartHandler{
		cartCommands:  cartCommands,
		cartValidator: cartValidator,
	}
}

// @Summary Get cart
// @Description Validate the shopper's cart against current statuses and return the fresh entries
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.CartResponse
// @Failure 401 {object} httperr.Response
// @Router /cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	alias, ok := middleware.GetAlias(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	entries, err := h.cartValidator.Validate(c.Request.Context(), alias)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCartEntries(alias, entries))
}

// @Summary Add to cart
// @Description Add a record to the shopper's cart
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Success 204
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /cart/{id} [post]
func (h *CartHandler) AddItem(c *gin.Context) {
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

	if err := h.cartCommands.AddToCart(c.Request.Context(), alias, recordID); err != nil {
		switch {
		case errors.Is(err, commands.ErrRecordNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Record not found", nil)
		case errors.Is(err, commands.ErrRecordSoldOut):
			httperr.AbortWithError(c, http.StatusConflict, err, "Record is sold", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Remove from cart
// @Description Remove a record from the shopper's cart. Removing an absent record is a no-op.
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Success 204
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /cart/{id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
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

	if err := h.cartCommands.RemoveFromCart(c.Request.Context(), alias, recordID); err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.Status(http.StatusNoContent)
}
