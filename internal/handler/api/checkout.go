package api

import (
	"context"
	"errors"
	"net/http"

	reqdto "vinyl-reserve/internal/handler/dto/request"
	resdto "vinyl-reserve/internal/handler/dto/response"
	"vinyl-reserve/internal/handler/httperr"
	"vinyl-reserve/internal/handler/middleware"
	"vinyl-reserve/internal/pkg/errs"
	"vinyl-reserve/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

// errDecisionRequired aborts a checkout whose request carried no
// conflict_action while live conflicts exist. The aborted attempt has
// written nothing; the client retries with an action.
var errDecisionRequired = errs.New("conflict decision required")

type CheckoutHandler struct {
	checkoutCommands commands.CheckoutCommands
}

func NewCheckoutHandler(checkoutCommands commands.CheckoutCommands) *CheckoutHandler {
	return &CheckoutHandler{checkoutCommands: checkoutCommands}
}

// @Summary Checkout
// @Description Reserve every available cart item atomically. When items are held by other shoppers and no conflict_action is given, responds 409 with the conflict list.
// @Tags checkout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CheckoutRequest false "Checkout request"
// @Success 200 {object} resdto.CheckoutResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 409 {object} resdto.CheckoutConflictsResponse
// @Failure 422 {object} httperr.Response
// @Router /checkout [post]
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	alias, ok := middleware.GetAlias(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var req reqdto.CheckoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
			return
		}
	}

	var pending []commands.ConflictItem
	decide := func(_ context.Context, conflicts []commands.ConflictItem) (commands.Decision, error) {
		if !req.HasAction() {
			pending = conflicts
			return commands.DecisionSkip, errDecisionRequired
		}
		if req.WantsQueue() {
			return commands.DecisionJoinQueue, nil
		}
		return commands.DecisionSkip, nil
	}

	result, err := h.checkoutCommands.Checkout(c.Request.Context(), alias, decide)
	if err != nil {
		switch {
		case errors.Is(err, errDecisionRequired):
			c.JSON(http.StatusConflict, resdto.FromConflicts(pending))
		case errors.Is(err, commands.ErrEmptyCart):
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Cart is empty", nil)
		case errors.Is(err, commands.ErrCheckoutFailed):
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Checkout could not be completed; cart is unchanged", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromCheckoutResult(result))
}
