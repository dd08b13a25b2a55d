package api

import (
	"net/http"

	reqdto "vinyl-reserve/internal/handler/dto/request"
	resdto "vinyl-reserve/internal/handler/dto/response"
	"vinyl-reserve/internal/handler/httperr"
	"vinyl-reserve/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessions *jwt.Service
}

func NewSessionHandler(sessions *jwt.Service) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// @Summary Create session
// @Description Issue a session token for a shopper alias
// @Tags session
// @Accept json
// @Produce json
// @Param request body reqdto.CreateSessionRequest true "Session request"
// @Success 201 {object} resdto.SessionResponse
// @Failure 400 {object} httperr.Response
// @Router /session [post]
func (h *SessionHandler) Create(c *gin.Context) {
	var req reqdto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	alias := req.NormalizedAlias()
	if alias == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Alias must not be blank"})
		return
	}

	token, err := h.sessions.GenerateToken(alias)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusCreated, resdto.SessionResponse{
		Alias: alias,
		Token: token,
	})
}
