package assistant

import (
	"net/http"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/api"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Context godoc
// @Summary      Read-only context for the chat assistant
// @Description  Active plans and passes, the caller's membership summary and today's attendance counts.
// @Tags         assistant
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  Context
// @Failure      401  {object}  api.ErrorResponse
// @Router       /assistant/context [get]
func (h *Handler) Context(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	out, err := h.service.Context(c.Request.Context(), userID)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}
