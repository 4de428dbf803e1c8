package maintenance

import (
	"net/http"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	runner *Runner
}

func NewHandler(runner *Runner) *Handler {
	return &Handler{runner: runner}
}

// Expire godoc
// @Summary      Run the expiry sweep now
// @Description  Expires memberships past their end date and recomputes today's snapshot.
// @Tags         maintenance
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  Result
// @Router       /admin/maintenance/expire [post]
func (h *Handler) Expire(c *gin.Context) {
	res, err := h.runner.Run(c.Request.Context(), h.runner.clock.Now())
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
