package analytics

import (
	"net/http"
	"time"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/api"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/auth"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/clock"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
	clock   clock.Clock
}

func NewHandler(service Service, clk clock.Clock) *Handler {
	return &Handler{service: service, clock: clk}
}

// @Summary      Recent snapshots and lifetime totals
// @Tags         analytics
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  ReportsView
// @Router       /admin/reports [get]
func (h *Handler) Reports(c *gin.Context) {
	actorID, _ := auth.GetUserID(c)

	view, err := h.service.Reports(c.Request.Context(), actorID)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Recompute godoc
// @Summary      Recompute a daily snapshot
// @Tags         analytics
// @Security     BearerAuth
// @Produce      json
// @Param        date  query     string  false  "YYYY-MM-DD (default today)"
// @Success      200   {object}  Snapshot
// @Failure      400   {object}  api.ErrorResponse
// @Router       /admin/analytics/recompute [post]
func (h *Handler) Recompute(c *gin.Context) {
	day := h.clock.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, day.Location())
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "date must be YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	snap, err := h.service.Recompute(c.Request.Context(), day)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

// @Summary      Admin dashboard
// @Tags         analytics
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  AdminDashboard
// @Router       /admin/dashboard [get]
func (h *Handler) AdminDashboard(c *gin.Context) {
	d, err := h.service.AdminDashboard(c.Request.Context())
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, d)
}

// @Summary      Staff dashboard
// @Tags         analytics
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  StaffDashboard
// @Router       /staff/dashboard [get]
func (h *Handler) StaffDashboard(c *gin.Context) {
	d, err := h.service.StaffDashboard(c.Request.Context())
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, d)
}
