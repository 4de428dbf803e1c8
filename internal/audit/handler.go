package audit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      Browse the audit trail
// @Tags         admin,audit
// @Produce      json
// @Security     BearerAuth
// @Param        action   query string false "Action"
// @Param        severity query string false "Severity"
// @Param        username query string false "Username substring"
// @Param        days     query int    false "Look back this many days"
// @Success      200 {object} api.PageResponse
// @Failure      400 {object} api.ErrorResponse
// @Router       /admin/audit [get]
func (h *Handler) List(c *gin.Context) {
	f := Filter{
		Action:   Action(c.Query("action")),
		Severity: Severity(c.Query("severity")),
		Username: c.Query("username"),
	}
	if f.Action != "" && !f.Action.Valid() {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "unknown action"})
		return
	}
	if f.Severity != "" && !f.Severity.Valid() {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "unknown severity"})
		return
	}
	if days, err := strconv.Atoi(c.Query("days")); err == nil && days > 0 {
		f.Days = days
	}
	f.Page, f.Size = api.Pagination(c)

	entries, total, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.PageResponse{Items: entries, Page: f.Page, Size: f.Size, Total: total})
}

// @Summary      Security events
// @Tags         admin,audit
// @Produce      json
// @Security     BearerAuth
// @Param        days query int false "Look back this many days" default(7)
// @Success      200 {array} audit.Entry
// @Router       /admin/audit/security [get]
func (h *Handler) Security(c *gin.Context) {
	entries, err := h.service.SecurityEvents(c.Request.Context(), queryInt(c, "days", 7))
	if err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// @Summary      Financial events
// @Tags         admin,audit
// @Produce      json
// @Security     BearerAuth
// @Param        from query string false "Start date (YYYY-MM-DD)"
// @Param        to   query string false "End date (YYYY-MM-DD), inclusive"
// @Success      200 {array} audit.Entry
// @Failure      400 {object} api.ErrorResponse
// @Router       /admin/audit/financial [get]
func (h *Handler) Financial(c *gin.Context) {
	from, ok := queryDate(c, "from")
	if !ok {
		return
	}
	to, ok := queryDate(c, "to")
	if !ok {
		return
	}
	if to != nil {
		end := to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		to = &end
	}

	entries, err := h.service.FinancialEvents(c.Request.Context(), from, to)
	if err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// @Summary      Activity of one user
// @Tags         admin,audit
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int true  "User ID"
// @Param        days query int false "Look back this many days" default(30)
// @Success      200 {array} audit.Entry
// @Router       /admin/audit/users/{id} [get]
func (h *Handler) UserActivity(c *gin.Context) {
	userID, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	entries, err := h.service.UserActivity(c.Request.Context(), userID, queryInt(c, "days", 30))
	if err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func queryInt(c *gin.Context, key string, def int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil && v > 0 {
		return v
	}
	return def
}

func queryDate(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid " + key + " date"})
		return nil, false
	}
	return &t, true
}
