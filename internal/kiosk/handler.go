package kiosk

import (
	"net/http"
	"time"

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

// Tap godoc
// @Summary      Kiosk check-in or check-out
// @Description  Toggles attendance for the member owning the PIN. No session required.
// @Tags         kiosk
// @Accept       json
// @Produce      json
// @Param        request  body      TapRequest  true  "6-digit PIN"
// @Success      200      {object}  Result
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      429      {object}  api.ErrorResponse
// @Router       /kiosk [post]
func (h *Handler) Tap(c *gin.Context) {
	var req TapRequest
	if !api.BindJSON(c, &req) {
		return
	}

	res, err := h.service.Toggle(c.Request.Context(), req.PIN)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// @Summary      Issue a kiosk PIN
// @Description  Returns the member's PIN, generating one when none is set.
// @Tags         members
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  PINResult
// @Failure      400  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /staff/members/{id}/pin [post]
func (h *Handler) IssuePIN(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	actorID, _ := auth.GetUserID(c)
	res, err := h.service.IssuePIN(c.Request.Context(), actorID, id)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// @Summary      Attendance report
// @Tags         attendance
// @Security     BearerAuth
// @Produce      json
// @Param        date    query  string  false  "YYYY-MM-DD (default today)"
// @Param        search  query  string  false  "Name or username"
// @Param        status  query  string  false  "in or out"
// @Param        page    query  int     false  "Page"
// @Param        size    query  int     false  "Page size"
// @Success      200     {object}  Report
// @Router       /staff/attendance [get]
func (h *Handler) Report(c *gin.Context) {
	var day time.Time
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "date must be YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	page, size := api.Pagination(c)
	report, err := h.service.Report(c.Request.Context(), day, c.Query("search"), Presence(c.Query("status")), page, size)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
