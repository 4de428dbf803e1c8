package walkin

import (
	"net/http"
	"strconv"

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

// Sell godoc
// @Summary      Record a walk-in sale
// @Tags         walkins
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      SellRequest  true  "Pass and payment"
// @Success      201      {object}  Sale
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /staff/walkins [post]
func (h *Handler) Sell(c *gin.Context) {
	var req SellRequest
	if !api.BindJSON(c, &req) {
		return
	}

	actorID, _ := auth.GetUserID(c)
	sale, err := h.service.Sell(c.Request.Context(), actorID, req)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sale)
}

// @Summary      Recent walk-in sales
// @Tags         walkins
// @Security     BearerAuth
// @Produce      json
// @Param        limit  query  int  false  "Max rows (default 20)"
// @Success      200    {array}  Sale
// @Router       /staff/walkins [get]
func (h *Handler) Recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	sales, err := h.service.Recent(c.Request.Context(), limit)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, sales)
}
