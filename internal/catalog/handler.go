package catalog

import (
	"context"
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

// ListAvailable godoc
// @Summary      List plans available for purchase
// @Tags         plans
// @Security     BearerAuth
// @Produce      json
// @Param        kind  query     string  false  "membership (default) or walkin"
// @Success      200   {array}   Plan
// @Failure      400   {object}  api.ErrorResponse
// @Router       /plans [get]
func (h *Handler) ListAvailable(c *gin.Context) {
	kind := Kind(c.DefaultQuery("kind", string(KindMembership)))

	plans, err := h.service.ListAvailable(c.Request.Context(), kind)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, plans)
}

// @Summary      List every plan including inactive and archived ones
// @Tags         plans
// @Security     BearerAuth
// @Produce      json
// @Param        kind  query  string  false  "membership or walkin"
// @Success      200   {array}  Plan
// @Router       /staff/plans [get]
func (h *Handler) ListAll(c *gin.Context) {
	plans, err := h.service.ListAll(c.Request.Context(), Kind(c.Query("kind")))
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, plans)
}

// @Summary      List archived plans
// @Tags         plans
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  Plan
// @Router       /admin/plans/archived [get]
func (h *Handler) ListArchived(c *gin.Context) {
	plans, err := h.service.ListArchived(c.Request.Context())
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, plans)
}

// Create godoc
// @Summary      Create a plan or walk-in pass
// @Tags         plans
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreatePlanRequest  true  "Plan data"
// @Success      201      {object}  Plan
// @Failure      400      {object}  api.ErrorResponse
// @Router       /staff/plans [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreatePlanRequest
	if !api.BindJSON(c, &req) {
		return
	}

	actorID, _ := auth.GetUserID(c)
	p, err := h.service.Create(c.Request.Context(), actorID, req)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

// @Summary      Update a plan
// @Tags         plans
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                true  "Plan ID"
// @Param        request  body      UpdatePlanRequest  true  "Fields to change"
// @Success      200      {object}  Plan
// @Failure      404      {object}  api.ErrorResponse
// @Router       /staff/plans/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	var req UpdatePlanRequest
	if !api.BindJSON(c, &req) {
		return
	}

	actorID, _ := auth.GetUserID(c)
	p, err := h.service.Update(c.Request.Context(), actorID, id, req)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// @Summary      Activate or deactivate a plan
// @Tags         plans
// @Security     BearerAuth
// @Param        id   path      int  true  "Plan ID"
// @Success      200  {object}  Plan
// @Failure      409  {object}  api.ErrorResponse
// @Router       /staff/plans/{id}/toggle [post]
func (h *Handler) Toggle(c *gin.Context) {
	h.transition(c, h.service.Toggle)
}

// @Summary      Archive a plan
// @Tags         plans
// @Security     BearerAuth
// @Param        id   path      int  true  "Plan ID"
// @Success      200  {object}  Plan
// @Failure      409  {object}  api.ErrorResponse
// @Router       /admin/plans/{id}/archive [post]
func (h *Handler) Archive(c *gin.Context) {
	h.transition(c, h.service.Archive)
}

// @Summary      Restore an archived plan
// @Tags         plans
// @Security     BearerAuth
// @Param        id   path      int  true  "Plan ID"
// @Success      200  {object}  Plan
// @Failure      409  {object}  api.ErrorResponse
// @Router       /admin/plans/{id}/restore [post]
func (h *Handler) Restore(c *gin.Context) {
	h.transition(c, h.service.Restore)
}

func (h *Handler) transition(c *gin.Context, fn func(ctx context.Context, actorID, id int) (*Plan, error)) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	actorID, _ := auth.GetUserID(c)
	p, err := fn(c.Request.Context(), actorID, id)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// @Summary      Delete an unreferenced plan
// @Tags         plans
// @Security     BearerAuth
// @Param        id   path      int  true  "Plan ID"
// @Success      200  {object}  api.MessageResponse
// @Failure      409  {object}  api.ErrorResponse
// @Router       /admin/plans/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	actorID, _ := auth.GetUserID(c)
	if err := h.service.Delete(c.Request.Context(), actorID, id); err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "plan deleted"})
}
