package membership

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

// Purchase godoc
// @Summary      Subscribe to a membership plan
// @Description  Creates a pending subscription and a pending payment with a fresh reference number.
// @Tags         subscriptions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      PurchaseRequest  true  "Plan and payment method"
// @Success      201      {object}  PurchaseResult
// @Failure      400      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /subscriptions [post]
func (h *Handler) Purchase(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req PurchaseRequest
	if !api.BindJSON(c, &req) {
		return
	}

	res, err := h.service.Purchase(c.Request.Context(), userID, req)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

// @Summary      List own subscriptions
// @Tags         subscriptions
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  Subscription
// @Router       /subscriptions [get]
func (h *Handler) List(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	subs, err := h.service.Subscriptions(c.Request.Context(), userID)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, subs)
}

// @Summary      Current active subscription
// @Tags         subscriptions
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  Subscription
// @Failure      404  {object}  api.ErrorResponse
// @Router       /subscriptions/current [get]
func (h *Handler) Current(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	sub, err := h.service.Current(c.Request.Context(), userID)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

// @Summary      Payments awaiting review
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  PendingPayment
// @Router       /staff/payments/pending [get]
func (h *Handler) Pending(c *gin.Context) {
	payments, err := h.service.PendingPayments(c.Request.Context())
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, payments)
}

// Confirm godoc
// @Summary      Confirm a pending payment
// @Description  Activates the subscription and issues a kiosk PIN when the member has none.
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Payment ID"
// @Success      200  {object}  ConfirmResult
// @Failure      404  {object}  api.ErrorResponse
// @Failure      409  {object}  api.ErrorResponse
// @Router       /staff/payments/{id}/confirm [post]
func (h *Handler) Confirm(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	actorID, _ := auth.GetUserID(c)
	res, err := h.service.Confirm(c.Request.Context(), actorID, id)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// @Summary      Reject a pending payment
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int            true   "Payment ID"
// @Param        request  body      RejectRequest  false  "Reason"
// @Success      200      {object}  Payment
// @Failure      409      {object}  api.ErrorResponse
// @Router       /staff/payments/{id}/reject [post]
func (h *Handler) Reject(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	var req RejectRequest
	if c.Request.ContentLength != 0 && !api.BindJSON(c, &req) {
		return
	}

	actorID, _ := auth.GetUserID(c)
	p, err := h.service.Reject(c.Request.Context(), actorID, id, req.Reason)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// @Summary      Cancel an active subscription
// @Tags         subscriptions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int            true  "Subscription ID"
// @Param        request  body      CancelRequest  true  "Reason"
// @Success      200      {object}  Subscription
// @Failure      409      {object}  api.ErrorResponse
// @Router       /staff/subscriptions/{id}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	var req CancelRequest
	if !api.BindJSON(c, &req) {
		return
	}

	actorID, _ := auth.GetUserID(c)
	sub, err := h.service.Cancel(c.Request.Context(), actorID, id, req.Reason)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

// @Summary      Subscriptions ending soon
// @Tags         subscriptions
// @Security     BearerAuth
// @Produce      json
// @Param        days  query  int  false  "Window in days (default 7)"
// @Success      200   {array}  Expiring
// @Router       /staff/subscriptions/expiring [get]
func (h *Handler) Expiring(c *gin.Context) {
	days, _ := strconv.Atoi(c.Query("days"))

	out, err := h.service.ExpiringWithin(c.Request.Context(), days)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// @Summary      Member detail with subscriptions and payments
// @Tags         members
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  MemberDetail
// @Failure      404  {object}  api.ErrorResponse
// @Router       /staff/members/{id} [get]
func (h *Handler) MemberDetail(c *gin.Context) {
	id, ok := api.ParamID(c, "id")
	if !ok {
		return
	}

	detail, err := h.service.MemberDetail(c.Request.Context(), id)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}
