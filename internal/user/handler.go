package user

import (
	"errors"
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

// Register godoc
// @Summary      Register new member
// @Description  Creates a member account and returns access & refresh tokens.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      RegisterRequest  true  "Registration data"
// @Success      201      {object}  Session
// @Failure      400      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !api.BindJSON(c, &req) {
		return
	}

	session, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// Login godoc
// @Summary      Login
// @Description  Authenticates by username or email and password.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      LoginRequest  true  "Credentials"
// @Success      200      {object}  Session
// @Failure      400      {object}  api.ErrorResponse
// @Failure      401      {object}  api.ErrorResponse
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !api.BindJSON(c, &req) {
		return
	}

	session, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Invalid username or password"})
			return
		}
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// RefreshToken godoc
// @Summary      Refresh access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      RefreshRequest  true  "Refresh token payload"
// @Success      200      {object}  Session
// @Failure      400      {object}  api.ErrorResponse
// @Failure      401      {object}  api.ErrorResponse
// @Router       /auth/refresh [post]
func (h *Handler) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if !api.BindJSON(c, &req) {
		return
	}

	session, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid or expired refresh token"})
			return
		}
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Success      200 {object} api.MessageResponse
// @Router       /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	h.service.Logout(c.Request.Context(), userID)
	c.JSON(http.StatusOK, api.MessageResponse{Message: "logged out"})
}

// GetMe godoc
// @Summary      Get current user
// @Tags         user
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  User
// @Failure      401  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /me [get]
func (h *Handler) GetMe(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	u, err := h.service.GetByID(c.Request.Context(), userID)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, u)
}

// @Summary      Update own profile
// @Tags         user
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body UpdateProfileRequest true "Fields to change"
// @Success      200 {object} User
// @Failure      400 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /me [put]
func (h *Handler) UpdateMe(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req UpdateProfileRequest
	if !api.BindJSON(c, &req) {
		return
	}

	u, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, u)
}

// @Summary      Change own password
// @Tags         user
// @Security     BearerAuth
// @Accept       json
// @Param        request body ChangePasswordRequest true "Current and new password"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Router       /me/password [post]
func (h *Handler) ChangePassword(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req ChangePasswordRequest
	if !api.BindJSON(c, &req) {
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), userID, req); err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "password changed"})
}

// @Summary      Create a staff or admin account
// @Tags         admin,users
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body CreateStaffRequest true "Account data"
// @Success      201 {object} User
// @Failure      400 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /admin/staff [post]
func (h *Handler) CreateStaff(c *gin.Context) {
	var req CreateStaffRequest
	if !api.BindJSON(c, &req) {
		return
	}

	actorID, _ := auth.GetUserID(c)
	u, err := h.service.CreateStaff(c.Request.Context(), actorID, req)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, u)
}

// @Summary      List members
// @Tags         staff,users
// @Security     BearerAuth
// @Produce      json
// @Param        q    query string false "Search by name, username or email"
// @Param        page query int    false "Page"
// @Param        size query int    false "Page size"
// @Success      200 {object} MemberPage
// @Router       /staff/members [get]
func (h *Handler) ListMembers(c *gin.Context) {
	page, size := api.Pagination(c)

	result, err := h.service.ListMembers(c.Request.Context(), c.Query("q"), page, size)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
