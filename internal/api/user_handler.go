package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/parlour/internal/core"
	"github.com/example/parlour/internal/middleware"
	"github.com/example/parlour/internal/models"
)

// UserHandler handles user profile and role endpoints.
type UserHandler struct {
	users  core.UserService
	logger *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users core.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// CreateUser handles POST /users.
func (h *UserHandler) CreateUser(c *gin.Context) {
	doc, ok := bindDocument(c)
	if !ok {
		return
	}
	res, err := h.users.CreateUser(c.Request.Context(), doc)
	if err != nil {
		storeFailure(c, h.logger, "Failed to create user", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// UpsertUser handles PUT /users, keyed by the body's email field.
func (h *UserHandler) UpsertUser(c *gin.Context) {
	doc, ok := bindDocument(c)
	if !ok {
		return
	}
	res, err := h.users.UpsertUser(c.Request.Context(), doc)
	if err != nil {
		storeFailure(c, h.logger, "Failed to save user", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetAdminStatus handles GET /users/:email. Unknown users are not admins.
func (h *UserHandler) GetAdminStatus(c *gin.Context) {
	admin, err := h.users.IsAdmin(c.Request.Context(), c.Param("email"))
	if err != nil {
		storeFailure(c, h.logger, "Failed to look up user", err)
		return
	}
	c.JSON(http.StatusOK, models.AdminStatus{Admin: admin})
}

// MakeAdmin handles PUT /users/makeAdmin. Only a verified admin caller may
// promote another user.
func (h *UserHandler) MakeAdmin(c *gin.Context) {
	requester, ok := middleware.IdentityFrom(c).Requester()
	if !ok {
		h.denyAdmin(c)
		return
	}

	var req models.MakeAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	res, err := h.users.MakeAdmin(c.Request.Context(), requester, req.Email)
	if errors.Is(err, core.ErrAccessDenied) {
		h.denyAdmin(c)
		return
	}
	if err != nil {
		storeFailure(c, h.logger, "Failed to make admin", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *UserHandler) denyAdmin(c *gin.Context) {
	c.JSON(http.StatusForbidden, MessageResponse{Message: core.ErrAccessDenied.Error()})
}
