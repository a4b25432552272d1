package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/application/identity"
	"github.com/logidocs/backend/internal/domain/shared"
)

// UserService is the part of identity.UserService the handler uses
type UserService interface {
	Create(ctx context.Context, input identity.CreateUserInput) (*identity.UserInfo, error)
	GetByID(ctx context.Context, id uuid.UUID) (*identity.UserInfo, error)
	List(ctx context.Context, input identity.ListUsersInput) (shared.Paginated[identity.UserInfo], error)
	Enable(ctx context.Context, id uuid.UUID) (*identity.UserInfo, error)
	Disable(ctx context.Context, actorID, id uuid.UUID) (*identity.UserInfo, error)
}

// UserHandler handles administrator user management
type UserHandler struct {
	BaseHandler
	userService UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Create godoc
// @ID           createUser
// @Summary      Create a user
// @Description  Create an account in one of the four departments
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body CreateUserRequest true "User creation request"
// @Success      201 {object} APIResponse[identity.UserInfo]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), identity.CreateUserInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Department:  req.Department,
		IsAdmin:     req.IsAdmin,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// List godoc
// @ID           listUsers
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        page       query int    false "Page number" default(1)
// @Param        page_size  query int    false "Page size" default(20)
// @Param        order_by   query string false "Sort column" default(created_at)
// @Param        order_dir  query string false "Sort direction" Enums(asc, desc)
// @Param        search     query string false "Username, name or email"
// @Param        department query string false "Department" Enums(SHIPMENT, TRUCKING, FINANCE, VERIFIER)
// @Param        status     query string false "Account status" Enums(ACTIVE, DISABLED, LOCKED)
// @Success      200 {object} APIResponse[[]identity.UserInfo]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	q := listQuery(c)
	result, err := h.userService.List(c.Request.Context(), identity.ListUsersInput{
		Page:       q.Page,
		PageSize:   q.PageSize,
		OrderBy:    q.OrderBy,
		OrderDir:   q.OrderDir,
		Search:     q.Search,
		Department: strings.ToUpper(c.Query("department")),
		Status:     strings.ToUpper(c.Query("status")),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page(c, result)
}

// GetByID godoc
// @ID           getUser
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[identity.UserInfo]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id} [get]
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Enable godoc
// @ID           enableUser
// @Summary      Enable a user
// @Description  Re-activate a disabled or locked account
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[identity.UserInfo]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id}/enable [post]
func (h *UserHandler) Enable(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.Enable(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Disable godoc
// @ID           disableUser
// @Summary      Disable a user
// @Description  Disable an account and sign out its sessions. Administrators cannot disable themselves.
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[identity.UserInfo]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id}/disable [post]
func (h *UserHandler) Disable(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.Disable(c.Request.Context(), actor.UserID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}
