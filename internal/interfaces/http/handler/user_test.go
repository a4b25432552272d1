package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/application/identity"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) userResult(args mock.Arguments) (*identity.UserInfo, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserInfo), args.Error(1)
}

func (m *MockUserService) Create(ctx context.Context, input identity.CreateUserInput) (*identity.UserInfo, error) {
	return m.userResult(m.Called(ctx, input))
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*identity.UserInfo, error) {
	return m.userResult(m.Called(ctx, id))
}

func (m *MockUserService) List(ctx context.Context, input identity.ListUsersInput) (shared.Paginated[identity.UserInfo], error) {
	args := m.Called(ctx, input)
	return args.Get(0).(shared.Paginated[identity.UserInfo]), args.Error(1)
}

func (m *MockUserService) Enable(ctx context.Context, id uuid.UUID) (*identity.UserInfo, error) {
	return m.userResult(m.Called(ctx, id))
}

func (m *MockUserService) Disable(ctx context.Context, actorID, id uuid.UUID) (*identity.UserInfo, error) {
	return m.userResult(m.Called(ctx, actorID, id))
}

func newUserRouter(svc *MockUserService, actor *shared.Actor) *gin.Engine {
	h := NewUserHandler(svc)
	r := newTestRouter(actor)
	r.POST("/users", h.Create)
	r.GET("/users", h.List)
	r.GET("/users/:id", h.GetByID)
	r.POST("/users/:id/enable", h.Enable)
	r.POST("/users/:id/disable", h.Disable)
	return r
}

func TestUserHandler_Create(t *testing.T) {
	svc := new(MockUserService)
	r := newUserRouter(svc, &shared.Actor{UserID: uuid.New(), Username: "admin", IsAdmin: true})

	svc.On("Create", mock.Anything, identity.CreateUserInput{
		Username:    "jose",
		Email:       "jose@example.com",
		Password:    "password-123",
		DisplayName: "Jose",
		Department:  "TRUCKING",
	}).Return(&identity.UserInfo{ID: uuid.New(), Username: "jose", Department: shared.DepartmentTrucking}, nil)

	w := serveJSON(r, http.MethodPost, "/users", CreateUserRequest{
		Username:    "jose",
		Email:       "jose@example.com",
		Password:    "password-123",
		DisplayName: "Jose",
		Department:  "TRUCKING",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	svc.AssertExpectations(t)
}

func TestUserHandler_Create_InvalidDepartment(t *testing.T) {
	svc := new(MockUserService)
	r := newUserRouter(svc, &shared.Actor{UserID: uuid.New(), IsAdmin: true})

	w := serveJSON(r, http.MethodPost, "/users", CreateUserRequest{
		Username:   "jose",
		Password:   "password-123",
		Department: "WAREHOUSE",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	require.NotEmpty(t, env.Error.Details)
	assert.Equal(t, "department", env.Error.Details[0].Field)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserHandler_List(t *testing.T) {
	svc := new(MockUserService)
	r := newUserRouter(svc, &shared.Actor{UserID: uuid.New(), IsAdmin: true})

	svc.On("List", mock.Anything, mock.MatchedBy(func(in identity.ListUsersInput) bool {
		return in.Department == "VERIFIER" && in.Status == "LOCKED" && in.Page == 1
	})).Return(shared.NewPaginated([]identity.UserInfo{}, 0, 1, 20), nil)

	w := serve(r, http.MethodGet, "/users?department=verifier&status=locked", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.JSONEq(t, `[]`, string(env.Data))
	svc.AssertExpectations(t)
}

func TestUserHandler_EnableDisable(t *testing.T) {
	admin := &shared.Actor{UserID: uuid.New(), Username: "admin", IsAdmin: true}
	target := uuid.New()
	svc := new(MockUserService)
	r := newUserRouter(svc, admin)

	svc.On("Enable", mock.Anything, target).Return(&identity.UserInfo{ID: target, Status: "ACTIVE"}, nil)
	svc.On("Disable", mock.Anything, admin.UserID, admin.UserID).Return(nil, shared.NewDomainError("CANNOT_DISABLE_SELF", "no"))
	svc.On("Disable", mock.Anything, admin.UserID, target).Return(&identity.UserInfo{ID: target, Status: "DISABLED"}, nil)

	w := serve(r, http.MethodPost, "/users/"+target.String()+"/enable", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodPost, "/users/"+target.String()+"/disable", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info identity.UserInfo
	decodeData(t, w, &info)
	assert.Equal(t, "DISABLED", info.Status)

	w = serve(r, http.MethodPost, "/users/"+admin.UserID.String()+"/disable", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestUserHandler_GetByID(t *testing.T) {
	svc := new(MockUserService)
	r := newUserRouter(svc, &shared.Actor{UserID: uuid.New(), IsAdmin: true})
	id := uuid.New()
	svc.On("GetByID", mock.Anything, id).Return(nil, shared.NewDomainError(shared.CodeNotFound, "User not found"))

	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/users/"+id.String(), nil).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/users/42", nil).Code)
}
