package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appshipment "github.com/logidocs/backend/internal/application/shipment"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/logidocs/backend/internal/domain/shipment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockShipmentService struct {
	mock.Mock
}

func (m *MockShipmentService) shipmentResult(args mock.Arguments) (*appshipment.ShipmentResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appshipment.ShipmentResponse), args.Error(1)
}

func (m *MockShipmentService) remarkResult(args mock.Arguments) (*appshipment.RemarkResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appshipment.RemarkResponse), args.Error(1)
}

func (m *MockShipmentService) Create(ctx context.Context, actor shared.Actor, req appshipment.CreateShipmentRequest) (*appshipment.ShipmentResponse, error) {
	return m.shipmentResult(m.Called(ctx, actor, req))
}

func (m *MockShipmentService) GetByProNumber(ctx context.Context, pro string) (*appshipment.ShipmentResponse, error) {
	return m.shipmentResult(m.Called(ctx, pro))
}

func (m *MockShipmentService) List(ctx context.Context, input appshipment.ListShipmentsInput) (shared.Paginated[appshipment.ShipmentResponse], error) {
	args := m.Called(ctx, input)
	return args.Get(0).(shared.Paginated[appshipment.ShipmentResponse]), args.Error(1)
}

func (m *MockShipmentService) Update(ctx context.Context, actor shared.Actor, pro string, req appshipment.UpdateShipmentRequest) (*appshipment.ShipmentResponse, error) {
	return m.shipmentResult(m.Called(ctx, actor, pro, req))
}

func (m *MockShipmentService) UpdateTruckingStatus(ctx context.Context, actor shared.Actor, pro string, req appshipment.UpdateTruckingStatusRequest) (*appshipment.ShipmentResponse, error) {
	return m.shipmentResult(m.Called(ctx, actor, pro, req))
}

func (m *MockShipmentService) Complete(ctx context.Context, actor shared.Actor, pro string) (*appshipment.ShipmentResponse, error) {
	return m.shipmentResult(m.Called(ctx, actor, pro))
}

func (m *MockShipmentService) Cancel(ctx context.Context, actor shared.Actor, pro string) (*appshipment.ShipmentResponse, error) {
	return m.shipmentResult(m.Called(ctx, actor, pro))
}

func (m *MockShipmentService) AddContainer(ctx context.Context, actor shared.Actor, pro string, in appshipment.ContainerInput) (*appshipment.ShipmentResponse, error) {
	return m.shipmentResult(m.Called(ctx, actor, pro, in))
}

func (m *MockShipmentService) UpdateContainer(ctx context.Context, actor shared.Actor, pro string, containerID uuid.UUID, in appshipment.ContainerInput) (*appshipment.ShipmentResponse, error) {
	return m.shipmentResult(m.Called(ctx, actor, pro, containerID, in))
}

func (m *MockShipmentService) RemoveContainer(ctx context.Context, actor shared.Actor, pro string, containerID uuid.UUID) (*appshipment.ShipmentResponse, error) {
	return m.shipmentResult(m.Called(ctx, actor, pro, containerID))
}

func (m *MockShipmentService) ListRemarks(ctx context.Context, pro string) ([]appshipment.RemarkResponse, error) {
	args := m.Called(ctx, pro)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appshipment.RemarkResponse), args.Error(1)
}

func (m *MockShipmentService) AddRemark(ctx context.Context, actor shared.Actor, pro string, req appshipment.RemarkRequest) (*appshipment.RemarkResponse, error) {
	return m.remarkResult(m.Called(ctx, actor, pro, req))
}

func (m *MockShipmentService) EditRemark(ctx context.Context, actor shared.Actor, pro string, remarkID uuid.UUID, req appshipment.RemarkRequest) (*appshipment.RemarkResponse, error) {
	return m.remarkResult(m.Called(ctx, actor, pro, remarkID, req))
}

func (m *MockShipmentService) DeleteRemark(ctx context.Context, actor shared.Actor, pro string, remarkID uuid.UUID) error {
	return m.Called(ctx, actor, pro, remarkID).Error(0)
}

func newShipmentRouter(svc *MockShipmentService, actor *shared.Actor) *gin.Engine {
	h := NewShipmentHandler(svc)
	r := newTestRouter(actor)
	g := r.Group("/api/v1/shipments")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:pro", h.Get)
	g.PUT("/:pro", h.Update)
	g.PUT("/:pro/trucking-status", h.UpdateTruckingStatus)
	g.POST("/:pro/complete", h.Complete)
	g.POST("/:pro/cancel", h.Cancel)
	g.POST("/:pro/containers", h.AddContainer)
	g.PUT("/:pro/containers/:containerId", h.UpdateContainer)
	g.DELETE("/:pro/containers/:containerId", h.RemoveContainer)
	g.GET("/:pro/remarks", h.ListRemarks)
	g.POST("/:pro/remarks", h.AddRemark)
	g.PUT("/:pro/remarks/:remarkId", h.EditRemark)
	g.DELETE("/:pro/remarks/:remarkId", h.DeleteRemark)
	return r
}

func TestShipmentHandler_Create(t *testing.T) {
	actor := testActor(shared.DepartmentShipment)
	svc := new(MockShipmentService)
	r := newShipmentRouter(svc, actor)

	req := appshipment.CreateShipmentRequest{
		CustomerName: "Acme Imports",
		Origin:       "Shanghai",
		Destination:  "Manila",
		Containers:   []appshipment.ContainerInput{{ContainerNumber: "MSCU1234565", Size: "40HC"}},
	}
	svc.On("Create", mock.Anything, *actor, req).Return(&appshipment.ShipmentResponse{
		ID:           uuid.New(),
		ProNumber:    "2026001",
		Year:         2026,
		Sequence:     1,
		CustomerName: "Acme Imports",
		Status:       "OPEN",
	}, nil)

	w := serveJSON(r, http.MethodPost, "/api/v1/shipments", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp appshipment.ShipmentResponse
	decodeData(t, w, &resp)
	assert.Equal(t, "2026001", resp.ProNumber)
	svc.AssertExpectations(t)
}

func TestShipmentHandler_Create_Validation(t *testing.T) {
	svc := new(MockShipmentService)
	r := newShipmentRouter(svc, testActor(shared.DepartmentShipment))

	w := serveJSON(r, http.MethodPost, "/api/v1/shipments", map[string]any{
		"containers": []map[string]string{{"container_number": "MSCU1234565", "size": "10XX"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	fields := make([]string, 0, len(env.Error.Details))
	for _, d := range env.Error.Details {
		fields = append(fields, d.Field)
	}
	assert.Contains(t, fields, "customer_name")
	assert.Contains(t, fields, "containers[0].size")
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestShipmentHandler_Create_Unauthenticated(t *testing.T) {
	svc := new(MockShipmentService)
	w := serveJSON(newShipmentRouter(svc, nil), http.MethodPost, "/api/v1/shipments", appshipment.CreateShipmentRequest{CustomerName: "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestShipmentHandler_List(t *testing.T) {
	svc := new(MockShipmentService)
	r := newShipmentRouter(svc, testActor(shared.DepartmentFinance))

	svc.On("List", mock.Anything, appshipment.ListShipmentsInput{
		Page:           2,
		PageSize:       10,
		OrderBy:        "created_at",
		OrderDir:       "desc",
		Search:         "acme",
		Status:         "OPEN",
		TruckingStatus: "IN_TRANSIT",
		Year:           2026,
	}).Return(shared.NewPaginated([]appshipment.ShipmentResponse{{ProNumber: "2026011"}}, 11, 2, 10), nil)

	w := serve(r, http.MethodGet, "/api/v1/shipments?page=2&page_size=10&search=acme&status=open&trucking_status=in_transit&year=2026", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env := decode(t, w)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(11), env.Meta.Total)
	assert.Equal(t, 2, env.Meta.TotalPages)

	w = serve(r, http.MethodGet, "/api/v1/shipments?year=twenty", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNumberOfCalls(t, "List", 1)
}

func TestShipmentHandler_Get_NotFound(t *testing.T) {
	svc := new(MockShipmentService)
	svc.On("GetByProNumber", mock.Anything, "2026999").Return(nil, shipment.ErrShipmentNotFound)

	w := serve(newShipmentRouter(svc, testActor(shared.DepartmentVerifier)), http.MethodGet, "/api/v1/shipments/2026999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, shared.CodeNotFound, errorCodeOf(t, w))
}

func TestShipmentHandler_UpdateTruckingStatus(t *testing.T) {
	actor := testActor(shared.DepartmentTrucking)
	svc := new(MockShipmentService)
	r := newShipmentRouter(svc, actor)

	svc.On("UpdateTruckingStatus", mock.Anything, *actor, "2026001", appshipment.UpdateTruckingStatusRequest{Status: "DISPATCHED"}).
		Return(&appshipment.ShipmentResponse{ProNumber: "2026001", TruckingStatus: "DISPATCHED"}, nil)

	w := serveJSON(r, http.MethodPut, "/api/v1/shipments/2026001/trucking-status", appshipment.UpdateTruckingStatusRequest{Status: "DISPATCHED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = serveJSON(r, http.MethodPut, "/api/v1/shipments/2026001/trucking-status", appshipment.UpdateTruckingStatusRequest{Status: "LOST"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNumberOfCalls(t, "UpdateTruckingStatus", 1)
}

func TestShipmentHandler_CompleteAndCancel(t *testing.T) {
	actor := testActor(shared.DepartmentShipment)
	svc := new(MockShipmentService)
	r := newShipmentRouter(svc, actor)

	svc.On("Complete", mock.Anything, *actor, "2026001").Return(&appshipment.ShipmentResponse{Status: "COMPLETED"}, nil)
	svc.On("Cancel", mock.Anything, *actor, "2026002").Return(nil, shared.NewDomainError("SHIPMENT_CLOSED", "closed"))

	w := serve(r, http.MethodPost, "/api/v1/shipments/2026001/complete", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodPost, "/api/v1/shipments/2026002/cancel", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "SHIPMENT_CLOSED", errorCodeOf(t, w))
}

func TestShipmentHandler_Containers(t *testing.T) {
	actor := testActor(shared.DepartmentShipment)
	svc := new(MockShipmentService)
	r := newShipmentRouter(svc, actor)
	containerID := uuid.New()
	in := appshipment.ContainerInput{ContainerNumber: "TGHU7654321", SealNumber: "S-1", Size: "20GP"}

	svc.On("AddContainer", mock.Anything, *actor, "2026001", in).Return(&appshipment.ShipmentResponse{}, nil)
	svc.On("UpdateContainer", mock.Anything, *actor, "2026001", containerID, in).Return(&appshipment.ShipmentResponse{}, nil)
	svc.On("RemoveContainer", mock.Anything, *actor, "2026001", containerID).Return(nil, shipment.ErrContainerNotFound)

	assert.Equal(t, http.StatusCreated, serveJSON(r, http.MethodPost, "/api/v1/shipments/2026001/containers", in).Code)
	assert.Equal(t, http.StatusOK, serveJSON(r, http.MethodPut, "/api/v1/shipments/2026001/containers/"+containerID.String(), in).Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodDelete, "/api/v1/shipments/2026001/containers/"+containerID.String(), nil).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodDelete, "/api/v1/shipments/2026001/containers/abc", nil).Code)
	svc.AssertExpectations(t)
}

func TestShipmentHandler_Remarks(t *testing.T) {
	actor := testActor(shared.DepartmentFinance)
	svc := new(MockShipmentService)
	r := newShipmentRouter(svc, actor)
	remarkID := uuid.New()

	svc.On("ListRemarks", mock.Anything, "2026001").Return(nil, nil)
	svc.On("AddRemark", mock.Anything, *actor, "2026001", appshipment.RemarkRequest{Body: "Invoice pending"}).
		Return(&appshipment.RemarkResponse{ID: remarkID, Body: "Invoice pending", Department: "FINANCE"}, nil)
	svc.On("EditRemark", mock.Anything, *actor, "2026001", remarkID, appshipment.RemarkRequest{Body: "Invoice sent"}).
		Return(nil, shipment.ErrRemarkAuthorOnly)
	svc.On("DeleteRemark", mock.Anything, *actor, "2026001", remarkID).Return(nil)

	w := serve(r, http.MethodGet, "/api/v1/shipments/2026001/remarks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(decode(t, w).Data))

	w = serveJSON(r, http.MethodPost, "/api/v1/shipments/2026001/remarks", appshipment.RemarkRequest{Body: "Invoice pending"})
	require.Equal(t, http.StatusCreated, w.Code)
	var remark appshipment.RemarkResponse
	decodeData(t, w, &remark)
	assert.Equal(t, "FINANCE", remark.Department)

	w = serveJSON(r, http.MethodPut, "/api/v1/shipments/2026001/remarks/"+remarkID.String(), appshipment.RemarkRequest{Body: "Invoice sent"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(r, http.MethodDelete, "/api/v1/shipments/2026001/remarks/"+remarkID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serveJSON(r, http.MethodPost, "/api/v1/shipments/2026001/remarks", appshipment.RemarkRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}
