package shipment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/logidocs/backend/internal/domain/shipment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockShipmentRepository struct {
	mock.Mock
}

func (m *MockShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipment.Shipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipment.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) FindByProNumber(ctx context.Context, pro shipment.ProNumber) (*shipment.Shipment, error) {
	args := m.Called(ctx, pro)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipment.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) FindAll(ctx context.Context, filter shipment.Filter) ([]*shipment.Shipment, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*shipment.Shipment), args.Get(1).(int64), args.Error(2)
}

// Create hands the build function the PRO number configured with Return
func (m *MockShipmentRepository) Create(ctx context.Context, year int, build func(shipment.ProNumber) (*shipment.Shipment, error)) (*shipment.Shipment, error) {
	args := m.Called(ctx, year)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	return build(args.Get(0).(shipment.ProNumber))
}

func (m *MockShipmentRepository) Update(ctx context.Context, s *shipment.Shipment) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockShipmentRepository) CountByTruckingStatus(ctx context.Context) (map[shipment.TruckingStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[shipment.TruckingStatus]int64), args.Error(1)
}

func (m *MockShipmentRepository) CountByStatus(ctx context.Context) (map[shipment.Status]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[shipment.Status]int64), args.Error(1)
}

type MockRemarkRepository struct {
	mock.Mock
}

func (m *MockRemarkRepository) Create(ctx context.Context, r *shipment.Remark) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRemarkRepository) Update(ctx context.Context, r *shipment.Remark) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRemarkRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRemarkRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipment.Remark, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipment.Remark), args.Error(1)
}

func (m *MockRemarkRepository) ListByShipment(ctx context.Context, shipmentID uuid.UUID) ([]*shipment.Remark, error) {
	args := m.Called(ctx, shipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*shipment.Remark), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func (m *MockEventPublisher) eventTypes() []string {
	var out []string
	for _, call := range m.Calls {
		for _, e := range call.Arguments.Get(1).([]shared.DomainEvent) {
			out = append(out, e.EventType())
		}
	}
	return out
}

const testContainer = "CSQU3054383"

var (
	shipmentClerk = shared.Actor{UserID: uuid.New(), Username: "sam", Department: shared.DepartmentShipment}
	trucker       = shared.Actor{UserID: uuid.New(), Username: "terry", Department: shared.DepartmentTrucking}
	financeClerk  = shared.Actor{UserID: uuid.New(), Username: "fiona", Department: shared.DepartmentFinance}
)

func newService(t *testing.T) (*ShipmentService, *MockShipmentRepository, *MockRemarkRepository, *MockEventPublisher) {
	t.Helper()
	repo := new(MockShipmentRepository)
	remarks := new(MockRemarkRepository)
	publisher := new(MockEventPublisher)
	svc := NewShipmentService(repo, remarks, publisher, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	return svc, repo, remarks, publisher
}

func existingShipment(t *testing.T, seq int) *shipment.Shipment {
	t.Helper()
	pro, err := shipment.NewProNumber(2026, seq)
	require.NoError(t, err)
	sh, err := shipment.NewShipment(pro, shipment.Details{CustomerName: "Acme"}, shipmentClerk)
	require.NoError(t, err)
	sh.ClearDomainEvents()
	return sh
}

func TestShipmentService_CreateUsesCurrentYear(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, publisher := newService(t)
	pro, _ := shipment.NewProNumber(2026, 4)
	repo.On("Create", ctx, 2026).Return(pro, nil)
	publisher.On("Publish", ctx, mock.Anything).Return(nil)

	resp, err := svc.Create(ctx, shipmentClerk, CreateShipmentRequest{
		CustomerName: "  Acme Imports ",
		Containers:   []ContainerInput{{ContainerNumber: "csqu 305438-3", SealNumber: "sl1", Size: "40HC"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "2026004", resp.ProNumber)
	assert.Equal(t, "Acme Imports", resp.CustomerName)
	require.Len(t, resp.Containers, 1)
	assert.Equal(t, testContainer, resp.Containers[0].ContainerNumber)
	assert.Equal(t, []string{shipment.EventTypeShipmentCreated, shipment.EventTypeContainerAdded}, publisher.eventTypes())
}

func TestShipmentService_CreateExplicitYear(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, publisher := newService(t)
	pro, _ := shipment.NewProNumber(2025, 999)
	repo.On("Create", ctx, 2025).Return(pro, nil)
	publisher.On("Publish", ctx, mock.Anything).Return(nil)

	resp, err := svc.Create(ctx, shipmentClerk, CreateShipmentRequest{Year: 2025, CustomerName: "Acme"})

	require.NoError(t, err)
	assert.Equal(t, "2025999", resp.ProNumber)
}

func TestShipmentService_CreateRejectsBadContainerBeforeAllocating(t *testing.T) {
	svc, repo, _, _ := newService(t)

	_, err := svc.Create(context.Background(), shipmentClerk, CreateShipmentRequest{
		CustomerName: "Acme",
		Containers:   []ContainerInput{{ContainerNumber: "CSQU3054384"}},
	})

	assert.ErrorIs(t, err, shipment.ErrInvalidContainerNumber)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestShipmentService_CreateSequenceExhausted(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, publisher := newService(t)
	repo.On("Create", ctx, 2026).Return(nil, shipment.ErrProSequenceExhausted)

	_, err := svc.Create(ctx, shipmentClerk, CreateShipmentRequest{CustomerName: "Acme"})

	assert.ErrorIs(t, err, shipment.ErrProSequenceExhausted)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestShipmentService_CreateForbiddenForOtherDepartments(t *testing.T) {
	svc, _, _, _ := newService(t)

	_, err := svc.Create(context.Background(), financeClerk, CreateShipmentRequest{CustomerName: "Acme"})

	assert.ErrorIs(t, err, ErrShipmentEditForbidden)
}

func TestShipmentService_GetInvalidPro(t *testing.T) {
	svc, _, _, _ := newService(t)

	_, err := svc.GetByProNumber(context.Background(), "26-001")

	assert.ErrorIs(t, err, shipment.ErrInvalidProNumber)
}

func TestShipmentService_UpdateTruckingStatus(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, publisher := newService(t)
	sh := existingShipment(t, 1)
	repo.On("FindByProNumber", ctx, sh.ProNumber).Return(sh, nil)
	repo.On("Update", ctx, sh).Return(nil)
	publisher.On("Publish", ctx, mock.Anything).Return(nil)

	resp, err := svc.UpdateTruckingStatus(ctx, trucker, "2026001", UpdateTruckingStatusRequest{Status: "DISPATCHED"})

	require.NoError(t, err)
	assert.Equal(t, "DISPATCHED", resp.TruckingStatus)
	assert.Equal(t, []string{shipment.EventTypeTruckingStatusChanged}, publisher.eventTypes())
	assert.Empty(t, sh.GetDomainEvents())
}

func TestShipmentService_UpdateTruckingStatusWrongDepartment(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newService(t)
	sh := existingShipment(t, 1)
	repo.On("FindByProNumber", ctx, sh.ProNumber).Return(sh, nil)

	_, err := svc.UpdateTruckingStatus(ctx, shipmentClerk, "2026001", UpdateTruckingStatusRequest{Status: "DISPATCHED"})

	assert.ErrorIs(t, err, shipment.ErrTruckingDepartmentOnly)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestShipmentService_UpdateVersionMismatch(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newService(t)
	sh := existingShipment(t, 1)
	repo.On("FindByProNumber", ctx, sh.ProNumber).Return(sh, nil)
	stale := sh.Version - 1

	_, err := svc.Update(ctx, shipmentClerk, "2026001", UpdateShipmentRequest{CustomerName: "New", Version: &stale})

	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}

func TestShipmentService_UpdateConcurrentSave(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, publisher := newService(t)
	sh := existingShipment(t, 1)
	repo.On("FindByProNumber", ctx, sh.ProNumber).Return(sh, nil)
	repo.On("Update", ctx, sh).Return(shared.ErrConcurrencyConflict)

	_, err := svc.Update(ctx, shipmentClerk, "2026001", UpdateShipmentRequest{CustomerName: "New"})

	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestShipmentService_PublishFailureDoesNotFailRequest(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, publisher := newService(t)
	sh := existingShipment(t, 1)
	repo.On("FindByProNumber", ctx, sh.ProNumber).Return(sh, nil)
	repo.On("Update", ctx, sh).Return(nil)
	publisher.On("Publish", ctx, mock.Anything).Return(errors.New("bus down"))

	resp, err := svc.Complete(ctx, shipmentClerk, "2026001")

	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", resp.Status)
}

func TestShipmentService_ContainerLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, publisher := newService(t)
	sh := existingShipment(t, 2)
	repo.On("FindByProNumber", ctx, sh.ProNumber).Return(sh, nil)
	repo.On("Update", ctx, sh).Return(nil)
	publisher.On("Publish", ctx, mock.Anything).Return(nil)

	resp, err := svc.AddContainer(ctx, shipmentClerk, "2026002", ContainerInput{ContainerNumber: testContainer, SealNumber: "S1"})
	require.NoError(t, err)
	require.Len(t, resp.Containers, 1)
	id := resp.Containers[0].ID

	resp, err = svc.UpdateContainer(ctx, shipmentClerk, "2026002", id, ContainerInput{ContainerNumber: testContainer, SealNumber: "S2", Size: "20GP"})
	require.NoError(t, err)
	assert.Equal(t, "S2", resp.Containers[0].SealNumber)

	resp, err = svc.RemoveContainer(ctx, shipmentClerk, "2026002", id)
	require.NoError(t, err)
	assert.Empty(t, resp.Containers)

	assert.Equal(t, []string{
		shipment.EventTypeContainerAdded,
		shipment.EventTypeContainerUpdated,
		shipment.EventTypeContainerRemoved,
	}, publisher.eventTypes())
}

func TestShipmentService_ListRejectsUnknownStatus(t *testing.T) {
	svc, _, _, _ := newService(t)

	_, err := svc.List(context.Background(), ListShipmentsInput{Status: "LOST"})

	require.Error(t, err)
}

func TestShipmentService_ListFilters(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newService(t)
	sh := existingShipment(t, 3)
	repo.On("FindAll", ctx, mock.MatchedBy(func(f shipment.Filter) bool {
		return f.TruckingStatus != nil && *f.TruckingStatus == shipment.TruckingInTransit &&
			f.Year == 2026 && f.Search == "2026" && f.PageSize == 20
	})).Return([]*shipment.Shipment{sh}, int64(21), nil)

	page, err := svc.List(ctx, ListShipmentsInput{TruckingStatus: "IN_TRANSIT", Year: 2026, Search: "2026"})

	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, "2026003", page.Items[0].ProNumber)
}
