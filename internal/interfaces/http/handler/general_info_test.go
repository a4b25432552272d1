package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/logidocs/backend/internal/application/dashboard"
	"github.com/logidocs/backend/internal/application/generalinfo"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGeneralInfoService struct {
	mock.Mock
}

func (m *MockGeneralInfoService) Get(ctx context.Context, pro string) (*generalinfo.Summary, error) {
	args := m.Called(ctx, pro)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*generalinfo.Summary), args.Error(1)
}

func (m *MockGeneralInfoService) PDF(ctx context.Context, pro string) ([]byte, string, error) {
	args := m.Called(ctx, pro)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Summary(ctx context.Context) (*dashboard.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dashboard.Summary), args.Error(1)
}

func TestGeneralInfoHandler_Get(t *testing.T) {
	svc := new(MockGeneralInfoService)
	svc.On("Get", mock.Anything, "2026001").Return(&generalinfo.Summary{ProNumber: "2026001"}, nil)
	svc.On("Get", mock.Anything, "26001").Return(nil, shared.NewDomainError("INVALID_PRO_NUMBER", "bad"))

	h := NewGeneralInfoHandler(svc)
	r := newTestRouter(testActor(shared.DepartmentVerifier))
	r.GET("/shipments/:pro/general-info", h.Get)

	w := serve(r, http.MethodGet, "/shipments/2026001/general-info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary generalinfo.Summary
	decodeData(t, w, &summary)
	assert.Equal(t, "2026001", summary.ProNumber)

	w = serve(r, http.MethodGet, "/shipments/26001/general-info", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGeneralInfoHandler_PDF(t *testing.T) {
	pdf := []byte("%PDF-1.4 general info")
	svc := new(MockGeneralInfoService)
	svc.On("PDF", mock.Anything, "2026001").Return(pdf, "general-info-2026001.pdf", nil)
	svc.On("PDF", mock.Anything, "2026002").Return(nil, "", generalinfo.ErrPrintingDisabled)

	h := NewGeneralInfoHandler(svc)
	r := newTestRouter(testActor(shared.DepartmentShipment))
	r.GET("/shipments/:pro/general-info/pdf", h.PDF)

	w := serve(r, http.MethodGet, "/shipments/2026001/general-info/pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="general-info-2026001.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, pdf, w.Body.Bytes())

	w = serve(r, http.MethodGet, "/shipments/2026002/general-info/pdf", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "PRINTING_DISABLED", errorCodeOf(t, w))
}

func TestDashboardHandler_Summary(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Summary", mock.Anything).Return(&dashboard.Summary{
		DocumentsByStatus: []dashboard.CountItem{{Key: "VERIFIED", Label: "Verified", Count: 4}},
		TotalDocuments:    4,
		OpenShipments:     2,
		GeneratedAt:       time.Now(),
	}, nil).Once()
	svc.On("Summary", mock.Anything).Return(nil, errors.New("db down")).Once()

	h := NewDashboardHandler(svc)
	r := newTestRouter(testActor(shared.DepartmentFinance))
	r.GET("/dashboard/summary", h.Summary)

	w := serve(r, http.MethodGet, "/dashboard/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary dashboard.Summary
	decodeData(t, w, &summary)
	assert.Equal(t, int64(4), summary.TotalDocuments)
	require.Len(t, summary.DocumentsByStatus, 1)

	w = serve(r, http.MethodGet, "/dashboard/summary", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}
