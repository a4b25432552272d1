package testutil

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/logidocs/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMockDB(t *testing.T) {
	mockDB := NewMockDB(t)

	assert.NotNil(t, mockDB.DB)
	assert.NotNil(t, mockDB.Mock)
	mockDB.ExpectationsWereMet(t)
}

func TestTestContext_SetActorAndRequestID(t *testing.T) {
	tc := NewTestContext(t)
	actor := TestActor(shared.DepartmentTrucking)

	tc.SetActor(actor)
	tc.SetRequestID("req-123")

	v, ok := tc.Context.Get(middleware.ActorKey)
	require.True(t, ok)
	assert.Equal(t, actor, v)
	assert.Equal(t, "req-123", tc.Context.GetString(middleware.RequestIDKey))
	assert.Equal(t, http.MethodGet, tc.Context.Request.Method)
}

func TestTestActor(t *testing.T) {
	a := TestActor(shared.DepartmentFinance)

	assert.Equal(t, shared.DepartmentFinance, a.Department)
	assert.Equal(t, "test-finance", a.Username)
	assert.False(t, a.IsAdmin)
	assert.Equal(t, a, TestActor(shared.DepartmentFinance))
	assert.NotEqual(t, a.UserID, TestActor(shared.DepartmentShipment).UserID)
	assert.NotEqual(t, uuid.Nil, a.UserID)
}

func TestAdminActor(t *testing.T) {
	a := AdminActor()
	assert.True(t, a.IsAdmin)
	assert.True(t, a.In(shared.DepartmentShipment))
}

func TestNewTestUUID(t *testing.T) {
	assert.Equal(t, NewTestUUID("seed"), NewTestUUID("seed"))
	assert.NotEqual(t, NewTestUUID("seed"), NewTestUUID("other"))
}

func TestContextWithTimeout(t *testing.T) {
	ctx := ContextWithTimeout(t, time.Minute)
	deadline, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.True(t, deadline.After(time.Now()))
}

func TestRecordingPublisher(t *testing.T) {
	p := &RecordingPublisher{}
	actor := TestActor(shared.DepartmentShipment)
	e1 := shared.NewBaseDomainEvent("ShipmentCreated", "Shipment", uuid.New(), actor)
	e2 := shared.NewBaseDomainEvent("RemarkAdded", "Remark", uuid.New(), actor)

	require.NoError(t, p.Publish(context.Background(), &e1, &e2))

	assert.Equal(t, []string{"ShipmentCreated", "RemarkAdded"}, p.Types())
	assert.Len(t, p.Events(), 2)
}

func TestRecordingHandler_FailWith(t *testing.T) {
	boom := errors.New("boom")
	h := NewRecordingHandler("A").FailWith(boom)
	e := shared.NewBaseDomainEvent("A", "X", uuid.New(), AdminActor())

	assert.ErrorIs(t, h.Handle(context.Background(), &e), boom)
	assert.Equal(t, []string{"A"}, h.EventTypes())
	assert.Len(t, h.Events(), 1)
}

func TestPerformJSON(t *testing.T) {
	engine := gin.New()
	engine.POST("/echo", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"code": "INVALID_INPUT"}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": body})
	})

	w := PerformJSON(t, engine, http.MethodPost, "/echo", map[string]string{"pro": "2026001"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	AssertSuccessResponse(t, w)

	w = PerformJSON(t, engine, http.MethodPost, "/echo", nil, map[string]string{"Content-Type": "application/json"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	AssertErrorResponse(t, w, "INVALID_INPUT")
}
