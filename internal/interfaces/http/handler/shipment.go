package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appshipment "github.com/logidocs/backend/internal/application/shipment"
	"github.com/logidocs/backend/internal/domain/shared"
)

// ShipmentService is the part of shipment.ShipmentService the handler uses
type ShipmentService interface {
	Create(ctx context.Context, actor shared.Actor, req appshipment.CreateShipmentRequest) (*appshipment.ShipmentResponse, error)
	GetByProNumber(ctx context.Context, pro string) (*appshipment.ShipmentResponse, error)
	List(ctx context.Context, input appshipment.ListShipmentsInput) (shared.Paginated[appshipment.ShipmentResponse], error)
	Update(ctx context.Context, actor shared.Actor, pro string, req appshipment.UpdateShipmentRequest) (*appshipment.ShipmentResponse, error)
	UpdateTruckingStatus(ctx context.Context, actor shared.Actor, pro string, req appshipment.UpdateTruckingStatusRequest) (*appshipment.ShipmentResponse, error)
	Complete(ctx context.Context, actor shared.Actor, pro string) (*appshipment.ShipmentResponse, error)
	Cancel(ctx context.Context, actor shared.Actor, pro string) (*appshipment.ShipmentResponse, error)
	AddContainer(ctx context.Context, actor shared.Actor, pro string, in appshipment.ContainerInput) (*appshipment.ShipmentResponse, error)
	UpdateContainer(ctx context.Context, actor shared.Actor, pro string, containerID uuid.UUID, in appshipment.ContainerInput) (*appshipment.ShipmentResponse, error)
	RemoveContainer(ctx context.Context, actor shared.Actor, pro string, containerID uuid.UUID) (*appshipment.ShipmentResponse, error)
	ListRemarks(ctx context.Context, pro string) ([]appshipment.RemarkResponse, error)
	AddRemark(ctx context.Context, actor shared.Actor, pro string, req appshipment.RemarkRequest) (*appshipment.RemarkResponse, error)
	EditRemark(ctx context.Context, actor shared.Actor, pro string, remarkID uuid.UUID, req appshipment.RemarkRequest) (*appshipment.RemarkResponse, error)
	DeleteRemark(ctx context.Context, actor shared.Actor, pro string, remarkID uuid.UUID) error
}

// ShipmentHandler handles PROs, their containers and remarks
type ShipmentHandler struct {
	BaseHandler
	shipmentService ShipmentService
}

// NewShipmentHandler creates a new shipment handler
func NewShipmentHandler(shipmentService ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{shipmentService: shipmentService}
}

// Create godoc
// @ID           createShipment
// @Summary      Open a PRO
// @Description  Create a shipment. The PRO number is the next YYYYNNN of the given or current year.
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        request body appshipment.CreateShipmentRequest true "Shipment"
// @Success      201 {object} APIResponse[appshipment.ShipmentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shipments [post]
func (h *ShipmentHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appshipment.CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	shipment, err := h.shipmentService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, shipment)
}

// List godoc
// @ID           listShipments
// @Summary      List PROs
// @Tags         shipments
// @Produce      json
// @Param        page            query int    false "Page number" default(1)
// @Param        page_size       query int    false "Page size" default(20)
// @Param        order_by        query string false "Sort column" default(created_at)
// @Param        order_dir       query string false "Sort direction" Enums(asc, desc)
// @Param        search          query string false "PRO prefix or customer name"
// @Param        status          query string false "Shipment status" Enums(OPEN, COMPLETED, CANCELLED)
// @Param        trucking_status query string false "Trucking status" Enums(PENDING, SCHEDULED, DISPATCHED, IN_TRANSIT, DELIVERED)
// @Param        year            query int    false "PRO year"
// @Success      200 {object} APIResponse[[]appshipment.ShipmentResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shipments [get]
func (h *ShipmentHandler) List(c *gin.Context) {
	q := listQuery(c)
	input := appshipment.ListShipmentsInput{
		Page:           q.Page,
		PageSize:       q.PageSize,
		OrderBy:        q.OrderBy,
		OrderDir:       q.OrderDir,
		Search:         q.Search,
		Status:         strings.ToUpper(c.Query("status")),
		TruckingStatus: strings.ToUpper(c.Query("trucking_status")),
	}
	if y := c.Query("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			h.Error(c, http.StatusBadRequest, shared.CodeInvalidInput, "year must be a number")
			return
		}
		input.Year = year
	}

	result, err := h.shipmentService.List(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page(c, result)
}

// Get godoc
// @ID           getShipment
// @Summary      Get a PRO
// @Tags         shipments
// @Produce      json
// @Param        pro path string true "PRO number (YYYYNNN)"
// @Success      200 {object} APIResponse[appshipment.ShipmentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shipments/{pro} [get]
func (h *ShipmentHandler) Get(c *gin.Context) {
	shipment, err := h.shipmentService.GetByProNumber(c.Request.Context(), c.Param("pro"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shipment)
}

// Update godoc
// @ID           updateShipment
// @Summary      Update PRO details
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        pro     path string                            true "PRO number (YYYYNNN)"
// @Param        request body appshipment.UpdateShipmentRequest true "Details"
// @Success      200 {object} APIResponse[appshipment.ShipmentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shipments/{pro} [put]
func (h *ShipmentHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appshipment.UpdateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	shipment, err := h.shipmentService.Update(c.Request.Context(), actor, c.Param("pro"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shipment)
}

// UpdateTruckingStatus godoc
// @ID           updateTruckingStatus
// @Summary      Move the trucking status
// @Description  Trucking status only moves forward; DELIVERED is final
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        pro     path string                                  true "PRO number (YYYYNNN)"
// @Param        request body appshipment.UpdateTruckingStatusRequest true "New status"
// @Success      200 {object} APIResponse[appshipment.ShipmentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shipments/{pro}/trucking-status [put]
func (h *ShipmentHandler) UpdateTruckingStatus(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appshipment.UpdateTruckingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	shipment, err := h.shipmentService.UpdateTruckingStatus(c.Request.Context(), actor, c.Param("pro"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shipment)
}

// Complete godoc
// @ID           completeShipment
// @Summary      Complete a PRO
// @Tags         shipments
// @Produce      json
// @Param        pro path string true "PRO number (YYYYNNN)"
// @Success      200 {object} APIResponse[appshipment.ShipmentResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shipments/{pro}/complete [post]
func (h *ShipmentHandler) Complete(c *gin.Context) {
	h.transition(c, h.shipmentService.Complete)
}

// Cancel godoc
// @ID           cancelShipment
// @Summary      Cancel a PRO
// @Tags         shipments
// @Produce      json
// @Param        pro path string true "PRO number (YYYYNNN)"
// @Success      200 {object} APIResponse[appshipment.ShipmentResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shipments/{pro}/cancel [post]
func (h *ShipmentHandler) Cancel(c *gin.Context) {
	h.transition(c, h.shipmentService.Cancel)
}

func (h *ShipmentHandler) transition(c *gin.Context, fn func(context.Context, shared.Actor, string) (*appshipment.ShipmentResponse, error)) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	shipment, err := fn(c.Request.Context(), actor, c.Param("pro"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shipment)
}

// AddContainer godoc
// @ID           addContainer
// @Summary      Add a container
// @Description  Container numbers are checked against ISO 6346
// @Tags         containers
// @Accept       json
// @Produce      json
// @Param        pro     path string                     true "PRO number (YYYYNNN)"
// @Param        request body appshipment.ContainerInput true "Container"
// @Success      201 {object} APIResponse[appshipment.ShipmentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shipments/{pro}/containers [post]
func (h *ShipmentHandler) AddContainer(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appshipment.ContainerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	shipment, err := h.shipmentService.AddContainer(c.Request.Context(), actor, c.Param("pro"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, shipment)
}

// UpdateContainer godoc
// @ID           updateContainer
// @Summary      Update a container
// @Tags         containers
// @Accept       json
// @Produce      json
// @Param        pro         path string                     true "PRO number (YYYYNNN)"
// @Param        containerId path string                     true "Container ID" format(uuid)
// @Param        request     body appshipment.ContainerInput true "Container"
// @Success      200 {object} APIResponse[appshipment.ShipmentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shipments/{pro}/containers/{containerId} [put]
func (h *ShipmentHandler) UpdateContainer(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	containerID, ok := h.uuidParam(c, "containerId")
	if !ok {
		return
	}
	var req appshipment.ContainerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	shipment, err := h.shipmentService.UpdateContainer(c.Request.Context(), actor, c.Param("pro"), containerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shipment)
}

// RemoveContainer godoc
// @ID           removeContainer
// @Summary      Remove a container
// @Tags         containers
// @Produce      json
// @Param        pro         path string true "PRO number (YYYYNNN)"
// @Param        containerId path string true "Container ID" format(uuid)
// @Success      200 {object} APIResponse[appshipment.ShipmentResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shipments/{pro}/containers/{containerId} [delete]
func (h *ShipmentHandler) RemoveContainer(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	containerID, ok := h.uuidParam(c, "containerId")
	if !ok {
		return
	}

	shipment, err := h.shipmentService.RemoveContainer(c.Request.Context(), actor, c.Param("pro"), containerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shipment)
}

// ListRemarks godoc
// @ID           listRemarks
// @Summary      List remarks of a PRO
// @Tags         remarks
// @Produce      json
// @Param        pro path string true "PRO number (YYYYNNN)"
// @Success      200 {object} APIResponse[[]appshipment.RemarkResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shipments/{pro}/remarks [get]
func (h *ShipmentHandler) ListRemarks(c *gin.Context) {
	remarks, err := h.shipmentService.ListRemarks(c.Request.Context(), c.Param("pro"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if remarks == nil {
		remarks = []appshipment.RemarkResponse{}
	}
	h.Success(c, remarks)
}

// AddRemark godoc
// @ID           addRemark
// @Summary      Add a remark
// @Description  Any department may comment on a PRO
// @Tags         remarks
// @Accept       json
// @Produce      json
// @Param        pro     path string                    true "PRO number (YYYYNNN)"
// @Param        request body appshipment.RemarkRequest true "Remark"
// @Success      201 {object} APIResponse[appshipment.RemarkResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shipments/{pro}/remarks [post]
func (h *ShipmentHandler) AddRemark(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appshipment.RemarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	remark, err := h.shipmentService.AddRemark(c.Request.Context(), actor, c.Param("pro"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, remark)
}

// EditRemark godoc
// @ID           editRemark
// @Summary      Edit a remark
// @Description  Only the author or an administrator may edit
// @Tags         remarks
// @Accept       json
// @Produce      json
// @Param        pro      path string                    true "PRO number (YYYYNNN)"
// @Param        remarkId path string                    true "Remark ID" format(uuid)
// @Param        request  body appshipment.RemarkRequest true "Remark"
// @Success      200 {object} APIResponse[appshipment.RemarkResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shipments/{pro}/remarks/{remarkId} [put]
func (h *ShipmentHandler) EditRemark(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	remarkID, ok := h.uuidParam(c, "remarkId")
	if !ok {
		return
	}
	var req appshipment.RemarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	remark, err := h.shipmentService.EditRemark(c.Request.Context(), actor, c.Param("pro"), remarkID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, remark)
}

// DeleteRemark godoc
// @ID           deleteRemark
// @Summary      Delete a remark
// @Tags         remarks
// @Param        pro      path string true "PRO number (YYYYNNN)"
// @Param        remarkId path string true "Remark ID" format(uuid)
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shipments/{pro}/remarks/{remarkId} [delete]
func (h *ShipmentHandler) DeleteRemark(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	remarkID, ok := h.uuidParam(c, "remarkId")
	if !ok {
		return
	}

	if err := h.shipmentService.DeleteRemark(c.Request.Context(), actor, c.Param("pro"), remarkID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
