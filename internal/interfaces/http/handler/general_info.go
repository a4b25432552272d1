package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/logidocs/backend/internal/application/generalinfo"
)

// GeneralInfoService is the part of generalinfo.Service the handler uses
type GeneralInfoService interface {
	Get(ctx context.Context, pro string) (*generalinfo.Summary, error)
	PDF(ctx context.Context, pro string) ([]byte, string, error)
}

// GeneralInfoHandler serves the merged General Info of a PRO
type GeneralInfoHandler struct {
	BaseHandler
	service GeneralInfoService
}

// NewGeneralInfoHandler creates a new General Info handler
func NewGeneralInfoHandler(service GeneralInfoService) *GeneralInfoHandler {
	return &GeneralInfoHandler{service: service}
}

// Get godoc
// @ID           getGeneralInfo
// @Summary      General Info of a PRO
// @Description  Read-only merge of the Bill of Lading, Invoice and Packing List with discrepancies between them
// @Tags         general-info
// @Produce      json
// @Param        pro path string true "PRO number (YYYYNNN)"
// @Success      200 {object} APIResponse[generalinfo.Summary]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shipments/{pro}/general-info [get]
func (h *GeneralInfoHandler) Get(c *gin.Context) {
	summary, err := h.service.Get(c.Request.Context(), c.Param("pro"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// PDF godoc
// @ID           getGeneralInfoPDF
// @Summary      General Info as PDF
// @Tags         general-info
// @Produce      application/pdf
// @Param        pro path string true "PRO number (YYYYNNN)"
// @Success      200 {file} binary
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shipments/{pro}/general-info/pdf [get]
func (h *GeneralInfoHandler) PDF(c *gin.Context) {
	data, fileName, err := h.service.PDF(c.Request.Context(), c.Param("pro"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	c.Data(http.StatusOK, "application/pdf", data)
}
