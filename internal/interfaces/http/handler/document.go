package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	appdocument "github.com/logidocs/backend/internal/application/document"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/logidocs/backend/internal/interfaces/http/dto"
)

// DocumentService is the part of document.DocumentService the handler uses
type DocumentService interface {
	DocumentTypes() []appdocument.TypeSchemaResponse
	Validate(ctx context.Context, req appdocument.ValidateRequest) (*appdocument.ValidationResponse, error)
	CreateFromForm(ctx context.Context, actor shared.Actor, pro string, req appdocument.CreateDocumentRequest) (*appdocument.DocumentResponse, error)
	Upload(ctx context.Context, actor shared.Actor, in appdocument.UploadInput) (*appdocument.DocumentResponse, error)
	ReplaceFile(ctx context.Context, actor shared.Actor, id uuid.UUID, in appdocument.FileInput) (*appdocument.DocumentResponse, error)
	Update(ctx context.Context, actor shared.Actor, id uuid.UUID, req appdocument.UpdateDocumentRequest) (*appdocument.DocumentResponse, error)
	Delete(ctx context.Context, actor shared.Actor, id uuid.UUID) error
	Preview(ctx context.Context, id uuid.UUID) (*appdocument.PreviewResponse, error)
	ImportItems(ctx context.Context, actor shared.Actor, id uuid.UUID, sheet io.Reader) (*appdocument.ImportResponse, error)
	Verify(ctx context.Context, actor shared.Actor, id uuid.UUID) (*appdocument.DocumentResponse, error)
	Reject(ctx context.Context, actor shared.Actor, id uuid.UUID, req appdocument.RejectRequest) (*appdocument.DocumentResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*appdocument.DocumentResponse, error)
	ListByShipment(ctx context.Context, pro string) ([]appdocument.DocumentResponse, error)
	List(ctx context.Context, input appdocument.ListDocumentsInput) (shared.Paginated[appdocument.DocumentResponse], error)
}

// Multipart form part names
const (
	formFile    = "file"
	formType    = "type"
	formContent = "content"
)

// DocumentHandler handles documents, their files and their review
type DocumentHandler struct {
	BaseHandler
	documentService DocumentService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentService DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Types godoc
// @ID           listDocumentTypes
// @Summary      Document type schemas
// @Description  The form fields of each document type with their formats and owning department
// @Tags         documents
// @Produce      json
// @Success      200 {object} APIResponse[[]appdocument.TypeSchemaResponse]
// @Security     BearerAuth
// @Router       /document-types [get]
func (h *DocumentHandler) Types(c *gin.Context) {
	h.Success(c, h.documentService.DocumentTypes())
}

// Validate godoc
// @ID           validateDocument
// @Summary      Validate a form
// @Description  Dry run: returns the normalised values and field errors without saving
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        request body appdocument.ValidateRequest true "Form"
// @Success      200 {object} APIResponse[appdocument.ValidationResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/validate [post]
func (h *DocumentHandler) Validate(c *gin.Context) {
	var req appdocument.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.documentService.Validate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Create godoc
// @ID           createDocument
// @Summary      Create a document from a form
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        pro     path string                            true "PRO number (YYYYNNN)"
// @Param        request body appdocument.CreateDocumentRequest true "Form"
// @Success      201 {object} APIResponse[appdocument.DocumentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shipments/{pro}/documents [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appdocument.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	doc, err := h.documentService.CreateFromForm(c.Request.Context(), actor, c.Param("pro"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, doc)
}

// Upload godoc
// @ID           uploadDocument
// @Summary      Upload a document file
// @Description  Stores the file in object storage. The optional content part is the JSON form body ({"fields":[...],"items":[...]}).
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        pro     path     string true  "PRO number (YYYYNNN)"
// @Param        type    formData string true  "Document type" Enums(BOL, INVOICE, PACKING_LIST, DELIVERY_ORDER)
// @Param        file    formData file   true  "Document file"
// @Param        content formData string false "Form content as JSON"
// @Success      201 {object} APIResponse[appdocument.DocumentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Failure      415 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shipments/{pro}/documents/upload [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	header, err := c.FormFile(formFile)
	if err != nil {
		h.formFileError(c, err)
		return
	}
	docType := strings.TrimSpace(c.PostForm(formType))
	if docType == "" {
		h.Error(c, http.StatusBadRequest, shared.CodeInvalidInput, "type is required")
		return
	}

	var content *appdocument.ContentInput
	if raw := c.PostForm(formContent); raw != "" {
		content = &appdocument.ContentInput{}
		if err := json.Unmarshal([]byte(raw), content); err != nil {
			h.Error(c, http.StatusBadRequest, shared.CodeInvalidInput, "content must be a JSON object with fields and items")
			return
		}
		if err := binding.Validator.ValidateStruct(content); err != nil {
			h.BindError(c, err)
			return
		}
	}

	file, err := header.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer file.Close()

	doc, err := h.documentService.Upload(c.Request.Context(), actor, appdocument.UploadInput{
		ProNumber: c.Param("pro"),
		Type:      docType,
		File:      fileInput(header, file),
		Content:   content,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, doc)
}

// ReplaceFile godoc
// @ID           replaceDocumentFile
// @Summary      Replace the file of a document
// @Description  The previous object is deleted after the new one is stored
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        id   path     string true "Document ID" format(uuid)
// @Param        file formData file   true "Document file"
// @Success      200 {object} APIResponse[appdocument.DocumentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Failure      415 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id}/file [put]
func (h *DocumentHandler) ReplaceFile(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	header, err := c.FormFile(formFile)
	if err != nil {
		h.formFileError(c, err)
		return
	}
	file, err := header.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer file.Close()

	doc, err := h.documentService.ReplaceFile(c.Request.Context(), actor, id, fileInput(header, file))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// ListByShipment godoc
// @ID           listShipmentDocuments
// @Summary      Documents of a PRO
// @Tags         documents
// @Produce      json
// @Param        pro path string true "PRO number (YYYYNNN)"
// @Success      200 {object} APIResponse[[]appdocument.DocumentResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shipments/{pro}/documents [get]
func (h *DocumentHandler) ListByShipment(c *gin.Context) {
	docs, err := h.documentService.ListByShipment(c.Request.Context(), c.Param("pro"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if docs == nil {
		docs = []appdocument.DocumentResponse{}
	}
	h.Success(c, docs)
}

// List godoc
// @ID           listDocuments
// @Summary      List documents
// @Tags         documents
// @Produce      json
// @Param        page       query int    false "Page number" default(1)
// @Param        page_size  query int    false "Page size" default(20)
// @Param        order_by   query string false "Sort column" default(created_at)
// @Param        order_dir  query string false "Sort direction" Enums(asc, desc)
// @Param        pro_number query string false "PRO number"
// @Param        type       query string false "Document type" Enums(BOL, INVOICE, PACKING_LIST, DELIVERY_ORDER)
// @Param        department query string false "Owning department" Enums(SHIPMENT, TRUCKING, FINANCE, VERIFIER)
// @Param        status     query string false "Review status" Enums(PENDING_REVIEW, VERIFIED, REJECTED)
// @Success      200 {object} APIResponse[[]appdocument.DocumentResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	q := listQuery(c)
	result, err := h.documentService.List(c.Request.Context(), appdocument.ListDocumentsInput{
		Page:       q.Page,
		PageSize:   q.PageSize,
		OrderBy:    q.OrderBy,
		OrderDir:   q.OrderDir,
		ProNumber:  c.Query("pro_number"),
		Type:       c.Query("type"),
		Department: strings.ToUpper(c.Query("department")),
		Status:     c.Query("status"),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page(c, result)
}

// Get godoc
// @ID           getDocument
// @Summary      Get a document
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} APIResponse[appdocument.DocumentResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	doc, err := h.documentService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Update godoc
// @ID           updateDocument
// @Summary      Edit a document
// @Description  Replaces the fields and items. A verified or rejected document returns to review.
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        id      path string                            true "Document ID" format(uuid)
// @Param        request body appdocument.UpdateDocumentRequest true "Form"
// @Success      200 {object} APIResponse[appdocument.DocumentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id} [put]
func (h *DocumentHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req appdocument.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	doc, err := h.documentService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Delete godoc
// @ID           deleteDocument
// @Summary      Delete a document
// @Tags         documents
// @Param        id path string true "Document ID" format(uuid)
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.documentService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Preview godoc
// @ID           previewDocument
// @Summary      Signed preview link
// @Description  Returns a short-lived signed URL for the stored file. With redirect=true the response is a 302 to that URL.
// @Tags         documents
// @Produce      json
// @Param        id       path  string true  "Document ID" format(uuid)
// @Param        redirect query bool   false "Redirect to the file"
// @Success      200 {object} APIResponse[appdocument.PreviewResponse]
// @Success      302
// @Failure      404 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id}/preview [get]
func (h *DocumentHandler) Preview(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	preview, err := h.documentService.Preview(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if c.Query("redirect") == "true" {
		c.Redirect(http.StatusFound, preview.URL)
		return
	}
	h.Success(c, preview)
}

// ImportItems godoc
// @ID           importDocumentItems
// @Summary      Import line items from CSV
// @Description  Replaces the items of an invoice or packing list. Rows with errors are reported and nothing is changed.
// @Tags         documents
// @Accept       multipart/form-data
// @Accept       text/csv
// @Produce      json
// @Param        id   path     string true  "Document ID" format(uuid)
// @Param        file formData file   false "CSV file (multipart)"
// @Success      200 {object} APIResponse[appdocument.ImportResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id}/items/import [post]
func (h *DocumentHandler) ImportItems(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var sheet io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile(formFile)
		if err != nil {
			h.formFileError(c, err)
			return
		}
		file, err := header.Open()
		if err != nil {
			h.HandleError(c, err)
			return
		}
		defer file.Close()
		sheet = file
	}

	result, err := h.documentService.ImportItems(c.Request.Context(), actor, id, sheet)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Verify godoc
// @ID           verifyDocument
// @Summary      Verify a document
// @Tags         review
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} APIResponse[appdocument.DocumentResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id}/verify [post]
func (h *DocumentHandler) Verify(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	doc, err := h.documentService.Verify(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Reject godoc
// @ID           rejectDocument
// @Summary      Reject a document
// @Tags         review
// @Accept       json
// @Produce      json
// @Param        id      path string                    true "Document ID" format(uuid)
// @Param        request body appdocument.RejectRequest true "Reason"
// @Success      200 {object} APIResponse[appdocument.DocumentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id}/reject [post]
func (h *DocumentHandler) Reject(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req appdocument.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	doc, err := h.documentService.Reject(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// formFileError maps a failed c.FormFile to the right status
func (h *DocumentHandler) formFileError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		h.HandleError(c, appdocument.ErrFileRequired)
	default:
		h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "Malformed multipart body")
	}
}

func fileInput(header *multipart.FileHeader, body io.Reader) appdocument.FileInput {
	return appdocument.FileInput{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        body,
	}
}
