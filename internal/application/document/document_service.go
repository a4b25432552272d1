// Package document contains the document use cases: form capture, file
// upload and preview, line item import and review.
package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/document"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/logidocs/backend/internal/domain/shipment"
	"github.com/logidocs/backend/internal/infrastructure/importer"
	"github.com/logidocs/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

var (
	ErrFileRequired        = shared.NewDomainError("FILE_REQUIRED", "A non-empty file is required")
	ErrFileTooLarge        = shared.NewDomainError("FILE_TOO_LARGE", "The file exceeds the upload size limit")
	ErrUnsupportedFileType = shared.NewDomainError("UNSUPPORTED_FILE_TYPE", "This file type cannot be uploaded")
	ErrNoFile              = shared.NewDomainError(shared.CodeNotFound, "Document has no uploaded file")
	ErrStorageFailed       = shared.NewDomainError("STORAGE_ERROR", "The file could not be stored")
)

// ObjectStorage stores document binaries. Implemented by the S3 and
// in-memory storages.
type ObjectStorage interface {
	// Upload writes body under storageKey
	Upload(ctx context.Context, storageKey string, body io.Reader, size int64, contentType string) error

	// GenerateDownloadURL returns a signed GET URL that renders fileName inline
	GenerateDownloadURL(ctx context.Context, storageKey, fileName string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject removes an object; a missing object is not an error
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// ServiceConfig holds upload and preview limits
type ServiceConfig struct {
	MaxFileSize         int64
	AllowedContentTypes []string
	PreviewExpiry       time.Duration
	MaxImportRows       int
}

// DocumentService handles document business operations
type DocumentService struct {
	documentRepo   document.Repository
	shipmentRepo   shipment.ShipmentRepository
	storage        ObjectStorage
	itemsReader    *importer.ItemsReader
	eventPublisher shared.EventPublisher
	config         ServiceConfig
	allowed        map[string]bool
	logger         *zap.Logger
	now            func() time.Time
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	documentRepo document.Repository,
	shipmentRepo shipment.ShipmentRepository,
	storage ObjectStorage,
	eventPublisher shared.EventPublisher,
	config ServiceConfig,
	logger *zap.Logger,
) *DocumentService {
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = 20 << 20
	}
	if config.PreviewExpiry <= 0 {
		config.PreviewExpiry = 15 * time.Minute
	}
	allowed := make(map[string]bool, len(config.AllowedContentTypes))
	for _, ct := range config.AllowedContentTypes {
		allowed[strings.ToLower(ct)] = true
	}
	return &DocumentService{
		documentRepo:   documentRepo,
		shipmentRepo:   shipmentRepo,
		storage:        storage,
		itemsReader:    importer.NewItemsReader(config.MaxImportRows),
		eventPublisher: eventPublisher,
		config:         config,
		allowed:        allowed,
		logger:         logger,
		now:            time.Now,
	}
}

// DocumentTypes returns the form schema of every document type
func (s *DocumentService) DocumentTypes() []TypeSchemaResponse {
	types := document.AllTypes()
	out := make([]TypeSchemaResponse, len(types))
	for i, t := range types {
		out[i] = ToTypeSchemaResponse(t)
	}
	return out
}

// Validate checks a form without saving it and returns the normalised values
func (s *DocumentService) Validate(ctx context.Context, req ValidateRequest) (*ValidationResponse, error) {
	t, err := document.ParseType(req.Type)
	if err != nil {
		return nil, err
	}
	content, err := document.ValidateContent(t, req.fields(), req.Items)
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == shared.CodeValidationFailed {
			return &ValidationResponse{
				Valid:  false,
				Fields: []document.Field{},
				Items:  []ItemResponse{},
				Errors: domainErr.Details,
			}, nil
		}
		return nil, err
	}
	return &ValidationResponse{
		Valid:  true,
		Fields: content.Fields,
		Items:  ToItemResponses(content.Items),
		Errors: []shared.FieldError{},
	}, nil
}

// CreateFromForm creates a document of the requested type from typed-in values
func (s *DocumentService) CreateFromForm(ctx context.Context, actor shared.Actor, pro string, req CreateDocumentRequest) (*DocumentResponse, error) {
	t, err := document.ParseType(req.Type)
	if err != nil {
		return nil, err
	}
	if !actor.In(t.OwningDepartment()) {
		return nil, document.ErrNotOwningDepartment
	}
	sh, err := s.loadShipment(ctx, pro)
	if err != nil {
		return nil, err
	}
	content, err := document.ValidateContent(t, req.fields(), req.Items)
	if err != nil {
		return nil, err
	}
	existing, err := s.findExisting(ctx, sh.ID, t)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, document.ErrDocumentExists
	}

	doc, err := document.NewDocument(sh, t, content, actor)
	if err != nil {
		return nil, err
	}
	if err := s.documentRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	logger.Enrich(ctx, s.logger).Info("Document created",
		zap.String("document_id", doc.ID.String()),
		zap.String("pro_number", doc.ProNumber.String()),
		zap.String("type", string(t)))

	s.publish(ctx, doc)
	response := ToDocumentResponse(doc)
	return &response, nil
}

// Upload stores a file for a shipment. A document of the same type that has
// no file yet receives the file; one that already has a file is reported as
// DOCUMENT_EXISTS.
func (s *DocumentService) Upload(ctx context.Context, actor shared.Actor, in UploadInput) (*DocumentResponse, error) {
	t, err := document.ParseType(in.Type)
	if err != nil {
		return nil, err
	}
	if !actor.In(t.OwningDepartment()) {
		return nil, document.ErrNotOwningDepartment
	}
	file, err := s.checkFile(in.File)
	if err != nil {
		return nil, err
	}
	sh, err := s.loadShipment(ctx, in.ProNumber)
	if err != nil {
		return nil, err
	}
	if sh.Status.IsClosed() {
		return nil, shipment.ErrShipmentClosed
	}

	var content document.Content
	if in.Content != nil && (len(in.Content.Fields) > 0 || len(in.Content.Items) > 0) {
		content, err = document.ValidateContent(t, in.Content.fields(), in.Content.Items)
		if err != nil {
			return nil, err
		}
	}

	existing, err := s.findExisting(ctx, sh.ID, t)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.HasFile() {
		return nil, document.ErrDocumentExists
	}

	file.StorageKey = StorageKey(t.OwningDepartment(), s.now(), sh.ProNumber, t, file.Name)
	if err := s.put(ctx, file, in.File.Body); err != nil {
		return nil, err
	}

	doc := existing
	if doc == nil {
		doc, err = document.NewDocument(sh, t, content, actor)
		if err != nil {
			s.removeObject(ctx, file.StorageKey)
			return nil, err
		}
		// An upload is logged as one UPLOAD entry, not CREATE plus UPLOAD
		doc.ClearDomainEvents()
		if _, err = doc.AttachFile(file, actor); err == nil {
			err = s.documentRepo.Create(ctx, doc)
		}
	} else {
		if len(content.Fields) > 0 || len(content.Items) > 0 {
			if err = doc.UpdateContent(content, actor); err == nil {
				// Same single UPLOAD entry as for a new document
				doc.ClearDomainEvents()
			}
		}
		if err == nil {
			_, err = doc.AttachFile(file, actor)
		}
		if err == nil {
			err = s.documentRepo.Update(ctx, doc)
		}
	}
	if err != nil {
		s.removeObject(ctx, file.StorageKey)
		return nil, err
	}

	logger.Enrich(ctx, s.logger).Info("Document file uploaded",
		zap.String("document_id", doc.ID.String()),
		zap.String("storage_key", file.StorageKey),
		zap.Int64("size", file.Size))

	s.publish(ctx, doc)
	response := ToDocumentResponse(doc)
	return &response, nil
}

// ReplaceFile swaps the stored binary of a document. The previous object is
// removed once the new one is saved.
func (s *DocumentService) ReplaceFile(ctx context.Context, actor shared.Actor, id uuid.UUID, in FileInput) (*DocumentResponse, error) {
	doc, err := s.documentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.CanManage(actor) {
		return nil, document.ErrNotOwningDepartment
	}
	file, err := s.checkFile(in)
	if err != nil {
		return nil, err
	}

	file.StorageKey = StorageKey(doc.Department, s.now(), doc.ProNumber, doc.Type, file.Name)
	if err := s.put(ctx, file, in.Body); err != nil {
		return nil, err
	}
	previous, err := doc.AttachFile(file, actor)
	if err == nil {
		err = s.documentRepo.Update(ctx, doc)
	}
	if err != nil {
		s.removeObject(ctx, file.StorageKey)
		return nil, err
	}
	if previous != nil && previous.StorageKey != "" {
		s.removeObject(ctx, previous.StorageKey)
	}

	s.publish(ctx, doc)
	response := ToDocumentResponse(doc)
	return &response, nil
}

// Update replaces the fields and items of a document
func (s *DocumentService) Update(ctx context.Context, actor shared.Actor, id uuid.UUID, req UpdateDocumentRequest) (*DocumentResponse, error) {
	doc, err := s.documentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.CanManage(actor) {
		return nil, document.ErrNotOwningDepartment
	}
	if req.Version != nil && *req.Version != doc.Version {
		return nil, shared.ErrConcurrencyConflict
	}
	content, err := document.ValidateContent(doc.Type, req.fields(), req.Items)
	if err != nil {
		return nil, err
	}
	if err := doc.UpdateContent(content, actor); err != nil {
		return nil, err
	}
	return s.save(ctx, doc)
}

// Delete removes a document and its stored file. A failure to remove the
// object is logged and does not fail the request.
func (s *DocumentService) Delete(ctx context.Context, actor shared.Actor, id uuid.UUID) error {
	doc, err := s.documentRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := doc.MarkDeleted(actor); err != nil {
		return err
	}
	if err := s.documentRepo.Delete(ctx, doc.ID); err != nil {
		return err
	}
	if doc.HasFile() {
		s.removeObject(ctx, doc.File.StorageKey)
	}

	logger.Enrich(ctx, s.logger).Info("Document deleted",
		zap.String("document_id", doc.ID.String()),
		zap.String("pro_number", doc.ProNumber.String()))

	s.publish(ctx, doc)
	return nil
}

// Preview returns a signed URL that shows the stored file inline
func (s *DocumentService) Preview(ctx context.Context, id uuid.UUID) (*PreviewResponse, error) {
	doc, err := s.documentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.HasFile() {
		return nil, ErrNoFile
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, doc.File.StorageKey, doc.File.Name, s.config.PreviewExpiry)
	if err != nil {
		logger.Enrich(ctx, s.logger).Error("Failed to sign preview URL",
			zap.String("document_id", doc.ID.String()),
			zap.Error(err))
		return nil, ErrStorageFailed
	}
	return &PreviewResponse{
		URL:         url,
		ExpiresAt:   expiresAt,
		FileName:    doc.File.Name,
		ContentType: doc.File.ContentType,
	}, nil
}

// ImportItems replaces the line items of an invoice or packing list from a
// CSV sheet. Row errors leave the document untouched and are returned in
// the response.
func (s *DocumentService) ImportItems(ctx context.Context, actor shared.Actor, id uuid.UUID, sheet io.Reader) (*ImportResponse, error) {
	doc, err := s.documentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.CanManage(actor) {
		return nil, document.ErrNotOwningDepartment
	}
	if !doc.Type.AllowsItems() {
		return nil, document.ErrItemsNotAllowed
	}

	result, err := s.itemsReader.Read(sheet)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_IMPORT_FILE", err.Error())
	}
	response := &ImportResponse{
		TotalRows:  result.TotalRows,
		Errors:     result.Errors,
		ErrorCount: result.ErrorCount,
	}
	if result.HasErrors() {
		return response, nil
	}

	items, _ := document.ParseItems(result.Items)
	if err := doc.ReplaceItems(items, actor); err != nil {
		return nil, err
	}
	saved, err := s.save(ctx, doc)
	if err != nil {
		return nil, err
	}
	response.Document = saved
	response.Imported = len(items)
	response.Errors = []importer.RowError{}
	return response, nil
}

// Verify marks a document as checked
func (s *DocumentService) Verify(ctx context.Context, actor shared.Actor, id uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.documentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := doc.Verify(actor); err != nil {
		return nil, err
	}
	return s.save(ctx, doc)
}

// Reject sends a document back to its department
func (s *DocumentService) Reject(ctx context.Context, actor shared.Actor, id uuid.UUID, req RejectRequest) (*DocumentResponse, error) {
	doc, err := s.documentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := doc.Reject(req.Reason, actor); err != nil {
		return nil, err
	}
	return s.save(ctx, doc)
}

// Get retrieves a document with its fields and items
func (s *DocumentService) Get(ctx context.Context, id uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.documentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToDocumentResponse(doc)
	return &response, nil
}

// ListByShipment returns every document of a PRO
func (s *DocumentService) ListByShipment(ctx context.Context, pro string) ([]DocumentResponse, error) {
	sh, err := s.loadShipment(ctx, pro)
	if err != nil {
		return nil, err
	}
	docs, err := s.documentRepo.FindByShipment(ctx, sh.ID)
	if err != nil {
		return nil, err
	}
	out := make([]DocumentResponse, len(docs))
	for i, d := range docs {
		out[i] = ToDocumentResponse(d)
	}
	return out, nil
}

// List lists documents with filtering and pagination
func (s *DocumentService) List(ctx context.Context, input ListDocumentsInput) (shared.Paginated[DocumentResponse], error) {
	filter := document.Filter{
		Filter: shared.Filter{
			Page:     input.Page,
			PageSize: input.PageSize,
			OrderBy:  input.OrderBy,
			OrderDir: input.OrderDir,
		},
	}
	if input.ProNumber != "" {
		sh, err := s.loadShipment(ctx, input.ProNumber)
		if err != nil {
			return shared.Paginated[DocumentResponse]{}, err
		}
		filter.ShipmentID = &sh.ID
	}
	if input.Type != "" {
		t, err := document.ParseType(input.Type)
		if err != nil {
			return shared.Paginated[DocumentResponse]{}, err
		}
		filter.Type = &t
	}
	if input.Department != "" {
		d, err := shared.ParseDepartment(input.Department)
		if err != nil {
			return shared.Paginated[DocumentResponse]{}, err
		}
		filter.Department = &d
	}
	if input.Status != "" {
		st := document.Status(strings.ToUpper(input.Status))
		if !st.IsValid() {
			return shared.Paginated[DocumentResponse]{}, shared.NewDomainError(shared.CodeInvalidInput, "Unknown document status")
		}
		filter.Status = &st
	}
	normalizePage(&filter.Filter)

	docs, total, err := s.documentRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[DocumentResponse]{}, err
	}
	items := make([]DocumentResponse, len(docs))
	for i, d := range docs {
		items[i] = ToDocumentResponse(d)
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// StorageKey builds {department}/{yyyy}/{mm}/{PRO}/{type}/{uuid}_{file}
// with the department and type lower-cased and the date in UTC
func StorageKey(dept shared.Department, at time.Time, pro shipment.ProNumber, t document.Type, fileName string) string {
	at = at.UTC()
	return fmt.Sprintf("%s/%04d/%02d/%s/%s/%s_%s",
		dept.PathSegment(),
		at.Year(),
		int(at.Month()),
		pro.String(),
		t.PathSegment(),
		uuid.New().String(),
		SanitizeFileName(fileName),
	)
}

// SanitizeFileName keeps letters, digits, dot, dash and underscore of the
// base name and replaces anything else with an underscore
func SanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	lastUnderscore := false
	for _, r := range name {
		ok := r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' || r == '_')
		if !ok {
			r = '_'
		}
		if r == '_' && lastUnderscore {
			continue
		}
		lastUnderscore = r == '_'
		b.WriteRune(r)
	}
	out := strings.Trim(b.String(), "._")
	if len(out) > 100 {
		ext := filepath.Ext(out)
		if len(ext) > 10 {
			ext = ""
		}
		out = out[:100-len(ext)] + ext
	}
	if out == "" {
		return "file"
	}
	return out
}

// checkFile applies the size limit and content type whitelist
func (s *DocumentService) checkFile(in FileInput) (document.File, error) {
	if in.Body == nil || in.Size <= 0 {
		return document.File{}, ErrFileRequired
	}
	if in.Size > s.config.MaxFileSize {
		return document.File{}, ErrFileTooLarge
	}
	contentType := normalizeContentType(in.ContentType, in.Name)
	if !s.allowed[contentType] {
		return document.File{}, ErrUnsupportedFileType
	}
	name := strings.TrimSpace(filepath.Base(strings.ReplaceAll(in.Name, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		name = "file"
	}
	return document.File{
		Name:        name,
		ContentType: contentType,
		Size:        in.Size,
	}, nil
}

// normalizeContentType drops parameters and falls back to the extension when
// the client sent a generic type
func normalizeContentType(contentType, fileName string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = ""
	}
	mediaType = strings.ToLower(mediaType)
	if mediaType == "" || mediaType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName))); byExt != "" {
			mediaType, _, _ = mime.ParseMediaType(byExt)
		}
	}
	return mediaType
}

func (s *DocumentService) put(ctx context.Context, file document.File, body io.Reader) error {
	if err := s.storage.Upload(ctx, file.StorageKey, body, file.Size, file.ContentType); err != nil {
		logger.Enrich(ctx, s.logger).Error("Failed to upload document file",
			zap.String("storage_key", file.StorageKey),
			zap.Error(err))
		return ErrStorageFailed
	}
	return nil
}

func (s *DocumentService) removeObject(ctx context.Context, key string) {
	if err := s.storage.DeleteObject(ctx, key); err != nil {
		logger.Enrich(ctx, s.logger).Warn("Failed to remove stored object",
			zap.String("storage_key", key),
			zap.Error(err))
	}
}

// findExisting returns the shipment's document of type t, or nil, nil when
// there is none
func (s *DocumentService) findExisting(ctx context.Context, shipmentID uuid.UUID, t document.Type) (*document.Document, error) {
	doc, err := s.documentRepo.FindByShipmentAndType(ctx, shipmentID, t)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) loadShipment(ctx context.Context, pro string) (*shipment.Shipment, error) {
	number, err := shipment.ParseProNumber(pro)
	if err != nil {
		return nil, err
	}
	return s.shipmentRepo.FindByProNumber(ctx, number)
}

func (s *DocumentService) save(ctx context.Context, doc *document.Document) (*DocumentResponse, error) {
	if err := s.documentRepo.Update(ctx, doc); err != nil {
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			logger.Enrich(ctx, s.logger).Error("Failed to save document",
				zap.String("document_id", doc.ID.String()),
				zap.Error(err))
		}
		return nil, err
	}
	s.publish(ctx, doc)
	response := ToDocumentResponse(doc)
	return &response, nil
}

func (s *DocumentService) publish(ctx context.Context, agg shared.AggregateRoot) {
	events := agg.GetDomainEvents()
	agg.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.Enrich(ctx, s.logger).Error("Failed to publish document events", zap.Error(err))
	}
}

func normalizePage(f *shared.Filter) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}
}
