package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appdocument "github.com/logidocs/backend/internal/application/document"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) docResult(args mock.Arguments) (*appdocument.DocumentResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appdocument.DocumentResponse), args.Error(1)
}

func (m *MockDocumentService) DocumentTypes() []appdocument.TypeSchemaResponse {
	return m.Called().Get(0).([]appdocument.TypeSchemaResponse)
}

func (m *MockDocumentService) Validate(ctx context.Context, req appdocument.ValidateRequest) (*appdocument.ValidationResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appdocument.ValidationResponse), args.Error(1)
}

func (m *MockDocumentService) CreateFromForm(ctx context.Context, actor shared.Actor, pro string, req appdocument.CreateDocumentRequest) (*appdocument.DocumentResponse, error) {
	return m.docResult(m.Called(ctx, actor, pro, req))
}

func (m *MockDocumentService) Upload(ctx context.Context, actor shared.Actor, in appdocument.UploadInput) (*appdocument.DocumentResponse, error) {
	return m.docResult(m.Called(ctx, actor, in))
}

func (m *MockDocumentService) ReplaceFile(ctx context.Context, actor shared.Actor, id uuid.UUID, in appdocument.FileInput) (*appdocument.DocumentResponse, error) {
	return m.docResult(m.Called(ctx, actor, id, in))
}

func (m *MockDocumentService) Update(ctx context.Context, actor shared.Actor, id uuid.UUID, req appdocument.UpdateDocumentRequest) (*appdocument.DocumentResponse, error) {
	return m.docResult(m.Called(ctx, actor, id, req))
}

func (m *MockDocumentService) Delete(ctx context.Context, actor shared.Actor, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockDocumentService) Preview(ctx context.Context, id uuid.UUID) (*appdocument.PreviewResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appdocument.PreviewResponse), args.Error(1)
}

func (m *MockDocumentService) ImportItems(ctx context.Context, actor shared.Actor, id uuid.UUID, sheet io.Reader) (*appdocument.ImportResponse, error) {
	args := m.Called(ctx, actor, id, sheet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appdocument.ImportResponse), args.Error(1)
}

func (m *MockDocumentService) Verify(ctx context.Context, actor shared.Actor, id uuid.UUID) (*appdocument.DocumentResponse, error) {
	return m.docResult(m.Called(ctx, actor, id))
}

func (m *MockDocumentService) Reject(ctx context.Context, actor shared.Actor, id uuid.UUID, req appdocument.RejectRequest) (*appdocument.DocumentResponse, error) {
	return m.docResult(m.Called(ctx, actor, id, req))
}

func (m *MockDocumentService) Get(ctx context.Context, id uuid.UUID) (*appdocument.DocumentResponse, error) {
	return m.docResult(m.Called(ctx, id))
}

func (m *MockDocumentService) ListByShipment(ctx context.Context, pro string) ([]appdocument.DocumentResponse, error) {
	args := m.Called(ctx, pro)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appdocument.DocumentResponse), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, input appdocument.ListDocumentsInput) (shared.Paginated[appdocument.DocumentResponse], error) {
	args := m.Called(ctx, input)
	return args.Get(0).(shared.Paginated[appdocument.DocumentResponse]), args.Error(1)
}

func newDocumentRouter(svc *MockDocumentService, actor *shared.Actor) *gin.Engine {
	h := NewDocumentHandler(svc)
	r := newTestRouter(actor)
	r.GET("/document-types", h.Types)
	r.POST("/documents/validate", h.Validate)
	r.POST("/shipments/:pro/documents", h.Create)
	r.GET("/shipments/:pro/documents", h.ListByShipment)
	r.POST("/shipments/:pro/documents/upload", h.Upload)
	r.GET("/documents", h.List)
	r.GET("/documents/:id", h.Get)
	r.PUT("/documents/:id", h.Update)
	r.DELETE("/documents/:id", h.Delete)
	r.PUT("/documents/:id/file", h.ReplaceFile)
	r.GET("/documents/:id/preview", h.Preview)
	r.POST("/documents/:id/items/import", h.ImportItems)
	r.POST("/documents/:id/verify", h.Verify)
	r.POST("/documents/:id/reject", h.Reject)
	return r
}

type formPart struct {
	name        string
	fileName    string
	contentType string
	body        string
}

func multipartBody(t *testing.T, parts ...formPart) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for _, p := range parts {
		if p.fileName == "" {
			require.NoError(t, mw.WriteField(p.name, p.body))
			continue
		}
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="`+p.name+`"; filename="`+p.fileName+`"`)
		h.Set("Content-Type", p.contentType)
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = io.WriteString(w, p.body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestDocumentHandler_Upload(t *testing.T) {
	actor := testActor(shared.DepartmentShipment)
	svc := new(MockDocumentService)
	r := newDocumentRouter(svc, actor)

	var gotBody string
	svc.On("Upload", mock.Anything, *actor, mock.MatchedBy(func(in appdocument.UploadInput) bool {
		return in.ProNumber == "2026001" &&
			in.Type == "BOL" &&
			in.File.Name == "bol.pdf" &&
			in.File.ContentType == "application/pdf" &&
			in.File.Size == int64(len("%PDF-1.7 test")) &&
			in.Content != nil &&
			len(in.Content.Fields) == 1 &&
			in.Content.Fields[0].Key == "shipper"
	})).Run(func(args mock.Arguments) {
		in := args.Get(2).(appdocument.UploadInput)
		data, err := io.ReadAll(in.File.Body)
		require.NoError(t, err)
		gotBody = string(data)
	}).Return(&appdocument.DocumentResponse{ID: uuid.New(), Type: "BOL", Status: "PENDING_REVIEW"}, nil)

	body, contentType := multipartBody(t,
		formPart{name: "type", body: "BOL"},
		formPart{name: "content", body: `{"fields":[{"key":"shipper","value":"Acme Ltd","position":0}]}`},
		formPart{name: "file", fileName: "bol.pdf", contentType: "application/pdf", body: "%PDF-1.7 test"},
	)
	w := serve(r, http.MethodPost, "/shipments/2026001/documents/upload", body, "Content-Type", contentType)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "%PDF-1.7 test", gotBody)
	var doc appdocument.DocumentResponse
	decodeData(t, w, &doc)
	assert.Equal(t, "PENDING_REVIEW", doc.Status)
	svc.AssertExpectations(t)
}

func TestDocumentHandler_Upload_BadRequests(t *testing.T) {
	actor := testActor(shared.DepartmentShipment)

	tests := []struct {
		name     string
		parts    []formPart
		wantCode string
	}{
		{
			name:     "missing file",
			parts:    []formPart{{name: "type", body: "BOL"}},
			wantCode: "FILE_REQUIRED",
		},
		{
			name:     "missing type",
			parts:    []formPart{{name: "file", fileName: "a.pdf", contentType: "application/pdf", body: "x"}},
			wantCode: shared.CodeInvalidInput,
		},
		{
			name: "content is not json",
			parts: []formPart{
				{name: "type", body: "BOL"},
				{name: "content", body: "shipper=acme"},
				{name: "file", fileName: "a.pdf", contentType: "application/pdf", body: "x"},
			},
			wantCode: shared.CodeInvalidInput,
		},
		{
			name: "content fails validation",
			parts: []formPart{
				{name: "type", body: "BOL"},
				{name: "content", body: `{"fields":[{"key":"","value":"x"}]}`},
				{name: "file", fileName: "a.pdf", contentType: "application/pdf", body: "x"},
			},
			wantCode: shared.CodeValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDocumentService)
			body, contentType := multipartBody(t, tt.parts...)
			w := serve(newDocumentRouter(svc, actor), http.MethodPost, "/shipments/2026001/documents/upload", body, "Content-Type", contentType)

			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, tt.wantCode, errorCodeOf(t, w))
			svc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestDocumentHandler_Upload_NotMultipart(t *testing.T) {
	svc := new(MockDocumentService)
	w := serveJSON(newDocumentRouter(svc, testActor(shared.DepartmentShipment)), http.MethodPost, "/shipments/2026001/documents/upload", map[string]string{"type": "BOL"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "FILE_REQUIRED", errorCodeOf(t, w))
}

func TestDocumentHandler_Upload_TooLarge(t *testing.T) {
	svc := new(MockDocumentService)
	h := NewDocumentHandler(svc)
	r := newTestRouter(testActor(shared.DepartmentShipment))
	r.POST("/upload/:pro", func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 128)
		h.Upload(c)
	})

	body, contentType := multipartBody(t,
		formPart{name: "type", body: "BOL"},
		formPart{name: "file", fileName: "big.pdf", contentType: "application/pdf", body: strings.Repeat("x", 4096)},
	)
	w := serve(r, http.MethodPost, "/upload/2026001", body, "Content-Type", contentType)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "REQUEST_TOO_LARGE", errorCodeOf(t, w))
}

func TestDocumentHandler_ReplaceFile(t *testing.T) {
	actor := testActor(shared.DepartmentFinance)
	svc := new(MockDocumentService)
	r := newDocumentRouter(svc, actor)
	id := uuid.New()

	svc.On("ReplaceFile", mock.Anything, *actor, id, mock.MatchedBy(func(in appdocument.FileInput) bool {
		return in.Name == "invoice.png" && in.ContentType == "image/png"
	})).Return(nil, shared.NewDomainError("UNSUPPORTED_FILE_TYPE", "nope"))

	body, contentType := multipartBody(t, formPart{name: "file", fileName: "invoice.png", contentType: "image/png", body: "png"})
	w := serve(r, http.MethodPut, "/documents/"+id.String()+"/file", body, "Content-Type", contentType)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	svc.AssertExpectations(t)
}

func TestDocumentHandler_CreateAndValidate(t *testing.T) {
	actor := testActor(shared.DepartmentShipment)
	svc := new(MockDocumentService)
	r := newDocumentRouter(svc, actor)

	formErr := shared.NewDomainError(shared.CodeValidationFailed, "Form has errors")
	formErr.Details = []shared.FieldError{{Field: "fields.shipper", Code: "REQUIRED", Message: "Shipper is required"}}
	svc.On("CreateFromForm", mock.Anything, *actor, "2026001", mock.Anything).Return(nil, formErr)
	svc.On("Validate", mock.Anything, mock.MatchedBy(func(req appdocument.ValidateRequest) bool {
		return req.Type == "BOL"
	})).Return(&appdocument.ValidationResponse{Valid: false, Errors: formErr.Details}, nil)

	w := serveJSON(r, http.MethodPost, "/shipments/2026001/documents", appdocument.CreateDocumentRequest{Type: "BOL"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	require.Len(t, env.Error.Details, 1)
	assert.Equal(t, "fields.shipper", env.Error.Details[0].Field)

	w = serveJSON(r, http.MethodPost, "/documents/validate", appdocument.ValidateRequest{Type: "BOL"})
	require.Equal(t, http.StatusOK, w.Code)
	var result appdocument.ValidationResponse
	decodeData(t, w, &result)
	assert.False(t, result.Valid)
	assert.Len(t, result.Errors, 1)
}

func TestDocumentHandler_Types(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("DocumentTypes").Return([]appdocument.TypeSchemaResponse{
		{Type: "BOL", Label: "Bill of Lading", Department: "SHIPMENT"},
		{Type: "INVOICE", Label: "Invoice", Department: "FINANCE", AllowsItems: true},
	})

	w := serve(newDocumentRouter(svc, testActor(shared.DepartmentVerifier)), http.MethodGet, "/document-types", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var types []appdocument.TypeSchemaResponse
	decodeData(t, w, &types)
	assert.Len(t, types, 2)
}

func TestDocumentHandler_List(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("List", mock.Anything, appdocument.ListDocumentsInput{
		Page:       1,
		PageSize:   20,
		OrderBy:    "created_at",
		OrderDir:   "desc",
		ProNumber:  "2026001",
		Type:       "INVOICE",
		Department: "FINANCE",
		Status:     "VERIFIED",
	}).Return(shared.NewPaginated([]appdocument.DocumentResponse{{Type: "INVOICE"}}, 1, 1, 20), nil)
	svc.On("ListByShipment", mock.Anything, "2026001").Return(nil, nil)

	r := newDocumentRouter(svc, testActor(shared.DepartmentFinance))
	w := serve(r, http.MethodGet, "/documents?pro_number=2026001&type=INVOICE&department=finance&status=VERIFIED", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(1), decode(t, w).Meta.Total)

	w = serve(r, http.MethodGet, "/shipments/2026001/documents", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(decode(t, w).Data))
	svc.AssertExpectations(t)
}

func TestDocumentHandler_UpdateAndDelete(t *testing.T) {
	actor := testActor(shared.DepartmentShipment)
	svc := new(MockDocumentService)
	r := newDocumentRouter(svc, actor)
	id := uuid.New()
	version := 3

	svc.On("Update", mock.Anything, *actor, id, mock.MatchedBy(func(req appdocument.UpdateDocumentRequest) bool {
		return req.Version != nil && *req.Version == 3
	})).Return(nil, shared.NewDomainError(shared.CodeConcurrentModified, "stale"))
	svc.On("Delete", mock.Anything, *actor, id).Return(nil)

	w := serveJSON(r, http.MethodPut, "/documents/"+id.String(), appdocument.UpdateDocumentRequest{Version: &version})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = serve(r, http.MethodDelete, "/documents/"+id.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	svc.AssertExpectations(t)
}

func TestDocumentHandler_Preview(t *testing.T) {
	svc := new(MockDocumentService)
	r := newDocumentRouter(svc, testActor(shared.DepartmentVerifier))
	id := uuid.New()
	preview := &appdocument.PreviewResponse{
		URL:         "https://bucket.s3.amazonaws.com/SHIPMENT/2026/01/2026001/BOL/bol.pdf?X-Amz-Signature=abc",
		ExpiresAt:   time.Now().Add(15 * time.Minute),
		FileName:    "bol.pdf",
		ContentType: "application/pdf",
	}
	svc.On("Preview", mock.Anything, id).Return(preview, nil)

	w := serve(r, http.MethodGet, "/documents/"+id.String()+"/preview", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got appdocument.PreviewResponse
	decodeData(t, w, &got)
	assert.Equal(t, preview.URL, got.URL)

	w = serve(r, http.MethodGet, "/documents/"+id.String()+"/preview?redirect=true", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, preview.URL, w.Header().Get("Location"))
}

func TestDocumentHandler_ImportItems(t *testing.T) {
	actor := testActor(shared.DepartmentFinance)
	id := uuid.New()
	csv := "product_name,quantity,unit_price\nWidget,10,2.50\n"

	readsCSV := mock.MatchedBy(func(sheet io.Reader) bool { return sheet != nil })

	t.Run("raw csv body", func(t *testing.T) {
		svc := new(MockDocumentService)
		var got string
		svc.On("ImportItems", mock.Anything, *actor, id, readsCSV).Run(func(args mock.Arguments) {
			data, _ := io.ReadAll(args.Get(3).(io.Reader))
			got = string(data)
		}).Return(&appdocument.ImportResponse{Imported: 1, TotalRows: 1}, nil)

		w := serve(newDocumentRouter(svc, actor), http.MethodPost, "/documents/"+id.String()+"/items/import",
			strings.NewReader(csv), "Content-Type", "text/csv")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, csv, got)
	})

	t.Run("multipart file", func(t *testing.T) {
		svc := new(MockDocumentService)
		var got string
		svc.On("ImportItems", mock.Anything, *actor, id, readsCSV).Run(func(args mock.Arguments) {
			data, _ := io.ReadAll(args.Get(3).(io.Reader))
			got = string(data)
		}).Return(&appdocument.ImportResponse{Imported: 1, TotalRows: 1}, nil)

		body, contentType := multipartBody(t, formPart{name: "file", fileName: "items.csv", contentType: "text/csv", body: csv})
		w := serve(newDocumentRouter(svc, actor), http.MethodPost, "/documents/"+id.String()+"/items/import", body, "Content-Type", contentType)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, csv, got)
	})
}

func TestDocumentHandler_Review(t *testing.T) {
	actor := testActor(shared.DepartmentVerifier)
	svc := new(MockDocumentService)
	r := newDocumentRouter(svc, actor)
	id := uuid.New()

	svc.On("Verify", mock.Anything, *actor, id).Return(&appdocument.DocumentResponse{ID: id, Status: "VERIFIED"}, nil)
	svc.On("Reject", mock.Anything, *actor, id, appdocument.RejectRequest{Reason: "Seal number missing"}).
		Return(&appdocument.DocumentResponse{ID: id, Status: "REJECTED", RejectionReason: "Seal number missing"}, nil)

	w := serve(r, http.MethodPost, "/documents/"+id.String()+"/verify", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = serveJSON(r, http.MethodPost, "/documents/"+id.String()+"/reject", appdocument.RejectRequest{Reason: "Seal number missing"})
	require.Equal(t, http.StatusOK, w.Code)
	var doc appdocument.DocumentResponse
	decodeData(t, w, &doc)
	assert.Equal(t, "REJECTED", doc.Status)

	w = serveJSON(r, http.MethodPost, "/documents/"+id.String()+"/reject", appdocument.RejectRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNumberOfCalls(t, "Reject", 1)
}
