package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/logidocs/backend/internal/interfaces/http/dto"
	"github.com/logidocs/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
)

const testRequestID = "req-test"

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// envelope mirrors dto.Response with Data left raw for per-test decoding
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

// newTestRouter returns an engine that stamps a fixed request ID and, when
// actor is set, the authenticated actor the JWT middleware would have stored
func newTestRouter(actor *shared.Actor) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.RequestIDKey, testRequestID)
		if actor != nil {
			c.Set(middleware.ActorKey, *actor)
		}
		c.Next()
	})
	return r
}

func testActor(dept shared.Department) *shared.Actor {
	return &shared.Actor{
		UserID:     uuid.New(),
		Username:   strings.ToLower(string(dept)) + ".clerk",
		Department: dept,
	}
}

// serve runs one request through r. headers are key, value pairs.
func serve(r http.Handler, method, path string, body io.Reader, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func serveJSON(r http.Handler, method, path string, v any) *httptest.ResponseRecorder {
	body, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return serve(r, method, path, bytes.NewReader(body), "Content-Type", "application/json")
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	env := decode(t, w)
	require.NotEmpty(t, env.Data, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func errorCodeOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := decode(t, w)
	require.NotNil(t, env.Error, w.Body.String())
	return env.Error.Code
}
