package bridge

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	handlers "github.com/de-tools/ledger-atlas/pkg/handlers/ledger"
	"github.com/de-tools/ledger-atlas/pkg/models/api"
	"github.com/de-tools/ledger-atlas/pkg/services/analysis"
)

func TestServeOnce(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/upload-csv", r.URL.Path)
		assert.Equal(t, "fast", r.URL.Query().Get("mode"))
		assert.Equal(t, "text/plain", r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	in := strings.NewReader(`{
		"httpMethod": "POST",
		"path": "/upload-csv",
		"headers": {"Content-Type": "text/plain"},
		"body": "payload",
		"queryStringParameters": {"mode": "fast"}
	}`)
	var out bytes.Buffer
	require.NoError(t, ServeOnce(handler, in, &out))

	var resp Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.Equal(t, `{"ok":true}`, resp.Body)
}

func TestServeOnceRejectsGarbageInput(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	err := ServeOnce(handler, strings.NewReader("not json"), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request envelope")
}

func TestServeOnceCarriesUpload(t *testing.T) {
	engine := analysis.NewEngine(analysis.NewDetector(analysis.DefaultDetectorSettings()), nil)
	handler := handlers.NewHandler(engine, nil, nil)
	router := chi.NewRouter()
	router.Post("/upload-csv", handler.UploadCSV)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "ledger.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("items,debit,credit\nCash,100,100\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	env := Request{
		HTTPMethod: http.MethodPost,
		Path:       "/upload-csv",
		Headers:    map[string]string{"Content-Type": mw.FormDataContentType()},
		Body:       body.String(),
	}
	raw, err := json.Marshal(env)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, ServeOnce(router, bytes.NewReader(raw), &out))

	var resp Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result api.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &result))
	assert.Equal(t, "Balanced: Total Debit = 100.00, Total Credit = 100.00", result.BalanceStatus)
	assert.Equal(t, "No significant anomalies detected", result.AnomalySummary)
}

func TestHandlerForwardsEnvelope(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "request.json")
	respPath := filepath.Join(dir, "response.json")
	require.NoError(t, os.WriteFile(respPath, []byte(
		`{"statusCode":200,"headers":{"Content-Type":"application/json"},"body":"{\"ok\":true}"}`,
	), 0o644))

	h := NewHandler("sh", "-c", "cat > "+inPath+"; cat "+respPath)

	req := httptest.NewRequest(http.MethodPost, "/upload-csv?mode=fast", strings.NewReader("payload"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, `{"ok":true}`, rec.Body.String())

	sent, err := os.ReadFile(inPath)
	require.NoError(t, err)
	var env Request
	require.NoError(t, json.Unmarshal(sent, &env))
	assert.Equal(t, http.MethodPost, env.HTTPMethod)
	assert.Equal(t, "/upload-csv", env.Path)
	assert.Equal(t, "payload", env.Body)
	assert.Equal(t, "fast", env.QueryStringParameters["mode"])
	assert.Equal(t, "text/plain", env.Headers["Content-Type"])
}

func TestHandlerSurfacesStderrOnFailure(t *testing.T) {
	h := NewHandler("sh", "-c", "echo analyzer exploded >&2; exit 3")

	req := httptest.NewRequest(http.MethodPost, "/upload-csv", strings.NewReader("payload"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)

	var apiErr api.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	assert.Contains(t, apiErr.Detail, "analyzer exploded")
}

func TestHandlerRejectsUnreadableOutput(t *testing.T) {
	h := NewHandler("sh", "-c", "cat > /dev/null; echo not-json")

	req := httptest.NewRequest(http.MethodPost, "/upload-csv", strings.NewReader("payload"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)

	var apiErr api.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	assert.Equal(t, "analyzer returned an unreadable response", apiErr.Detail)
}
