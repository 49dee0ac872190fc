package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pacs-worklist-api/internal/dto"
	"github.com/noah-isme/pacs-worklist-api/internal/service"
	appErrors "github.com/noah-isme/pacs-worklist-api/pkg/errors"
)

type commandRunnerMock struct {
	name    string
	payload json.RawMessage
}

func (m *commandRunnerMock) Names() []string { return []string{"clearMeasurements"} }

func (m *commandRunnerMock) Run(ctx context.Context, name string, payload json.RawMessage) (interface{}, error) {
	if name != "clearMeasurements" {
		return nil, appErrors.ErrUnknownCommand
	}
	m.name = name
	m.payload = payload
	return map[string]int{"deleted": 3}, nil
}

type reportOpenerMock struct {
	path string
}

func (m *reportOpenerMock) OpenReport(token string) (*service.ReportFile, error) {
	if token != "good" {
		return nil, appErrors.ErrForbidden
	}
	f, err := os.Open(m.path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return &service.ReportFile{Content: f, Info: info, FileName: "1.2.3_measurements.csv", ContentType: "text/csv"}, nil
}

func newCommandRouter(t *testing.T) (*gin.Engine, *commandRunnerMock) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	path := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, os.WriteFile(path, []byte("label,value\nlesion,12.5\n"), 0o600))

	runner := &commandRunnerMock{}
	h := NewCommandHandler(runner, &reportOpenerMock{path: path})
	r := gin.New()
	r.GET("/commands", h.List)
	r.POST("/commands/:name", h.Run)
	r.GET("/exports/:token", h.Download)
	return r, runner
}

func TestCommandHandlerRun(t *testing.T) {
	r, runner := newCommandRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/commands/clearMeasurements", bytes.NewBufferString(`{"args":{"StudyInstanceUID":"1.2.3"}}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"StudyInstanceUID":"1.2.3"}`, string(runner.payload))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/commands/clearMeasurements", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, runner.payload)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/commands/unknown", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommandHandlerList(t *testing.T) {
	r, _ := newCommandRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/commands", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.CommandListResponse
	decodeEnvelope(t, w.Body, &resp)
	assert.Equal(t, []string{"clearMeasurements"}, resp.Commands)
}

func TestCommandHandlerDownload(t *testing.T) {
	r, _ := newCommandRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/exports/good", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="1.2.3_measurements.csv"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "lesion,12.5")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/exports/bad", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
