package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pacs-worklist-api/internal/middleware"
	"github.com/noah-isme/pacs-worklist-api/internal/models"
	"github.com/noah-isme/pacs-worklist-api/internal/service"
	appErrors "github.com/noah-isme/pacs-worklist-api/pkg/errors"
	"github.com/noah-isme/pacs-worklist-api/pkg/logger"
)

type worklistServiceMock struct {
	lastSession string
	lastQuery   string
	lastPage    int
	lastRPP     int
	lastIndex   int
	lastFilters models.FilterState
	pageErr     error
	ended       bool
}

func (m *worklistServiceMock) Config() service.WorklistView {
	return service.WorklistView{StudiesLimit: 101, DefaultResultsPerPage: 25}
}

func (m *worklistServiceMock) List(ctx context.Context, sessionID, rawQuery string) (*models.WorklistPage, error) {
	m.lastSession = sessionID
	m.lastQuery = rawQuery
	return &models.WorklistPage{Rows: []models.WorklistRow{{Index: 1, Study: models.Study{StudyInstanceUID: "1.2.3"}}}}, nil
}

func (m *worklistServiceMock) SetFilters(ctx context.Context, sessionID string, next models.FilterState) (*models.FilterUpdate, error) {
	m.lastSession = sessionID
	m.lastFilters = next
	return &models.FilterUpdate{Filters: next, Changed: true}, nil
}

func (m *worklistServiceMock) ChangePage(ctx context.Context, sessionID string, newPage int) (*models.FilterUpdate, error) {
	m.lastPage = newPage
	if m.pageErr != nil {
		return nil, m.pageErr
	}
	return &models.FilterUpdate{Filters: models.FilterState{PageNumber: newPage}, Changed: true}, nil
}

func (m *worklistServiceMock) SetResultsPerPage(ctx context.Context, sessionID string, resultsPerPage int) (*models.FilterUpdate, error) {
	m.lastRPP = resultsPerPage
	return &models.FilterUpdate{Filters: models.FilterState{ResultsPerPage: resultsPerPage, PageNumber: 1}}, nil
}

func (m *worklistServiceMock) ClearFilters(ctx context.Context, sessionID string) (*models.FilterUpdate, error) {
	return &models.FilterUpdate{}, nil
}

func (m *worklistServiceMock) EndSession(ctx context.Context, sessionID string) error {
	m.ended = true
	return nil
}

func (m *worklistServiceMock) ToggleRow(ctx context.Context, sessionID string, index int) (*models.RowExpansion, error) {
	m.lastIndex = index
	if index > 1 {
		return nil, appErrors.ErrRowOutOfRange
	}
	return &models.RowExpansion{Index: index, State: models.RowExpanding}, nil
}

func (m *worklistServiceMock) DrainNotifications(ctx context.Context, sessionID string) ([]models.Notification, error) {
	return []models.Notification{}, nil
}

func newWorklistRouter(svc worklistService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewWorklistHandler(svc)
	r := gin.New()
	r.Use(middleware.Session())
	r.GET("/worklist/studies", h.List)
	r.PUT("/worklist/filters", h.SetFilters)
	r.PUT("/worklist/page", h.ChangePage)
	r.PUT("/worklist/results-per-page", h.SetResultsPerPage)
	r.POST("/worklist/rows/:index/toggle", h.ToggleRow)
	r.DELETE("/worklist/session", h.EndSession)
	return r
}

func decodeEnvelope(t *testing.T, body *bytes.Buffer, data interface{}) {
	t.Helper()
	var envelope struct {
		Data  json.RawMessage  `json:"data"`
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body.Bytes(), &envelope))
	if data != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, data))
	}
}

func TestWorklistHandlerListPassesRawQueryAndSession(t *testing.T) {
	svc := &worklistServiceMock{}
	r := newWorklistRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/worklist/studies?PatientName=SMITH&pageNumber=2", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PatientName=SMITH&pageNumber=2", svc.lastQuery)
	assert.Equal(t, w.Header().Get(logger.SessionHeader), svc.lastSession)
	assert.NotEmpty(t, svc.lastSession)

	var page models.WorklistPage
	decodeEnvelope(t, w.Body, &page)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "1.2.3", page.Rows[0].Study.StudyInstanceUID)
}

func TestWorklistHandlerSetFilters(t *testing.T) {
	svc := &worklistServiceMock{}
	r := newWorklistRouter(svc)

	body := `{"patient_name":"DOE","modalities":["CT"],"sort_by":"patientName","sort_direction":"ascending"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/worklist/filters", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DOE", svc.lastFilters.PatientName)
	assert.Equal(t, []string{"CT"}, svc.lastFilters.Modalities)
	assert.Equal(t, models.SortAscending, svc.lastFilters.SortDirection)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/worklist/filters", bytes.NewBufferString(`{"page_number":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorklistHandlerChangePage(t *testing.T) {
	svc := &worklistServiceMock{}
	r := newWorklistRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/worklist/page", bytes.NewBufferString(`{"page_number":3}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, svc.lastPage)

	svc.pageErr = appErrors.ErrPageOutOfRange
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/worklist/page", bytes.NewBufferString(`{"page_number":9}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/worklist/page", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorklistHandlerResultsPerPageRejectsZero(t *testing.T) {
	svc := &worklistServiceMock{}
	r := newWorklistRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/worklist/results-per-page", bytes.NewBufferString(`{"results_per_page":0}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, svc.lastRPP)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/worklist/results-per-page", bytes.NewBufferString(`{"results_per_page":50}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 50, svc.lastRPP)
}

func TestWorklistHandlerToggleRow(t *testing.T) {
	svc := &worklistServiceMock{}
	r := newWorklistRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/worklist/rows/1/toggle", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var exp models.RowExpansion
	decodeEnvelope(t, w.Body, &exp)
	assert.Equal(t, models.RowExpanding, exp.State)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/worklist/rows/7/toggle", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/worklist/rows/abc/toggle", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorklistHandlerEndSession(t *testing.T) {
	svc := &worklistServiceMock{}
	r := newWorklistRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/worklist/session", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, svc.ended)
}
