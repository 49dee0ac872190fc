package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
	appErrors "github.com/noah-isme/pacs-worklist-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestJSONWritesEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	JSON(c, http.StatusOK, []string{"a"}, &models.Pagination{Page: 2, PageSize: 25, TotalCount: 101}, map[string]interface{}{"query_string": "pagenumber=2"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	var body struct {
		Data       []string               `json:"data"`
		Pagination models.Pagination      `json:"pagination"`
		Meta       map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"a"}, body.Data)
	assert.Equal(t, 101, body.Pagination.TotalCount)
	assert.Equal(t, "pagenumber=2", body.Meta["query_string"])
}

func TestErrorNormalisesAndAborts(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, appErrors.Clone(appErrors.ErrPageOutOfRange, "no next page"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.True(t, c.IsAborted())
	assert.Len(t, c.Errors, 1)
	assert.Contains(t, w.Body.String(), "PAGE_OUT_OF_RANGE")

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	Error(c, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}
