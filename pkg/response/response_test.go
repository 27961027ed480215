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

	"github.com/noah-isme/pnf-horario-api/internal/models"
	appErrors "github.com/noah-isme/pnf-horario-api/pkg/errors"
	"github.com/noah-isme/pnf-horario-api/pkg/middleware/requestid"
)

func render(t *testing.T, handler gin.HandlerFunc) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	var captured *gin.Context
	r := gin.New()
	r.Use(requestid.Middleware())
	r.GET("/", func(c *gin.Context) {
		captured = c
		handler(c)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w, captured
}

func TestErrorEchoesConflicts(t *testing.T) {
	conflict := &models.ScheduleConflictError{
		Message:   "professor busy",
		Conflicts: []models.ScheduleConflict{{Type: "profesor", ScheduleID: 12, DayName: "Lunes"}},
	}
	w, _ := render(t, func(c *gin.Context) {
		Error(c, appErrors.Wrap(conflict, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "schedule conflict"))
	})

	require.Equal(t, http.StatusConflict, w.Code)
	var body struct {
		Data struct {
			Conflicts []models.ScheduleConflict `json:"conflictos"`
		} `json:"data"`
		Error appErrors.Error        `json:"error"`
		Meta  map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, appErrors.ErrConflict.Code, body.Error.Code)
	require.Len(t, body.Data.Conflicts, 1)
	assert.Equal(t, 12, body.Data.Conflicts[0].ScheduleID)
	assert.NotEmpty(t, body.Meta["request_id"])
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestErrorRecordsServerFailures(t *testing.T) {
	w, c := render(t, func(c *gin.Context) {
		Error(c, errors.New("pq: connection refused"))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Len(t, c.Errors, 1)
	assert.Contains(t, c.Errors.String(), "connection refused")
}

func TestJSONWithMeta(t *testing.T) {
	w, _ := render(t, func(c *gin.Context) {
		JSON(c, http.StatusOK, []int{1, 2}, nil, map[string]interface{}{"total": 2})
	})

	assert.JSONEq(t, `{"data":[1,2],"meta":{"total":2}}`, w.Body.String())
}
