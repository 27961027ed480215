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

	"github.com/noah-isme/pnf-horario-api/internal/dto"
	"github.com/noah-isme/pnf-horario-api/internal/middleware"
	"github.com/noah-isme/pnf-horario-api/internal/models"
	"github.com/noah-isme/pnf-horario-api/internal/service"
	"github.com/noah-isme/pnf-horario-api/internal/timetable"
	appErrors "github.com/noah-isme/pnf-horario-api/pkg/errors"
)

type timetableServiceMock struct {
	actor       string
	sessionID   string
	openReq     dto.OpenSessionRequest
	creationReq *dto.CreateClassesRequest
	deletedID   int
	format      string
	err         error
}

func (m *timetableServiceMock) Open(ctx context.Context, actor string, req dto.OpenSessionRequest) (*dto.SessionView, error) {
	m.actor = actor
	m.openReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.SessionView{ID: "sess-1", Section: models.Section{ID: req.SectionID}}, nil
}

func (m *timetableServiceMock) Get(id string) (*dto.SessionView, error) {
	m.sessionID = id
	if m.err != nil {
		return nil, m.err
	}
	return &dto.SessionView{ID: id}, nil
}

func (m *timetableServiceMock) Units(id string) ([]models.CurricularUnit, error) {
	return []models.CurricularUnit{{ID: 1}, {ID: 2}}, m.err
}

func (m *timetableServiceMock) Candidates(ctx context.Context, id string, req dto.CandidateRequest) ([]timetable.Candidate, error) {
	return []timetable.Candidate{{DayIndex: 1, Start: 700, End: 830, Blocks: []timetable.Block{700, 745}, Needed: 2}}, m.err
}

func (m *timetableServiceMock) StartCreation(ctx context.Context, id, actor string, req dto.CreateClassesRequest) (*dto.CreationResult, error) {
	m.actor = actor
	m.creationReq = &req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.CreationResult{}, nil
}

func (m *timetableServiceMock) SelectMove(ctx context.Context, id, actor string, req dto.SelectMoveRequest) (*timetable.MoveSelection, error) {
	return &timetable.MoveSelection{ClassID: req.ClassID}, m.err
}

func (m *timetableServiceMock) CommitMove(ctx context.Context, id, actor string, req dto.CommitMoveRequest) (*dto.MoveResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.MoveResult{}, nil
}

func (m *timetableServiceMock) CancelMove(id, actor string) (*dto.SessionView, error) {
	return &dto.SessionView{ID: id}, m.err
}

func (m *timetableServiceMock) DeleteClass(id, actor string, classID int) (*dto.SessionView, error) {
	m.actor = actor
	m.deletedID = classID
	return &dto.SessionView{ID: id}, m.err
}

func (m *timetableServiceMock) Reset(id, actor string) (*dto.SessionView, error) {
	m.actor = actor
	return &dto.SessionView{ID: id}, m.err
}

func (m *timetableServiceMock) Discard(id, actor string) error {
	m.sessionID = id
	m.actor = actor
	return m.err
}

func (m *timetableServiceMock) Commit(ctx context.Context, id, actor string) (*dto.CommitReport, error) {
	m.actor = actor
	if m.err != nil {
		return nil, m.err
	}
	return &dto.CommitReport{Created: 1, Committed: true}, nil
}

func (m *timetableServiceMock) Export(id, format string) (*service.ExportFile, error) {
	m.format = format
	if m.err != nil {
		return nil, m.err
	}
	return &service.ExportFile{Filename: "horario_seccion_10.csv", ContentType: "text/csv", Data: []byte("Hora\n")}, nil
}

func newTimetableRouter(svc timetableService, claims *models.JWTClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.WithResponseMeta())
	r.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(middleware.ContextUserKey, claims)
		}
		c.Next()
	})
	h := NewTimetableHandler(svc)
	r.POST("/horarios/sesiones", h.Open)
	r.GET("/horarios/sesiones/:id", h.Get)
	r.DELETE("/horarios/sesiones/:id", h.Discard)
	r.GET("/horarios/sesiones/:id/unidades", h.Units)
	r.POST("/horarios/sesiones/:id/candidatos", h.Candidates)
	r.POST("/horarios/sesiones/:id/crear", h.StartCreation)
	r.POST("/horarios/sesiones/:id/mover", h.SelectMove)
	r.POST("/horarios/sesiones/:id/mover/confirmar", h.CommitMove)
	r.DELETE("/horarios/sesiones/:id/mover", h.CancelMove)
	r.DELETE("/horarios/sesiones/:id/clases/:claseId", h.DeleteClass)
	r.POST("/horarios/sesiones/:id/guardar", h.Commit)
	r.POST("/horarios/sesiones/:id/restablecer", h.Reset)
	r.GET("/horarios/sesiones/:id/exportar", h.Export)
	return r
}

func coordinator() *models.JWTClaims {
	return &models.JWTClaims{UserID: "42", Role: models.RoleCoordinator}
}

func perform(r http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req, _ = http.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, http.NoBody)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTimetableHandlerOpenRequiresClaims(t *testing.T) {
	svc := &timetableServiceMock{}
	w := perform(newTimetableRouter(svc, nil), http.MethodPost, "/horarios/sesiones", []byte(`{"id_seccion":10}`))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTimetableHandlerOpen(t *testing.T) {
	svc := &timetableServiceMock{}
	w := perform(newTimetableRouter(svc, coordinator()), http.MethodPost, "/horarios/sesiones", []byte(`{"id_seccion":10}`))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "42", svc.actor)
	assert.Equal(t, 10, svc.openReq.SectionID)

	var body struct {
		Data dto.SessionView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "sess-1", body.Data.ID)
}

func TestTimetableHandlerGetExpiredSession(t *testing.T) {
	svc := &timetableServiceMock{err: appErrors.Clone(appErrors.ErrSessionExpired, "")}
	w := perform(newTimetableRouter(svc, coordinator()), http.MethodGet, "/horarios/sesiones/abc", nil)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), appErrors.ErrSessionExpired.Code)
	assert.Equal(t, "abc", svc.sessionID)
}

func TestTimetableHandlerCandidatesIncludesTotal(t *testing.T) {
	svc := &timetableServiceMock{}
	payload := []byte(`{"profesor":"7","id_unidad_curricular":3,"horas_bloques":2}`)
	w := perform(newTimetableRouter(svc, coordinator()), http.MethodPost, "/horarios/sesiones/abc/candidatos", payload)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []timetable.Candidate `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, timetable.Block(700), body.Data[0].Start)
	assert.EqualValues(t, 1, body.Meta["total"])
}

func TestTimetableHandlerCandidatesRejectsBadProfessor(t *testing.T) {
	svc := &timetableServiceMock{}
	payload := []byte(`{"profesor":{"nombres":"sin id"},"id_unidad_curricular":3,"horas_bloques":2}`)
	w := perform(newTimetableRouter(svc, coordinator()), http.MethodPost, "/horarios/sesiones/abc/candidatos", payload)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerStartCreationAcceptsEmptyBody(t *testing.T) {
	svc := &timetableServiceMock{}
	w := perform(newTimetableRouter(svc, coordinator()), http.MethodPost, "/horarios/sesiones/abc/crear", nil)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.creationReq)
	assert.True(t, svc.creationReq.Empty())
}

func TestTimetableHandlerCommitMoveSlotUnavailable(t *testing.T) {
	svc := &timetableServiceMock{err: appErrors.Clone(appErrors.ErrSlotUnavailable, "")}
	w := perform(newTimetableRouter(svc, coordinator()), http.MethodPost, "/horarios/sesiones/abc/mover/confirmar", []byte(`{"dia_index":1,"hora_inicio":845}`))
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestTimetableHandlerDeleteClass(t *testing.T) {
	svc := &timetableServiceMock{}
	r := newTimetableRouter(svc, coordinator())

	w := perform(r, http.MethodDelete, "/horarios/sesiones/abc/clases/x", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(r, http.MethodDelete, "/horarios/sesiones/abc/clases/-3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, -3, svc.deletedID)
	assert.Equal(t, "42", svc.actor)
}

func TestTimetableHandlerMutationsRequireClaims(t *testing.T) {
	svc := &timetableServiceMock{}
	r := newTimetableRouter(svc, nil)

	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodPost, "/horarios/sesiones/abc/restablecer", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodDelete, "/horarios/sesiones/abc/clases/5", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodDelete, "/horarios/sesiones/abc", nil).Code)
	assert.Zero(t, svc.deletedID)
	assert.Empty(t, svc.sessionID)
}

func TestTimetableHandlerResetForeignSession(t *testing.T) {
	svc := &timetableServiceMock{err: appErrors.Clone(appErrors.ErrForbidden, "session was opened by another user")}
	w := perform(newTimetableRouter(svc, coordinator()), http.MethodPost, "/horarios/sesiones/abc/restablecer", nil)

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "42", svc.actor)
	assert.Contains(t, w.Body.String(), appErrors.ErrForbidden.Code)
}

func TestTimetableHandlerCommit(t *testing.T) {
	svc := &timetableServiceMock{}
	w := perform(newTimetableRouter(svc, coordinator()), http.MethodPost, "/horarios/sesiones/abc/guardar", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "42", svc.actor)
	assert.Contains(t, w.Body.String(), `"confirmado":true`)
}

func TestTimetableHandlerDiscard(t *testing.T) {
	svc := &timetableServiceMock{}
	w := perform(newTimetableRouter(svc, coordinator()), http.MethodDelete, "/horarios/sesiones/abc", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "abc", svc.sessionID)
}

func TestTimetableHandlerExport(t *testing.T) {
	svc := &timetableServiceMock{}
	w := perform(newTimetableRouter(svc, coordinator()), http.MethodGet, "/horarios/sesiones/abc/exportar?format=csv", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", svc.format)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "horario_seccion_10.csv")
	assert.Equal(t, "Hora\n", w.Body.String())
}
