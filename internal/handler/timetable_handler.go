package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pnf-horario-api/internal/dto"
	"github.com/noah-isme/pnf-horario-api/internal/middleware"
	"github.com/noah-isme/pnf-horario-api/internal/models"
	"github.com/noah-isme/pnf-horario-api/internal/service"
	"github.com/noah-isme/pnf-horario-api/internal/timetable"
	appErrors "github.com/noah-isme/pnf-horario-api/pkg/errors"
	"github.com/noah-isme/pnf-horario-api/pkg/response"
)

type timetableService interface {
	Open(ctx context.Context, actor string, req dto.OpenSessionRequest) (*dto.SessionView, error)
	Get(id string) (*dto.SessionView, error)
	Units(id string) ([]models.CurricularUnit, error)
	Candidates(ctx context.Context, id string, req dto.CandidateRequest) ([]timetable.Candidate, error)
	StartCreation(ctx context.Context, id, actor string, req dto.CreateClassesRequest) (*dto.CreationResult, error)
	SelectMove(ctx context.Context, id, actor string, req dto.SelectMoveRequest) (*timetable.MoveSelection, error)
	CommitMove(ctx context.Context, id, actor string, req dto.CommitMoveRequest) (*dto.MoveResult, error)
	CancelMove(id, actor string) (*dto.SessionView, error)
	DeleteClass(id, actor string, classID int) (*dto.SessionView, error)
	Reset(id, actor string) (*dto.SessionView, error)
	Discard(id, actor string) error
	Commit(ctx context.Context, id, actor string) (*dto.CommitReport, error)
	Export(id, format string) (*service.ExportFile, error)
}

// TimetableHandler exposes the section timetable editing sessions.
type TimetableHandler struct {
	service timetableService
}

// NewTimetableHandler constructs a timetable handler.
func NewTimetableHandler(service timetableService) *TimetableHandler {
	return &TimetableHandler{service: service}
}

// Open godoc
// @Summary Open an editing session for a section timetable
// @Tags Horarios
// @Accept json
// @Produce json
// @Param payload body dto.OpenSessionRequest true "Section"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /horarios/sesiones [post]
func (h *TimetableHandler) Open(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
		return
	}
	view, err := h.service.Open(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// Get godoc
// @Summary Get an editing session
// @Tags Horarios
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /horarios/sesiones/{id} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	view, err := h.service.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil, middleware.ResponseMeta(c))
}

// Units godoc
// @Summary List curricular units with hours derived from the session grid
// @Tags Horarios
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /horarios/sesiones/{id}/unidades [get]
func (h *TimetableHandler) Units(c *gin.Context) {
	units, err := h.service.Units(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "total", len(units))
	response.JSON(c, http.StatusOK, units, nil, middleware.ResponseMeta(c))
}

// Candidates godoc
// @Summary List the slots a class could take
// @Tags Horarios
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.CandidateRequest true "Class to place"
// @Success 200 {object} response.Envelope
// @Router /horarios/sesiones/{id}/candidatos [post]
func (h *TimetableHandler) Candidates(c *gin.Context) {
	var req dto.CandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid candidate payload"))
		return
	}
	candidates, err := h.service.Candidates(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "total", len(candidates))
	response.JSON(c, http.StatusOK, candidates, nil, middleware.ResponseMeta(c))
}

// StartCreation godoc
// @Summary Run the creation sequence of a curricular unit
// @Description An empty body resumes a sequence that was waiting on a move.
// @Tags Horarios
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.CreateClassesRequest false "Selection"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /horarios/sesiones/{id}/crear [post]
func (h *TimetableHandler) StartCreation(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateClassesRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid creation payload"))
		return
	}
	result, err := h.service.StartCreation(c.Request.Context(), c.Param("id"), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// SelectMove godoc
// @Summary Select a class to move and list its destinations
// @Tags Horarios
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.SelectMoveRequest true "Class"
// @Success 200 {object} response.Envelope
// @Router /horarios/sesiones/{id}/mover [post]
func (h *TimetableHandler) SelectMove(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.SelectMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid move payload"))
		return
	}
	selection, err := h.service.SelectMove(c.Request.Context(), c.Param("id"), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, selection, nil)
}

// CommitMove godoc
// @Summary Move the selected class to one of its destinations
// @Tags Horarios
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.CommitMoveRequest true "Destination"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /horarios/sesiones/{id}/mover/confirmar [post]
func (h *TimetableHandler) CommitMove(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.CommitMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid move destination"))
		return
	}
	result, err := h.service.CommitMove(c.Request.Context(), c.Param("id"), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// CancelMove godoc
// @Summary Cancel the current move selection
// @Tags Horarios
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /horarios/sesiones/{id}/mover [delete]
func (h *TimetableHandler) CancelMove(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	view, err := h.service.CancelMove(c.Param("id"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// DeleteClass godoc
// @Summary Delete a class from the session grid
// @Tags Horarios
// @Produce json
// @Param id path string true "Session ID"
// @Param claseId path int true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /horarios/sesiones/{id}/clases/{claseId} [delete]
func (h *TimetableHandler) DeleteClass(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	classID, err := strconv.Atoi(c.Param("claseId"))
	if err != nil || classID == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid class id"))
		return
	}
	view, err := h.service.DeleteClass(c.Param("id"), actor, classID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Reset godoc
// @Summary Discard local changes and return to the last saved grid
// @Tags Horarios
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /horarios/sesiones/{id}/restablecer [post]
func (h *TimetableHandler) Reset(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	view, err := h.service.Reset(c.Param("id"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Discard godoc
// @Summary Close an editing session without saving
// @Tags Horarios
// @Param id path string true "Session ID"
// @Success 204
// @Router /horarios/sesiones/{id} [delete]
func (h *TimetableHandler) Discard(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if err := h.service.Discard(c.Param("id"), actor); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Commit godoc
// @Summary Persist the session changes
// @Tags Horarios
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /horarios/sesiones/{id}/guardar [post]
func (h *TimetableHandler) Commit(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	report, err := h.service.Commit(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Export godoc
// @Summary Export the session grid
// @Tags Horarios
// @Produce application/pdf
// @Param id path string true "Session ID"
// @Param format query string false "csv, pdf or xlsx"
// @Success 200 {file} binary
// @Router /horarios/sesiones/{id}/exportar [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	format := strings.TrimSpace(c.Query("format"))
	file, err := h.service.Export(c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
