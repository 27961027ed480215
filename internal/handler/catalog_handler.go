package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pnf-horario-api/internal/dto"
	"github.com/noah-isme/pnf-horario-api/internal/middleware"
	"github.com/noah-isme/pnf-horario-api/internal/models"
	appErrors "github.com/noah-isme/pnf-horario-api/pkg/errors"
	"github.com/noah-isme/pnf-horario-api/pkg/response"
)

type catalogService interface {
	SearchProfessors(ctx context.Context, sectionID int, req dto.ProfessorSearchRequest) ([]models.Professor, error)
	SearchClassrooms(ctx context.Context, sectionID int, req dto.ClassroomSearchRequest) ([]models.Classroom, error)
	Units(ctx context.Context, trayectoID int) ([]models.CurricularUnit, error)
	ProfessorSchedule(ctx context.Context, professorID int) (*models.ScheduleSnapshot, error)
	ClassroomSchedule(ctx context.Context, classroomID int) (*models.ScheduleSnapshot, error)
}

// CatalogHandler serves the lookups used while editing a timetable.
type CatalogHandler struct {
	service catalogService
}

// NewCatalogHandler constructs a catalog handler.
func NewCatalogHandler(service catalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// SearchProfessors godoc
// @Summary Search professors available for a section
// @Tags Catalogo
// @Accept json
// @Produce json
// @Param id path int true "Section ID"
// @Param payload body dto.ProfessorSearchRequest true "Filters"
// @Success 200 {object} response.Envelope
// @Router /profesores/to/seccion/{id} [post]
func (h *CatalogHandler) SearchProfessors(c *gin.Context) {
	sectionID, ok := intParam(c, "id", "invalid section id")
	if !ok {
		return
	}
	var req dto.ProfessorSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid professor search"))
		return
	}
	professors, err := h.service.SearchProfessors(c.Request.Context(), sectionID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "total", len(professors))
	response.JSON(c, http.StatusOK, professors, nil, middleware.ResponseMeta(c))
}

// SearchClassrooms godoc
// @Summary Search classrooms available for a section
// @Tags Catalogo
// @Accept json
// @Produce json
// @Param id path int true "Section ID"
// @Param payload body dto.ClassroomSearchRequest true "Filters"
// @Success 200 {object} response.Envelope
// @Router /aulas/to/seccion/{id} [post]
func (h *CatalogHandler) SearchClassrooms(c *gin.Context) {
	sectionID, ok := intParam(c, "id", "invalid section id")
	if !ok {
		return
	}
	var req dto.ClassroomSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid classroom search"))
		return
	}
	classrooms, err := h.service.SearchClassrooms(c.Request.Context(), sectionID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "total", len(classrooms))
	response.JSON(c, http.StatusOK, classrooms, nil, middleware.ResponseMeta(c))
}

// Units godoc
// @Summary List the curricular units of a trayecto
// @Tags Catalogo
// @Produce json
// @Param id path int true "Trayecto ID"
// @Success 200 {object} response.Envelope
// @Router /trayectos/{id}/unidades-curriculares [get]
func (h *CatalogHandler) Units(c *gin.Context) {
	trayectoID, ok := intParam(c, "id", "invalid trayecto id")
	if !ok {
		return
	}
	units, err := h.service.Units(c.Request.Context(), trayectoID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, units, nil)
}

// ProfessorSchedule godoc
// @Summary Weekly schedule of a professor
// @Tags Catalogo
// @Produce json
// @Param id path int true "Professor ID"
// @Success 200 {object} response.Envelope
// @Router /horarios/profesor/{id} [get]
func (h *CatalogHandler) ProfessorSchedule(c *gin.Context) {
	professorID, ok := intParam(c, "id", "invalid professor id")
	if !ok {
		return
	}
	snapshot, err := h.service.ProfessorSchedule(c.Request.Context(), professorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}

// ClassroomSchedule godoc
// @Summary Weekly schedule of a classroom
// @Tags Catalogo
// @Produce json
// @Param id path int true "Classroom ID"
// @Success 200 {object} response.Envelope
// @Router /horarios/aula/{id} [get]
func (h *CatalogHandler) ClassroomSchedule(c *gin.Context) {
	classroomID, ok := intParam(c, "id", "invalid classroom id")
	if !ok {
		return
	}
	snapshot, err := h.service.ClassroomSchedule(c.Request.Context(), classroomID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}

func intParam(c *gin.Context, name, message string) (int, bool) {
	value, err := strconv.Atoi(c.Param(name))
	if err != nil || value <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, message))
		return 0, false
	}
	return value, true
}
