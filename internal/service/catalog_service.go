package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/pnf-horario-api/internal/dto"
	"github.com/noah-isme/pnf-horario-api/internal/models"
	appErrors "github.com/noah-isme/pnf-horario-api/pkg/errors"
)

type professorSearcher interface {
	SearchAvailable(ctx context.Context, filter models.ProfessorSearch) ([]models.Professor, error)
}

type classroomSearcher interface {
	SearchClassrooms(ctx context.Context, filter models.ClassroomSearch) ([]models.Classroom, error)
}

type snapshotReader interface {
	Professor(ctx context.Context, professorID int) (*models.ScheduleSnapshot, error)
	Classroom(ctx context.Context, classroomID int) (*models.ScheduleSnapshot, error)
}

// CatalogService answers the lookups that feed the editor: candidate
// professors and classrooms, curricular units and existing weekly schedules.
type CatalogService struct {
	professors professorSearcher
	classrooms classroomSearcher
	units      unitStore
	snapshots  snapshotReader
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(professors professorSearcher, classrooms classroomSearcher, units unitStore, snapshots snapshotReader, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		professors: professors,
		classrooms: classrooms,
		units:      units,
		snapshots:  snapshots,
		validator:  validate,
		logger:     logger,
	}
}

// SearchProfessors lists professors with enough free hours for the section.
func (s *CatalogService) SearchProfessors(ctx context.Context, sectionID int, req dto.ProfessorSearchRequest) ([]models.Professor, error) {
	if sectionID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid section id")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid professor search")
	}
	filter := models.ProfessorSearch{
		SectionID:     sectionID,
		RequiredHours: req.RequiredHours,
		UnitID:        req.UnitID,
		Search:        strings.TrimSpace(req.Search),
		Mode:          req.Mode,
	}
	professors, err := s.professors.SearchAvailable(ctx, filter)
	if err != nil {
		s.logger.Error("search professors", zap.Int("section_id", sectionID), zap.String("mode", filter.ResolvedMode()), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search professors")
	}
	if professors == nil {
		professors = []models.Professor{}
	}
	return professors, nil
}

// SearchClassrooms lists classrooms free for the hours the professor needs.
func (s *CatalogService) SearchClassrooms(ctx context.Context, sectionID int, req dto.ClassroomSearchRequest) ([]models.Classroom, error) {
	if sectionID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid section id")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid classroom search")
	}
	classrooms, err := s.classrooms.SearchClassrooms(ctx, models.ClassroomSearch{
		SectionID:     sectionID,
		ProfessorID:   req.ProfessorID,
		RequiredHours: req.RequiredHours,
		UnitID:        req.UnitID,
		Search:        strings.TrimSpace(req.Search),
	})
	if err != nil {
		s.logger.Error("search classrooms", zap.Int("section_id", sectionID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search classrooms")
	}
	if classrooms == nil {
		classrooms = []models.Classroom{}
	}
	return classrooms, nil
}

// Units lists the curricular units of a trayecto.
func (s *CatalogService) Units(ctx context.Context, trayectoID int) ([]models.CurricularUnit, error) {
	if trayectoID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid trayecto id")
	}
	units, err := s.units.ListByTrayecto(ctx, trayectoID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load curricular units")
	}
	if units == nil {
		units = []models.CurricularUnit{}
	}
	return units, nil
}

// ProfessorSchedule returns the weekly schedule of a professor.
func (s *CatalogService) ProfessorSchedule(ctx context.Context, professorID int) (*models.ScheduleSnapshot, error) {
	if professorID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid professor id")
	}
	snapshot, err := s.snapshots.Professor(ctx, professorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor schedule")
	}
	return snapshot, nil
}

// ClassroomSchedule returns the weekly schedule of a classroom.
func (s *CatalogService) ClassroomSchedule(ctx context.Context, classroomID int) (*models.ScheduleSnapshot, error) {
	if classroomID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid classroom id")
	}
	snapshot, err := s.snapshots.Classroom(ctx, classroomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom schedule")
	}
	return snapshot, nil
}
