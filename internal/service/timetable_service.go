package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/noah-isme/pnf-horario-api/internal/dto"
	"github.com/noah-isme/pnf-horario-api/internal/models"
	"github.com/noah-isme/pnf-horario-api/internal/timetable"
	appErrors "github.com/noah-isme/pnf-horario-api/pkg/errors"
	"github.com/noah-isme/pnf-horario-api/pkg/jobs"
)

type scheduleStore interface {
	ListBySection(ctx context.Context, sectionID int) ([]models.ClassAssignment, error)
	Create(ctx context.Context, actor string, in models.CreateClassInput) (*models.ClassAssignment, error)
	Update(ctx context.Context, actor string, in models.UpdateClassInput) (*models.ClassAssignment, error)
	Delete(ctx context.Context, actor string, id int) error
}

type sectionStore interface {
	FindSection(ctx context.Context, id int) (*models.Section, error)
	FindClassroom(ctx context.Context, id int) (*models.Classroom, error)
}

type unitStore interface {
	ListByTrayecto(ctx context.Context, trayectoID int) ([]models.CurricularUnit, error)
}

type professorStore interface {
	FindByID(ctx context.Context, id int) (*models.Professor, error)
	ListAvailability(ctx context.Context, professorID int) ([]models.AvailabilityWindow, error)
	SearchAvailable(ctx context.Context, filter models.ProfessorSearch) ([]models.Professor, error)
}

type snapshotSource interface {
	Pair(ctx context.Context, professorID, classroomID int) (*models.ScheduleSnapshot, *models.ScheduleSnapshot, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type scheduleExporter interface {
	RenderSchedule(schedule *timetable.Schedule, section models.Section, format string) (*ExportFile, error)
}

// fullDayShift is used for sections without a configured shift.
var fullDayShift = timetable.Shift{Start: 700, End: 1945}

// TimetableConfig tunes the editing sessions.
type TimetableConfig struct {
	SessionTTL     time.Duration
	CheckClassroom bool
}

// TimetableService owns the editing sessions of section grids.
type TimetableService struct {
	schedules  scheduleStore
	sections   sectionStore
	units      unitStore
	professors professorStore
	snapshots  snapshotSource
	jobs       jobEnqueuer
	exports    scheduleExporter
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        TimetableConfig
	sessions   *cache.Cache
}

type editingSession struct {
	mu        sync.Mutex
	id        string
	section   models.Section
	units     []models.CurricularUnit
	engine    *timetable.Session
	selection timetable.Selection
	openedBy  string
}

// NewTimetableService wires the session service. snapshots, queue and
// exports may be nil.
func NewTimetableService(
	schedules scheduleStore,
	sections sectionStore,
	units unitStore,
	professors professorStore,
	snapshots snapshotSource,
	queue jobEnqueuer,
	exports scheduleExporter,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableConfig,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 2 * time.Hour
	}
	if exports == nil {
		exports = NewExportService(logger, nil, nil, nil)
	}
	sessions := cache.New(cfg.SessionTTL, cfg.SessionTTL/2)
	sessions.OnEvicted(func(id string, _ interface{}) {
		metrics.SessionClosed()
		logger.Debug("editing session closed", zap.String("session_id", id))
	})
	return &TimetableService{
		schedules:  schedules,
		sections:   sections,
		units:      units,
		professors: professors,
		snapshots:  snapshots,
		jobs:       queue,
		exports:    exports,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
		sessions:   sessions,
	}
}

// Open loads the grid of a section into a new editing session.
func (s *TimetableService) Open(ctx context.Context, actor string, req dto.OpenSessionRequest) (*dto.SessionView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}

	section, err := s.sections.FindSection(ctx, req.SectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	classes, err := s.schedules.ListBySection(ctx, section.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section classes")
	}
	units, err := s.units.ListByTrayecto(ctx, section.TrayectoID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load curricular units")
	}

	shift, ok := timetable.ParseShift(section.ShiftStart, section.ShiftEnd)
	if !ok {
		s.logger.Warn("section without usable shift, using full day",
			zap.Int("section_id", section.ID),
			zap.String("turno_hora_inicio", section.ShiftStart),
			zap.String("turno_hora_fin", section.ShiftEnd),
		)
		shift = fullDayShift
	}

	logger := s.logger.With(zap.Int("section_id", section.ID))
	grid := timetable.Initialize(classes, shift, logger)
	sess := &editingSession{
		id:       uuid.NewString(),
		section:  *section,
		units:    units,
		engine:   timetable.NewSession(grid, logger),
		openedBy: actor,
	}
	s.store(sess)
	s.metrics.SessionOpened()
	logger.Info("editing session opened",
		zap.String("session_id", sess.id),
		zap.String("actor", actor),
		zap.Int("classes", len(classes)),
	)
	return s.view(sess), nil
}

// Get returns the current state of a session.
func (s *TimetableService) Get(id string) (*dto.SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.view(sess), nil
}

// Units returns the curricular units of the section with hours derived from the grid.
func (s *TimetableService) Units(id string) ([]models.CurricularUnit, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.derivedUnits(), nil
}

// Candidates lists the slots a class of the requested size could take.
func (s *TimetableService) Candidates(ctx context.Context, id string, req dto.CandidateRequest) ([]timetable.Candidate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid candidate payload")
	}
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	unit, ok := sess.unit(req.UnitID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "curricular unit does not belong to the section trayecto")
	}
	professor, err := s.resolveProfessor(ctx, sess.section.ID, req.Professor, req.Blocks)
	if err != nil {
		return nil, err
	}
	detector, err := s.detector(ctx, sess, professor.ID, req.ClassroomID)
	if err != nil {
		return nil, err
	}

	class := models.ClassAssignment{
		SectionID:   sess.section.ID,
		ProfessorID: professor.ID,
		ClassroomID: req.ClassroomID,
		UnitID:      unit.ID,
		Hours:       req.Blocks,
	}
	candidates := sess.engine.Schedule().CandidatesForWindows(professor.Availability, timetable.SlotRequest{
		Blocks:   req.Blocks,
		Class:    class,
		Detector: detector,
	})
	s.metrics.ObserveCandidates("candidates", len(candidates))
	if candidates == nil {
		candidates = []timetable.Candidate{}
	}
	return candidates, nil
}

// StartCreation runs the creation sequence of a unit. An empty request
// resumes a sequence that was waiting on a move.
func (s *TimetableService) StartCreation(ctx context.Context, id, actor string, req dto.CreateClassesRequest) (*dto.CreationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid creation payload")
	}
	sess, err := s.owned(id, actor)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	running := sess.engine.Creation().InProgress()
	var sel timetable.Selection
	switch {
	case req.Empty():
		if !running || !sess.selection.Complete() {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no creation sequence to resume")
		}
		sel = sess.selection
	case running:
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "a creation sequence is already running")
	default:
		sel, err = s.selection(ctx, sess, req)
		if err != nil {
			return nil, err
		}
	}

	report, err := s.runCreation(ctx, sess, sel)
	if err != nil {
		return nil, err
	}
	return &dto.CreationResult{Report: report, Units: sess.derivedUnits()}, nil
}

func (s *TimetableService) selection(ctx context.Context, sess *editingSession, req dto.CreateClassesRequest) (timetable.Selection, error) {
	if req.ClassroomID == 0 || req.UnitID == 0 {
		return timetable.Selection{}, appErrors.Clone(appErrors.ErrValidation, "profesor, id_aula and id_unidad_curricular are required")
	}
	var unit *models.CurricularUnit
	for _, u := range sess.derivedUnits() {
		if u.ID == req.UnitID {
			u := u
			unit = &u
			break
		}
	}
	if unit == nil {
		return timetable.Selection{}, appErrors.Clone(appErrors.ErrValidation, "curricular unit does not belong to the section trayecto")
	}
	hours := unit.RequiredHours
	if unit.OutstandingHours != nil {
		hours = *unit.OutstandingHours
	}
	professor, err := s.resolveProfessor(ctx, sess.section.ID, req.Professor, hours)
	if err != nil {
		return timetable.Selection{}, err
	}
	classroom, err := s.sections.FindClassroom(ctx, req.ClassroomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return timetable.Selection{}, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return timetable.Selection{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}
	return timetable.Selection{
		SectionID: sess.section.ID,
		Professor: professor,
		Classroom: classroom,
		Unit:      unit,
	}, nil
}

func (s *TimetableService) runCreation(ctx context.Context, sess *editingSession, sel timetable.Selection) (timetable.CreationReport, error) {
	detector, err := s.detector(ctx, sess, sel.Professor.ID, sel.Classroom.ID)
	if err != nil {
		return timetable.CreationReport{}, err
	}
	report := sess.engine.RunCreation(sel, detector)
	if report.State.InProgress() {
		sess.selection = sel
	} else {
		sess.selection = timetable.Selection{}
	}
	s.logger.Info("creation run finished",
		zap.String("session_id", sess.id),
		zap.Int("unit_id", sel.Unit.ID),
		zap.Int("placed", len(report.Placed)),
		zap.Ints("unplaced", report.Unplaced),
		zap.Bool("waiting", report.Waiting),
	)
	return report, nil
}

// SelectMove marks a class for moving and returns its destinations.
func (s *TimetableService) SelectMove(ctx context.Context, id, actor string, req dto.SelectMoveRequest) (*timetable.MoveSelection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid move payload")
	}
	sess, err := s.owned(id, actor)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	grid := sess.engine.Schedule()
	span, ok := grid.FindClass(req.ClassID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found in session")
	}
	if grid.IsPendingDeletion(req.ClassID) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "class is queued for deletion")
	}

	windows, err := s.professors.ListAvailability(ctx, span.Class.ProfessorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor availability")
	}
	detector, err := s.detector(ctx, sess, span.Class.ProfessorID, span.Class.ClassroomID)
	if err != nil {
		return nil, err
	}
	selection, ok := sess.engine.SelectForMove(req.ClassID, windows, detector)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found in session")
	}
	s.metrics.ObserveCandidates("move", len(selection.Candidates))
	return selection, nil
}

// CommitMove places the selected class on one of its candidates and resumes
// a creation sequence that was waiting on the move.
func (s *TimetableService) CommitMove(ctx context.Context, id, actor string, req dto.CommitMoveRequest) (*dto.MoveResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid move destination")
	}
	sess, err := s.owned(id, actor)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.engine.Moving() == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no class selected for moving")
	}
	span, ok := sess.engine.CommitMove(req.DayIndex, req.Start)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrSlotUnavailable, fmt.Sprintf("%s %s is not a destination of the selected class", timetable.DayName(req.DayIndex), req.Start.Clock()))
	}
	result := &dto.MoveResult{Class: span}

	if sess.engine.Creation().InProgress() && sess.selection.Complete() {
		report, err := s.runCreation(ctx, sess, sess.selection)
		if err != nil {
			s.logger.Warn("resume creation after move", zap.String("session_id", sess.id), zap.Error(err))
		} else {
			result.Creation = &report
		}
	}
	return result, nil
}

// CancelMove drops the move selection.
func (s *TimetableService) CancelMove(id, actor string) (*dto.SessionView, error) {
	sess, err := s.owned(id, actor)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.engine.CancelMove()
	return s.view(sess), nil
}

// DeleteClass removes a class from the grid, queuing persisted ones for commit.
func (s *TimetableService) DeleteClass(id, actor string, classID int) (*dto.SessionView, error) {
	sess, err := s.owned(id, actor)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if !sess.engine.DeleteClass(classID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found in session")
	}
	return s.view(sess), nil
}

// Reset discards the local changes the server has not accepted.
func (s *TimetableService) Reset(id, actor string) (*dto.SessionView, error) {
	sess, err := s.owned(id, actor)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.engine.Reset()
	sess.selection = timetable.Selection{}
	return s.view(sess), nil
}

// Discard closes a session without saving.
func (s *TimetableService) Discard(id, actor string) error {
	if _, err := s.owned(id, actor); err != nil {
		return err
	}
	s.sessions.Delete(id)
	return nil
}

// Export renders the session grid.
func (s *TimetableService) Export(id, format string) (*ExportFile, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.exports.RenderSchedule(sess.engine.Schedule(), sess.section, format)
}

// Commit persists the local changes of a session. Collaborator failures are
// reported as notices and never abort the run. Every operation the server
// accepts is folded into the session baseline as it completes, and failed
// deletions stay queued for the next commit.
func (s *TimetableService) Commit(ctx context.Context, id, actor string) (*dto.CommitReport, error) {
	sess, err := s.owned(id, actor)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	report := &dto.CommitReport{Conflicts: []dto.ClassConflict{}, Notices: []dto.Notice{}}
	touched := newTouchedSet()
	failed := false
	grid := sess.engine.Schedule()

	for _, classID := range grid.PendingDeletions() {
		span, _ := grid.FindClass(classID)
		if err := s.schedules.Delete(ctx, actor, classID); err != nil {
			failed = true
			s.metrics.RecordCommitOperation("delete", "error")
			s.logger.Warn("delete class", zap.String("session_id", sess.id), zap.Int("class_id", classID), zap.Error(err))
			report.Notices = append(report.Notices, dto.Notice{
				Level:   dto.NoticeError,
				ClassID: classID,
				Message: fmt.Sprintf("class %d could not be deleted and stays queued: %v", classID, err),
			})
			continue
		}
		sess.engine.ConfirmDeleted(classID)
		touched.add(span.Class)
		report.Deleted++
		s.metrics.RecordCommitOperation("delete", "ok")
	}

	for _, span := range grid.Spans() {
		class := span.Class
		if !class.Pending() {
			continue
		}
		op, saved, err := s.persist(ctx, actor, span)

		var conflict *models.ScheduleConflictError
		switch {
		case errors.As(err, &conflict):
			grid.UpdateClass(class.ID, func(c *models.ClassAssignment) {
				c.Conflicts = conflict.Conflicts
			})
			report.Conflicts = append(report.Conflicts, dto.ClassConflict{ClassID: class.ID, Conflicts: conflict.Conflicts})
			s.metrics.RecordCommitOperation(op, "conflict")
		case err != nil:
			failed = true
			s.metrics.RecordCommitOperation(op, "error")
			s.logger.Warn("persist class", zap.String("session_id", sess.id), zap.String("operation", op), zap.Int("class_id", class.ID), zap.Error(err))
			report.Notices = append(report.Notices, dto.Notice{
				Level:   dto.NoticeError,
				ClassID: class.ID,
				Message: fmt.Sprintf("class %d could not be saved: %v", class.ID, err),
			})
		default:
			persistedID := 0
			if saved != nil {
				persistedID = saved.ID
			}
			sess.engine.ConfirmSaved(class.ID, persistedID)
			touched.add(class)
			if op == "create" {
				report.Created++
			} else {
				report.Updated++
			}
			s.metrics.RecordCommitOperation(op, "ok")
		}
	}

	if len(report.Conflicts) == 0 && !failed {
		sess.engine.MarkCommitted()
		report.Committed = true
	}
	if len(report.Conflicts) > 0 {
		report.Notices = append(report.Notices, dto.Notice{
			Level:   dto.NoticeWarning,
			Message: fmt.Sprintf("%d classes collide with existing schedules", len(report.Conflicts)),
		})
	}
	if total := report.Created + report.Updated + report.Deleted; total > 0 {
		report.Notices = append(report.Notices, dto.Notice{
			Level:   dto.NoticeInfo,
			Message: fmt.Sprintf("%d changes saved", total),
		})
	}
	s.invalidate(sess.id, touched.invalidation())

	s.logger.Info("session committed",
		zap.String("session_id", sess.id),
		zap.String("actor", actor),
		zap.String("opened_by", sess.openedBy),
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("deleted", report.Deleted),
		zap.Int("conflicts", len(report.Conflicts)),
		zap.Bool("committed", report.Committed),
	)
	return report, nil
}

func (s *TimetableService) persist(ctx context.Context, actor string, span timetable.Span) (string, *models.ClassAssignment, error) {
	class := span.Class
	hours := class.Hours
	if hours <= 0 {
		hours = len(span.Blocks)
	}
	day := timetable.DayName(span.Day)
	start := span.Start().ClockSeconds()

	if class.New {
		in := models.CreateClassInput{
			SectionID:   class.SectionID,
			ProfessorID: class.ProfessorID,
			UnitID:      class.UnitID,
			ClassroomID: class.ClassroomID,
			DayName:     day,
			StartTime:   start,
			Hours:       hours,
		}
		if err := s.validator.Struct(in); err != nil {
			return "create", nil, err
		}
		saved, err := s.schedules.Create(ctx, actor, in)
		return "create", saved, err
	}

	in := models.UpdateClassInput{ID: class.ID, DayName: day, StartTime: start, Hours: hours}
	if err := s.validator.Struct(in); err != nil {
		return "update", nil, err
	}
	saved, err := s.schedules.Update(ctx, actor, in)
	return "update", saved, err
}

func (s *TimetableService) invalidate(sessionID string, inv SnapshotInvalidation) {
	if s.jobs == nil || inv.Empty() {
		return
	}
	job := jobs.Job{ID: uuid.NewString(), Type: JobTypeSnapshotInvalidation, Payload: inv}
	if err := s.jobs.Enqueue(job); err != nil {
		s.logger.Warn("enqueue snapshot invalidation", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// resolveProfessor turns a client reference into a professor with its
// availability loaded.
func (s *TimetableService) resolveProfessor(ctx context.Context, sectionID int, ref dto.ProfessorRef, hours int) (*models.Professor, error) {
	var professor *models.Professor
	switch ref.Kind {
	case dto.ProfessorRefKnown:
		p := *ref.Record
		professor = &p
	case dto.ProfessorRefByID:
		p, err := s.professors.FindByID(ctx, ref.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "professor not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor")
		}
		professor = p
	case dto.ProfessorRefQuery:
		if hours <= 0 {
			hours = 1
		}
		found, err := s.professors.SearchAvailable(ctx, models.ProfessorSearch{
			SectionID:     sectionID,
			RequiredHours: hours,
			Search:        ref.Query,
			Mode:          models.ProfessorSearchGeneral,
		})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search professors")
		}
		switch len(found) {
		case 0:
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no professor matches %q", ref.Query))
		case 1:
			professor = &found[0]
		default:
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%d professors match %q", len(found), ref.Query))
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "profesor is required")
	}

	if len(professor.Availability) == 0 {
		windows, err := s.professors.ListAvailability(ctx, professor.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor availability")
		}
		professor.Availability = windows
	}
	return professor, nil
}

// detector checks proposals against the professor's and, when enabled, the
// classroom's classes in other sections. The section's own classes are
// judged by the grid.
func (s *TimetableService) detector(ctx context.Context, sess *editingSession, professorID, classroomID int) (timetable.ConflictDetector, error) {
	if s.snapshots == nil {
		return nil, nil
	}
	if !s.cfg.CheckClassroom {
		classroomID = 0
	}
	professor, classroom, err := s.snapshots.Pair(ctx, professorID, classroomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load conflicting schedules")
	}
	pending := sess.engine.Schedule().PendingDeletions()
	detectors := []timetable.ConflictDetector{
		timetable.NewSnapshotDetector(withoutSection(professor, sess.section.ID), pending, s.logger),
	}
	if classroom != nil {
		detectors = append(detectors, timetable.NewSnapshotDetector(withoutSection(classroom, sess.section.ID), pending, s.logger))
	}
	return timetable.AllOf(detectors...), nil
}

func withoutSection(snapshot *models.ScheduleSnapshot, sectionID int) *models.ScheduleSnapshot {
	if snapshot == nil {
		return nil
	}
	out := &models.ScheduleSnapshot{Days: make([]models.SnapshotDay, 0, len(snapshot.Days))}
	for _, day := range snapshot.Days {
		kept := make([]models.SnapshotClass, 0, len(day.Classes))
		for _, class := range day.Classes {
			if class.SectionID != sectionID {
				kept = append(kept, class)
			}
		}
		if len(kept) > 0 {
			out.Days = append(out.Days, models.SnapshotDay{Name: day.Name, Classes: kept})
		}
	}
	return out
}

func (s *TimetableService) store(sess *editingSession) {
	s.sessions.Set(sess.id, sess, s.cfg.SessionTTL)
}

// lookup fetches a live session and extends its lifetime.
func (s *TimetableService) lookup(id string) (*editingSession, error) {
	item, ok := s.sessions.Get(strings.TrimSpace(id))
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrSessionExpired, "")
	}
	sess := item.(*editingSession)
	s.store(sess)
	return sess, nil
}

// owned fetches a session for a mutating call. Only the user who opened it
// may change it.
func (s *TimetableService) owned(id, actor string) (*editingSession, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if sess.openedBy != actor {
		s.logger.Warn("session used by another user",
			zap.String("session_id", sess.id),
			zap.String("actor", actor),
			zap.String("opened_by", sess.openedBy),
		)
		return nil, appErrors.Clone(appErrors.ErrForbidden, "session was opened by another user")
	}
	return sess, nil
}

func (sess *editingSession) unit(id int) (models.CurricularUnit, bool) {
	for _, u := range sess.units {
		if u.ID == id {
			return u, true
		}
	}
	return models.CurricularUnit{}, false
}

func (sess *editingSession) derivedUnits() []models.CurricularUnit {
	return timetable.DeriveUnits(sess.units, sess.engine.Schedule())
}

// view renders the session. Callers hold sess.mu.
func (s *TimetableService) view(sess *editingSession) *dto.SessionView {
	grid := sess.engine.Schedule()
	view := &dto.SessionView{
		ID:               sess.id,
		Section:          sess.section,
		Schedule:         grid,
		PendingDeletions: grid.PendingDeletions(),
		Creation:         sess.engine.Creation(),
		Moving:           sess.engine.Moving(),
		Dirty:            sess.engine.Dirty(),
	}
	if _, expiresAt, ok := s.sessions.GetWithExpiration(sess.id); ok {
		view.ExpiresAt = expiresAt
	}
	if err := grid.Validate(); err != nil {
		view.Invalid = strings.Split(err.Error(), "\n")
	}
	return view
}

type touchedSet struct {
	professors map[int]struct{}
	classrooms map[int]struct{}
}

func newTouchedSet() *touchedSet {
	return &touchedSet{professors: map[int]struct{}{}, classrooms: map[int]struct{}{}}
}

func (t *touchedSet) add(class models.ClassAssignment) {
	if class.ProfessorID != 0 {
		t.professors[class.ProfessorID] = struct{}{}
	}
	if class.ClassroomID != 0 {
		t.classrooms[class.ClassroomID] = struct{}{}
	}
}

func (t *touchedSet) invalidation() SnapshotInvalidation {
	return SnapshotInvalidation{ProfessorIDs: sortedKeys(t.professors), ClassroomIDs: sortedKeys(t.classrooms)}
}

func sortedKeys(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
