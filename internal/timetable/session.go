package timetable

import (
	"go.uber.org/zap"

	"github.com/noah-isme/pnf-horario-api/internal/models"
)

// MoveSelection is the class picked for a move and its valid destinations.
type MoveSelection struct {
	ClassID    int         `json:"id"`
	Candidates []Candidate `json:"candidatos"`
}

// CreationReport summarises one creation run.
type CreationReport struct {
	State    CreationState `json:"estado"`
	Placed   []Span        `json:"ubicadas"`
	Unplaced []int         `json:"sin_ubicar,omitempty"`
	Waiting  bool          `json:"en_espera"`
}

// Session is the single owner of a section grid during editing. It keeps the
// baseline snapshot used by Reset, the creation state machine and the
// current move selection. It is not safe for concurrent use.
type Session struct {
	schedule *Schedule
	baseline *Schedule
	creation CreationState
	selected Selection
	moving   *MoveSelection
	logger   *zap.Logger
}

// NewSession takes ownership of the grid and snapshots it as the baseline.
func NewSession(schedule *Schedule, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{schedule: schedule, baseline: schedule.Clone(), logger: logger}
}

// Schedule returns the grid being edited.
func (s *Session) Schedule() *Schedule {
	return s.schedule
}

// Creation returns the creation state.
func (s *Session) Creation() CreationState {
	return s.creation
}

// Moving returns the active move selection, nil when none.
func (s *Session) Moving() *MoveSelection {
	return s.moving
}

// BeginCreation starts a sequence for the selection. A running sequence or
// an incomplete selection leaves the state untouched.
func (s *Session) BeginCreation(sel Selection) CreationState {
	next := s.creation.Begin(sel)
	if next.Phase == PhasePlanning {
		s.selected = sel
		next = next.Start()
		s.logger.Info("creation sequence planned", zap.Int("unit_id", sel.Unit.ID), zap.Ints("plan", next.Plan))
	}
	s.creation = next
	return s.creation
}

// StepCreation places the current planned class on the first accepted
// candidate and advances. It waits, without touching the state, while a move
// is selected. A class with no accepted candidate is skipped.
func (s *Session) StepCreation(detector ConflictDetector) (Span, int, bool) {
	size, ok := s.creation.Current()
	if !ok || s.moving != nil {
		return Span{}, 0, false
	}

	class := s.newClass(size)
	candidates := s.schedule.CandidatesForWindows(s.selected.Professor.Availability, SlotRequest{
		Blocks:   size,
		Class:    class,
		Detector: detector,
	})

	var (
		span   Span
		placed bool
	)
	for _, candidate := range candidates {
		if span, placed = s.schedule.Occupy(candidate, class); placed {
			break
		}
	}
	if !placed {
		s.logger.Warn("no slot available for planned class",
			zap.Int("unit_id", class.UnitID),
			zap.Int("professor_id", class.ProfessorID),
			zap.Int("size", size),
		)
	}
	s.creation = s.creation.Advance()
	if !placed {
		return Span{}, size, true
	}
	return span, 0, true
}

// RunCreation begins a sequence when idle and steps it until it ends or has
// to wait for a move to resolve.
func (s *Session) RunCreation(sel Selection, detector ConflictDetector) CreationReport {
	s.BeginCreation(sel)
	report := CreationReport{}
	for s.creation.Phase == PhasePlacing {
		span, skipped, stepped := s.StepCreation(detector)
		if !stepped {
			report.Waiting = true
			break
		}
		if skipped > 0 {
			report.Unplaced = append(report.Unplaced, skipped)
			continue
		}
		report.Placed = append(report.Placed, span)
	}
	report.State = s.creation
	return report
}

func (s *Session) newClass(size int) models.ClassAssignment {
	sel := s.selected
	class := models.ClassAssignment{
		ID:                 s.schedule.NextTemporaryID(),
		SectionID:          sel.SectionID,
		ProfessorID:        sel.Professor.ID,
		ProfessorFirstName: sel.Professor.FirstName,
		ProfessorLastName:  sel.Professor.LastName,
		UnitID:             sel.Unit.ID,
		UnitName:           sel.Unit.Name,
		Hours:              size,
		New:                true,
	}
	if sel.Classroom != nil {
		class.ClassroomID = sel.Classroom.ID
		class.ClassroomCode = sel.Classroom.Code
	}
	return class
}

// SelectForMove marks a class for moving and computes its destinations using
// the class's own professor, unit and size. Only destinations CommitMove can
// write are offered.
func (s *Session) SelectForMove(id int, windows []models.AvailabilityWindow, detector ConflictDetector) (*MoveSelection, bool) {
	span, ok := s.schedule.FindClass(id)
	if !ok {
		return nil, false
	}
	size := len(span.Blocks)
	if anchor := s.schedule.Cell(span.Day, span.Start()); anchor != nil && anchor.SpanLength > 0 {
		size = anchor.SpanLength
	}
	all := s.schedule.CandidatesForWindows(windows, SlotRequest{
		Blocks:   size,
		Class:    span.Class,
		Detector: detector,
	})
	// The calculator lets a run cross another professor's class; a move can
	// only land where the grid has room.
	candidates := make([]Candidate, 0, len(all))
	for _, c := range all {
		if s.schedule.Writable(c, id) {
			candidates = append(candidates, c)
		}
	}
	s.moving = &MoveSelection{ClassID: id, Candidates: candidates}
	return s.moving, true
}

// CommitMove frees the selected class and occupies the chosen destination.
// The destination must be one of the computed candidates. The grid is left
// untouched when the destination cannot be written.
func (s *Session) CommitMove(day int, start Block) (Span, bool) {
	if s.moving == nil {
		return Span{}, false
	}
	var chosen *Candidate
	for i := range s.moving.Candidates {
		c := s.moving.Candidates[i]
		if c.DayIndex == day && c.Start == start {
			chosen = &c
			break
		}
	}
	if chosen == nil {
		return Span{}, false
	}
	original, ok := s.schedule.FindClass(s.moving.ClassID)
	if !ok {
		s.moving = nil
		return Span{}, false
	}

	moved := original.Class
	if !moved.New {
		moved.Moved = true
	}

	snapshot := s.schedule.Clone()
	s.schedule.Free(moved.ID)
	span, placed := s.schedule.Occupy(*chosen, moved)
	if !placed {
		s.schedule = snapshot
		return Span{}, false
	}
	s.moving = nil
	return span, true
}

// CancelMove drops the move selection without touching the grid.
func (s *Session) CancelMove() {
	s.moving = nil
}

// DeleteClass removes an unpersisted class from the grid, or queues a
// persisted one for deletion at commit time.
func (s *Session) DeleteClass(id int) bool {
	span, ok := s.schedule.FindClass(id)
	if !ok {
		return false
	}
	if s.moving != nil && s.moving.ClassID == id {
		s.moving = nil
	}
	if span.Class.New {
		return s.schedule.Free(id)
	}
	s.schedule.queueDeletion(id)
	return true
}

// ConfirmSaved applies a create or update the server accepted. The class
// takes its persisted id with its pending flags cleared, and the baseline
// adopts the span so Reset keeps it. A zero persistedID keeps the current id.
func (s *Session) ConfirmSaved(id, persistedID int) (Span, bool) {
	if persistedID == 0 {
		persistedID = id
	}
	updated := s.schedule.UpdateClass(id, func(c *models.ClassAssignment) {
		c.ID = persistedID
		c.New = false
		c.Moved = false
		c.Conflicts = nil
	})
	if !updated {
		return Span{}, false
	}
	span, _ := s.schedule.FindClass(persistedID)

	s.baseline.Free(id)
	s.baseline.Free(persistedID)
	if evicted := s.baseline.adopt(s.schedule, span); len(evicted) > 0 {
		s.logger.Debug("saved class displaced baseline classes",
			zap.Int("class_id", persistedID),
			zap.Ints("evicted", evicted),
		)
	}
	if s.moving != nil && s.moving.ClassID == id {
		s.moving.ClassID = persistedID
	}
	return span, true
}

// ConfirmDeleted drops a class the server deleted from the grid, the
// deletion queue and the baseline.
func (s *Session) ConfirmDeleted(id int) {
	s.schedule.Free(id)
	s.schedule.dropPending(id)
	s.baseline.Free(id)
}

// Reset discards every unconfirmed local change and returns to the baseline
// grid, which carries every operation the server has accepted.
func (s *Session) Reset() {
	s.schedule = s.baseline.Clone()
	s.creation = CreationState{}
	s.selected = Selection{}
	s.moving = nil
}

// MarkCommitted makes the current grid the new baseline.
func (s *Session) MarkCommitted() {
	s.baseline = s.schedule.Clone()
}

// Dirty reports whether the grid carries unsaved changes.
func (s *Session) Dirty() bool {
	if len(s.schedule.pending) > 0 {
		return true
	}
	for _, span := range s.schedule.Spans() {
		if span.Class.Pending() {
			return true
		}
	}
	return false
}
