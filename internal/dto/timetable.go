package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/pnf-horario-api/internal/models"
	"github.com/noah-isme/pnf-horario-api/internal/timetable"
)

// ProfessorRefKind tags the variant held by a ProfessorRef.
type ProfessorRefKind int

const (
	ProfessorRefNone ProfessorRefKind = iota
	ProfessorRefKnown
	ProfessorRefQuery
	ProfessorRefByID
)

// ProfessorRef is how a client names the professor of an operation: a full
// record, a free-text search or a bare id. It is resolved to a professor
// before reaching the engine.
type ProfessorRef struct {
	Kind   ProfessorRefKind
	Record *models.Professor
	Query  string
	ID     int
}

// KnownProfessor wraps a professor record.
func KnownProfessor(p models.Professor) ProfessorRef {
	return ProfessorRef{Kind: ProfessorRefKnown, Record: &p, ID: p.ID}
}

// ProfessorByID references a professor by id.
func ProfessorByID(id int) ProfessorRef {
	return ProfessorRef{Kind: ProfessorRefByID, ID: id}
}

// ProfessorQuery references a professor by free-text search.
func ProfessorQuery(q string) ProfessorRef {
	return ProfessorRef{Kind: ProfessorRefQuery, Query: q}
}

// IsZero reports whether no professor was given.
func (r ProfessorRef) IsZero() bool {
	return r.Kind == ProfessorRefNone
}

// UnmarshalJSON accepts an object, a number or a string. Digit-only strings
// are treated as ids.
func (r *ProfessorRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = ProfessorRef{}
		return nil
	}

	switch data[0] {
	case '{':
		var p models.Professor
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("professor record: %w", err)
		}
		if p.ID <= 0 {
			return fmt.Errorf("professor record without id_profesor")
		}
		*r = KnownProfessor(p)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*r = ProfessorRef{}
			return nil
		}
		if id, err := strconv.Atoi(s); err == nil && id > 0 {
			*r = ProfessorByID(id)
			return nil
		}
		*r = ProfessorQuery(s)
	default:
		var id int
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("professor reference must be an object, id or search text: %w", err)
		}
		if id <= 0 {
			return fmt.Errorf("professor id must be positive")
		}
		*r = ProfessorByID(id)
	}
	return nil
}

// MarshalJSON writes the reference back in the shape it was given.
func (r ProfessorRef) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case ProfessorRefKnown:
		return json.Marshal(r.Record)
	case ProfessorRefQuery:
		return json.Marshal(r.Query)
	case ProfessorRefByID:
		return json.Marshal(r.ID)
	default:
		return []byte("null"), nil
	}
}

// OpenSessionRequest loads a section grid into a new editing session.
type OpenSessionRequest struct {
	SectionID int `json:"id_seccion" validate:"required,min=1"`
}

// CandidateRequest asks for the slots a class of the given size could take.
type CandidateRequest struct {
	Professor   ProfessorRef `json:"profesor"`
	UnitID      int          `json:"id_unidad_curricular" validate:"required,min=1"`
	ClassroomID int          `json:"id_aula" validate:"omitempty,min=1"`
	Blocks      int          `json:"horas_bloques" validate:"required,min=1,max=12"`
}

// CreateClassesRequest starts the creation sequence of a unit. An empty
// request resumes a sequence that was waiting on a move.
type CreateClassesRequest struct {
	Professor   ProfessorRef `json:"profesor"`
	ClassroomID int          `json:"id_aula" validate:"omitempty,min=1"`
	UnitID      int          `json:"id_unidad_curricular" validate:"omitempty,min=1"`
}

// Empty reports whether nothing was selected.
func (r CreateClassesRequest) Empty() bool {
	return r.Professor.IsZero() && r.ClassroomID == 0 && r.UnitID == 0
}

// SelectMoveRequest picks the class to move.
type SelectMoveRequest struct {
	ClassID int `json:"id" validate:"required"`
}

// CommitMoveRequest picks the destination among the offered candidates.
type CommitMoveRequest struct {
	DayIndex int             `json:"dia_index" validate:"min=0,max=5"`
	Start    timetable.Block `json:"hora_inicio" validate:"required"`
}

// ProfessorSearchRequest filters candidate professors for a section.
type ProfessorSearchRequest struct {
	RequiredHours int    `json:"horas_necesarias" validate:"required,min=1"`
	UnitID        int    `json:"id_unidad_curricular" validate:"omitempty,min=1"`
	Search        string `json:"search"`
	Mode          string `json:"modo" validate:"omitempty,oneof=general nueva_asignacion completar_horas"`
}

// ClassroomSearchRequest filters candidate classrooms for a section.
type ClassroomSearchRequest struct {
	ProfessorID   int    `json:"id_profesor" validate:"required,min=1"`
	RequiredHours int    `json:"horas_necesarias" validate:"required,min=1"`
	UnitID        int    `json:"id_unidad_curricular" validate:"omitempty,min=1"`
	Search        string `json:"busqueda_aula"`
}

// SessionView is the client representation of an editing session.
type SessionView struct {
	ID               string                   `json:"id_sesion"`
	Section          models.Section           `json:"seccion"`
	Schedule         *timetable.Schedule      `json:"horario"`
	PendingDeletions []int                    `json:"eliminaciones_pendientes"`
	Creation         timetable.CreationState  `json:"creacion"`
	Moving           *timetable.MoveSelection `json:"mover,omitempty"`
	Dirty            bool                     `json:"cambios_pendientes"`
	Invalid          []string                 `json:"inconsistencias,omitempty"`
	ExpiresAt        time.Time                `json:"expira"`
}

// CreationResult reports a creation run together with the refreshed units.
type CreationResult struct {
	Report timetable.CreationReport `json:"reporte"`
	Units  []models.CurricularUnit  `json:"unidades"`
}

// ClassConflict is a pending class the persistence layer refused.
type ClassConflict struct {
	ClassID   int                       `json:"id"`
	Conflicts []models.ScheduleConflict `json:"conflictos"`
}

// Notice levels.
const (
	NoticeInfo    = "info"
	NoticeWarning = "warning"
	NoticeError   = "error"
)

// Notice is a user-facing message produced while committing.
type Notice struct {
	Level   string `json:"nivel"`
	ClassID int    `json:"id,omitempty"`
	Message string `json:"mensaje"`
}

// CommitReport summarises a commit of a session.
type CommitReport struct {
	Created   int             `json:"creadas"`
	Updated   int             `json:"actualizadas"`
	Deleted   int             `json:"eliminadas"`
	Conflicts []ClassConflict `json:"conflictos"`
	Notices   []Notice        `json:"avisos"`
	Committed bool            `json:"confirmado"`
}

// MoveResult reports a committed move and, when a creation sequence was
// waiting on it, the resumed run.
type MoveResult struct {
	Class    timetable.Span            `json:"clase"`
	Creation *timetable.CreationReport `json:"creacion,omitempty"`
}
