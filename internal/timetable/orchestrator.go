package timetable

import (
	"fmt"

	"github.com/noah-isme/pnf-horario-api/internal/models"
)

// Phase tags the state of a creation sequence.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePlanning
	PhasePlacing
)

func (p Phase) String() string {
	switch p {
	case PhasePlanning:
		return "planning"
	case PhasePlacing:
		return "placing"
	default:
		return "idle"
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name. Unknown names are rejected.
func (p *Phase) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*p = PhaseIdle
	case "planning":
		*p = PhasePlanning
	case "placing":
		*p = PhasePlacing
	default:
		return fmt.Errorf("unknown creation phase %q", text)
	}
	return nil
}

// Selection is what the coordinator picked before starting a sequence.
type Selection struct {
	SectionID int
	Professor *models.Professor
	Classroom *models.Classroom
	Unit      *models.CurricularUnit
}

// Complete reports whether professor, classroom and unit are all chosen.
func (s Selection) Complete() bool {
	return s.Professor != nil && s.Professor.ID != 0 &&
		s.Classroom != nil && s.Classroom.ID != 0 &&
		s.Unit != nil && s.Unit.ID != 0
}

// CreationState is the value of the sequential creation state machine.
// Transitions never mutate the receiver.
type CreationState struct {
	Phase Phase `json:"fase"`
	Plan  []int `json:"plan,omitempty"`
	Index int   `json:"indice"`
}

// InProgress reports whether a sequence is running.
func (s CreationState) InProgress() bool {
	return s.Phase != PhaseIdle
}

// Begin moves Idle to Planning with the unit's split. It is a no-op when a
// sequence is already running or the selection is incomplete.
func (s CreationState) Begin(sel Selection) CreationState {
	if s.Phase != PhaseIdle || !sel.Complete() {
		return s
	}
	return CreationState{Phase: PhasePlanning, Plan: PlanUnit(*sel.Unit), Index: 0}
}

// Start enters Placing at the first planned class, or returns to Idle when
// there is nothing to place.
func (s CreationState) Start() CreationState {
	if s.Phase != PhasePlanning {
		return s
	}
	if len(s.Plan) == 0 {
		return CreationState{}
	}
	return CreationState{Phase: PhasePlacing, Plan: s.Plan, Index: 0}
}

// Advance resolves the current planned class and moves to the next one,
// clearing the plan once it is exhausted.
func (s CreationState) Advance() CreationState {
	if s.Phase != PhasePlacing {
		return s
	}
	if s.Index+1 >= len(s.Plan) {
		return CreationState{}
	}
	return CreationState{Phase: PhasePlacing, Plan: s.Plan, Index: s.Index + 1}
}

// Current returns the size of the class being placed.
func (s CreationState) Current() (int, bool) {
	if s.Phase != PhasePlacing || s.Index < 0 || s.Index >= len(s.Plan) {
		return 0, false
	}
	return s.Plan[s.Index], true
}
