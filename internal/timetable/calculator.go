package timetable

import (
	"go.uber.org/zap"

	"github.com/noah-isme/pnf-horario-api/internal/models"
)

// Candidate is a contiguous run of blocks a class can be placed on.
type Candidate struct {
	DayIndex int     `json:"dia_index"`
	Start    Block   `json:"hora_inicio"`
	End      Block   `json:"hora_fin"`
	Blocks   []Block `json:"horas_bloques"`
	Needed   int     `json:"bloques_necesarios"`
}

// SlotRequest describes the class to place and where it may go.
type SlotRequest struct {
	Window   models.AvailabilityWindow
	Blocks   int
	Class    models.ClassAssignment
	Detector ConflictDetector
}

// Candidates enumerates every valid placement of the requested class inside
// one availability window, in ascending time order. Malformed input yields
// no candidates.
func (s *Schedule) Candidates(req SlotRequest) []Candidate {
	day, ok := DayIndex(req.Window.DayName)
	if !ok {
		s.logger.Debug("availability window with unknown day", zap.String("dia_semana", req.Window.DayName))
		return nil
	}
	start, okStart := ParseClock(req.Window.StartTime)
	end, okEnd := ParseClock(req.Window.EndTime)
	if !okStart || !okEnd || start >= end {
		s.logger.Debug("malformed availability window",
			zap.String("hora_inicio", req.Window.StartTime),
			zap.String("hora_fin", req.Window.EndTime),
		)
		return nil
	}
	if req.Blocks <= 0 || req.Class.ProfessorID == 0 || req.Class.UnitID == 0 {
		s.logger.Debug("incomplete slot request", zap.Int("blocks", req.Blocks), zap.Int("class_id", req.Class.ID))
		return nil
	}

	if s.unitScheduledOn(day, req.Class.UnitID, req.Class.ID) {
		return nil
	}

	var filtered []Block
	for _, b := range BlocksBetween(start, end, false) {
		if s.HasBlock(b) {
			filtered = append(filtered, b)
		}
	}

	var out []Candidate
	for i := 0; i+req.Blocks <= len(filtered); i++ {
		run := filtered[i : i+req.Blocks]
		if !ascending(run) {
			continue
		}
		if !s.runAccepts(day, run, req.Class) {
			continue
		}
		if req.Detector != nil && !req.Detector.Available(Proposal{
			ProfessorID: req.Class.ProfessorID,
			Day:         day,
			Start:       run[0],
			Blocks:      req.Blocks,
			ExcludeID:   req.Class.ID,
		}) {
			continue
		}

		candidateEnd := run[len(run)-1].Add(1)
		if i+req.Blocks < len(filtered) {
			candidateEnd = filtered[i+req.Blocks]
		}
		blocks := make([]Block, len(run))
		copy(blocks, run)
		out = append(out, Candidate{
			DayIndex: day,
			Start:    run[0],
			End:      candidateEnd,
			Blocks:   blocks,
			Needed:   req.Blocks,
		})
	}
	return out
}

// CandidatesForWindows runs the calculator over each window and concatenates
// the results in window order. Overlapping windows on the same day yield each
// start once, as found first.
func (s *Schedule) CandidatesForWindows(windows []models.AvailabilityWindow, req SlotRequest) []Candidate {
	type slot struct {
		day   int
		start Block
	}
	var out []Candidate
	seen := make(map[slot]struct{})
	for _, window := range windows {
		req.Window = window
		for _, c := range s.Candidates(req) {
			key := slot{day: c.DayIndex, start: c.Start}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

func (s *Schedule) unitScheduledOn(day, unitID, classID int) bool {
	for _, cell := range s.days[day].Cells {
		if cell == nil {
			continue
		}
		if cell.Class.UnitID == unitID && cell.Class.ID != classID {
			return true
		}
	}
	return false
}

// runAccepts allows empty cells, cells of the class itself and cells held by
// another professor; only professor double-booking is rejected here.
func (s *Schedule) runAccepts(day int, run []Block, class models.ClassAssignment) bool {
	for _, b := range run {
		cell := s.days[day].Cells[b]
		if cell == nil || cell.Class.ID == class.ID {
			continue
		}
		if cell.Class.ProfessorID == class.ProfessorID {
			return false
		}
	}
	return true
}

func ascending(run []Block) bool {
	for i := 1; i < len(run); i++ {
		if run[i] <= run[i-1] {
			return false
		}
	}
	return true
}
