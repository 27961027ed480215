package timetable

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/pnf-horario-api/internal/models"
)

// Cell is an occupied grid position. An empty position is a nil *Cell.
type Cell struct {
	Occupied   bool                   `json:"ocupado"`
	Offset     int                    `json:"bloque"`
	SpanLength int                    `json:"bloques_totales"`
	Class      models.ClassAssignment `json:"datos_clase"`
}

// Anchor reports whether the cell is the first block of its span.
func (c *Cell) Anchor() bool {
	return c != nil && c.Offset == 0
}

// Day holds the cells of one weekday keyed by block.
type Day struct {
	Name  string          `json:"dia"`
	Cells map[Block]*Cell `json:"horas"`
}

// Shift is the time-of-day window a section is taught in.
type Shift struct {
	Start Block
	End   Block
}

// ParseShift converts wire times into a shift.
func ParseShift(start, end string) (Shift, bool) {
	s, ok := ParseClock(start)
	if !ok {
		return Shift{}, false
	}
	e, ok := ParseClock(end)
	if !ok || e < s {
		return Shift{}, false
	}
	return Shift{Start: s, End: e}, true
}

// Span is the contiguous run of blocks held by one class on one day.
type Span struct {
	Day    int                    `json:"dia_index"`
	Blocks []Block                `json:"bloques"`
	Class  models.ClassAssignment `json:"datos_clase"`
}

// Start returns the anchor block.
func (s Span) Start() Block {
	if len(s.Blocks) == 0 {
		return 0
	}
	return s.Blocks[0]
}

// Candidate rebuilds the slot the span currently sits on.
func (s Span) Candidate() Candidate {
	end, ok := ParseClock(s.Class.EndTime)
	if !ok && len(s.Blocks) > 0 {
		end = s.Blocks[len(s.Blocks)-1].Add(1)
	}
	blocks := make([]Block, len(s.Blocks))
	copy(blocks, s.Blocks)
	return Candidate{DayIndex: s.Day, Start: s.Start(), End: end, Blocks: blocks, Needed: len(blocks)}
}

// Schedule is the weekly grid of one section. It owns its pending deletion
// queue and the temporary id sequence for classes not yet persisted.
type Schedule struct {
	shift   Shift
	blocks  []Block
	days    []Day
	pending []int
	nextTmp int
	logger  *zap.Logger
}

// NewSchedule builds an empty grid for the shift.
func NewSchedule(shift Shift, logger *zap.Logger) *Schedule {
	if logger == nil {
		logger = zap.NewNop()
	}
	blocks := BlocksBetween(shift.Start, shift.End, true)
	days := make([]Day, DaysPerWeek)
	for i := range days {
		cells := make(map[Block]*Cell, len(blocks))
		for _, b := range blocks {
			cells[b] = nil
		}
		days[i] = Day{Name: DayName(i), Cells: cells}
	}
	return &Schedule{shift: shift, blocks: blocks, days: days, nextTmp: -1, logger: logger}
}

// Initialize builds the grid for a section and places the persisted classes.
// Each class covers ceil((end-start)/45) positions laid out by raw minute
// arithmetic; positions outside the shift or on a break are skipped.
func Initialize(classes []models.ClassAssignment, shift Shift, logger *zap.Logger) *Schedule {
	s := NewSchedule(shift, logger)
	for _, class := range classes {
		s.place(class)
	}
	return s
}

func (s *Schedule) place(class models.ClassAssignment) {
	day, ok := DayIndex(class.DayName)
	if !ok {
		s.logger.Warn("skipping class with unknown day", zap.Int("class_id", class.ID), zap.String("dia_semana", class.DayName))
		return
	}
	start, okStart := MinutesOf(class.StartTime)
	end, okEnd := MinutesOf(class.EndTime)
	if !okStart || !okEnd || end <= start {
		s.logger.Warn("skipping class with invalid time range",
			zap.Int("class_id", class.ID),
			zap.String("hora_inicio", class.StartTime),
			zap.String("hora_fin", class.EndTime),
		)
		return
	}

	n := (end - start + BlockMinutes - 1) / BlockMinutes
	class.Hours = n
	cells := s.days[day].Cells
	written := 0
	for i := 0; i < n; i++ {
		b := BlockFromMinutes(start + i*BlockMinutes)
		current, inShift := cells[b]
		if !inShift || b.Ignored() {
			continue
		}
		if current != nil {
			s.logger.Warn("skipping overlapping class block",
				zap.Int("class_id", class.ID),
				zap.Int("occupied_by", current.Class.ID),
				zap.String("block", b.Clock()),
			)
			continue
		}
		cells[b] = &Cell{Occupied: true, Offset: i, SpanLength: n, Class: class}
		written++
	}
	if written > 0 && written < n {
		s.logger.Debug("class span rendered with gaps", zap.Int("class_id", class.ID), zap.Int("blocks", n), zap.Int("written", written))
	}
}

// Shift returns the shift the grid was built for.
func (s *Schedule) Shift() Shift {
	return s.shift
}

// Blocks returns the ordered blocks of the shift window, breaks included.
func (s *Schedule) Blocks() []Block {
	out := make([]Block, len(s.blocks))
	copy(out, s.blocks)
	return out
}

// Days exposes the grid days in order. Callers must not mutate the cells.
func (s *Schedule) Days() []Day {
	return s.days
}

// Cell returns the cell at the given position, nil when empty or unknown.
func (s *Schedule) Cell(day int, b Block) *Cell {
	if day < 0 || day >= len(s.days) {
		return nil
	}
	return s.days[day].Cells[b]
}

// HasBlock reports whether the block is represented by the grid.
func (s *Schedule) HasBlock(b Block) bool {
	if len(s.days) == 0 {
		return false
	}
	_, ok := s.days[0].Cells[b]
	return ok
}

// Anchor walks back from an occupied position to the first block of its
// span.
func (s *Schedule) Anchor(day int, b Block) (Block, *Cell) {
	cell := s.Cell(day, b)
	if cell == nil {
		return 0, nil
	}
	idx := s.blockIndex(b)
	for i := idx; i >= 0; i-- {
		candidate := s.Cell(day, s.blocks[i])
		if candidate == nil || candidate.Class.ID != cell.Class.ID {
			continue
		}
		if candidate.Offset == 0 {
			return s.blocks[i], candidate
		}
	}
	return b, cell
}

// FindClass locates the span of a class by id.
func (s *Schedule) FindClass(id int) (Span, bool) {
	for d := range s.days {
		var span *Span
		for _, b := range s.blocks {
			cell := s.days[d].Cells[b]
			if cell == nil || cell.Class.ID != id {
				continue
			}
			if span == nil {
				span = &Span{Day: d, Class: cell.Class}
			}
			if cell.Offset == 0 {
				span.Class = cell.Class
			}
			span.Blocks = append(span.Blocks, b)
		}
		if span != nil {
			return *span, true
		}
	}
	return Span{}, false
}

// Spans lists every class of the grid ordered by day and start block.
func (s *Schedule) Spans() []Span {
	var out []Span
	for d := range s.days {
		seen := make(map[int]int)
		for _, b := range s.blocks {
			cell := s.days[d].Cells[b]
			if cell == nil {
				continue
			}
			idx, ok := seen[cell.Class.ID]
			if !ok {
				out = append(out, Span{Day: d, Class: cell.Class})
				idx = len(out) - 1
				seen[cell.Class.ID] = idx
			}
			if cell.Offset == 0 {
				out[idx].Class = cell.Class
			}
			out[idx].Blocks = append(out[idx].Blocks, b)
		}
	}
	return out
}

// PendingDeletions lists persisted class ids queued for deletion.
func (s *Schedule) PendingDeletions() []int {
	out := make([]int, len(s.pending))
	copy(out, s.pending)
	return out
}

// IsPendingDeletion reports whether the id is queued for deletion.
func (s *Schedule) IsPendingDeletion(id int) bool {
	for _, pending := range s.pending {
		if pending == id {
			return true
		}
	}
	return false
}

// NextTemporaryID hands out negative ids for classes not yet persisted.
func (s *Schedule) NextTemporaryID() int {
	id := s.nextTmp
	s.nextTmp--
	return id
}

// Clone deep-copies the grid.
func (s *Schedule) Clone() *Schedule {
	clone := &Schedule{
		shift:   s.shift,
		blocks:  s.Blocks(),
		days:    make([]Day, len(s.days)),
		pending: s.PendingDeletions(),
		nextTmp: s.nextTmp,
		logger:  s.logger,
	}
	for i, day := range s.days {
		cells := make(map[Block]*Cell, len(day.Cells))
		for b, cell := range day.Cells {
			if cell == nil {
				cells[b] = nil
				continue
			}
			copied := *cell
			copied.Class.Conflicts = append([]models.ScheduleConflict(nil), cell.Class.Conflicts...)
			cells[b] = &copied
		}
		clone.days[i] = Day{Name: day.Name, Cells: cells}
	}
	return clone
}

// Validate checks that every span is internally consistent: one day per
// class, identical span length, and offsets 0..n-1 in time order.
func (s *Schedule) Validate() error {
	var errs []error
	dayOf := make(map[int]int)
	for _, span := range s.Spans() {
		id := span.Class.ID
		if d, ok := dayOf[id]; ok && d != span.Day {
			errs = append(errs, fmt.Errorf("class %d occupies %s and %s", id, DayName(d), DayName(span.Day)))
			continue
		}
		dayOf[id] = span.Day
		length := -1
		for i, b := range span.Blocks {
			cell := s.days[span.Day].Cells[b]
			if length == -1 {
				length = cell.SpanLength
			}
			if cell.SpanLength != length {
				errs = append(errs, fmt.Errorf("class %d has mixed span lengths on %s", id, DayName(span.Day)))
				break
			}
			if cell.Offset != i {
				errs = append(errs, fmt.Errorf("class %d has offset %d at %s, want %d", id, cell.Offset, b.Clock(), i))
				break
			}
		}
		if length != len(span.Blocks) {
			errs = append(errs, fmt.Errorf("class %d spans %d blocks, declares %d", id, len(span.Blocks), length))
		}
	}
	return errors.Join(errs...)
}

// Free empties every cell held by the class. Returns false when the class
// is not on the grid.
func (s *Schedule) Free(id int) bool {
	freed := false
	for d := range s.days {
		for b, cell := range s.days[d].Cells {
			if cell != nil && cell.Class.ID == id {
				s.days[d].Cells[b] = nil
				freed = true
			}
		}
	}
	return freed
}

// Occupy writes the class onto the candidate run. Every covered block must
// be on the grid, not a break, and either empty or already held by the same
// class; otherwise nothing is written.
func (s *Schedule) Occupy(c Candidate, class models.ClassAssignment) (Span, bool) {
	if !s.Writable(c, class.ID) {
		return Span{}, false
	}
	cells := s.days[c.DayIndex].Cells

	class.DayName = DayName(c.DayIndex)
	class.StartTime = c.Start.ClockSeconds()
	class.EndTime = c.End.ClockSeconds()
	class.Hours = len(c.Blocks)

	blocks := make([]Block, len(c.Blocks))
	copy(blocks, c.Blocks)
	sort.Slice(blocks, func(i, j int) bool { return blocks[i] < blocks[j] })
	for i, b := range blocks {
		cells[b] = &Cell{Occupied: true, Offset: i, SpanLength: len(blocks), Class: class}
	}
	return Span{Day: c.DayIndex, Blocks: blocks, Class: class}, true
}

// Writable reports whether Occupy would accept the candidate for the class.
func (s *Schedule) Writable(c Candidate, classID int) bool {
	if c.DayIndex < 0 || c.DayIndex >= len(s.days) || len(c.Blocks) == 0 {
		return false
	}
	cells := s.days[c.DayIndex].Cells
	for _, b := range c.Blocks {
		current, ok := cells[b]
		if !ok || b.Ignored() {
			return false
		}
		if current != nil && current.Class.ID != classID {
			return false
		}
	}
	return true
}

// UpdateClass rewrites the assignment carried by every cell of the class.
func (s *Schedule) UpdateClass(id int, update func(*models.ClassAssignment)) bool {
	span, ok := s.FindClass(id)
	if !ok {
		return false
	}
	class := span.Class
	update(&class)
	for _, b := range span.Blocks {
		cell := s.days[span.Day].Cells[b]
		copied := *cell
		copied.Class = class
		s.days[span.Day].Cells[b] = &copied
	}
	return true
}

func (s *Schedule) queueDeletion(id int) {
	if s.IsPendingDeletion(id) {
		return
	}
	s.pending = append(s.pending, id)
}

func (s *Schedule) dropPending(id int) {
	for i, pending := range s.pending {
		if pending == id {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}

// adopt copies the cells of span from src, evicting any other class the
// receiver still holds on those blocks. It returns the evicted ids.
func (s *Schedule) adopt(src *Schedule, span Span) []int {
	if span.Day < 0 || span.Day >= len(s.days) {
		return nil
	}
	cells := s.days[span.Day].Cells
	var evicted []int
	for _, b := range span.Blocks {
		if current := cells[b]; current != nil && current.Class.ID != span.Class.ID {
			evicted = append(evicted, current.Class.ID)
			s.Free(current.Class.ID)
		}
	}
	for _, b := range span.Blocks {
		cell := src.Cell(span.Day, b)
		if _, ok := cells[b]; !ok || cell == nil {
			continue
		}
		copied := *cell
		copied.Class.Conflicts = append([]models.ScheduleConflict(nil), cell.Class.Conflicts...)
		cells[b] = &copied
	}
	return evicted
}

func (s *Schedule) blockIndex(b Block) int {
	for i, candidate := range s.blocks {
		if candidate == b {
			return i
		}
	}
	return -1
}

// MarshalJSON renders the grid as its ordered list of days.
func (s *Schedule) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.days)
}
