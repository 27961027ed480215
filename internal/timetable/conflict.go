package timetable

import (
	"go.uber.org/zap"

	"github.com/noah-isme/pnf-horario-api/internal/models"
)

// Proposal is a candidate placement checked against external schedules.
type Proposal struct {
	ProfessorID int
	Day         int
	Start       Block
	Blocks      int
	// ExcludeID is the class being edited; it never conflicts with itself.
	ExcludeID int
}

// ConflictDetector decides whether a proposal is free of overlaps.
type ConflictDetector interface {
	Available(p Proposal) bool
}

// DetectorFunc adapts a function into a ConflictDetector.
type DetectorFunc func(p Proposal) bool

// Available implements ConflictDetector.
func (f DetectorFunc) Available(p Proposal) bool {
	return f(p)
}

// SnapshotDetector checks proposals against a weekly schedule snapshot of a
// professor or classroom.
type SnapshotDetector struct {
	snapshot *models.ScheduleSnapshot
	skip     map[int]bool
	logger   *zap.Logger
}

// NewSnapshotDetector builds a detector. Classes whose ids are queued for
// deletion are ignored.
func NewSnapshotDetector(snapshot *models.ScheduleSnapshot, pendingDeletions []int, logger *zap.Logger) *SnapshotDetector {
	if logger == nil {
		logger = zap.NewNop()
	}
	skip := make(map[int]bool, len(pendingDeletions))
	for _, id := range pendingDeletions {
		skip[id] = true
	}
	return &SnapshotDetector{snapshot: snapshot, skip: skip, logger: logger}
}

// Available reports true when no snapshot class overlaps the proposal.
func (d *SnapshotDetector) Available(p Proposal) bool {
	if d == nil || d.snapshot.Empty() {
		return true
	}
	if p.Blocks <= 0 {
		d.logger.Debug("rejecting proposal without blocks", zap.Int("day", p.Day))
		return false
	}
	return len(d.Conflicts(p)) == 0
}

// Conflicts returns the snapshot classes overlapping the proposal. The
// comparison is half-open, so touching endpoints do not overlap.
func (d *SnapshotDetector) Conflicts(p Proposal) []models.SnapshotClass {
	if d == nil || d.snapshot.Empty() || p.Blocks <= 0 {
		return nil
	}
	start := p.Start.Minutes()
	end := start + p.Blocks*BlockMinutes

	var out []models.SnapshotClass
	for _, day := range d.snapshot.Days {
		idx, ok := DayIndex(day.Name)
		if !ok || idx != p.Day {
			continue
		}
		for _, existing := range day.Classes {
			if existing.ID == p.ExcludeID || d.skip[existing.ID] {
				continue
			}
			exStart, okStart := MinutesOf(existing.StartTime)
			exEnd, okEnd := MinutesOf(existing.EndTime)
			if !okStart || !okEnd {
				d.logger.Debug("ignoring snapshot class with invalid time", zap.Int("class_id", existing.ID))
				continue
			}
			if start < exEnd && end > exStart {
				out = append(out, existing)
			}
		}
	}
	return out
}

// AllOf combines detectors; a proposal is available only when every
// detector agrees. Nil detectors are ignored.
func AllOf(detectors ...ConflictDetector) ConflictDetector {
	return DetectorFunc(func(p Proposal) bool {
		for _, detector := range detectors {
			if detector == nil {
				continue
			}
			if !detector.Available(p) {
				return false
			}
		}
		return true
	})
}
