package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pnf-horario-api/internal/models"
)

var fullDay = Shift{Start: 700, End: 1945}

func window(day, start, end string) models.AvailabilityWindow {
	return models.AvailabilityWindow{DayName: day, StartTime: start, EndTime: end}
}

func starts(candidates []Candidate) []Block {
	out := make([]Block, len(candidates))
	for i, c := range candidates {
		out[i] = c.Start
	}
	return out
}

func TestCandidatesMorningWindow(t *testing.T) {
	s := NewSchedule(fullDay, nil)

	got := s.Candidates(SlotRequest{
		Window: window("Lunes", "07:00", "11:50"),
		Blocks: 3,
		Class:  models.ClassAssignment{ID: -1, ProfessorID: 1, UnitID: 10},
	})

	require.Len(t, got, 5)
	assert.Equal(t, []Block{700, 745, 845, 930, 1020}, starts(got))
	assert.Equal(t, []Block{700, 745, 845}, got[0].Blocks)
	assert.Equal(t, Block(930), got[0].End)
	assert.Equal(t, Block(1235), got[4].End)
	for _, c := range got {
		assert.Equal(t, 0, c.DayIndex)
		assert.Equal(t, 3, c.Needed)
		for _, b := range c.Blocks {
			assert.False(t, b.Ignored())
		}
	}
}

func TestCandidatesRejectMalformedInput(t *testing.T) {
	s := NewSchedule(fullDay, nil)
	class := models.ClassAssignment{ID: -1, ProfessorID: 1, UnitID: 10}

	assert.Empty(t, s.Candidates(SlotRequest{Window: window("Domingo", "07:00", "11:50"), Blocks: 1, Class: class}))
	assert.Empty(t, s.Candidates(SlotRequest{Window: window("Lunes", "11:50", "07:00"), Blocks: 1, Class: class}))
	assert.Empty(t, s.Candidates(SlotRequest{Window: window("Lunes", "7am", "11:50"), Blocks: 1, Class: class}))
	assert.Empty(t, s.Candidates(SlotRequest{Window: window("Lunes", "07:00", "11:50"), Blocks: 0, Class: class}))
	assert.Empty(t, s.Candidates(SlotRequest{Window: window("Lunes", "07:00", "11:50"), Blocks: 1, Class: models.ClassAssignment{ID: -1, UnitID: 10}}))
	assert.Empty(t, s.Candidates(SlotRequest{Window: window("Lunes", "07:00", "07:45"), Blocks: 3, Class: class}))
}

func TestCandidatesUnitDayExclusivity(t *testing.T) {
	s := Initialize([]models.ClassAssignment{
		{ID: 5, ProfessorID: 2, UnitID: 10, DayName: "Lunes", StartTime: "13:00:00", EndTime: "13:45:00"},
	}, fullDay, nil)

	got := s.Candidates(SlotRequest{
		Window: window("Lunes", "07:00", "11:50"),
		Blocks: 1,
		Class:  models.ClassAssignment{ID: -1, ProfessorID: 1, UnitID: 10},
	})
	assert.Empty(t, got)

	self := s.Candidates(SlotRequest{
		Window: window("Lunes", "07:00", "11:50"),
		Blocks: 1,
		Class:  models.ClassAssignment{ID: 5, ProfessorID: 2, UnitID: 10},
	})
	assert.Len(t, self, 7)

	otherDay := s.Candidates(SlotRequest{
		Window: window("Martes", "07:00", "11:50"),
		Blocks: 1,
		Class:  models.ClassAssignment{ID: -1, ProfessorID: 1, UnitID: 10},
	})
	assert.Len(t, otherDay, 7)
}

func TestCandidatesCellOccupancy(t *testing.T) {
	sameProfessor := Initialize([]models.ClassAssignment{
		{ID: 7, ProfessorID: 1, UnitID: 20, DayName: "Lunes", StartTime: "07:00", EndTime: "07:45"},
	}, fullDay, nil)
	req := SlotRequest{
		Window: window("Lunes", "07:00", "08:45"),
		Blocks: 1,
		Class:  models.ClassAssignment{ID: -1, ProfessorID: 1, UnitID: 10},
	}
	assert.Equal(t, []Block{745, 845}, starts(sameProfessor.Candidates(req)))

	otherProfessor := Initialize([]models.ClassAssignment{
		{ID: 7, ProfessorID: 3, UnitID: 20, DayName: "Lunes", StartTime: "07:00", EndTime: "07:45"},
	}, fullDay, nil)
	assert.Equal(t, []Block{700, 745, 845}, starts(otherProfessor.Candidates(req)))
}

func TestCandidatesConsultDetector(t *testing.T) {
	s := NewSchedule(fullDay, nil)
	detector := NewSnapshotDetector(&models.ScheduleSnapshot{Days: []models.SnapshotDay{
		{Name: "Lunes", Classes: []models.SnapshotClass{{ID: 99, StartTime: "08:45:00", EndTime: "09:30:00"}}},
	}}, nil, nil)

	got := s.Candidates(SlotRequest{
		Window:   window("Lunes", "07:00", "11:50"),
		Blocks:   2,
		Class:    models.ClassAssignment{ID: -1, ProfessorID: 1, UnitID: 10},
		Detector: detector,
	})
	assert.Equal(t, []Block{700, 930, 1020, 1105}, starts(got))
}

func TestCandidatesOutsideShift(t *testing.T) {
	s := NewSchedule(Shift{Start: 1300, End: 1945}, nil)
	got := s.Candidates(SlotRequest{
		Window: window("Lunes", "07:00", "13:45"),
		Blocks: 1,
		Class:  models.ClassAssignment{ID: -1, ProfessorID: 1, UnitID: 10},
	})
	assert.Equal(t, []Block{1300, 1345}, starts(got))
}

func TestCandidatesForWindowsKeepsWindowOrder(t *testing.T) {
	s := NewSchedule(fullDay, nil)
	got := s.CandidatesForWindows([]models.AvailabilityWindow{
		window("Miércoles", "13:00", "13:45"),
		window("Lunes", "07:00", "07:45"),
	}, SlotRequest{Blocks: 1, Class: models.ClassAssignment{ID: -1, ProfessorID: 1, UnitID: 10}})

	require.Len(t, got, 4)
	assert.Equal(t, 2, got[0].DayIndex)
	assert.Equal(t, 0, got[2].DayIndex)
}

func TestCandidatesForWindowsDropsRepeatedStarts(t *testing.T) {
	s := NewSchedule(fullDay, nil)
	req := SlotRequest{Blocks: 1, Class: models.ClassAssignment{ID: -1, ProfessorID: 1, UnitID: 10}}

	wide := s.CandidatesForWindows([]models.AvailabilityWindow{window("Lunes", "07:00", "09:30")}, req)
	got := s.CandidatesForWindows([]models.AvailabilityWindow{
		window("Lunes", "07:00", "09:30"),
		window("Lunes", "07:45", "09:30"),
	}, req)

	require.NotEmpty(t, wide)
	assert.Equal(t, starts(wide), starts(got))
}
