package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pnf-horario-api/internal/models"
)

func persistedClass() models.ClassAssignment {
	return models.ClassAssignment{
		ID:          5,
		ProfessorID: 1,
		ClassroomID: 3,
		UnitID:      10,
		DayName:     "Lunes",
		StartTime:   "07:00:00",
		EndTime:     "08:30:00",
	}
}

func weekAvailability(start, end string) []models.AvailabilityWindow {
	out := make([]models.AvailabilityWindow, 0, DaysPerWeek)
	for _, name := range DayNames() {
		out = append(out, window(name, start, end))
	}
	return out
}

func TestInitializePlacesSpans(t *testing.T) {
	s := Initialize([]models.ClassAssignment{persistedClass()}, fullDay, nil)

	anchor := s.Cell(0, 700)
	require.NotNil(t, anchor)
	assert.True(t, anchor.Occupied)
	assert.Equal(t, 0, anchor.Offset)
	assert.Equal(t, 2, anchor.SpanLength)
	assert.Equal(t, 2, anchor.Class.Hours)

	trailing := s.Cell(0, 745)
	require.NotNil(t, trailing)
	assert.Equal(t, 1, trailing.Offset)
	assert.Nil(t, s.Cell(0, 845))

	b, cell := s.Anchor(0, 745)
	assert.Equal(t, Block(700), b)
	assert.Equal(t, anchor, cell)
	assert.NoError(t, s.Validate())
}

func TestInitializeSkipsBreaksAndUnknownInput(t *testing.T) {
	s := Initialize([]models.ClassAssignment{
		{ID: 1, ProfessorID: 1, UnitID: 1, DayName: "Martes", StartTime: "07:45", EndTime: "09:15"},
		{ID: 2, ProfessorID: 1, UnitID: 2, DayName: "Domingo", StartTime: "07:00", EndTime: "07:45"},
		{ID: 3, ProfessorID: 1, UnitID: 3, DayName: "Lunes", StartTime: "nope", EndTime: "07:45"},
	}, fullDay, nil)

	assert.NotNil(t, s.Cell(1, 745))
	assert.Nil(t, s.Cell(1, 830))
	assert.Equal(t, 2, s.Cell(1, 745).SpanLength)
	assert.Len(t, s.Spans(), 1)
	assert.Error(t, s.Validate())
}

func TestInitializeDropsBlocksOutsideShift(t *testing.T) {
	s := Initialize([]models.ClassAssignment{
		{ID: 1, ProfessorID: 1, UnitID: 1, DayName: "Lunes", StartTime: "07:00", EndTime: "08:30"},
	}, Shift{Start: 1300, End: 1945}, nil)

	assert.Empty(t, s.Spans())
	assert.False(t, s.HasBlock(700))
	assert.True(t, s.HasBlock(1400))
}

func TestFreeAndOccupyRoundTrip(t *testing.T) {
	s := Initialize([]models.ClassAssignment{persistedClass()}, fullDay, nil)
	before := s.Clone()

	span, ok := s.FindClass(5)
	require.True(t, ok)
	require.True(t, s.Free(5))
	_, placed := s.Occupy(span.Candidate(), span.Class)
	require.True(t, placed)

	assert.Equal(t, before.Days(), s.Days())
}

func TestOccupyRefusesForeignCells(t *testing.T) {
	s := Initialize([]models.ClassAssignment{persistedClass()}, fullDay, nil)
	before := s.Clone()

	_, placed := s.Occupy(Candidate{DayIndex: 0, Start: 745, End: 930, Blocks: []Block{745, 845}, Needed: 2},
		models.ClassAssignment{ID: -1, ProfessorID: 9, UnitID: 11})
	assert.False(t, placed)
	assert.Equal(t, before.Days(), s.Days())

	_, placed = s.Occupy(Candidate{DayIndex: 0, Start: 830, End: 845, Blocks: []Block{830}, Needed: 1},
		models.ClassAssignment{ID: -1, ProfessorID: 9, UnitID: 11})
	assert.False(t, placed)
}

func TestSessionMoveCommit(t *testing.T) {
	session := NewSession(Initialize([]models.ClassAssignment{persistedClass()}, fullDay, nil), nil)

	selection, ok := session.SelectForMove(5, []models.AvailabilityWindow{window("Martes", "07:00", "11:50")}, nil)
	require.True(t, ok)
	assert.Equal(t, []Block{700, 745, 845, 930, 1020, 1105}, starts(selection.Candidates))

	_, moved := session.CommitMove(1, 800)
	assert.False(t, moved)
	assert.NotNil(t, session.Schedule().Cell(0, 700))

	span, moved := session.CommitMove(1, 745)
	require.True(t, moved)
	assert.Equal(t, []Block{745, 845}, span.Blocks)
	assert.True(t, span.Class.Moved)
	assert.Equal(t, "Martes", span.Class.DayName)
	assert.Equal(t, "07:45:00", span.Class.StartTime)
	assert.Equal(t, "09:30:00", span.Class.EndTime)
	assert.Nil(t, session.Schedule().Cell(0, 700))
	assert.Nil(t, session.Schedule().Cell(0, 745))
	assert.Nil(t, session.Moving())
	assert.NoError(t, session.Schedule().Validate())
	assert.True(t, session.Dirty())
}

func TestSessionMoveOffersOnlyWritableDestinations(t *testing.T) {
	other := models.ClassAssignment{ID: 8, ProfessorID: 2, UnitID: 20, DayName: "Martes", StartTime: "07:00", EndTime: "07:45"}
	session := NewSession(Initialize([]models.ClassAssignment{persistedClass(), other}, fullDay, nil), nil)

	selection, ok := session.SelectForMove(5, []models.AvailabilityWindow{window("Martes", "07:00", "09:30")}, nil)
	require.True(t, ok)
	assert.Equal(t, []Block{745, 845}, starts(selection.Candidates))

	_, moved := session.CommitMove(1, 700)
	assert.False(t, moved)
	span, moved := session.CommitMove(1, 745)
	require.True(t, moved)
	assert.Equal(t, []Block{745, 845}, span.Blocks)
	assert.Equal(t, 8, session.Schedule().Cell(1, 700).Class.ID)
}

func TestSessionMoveKeepsNewFlag(t *testing.T) {
	class := persistedClass()
	class.ID = -1
	class.New = true
	session := NewSession(Initialize([]models.ClassAssignment{class}, fullDay, nil), nil)

	_, ok := session.SelectForMove(-1, []models.AvailabilityWindow{window("Martes", "07:00", "11:50")}, nil)
	require.True(t, ok)
	span, moved := session.CommitMove(1, 700)
	require.True(t, moved)
	assert.True(t, span.Class.New)
	assert.False(t, span.Class.Moved)
}

func TestSessionCancelMove(t *testing.T) {
	session := NewSession(Initialize([]models.ClassAssignment{persistedClass()}, fullDay, nil), nil)
	before := session.Schedule().Clone()

	_, ok := session.SelectForMove(5, weekAvailability("07:00", "11:50"), nil)
	require.True(t, ok)
	session.CancelMove()

	assert.Nil(t, session.Moving())
	assert.Equal(t, before.Days(), session.Schedule().Days())

	_, ok = session.SelectForMove(404, nil, nil)
	assert.False(t, ok)
}

func TestSessionDelete(t *testing.T) {
	fresh := persistedClass()
	fresh.ID = -4
	fresh.New = true
	fresh.UnitID = 12
	fresh.DayName = "Jueves"
	session := NewSession(Initialize([]models.ClassAssignment{persistedClass(), fresh}, fullDay, nil), nil)

	require.True(t, session.DeleteClass(5))
	assert.Equal(t, []int{5}, session.Schedule().PendingDeletions())
	assert.NotNil(t, session.Schedule().Cell(0, 700))

	require.True(t, session.DeleteClass(-4))
	assert.Nil(t, session.Schedule().Cell(3, 700))
	assert.False(t, session.DeleteClass(-4))
}

func TestSessionCreatesPlannedClasses(t *testing.T) {
	session := NewSession(NewSchedule(fullDay, nil), nil)
	professor := &models.Professor{ID: 1, FirstName: "Ana", Availability: weekAvailability("07:00", "11:50")}
	unit := &models.CurricularUnit{ID: 10, Name: "Matemática", RequiredHours: 8}

	report := session.RunCreation(Selection{
		SectionID: 4,
		Professor: professor,
		Classroom: &models.Classroom{ID: 2, Code: "A-1"},
		Unit:      unit,
	}, nil)

	assert.False(t, report.Waiting)
	assert.Empty(t, report.Unplaced)
	assert.False(t, report.State.InProgress())
	require.Len(t, report.Placed, 3)

	days := make(map[int]bool)
	var sizes []int
	for _, span := range report.Placed {
		sizes = append(sizes, len(span.Blocks))
		assert.False(t, days[span.Day])
		days[span.Day] = true
		assert.True(t, span.Class.New)
		assert.Less(t, span.Class.ID, 0)
		assert.Equal(t, 2, span.Class.ClassroomID)
	}
	assert.Equal(t, []int{3, 3, 2}, sizes)
	assert.NoError(t, session.Schedule().Validate())

	derived := DeriveUnits([]models.CurricularUnit{*unit}, session.Schedule())
	assert.Equal(t, 8, derived[0].AssignedHours)
	assert.Equal(t, 0, *derived[0].OutstandingHours)
	assert.True(t, derived[0].Seen)
}

func TestSessionCreationSkipsUnplaceableClasses(t *testing.T) {
	session := NewSession(NewSchedule(fullDay, nil), nil)
	report := session.RunCreation(Selection{
		Professor: &models.Professor{ID: 1, Availability: []models.AvailabilityWindow{window("Lunes", "07:00", "09:30")}},
		Classroom: &models.Classroom{ID: 2},
		Unit:      &models.CurricularUnit{ID: 10, RequiredHours: 5},
	}, nil)

	require.Len(t, report.Placed, 1)
	assert.Equal(t, []int{2}, report.Unplaced)
	assert.False(t, report.State.InProgress())
}

func TestSessionCreationWaitsForMove(t *testing.T) {
	session := NewSession(Initialize([]models.ClassAssignment{persistedClass()}, fullDay, nil), nil)
	_, ok := session.SelectForMove(5, weekAvailability("07:00", "11:50"), nil)
	require.True(t, ok)

	sel := Selection{
		Professor: &models.Professor{ID: 7, Availability: weekAvailability("13:00", "19:45")},
		Classroom: &models.Classroom{ID: 2},
		Unit:      &models.CurricularUnit{ID: 11, RequiredHours: 2},
	}
	report := session.RunCreation(sel, nil)
	assert.True(t, report.Waiting)
	assert.Equal(t, PhasePlacing, report.State.Phase)
	assert.Empty(t, report.Placed)

	session.CancelMove()
	report = session.RunCreation(Selection{}, nil)
	assert.False(t, report.Waiting)
	require.Len(t, report.Placed, 1)
	assert.Equal(t, 7, report.Placed[0].Class.ProfessorID)
}

func TestSessionReset(t *testing.T) {
	session := NewSession(Initialize([]models.ClassAssignment{persistedClass()}, fullDay, nil), nil)
	baseline := session.Schedule().Clone()

	_, ok := session.SelectForMove(5, []models.AvailabilityWindow{window("Martes", "07:00", "11:50")}, nil)
	require.True(t, ok)
	_, moved := session.CommitMove(1, 700)
	require.True(t, moved)
	require.True(t, session.DeleteClass(5))

	session.Reset()
	assert.Equal(t, baseline.Days(), session.Schedule().Days())
	assert.Empty(t, session.Schedule().PendingDeletions())
	assert.False(t, session.Dirty())
}

func TestDeriveUnitsSumsAnchorHours(t *testing.T) {
	s := Initialize([]models.ClassAssignment{
		persistedClass(),
		{ID: 6, ProfessorID: 1, UnitID: 10, DayName: "Martes", StartTime: "07:00", EndTime: "07:45"},
	}, fullDay, nil)

	units := DeriveUnits([]models.CurricularUnit{
		{ID: 10, RequiredHours: 4},
		{ID: 11, RequiredHours: 2},
	}, s)

	assert.Equal(t, 3, units[0].AssignedHours)
	assert.Equal(t, 1, *units[0].OutstandingHours)
	assert.True(t, units[0].Seen)
	assert.Equal(t, 0, units[1].AssignedHours)
	assert.Equal(t, 2, *units[1].OutstandingHours)
	assert.False(t, units[1].Seen)
}

func TestSessionResetKeepsConfirmedOperations(t *testing.T) {
	second := models.ClassAssignment{ID: 6, ProfessorID: 1, UnitID: 11, DayName: "Jueves", StartTime: "07:00", EndTime: "08:30"}
	session := NewSession(Initialize([]models.ClassAssignment{persistedClass(), second}, fullDay, nil), nil)

	report := session.RunCreation(Selection{
		Professor: &models.Professor{ID: 7, Availability: []models.AvailabilityWindow{window("Viernes", "13:00", "14:30")}},
		Classroom: &models.Classroom{ID: 2},
		Unit:      &models.CurricularUnit{ID: 12, RequiredHours: 2},
	}, nil)
	require.Len(t, report.Placed, 1)
	created := report.Placed[0]

	_, ok := session.SelectForMove(5, []models.AvailabilityWindow{window("Martes", "07:00", "11:50")}, nil)
	require.True(t, ok)
	_, moved := session.CommitMove(1, 745)
	require.True(t, moved)
	require.True(t, session.DeleteClass(6))

	span, ok := session.ConfirmSaved(created.Class.ID, 100)
	require.True(t, ok)
	assert.Equal(t, 100, span.Class.ID)
	assert.False(t, span.Class.New)
	session.ConfirmDeleted(6)
	assert.Empty(t, session.Schedule().PendingDeletions())
	assert.True(t, session.Dirty())

	session.Reset()
	grid := session.Schedule()
	require.NotNil(t, grid.Cell(4, created.Start()))
	assert.Equal(t, 100, grid.Cell(4, created.Start()).Class.ID)
	assert.False(t, grid.Cell(4, created.Start()).Class.New)
	assert.Nil(t, grid.Cell(3, 700))
	assert.Equal(t, 5, grid.Cell(0, 700).Class.ID)
	assert.Nil(t, grid.Cell(1, 745))
	assert.False(t, session.Dirty())
	assert.NoError(t, grid.Validate())
}

func TestSessionConfirmedMoveSurvivesReset(t *testing.T) {
	session := NewSession(Initialize([]models.ClassAssignment{persistedClass()}, fullDay, nil), nil)

	_, ok := session.SelectForMove(5, []models.AvailabilityWindow{window("Martes", "07:00", "11:50")}, nil)
	require.True(t, ok)
	_, moved := session.CommitMove(1, 745)
	require.True(t, moved)
	_, ok = session.ConfirmSaved(5, 0)
	require.True(t, ok)

	session.Reset()
	grid := session.Schedule()
	assert.Nil(t, grid.Cell(0, 700))
	cell := grid.Cell(1, 745)
	require.NotNil(t, cell)
	assert.Equal(t, 5, cell.Class.ID)
	assert.False(t, cell.Class.Moved)
	assert.Equal(t, 2, cell.SpanLength)
	assert.NoError(t, grid.Validate())
}
