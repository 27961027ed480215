package timetable

import "github.com/noah-isme/pnf-horario-api/internal/models"

// DeriveUnits recomputes the assigned, outstanding and seen fields of each
// unit from the classes currently on the grid.
func DeriveUnits(units []models.CurricularUnit, s *Schedule) []models.CurricularUnit {
	assigned := make(map[int]int)
	if s != nil {
		for _, day := range s.days {
			for _, cell := range day.Cells {
				if !cell.Anchor() {
					continue
				}
				hours := cell.Class.Hours
				if hours <= 0 {
					hours = cell.SpanLength
				}
				assigned[cell.Class.UnitID] += hours
			}
		}
	}

	out := make([]models.CurricularUnit, len(units))
	for i, unit := range units {
		hours := assigned[unit.ID]
		outstanding := unit.RequiredHours - hours
		if outstanding < 0 {
			outstanding = 0
		}
		unit.AssignedHours = hours
		unit.Seen = hours > 0
		unit.OutstandingHours = &outstanding
		out[i] = unit
	}
	return out
}
