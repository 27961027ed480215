package timetable

import "github.com/noah-isme/pnf-horario-api/internal/models"

// MaxBlocksPerClass caps the size of a single planned class.
const MaxBlocksPerClass = 3

// Split decomposes the outstanding hours of a unit into ordered class sizes.
// A nil outstanding value defaults to the total. Outstanding hours above the
// total are passed through as a single class.
func Split(total int, outstanding *int) []int {
	remaining := total
	if outstanding != nil {
		remaining = *outstanding
	}

	switch {
	case remaining <= 0:
		return []int{}
	case remaining > total:
		return []int{remaining}
	case remaining <= MaxBlocksPerClass:
		return []int{remaining}
	case remaining <= 2*MaxBlocksPerClass:
		first := (remaining + 1) / 2
		return []int{first, remaining - first}
	}

	out := make([]int, 0, remaining/MaxBlocksPerClass+1)
	for remaining > 0 {
		size := remaining
		if size > MaxBlocksPerClass {
			size = MaxBlocksPerClass
		}
		out = append(out, size)
		remaining -= size
	}
	return out
}

// PlanUnit splits the outstanding hours of a curricular unit.
func PlanUnit(unit models.CurricularUnit) []int {
	return Split(unit.RequiredHours, unit.OutstandingHours)
}
