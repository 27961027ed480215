package models

// Professor is a teaching staff member that can be assigned to classes.
type Professor struct {
	ID             int                  `db:"id_profesor" json:"id_profesor"`
	FirstName      string               `db:"nombres" json:"nombres"`
	LastName       string               `db:"apellidos" json:"apellidos"`
	AvailableHours int                  `db:"horas_disponibles" json:"horas_disponibles"`
	Availability   []AvailabilityWindow `db:"-" json:"disponibilidad,omitempty"`
}

// FullName joins the name parts.
func (p Professor) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// AvailabilityWindow is one contiguous interval of declared professor
// availability on a weekday.
type AvailabilityWindow struct {
	ID          int    `db:"id_disponibilidad" json:"id_disponibilidad,omitempty"`
	ProfessorID int    `db:"id_profesor" json:"id_profesor,omitempty"`
	DayName     string `db:"dia_semana" json:"dia_semana" validate:"required"`
	StartTime   string `db:"hora_inicio" json:"hora_inicio" validate:"required"`
	EndTime     string `db:"hora_fin" json:"hora_fin" validate:"required"`
}

// Professor search modes.
const (
	ProfessorSearchGeneral       = "general"
	ProfessorSearchNewAssignment = "nueva_asignacion"
	ProfessorSearchCompleteHours = "completar_horas"
)

// ProfessorSearch captures the filters of the candidate professor lookup.
type ProfessorSearch struct {
	SectionID     int
	RequiredHours int
	UnitID        int
	Search        string
	Mode          string
}

// ResolvedMode picks the lookup mode. A unit id without an explicit mode
// means a new assignment.
func (s ProfessorSearch) ResolvedMode() string {
	switch s.Mode {
	case ProfessorSearchNewAssignment, ProfessorSearchCompleteHours:
		if s.UnitID == 0 {
			return ProfessorSearchGeneral
		}
		return s.Mode
	case "":
		if s.UnitID != 0 {
			return ProfessorSearchNewAssignment
		}
	}
	return ProfessorSearchGeneral
}
