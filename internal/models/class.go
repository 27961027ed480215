package models

// Section is a group of students of one trayecto, bound to a shift.
type Section struct {
	ID         int    `db:"id_seccion" json:"id_seccion"`
	TrayectoID int    `db:"id_trayecto" json:"id_trayecto"`
	Value      string `db:"valor_seccion" json:"valor_seccion"`
	ShiftName  string `db:"nombre_turno" json:"nombre_turno"`
	ShiftStart string `db:"inicio_turno" json:"turno_hora_inicio"`
	ShiftEnd   string `db:"fin_turno" json:"turno_hora_fin"`
}

// Classroom is a physical room that can host classes.
type Classroom struct {
	ID       int    `db:"id_aula" json:"id_aula"`
	Code     string `db:"codigo_aula" json:"codigo_aula"`
	Type     string `db:"tipo_aula" json:"tipo_aula"`
	Capacity int    `db:"capacidad_aula" json:"capacidad_aula"`
}

// ClassroomSearch captures the filters of the candidate classroom lookup.
type ClassroomSearch struct {
	SectionID     int
	ProfessorID   int
	RequiredHours int
	UnitID        int
	Search        string
}
