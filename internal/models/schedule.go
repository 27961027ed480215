package models

// ClassAssignment is a persisted or pending class placement of a section.
// Column tags follow the clases_completas view.
type ClassAssignment struct {
	ID                 int                `db:"id_horario" json:"id"`
	SectionID          int                `db:"id_seccion" json:"id_seccion"`
	ProfessorID        int                `db:"id_profesor" json:"id_profesor"`
	ClassroomID        int                `db:"id_aula" json:"id_aula"`
	UnitID             int                `db:"id_unidad_curricular" json:"id_unidad_curricular"`
	DayName            string             `db:"dia_semana" json:"dia_semana"`
	StartTime          string             `db:"hora_inicio" json:"hora_inicio"`
	EndTime            string             `db:"hora_fin" json:"hora_fin"`
	Hours              int                `db:"-" json:"horas_clase"`
	UnitName           string             `db:"nombre_unidad_curricular" json:"nombre_unidad_curricular,omitempty"`
	ProfessorFirstName string             `db:"nombres_profesor" json:"nombres_profesor,omitempty"`
	ProfessorLastName  string             `db:"apellidos_profesor" json:"apellidos_profesor,omitempty"`
	ClassroomCode      string             `db:"codigo_aula" json:"codigo_aula,omitempty"`
	Conflicts          []ScheduleConflict `db:"-" json:"conflictos,omitempty"`
	Moved              bool               `db:"-" json:"clase_move,omitempty"`
	New                bool               `db:"-" json:"nueva_clase,omitempty"`
}

// Pending reports whether the assignment carries unsaved local changes.
func (a ClassAssignment) Pending() bool {
	return a.Moved || a.New
}

// ProfessorName joins the display name parts of the assigned professor.
func (a ClassAssignment) ProfessorName() string {
	switch {
	case a.ProfessorFirstName == "":
		return a.ProfessorLastName
	case a.ProfessorLastName == "":
		return a.ProfessorFirstName
	default:
		return a.ProfessorFirstName + " " + a.ProfessorLastName
	}
}

// ScheduleConflict describes an existing class reported by the persistence
// layer as colliding with a requested placement.
type ScheduleConflict struct {
	Type       string `json:"tipo,omitempty"`
	Message    string `json:"mensaje,omitempty"`
	ScheduleID int    `json:"id_horario,omitempty"`
	SectionID  int    `json:"id_seccion,omitempty"`
	DayName    string `json:"dia_semana,omitempty"`
	StartTime  string `json:"hora_inicio,omitempty"`
	EndTime    string `json:"hora_fin,omitempty"`
	Dimension  string `json:"dimension,omitempty"`
}

// ScheduleConflictError is returned when a create or update collides with
// existing classes.
type ScheduleConflictError struct {
	Message   string             `json:"message"`
	Conflicts []ScheduleConflict `json:"conflictos"`
}

// Error implements the error interface for conflict errors.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// ScheduleSnapshot is the read-only weekly schedule of a professor or a
// classroom used for overlap checks.
type ScheduleSnapshot struct {
	Days []SnapshotDay `json:"horario"`
}

// SnapshotDay groups the classes of one weekday.
type SnapshotDay struct {
	Name    string          `json:"nombre"`
	Classes []SnapshotClass `json:"clases"`
}

// SnapshotClass is a single existing class inside a snapshot.
type SnapshotClass struct {
	ID          int    `json:"id"`
	SectionID   int    `json:"id_seccion,omitempty"`
	UnitName    string `json:"nombre_unidad_curricular,omitempty"`
	StartTime   string `json:"hora_inicio"`
	EndTime     string `json:"hora_fin"`
	ClassroomID int    `json:"id_aula,omitempty"`
}

// Empty reports whether the snapshot carries no schedule data.
func (s *ScheduleSnapshot) Empty() bool {
	return s == nil || len(s.Days) == 0
}

// CreateClassInput registers a new class for a section.
type CreateClassInput struct {
	SectionID   int    `json:"id_seccion" validate:"required"`
	ProfessorID int    `json:"id_profesor" validate:"required"`
	UnitID      int    `json:"id_unidad_curricular" validate:"required"`
	ClassroomID int    `json:"id_aula" validate:"required"`
	DayName     string `json:"dia_semana" validate:"required"`
	StartTime   string `json:"hora_inicio" validate:"required"`
	Hours       int    `json:"horas_clase" validate:"min=1,max=12"`
}

// UpdateClassInput moves an existing class to another day or start time.
type UpdateClassInput struct {
	ID        int    `json:"id_horario" validate:"required"`
	DayName   string `json:"dia_semana" validate:"required"`
	StartTime string `json:"hora_inicio" validate:"required"`
	Hours     int    `json:"horas_clase" validate:"min=1,max=12"`
}
