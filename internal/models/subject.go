package models

// CurricularUnit is a course that requires a fixed number of class hours
// per section. The assigned/outstanding/seen fields are derived from the
// section grid and never persisted.
type CurricularUnit struct {
	ID               int    `db:"id_unidad_curricular" json:"id_unidad_curricular"`
	TrayectoID       int    `db:"id_trayecto" json:"id_trayecto"`
	Code             string `db:"codigo_unidad" json:"codigo_unidad"`
	Name             string `db:"nombre_unidad_curricular" json:"nombre_unidad_curricular"`
	RequiredHours    int    `db:"horas_clase" json:"horas_clase"`
	AssignedHours    int    `db:"-" json:"horas_asignadas"`
	OutstandingHours *int   `db:"-" json:"faltan_horas_clase,omitempty"`
	Seen             bool   `db:"-" json:"esVista"`
}
