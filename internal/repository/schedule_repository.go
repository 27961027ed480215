package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/pnf-horario-api/internal/models"
)

const classColumns = `id_horario, id_seccion, id_profesor, id_aula, id_unidad_curricular, dia_semana,
	hora_inicio::text AS hora_inicio, hora_fin::text AS hora_fin,
	nombre_unidad_curricular, nombres_profesor, apellidos_profesor, codigo_aula`

// ScheduleRepository reads class placements from the clases_completas view and
// mutates them through the scheduling procedures.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// ListBySection returns the classes of a section.
func (r *ScheduleRepository) ListBySection(ctx context.Context, sectionID int) ([]models.ClassAssignment, error) {
	return r.listBy(ctx, "id_seccion", sectionID)
}

// ListByProfessor returns every class taught by a professor.
func (r *ScheduleRepository) ListByProfessor(ctx context.Context, professorID int) ([]models.ClassAssignment, error) {
	return r.listBy(ctx, "id_profesor", professorID)
}

// ListByClassroom returns every class hosted in a classroom.
func (r *ScheduleRepository) ListByClassroom(ctx context.Context, classroomID int) ([]models.ClassAssignment, error) {
	return r.listBy(ctx, "id_aula", classroomID)
}

func (r *ScheduleRepository) listBy(ctx context.Context, column string, id int) ([]models.ClassAssignment, error) {
	query := fmt.Sprintf("SELECT %s FROM public.clases_completas WHERE %s = $1 ORDER BY dia_semana, hora_inicio", classColumns, column)
	var classes []models.ClassAssignment
	if err := r.db.SelectContext(ctx, &classes, query, id); err != nil {
		return nil, fmt.Errorf("list classes by %s: %w", strings.TrimPrefix(column, "id_"), err)
	}
	return classes, nil
}

// procedureResult is the p_resultado document returned by the scheduling procedures.
type procedureResult struct {
	Status    string                    `json:"status"`
	Message   string                    `json:"mensaje"`
	Schedule  *procedureSchedule        `json:"horario"`
	Conflicts []models.ScheduleConflict `json:"conflictos"`
}

type procedureSchedule struct {
	ID          int    `json:"id_horario"`
	SectionID   int    `json:"id_seccion"`
	ProfessorID int    `json:"id_profesor"`
	ClassroomID int    `json:"id_aula"`
	UnitID      int    `json:"id_unidad_curricular"`
	DayName     string `json:"dia_semana"`
	StartTime   string `json:"hora_inicio"`
	EndTime     string `json:"hora_fin"`
}

// Create registers a class. A collision is reported as *models.ScheduleConflictError.
func (r *ScheduleRepository) Create(ctx context.Context, actor string, in models.CreateClassInput) (*models.ClassAssignment, error) {
	const query = `CALL public.registrar_horario_completo($1, $2, $3, $4, $5, $6, $7, TRUE, $8, NULL)`
	result, err := r.call(ctx, "create class", query,
		actor, in.SectionID, in.ProfessorID, in.UnitID, in.ClassroomID, in.DayName, in.StartTime, in.Hours)
	if err != nil {
		return nil, err
	}
	class := models.ClassAssignment{
		SectionID:   in.SectionID,
		ProfessorID: in.ProfessorID,
		ClassroomID: in.ClassroomID,
		UnitID:      in.UnitID,
		DayName:     in.DayName,
		StartTime:   in.StartTime,
	}
	result.merge(&class)
	return &class, nil
}

// Update moves a class to another day or start time.
func (r *ScheduleRepository) Update(ctx context.Context, actor string, in models.UpdateClassInput) (*models.ClassAssignment, error) {
	const query = `CALL public.actualizar_horario_completo_o_parcial($1, $2, $3, $4, $5, NULL)`
	result, err := r.call(ctx, "update class", query, actor, in.ID, in.DayName, in.StartTime, in.Hours)
	if err != nil {
		return nil, err
	}
	class := models.ClassAssignment{ID: in.ID, DayName: in.DayName, StartTime: in.StartTime}
	result.merge(&class)
	return &class, nil
}

// Delete removes a class.
func (r *ScheduleRepository) Delete(ctx context.Context, actor string, id int) error {
	const query = `CALL public.eliminar_horario($1, $2, NULL)`
	_, err := r.call(ctx, "delete class", query, actor, id)
	return err
}

func (r *ScheduleRepository) call(ctx context.Context, op, query string, args ...interface{}) (*procedureResult, error) {
	var raw types.JSONText
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&raw); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var result procedureResult
	if len(raw) > 0 {
		if err := raw.Unmarshal(&result); err != nil {
			return nil, fmt.Errorf("%s: decode result: %w", op, err)
		}
	}
	if len(result.Conflicts) > 0 {
		message := result.Message
		if message == "" {
			message = fmt.Sprintf("%s: %d conflicts", op, len(result.Conflicts))
		}
		return nil, &models.ScheduleConflictError{Message: message, Conflicts: result.Conflicts}
	}
	if strings.EqualFold(result.Status, "error") {
		return nil, fmt.Errorf("%s: %s", op, result.Message)
	}
	return &result, nil
}

func (p *procedureResult) merge(class *models.ClassAssignment) {
	if p == nil || p.Schedule == nil {
		return
	}
	s := p.Schedule
	if s.ID != 0 {
		class.ID = s.ID
	}
	if s.SectionID != 0 {
		class.SectionID = s.SectionID
	}
	if s.ProfessorID != 0 {
		class.ProfessorID = s.ProfessorID
	}
	if s.ClassroomID != 0 {
		class.ClassroomID = s.ClassroomID
	}
	if s.UnitID != 0 {
		class.UnitID = s.UnitID
	}
	if s.DayName != "" {
		class.DayName = s.DayName
	}
	if s.StartTime != "" {
		class.StartTime = s.StartTime
	}
	if s.EndTime != "" {
		class.EndTime = s.EndTime
	}
}

// decodeList unmarshals a JSON array returned by a search function. SQL NULL
// and JSON null leave dest untouched.
func decodeList(raw types.JSONText, dest interface{}) error {
	switch strings.TrimSpace(string(raw)) {
	case "", "null", "{}":
		return nil
	}
	return json.Unmarshal(raw, dest)
}
