package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/pnf-horario-api/internal/models"
)

// ProfessorRepository provides read access to professors and their declared availability.
type ProfessorRepository struct {
	db *sqlx.DB
}

// NewProfessorRepository creates a new professor repository.
func NewProfessorRepository(db *sqlx.DB) *ProfessorRepository {
	return &ProfessorRepository{db: db}
}

// FindByID loads a professor by id.
func (r *ProfessorRepository) FindByID(ctx context.Context, id int) (*models.Professor, error) {
	const query = `SELECT id_profesor, nombres, apellidos, COALESCE(horas_disponibles, 0) AS horas_disponibles FROM public.profesores_informacion_completa WHERE id_profesor = $1`
	var professor models.Professor
	if err := r.db.GetContext(ctx, &professor, query, id); err != nil {
		return nil, err
	}
	return &professor, nil
}

// ListAvailability returns the availability windows of a professor.
func (r *ProfessorRepository) ListAvailability(ctx context.Context, professorID int) ([]models.AvailabilityWindow, error) {
	const query = `SELECT id_disponibilidad, id_profesor, dia_semana, hora_inicio::text AS hora_inicio, hora_fin::text AS hora_fin FROM public.vista_disponibilidad_docente WHERE id_profesor = $1 ORDER BY id_disponibilidad`
	var windows []models.AvailabilityWindow
	if err := r.db.SelectContext(ctx, &windows, query, professorID); err != nil {
		return nil, fmt.Errorf("list professor availability: %w", err)
	}
	return windows, nil
}

// SearchAvailable returns professors with enough free hours for a section.
func (r *ProfessorRepository) SearchAvailable(ctx context.Context, filter models.ProfessorSearch) ([]models.Professor, error) {
	var (
		query string
		args  []interface{}
	)
	search := nullableString(filter.Search)
	switch filter.ResolvedMode() {
	case models.ProfessorSearchNewAssignment:
		query = `SELECT * FROM buscar_profesores_nueva_asignacion($1, $2, $3, $4) AS p_resultado`
		args = []interface{}{filter.SectionID, filter.RequiredHours, filter.UnitID, search}
	case models.ProfessorSearchCompleteHours:
		query = `SELECT * FROM buscar_profesores_completar_horas($1, $2) AS p_resultado`
		args = []interface{}{filter.SectionID, filter.UnitID}
	default:
		query = `SELECT * FROM buscar_profesores_general($1, $2, $3) AS p_resultado`
		args = []interface{}{filter.SectionID, filter.RequiredHours, search}
	}

	var raw types.JSONText
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return []models.Professor{}, nil
		}
		return nil, fmt.Errorf("search professors: %w", err)
	}
	professors := []models.Professor{}
	if err := decodeList(raw, &professors); err != nil {
		return nil, fmt.Errorf("decode professors: %w", err)
	}
	return professors, nil
}

func nullableString(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}
