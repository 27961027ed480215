package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/pnf-horario-api/internal/models"
)

// ClassRepository reads sections and classrooms.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// FindSection loads a section together with its shift bounds.
func (r *ClassRepository) FindSection(ctx context.Context, id int) (*models.Section, error) {
	const query = `SELECT s.id_seccion, s.id_trayecto, s.valor_seccion,
		COALESCE(t.nombre_turno, '') AS nombre_turno,
		COALESCE(t.inicio_turno::text, '') AS inicio_turno,
		COALESCE(t.fin_turno::text, '') AS fin_turno
		FROM public.secciones s LEFT JOIN public.turnos t ON s.id_turno = t.id_turno
		WHERE s.id_seccion = $1`
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	return &section, nil
}

// FindClassroom loads a classroom by id.
func (r *ClassRepository) FindClassroom(ctx context.Context, id int) (*models.Classroom, error) {
	const query = `SELECT id_aula, codigo_aula, COALESCE(tipo_aula, '') AS tipo_aula, COALESCE(capacidad_aula, 0) AS capacidad_aula FROM public.aulas WHERE id_aula = $1`
	var classroom models.Classroom
	if err := r.db.GetContext(ctx, &classroom, query, id); err != nil {
		return nil, err
	}
	return &classroom, nil
}

// SearchClassrooms returns classrooms free for the hours a professor needs in a section.
func (r *ClassRepository) SearchClassrooms(ctx context.Context, filter models.ClassroomSearch) ([]models.Classroom, error) {
	const query = `SELECT * FROM buscar_aulas_disponibles($1, $2, $3, $4, $5) AS p_resultado`
	var unit interface{}
	if filter.UnitID != 0 {
		unit = filter.UnitID
	}
	var raw types.JSONText
	err := r.db.QueryRowxContext(ctx, query, filter.SectionID, filter.ProfessorID, filter.RequiredHours, unit, nullableString(filter.Search)).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return []models.Classroom{}, nil
		}
		return nil, fmt.Errorf("search classrooms: %w", err)
	}
	classrooms := []models.Classroom{}
	if err := decodeList(raw, &classrooms); err != nil {
		return nil, fmt.Errorf("decode classrooms: %w", err)
	}
	return classrooms, nil
}
