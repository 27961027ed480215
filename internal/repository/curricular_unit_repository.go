package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/pnf-horario-api/internal/models"
)

// CurricularUnitRepository handles read access to curricular units.
type CurricularUnitRepository struct {
	db *sqlx.DB
}

// NewCurricularUnitRepository creates a new repository instance.
func NewCurricularUnitRepository(db *sqlx.DB) *CurricularUnitRepository {
	return &CurricularUnitRepository{db: db}
}

// ListByTrayecto returns the units taught in a trayecto ordered by code.
func (r *CurricularUnitRepository) ListByTrayecto(ctx context.Context, trayectoID int) ([]models.CurricularUnit, error) {
	const query = `SELECT uc.id_unidad_curricular, uc.id_trayecto, uc.codigo_unidad, uc.nombre_unidad_curricular, uc.horas_clase
		FROM public.unidades_curriculares uc
		WHERE uc.id_trayecto = $1
		ORDER BY uc.codigo_unidad`
	var units []models.CurricularUnit
	if err := r.db.SelectContext(ctx, &units, query, trayectoID); err != nil {
		return nil, fmt.Errorf("list curricular units: %w", err)
	}
	return units, nil
}
