package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/movimientos-api/internal/domain/entity"
	"github.com/jhoicas/movimientos-api/internal/domain/repository"
)

var _ repository.MovementRecordRepository = (*MovementRecordRepo)(nil)

const movementRecordColumns = `id, company_id, backend_id, tipo, producto_id, cantidad, from_locacion_id, to_locacion_id,
	persona_id, proveedor_id, nota, user_id, idempotency_key, created_at`

// MovementRecordRepo diario de movimientos sobre PostgreSQL (usable con pool o tx).
type MovementRecordRepo struct {
	q Querier
}

// NewMovementRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRecordRepository(q Querier) *MovementRecordRepo {
	return &MovementRecordRepo{q: q}
}

// Create persiste un movimiento aceptado por el backend.
func (r *MovementRecordRepo) Create(ctx context.Context, rec *entity.MovementRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	query := `INSERT INTO movement_records (` + movementRecordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.CompanyID, rec.BackendID, rec.Tipo, rec.ProductoID, rec.Cantidad,
		rec.FromLocacionID, rec.ToLocacionID, rec.PersonaID, rec.ProveedorID, rec.Nota,
		rec.UserID, rec.IdempotencyKey, rec.CreatedAt,
	)
	if err != nil {
		return mapWriteError("insert movement record", err)
	}
	return nil
}

// GetByID obtiene un movimiento del diario de la empresa; (nil, nil) si no existe.
func (r *MovementRecordRepo) GetByID(ctx context.Context, companyID, id string) (*entity.MovementRecord, error) {
	query := `SELECT ` + movementRecordColumns + ` FROM movement_records WHERE id = $1 AND company_id = $2`
	rec, err := scanMovementRecord(r.q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement record: %w", err)
	}
	return rec, nil
}

// List lista el diario de la empresa, más recientes primero.
func (r *MovementRecordRepo) List(ctx context.Context, companyID string, limit, offset int) ([]*entity.MovementRecord, error) {
	query := `SELECT ` + movementRecordColumns + `
		FROM movement_records WHERE company_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movement records: %w", err)
	}
	defer rows.Close()
	var list []*entity.MovementRecord
	for rows.Next() {
		rec, err := scanMovementRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement record: %w", err)
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

// Count total de movimientos de la empresa en el diario.
func (r *MovementRecordRepo) Count(ctx context.Context, companyID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM movement_records WHERE company_id = $1`, companyID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count movement records: %w", err)
	}
	return n, nil
}

func scanMovementRecord(row pgx.Row) (*entity.MovementRecord, error) {
	var m entity.MovementRecord
	err := row.Scan(
		&m.ID, &m.CompanyID, &m.BackendID, &m.Tipo, &m.ProductoID, &m.Cantidad,
		&m.FromLocacionID, &m.ToLocacionID, &m.PersonaID, &m.ProveedorID, &m.Nota,
		&m.UserID, &m.IdempotencyKey, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
