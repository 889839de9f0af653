package repository

import (
	"context"

	"github.com/jhoicas/movimientos-api/internal/domain/entity"
)

// MovementRecordRepository define el puerto de persistencia del diario de movimientos enviados.
// Las lecturas siempre van acotadas a una empresa (multi-tenant).
type MovementRecordRepository interface {
	Create(ctx context.Context, rec *entity.MovementRecord) error
	// GetByID devuelve (nil, nil) si no existe o pertenece a otra empresa.
	GetByID(ctx context.Context, companyID, id string) (*entity.MovementRecord, error)
	List(ctx context.Context, companyID string, limit, offset int) ([]*entity.MovementRecord, error)
	Count(ctx context.Context, companyID string) (int, error)
}
