package ports

import (
	"context"

	"github.com/jhoicas/movimientos-api/internal/domain/entity"
)

// ReceiptGenerator genera el comprobante imprimible de un movimiento registrado.
type ReceiptGenerator interface {
	GenerateMovementReceipt(ctx context.Context, rec *entity.MovementRecord) ([]byte, error)
}
