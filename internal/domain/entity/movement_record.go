package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementRecord copia local de un movimiento que el backend de inventario aceptó.
// Sirve para auditoría y para emitir el comprobante; el backend sigue siendo la fuente de verdad.
type MovementRecord struct {
	ID             string
	CompanyID      string // empresa del usuario que lo envió; todas las lecturas filtran por ella
	BackendID      *int64 // id devuelto por el backend, si lo informó
	Tipo           string
	ProductoID     int64
	Cantidad       decimal.Decimal
	FromLocacionID *int64
	ToLocacionID   *int64
	PersonaID      *int64
	ProveedorID    *int64
	Nota           *string
	UserID         string
	IdempotencyKey string
	CreatedAt      time.Time
}
