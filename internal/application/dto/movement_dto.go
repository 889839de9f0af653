package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/movimientos-api/internal/domain/movement"
)

// MovementFormRequest body de POST /api/movimientos y /api/movimientos/validar.
// Replica el estado del formulario: quantity llega como texto.
type MovementFormRequest struct {
	Tipo           string `json:"tipo" validate:"required,oneof=ingreso egreso uso traspaso ajuste"`
	ProductoID     *int64 `json:"productoId"`
	Quantity       string `json:"quantity"`
	FromLocationID *int64 `json:"fromLocationId"`
	ToLocationID   *int64 `json:"toLocationId"`
	PersonaID      *int64 `json:"personaId"`
	ProveedorID    *int64 `json:"proveedorId"`
	Nota           string `json:"nota" validate:"max=500"`
	ConfirmUnit    bool   `json:"confirmUnit"`
}

// ToFormState convierte el body al estado de dominio.
func (r MovementFormRequest) ToFormState() movement.FormState {
	return movement.FormState{
		Tipo:           movement.ParseMovementType(r.Tipo),
		ProductoID:     r.ProductoID,
		Quantity:       r.Quantity,
		FromLocationID: r.FromLocationID,
		ToLocationID:   r.ToLocationID,
		PersonaID:      r.PersonaID,
		ProveedorID:    r.ProveedorID,
		Nota:           r.Nota,
		ConfirmUnit:    r.ConfirmUnit,
	}
}

// ValidationResponse salida de POST /api/movimientos/validar.
type ValidationResponse struct {
	IsValid  bool              `json:"isValid"`
	Errors   map[string]string `json:"errors"`
	Quantity *float64          `json:"quantity,omitempty"`
	Payload  *movement.Payload `json:"payload,omitempty"` // vista previa, sólo si es válido
}

// RulesResponse reglas de locación de un tipo.
type RulesResponse struct {
	Tipo  string         `json:"tipo"`
	Rules movement.Rules `json:"rules"`
}

// SubmitMovementResponse salida de POST /api/movimientos.
type SubmitMovementResponse struct {
	RecordID  string           `json:"record_id,omitempty"`
	BackendID *int64           `json:"backend_id,omitempty"`
	Payload   movement.Payload `json:"payload"`
	Backend   json.RawMessage  `json:"backend,omitempty"`
}

// MovementRecordResponse un movimiento del diario local.
type MovementRecordResponse struct {
	ID             string          `json:"id"`
	BackendID      *int64          `json:"backend_id,omitempty"`
	Tipo           string          `json:"tipo"`
	ProductoID     int64           `json:"producto_id"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	FromLocacionID *int64          `json:"from_locacion_id,omitempty"`
	ToLocacionID   *int64          `json:"to_locacion_id,omitempty"`
	PersonaID      *int64          `json:"persona_id,omitempty"`
	ProveedorID    *int64          `json:"proveedor_id,omitempty"`
	Nota           *string         `json:"nota"`
	UserID         string          `json:"user_id"`
	CreatedAt      time.Time       `json:"created_at"`
}

// MovementRecordListResponse lista paginada del diario.
type MovementRecordListResponse struct {
	Items []MovementRecordResponse `json:"items"`
	Page  PageResponse             `json:"page"`
}
