// Package movement contiene el motor de validación de movimientos de stock y la construcción
// del payload canónico que se envía al backend de inventario.
//
// Todo el paquete es puro: sin I/O ni estado compartido. La misma entrada produce siempre
// la misma salida.
package movement

import (
	"strings"

	"golang.org/x/text/cases"
)

// MovementType tipo de movimiento de stock.
type MovementType string

const (
	TipoIngreso  MovementType = "ingreso"  // entra stock, siempre a la bodega central
	TipoEgreso   MovementType = "egreso"   // sale stock de una locación
	TipoUso      MovementType = "uso"      // consumo, con destino opcional
	TipoTraspaso MovementType = "traspaso" // entre dos locaciones distintas
	TipoAjuste   MovementType = "ajuste"   // corrección de inventario
)

// AllTypes lista los tipos en el orden en que se muestran en el formulario.
var AllTypes = []MovementType{TipoIngreso, TipoEgreso, TipoUso, TipoTraspaso, TipoAjuste}

var folder = cases.Fold()

// ParseMovementType normaliza la entrada del usuario ("Ingreso ", "TRASPASO").
// No valida: usar Valid sobre el resultado.
func ParseMovementType(s string) MovementType {
	return MovementType(folder.String(strings.TrimSpace(s)))
}

// Valid indica si t es uno de los cinco tipos conocidos.
func (t MovementType) Valid() bool {
	switch t {
	case TipoIngreso, TipoEgreso, TipoUso, TipoTraspaso, TipoAjuste:
		return true
	}
	return false
}

func (t MovementType) String() string { return string(t) }

// Nombres de campo usados como claves del mapa de errores. Coinciden con el formulario.
const (
	FieldTipo           = "tipo"
	FieldProductoID     = "productoId"
	FieldQuantity       = "quantity"
	FieldConfirmUnit    = "confirmUnit"
	FieldFromLocationID = "fromLocationId"
	FieldToLocationID   = "toLocationId"
	FieldNota           = "nota"
)

// FormState estado crudo del formulario de movimiento. Un puntero nil significa "sin definir".
type FormState struct {
	Tipo           MovementType
	ProductoID     *int64
	Quantity       string // texto tal cual lo escribió el usuario
	FromLocationID *int64
	ToLocationID   *int64
	PersonaID      *int64
	ProveedorID    *int64
	Nota           string
	ConfirmUnit    bool
}

// Rules política de locaciones derivada del tipo.
type Rules struct {
	RequiresFrom         bool `json:"requiresFrom"`
	AllowFrom            bool `json:"allowFrom"`
	RequiresTo           bool `json:"requiresTo"`
	AllowTo              bool `json:"allowTo"`
	RequiresBothDistinct bool `json:"requiresBothDistinct"`
	RequiresAnyLocation  bool `json:"requiresAnyLocation"`
}

// ValidationResult resultado de Validate.
type ValidationResult struct {
	IsValid  bool
	Errors   map[string]string // solo campos inválidos
	Quantity *float64          // cantidad parseada, presente sólo si IsValid
}

// Payload cuerpo JSON que espera el backend.
// Los ids opcionales se omiten cuando no están definidos; Nota viaja siempre (null si vacía).
type Payload struct {
	Tipo           MovementType `json:"tipo"`
	ProductoID     int64        `json:"producto_id"`
	Cantidad       float64      `json:"cantidad"`
	FromLocacionID *int64       `json:"from_locacion_id,omitempty"`
	ToLocacionID   *int64       `json:"to_locacion_id,omitempty"`
	PersonaID      *int64       `json:"persona_id,omitempty"`
	ProveedorID    *int64       `json:"proveedor_id,omitempty"`
	Nota           *string      `json:"nota"`
}

// ID devuelve un puntero a v. Útil para armar FormState en handlers y tests.
func ID(v int64) *int64 { return &v }
