package movement

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/movimientos-api/internal/domain"
)

// Validate revisa el formulario completo contra las reglas del tipo y devuelve todos los
// errores a la vez (no corta en el primero). centralLocationID es la bodega central configurada.
func Validate(state FormState, centralLocationID int64) ValidationResult {
	errs := fieldErrors{}

	if !state.Tipo.Valid() {
		errs.set(FieldTipo, "tipo de movimiento inválido")
	}

	if state.ProductoID == nil || *state.ProductoID <= 0 {
		errs.set(FieldProductoID, "producto requerido")
	}

	qty, qtyErr := ParseQuantity(state.Quantity)
	if qtyErr != nil {
		errs.set(FieldQuantity, qtyErr.Error())
	}

	if !state.ConfirmUnit {
		errs.set(FieldConfirmUnit, "debes confirmar la unidad de medida del producto")
	}

	validateLocations(state, centralLocationID, errs)

	if len(errs) > 0 {
		return ValidationResult{IsValid: false, Errors: errs}
	}
	q := qty.InexactFloat64()
	return ValidationResult{IsValid: true, Errors: map[string]string{}, Quantity: &q}
}

func validateLocations(state FormState, central int64, errs fieldErrors) {
	rules := ResolveRules(state.Tipo)
	from, to := state.FromLocationID, state.ToLocationID

	if rules.RequiresFrom && from == nil {
		errs.set(FieldFromLocationID, fmt.Sprintf("los movimientos de %s salen de una locación: indica el origen", state.Tipo))
	}
	if rules.RequiresTo && to == nil {
		errs.set(FieldToLocationID, fmt.Sprintf("los movimientos de %s requieren una locación de destino", state.Tipo))
	}

	switch state.Tipo {
	case TipoIngreso:
		if to == nil || *to != central {
			errs.set(FieldToLocationID, "los ingresos solo pueden llegar a la bodega central")
		}
	case TipoUso:
		// sacar de la central para "usarlo" en la central no mueve nada
		if from != nil && to != nil && *from == central && *to == central {
			errs.set(FieldToLocationID, "el destino de un uso no puede ser la bodega central")
		}
	}

	if rules.RequiresBothDistinct && from != nil && to != nil && *from == *to {
		errs.set(FieldToLocationID, "origen y destino deben ser distintos")
	}
	if rules.RequiresAnyLocation && from == nil && to == nil {
		errs.set(FieldFromLocationID, "un ajuste requiere al menos una locación (origen o destino)")
	}
}

// fieldErrors conserva el primer mensaje de cada campo.
type fieldErrors map[string]string

func (e fieldErrors) set(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// ValidationError envuelve el mapa de errores de un formulario rechazado.
// errors.Is(err, domain.ErrInvalidInput) es true.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError construye el error a partir de un resultado inválido.
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "movimiento inválido: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return domain.ErrInvalidInput }
