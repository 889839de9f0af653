package movement

import "strings"

// BuildPayload arma el cuerpo para el backend a partir de un formulario YA validado.
// parsedQuantity es ValidationResult.Quantity; aquí no se vuelve a validar nada.
func BuildPayload(state FormState, parsedQuantity float64) Payload {
	p := Payload{
		Tipo:           state.Tipo,
		Cantidad:       parsedQuantity,
		FromLocacionID: copyID(state.FromLocationID),
		ToLocacionID:   copyID(state.ToLocationID),
		PersonaID:      copyID(state.PersonaID),
		ProveedorID:    copyID(state.ProveedorID),
	}
	if state.ProductoID != nil {
		p.ProductoID = *state.ProductoID
	}
	if nota := strings.TrimSpace(state.Nota); nota != "" {
		p.Nota = &nota
	}
	return p
}

// copyID evita que el payload comparta punteros con el estado del formulario.
func copyID(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
