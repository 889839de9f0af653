package movement_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/movimientos-api/internal/domain"
	"github.com/jhoicas/movimientos-api/internal/domain/movement"
)

const central int64 = 1

// validState devuelve un formulario válido del tipo dado; cada test modifica lo que necesita.
func validState(tipo movement.MovementType) movement.FormState {
	s := movement.FormState{
		Tipo:        tipo,
		ProductoID:  movement.ID(42),
		Quantity:    "1",
		ConfirmUnit: true,
	}
	switch tipo {
	case movement.TipoIngreso:
		s.ToLocationID = movement.ID(central)
	case movement.TipoEgreso, movement.TipoUso:
		s.FromLocationID = movement.ID(central)
	case movement.TipoTraspaso:
		s.FromLocationID = movement.ID(central)
		s.ToLocationID = movement.ID(7)
	case movement.TipoAjuste:
		s.ToLocationID = movement.ID(7)
	}
	return s
}

func TestValidate_FormulariosValidos(t *testing.T) {
	for _, tipo := range movement.AllTypes {
		t.Run(string(tipo), func(t *testing.T) {
			res := movement.Validate(validState(tipo), central)
			assert.True(t, res.IsValid, "errores: %v", res.Errors)
			assert.Empty(t, res.Errors)
			require.NotNil(t, res.Quantity)
			assert.Equal(t, 1.0, *res.Quantity)
		})
	}
}

func TestValidate_AcumulaTodosLosErrores(t *testing.T) {
	res := movement.Validate(movement.FormState{Tipo: movement.TipoTraspaso}, central)

	assert.False(t, res.IsValid)
	assert.Nil(t, res.Quantity)
	assert.Contains(t, res.Errors, movement.FieldProductoID)
	assert.Contains(t, res.Errors, movement.FieldQuantity)
	assert.Contains(t, res.Errors, movement.FieldConfirmUnit)
	assert.Contains(t, res.Errors, movement.FieldFromLocationID)
	assert.Contains(t, res.Errors, movement.FieldToLocationID)
	assert.Contains(t, res.Errors[movement.FieldProductoID], "producto")
	assert.Equal(t, movement.ErrQuantityRequired.Error(), res.Errors[movement.FieldQuantity])
}

func TestValidate_ProductoNoPositivo(t *testing.T) {
	s := validState(movement.TipoEgreso)
	s.ProductoID = movement.ID(0)
	res := movement.Validate(s, central)
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Errors[movement.FieldProductoID], "producto")
}

func TestValidate_TipoDesconocido(t *testing.T) {
	s := validState(movement.TipoEgreso)
	s.Tipo = "venta"
	res := movement.Validate(s, central)
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Errors, movement.FieldTipo)
}

func TestValidate_Cantidad(t *testing.T) {
	cases := []struct {
		qty      string
		valid    bool
		contains string
	}{
		{"2.345", true, ""},
		{"1.2345", false, "3 decimales"},
		{"abc", false, "numerica"},
		{"", false, "requerida"},
		{"0", false, "mayor a 0"},
	}
	for _, tc := range cases {
		t.Run(tc.qty, func(t *testing.T) {
			s := validState(movement.TipoEgreso)
			s.Quantity = tc.qty
			res := movement.Validate(s, central)
			assert.Equal(t, tc.valid, res.IsValid)
			if tc.valid {
				require.NotNil(t, res.Quantity)
				assert.Equal(t, 2.345, *res.Quantity)
				return
			}
			assert.Contains(t, res.Errors[movement.FieldQuantity], tc.contains)
		})
	}
}

func TestValidate_UnidadSinConfirmar(t *testing.T) {
	s := validState(movement.TipoIngreso)
	s.ConfirmUnit = false
	res := movement.Validate(s, central)
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Errors[movement.FieldConfirmUnit], "unidad")
}

// ──────────────────────────────────────────────────────────────────────────────
// Reglas de locación
// ──────────────────────────────────────────────────────────────────────────────

func TestValidate_UsoSinOrigen(t *testing.T) {
	res := movement.Validate(movement.FormState{
		Tipo: movement.TipoUso, ProductoID: movement.ID(42), Quantity: "1", ConfirmUnit: true,
	}, central)
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Errors[movement.FieldFromLocationID], "salen de")
	assert.NotContains(t, res.Errors, movement.FieldToLocationID)
}

func TestValidate_UsoCentralACentral(t *testing.T) {
	s := validState(movement.TipoUso)
	s.ToLocationID = movement.ID(central)
	res := movement.Validate(s, central)
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Errors[movement.FieldToLocationID], "destino")
}

func TestValidate_UsoHaciaOtraLocacion(t *testing.T) {
	s := validState(movement.TipoUso)
	s.ToLocationID = movement.ID(9)
	assert.True(t, movement.Validate(s, central).IsValid)
}

func TestValidate_IngresoFueraDeCentral(t *testing.T) {
	s := validState(movement.TipoIngreso)
	s.ToLocationID = movement.ID(999)
	res := movement.Validate(s, central)
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Errors[movement.FieldToLocationID], "ingresos")
}

func TestValidate_IngresoSinDestino(t *testing.T) {
	s := validState(movement.TipoIngreso)
	s.ToLocationID = nil
	res := movement.Validate(s, central)
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Errors, movement.FieldToLocationID)
}

// La central es configurable: el mismo destino es válido o no según el id inyectado.
func TestValidate_CentralInyectada(t *testing.T) {
	s := validState(movement.TipoIngreso)
	s.ToLocationID = movement.ID(55)
	assert.False(t, movement.Validate(s, central).IsValid)
	assert.True(t, movement.Validate(s, 55).IsValid)
}

func TestValidate_EgresoSinOrigen(t *testing.T) {
	s := validState(movement.TipoEgreso)
	s.FromLocationID = nil
	res := movement.Validate(s, central)
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Errors[movement.FieldFromLocationID], "salen de")
}

// Un campo no permitido pero informado no bloquea la validez.
func TestValidate_EgresoConDestinoInformado(t *testing.T) {
	s := validState(movement.TipoEgreso)
	s.ToLocationID = movement.ID(3)
	assert.True(t, movement.Validate(s, central).IsValid)
}

func TestValidate_TraspasoMismaLocacion(t *testing.T) {
	s := validState(movement.TipoTraspaso)
	s.ToLocationID = movement.ID(central)
	res := movement.Validate(s, central)
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Errors[movement.FieldToLocationID], "distintos")
}

func TestValidate_TraspasoSinDestino(t *testing.T) {
	s := validState(movement.TipoTraspaso)
	s.ToLocationID = nil
	res := movement.Validate(s, central)
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Errors, movement.FieldToLocationID)
}

func TestValidate_AjusteSinLocaciones(t *testing.T) {
	s := validState(movement.TipoAjuste)
	s.ToLocationID = nil
	res := movement.Validate(s, central)
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Errors, movement.FieldFromLocationID)
}

func TestValidate_AjusteSoloOrigen(t *testing.T) {
	s := validState(movement.TipoAjuste)
	s.ToLocationID = nil
	s.FromLocationID = movement.ID(4)
	assert.True(t, movement.Validate(s, central).IsValid)
}

func TestValidate_Determinista(t *testing.T) {
	s := movement.FormState{Tipo: movement.TipoUso, Quantity: "1.2345"}
	assert.Equal(t, movement.Validate(s, central), movement.Validate(s, central))

	ok := validState(movement.TipoTraspaso)
	assert.Equal(t, movement.Validate(ok, central), movement.Validate(ok, central))
}

func TestValidationError_EnvuelveErrInvalidInput(t *testing.T) {
	err := movement.NewValidationError(map[string]string{
		movement.FieldQuantity:   "cantidad requerida",
		movement.FieldProductoID: "producto requerido",
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Equal(t, "movimiento inválido: productoId: producto requerido; quantity: cantidad requerida", err.Error())
}
