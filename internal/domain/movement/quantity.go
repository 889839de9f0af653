package movement

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxDecimals máximo de decimales aceptados en la cantidad.
const MaxDecimals = 3

// Motivos por los que una cantidad no se puede aceptar. El texto se muestra tal cual en el formulario.
var (
	ErrQuantityRequired        = errors.New("cantidad requerida")
	ErrQuantityNotNumeric      = errors.New("la cantidad debe ser numerica")
	ErrQuantityTooManyDecimals = errors.New("la cantidad admite como maximo 3 decimales")
	ErrQuantityNotPositive     = errors.New("la cantidad debe ser mayor a 0")
)

// signo, parte entera, parte decimal. "1." y ".5" son válidos; "." no.
var quantityPattern = regexp.MustCompile(`^([+-]?)(\d*)(?:\.(\d*))?$`)

// ParseQuantity convierte el texto del formulario en una cantidad positiva con a lo sumo
// MaxDecimals decimales. El error devuelto es siempre uno de los ErrQuantity*.
func ParseQuantity(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, ErrQuantityRequired
	}
	m := quantityPattern.FindStringSubmatch(s)
	if m == nil || (m[2] == "" && m[3] == "") {
		return decimal.Zero, ErrQuantityNotNumeric
	}
	sign, whole, frac := m[1], m[2], m[3]
	if len(frac) > MaxDecimals {
		return decimal.Zero, ErrQuantityTooManyDecimals
	}
	if whole == "" {
		whole = "0"
	}
	normalized := sign + whole
	if frac != "" {
		normalized += "." + frac
	}
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, ErrQuantityNotNumeric
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrQuantityNotPositive
	}
	return d, nil
}
