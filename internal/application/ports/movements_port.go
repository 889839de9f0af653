package ports

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jhoicas/movimientos-api/internal/domain"
	"github.com/jhoicas/movimientos-api/internal/domain/movement"
)

// MovementsAPI puerto de salida hacia el backend de inventario que registra los movimientos.
// token es el Bearer del usuario; el backend aplica sus propios permisos.
type MovementsAPI interface {
	CreateMovimiento(ctx context.Context, token string, payload movement.Payload) (*CreatedMovimiento, error)
}

// CreatedMovimiento respuesta del backend a un alta exitosa.
type CreatedMovimiento struct {
	ID  *int64          // nil si el backend no devolvió id
	Raw json.RawMessage // cuerpo completo, se reenvía al cliente
}

// APIError rechazo del backend (status HTTP no 2xx).
type APIError struct {
	Status      int
	Message     string
	ErrorDetail string // opcional
}

func (e *APIError) Error() string {
	if e.ErrorDetail != "" {
		return fmt.Sprintf("backend %d: %s (%s)", e.Status, e.Message, e.ErrorDetail)
	}
	return fmt.Sprintf("backend %d: %s", e.Status, e.Message)
}

// Is permite comparar con domain.ErrInsufficientStock, ErrNotFound, ErrUnauthorized y ErrForbidden.
func (e *APIError) Is(target error) bool {
	switch target {
	case domain.ErrInsufficientStock:
		if e.Status != http.StatusConflict && e.Status != http.StatusUnprocessableEntity {
			return false
		}
		text := strings.ToLower(e.Message + " " + e.ErrorDetail)
		return strings.Contains(text, "stock")
	case domain.ErrNotFound:
		return e.Status == http.StatusNotFound
	case domain.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case domain.ErrForbidden:
		return e.Status == http.StatusForbidden
	}
	return false
}
