// Package backend implementa el cliente HTTP hacia el backend de inventario que registra los movimientos.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/movimientos-api/internal/application/ports"
	"github.com/jhoicas/movimientos-api/internal/domain"
	"github.com/jhoicas/movimientos-api/internal/domain/movement"
)

var _ ports.MovementsAPI = (*MovementsClient)(nil)

// tope de lectura del cuerpo de respuesta
const maxBodyBytes = 1 << 20

// MovementsClient implementa ports.MovementsAPI con net/http.
type MovementsClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewMovementsClient construye el cliente. baseURL sin "/" final, ej. "http://inventario:8000/api".
func NewMovementsClient(baseURL string, timeout time.Duration) *MovementsClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &MovementsClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// errorBody forma de los errores del backend. Algunos endpoints usan "detail" en lugar de "error".
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Detail  string `json:"detail"`
}

// CreateMovimiento envía POST {baseURL}/movimientos con el payload serializado.
func (c *MovementsClient) CreateMovimiento(ctx context.Context, token string, payload movement.Payload) (*ports.CreatedMovimiento, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("serializar movimiento: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/movimientos", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: leer respuesta: %v", domain.ErrBackendUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseAPIError(resp.StatusCode, raw)
	}

	out := &ports.CreatedMovimiento{}
	// cuerpos vacíos o que no son JSON (texto de un proxy) no se reenvían al cliente
	if len(bytes.TrimSpace(raw)) == 0 || !json.Valid(raw) {
		return out, nil
	}
	out.Raw = json.RawMessage(raw)
	var created struct {
		ID *int64 `json:"id"`
	}
	if err := json.Unmarshal(raw, &created); err == nil {
		out.ID = created.ID
	}
	return out, nil
}

func parseAPIError(status int, raw []byte) error {
	apiErr := &ports.APIError{Status: status}
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil {
		apiErr.Message = eb.Message
		apiErr.ErrorDetail = eb.Error
		if apiErr.ErrorDetail == "" {
			apiErr.ErrorDetail = eb.Detail
		}
	} else if text := strings.TrimSpace(string(raw)); text != "" && len(text) <= 300 {
		apiErr.ErrorDetail = text
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// IsUnavailable indica si err es un fallo de red/transporte y no un rechazo del backend.
func IsUnavailable(err error) bool {
	return errors.Is(err, domain.ErrBackendUnavailable)
}
