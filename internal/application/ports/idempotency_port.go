package ports

import "context"

// IdempotencyStore evita registrar dos veces el mismo envío (doble clic, reintento del cliente).
type IdempotencyStore interface {
	// Acquire reserva la clave. Devuelve false si ya estaba reservada.
	Acquire(ctx context.Context, key string) (bool, error)
	// Release libera la clave para permitir reintentar tras un fallo.
	Release(ctx context.Context, key string) error
}
