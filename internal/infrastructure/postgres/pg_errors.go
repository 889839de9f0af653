package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/movimientos-api/internal/domain"
)

// Códigos SQLSTATE que se traducen a errores de dominio.
const (
	pgUniqueViolation  = "23505"
	pgNotNullViolation = "23502"
	pgCheckViolation   = "23514"
)

// mapWriteError traduce errores de escritura de Postgres: clave repetida → ErrDuplicate,
// NOT NULL / CHECK → ErrInvalidInput. El resto se envuelve con la operación.
func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
		case pgNotNullViolation, pgCheckViolation:
			return fmt.Errorf("%s: %s: %w", op, pgErr.ColumnName, domain.ErrInvalidInput)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
