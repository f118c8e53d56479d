package usecase

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// isUniqueError reports whether err is a unique_violation on a constraint
// whose name contains constraintName.
func isUniqueError(err error, constraintName string) bool {
	return isPgError(err, pgUniqueViolation, constraintName)
}

// isForeignKeyError reports whether err is a foreign_key_violation on a
// constraint whose name contains constraintName.
func isForeignKeyError(err error, constraintName string) bool {
	return isPgError(err, pgForeignKeyViolation, constraintName)
}

func isPgError(err error, code, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName))
	}
	return false
}
