package errors

import (
	stdErrors "errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// SQLSTATE classes the API maps onto client-visible codes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// FromDB translates a database error into a typed API error. The notFound
// code lets callers distinguish plain lookups from version-guarded updates.
func FromDB(err error, notFound Code, message string) *Error {
	if err == nil {
		return nil
	}
	if typed := As(err); typed != nil {
		return typed
	}
	if stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return Wrap(notFound, err, message)
	}
	switch pgCode(err) {
	case pgUniqueViolation:
		return Wrap(CodeConflict, err, message)
	case pgForeignKeyViolation:
		return Wrap(CodeInvalidInput, err, message)
	case pgCheckViolation:
		return Wrap(CodeBusinessRule, err, message)
	}
	return Wrap(CodeDatabase, err, message)
}

func pgCode(err error) string {
	var pgxErr *pgconn.PgError
	if stdErrors.As(err, &pgxErr) {
		return pgxErr.Code
	}
	var pqErr *pq.Error
	if stdErrors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
