package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Ошибки репозитория
var (
	// ErrRunNotFound возвращается, когда запись о прогоне не найдена
	ErrRunNotFound = errors.New("прогон расписания не найден")
)

// IsUniqueViolationError проверяет, вызвана ли ошибка нарушением UNIQUE constraint в PostgreSQL
// Это используется для преобразования database-level ошибок в domain-level ошибки
// Код ошибки 23505 = UNIQUE constraint violation in PostgreSQL
// Поддерживает оба драйвера: pgx и lib/pq
func IsUniqueViolationError(err error) bool {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		// PostgreSQL SQLSTATE 23505 = unique_violation
		// Подробнее: https://www.postgresql.org/docs/current/errcodes-appendix.html
		return pgxErr.SQLState() == "23505"
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// IsExclusionViolationError проверяет, вызвана ли ошибка нарушением EXCLUDE constraint в PostgreSQL
// Код ошибки 23P01 = exclusion_violation
// Поддерживает оба драйвера: pgx и lib/pq
func IsExclusionViolationError(err error) bool {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		// PostgreSQL SQLSTATE 23P01 = exclusion_violation
		// Подробнее: https://www.postgresql.org/docs/current/errcodes-appendix.html
		return pgxErr.SQLState() == "23P01"
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23P01"
	}
	return false
}
