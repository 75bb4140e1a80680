package postgres

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/farmacia-api/internal/domain"
)

// Códigos SQLSTATE que indican contención entre transacciones concurrentes.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03" // lock_timeout
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

// isContention verdadero para errores que un reintento del cliente podría resolver.
func isContention(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case codeUniqueViolation, codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return true
	}
	return false
}

// classify traduce un error de pgx a los tipos de dominio. Los errores de dominio pasan tal cual.
func classify(op string, err error) error {
	if err == nil || domain.IsDomainError(err) {
		return err
	}
	if isContention(err) {
		return domain.NewConflictError(op, err)
	}
	return domain.NewStorageError(op, err)
}

// validID evita enviar a Postgres un id que no es UUID (22P02); se trata como "no existe".
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
