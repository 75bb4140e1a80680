package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
// Los tipos de error envuelven estos sentinelas: usar errors.Is / errors.As.
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrStorage      = errors.New("fallo de almacenamiento")
	ErrUnauthorized = errors.New("no autorizado")
)

// ValidationError entrada mal formada o semánticamente inválida.
// Siempre se detecta antes de mutar estado.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError construye un ValidationError con mensaje formateado.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NotFoundError el recurso no existe, no pertenece a la organización o no está
// en un estado que permita la operación.
type NotFoundError struct {
	Resource string
	ID       string
	Reason   string
}

// NewNotFoundError construye un NotFoundError.
func NewNotFoundError(resource, id, reason string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id, Reason: reason}
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s %s no encontrado", e.Resource, e.ID)
	if e.Reason != "" {
		msg += " o " + e.Reason
	}
	return msg
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError una modificación concurrente invalidó la operación.
// El llamador puede reintentar; el núcleo nunca reintenta.
type ConflictError struct {
	Op  string
	Err error
}

// NewConflictError construye un ConflictError.
func NewConflictError(op string, err error) *ConflictError {
	return &ConflictError{Op: op, Err: err}
}

func (e *ConflictError) Error() string {
	if e.Err == nil {
		return e.Op + ": " + ErrConflict.Error()
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrConflict.Error(), e.Err)
}

func (e *ConflictError) Unwrap() []error { return []error{ErrConflict, e.Err} }

// StorageError el almacenamiento subyacente falló (conexión, constraint, timeout).
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError construye un StorageError.
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Err} }

// IsDomainError indica si err ya fue clasificado con alguno de los tipos anteriores.
func IsDomainError(err error) bool {
	var (
		v *ValidationError
		n *NotFoundError
		c *ConflictError
		s *StorageError
	)
	return errors.As(err, &v) || errors.As(err, &n) || errors.As(err, &c) || errors.As(err, &s)
}
