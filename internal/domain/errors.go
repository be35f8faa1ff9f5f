package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrInvalidState = errors.New("operación no permitida en el estado actual")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrUnavailable  = errors.New("servicio externo no configurado")
)

// ValidationError indica una precondición de entrada violada (responsable vacío,
// conteo negativo, ítem o categoría desconocidos). Nunca se corrige en silencio.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError construye un ValidationError.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InvalidStateError indica una operación contra una entidad en un estado que no la admite
// (p. ej. registrar conteo en una sesión COMPLETED). El estado nunca se fuerza.
type InvalidStateError struct {
	Entity    string
	Operation string
	State     string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: %s no permitido en estado %s", e.Entity, e.Operation, e.State)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// NewInvalidStateError construye un InvalidStateError.
func NewInvalidStateError(entity, operation, state string) error {
	return &InvalidStateError{Entity: entity, Operation: operation, State: state}
}

// AdjustmentWriteError describe la falla de escritura de un único ítem durante la
// aplicación de ajustes. Se acumula en el reporte; no aborta el resto.
type AdjustmentWriteError struct {
	ItemID string
	Err    error
}

func (e AdjustmentWriteError) Error() string {
	return fmt.Sprintf("ajuste %s: %v", e.ItemID, e.Err)
}

func (e AdjustmentWriteError) Unwrap() error { return e.Err }
