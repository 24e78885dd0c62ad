package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")
	ErrConflict               = errors.New("conflicto con el estado actual")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrInvalidStateTransition = errors.New("transición de estado inválida")
	ErrAlreadyApproved        = errors.New("el ajuste ya fue aprobado")
	ErrInvalidOperation       = errors.New("operación no permitida")
)

// InsufficientStockError se devuelve cuando la cantidad disponible no cubre lo solicitado.
type InsufficientStockError struct {
	InventoryItemID string
	Available       int
	Requested       int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente en el ítem %s: disponible %d, solicitado %d",
		e.InventoryItemID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// InvalidStateTransitionError indica que la operación no es legal desde el estado actual.
// El mensaje siempre incluye el estado actual para diagnóstico del operador.
type InvalidStateTransitionError struct {
	Entity  string
	ID      string
	Current string
	Target  string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("%s %s: no se puede pasar de %s a %s", e.Entity, e.ID, e.Current, e.Target)
}

func (e *InvalidStateTransitionError) Unwrap() error { return ErrInvalidStateTransition }

// AlreadyApprovedError se devuelve al aprobar o rechazar un ajuste ya aprobado.
type AlreadyApprovedError struct {
	AdjustmentID string
}

func (e *AlreadyApprovedError) Error() string {
	return fmt.Sprintf("el ajuste %s ya fue aprobado", e.AdjustmentID)
}

func (e *AlreadyApprovedError) Unwrap() error { return ErrAlreadyApproved }

// ValidationError describe un campo de entrada inválido.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NotFoundError indica que el recurso referenciado no existe.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s no encontrado", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InvalidOperationError indica una operación prohibida en el estado actual (p. ej. cancelar un traslado recibido).
type InvalidOperationError struct {
	Entity    string
	ID        string
	Operation string
	Current   string
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("%s %s: la operación %s no está permitida en estado %s", e.Entity, e.ID, e.Operation, e.Current)
}

func (e *InvalidOperationError) Unwrap() error { return ErrInvalidOperation }

// NewValidationError atajo para construir errores de validación.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewNotFoundError atajo para construir errores de recurso inexistente.
func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}
