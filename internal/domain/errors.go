package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
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
	ErrPersistence            = errors.New("fallo de persistencia")
	ErrReconciliationRequired = errors.New("se requiere conciliación manual del stock")
)

// ValidationError detalla qué campos fallaron. errors.Is(err, ErrInvalidInput) es true.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError construye un ValidationError con un solo campo.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidInput.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrInvalidInput.Error() + " (" + strings.Join(parts, ", ") + ")"
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Persistence envuelve un error de almacenamiento para que sea reconocible como ErrPersistence
// sin perder la causa original. Los errores de dominio pasan sin cambios.
func Persistence(op string, err error) error {
	if err == nil || isDomainError(err) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

func isDomainError(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrInvalidInput, ErrDuplicate, ErrUnauthorized, ErrForbidden, ErrConflict,
		ErrInsufficientStock, ErrInvalidStateTransition, ErrPersistence, ErrReconciliationRequired,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ReconciliationError se devuelve cuando una venta falló y además no se pudo revertir
// todo el stock ya descontado. El operador debe corregir el inventario a mano.
type ReconciliationError struct {
	SaleID   string
	Cause    error
	Failures []error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("%s: venta %s: causa: %v; compensaciones fallidas: %v",
		ErrReconciliationRequired.Error(), e.SaleID, e.Cause, errors.Join(e.Failures...))
}

// Unwrap expone tanto el sentinel como la causa original.
func (e *ReconciliationError) Unwrap() []error {
	return append([]error{ErrReconciliationRequired, e.Cause}, e.Failures...)
}
