package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/StockPOS-api/internal/domain"
)

func TestPersistence_EnvuelveSoloErroresDeInfraestructura(t *testing.T) {
	cause := errors.New("connection reset")
	err := domain.Persistence("guardar venta", cause)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.ErrorIs(t, err, cause)

	nf := fmt.Errorf("producto x: %w", domain.ErrNotFound)
	assert.Same(t, nf, domain.Persistence("obtener", nf))
	assert.NoError(t, domain.Persistence("nada", nil))
}

func TestValidationError_EsErrInvalidInput(t *testing.T) {
	err := domain.NewValidationError("quantity", "min")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "quantity: min")
}

func TestReconciliationError(t *testing.T) {
	cause := fmt.Errorf("línea 2: %w", domain.ErrInsufficientStock)
	err := &domain.ReconciliationError{SaleID: "s1", Cause: cause, Failures: []error{errors.New("timeout")}}
	assert.ErrorIs(t, err, domain.ErrReconciliationRequired)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "s1")
}
