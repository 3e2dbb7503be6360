package sequence_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/StockPOS-api/internal/domain/sequence"
)

func TestGenerator_Formato(t *testing.T) {
	fixed := time.Date(2026, 3, 7, 15, 4, 5, 0, time.UTC)
	g := sequence.NewGeneratorWith("SALE", func() time.Time { return fixed }, func(int) int { return 7 })
	assert.Equal(t, "SALE-20260307-007", g.Next())
}

func TestGenerator_Real(t *testing.T) {
	g := sequence.NewGenerator("RET")
	re := regexp.MustCompile(`^RET-\d{8}-\d{3}$`)
	for i := 0; i < 50; i++ {
		assert.Regexp(t, re, g.Next())
	}
}
