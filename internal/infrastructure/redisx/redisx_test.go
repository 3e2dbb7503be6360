package redisx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLockKey(t *testing.T) {
	assert.Equal(t, "stock:p-1", lockKey("p-1"))
}
