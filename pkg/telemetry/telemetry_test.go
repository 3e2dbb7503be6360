package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_SinEndpointEsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{ServiceName: "stockpos-api"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
