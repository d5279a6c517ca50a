package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseHeaders(t *testing.T) {
	headers := ParseHeaders(" api-key = abc ,broken, =skip,tenant=ledger")
	require.Equal(t, map[string]string{"api-key": "abc", "tenant": "ledger"}, headers)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://collector:4318")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-token=1")
	cfg := Config{ServiceName: "stakingd"}.ApplyEnv()
	require.Equal(t, "collector:4318", cfg.Endpoint)
	require.True(t, cfg.Insecure)
	require.Equal(t, "1", cfg.Headers["x-token"])
}

func TestInitRequiresServiceName(t *testing.T) {
	_, err := Init(context.Background(), Config{})
	require.Error(t, err)
}

func TestInitWithoutExporters(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{ServiceName: "stakingd"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
	require.NotNil(t, Tracer("stakingd"))
}
