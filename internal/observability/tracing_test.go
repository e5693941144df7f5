package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/tuannvm/enclave-resolver/internal/common/logging"
)

func TestSetupDisabled(t *testing.T) {
	before := otel.GetTracerProvider()

	shutdown, err := Setup(context.Background(), TracingConfig{}, logging.Discard())
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
	assert.Equal(t, before, otel.GetTracerProvider())
}

func TestSetupEnabled(t *testing.T) {
	before := otel.GetTracerProvider()

	cfg := TracingConfig{Endpoint: "http://127.0.0.1:4318/v1/traces", ServiceVersion: "test"}
	shutdown, err := Setup(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	assert.NotEqual(t, before, otel.GetTracerProvider())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}

func TestNewResource(t *testing.T) {
	res := newResource(TracingConfig{ServiceVersion: "1.2.3"})

	values := map[string]string{}
	for _, kv := range res.Attributes() {
		values[string(kv.Key)] = kv.Value.AsString()
	}
	assert.Equal(t, ServiceName, values["service.name"])
	assert.Equal(t, "1.2.3", values["service.version"])
}
