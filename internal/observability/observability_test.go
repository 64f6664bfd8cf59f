package observability

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	l, err := NewLogger("debug", "console")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = NewLogger("warn", "json")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))

	_, err = NewLogger("loud", "json")
	assert.Error(t, err)
}

func TestSetupTracing_Stdout(t *testing.T) {
	var buf bytes.Buffer
	tp, shutdown, err := SetupTracing("stdout", &buf, "todo-api-test")
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "unit")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"Name":"unit"`)
}

func TestSetupTracing_NoneAndUnknown(t *testing.T) {
	_, shutdown, err := SetupTracing("none", io.Discard, "x")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	_, _, err = SetupTracing("jaeger", io.Discard, "x")
	assert.Error(t, err)
}

func TestMetrics_ObserveAndServe(t *testing.T) {
	m := NewMetrics()
	m.ObserveRequest("GET", "/todos/", 200, 10*time.Millisecond)
	m.ObserveRequest("GET", "/todos/", 200, 20*time.Millisecond)
	m.SetStoreUp(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/todos/", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeUp))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "todo_http_requests_total")
	assert.Contains(t, rec.Body.String(), "todo_store_up 1")
}
