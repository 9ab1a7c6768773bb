package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clipdeck/statistics-service/internal/platform/logger"
)

func testHandlersLogger(t *testing.T) logger.Logger {
	t.Helper()
	return logger.Must(logger.Config{Level: "fatal"})
}

func TestHealth_AlwaysReportsOK(t *testing.T) {
	h := &Handlers{log: testHandlersLogger(t)}
	c, w := ginTestContext(http.MethodGet, "/health")

	h.Health(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestReady_NilReadyCheckReportsReady(t *testing.T) {
	h := &Handlers{log: testHandlersLogger(t)}
	c, w := ginTestContext(http.MethodGet, "/ready")

	h.Ready(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ready"}`, w.Body.String())
}

func TestReady_FailingCheckReportsUnavailable(t *testing.T) {
	h := &Handlers{
		log:        testHandlersLogger(t),
		readyCheck: func() error { return errors.New("database unreachable") },
	}
	c, w := ginTestContext(http.MethodGet, "/ready")

	h.Ready(c)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.JSONEq(t, `{"status":"not ready","error":"database unreachable"}`, w.Body.String())
}

func TestReady_PassingCheckReportsReady(t *testing.T) {
	h := &Handlers{
		log:        testHandlersLogger(t),
		readyCheck: func() error { return nil },
	}
	c, w := ginTestContext(http.MethodGet, "/ready")

	h.Ready(c)

	require.Equal(t, http.StatusOK, w.Code)
}
