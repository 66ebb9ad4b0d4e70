package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestNewSystemHandler(t *testing.T) {
	h := NewSystemHandler("sellerdesk-fulfillment", "1.2.0", nil)
	assert.NotNil(t, h)
	assert.False(t, h.startTime.IsZero())
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler("sellerdesk-fulfillment", "1.2.0", nil)
	c, w := newTestContext(http.MethodGet, "/api/v1/system/info")

	h.GetSystemInfo(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "sellerdesk-fulfillment", data["name"])
	assert.Equal(t, "1.2.0", data["version"])
	assert.NotEmpty(t, data["go_version"])
	assert.NotEmpty(t, data["uptime"])
}

func TestSystemHandler_Ping(t *testing.T) {
	h := NewSystemHandler("svc", "dev", nil)
	c, w := newTestContext(http.MethodGet, "/api/v1/system/ping")

	h.Ping(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "pong", data["message"])
	assert.NotEmpty(t, data["timestamp"])
}

func TestSystemHandler_Health(t *testing.T) {
	ok := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })

	t.Run("all dependencies healthy", func(t *testing.T) {
		h := NewSystemHandler("svc", "dev", map[string]Pinger{"database": ok, "redis": ok})
		c, w := newTestContext(http.MethodGet, "/health")

		h.Health(c)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "healthy", data["status"])
		assert.Equal(t, map[string]any{"database": "healthy", "redis": "healthy"}, data["checks"])
	})

	t.Run("database down", func(t *testing.T) {
		h := NewSystemHandler("svc", "dev", map[string]Pinger{"database": down, "redis": ok})
		c, w := newTestContext(http.MethodGet, "/health")

		h.Health(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		resp := decodeResponse(t, w)
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "unhealthy", data["status"])
		checks := data["checks"].(map[string]any)
		assert.Equal(t, "unhealthy: connection refused", checks["database"])
		assert.Equal(t, "healthy", checks["redis"])
	})

	t.Run("no checks registered", func(t *testing.T) {
		h := NewSystemHandler("svc", "dev", nil)
		c, w := newTestContext(http.MethodGet, "/health")

		h.Health(c)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
