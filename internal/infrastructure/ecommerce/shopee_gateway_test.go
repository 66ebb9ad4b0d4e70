package ecommerce

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerdesk/backend/internal/domain/integration"
)

func newTestGateway(t *testing.T, serverURL, accessToken string) *ShopeeGateway {
	t.Helper()
	cfg := &ShopeeConfig{
		PartnerID:   1001,
		PartnerKey:  "secret",
		ShopID:      2002,
		AccessToken: accessToken,
		APIBaseURL:  serverURL,
	}
	gw, err := NewShopeeGateway(cfg, nil)
	require.NoError(t, err)
	gw.now = func() time.Time { return time.Unix(1700000000, 0) }
	return gw
}

func TestShopeeGateway_CallSignsGetRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v2/logistics/get_tracking_number", r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, "1001", q.Get("partner_id"))
		assert.Equal(t, "2002", q.Get("shop_id"))
		assert.Equal(t, "tok", q.Get("access_token"))
		assert.Equal(t, "1700000000", q.Get("timestamp"))
		assert.Equal(t, "SN1", q.Get("order_sn"))

		cfg := &ShopeeConfig{PartnerID: 1001, PartnerKey: "secret", ShopID: 2002, AccessToken: "tok"}
		assert.Equal(t, cfg.Sign(r.URL.Path, 1700000000), q.Get("sign"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":"","message":"","request_id":"req-1","response":{"tracking_number":"TRK-1"}}`))
	}))
	defer server.Close()

	gw := newTestGateway(t, server.URL, "tok")
	resp, err := gw.Call(context.Background(), &integration.GatewayRequest{
		Path:   "/api/v2/logistics/get_tracking_number",
		Params: map[string]any{"order_sn": "SN1"},
	})
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())
	assert.Equal(t, "req-1", resp.RequestID)
	assert.NotEmpty(t, resp.Raw)

	var payload ShopeeTrackingNumber
	require.NoError(t, resp.Decode(&payload))
	assert.Equal(t, "TRK-1", payload.TrackingNumber)
}

func TestShopeeGateway_CallPostsJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.URL.Query().Get("order_sn"))

		body, _ := io.ReadAll(r.Body)
		var params map[string]any
		assert.NoError(t, json.Unmarshal(body, &params))
		assert.Equal(t, "SN1", params["order_sn"])

		_, _ = w.Write([]byte(`{"error":"","message":"","request_id":"req-2"}`))
	}))
	defer server.Close()

	gw := newTestGateway(t, server.URL, "tok")
	resp, err := gw.Call(context.Background(), &integration.GatewayRequest{
		Path:   "/api/v2/logistics/ship_order",
		Method: http.MethodPost,
		Params: map[string]any{"order_sn": "SN1"},
	})
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())
}

func TestShopeeGateway_CallReturnsErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"error_auth","message":"Invalid access_token.","request_id":"req-3"}`))
	}))
	defer server.Close()

	gw := newTestGateway(t, server.URL, "tok")
	resp, err := gw.Call(context.Background(), &integration.GatewayRequest{Path: "/api/v2/logistics/get_address_list"})
	require.NoError(t, err)
	assert.False(t, resp.IsSuccess())
	assert.Equal(t, "error_auth", resp.Error)
	assert.Equal(t, "Invalid access_token.", resp.Message)
}

func TestShopeeGateway_CallTransportFailures(t *testing.T) {
	t.Run("missing access token never calls out", func(t *testing.T) {
		called := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer server.Close()

		gw := newTestGateway(t, server.URL, "")
		_, err := gw.Call(context.Background(), &integration.GatewayRequest{Path: "/api/v2/x"})
		assert.ErrorIs(t, err, integration.ErrPlatformAuthFailed)
		assert.False(t, called)
	})

	t.Run("server error without envelope", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("bad gateway"))
		}))
		defer server.Close()

		gw := newTestGateway(t, server.URL, "tok")
		_, err := gw.Call(context.Background(), &integration.GatewayRequest{Path: "/api/v2/x"})
		assert.ErrorIs(t, err, integration.ErrPlatformRequestFailed)
	})

	t.Run("undecodable success body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		}))
		defer server.Close()

		gw := newTestGateway(t, server.URL, "tok")
		_, err := gw.Call(context.Background(), &integration.GatewayRequest{Path: "/api/v2/x"})
		assert.ErrorIs(t, err, integration.ErrPlatformInvalidResponse)
	})

	t.Run("unreachable host", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		gw := newTestGateway(t, url, "tok")
		_, err := gw.Call(context.Background(), &integration.GatewayRequest{Path: "/api/v2/x"})
		assert.ErrorIs(t, err, integration.ErrPlatformUnavailable)
	})

	t.Run("invalid request", func(t *testing.T) {
		gw := newTestGateway(t, "http://127.0.0.1:1", "tok")
		_, err := gw.Call(context.Background(), &integration.GatewayRequest{})
		assert.Error(t, err)
	})
}

func TestShopeeGateway_RateLimiterHonoursContext(t *testing.T) {
	cfg := &ShopeeConfig{
		PartnerID:         1,
		PartnerKey:        "k",
		ShopID:            2,
		AccessToken:       "tok",
		APIBaseURL:        "http://127.0.0.1:1",
		RequestsPerSecond: 0.001,
		Burst:             1,
	}
	gw, err := NewShopeeGateway(cfg, nil)
	require.NoError(t, err)
	// Drain the single token so the next call has to wait
	require.True(t, gw.limiter.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = gw.Call(ctx, &integration.GatewayRequest{Path: "/api/v2/x"})
	assert.ErrorIs(t, err, integration.ErrPlatformRateLimited)
}

func TestFormatQueryValue(t *testing.T) {
	assert.Equal(t, "a,b", formatQueryValue([]string{"a", "b"}))
	assert.Equal(t, "42", formatQueryValue(int64(42)))
	assert.Equal(t, "7", formatQueryValue(7))
	assert.Equal(t, "true", formatQueryValue(true))
	assert.Equal(t, "x", formatQueryValue("x"))
	assert.Equal(t, "1.5", formatQueryValue(1.5))
}

type callRecord struct {
	path   string
	status int
	failed bool
}

type recordingCallRecorder struct {
	calls []callRecord
}

func (r *recordingCallRecorder) RecordPlatformCall(_ context.Context, path string, status int, failed bool, _ time.Duration) {
	r.calls = append(r.calls, callRecord{path: path, status: status, failed: failed})
}

func TestShopeeGateway_RecordsCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v2/logistics/get_address_list" {
			_, _ = w.Write([]byte(`{"error":"","response":{}}`))
			return
		}
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"error_auth","message":"Invalid access_token."}`))
	}))
	defer server.Close()

	recorder := &recordingCallRecorder{}
	gw := newTestGateway(t, server.URL, "tok")
	gw.SetCallRecorder(recorder)

	_, err := gw.Call(context.Background(), &integration.GatewayRequest{Path: "/api/v2/logistics/get_address_list"})
	require.NoError(t, err)
	_, err = gw.Call(context.Background(), &integration.GatewayRequest{Path: "/api/v2/logistics/ship_order", Method: http.MethodPost})
	require.NoError(t, err)

	assert.Equal(t, []callRecord{
		{path: "/api/v2/logistics/get_address_list", status: http.StatusOK},
		{path: "/api/v2/logistics/ship_order", status: http.StatusForbidden, failed: true},
	}, recorder.calls)
}
