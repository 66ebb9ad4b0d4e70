package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appfulfillment "github.com/sellerdesk/backend/internal/application/fulfillment"
	"github.com/sellerdesk/backend/internal/infrastructure/config"
	"github.com/sellerdesk/backend/internal/interfaces/http/middleware"
)

func TestWriteTimeout(t *testing.T) {
	lockTTL := appfulfillment.Config{CallTimeout: 30 * time.Second}.Normalized().ShipmentLockTTL

	assert.Greater(t, writeTimeout(60*time.Second, lockTTL), lockTTL)
	assert.Equal(t, time.Hour, writeTimeout(time.Hour, lockTTL))
}

func TestNewShopeeConfig(t *testing.T) {
	t.Run("sandbox with overrides", func(t *testing.T) {
		sc := newShopeeConfig(&config.PlatformConfig{
			PartnerID:         1,
			PartnerKey:        "key",
			ShopID:            2,
			AccessToken:       "token",
			Sandbox:           true,
			BaseURL:           "http://127.0.0.1:9000",
			TimeoutSeconds:    5,
			RequestsPerSecond: 2,
			Burst:             4,
		})
		assert.Equal(t, "http://127.0.0.1:9000", sc.APIBaseURL)
		assert.Equal(t, 5, sc.TimeoutSeconds)
		assert.Equal(t, 2.0, sc.RequestsPerSecond)
		assert.Equal(t, 4, sc.Burst)
	})

	t.Run("production keeps defaults", func(t *testing.T) {
		sc := newShopeeConfig(&config.PlatformConfig{PartnerID: 1, PartnerKey: "key", ShopID: 2})
		assert.NotEmpty(t, sc.APIBaseURL)
		assert.Positive(t, sc.TimeoutSeconds)
	})
}

func TestLoggerConfig(t *testing.T) {
	lc := loggerConfig(&config.LogConfig{Level: "debug", Format: "json"})
	assert.Equal(t, "debug", lc.Level)
	assert.Equal(t, "json", lc.Format)
	assert.Equal(t, "stdout", lc.Output)
	assert.NotEmpty(t, lc.TimeFormat)
}

func TestCORSConfig(t *testing.T) {
	cc := corsConfig(&config.HTTPConfig{CORSAllowOrigins: []string{"https://seller.example"}})
	assert.Equal(t, []string{"https://seller.example"}, cc.AllowOrigins)
	assert.Equal(t, middleware.DefaultCORSConfig().AllowMethods, cc.AllowMethods)
	assert.Contains(t, cc.ExposeHeaders, middleware.RequestIDKey)
	assert.Equal(t, 12*time.Hour, cc.MaxAge)
}

func TestDBTracingConfig(t *testing.T) {
	tc := dbTracingConfig(&config.TelemetryConfig{DBTraceEnabled: true})
	assert.True(t, tc.Enabled)
	assert.Equal(t, "postgresql", tc.DBSystem)
	assert.Equal(t, 200*time.Millisecond, tc.SlowQueryThresh)

	tc = dbTracingConfig(&config.TelemetryConfig{DBSlowQueryThresh: time.Second})
	assert.Equal(t, time.Second, tc.SlowQueryThresh)
}
