package ecommerce

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
)

// ShopeeConfig holds configuration for the Shopee Open Platform v2 API
type ShopeeConfig struct {
	// PartnerID is the app partner id issued by the open platform
	PartnerID int64
	// PartnerKey is the secret used to sign requests
	PartnerKey string
	// ShopID is the authorized seller shop
	ShopID int64
	// AccessToken is the shop-level access token; an empty token fails every call with an auth error
	AccessToken string
	// APIBaseURL is the base URL for the API (production or sandbox)
	APIBaseURL string
	// IsSandbox indicates if this is the sandbox environment
	IsSandbox bool
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// RequestsPerSecond caps outgoing calls, 0 disables the limiter
	RequestsPerSecond float64
	// Burst is the limiter bucket size
	Burst int
}

const (
	// ShopeeProductionAPIURL is the production API endpoint
	ShopeeProductionAPIURL = "https://partner.shopeemobile.com"
	// ShopeeSandboxAPIURL is the sandbox API endpoint
	ShopeeSandboxAPIURL = "https://partner.test-stable.shopeemobile.com"
)

// Errors for Shopee configuration
var (
	ErrShopeeConfigMissingPartnerID  = errors.New("shopee: partner ID is required")
	ErrShopeeConfigMissingPartnerKey = errors.New("shopee: partner key is required")
	ErrShopeeConfigMissingShopID     = errors.New("shopee: shop ID is required")
	ErrShopeeConfigInvalidRateLimit  = errors.New("shopee: requests per second must not be negative")
)

// NewShopeeConfig creates a production configuration with defaults
func NewShopeeConfig(partnerID int64, partnerKey string, shopID int64, accessToken string) *ShopeeConfig {
	return &ShopeeConfig{
		PartnerID:         partnerID,
		PartnerKey:        partnerKey,
		ShopID:            shopID,
		AccessToken:       accessToken,
		APIBaseURL:        ShopeeProductionAPIURL,
		TimeoutSeconds:    30,
		RequestsPerSecond: 10,
		Burst:             5,
	}
}

// NewSandboxShopeeConfig creates a sandbox configuration with defaults
func NewSandboxShopeeConfig(partnerID int64, partnerKey string, shopID int64, accessToken string) *ShopeeConfig {
	cfg := NewShopeeConfig(partnerID, partnerKey, shopID, accessToken)
	cfg.APIBaseURL = ShopeeSandboxAPIURL
	cfg.IsSandbox = true
	return cfg
}

// Validate validates the configuration and fills defaults
func (c *ShopeeConfig) Validate() error {
	if c.PartnerID <= 0 {
		return ErrShopeeConfigMissingPartnerID
	}
	if c.PartnerKey == "" {
		return ErrShopeeConfigMissingPartnerKey
	}
	if c.ShopID <= 0 {
		return ErrShopeeConfigMissingShopID
	}
	if c.RequestsPerSecond < 0 {
		return ErrShopeeConfigInvalidRateLimit
	}
	if c.APIBaseURL == "" {
		if c.IsSandbox {
			c.APIBaseURL = ShopeeSandboxAPIURL
		} else {
			c.APIBaseURL = ShopeeProductionAPIURL
		}
	}
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.RequestsPerSecond > 0 && c.Burst <= 0 {
		c.Burst = 1
	}
	return nil
}

// Sign generates the request signature for a shop-level call.
// Base string: partner_id + api_path + timestamp + access_token + shop_id,
// signed with HMAC-SHA256 keyed by the partner key, hex encoded.
func (c *ShopeeConfig) Sign(path string, timestamp int64) string {
	var builder strings.Builder
	builder.WriteString(strconv.FormatInt(c.PartnerID, 10))
	builder.WriteString(path)
	builder.WriteString(strconv.FormatInt(timestamp, 10))
	builder.WriteString(c.AccessToken)
	builder.WriteString(strconv.FormatInt(c.ShopID, 10))

	h := hmac.New(sha256.New, []byte(c.PartnerKey))
	h.Write([]byte(builder.String()))
	return hex.EncodeToString(h.Sum(nil))
}
