package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sellerdesk/backend/internal/domain/integration"
	"github.com/sellerdesk/backend/internal/infrastructure/telemetry"
)

// maxShopeeResponseSize limits the response body size to prevent memory exhaustion
const maxShopeeResponseSize = 10 * 1024 * 1024

// ShopeeGateway implements integration.Gateway for the Shopee Open Platform
type ShopeeGateway struct {
	config     *ShopeeConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
	recorder   CallRecorder
	now        func() time.Time
}

// CallRecorder observes every platform call
type CallRecorder interface {
	RecordPlatformCall(ctx context.Context, path string, status int, failed bool, latency time.Duration)
}

var _ integration.Gateway = (*ShopeeGateway)(nil)

// NewShopeeGateway creates a gateway for the given configuration
func NewShopeeGateway(config *ShopeeConfig, logger *zap.Logger) (*ShopeeGateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var limiter *rate.Limiter
	if config.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst)
	}

	return &ShopeeGateway{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		limiter: limiter,
		logger:  logger.Named("shopee"),
		now:     time.Now,
	}, nil
}

// SetCallRecorder attaches a recorder for call latency and outcome
func (g *ShopeeGateway) SetCallRecorder(r CallRecorder) {
	g.recorder = r
}

func (g *ShopeeGateway) record(ctx context.Context, path string, status int, failed bool, start time.Time) {
	if g.recorder != nil {
		g.recorder.RecordPlatformCall(ctx, path, status, failed, time.Since(start))
	}
}

// Call signs and sends a request. Platform business errors are returned in the
// response envelope; only transport failures produce an error.
func (g *ShopeeGateway) Call(ctx context.Context, req *integration.GatewayRequest) (*integration.GatewayResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if g.config.AccessToken == "" {
		return nil, integration.ErrPlatformAuthFailed
	}

	ctx, span := telemetry.StartSpan(ctx, "shopee "+req.Path,
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute("http.request.method", req.Method),
		telemetry.WithAttribute(telemetry.SpanAttrPlatformPath, req.Path),
	)
	defer span.End()

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("%w: %v", integration.ErrPlatformRateLimited, err)
		}
	}

	httpReq, err := g.buildRequest(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	start := time.Now()
	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		g.record(ctx, req.Path, 0, true, start)
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxShopeeResponseSize))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("shopee: failed to read response: %w", err)
	}

	g.logger.Debug("shopee call",
		zap.String("path", req.Path),
		zap.String("method", req.Method),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	var out integration.GatewayResponse
	if err := json.Unmarshal(body, &out); err != nil {
		// Shopee answers 4xx with an error envelope; anything undecodable is a transport failure
		if resp.StatusCode >= 400 {
			err = fmt.Errorf("%w: HTTP %d", integration.ErrPlatformRequestFailed, resp.StatusCode)
		} else {
			err = fmt.Errorf("%w: %v", integration.ErrPlatformInvalidResponse, err)
		}
		g.record(ctx, req.Path, resp.StatusCode, true, start)
		telemetry.RecordError(span, err)
		return nil, err
	}
	if resp.StatusCode >= 400 && out.Error == "" {
		err := fmt.Errorf("%w: HTTP %d", integration.ErrPlatformRequestFailed, resp.StatusCode)
		g.record(ctx, req.Path, resp.StatusCode, true, start)
		telemetry.RecordError(span, err)
		return nil, err
	}
	out.Raw = body
	g.record(ctx, req.Path, resp.StatusCode, !out.IsSuccess(), start)

	telemetry.SetAttributes(span,
		telemetry.SpanAttrRequestID, out.RequestID,
		telemetry.SpanAttrPlatformError, out.Error,
	)
	return &out, nil
}

// buildRequest attaches the common signed parameters
func (g *ShopeeGateway) buildRequest(ctx context.Context, req *integration.GatewayRequest) (*http.Request, error) {
	timestamp := g.now().Unix()

	query := url.Values{}
	query.Set("partner_id", strconv.FormatInt(g.config.PartnerID, 10))
	query.Set("timestamp", strconv.FormatInt(timestamp, 10))
	query.Set("access_token", g.config.AccessToken)
	query.Set("shop_id", strconv.FormatInt(g.config.ShopID, 10))
	query.Set("sign", g.config.Sign(req.Path, timestamp))

	var body io.Reader
	if req.Method == http.MethodGet {
		for k, v := range req.Params {
			query.Set(k, formatQueryValue(v))
		}
	} else {
		payload := req.Params
		if payload == nil {
			payload = map[string]any{}
		}
		bodyBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("shopee: failed to marshal request: %w", err)
		}
		body = bytes.NewReader(bodyBytes)
	}

	endpoint := g.config.APIBaseURL + req.Path + "?" + query.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("shopee: failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	return httpReq, nil
}

// formatQueryValue renders list parameters comma separated as the platform expects
func formatQueryValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		return strings.Join(val, ",")
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
