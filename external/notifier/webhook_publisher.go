package notifier

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/frameleague/internal/platform/logging"
	"github.com/riskibarqy/frameleague/internal/platform/resilience"
)

var errWebhookTransient = crerr.New("webhook transient failure")

type WebhookPublisherConfig struct {
	Endpoint       string
	SigningToken   string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// WebhookPublisher delivers fixture notifications to a single configured
// HTTP endpoint. Delivery is fire-and-forget from the caller's point of
// view: workflow services log publish failures and carry on.
type WebhookPublisher struct {
	client         *fasthttp.Client
	endpoint       string
	signingToken   string
	timeout        time.Duration
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewWebhookPublisher(cfg WebhookPublisherConfig, logger *logging.Logger) *WebhookPublisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &WebhookPublisher{
		client: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		endpoint:       strings.TrimSpace(cfg.Endpoint),
		signingToken:   strings.TrimSpace(cfg.SigningToken),
		timeout:        timeout,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (p *WebhookPublisher) Publish(ctx context.Context, event string, payload any) error {
	event = strings.TrimSpace(event)
	if event == "" {
		return crerr.New("event name is required")
	}
	if p.endpoint == "" {
		return crerr.New("webhook endpoint is not configured")
	}

	if p.circuitEnabled {
		if err := p.breaker.Allow(); err != nil {
			p.logger.WarnContext(ctx, "webhook circuit breaker rejected publish",
				"event", event,
				"state", p.breaker.State(),
			)
			return fmt.Errorf("webhook endpoint is temporarily unavailable: %w", err)
		}
	}

	body, err := p.encodeEnvelope(event, payload)
	if err != nil {
		return crerr.Wrap(err, "marshal webhook envelope")
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("webhook.endpoint", p.endpoint),
			attribute.String("webhook.event", event),
			attribute.String("webhook.request_body", truncateForLog(string(body), 4096)),
		)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(p.endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if p.signingToken != "" {
		req.Header.Set("X-Webhook-Token", p.signingToken)
	}
	req.SetBody(body)

	if err := p.client.DoTimeout(req, resp, p.timeout); err != nil {
		callErr := fmt.Errorf("%w: deliver webhook event=%s endpoint=%s: %v", errWebhookTransient, event, p.endpoint, err)
		p.recordCircuitResult(callErr)
		return callErr
	}

	status := resp.StatusCode()
	if status/100 != 2 {
		raw := truncateForLog(strings.TrimSpace(string(resp.Body())), 4096)
		if isRetryableStatus(status) {
			callErr := fmt.Errorf("%w: deliver webhook event=%s status=%d body=%s", errWebhookTransient, event, status, raw)
			p.recordCircuitResult(callErr)
			return callErr
		}

		callErr := fmt.Errorf("deliver webhook event=%s status=%d body=%s", event, status, raw)
		p.recordCircuitResult(callErr)
		return callErr
	}

	p.logger.InfoContext(ctx, "webhook event delivered", "event", event, "status", status)
	p.recordCircuitResult(nil)
	return nil
}

func (p *WebhookPublisher) encodeEnvelope(event string, payload any) ([]byte, error) {
	if payload == nil {
		payload = map[string]any{}
	}

	encodedPayload, err := sonic.Marshal(payload)
	if err != nil {
		return nil, err
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(`{"event":`)
	encodedEvent, err := sonic.Marshal(event)
	if err != nil {
		return nil, err
	}
	_, _ = buf.Write(encodedEvent)
	_, _ = buf.WriteString(`,"published_at":"`)
	_, _ = buf.WriteString(time.Now().UTC().Format(time.RFC3339Nano))
	_, _ = buf.WriteString(`","payload":`)
	_, _ = buf.Write(encodedPayload)
	_ = buf.WriteByte('}')

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

func (p *WebhookPublisher) recordCircuitResult(err error) {
	if !p.circuitEnabled || p.breaker == nil {
		return
	}
	if err == nil {
		p.breaker.RecordSuccess()
		return
	}
	if isWebhookCircuitFailure(err) {
		p.breaker.RecordFailure()
		return
	}
	p.breaker.RecordSuccess()
}

func isWebhookCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errWebhookTransient)
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}

func truncateForLog(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}
