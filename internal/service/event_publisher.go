package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"prediction-market-gateway/internal/core/domain"
	"prediction-market-gateway/internal/core/ports"
	"prediction-market-gateway/internal/metrics"

	"github.com/rs/zerolog"
)

// webhookRetryIntervals are the pauses between delivery attempts.
var webhookRetryIntervals = []time.Duration{
	15 * time.Second,
	60 * time.Second,
	2 * time.Minute,
	5 * time.Minute,
}

const (
	HeaderWebhookSignature = "X-Webhook-Signature"
	HeaderWebhookTimestamp = "X-Webhook-Timestamp"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// WebhookPayload is the JSON body posted to the webhook URL.
// Signature is HMAC-SHA256 over the JSON encoding of Data.
type WebhookPayload struct {
	EventType string             `json:"event_type"`
	Data      domain.MarketEvent `json:"data"`
	Signature string             `json:"signature"`
}

// WebhookPublisher implements ports.EventPublisher by POSTing signed events.
type WebhookPublisher struct {
	url        string
	secret     string
	sigSvc     ports.SignatureService
	httpClient HTTPClient
	retries    []time.Duration
	log        zerolog.Logger
}

// NewWebhookPublisher creates a publisher for url. An empty url disables it.
func NewWebhookPublisher(url, secret string, sigSvc ports.SignatureService, httpClient HTTPClient, log zerolog.Logger) *WebhookPublisher {
	return &WebhookPublisher{
		url:        url,
		secret:     secret,
		sigSvc:     sigSvc,
		httpClient: httpClient,
		retries:    webhookRetryIntervals,
		log:        log,
	}
}

// Publish signs event and delivers it in the background with retries.
func (p *WebhookPublisher) Publish(ctx context.Context, event domain.MarketEvent) {
	if p.url == "" {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.log.Error().Err(err).Str("market_id", event.MarketID.String()).Msg("webhook: failed to marshal event")
		return
	}
	signature := p.sigSvc.Sign(p.secret, string(data))

	body, err := json.Marshal(WebhookPayload{
		EventType: string(event.Type),
		Data:      event,
		Signature: signature,
	})
	if err != nil {
		p.log.Error().Err(err).Str("market_id", event.MarketID.String()).Msg("webhook: failed to marshal payload")
		return
	}

	go p.deliverWithRetries(ctx, body, signature, event)
}

// deliverWithRetries attempts delivery until a 2xx or the schedule runs out.
func (p *WebhookPublisher) deliverWithRetries(ctx context.Context, body []byte, signature string, event domain.MarketEvent) {
	marketID := event.MarketID.String()
	for attempt := 0; attempt <= len(p.retries); attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(p.retries[attempt-1]):
			case <-ctx.Done():
				p.log.Warn().Str("market_id", marketID).Msg("webhook: delivery abandoned")
				return
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
		if err != nil {
			p.log.Error().Err(err).Str("market_id", marketID).Msg("webhook: failed to create request")
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(HeaderWebhookSignature, signature)
		req.Header.Set(HeaderWebhookTimestamp, strconv.FormatInt(event.OccurredAt.Unix(), 10))

		resp, err := p.httpClient.Do(req)
		if err != nil {
			metrics.WebhookDeliveries.WithLabelValues("error").Inc()
			p.log.Warn().Err(err).Str("market_id", marketID).Int("attempt", attempt+1).Msg("webhook: delivery failed")
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			metrics.WebhookDeliveries.WithLabelValues("delivered").Inc()
			p.log.Info().Str("market_id", marketID).Str("event", string(event.Type)).Int("attempt", attempt+1).Msg("webhook: delivered")
			return
		}

		metrics.WebhookDeliveries.WithLabelValues("rejected").Inc()
		p.log.Warn().Str("market_id", marketID).Int("attempt", attempt+1).Int("status", resp.StatusCode).Msg("webhook: non-2xx response, retrying")
	}

	metrics.WebhookDeliveries.WithLabelValues("exhausted").Inc()
	p.log.Error().Str("market_id", marketID).Msg("webhook: all retry attempts exhausted")
}

// Broadcaster fans an event out to several publishers.
type Broadcaster []ports.EventPublisher

// Publish forwards event to every non-nil publisher.
func (b Broadcaster) Publish(ctx context.Context, event domain.MarketEvent) {
	for _, p := range b {
		if p != nil {
			p.Publish(ctx, event)
		}
	}
}
