package domain

import (
	"time"

	"github.com/google/uuid"
)

// MarketEventType names a lifecycle notification.
type MarketEventType string

const (
	MarketEventCreated  MarketEventType = "MARKET_CREATED"
	MarketEventResolved MarketEventType = "MARKET_RESOLVED"
)

// MarketEvent is pushed to websocket subscribers and the webhook endpoint.
type MarketEvent struct {
	Type       MarketEventType `json:"event_type"`
	MarketID   uuid.UUID       `json:"market_id"`
	Question   string          `json:"question"`
	Status     MarketStatus    `json:"status"`
	Outcome    *bool           `json:"outcome,omitempty"`
	Actor      string          `json:"actor"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewMarketEvent snapshots m for an event raised by actor.
func NewMarketEvent(eventType MarketEventType, m *Market, actor string, at time.Time) MarketEvent {
	return MarketEvent{
		Type:       eventType,
		MarketID:   m.ID,
		Question:   m.Question,
		Status:     m.Status,
		Outcome:    m.ResolvedOutcome,
		Actor:      actor,
		OccurredAt: at.UTC(),
	}
}
