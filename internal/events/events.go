// Package events defines the domain events emitted after a committed transfer.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const TopicPointsTransferred = "points_transferred"

// Publisher delivers one event to topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
}

// Keyed events are partitioned by their key.
type Keyed interface {
	EventKey() string
}

// PointsTransferred is emitted once per credited employee.
type PointsTransferred struct {
	Reference string          `json:"reference"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Value     decimal.Decimal `json:"value"`
	Superuser bool            `json:"superuser"`
	At        time.Time       `json:"at"`
}

func (e PointsTransferred) EventKey() string {
	return e.To
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error {
	return nil
}
