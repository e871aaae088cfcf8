package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"dundie-rewards/internal/events"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePointsTransferred(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ev := events.PointsTransferred{
		Reference: "ref-1",
		From:      "michael@co.com",
		To:        "jim@co.com",
		Value:     decimal.NewFromInt(10),
		Superuser: true,
		At:        at,
	}

	msg, err := encode(events.TopicPointsTransferred, ev)
	require.NoError(t, err)

	assert.Equal(t, events.TopicPointsTransferred, msg.Topic)
	assert.Equal(t, "jim@co.com", string(msg.Key))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "ref-1", decoded["reference"])
	assert.Equal(t, "10", decoded["value"])
	assert.Equal(t, true, decoded["superuser"])
}

func TestEncodeUnkeyedEvent(t *testing.T) {
	msg, err := encode("misc", map[string]int{"n": 1})
	require.NoError(t, err)
	assert.Nil(t, msg.Key)
	assert.JSONEq(t, `{"n":1}`, string(msg.Value))
}

func TestEncodeRejectsUnmarshalable(t *testing.T) {
	_, err := encode("misc", make(chan int))
	assert.Error(t, err)
}

func TestPublisherImplementsInterface(t *testing.T) {
	var p events.Publisher = NewPublisher([]string{"localhost:9092"})
	require.NotNil(t, p)
	assert.NoError(t, p.(*Publisher).Close())
}
