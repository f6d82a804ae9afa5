package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/accountsvc/apiserver/types"
)

// Message attributes understood by the backends.
const (
	AttrEventType   = "type"
	AttrContentType = "content-type"
	// AttrOrderingKey groups messages that must be delivered in order.
	AttrOrderingKey = "ordering-key"
)

// AccountEvents publishes account lifecycle events as JSON on one channel.
type AccountEvents struct {
	mq      *MQ
	channel string
}

func NewAccountEvents(m *MQ, channel string) (*AccountEvents, error) {
	if m == nil {
		return nil, errors.New("mq is required")
	}
	if strings.TrimSpace(channel) == "" {
		return nil, errors.New("events channel is required")
	}
	return &AccountEvents{mq: m, channel: channel}, nil
}

func (e *AccountEvents) Publish(ctx context.Context, event types.AccountEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event.Type, err)
	}
	attrs := map[string]string{
		AttrEventType:   event.Type,
		AttrContentType: "application/json",
		AttrOrderingKey: event.AccountID,
	}
	if _, err := e.mq.Publish(ctx, e.channel, data, attrs); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// Consume decodes events from the channel and hands them to fn until ctx
// is done. Undecodable messages are acked and dropped.
func (e *AccountEvents) Consume(ctx context.Context, fn func(context.Context, types.AccountEvent) error) error {
	return e.mq.Subscribe(ctx, e.channel, func(ctx context.Context, msg Message) error {
		var event types.AccountEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			return nil
		}
		return fn(ctx, event)
	})
}
