package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/accountsvc/apiserver/config"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	defaultContentType = "application/octet-stream"
	rabbitAppID        = "accounts"
)

// RabbitMQClient publishes to queues on the default exchange; a channel name
// is the queue name.
type RabbitMQClient struct {
	conn            *amqp.Connection
	channel         *amqp.Channel
	queueDurable    bool
	queueAutoDelete bool

	mu       sync.Mutex
	declared map[string]bool
}

func NewRabbitMQClient(cfg config.RabbitMQConfig) (*RabbitMQClient, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("rabbitmq url is required")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if cfg.PrefetchCount > 0 {
		if err := ch.Qos(cfg.PrefetchCount, 0, false); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, err
		}
	}

	return &RabbitMQClient{
		conn:            conn,
		channel:         ch,
		queueDurable:    cfg.QueueDurable,
		queueAutoDelete: cfg.QueueAutoDelete,
		declared:        make(map[string]bool),
	}, nil
}

func (r *RabbitMQClient) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if strings.TrimSpace(channel) == "" {
		return "", errors.New("rabbitmq channel is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.declareQueue(channel); err != nil {
		return "", err
	}
	msg := publishing(data, attrs, r.queueDurable, time.Now())
	if err := r.channel.PublishWithContext(ctx, "", channel, false, false, msg); err != nil {
		return "", err
	}
	return msg.MessageId, nil
}

func (r *RabbitMQClient) Subscribe(ctx context.Context, channel string, handler Handler) error {
	if strings.TrimSpace(channel) == "" {
		return errors.New("rabbitmq channel is required")
	}

	consumerTag := rabbitAppID + "-" + uuid.NewString()
	r.mu.Lock()
	err := r.declareQueue(channel)
	var deliveries <-chan amqp.Delivery
	if err == nil {
		deliveries, err = r.channel.Consume(channel, consumerTag, false, false, false, false, nil)
	}
	r.mu.Unlock()
	if err != nil {
		return err
	}
	defer func() {
		_ = r.channel.Cancel(consumerTag, false)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("rabbitmq delivery channel closed")
			}
			if err := handler(ctx, fromDelivery(delivery)); err != nil {
				_ = delivery.Nack(false, true)
				continue
			}
			_ = delivery.Ack(false)
		}
	}
}

func (r *RabbitMQClient) Close() error {
	if r.channel != nil {
		_ = r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// declareQueue declares each queue once per client. Callers hold r.mu.
func (r *RabbitMQClient) declareQueue(name string) error {
	if r.declared[name] {
		return nil
	}
	if _, err := r.channel.QueueDeclare(name, r.queueDurable, r.queueAutoDelete, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", name, err)
	}
	r.declared[name] = true
	return nil
}

// publishing maps attributes onto AMQP properties. Content type and event
// type become the matching properties; the rest travel as headers.
func publishing(data []byte, attrs map[string]string, persistent bool, at time.Time) amqp.Publishing {
	msg := amqp.Publishing{
		ContentType: defaultContentType,
		MessageId:   uuid.NewString(),
		AppId:       rabbitAppID,
		Timestamp:   at.UTC(),
		Headers:     amqp.Table{},
		Body:        data,
	}
	for key, value := range attrs {
		switch key {
		case AttrContentType:
			msg.ContentType = value
		case AttrEventType:
			msg.Type = value
		default:
			msg.Headers[key] = value
		}
	}
	if persistent {
		msg.DeliveryMode = amqp.Persistent
	}
	return msg
}

func fromDelivery(d amqp.Delivery) Message {
	attrs := make(map[string]string, len(d.Headers)+2)
	for key, value := range d.Headers {
		switch typed := value.(type) {
		case string:
			attrs[key] = typed
		case []byte:
			attrs[key] = string(typed)
		default:
			attrs[key] = fmt.Sprint(value)
		}
	}
	if d.ContentType != "" {
		attrs[AttrContentType] = d.ContentType
	}
	if d.Type != "" {
		attrs[AttrEventType] = d.Type
	}
	return Message{ID: d.MessageId, Data: d.Body, Attributes: attrs}
}
