package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/thestartupdeveloper10/jamiibudget/internal/models"
)

// amqpChannel is the part of *amqp091.Channel used after setup.
type amqpChannel interface {
	Get(queue string, autoAck bool) (amqp091.Delivery, bool, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// AMQPEvents publishes transaction events to a fanout exchange and drains
// them from a queue private to this session, so every session sees every
// event.
type AMQPEvents struct {
	conn         *amqp091.Connection
	channel      amqpChannel
	exchangeName string
	queueName    string
}

// NewAMQPEvents dials url, declares a durable fanout exchange and binds an
// exclusive queue named after queuePrefix to it. The queue is removed when
// the connection closes.
func NewAMQPEvents(url, exchangeName, queuePrefix string) (*AMQPEvents, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	queueName := queuePrefix + "." + uuid.NewString()
	if err := setupFanout(channel, exchangeName, queueName); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	slog.Info("amqp events initialized", "exchange", exchangeName, "queue", queueName)
	return &AMQPEvents{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}, nil
}

func setupFanout(channel *amqp091.Channel, exchangeName, queueName string) error {
	if err := channel.ExchangeDeclare(exchangeName, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := channel.QueueDeclare(queueName, false, true, true, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	// Fanout exchanges ignore the routing key.
	if err := channel.QueueBind(queueName, "", exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Publish sends evt as a persistent JSON message.
func (e *AMQPEvents) Publish(ctx context.Context, evt models.TransactionEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = e.channel.PublishWithContext(ctx, e.exchangeName, "", false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    evt.At,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	slog.DebugContext(ctx, "published transaction event", "kind", evt.Kind, "action", evt.Action, "exchange", e.exchangeName)
	return nil
}

// Drain acknowledges every pending delivery on the session queue and returns
// the events for userID published by sessions other than origin.
func (e *AMQPEvents) Drain(ctx context.Context, userID, origin string) ([]models.TransactionEvent, error) {
	var events []models.TransactionEvent
	for ctx.Err() == nil {
		d, ok, err := e.channel.Get(e.queueName, false)
		if err != nil {
			return events, fmt.Errorf("get message: %w", err)
		}
		if !ok {
			return events, nil
		}
		if err := d.Ack(false); err != nil {
			return events, fmt.Errorf("ack message: %w", err)
		}

		evt, err := decodeEvent(d.Body)
		if err != nil {
			slog.Warn("dropping malformed transaction event", "queue", e.queueName, "error", err)
			continue
		}
		if evt.Relevant(userID, origin) {
			events = append(events, evt)
		}
	}
	return events, ctx.Err()
}

// Close releases the channel and connection.
func (e *AMQPEvents) Close() error {
	if e.channel != nil {
		e.channel.Close()
	}
	if e.conn != nil {
		return e.conn.Close()
	}
	return nil
}
