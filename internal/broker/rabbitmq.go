package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const OrdersExchange = "orders_topic"

type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func ConnectRabbitMQ(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		OrdersExchange, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	slog.Info("connected to rabbitmq", "exchange", OrdersExchange)
	return &RabbitMQ{conn: conn, channel: channel}, nil
}

func (r *RabbitMQ) Close() {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		r.conn.Close()
	}
}

// Publish sends e to the orders exchange using its type as routing key.
func (r *RabbitMQ) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = r.channel.PublishWithContext(ctx,
		OrdersExchange, // exchange
		string(e.Type), // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    e.OrderID + ":" + string(e.Type),
			Timestamp:    e.OccurredAt,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

// LogPublisher writes events to the structured log. Used when no broker is
// configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, e Event) error {
	slog.Info("order event",
		"type", e.Type,
		"order_id", e.OrderID,
		"order_number", e.OrderNumber,
		"status", e.Status,
	)
	return nil
}
