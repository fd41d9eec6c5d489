package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"tienda-api/internal/model"
)

// OrderPlacedEvent is the payload published after an order commits.
type OrderPlacedEvent struct {
	OrderID  uint      `json:"order_id"`
	Number   string    `json:"number"`
	UserID   uint      `json:"user_id"`
	Total    float64   `json:"total"`
	PlacedAt time.Time `json:"placed_at"`
}

func NewOrderPlacedEvent(order *model.Order) OrderPlacedEvent {
	return OrderPlacedEvent{
		OrderID:  order.ID,
		Number:   order.Number,
		UserID:   order.UserID,
		Total:    order.Total,
		PlacedAt: order.CreatedAt,
	}
}

type OrderPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewOrderPublisher(conn *amqp.Connection, queueName string) *OrderPublisher {
	return &OrderPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *OrderPublisher) PublishOrderPlaced(ctx context.Context, order *model.Order) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := DeclareQueue(ch, p.queueName); err != nil {
		return err
	}

	payload, err := json.Marshal(NewOrderPlacedEvent(order))
	if err != nil {
		return fmt.Errorf("marshal order event failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
			MessageId:    order.Number,
			Timestamp:    time.Now(),
			Type:         "order.placed",
		},
	); err != nil {
		return fmt.Errorf("publish order event failed: %w", err)
	}
	return nil
}
