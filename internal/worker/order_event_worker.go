package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"tienda-api/internal/platform/rabbitmq"
)

// OrderConfirmer moves a placed order forward once its event is consumed.
type OrderConfirmer interface {
	Confirm(orderID uint) (bool, error)
}

type OrderEventWorker struct {
	conn      *amqp.Connection
	confirmer OrderConfirmer
	queueName string
	logger    logrus.FieldLogger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewOrderEventWorker(conn *amqp.Connection, confirmer OrderConfirmer, queueName string, logger logrus.FieldLogger) *OrderEventWorker {
	return &OrderEventWorker{
		conn:      conn,
		confirmer: confirmer,
		queueName: queueName,
		logger:    logger.WithField("worker", "order_events"),
	}
}

func (w *OrderEventWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}
	if err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}
	if err := ch.Qos(8, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker qos failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					w.logger.Warn("delivery channel closed")
					return
				}
				switch w.handle(d.Body) {
				case outcomeAck:
					_ = d.Ack(false)
				case outcomeRetry:
					_ = d.Nack(false, !d.Redelivered)
				default:
					_ = d.Nack(false, false)
				}
			}
		}
	}()

	w.logger.WithField("queue", w.queueName).Info("worker started")
	return nil
}

func (w *OrderEventWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

type outcome int

const (
	outcomeAck outcome = iota
	outcomeDrop
	outcomeRetry
)

func (w *OrderEventWorker) handle(body []byte) outcome {
	var event rabbitmq.OrderPlacedEvent
	if err := json.Unmarshal(body, &event); err != nil || event.OrderID == 0 {
		w.logger.WithError(err).Warn("drop undecodable order event")
		return outcomeDrop
	}

	log := w.logger.WithFields(logrus.Fields{"order_id": event.OrderID, "order_number": event.Number})
	changed, err := w.confirmer.Confirm(event.OrderID)
	if err != nil {
		log.WithError(err).Error("confirm order failed")
		return outcomeRetry
	}
	if changed {
		log.Info("order confirmed")
	} else {
		log.Debug("order already confirmed or unknown")
	}
	return outcomeAck
}
