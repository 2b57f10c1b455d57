package notification

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is the subset of *amqp.Channel used to enqueue jobs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type AMQPEmailQueue struct {
	ch    Publisher
	queue string
}

func NewAMQPEmailQueue(ch Publisher, queue string) *AMQPEmailQueue {
	return &AMQPEmailQueue{ch: ch, queue: queue}
}

// DeclareQueue makes sure the durable email queue exists.
func DeclareQueue(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return nil
}

func (q *AMQPEmailQueue) Enqueue(ctx context.Context, job EmailJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal email job: %w", err)
	}
	err = q.ch.PublishWithContext(ctx,
		"",
		q.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    job.OrderID,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish email job: %w", err)
	}
	return nil
}

// NoopEmailQueue drops jobs. Used when AMQP_ENABLED=false.
type NoopEmailQueue struct{}

func (NoopEmailQueue) Enqueue(context.Context, EmailJob) error { return nil }
