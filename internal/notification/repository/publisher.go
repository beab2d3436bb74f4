package repository

import (
	"context"
	"fmt"
	"strconv"

	"chat_gateway_service/internal/notification/domain"
	"chat_gateway_service/pkg/logger"

	"github.com/segmentio/kafka-go"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Publisher definition hand a job to the transport
type Publisher interface {
	Publish(ctx context.Context, job domain.Job) error
	Close() error
}

type rabbitPublisher struct {
	ch    *amqp.Channel
	queue string
}

// NewRabbitPublisher publish persistent messages on queue through the default exchange
func NewRabbitPublisher(ch *amqp.Channel, queue string) Publisher {
	return &rabbitPublisher{ch: ch, queue: queue}
}

func (p *rabbitPublisher) Publish(_ context.Context, job domain.Job) error {
	body, err := job.Encode()
	if err != nil {
		return err
	}
	err = p.ch.Publish(
		"",      // exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

func (p *rabbitPublisher) Close() error {
	return p.ch.Close()
}

type kafkaPublisher struct {
	w *kafka.Writer
}

// NewKafkaPublisher publish keyed by recipient so one user's jobs stay ordered
func NewKafkaPublisher(w *kafka.Writer) Publisher {
	return &kafkaPublisher{w: w}
}

func (p *kafkaPublisher) Publish(ctx context.Context, job domain.Job) error {
	body, err := job.Encode()
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(job.RecipientID, 10)),
		Value: body,
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka publish: %w", err)
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.w.Close()
}

type logPublisher struct{}

// NewLogPublisher only logs, for local runs without a broker
func NewLogPublisher() Publisher {
	return logPublisher{}
}

func (logPublisher) Publish(_ context.Context, job domain.Job) error {
	logger.Log.Info("notification",
		zap.Int64("recipient_id", job.RecipientID),
		zap.Int64("sender_id", job.SenderID),
		zap.Int("content_len", len(job.Content)))
	return nil
}

func (logPublisher) Close() error { return nil }
