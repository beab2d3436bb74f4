package repository

import (
	"context"
	"errors"
	"fmt"

	"chat_gateway_service/internal/notification/domain"
	"chat_gateway_service/pkg/logger"

	"github.com/segmentio/kafka-go"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// HandleFunc process one job, an error means delivery failed
type HandleFunc func(ctx context.Context, job domain.Job) error

// Consumer definition receive jobs until ctx is done
type Consumer interface {
	Consume(ctx context.Context, handle HandleFunc) error
	Close() error
}

type rabbitConsumer struct {
	ch    *amqp.Channel
	queue string
}

// NewRabbitConsumer create Consumer on a declared queue with manual ack
func NewRabbitConsumer(ch *amqp.Channel, queue string) Consumer {
	return &rabbitConsumer{ch: ch, queue: queue}
}

func (c *rabbitConsumer) Consume(ctx context.Context, handle HandleFunc) error {
	msgs, err := c.ch.Consume(
		c.queue, // queue
		"",      // consumer tag，留空由系統分配
		false,   // autoAck 為 false，使用手動確認
		false,   // exclusive
		false,   // noLocal
		false,   // noWait
		nil,     // arguments
	)
	if err != nil {
		return fmt.Errorf("rabbitmq consume: %w", err)
	}

	for {
		select {
		case d, ok := <-msgs:
			if !ok {
				return errors.New("rabbitmq delivery channel closed")
			}
			c.deliver(ctx, d, handle)
		case <-ctx.Done():
			return nil
		}
	}
}

// deliver 解析失敗直接 ack 丟棄, 處理失敗 nack 不重排
func (c *rabbitConsumer) deliver(ctx context.Context, d amqp.Delivery, handle HandleFunc) {
	job, err := domain.DecodeJob(d.Body)
	if err != nil {
		logger.Log.Warn("drop undecodable notification", zap.Error(err))
		_ = d.Ack(false)
		return
	}
	if err := handle(ctx, job); err != nil {
		logger.Log.Error("notification delivery failed", zap.Int64("recipient_id", job.RecipientID), zap.Error(err))
		if err := d.Nack(false, false); err != nil {
			logger.Log.Error("nack failed", zap.Error(err))
		}
		return
	}
	if err := d.Ack(false); err != nil {
		logger.Log.Error("ack failed", zap.Error(err))
	}
}

func (c *rabbitConsumer) Close() error {
	return c.ch.Close()
}

type kafkaConsumer struct {
	r *kafka.Reader
}

// NewKafkaConsumer create Consumer on a consumer group reader, offsets commit after handling
func NewKafkaConsumer(r *kafka.Reader) Consumer {
	return &kafkaConsumer{r: r}
}

func (c *kafkaConsumer) Consume(ctx context.Context, handle HandleFunc) error {
	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("kafka fetch: %w", err)
		}

		job, err := domain.DecodeJob(m.Value)
		if err != nil {
			logger.Log.Warn("drop undecodable notification", zap.Error(err))
		} else if err := handle(ctx, job); err != nil {
			logger.Log.Error("notification delivery failed", zap.Int64("recipient_id", job.RecipientID), zap.Error(err))
		}

		if err := c.r.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			logger.Log.Error("kafka commit failed", zap.Error(err))
		}
	}
}

func (c *kafkaConsumer) Close() error {
	return c.r.Close()
}
