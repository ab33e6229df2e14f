package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"populator/logger"

	"github.com/IBM/sarama"
)

// MessageHandler processes one consumed message and reports whether it
// should be marked. An error or shouldMark=false leaves it unmarked so it
// is redelivered.
type MessageHandler interface {
	HandleMessage(ctx context.Context, message []byte) (shouldMark bool, err error)
}

const defaultRetryBackoff = 2 * time.Second

// Consumer handles Kafka message consumption with pluggable message handling
type Consumer struct {
	consumer  sarama.ConsumerGroup
	handler   MessageHandler
	topic     string
	groupID   string
	log       logger.Logger
	ready     chan struct{}
	readyOnce sync.Once
	backoff   time.Duration
}

// ConsumerConfig holds Kafka consumer configuration
type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
	Handler MessageHandler
	Logger  logger.Logger
}

// NewConsumer creates a consumer group member
func NewConsumer(cfg ConsumerConfig) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer group: %w", err)
	}
	return newConsumerWith(group, cfg), nil
}

func newConsumerWith(group sarama.ConsumerGroup, cfg ConsumerConfig) *Consumer {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	return &Consumer{
		consumer: group,
		handler:  cfg.Handler,
		topic:    cfg.Topic,
		groupID:  cfg.GroupID,
		log:      log.With(logger.String("topic", cfg.Topic), logger.String("group", cfg.GroupID)),
		ready:    make(chan struct{}),
		backoff:  defaultRetryBackoff,
	}
}

// markReady is idempotent; every rebalance runs Setup again.
func (c *Consumer) markReady() {
	c.readyOnce.Do(func() { close(c.ready) })
}

// Start begins consuming in the background and returns once the first
// session is set up or ctx is done. Failed Consume calls are retried until
// ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	go func() {
		for err := range c.consumer.Errors() {
			c.log.Error("Kafka consumer error", logger.Error(err))
		}
	}()

	handler := &consumerGroupHandler{
		messageHandler: c.handler,
		log:            c.log,
		onSetup:        c.markReady,
	}

	go func() {
		for {
			if err := c.consumer.Consume(ctx, []string{c.topic}, handler); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, sarama.ErrClosedConsumerGroup) {
					return
				}
				c.log.Error("Kafka consume failed", logger.Error(err))
				select {
				case <-time.After(c.backoff):
				case <-ctx.Done():
					return
				}
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	select {
	case <-c.ready:
	case <-ctx.Done():
		return ctx.Err()
	}
	c.log.Info("Kafka consumer started")
	return nil
}

// Close shuts down the consumer group member
func (c *Consumer) Close() error {
	return c.consumer.Close()
}

// consumerGroupHandler implements sarama.ConsumerGroupHandler
type consumerGroupHandler struct {
	messageHandler MessageHandler
	log            logger.Logger
	onSetup        func()
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	h.onSetup()
	return nil
}

func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok || message == nil {
				return nil
			}

			shouldMark, err := h.messageHandler.HandleMessage(session.Context(), message.Value)
			if err != nil {
				h.log.Error("Failed to handle message",
					logger.Int("partition", int(message.Partition)),
					logger.Int64("offset", message.Offset),
					logger.Error(err),
				)
			}
			if shouldMark {
				session.MarkMessage(message, "")
			}

		case <-session.Context().Done():
			return nil
		}
	}
}

// TypedMessageHandler decodes JSON payloads into T before processing.
type TypedMessageHandler[T any] struct {
	// Validate checks if the message should be processed
	Validate func(msg *T) bool
	// Process handles the decoded message
	Process func(ctx context.Context, msg *T) error
	// AlwaysMark marks messages that fail decoding or validation
	AlwaysMark bool
}

// HandleMessage implements MessageHandler
func (h *TypedMessageHandler[T]) HandleMessage(ctx context.Context, message []byte) (bool, error) {
	var msg T
	if err := json.Unmarshal(message, &msg); err != nil {
		return h.AlwaysMark, fmt.Errorf("unmarshal message: %w", err)
	}

	if h.Validate != nil && !h.Validate(&msg) {
		return h.AlwaysMark, nil
	}

	if err := h.Process(ctx, &msg); err != nil {
		return false, err
	}
	return true, nil
}
