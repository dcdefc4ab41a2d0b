package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"

	"chat-relay/logger"
	"chat-relay/module/chat/model"
)

// Relay owns the one producer handle and one consumer group handle this
// process ever creates. Both are built once at startup and reused for every
// message.
type Relay struct {
	cfg      Config
	client   sarama.Client
	producer sarama.SyncProducer
	group    sarama.ConsumerGroup
	handlers *handlerRegistry
}

// NewRelay dials the broker with bounded exponential backoff. When the
// attempts are exhausted the error is returned and the caller is expected
// to abort startup: a half-initialized process with no relay path is worse
// than a restart.
func NewRelay(cfg Config) (*Relay, error) {
	cfg.norm()

	var (
		client sarama.Client
		err    error
	)
	delay := cfg.InitialBackoff
	for attempt := 1; attempt <= cfg.InitAttempts; attempt++ {
		client, err = sarama.NewClient(cfg.Brokers, buildBaseConfig())
		if err == nil {
			break
		}
		logger.Warnf("[kafka] connect attempt %d/%d failed: %v", attempt, cfg.InitAttempts, err)
		if attempt < cfg.InitAttempts {
			time.Sleep(delay)
			delay *= 2
		}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "kafka unreachable after %d attempts", cfg.InitAttempts)
	}

	producer, err := sarama.NewSyncProducerFromClient(client)
	if err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "create sync producer")
	}

	group, err := sarama.NewConsumerGroupFromClient(cfg.GroupID, client)
	if err != nil {
		_ = producer.Close()
		_ = client.Close()
		return nil, errors.Wrap(err, "create consumer group")
	}

	return &Relay{
		cfg:      cfg,
		client:   client,
		producer: producer,
		group:    group,
		handlers: newHandlerRegistry(),
	}, nil
}

// PublishMessage appends the message's JSON form to the relay topic, keyed
// by room so per-room publish order is preserved.
func (r *Relay) PublishMessage(ctx context.Context, m *model.Message) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "encode message event")
	}
	_, _, err = r.producer.SendMessage(&sarama.ProducerMessage{
		Topic: r.cfg.Topic,
		Key:   sarama.StringEncoder(m.RoomID),
		Value: sarama.ByteEncoder(payload),
	})
	return errors.Wrap(err, "publish message event")
}

// RegisterHandler binds a handler to the relay topic. Call before Run.
func (r *Relay) RegisterHandler(h MessageHandler) {
	r.handlers.register(r.cfg.Topic, h)
}

// Run consumes the topic until ctx is cancelled. group.Consume returns on
// every rebalance, hence the loop.
func (r *Relay) Run(ctx context.Context) {
	go func() {
		for err := range r.group.Errors() {
			logger.Errorf("[kafka] consumer group error: %v", err)
		}
	}()

	handler := &groupHandler{handlers: r.handlers}
	for {
		if err := r.group.Consume(ctx, []string{r.cfg.Topic}, handler); err != nil {
			logger.Errorf("[kafka] consume error: %v", err)
		}
		if ctx.Err() != nil {
			logger.Info("[kafka] consumer loop stopped")
			return
		}
	}
}

// Healthy reports broker reachability for the health endpoint.
func (r *Relay) Healthy() bool {
	return len(r.client.Brokers()) > 0
}

func (r *Relay) Close() error {
	var first error
	if err := r.group.Close(); err != nil {
		first = err
	}
	if err := r.producer.Close(); err != nil && first == nil {
		first = err
	}
	if err := r.client.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

type groupHandler struct {
	handlers *handlerRegistry
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	logger.Info("[kafka] consumer group setup")
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	logger.Info("[kafka] consumer group cleanup")
	return nil
}

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		handler, err := h.handlers.get(msg.Topic)
		if err != nil {
			logger.Warnf("[kafka] %v", err)
		} else if err := handler(msg.Topic, msg.Key, msg.Value); err != nil {
			// Handler failures are logged, never fatal: the mark below means
			// at-least-once, and a poison record must not wedge the claim.
			logger.Errorf("[kafka] handler error topic=%s offset=%d: %v", msg.Topic, msg.Offset, err)
		}
		session.MarkMessage(msg, "")
	}
	return nil
}
