package kafka

import (
	"time"

	"github.com/Shopify/sarama"
)

type Config struct {
	Brokers []string
	Topic   string
	GroupID string
	// InitAttempts bounds the startup connect loop; after the last attempt
	// the process refuses to start rather than run without a relay path.
	InitAttempts int
	// InitialBackoff is the first retry delay; it doubles per attempt.
	InitialBackoff time.Duration
}

func (c *Config) norm() {
	if c.InitAttempts <= 0 {
		c.InitAttempts = 10
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 300 * time.Millisecond
	}
}

func buildBaseConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_8_0_0

	// Producer
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	// Single topic, single logical stream: hash by key keeps per-room
	// events on one partition so publish order survives.
	cfg.Producer.Partitioner = sarama.NewHashPartitioner

	// Consumer
	cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	cfg.Consumer.Return.Errors = true

	// Net
	cfg.Net.DialTimeout = 10 * time.Second
	cfg.Net.ReadTimeout = 30 * time.Second
	cfg.Net.WriteTimeout = 30 * time.Second
	return cfg
}
