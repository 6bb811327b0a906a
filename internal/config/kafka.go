package config

import (
	"github.com/segmentio/kafka-go"
)

// NewKafkaWriter builds a writer for the given topic against the
// configured brokers.
func (c *Config) NewKafkaWriter(topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(c.KafkaBrokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}
