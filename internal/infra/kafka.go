package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher writes ledger events keyed by currency; the hash balancer
// keeps each currency's events on one partition, in append order.
type KafkaPublisher struct {
	writer *kafka.Writer
	cb     *CircuitBreaker
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: 5 * time.Second,
		},
		cb: NewCircuitBreaker("kafka", DefaultConfigCB()),
	}
}

func (p *KafkaPublisher) Publicar(ctx context.Context, clave string, evento any) error {
	data, err := json.Marshal(evento)
	if err != nil {
		return fmt.Errorf("kafka: serializar evento: %w", err)
	}
	return p.cb.Ejecutar(func() error {
		return p.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(clave),
			Value: data,
		})
	})
}

func (p *KafkaPublisher) Estado() EstadoCB { return p.cb.Estado() }

func (p *KafkaPublisher) Close() error { return p.writer.Close() }
