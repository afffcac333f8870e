package recalc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publisher emits one financial-recalculation request per imported
// batch. The routine that rebuilds the analysis consumes the topic; its
// internals stay outside this service.
type Publisher struct {
	writer *kafka.Writer
	log    *slog.Logger
}

type request struct {
	RequestedBy string    `json:"requested_by"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewPublisher builds a Kafka writer for the recalc topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     brokers,
		Topic:       topic,
		MaxAttempts: 3,
	})
	return &Publisher{writer: w, log: logger}
}

// Recalculate asks the financial service to rebuild its analysis. The
// payload carries attribution only; the routine takes no other input.
func (p *Publisher) Recalculate(ctx context.Context, principal string) error {
	payload, err := json.Marshal(request{
		RequestedBy: principal,
		RequestedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("montar pedido de recálculo: %w", err)
	}

	msg := kafka.Message{Key: []byte(principal), Value: payload}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publicar pedido de recálculo: %w", err)
	}

	p.log.Debug("financial recalculation requested", slog.String("principal", principal))
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
