// Package kafka publishes pipeline run reports to a Kafka topic so a fleet
// of unattended display units can be monitored centrally. The publisher is
// optional; a nil publisher disables reporting entirely.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/skycastlabs/radarloop/internal/domain"
)

// Publisher produces run reports to a Kafka topic.
// It implements pipeline.RunPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the given sink topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishRunReport serializes and publishes one run report.
func (p *Publisher) PublishRunReport(ctx context.Context, report domain.RunReport) error {
	msg, err := serializeReport(report)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeReport marshals a RunReport into a Kafka message keyed by region
// so per-region report streams stay ordered within a partition.
func serializeReport(report domain.RunReport) (kafkago.Message, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize run report: %w", err)
	}
	outcome := "degraded"
	if report.Success {
		outcome = "success"
	}
	return kafkago.Message{
		Key:   []byte(report.Region),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "outcome", Value: []byte(outcome)},
			{Key: "started_at", Value: []byte(report.StartedAt.Format(time.RFC3339))},
		},
	}, nil
}
