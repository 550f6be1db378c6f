//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/skycastlabs/radarloop/internal/adapter/kafka"
	"github.com/skycastlabs/radarloop/internal/domain"
)

const testSinkTopic = "radar-run-reports-test"

// startKafka launches a single-node Kafka container and returns its broker
// address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("radarloop-test"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestPublishRunReport round-trips a run report through a real broker and
// verifies the key, headers, and payload the monitoring consumers rely on.
func TestPublishRunReport(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	publisher := kafka.NewPublisher([]string{broker}, testSinkTopic, slog.New(slog.DiscardHandler))
	t.Cleanup(func() { _ = publisher.Close() })

	report := domain.RunReport{
		Region:          "east",
		Layer:           "RADAR_1KM_RRAI",
		Source:          "frames",
		StartedAt:       time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
		DurationSeconds: 38.2,
		FramesRequested: 12,
		FramesFetched:   12,
		GIFPath:         "/out/radar_east.gif",
		VideoPath:       "/out/radar_east.mp4",
		Success:         true,
	}
	require.NoError(t, publisher.PublishRunReport(ctx, report))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	assert.Equal(t, []byte("east"), msg.Key)

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "success", headers["outcome"])
	assert.Equal(t, "2026-03-15T12:00:00Z", headers["started_at"])

	var got domain.RunReport
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, report, got)
}
