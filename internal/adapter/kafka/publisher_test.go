package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skycastlabs/radarloop/internal/domain"
)

func sampleReport() domain.RunReport {
	return domain.RunReport{
		Region:          "east",
		Layer:           "RADAR_1KM_RRAI",
		Source:          "frames",
		StartedAt:       time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
		DurationSeconds: 42.5,
		FramesRequested: 12,
		FramesFetched:   11,
		FramesSkipped:   1,
		GIFPath:         "/out/radar_east.gif",
		VideoPath:       "/out/radar_east.mp4",
		Success:         true,
	}
}

func TestSerializeReport(t *testing.T) {
	msg, err := serializeReport(sampleReport())
	require.NoError(t, err)

	assert.Equal(t, []byte("east"), msg.Key, "messages are keyed by region")

	var got domain.RunReport
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, sampleReport(), got)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "success", headers["outcome"])
	assert.Equal(t, "2026-03-15T12:00:00Z", headers["started_at"])
}

func TestSerializeReportDegradedOutcome(t *testing.T) {
	report := sampleReport()
	report.Success = false
	report.GIFPath = ""
	report.VideoPath = ""

	msg, err := serializeReport(report)
	require.NoError(t, err)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "degraded", headers["outcome"])
}

func TestNewPublisherConfiguresWriter(t *testing.T) {
	p := NewPublisher([]string{"broker1:9092", "broker2:9092"}, "radar-run-reports", nil)
	defer p.Close()

	assert.Equal(t, "radar-run-reports", p.writer.Topic)
	assert.Equal(t, "broker1:9092,broker2:9092", p.writer.Addr.String())
}
