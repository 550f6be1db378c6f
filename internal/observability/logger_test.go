package observability

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLoggerFormats(t *testing.T) {
	assert.NotNil(t, NewLogger("info", "json"))
	assert.NotNil(t, NewLogger("debug", "text"))
	assert.NotNil(t, NewLogger("", ""), "unknown values fall back to defaults")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("info"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestNewMetricsForTestingIsUnregistered(t *testing.T) {
	// Two instances must not collide, unlike the registered variant.
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.FramesFetched.Inc()
	b.FramesFetched.Inc()

	assert.NotSame(t, a.FramesFetched, b.FramesFetched)
}
