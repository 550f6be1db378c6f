package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skycastlabs/radarloop/internal/domain"
	"github.com/skycastlabs/radarloop/internal/observability"
)

type stubMapSource struct {
	failAt map[int]error
	calls  int
}

func (s *stubMapSource) GetMap(_ context.Context, req domain.FrameRequest) ([]byte, error) {
	idx := s.calls
	s.calls++
	if err, ok := s.failAt[idx]; ok {
		return nil, err
	}
	return []byte(fmt.Sprintf("frame-%s", domain.FormatInstant(req.Time))), nil
}

func frameRequests(n int) []domain.FrameRequest {
	reqs := make([]domain.FrameRequest, n)
	base := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	for i := range reqs {
		reqs[i] = domain.FrameRequest{
			Layer:  "RADAR_1KM_RRAI",
			Time:   base.Add(time.Duration(i) * 10 * time.Minute),
			Format: "image/png",
		}
	}
	return reqs
}

func TestFetchKeepsOrderAndSkipsFailures(t *testing.T) {
	source := &stubMapSource{failAt: map[int]error{2: fmt.Errorf("HTTP 404")}}
	f := NewFrameFetcher(source, 0, observability.NewMetricsForTesting(), discardLogger())

	reqs := frameRequests(5)
	results := f.Fetch(context.Background(), reqs)

	require.Len(t, results, 5, "results must be same length as requests")
	for i, r := range results {
		assert.Equal(t, reqs[i].Time, r.Request.Time, "result %d out of order", i)
	}

	assert.True(t, results[2].Empty())
	assert.Error(t, results[2].Err)
	for _, i := range []int{0, 1, 3, 4} {
		assert.False(t, results[i].Empty(), "frame %d should have bytes", i)
		assert.NoError(t, results[i].Err)
	}
}

func TestFetchObservesInterRequestDelay(t *testing.T) {
	source := &stubMapSource{}
	delay := 20 * time.Millisecond
	f := NewFrameFetcher(source, delay, observability.NewMetricsForTesting(), discardLogger())

	start := time.Now()
	f.Fetch(context.Background(), frameRequests(5))
	elapsed := time.Since(start)

	// Four gaps between five requests.
	assert.GreaterOrEqual(t, elapsed, 4*delay)
}

func TestFetchNoDelayBeforeFirstRequest(t *testing.T) {
	source := &stubMapSource{}
	f := NewFrameFetcher(source, time.Minute, observability.NewMetricsForTesting(), discardLogger())

	start := time.Now()
	results := f.Fetch(context.Background(), frameRequests(1))

	assert.Less(t, time.Since(start), time.Second)
	require.Len(t, results, 1)
	assert.False(t, results[0].Empty())
}

func TestFetchCancelledContextFillsRemainder(t *testing.T) {
	source := &stubMapSource{}
	f := NewFrameFetcher(source, 50*time.Millisecond, observability.NewMetricsForTesting(), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := f.Fetch(ctx, frameRequests(4))

	require.Len(t, results, 4)
	assert.Zero(t, source.calls, "a dead context must not touch the network")
	for _, r := range results {
		assert.True(t, r.Empty())
		assert.Error(t, r.Err)
	}
}

func TestFetchEmptyRequestList(t *testing.T) {
	f := NewFrameFetcher(&stubMapSource{}, 0, observability.NewMetricsForTesting(), discardLogger())
	assert.Empty(t, f.Fetch(context.Background(), nil))
}
