package stats

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC)

type recordingObserver struct {
	snapshots []Snapshot
}

func (o *recordingObserver) Observe(s Snapshot) {
	o.snapshots = append(o.snapshots, s)
}

func newTestTracker(opts ...Option) *Tracker {
	return NewTracker(start, append([]Option{WithRand(rand.New(rand.NewPCG(1, 2)))}, opts...)...)
}

func TestNewTrackerSeedsCountersAndTrend(t *testing.T) {
	s := newTestTracker().Snapshot()

	require.Len(t, s.Counters, 6)
	assert.Equal(t, "Email", s.Counters[0].Label)
	assert.Equal(t, int64(26102688785), s.Counters[0].Value)
	assert.Equal(t, int64(78055162261), s.Total)

	require.Len(t, s.Trend, TrendDays)
	assert.Equal(t, "2025-05-01", s.Trend[0].Date)
	assert.Equal(t, "2025-05-10", s.Trend[TrendDays-1].Date)
	assert.Equal(t, float64(100), s.Trend[0].Leaks)
	for i := 1; i < TrendDays; i++ {
		assert.GreaterOrEqual(t, s.Trend[i].Leaks, float64(100+i*10))
		assert.Less(t, s.Trend[i].Leaks, float64(100+i*30))
	}
}

func TestTickGrowsCountersAndShiftsTrend(t *testing.T) {
	obs := &recordingObserver{}
	tr := newTestTracker(WithObserver(obs))
	before := tr.Snapshot()

	tr.Tick(start.Add(30 * time.Minute))
	after := tr.Snapshot()

	for i := range after.Counters {
		assert.Equal(t, before.Counters[i].Value+Growth, after.Counters[i].Value)
	}
	assert.Equal(t, before.Total+6*Growth, after.Total)

	require.Len(t, after.Trend, TrendDays)
	assert.Equal(t, before.Trend[1], after.Trend[0])
	last := after.Trend[TrendDays-1]
	assert.Equal(t, "2025-05-11", last.Date)
	assert.InDelta(t, float64(after.Total)/1e9, last.Leaks, 1e-9)
	assert.Equal(t, start.Add(30*time.Minute), after.UpdatedAt)

	assert.Len(t, obs.snapshots, 2)
}

func TestSnapshotIsACopy(t *testing.T) {
	tr := newTestTracker()
	s := tr.Snapshot()
	s.Counters[0].Value = 0
	s.Trend[0].Leaks = -1

	fresh := tr.Snapshot()
	assert.NotZero(t, fresh.Counters[0].Value)
	assert.NotEqual(t, float64(-1), fresh.Trend[0].Leaks)
}

func TestRunTicksUntilCancelled(t *testing.T) {
	tr := newTestTracker()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tr.Run(ctx, 5*time.Millisecond) }()

	require.Eventually(t, func() bool {
		return tr.Snapshot().Counters[0].Value > SeedCounters()[0].Value
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
