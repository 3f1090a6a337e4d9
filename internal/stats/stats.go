// Package stats keeps the admin dashboard's leak counters and the ten-day
// trend line. Counters start from fixed seed figures and grow on every tick.
package stats

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	// Growth is added to every counter on each tick.
	Growth = 2
	// TrendDays is the length of the trend line.
	TrendDays = 10

	trendBase = 100
	dateFmt   = "2006-01-02"
)

// Counter is one labelled dashboard figure.
type Counter struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

// TrendPoint is one day of the trend line. Leaks is in billions.
type TrendPoint struct {
	Date  string  `json:"date"`
	Leaks float64 `json:"leaks"`
}

// Snapshot is a consistent copy of the tracker state.
type Snapshot struct {
	Counters  []Counter    `json:"counters"`
	Total     int64        `json:"total"`
	Trend     []TrendPoint `json:"trend"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// SeedCounters are the figures the dashboard starts from.
func SeedCounters() []Counter {
	return []Counter{
		{Label: "Email", Value: 26102688785},
		{Label: "Password", Value: 13342389831},
		{Label: "Full name", Value: 12801652751},
		{Label: "Telephone", Value: 11694818802},
		{Label: "Nick", Value: 10456573331},
		{Label: "Document number", Value: 3657038761},
	}
}

// Observer is told about each new snapshot.
type Observer interface {
	Observe(Snapshot)
}

// Tracker is safe for concurrent use.
type Tracker struct {
	mu        sync.RWMutex
	counters  []Counter
	trend     []TrendPoint
	updatedAt time.Time
	observer  Observer
}

type Option func(*trackerConfig)

type trackerConfig struct {
	rng      *rand.Rand
	observer Observer
}

// WithRand fixes the source used for the initial trend line.
func WithRand(r *rand.Rand) Option {
	return func(c *trackerConfig) {
		c.rng = r
	}
}

func WithObserver(o Observer) Option {
	return func(c *trackerConfig) {
		c.observer = o
	}
}

// NewTracker seeds the counters and builds a trend line ending on now's date.
func NewTracker(now time.Time, opts ...Option) *Tracker {
	cfg := trackerConfig{rng: rand.New(rand.NewPCG(uint64(now.UnixNano()), 0))}
	for _, opt := range opts {
		opt(&cfg)
	}

	trend := make([]TrendPoint, TrendDays)
	for i := range trend {
		day := now.AddDate(0, 0, -(TrendDays - 1 - i))
		trend[i] = TrendPoint{
			Date:  day.UTC().Format(dateFmt),
			Leaks: float64(trendBase + i*(cfg.rng.IntN(20)+10)),
		}
	}

	t := &Tracker{
		counters:  SeedCounters(),
		trend:     trend,
		updatedAt: now,
		observer:  cfg.observer,
	}
	t.notify()
	return t
}

// Tick grows every counter and rolls the trend forward one day, appending
// the new total in billions.
func (t *Tracker) Tick(now time.Time) {
	t.mu.Lock()
	var total int64
	for i := range t.counters {
		t.counters[i].Value += Growth
		total += t.counters[i].Value
	}

	last := t.trend[len(t.trend)-1]
	next := nextDate(last.Date)
	copy(t.trend, t.trend[1:])
	t.trend[len(t.trend)-1] = TrendPoint{Date: next, Leaks: float64(total) / 1e9}
	t.updatedAt = now
	t.mu.Unlock()

	t.notify()
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := Snapshot{
		Counters:  append([]Counter(nil), t.counters...),
		Trend:     append([]TrendPoint(nil), t.trend...),
		UpdatedAt: t.updatedAt,
	}
	for _, c := range s.Counters {
		s.Total += c.Value
	}
	return s
}

// Run ticks every interval until ctx is cancelled.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			t.Tick(now)
		}
	}
}

func (t *Tracker) notify() {
	if t.observer != nil {
		t.observer.Observe(t.Snapshot())
	}
}

func nextDate(date string) string {
	d, err := time.Parse(dateFmt, date)
	if err != nil {
		return date
	}
	return d.AddDate(0, 0, 1).Format(dateFmt)
}
