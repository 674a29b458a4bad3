package metrics

import (
	"sync"
	"sync/atomic"

	"github.com/carverauto/pulse/pkg/models"
)

// RingBuffer keeps the last size samples of one metric.
type RingBuffer struct {
	mu     sync.RWMutex
	points []models.MetricSample
	pos    int64
	size   int64
}

// NewRingBuffer creates a RingBuffer holding up to size samples.
func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = 1
	}

	return &RingBuffer{
		points: make([]models.MetricSample, size),
		size:   int64(size),
	}
}

// Add stores sample, overwriting the oldest entry once full.
func (b *RingBuffer) Add(sample models.MetricSample) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.points[b.pos%b.size] = sample
	b.pos++
}

// Points returns the stored samples, newest first.
func (b *RingBuffer) Points() []models.MetricSample {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := b.pos
	if n > b.size {
		n = b.size
	}

	out := make([]models.MetricSample, 0, n)

	for i := int64(0); i < n; i++ {
		idx := (b.pos - i - 1 + b.size) % b.size
		out = append(out, b.points[idx])
	}

	return out
}

// Last returns the newest sample, or nil when empty.
func (b *RingBuffer) Last() *models.MetricSample {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.pos == 0 {
		return nil
	}

	p := b.points[(b.pos-1)%b.size]

	return &p
}

// RecentStore holds one RingBuffer per metric name.
type RecentStore struct {
	buffers sync.Map // metric name -> *RingBuffer
	size    int
	active  int64
}

// NewRecentStore creates a RecentStore whose buffers hold size samples.
func NewRecentStore(size int) *RecentStore {
	return &RecentStore{size: size}
}

func (r *RecentStore) Add(sample models.MetricSample) {
	buf, loaded := r.buffers.LoadOrStore(sample.Name, NewRingBuffer(r.size))
	if !loaded {
		atomic.AddInt64(&r.active, 1)
	}

	buf.(*RingBuffer).Add(sample)
}

func (r *RecentStore) Points(name string) []models.MetricSample {
	buf, ok := r.buffers.Load(name)
	if !ok {
		return nil
	}

	return buf.(*RingBuffer).Points()
}

func (r *RecentStore) Last(name string) *models.MetricSample {
	buf, ok := r.buffers.Load(name)
	if !ok {
		return nil
	}

	return buf.(*RingBuffer).Last()
}

// ActiveMetrics returns how many distinct metrics have been recorded.
func (r *RecentStore) ActiveMetrics() int64 {
	return atomic.LoadInt64(&r.active)
}
