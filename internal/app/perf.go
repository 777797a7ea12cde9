package app

import (
	"sync"
	"time"
)

// perfWindow is how many recent frames the monitor averages over.
const perfWindow = 60

// PerfMonitor tracks recent frame processing times so the UI can show an
// effective FPS figure.
type PerfMonitor struct {
	mu      sync.Mutex
	samples []time.Duration
	next    int
	filled  bool
}

// NewPerfMonitor creates a monitor averaging over the last perfWindow frames.
func NewPerfMonitor() *PerfMonitor {
	return &PerfMonitor{
		samples: make([]time.Duration, perfWindow),
	}
}

// Record adds one frame's wall-clock duration.
func (p *PerfMonitor) Record(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.samples[p.next] = d
	p.next++
	if p.next == len(p.samples) {
		p.next = 0
		p.filled = true
	}
}

// AvgFrameTime returns the mean duration of the recorded frames, or zero
// when nothing has been recorded yet.
func (p *PerfMonitor) AvgFrameTime() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := p.next
	if p.filled {
		n = len(p.samples)
	}
	if n == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range p.samples[:n] {
		sum += d
	}
	return sum / time.Duration(n)
}

// FPS returns the frame rate implied by the average frame time.
func (p *PerfMonitor) FPS() float64 {
	avg := p.AvgFrameTime()
	if avg <= 0 {
		return 0
	}
	return float64(time.Second) / float64(avg)
}
