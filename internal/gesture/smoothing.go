// Package gesture implements the mudra gesture core: a moving-average
// smoother, span-based hand calibration, the per-hand pinch classifier, and
// the interactive calibration session state machine.
package gesture

// DefaultSmoothingWindow is the number of recent measurements averaged to
// damp hand tremor without perceptible lag at typical frame rates.
const DefaultSmoothingWindow = 5

// Smoother is a fixed-window moving-average filter for a single scalar
// signal. Each pinch-distance signal owns its own Smoother; buffers are
// never shared between signals or hands.
type Smoother struct {
	window int
	values []float64
}

// NewSmoother creates a Smoother with the given window size.
// Sizes less than 1 fall back to DefaultSmoothingWindow.
func NewSmoother(window int) *Smoother {
	if window < 1 {
		window = DefaultSmoothingWindow
	}
	return &Smoother{
		window: window,
		values: make([]float64, 0, window),
	}
}

// Push appends a measurement, evicting the oldest once the window is full,
// and returns the mean of the current contents. The output is well-defined
// from the very first call: a partial window averages only what is buffered,
// with no zero-padding.
func (s *Smoother) Push(v float64) float64 {
	if len(s.values) == s.window {
		copy(s.values, s.values[1:])
		s.values = s.values[:s.window-1]
	}
	s.values = append(s.values, v)

	var sum float64
	for _, x := range s.values {
		sum += x
	}
	return sum / float64(len(s.values))
}

// Reset empties the buffer. The next Push returns exactly the pushed value.
func (s *Smoother) Reset() {
	s.values = s.values[:0]
}

// Ready reports whether the window is full and the output has stabilized.
func (s *Smoother) Ready() bool {
	return len(s.values) == s.window
}
