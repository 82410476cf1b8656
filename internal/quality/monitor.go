// Package quality implements C12: a sliding-window guard over SIR
// confidence scores that warns once per downward crossing of a floor.
package quality

import (
	"sync"

	"aether/internal/logging"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	windowMean = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "aether_quality_confidence_mean",
		Help: "Mean SIR confidence over the current quality monitor window.",
	})
	dipsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aether_quality_dips_total",
		Help: "Number of times the confidence window mean crossed below the floor.",
	})
)

func init() {
	prometheus.MustRegister(windowMean, dipsTotal)
}

// Monitor holds the last W confidence values and emits one warning per
// monotone transition of the window mean from >= floor to < floor (spec
// §4.10, law 9).
type Monitor struct {
	mu       sync.Mutex
	window   []float64
	size     int
	floor    float64
	belowNow bool // whether the monitor is currently in the "below floor" state
}

// New returns a Monitor with the given window size and confidence floor.
func New(windowSize int, floor float64) *Monitor {
	if windowSize < 1 {
		windowSize = 1
	}
	return &Monitor{size: windowSize, floor: floor}
}

// Observe records a confidence value and returns true exactly when this
// observation causes a fresh downward crossing (no warning before the
// window fills; no re-warning until the mean recovers to the floor or
// above).
func (m *Monitor) Observe(confidence float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.window = append(m.window, confidence)
	if len(m.window) > m.size {
		m.window = m.window[len(m.window)-m.size:]
	}
	if len(m.window) < m.size {
		return false // window not yet full
	}

	mean := m.mean()
	windowMean.Set(mean)

	if mean < m.floor {
		if !m.belowNow {
			m.belowNow = true
			dipsTotal.Inc()
			logging.Get(logging.CategoryQuality).Warn("confidence window mean %.3f fell below floor %.3f", mean, m.floor)
			return true
		}
		return false
	}

	m.belowNow = false
	return false
}

func (m *Monitor) mean() float64 {
	var sum float64
	for _, v := range m.window {
		sum += v
	}
	return sum / float64(len(m.window))
}
