// Package metrics provides Prometheus metrics for the LED controller.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "an30259a"

var (
	commits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "bus",
		Name:      "commits_total",
		Help:      "Register image commits by result",
	}, []string{"result"})

	patternTriggers = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pattern",
		Name:      "triggers_total",
		Help:      "Named pattern triggers",
	}, []string{"pattern"})

	brightnessCoalesced = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "brightness",
		Name:      "coalesced_total",
		Help:      "Brightness requests superseded before they reached the bus",
	}, []string{"channel"})

	channelCurrent = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "channel",
		Name:      "current_code",
		Help:      "Committed current code per channel (0 when disabled)",
	}, []string{"channel"})

	knobWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "knob",
		Name:      "writes_total",
		Help:      "Control knob writes by knob and result",
	}, []string{"knob", "result"})

	// Local mirror for the status endpoint and tests.
	cache   = Snapshot{Currents: map[string]float64{}}
	cacheMu sync.RWMutex
)

// Snapshot holds the current metric values.
type Snapshot struct {
	CommitsOK     uint64
	CommitsFailed uint64
	Coalesced     uint64
	Currents      map[string]float64
}

// ObserveCommit records the outcome of one commit.
func ObserveCommit(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	commits.WithLabelValues(result).Inc()

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if err != nil {
		cache.CommitsFailed++
	} else {
		cache.CommitsOK++
	}
}

// ObservePattern counts a pattern trigger.
func ObservePattern(pattern string) {
	patternTriggers.WithLabelValues(pattern).Inc()
}

// ObserveCoalesced counts a brightness request overwritten by a newer one.
func ObserveCoalesced(channel string) {
	brightnessCoalesced.WithLabelValues(channel).Inc()

	cacheMu.Lock()
	defer cacheMu.Unlock()
	cache.Coalesced++
}

// SetChannelCurrent records the committed current code of a channel.
func SetChannelCurrent(channel string, code float64) {
	channelCurrent.WithLabelValues(channel).Set(code)

	cacheMu.Lock()
	defer cacheMu.Unlock()
	cache.Currents[channel] = code
}

// ObserveKnob counts a knob write.
func ObserveKnob(knob string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	knobWrites.WithLabelValues(knob, result).Inc()
}

// Get returns a copy of the cached values.
func Get() Snapshot {
	cacheMu.RLock()
	defer cacheMu.RUnlock()
	out := cache
	out.Currents = make(map[string]float64, len(cache.Currents))
	for k, v := range cache.Currents {
		out.Currents[k] = v
	}
	return out
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
