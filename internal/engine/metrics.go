package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "valsem"

const cacheSubsystem = "cache"

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	// LookupsTotal counts FunctionCache lookups.
	// Labels: result (hit, miss)
	LookupsTotal *prometheus.CounterVec

	// SynthesizedTotal counts pairs installed in the cache.
	SynthesizedTotal prometheus.Counter

	// DuplicatesTotal counts syntheses that lost the race to install a pair.
	DuplicatesTotal prometheus.Counter

	// FailuresTotal counts failed operations.
	// Labels: code (SHAPE_RESOLUTION, CIRCULAR_COMPOSITION, INTERNAL_FAILURE)
	FailuresTotal *prometheus.CounterVec
}

// NewMetrics creates the engine collectors and registers them with reg.
// A nil reg leaves them unregistered. Registering two engines' metrics with
// the same registry panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: cacheSubsystem,
			Name:      "lookups_total",
			Help:      "Function cache lookups by result",
		}, []string{"result"}),
		SynthesizedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: cacheSubsystem,
			Name:      "synthesized_total",
			Help:      "Comparator/hasher pairs installed in the function cache",
		}),
		DuplicatesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: cacheSubsystem,
			Name:      "duplicate_syntheses_total",
			Help:      "Syntheses discarded because another caller installed the pair first",
		}),
		FailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "failures_total",
			Help:      "Failed substitutability or hash operations by error code",
		}, []string{"code"}),
	}
}
