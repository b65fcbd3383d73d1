package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CalculationsTotal counts landed-cost calculation outcomes.
	CalculationsTotal *prometheus.CounterVec
	// CoercionsTotal counts non-empty charge values silently coerced to zero.
	CoercionsTotal *prometheus.CounterVec
	// JobLookupsTotal counts upstream job record lookups by source and result.
	JobLookupsTotal *prometheus.CounterVec
	// LedgerPersistTotal tracks outbound persist call outcomes per call kind.
	LedgerPersistTotal *prometheus.CounterVec
	// LedgerPersistLatency records persist call latency in milliseconds.
	LedgerPersistLatency *prometheus.HistogramVec
	// StalePersistDiscards counts persist outcomes dropped by the sequence guard.
	StalePersistDiscards prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CalculationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Count of landed-cost calculations by result.",
		}, []string{"result"})
		CoercionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "charge_coercions_total",
			Help:      "Count of unparseable charge values coerced to zero during aggregation.",
		}, []string{"field"})
		JobLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_lookups_total",
			Help:      "Count of job record lookups by source and result.",
		}, []string{"source", "result"})
		LedgerPersistTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_persist_total",
			Help:      "Count of outbound persist call outcomes.",
		}, []string{"call", "result"})
		LedgerPersistLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ledger_persist_duration_ms",
			Help:      "Latency for outbound persist calls in milliseconds.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"call"})
		StalePersistDiscards = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_persist_discards_total",
			Help:      "Number of persist outcomes discarded because a newer calculation or job superseded them.",
		})

		mustRegisterCollector(reg, CalculationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CalculationsTotal = v
			}
		})
		mustRegisterCollector(reg, CoercionsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CoercionsTotal = v
			}
		})
		mustRegisterCollector(reg, JobLookupsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				JobLookupsTotal = v
			}
		})
		mustRegisterCollector(reg, LedgerPersistTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				LedgerPersistTotal = v
			}
		})
		mustRegisterCollector(reg, LedgerPersistLatency, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.HistogramVec); ok {
				LedgerPersistLatency = v
			}
		})
		mustRegisterCollector(reg, StalePersistDiscards, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				StalePersistDiscards = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
