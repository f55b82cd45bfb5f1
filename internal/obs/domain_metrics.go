package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuoteTotal counts quote computations by outcome.
	QuoteTotal *prometheus.CounterVec
	// QuoteInvoices records how many invoices each cart split into.
	QuoteInvoices prometheus.Histogram
	// QuoteDiscountTotal accumulates the discount amounts granted by quotes.
	QuoteDiscountTotal prometheus.Counter
	// RecommendationTotal counts recommendation computations by outcome.
	RecommendationTotal *prometheus.CounterVec
	// SimulationRecordedTotal counts simulation persistence outcomes.
	SimulationRecordedTotal *prometheus.CounterVec
	// RulesReloadTotal counts rule catalog reloads by outcome.
	RulesReloadTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuoteTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_total",
			Help:      "Count of quote computations by outcome.",
		}, []string{"result"})
		QuoteInvoices = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_invoices",
			Help:      "Number of invoices a quoted cart split into.",
			Buckets:   []float64{1, 2, 3, 4, 5, 8, 13},
		})
		QuoteDiscountTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_discount_amount_total",
			Help:      "Sum of discount amounts granted across all quotes.",
		})
		RecommendationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendation_total",
			Help:      "Count of recommendation computations by outcome.",
		}, []string{"result"})
		SimulationRecordedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulation_recorded_total",
			Help:      "Count of simulation persistence outcomes.",
		}, []string{"result"})
		RulesReloadTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rules_reload_total",
			Help:      "Count of rule catalog reloads by outcome.",
		}, []string{"result"})

		mustRegisterCollector(reg, QuoteTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuoteTotal = v
			}
		})
		mustRegisterCollector(reg, QuoteInvoices, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				QuoteInvoices = v
			}
		})
		mustRegisterCollector(reg, QuoteDiscountTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				QuoteDiscountTotal = v
			}
		})
		mustRegisterCollector(reg, RecommendationTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				RecommendationTotal = v
			}
		})
		mustRegisterCollector(reg, SimulationRecordedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				SimulationRecordedTotal = v
			}
		})
		mustRegisterCollector(reg, RulesReloadTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				RulesReloadTotal = v
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
