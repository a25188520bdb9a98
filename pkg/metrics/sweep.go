package metrics

import "github.com/prometheus/client_golang/prometheus"

// SweepMetrics tracks per-post outcomes of the earnings sweep.
type SweepMetrics struct {
	processed prometheus.Counter
	skipped   prometheus.Counter
	failed    prometheus.Counter
	credited  prometheus.Counter
}

// NewSweepMetrics registers the sweep counters on the provided registerer.
func NewSweepMetrics(reg prometheus.Registerer) *SweepMetrics {
	if reg == nil {
		return &SweepMetrics{}
	}
	processed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "earnings_sweep_posts_processed_total",
		Help: "Posts credited by the earnings sweep.",
	})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "earnings_sweep_posts_skipped_total",
		Help: "Eligible posts skipped for zero click delta.",
	})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "earnings_sweep_posts_failed_total",
		Help: "Posts whose crediting transaction failed.",
	})
	credited := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "earnings_sweep_amount_credited_total",
		Help: "Creator share credited by the sweep, in currency units.",
	})
	reg.MustRegister(processed, skipped, failed, credited)
	return &SweepMetrics{
		processed: processed,
		skipped:   skipped,
		failed:    failed,
		credited:  credited,
	}
}

// AddProcessed increments the processed counter by n.
func (s *SweepMetrics) AddProcessed(n int) {
	if s == nil || s.processed == nil {
		return
	}
	s.processed.Add(float64(n))
}

// AddSkipped increments the skipped counter by n.
func (s *SweepMetrics) AddSkipped(n int) {
	if s == nil || s.skipped == nil {
		return
	}
	s.skipped.Add(float64(n))
}

// AddFailed increments the failed counter by n.
func (s *SweepMetrics) AddFailed(n int) {
	if s == nil || s.failed == nil {
		return
	}
	s.failed.Add(float64(n))
}

// AddCredited adds the credited amount to the running total.
func (s *SweepMetrics) AddCredited(amount float64) {
	if s == nil || s.credited == nil {
		return
	}
	s.credited.Add(amount)
}
