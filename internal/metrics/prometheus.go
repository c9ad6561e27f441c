package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type prometheusObserver struct {
	writes   *prometheus.CounterVec
	failures *prometheus.CounterVec
}

var (
	historyWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leadtrail_history_writes_total",
		Help: "History rows written, by table and action.",
	}, []string{"target", "action"})
	historyFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leadtrail_history_write_failures_total",
		Help: "History writes that failed and were swallowed.",
	}, []string{"target", "action"})
	retentionPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leadtrail_activity_logs_purged_total",
		Help: "Activity log rows removed by the retention worker.",
	})
)

func NewPrometheusObserver() HistoryObserver {
	return &prometheusObserver{
		writes:   historyWrites,
		failures: historyFailures,
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func (p *prometheusObserver) RecordWrite(target, action string) {
	p.writes.WithLabelValues(target, action).Inc()
}

func (p *prometheusObserver) RecordFailure(target, action string) {
	p.failures.WithLabelValues(target, action).Inc()
}

// AddPurged counts rows deleted by retention.
func AddPurged(n int64) {
	if n > 0 {
		retentionPurged.Add(float64(n))
	}
}
