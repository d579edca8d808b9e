package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	EmailsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Total emails sent",
		},
	)

	EmailFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "email_failures_total",
			Help: "Total failed emails",
		},
	)

	BatchRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "batch_runs_total",
			Help: "Total batch send runs",
		},
	)

	SchedulerActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_active",
			Help: "1 when a schedule is armed, 0 otherwise",
		},
	)
)

func Init() {
	prometheus.MustRegister(EmailsSent)
	prometheus.MustRegister(EmailFailures)
	prometheus.MustRegister(BatchRuns)
	prometheus.MustRegister(SchedulerActive)
}
