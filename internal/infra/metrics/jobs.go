package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(jobsSubmittedTotal, jobsResolvedTotal) }

var jobsSubmittedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reage_jobs_submitted_total",
		Help: "Total number of jobs submitted to the remote service, labeled by kind.",
	},
	[]string{"kind"}, // 'image', 'video'
)

var jobsResolvedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reage_jobs_resolved_total",
		Help: "Total number of jobs resolved to a terminal state, labeled by status.",
	},
	[]string{"status"}, // 'succeeded', 'failed'
)

func IncJobSubmitted(kind string) {
	jobsSubmittedTotal.WithLabelValues(norm(kind)).Inc()
}

func IncJobResolved(status string) {
	jobsResolvedTotal.WithLabelValues(norm(status)).Inc()
}
