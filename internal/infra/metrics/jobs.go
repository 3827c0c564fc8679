package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(jobsSubmittedTotal, jobsProcessedTotal, jobsDeletedTotal) }

var jobsSubmittedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "jobs_submitted_total",
		Help: "Total number of jobs accepted, labeled by job type.",
	},
	[]string{"job_type"},
)

var jobsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "jobs_processed_total",
		Help: "Total number of jobs processed, labeled by status.",
	},
	[]string{"status"}, // 'completed', 'failed'
)

var jobsDeletedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "jobs_deleted_total",
		Help: "Total number of terminal jobs removed by the retention sweep.",
	},
)

func IncJobSubmitted(jobType string) {
	jobsSubmittedTotal.WithLabelValues(norm(jobType)).Inc()
}

func IncJobProcessed(status string) {
	jobsProcessedTotal.WithLabelValues(norm(status)).Inc()
}

func AddJobsDeleted(n int64) {
	jobsDeletedTotal.Add(float64(n))
}
