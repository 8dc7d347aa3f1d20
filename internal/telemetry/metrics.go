package telemetry

import "github.com/prometheus/client_golang/prometheus"

// Pipeline kind labels.
const (
	KindSession = "session"
	KindRender  = "render"
)

var (
	PipelinesStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "infralith_pipelines_started_total",
			Help: "Pipelines dispatched, by kind.",
		},
		[]string{"kind"},
	)

	PipelinesCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "infralith_pipelines_completed_total",
			Help: "Pipelines that ran to their terminal state, by kind.",
		},
		[]string{"kind"},
	)

	PipelinesFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "infralith_pipelines_failed_total",
			Help: "Pipelines that aborted on an unexpected fault, by kind.",
		},
		[]string{"kind"},
	)

	PipelinesInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "infralith_pipelines_inflight",
		Help: "Pipelines currently executing.",
	})
)

func init() {
	prometheus.MustRegister(
		PipelinesStarted,
		PipelinesCompleted,
		PipelinesFailed,
		PipelinesInFlight,
	)
}
