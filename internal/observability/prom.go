package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "authhub"

// Prom bundles every metric family the api and worker binaries expose.
type Prom struct {
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	httpInFlight *prometheus.GaugeVec

	dbLatency *prometheus.HistogramVec
	dbErrors  *prometheus.CounterVec

	JobDuration  *prometheus.HistogramVec
	JobResults   *prometheus.CounterVec
	JobsInFlight prometheus.Gauge
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{}

	p.httpRequests = counterVec("http_requests_total", "", "Total HTTP requests processed",
		"method", "route", "status")

	p.httpLatency = histogramVec("http_request_duration_seconds", "", "HTTP request latency distributions.",
		[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		"method", "route", "status")

	p.httpInFlight = gaugeVec("http_in_flight_requests", "", "Current number of in-flight HTTP requests.",
		"method", "route")

	p.dbLatency = histogramVec("query_duration_seconds", "db", "Store operation latency by logical op.",
		[]float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.35, 0.5, 1, 2, 5},
		"op", "status")

	p.dbErrors = counterVec("errors_total", "db", "Store errors by logical op and class.",
		"op", "class")

	// result=done|retry|failed
	p.JobDuration = histogramVec("duration_seconds", "jobs", "Job execution duration by type and result.",
		[]float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		"job_type", "result")

	p.JobResults = counterVec("results_total", "jobs", "Job outcomes by type and result.",
		"job_type", "result")

	p.JobsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "jobs",
		Name:      "in_flight",
		Help:      "Currently executing jobs in this process.",
	})

	reg.MustRegister(
		p.httpRequests, p.httpLatency, p.httpInFlight,
		p.dbLatency, p.dbErrors,
		p.JobDuration, p.JobResults, p.JobsInFlight,
	)

	return p
}

func counterVec(name, subsystem, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func gaugeVec(name, subsystem, help string, labels ...string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func histogramVec(name, subsystem, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
}

// GinHandleMiddleware records request counts, latency and in-flight gauges
// per route template.
func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		// the route template is only known after routing
		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}

		method := ctx.Request.Method

		p.httpInFlight.WithLabelValues(method, route).Inc()
		defer p.httpInFlight.WithLabelValues(method, route).Dec()

		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())

		p.httpRequests.WithLabelValues(method, route, status).Inc()
		p.httpLatency.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())
	}
}
