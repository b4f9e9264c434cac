package worker

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthHandler serves the worker's liveness, readiness and metrics
// endpoints on its sidecar port.
func (w *Worker) HealthHandler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// ready only while the poll loop is running
	r.GET("/readyz", func(c *gin.Context) {
		w.readyMu.RLock()
		ready := w.ready
		w.readyMu.RUnlock()

		status := http.StatusOK
		body := gin.H{"status": "ready"}

		if !ready {
			status = http.StatusServiceUnavailable
			body = gin.H{"status": "not_ready"}
		}

		c.JSON(status, body)
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
