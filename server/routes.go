// Package server exposes a Controller over HTTP: reports, the current
// schedule, request submission and Prometheus metrics.
package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/polysamo/quantumnet/network"
	"github.com/polysamo/quantumnet/sched"
	"github.com/polysamo/quantumnet/store"
)

// Deps are the components the API serves. Controller is required; the
// trace summary comes from the controller's own decision trace.
type Deps struct {
	Controller *sched.Controller
	Network    *network.Network    // nil = /network/metrics answers 404
	Store      *store.LedgerStore  // nil = /runs answers 404
	Gatherer   prometheus.Gatherer // nil = prometheus.DefaultGatherer
}

// NewRouter builds the gin engine. Panics if deps.Controller is nil.
func NewRouter(deps Deps) *gin.Engine {
	if deps.Controller == nil {
		panic("NewRouter: Controller must not be nil")
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	h := &handler{deps: deps}

	router := gin.New()
	router.Use(requestLogger(), gin.Recovery())

	api := router.Group("/api/v1")
	{
		api.GET("/health", h.health)
		api.GET("/report", h.report)
		api.GET("/timeslots", h.timeslots)
		api.GET("/pending", h.pending)
		api.POST("/requests", h.submit)
		api.POST("/run", h.run)
		api.GET("/network/metrics", h.networkMetrics)
		api.GET("/trace/summary", h.traceSummary)

		runs := api.Group("/runs")
		{
			runs.GET("", h.listRuns)
			runs.GET("/:id", h.getRun)
			runs.GET("/:id/failed", h.failedRows)
		}
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	return router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logrus.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Debug("http request")
	}
}
