package gateway

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Instrumentation wires per-endpoint prometheus collectors. The standard gin
// metrics come from go-gin-prometheus; these carry the service namespace.
func Instrumentation() gin.HandlerFunc {
	counterVec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "goodbooks",
		Subsystem: "request",
		Name:      "requests_count",
		Help:      "Number of requests per each endpoint",
	}, []string{"code", "method", "handler", "host", "url"})

	resTime := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "goodbooks",
		Subsystem: "response",
		Name:      "response_time_hist",
		Help:      "goodbooks response duration",
	})

	resSize := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "goodbooks",
		Subsystem: "response",
		Name:      "size_histogram",
		Help:      "goodbooks response size",
	})

	reqSize := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "goodbooks",
		Subsystem: "request",
		Name:      "size_hist",
		Help:      "Request size instrumenter",
	})

	resTimeSum := prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace: "goodbooks",
		Subsystem: "response",
		Name:      "latency_summary",
		Help:      "Computes responses latency",
	})

	colls := []prometheus.Collector{counterVec, resTime, resSize, reqSize, resTimeSum}
	for _, v := range colls {
		err := prometheus.Register(v)
		if err != nil {
			panic(err)
		}
	}
	return func(c *gin.Context) {

		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		duration := float64(time.Since(start)) * 1e-6 // to millisecond

		rSize := c.Writer.Size()
		rqSize := c.Request.ContentLength

		status := strconv.Itoa(c.Writer.Status())
		url := c.Request.URL.Path

		counterVec.WithLabelValues(status, c.Request.Method, c.HandlerName(), c.Request.Host, url).Inc()
		resTime.Observe(duration)
		resSize.Observe(float64(rSize))
		reqSize.Observe(float64(rqSize))
		resTimeSum.Observe(duration)

	}
}
