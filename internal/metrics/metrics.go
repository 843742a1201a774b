// Package metrics expone los collectors de Prometheus del servicio.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fashion_orders"

var (
	// CouponRedemptions cuenta intentos de canje por resultado (ok o código de motivo).
	CouponRedemptions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "coupon",
		Name:      "redemptions_total",
		Help:      "Coupon redemption attempts by result.",
	}, []string{"result"})

	// StatusTransitions cuenta transiciones aplicadas por paso destino.
	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "order",
		Name:      "status_transitions_total",
		Help:      "Applied order status transitions by destination step.",
	}, []string{"to"})

	// OrdersPlaced cuenta órdenes creadas por origen (api / rabbit).
	OrdersPlaced = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "order",
		Name:      "placed_total",
		Help:      "Orders placed by source.",
	}, []string{"source"})

	// OrdersByStep lo actualiza el job de resumen.
	OrdersByStep = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "order",
		Name:      "by_step",
		Help:      "Orders currently in each step, refreshed by the summary job.",
	}, []string{"step"})

	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests processed.",
	}, []string{"method", "path", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Request latency in seconds.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path"})
)

// Middleware registra conteo y latencia por ruta. Usa el patrón de ruta de gin
// (/orders/:orderId) para no explotar la cardinalidad.
func Middleware(skip ...string) gin.HandlerFunc {
	skipSet := make(map[string]bool, len(skip))
	for _, p := range skip {
		skipSet[p] = true
	}
	return func(c *gin.Context) {
		if skipSet[c.Request.URL.Path] {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		requestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		requestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
