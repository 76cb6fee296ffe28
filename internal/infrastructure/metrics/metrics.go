// Package metrics expone métricas Prometheus de HTTP y de movimientos de inventario.
//
// Métricas:
//   - <ns>_http_request_duration_seconds{method,path,status} histogram
//   - <ns>_http_requests_inflight gauge
//   - <ns>_http_request_errors_total{method,path,status} counter (4xx/5xx)
//   - <ns>_inventory_stock_movements_total{type} counter
//   - <ns>_inventory_units_moved_total{type} counter
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/jhoicas/sweetshop-api/internal/application/inventory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ inventory.EventPublisher = (*Metrics)(nil)

// Metrics colectores de la app registrados en un registro propio.
type Metrics struct {
	registry *prometheus.Registry

	reqDuration *prometheus.HistogramVec
	reqInflight prometheus.Gauge
	reqErrors   *prometheus.CounterVec

	movements *prometheus.CounterVec
	units     *prometheus.CounterVec
}

// New crea y registra los colectores. namespace suele ser el nombre del servicio.
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de las peticiones HTTP.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "path", "status"}),
		reqInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_inflight",
			Help:      "Peticiones HTTP en curso.",
		}),
		reqErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_request_errors_total",
			Help:      "Peticiones HTTP terminadas con 4xx/5xx.",
		}, []string{"method", "path", "status"}),
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_stock_movements_total",
			Help:      "Movimientos de stock confirmados por tipo de evento.",
		}, []string{"type"}),
		units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_units_moved_total",
			Help:      "Unidades movidas por tipo de evento.",
		}, []string{"type"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.reqDuration, m.reqInflight, m.reqErrors,
		m.movements, m.units,
	)
	return m
}

// Handler sirve el formato de exposición de Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RequestStarted incrementa el gauge de peticiones en curso.
func (m *Metrics) RequestStarted() { m.reqInflight.Inc() }

// RequestFinished registra duración y, si corresponde, el error de una petición ya respondida.
func (m *Metrics) RequestFinished(method, path string, status int, elapsed time.Duration) {
	m.reqInflight.Dec()
	code := strconv.Itoa(status)
	m.reqDuration.WithLabelValues(method, path, code).Observe(elapsed.Seconds())
	if status >= 400 {
		m.reqErrors.WithLabelValues(method, path, code).Inc()
	}
}

// Publish cuenta el movimiento; implementa inventory.EventPublisher.
func (m *Metrics) Publish(_ context.Context, event inventory.Event) error {
	m.movements.WithLabelValues(event.Type).Inc()
	if event.Quantity > 0 {
		m.units.WithLabelValues(event.Type).Add(float64(event.Quantity))
	}
	return nil
}
