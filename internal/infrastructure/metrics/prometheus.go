// Package metrics implementa ports.SalesMetrics con Prometheus.
package metrics

import (
	"time"

	"github.com/jhoicas/gelp-api/internal/application/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

var _ ports.SalesMetrics = (*Prometheus)(nil)

// Prometheus colectores del libro de ventas, registrados en el Registerer recibido.
type Prometheus struct {
	committed   prometheus.Counter
	replayed    prometheus.Counter
	retried     prometheus.Counter
	failed      *prometheus.CounterVec
	amount      prometheus.Counter
	duration    prometheus.Histogram
	adjustments *prometheus.CounterVec
}

// New crea y registra los colectores. Falla si ya estaban registrados en reg.
func New(reg prometheus.Registerer) (*Prometheus, error) {
	m := &Prometheus{
		committed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sales_committed_total",
			Help: "Ventas confirmadas",
		}),
		replayed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sales_replayed_total",
			Help: "Solicitudes de venta respondidas con una venta previa (misma clave de idempotencia)",
		}),
		retried: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sales_retried_total",
			Help: "Reintentos de transacción de venta por conflicto",
		}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sales_failed_total",
			Help: "Ventas rechazadas por motivo",
		}, []string{"reason"}),
		amount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sales_amount_total",
			Help: "Suma de totales de ventas confirmadas",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sale_duration_seconds",
			Help:    "Duración de RegisterSale hasta el commit",
			Buckets: prometheus.DefBuckets,
		}),
		adjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_adjustments_total",
			Help: "Productos afectados por ajustes de stock confirmados",
		}, []string{"kind"}),
	}
	for _, c := range []prometheus.Collector{m.committed, m.replayed, m.retried, m.failed, m.amount, m.duration, m.adjustments} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Prometheus) SaleCommitted(total decimal.Decimal, elapsed time.Duration) {
	m.committed.Inc()
	m.amount.Add(total.InexactFloat64())
	m.duration.Observe(elapsed.Seconds())
}

func (m *Prometheus) SaleReplayed() { m.replayed.Inc() }

func (m *Prometheus) SaleFailed(reason string) { m.failed.WithLabelValues(reason).Inc() }

func (m *Prometheus) SaleRetried() { m.retried.Inc() }

func (m *Prometheus) StockAdjusted(kind string, products int) {
	m.adjustments.WithLabelValues(kind).Add(float64(products))
}
