// Package metrics holds the Prometheus collectors shared by the server and
// the worker.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "economad"

type Metrics struct {
	ExpensesCreated    prometheus.Counter
	InstallmentsSaved  prometheus.Counter
	ExpenseAmountTotal prometheus.Counter
	SyncPublished      *prometheus.CounterVec
	SyncProcessed      *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
	HTTPRejected       *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		ExpensesCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expenses_created_total",
			Help:      "Expenses created through the API, installments excluded.",
		}),
		InstallmentsSaved: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "installments_saved_total",
			Help:      "Derived installment copies persisted.",
		}),
		ExpenseAmountTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expense_amount_total",
			Help:      "Sum of the amounts of all saved expense rows.",
		}),
		SyncPublished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_messages_published_total",
			Help:      "Spreadsheet sync messages published, by result.",
		}, []string{"result"}),
		SyncProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_expenses_processed_total",
			Help:      "Expenses pushed to the spreadsheet by the worker, by result.",
		}, []string{"result"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		HTTPRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_rejected_total",
			Help:      "Requests refused before reaching a handler, by reason.",
		}, []string{"reason"}),
		gatherer: reg,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Gatherer exposes the registry for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.gatherer
}
