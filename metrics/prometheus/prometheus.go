package prometheusmetrics

import (
	"strconv"
	"time"

	"github.com/predictinteractive/predict-server/config"
	"github.com/predictinteractive/predict-server/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics defines the Prometheus metrics backing the MetricsEngine implementation.
type Metrics struct {
	Registry *prometheus.Registry

	// Connection Metrics
	connectionsClosed *prometheus.CounterVec
	connectionsError  *prometheus.CounterVec
	connectionsOpened *prometheus.CounterVec

	// General Metrics
	requests      *prometheus.CounterVec
	requestsTimer *prometheus.HistogramVec

	// Adapter Metrics
	adapterRequests      *prometheus.CounterVec
	adapterErrors        *prometheus.CounterVec
	adapterPrices        *prometheus.HistogramVec
	adapterRequestsTimer *prometheus.HistogramVec
	adapterPassbacks     *prometheus.CounterVec
}

const (
	adapterErrorLabel  = "adapter_error"
	adapterLabel       = "adapter"
	connectionErrLabel = "connection_error"
	hasBidsLabel       = "has_bids"
	integrationLabel   = "integration"
	requestStatusLabel = "request_status"
	requestTypeLabel   = "request_type"
)

const (
	connectionAcceptError = "accept"
	connectionCloseError  = "close"
)

// NewMetrics initializes a new Prometheus metrics instance with preloaded label values.
func NewMetrics(cfg config.PrometheusMetrics) *Metrics {
	standardTimeBuckets := []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}
	priceBuckets := []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

	metrics := Metrics{}
	metrics.Registry = prometheus.NewRegistry()

	metrics.connectionsClosed = newCounter(cfg, metrics.Registry,
		"connections_closed",
		"Count of successful connections closed to Predict Server.",
		[]string{})

	metrics.connectionsError = newCounter(cfg, metrics.Registry,
		"connections_error",
		"Count of errors for connection open and close attempts to Predict Server labeled by type.",
		[]string{connectionErrLabel})

	metrics.connectionsOpened = newCounter(cfg, metrics.Registry,
		"connections_opened",
		"Count of successful connections opened to Predict Server.",
		[]string{})

	metrics.requests = newCounter(cfg, metrics.Registry,
		"requests",
		"Count of total requests labeled by type and status.",
		[]string{requestTypeLabel, requestStatusLabel})

	metrics.requestsTimer = newHistogramVec(cfg, metrics.Registry,
		"request_time_seconds",
		"Seconds to resolve successful requests labeled by type.",
		[]string{requestTypeLabel},
		standardTimeBuckets)

	metrics.adapterRequests = newCounter(cfg, metrics.Registry,
		"adapter_requests",
		"Count of requests labeled by adapter and if they returned bids.",
		[]string{adapterLabel, hasBidsLabel})

	metrics.adapterErrors = newCounter(cfg, metrics.Registry,
		"adapter_errors",
		"Count of errors labeled by adapter and error type.",
		[]string{adapterLabel, adapterErrorLabel})

	metrics.adapterPrices = newHistogramVec(cfg, metrics.Registry,
		"adapter_prices",
		"Monetary value of the bids labeled by adapter.",
		[]string{adapterLabel},
		priceBuckets)

	metrics.adapterRequestsTimer = newHistogramVec(cfg, metrics.Registry,
		"adapter_request_time_seconds",
		"Seconds to resolve each successful request labeled by adapter.",
		[]string{adapterLabel},
		standardTimeBuckets)

	metrics.adapterPassbacks = newCounter(cfg, metrics.Registry,
		"adapter_passbacks",
		"Count of bids labeled by adapter and the passback integration that rendered them.",
		[]string{adapterLabel, integrationLabel})

	preloadLabelValues(&metrics)

	return &metrics
}

func newCounter(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string, labels []string) *prometheus.CounterVec {
	opts := prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
	}
	counter := prometheus.NewCounterVec(opts, labels)
	registry.MustRegister(counter)
	return counter
}

func newHistogramVec(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	opts := prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}
	histogram := prometheus.NewHistogramVec(opts, labels)
	registry.MustRegister(histogram)
	return histogram
}

func preloadLabelValues(m *Metrics) {
	for _, rType := range metrics.RequestTypes() {
		for _, status := range metrics.RequestStatuses() {
			m.requests.WithLabelValues(string(rType), string(status))
		}
	}
}

func (m *Metrics) RecordConnectionAccept(success bool) {
	if success {
		m.connectionsOpened.With(prometheus.Labels{}).Inc()
	} else {
		m.connectionsError.With(prometheus.Labels{
			connectionErrLabel: connectionAcceptError,
		}).Inc()
	}
}

func (m *Metrics) RecordConnectionClose(success bool) {
	if success {
		m.connectionsClosed.With(prometheus.Labels{}).Inc()
	} else {
		m.connectionsError.With(prometheus.Labels{
			connectionErrLabel: connectionCloseError,
		}).Inc()
	}
}

func (m *Metrics) RecordRequest(labels metrics.Labels) {
	m.requests.With(prometheus.Labels{
		requestTypeLabel:   string(labels.RType),
		requestStatusLabel: string(labels.RequestStatus),
	}).Inc()
}

func (m *Metrics) RecordRequestTime(labels metrics.Labels, length time.Duration) {
	if labels.RequestStatus == metrics.RequestStatusOK {
		m.requestsTimer.With(prometheus.Labels{
			requestTypeLabel: string(labels.RType),
		}).Observe(length.Seconds())
	}
}

func (m *Metrics) RecordAdapterRequest(labels metrics.AdapterLabels) {
	m.adapterRequests.With(prometheus.Labels{
		adapterLabel: string(labels.Adapter),
		hasBidsLabel: strconv.FormatBool(labels.AdapterBids == metrics.AdapterBidPresent),
	}).Inc()

	for err := range labels.AdapterErrors {
		m.adapterErrors.With(prometheus.Labels{
			adapterLabel:      string(labels.Adapter),
			adapterErrorLabel: string(err),
		}).Inc()
	}
}

func (m *Metrics) RecordAdapterPrice(labels metrics.AdapterLabels, cpm float64) {
	m.adapterPrices.With(prometheus.Labels{
		adapterLabel: string(labels.Adapter),
	}).Observe(cpm)
}

func (m *Metrics) RecordAdapterTime(labels metrics.AdapterLabels, length time.Duration) {
	if len(labels.AdapterErrors) == 0 {
		m.adapterRequestsTimer.With(prometheus.Labels{
			adapterLabel: string(labels.Adapter),
		}).Observe(length.Seconds())
	}
}

func (m *Metrics) RecordPassbackSelection(labels metrics.PassbackLabels) {
	m.adapterPassbacks.With(prometheus.Labels{
		adapterLabel:     string(labels.Adapter),
		integrationLabel: metrics.PassbackLabel(labels.Integration),
	}).Inc()
}
