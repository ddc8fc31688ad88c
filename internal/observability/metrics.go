package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors used by the API and the sweep.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal         *prometheus.CounterVec
	httpRequestDuration       *prometheus.HistogramVec
	sweepsTotal               prometheus.Counter
	subscriptionsCheckedTotal prometheus.Counter
	offersFoundTotal          prometheus.Counter
	notificationsSentTotal    prometheus.Counter
	notificationsFailedTotal  *prometheus.CounterVec
	providerErrorsTotal       prometheus.Counter
	smsSendDuration           prometheus.Histogram
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "flightme",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "flightme",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		sweepsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "flightme",
				Name:      "sweeps_total",
				Help:      "Total number of price-tracking sweeps started.",
			},
		),
		subscriptionsCheckedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "flightme",
				Name:      "subscriptions_checked_total",
				Help:      "Total number of subscriptions checked against the flight API.",
			},
		),
		offersFoundTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "flightme",
				Name:      "offers_found_total",
				Help:      "Total number of matching flight offers returned across sweeps.",
			},
		),
		notificationsSentTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "flightme",
				Name:      "notifications_sent_total",
				Help:      "Total number of price alert texts sent successfully.",
			},
		),
		notificationsFailedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "flightme",
				Name:      "notifications_failed_total",
				Help:      "Total number of price alert texts that could not be delivered.",
			},
			[]string{"reason"},
		),
		providerErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "flightme",
				Name:      "provider_errors_total",
				Help:      "Total number of flight API failures normalized to empty results.",
			},
		),
		smsSendDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "flightme",
				Name:      "sms_send_duration_seconds",
				Help:      "SMS provider send duration in seconds.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.sweepsTotal,
		m.subscriptionsCheckedTotal,
		m.offersFoundTotal,
		m.notificationsSentTotal,
		m.notificationsFailedTotal,
		m.providerErrorsTotal,
		m.smsSendDuration,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncSweep() {
	if m == nil {
		return
	}
	m.sweepsTotal.Inc()
}

func (m *Metrics) IncSubscriptionChecked() {
	if m == nil {
		return
	}
	m.subscriptionsCheckedTotal.Inc()
}

func (m *Metrics) AddOffersFound(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.offersFoundTotal.Add(float64(count))
}

func (m *Metrics) IncNotificationSent() {
	if m == nil {
		return
	}
	m.notificationsSentTotal.Inc()
}

func (m *Metrics) IncNotificationFailed(reason string) {
	if m == nil {
		return
	}
	reasonLabel := strings.TrimSpace(strings.ToLower(reason))
	if reasonLabel == "" {
		reasonLabel = "unknown"
	}
	m.notificationsFailedTotal.WithLabelValues(reasonLabel).Inc()
}

func (m *Metrics) IncProviderError() {
	if m == nil {
		return
	}
	m.providerErrorsTotal.Inc()
}

func (m *Metrics) ObserveSMSSendDuration(duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.smsSendDuration.Observe(seconds)
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}
