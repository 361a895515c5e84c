package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus" // Prometheus metrics.
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPInstrumentation holds Prometheus metrics of the requests
// made by an HTTP client.
type HTTPInstrumentation struct {
	// Count of requests by method and status code.
	Requests *prometheus.CounterVec

	// Duration of requests by method and status code.
	Duration *prometheus.HistogramVec

	// Requests currently waiting for a response.
	InFlight prometheus.Gauge
}

// NewHTTPInstrumentation returns a new HTTPInstrumentation. The
// constLabels tell apart clients talking to different services,
// e.g. {"recipient": "elasticsearch"}.
func NewHTTPInstrumentation(namespace string, constLabels prometheus.Labels) *HTTPInstrumentation {
	return &HTTPInstrumentation{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "requests_total",
			Help:        "Count of HTTP requests made.",
			ConstLabels: constLabels,
		}, []string{LabelStatusCode, LabelMethod}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "request_duration_seconds",
			Help:        "Duration of HTTP requests.",
			Buckets:     []float64{.005, .01, .05, .1, .5, 1, 5, 10, 30},
			ConstLabels: constLabels,
		}, []string{LabelStatusCode, LabelMethod}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "in_flight_requests",
			Help:        "Count of HTTP requests waiting for a response.",
			ConstLabels: constLabels,
		}),
	}
}

// RoundTripper wraps rt so requests are observed. If rt
// is nil, http.DefaultTransport is used.
func (i *HTTPInstrumentation) RoundTripper(rt http.RoundTripper) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}
	rt = promhttp.InstrumentRoundTripperCounter(i.Requests, rt)
	rt = promhttp.InstrumentRoundTripperDuration(i.Duration, rt)
	return promhttp.InstrumentRoundTripperInFlight(i.InFlight, rt)
}

// Describe implements the prometheus.Collector interface.
func (i *HTTPInstrumentation) Describe(c chan<- *prometheus.Desc) {
	i.Requests.Describe(c)
	i.Duration.Describe(c)
	i.InFlight.Describe(c)
}

// Collect implements the prometheus.Collector interface.
func (i *HTTPInstrumentation) Collect(c chan<- prometheus.Metric) {
	i.Requests.Collect(c)
	i.Duration.Collect(c)
	i.InFlight.Collect(c)
}

// InstrumentHTTP returns a copy of base, or of http.DefaultClient if
// base is nil, whose requests are observed by a new HTTPInstrumentation
// registered with reg.
//
// Example:
//
//   client, err := InstrumentHTTP(nil, prometheus.DefaultRegisterer, "", map[string]string{"recipient": "elasticsearch"})
//
func InstrumentHTTP(base *http.Client, reg prometheus.Registerer, namespace string, constLabels map[string]string) (*http.Client, error) {
	if base == nil {
		base = http.DefaultClient
	}
	i := NewHTTPInstrumentation(namespace, constLabels)
	if err := reg.Register(i); err != nil {
		return nil, err
	}
	c := *base
	c.Transport = i.RoundTripper(base.Transport)
	return &c, nil
}
