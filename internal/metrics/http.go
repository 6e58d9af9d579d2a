package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetricsMiddleware returns a Gin middleware recording request counts and durations
// labelled by method, route pattern and status code.
func HTTPMetricsMiddleware(meterProvider metric.MeterProvider, namespace string) gin.HandlerFunc {
	meter := meterProvider.Meter(namespace)

	requestCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_http_requests_total", namespace),
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return func(c *gin.Context) { c.Next() }
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_http_request_duration_seconds", namespace),
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		attrs := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("path", routePattern(c.FullPath())),
			attribute.String("status_code", strconv.Itoa(c.Writer.Status())),
		)
		requestCounter.Add(c.Request.Context(), 1, attrs)
		durationHisto.Record(c.Request.Context(), time.Since(start).Seconds(), attrs)
	}
}

// routePattern keeps label cardinality bounded: unmatched routes collapse to "unknown".
func routePattern(fullPath string) string {
	if fullPath == "" {
		return "unknown"
	}
	return fullPath
}

// upstreamTransport records outbound calls made through the wrapped RoundTripper.
type upstreamTransport struct {
	base     http.RoundTripper
	target   string
	counter  metric.Int64Counter
	duration metric.Float64Histogram
}

// InstrumentTransport wraps base so every outbound request to target is counted and timed.
// Labels are the target name, the HTTP method and the status code ("error" for transport failures).
// Request paths are not recorded: relay endpoints are caller supplied.
func InstrumentTransport(
	base http.RoundTripper,
	meterProvider metric.MeterProvider,
	namespace, target string,
) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	meter := meterProvider.Meter(namespace)

	counter, err := meter.Int64Counter(
		fmt.Sprintf("%s_upstream_requests_total", namespace),
		metric.WithDescription("Total number of outbound upstream requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return base
	}
	duration, err := meter.Float64Histogram(
		fmt.Sprintf("%s_upstream_request_duration_seconds", namespace),
		metric.WithDescription("Outbound upstream request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return base
	}

	return &upstreamTransport{base: base, target: target, counter: counter, duration: duration}
}

func (t *upstreamTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)

	status := StatusError
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	attrs := metric.WithAttributes(
		attribute.String("target", t.target),
		attribute.String("method", req.Method),
		attribute.String("status_code", status),
	)
	t.counter.Add(req.Context(), 1, attrs)
	t.duration.Record(req.Context(), time.Since(start).Seconds(), attrs)

	return resp, err
}
