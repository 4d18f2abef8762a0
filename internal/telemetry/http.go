package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// HTTPInstrumentationName names the HTTP tracer and meter
const HTTPInstrumentationName = "github.com/stacklok/mbean-bridge/http"

// unknownRoute labels requests chi did not match
const unknownRoute = "unknown_route"

// URL parameters copied onto request spans
var spanRouteParams = map[string]attribute.Key{
	"target":  attribute.Key("target.name"),
	"backend": attribute.Key("backend.name"),
}

// HTTPMetrics holds the request instruments
type HTTPMetrics struct {
	duration metric.Float64Histogram
	total    metric.Int64Counter
	inFlight metric.Int64UpDownCounter
}

// NewHTTPMetrics creates the request instruments. A nil provider gives nil
// metrics, which record nothing.
func NewHTTPMetrics(provider metric.MeterProvider) (*HTTPMetrics, error) {
	if provider == nil {
		return nil, nil
	}
	meter := provider.Meter(HTTPInstrumentationName)

	duration, err := meter.Float64Histogram(
		"mbean_bridge_http_request_duration_seconds",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, err
	}
	total, err := meter.Int64Counter(
		"mbean_bridge_http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}
	inFlight, err := meter.Int64UpDownCounter(
		"mbean_bridge_http_active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{duration: duration, total: total, inFlight: inFlight}, nil
}

// HTTPMiddleware traces and measures every request. Spans and metrics are
// labelled with the chi route pattern, not the raw path, and spans carry the
// target or backend named in the URL. Either provider may be nil.
func HTTPMiddleware(tp trace.TracerProvider, mp metric.MeterProvider) (func(http.Handler) http.Handler, error) {
	metrics, err := NewHTTPMetrics(mp)
	if err != nil {
		return nil, err
	}
	var tracer trace.Tracer
	if tp != nil {
		tracer = tp.Tracer(HTTPInstrumentationName)
	}
	if tracer == nil && metrics == nil {
		return func(next http.Handler) http.Handler { return next }, nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// r.Context() may be cancelled once ServeHTTP returns
			ctx := r.Context()
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			var span trace.Span
			if tracer != nil {
				ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(r.Header))
				ctx, span = tracer.Start(ctx, r.Method+" "+r.URL.Path,
					trace.WithSpanKind(trace.SpanKindServer),
					trace.WithAttributes(
						semconv.HTTPRequestMethodKey.String(r.Method),
						semconv.URLPath(r.URL.Path),
						semconv.UserAgentOriginal(r.UserAgent()),
					),
				)
				defer span.End()
				r = r.WithContext(ctx)
			}

			metrics.startRequest(r)
			next.ServeHTTP(ww, r)

			route := routePattern(r)
			statusCode := ww.Status()

			if span != nil {
				span.SetName(r.Method + " " + route)
				span.SetAttributes(
					semconv.HTTPRouteKey.String(route),
					semconv.HTTPResponseStatusCode(statusCode),
				)
				span.SetAttributes(routeParams(r)...)
				if statusCode >= http.StatusBadRequest {
					span.SetStatus(codes.Error, http.StatusText(statusCode))
				} else {
					span.SetStatus(codes.Ok, "")
				}
			}
			metrics.endRequest(r, route, statusCode, time.Since(start))
		})
	}, nil
}

func (m *HTTPMetrics) startRequest(r *http.Request) {
	if m == nil {
		return
	}
	m.inFlight.Add(r.Context(), 1)
}

func (m *HTTPMetrics) endRequest(r *http.Request, route string, statusCode int, elapsed time.Duration) {
	if m == nil {
		return
	}
	ctx := r.Context()
	m.inFlight.Add(ctx, -1)

	attrs := metric.WithAttributes(
		attribute.String("method", r.Method),
		attribute.String("route", route),
		attribute.String("status_code", strconv.Itoa(statusCode)),
	)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
	m.total.Add(ctx, 1, attrs)
}

// routePattern returns the matched chi pattern, e.g. "/v1/targets/{target}/status"
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return unknownRoute
}

func routeParams(r *http.Request) []attribute.KeyValue {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return nil
	}
	var attrs []attribute.KeyValue
	for i, name := range rctx.URLParams.Keys {
		if key, ok := spanRouteParams[name]; ok && i < len(rctx.URLParams.Values) {
			attrs = append(attrs, key.String(rctx.URLParams.Values[i]))
		}
	}
	return attrs
}
