package observability

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type interceptingResponseWriter struct {
	writer http.ResponseWriter

	statusCode int
}

func (w *interceptingResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode

	w.writer.WriteHeader(statusCode)
}

func (w *interceptingResponseWriter) Write(data []byte) (int, error) {
	if w.statusCode == 0 {
		w.statusCode = http.StatusOK
	}
	return w.writer.Write(data)
}

func (w *interceptingResponseWriter) Header() http.Header {
	return w.writer.Header()
}

// routePattern returns the chi route of r, or its path when chi has not
// routed the request.
func routePattern(r *http.Request) string {
	if routeContext := chi.RouteContext(r.Context()); routeContext != nil {
		if pattern := routeContext.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// RequestTracing returns an HTTP handler that traces all HTTP requests coming
// in and counts returned status codes per route. It should be one of the first
// middlewares on the router.
func RequestTracing() func(http.Handler) http.Handler {
	statusCodes, err := Meter(meterName).Int64Counter(
		"http_status_codes",
		metric.WithDescription("Number of returned HTTP status codes"),
	)
	if err != nil {
		logrus.WithError(err).Error("unable to get siwe.http_status_codes counter metric")
	}

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			writer := &interceptingResponseWriter{
				writer: w,
			}

			next.ServeHTTP(writer, r)

			route := routePattern(r)
			trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("http.route", route))

			if statusCodes != nil {
				statusCodes.Add(
					r.Context(),
					1,
					metric.WithAttributes(attribute.Int("code", writer.statusCode), attribute.String("http.route", route)),
				)
			}
		}

		return otelhttp.NewHandler(http.HandlerFunc(fn), "api")
	}
}
