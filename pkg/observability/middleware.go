package observability

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

var httpPropagator = propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})

// responseRecorder captures the status code and body size of a response.
type responseRecorder struct {
	http.ResponseWriter

	status int
	bytes  int64
}

func (rr *responseRecorder) WriteHeader(code int) {
	if rr.status == 0 {
		rr.status = code
	}

	rr.ResponseWriter.WriteHeader(code)
}

func (rr *responseRecorder) Write(buf []byte) (int, error) {
	if rr.status == 0 {
		rr.status = http.StatusOK
	}

	n, err := rr.ResponseWriter.Write(buf)
	rr.bytes += int64(n)

	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}

	return n, nil
}

// InstrumentHandler wraps next with a server span named "METHOD route".
// route is fixed by the caller so request paths never become span names.
// Incoming W3C trace context is honored.
func InstrumentHandler(tracer trace.Tracer, route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		parent := httpPropagator.Extract(req.Context(), propagation.HeaderCarrier(req.Header))

		ctx, span := tracer.Start(parent, req.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(req.Method),
				semconv.HTTPRoute(route),
			),
		)
		defer span.End()

		rec := &responseRecorder{ResponseWriter: rw}
		next.ServeHTTP(rec, req.WithContext(WithOperation(ctx, "http."+route)))

		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		span.SetAttributes(
			semconv.HTTPResponseStatusCode(rec.status),
			attribute.Int64("http.response.body.size", rec.bytes),
		)

		if rec.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(rec.status))
		}
	})
}
