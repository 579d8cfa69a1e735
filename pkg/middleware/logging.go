package middleware

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/iota-uz/taskpool/pkg/configuration"
	"github.com/iota-uz/taskpool/pkg/constants"
)

var tracer = otel.Tracer("taskpool-middleware")

type responseCaptureWriter struct {
	http.ResponseWriter
	statusCode    int
	statusWritten bool
}

func (w *responseCaptureWriter) WriteHeader(code int) {
	if !w.statusWritten {
		w.statusCode = code
		w.statusWritten = true
		w.ResponseWriter.WriteHeader(code)
	}
}

func (w *responseCaptureWriter) Status() int {
	if w.statusCode == 0 {
		return http.StatusOK
	}
	return w.statusCode
}

func getRealIP(r *http.Request, conf *configuration.Configuration) string {
	if len(r.Header.Get(conf.RealIPHeader)) > 0 {
		return r.Header.Get(conf.RealIPHeader)
	}
	return r.RemoteAddr
}

func getRequestID(r *http.Request, conf *configuration.Configuration) string {
	if len(r.Header.Get(conf.RequestIDHeader)) > 0 {
		return r.Header.Get(conf.RequestIDHeader)
	}
	return uuid.New().String()
}

// WithLogger attaches a request-scoped logrus entry and an otel span to every
// request, recovers panics and logs start/completion with timing.
func WithLogger(logger *logrus.Logger) mux.MiddlewareFunc {
	conf := configuration.Use()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := getRequestID(r, conf)

			fieldsLogger := logger.WithFields(logrus.Fields{
				"request-id": requestID,
				"path":       r.RequestURI,
				"method":     r.Method,
			})

			fieldsLogger.WithFields(logrus.Fields{
				"host":       r.Host,
				"ip":         getRealIP(r, conf),
				"user-agent": r.UserAgent(),
			}).Info("request started")

			propagator := propagation.TraceContext{}
			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			ctx, span := tracer.Start(
				ctx,
				"http.request",
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.route", r.URL.Path),
					attribute.String("http.request_id", requestID),
					attribute.String("net.peer.ip", getRealIP(r, conf)),
				),
			)
			defer span.End()

			ctx = context.WithValue(ctx, constants.LoggerKey, fieldsLogger)
			ctx = context.WithValue(ctx, constants.RequestStart, start)
			propagator.Inject(ctx, propagation.HeaderCarrier(w.Header()))

			w.Header().Set("X-Request-Id", requestID)
			wrappedWriter := &responseCaptureWriter{ResponseWriter: w}

			defer func() {
				if recovered := recover(); recovered != nil {
					fieldsLogger.WithFields(logrus.Fields{
						"panic":    recovered,
						"stack":    string(debug.Stack()),
						"duration": time.Since(start),
					}).Error("panic recovered in request handler")

					if !wrappedWriter.statusWritten {
						http.Error(wrappedWriter, "Internal Server Error", http.StatusInternalServerError)
					}
				}
			}()

			next.ServeHTTP(wrappedWriter, r.WithContext(ctx))

			statusCode := wrappedWriter.Status()
			duration := time.Since(start)
			fieldsLogger.WithFields(logrus.Fields{
				"duration":     duration,
				"status-code":  statusCode,
				"status-class": statusCode / 100,
			}).Info("request completed")

			span.SetAttributes(
				attribute.Int64("http.request_duration_ms", duration.Milliseconds()),
				attribute.Int("http.status_code", statusCode),
			)
		})
	}
}
