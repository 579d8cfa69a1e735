package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/taskpool/pkg/composables"
	"github.com/iota-uz/taskpool/pkg/configuration"
	"github.com/iota-uz/taskpool/pkg/constants"
)

// Provide injects a static value into the request context under the given key.
func Provide(key constants.ContextKey, value interface{}) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), key, value)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestParams records the caller's IP and user agent in the context.
func RequestParams() mux.MiddlewareFunc {
	conf := configuration.Use()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			if v := r.Header.Get(conf.RealIPHeader); v != "" {
				ip = v
			}
			ctx := composables.WithParams(r.Context(), &composables.Params{
				IP:        ip,
				UserAgent: r.UserAgent(),
				Request:   r,
				Writer:    w,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
