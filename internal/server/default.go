package server

import (
	"encoding/json"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/taskpool/pkg/application"
	"github.com/iota-uz/taskpool/pkg/configuration"
	"github.com/iota-uz/taskpool/pkg/constants"
	"github.com/iota-uz/taskpool/pkg/middleware"
	"github.com/iota-uz/taskpool/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	Pool          *pgxpool.Pool
}

func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application

	app.RegisterMiddleware(
		middleware.WithLogger(options.Logger),
		middleware.Provide(constants.AppKey, app),
		middleware.Provide(constants.PoolKey, options.Pool),
		middleware.RequestParams(),
	)

	return server.NewHTTPServer(
		app,
		jsonError(http.StatusNotFound, "not found"),
		jsonError(http.StatusMethodNotAllowed, "method not allowed"),
	), nil
}

func jsonError(status int, message string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
	})
}
