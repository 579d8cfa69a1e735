package application

import (
	"reflect"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/taskpool/pkg/eventbus"
)

// Controller is a self-registering group of HTTP routes.
type Controller interface {
	Key() string
	Register(r *mux.Router)
}

// Module bundles services, controllers and schema of one bounded context.
type Module interface {
	Name() string
	Register(app Application) error
}

type Application interface {
	Pool() *pgxpool.Pool
	Logger() *logrus.Logger
	EventPublisher() eventbus.EventBus
	Migrations() MigrationManager

	RegisterServices(services ...interface{})
	Service(service interface{}) interface{}

	RegisterControllers(controllers ...Controller)
	Controllers() []Controller

	RegisterMiddleware(middleware ...mux.MiddlewareFunc)
	Middleware() []mux.MiddlewareFunc
}

type ApplicationOptions struct {
	Pool     *pgxpool.Pool
	EventBus eventbus.EventBus
	Logger   *logrus.Logger
}

func New(opts *ApplicationOptions) Application {
	return &application{
		pool:           opts.Pool,
		eventPublisher: opts.EventBus,
		logger:         opts.Logger,
		controllers:    make(map[string]Controller),
		services:       make(map[reflect.Type]interface{}),
		migrations:     NewMigrationManager(opts.Pool),
	}
}

// application with a dynamically extendable service registry
type application struct {
	pool           *pgxpool.Pool
	eventPublisher eventbus.EventBus
	logger         *logrus.Logger
	services       map[reflect.Type]interface{}
	controllers    map[string]Controller
	controllerKeys []string
	middleware     []mux.MiddlewareFunc
	migrations     MigrationManager
}

func (a *application) Pool() *pgxpool.Pool {
	return a.pool
}

func (a *application) Logger() *logrus.Logger {
	return a.logger
}

func (a *application) EventPublisher() eventbus.EventBus {
	return a.eventPublisher
}

func (a *application) Migrations() MigrationManager {
	return a.migrations
}

func (a *application) RegisterServices(services ...interface{}) {
	for _, service := range services {
		serviceType := reflect.TypeOf(service).Elem()
		a.services[serviceType] = service
	}
}

// Service looks a registered service up by the type of the given value.
func (a *application) Service(service interface{}) interface{} {
	serviceType := reflect.TypeOf(service)
	if serviceType.Kind() == reflect.Ptr {
		serviceType = serviceType.Elem()
	}
	svc, ok := a.services[serviceType]
	if !ok {
		panic("service not found: " + serviceType.String())
	}
	return svc
}

func (a *application) RegisterControllers(controllers ...Controller) {
	for _, controller := range controllers {
		key := controller.Key()
		if _, exists := a.controllers[key]; !exists {
			a.controllerKeys = append(a.controllerKeys, key)
		}
		a.controllers[key] = controller
	}
}

func (a *application) Controllers() []Controller {
	out := make([]Controller, 0, len(a.controllerKeys))
	for _, key := range a.controllerKeys {
		out = append(out, a.controllers[key])
	}
	return out
}

func (a *application) RegisterMiddleware(middleware ...mux.MiddlewareFunc) {
	a.middleware = append(a.middleware, middleware...)
}

func (a *application) Middleware() []mux.MiddlewareFunc {
	return a.middleware
}
