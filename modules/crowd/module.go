package crowd

import (
	"embed"

	"github.com/iota-uz/taskpool/modules/crowd/handlers"
	"github.com/iota-uz/taskpool/modules/crowd/infrastructure/persistence"
	"github.com/iota-uz/taskpool/modules/crowd/presentation/controllers"
	"github.com/iota-uz/taskpool/modules/crowd/services"
	"github.com/iota-uz/taskpool/pkg/application"
)

//go:embed infrastructure/persistence/schema/crowd-schema.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&migrationFiles)

	templateRepo := persistence.NewCrowdTemplateRepository()
	batchRepo := persistence.NewCrowdBatchRepository()

	app.RegisterServices(
		services.NewTemplateService(templateRepo, app.EventPublisher()),
		services.NewBatchService(batchRepo, templateRepo, app.EventPublisher()),
	)
	app.RegisterControllers(
		controllers.NewTemplatesAPIController(app),
		controllers.NewBatchesAPIController(app),
	)
	handlers.RegisterBatchEventHandlers(app)
	return nil
}

func (m *Module) Name() string {
	return "crowd"
}
