package modules

import (
	"github.com/iota-uz/taskpool/modules/crowd"
	"github.com/iota-uz/taskpool/pkg/application"
)

var BuiltInModules = []application.Module{
	crowd.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range append(BuiltInModules, externalModules...) {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
