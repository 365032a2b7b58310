package modules

import (
	"github.com/planora-hq/planora/modules/core"
	"github.com/planora-hq/planora/modules/planning"
	"github.com/planora-hq/planora/pkg/application"
)

var BuiltInModules = []application.Module{
	core.NewModule(),
	planning.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	return application.Load(app, append(BuiltInModules, externalModules...)...)
}
