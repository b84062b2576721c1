package app

import (
	"github.com/specialistvlad/trainctl/internal/registry"
	"github.com/specialistvlad/trainctl/modules/linreg"
	"github.com/specialistvlad/trainctl/modules/synthetic"
	"github.com/specialistvlad/trainctl/modules/trainer"
)

// coreModules is the definitive list of all modules that are compiled into
// the trainctl binary.
var coreModules = []registry.Module{
	&trainer.Module{},
	&linreg.Module{},
	&synthetic.Module{},
}
