package app

import (
	"github.com/specialistvlad/bindforge/internal/registry"
	"github.com/specialistvlad/bindforge/modules/download"
	"github.com/specialistvlad/bindforge/modules/exec"
	"github.com/specialistvlad/bindforge/modules/extract"
	"github.com/specialistvlad/bindforge/modules/install_script"
	"github.com/specialistvlad/bindforge/modules/print"
)

// coreModules is the definitive list of all action kinds that are compiled
// into the bindforge binary.
var coreModules = []registry.Module{
	&download.Module{},
	&extract.Module{},
	&exec.Module{},
	&install_script.Module{},
	&print.Module{},
}
