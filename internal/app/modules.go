package app

import (
	"github.com/specialistvlad/sweepgrid/internal/registry"
	"github.com/specialistvlad/sweepgrid/modules/multihost"
	"github.com/specialistvlad/sweepgrid/modules/print"
	"github.com/specialistvlad/sweepgrid/modules/s3"
	"github.com/specialistvlad/sweepgrid/modules/socketio"
)

// coreModules is the definitive list of all modules that are compiled into
// the sweepgrid binary.
var coreModules = []registry.Module{
	&multihost.Module{},
	&print.Module{},
	&socketio.Module{},
	&s3.Module{},
}
