package app

import (
	"github.com/vk/flowgrid/internal/registry"
	"github.com/vk/flowgrid/modules/basic"
	"github.com/vk/flowgrid/modules/events"
	"github.com/vk/flowgrid/modules/math"
)

// coreModules is the definitive list of node type modules compiled into
// the flowgrid binary.
var coreModules = []registry.Module{
	&basic.Module{},
	&math.Module{},
	&events.Module{},
}
