package app

import (
	"github.com/vk/statetree/internal/registry"
	"github.com/vk/statetree/modules/counter"
	"github.com/vk/statetree/modules/env_vars"
	"github.com/vk/statetree/modules/print"
	"github.com/vk/statetree/modules/todo"
)

// coreModules is the definitive list of all handler modules that are
// compiled into the statetree binary.
var coreModules = []registry.Module{
	&counter.Module{},
	&env_vars.Module{},
	&print.Module{},
	&todo.Module{},
}
