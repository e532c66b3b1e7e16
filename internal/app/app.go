package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/vk/statetree/internal/collection"
	"github.com/vk/statetree/internal/ctxlog"
	"github.com/vk/statetree/internal/hcl"
	"github.com/vk/statetree/internal/luascript"
	"github.com/vk/statetree/internal/registry"
)

// ErrNotLoaded is returned by operations that need definitions loaded first.
var ErrNotLoaded = errors.New("definitions are not loaded")

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	loader   *hcl.Loader
	scripts  []*luascript.Script

	mu         sync.RWMutex
	collection *collection.Collection
	definition *hcl.Definition
}

// NewApp is the constructor for the main application. Command output goes to
// outW and logs to logW. Lua scripts named in the config are compiled and
// registered after the Go modules; when no modules are given the built-in
// ones are used.
func NewApp(ctx context.Context, outW, logW io.Writer, cfg *Config, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules
	}

	scripts, err := luascript.LoadAll(ctx, cfg.LuaScripts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load lua scripts: %w", err)
	}

	reg, err := newRegistry(modules, scripts)
	if err != nil {
		for _, s := range scripts {
			s.Close()
		}
		return nil, err
	}
	getters, mutations, actions, factories := reg.Counts()
	logger.Debug("All handler modules registered.",
		"modules", len(modules), "scripts", len(scripts),
		"getters", getters, "mutations", mutations, "actions", actions, "factories", factories)

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		loader:   hcl.NewLoader(reg),
		scripts:  scripts,
	}, nil
}

// newRegistry installs every module. A duplicate handler name panics inside
// the registry; a Lua script clashing with a Go module is a user error, so
// the panic is turned into an error here.
func newRegistry(modules []registry.Module, scripts []*luascript.Script) (reg *registry.Registry, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to register handlers: %v", r)
		}
	}()

	reg = registry.New(modules...)
	for _, s := range scripts {
		reg.Install(s)
	}
	return reg, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Collection returns the loaded collection, or nil before Load.
func (a *App) Collection() *collection.Collection {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.collection
}

// Close releases the collection and the Lua interpreters.
func (a *App) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.collection != nil {
		a.collection.Close()
		a.collection = nil
	}
	for _, s := range a.scripts {
		s.Close()
	}
	a.scripts = nil
}

func (a *App) withLogger(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

func (a *App) loaded() (*collection.Collection, *hcl.Definition, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.collection == nil {
		return nil, nil, ErrNotLoaded
	}
	return a.collection, a.definition, nil
}
