package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/statetree/internal/collection"
	"github.com/vk/statetree/internal/hcl"
	"github.com/vk/statetree/internal/module"
)

// Load reads the configured definitions and builds a fresh collection,
// replacing any previous one.
func (a *App) Load(ctx context.Context) error {
	ctx = a.withLogger(ctx)

	raw, def, err := a.loader.Load(ctx, a.config.DefinitionPath)
	if err != nil {
		return fmt.Errorf("failed to load definitions: %w", err)
	}
	return a.install(ctx, raw, def)
}

// install builds a collection from raw and swaps it in.
func (a *App) install(ctx context.Context, raw *module.RawDefinition, def *hcl.Definition) error {
	c, err := collection.New(ctx, raw)
	if err != nil {
		return fmt.Errorf("failed to build collection: %w", err)
	}

	a.mu.Lock()
	old := a.collection
	a.collection, a.definition = c, def
	a.mu.Unlock()

	if old != nil {
		old.Close()
	}
	a.logger.Info("Definitions loaded.", "path", a.config.DefinitionPath, "runtime", c.ID())
	return nil
}

// ReloadResult tells how Reload applied new definitions.
type ReloadResult int

const (
	// Updated means the existing tree was updated in place and kept its
	// state.
	Updated ReloadResult = iota
	// Rebuilt means the tree was replaced and state started over.
	Rebuilt
)

func (r ReloadResult) String() string {
	if r == Rebuilt {
		return "rebuilt"
	}
	return "updated"
}

// Reload re-reads the definitions and hot-updates the collection. When the
// new definitions add a nested module the collection is rebuilt instead.
// On error the current collection is left as it was.
func (a *App) Reload(ctx context.Context) (ReloadResult, error) {
	ctx = a.withLogger(ctx)

	c, _, err := a.loaded()
	if err != nil {
		return Updated, err
	}

	raw, def, err := a.loader.Load(ctx, a.config.DefinitionPath)
	if err != nil {
		return Updated, fmt.Errorf("failed to load definitions: %w", err)
	}

	err = c.Update(ctx, raw)
	switch {
	case err == nil:
		a.mu.Lock()
		a.definition = def
		a.mu.Unlock()
		a.logger.Info("Definitions hot-updated.", "runtime", c.ID())
		return Updated, nil

	case errors.Is(err, collection.ErrReloadRequired):
		a.logger.Info("Hot update not possible, rebuilding.", "reason", err)
		if err := a.install(ctx, raw, def); err != nil {
			return Rebuilt, err
		}
		return Rebuilt, nil

	default:
		return Updated, fmt.Errorf("failed to update collection: %w", err)
	}
}
