package app

import (
	"context"
	"fmt"

	"github.com/vk/statetree/internal/hcl"
	"github.com/vk/statetree/internal/watcher"
)

// Watch reloads the definitions whenever a definition file changes, until
// ctx is done. A failed reload is logged and the previous tree stays active.
// onReload, if not nil, is called after every attempt.
func (a *App) Watch(ctx context.Context, onReload func(ReloadResult, error)) error {
	ctx = a.withLogger(ctx)
	if _, _, err := a.loaded(); err != nil {
		return err
	}

	w, err := watcher.New(ctx, a.config.Debounce, []string{hcl.FileExtension}, a.config.DefinitionPath)
	if err != nil {
		return fmt.Errorf("failed to watch definitions: %w", err)
	}
	defer w.Close()

	a.logger.Info("Watching definitions for changes.", "path", a.config.DefinitionPath)
	return w.Run(ctx, func(ctx context.Context, changed []string) {
		res, err := a.Reload(ctx)
		if err != nil {
			a.logger.Error("Reload failed, keeping previous definitions.", "files", changed, "error", err)
		} else {
			a.logger.Info("Reloaded definitions.", "files", changed, "mode", res.String())
		}
		if onReload != nil {
			onReload(res, err)
		}
	})
}
