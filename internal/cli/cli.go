package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/vk/statetree/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// Execute runs the command line given by args. Command output goes to outW;
// logs, help for errors and diagnostics go to errW.
func Execute(ctx context.Context, outW, errW io.Writer, args []string) error {
	cmd := NewRootCmd(outW, errW)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	logLevel  string
	logFormat string
	lua       []string
}

// env holds everything a subcommand needs to build an App.
type env struct {
	outW, errW io.Writer
	flags      *globalFlags
}

// config reads the environment, lets flags that were set on the command line
// override it and validates the result. Validation failures are usage errors.
func (e *env) config(cmd *cobra.Command, args []string, override func(*app.Config)) (*app.Config, error) {
	cfg, err := app.ConfigFromEnv()
	if err != nil {
		return nil, usageError(err)
	}
	if len(args) > 0 {
		cfg.DefinitionPath = args[0]
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = e.flags.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = e.flags.logFormat
	}
	if flags.Changed("lua") {
		cfg.LuaScripts = e.flags.lua
	}
	if override != nil {
		override(&cfg)
	}

	appConfig, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError(err)
	}
	slog.Debug("CLI configuration resolved.", "config", appConfig)
	return appConfig, nil
}

// loadApp builds the App for cmd and loads its definitions. The caller must
// Close the returned App.
func (e *env) loadApp(cmd *cobra.Command, args []string, override func(*app.Config)) (*app.App, error) {
	cfg, err := e.config(cmd, args, override)
	if err != nil {
		return nil, err
	}

	a, err := app.NewApp(cmd.Context(), e.outW, e.errW, cfg)
	if err != nil {
		return nil, err
	}
	if err := a.Load(cmd.Context()); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// pathArg accepts at most one definition path.
func pathArg(cmd *cobra.Command, args []string) error {
	if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
		return usageError(err)
	}
	return nil
}

// AsExitError returns err as an ExitError, defaulting to code 1.
func AsExitError(err error) *ExitError {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	return &ExitError{Code: 1, Message: fmt.Sprint(err)}
}
