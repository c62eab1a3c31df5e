// Package main is the entry point for the nftgen marker generator.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/nftgen/cmd/nftgen/commands"
	"go.trai.ch/nftgen/internal/adapters/config"
	"go.trai.ch/nftgen/internal/app"
	"go.trai.ch/nftgen/internal/core/domain"
	_ "go.trai.ch/nftgen/internal/wiring"
)

// ComponentProvider builds the application components from the settings file
// at configPath, or from the working directory when configPath is empty.
type ComponentProvider func(ctx context.Context, configPath string) (*app.Components, func(), error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, provideComponents))
}

func provideComponents(ctx context.Context, configPath string) (*app.Components, func(), error) {
	// Nodes built for one settings file must not leak into the next build.
	opts := []graft.Option{graft.DisableCache()}
	if configPath != "" {
		settings, err := config.Load(configPath)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, graft.PatchValue[*config.Settings](settings))
	}

	c, _, err := graft.ExecuteFor[*app.Components](ctx, opts...)
	if err != nil {
		return nil, nil, err
	}
	return c, func() { _ = c.Close() }, nil
}

func run(
	ctx context.Context,
	args []string,
	stdout, stderr io.Writer,
	provider ComponentProvider,
) int {
	// 0. Context with signal handling
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Initialize application components
	components, cleanup, err := provider(ctx, commands.ConfigPath(args))
	if err != nil {
		// Logger is not available yet if initialization failed
		// Write directly to stderr passed in
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return 1
	}
	defer cleanup()

	// 2. Interface - CLI
	cli := commands.New(components.App)
	cli.SetArgs(args)
	cli.SetOutput(stdout, stderr)

	// 3. Execution
	if err := cli.Execute(ctx); err != nil {
		if errors.Is(err, domain.ErrGenerationFailed) {
			return 1
		}
		components.Logger.Error(err)
		return 1
	}
	return 0
}
