package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/oldtimer/internal/ctxlog"
	"github.com/ccollicutt/oldtimer/pkg/analyzer"
	"github.com/ccollicutt/oldtimer/pkg/config"
	"github.com/ccollicutt/oldtimer/pkg/registry"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// GlobalOptions holds the persistent flags shared by all commands.
type GlobalOptions struct {
	ConfigPath string
	LogLevel   string
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func loadConfig(ctx context.Context, g *GlobalOptions) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(ctx, g.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func newParser(ctx context.Context, cfg *config.Config) (*analyzer.Parser, error) {
	p, err := analyzer.NewParser(cfg, analyzer.WithLogger(ctxlog.FromContext(ctx)))
	if err != nil {
		return nil, fmt.Errorf("creating parser: %w", err)
	}
	return p, nil
}

// loadLog parses a single log with the configured parser.
func loadLog(ctx context.Context, g *GlobalOptions, path string) (*analyzer.LogModel, error) {
	cfg, err := loadConfig(ctx, g)
	if err != nil {
		return nil, err
	}
	p, err := newParser(ctx, cfg)
	if err != nil {
		return nil, err
	}

	model, err := p.ParseFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return model, nil
}

// register adds every model to reg under its base file name, disambiguating
// collisions as name#2, name#3, ... The returned names follow the model
// order.
func register(reg *registry.Registry, models []*analyzer.LogModel) ([]string, error) {
	names := make([]string, 0, len(models))
	for _, m := range models {
		name := reg.UniqueName(filepath.Base(m.Name))
		if err := reg.Create(name, m); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}
