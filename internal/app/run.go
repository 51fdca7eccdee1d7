package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/trainconf/internal/ctxlog"
	"github.com/vk/trainconf/internal/experiment"
	"github.com/vk/trainconf/internal/loader"
	"github.com/vk/trainconf/internal/merge"
	"github.com/vk/trainconf/internal/node"
	"github.com/vk/trainconf/internal/resolve"
	"github.com/vk/trainconf/internal/resolved"
	"github.com/vk/trainconf/internal/validate"
)

// Run executes the configuration pipeline and returns the collaborator
// options. Any error is fatal to startup; the App ends in StateFailed and
// the caller is expected to exit.
func (a *App) Run(ctx context.Context) (*experiment.Options, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("Configuration pipeline started.", "defaults", a.config.DefaultsPath)

	merged, err := a.loadAndMerge(ctx)
	if err != nil {
		return nil, a.fail(err)
	}
	a.state = StateMerged

	a.state = StateResolving
	tree, err := resolve.Resolve(ctx, merged)
	if err != nil {
		return nil, a.fail(fmt.Errorf("failed to resolve configuration: %w", err))
	}

	if err := validate.Check(tree); err != nil {
		return nil, a.fail(err)
	}
	a.logger.Debug("Required-field validation passed.")

	cfg, err := resolved.New(tree)
	if err != nil {
		return nil, a.fail(err)
	}

	if a.config.Print {
		out, err := cfg.YAML()
		if err != nil {
			return nil, a.fail(fmt.Errorf("failed to render configuration: %w", err))
		}
		if _, err := a.outW.Write(out); err != nil {
			return nil, a.fail(err)
		}
	}

	opts, err := experiment.FromResolved(cfg, a.runID)
	if err != nil {
		return nil, a.fail(err)
	}
	a.state = StateResolved

	a.logger.Info("Configuration resolved.",
		"experiment", opts.Name,
		"task", opts.Task.Name,
		"output_dir", opts.Program.OutputDir,
	)
	return opts, nil
}

// loadAndMerge builds the merged tree from the three layers: defaults,
// override document, command-line overrides.
func (a *App) loadAndMerge(ctx context.Context) (*node.Node, error) {
	logger := ctxlog.FromContext(ctx)

	defaults, err := loader.Load(a.config.DefaultsPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("Defaults document loaded.")

	merged := defaults
	if overridePath, ok := a.overridePath(defaults); ok {
		override, err := loader.Load(overridePath)
		if err != nil {
			return nil, err
		}
		merged, err = merge.Merge(merged, override)
		if err != nil {
			return nil, fmt.Errorf("failed to merge override document %s: %w", overridePath, err)
		}
		logger.Debug("Override document merged.", "path", overridePath)
	}

	if len(a.config.Overrides) > 0 {
		dotted, err := loader.FromDotted(a.config.Overrides)
		if err != nil {
			return nil, err
		}
		merged, err = merge.Merge(merged, dotted)
		if err != nil {
			return nil, fmt.Errorf("failed to apply command-line overrides: %w", err)
		}
		logger.Debug("Command-line overrides merged.", "count", len(a.config.Overrides))
	}

	return merged, nil
}

// overridePath picks the override document: the --config flag wins over the
// defaults document's own config_file field. A config_file path is taken
// relative to the defaults document's directory.
func (a *App) overridePath(defaults *node.Node) (string, bool) {
	fromDocument := configFileField(defaults)

	if a.config.ConfigPath != "" {
		if fromDocument != "" {
			a.logger.Debug("Both --config and config_file are set; the flag wins.",
				"flag", a.config.ConfigPath, "config_file", fromDocument)
		}
		return a.config.ConfigPath, true
	}
	if fromDocument == "" {
		return "", false
	}
	if filepath.IsAbs(fromDocument) {
		return fromDocument, true
	}
	return filepath.Join(filepath.Dir(a.config.DefaultsPath), fromDocument), true
}

func configFileField(defaults *node.Node) string {
	n, ok := defaults.Lookup(node.Path{"config_file"})
	if !ok || n.Kind != node.KindScalar || n.Value.IsNull() || n.Value.Type() != cty.String {
		return ""
	}
	return n.Value.AsString()
}

func (a *App) fail(err error) error {
	a.state = StateFailed
	a.logger.Error("Configuration pipeline failed.", "error", err)
	return err
}
