// Package experiment decodes the resolved configuration into the typed
// option structs handed to the external collaborators: the trainer engine,
// the task module and the data module. This is the keyword-argument boundary
// of the system; nothing here runs training.
package experiment

import (
	"fmt"

	"github.com/vk/trainconf/internal/resolved"
)

// ProgramOptions are the harness-level settings under "program".
type ProgramOptions struct {
	Seed      int    `cty:"seed"`
	OutputDir string `cty:"output_dir"`
	DataDir   string `cty:"data_dir"`
	LogDir    string `cty:"log_dir"`
	Overwrite bool   `cty:"overwrite"`
}

// TrainerOptions are the settings under "trainer", passed to the trainer
// engine's constructor. Extra keys in the section are dropped, mirroring
// keyword-argument hand-off to a constructor with defaults.
type TrainerOptions struct {
	Accelerator    string `cty:"accelerator"`
	Devices        int    `cty:"devices"`
	MinEpochs      int    `cty:"min_epochs"`
	MaxEpochs      int    `cty:"max_epochs"`
	Benchmark      bool   `cty:"benchmark"`
	DefaultRootDir string `cty:"default_root_dir"`
}

// TaskOptions name the learning task and carry its constructor arguments
// from "experiment.module".
type TaskOptions struct {
	Name   string
	Kwargs map[string]any
}

// DataModuleOptions carry the data module constructor arguments from
// "experiment.datamodule".
type DataModuleOptions struct {
	Kwargs map[string]any
}

// Options is the complete bundle produced by the configuration pipeline.
type Options struct {
	// RunID uniquely identifies this invocation; it is stamped on logs and
	// available to collaborators for artifact naming.
	RunID string
	// Name is the experiment name from "experiment.name".
	Name string

	Program    ProgramOptions
	Trainer    TrainerOptions
	Task       TaskOptions
	DataModule DataModuleOptions
}

// FromResolved explodes a resolved configuration into collaborator options.
// The configuration must already have passed required-field validation.
func FromResolved(cfg *resolved.Config, runID string) (*Options, error) {
	opts := &Options{RunID: runID}

	name, err := cfg.String("experiment.name")
	if err != nil {
		return nil, fmt.Errorf("experiment options: %w", err)
	}
	opts.Name = name

	task, err := cfg.String("experiment.task")
	if err != nil {
		return nil, fmt.Errorf("experiment options: %w", err)
	}
	opts.Task.Name = task

	if err := cfg.Decode("program", &opts.Program); err != nil {
		return nil, fmt.Errorf("program options: %w", err)
	}
	if err := cfg.Decode("trainer", &opts.Trainer); err != nil {
		return nil, fmt.Errorf("trainer options: %w", err)
	}
	opts.Task.Kwargs = kwargs(cfg, "experiment.module")
	opts.DataModule.Kwargs = kwargs(cfg, "experiment.datamodule")

	return opts, nil
}

// kwargs flattens a configuration section into a native map, ready to hand
// to a constructor that takes free-form arguments. A missing section yields
// an empty map: every datamodule takes at least zero arguments.
func kwargs(cfg *resolved.Config, path string) map[string]any {
	sub, ok := cfg.Sub(path)
	if !ok {
		return map[string]any{}
	}
	native, ok := sub.ToNative().(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return native
}
