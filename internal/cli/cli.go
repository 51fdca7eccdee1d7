package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"

	"github.com/vk/trainconf/internal/app"
)

// ExitError is a usage-level failure that carries a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// settings is one layer of invocation settings. Layers merge with earlier
// layers winning: explicit flags, then environment, then built-in defaults.
type settings struct {
	Defaults  string `env:"TRAINCONF_DEFAULTS"`
	Config    string `env:"TRAINCONF_CONFIG"`
	LogFormat string `env:"TRAINCONF_LOG_FORMAT"`
	LogLevel  string `env:"TRAINCONF_LOG_LEVEL"`
}

func baseSettings() settings {
	return settings{
		Defaults:  "conf/defaults.yaml",
		LogFormat: "text",
		LogLevel:  "info",
	}
}

// Parse processes command-line arguments. It returns a populated app
// config, a boolean indicating the program should exit cleanly (help), or
// an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("trainconf", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
trainconf - layered configuration resolution for a geospatial training harness.

Usage:
  trainconf [options] [path.to.field=value ...]

Arguments:
  path.to.field=value
    Dotted overrides applied after the defaults and the override document.

Options:
`)
		flagSet.PrintDefaults()
	}

	defaultsFlag := flagSet.String("defaults", "", "Path to the defaults document (default \"conf/defaults.yaml\").")
	configFlag := flagSet.String("config", "", "Path to an override document.")
	cFlag := flagSet.String("c", "", "Path to an override document (shorthand).")
	printFlag := flagSet.Bool("print", false, "Print the resolved configuration as YAML.")
	logFormatFlag := flagSet.String("log-format", "", "Log output format. Options: 'text' or 'json' (default \"text\").")
	logLevelFlag := flagSet.String("log-level", "", "Logging level. Options: 'debug', 'info', 'warn', 'error' (default \"info\").")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	flagLayer := settings{
		Defaults:  *defaultsFlag,
		LogFormat: *logFormatFlag,
		LogLevel:  *logLevelFlag,
	}
	if *configFlag != "" {
		flagLayer.Config = *configFlag
	} else {
		flagLayer.Config = *cFlag
	}

	var envLayer settings
	if err := env.Parse(&envLayer); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	merged := flagLayer
	for _, layer := range []settings{envLayer, baseSettings()} {
		if err := mergo.Merge(&merged, layer); err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
	}

	merged.LogFormat = strings.ToLower(merged.LogFormat)
	if merged.LogFormat != "text" && merged.LogFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	merged.LogLevel = strings.ToLower(merged.LogLevel)
	switch merged.LogLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	overrides := flagSet.Args()
	for _, override := range overrides {
		if !strings.Contains(override, "=") {
			return nil, false, &ExitError{
				Code:    2,
				Message: fmt.Sprintf("invalid argument %q: expected path.to.field=value", override),
			}
		}
	}

	config, err := app.NewConfig(app.Config{
		DefaultsPath: merged.Defaults,
		ConfigPath:   merged.Config,
		Overrides:    overrides,
		Print:        *printFlag,
		LogFormat:    merged.LogFormat,
		LogLevel:     merged.LogLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, false, nil
}
