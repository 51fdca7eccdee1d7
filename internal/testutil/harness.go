package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/trainconf/internal/app"
	"github.com/vk/trainconf/internal/experiment"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of a pipeline test run. LogOutput is
// everything the app wrote: logs, plus the printed YAML when Print is set.
type HarnessResult struct {
	LogOutput string
	Options   *experiment.Options
	Err       error
	App       *app.App
}

// RunPipeline writes the given documents to a temporary directory and runs
// the full configuration pipeline against "defaults.yaml", applying any
// dotted overrides. The files map must contain a "defaults.yaml" entry.
func RunPipeline(t *testing.T, files map[string]string, overrides ...string) *HarnessResult {
	t.Helper()
	return RunPipelineConfig(t, files, app.Config{Overrides: overrides})
}

// RunPipelineConfig is RunPipeline with full control over the invocation
// settings. Relative document paths in cfg are resolved against the
// temporary directory holding the test files.
func RunPipelineConfig(t *testing.T, files map[string]string, cfg app.Config) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	if cfg.DefaultsPath == "" {
		cfg.DefaultsPath = "defaults.yaml"
	}
	if !filepath.IsAbs(cfg.DefaultsPath) {
		cfg.DefaultsPath = filepath.Join(tmpDir, cfg.DefaultsPath)
	}
	if cfg.ConfigPath != "" && !filepath.IsAbs(cfg.ConfigPath) {
		cfg.ConfigPath = filepath.Join(tmpDir, cfg.ConfigPath)
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}

	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}

	testApp := app.New(logBuffer, appConfig)
	opts, runErr := testApp.Run(context.Background())

	if os.Getenv("TRAINCONF_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Options:   opts,
		Err:       runErr,
		App:       testApp,
	}
}
