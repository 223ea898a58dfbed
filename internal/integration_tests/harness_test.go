package integration_tests

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/flowgrid/internal/app"
	"github.com/vk/flowgrid/internal/hcl"
	"github.com/vk/flowgrid/internal/testutil"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
}

// runIntegrationTest writes files below a temporary graph directory, builds
// the app on it with the core modules and runs it. cfg.GraphPath is
// overwritten.
func runIntegrationTest(t *testing.T, files map[string]string, cfg app.Config) *HarnessResult {
	t.Helper()

	graphDir := filepath.Join(t.TempDir(), "graph")
	for name, content := range files {
		filePath := filepath.Join(graphDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}

	cfg.GraphPath = graphDir
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"
	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	logBuffer := &testutil.SafeBuffer{}
	t.Cleanup(func() {
		if os.Getenv("FLOWGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			panicErr = recover()
		}()
		testApp = app.NewApp(logBuffer, appConfig, hcl.NewLoader())
	}()
	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	runErr := testApp.Run(context.Background())
	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
	}
}
