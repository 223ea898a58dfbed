package app

import (
	"os"
	"testing"

	"github.com/vk/flowgrid/internal/hcl"
	"github.com/vk/flowgrid/internal/registry"
	"github.com/vk/flowgrid/internal/testutil"
)

// SetupAppTest creates a new app instance for system testing, loading
// cfg.GraphPath with the HCL loader and logging at debug level into the
// returned buffer.
func SetupAppTest(t *testing.T, cfg *Config, modules ...registry.Module) (*App, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"
	testApp := NewApp(logBuffer, cfg, hcl.NewLoader(), modules...)

	t.Cleanup(func() {
		if os.Getenv("FLOWGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
