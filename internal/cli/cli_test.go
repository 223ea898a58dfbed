package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/flowgrid/internal/app"
)

func TestParse_Config(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want app.Config
	}{
		{
			name: "positional path with defaults",
			args: []string{"graph.hcl"},
			want: app.Config{
				GraphPath: "graph.hcl", LogFormat: "text", LogLevel: "info",
				Interval: time.Millisecond, MetricsExporter: "none", TraceExporter: "none", RelayNamespace: "/",
			},
		},
		{
			name: "every flag",
			args: []string{
				"--graph", "dir", "--log-format", "JSON", "--log-level", "DEBUG", "--healthcheck-port", "8080",
				"--steps", "10", "--interval", "5ms", "--duration", "2s", "--unsafe",
				"--metrics", "prometheus", "--traces", "stdout",
				"--relay-url", "http://localhost:3000/socket.io/", "--relay-namespace", "/graph", "--dump",
			},
			want: app.Config{
				GraphPath: "dir", LogFormat: "json", LogLevel: "debug", HealthcheckPort: 8080,
				Steps: 10, Interval: 5 * time.Millisecond, Duration: 2 * time.Second, Unsafe: true,
				MetricsExporter: "prometheus", TraceExporter: "stdout",
				RelayURL: "http://localhost:3000/socket.io/", RelayNamespace: "/graph", Dump: true,
			},
		},
		{
			name: "graph flag wins over shorthand and positional",
			args: []string{"-graph", "a", "-g", "b", "c"},
			want: app.Config{
				GraphPath: "a", LogFormat: "text", LogLevel: "info",
				Interval: time.Millisecond, MetricsExporter: "none", TraceExporter: "none", RelayNamespace: "/",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, exit, err := Parse(tc.args, &bytes.Buffer{})

			require.NoError(t, err)
			assert.False(t, exit)
			if diff := cmp.Diff(tc.want, *cfg); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{"unknown flag", []string{"--nope"}, "flag provided but not defined"},
		{"log format", []string{"--log-format", "xml", "g.hcl"}, "invalid log-format"},
		{"log level", []string{"--log-level", "trace", "g.hcl"}, "invalid log-level"},
		{"unsafe without steps", []string{"--unsafe", "g.hcl"}, "--unsafe requires --steps"},
		{"negative steps", []string{"--steps", "-1", "g.hcl"}, "steps must not be negative"},
		{"metrics exporter", []string{"--metrics", "statsd", "g.hcl"}, "unknown metrics exporter"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, exit, err := Parse(tc.args, &bytes.Buffer{})

			assert.Nil(t, cfg)
			assert.False(t, exit)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, ExitUsage, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}

func TestParse_HelpAndNoPath(t *testing.T) {
	for _, args := range [][]string{{"-h"}, {}} {
		out := &bytes.Buffer{}
		cfg, exit, err := Parse(args, out)

		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	}
}
