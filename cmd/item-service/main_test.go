package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/item-service/internal/config"
	"github.com/Sternrassler/item-service/pkg/item"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func execute(t *testing.T, vars map[string]string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd("test", &stdout, &stderr, env(vars))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestProcessCommand_Seeded(t *testing.T) {
	stdout, _, err := execute(t, map[string]string{"ITEMS_DELAY": "1ms"},
		"process", "--seed", "5", "--workers", "2")
	require.NoError(t, err)

	var out processOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))

	assert.NotEmpty(t, out.RunID)
	assert.Equal(t, 5, out.Total)
	assert.Equal(t, 5, out.Succeeded)
	require.Len(t, out.Items, 5)
	for i, it := range out.Items {
		assert.Equal(t, int64(i+1), it.ID)
		assert.Equal(t, item.StatusProcessed, it.Status)
	}
}

func TestProcessCommand_EmptyStore(t *testing.T) {
	stdout, _, err := execute(t, map[string]string{"ITEMS_DELAY": "0s"}, "process")
	require.NoError(t, err)

	var out processOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, 0, out.Total)
	assert.NotNil(t, out.Items)
	assert.Empty(t, out.Items)
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		args []string
	}{
		{name: "zero workers flag", args: []string{"process", "--workers", "0"}},
		{name: "unknown store flag", args: []string{"process", "--store", "etcd"}},
		{name: "bad env delay", vars: map[string]string{"ITEMS_DELAY": "soon"}, args: []string{"process"}},
		{name: "missing config file", args: []string{"process", "--config", "/nonexistent/items.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.vars, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	var stdout, stderr bytes.Buffer
	a := &app{stdout: &stdout, stderr: &stderr}
	cmd := a.rootCmd("test", env(map[string]string{
		"ITEMS_WORKERS":   "3",
		"ITEMS_LOG_LEVEL": "debug",
	}))
	cmd.AddCommand(&cobra.Command{
		Use:  "probe",
		RunE: func(*cobra.Command, []string) error { return nil },
	})
	cmd.SetArgs([]string{"probe", "--workers", "7"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, 7, a.cfg.Pool.Workers)
	assert.Equal(t, "debug", a.cfg.Log.Level)
}

func TestServe_GracefulShutdown(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = 2 * time.Second

	var stdout, stderr bytes.Buffer
	a := &app{cfg: cfg, logger: zerolog.Nop(), stdout: &stdout, stderr: &stderr}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}
}
