package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Cleanup(viper.Reset)

	var out, errOut bytes.Buffer
	hostpoolCmd.SetOut(&out)
	hostpoolCmd.SetErr(&errOut)
	hostpoolCmd.SetArgs(args)

	err := hostpoolCmd.Execute()
	return out.String(), err
}

func TestAllocCommand(t *testing.T) {
	out, err := execute(t, "alloc", "--num-nodes", "3", "--linux", "2", "--output", "json", "--ssh-user", "alice")
	require.NoError(t, err)

	var views []slotView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 2)
	assert.Equal(t, "localhost1", views[1].Account)
	assert.Equal(t, "ssh alice@localhost -p 22 -o BatchMode=yes", views[1].Command)
}

func TestAllocCommandCapacityExceeded(t *testing.T) {
	_, err := execute(t, "alloc", "--num-nodes", "1", "--linux", "2", "--output", "text", "--ssh-user", "")
	assert.EqualError(t, err, "not enough slots available: requested 2, available 1")
}

func TestReplayCommand(t *testing.T) {
	script := path.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(script, []byte(`
num-nodes: 5
steps:
  - alloc: {linux: 3}
  - free: [1]
  - alloc: {linux: 10}
`), 0644))

	out, err := execute(t, "replay", script, "--output", "json")
	require.NoError(t, err)

	var results []StepResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 3)
	assert.Equal(t, "3", results[2].Available)
	assert.NotEmpty(t, results[2].Error)

	_, err = execute(t, "replay", script, "--output", "json", "--strict")
	assert.EqualError(t, err, "1 of 3 steps failed")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "hostpool version dev (n/a)\n", out)
}
