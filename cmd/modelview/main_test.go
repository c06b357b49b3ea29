package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/modelview/input"
)

func TestParseScript(t *testing.T) {
	steps, err := parseScript("W:30, _:5,Escape:1", input.DefaultBindings)
	require.NoError(t, err)
	require.Len(t, steps, 3)

	assert.Equal(t, 30, steps[0].Ticks)
	assert.Equal(t, float32(-1), steps[0].Snapshot.Value(input.MoveY))
	assert.Equal(t, input.Snapshot{}, steps[1].Snapshot)
	assert.True(t, steps[2].Snapshot.Pressed(input.Exit))
}

func TestParseScriptEmpty(t *testing.T) {
	steps, err := parseScript("  ", input.DefaultBindings)
	require.NoError(t, err)
	assert.Empty(t, steps)
}

func TestParseScriptErrors(t *testing.T) {
	for _, s := range []string{"W", "W:0", "W:x", "Z:3"} {
		_, err := parseScript(s, input.DefaultBindings)
		assert.Error(t, err, s)
	}
}

func TestRunExitCodes(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name string
		args []string
		want int
	}{
		{"bad flag", []string{"-nosuchflag"}, 2},
		{"bad script", []string{"-backend", "noop", "-script", "W"}, 1},
		{"unknown backend", []string{"-backend", "metal2"}, 1},
		{"missing config", []string{"-config", filepath.Join(dir, "none.toml")}, 1},
		// The device is open when the mesh load fails.
		{"missing mesh", []string{
			"-backend", "noop", "-frames", "1",
			"-mesh", filepath.Join(dir, "missing.bin"),
			"-skybox", dir,
		}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, run(tc.args))
		})
	}
}

func TestOpenDeviceUnknownBackend(t *testing.T) {
	_, err := openDevice("metal2")
	assert.ErrorContains(t, err, `unknown backend "metal2"`)
}
