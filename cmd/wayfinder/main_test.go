package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-wayfinder/internal/config"
	"github.com/teslashibe/go-wayfinder/pkg/source"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestApplyFlags(t *testing.T) {
	root := newRootCmd()
	require.NoError(t, root.ParseFlags([]string{
		"--detector", "remote",
		"--detector-url", "http://localhost:9001/detect",
		"--fps", "12",
		"--cooldown", "1500ms",
	}))

	s := config.Defaults()
	require.NoError(t, applyFlags(root, &s))
	assert.Equal(t, "remote", s.Detector)
	assert.Equal(t, "http://localhost:9001/detect", s.DetectorURL)
	assert.Equal(t, 12, s.FPS)
	assert.Equal(t, 1500*time.Millisecond, s.Cooldown)
	assert.Equal(t, config.DefaultModelPath, s.ModelPath, "unset flags keep their value")
}

func TestFormatOffset(t *testing.T) {
	assert.Equal(t, "0:00.000", formatOffset(0))
	assert.Equal(t, "0:02.066", formatOffset(2066))
	assert.Equal(t, "1:05.500", formatOffset(65500))
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "wayfinder dev\n", out)
}

func TestSampleThenAnalyze(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")

	out, err := execute(t, "sample", "--out", dir, "--frames", "60")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 60 frames")
	_, err = os.Stat(filepath.Join(dir, source.MetadataFile))
	require.NoError(t, err)

	out, err = execute(t, "analyze", "--source", dir, "--detector", "stub", "--speaker", "none")
	require.NoError(t, err)
	assert.Contains(t, out, "60 frames")
	assert.True(t, strings.Contains(out, "door on your right"), out)
}

func TestInvalidSettingsAreRejected(t *testing.T) {
	_, err := execute(t, "analyze", "--detector", "remote")
	assert.Error(t, err)
}
