package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCmd(testLogger(), "testrun")
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestRootCmdRequiresService(t *testing.T) {
	err := execute(t, "--input-directory", t.TempDir())
	require.Error(t, err)
	require.Contains(t, err.Error(), "video-service")
}

func TestRootCmdRequiresOneInput(t *testing.T) {
	err := execute(t, "--video-service", "youtube")
	require.Error(t, err)
	require.Contains(t, err.Error(), "at least one of the flags")
}

func TestRootCmdRejectsBothInputs(t *testing.T) {
	dir := t.TempDir()
	err := execute(t, "--video-service", "youtube",
		"--input-file", filepath.Join(dir, "a.mkv"),
		"--input-directory", dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "none of the others can be")
}

func TestRootCmdRejectsUnknownService(t *testing.T) {
	err := execute(t, "--video-service", "dailymotion", "--input-directory", t.TempDir())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown video service")
}

func TestRootCmdDefaults(t *testing.T) {
	cmd := newRootCmd(testLogger(), "testrun")
	require.Equal(t, ".mkv", cmd.Flags().Lookup("input-suffix").DefValue)
	require.Equal(t, ".", cmd.Flags().Lookup("converted-directory").DefValue)
	require.Equal(t, "", cmd.Flags().Lookup("bucket").DefValue)
	require.Contains(t, cmd.Flags().Lookup("ffmpeg-exe").DefValue, filepath.Join("ffmpeg", "bin"))
}

func TestRootCmdNoConvertPassThrough(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.mkv"), []byte("x"), 0o644))

	// No bucket and no conversion: discovery runs, nothing else touches
	// the filesystem or the network.
	err := execute(t, "--video-service", "youtube",
		"--input-directory", dir,
		"--converted-directory", t.TempDir(),
		"--no-convert")
	require.NoError(t, err)
}

func TestRootCmdEmptyDirectory(t *testing.T) {
	err := execute(t, "--video-service", "vimeo",
		"--input-directory", t.TempDir(),
		"--converted-directory", t.TempDir(),
		"--no-convert")
	require.NoError(t, err)
}
