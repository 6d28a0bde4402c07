package service

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, arg := range []string{"youtube", "YOUTUBE", "YouTube", " youtube "} {
		svc, err := Parse(arg)
		require.NoError(t, err, "Parse(%q)", arg)
		require.Equal(t, YouTube, svc)
	}

	svc, err := Parse("vimeo")
	require.NoError(t, err)
	require.Equal(t, Vimeo, svc)
}

func TestParseUnknown(t *testing.T) {
	_, err := Parse("dailymotion")
	require.Error(t, err)
	require.Contains(t, err.Error(), "dailymotion")
	require.Contains(t, err.Error(), "vimeo, youtube")
}

func TestNames(t *testing.T) {
	require.Equal(t, []string{"vimeo", "youtube"}, Names())
}

func TestOutputArgs(t *testing.T) {
	require.Equal(t, []string{
		"-c:v", "libx264",
		"-preset", "veryslow",
		"-crf", "19",
		"-c:a", "copy",
		"-pix_fmt", "yuv420p",
	}, YouTube.OutputArgs())

	require.Equal(t, []string{
		"-c:v", "libx264",
		"-preset", "veryslow",
		"-crf", "18",
		"-c:a", "copy",
		"-pix_fmt", "yuv420p",
	}, Vimeo.OutputArgs())
}

func TestOutputArgsReturnsCopy(t *testing.T) {
	args := YouTube.OutputArgs()
	args[0] = "mutated"
	require.Equal(t, "-c:v", YouTube.OutputArgs()[0])
}

func TestOutputSuffix(t *testing.T) {
	require.Equal(t, ".mp4", YouTube.OutputSuffix())
	require.Equal(t, ".mp4", Vimeo.OutputSuffix())
}

func TestPflagValue(t *testing.T) {
	var svc Service
	var _ pflag.Value = &svc

	require.NoError(t, svc.Set("Vimeo"))
	require.Equal(t, Vimeo, svc)
	require.Equal(t, "vimeo", svc.String())
	require.Equal(t, "service", svc.Type())

	require.Error(t, svc.Set("nope"))
	require.Equal(t, Vimeo, svc, "failed Set must not clobber the value")
}
