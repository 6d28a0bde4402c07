package service

import (
	"fmt"
	"sort"
	"strings"
)

// Service identifies the video service a recording is being prepared for.
// Each service carries the ffmpeg output arguments and container suffix its
// ingest pipeline expects.
type Service string

const (
	YouTube Service = "youtube"
	Vimeo   Service = "vimeo"
)

type preset struct {
	outputArgs   []string
	outputSuffix string
}

var presets = map[Service]preset{
	Vimeo: {
		outputArgs: []string{
			"-c:v", "libx264",
			"-preset", "veryslow",
			"-crf", "18",
			"-c:a", "copy",
			"-pix_fmt", "yuv420p",
		},
		outputSuffix: ".mp4",
	},
	YouTube: {
		outputArgs: []string{
			"-c:v", "libx264",
			"-preset", "veryslow",
			"-crf", "19",
			"-c:a", "copy",
			"-pix_fmt", "yuv420p",
		},
		outputSuffix: ".mp4",
	},
}

// Parse converts an argument string into a Service, case-insensitively.
func Parse(arg string) (Service, error) {
	s := Service(strings.ToLower(strings.TrimSpace(arg)))
	if _, ok := presets[s]; !ok {
		return "", fmt.Errorf("unknown video service %q (choices: %s)", arg, strings.Join(Names(), ", "))
	}
	return s, nil
}

// Names lists the valid service names in stable order.
func Names() []string {
	names := make([]string, 0, len(presets))
	for s := range presets {
		names = append(names, string(s))
	}
	sort.Strings(names)
	return names
}

// OutputArgs returns the ffmpeg output arguments for the service. The slice
// is a copy; callers may append to it.
func (s Service) OutputArgs() []string {
	p := presets[s]
	args := make([]string, len(p.outputArgs))
	copy(args, p.outputArgs)
	return args
}

// OutputSuffix returns the container suffix converted files get.
func (s Service) OutputSuffix() string {
	return presets[s].outputSuffix
}

func (s Service) String() string {
	return string(s)
}

// Set implements pflag.Value so cobra can bind --video-service directly.
func (s *Service) Set(arg string) error {
	parsed, err := Parse(arg)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Type implements pflag.Value.
func (s Service) Type() string {
	return "service"
}
