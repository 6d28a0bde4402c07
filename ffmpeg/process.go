package ffmpeg

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/vingenuity/obsup/service"
	"github.com/vingenuity/obsup/types"
	"github.com/vingenuity/obsup/utils"
)

// Converter discovers recordings and converts them with an external ffmpeg
// binary using the target service's encode preset.
type Converter struct {
	Logger  *slog.Logger
	Service service.Service
	Config  types.ConvertConfig

	ffmpegPath  string
	ffprobePath string
}

func NewConverter(logger *slog.Logger, svc service.Service, cfg types.ConvertConfig) *Converter {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = runtime.NumCPU()
	}
	return &Converter{
		Logger:  logger,
		Service: svc,
		Config:  cfg,
	}
}

// ResolveTools locates ffmpeg and ffprobe. The configured --ffmpeg-exe path
// wins; PATH is the fallback. ffprobe is looked up next to whichever ffmpeg
// was found and is optional.
func (c *Converter) ResolveTools() error {
	ffmpegBase := "ffmpeg"
	ffprobeBase := "ffprobe"
	if runtime.GOOS == "windows" {
		ffmpegBase += ".exe"
		ffprobeBase += ".exe"
	}

	if path, err := exec.LookPath(c.Config.FFmpegExe); err == nil {
		c.ffmpegPath, _ = filepath.Abs(path)
	} else if path, err := exec.LookPath(ffmpegBase); err == nil {
		c.Logger.Info("ffmpeg not at configured path, using PATH", "configured", c.Config.FFmpegExe, "resolved", path)
		c.ffmpegPath = path
	} else {
		return fmt.Errorf("ffmpeg not found at %q or in PATH", c.Config.FFmpegExe)
	}

	probe := filepath.Join(filepath.Dir(c.ffmpegPath), ffprobeBase)
	if path, err := exec.LookPath(probe); err == nil {
		c.ffprobePath = path
	} else if path, err := exec.LookPath(ffprobeBase); err == nil {
		c.ffprobePath = path
	} else {
		c.Logger.Warn("ffprobe not found, duration probing disabled")
	}
	return nil
}

// DiscoverInputs returns the recordings to process: the single configured
// input file, or every file under the input directory whose name ends with
// the input suffix, in sorted order.
func (c *Converter) DiscoverInputs() ([]string, error) {
	if c.Config.InputFile != "" {
		info, err := os.Stat(c.Config.InputFile)
		if err != nil {
			return nil, fmt.Errorf("input file: %w", err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("input file %s is a directory", c.Config.InputFile)
		}
		return []string{c.Config.InputFile}, nil
	}

	var inputs []string
	err := filepath.WalkDir(c.Config.InputDirectory, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), c.Config.InputSuffix) {
			inputs = append(inputs, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning input directory: %w", err)
	}
	sort.Strings(inputs)
	return inputs, nil
}

// OutputPath maps an input recording to its converted path: the input's stem
// plus the service suffix, under the converted directory.
func OutputPath(convertedDir, input string, svc service.Service) string {
	return filepath.Join(convertedDir, utils.Stem(input)+svc.OutputSuffix())
}

// BuildArgs assembles the ffmpeg argument vector for one conversion. Each
// configuration value lands in exactly one position; nothing else varies.
func BuildArgs(input, output string, svc service.Service) []string {
	args := []string{"-y", "-i", input}
	args = append(args, svc.OutputArgs()...)
	return append(args, output)
}

// ConvertAll runs the conversions through a bounded worker pool. One file
// failing does not stop the others; every failure is captured in its result.
func (c *Converter) ConvertAll(ctx context.Context, inputs []string) []types.Result {
	sem := make(chan struct{}, c.Config.Concurrency)
	var wg sync.WaitGroup
	results := make([]types.Result, len(inputs))

	for i, input := range inputs {
		sem <- struct{}{}
		wg.Add(1)

		go func(i int, input string) {
			defer func() {
				<-sem
				wg.Done()
			}()
			output, err := c.convertOne(ctx, input)
			results[i] = types.Result{Input: input, Output: output, Err: err}
		}(i, input)
	}
	wg.Wait()
	return results
}

func (c *Converter) convertOne(ctx context.Context, input string) (string, error) {
	output := OutputPath(c.Config.ConvertedDirectory, input, c.Service)

	log := c.Logger.With("input", input, "output", output)
	if dur, err := c.probeDuration(ctx, input); err == nil {
		log.Info("converting", "duration_s", dur)
	} else {
		log.Info("converting")
	}

	cmd := exec.CommandContext(ctx, c.ffmpegPath, BuildArgs(input, output, c.Service)...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("starting ffmpeg: %w", err)
	}

	lw := &utils.LineWriter{Logger: log.With("tool", "ffmpeg"), Level: slog.LevelDebug}
	done := make(chan struct{})
	go func() {
		lw.Pipe(stderr)
		close(done)
	}()
	<-done

	if err := cmd.Wait(); err != nil {
		return "", fmt.Errorf("converting %s: %w", input, err)
	}

	if info, err := os.Stat(output); err != nil || info.Size() == 0 {
		return "", fmt.Errorf("converted file %s is missing or empty", output)
	}
	return output, nil
}

// probeDuration asks ffprobe for the container duration in seconds. Best
// effort: it only feeds the log.
func (c *Converter) probeDuration(ctx context.Context, input string) (float64, error) {
	if c.ffprobePath == "" {
		return 0, fmt.Errorf("ffprobe unavailable")
	}
	cmd := exec.CommandContext(ctx, c.ffprobePath, "-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1", input)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing duration: %w", err)
	}
	return dur, nil
}
