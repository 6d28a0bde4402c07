package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/joho/godotenv"
	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/vingenuity/obsup/ffmpeg"
	"github.com/vingenuity/obsup/service"
	"github.com/vingenuity/obsup/types"
	"github.com/vingenuity/obsup/upload"
	"github.com/vingenuity/obsup/utils"
)

type options struct {
	Service service.Service
	Convert types.ConvertConfig
	Bucket  string
}

func main() {
	if err := run(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	logger := newLogger()
	runID := newRunID()
	logger = logger.With("run", runID)

	return newRootCmd(logger, runID).Execute()
}

func newLogger() *slog.Logger {
	var w io.Writer = os.Stdout
	if file := os.Getenv("LOG_FILE"); file != "" {
		w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		})
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: utils.ParseLevel(os.Getenv("LOG_LEVEL")),
	}))
}

func newRunID() string {
	t := time.Now()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

func defaultFFmpegExe() string {
	base := "ffmpeg"
	if runtime.GOOS == "windows" {
		base += ".exe"
	}
	// Recording workstations keep a static build next to the binary.
	if exe, err := os.Executable(); err == nil {
		return filepath.Join(filepath.Dir(exe), "ffmpeg", "bin", base)
	}
	return filepath.Join("ffmpeg", "bin", base)
}

func newRootCmd(logger *slog.Logger, runID string) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "obsup",
		Short:         "Convert OBS recordings and upload them to a video service staging bucket",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd.Context(), logger, runID, opts)
		},
	}

	cmd.Flags().VarP(&opts.Service, "video-service", "s", fmt.Sprintf("video service to prepare recordings for (%v)", service.Names()))
	cmd.Flags().StringVarP(&opts.Convert.InputFile, "input-file", "f", "", "single video file to process")
	cmd.Flags().StringVarP(&opts.Convert.InputDirectory, "input-directory", "i", "", "directory containing video files to process")
	cmd.Flags().StringVar(&opts.Convert.InputSuffix, "input-suffix", ".mkv", "suffix for video files in the input directory")
	cmd.Flags().StringVarP(&opts.Convert.ConvertedDirectory, "converted-directory", "o", ".", "directory where converted files are saved")
	cmd.Flags().StringVar(&opts.Convert.FFmpegExe, "ffmpeg-exe", defaultFFmpegExe(), "path to the ffmpeg executable")
	cmd.Flags().BoolVar(&opts.Convert.SkipConvert, "no-convert", false, "skip conversion and treat inputs as already converted")
	cmd.Flags().IntVarP(&opts.Convert.Concurrency, "concurrency", "j", runtime.NumCPU(), "parallel conversions")
	cmd.Flags().StringVarP(&opts.Bucket, "bucket", "b", "", "S3 staging bucket to upload converted files to")

	_ = cmd.MarkFlagRequired("video-service")
	cmd.MarkFlagsOneRequired("input-file", "input-directory")
	cmd.MarkFlagsMutuallyExclusive("input-file", "input-directory")

	return cmd
}

func runPipeline(ctx context.Context, logger *slog.Logger, runID string, opts *options) error {
	if err := utils.EnsureDir(opts.Convert.ConvertedDirectory); err != nil {
		return fmt.Errorf("preparing converted directory: %w", err)
	}

	conv := ffmpeg.NewConverter(logger, opts.Service, opts.Convert)
	if !opts.Convert.SkipConvert {
		if err := conv.ResolveTools(); err != nil {
			return err
		}
	}

	inputs, err := conv.DiscoverInputs()
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		logger.Warn("no matching files found", "directory", opts.Convert.InputDirectory, "suffix", opts.Convert.InputSuffix)
		return nil
	}

	var outputs []string
	var failed []types.Result
	if opts.Convert.SkipConvert {
		logger.Info("conversion disabled, passing inputs through", "files", len(inputs))
		outputs = inputs
	} else {
		logger.Info("converting files", "files", len(inputs), "service", opts.Service, "suffix", opts.Convert.InputSuffix)
		results := conv.ConvertAll(ctx, inputs)
		outputs = types.Outputs(results)
		failed = types.Failed(results)
		for _, r := range failed {
			logger.Error("conversion failed", "input", r.Input, "error", r.Err)
		}
	}

	if opts.Bucket != "" && len(outputs) > 0 {
		client, err := upload.InitAWSClient(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize AWS client: %w", err)
		}
		up := &upload.Uploader{
			Logger:  logger,
			Client:  client,
			Bucket:  opts.Bucket,
			RunID:   runID,
			Service: opts.Service,
		}
		for _, r := range up.UploadAll(ctx, outputs) {
			if r.Err != nil {
				logger.Error("upload failed", "file", r.Input, "error", r.Err)
				failed = append(failed, r)
			}
		}
	}

	logger.Info("run complete", "processed", len(outputs), "failed", len(failed))
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d files failed", len(failed), len(inputs))
	}
	return nil
}
