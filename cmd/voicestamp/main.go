package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"voicestamp/internal/audio"
	"voicestamp/internal/config"
	"voicestamp/internal/logger"
	"voicestamp/internal/pipeline"
	"voicestamp/internal/progress"
	"voicestamp/internal/shutdown"
	"voicestamp/internal/storage"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	sh := shutdown.New()
	sh.Listen()

	opts, err := parseArgs(sh.Context(), os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}
	if opts.help {
		printUsage()
		return
	}
	if opts.version {
		fmt.Printf("voicestamp %s\n", version)
		return
	}

	cfg := opts.cfg

	if opts.saveConfig != "" {
		if err := config.SaveConfigFile(cfg, opts.saveConfig, cfg.ForceOverwrite); err != nil {
			fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Configuration saved to: %s\n", opts.saveConfig)
		return
	}

	log := logger.New(logger.Options{Verbose: cfg.Verbose, Quiet: cfg.Quiet, Debug: cfg.Debug})

	if !log.Verbose() {
		logDir := config.GetDefaultLogPath()
		if err := os.MkdirAll(logDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] Failed to create log directory: %v\n", err)
		} else {
			logFile := filepath.Join(logDir, fmt.Sprintf("voicestamp_%s.log", time.Now().Format("2006-01-02_15-04-05")))
			if err := log.SetFileLog(logFile); err != nil {
				fmt.Fprintf(os.Stderr, "[WARN] Failed to setup file logging: %v\n", err)
			} else {
				log.Debug("Logging to file: %s", logFile)
			}
		}
	}

	if opts.configPath != "" {
		log.Debug("Loaded configuration from: %s", opts.configPath)
	}

	err = run(sh, cfg, log, opts.inputs)
	sh.Shutdown()
	log.Close()
	if err != nil {
		os.Exit(1)
	}
}

func run(sh *shutdown.Handler, cfg config.Config, log *logger.Logger, inputs []string) error {
	ctx := sh.Context()

	deps, err := buildDeps(ctx, cfg, log)
	if err != nil {
		log.Error("%v", err)
		return err
	}

	var (
		bar   *progress.Bar
		files int
	)
	hooks := pipeline.Hooks{
		OnFilesResolved: func(total int) {
			files = total
			if total > 1 && !log.Verbose() && !cfg.DryRun && !cfg.Quiet {
				bar = progress.New(total)
				log.SetProgressBar(true)
			}
		},
		OnFileStart: func(input string) {
			if bar != nil {
				bar.SetLabel(filepath.Base(input))
			}
		},
		OnFileDone: func(string, error) {
			if bar != nil {
				bar.Increment()
			}
		},
	}

	job := &pipeline.Job{
		Config:   cfg,
		Logger:   log,
		Deps:     deps,
		Hooks:    hooks,
		Shutdown: sh,
	}

	_, err = pipeline.Run(ctx, job, inputs)

	finished := -1
	if bar != nil {
		finished = bar.Current()
		bar.Finish()
		log.SetProgressBar(false)
	}

	switch {
	case err == nil:
		log.Info("=== Done ===")
	case errors.Is(err, pipeline.ErrBatchFailed):
		// failures were logged per file
	case errors.Is(err, context.Canceled):
		if finished >= 0 {
			log.Warn("Interrupted after %d of %d files", finished, files)
		} else {
			log.Warn("Interrupted")
		}
	default:
		log.Error("%v", err)
	}
	return err
}

// buildDeps discovers the external tools and wires the pipeline. A dry run
// needs none of them.
func buildDeps(ctx context.Context, cfg config.Config, log *logger.Logger) (pipeline.Deps, error) {
	if cfg.DryRun {
		return pipeline.DryRunDeps(), nil
	}

	log.Debug("Checking dependencies...")
	tools, err := audio.DiscoverTools(audio.Tools{
		FFmpeg:    cfg.FFmpegPath,
		Sox:       cfg.SoxPath,
		ESpeak:    cfg.ESpeakPath,
		Normalize: cfg.NormalizePath,
	})
	if err != nil {
		return pipeline.Deps{}, fmt.Errorf("dependency check failed: %w", err)
	}
	log.Debug("Tools: ffmpeg=%s sox=%s espeak=%s normalize=%s", tools.FFmpeg, tools.Sox, tools.ESpeak, tools.Normalize)

	deps := pipeline.NewDeps(cfg, tools, &audio.ExecRunner{Logger: log}, "voicestamp v"+version)

	if cfg.S3Enabled() {
		uploader, err := storage.NewS3Uploader(ctx, cfg.S3())
		if err != nil {
			return pipeline.Deps{}, err
		}
		deps.Uploader = uploader
	}

	return deps, nil
}
