package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"voicestamp/internal/audio"
	"voicestamp/internal/config"
	"voicestamp/internal/logger"
	"voicestamp/internal/pipeline"
	"voicestamp/internal/shutdown"
	"voicestamp/internal/storage"
	"voicestamp/internal/web"
)

var version = "dev"

func main() {
	var (
		port       int
		configPath string
		verbose    bool
	)

	flag.IntVar(&port, "port", 8080, "HTTP server port")
	flag.StringVar(&configPath, "config", "", "Config file path")
	flag.BoolVar(&verbose, "verbose", false, "Log debug output to stdout")
	flag.Parse()

	sh := shutdown.New()
	sh.Listen()

	cfg, err := config.LoadConfigFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := config.ApplyEnv(sh.Context(), &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Setup logger with file logging
	l := logger.New(logger.Options{Verbose: verbose || cfg.Verbose, Debug: cfg.Debug})
	logDir := config.GetDefaultLogPath()
	if err := os.MkdirAll(logDir, 0755); err == nil {
		logPath := filepath.Join(logDir, fmt.Sprintf("voicestamp-web-%d.log", time.Now().Unix()))
		if err := l.SetFileLog(logPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to setup file logging: %v\n", err)
		}
	}
	defer l.Close()

	tools, toolsErr := audio.DiscoverTools(audio.Tools{
		FFmpeg:    cfg.FFmpegPath,
		Sox:       cfg.SoxPath,
		ESpeak:    cfg.ESpeakPath,
		Normalize: cfg.NormalizePath,
	})
	if toolsErr != nil {
		// dry-run jobs still work
		l.Warn("Dependency check failed: %v", toolsErr)
	}

	var uploader *storage.S3Uploader
	if cfg.S3Enabled() {
		uploader, err = storage.NewS3Uploader(sh.Context(), cfg.S3())
		if err != nil {
			l.Error("S3 setup failed: %v", err)
			os.Exit(1)
		}
	}

	runner := &audio.ExecRunner{Logger: l}
	newDeps := func(jobCfg config.Config) (pipeline.Deps, error) {
		if jobCfg.DryRun {
			return pipeline.DryRunDeps(), nil
		}
		if toolsErr != nil {
			return pipeline.Deps{}, fmt.Errorf("dependency check failed: %w", toolsErr)
		}
		deps := pipeline.NewDeps(jobCfg, tools, runner, "voicestamp v"+version)
		if uploader != nil {
			deps.Uploader = uploader
		}
		return deps, nil
	}

	jobMgr := web.NewJobManager()
	jobMgr.StartCleanup(sh.Context())
	server := web.NewServer(sh, jobMgr, cfg, l, newDeps)

	// WriteTimeout is left unset: /ws streams for the lifetime of a job
	httpServer := &http.Server{
		Addr:        fmt.Sprintf(":%d", port),
		Handler:     server.Router(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		l.Info("Starting web server on port %d", port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("Server error: %v", err)
			os.Exit(1)
		}
	}()

	<-sh.Context().Done()

	l.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		l.Error("Server shutdown error: %v", err)
	}

	// running jobs see the cancelled context and remove their workspaces
	sh.Wait()

	l.Info("Server stopped")
}
