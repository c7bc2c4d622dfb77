// Package pipeline drives the voice stamp of whole files: probing, speech
// synthesis, amplitude matching, mixing, tagging and the final commit.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"voicestamp/pkg/utils"
)

// ErrBatchFailed is returned by Run when at least one file of a batch failed.
var ErrBatchFailed = errors.New("some files could not be stamped")

// Hooks let callers follow a run. Every field is optional.
type Hooks struct {
	OnFilesResolved func(total int)
	OnFileStart     func(input string)
	OnFileDone      func(input string, err error)
	OnSegmentDone   func(input string, segment, count int)
	OnWarning       func(msg string)
}

// Run stamps every input with job. Directories are expanded to the MP3
// files they contain. Results cover every file that produced at least one
// output, including files that failed afterwards.
//
// Configuration errors are returned before any file is touched. A single
// input returns its own error. In a batch, failures are logged and counted
// and the run ends with ErrBatchFailed, unless debug is set, in which case
// the first failure stops the batch and is returned as is.
func Run(ctx context.Context, job *Job, inputs []string) ([]Result, error) {
	cfg := job.Config
	log := job.Logger

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	files, err := utils.ExpandInputs(inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to expand inputs: %w", err)
	}
	if err := cfg.ValidateInputs(files); err != nil {
		return nil, err
	}

	if job.Hooks.OnFilesResolved != nil {
		job.Hooks.OnFilesResolved(len(files))
	}

	if cfg.DryRun {
		log.Info("=== Dry run: %d file(s) ===", len(files))
		log.Info("Title format: %q", cfg.TitleFormat)
		log.Info("Tick format: %q (every %d min, first after %d min)", cfg.TickFormat, cfg.TickInterval, cfg.TickOffset)
		log.Info("Output format: %q", cfg.FileOutFormat)
	}

	results := make([]Result, 0, len(files))
	failed := 0

	for _, input := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		log.Info("=== %s ===", input)
		if job.Hooks.OnFileStart != nil {
			job.Hooks.OnFileStart(input)
		}

		res, err := job.Stamp(ctx, input)
		if job.Hooks.OnFileDone != nil {
			job.Hooks.OnFileDone(input, err)
		}
		if err == nil || len(res.Segments) > 0 {
			// partially stamped files still report what reached the disk
			results = append(results, res)
		}
		if err == nil {
			continue
		}

		if len(files) == 1 || cfg.Debug || errors.Is(err, context.Canceled) {
			return results, err
		}

		failed++
		msg := fmt.Sprintf("%s: %v", input, err)
		log.Error("%s", msg)
		if job.Hooks.OnWarning != nil {
			job.Hooks.OnWarning(msg)
		}
	}

	if failed > 0 {
		log.Warn("%d of %d files failed", failed, len(files))
		return results, fmt.Errorf("%w: %d of %d", ErrBatchFailed, failed, len(files))
	}
	return results, nil
}
