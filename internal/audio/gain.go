package audio

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// ErrGain is returned when the speech volume cannot be adjusted.
var ErrGain = errors.New("gain adjustment failed")

// Gain adjusts WAV amplitude in place with normalize.
type Gain struct {
	Normalize string
	Runner    Runner
}

// NewGain creates a Gain. If normalizePath is empty, it defaults to "normalize".
func NewGain(normalizePath string, r Runner) Gain {
	if normalizePath == "" {
		normalizePath = "normalize"
	}
	return Gain{Normalize: normalizePath, Runner: r}
}

// Apply scales wav so its RMS amplitude becomes target. Targets above 1.0 are capped.
func (g Gain) Apply(ctx context.Context, wav string, target float64) error {
	target = min(target, MaxAmplitude)

	amp := strconv.FormatFloat(target, 'f', -1, 64)
	if _, stderr, err := g.Runner.Run(ctx, g.Normalize, "-a", amp, wav); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s: %v (%s)", ErrGain, wav, err, lastLine(stderr))
	}
	return nil
}
