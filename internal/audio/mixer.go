package audio

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// ErrMix is returned when the final MP3 cannot be produced.
var ErrMix = errors.New("mixing failed")

// Mixer mixes WAV tracks into an MP3 with ffmpeg and LAME.
type Mixer struct {
	FFmpeg string
	Runner Runner
}

// NewMixer creates a Mixer. If ffmpegPath is empty, it defaults to "ffmpeg".
func NewMixer(ffmpegPath string, r Runner) Mixer {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return Mixer{FFmpeg: ffmpegPath, Runner: r}
}

// Mix writes inputs mixed together to out as stereo VBR MP3. The first input
// is the music; the result is as long as it is.
func (m Mixer) Mix(ctx context.Context, out string, quality int, inputs []string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("%w: no inputs", ErrMix)
	}

	args := []string{"-y"}
	for _, in := range inputs {
		args = append(args, "-i", in)
	}
	args = append(args,
		"-filter_complex", MixFilter(len(inputs)),
		"-ac", "2",
		"-c:a", "libmp3lame",
		"-q:a", strconv.Itoa(quality),
		out,
	)

	if _, stderr, err := m.Runner.Run(ctx, m.FFmpeg, args...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s: %v (%s)", ErrMix, out, err, lastLine(stderr))
	}
	return nil
}

// MixFilter is the amix graph for n inputs.
func MixFilter(n int) string {
	return fmt.Sprintf("amix=inputs=%d:duration=first:dropout_transition=0", n)
}
