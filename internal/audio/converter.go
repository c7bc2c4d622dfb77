package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ErrConversion is returned when ffmpeg fails to produce the expected WAV files.
var ErrConversion = errors.New("audio conversion failed")

// Converter turns audio into WAV with ffmpeg.
type Converter struct {
	FFmpeg string
	Runner Runner
}

// NewConverter creates a Converter. If ffmpegPath is empty, it defaults to "ffmpeg".
func NewConverter(ffmpegPath string, r Runner) Converter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return Converter{FFmpeg: ffmpegPath, Runner: r}
}

// segmentPrefix names the WAV files of the source track inside a workspace.
const segmentPrefix = "music."

// ToWAVSegments converts input into WAV files inside dir and returns them in
// order. With splitMinutes > 0 the ffmpeg segment muxer cuts a new file every
// splitMinutes; the last one is usually shorter.
func (c Converter) ToWAVSegments(ctx context.Context, input, dir string, splitMinutes int) ([]string, error) {
	pattern := filepath.Join(dir, segmentPrefix+"%03d.wav")

	args := []string{"-y", "-i", input}
	if splitMinutes > 0 {
		args = append(args,
			"-f", "segment",
			"-segment_time", strconv.Itoa(splitMinutes*60),
			pattern,
		)
	} else {
		args = append(args, fmt.Sprintf(pattern, 0))
	}

	if _, stderr, err := c.Runner.Run(ctx, c.FFmpeg, args...); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %v (%s)", ErrConversion, input, err, lastLine(stderr))
	}

	files, err := SegmentFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s: no WAV output produced", ErrConversion, input)
	}
	return files, nil
}

// SegmentFiles lists the converted source segments in dir, in playback order.
func SegmentFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list %s: %v", ErrConversion, dir, err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, segmentPrefix) && strings.HasSuffix(name, ".wav") {
			files = append(files, filepath.Join(dir, name))
		}
	}
	sort.Strings(files)
	return files, nil
}

// Silence writes a one second mono silence clip at the given sample rate.
func (c Converter) Silence(ctx context.Context, out string, sampleRate int) error {
	args := []string{
		"-y",
		"-f", "lavfi",
		"-i", fmt.Sprintf("anullsrc=r=%d:cl=mono", sampleRate),
		"-t", "1",
		out,
	}
	if _, stderr, err := c.Runner.Run(ctx, c.FFmpeg, args...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: silence clip: %v (%s)", ErrConversion, err, lastLine(stderr))
	}
	return nil
}

// PadConcat joins inputs into out using a filter graph that pads and
// concatenates them (see speech.PadConcatFilter).
func (c Converter) PadConcat(ctx context.Context, out string, inputs []string, filter string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("%w: nothing to concatenate", ErrConversion)
	}

	args := []string{"-y"}
	for _, in := range inputs {
		args = append(args, "-i", in)
	}
	args = append(args, "-filter_complex", filter, out)

	if _, stderr, err := c.Runner.Run(ctx, c.FFmpeg, args...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: concatenating %d clips: %v (%s)", ErrConversion, len(inputs), err, lastLine(stderr))
	}
	return nil
}
