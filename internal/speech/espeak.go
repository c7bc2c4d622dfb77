package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.senan.xyz/taglib"

	"voicestamp/internal/audio"
)

// ErrSynthesis is returned when speech cannot be synthesized.
var ErrSynthesis = errors.New("speech synthesis failed")

// ESpeak synthesizes speech to WAV files with the espeak CLI.
type ESpeak struct {
	Path string
	// Speed in words per minute.
	Speed  int
	Runner audio.Runner
}

// NewESpeak creates an ESpeak. If espeakPath is empty, it defaults to "espeak".
func NewESpeak(espeakPath string, speed int, r audio.Runner) ESpeak {
	if espeakPath == "" {
		espeakPath = "espeak"
	}
	return ESpeak{Path: espeakPath, Speed: speed, Runner: r}
}

// Synthesize speaks text into out. The text goes through a file next to out
// so nothing in it is interpreted as a command line flag.
func (e ESpeak) Synthesize(ctx context.Context, text, out string) error {
	textFile := filepath.Join(filepath.Dir(out), "phrase-"+uuid.NewString()+".txt")
	if err := os.WriteFile(textFile, []byte(text), 0644); err != nil {
		return fmt.Errorf("%w: failed to write phrase file: %v", ErrSynthesis, err)
	}
	defer os.Remove(textFile)

	args := []string{"-s", strconv.Itoa(e.Speed), "-z", "-w", out, "-f", textFile}
	if _, stderr, err := e.Runner.Run(ctx, e.Path, args...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msg := strings.TrimSpace(string(stderr))
		return fmt.Errorf("%w: %q: %v %s", ErrSynthesis, text, err, msg)
	}
	return nil
}

// SampleRate reads the sample rate of a synthesized WAV clip.
func SampleRate(path string) (int, error) {
	props, err := taglib.ReadProperties(path)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to read %s: %v", ErrSynthesis, path, err)
	}
	if props.SampleRate == 0 {
		return 0, fmt.Errorf("%w: %s reports no sample rate", ErrSynthesis, path)
	}
	return int(props.SampleRate), nil
}
