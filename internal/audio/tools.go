package audio

import (
	"errors"
	"fmt"

	"voicestamp/pkg/utils"
)

// ErrToolNotFound is returned when a required binary is missing.
var ErrToolNotFound = errors.New("required tool not found")

// Tools holds resolved paths of the external binaries.
type Tools struct {
	FFmpeg    string
	Sox       string
	ESpeak    string
	Normalize string
}

// DiscoverTools resolves every tool. Non-empty fields of overrides are used
// as the only candidate for that tool. normalize is also known as
// normalize-audio on Debian based systems.
func DiscoverTools(overrides Tools) (Tools, error) {
	var (
		t    Tools
		errs []error
	)

	find := func(dst *string, override string, candidates ...string) {
		if override != "" {
			candidates = []string{override}
		}
		path, err := utils.FindTool(candidates...)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %v", ErrToolNotFound, err))
			return
		}
		*dst = path
	}

	find(&t.FFmpeg, overrides.FFmpeg, "ffmpeg")
	find(&t.Sox, overrides.Sox, "sox")
	find(&t.ESpeak, overrides.ESpeak, "espeak")
	find(&t.Normalize, overrides.Normalize, "normalize", "normalize-audio")

	if len(errs) > 0 {
		return t, errors.Join(errs...)
	}
	return t, nil
}
