package pipeline

import (
	"context"

	"voicestamp/internal/audio"
	"voicestamp/internal/config"
	"voicestamp/internal/metadata"
	"voicestamp/internal/speech"
)

// Synthesizer speaks text into a WAV file.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, out string) error
}

// Converter produces and joins WAV files.
type Converter interface {
	ToWAVSegments(ctx context.Context, input, dir string, splitMinutes int) ([]string, error)
	Silence(ctx context.Context, out string, sampleRate int) error
	PadConcat(ctx context.Context, out string, inputs []string, filter string) error
}

// Meter measures RMS amplitude.
type Meter interface {
	MeasureRMS(ctx context.Context, wavs ...string) (float64, error)
}

// Gain sets the RMS amplitude of a WAV file.
type Gain interface {
	Apply(ctx context.Context, wav string, target float64) error
}

// Mixer mixes WAV files into an MP3.
type Mixer interface {
	Mix(ctx context.Context, out string, quality int, inputs []string) error
}

// Tagger writes output tags.
type Tagger interface {
	Write(path string, track metadata.Track, spokenTitle string) error
}

// Uploader publishes a finished file and returns where it went.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// Deps are the collaborators a Job drives. Uploader may be nil.
type Deps struct {
	Prober      metadata.Prober
	Synthesizer Synthesizer
	Converter   Converter
	Meter       Meter
	Gain        Gain
	Mixer       Mixer
	Tagger      Tagger
	Uploader    Uploader
	// SampleRate reads the sample rate of a synthesized clip.
	SampleRate func(path string) (int, error)
}

// NewDeps wires the real tools. software is written to the encoder tag.
func NewDeps(cfg config.Config, tools audio.Tools, r audio.Runner, software string) Deps {
	return Deps{
		Prober:      metadata.TaglibProber{},
		Synthesizer: speech.NewESpeak(tools.ESpeak, cfg.SpeechSpeed, r),
		Converter:   audio.NewConverter(tools.FFmpeg, r),
		Meter:       audio.NewMeter(tools.Sox, r),
		Gain:        audio.NewGain(tools.Normalize, r),
		Mixer:       audio.NewMixer(tools.FFmpeg, r),
		Tagger:      metadata.Tagger{Software: software},
		SampleRate:  speech.SampleRate,
	}
}

// DryRunDeps only probes files; nothing is executed.
func DryRunDeps() Deps {
	return Deps{Prober: metadata.TaglibProber{}}
}
