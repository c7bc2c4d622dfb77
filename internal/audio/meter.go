package audio

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMeasurement is returned when the RMS amplitude cannot be determined.
var ErrMeasurement = errors.New("amplitude measurement failed")

// Meter measures loudness with sox.
type Meter struct {
	Sox    string
	Runner Runner
}

// NewMeter creates a Meter. If soxPath is empty, it defaults to "sox".
func NewMeter(soxPath string, r Runner) Meter {
	if soxPath == "" {
		soxPath = "sox"
	}
	return Meter{Sox: soxPath, Runner: r}
}

// MeasureRMS returns the RMS amplitude of the given WAV files played back to back.
func (m Meter) MeasureRMS(ctx context.Context, wavs ...string) (float64, error) {
	if len(wavs) == 0 {
		return 0, fmt.Errorf("%w: no input files", ErrMeasurement)
	}

	args := append(append([]string{}, wavs...), "-n", "stat")
	_, stderr, err := m.Runner.Run(ctx, m.Sox, args...)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, fmt.Errorf("%w: %v (%s)", ErrMeasurement, err, lastLine(stderr))
	}

	stats := ParseStat(stderr)
	raw, ok := stats["rms_amplitude"]
	if !ok {
		return 0, fmt.Errorf("%w: no RMS amplitude in sox output", ErrMeasurement)
	}
	rms, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad RMS value %q: %v", ErrMeasurement, raw, err)
	}
	return rms, nil
}

// ParseStat reads the "key: value" report printed by "sox ... -n stat".
// Keys are lower-cased with inner spaces replaced by underscores, so
// "RMS     amplitude" becomes "rms_amplitude".
func ParseStat(out []byte) map[string]string {
	stats := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.Join(strings.Fields(key), "_"))
		if key == "" {
			continue
		}
		stats[key] = strings.TrimSpace(value)
	}
	return stats
}
