// Package schedule computes where spoken ticks fall inside each output segment.
package schedule

import (
	"errors"
	"fmt"
)

// ErrSegmentTooShort is matched by every SegmentTooShortError.
var ErrSegmentTooShort = errors.New("segment too short")

// SegmentTooShortError reports a segment that cannot hold the first tick.
type SegmentTooShortError struct {
	Min    int
	Actual int
}

func (e *SegmentTooShortError) Error() string {
	return fmt.Sprintf("segment too short: at least %d minutes required, got %d", e.Min, e.Actual)
}

func (e *SegmentTooShortError) Is(target error) bool {
	return target == ErrSegmentTooShort
}

// Params are the inputs of Compute. Interval and Offset must be at least 1.
type Params struct {
	TotalMinutes int
	Interval     int
	Offset       int
	// SplitMinutes is the target segment length; 0 disables splitting.
	SplitMinutes int
	// TicksEnabled is false when the tick format is empty.
	TicksEnabled bool
}

// Schedule is the timing model of one input file. Tick offsets are minutes
// from the start of a segment and are the same for every segment.
type Schedule struct {
	SegmentCount           int
	SegmentDurationMinutes int
	TickOffsets            []int
}

// Compute derives the segment layout and tick positions.
func Compute(p Params) (Schedule, error) {
	if p.Interval < 1 {
		return Schedule{}, fmt.Errorf("tick interval must be at least 1, got %d", p.Interval)
	}
	if p.Offset < 1 {
		return Schedule{}, fmt.Errorf("tick offset must be at least 1, got %d", p.Offset)
	}
	if p.SplitMinutes < 0 {
		return Schedule{}, fmt.Errorf("split duration must not be negative, got %d", p.SplitMinutes)
	}

	s := Schedule{
		SegmentCount:           1,
		SegmentDurationMinutes: p.TotalMinutes,
	}
	if p.SplitMinutes > 0 {
		s.SegmentDurationMinutes = p.SplitMinutes
		s.SegmentCount = SegmentCount(p.TotalMinutes, p.SplitMinutes)
	}

	if minimum := MinimumMinutes(p.Offset); s.SegmentDurationMinutes < minimum {
		return Schedule{}, &SegmentTooShortError{Min: minimum, Actual: s.SegmentDurationMinutes}
	}

	if p.TicksEnabled {
		for m := p.Offset; m < s.SegmentDurationMinutes; m += p.Interval {
			s.TickOffsets = append(s.TickOffsets, m)
		}
	}

	return s, nil
}

// SegmentCount is total/split rounded half up, never less than one.
func SegmentCount(totalMinutes, splitMinutes int) int {
	if splitMinutes <= 0 {
		return 1
	}
	n := (2*totalMinutes + splitMinutes) / (2 * splitMinutes)
	if n < 1 {
		return 1
	}
	return n
}

// MinimumMinutes is the shortest segment that still fits a tick at offset.
func MinimumMinutes(offset int) int {
	return 1 + offset
}

// SpokenMinutes is the number announced for a tick at offset minutes.
func SpokenMinutes(offset, add int) int {
	return offset + add
}
