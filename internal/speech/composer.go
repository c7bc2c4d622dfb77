package speech

import (
	"fmt"
	"strconv"
	"strings"

	"voicestamp/internal/placeholder"
	"voicestamp/internal/schedule"
)

// Composer renders the spoken phrases of a file from the configured formats.
type Composer struct {
	TitleFormat string
	// TickFormat empty means no ticks are spoken.
	TickFormat string
	// TickOffset and TickInterval are in minutes, as scheduled.
	TickOffset   int
	TickInterval int
	// TickAdd is added to every announced minute value.
	TickAdd int
	// ConfigName is the spoken name of the loaded config file, if any.
	ConfigName string
	// Split is true when the input is cut into segments.
	Split bool
}

// Plan is what gets spoken in one output segment.
//
// Phrases[0] is always the empty lead-in (rendered as silence); Phrases[1:]
// are the ticks in time order. Each phrase is padded before concatenation so
// that tick i starts exactly at its scheduled minute.
type Plan struct {
	Title    string
	Phrases  []string
	Offset   int
	Interval int
}

// Ticks returns the tick phrases without the lead-in.
func (p Plan) Ticks() []string {
	if len(p.Phrases) == 0 {
		return nil
	}
	return p.Phrases[1:]
}

// PaddingSamples returns the padded length of every phrase clip, in samples.
// The lead-in lasts Offset minutes, every tick lasts Interval minutes.
func (p Plan) PaddingSamples(sampleRate int) []int64 {
	pads := make([]int64, len(p.Phrases))
	for i := range p.Phrases {
		minutes := p.Interval
		if i == 0 {
			minutes = p.Offset
		}
		pads[i] = int64(sampleRate) * 60 * int64(minutes)
	}
	return pads
}

// BuildPlan renders the title and tick phrases for segment (zero based).
func (c Composer) BuildPlan(s schedule.Schedule, track placeholder.Values, segment int) Plan {
	plan := Plan{
		Title:    c.Title(track, c.SegmentValues(segment, s.SegmentCount)),
		Phrases:  []string{""},
		Offset:   c.TickOffset,
		Interval: c.TickInterval,
	}
	if c.TickFormat == "" {
		return plan
	}
	for _, m := range s.TickOffsets {
		plan.Phrases = append(plan.Phrases, c.Tick(track, schedule.SpokenMinutes(m, c.TickAdd)))
	}
	return plan
}

// Title renders the title format: track values first, then segment context.
func (c Composer) Title(track, segment placeholder.Values) string {
	title := placeholder.Render(c.TitleFormat, track)
	title = placeholder.Render(title, segment)
	return Speakable(title)
}

// Tick renders the tick phrase announcing minutes.
func (c Composer) Tick(track placeholder.Values, minutes int) string {
	n := strconv.Itoa(minutes)
	values := placeholder.Merge(track, placeholder.Values{
		"minutes":        n,
		"minutes_digits": SeparateDigits(n, " "),
	})
	return Speakable(placeholder.Render(c.TickFormat, values))
}

// SegmentValues are the segment context placeholders for segment (zero based) of count.
func (c Composer) SegmentValues(segment, count int) placeholder.Values {
	v := placeholder.Values{
		"config_name":    c.ConfigName,
		"segment_number": "",
		"segment_count":  strconv.Itoa(count),
		"segment_name":   "",
	}
	if c.Split {
		v["segment_number"] = strconv.Itoa(segment + 1)
	}
	if count > 1 {
		v["segment_name"] = fmt.Sprintf("segment %d", segment+1)
	}
	return v
}

// PadConcatFilter builds the ffmpeg filter graph that pads input i to
// pads[i] samples and concatenates all of them in order.
func PadConcatFilter(pads []int64) string {
	var b strings.Builder
	for i, n := range pads {
		fmt.Fprintf(&b, "[%d]apad=whole_len=%d[g%d];", i, n, i)
	}
	for i := range pads {
		fmt.Fprintf(&b, "[g%d]", i)
	}
	fmt.Fprintf(&b, "concat=n=%d:v=0:a=1", len(pads))
	return b.String()
}
