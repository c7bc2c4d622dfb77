package metadata

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"voicestamp/internal/placeholder"
	"voicestamp/pkg/utils"
)

var (
	// ErrSourceNotFound is returned when the input file does not exist.
	ErrSourceNotFound = errors.New("source file not found")
	// ErrUnreadableAudio is returned when the file cannot be probed as audio.
	ErrUnreadableAudio = errors.New("unreadable audio file")
	// ErrTagWrite is returned when output tags cannot be written.
	ErrTagWrite = errors.New("failed to write tags")
)

// Probe is the raw result of inspecting an audio file.
type Probe struct {
	Duration   time.Duration
	Bitrate    int // bits per second
	SampleRate int
	Tags       map[string][]string
}

// Prober inspects audio files.
type Prober interface {
	Probe(ctx context.Context, path string) (Probe, error)
}

// Track describes one input file. It is built once by Load and not modified afterwards.
type Track struct {
	Path     string
	BaseName string // file name without directory and extension
	Ext      string // extension without the dot

	DurationSeconds float64
	DurationMinutes int
	Bitrate         int

	Title       string
	Artist      string
	AlbumArtist string
	AlbumTitle  string
	Composer    string
	Performer   string
	Comment     string
	TrackNumber string
}

// Load probes path and builds its Track.
func Load(ctx context.Context, p Prober, path string) (Track, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Track{}, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return Track{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	probe, err := p.Probe(ctx, path)
	if err != nil {
		return Track{}, fmt.Errorf("%w: %s: %v", ErrUnreadableAudio, path, err)
	}
	if probe.Duration <= 0 {
		return Track{}, fmt.Errorf("%w: %s has no duration", ErrUnreadableAudio, path)
	}

	name, ext := utils.SplitFileName(path)

	t := Track{
		Path:            path,
		BaseName:        name,
		Ext:             ext,
		DurationSeconds: probe.Duration.Seconds(),
		DurationMinutes: DurationMinutes(probe.Duration),
		Bitrate:         probe.Bitrate,
		Title:           firstTag(probe.Tags, TagTitle),
		Artist:          firstTag(probe.Tags, TagArtist),
		AlbumArtist:     firstTag(probe.Tags, TagAlbumArtist),
		AlbumTitle:      firstTag(probe.Tags, TagAlbum),
		Composer:        firstTag(probe.Tags, TagComposer),
		Performer:       firstTag(probe.Tags, TagPerformer),
		Comment:         firstTag(probe.Tags, TagComment),
		TrackNumber:     firstTag(probe.Tags, TagTrackNumber),
	}

	if t.Title == "" {
		t.Title = t.BaseName
	}
	if t.Artist == "" {
		t.Artist = t.AlbumArtist
	}
	// some taggers store "-1" for "no track number"
	if t.TrackNumber == "-1" {
		t.TrackNumber = ""
	}

	return t, nil
}

// DurationMinutes rounds d up to whole minutes.
func DurationMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Minutes()))
}

// Placeholders returns the track related template values.
func (t Track) Placeholders() placeholder.Values {
	return placeholder.Values{
		"file_name":    t.BaseName,
		"track_number": t.TrackNumber,
		"title":        t.Title,
		"artist":       t.Artist,
		"album_artist": t.AlbumArtist,
		"album_title":  t.AlbumTitle,
		"composer":     t.Composer,
		"performer":    t.Performer,
		"comment":      t.Comment,
	}
}

// LAME VBR average bitrates in kbps, best quality first.
var qualityLadder = [...]int{245, 225, 190, 175, 165, 130, 115, 100, 85, 65}

// EncodingQuality maps a bitrate in bits per second to a LAME -q:a level.
// 0 is the best quality; anything below the lowest rung maps to 9.
func EncodingQuality(bitrate int) int {
	for q, kbps := range qualityLadder {
		if bitrate >= kbps*1000 {
			return q
		}
	}
	return len(qualityLadder) - 1
}

// EncodingQuality is the encoder quality matching the source bitrate.
func (t Track) EncodingQuality() int {
	return EncodingQuality(t.Bitrate)
}

func firstTag(tags map[string][]string, key string) string {
	if vals, ok := tags[key]; ok {
		for _, v := range vals {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}
