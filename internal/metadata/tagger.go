package metadata

import (
	"fmt"

	"go.senan.xyz/taglib"
)

// WriteTags copies the source track's tags onto a stamped output file.
// The title is replaced with the spoken title so players show what is announced.
// Empty values are skipped. software, when set, goes to the encoder tag.
func WriteTags(path string, track Track, spokenTitle, software string) error {
	tags := make(map[string][]string)

	set := func(key, value string) {
		if value != "" {
			tags[key] = []string{value}
		}
	}

	set(TagTitle, spokenTitle)
	set(TagAlbum, track.AlbumTitle)
	set(TagAlbumArtist, track.AlbumArtist)
	set(TagArtist, track.Artist)
	set(TagComposer, track.Composer)
	set(TagTrackNumber, track.TrackNumber)
	set(TagOriginalFilename, track.BaseName+extSuffix(track.Ext))
	set(TagEncoding, software)

	if err := taglib.WriteTags(path, tags, 0); err != nil {
		return fmt.Errorf("%w to %s: %v", ErrTagWrite, path, err)
	}
	return nil
}

// Tagger adapts WriteTags to a fixed software string.
type Tagger struct {
	Software string
}

func (t Tagger) Write(path string, track Track, spokenTitle string) error {
	return WriteTags(path, track, spokenTitle, t.Software)
}

func extSuffix(ext string) string {
	if ext == "" {
		return ""
	}
	return "." + ext
}
