package metadata

import (
	"context"
	"fmt"

	"go.senan.xyz/taglib"
)

// Tag keys as exposed by TagLib's property map. ID3v2 frames map as
// TIT2, TPE1, TPE2, TALB, TCOM, TOPE, COMM and TRCK.
const (
	TagTitle            = taglib.Title
	TagArtist           = taglib.Artist
	TagAlbumArtist      = taglib.AlbumArtist
	TagAlbum            = taglib.Album
	TagTrackNumber      = taglib.TrackNumber
	TagComposer         = "COMPOSER"
	TagPerformer        = "ORIGINALARTIST"
	TagComment          = "COMMENT"
	TagOriginalFilename = "ORIGINALFILENAME"
	TagEncoding         = "ENCODING"
)

// TaglibProber reads duration, bitrate and tags with TagLib.
type TaglibProber struct{}

var _ Prober = TaglibProber{}

func (TaglibProber) Probe(ctx context.Context, path string) (Probe, error) {
	if err := ctx.Err(); err != nil {
		return Probe{}, err
	}

	props, err := taglib.ReadProperties(path)
	if err != nil {
		return Probe{}, fmt.Errorf("failed to read properties of %s: %w", path, err)
	}

	tags, err := taglib.ReadTags(path)
	if err != nil {
		return Probe{}, fmt.Errorf("failed to read tags of %s: %w", path, err)
	}

	return Probe{
		Duration:   props.Length,
		Bitrate:    int(props.Bitrate) * 1000,
		SampleRate: int(props.SampleRate),
		Tags:       tags,
	}, nil
}
