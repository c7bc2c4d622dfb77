// Package output resolves where stamped files are written.
package output

import (
	"errors"
	"fmt"
	"path/filepath"

	"voicestamp/internal/placeholder"
	"voicestamp/pkg/utils"
)

var (
	// ErrTargetExists is returned when the resolved file exists and overwriting is off.
	ErrTargetExists = errors.New("target file already exists")
	// ErrInvalidTarget is returned when a single file target is used for several outputs.
	ErrInvalidTarget = errors.New("output target cannot hold several files")
)

// DefaultFormat names outputs after their input.
const DefaultFormat = "{name} (voicestamped){segment_name}.{ext}"

// Namer derives output paths from a file name format.
type Namer struct {
	// Format may use {name}, {segment_name} and {ext}.
	Format string
	// Target is empty (next to the input), a directory, or a file path.
	Target string
	Force  bool
}

// SegmentName is the file name qualifier of segment n (one based).
func SegmentName(n int) string {
	return fmt.Sprintf(" (segment %03d)", n)
}

// Resolve returns the output path for input. segment is nil for files that
// are not split. When the path exists and Force is off, the path is returned
// together with an error wrapping ErrTargetExists.
func (n Namer) Resolve(input string, segment *int) (string, error) {
	name, ext := utils.SplitFileName(input)

	values := placeholder.Values{
		"name":         name,
		"segment_name": "",
		"ext":          ext,
	}
	if segment != nil {
		values["segment_name"] = SegmentName(*segment)
	}

	format := n.Format
	if format == "" {
		format = DefaultFormat
	}
	fileName := placeholder.Render(format, values)

	var path string
	switch {
	case n.Target == "":
		path = filepath.Join(filepath.Dir(input), fileName)
	case utils.IsDir(n.Target):
		path = filepath.Join(n.Target, fileName)
	default:
		// a file target, existing or not, is used verbatim
		if segment != nil {
			return "", fmt.Errorf("%w: %s", ErrInvalidTarget, n.Target)
		}
		path = n.Target
	}

	if utils.Exists(path) && !n.Force {
		return path, fmt.Errorf("%w: %s (use force to overwrite)", ErrTargetExists, path)
	}
	return path, nil
}
