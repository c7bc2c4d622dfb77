// Package placeholder renders "{key}" templates against flat string maps.
//
// Rendering never fails on unknown keys: a token whose key is missing from the
// map is left in place, so a template can be filled in several passes (track
// tags first, segment context later).
package placeholder

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrInvalidTemplateType is returned by RenderValue when the template is not a string.
	ErrInvalidTemplateType = errors.New("template must be a string")
	// ErrInvalidPlaceholderMapType is returned by RenderValue when values is not a flat string map.
	ErrInvalidPlaceholderMapType = errors.New("placeholders must be a flat key/value map")
)

// Values maps placeholder names to their substitution text.
type Values map[string]string

var tokenPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// Render replaces every {key} in tmpl with values[key]. Unknown keys are kept verbatim.
func Render(tmpl string, values Values) string {
	if len(values) == 0 || tmpl == "" {
		return tmpl
	}
	return tokenPattern.ReplaceAllStringFunc(tmpl, func(token string) string {
		if v, ok := values[token[1:len(token)-1]]; ok {
			return v
		}
		return token
	})
}

// RenderValue is Render for loosely typed input, such as decoded JSON.
// Map values are stringified; nested maps or slices are rejected.
func RenderValue(tmpl any, values any) (string, error) {
	s, ok := tmpl.(string)
	if !ok {
		return "", fmt.Errorf("%w, %T given", ErrInvalidTemplateType, tmpl)
	}

	var flat Values
	switch m := values.(type) {
	case nil:
		flat = Values{}
	case Values:
		flat = m
	case map[string]string:
		flat = Values(m)
	case map[string]any:
		flat = make(Values, len(m))
		for k, v := range m {
			switch v.(type) {
			case map[string]any, []any, map[string]string, []string:
				return "", fmt.Errorf("%w: key %q holds %T", ErrInvalidPlaceholderMapType, k, v)
			case nil:
				flat[k] = ""
			default:
				flat[k] = fmt.Sprint(v)
			}
		}
	default:
		return "", fmt.Errorf("%w, %T given", ErrInvalidPlaceholderMapType, values)
	}

	return Render(s, flat), nil
}

// Merge combines maps left to right. On key conflicts the later map wins.
func Merge(maps ...Values) Values {
	size := 0
	for _, m := range maps {
		size += len(m)
	}
	out := make(Values, size)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// Keys reports the placeholder names still present in s.
func Keys(s string) []string {
	matches := tokenPattern.FindAllStringSubmatch(s, -1)
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		keys = append(keys, m[1])
	}
	return keys
}
