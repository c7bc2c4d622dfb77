package speech

import (
	"regexp"
	"strings"
)

var (
	multiSpace = regexp.MustCompile(` +`)
	dashPause  = regexp.MustCompile(`\s*-`)
	digitRun   = regexp.MustCompile(`[0-9]{2,}`)
)

// Speakable prepares text for the synthesizer:
//   - runs of spaces collapse to one
//   - "-" becomes "," (with any whitespace before it dropped) to force a short pause
//   - multi-digit numbers lose their leading zeros, so "Track 013" is read as "Track 13"
//
// Single digits are left alone. The result is trimmed.
func Speakable(text string) string {
	text = multiSpace.ReplaceAllString(text, " ")
	text = dashPause.ReplaceAllString(text, ",")
	text = digitRun.ReplaceAllStringFunc(text, stripLeadingZeros)
	return strings.TrimSpace(text)
}

func stripLeadingZeros(run string) string {
	trimmed := strings.TrimLeft(run, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// SeparateDigits puts sep between every character of s, so "15" can be
// spoken as "1 5" instead of "fifteen".
func SeparateDigits(s, sep string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	chars := strings.Split(s, "")
	return strings.Join(chars, sep)
}
