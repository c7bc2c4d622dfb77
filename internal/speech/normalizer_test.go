package speech

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpeakable(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Track 007 - Warmup", "Track 7, Warmup"},
		{"5 minutes", "5 minutes"},
		{"Track 013", "Track 13"},
		{"Track 005", "Track 5"},
		{"  Intervals    and   more  ", "Intervals and more"},
		{"00 minutes", "0 minutes"},
		{"A-B", "A,B"},
		{"Part 1 - 02", "Part 1, 2"},
		{"0 and 07", "0 and 7"},
		{"99999999999999999999999999 laps", "99999999999999999999999999 laps"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Speakable(tt.in))
		})
	}
}

func TestSpeakableIsStable(t *testing.T) {
	once := Speakable("Track 007 - Warmup")
	assert.Equal(t, once, Speakable(once))
}

func TestSeparateDigits(t *testing.T) {
	assert.Equal(t, "1 5", SeparateDigits("15", " "))
	assert.Equal(t, "5", SeparateDigits("5", " "))
	assert.Equal(t, "1,2,0", SeparateDigits("120", ","))
	assert.Equal(t, "", SeparateDigits("", " "))
}
