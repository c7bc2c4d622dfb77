package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name   string
		tmpl   string
		values Values
		want   string
	}{
		{"two keys", "{title} by {artist}", Values{"title": "Run", "artist": "X"}, "Run by X"},
		{"missing key left literal", "{title}", Values{}, "{title}"},
		{"nil map", "{title}", nil, "{title}"},
		{"partial", "{title} {minutes}", Values{"title": "Run"}, "Run {minutes}"},
		{"repeated key", "{m} and {m}", Values{"m": "5"}, "5 and 5"},
		{"empty value", "[{comment}]", Values{"comment": ""}, "[]"},
		{"no tokens", "plain text", Values{"a": "b"}, "plain text"},
		{"unbalanced braces", "{title", Values{"title": "Run"}, "{title"},
		{"value with braces not rescanned", "{a}", Values{"a": "{b}", "b": "x"}, "{b}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.tmpl, tt.values))
		})
	}
}

func TestRenderTwoPassIsIdempotent(t *testing.T) {
	first := Render("{title} {segment_name}", Values{"title": "Intervals"})
	assert.Equal(t, "Intervals {segment_name}", first)

	second := Render(first, Values{"segment_name": "segment 2"})
	assert.Equal(t, "Intervals segment 2", second)

	// nothing left to substitute
	assert.Equal(t, second, Render(second, Values{"title": "Other", "segment_name": "x"}))
}

func TestRenderValue(t *testing.T) {
	got, err := RenderValue("{minutes} minutes", map[string]any{"minutes": 15})
	require.NoError(t, err)
	assert.Equal(t, "15 minutes", got)

	got, err = RenderValue("{a}{b}", map[string]string{"a": "1", "b": "2"})
	require.NoError(t, err)
	assert.Equal(t, "12", got)

	got, err = RenderValue("{a}", nil)
	require.NoError(t, err)
	assert.Equal(t, "{a}", got)

	_, err = RenderValue(42, Values{})
	assert.ErrorIs(t, err, ErrInvalidTemplateType)

	_, err = RenderValue("{a}", []string{"a"})
	assert.ErrorIs(t, err, ErrInvalidPlaceholderMapType)

	_, err = RenderValue("{a}", map[string]any{"a": map[string]any{"b": 1}})
	assert.ErrorIs(t, err, ErrInvalidPlaceholderMapType)
}

func TestMergeLaterWins(t *testing.T) {
	base := Values{"title": "tag title", "artist": "A"}
	extra := Values{"title": "override", "minutes": "5"}

	merged := Merge(base, extra)
	assert.Equal(t, Values{"title": "override", "artist": "A", "minutes": "5"}, merged)
	assert.Equal(t, "tag title", base["title"], "inputs must not be modified")
}

func TestKeys(t *testing.T) {
	assert.Equal(t, []string{"title", "minutes"}, Keys("{title} at {minutes}"))
	assert.Empty(t, Keys("nothing here"))
}
