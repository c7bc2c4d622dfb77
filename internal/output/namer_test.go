package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestResolveNextToInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "Warmup.mp3")

	got, err := Namer{}.Resolve(input, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Warmup (voicestamped).mp3"), got)

	got, err = Namer{}.Resolve(input, intPtr(2))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Warmup (voicestamped) (segment 002).mp3"), got)
}

func TestResolveCustomFormat(t *testing.T) {
	n := Namer{Format: "{name}{segment_name} [stamped].{ext}"}
	got, err := n.Resolve("/music/Run.mp3", intPtr(12))
	require.NoError(t, err)
	assert.Equal(t, "/music/Run (segment 012) [stamped].mp3", got)
}

func TestResolveDirectoryTarget(t *testing.T) {
	out := t.TempDir()
	got, err := Namer{Target: out}.Resolve("/music/Run.mp3", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "Run (voicestamped).mp3"), got)
}

func TestResolveFileTarget(t *testing.T) {
	target := filepath.Join(t.TempDir(), "result.mp3")

	got, err := Namer{Target: target}.Resolve("/music/Run.mp3", nil)
	require.NoError(t, err)
	assert.Equal(t, target, got)

	_, err = Namer{Target: target}.Resolve("/music/Run.mp3", intPtr(1))
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestResolveCollision(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "Run (voicestamped).mp3")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0o644))

	got, err := Namer{}.Resolve(filepath.Join(dir, "Run.mp3"), nil)
	assert.ErrorIs(t, err, ErrTargetExists)
	assert.Equal(t, existing, got, "path is still reported")

	got, err = Namer{Force: true}.Resolve(filepath.Join(dir, "Run.mp3"), nil)
	require.NoError(t, err)
	assert.Equal(t, existing, got)
}

func TestSegmentName(t *testing.T) {
	assert.Equal(t, " (segment 001)", SegmentName(1))
	assert.Equal(t, " (segment 100)", SegmentName(100))
}
