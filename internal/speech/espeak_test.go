package speech

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	name string
	args []string
	text string
	err  error
}

func (r *recordingRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.name = name
	r.args = args
	if data, err := os.ReadFile(args[len(args)-1]); err == nil {
		r.text = string(data)
	}
	return nil, []byte("espeak: error"), r.err
}

func TestESpeakSynthesize(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "0.wav")
	r := &recordingRunner{}

	require.NoError(t, NewESpeak("", 150, r).Synthesize(context.Background(), "-5 minutes", out))

	assert.Equal(t, "espeak", r.name)
	require.Len(t, r.args, 7)
	assert.Equal(t, []string{"-s", "150", "-z", "-w", out, "-f"}, r.args[:6])
	assert.Equal(t, "-5 minutes", r.text)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".txt"), "phrase file left behind: %s", e.Name())
	}
}

func TestESpeakFailure(t *testing.T) {
	r := &recordingRunner{err: errors.New("exit status 1")}
	err := NewESpeak("espeak-ng", 200, r).Synthesize(context.Background(), "hello", filepath.Join(t.TempDir(), "x.wav"))
	assert.ErrorIs(t, err, ErrSynthesis)
	assert.Equal(t, "espeak-ng", r.name)
}

func TestSampleRate(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available, skipping sample rate test")
	}
	path := filepath.Join(t.TempDir(), "clip.wav")
	cmd := exec.Command("ffmpeg", "-f", "lavfi", "-i", "anullsrc=r=22050:cl=mono", "-t", "0.5", path)
	require.NoError(t, cmd.Run())

	rate, err := SampleRate(path)
	require.NoError(t, err)
	assert.Equal(t, 22050, rate)

	_, err = SampleRate(filepath.Join(t.TempDir(), "missing.wav"))
	assert.ErrorIs(t, err, ErrSynthesis)
}
