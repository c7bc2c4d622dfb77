package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSingleSegment(t *testing.T) {
	s, err := Compute(Params{TotalMinutes: 22, Interval: 5, Offset: 5, TicksEnabled: true})
	require.NoError(t, err)

	assert.Equal(t, 1, s.SegmentCount)
	assert.Equal(t, 22, s.SegmentDurationMinutes)
	assert.Equal(t, []int{5, 10, 15, 20}, s.TickOffsets)
}

func TestComputeSplit(t *testing.T) {
	s, err := Compute(Params{TotalMinutes: 22, Interval: 5, Offset: 5, SplitMinutes: 10, TicksEnabled: true})
	require.NoError(t, err)

	assert.Equal(t, 2, s.SegmentCount)
	assert.Equal(t, 10, s.SegmentDurationMinutes)
	assert.Equal(t, []int{5}, s.TickOffsets)
}

func TestComputeTicksDisabled(t *testing.T) {
	s, err := Compute(Params{TotalMinutes: 60, Interval: 1, Offset: 1, TicksEnabled: false})
	require.NoError(t, err)
	assert.Empty(t, s.TickOffsets)
	assert.Equal(t, 1, s.SegmentCount)
}

func TestComputeSegmentTooShort(t *testing.T) {
	_, err := Compute(Params{TotalMinutes: 30, Interval: 5, Offset: 5, SplitMinutes: 3, TicksEnabled: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSegmentTooShort)

	var short *SegmentTooShortError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, 6, short.Min)
	assert.Equal(t, 3, short.Actual)
}

func TestComputeTrackTooShort(t *testing.T) {
	_, err := Compute(Params{TotalMinutes: 5, Interval: 5, Offset: 5, TicksEnabled: true})
	assert.ErrorIs(t, err, ErrSegmentTooShort)

	_, err = Compute(Params{TotalMinutes: 6, Interval: 5, Offset: 5, TicksEnabled: true})
	assert.NoError(t, err)
}

func TestComputeRejectsBadParams(t *testing.T) {
	tests := []struct {
		name string
		p    Params
	}{
		{"zero interval", Params{TotalMinutes: 10, Interval: 0, Offset: 1}},
		{"zero offset", Params{TotalMinutes: 10, Interval: 1, Offset: 0}},
		{"negative split", Params{TotalMinutes: 10, Interval: 1, Offset: 1, SplitMinutes: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.p)
			assert.Error(t, err)
		})
	}
}

func TestComputeProperties(t *testing.T) {
	for total := 2; total <= 90; total += 7 {
		for interval := 1; interval <= 12; interval++ {
			for offset := 1; offset < total; offset += 3 {
				p := Params{TotalMinutes: total, Interval: interval, Offset: offset, TicksEnabled: true}
				s, err := Compute(p)
				require.NoError(t, err)

				require.NotEmpty(t, s.TickOffsets)
				assert.Equal(t, offset, s.TickOffsets[0])
				for i, m := range s.TickOffsets {
					assert.Less(t, m, s.SegmentDurationMinutes)
					if i > 0 {
						assert.Greater(t, m, s.TickOffsets[i-1])
					}
				}

				again, err := Compute(p)
				require.NoError(t, err)
				assert.Equal(t, s, again)
			}
		}
	}
}

func TestSegmentCount(t *testing.T) {
	tests := []struct {
		total, split, want int
	}{
		{22, 10, 2},
		{25, 10, 3},
		{24, 10, 2},
		{10, 10, 1},
		{4, 10, 1},
		{0, 10, 1},
		{30, 0, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SegmentCount(tt.total, tt.split), "total=%d split=%d", tt.total, tt.split)
	}
}

func TestSpokenMinutes(t *testing.T) {
	assert.Equal(t, 5, SpokenMinutes(5, 0))
	assert.Equal(t, 35, SpokenMinutes(5, 30))
}
