package segmentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"porestream/internal/models"
)

// bimodalVolume holds half its voxels at level 50 and half at 200.
func bimodalVolume() (*models.Volume, *models.Histogram) {
	v := models.NewVolume(2, 2, 2)
	copy(v.Data, []uint8{50, 50, 50, 50, 200, 200, 200, 200})
	return v, models.NewHistogram(v)
}

func TestMeanLevel(t *testing.T) {
	_, h := bimodalVolume()

	assert.InDelta(t, 125.0, MeanLevel(h, 0, 255), 1e-9)
	assert.InDelta(t, 50.0, MeanLevel(h, 0, 100), 1e-9)
	assert.InDelta(t, 200.0, MeanLevel(h, 101, 255), 1e-9)
}

func TestMovingAverageFilter(t *testing.T) {
	t.Run("spreads a spike over the window", func(t *testing.T) {
		var h1 [256]float64
		h1[100] = 1.0
		smoothed := MovingAverageFilter(h1, 3)

		assert.InDelta(t, 1.0/3.0, smoothed[99], 1e-9)
		assert.InDelta(t, 1.0/3.0, smoothed[100], 1e-9)
		assert.InDelta(t, 1.0/3.0, smoothed[101], 1e-9)
		assert.InDelta(t, 0.0, smoothed[98], 1e-9)
	})

	t.Run("stays normalised", func(t *testing.T) {
		var h1 [256]float64
		h1[0], h1[10], h1[255] = 0.25, 0.5, 0.25
		smoothed := MovingAverageFilter(h1, 5)

		total := 0.0
		for _, v := range smoothed {
			total += v
		}
		assert.InDelta(t, 1.0, total, 1e-9)
	})
}

func TestFindLocalExtrema(t *testing.T) {
	var h1 [256]float64
	h1[12], h1[14], h1[16] = 3, 1, 3
	h1[11], h1[13], h1[15], h1[17] = 2, 2, 2, 2

	assert.Equal(t, []int{12, 16}, FindLocalMaxima(h1, 0, 255))
	assert.Equal(t, []int{14}, FindLocalMinima(h1, 10, 18))

	t.Run("endpoints are excluded", func(t *testing.T) {
		assert.Empty(t, FindLocalMaxima(h1, 12, 16))
	})
}

func TestEntropyLike(t *testing.T) {
	assert.Equal(t, 0.0, EntropyLike(0))
	assert.Equal(t, 0.0, EntropyLike(1))
	assert.Greater(t, EntropyLike(0.5), 0.0)
}

func TestSegmentMethods(t *testing.T) {
	cases := []struct {
		method Method
		level  uint8
	}{
		{GlobalIsoData, 125},
		{GlobalOtsu, 50},
		{GlobalMean, 125},
		{GlobalMedian, 50},
		{GlobalLi, 108},
		{GlobalMoments, 50},
		{GlobalMaxShannonEntropy, 50},
	}
	for _, tc := range cases {
		t.Run(string(tc.method), func(t *testing.T) {
			v, h := bimodalVolume()
			level, err := Segment(v, h, tc.method, -1)
			require.NoError(t, err)
			assert.Equal(t, tc.level, level)

			// Any level between the modes separates them identically.
			assert.Equal(t, []uint8{0, 0, 0, 0, 1, 1, 1, 1}, v.Data)
		})
	}

	t.Run(string(GlobalShanbhag), func(t *testing.T) {
		v, h := bimodalVolume()
		level, err := Segment(v, h, GlobalShanbhag, -1)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, level, uint8(50))
		assert.Less(t, level, uint8(200))
		assert.Equal(t, []uint8{0, 0, 0, 0, 1, 1, 1, 1}, v.Data)
	})
}

func TestSegmentManual(t *testing.T) {
	t.Run("applies the user threshold", func(t *testing.T) {
		v, h := bimodalVolume()
		level, err := Segment(v, h, GlobalManual, 100)
		require.NoError(t, err)
		assert.Equal(t, uint8(100), level)
		assert.Equal(t, []uint8{0, 0, 0, 0, 1, 1, 1, 1}, v.Data)
	})

	t.Run("requires a threshold", func(t *testing.T) {
		v, h := bimodalVolume()
		_, err := Segment(v, h, GlobalManual, -1)
		assert.ErrorIs(t, err, ErrNoThreshold)
	})
}

func TestSegmentModeMethods(t *testing.T) {
	// Two triangular bumps around levels 12 and 16 with a single
	// valley at 14.
	counts := map[uint8]int{10: 1, 11: 2, 12: 3, 13: 2, 14: 1, 15: 2, 16: 3, 17: 2, 18: 1}
	v := models.NewVolume(17, 1, 1)
	i := 0
	for level := uint8(10); level <= 18; level++ {
		for n := 0; n < counts[level]; n++ {
			v.Data[i] = level
			i++
		}
	}
	h := models.NewHistogram(v)

	t.Run(string(GlobalMinimum), func(t *testing.T) {
		level, err := Segment(v, h, GlobalMinimum, -1)
		require.NoError(t, err)
		assert.Equal(t, uint8(14), level)
	})

	t.Run(string(GlobalIntermodes), func(t *testing.T) {
		level, err := Segment(v, h, GlobalIntermodes, -1)
		require.NoError(t, err)
		assert.Equal(t, uint8(14), level)
	})

	t.Run("unimodal histogram is a recoverable error", func(t *testing.T) {
		flat := models.NewVolume(4, 1, 1)
		_, err := Segment(flat, models.NewHistogram(flat), GlobalMinimum, -1)
		assert.Error(t, err)
	})
}

func TestIsValidMethod(t *testing.T) {
	for _, m := range Methods {
		assert.True(t, IsValidMethod(string(m)))
	}
	assert.False(t, IsValidMethod("global_magic"))
	assert.False(t, IsValidMethod(""))
}
