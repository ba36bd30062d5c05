package segmentation

import (
	"math"

	"porestream/internal/models"
)

// MeanLevel returns the mean greyscale level of the histogram within
// [lStart, lEnd], weighting each level by its normalised frequency.
// The normalisation assumes H2(-1) = 0.
func MeanLevel(h *models.Histogram, lStart, lEnd int) float64 {
	numerator := 0.0
	for l := lStart; l <= lEnd; l++ {
		numerator += float64(l) * h.H1[l]
	}
	denominator := h.H2[lEnd]
	if lStart > 0 {
		denominator -= h.H2[lStart-1]
	}
	return numerator / denominator
}

// MovingAverageFilter smooths the normalised histogram with a central
// moving average. The window must be odd; near the edges the window
// shrinks to the largest centred size that fits. The result is
// renormalised to sum to one.
func MovingAverageFilter(h1 [256]float64, window int) [256]float64 {
	halfWidth := (window - 1) / 2
	var smoothed [256]float64

	for l := 0; l < halfWidth; l++ {
		adaptive := 2*l + 1
		head, tail := 0.0, 0.0
		for i := 0; i < adaptive; i++ {
			head += h1[i]
			tail += h1[255-i]
		}
		smoothed[l] = head / float64(adaptive)
		smoothed[255-l] = tail / float64(adaptive)
	}

	for l := halfWidth; l < 256-halfWidth; l++ {
		sum := 0.0
		for i := l - halfWidth; i <= l+halfWidth; i++ {
			sum += h1[i]
		}
		smoothed[l] = sum / float64(window)
	}

	total := 0.0
	for _, v := range smoothed {
		total += v
	}
	for l := range smoothed {
		smoothed[l] /= total
	}
	return smoothed
}

// FindLocalMaxima returns the levels strictly inside (lStart, lEnd)
// whose frequency exceeds both neighbours. Interval endpoints are
// never maxima.
func FindLocalMaxima(h1 [256]float64, lStart, lEnd int) []int {
	var maxima []int
	for l := lStart + 1; l < lEnd; l++ {
		if h1[l] > math.Max(h1[l-1], h1[l+1]) {
			maxima = append(maxima, l)
		}
	}
	return maxima
}

// FindLocalMinima mirrors FindLocalMaxima for minima.
func FindLocalMinima(h1 [256]float64, lStart, lEnd int) []int {
	var minima []int
	for l := lStart + 1; l < lEnd; l++ {
		if h1[l] < math.Min(h1[l-1], h1[l+1]) {
			minima = append(minima, l)
		}
	}
	return minima
}

// EntropyLike is -x ln x, continued with 0 at x = 0.
func EntropyLike(x float64) float64 {
	if x == 0 {
		return 0
	}
	return -x * math.Log(x)
}
