// Package segmentation thresholds a greyscale rock volume into pore
// and solid phases. All methods are global: they derive a single
// threshold from the greyscale histogram and binarise the volume in
// place, with pore voxels ending up at 0 and solid at 1.
package segmentation

import (
	"errors"
	"fmt"
	"math"

	"porestream/internal/models"
)

// Method names a global segmentation algorithm.
type Method string

const (
	GlobalManual            Method = "global_manual"
	GlobalIsoData           Method = "global_isodata"
	GlobalOtsu              Method = "global_otsu"
	GlobalMean              Method = "global_mean"
	GlobalMedian            Method = "global_median"
	GlobalLi                Method = "global_li"
	GlobalMinimum           Method = "global_minimum"
	GlobalIntermodes        Method = "global_intermodes"
	GlobalMoments           Method = "global_moments"
	GlobalMaxShannonEntropy Method = "global_maxshannonentropy"
	GlobalShanbhag          Method = "global_shanbhag"
)

// Methods lists every recognised segmentation method.
var Methods = []Method{
	GlobalManual, GlobalIsoData, GlobalOtsu, GlobalMean, GlobalMedian,
	GlobalLi, GlobalMinimum, GlobalIntermodes, GlobalMoments,
	GlobalMaxShannonEntropy, GlobalShanbhag,
}

// IsValidMethod reports whether name is a recognised method.
func IsValidMethod(name string) bool {
	for _, m := range Methods {
		if Method(name) == m {
			return true
		}
	}
	return false
}

// ErrNoThreshold is returned by the manual method when the user did
// not provide a threshold.
var ErrNoThreshold = errors.New("segmentation: the manual method requires a threshold")

// applyThreshold binarises the volume: values above t become 1
// (solid), the rest 0 (pore).
func applyThreshold(v *models.Volume, t uint8) {
	for i, value := range v.Data {
		if value > t {
			v.Data[i] = 1
		} else {
			v.Data[i] = 0
		}
	}
}

// Segment derives the threshold with the requested method and
// binarises the volume in place. The user threshold is only consulted
// by the manual method; pass a negative value otherwise. Returns the
// threshold actually applied.
func Segment(v *models.Volume, h *models.Histogram, method Method, userThreshold int) (uint8, error) {
	var (
		t   uint8
		err error
	)
	switch method {
	case GlobalManual:
		t, err = manualThreshold(userThreshold)
	case GlobalIsoData:
		t = isoDataThreshold(h)
	case GlobalOtsu:
		t = otsuThreshold(h)
	case GlobalMean:
		t = uint8(MeanLevel(h, 0, 255))
	case GlobalMedian:
		t = medianThreshold(h)
	case GlobalLi:
		t = liThreshold(h)
	case GlobalMinimum:
		t, err = minimumThreshold(h)
	case GlobalIntermodes:
		t, err = intermodesThreshold(h)
	case GlobalMoments:
		t = momentsThreshold(h)
	case GlobalMaxShannonEntropy:
		t = maxShannonEntropyThreshold(h)
	case GlobalShanbhag:
		t = shanbhagThreshold(h)
	default:
		return 0, fmt.Errorf("segmentation: unknown method %q", method)
	}
	if err != nil {
		return 0, err
	}
	applyThreshold(v, t)
	return t, nil
}

func manualThreshold(userThreshold int) (uint8, error) {
	if userThreshold < 0 {
		return 0, ErrNoThreshold
	}
	return uint8(userThreshold), nil
}

// isoDataThreshold iterates the Ridler & Calvard (1978) scheme: the
// threshold converges to the midpoint of the background and
// foreground mean levels.
func isoDataThreshold(h *models.Histogram) uint8 {
	tentative := 0
	for l, v := range h.H1 {
		if v > 0 {
			tentative = l
			break
		}
	}
	for {
		tentative++
		bgMean := int(MeanLevel(h, 0, tentative-1))
		fgMean := int(MeanLevel(h, tentative+1, 255))
		target := int(math.Round(float64(bgMean+fgMean) / 2.0))
		if tentative == target {
			return uint8(tentative)
		}
	}
}

// otsuThreshold maximises the inter-class variance (Otsu, 1979).
func otsuThreshold(h *models.Histogram) uint8 {
	mean := MeanLevel(h, 0, 255)
	best := 0
	bestVariance := math.Inf(-1)
	cum := 0.0
	for t := 0; t < 256; t++ {
		cum += float64(t) * h.H1[t]
		bgMean := cum / h.H2[t]
		fgMean := (mean - bgMean*h.H2[t]) / (1 - h.H2[t])
		variance := h.H2[t] * (1 - h.H2[t]) * (bgMean - fgMean) * (bgMean - fgMean)
		if variance > bestVariance {
			bestVariance = variance
			best = t
		}
	}
	return uint8(best)
}

// medianThreshold picks the level whose accumulated histogram is
// closest to one half (Doyle, 1962).
func medianThreshold(h *models.Histogram) uint8 {
	best := 0
	bestDelta := math.Inf(1)
	for t := 0; t < 256; t++ {
		if delta := math.Abs(h.H2[t] - 0.5); delta < bestDelta {
			bestDelta = delta
			best = t
		}
	}
	return uint8(best)
}

// liThreshold iterates the minimum cross entropy scheme of Li & Tam
// (1998), starting from the mean level.
func liThreshold(h *models.Histogram) uint8 {
	newT := math.Ceil(MeanLevel(h, 0, 255))
	for {
		oldT := newT
		bgMean := MeanLevel(h, 0, int(oldT))
		fgMean := MeanLevel(h, int(oldT)+1, 255)
		newT = math.Round((fgMean - bgMean) / (math.Log(fgMean) - math.Log(bgMean)))
		if math.Abs(newT-oldT) == 0 {
			return uint8(newT)
		}
	}
}

// bimodalHistogram smooths the normalised histogram until it has at
// most two local maxima. A histogram that drops below two modes
// cannot be thresholded by the mode-based methods.
func bimodalHistogram(h *models.Histogram) ([256]float64, []int, error) {
	h1 := h.H1
	for len(FindLocalMaxima(h1, 0, 255)) > 2 {
		h1 = MovingAverageFilter(h1, 3)
	}
	maxima := FindLocalMaxima(h1, 0, 255)
	if len(maxima) != 2 {
		return h1, nil, fmt.Errorf("segmentation: histogram has %d local maxima after smoothing, need 2", len(maxima))
	}
	return h1, maxima, nil
}

// minimumThreshold smooths the histogram to two modes and takes the
// local minimum between them (Prewitt & Mendelsohn, 1966).
func minimumThreshold(h *models.Histogram) (uint8, error) {
	h1, maxima, err := bimodalHistogram(h)
	if err != nil {
		return 0, err
	}
	minima := FindLocalMinima(h1, maxima[0], maxima[1])
	if len(minima) != 1 {
		return 0, fmt.Errorf("segmentation: expected one local minimum between the modes, found %d", len(minima))
	}
	return uint8(minima[0]), nil
}

// intermodesThreshold smooths the histogram to two modes and takes
// their midpoint (Prewitt & Mendelsohn, 1966).
func intermodesThreshold(h *models.Histogram) (uint8, error) {
	_, maxima, err := bimodalHistogram(h)
	if err != nil {
		return 0, err
	}
	return uint8((maxima[0] + maxima[1]) / 2), nil
}

// momentsThreshold preserves the first three moments of the greyscale
// distribution in the binarised image (Tsai, 1985).
func momentsThreshold(h *models.Histogram) uint8 {
	m1, m2, m3 := 0.0, 0.0, 0.0
	for l, v := range h.H1 {
		level := float64(l)
		m1 += level * v
		m2 += level * level * v
		m3 += level * level * level * v
	}
	x := (m1*m3 - m2*m2) / (m2 - m1*m1)
	y := (m1*m2 - m3) / (m2 - m1*m1)
	z := 0.5 - (m1+0.5*y)/math.Sqrt(y*y-4*x)

	for t := 0; t < 256; t++ {
		if h.H2[t] >= z {
			return uint8(t)
		}
	}
	return 255
}

// maxShannonEntropyThreshold maximises the total Shannon entropy of
// the two classes (Kapur et al., 1985).
func maxShannonEntropyThreshold(h *models.Histogram) uint8 {
	const eps = 2.220446049250313e-16

	best := 0
	bestEntropy := math.Inf(-1)
	for t := 0; t < 256; t++ {
		if h.H2[t] <= eps || 1.0-h.H2[t] <= eps {
			continue
		}
		entropy := 0.0
		for l := 0; l < 256; l++ {
			if l <= t {
				entropy += EntropyLike(h.H1[l] / h.H2[t])
			} else {
				entropy += EntropyLike(h.H1[l] / (1.0 - h.H2[t]))
			}
		}
		if bestEntropy < entropy {
			bestEntropy = entropy
			best = t
		}
	}
	return uint8(best)
}

// shanbhagThreshold minimises the absolute image information measure
// built from fuzzy class memberships (Shanbhag, 1994).
func shanbhagThreshold(h *models.Histogram) uint8 {
	best := 0
	bestInformation := math.Inf(1)
	for t := 0; t < 256; t++ {
		information := 0.0
		for l := 0; l < 256; l++ {
			if l <= t {
				bgMu := 1.0 - (h.H2[l]-h.H1[l])/(2.0*h.H2[t])
				information -= h.H1[l] * math.Log(bgMu) / h.H2[t]
			} else {
				fgMu := 1.0 - (1.0-h.H2[l])/2.0/(1.0-h.H2[t])
				information += h.H1[l] * math.Log(fgMu) / (1.0 - h.H2[t])
			}
		}
		if delta := math.Abs(information); delta < bestInformation {
			bestInformation = delta
			best = t
		}
	}
	return uint8(best)
}
