package morphology

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/stat"

	"porestream/internal/models"
	"porestream/pkg/voxel"
)

// phase names in the order of their voxel values: pore (0),
// solid surface (1), solid bulk (2).
var phaseNames = [3]string{"pore", "surf", "rock"}

// boxCounter counts, for one phase, the number of boxes of each
// power-of-two size needed to cover the phase voxels. The volume is
// embedded in a cube of side 2^maxExponent and folded in place: after
// each pass a cell holds whether any of its eight children contained
// a phase voxel.
type boxCounter struct {
	side  int
	cells []bool
}

func newBoxCounter(v *models.Volume, phase uint8) *boxCounter {
	longest := v.Shape[0]
	for _, n := range v.Shape[1:] {
		if n > longest {
			longest = n
		}
	}
	exponent := int(math.Ceil(math.Log2(float64(longest))))
	side := 1 << exponent

	b := &boxCounter{side: side, cells: make([]bool, side*side*side)}
	v.Each(func(p voxel.Point) {
		if v.At(p) == phase {
			b.cells[p[0]+side*p[1]+side*side*p[2]] = true
		}
	})
	return b
}

func (b *boxCounter) at(i, j, k int) bool {
	return b.cells[i+b.side*j+b.side*b.side*k]
}

// count returns the number of occupied boxes for each box size
// 1, 2, 4, ..., side, folding the cube between sizes.
func (b *boxCounter) count() []int {
	var counts []int
	for size := 1; size <= b.side; size *= 2 {
		half := size / 2
		counter := 0
		for k := 0; k < b.side; k += size {
			for j := 0; j < b.side; j += size {
				for i := 0; i < b.side; i += size {
					occupied := b.at(i, j, k) ||
						b.at(i+half, j, k) ||
						b.at(i, j+half, k) ||
						b.at(i, j, k+half) ||
						b.at(i, j+half, k+half) ||
						b.at(i+half, j, k+half) ||
						b.at(i+half, j+half, k) ||
						b.at(i+half, j+half, k+half)
					b.cells[i+b.side*j+b.side*b.side*k] = occupied
					if occupied {
						counter++
					}
				}
			}
		}
		counts = append(counts, counter)
	}
	return counts
}

// dimension fits ln N(s) against ln s; the fractal dimension is the
// negated slope. Box sizes with zero count are left out of the fit.
func dimension(counts []int) float64 {
	var logSizes, logCounts []float64
	for i, n := range counts {
		if n == 0 {
			continue
		}
		logSizes = append(logSizes, float64(i)*math.Ln2)
		logCounts = append(logCounts, math.Log(float64(n)))
	}
	if len(logSizes) < 2 {
		return 0
	}
	_, slope := stat.LinearRegression(logSizes, logCounts, nil, false)
	return -slope
}

func savePlot(path string, counts []int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating fractal plot file: %w", err)
	}
	defer f.Close()

	for i, n := range counts {
		if _, err := fmt.Fprintf(f, "%d %d\n", 1<<i, n); err != nil {
			return fmt.Errorf("error writing fractal plot file: %w", err)
		}
	}
	return nil
}

// FractalDimension estimates the box-counting fractal dimension of the
// pore, surface and bulk rock phases of the classified geometry. The
// data points of each phase are written to <phase>_frac_plot.dat in
// folder and the three fitted dimensions are returned in phase order.
func FractalDimension(folder string, v *models.Volume) ([3]float64, error) {
	var dims [3]float64
	for phase := range phaseNames {
		counts := newBoxCounter(v, uint8(phase)).count()
		dims[phase] = dimension(counts)

		path := filepath.Join(folder, phaseNames[phase]+"_frac_plot.dat")
		if err := savePlot(path, counts); err != nil {
			return dims, err
		}
		slog.Info("fractal dimension estimated",
			"phase", phaseNames[phase], "dimension", dims[phase])
	}
	return dims, nil
}
