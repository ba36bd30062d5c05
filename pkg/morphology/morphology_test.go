package morphology

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"porestream/internal/models"
	"porestream/pkg/voxel"
)

// solidVolume returns a volume of the given side entirely solid.
func solidVolume(side int) *models.Volume {
	v := models.NewVolume(side, side, side)
	for i := range v.Data {
		v.Data[i] = 1
	}
	return v
}

// carve sets the given voxels to the pore phase.
func carve(v *models.Volume, points ...voxel.Point) {
	for _, p := range points {
		v.Set(p, 0)
	}
}

// spanningPath lists a pore path whose bounding box covers the whole
// 4x4x4 volume: an x-run, a y-run and a z-run joined at the corners.
func spanningPath() []voxel.Point {
	var points []voxel.Point
	for x := 0; x < 4; x++ {
		points = append(points, voxel.Pt(x, 0, 0))
	}
	for y := 1; y < 4; y++ {
		points = append(points, voxel.Pt(3, y, 0))
	}
	for z := 1; z < 4; z++ {
		points = append(points, voxel.Pt(3, 3, z))
	}
	return points
}

func TestKeepPercolating(t *testing.T) {
	t.Run("spanning cluster survives, finite cluster is removed", func(t *testing.T) {
		v := solidVolume(4)
		path := spanningPath()
		carve(v, path...)
		carve(v, voxel.Pt(1, 2, 2))

		count := KeepPercolating(v)
		assert.Equal(t, 1, count)

		for _, p := range path {
			assert.Equal(t, uint8(0), v.At(p), "spanning voxel %v", p)
		}
		assert.Equal(t, uint8(1), v.At(voxel.Pt(1, 2, 2)), "isolated pore must become solid")
		assert.InDelta(t, float64(len(path))/64.0, Porosity(v), 1e-12)
	})

	t.Run("no spanning cluster leaves a fully solid volume", func(t *testing.T) {
		v := solidVolume(4)
		carve(v, voxel.Pt(1, 1, 1), voxel.Pt(2, 1, 1), voxel.Pt(2, 2, 2))

		count := KeepPercolating(v)
		assert.Equal(t, 0, count)
		for _, value := range v.Data {
			assert.Equal(t, uint8(1), value)
		}
		assert.Equal(t, 0.0, Porosity(v))
	})

	t.Run("all-pore volume is one spanning cluster", func(t *testing.T) {
		v := models.NewVolume(3, 3, 3)

		count := KeepPercolating(v)
		assert.Equal(t, 1, count)
		assert.Equal(t, 1.0, Porosity(v))
	})

	t.Run("merging arms end up in one cluster", func(t *testing.T) {
		// Two arms meet only at the last voxel of the sweep, forcing
		// a label merge, and together they span the volume.
		v := solidVolume(3)
		carve(v,
			voxel.Pt(0, 0, 0), voxel.Pt(0, 1, 0), voxel.Pt(0, 2, 0),
			voxel.Pt(2, 0, 2), voxel.Pt(2, 1, 2), voxel.Pt(2, 2, 2),
			voxel.Pt(1, 2, 1))

		count := KeepPercolating(v)
		assert.Equal(t, 1, count)
		assert.Equal(t, uint8(0), v.At(voxel.Pt(0, 0, 0)))
		assert.Equal(t, uint8(0), v.At(voxel.Pt(2, 0, 2)))
	})
}

func TestSurfaceToVolume(t *testing.T) {
	// A 3x3x3 pore block centred in a 7x7x7 solid cube.
	v := solidVolume(7)
	for z := 2; z <= 4; z++ {
		for y := 2; y <= 4; y++ {
			for x := 2; x <= 4; x++ {
				carve(v, voxel.Pt(x, y, z))
			}
		}
	}

	pore, rock := SurfaceToVolume(v)

	// 26 of the 27 pore voxels touch rock; only the centre is volume.
	assert.InDelta(t, 26.0, pore, 1e-12)

	// The rock shell around the block holds 98 voxels, the remaining
	// 218 rock voxels are bulk.
	assert.InDelta(t, 98.0/218.0, rock, 1e-12)

	t.Run("bulk rock is upgraded to phase 2", func(t *testing.T) {
		assert.Equal(t, uint8(2), v.At(voxel.Pt(0, 0, 0)))
		assert.Equal(t, uint8(1), v.At(voxel.Pt(1, 2, 2)), "rock touching pore stays surface")
		assert.Equal(t, uint8(0), v.At(voxel.Pt(3, 3, 3)), "pore is untouched")
	})
}

func TestFractalDimension(t *testing.T) {
	folder := t.TempDir()
	v := models.NewVolume(4, 4, 4)

	dims, err := FractalDimension(folder, v)
	require.NoError(t, err)

	t.Run("a solid cube of pore has dimension three", func(t *testing.T) {
		assert.InDelta(t, 3.0, dims[0], 1e-9)
	})

	t.Run("empty phases have no dimension", func(t *testing.T) {
		assert.Equal(t, 0.0, dims[1])
		assert.Equal(t, 0.0, dims[2])
	})

	t.Run("plot files hold the counting points", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(folder, "pore_frac_plot.dat"))
		require.NoError(t, err)
		assert.Equal(t, "1 64\n2 8\n4 1\n", string(data))

		for _, name := range []string{"surf_frac_plot.dat", "rock_frac_plot.dat"} {
			data, err := os.ReadFile(filepath.Join(folder, name))
			require.NoError(t, err)
			assert.Equal(t, "1 0\n2 0\n4 0\n", string(data))
		}
	})
}

func TestPorosityCountsPoreFraction(t *testing.T) {
	v := solidVolume(2)
	carve(v, voxel.Pt(0, 0, 0), voxel.Pt(1, 1, 1))
	assert.InDelta(t, 0.25, Porosity(v), 1e-12)
	assert.False(t, math.IsNaN(Porosity(v)))
}
