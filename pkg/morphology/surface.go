package morphology

import (
	"log/slog"

	"porestream/internal/models"
	"porestream/pkg/voxel"
)

// SurfaceToVolume classifies every voxel of the binary geometry as
// pore (0), solid surface (1) or solid bulk (2) and returns the
// surface-to-volume ratio of the pore and rock phases. A voxel is
// surface when at least one of its 26 neighbours belongs to the other
// phase; neighbours outside the volume count as solid bulk. Bulk rock
// voxels are upgraded in place to value 2.
func SurfaceToVolume(v *models.Volume) (pore, rock float64) {
	var poreVolume, rockVolume, poreSurface, rockSurface int

	v.Each(func(p voxel.Point) {
		anyPore, anySurface, allSolid := false, false, true
		for _, n := range p.Neighbours26() {
			if !v.In(n) {
				continue
			}
			switch v.At(n) {
			case 0:
				anyPore = true
				allSolid = false
			case 1:
				anySurface = true
			}
		}

		if v.At(p) != 0 {
			if anyPore {
				rockSurface++
			}
			if allSolid {
				rockVolume++
				v.Set(p, 2)
			}
		} else {
			if anySurface {
				poreSurface++
			} else {
				poreVolume++
			}
		}
	})

	pore = float64(poreSurface) / float64(poreVolume)
	rock = float64(rockSurface) / float64(rockVolume)

	slog.Info("surface-to-volume ratios calculated", "pore", pore, "rock", rock)
	return pore, rock
}
