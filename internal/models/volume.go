package models

import (
	"fmt"
	"os"

	"porestream/pkg/voxel"
)

// Volume represents a 3D voxel cube with metadata
type Volume struct {
	// Data is the 3D volume data as a 1D array in x-fastest order
	Data []uint8

	// Shape holds the voxel dimensions (Nx, Ny, Nz) of the cube
	Shape [3]int

	// VoxelSize is the physical size of each voxel in metres
	VoxelSize float64
}

// NewVolume allocates a zero-filled volume of the given shape
func NewVolume(nx, ny, nz int) *Volume {
	return &Volume{
		Data:  make([]uint8, nx*ny*nz),
		Shape: [3]int{nx, ny, nz},
	}
}

// Len returns the total number of voxels in the volume
func (v *Volume) Len() int {
	return v.Shape[0] * v.Shape[1] * v.Shape[2]
}

// In reports whether the point lies inside the volume bounds
func (v *Volume) In(p voxel.Point) bool {
	for i := 0; i < 3; i++ {
		if p[i] < 0 || p[i] >= v.Shape[i] {
			return false
		}
	}
	return true
}

// LinearIndex converts a point to its position in Data
// using x + Nx*y + Nx*Ny*z ordering
func (v *Volume) LinearIndex(p voxel.Point) int {
	return p[0] + v.Shape[0]*p[1] + v.Shape[0]*v.Shape[1]*p[2]
}

// At returns the voxel value at p; the caller must ensure p is in bounds
func (v *Volume) At(p voxel.Point) uint8 {
	return v.Data[v.LinearIndex(p)]
}

// Set writes the voxel value at p
func (v *Volume) Set(p voxel.Point, value uint8) {
	v.Data[v.LinearIndex(p)] = value
}

// IsPore reports whether p is inside the volume and belongs to the
// pore phase. In a segmented cube the pore phase is voxel value 0.
func (v *Volume) IsPore(p voxel.Point) bool {
	return v.In(p) && v.At(p) == 0
}

// Each calls fn for every point of the volume in x-fastest order
func (v *Volume) Each(fn func(p voxel.Point)) {
	for z := 0; z < v.Shape[2]; z++ {
		for y := 0; y < v.Shape[1]; y++ {
			for x := 0; x < v.Shape[0]; x++ {
				fn(voxel.Point{x, y, z})
			}
		}
	}
}

// LoadRaw reads a raw binary cube of the given shape from disk
func LoadRaw(path string, nx, ny, nz int) (*Volume, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading volume file: %w", err)
	}
	if len(data) != nx*ny*nz {
		return nil, fmt.Errorf("volume file %s holds %d bytes, expected %d (%dx%dx%d)",
			path, len(data), nx*ny*nz, nx, ny, nz)
	}
	return &Volume{Data: data, Shape: [3]int{nx, ny, nz}}, nil
}

// SaveRaw writes the volume as a raw binary cube
func (v *Volume) SaveRaw(path string) error {
	if err := os.WriteFile(path, v.Data, 0644); err != nil {
		return fmt.Errorf("error writing volume file: %w", err)
	}
	return nil
}
