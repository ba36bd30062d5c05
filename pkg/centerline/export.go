package centerline

import (
	"encoding/binary"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"porestream/pkg/voxel"
)

// ExportRaw writes the merged centerlines image as raw binary: an
// N-by-4 matrix of int32 (x, y, z, squared radius), one row per
// voxel, stored column by column. Rows are ordered by point so the
// file is reproducible.
func ExportRaw(path string, merged map[voxel.Point]int32) error {
	points := make([]voxel.Point, 0, len(merged))
	for p := range merged {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Less(points[j]) })

	columns := make([]int32, 0, 4*len(points))
	for axis := 0; axis < 3; axis++ {
		for _, p := range points {
			columns = append(columns, int32(p[axis]))
		}
	}
	for _, p := range points {
		columns = append(columns, merged[p])
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export centerlines raw: %w", err)
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, columns); err != nil {
		return fmt.Errorf("export centerlines raw: %w", err)
	}
	return f.Close()
}

// ExportStatistics writes one CSV row per centerline with its arc
// length, tortuosity and average property value.
func ExportStatistics(path string, statistics []Statistics) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export centerlines statistics: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, s := range statistics {
		record := []string{
			strconv.FormatFloat(s.Size, 'f', 6, 64),
			strconv.FormatFloat(s.Tortuosity, 'f', 6, 64),
			strconv.FormatFloat(s.AveragePropertyValue, 'f', 6, 64),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("export centerlines statistics: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("export centerlines statistics: %w", err)
	}
	return f.Close()
}

// Export writes the centerline outputs of a set into folder:
// centerlines.raw and centerlines.stat. The merged image is returned
// for the network builder.
func Export(folder string, s *Set) (map[voxel.Point]int32, error) {
	_, _, merged := FillImages(s)
	if err := ExportRaw(filepath.Join(folder, "centerlines.raw"), merged); err != nil {
		return nil, err
	}
	if err := ExportStatistics(filepath.Join(folder, "centerlines.stat"), s.Statistics()); err != nil {
		return nil, err
	}
	return merged, nil
}
