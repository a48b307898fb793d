package world

import "math"

// ChunkCoord identifies one column of the world: every vertical section
// sharing the same (X, Z). Columns are the unit of streaming and the cache
// key; value equality makes the type usable directly in maps.
type ChunkCoord struct {
	X int
	Z int
}

// DistanceSq returns the squared Euclidean distance between two columns.
func (c ChunkCoord) DistanceSq(o ChunkCoord) int {
	dx := c.X - o.X
	dz := c.Z - o.Z
	return dx*dx + dz*dz
}

// SectionCoord identifies one vertical section, the unit of generation and
// meshing.
type SectionCoord struct {
	X int
	Y int
	Z int
}

// Column returns the owning column of a section.
func (s SectionCoord) Column() ChunkCoord {
	return ChunkCoord{X: s.X, Z: s.Z}
}

// ColumnForWorld locates the column containing a world-space position.
func ColumnForWorld(x, z float64, size int) ChunkCoord {
	return ChunkCoord{
		X: floorDiv(int(math.Floor(x)), size),
		Z: floorDiv(int(math.Floor(z)), size),
	}
}

func floorDiv(value, size int) int {
	if size <= 0 {
		return 0
	}
	if value >= 0 {
		return value / size
	}
	return -((-value - 1) / size) - 1
}

func mod(value, size int) int {
	m := value % size
	if m < 0 {
		m += size
	}
	return m
}
