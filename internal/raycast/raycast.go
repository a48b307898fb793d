// Package raycast implements a 3D digital differential analyzer walk over the
// voxel grid in the style of Amanatides and Woo: the ray visits exactly the
// grid cells it passes through, in order.
package raycast

import (
	"math"

	"github.com/pstepanovum/minecraft-classic-sub002/internal/block"
)

// BlockSource answers point block queries. Implementations must be O(1) and
// must never block or trigger generation; absent regions read as air.
type BlockSource interface {
	BlockTypeAt(x, y, z int) block.ID
}

// Vec3 is a world-space position or direction.
type Vec3 struct {
	X, Y, Z float64
}

// Hit describes the first non-air cell a ray entered.
type Hit struct {
	// Position is the grid cell containing the hit block.
	Position [3]int
	// Previous is the last air cell visited before the hit; interaction
	// code places new blocks there.
	Previous [3]int
	// Normal is the negated last-stepped axis. It is all zero when the ray
	// originated inside a solid cell.
	Normal [3]int
	// Block is the type code of the hit cell.
	Block block.ID
	// Distance is the ray parameter at which the hit cell was entered.
	Distance float64
}

// epsilon guards against division by near-zero direction components.
const epsilon = 1e-9

// Cast marches from origin along the unit direction until it enters a non-air
// cell or exceeds maxDistance, in which case it returns nil. Ties between
// axes resolve X before Y before Z so hit faces are deterministic on exact
// cell diagonals.
func Cast(origin, dir Vec3, src BlockSource, maxDistance float64) *Hit {
	pos := [3]int{
		int(math.Floor(origin.X)),
		int(math.Floor(origin.Y)),
		int(math.Floor(origin.Z)),
	}
	o := [3]float64{origin.X, origin.Y, origin.Z}
	d := [3]float64{dir.X, dir.Y, dir.Z}

	var step [3]int
	var tDelta, tMax [3]float64
	for axis := 0; axis < 3; axis++ {
		if math.Abs(d[axis]) < epsilon {
			step[axis] = 0
			tDelta[axis] = math.Inf(1)
			tMax[axis] = math.Inf(1)
			continue
		}
		tDelta[axis] = math.Abs(1 / d[axis])
		if d[axis] > 0 {
			step[axis] = 1
			tMax[axis] = (float64(pos[axis]) + 1 - o[axis]) / d[axis]
		} else {
			step[axis] = -1
			tMax[axis] = (o[axis] - float64(pos[axis])) / -d[axis]
		}
	}

	prev := pos
	var normal [3]int
	distance := 0.0

	for distance <= maxDistance {
		if id := src.BlockTypeAt(pos[0], pos[1], pos[2]); id != block.Air {
			return &Hit{
				Position: pos,
				Previous: prev,
				Normal:   normal,
				Block:    id,
				Distance: distance,
			}
		}
		prev = pos

		axis := 0
		if tMax[1] < tMax[0] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		if math.IsInf(tMax[axis], 1) {
			// Degenerate direction; no boundary will ever be crossed.
			return nil
		}
		distance = tMax[axis]
		pos[axis] += step[axis]
		normal = [3]int{}
		normal[axis] = -step[axis]
		tMax[axis] += tDelta[axis]
	}
	return nil
}
