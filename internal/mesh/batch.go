package mesh

import (
	"github.com/pstepanovum/minecraft-classic-sub002/internal/block"
)

// Instance is the world-space centroid of one block instance. Blocks are
// centred on the integer+0.5 grid, a convention shared with collision and
// raycast consumers.
type Instance struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Batch holds every instance of one block type within a section; it maps to
// one draw call on the renderer side.
type Batch struct {
	Block     block.ID   `json:"block"`
	Instances []Instance `json:"instances"`
}

// BatchSet is the renderable output for one chunk section.
type BatchSet struct {
	ChunkX  int     `json:"chunkX"`
	ChunkY  int     `json:"chunkY"`
	ChunkZ  int     `json:"chunkZ"`
	Batches []Batch `json:"batches"`
}

// InstanceCount returns the total number of instances across all batches.
func (s *BatchSet) InstanceCount() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, b := range s.Batches {
		n += len(b.Instances)
	}
	return n
}

// Contains reports whether the set holds an instance of the given type at the
// given block coordinate.
func (s *BatchSet) Contains(id block.ID, x, y, z int) bool {
	if s == nil {
		return false
	}
	for _, b := range s.Batches {
		if b.Block != id {
			continue
		}
		for _, inst := range b.Instances {
			if int(inst.X-0.5) == x && int(inst.Y-0.5) == y && int(inst.Z-0.5) == z {
				return true
			}
		}
	}
	return false
}

// Handle is an opaque token returned by a Scene when a batch set is added;
// the core never inspects it beyond passing it back for removal.
type Handle any

// Scene is the renderer-owned egress for batch sets. Implementations must
// tolerate Remove being called at most once per handle; the batch set owner
// guarantees it is never called twice.
type Scene interface {
	Add(set *BatchSet) Handle
	Remove(handle Handle)
}

// NullScene discards every batch set; useful for headless runs and tests.
type NullScene struct{}

func (NullScene) Add(set *BatchSet) Handle { return nil }
func (NullScene) Remove(handle Handle)     {}
