package world

import (
	"github.com/pstepanovum/minecraft-classic-sub002/internal/block"
	"github.com/pstepanovum/minecraft-classic-sub002/internal/mesh"
)

// MeshEntry owns the renderable output of one section together with the
// block array it was built from. The array is retained so point and ray
// queries, and future re-meshing after edits, never go back to the worker.
type MeshEntry struct {
	Blocks  block.Buffer
	Batches *mesh.BatchSet // nil for all-air sections

	handle   mesh.Handle
	released bool
}

// dispose releases the owned batch set exactly once. Entries for empty
// sections own nothing and disposing them is a no-op.
func (e *MeshEntry) dispose(scene mesh.Scene) {
	if e == nil || e.released {
		return
	}
	e.released = true
	if e.Batches != nil {
		scene.Remove(e.handle)
	}
}

// Chunk is one resident column. It exists from the moment a load is issued,
// which reserves the cache slot and prevents duplicate generation requests;
// sections fill in asynchronously as worker responses arrive.
type Chunk struct {
	Coord    ChunkCoord
	sections map[int]*MeshEntry
}

func newChunk(coord ChunkCoord) *Chunk {
	return &Chunk{
		Coord:    coord,
		sections: make(map[int]*MeshEntry),
	}
}

// section returns the populated entry for a vertical index, or nil.
func (c *Chunk) section(cy int) *MeshEntry {
	return c.sections[cy]
}

// setSection stores a freshly meshed entry, disposing any prior entry for
// the same vertical index.
func (c *Chunk) setSection(cy int, entry *MeshEntry, scene mesh.Scene) {
	if prior, ok := c.sections[cy]; ok {
		prior.dispose(scene)
	}
	c.sections[cy] = entry
}

// dispose releases every section. Called when the column is unloaded.
func (c *Chunk) dispose(scene mesh.Scene) {
	for _, entry := range c.sections {
		entry.dispose(scene)
	}
	c.sections = make(map[int]*MeshEntry)
}
