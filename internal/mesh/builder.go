package mesh

import (
	"sort"

	"github.com/pstepanovum/minecraft-classic-sub002/internal/block"
)

// Options fixes the meshing policy for one builder. The policy must stay
// consistent for the lifetime of a world: mixing culled and unculled sections
// is valid for rendering but confuses instance-level diff tooling.
type Options struct {
	// Size is the section edge length in blocks.
	Size int
	// CullBuried skips blocks whose six in-section neighbours are all
	// opaque. Blocks on the section boundary are always emitted because
	// their neighbours live in other sections.
	CullBuried bool
	// Table resolves transparency; nil falls back to the default palette.
	Table block.Table
}

// Builder converts flat block arrays into per-block-type instanced batches.
type Builder struct {
	opts Options
}

func NewBuilder(opts Options) *Builder {
	if opts.Table == nil {
		opts.Table = block.DefaultTable()
	}
	return &Builder{opts: opts}
}

// Build produces the batch set for one section, or nil when the section
// contains no non-air blocks. A nil result is valid output, not an error.
func (b *Builder) Build(blocks block.Buffer, cx, cy, cz int) *BatchSet {
	size := b.opts.Size
	if len(blocks) == 0 || blocks.Empty() {
		return nil
	}

	byType := make(map[block.ID][]Instance)
	for i, id := range blocks {
		if id == block.Air {
			continue
		}
		x, y, z := block.Local(i, size)
		if b.opts.CullBuried && b.buried(blocks, x, y, z) {
			continue
		}
		byType[id] = append(byType[id], Instance{
			X: float64(cx*size+x) + 0.5,
			Y: float64(cy*size+y) + 0.5,
			Z: float64(cz*size+z) + 0.5,
		})
	}
	if len(byType) == 0 {
		// Every block was buried; an empty set would produce residual
		// draw calls downstream, so report no renderable output.
		return nil
	}

	set := &BatchSet{ChunkX: cx, ChunkY: cy, ChunkZ: cz}
	ids := make([]block.ID, 0, len(byType))
	for id := range byType {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		set.Batches = append(set.Batches, Batch{Block: id, Instances: byType[id]})
	}
	return set
}

func (b *Builder) buried(blocks block.Buffer, x, y, z int) bool {
	size := b.opts.Size
	if x == 0 || y == 0 || z == 0 || x == size-1 || y == size-1 || z == size-1 {
		return false
	}
	return b.opts.Table.Opaque(blocks.At(x-1, y, z, size)) &&
		b.opts.Table.Opaque(blocks.At(x+1, y, z, size)) &&
		b.opts.Table.Opaque(blocks.At(x, y-1, z, size)) &&
		b.opts.Table.Opaque(blocks.At(x, y+1, z, size)) &&
		b.opts.Table.Opaque(blocks.At(x, y, z-1, size)) &&
		b.opts.Table.Opaque(blocks.At(x, y, z+1, size))
}
