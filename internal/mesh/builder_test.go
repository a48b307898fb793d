package mesh

import (
	"testing"

	"github.com/pstepanovum/minecraft-classic-sub002/internal/block"
)

const testSize = 4

func newTestBuilder(cull bool) *Builder {
	return NewBuilder(Options{Size: testSize, CullBuried: cull})
}

func TestBuildEmptySectionReturnsNil(t *testing.T) {
	b := newTestBuilder(false)
	if set := b.Build(block.NewBuffer(testSize), 0, 0, 0); set != nil {
		t.Fatalf("all-air section produced %d batches", len(set.Batches))
	}
	if set := b.Build(nil, 0, 0, 0); set != nil {
		t.Fatal("nil buffer produced batches")
	}
}

func TestBuildGroupsByBlockType(t *testing.T) {
	buf := block.NewBuffer(testSize)
	buf.Set(0, 0, 0, testSize, block.Stone)
	buf.Set(1, 0, 0, testSize, block.Stone)
	buf.Set(2, 0, 0, testSize, block.Grass)

	set := newTestBuilder(false).Build(buf, 0, 0, 0)
	if set == nil {
		t.Fatal("expected batches")
	}
	if len(set.Batches) != 2 {
		t.Fatalf("batch count = %d, want 2", len(set.Batches))
	}
	// Batches come out ordered by block code, grass before stone.
	if set.Batches[0].Block != block.Grass || set.Batches[1].Block != block.Stone {
		t.Fatalf("batch order = %d, %d", set.Batches[0].Block, set.Batches[1].Block)
	}
	if len(set.Batches[1].Instances) != 2 {
		t.Fatalf("stone instances = %d, want 2", len(set.Batches[1].Instances))
	}
	if set.InstanceCount() != 3 {
		t.Fatalf("instance count = %d, want 3", set.InstanceCount())
	}
}

func TestInstancesCenterOnBlocks(t *testing.T) {
	buf := block.NewBuffer(testSize)
	buf.Set(1, 2, 3, testSize, block.Dirt)

	// Section (-1, 0, 2): world origin X is -4, Z is 8.
	set := newTestBuilder(false).Build(buf, -1, 0, 2)
	if set == nil || len(set.Batches) != 1 {
		t.Fatal("expected a single batch")
	}
	inst := set.Batches[0].Instances[0]
	if inst.X != -3+0.5 || inst.Y != 2.5 || inst.Z != 11.5 {
		t.Fatalf("instance at (%v,%v,%v)", inst.X, inst.Y, inst.Z)
	}
	if !set.Contains(block.Dirt, -3, 2, 11) {
		t.Fatal("Contains failed to locate the instance")
	}
}

func TestCullBuriedSkipsInteriorBlocks(t *testing.T) {
	buf := block.NewBuffer(testSize)
	for z := 0; z < testSize; z++ {
		for y := 0; y < testSize; y++ {
			for x := 0; x < testSize; x++ {
				buf.Set(x, y, z, testSize, block.Stone)
			}
		}
	}

	full := newTestBuilder(false).Build(buf, 0, 0, 0)
	if full.InstanceCount() != testSize*testSize*testSize {
		t.Fatalf("unculled count = %d", full.InstanceCount())
	}

	culled := newTestBuilder(true).Build(buf, 0, 0, 0)
	interior := (testSize - 2) * (testSize - 2) * (testSize - 2)
	want := testSize*testSize*testSize - interior
	if culled.InstanceCount() != want {
		t.Fatalf("culled count = %d, want %d", culled.InstanceCount(), want)
	}
	// Boundary blocks always survive: their neighbours live in adjacent
	// sections this builder cannot see.
	if !culled.Contains(block.Stone, 0, 0, 0) {
		t.Fatal("boundary block was culled")
	}
	if culled.Contains(block.Stone, 1, 1, 1) {
		t.Fatal("interior block was not culled")
	}
}

// Every emitted instance must map back onto a matching block in the source
// array, so point queries and rendered geometry agree.
func TestBatchesMatchBlockArray(t *testing.T) {
	buf := block.NewBuffer(testSize)
	ids := []block.ID{block.Stone, block.Dirt, block.Sand, block.Water}
	for i := range buf {
		if i%3 == 0 {
			buf[i] = ids[i%len(ids)]
		}
	}

	set := newTestBuilder(false).Build(buf, 2, 1, -3)
	if set == nil {
		t.Fatal("expected batches")
	}
	for _, batch := range set.Batches {
		for _, inst := range batch.Instances {
			x := int(inst.X-0.5) - 2*testSize
			y := int(inst.Y-0.5) - 1*testSize
			z := int(inst.Z-0.5) + 3*testSize
			if got := buf.At(x, y, z, testSize); got != batch.Block {
				t.Fatalf("instance at (%v,%v,%v) is %d in the array, batch says %d",
					inst.X, inst.Y, inst.Z, got, batch.Block)
			}
		}
	}
}

func TestTransparentNeighboursDoNotBury(t *testing.T) {
	buf := block.NewBuffer(testSize)
	for z := 0; z < testSize; z++ {
		for y := 0; y < testSize; y++ {
			for x := 0; x < testSize; x++ {
				buf.Set(x, y, z, testSize, block.Stone)
			}
		}
	}
	// A water neighbour keeps the interior block visible.
	buf.Set(1, 2, 1, testSize, block.Water)

	culled := newTestBuilder(true).Build(buf, 0, 0, 0)
	if !culled.Contains(block.Stone, 1, 1, 1) {
		t.Fatal("block behind water was culled")
	}
}
