package gen_test

import (
	"log"
	"testing"

	"github.com/pstepanovum/minecraft-classic-sub002/internal/block"
	"github.com/pstepanovum/minecraft-classic-sub002/internal/gen"
)

// stubGenerator fills every section with stone at local (0,0,0) and air
// elsewhere, tracking calls and the active seed.
type stubGenerator struct {
	size  int
	seed  int64
	calls int
}

func (g *stubGenerator) Section(cx, cy, cz int) block.Buffer {
	g.calls++
	buf := block.NewBuffer(g.size)
	buf.Set(0, 0, 0, g.size, block.Stone)
	return buf
}

func (g *stubGenerator) Reseed(seed int64) {
	g.seed = seed
}

const testSize = 4

func newTestWorker() (*gen.Worker, *gen.Channel, *stubGenerator) {
	ch := gen.NewChannel(16, 64)
	stub := &stubGenerator{size: testSize}
	w := gen.NewWorker(ch, stub, gen.WorkerParams{
		Size:             testSize,
		VerticalSections: 2,
		WorldRadius:      4,
	}, log.Default())
	return w, ch, stub
}

func initWorker(w *gen.Worker) {
	w.Handle(gen.InitRequest{Seed: 11})
}

func recvResponse(t *testing.T, ch *gen.Channel) gen.Response {
	t.Helper()
	select {
	case resp := <-ch.Responses():
		return resp
	default:
		t.Fatal("expected a response")
		return nil
	}
}

func TestGenerateBeforeInitFails(t *testing.T) {
	w, ch, _ := newTestWorker()
	w.Handle(gen.GenerateSection{})
	if _, ok := recvResponse(t, ch).(gen.GenError); !ok {
		t.Fatal("expected GenError before init")
	}
}

func TestDoubleInitFails(t *testing.T) {
	w, ch, stub := newTestWorker()
	initWorker(w)
	if stub.seed != 11 {
		t.Fatalf("seed = %d, want 11", stub.seed)
	}
	w.Handle(gen.InitRequest{Seed: 12})
	if _, ok := recvResponse(t, ch).(gen.GenError); !ok {
		t.Fatal("expected GenError on second init")
	}
	if stub.seed != 11 {
		t.Fatalf("second init reseeded to %d", stub.seed)
	}
}

func TestGenerateSection(t *testing.T) {
	w, ch, _ := newTestWorker()
	initWorker(w)

	w.Handle(gen.GenerateSection{ChunkX: -4, ChunkY: 1, ChunkZ: 4})
	resp, ok := recvResponse(t, ch).(gen.SectionGenerated)
	if !ok {
		t.Fatalf("expected SectionGenerated")
	}
	if resp.ChunkX != -4 || resp.ChunkY != 1 || resp.ChunkZ != 4 {
		t.Fatalf("response echoes (%d,%d,%d)", resp.ChunkX, resp.ChunkY, resp.ChunkZ)
	}
	if len(resp.Blocks) != testSize*testSize*testSize {
		t.Fatalf("block array length = %d", len(resp.Blocks))
	}
	if resp.Blocks.At(0, 0, 0, testSize) != block.Stone {
		t.Fatal("generated content missing")
	}
}

func TestGenerateOutOfBoundsFails(t *testing.T) {
	w, ch, _ := newTestWorker()
	initWorker(w)

	for _, req := range []gen.GenerateSection{
		{ChunkX: 5},
		{ChunkZ: -5},
		{ChunkY: 2},
		{ChunkY: -1},
	} {
		w.Handle(req)
		if _, ok := recvResponse(t, ch).(gen.GenError); !ok {
			t.Fatalf("expected GenError for %+v", req)
		}
	}
}

func TestEditPersistsAcrossRequests(t *testing.T) {
	w, ch, _ := newTestWorker()
	initWorker(w)

	w.Handle(gen.UpdateBlock{BlockEdit: gen.BlockEdit{
		ChunkX: 1, ChunkY: 0, ChunkZ: 1,
		LocalX: 2, LocalY: 2, LocalZ: 2,
		Block:  block.Gravel,
	}})
	updated, ok := recvResponse(t, ch).(gen.SectionUpdated)
	if !ok {
		t.Fatal("expected SectionUpdated")
	}
	if updated.Blocks.At(2, 2, 2, testSize) != block.Gravel {
		t.Fatal("update response missing the edit")
	}

	// Mutating the response must not reach the worker's store.
	updated.Blocks.Set(2, 2, 2, testSize, block.Air)

	w.Handle(gen.GenerateSection{ChunkX: 1, ChunkY: 0, ChunkZ: 1})
	regen := recvResponse(t, ch).(gen.SectionGenerated)
	if regen.Blocks.At(2, 2, 2, testSize) != block.Gravel {
		t.Fatal("edit lost on regeneration of the section")
	}
}

func TestPristineSectionsAreNotRetained(t *testing.T) {
	w, ch, stub := newTestWorker()
	initWorker(w)

	w.Handle(gen.GenerateSection{ChunkX: 0, ChunkY: 0, ChunkZ: 0})
	recvResponse(t, ch)
	w.Handle(gen.GenerateSection{ChunkX: 0, ChunkY: 0, ChunkZ: 0})
	recvResponse(t, ch)

	// Unedited sections are re-derived every time, never cached.
	if stub.calls != 2 {
		t.Fatalf("generator calls = %d, want 2", stub.calls)
	}
}

func TestBulkEditsOneResponsePerSection(t *testing.T) {
	w, ch, _ := newTestWorker()
	initWorker(w)

	w.Handle(gen.BulkEdits{Edits: []gen.BlockEdit{
		{ChunkX: 0, ChunkY: 0, ChunkZ: 0, LocalX: 0, LocalY: 1, LocalZ: 0, Block: block.Dirt},
		{ChunkX: 0, ChunkY: 0, ChunkZ: 0, LocalX: 1, LocalY: 1, LocalZ: 0, Block: block.Dirt},
		{ChunkX: 0, ChunkY: 1, ChunkZ: 0, LocalX: 0, LocalY: 0, LocalZ: 0, Block: block.Sand},
	}})

	seen := make(map[int]block.Buffer)
	for i := 0; i < 2; i++ {
		resp, ok := recvResponse(t, ch).(gen.SectionUpdated)
		if !ok {
			t.Fatal("expected SectionUpdated")
		}
		seen[resp.ChunkY] = resp.Blocks
	}
	select {
	case extra := <-ch.Responses():
		t.Fatalf("unexpected third response %T", extra)
	default:
	}

	if seen[0].At(0, 1, 0, testSize) != block.Dirt || seen[0].At(1, 1, 0, testSize) != block.Dirt {
		t.Fatal("bottom section missing coalesced edits")
	}
	if seen[1].At(0, 0, 0, testSize) != block.Sand {
		t.Fatal("upper section missing its edit")
	}
}

func TestEditOutOfSectionFails(t *testing.T) {
	w, ch, _ := newTestWorker()
	initWorker(w)

	w.Handle(gen.UpdateBlock{BlockEdit: gen.BlockEdit{LocalX: testSize, Block: block.Stone}})
	if _, ok := recvResponse(t, ch).(gen.GenError); !ok {
		t.Fatal("expected GenError for out-of-section local coordinate")
	}
}

func TestRegenerateDiscardsEdits(t *testing.T) {
	w, ch, stub := newTestWorker()
	initWorker(w)

	w.Handle(gen.UpdateBlock{BlockEdit: gen.BlockEdit{LocalX: 1, LocalY: 1, LocalZ: 1, Block: block.Wood}})
	recvResponse(t, ch)

	w.Handle(gen.Regenerate{Seed: 77})
	resp, ok := recvResponse(t, ch).(gen.Regenerated)
	if !ok {
		t.Fatal("expected Regenerated")
	}
	if resp.Seed != 77 || stub.seed != 77 {
		t.Fatalf("seed = %d/%d, want 77", resp.Seed, stub.seed)
	}

	w.Handle(gen.GenerateSection{})
	regen := recvResponse(t, ch).(gen.SectionGenerated)
	if regen.Blocks.At(1, 1, 1, testSize) != block.Air {
		t.Fatal("edit survived regeneration")
	}
}

func TestInitOverridesGeometry(t *testing.T) {
	w, ch, _ := newTestWorker()
	w.Handle(gen.InitRequest{
		ServerConfig: gen.WorldParams{WorldRadius: 1},
		Seed:         5,
	})

	w.Handle(gen.GenerateSection{ChunkX: 2})
	if _, ok := recvResponse(t, ch).(gen.GenError); !ok {
		t.Fatal("expected GenError outside the narrowed world radius")
	}
}
