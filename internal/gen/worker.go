package gen

import (
	"context"
	"fmt"
	"log"

	"github.com/pstepanovum/minecraft-classic-sub002/internal/block"
)

// Generator produces the block contents of one chunk section. The algorithm
// behind it is opaque to the streaming core; it only has to be deterministic
// for a given seed so unedited sections can be re-derived instead of stored.
type Generator interface {
	Section(cx, cy, cz int) block.Buffer
	Reseed(seed int64)
}

// WorkerParams fixes the world geometry the worker validates requests against.
type WorkerParams struct {
	Size             int // section edge length in blocks
	VerticalSections int // sections stacked per column
	WorldRadius      int // world bounds in columns from origin
}

// Worker owns the authoritative block store. It runs on its own goroutine and
// communicates exclusively through the channel; block buffers are cloned
// before they cross so the scheduler never observes a partial write.
type Worker struct {
	ch     *Channel
	gen    Generator
	params WorkerParams
	logger *log.Logger

	// Only sections that have been edited are retained; pristine sections
	// are re-derived from the generator on demand.
	edited      map[[3]int]block.Buffer
	initialized bool
}

func NewWorker(ch *Channel, generator Generator, params WorkerParams, logger *log.Logger) *Worker {
	if logger == nil {
		logger = log.New(log.Writer(), "gen-worker ", log.LstdFlags|log.Lmicroseconds)
	}
	return &Worker{
		ch:     ch,
		gen:    generator,
		params: params,
		logger: logger,
		edited: make(map[[3]int]block.Buffer),
	}
}

// Run processes requests until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-w.ch.Requests():
			w.Handle(req)
		}
	}
}

// Handle services a single request synchronously. Exposed so tests can drive
// the worker without a goroutine.
func (w *Worker) Handle(req Request) {
	switch r := req.(type) {
	case InitRequest:
		w.handleInit(r)
	case GenerateSection:
		w.handleGenerate(r)
	case UpdateBlock:
		w.applyEdits([]BlockEdit{r.BlockEdit})
	case BulkEdits:
		w.applyEdits(r.Edits)
	case Regenerate:
		w.handleRegenerate(r)
	default:
		w.fail(fmt.Sprintf("unsupported request %T", req))
	}
}

func (w *Worker) handleInit(req InitRequest) {
	if w.initialized {
		w.fail("init received twice")
		return
	}
	if req.ServerConfig.ChunkSize > 0 {
		w.params.Size = req.ServerConfig.ChunkSize
	}
	if req.ServerConfig.VerticalSections > 0 {
		w.params.VerticalSections = req.ServerConfig.VerticalSections
	}
	if req.ServerConfig.WorldRadius > 0 {
		w.params.WorldRadius = req.ServerConfig.WorldRadius
	}
	w.gen.Reseed(req.Seed)
	w.initialized = true
}

func (w *Worker) handleGenerate(req GenerateSection) {
	if !w.initialized {
		w.fail("generateSection before init")
		return
	}
	if !w.inBounds(req.ChunkX, req.ChunkY, req.ChunkZ) {
		w.fail(fmt.Sprintf("section (%d,%d,%d) out of world bounds", req.ChunkX, req.ChunkY, req.ChunkZ))
		return
	}
	w.ch.Respond(SectionGenerated{
		ChunkX: req.ChunkX,
		ChunkY: req.ChunkY,
		ChunkZ: req.ChunkZ,
		Blocks: w.section(req.ChunkX, req.ChunkY, req.ChunkZ).Clone(),
	})
}

func (w *Worker) applyEdits(edits []BlockEdit) {
	if !w.initialized {
		w.fail("block edit before init")
		return
	}

	touched := make(map[[3]int]struct{})
	for _, edit := range edits {
		if !w.inBounds(edit.ChunkX, edit.ChunkY, edit.ChunkZ) {
			w.fail(fmt.Sprintf("edit targets section (%d,%d,%d) out of world bounds", edit.ChunkX, edit.ChunkY, edit.ChunkZ))
			continue
		}
		size := w.params.Size
		if edit.LocalX < 0 || edit.LocalY < 0 || edit.LocalZ < 0 ||
			edit.LocalX >= size || edit.LocalY >= size || edit.LocalZ >= size {
			w.fail(fmt.Sprintf("edit local (%d,%d,%d) outside section", edit.LocalX, edit.LocalY, edit.LocalZ))
			continue
		}

		key := [3]int{edit.ChunkX, edit.ChunkY, edit.ChunkZ}
		buf, ok := w.edited[key]
		if !ok {
			buf = w.gen.Section(edit.ChunkX, edit.ChunkY, edit.ChunkZ)
			w.edited[key] = buf
		}
		buf.Set(edit.LocalX, edit.LocalY, edit.LocalZ, size, edit.Block)
		touched[key] = struct{}{}
	}

	for key := range touched {
		w.ch.Respond(SectionUpdated{
			ChunkX: key[0],
			ChunkY: key[1],
			ChunkZ: key[2],
			Blocks: w.edited[key].Clone(),
		})
	}
}

func (w *Worker) handleRegenerate(req Regenerate) {
	if !w.initialized {
		w.fail("regenerate before init")
		return
	}
	w.edited = make(map[[3]int]block.Buffer)
	w.gen.Reseed(req.Seed)
	w.ch.Respond(Regenerated{Seed: req.Seed})
}

func (w *Worker) section(cx, cy, cz int) block.Buffer {
	if buf, ok := w.edited[[3]int{cx, cy, cz}]; ok {
		return buf
	}
	return w.gen.Section(cx, cy, cz)
}

func (w *Worker) inBounds(cx, cy, cz int) bool {
	if cy < 0 || cy >= w.params.VerticalSections {
		return false
	}
	r := w.params.WorldRadius
	return cx >= -r && cx <= r && cz >= -r && cz <= r
}

func (w *Worker) fail(detail string) {
	w.logger.Printf("worker error: %s", detail)
	w.ch.Respond(GenError{Detail: detail})
}
