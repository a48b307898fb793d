// Package world implements the column cache and the streaming scheduler that
// keeps the resident set of chunk sections aligned with the observer. All
// block truth flows through the generation worker; the scheduler only mirrors
// completed sections and never fabricates block data of its own.
package world

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/pstepanovum/minecraft-classic-sub002/internal/block"
	"github.com/pstepanovum/minecraft-classic-sub002/internal/config"
	"github.com/pstepanovum/minecraft-classic-sub002/internal/gen"
	"github.com/pstepanovum/minecraft-classic-sub002/internal/mesh"
)

// Streamer is the chunk streaming scheduler. It owns the cache of resident
// columns, decides which columns to load and unload around the observer, and
// smooths that work across frames under a fixed per-tick budget.
//
// SetObserverPosition, Tick and HandleResponse must be called from a single
// coordinator goroutine. Read access through BlockTypeAt is safe from any
// goroutine.
type Streamer struct {
	chunkCfg  config.ChunkConfig
	budget    int
	scene     mesh.Scene
	channel   *gen.Channel
	builder   *mesh.Builder
	logger    *log.Logger

	mu     sync.RWMutex
	chunks map[ChunkCoord]*Chunk

	loadQueue   *coordQueue
	unloadQueue *coordQueue
	edits       *editBatcher

	observer    ChunkCoord
	hasObserver bool
	draining    bool

	now func() time.Time
}

// NewStreamer wires a scheduler against a scene and a generation channel.
// The scene may be nil when no renderer is attached.
func NewStreamer(cfg *config.Config, scene mesh.Scene, channel *gen.Channel, logger *log.Logger) *Streamer {
	if scene == nil {
		scene = mesh.NullScene{}
	}
	if logger == nil {
		logger = log.New(log.Writer(), "streamer ", log.LstdFlags|log.Lmicroseconds)
	}
	return &Streamer{
		chunkCfg: cfg.Chunk,
		budget:   cfg.Server.FrameBudget,
		scene:    scene,
		channel:  channel,
		builder: mesh.NewBuilder(mesh.Options{
			Size:       cfg.Chunk.Size,
			CullBuried: cfg.Mesh.CullBuried,
		}),
		logger:      logger,
		chunks:      make(map[ChunkCoord]*Chunk),
		loadQueue:   newCoordQueue(cfg.Chunk.LoadQueueLimit),
		unloadQueue: newCoordQueue(0),
		edits:       newEditBatcher(cfg.Worker.EditDebounce.Duration()),
		now:         time.Now,
	}
}

// SetObserverPosition re-derives the desired column set around a world-space
// position. A position landing in the same column as before is a no-op, so
// callers may forward every movement sample without cost.
func (s *Streamer) SetObserverPosition(x, y, z float64) {
	_ = y // residency is column-keyed; height does not affect the desired set
	column := ColumnForWorld(x, z, s.chunkCfg.Size)
	if s.hasObserver && column == s.observer {
		return
	}
	s.observer = column
	s.hasObserver = true
	s.rederive()
}

// rederive recomputes the desired set and reconciles both work queues with
// it. Queued loads that fell out of range are pruned rather than honoured;
// the columns the observer left behind go on the unload queue.
func (s *Streamer) rederive() {
	radiusSq := s.chunkCfg.ViewRadius * s.chunkCfg.ViewRadius

	desired := make(map[ChunkCoord]struct{})
	var wanted []ChunkCoord
	for dx := -s.chunkCfg.ViewRadius; dx <= s.chunkCfg.ViewRadius; dx++ {
		for dz := -s.chunkCfg.ViewRadius; dz <= s.chunkCfg.ViewRadius; dz++ {
			if dx*dx+dz*dz > radiusSq {
				continue
			}
			coord := ChunkCoord{X: s.observer.X + dx, Z: s.observer.Z + dz}
			if !s.inWorld(coord) {
				continue
			}
			desired[coord] = struct{}{}
			wanted = append(wanted, coord)
		}
	}

	s.loadQueue.Prune(func(c ChunkCoord) bool {
		_, ok := desired[c]
		return ok
	})
	s.unloadQueue.Prune(func(c ChunkCoord) bool {
		_, ok := desired[c]
		return !ok
	})

	// Nearest first so the ground under the observer appears before the
	// horizon. Ties break on X then Z for a stable order.
	sort.Slice(wanted, func(i, j int) bool {
		di := wanted[i].DistanceSq(s.observer)
		dj := wanted[j].DistanceSq(s.observer)
		if di != dj {
			return di < dj
		}
		if wanted[i].X != wanted[j].X {
			return wanted[i].X < wanted[j].X
		}
		return wanted[i].Z < wanted[j].Z
	})

	s.mu.RLock()
	for _, coord := range wanted {
		if _, resident := s.chunks[coord]; resident {
			continue
		}
		s.loadQueue.Enqueue(coord)
	}
	for coord := range s.chunks {
		if _, keep := desired[coord]; !keep {
			s.unloadQueue.Enqueue(coord)
		}
	}
	s.mu.RUnlock()
}

// Tick performs one frame of streaming work: flush any due block edits, then
// issue up to the frame budget of loads and unloads. It reports whether any
// work remains queued after the tick.
func (s *Streamer) Tick() bool {
	s.flushEdits(false)

	for _, coord := range s.loadQueue.Drain(s.budget) {
		s.issueLoad(coord)
	}
	for _, coord := range s.unloadQueue.Drain(s.budget) {
		s.unload(coord)
	}

	s.draining = s.loadQueue.Len() > 0 || s.unloadQueue.Len() > 0
	return s.draining
}

// issueLoad reserves the cache slot for a column and requests every one of
// its sections from the worker. The reservation is what prevents duplicate
// requests while generation is in flight.
func (s *Streamer) issueLoad(coord ChunkCoord) {
	s.mu.Lock()
	if _, resident := s.chunks[coord]; resident {
		s.mu.Unlock()
		return
	}
	s.chunks[coord] = newChunk(coord)
	s.mu.Unlock()

	for cy := 0; cy < s.chunkCfg.VerticalSections; cy++ {
		s.channel.Send(gen.GenerateSection{ChunkX: coord.X, ChunkY: cy, ChunkZ: coord.Z})
	}
}

// unload evicts a column and releases all of its scene resources.
func (s *Streamer) unload(coord ChunkCoord) {
	s.mu.Lock()
	chunk, ok := s.chunks[coord]
	if ok {
		delete(s.chunks, coord)
	}
	s.mu.Unlock()
	if ok {
		chunk.dispose(s.scene)
	}
}

// HandleResponse folds one worker message into the cache. Section payloads
// for columns no longer resident are discarded: a completed response must
// never resurrect an evicted column.
func (s *Streamer) HandleResponse(resp gen.Response) {
	switch r := resp.(type) {
	case gen.SectionGenerated:
		s.storeSection(r.ChunkX, r.ChunkY, r.ChunkZ, r.Blocks)
	case gen.SectionUpdated:
		s.storeSection(r.ChunkX, r.ChunkY, r.ChunkZ, r.Blocks)
	case gen.Regenerated:
		s.logger.Printf("world regenerated with seed %d", r.Seed)
	case gen.GenError:
		s.logger.Printf("generation worker error: %s", r.Detail)
	default:
		s.logger.Printf("unhandled worker response %T", resp)
	}
}

func (s *Streamer) storeSection(cx, cy, cz int, blocks block.Buffer) {
	if cy < 0 || cy >= s.chunkCfg.VerticalSections {
		s.logger.Printf("discarding section (%d,%d,%d): vertical index out of range", cx, cy, cz)
		return
	}
	coord := ChunkCoord{X: cx, Z: cz}

	batches := s.builder.Build(blocks, cx, cy, cz)

	s.mu.Lock()
	chunk, resident := s.chunks[coord]
	if !resident {
		s.mu.Unlock()
		// Stale response: the column was evicted while generation was in
		// flight. Dropping it keeps eviction final.
		return
	}
	entry := &MeshEntry{Blocks: blocks, Batches: batches}
	if batches != nil {
		entry.handle = s.scene.Add(batches)
	}
	chunk.setSection(cy, entry, s.scene)
	s.mu.Unlock()
}

// ApplyBlockEdit records a block change at a world position. The edit is
// coalesced under the debounce window and routed through the worker; the
// cache updates only when the worker answers with the rebuilt section.
func (s *Streamer) ApplyBlockEdit(x, y, z int, id block.ID) {
	size := s.chunkCfg.Size
	coord := ChunkCoord{X: floorDiv(x, size), Z: floorDiv(z, size)}
	cy := floorDiv(y, size)
	if cy < 0 || cy >= s.chunkCfg.VerticalSections || !s.inWorld(coord) {
		s.logger.Printf("dropping edit at (%d,%d,%d): outside world bounds", x, y, z)
		return
	}
	edit := gen.BlockEdit{
		ChunkX: coord.X,
		ChunkY: cy,
		ChunkZ: coord.Z,
		LocalX: mod(x, size),
		LocalY: mod(y, size),
		LocalZ: mod(z, size),
		Block:  id,
	}
	s.edits.add([3]int{x, y, z}, edit, s.now())
}

// FlushEdits forces any pending edits out immediately, ignoring the debounce
// window. Used at shutdown and before a regenerate.
func (s *Streamer) FlushEdits() {
	s.flushEdits(true)
}

func (s *Streamer) flushEdits(force bool) {
	edits := s.edits.flush(s.now(), force)
	if len(edits) == 0 {
		return
	}
	if len(edits) == 1 {
		s.channel.Send(gen.UpdateBlock{BlockEdit: edits[0]})
		return
	}
	s.channel.Send(gen.BulkEdits{Edits: edits})
}

// BlockTypeAt answers a point query against resident data. Positions in
// columns that are absent, still generating, or outside the world read as
// air. The lookup is a pair of map accesses and an index, safe for tight
// per-frame loops.
func (s *Streamer) BlockTypeAt(x, y, z int) block.ID {
	size := s.chunkCfg.Size
	cy := floorDiv(y, size)
	if cy < 0 || cy >= s.chunkCfg.VerticalSections {
		return block.Air
	}
	coord := ChunkCoord{X: floorDiv(x, size), Z: floorDiv(z, size)}

	s.mu.RLock()
	defer s.mu.RUnlock()
	chunk, ok := s.chunks[coord]
	if !ok {
		return block.Air
	}
	entry := chunk.section(cy)
	if entry == nil {
		return block.Air
	}
	return entry.Blocks.At(mod(x, size), mod(y, size), mod(z, size), size)
}

// Draining reports whether queued work remained after the last tick.
func (s *Streamer) Draining() bool {
	return s.draining
}

// Resident reports whether a column currently occupies a cache slot.
func (s *Streamer) Resident(coord ChunkCoord) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.chunks[coord]
	return ok
}

// ResidentCount returns the number of occupied cache slots.
func (s *Streamer) ResidentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// SectionBatches returns the batch set for one resident section, or nil.
func (s *Streamer) SectionBatches(coord ChunkCoord, cy int) *mesh.BatchSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunk, ok := s.chunks[coord]
	if !ok {
		return nil
	}
	entry := chunk.section(cy)
	if entry == nil {
		return nil
	}
	return entry.Batches
}

// PendingLoads returns the current load queue depth.
func (s *Streamer) PendingLoads() int {
	return s.loadQueue.Len()
}

func (s *Streamer) inWorld(coord ChunkCoord) bool {
	r := s.chunkCfg.WorldRadius
	return coord.X >= -r && coord.X <= r && coord.Z >= -r && coord.Z <= r
}
