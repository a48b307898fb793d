package world

import (
	"time"

	"github.com/pstepanovum/minecraft-classic-sub002/internal/gen"
)

// editBatcher coalesces block edits under a short debounce so bulk world
// changes reach the worker as one applyBulkEdits message instead of a flood
// of single updates. Later edits to the same block supersede earlier ones.
type editBatcher struct {
	debounce time.Duration
	pending  map[[3]int]gen.BlockEdit // keyed by world block coordinate
	order    [][3]int
	oldest   time.Time
}

func newEditBatcher(debounce time.Duration) *editBatcher {
	return &editBatcher{
		debounce: debounce,
		pending:  make(map[[3]int]gen.BlockEdit),
	}
}

func (b *editBatcher) add(key [3]int, edit gen.BlockEdit, now time.Time) {
	if len(b.pending) == 0 {
		b.oldest = now
	}
	if _, ok := b.pending[key]; !ok {
		b.order = append(b.order, key)
	}
	b.pending[key] = edit
}

// flush returns the coalesced edits once the debounce window has elapsed
// (or immediately when forced), in first-edit order; nil otherwise.
func (b *editBatcher) flush(now time.Time, force bool) []gen.BlockEdit {
	if len(b.pending) == 0 {
		return nil
	}
	if !force && now.Sub(b.oldest) < b.debounce {
		return nil
	}
	edits := make([]gen.BlockEdit, 0, len(b.pending))
	for _, key := range b.order {
		edits = append(edits, b.pending[key])
	}
	b.pending = make(map[[3]int]gen.BlockEdit)
	b.order = nil
	return edits
}

func (b *editBatcher) empty() bool {
	return len(b.pending) == 0
}
