package world

// coordQueue is an ordered column queue with membership tracking, drained a
// bounded batch at a time. It is touched only from the coordinator
// goroutine, so it carries no lock of its own.
type coordQueue struct {
	pending []ChunkCoord
	members map[ChunkCoord]struct{}
	limit   int // 0 means unbounded
}

func newCoordQueue(limit int) *coordQueue {
	return &coordQueue{
		pending: make([]ChunkCoord, 0),
		members: make(map[ChunkCoord]struct{}),
		limit:   limit,
	}
}

// Enqueue appends the coordinate unless it is already queued or the queue is
// full. Overflow is acceptable: the desired set is re-derived on the next
// observer move.
func (q *coordQueue) Enqueue(coord ChunkCoord) bool {
	if _, ok := q.members[coord]; ok {
		return false
	}
	if q.limit > 0 && len(q.pending) >= q.limit {
		return false
	}
	q.pending = append(q.pending, coord)
	q.members[coord] = struct{}{}
	return true
}

// Contains reports whether the coordinate is currently queued.
func (q *coordQueue) Contains(coord ChunkCoord) bool {
	_, ok := q.members[coord]
	return ok
}

// Drain removes and returns at most max coordinates in queue order.
func (q *coordQueue) Drain(max int) []ChunkCoord {
	if len(q.pending) == 0 {
		return nil
	}
	n := len(q.pending)
	if max > 0 && max < n {
		n = max
	}
	batch := append([]ChunkCoord(nil), q.pending[:n]...)
	q.pending = q.pending[n:]
	for _, coord := range batch {
		delete(q.members, coord)
	}
	return batch
}

// Prune drops every queued coordinate the keep function rejects.
func (q *coordQueue) Prune(keep func(ChunkCoord) bool) {
	kept := q.pending[:0]
	for _, coord := range q.pending {
		if keep(coord) {
			kept = append(kept, coord)
			continue
		}
		delete(q.members, coord)
	}
	q.pending = kept
}

// Len returns the number of queued coordinates.
func (q *coordQueue) Len() int {
	return len(q.pending)
}
