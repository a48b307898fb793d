package block

// ID is a compact numeric block type code. Zero is always air. Codes at or
// above SentinelBase are reserved for boundary systems (out-of-world and
// containment markers) and are never assigned by generation.
type ID uint16

const (
	Air ID = iota
	Grass
	Dirt
	Stone
	Sand
	Gravel
	Wood
	Leaves
	Water
	CoalOre
	IronOre
	GoldOre
	Bedrock
)

// SentinelBase marks the start of the reserved code range.
const SentinelBase ID = 250

const (
	// Barrier is the containment block placed by boundary systems.
	Barrier ID = SentinelBase + iota
	// OutOfWorld marks queries that fall outside the configured world bounds.
	OutOfWorld
)

// Buffer is the flat block array for one cubic chunk section of edge length
// size. Layout is x fastest, then y, then z: i = x + y*size + z*size*size.
type Buffer []ID

// NewBuffer allocates an all-air buffer for the given section edge length.
func NewBuffer(size int) Buffer {
	return make(Buffer, size*size*size)
}

// Index converts local coordinates to a flat buffer index.
func Index(x, y, z, size int) int {
	return x + y*size + z*size*size
}

// Local converts a flat buffer index back to local coordinates.
func Local(i, size int) (x, y, z int) {
	x = i % size
	y = (i / size) % size
	z = i / (size * size)
	return
}

// At returns the block at the given local coordinates, or air when the
// coordinates fall outside the section.
func (b Buffer) At(x, y, z, size int) ID {
	if x < 0 || y < 0 || z < 0 || x >= size || y >= size || z >= size {
		return Air
	}
	return b[Index(x, y, z, size)]
}

// Set writes the block at the given local coordinates. Out-of-range
// coordinates are ignored.
func (b Buffer) Set(x, y, z, size int, id ID) {
	if x < 0 || y < 0 || z < 0 || x >= size || y >= size || z >= size {
		return
	}
	b[Index(x, y, z, size)] = id
}

// Empty reports whether the buffer contains no non-air blocks.
func (b Buffer) Empty() bool {
	for _, id := range b {
		if id != Air {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the buffer. The generation worker
// clones every buffer it sends so its internal store is never shared.
func (b Buffer) Clone() Buffer {
	if b == nil {
		return nil
	}
	dup := make(Buffer, len(b))
	copy(dup, b)
	return dup
}
