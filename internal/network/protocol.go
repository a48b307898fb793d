package network

import (
	"encoding/json"
	"time"

	"github.com/pstepanovum/minecraft-classic-sub002/internal/block"
)

type MessageType string

const (
	// Client -> server.
	MessageObserver           MessageType = "observer"
	MessageBlockEdit          MessageType = "blockEdit"
	MessageApplyModifications MessageType = "applyModifications"
	MessageCast               MessageType = "cast"

	// Server -> client.
	MessageWelcome        MessageType = "welcome"
	MessageBatchesAdded   MessageType = "batchesAdded"
	MessageBatchesRemoved MessageType = "batchesRemoved"
	MessageCastResult     MessageType = "castResult"
	MessageError          MessageType = "error"
)

type Envelope struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Seq       uint64          `json:"seq"`
	Payload   json.RawMessage `json:"payload"`
}

// ObserverUpdate reports the viewer's world-space position. Sent freely; the
// scheduler collapses samples that stay within one column.
type ObserverUpdate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// BlockEdit changes one block at a world position.
type BlockEdit struct {
	X     int      `json:"x"`
	Y     int      `json:"y"`
	Z     int      `json:"z"`
	Block block.ID `json:"newType"`
}

// ApplyModifications carries a client-side batch of edits.
type ApplyModifications struct {
	Edits []BlockEdit `json:"edits"`
}

// CastRequest traces a ray against the resident world.
type CastRequest struct {
	OriginX     float64 `json:"originX"`
	OriginY     float64 `json:"originY"`
	OriginZ     float64 `json:"originZ"`
	DirX        float64 `json:"dirX"`
	DirY        float64 `json:"dirY"`
	DirZ        float64 `json:"dirZ"`
	MaxDistance float64 `json:"maxDistance"`
}

// Welcome is the first message on a fresh session. It fixes the world
// geometry and the block palette the client renders with.
type Welcome struct {
	ServerID         string             `json:"serverId"`
	Description      string             `json:"description"`
	ChunkSize        int                `json:"chunkSize"`
	VerticalSections int                `json:"verticalSections"`
	WorldRadius      int                `json:"worldRadius"`
	ViewRadius       int                `json:"viewRadius"`
	BlockTypes       []block.Definition `json:"blockTypes"`
}

// InstanceBatch is the wire form of one block type's instances within a
// section. Positions travel either inline or zstd-compressed depending on
// the server's compression setting.
type InstanceBatch struct {
	Block      block.ID           `json:"blockType"`
	Count      int                `json:"count"`
	Positions  []float64          `json:"positions,omitempty"` // x,y,z triples
	Compressed *CompressedPayload `json:"compressed,omitempty"`
}

// BatchesAdded publishes the renderable content of one section. The ID is
// the server-side handle; BatchesRemoved retires it.
type BatchesAdded struct {
	ID      uint64          `json:"id"`
	ChunkX  int             `json:"chunkX"`
	ChunkY  int             `json:"chunkY"`
	ChunkZ  int             `json:"chunkZ"`
	Batches []InstanceBatch `json:"batches"`
}

type BatchesRemoved struct {
	ID uint64 `json:"id"`
}

// CastResult answers a CastRequest. Hit false means the ray exhausted its
// range or left the resident world.
type CastResult struct {
	Seq      uint64   `json:"seq"` // echo of the request envelope
	Hit      bool     `json:"hit"`
	X        int      `json:"x,omitempty"`
	Y        int      `json:"y,omitempty"`
	Z        int      `json:"z,omitempty"`
	PrevX    int      `json:"prevX,omitempty"`
	PrevY    int      `json:"prevY,omitempty"`
	PrevZ    int      `json:"prevZ,omitempty"`
	NormalX  int      `json:"normalX,omitempty"`
	NormalY  int      `json:"normalY,omitempty"`
	NormalZ  int      `json:"normalZ,omitempty"`
	Block    block.ID `json:"blockType,omitempty"`
	Distance float64  `json:"distance,omitempty"`
}

type ErrorMsg struct {
	Detail string `json:"detail"`
}

func Encode(msg Envelope) ([]byte, error) {
	return json.Marshal(msg)
}

func Decode(data []byte) (Envelope, error) {
	var env Envelope
	err := json.Unmarshal(data, &env)
	return env, err
}
