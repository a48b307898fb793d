// Package gen implements the message boundary between the streaming
// scheduler and the background generation worker. The worker is the sole
// writer of authoritative block data; everything crossing the channel is a
// completed copy, never a reference into the worker's own store.
package gen

import (
	"encoding/json"
	"fmt"

	"github.com/pstepanovum/minecraft-classic-sub002/internal/block"
)

type MessageType string

const (
	// Scheduler -> worker.
	MessageInit            MessageType = "init"
	MessageGenerateSection MessageType = "generateSection"
	MessageUpdateBlock     MessageType = "updateBlock"
	MessageApplyBulkEdits  MessageType = "applyBulkEdits"
	MessageRegenerate      MessageType = "regenerate"

	// Worker -> scheduler.
	MessageSectionGenerated MessageType = "sectionGenerated"
	MessageSectionUpdated   MessageType = "sectionUpdated"
	MessageRegenerated      MessageType = "regenerated"
	MessageError            MessageType = "error"
)

// Envelope frames a message for JSON transports and logs. In-process the
// typed Request/Response values travel directly over the channel.
type Envelope struct {
	Type    MessageType     `json:"type"`
	Seq     uint64          `json:"seq,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// Request is a message addressed to the generation worker.
type Request interface {
	requestType() MessageType
}

// Response is a message emitted by the generation worker.
type Response interface {
	responseType() MessageType
}

// WorldParams is the server-side geometry stanza of the init message.
type WorldParams struct {
	ChunkSize        int `json:"chunk_size"`
	VerticalSections int `json:"vertical_sections"`
	WorldRadius      int `json:"world_radius"`
}

// ClientParams is the client-facing stanza of the init message.
type ClientParams struct {
	ViewRadius  int `json:"view_radius"`
	FrameBudget int `json:"frame_budget"`
}

// InitRequest is sent exactly once, before any generation request.
type InitRequest struct {
	ServerConfig   WorldParams        `json:"server_config"`
	ClientConfig   ClientParams       `json:"client_config"`
	Seed           int64              `json:"seed"`
	BlockTypeTable []block.Definition `json:"block_type_table"`
}

// GenerateSection asks the worker to populate one chunk section.
type GenerateSection struct {
	ChunkX int `json:"chunkX"`
	ChunkY int `json:"chunkY"`
	ChunkZ int `json:"chunkZ"`
}

// BlockEdit changes a single block within a section.
type BlockEdit struct {
	ChunkX int      `json:"chunkX"`
	ChunkY int      `json:"chunkY"`
	ChunkZ int      `json:"chunkZ"`
	LocalX int      `json:"localX"`
	LocalY int      `json:"localY"`
	LocalZ int      `json:"localZ"`
	Block  block.ID `json:"newType"`
}

// UpdateBlock carries one edit through the channel.
type UpdateBlock struct {
	BlockEdit
}

// BulkEdits carries a coalesced batch of edits.
type BulkEdits struct {
	Edits []BlockEdit `json:"edits"`
}

// Regenerate reseeds the world and discards every edited section.
type Regenerate struct {
	Seed int64 `json:"seed"`
}

// SectionGenerated answers a GenerateSection request.
type SectionGenerated struct {
	ChunkX int          `json:"chunkX"`
	ChunkY int          `json:"chunkY"`
	ChunkZ int          `json:"chunkZ"`
	Blocks block.Buffer `json:"blockArray"`
}

// SectionUpdated reports a section whose contents changed after an edit. It
// has the same shape as SectionGenerated and drives the same handling path.
type SectionUpdated struct {
	ChunkX int          `json:"chunkX"`
	ChunkY int          `json:"chunkY"`
	ChunkZ int          `json:"chunkZ"`
	Blocks block.Buffer `json:"blockArray"`
}

// Regenerated confirms a reseed; informational.
type Regenerated struct {
	Seed int64 `json:"seed"`
}

// GenError reports a failure as data. It never aborts the scheduler.
type GenError struct {
	Detail string `json:"detail"`
}

func (InitRequest) requestType() MessageType     { return MessageInit }
func (GenerateSection) requestType() MessageType { return MessageGenerateSection }
func (UpdateBlock) requestType() MessageType     { return MessageUpdateBlock }
func (BulkEdits) requestType() MessageType       { return MessageApplyBulkEdits }
func (Regenerate) requestType() MessageType      { return MessageRegenerate }

func (SectionGenerated) responseType() MessageType { return MessageSectionGenerated }
func (SectionUpdated) responseType() MessageType   { return MessageSectionUpdated }
func (Regenerated) responseType() MessageType      { return MessageRegenerated }
func (GenError) responseType() MessageType         { return MessageError }

// EncodeRequest frames a request for a JSON transport.
func EncodeRequest(seq uint64, req Request) (Envelope, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", req.requestType(), err)
	}
	return Envelope{Type: req.requestType(), Seq: seq, Payload: payload}, nil
}

// EncodeResponse frames a response for a JSON transport.
func EncodeResponse(seq uint64, resp Response) (Envelope, error) {
	payload, err := json.Marshal(resp)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", resp.responseType(), err)
	}
	return Envelope{Type: resp.responseType(), Seq: seq, Payload: payload}, nil
}

// DecodeRequest parses a framed request envelope.
func DecodeRequest(env Envelope) (Request, error) {
	switch env.Type {
	case MessageInit:
		var req InitRequest
		return req, unmarshalPayload(env, &req)
	case MessageGenerateSection:
		var req GenerateSection
		return req, unmarshalPayload(env, &req)
	case MessageUpdateBlock:
		var req UpdateBlock
		return req, unmarshalPayload(env, &req)
	case MessageApplyBulkEdits:
		var req BulkEdits
		return req, unmarshalPayload(env, &req)
	case MessageRegenerate:
		var req Regenerate
		return req, unmarshalPayload(env, &req)
	default:
		return nil, fmt.Errorf("unknown request type %q", env.Type)
	}
}

// DecodeResponse parses a framed response envelope.
func DecodeResponse(env Envelope) (Response, error) {
	switch env.Type {
	case MessageSectionGenerated:
		var resp SectionGenerated
		return resp, unmarshalPayload(env, &resp)
	case MessageSectionUpdated:
		var resp SectionUpdated
		return resp, unmarshalPayload(env, &resp)
	case MessageRegenerated:
		var resp Regenerated
		return resp, unmarshalPayload(env, &resp)
	case MessageError:
		var resp GenError
		return resp, unmarshalPayload(env, &resp)
	default:
		return nil, fmt.Errorf("unknown response type %q", env.Type)
	}
}

func unmarshalPayload(env Envelope, v any) error {
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", env.Type, err)
	}
	return nil
}
