package gen_test

import (
	"bytes"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/pstepanovum/minecraft-classic-sub002/internal/block"
	"github.com/pstepanovum/minecraft-classic-sub002/internal/gen"
)

func TestRequestEnvelopeRoundTrip(t *testing.T) {
	requests := []gen.Request{
		gen.InitRequest{
			ServerConfig:   gen.WorldParams{ChunkSize: 16, VerticalSections: 4, WorldRadius: 32},
			ClientConfig:   gen.ClientParams{ViewRadius: 6, FrameBudget: 2},
			Seed:           42,
			BlockTypeTable: block.DefaultDefinitions(),
		},
		gen.GenerateSection{ChunkX: -5, ChunkY: 2, ChunkZ: 9},
		gen.UpdateBlock{BlockEdit: gen.BlockEdit{ChunkX: 1, LocalX: 2, LocalY: 3, LocalZ: 4, Block: block.Sand}},
		gen.BulkEdits{Edits: []gen.BlockEdit{{Block: block.Wood}, {LocalX: 1, Block: block.Air}}},
		gen.Regenerate{Seed: 7},
	}
	for _, req := range requests {
		env, err := gen.EncodeRequest(1, req)
		if err != nil {
			t.Fatalf("encode %T: %v", req, err)
		}
		decoded, err := gen.DecodeRequest(env)
		if err != nil {
			t.Fatalf("decode %T: %v", req, err)
		}
		if !reflect.DeepEqual(decoded, req) {
			t.Fatalf("round trip changed %T:\n got %#v\nwant %#v", req, decoded, req)
		}
	}
}

func TestResponseEnvelopeRoundTrip(t *testing.T) {
	blocks := block.NewBuffer(2)
	blocks.Set(1, 1, 1, 2, block.Stone)

	responses := []gen.Response{
		gen.SectionGenerated{ChunkX: 3, ChunkY: 1, ChunkZ: -2, Blocks: blocks},
		gen.SectionUpdated{ChunkX: 0, ChunkY: 0, ChunkZ: 0, Blocks: blocks},
		gen.Regenerated{Seed: 99},
		gen.GenError{Detail: "section (40,0,0) out of world bounds"},
	}
	for _, resp := range responses {
		env, err := gen.EncodeResponse(2, resp)
		if err != nil {
			t.Fatalf("encode %T: %v", resp, err)
		}
		decoded, err := gen.DecodeResponse(env)
		if err != nil {
			t.Fatalf("decode %T: %v", resp, err)
		}
		if !reflect.DeepEqual(decoded, resp) {
			t.Fatalf("round trip changed %T:\n got %#v\nwant %#v", resp, decoded, resp)
		}
	}
}

func TestDecodeUnknownTypeFails(t *testing.T) {
	env := gen.Envelope{Type: "teleport", Payload: []byte(`{}`)}
	if _, err := gen.DecodeRequest(env); err == nil {
		t.Fatal("expected error for unknown request type")
	}
	if _, err := gen.DecodeResponse(env); err == nil {
		t.Fatal("expected error for unknown response type")
	}
}

// Block arrays must travel as flat numeric JSON arrays, not as an encoded
// string, so every consumer can index them directly.
func TestBlockArrayMarshalsAsNumbers(t *testing.T) {
	buf := block.Buffer{0, 1, 12, 250}
	data, err := json.Marshal(buf)
	if err != nil {
		t.Fatalf("marshal buffer: %v", err)
	}
	if !bytes.Equal(data, []byte("[0,1,12,250]")) {
		t.Fatalf("buffer marshalled as %s", data)
	}
}
