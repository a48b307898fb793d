package network

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/klauspost/compress/zstd"

	"github.com/pstepanovum/minecraft-classic-sub002/internal/mesh"
)

// CompressedPayload carries a binary instance buffer through JSON. Positions
// are packed as little-endian float64 x,y,z triples, zstd-compressed and
// base64-encoded. The uncompressed size lets clients preallocate.
type CompressedPayload struct {
	Format           string `json:"format"` // "zstd_base64"
	Data             string `json:"data"`
	Size             int    `json:"size"`
	UncompressedSize int    `json:"uncompressed_size"`
}

const payloadFormat = "zstd_base64"

// CompressInstances packs instance centroids into the wire payload.
func CompressInstances(instances []mesh.Instance) (*CompressedPayload, error) {
	raw := make([]byte, 0, len(instances)*24)
	var scratch [8]byte
	for _, inst := range instances {
		for _, v := range [3]float64{inst.X, inst.Y, inst.Z} {
			binary.LittleEndian.PutUint64(scratch[:], math.Float64bits(v))
			raw = append(raw, scratch[:]...)
		}
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	compressed := enc.EncodeAll(raw, nil)
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close zstd encoder: %w", err)
	}

	return &CompressedPayload{
		Format:           payloadFormat,
		Data:             base64.StdEncoding.EncodeToString(compressed),
		Size:             len(compressed),
		UncompressedSize: len(raw),
	}, nil
}

// DecompressInstances reverses CompressInstances.
func DecompressInstances(payload *CompressedPayload) ([]mesh.Instance, error) {
	if payload.Format != payloadFormat {
		return nil, fmt.Errorf("unsupported payload format %q", payload.Format)
	}
	compressed, err := base64.StdEncoding.DecodeString(payload.Data)
	if err != nil {
		return nil, fmt.Errorf("decode base64 payload: %w", err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress payload: %w", err)
	}
	if len(raw)%24 != 0 {
		return nil, fmt.Errorf("payload length %d is not a whole number of triples", len(raw))
	}

	instances := make([]mesh.Instance, 0, len(raw)/24)
	for off := 0; off < len(raw); off += 24 {
		instances = append(instances, mesh.Instance{
			X: math.Float64frombits(binary.LittleEndian.Uint64(raw[off:])),
			Y: math.Float64frombits(binary.LittleEndian.Uint64(raw[off+8:])),
			Z: math.Float64frombits(binary.LittleEndian.Uint64(raw[off+16:])),
		})
	}
	return instances, nil
}
