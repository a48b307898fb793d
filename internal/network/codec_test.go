package network

import (
	"testing"

	"github.com/pstepanovum/minecraft-classic-sub002/internal/mesh"
)

func TestCompressInstancesRoundTrip(t *testing.T) {
	instances := []mesh.Instance{
		{X: 0.5, Y: 0.5, Z: 0.5},
		{X: -15.5, Y: 63.5, Z: 1024.5},
		{X: 3.5, Y: 0.5, Z: -0.5},
	}

	payload, err := CompressInstances(instances)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if payload.Format != "zstd_base64" {
		t.Fatalf("format = %q", payload.Format)
	}
	if payload.UncompressedSize != len(instances)*24 {
		t.Fatalf("uncompressed size = %d, want %d", payload.UncompressedSize, len(instances)*24)
	}

	back, err := DecompressInstances(payload)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if len(back) != len(instances) {
		t.Fatalf("round trip count = %d", len(back))
	}
	for i := range instances {
		if back[i] != instances[i] {
			t.Fatalf("instance %d changed: %+v vs %+v", i, back[i], instances[i])
		}
	}
}

func TestCompressEmptyInstances(t *testing.T) {
	payload, err := CompressInstances(nil)
	if err != nil {
		t.Fatalf("compress empty: %v", err)
	}
	back, err := DecompressInstances(payload)
	if err != nil {
		t.Fatalf("decompress empty: %v", err)
	}
	if len(back) != 0 {
		t.Fatalf("empty round trip produced %d instances", len(back))
	}
}

func TestDecompressRejectsBadPayloads(t *testing.T) {
	if _, err := DecompressInstances(&CompressedPayload{Format: "gzip_base64"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if _, err := DecompressInstances(&CompressedPayload{Format: "zstd_base64", Data: "%%%"}); err == nil {
		t.Fatal("expected error for invalid base64")
	}
}
