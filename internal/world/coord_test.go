package world

import "testing"

func TestColumnForWorld(t *testing.T) {
	cases := []struct {
		x, z float64
		want ChunkCoord
	}{
		{0, 0, ChunkCoord{0, 0}},
		{15.9, 15.9, ChunkCoord{0, 0}},
		{16, 0, ChunkCoord{1, 0}},
		{-0.1, -0.1, ChunkCoord{-1, -1}},
		{-16.0, -17.0, ChunkCoord{-1, -2}},
		{-17.0, 31.5, ChunkCoord{-2, 1}},
	}
	for _, tc := range cases {
		got := ColumnForWorld(tc.x, tc.z, 16)
		if got != tc.want {
			t.Fatalf("ColumnForWorld(%v, %v) = %v, want %v", tc.x, tc.z, got, tc.want)
		}
	}
}

func TestFloorDivNegative(t *testing.T) {
	cases := []struct {
		value, size, want int
	}{
		{0, 16, 0},
		{15, 16, 0},
		{16, 16, 1},
		{-1, 16, -1},
		{-16, 16, -1},
		{-17, 16, -2},
	}
	for _, tc := range cases {
		if got := floorDiv(tc.value, tc.size); got != tc.want {
			t.Fatalf("floorDiv(%d, %d) = %d, want %d", tc.value, tc.size, got, tc.want)
		}
	}
}

func TestModNonNegative(t *testing.T) {
	for _, v := range []int{-33, -16, -1, 0, 1, 15, 16, 33} {
		m := mod(v, 16)
		if m < 0 || m >= 16 {
			t.Fatalf("mod(%d, 16) = %d, out of range", v, m)
		}
	}
	if mod(-1, 16) != 15 {
		t.Fatalf("mod(-1, 16) = %d, want 15", mod(-1, 16))
	}
}

func TestDistanceSq(t *testing.T) {
	a := ChunkCoord{X: 1, Z: 2}
	b := ChunkCoord{X: 4, Z: 6}
	if got := a.DistanceSq(b); got != 25 {
		t.Fatalf("DistanceSq = %d, want 25", got)
	}
	if got := a.DistanceSq(a); got != 0 {
		t.Fatalf("DistanceSq to self = %d, want 0", got)
	}
}

func TestSectionColumn(t *testing.T) {
	s := SectionCoord{X: -3, Y: 2, Z: 7}
	if got := s.Column(); got != (ChunkCoord{X: -3, Z: 7}) {
		t.Fatalf("Column() = %v", got)
	}
}
