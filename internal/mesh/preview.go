package mesh

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pstepanovum/minecraft-classic-sub002/internal/block"
)

const (
	previewTileWidth   = 8
	previewTileHeight  = 4
	previewBlockHeight = 6
)

// SavePreview renders an isometric debug PNG for the provided batch set. It
// exists purely for inspecting mesh output; the renderer never touches it.
func SavePreview(set *BatchSet, size int, table block.Table, outputDir string) error {
	if set == nil {
		return fmt.Errorf("batch set is nil")
	}
	if size <= 0 {
		return fmt.Errorf("invalid section size %d", size)
	}
	if table == nil {
		table = block.DefaultTable()
	}

	width := 2*size*previewTileWidth + previewTileWidth
	height := 2*size*previewTileHeight + size*previewBlockHeight + previewTileHeight
	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	background := color.NRGBA{R: 10, G: 10, B: 18, A: 255}
	draw.Draw(img, img.Bounds(), &image.Uniform{background}, image.Point{}, draw.Src)

	type cell struct {
		x, y, z int
		id      block.ID
	}
	var cells []cell
	for _, batch := range set.Batches {
		for _, inst := range batch.Instances {
			cells = append(cells, cell{
				x: int(math.Floor(inst.X)) - set.ChunkX*size,
				y: int(math.Floor(inst.Y)) - set.ChunkY*size,
				z: int(math.Floor(inst.Z)) - set.ChunkZ*size,
				id: batch.Block,
			})
		}
	}
	sort.Slice(cells, func(i, j int) bool {
		di := cells[i].x + cells[i].z
		dj := cells[j].x + cells[j].z
		if di != dj {
			return di < dj
		}
		return cells[i].y < cells[j].y
	})

	originX := size * previewTileWidth
	baseY := height - previewTileHeight
	for _, c := range cells {
		screenX := originX + (c.x-c.z)*previewTileWidth/2
		screenY := baseY - (c.x+c.z)*previewTileHeight/2 - c.y*previewBlockHeight
		fill := parseHexColor(table[c.id].Color)
		rect := image.Rect(screenX, screenY-previewBlockHeight, screenX+previewTileWidth, screenY)
		draw.Draw(img, rect.Intersect(img.Bounds()), &image.Uniform{fill}, image.Point{}, draw.Src)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create preview directory: %w", err)
	}
	path := filepath.Join(outputDir, fmt.Sprintf("section_%d_%d_%d.png", set.ChunkX, set.ChunkY, set.ChunkZ))
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create preview: %w", err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	return nil
}

func parseHexColor(s string) color.NRGBA {
	fallback := color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	if len(s) != 7 || s[0] != '#' {
		return fallback
	}
	r, err1 := strconv.ParseUint(s[1:3], 16, 8)
	g, err2 := strconv.ParseUint(s[3:5], 16, 8)
	b, err3 := strconv.ParseUint(s[5:7], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return fallback
	}
	return color.NRGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
}
