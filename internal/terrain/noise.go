// Package terrain provides the default generation algorithm behind the
// worker: repeatable hashed value noise shaped into a heightmap with ore
// veins. The streaming core treats it as an opaque coordinates -> blocks
// function.
package terrain

import (
	"math"

	"github.com/pstepanovum/minecraft-classic-sub002/internal/block"
	"github.com/pstepanovum/minecraft-classic-sub002/internal/config"
)

// Generator creates repeatable terrain using hashed value noise.
type Generator struct {
	cfg      config.TerrainConfig
	seed     int64
	size     int
	sections int
}

func NewGenerator(cfg config.TerrainConfig, size, sections int) *Generator {
	return &Generator{
		cfg:      cfg,
		seed:     cfg.Seed,
		size:     size,
		sections: sections,
	}
}

// Reseed replaces the seed; subsequent sections derive from the new value.
func (g *Generator) Reseed(seed int64) {
	g.seed = seed
}

// Section populates one chunk section.
func (g *Generator) Section(cx, cy, cz int) block.Buffer {
	size := g.size
	buf := block.NewBuffer(size)
	worldHeight := size * g.sections

	for z := 0; z < size; z++ {
		for x := 0; x < size; x++ {
			wx := cx*size + x
			wz := cz*size + z
			h := g.heightAt(wx, wz)
			if h >= worldHeight {
				h = worldHeight - 1
			}

			for y := 0; y < size; y++ {
				wy := cy*size + y
				var id block.ID
				switch {
				case wy == 0:
					id = block.Bedrock
				case wy < h-4:
					id = g.oreOrStone(wx, wy, wz)
				case wy < h-1:
					id = block.Dirt
				case wy == h-1:
					if h <= g.cfg.SeaLevel {
						id = block.Sand
					} else {
						id = block.Grass
					}
				case wy < g.cfg.SeaLevel:
					id = block.Water
				default:
					id = block.Air
				}
				buf.Set(x, y, z, size, id)
			}
		}
	}
	return buf
}

// heightAt samples the fractal surface height for a world column.
func (g *Generator) heightAt(wx, wz int) int {
	frequency := g.cfg.Frequency
	amplitude := 1.0
	total := 0.0
	norm := 0.0
	for octave := 0; octave < g.cfg.Octaves; octave++ {
		total += g.valueNoise(float64(wx)*frequency, float64(wz)*frequency, octave) * amplitude
		norm += amplitude
		amplitude *= g.cfg.Persistence
		frequency *= g.cfg.Lacunarity
	}
	n := total / norm

	h := 2 + int(n*g.cfg.Amplitude)
	if h < 2 {
		h = 2
	}
	return h
}

func (g *Generator) oreOrStone(wx, wy, wz int) block.ID {
	roll := hash3(g.seed, wx, wy, wz) % 1000
	switch {
	case roll < 12:
		return block.GoldOre
	case roll < 40:
		return block.IronOre
	case roll < 90:
		return block.CoalOre
	case roll < 120:
		return block.Gravel
	default:
		return block.Stone
	}
}

// valueNoise interpolates lattice noise with a smoothstep fade.
func (g *Generator) valueNoise(x, z float64, octave int) float64 {
	x0 := int(math.Floor(x))
	z0 := int(math.Floor(z))
	fx := x - float64(x0)
	fz := z - float64(z0)

	seed := g.seed + int64(octave)*0x51ab
	v00 := lattice(seed, x0, z0)
	v10 := lattice(seed, x0+1, z0)
	v01 := lattice(seed, x0, z0+1)
	v11 := lattice(seed, x0+1, z0+1)

	sx := smoothstep(fx)
	sz := smoothstep(fz)
	top := v00 + (v10-v00)*sx
	bottom := v01 + (v11-v01)*sx
	return top + (bottom-top)*sz
}

func lattice(seed int64, x, z int) float64 {
	return float64(hash2(seed, x, z)%1_000_000) / 1_000_000
}

func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func hash2(seed int64, x, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uz := uint64(uint32(int32(z)))
	return mix64(uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uz * 0xbf58476d1ce4e5b9))
}

func hash3(seed int64, x, y, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uy := uint64(uint32(int32(y)))
	uz := uint64(uint32(int32(z)))
	return mix64(uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uy * 0xc2b2ae3d27d4eb4f) ^ (uz * 0xbf58476d1ce4e5b9))
}
