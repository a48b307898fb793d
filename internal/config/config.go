package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// Duration is a JSON-friendly wrapper around time.Duration that accepts human
// readable strings such as "150ms" in configuration files while still
// allowing numeric representations when necessary.
type Duration time.Duration

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// MarshalJSON encodes the duration using the canonical string representation.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON decodes a duration from either a string (e.g. "250ms") or a
// numeric value representing nanoseconds. Empty strings and null values decode
// to zero.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("duration: empty value")
	}
	if string(b) == "null" {
		*d = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("duration: decode string: %w", err)
		}
		if s == "" {
			*d = 0
			return nil
		}
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("duration: parse %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		*d = Duration(time.Duration(n))
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*d = Duration(time.Duration(f))
		return nil
	}
	return fmt.Errorf("duration: invalid value %s", string(b))
}

// UnmarshalYAML decodes a duration from a YAML scalar using the same rules as
// the JSON form.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err == nil {
		if s == "" {
			*d = 0
			return nil
		}
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("duration: parse %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := unmarshal(&n); err != nil {
		return fmt.Errorf("duration: invalid yaml value: %w", err)
	}
	*d = Duration(time.Duration(n))
	return nil
}

// Config captures the tunable parameters needed to bootstrap a world server.
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	Chunk   ChunkConfig   `json:"chunk" yaml:"chunk"`
	Terrain TerrainConfig `json:"terrain" yaml:"terrain"`
	Mesh    MeshConfig    `json:"mesh" yaml:"mesh"`
	Worker  WorkerConfig  `json:"worker" yaml:"worker"`
	Network NetworkConfig `json:"network" yaml:"network"`
}

type ServerConfig struct {
	ID                 string   `json:"id" yaml:"id"`
	Description        string   `json:"description" yaml:"description"`
	FrameRate          Duration `json:"frameRate" yaml:"frameRate"`                   // scheduling tick interval, e.g. "16ms"
	FrameBudget        int      `json:"frameBudget" yaml:"frameBudget"`               // max loads and unloads per tick
	ObserverFrameEvery int      `json:"observerFrameEvery" yaml:"observerFrameEvery"` // apply observer updates every Nth frame
}

type ChunkConfig struct {
	Size             int `json:"size" yaml:"size"`                         // section edge length in blocks
	VerticalSections int `json:"verticalSections" yaml:"verticalSections"` // sections stacked to cover world height
	WorldRadius      int `json:"worldRadius" yaml:"worldRadius"`           // world bounds, in columns from origin
	ViewRadius       int `json:"viewRadius" yaml:"viewRadius"`             // resident set radius, in columns
	LoadQueueLimit   int `json:"loadQueueLimit" yaml:"loadQueueLimit"`     // pending load cap; excess re-derived later
}

type TerrainConfig struct {
	Seed        int64   `json:"seed" yaml:"seed"`
	Frequency   float64 `json:"frequency" yaml:"frequency"`
	Amplitude   float64 `json:"amplitude" yaml:"amplitude"`
	Octaves     int     `json:"octaves" yaml:"octaves"`
	Persistence float64 `json:"persistence" yaml:"persistence"`
	Lacunarity  float64 `json:"lacunarity" yaml:"lacunarity"`
	SeaLevel    int     `json:"seaLevel" yaml:"seaLevel"`
}

type MeshConfig struct {
	// CullBuried skips instances for blocks whose six neighbours within the
	// section are all opaque. Ray and point queries stay correct either way
	// because they read the retained block array, not the batches.
	CullBuried bool `json:"cullBuried" yaml:"cullBuried"`
}

type WorkerConfig struct {
	EditDebounce   Duration `json:"editDebounce" yaml:"editDebounce"`     // coalescing window for bulk edits
	RequestBuffer  int      `json:"requestBuffer" yaml:"requestBuffer"`   // channel depth, scheduler -> worker
	ResponseBuffer int      `json:"responseBuffer" yaml:"responseBuffer"` // channel depth, worker -> scheduler
}

type NetworkConfig struct {
	Listen           string   `json:"listen" yaml:"listen"` // ":8765"
	HandshakeTimeout Duration `json:"handshakeTimeout" yaml:"handshakeTimeout"`
	WriteTimeout     Duration `json:"writeTimeout" yaml:"writeTimeout"`
	Compression      bool     `json:"compression" yaml:"compression"` // zstd-compress instance buffers
}

// Load reads configuration from a JSON file if provided. An empty path returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ID:                 "world-server-0",
			Description:        "local development world server",
			FrameRate:          Duration(16 * time.Millisecond),
			FrameBudget:        2,
			ObserverFrameEvery: 5,
		},
		Chunk: ChunkConfig{
			Size:             16,
			VerticalSections: 4,
			WorldRadius:      32,
			ViewRadius:       6,
			LoadQueueLimit:   512,
		},
		Terrain: TerrainConfig{
			Seed:        1337,
			Frequency:   0.02,
			Amplitude:   24,
			Octaves:     4,
			Persistence: 0.5,
			Lacunarity:  2.0,
			SeaLevel:    20,
		},
		Mesh: MeshConfig{
			CullBuried: false,
		},
		Worker: WorkerConfig{
			EditDebounce:   Duration(50 * time.Millisecond),
			RequestBuffer:  256,
			ResponseBuffer: 256,
		},
		Network: NetworkConfig{
			Listen:           ":8765",
			HandshakeTimeout: Duration(5 * time.Second),
			WriteTimeout:     Duration(5 * time.Second),
			Compression:      true,
		},
	}
}

func (c *Config) Validate() error {
	if c.Server.ID == "" {
		return errors.New("server.id must be set")
	}
	if c.Server.FrameBudget <= 0 {
		return errors.New("server.frameBudget must be positive")
	}
	if c.Server.ObserverFrameEvery <= 0 {
		return errors.New("server.observerFrameEvery must be positive")
	}
	if c.Chunk.Size <= 0 {
		return errors.New("chunk.size must be positive")
	}
	if c.Chunk.VerticalSections <= 0 {
		return errors.New("chunk.verticalSections must be positive")
	}
	if c.Chunk.WorldRadius <= 0 {
		return errors.New("chunk.worldRadius must be positive")
	}
	if c.Chunk.ViewRadius <= 0 {
		return errors.New("chunk.viewRadius must be positive")
	}
	if c.Chunk.ViewRadius > c.Chunk.WorldRadius {
		return errors.New("chunk.viewRadius cannot exceed chunk.worldRadius")
	}
	if c.Chunk.LoadQueueLimit <= 0 {
		return errors.New("chunk.loadQueueLimit must be positive")
	}
	if c.Terrain.Octaves <= 0 {
		return errors.New("terrain.octaves must be positive")
	}
	if c.Terrain.SeaLevel < 0 || c.Terrain.SeaLevel >= c.Chunk.Size*c.Chunk.VerticalSections {
		return errors.New("terrain.seaLevel must lie inside the world height")
	}
	if c.Network.Listen == "" {
		return errors.New("network.listen must be set")
	}
	return nil
}
