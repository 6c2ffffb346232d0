// Package config loads the server configuration from a TOML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/gstoney/arrow/packet"
)

// Duration is a time.Duration written as a Go duration string ("15s").
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

type Config struct {
	Server  Server  `toml:"server"`
	World   World   `toml:"world"`
	Network Network `toml:"network"`
	Log     Log     `toml:"log"`
}

type Server struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
	// Motd may use legacy '&' color codes or be a JSON text component.
	Motd       string  `toml:"motd"`
	MaxPlayers int     `toml:"max_players"`
	Favicon    string  `toml:"favicon"` // path to a 64x64 PNG, optional
	Version    Version `toml:"version"`
}

// Version is the range of protocol versions the server accepts.
type Version struct {
	Name string `toml:"name"`
	Min  int32  `toml:"min"`
	Max  int32  `toml:"max"`
}

func (v Version) Contains(protocol int32) bool {
	return protocol >= v.Min && protocol <= v.Max
}

type World struct {
	Gamemode     string `toml:"gamemode"`
	Difficulty   string `toml:"difficulty"`
	LevelType    string `toml:"level_type"`
	ViewDistance int    `toml:"view_distance"`
	Hardcore     bool   `toml:"hardcore"`
	Seed         int64  `toml:"seed"`
}

type Network struct {
	// CompressionThreshold of -1 disables compression.
	CompressionThreshold int      `toml:"compression_threshold"`
	KeepAliveInterval    Duration `toml:"keepalive_interval"`
	ReadTimeout          Duration `toml:"read_timeout"`
	// StrictPlay disconnects clients sending Play packets the server does
	// not know instead of ignoring them.
	StrictPlay     bool     `toml:"strict_play"`
	ProxyProtocol  bool     `toml:"proxy_protocol"`
	StatusCacheTTL Duration `toml:"status_cache_ttl"`
	Quota          Quota    `toml:"quota"`
}

// Quota limits new connections per IP block. Zero ConnectionsPerSecond
// disables it.
type Quota struct {
	ConnectionsPerSecond float32 `toml:"connections_per_second"`
	Burst                int     `toml:"burst"`
	MaxEntries           int     `toml:"max_entries"`
}

type Log struct {
	File  string `toml:"file"`
	Debug bool   `toml:"debug"`
}

// Default returns the configuration used when no file exists and the base
// that a loaded file overrides.
func Default() Config {
	return Config{
		Server: Server{
			Host:       "0.0.0.0",
			Port:       25565,
			Motd:       "Arrow - A minecraft server written in Go",
			MaxPlayers: 42,
			Version: Version{
				Name: "Arrow",
				Min:  packet.Minecraft_1_8,
				Max:  packet.Minecraft_1_16_4,
			},
		},
		World: World{
			Gamemode:     "survival",
			Difficulty:   "peaceful",
			LevelType:    string(packet.LevelDefault),
			ViewDistance: 10,
		},
		Network: Network{
			CompressionThreshold: 256,
			KeepAliveInterval:    Duration(15 * time.Second),
			ReadTimeout:          Duration(30 * time.Second),
			StatusCacheTTL:       Duration(5 * time.Second),
			Quota: Quota{
				ConnectionsPerSecond: 3,
				Burst:                10,
				MaxEntries:           1024,
			},
		},
		Log: Log{
			File: "output.log",
		},
	}
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	e := func(format string, a ...any) {
		errs = append(errs, fmt.Errorf(format, a...))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		e("server.port %d is out of range", c.Server.Port)
	}
	if c.Server.MaxPlayers < 0 {
		e("server.max_players must not be negative")
	}
	v := c.Server.Version
	if v.Min <= 0 || v.Max <= 0 {
		e("server.version range must be set")
	} else if v.Min > v.Max {
		e("server.version.min %d is above max %d", v.Min, v.Max)
	} else if v.Min < packet.Minecraft_1_8 || v.Max > packet.Minecraft_1_16_4 {
		e("server.version range %d..%d is outside the supported %d..%d",
			v.Min, v.Max, packet.Minecraft_1_8, packet.Minecraft_1_16_4)
	}
	if _, err := packet.ParseGamemode(c.World.Gamemode); err != nil {
		e("world.gamemode: %v", err)
	}
	if _, err := packet.ParseDifficulty(c.World.Difficulty); err != nil {
		e("world.difficulty: %v", err)
	}
	if _, err := packet.ParseLevelType(c.World.LevelType); err != nil {
		e("world.level_type: %v", err)
	}
	if c.World.ViewDistance < 2 || c.World.ViewDistance > 32 {
		e("world.view_distance %d is outside 2..32", c.World.ViewDistance)
	}
	if c.Network.KeepAliveInterval <= 0 {
		e("network.keepalive_interval must be positive")
	}
	if c.Network.ReadTimeout > 0 && c.Network.ReadTimeout <= c.Network.KeepAliveInterval {
		e("network.read_timeout must be longer than network.keepalive_interval")
	}
	if q := c.Network.Quota; q.ConnectionsPerSecond > 0 && (q.Burst <= 0 || q.MaxEntries <= 0) {
		e("network.quota burst and max_entries must be positive")
	}
	return errors.Join(errs...)
}

// Load reads the file at path over the defaults. When the file does not
// exist it is created with the defaults, which are returned. Keys the file
// sets that Config does not know are returned as undecoded.
func Load(path string) (cfg Config, undecoded []string, err error) {
	cfg = Default()
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil, Write(path, cfg)
	}
	if err != nil {
		return Default(), nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	for _, k := range md.Undecoded() {
		undecoded = append(undecoded, k.String())
	}
	return cfg, undecoded, nil
}

// Encode renders cfg as TOML.
func Encode(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write stores cfg at path.
func Write(path string, cfg Config) error {
	b, err := Encode(cfg)
	if err != nil {
		return err
	}
	if err = os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
