// Package world builds the registry data 1.16.2+ clients need to join:
// the dimension codec and the dimension type of the world they spawn in.
package world

import (
	"github.com/gstoney/arrow/catalog"
	"github.com/gstoney/arrow/packet"
)

const (
	dimensionTypeRegistry = "minecraft:dimension_type"
	biomeRegistry         = "minecraft:worldgen/biome"
)

// DimensionType is the element of a dimension_type registry entry.
// A FixedTime of zero leaves the day cycle running.
type DimensionType struct {
	PiglinSafe         bool    `nbt:"piglin_safe"`
	Natural            bool    `nbt:"natural"`
	AmbientLight       float32 `nbt:"ambient_light"`
	FixedTime          int64   `nbt:"fixed_time,omitempty"`
	Infiniburn         string  `nbt:"infiniburn"`
	RespawnAnchorWorks bool    `nbt:"respawn_anchor_works"`
	HasSkylight        bool    `nbt:"has_skylight"`
	BedWorks           bool    `nbt:"bed_works"`
	Effects            string  `nbt:"effects"`
	HasRaids           bool    `nbt:"has_raids"`
	LogicalHeight      int32   `nbt:"logical_height"`
	CoordinateScale    float64 `nbt:"coordinate_scale"`
	Ultrawarm          bool    `nbt:"ultrawarm"`
	HasCeiling         bool    `nbt:"has_ceiling"`
}

type BiomeEffects struct {
	SkyColor      int32     `nbt:"sky_color"`
	WaterFogColor int32     `nbt:"water_fog_color"`
	FogColor      int32     `nbt:"fog_color"`
	WaterColor    int32     `nbt:"water_color"`
	MoodSound     MoodSound `nbt:"mood_sound"`
}

type MoodSound struct {
	Sound             string  `nbt:"sound"`
	TickDelay         int32   `nbt:"tick_delay"`
	Offset            float64 `nbt:"offset"`
	BlockSearchExtent int32   `nbt:"block_search_extent"`
}

// Biome is the element of a worldgen/biome registry entry.
type Biome struct {
	Precipitation string       `nbt:"precipitation"`
	Depth         float32      `nbt:"depth"`
	Temperature   float32      `nbt:"temperature"`
	Scale         float32      `nbt:"scale"`
	Downfall      float32      `nbt:"downfall"`
	Category      string       `nbt:"category"`
	Effects       BiomeEffects `nbt:"effects"`
}

type registryEntry[T any] struct {
	Name    string `nbt:"name"`
	ID      int32  `nbt:"id"`
	Element T      `nbt:"element"`
}

type registry[T any] struct {
	Type  string             `nbt:"type"`
	Value []registryEntry[T] `nbt:"value"`
}

type codec struct {
	DimensionTypes registry[DimensionType] `nbt:"minecraft:dimension_type"`
	Biomes         registry[Biome]         `nbt:"minecraft:worldgen/biome"`
}

var caveMood = MoodSound{
	Sound:             "minecraft:ambient.cave",
	TickDelay:         6000,
	Offset:            2,
	BlockSearchExtent: 8,
}

// Dimension types in registry order; the index is the registry id.
var dimensionTypes = []struct {
	dim  packet.Dimension
	elem DimensionType
}{
	{packet.Overworld, DimensionType{
		Natural:         true,
		Infiniburn:      "minecraft:infiniburn_overworld",
		HasSkylight:     true,
		BedWorks:        true,
		Effects:         "minecraft:overworld",
		HasRaids:        true,
		LogicalHeight:   256,
		CoordinateScale: 1,
	}},
	{packet.Nether, DimensionType{
		PiglinSafe:         true,
		AmbientLight:       0.1,
		FixedTime:          18000,
		Infiniburn:         "minecraft:infiniburn_nether",
		RespawnAnchorWorks: true,
		Effects:            "minecraft:the_nether",
		LogicalHeight:      128,
		CoordinateScale:    8,
		Ultrawarm:          true,
		HasCeiling:         true,
	}},
	{packet.End, DimensionType{
		FixedTime:       6000,
		Infiniburn:      "minecraft:infiniburn_end",
		Effects:         "minecraft:the_end",
		HasRaids:        true,
		LogicalHeight:   256,
		CoordinateScale: 1,
	}},
}

// Type returns the dimension type element of d. Unknown dimensions get the
// overworld's.
func Type(d packet.Dimension) DimensionType {
	for _, t := range dimensionTypes {
		if t.dim == d {
			return t.elem
		}
	}
	return dimensionTypes[0].elem
}

// Codec returns the registry codec compound sent in JoinGame.
func Codec() any {
	c := codec{
		DimensionTypes: registry[DimensionType]{Type: dimensionTypeRegistry},
		Biomes:         registry[Biome]{Type: biomeRegistry},
	}
	for i, t := range dimensionTypes {
		c.DimensionTypes.Value = append(c.DimensionTypes.Value, registryEntry[DimensionType]{
			Name:    t.dim.String(),
			ID:      int32(i),
			Element: t.elem,
		})
	}
	c.Biomes.Value = append(c.Biomes.Value, registryEntry[Biome]{
		Name: "minecraft:plains",
		ID:   1,
		Element: Biome{
			Precipitation: "rain",
			Depth:         0.125,
			Temperature:   0.8,
			Scale:         0.05,
			Downfall:      0.4,
			Category:      "plains",
			Effects: BiomeEffects{
				SkyColor:      7907327,
				WaterFogColor: 329011,
				FogColor:      12638463,
				WaterColor:    4159204,
				MoodSound:     caveMood,
			},
		},
	})
	return c
}

// DimensionCodec encodes Codec as the NBT blob JoinGame carries.
func DimensionCodec() ([]byte, error) {
	return catalog.EncodeNBT(Codec())
}

// DimensionTypeNBT encodes the dimension type of d.
func DimensionTypeNBT(d packet.Dimension) ([]byte, error) {
	return catalog.EncodeNBT(Type(d))
}

// Overworld encodes the overworld dimension type.
func Overworld() ([]byte, error) {
	return DimensionTypeNBT(packet.Overworld)
}

// WorldNames lists the worlds the codec declares, overworld first.
func WorldNames() []string {
	names := make([]string, len(dimensionTypes))
	for i, t := range dimensionTypes {
		names[i] = t.dim.String()
	}
	return names
}
