package packet

import (
	"fmt"
	"strings"
)

type Difficulty uint8

const (
	Peaceful Difficulty = iota
	Easy
	Normal
	Hard
)

func (d Difficulty) String() string {
	switch d {
	case Peaceful:
		return "peaceful"
	case Easy:
		return "easy"
	case Normal:
		return "normal"
	case Hard:
		return "hard"
	}
	return fmt.Sprintf("Difficulty(%d)", uint8(d))
}

// ParseDifficulty accepts the lower-case names returned by String.
func ParseDifficulty(s string) (Difficulty, error) {
	for d := Peaceful; d <= Hard; d++ {
		if strings.EqualFold(s, d.String()) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown difficulty %q", s)
}

type Gamemode int8

const (
	NoGamemode Gamemode = iota - 1
	Survival
	Creative
	Adventure
	Spectator
)

func (g Gamemode) String() string {
	switch g {
	case NoGamemode:
		return "none"
	case Survival:
		return "survival"
	case Creative:
		return "creative"
	case Adventure:
		return "adventure"
	case Spectator:
		return "spectator"
	}
	return fmt.Sprintf("Gamemode(%d)", int8(g))
}

func ParseGamemode(s string) (Gamemode, error) {
	for g := Survival; g <= Spectator; g++ {
		if strings.EqualFold(s, g.String()) {
			return g, nil
		}
	}
	return 0, fmt.Errorf("unknown gamemode %q", s)
}

// hardcoreFlag is OR-ed into the gamemode byte before 1.16.2.
const hardcoreFlag = 0x08

// PackGamemode folds the hardcore flag into the gamemode byte.
func PackGamemode(g Gamemode, hardcore bool) uint8 {
	b := uint8(g) & 0x07
	if hardcore {
		b |= hardcoreFlag
	}
	return b
}

func UnpackGamemode(b uint8) (g Gamemode, hardcore bool) {
	return Gamemode(b & 0x07), b&hardcoreFlag != 0
}

// Dimension is the numeric dimension id used before 1.16.
type Dimension int32

const (
	Nether    Dimension = -1
	Overworld Dimension = 0
	End       Dimension = 1
)

func (d Dimension) String() string {
	switch d {
	case Nether:
		return "minecraft:the_nether"
	case Overworld:
		return "minecraft:overworld"
	case End:
		return "minecraft:the_end"
	}
	return fmt.Sprintf("Dimension(%d)", int32(d))
}

type LevelType string

const (
	LevelDefault     LevelType = "default"
	LevelFlat        LevelType = "flat"
	LevelLargeBiomes LevelType = "largeBiomes"
	LevelAmplified   LevelType = "amplified"
	LevelCustomized  LevelType = "customized"
	LevelBuffet      LevelType = "buffet"
	LevelDefault11   LevelType = "default_1_1"
)

var levelTypes = []LevelType{
	LevelDefault, LevelFlat, LevelLargeBiomes, LevelAmplified,
	LevelCustomized, LevelBuffet, LevelDefault11,
}

func ParseLevelType(s string) (LevelType, error) {
	for _, l := range levelTypes {
		if strings.EqualFold(s, string(l)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown level type %q", s)
}
