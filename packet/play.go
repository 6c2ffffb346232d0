package packet

// JoinGame holds the union of every JoinGame layout. Each protocol
// version writes and reads only the fields its layout carries; see the
// catalog for which fields apply where.
type JoinGame struct {
	EntityID         int32
	Hardcore         bool
	Gamemode         Gamemode
	PreviousGamemode Gamemode // 1.16+
	Dimension        Dimension
	Difficulty       Difficulty // before 1.14
	MaxPlayers       int32
	LevelType        LevelType // before 1.16
	ViewDistance     int32     // 1.14+
	ReducedDebugInfo bool

	HashedSeed          int64 // 1.15+
	EnableRespawnScreen bool  // 1.15+

	// 1.16+. DimensionCodec and DimensionType are complete NBT
	// documents (tag type, name, payload) embedded verbatim.
	WorldNames     []string
	DimensionCodec []byte
	DimensionType  []byte
	WorldName      string
	IsDebug        bool
	IsFlat         bool
}

func (*JoinGame) Kind() Kind { return KindJoinGame }
func (*JoinGame) sealed()    {}

type ServerDifficulty struct {
	Difficulty Difficulty
	Locked     bool // 1.14+
}

func (*ServerDifficulty) Kind() Kind { return KindServerDifficulty }
func (*ServerDifficulty) sealed()    {}

// HeldItemChange selects the player's hotbar slot (0-8).
type HeldItemChange struct {
	Slot int8
}

func (*HeldItemChange) Kind() Kind { return KindHeldItemChange }
func (*HeldItemChange) sealed()    {}

type KeepAlive struct {
	ID int64
}

func (*KeepAlive) Kind() Kind { return KindKeepAlive }
func (*KeepAlive) sealed()    {}

type ClientSettings struct {
	Locale        string
	ViewDistance  int8
	ChatMode      int32
	ChatColors    bool
	SkinParts     uint8
	MainHand      int32 // 1.9+
	TextFiltering bool  // 1.17+
}

func (*ClientSettings) Kind() Kind { return KindClientSettings }
func (*ClientSettings) sealed()    {}
