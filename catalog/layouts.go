package catalog

import (
	"errors"
	"io"
	"math"

	"github.com/gstoney/arrow/packet"
)

const (
	maxServerAddressLen = 255
	maxLevelTypeLen     = 16
	maxLocaleLen        = 16
	maxIdentifierLen    = 32767
)

var (
	handshake      = layout("Handshake", encodeHandshake, decodeHandshake)
	statusRequest  = layout("StatusRequest", encodeNothing[packet.StatusRequest], decodeNothing[packet.StatusRequest])
	statusResponse = layout("StatusResponse", encodeStatusResponse, decodeStatusResponse)
	statusPing     = layout("StatusPing", encodeStatusPing, decodeStatusPing)
	statusPong     = layout("StatusPong", encodeStatusPong, decodeStatusPong)

	loginStart         = layout("LoginStart", encodeLoginStart, decodeLoginStart)
	disconnect         = layout("Disconnect", encodeDisconnect, decodeDisconnect)
	loginSuccessText   = layout("LoginSuccess/v0", encodeLoginSuccessText, decodeLoginSuccessText)
	loginSuccessBinary = layout("LoginSuccess/v707", encodeLoginSuccessBinary, decodeLoginSuccessBinary)
	setCompression     = layout("SetCompression", encodeSetCompression, decodeSetCompression)

	joinGame47  = layout("JoinGame/v47", encodeJoinGame47, decodeJoinGame47)
	joinGame108 = layout("JoinGame/v108", encodeJoinGame108, decodeJoinGame108)
	joinGame464 = layout("JoinGame/v464", encodeJoinGame464, decodeJoinGame464)
	joinGame468 = layout("JoinGame/v468", encodeJoinGame468, decodeJoinGame468)
	joinGame552 = layout("JoinGame/v552", encodeJoinGame552, decodeJoinGame552)
	joinGame754 = layout("JoinGame/v754", encodeJoinGame754, decodeJoinGame754)

	serverDifficulty47  = layout("ServerDifficulty/v47", encodeServerDifficulty47, decodeServerDifficulty47)
	serverDifficulty464 = layout("ServerDifficulty/v464", encodeServerDifficulty464, decodeServerDifficulty464)
	heldItemChange      = layout("HeldItemChange", encodeHeldItemChange, decodeHeldItemChange)
	keepAliveVarInt     = layout("KeepAlive/v47", encodeKeepAliveVarInt, decodeKeepAliveVarInt)
	keepAliveLong       = layout("KeepAlive/v340", encodeKeepAliveLong, decodeKeepAliveLong)
	clientSettings47    = layout("ClientSettings/v47", encodeClientSettings47, decodeClientSettings47)
	clientSettings107   = layout("ClientSettings/v107", encodeClientSettings107, decodeClientSettings107)
	clientSettings755   = layout("ClientSettings/v755", encodeClientSettings755, decodeClientSettings755)
)

func encodeNothing[T any](io.Writer, *T) error { return nil }

func decodeNothing[T any](*packet.FrameReader, *T) error { return nil }

func encodeHandshake(w io.Writer, p *packet.Handshake) (err error) {
	if err = packet.WriteVarInt(w, p.ProtocolVersion); err != nil {
		return
	}
	if err = packet.WriteString(w, p.ServerAddress); err != nil {
		return
	}
	if err = packet.WriteUnsignedShort(w, p.ServerPort); err != nil {
		return
	}
	return packet.WriteVarInt(w, p.NextState)
}

func decodeHandshake(r *packet.FrameReader, p *packet.Handshake) (err error) {
	if p.ProtocolVersion, err = packet.ReadVarInt(r); err != nil {
		return
	}
	if p.ServerAddress, err = packet.ReadStringMax(r, maxServerAddressLen); err != nil {
		return
	}
	if p.ServerPort, err = packet.ReadUnsignedShort(r); err != nil {
		return
	}
	p.NextState, err = packet.ReadVarInt(r)
	return
}

func encodeStatusResponse(w io.Writer, p *packet.StatusResponse) error {
	return packet.WriteString(w, p.JSON)
}

func decodeStatusResponse(r *packet.FrameReader, p *packet.StatusResponse) (err error) {
	p.JSON, err = packet.ReadString(r)
	return
}

func encodeStatusPing(w io.Writer, p *packet.StatusPing) error {
	return packet.WriteLong(w, p.Payload)
}

func decodeStatusPing(r *packet.FrameReader, p *packet.StatusPing) (err error) {
	p.Payload, err = packet.ReadLong(r)
	return
}

func encodeStatusPong(w io.Writer, p *packet.StatusPong) error {
	return packet.WriteLong(w, p.Payload)
}

func decodeStatusPong(r *packet.FrameReader, p *packet.StatusPong) (err error) {
	p.Payload, err = packet.ReadLong(r)
	return
}

func encodeLoginStart(w io.Writer, p *packet.LoginStart) error {
	return packet.WriteString(w, p.Name)
}

func decodeLoginStart(r *packet.FrameReader, p *packet.LoginStart) (err error) {
	p.Name, err = packet.ReadStringMax(r, packet.MaxUsernameLen)
	return
}

func encodeDisconnect(w io.Writer, p *packet.Disconnect) error {
	return packet.WriteString(w, p.Reason)
}

func decodeDisconnect(r *packet.FrameReader, p *packet.Disconnect) (err error) {
	p.Reason, err = packet.ReadString(r)
	return
}

func encodeLoginSuccessText(w io.Writer, p *packet.LoginSuccess) (err error) {
	if err = packet.WriteUUIDString(w, p.UUID); err != nil {
		return
	}
	return packet.WriteString(w, p.Username)
}

func decodeLoginSuccessText(r *packet.FrameReader, p *packet.LoginSuccess) (err error) {
	if p.UUID, err = packet.ReadUUIDString(r); err != nil {
		return
	}
	p.Username, err = packet.ReadStringMax(r, packet.MaxUsernameLen)
	return
}

func encodeLoginSuccessBinary(w io.Writer, p *packet.LoginSuccess) (err error) {
	if err = packet.WriteUUID(w, p.UUID); err != nil {
		return
	}
	return packet.WriteString(w, p.Username)
}

func decodeLoginSuccessBinary(r *packet.FrameReader, p *packet.LoginSuccess) (err error) {
	if p.UUID, err = packet.ReadUUID(r); err != nil {
		return
	}
	p.Username, err = packet.ReadStringMax(r, packet.MaxUsernameLen)
	return
}

func encodeSetCompression(w io.Writer, p *packet.SetCompression) error {
	return packet.WriteVarInt(w, p.Threshold)
}

func decodeSetCompression(r *packet.FrameReader, p *packet.SetCompression) (err error) {
	p.Threshold, err = packet.ReadVarInt(r)
	return
}

// clampByte saturates v into an unsigned byte, for max player counts that
// older layouts carry in one byte.
func clampByte(v int32) byte {
	switch {
	case v < 0:
		return 0
	case v > math.MaxUint8:
		return math.MaxUint8
	}
	return byte(v)
}

func readGamemode(r *packet.FrameReader, p *packet.JoinGame) error {
	b, err := packet.ReadByte(r)
	if err != nil {
		return err
	}
	p.Gamemode, p.Hardcore = packet.UnpackGamemode(b)
	return nil
}

// JoinGame/v47: eid, gamemode|hardcore, dimension (byte), difficulty,
// max players, level type, reduced debug info.
func encodeJoinGame47(w io.Writer, p *packet.JoinGame) (err error) {
	if err = packet.WriteInt(w, p.EntityID); err != nil {
		return
	}
	if err = packet.WriteByte(w, packet.PackGamemode(p.Gamemode, p.Hardcore)); err != nil {
		return
	}
	if err = packet.WriteSignedByte(w, int8(p.Dimension)); err != nil {
		return
	}
	if err = packet.WriteByte(w, byte(p.Difficulty)); err != nil {
		return
	}
	if err = packet.WriteByte(w, clampByte(p.MaxPlayers)); err != nil {
		return
	}
	if err = packet.WriteString(w, string(p.LevelType)); err != nil {
		return
	}
	return packet.WriteBoolean(w, p.ReducedDebugInfo)
}

func decodeJoinGame47(r *packet.FrameReader, p *packet.JoinGame) (err error) {
	if p.EntityID, err = packet.ReadInt(r); err != nil {
		return
	}
	if err = readGamemode(r, p); err != nil {
		return
	}
	var dim int8
	if dim, err = packet.ReadSignedByte(r); err != nil {
		return
	}
	p.Dimension = packet.Dimension(dim)
	return decodeJoinGameTail108(r, p)
}

// JoinGame/v108 widens the dimension to an Int.
func encodeJoinGame108(w io.Writer, p *packet.JoinGame) (err error) {
	if err = packet.WriteInt(w, p.EntityID); err != nil {
		return
	}
	if err = packet.WriteByte(w, packet.PackGamemode(p.Gamemode, p.Hardcore)); err != nil {
		return
	}
	if err = packet.WriteInt(w, int32(p.Dimension)); err != nil {
		return
	}
	if err = packet.WriteByte(w, byte(p.Difficulty)); err != nil {
		return
	}
	if err = packet.WriteByte(w, clampByte(p.MaxPlayers)); err != nil {
		return
	}
	if err = packet.WriteString(w, string(p.LevelType)); err != nil {
		return
	}
	return packet.WriteBoolean(w, p.ReducedDebugInfo)
}

func decodeJoinGame108(r *packet.FrameReader, p *packet.JoinGame) (err error) {
	if p.EntityID, err = packet.ReadInt(r); err != nil {
		return
	}
	if err = readGamemode(r, p); err != nil {
		return
	}
	var dim int32
	if dim, err = packet.ReadInt(r); err != nil {
		return
	}
	p.Dimension = packet.Dimension(dim)
	return decodeJoinGameTail108(r, p)
}

// decodeJoinGameTail108 reads the difficulty, max players, level type and
// reduced debug fields shared by the v47 and v108 layouts.
func decodeJoinGameTail108(r *packet.FrameReader, p *packet.JoinGame) (err error) {
	var b byte
	if b, err = packet.ReadByte(r); err != nil {
		return
	}
	p.Difficulty = packet.Difficulty(b)
	if b, err = packet.ReadByte(r); err != nil {
		return
	}
	p.MaxPlayers = int32(b)
	var level string
	if level, err = packet.ReadStringMax(r, maxLevelTypeLen); err != nil {
		return
	}
	p.LevelType = packet.LevelType(level)
	p.ReducedDebugInfo, err = packet.ReadBoolean(r)
	return
}

// JoinGame/v464 drops the difficulty.
func encodeJoinGame464(w io.Writer, p *packet.JoinGame) (err error) {
	if err = encodeJoinGameHead464(w, p); err != nil {
		return
	}
	return packet.WriteBoolean(w, p.ReducedDebugInfo)
}

func decodeJoinGame464(r *packet.FrameReader, p *packet.JoinGame) (err error) {
	if err = decodeJoinGameHead464(r, p); err != nil {
		return
	}
	p.ReducedDebugInfo, err = packet.ReadBoolean(r)
	return
}

// JoinGame/v468 adds the view distance.
func encodeJoinGame468(w io.Writer, p *packet.JoinGame) (err error) {
	if err = encodeJoinGameHead464(w, p); err != nil {
		return
	}
	if err = packet.WriteVarInt(w, p.ViewDistance); err != nil {
		return
	}
	return packet.WriteBoolean(w, p.ReducedDebugInfo)
}

func decodeJoinGame468(r *packet.FrameReader, p *packet.JoinGame) (err error) {
	if err = decodeJoinGameHead464(r, p); err != nil {
		return
	}
	if p.ViewDistance, err = packet.ReadVarInt(r); err != nil {
		return
	}
	p.ReducedDebugInfo, err = packet.ReadBoolean(r)
	return
}

func encodeJoinGameHead464(w io.Writer, p *packet.JoinGame) (err error) {
	if err = packet.WriteInt(w, p.EntityID); err != nil {
		return
	}
	if err = packet.WriteByte(w, packet.PackGamemode(p.Gamemode, p.Hardcore)); err != nil {
		return
	}
	if err = packet.WriteInt(w, int32(p.Dimension)); err != nil {
		return
	}
	if err = packet.WriteByte(w, clampByte(p.MaxPlayers)); err != nil {
		return
	}
	return packet.WriteString(w, string(p.LevelType))
}

func decodeJoinGameHead464(r *packet.FrameReader, p *packet.JoinGame) (err error) {
	if p.EntityID, err = packet.ReadInt(r); err != nil {
		return
	}
	if err = readGamemode(r, p); err != nil {
		return
	}
	var dim int32
	if dim, err = packet.ReadInt(r); err != nil {
		return
	}
	p.Dimension = packet.Dimension(dim)
	var b byte
	if b, err = packet.ReadByte(r); err != nil {
		return
	}
	p.MaxPlayers = int32(b)
	var level string
	if level, err = packet.ReadStringMax(r, maxLevelTypeLen); err != nil {
		return
	}
	p.LevelType = packet.LevelType(level)
	return
}

// JoinGame/v552 adds the hashed seed and the respawn screen flag.
func encodeJoinGame552(w io.Writer, p *packet.JoinGame) (err error) {
	if err = packet.WriteInt(w, p.EntityID); err != nil {
		return
	}
	if err = packet.WriteByte(w, packet.PackGamemode(p.Gamemode, p.Hardcore)); err != nil {
		return
	}
	if err = packet.WriteInt(w, int32(p.Dimension)); err != nil {
		return
	}
	if err = packet.WriteLong(w, p.HashedSeed); err != nil {
		return
	}
	if err = packet.WriteByte(w, clampByte(p.MaxPlayers)); err != nil {
		return
	}
	if err = packet.WriteString(w, string(p.LevelType)); err != nil {
		return
	}
	if err = packet.WriteVarInt(w, p.ViewDistance); err != nil {
		return
	}
	if err = packet.WriteBoolean(w, p.ReducedDebugInfo); err != nil {
		return
	}
	return packet.WriteBoolean(w, p.EnableRespawnScreen)
}

func decodeJoinGame552(r *packet.FrameReader, p *packet.JoinGame) (err error) {
	if p.EntityID, err = packet.ReadInt(r); err != nil {
		return
	}
	if err = readGamemode(r, p); err != nil {
		return
	}
	var dim int32
	if dim, err = packet.ReadInt(r); err != nil {
		return
	}
	p.Dimension = packet.Dimension(dim)
	if p.HashedSeed, err = packet.ReadLong(r); err != nil {
		return
	}
	var b byte
	if b, err = packet.ReadByte(r); err != nil {
		return
	}
	p.MaxPlayers = int32(b)
	var level string
	if level, err = packet.ReadStringMax(r, maxLevelTypeLen); err != nil {
		return
	}
	p.LevelType = packet.LevelType(level)
	if p.ViewDistance, err = packet.ReadVarInt(r); err != nil {
		return
	}
	if p.ReducedDebugInfo, err = packet.ReadBoolean(r); err != nil {
		return
	}
	p.EnableRespawnScreen, err = packet.ReadBoolean(r)
	return
}

var errMissingNBT = errors.New("NBT field is empty")

// JoinGame/v754 carries the registry codec and dimension type as NBT.
func encodeJoinGame754(w io.Writer, p *packet.JoinGame) (err error) {
	if len(p.DimensionCodec) == 0 || len(p.DimensionType) == 0 {
		return errMissingNBT
	}
	if err = packet.WriteInt(w, p.EntityID); err != nil {
		return
	}
	if err = packet.WriteBoolean(w, p.Hardcore); err != nil {
		return
	}
	if err = packet.WriteByte(w, byte(p.Gamemode)); err != nil {
		return
	}
	if err = packet.WriteSignedByte(w, int8(p.PreviousGamemode)); err != nil {
		return
	}
	if err = packet.WritePrefixedArray(w, p.WorldNames, packet.WriteString); err != nil {
		return
	}
	if err = packet.WriteRemainingBytes(w, p.DimensionCodec); err != nil {
		return
	}
	if err = packet.WriteRemainingBytes(w, p.DimensionType); err != nil {
		return
	}
	if err = packet.WriteString(w, p.WorldName); err != nil {
		return
	}
	if err = packet.WriteLong(w, p.HashedSeed); err != nil {
		return
	}
	if err = packet.WriteVarInt(w, p.MaxPlayers); err != nil {
		return
	}
	if err = packet.WriteVarInt(w, p.ViewDistance); err != nil {
		return
	}
	if err = packet.WriteBoolean(w, p.ReducedDebugInfo); err != nil {
		return
	}
	if err = packet.WriteBoolean(w, p.EnableRespawnScreen); err != nil {
		return
	}
	if err = packet.WriteBoolean(w, p.IsDebug); err != nil {
		return
	}
	return packet.WriteBoolean(w, p.IsFlat)
}

func readIdentifier(r *packet.FrameReader) (string, error) {
	return packet.ReadStringMax(r, maxIdentifierLen)
}

func decodeJoinGame754(r *packet.FrameReader, p *packet.JoinGame) (err error) {
	if p.EntityID, err = packet.ReadInt(r); err != nil {
		return
	}
	if p.Hardcore, err = packet.ReadBoolean(r); err != nil {
		return
	}
	var gm int8
	if gm, err = packet.ReadSignedByte(r); err != nil {
		return
	}
	p.Gamemode = packet.Gamemode(gm)
	if gm, err = packet.ReadSignedByte(r); err != nil {
		return
	}
	p.PreviousGamemode = packet.Gamemode(gm)
	if p.WorldNames, err = packet.ReadPrefixedArray(r, readIdentifier); err != nil {
		return
	}
	if p.DimensionCodec, err = readNBT(r); err != nil {
		return
	}
	if p.DimensionType, err = readNBT(r); err != nil {
		return
	}
	if p.WorldName, err = readIdentifier(r); err != nil {
		return
	}
	if p.HashedSeed, err = packet.ReadLong(r); err != nil {
		return
	}
	if p.MaxPlayers, err = packet.ReadVarInt(r); err != nil {
		return
	}
	if p.ViewDistance, err = packet.ReadVarInt(r); err != nil {
		return
	}
	if p.ReducedDebugInfo, err = packet.ReadBoolean(r); err != nil {
		return
	}
	if p.EnableRespawnScreen, err = packet.ReadBoolean(r); err != nil {
		return
	}
	if p.IsDebug, err = packet.ReadBoolean(r); err != nil {
		return
	}
	p.IsFlat, err = packet.ReadBoolean(r)
	return
}

func encodeServerDifficulty47(w io.Writer, p *packet.ServerDifficulty) error {
	return packet.WriteByte(w, byte(p.Difficulty))
}

func decodeServerDifficulty47(r *packet.FrameReader, p *packet.ServerDifficulty) (err error) {
	var b byte
	b, err = packet.ReadByte(r)
	p.Difficulty = packet.Difficulty(b)
	return
}

func encodeServerDifficulty464(w io.Writer, p *packet.ServerDifficulty) (err error) {
	if err = packet.WriteByte(w, byte(p.Difficulty)); err != nil {
		return
	}
	return packet.WriteBoolean(w, p.Locked)
}

func decodeServerDifficulty464(r *packet.FrameReader, p *packet.ServerDifficulty) (err error) {
	if err = decodeServerDifficulty47(r, p); err != nil {
		return
	}
	p.Locked, err = packet.ReadBoolean(r)
	return
}

func encodeHeldItemChange(w io.Writer, p *packet.HeldItemChange) error {
	return packet.WriteSignedByte(w, p.Slot)
}

func decodeHeldItemChange(r *packet.FrameReader, p *packet.HeldItemChange) (err error) {
	p.Slot, err = packet.ReadSignedByte(r)
	return
}

func encodeKeepAliveVarInt(w io.Writer, p *packet.KeepAlive) error {
	return packet.WriteVarInt(w, int32(p.ID))
}

func decodeKeepAliveVarInt(r *packet.FrameReader, p *packet.KeepAlive) error {
	id, err := packet.ReadVarInt(r)
	p.ID = int64(id)
	return err
}

func encodeKeepAliveLong(w io.Writer, p *packet.KeepAlive) error {
	return packet.WriteLong(w, p.ID)
}

func decodeKeepAliveLong(r *packet.FrameReader, p *packet.KeepAlive) (err error) {
	p.ID, err = packet.ReadLong(r)
	return
}

func encodeClientSettingsHead(w io.Writer, p *packet.ClientSettings) (err error) {
	if err = packet.WriteString(w, p.Locale); err != nil {
		return
	}
	if err = packet.WriteSignedByte(w, p.ViewDistance); err != nil {
		return
	}
	if err = packet.WriteVarInt(w, p.ChatMode); err != nil {
		return
	}
	if err = packet.WriteBoolean(w, p.ChatColors); err != nil {
		return
	}
	return packet.WriteByte(w, p.SkinParts)
}

func decodeClientSettingsHead(r *packet.FrameReader, p *packet.ClientSettings) (err error) {
	if p.Locale, err = packet.ReadStringMax(r, maxLocaleLen); err != nil {
		return
	}
	if p.ViewDistance, err = packet.ReadSignedByte(r); err != nil {
		return
	}
	if p.ChatMode, err = packet.ReadVarInt(r); err != nil {
		return
	}
	if p.ChatColors, err = packet.ReadBoolean(r); err != nil {
		return
	}
	p.SkinParts, err = packet.ReadByte(r)
	return
}

func encodeClientSettings47(w io.Writer, p *packet.ClientSettings) error {
	return encodeClientSettingsHead(w, p)
}

func decodeClientSettings47(r *packet.FrameReader, p *packet.ClientSettings) error {
	return decodeClientSettingsHead(r, p)
}

func encodeClientSettings107(w io.Writer, p *packet.ClientSettings) (err error) {
	if err = encodeClientSettingsHead(w, p); err != nil {
		return
	}
	return packet.WriteVarInt(w, p.MainHand)
}

func decodeClientSettings107(r *packet.FrameReader, p *packet.ClientSettings) (err error) {
	if err = decodeClientSettingsHead(r, p); err != nil {
		return
	}
	p.MainHand, err = packet.ReadVarInt(r)
	return
}

func encodeClientSettings755(w io.Writer, p *packet.ClientSettings) (err error) {
	if err = encodeClientSettings107(w, p); err != nil {
		return
	}
	return packet.WriteBoolean(w, p.TextFiltering)
}

func decodeClientSettings755(r *packet.FrameReader, p *packet.ClientSettings) (err error) {
	if err = decodeClientSettings107(r, p); err != nil {
		return
	}
	p.TextFiltering, err = packet.ReadBoolean(r)
	return
}
