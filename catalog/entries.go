package catalog

import (
	"github.com/gstoney/arrow/packet"
)

type mapping struct {
	opcode int32
	band   Band
}

func m(opcode int32, band Band) mapping {
	return mapping{opcode: opcode, band: band}
}

// register appends one entry per mapping. Mappings are listed newest
// first so the ladders below read like version dispatch.
func register(dst []Entry, dir packet.Direction, state packet.State, l *Layout, ms ...mapping) []Entry {
	for _, mp := range ms {
		dst = append(dst, Entry{
			State:     state,
			Direction: dir,
			Band:      mp.band,
			Opcode:    mp.opcode,
			Layout:    l,
		})
	}
	return dst
}

func standardEntries() []Entry {
	const (
		sb = packet.Serverbound
		cb = packet.Clientbound
	)
	var e []Entry

	e = register(e, sb, packet.StateHandshake, handshake, m(0x00, Since(0)))

	e = register(e, sb, packet.StateStatus, statusRequest, m(0x00, Since(0)))
	e = register(e, sb, packet.StateStatus, statusPing, m(0x01, Since(0)))
	e = register(e, cb, packet.StateStatus, statusResponse, m(0x00, Since(0)))
	e = register(e, cb, packet.StateStatus, statusPong, m(0x01, Since(0)))

	e = register(e, sb, packet.StateLogin, loginStart,
		m(0x00, Since(391)),
		m(0x01, Between(385, 391)),
		m(0x00, Between(0, 385)),
	)
	e = register(e, cb, packet.StateLogin, disconnect, m(0x00, Since(0)))
	e = register(e, cb, packet.StateLogin, loginSuccessBinary, m(0x02, Since(707)))
	e = register(e, cb, packet.StateLogin, loginSuccessText,
		m(0x02, Between(391, 707)),
		m(0x03, Between(385, 391)),
		m(0x02, Between(0, 385)),
	)
	e = register(e, cb, packet.StateLogin, setCompression,
		m(0x03, Since(391)),
		m(0x04, Between(385, 391)),
		m(0x03, Between(packet.Minecraft_1_8, 385)),
	)

	e = register(e, cb, packet.StatePlay, joinGame754, m(0x24, Since(754)))
	e = register(e, cb, packet.StatePlay, joinGame552, m(0x26, Between(552, 754)))
	e = register(e, cb, packet.StatePlay, joinGame468,
		m(0x26, Between(550, 552)),
		m(0x25, Between(468, 550)),
	)
	e = register(e, cb, packet.StatePlay, joinGame464, m(0x25, Between(464, 468)))
	e = register(e, cb, packet.StatePlay, joinGame108, m(0x23, Between(108, 464)))
	e = register(e, cb, packet.StatePlay, joinGame47,
		m(0x23, Between(86, 108)),
		m(0x24, Between(67, 86)),
		m(0x01, Between(47, 67)),
	)

	e = register(e, cb, packet.StatePlay, serverDifficulty464, m(0x0D, Since(464)))
	e = register(e, cb, packet.StatePlay, serverDifficulty47,
		m(0x0D, Between(332, 464)),
		m(0x0E, Between(318, 332)),
		m(0x0D, Between(67, 318)),
		m(0x41, Between(47, 67)),
	)

	e = register(e, cb, packet.StatePlay, heldItemChange,
		m(0x3F, Since(721)),
		m(0x40, Between(550, 721)),
		m(0x3F, Between(471, 550)),
		m(0x3D, Between(461, 471)),
		m(0x3E, Between(451, 461)),
		m(0x3D, Between(389, 451)),
		m(0x3C, Between(352, 389)),
		m(0x3B, Between(345, 352)),
		m(0x3A, Between(336, 345)),
		m(0x39, Between(318, 336)),
		m(0x37, Between(packet.Minecraft_1_9, 318)),
		m(0x09, Between(packet.Minecraft_1_8, packet.Minecraft_1_9)),
	)

	e = register(e, cb, packet.StatePlay, disconnect,
		m(0x1A, Since(packet.Minecraft_1_17)),
		m(0x19, Between(packet.Minecraft_1_16_2, packet.Minecraft_1_17)),
		m(0x1A, Between(packet.Minecraft_1_16, packet.Minecraft_1_16_2)),
		m(0x1B, Between(packet.Minecraft_1_15, packet.Minecraft_1_16)),
		m(0x1A, Between(packet.Minecraft_1_14, packet.Minecraft_1_15)),
		m(0x1B, Between(packet.Minecraft_1_13, packet.Minecraft_1_14)),
		m(0x1A, Between(packet.Minecraft_1_9, packet.Minecraft_1_13)),
		m(0x40, Between(packet.Minecraft_1_8, packet.Minecraft_1_9)),
	)

	e = register(e, cb, packet.StatePlay, keepAliveLong,
		m(0x21, Since(packet.Minecraft_1_17)),
		m(0x1F, Between(packet.Minecraft_1_16_2, packet.Minecraft_1_17)),
		m(0x20, Between(packet.Minecraft_1_16, packet.Minecraft_1_16_2)),
		m(0x21, Between(packet.Minecraft_1_15, packet.Minecraft_1_16)),
		m(0x20, Between(packet.Minecraft_1_14, packet.Minecraft_1_15)),
		m(0x21, Between(packet.Minecraft_1_13, packet.Minecraft_1_14)),
		m(0x1F, Between(packet.Minecraft_1_12_2, packet.Minecraft_1_13)),
	)
	e = register(e, cb, packet.StatePlay, keepAliveVarInt,
		m(0x1F, Between(packet.Minecraft_1_9, packet.Minecraft_1_12_2)),
		m(0x00, Between(packet.Minecraft_1_8, packet.Minecraft_1_9)),
	)

	e = register(e, sb, packet.StatePlay, keepAliveLong,
		m(0x0F, Since(packet.Minecraft_1_17)),
		m(0x10, Between(packet.Minecraft_1_16, packet.Minecraft_1_17)),
		m(0x0F, Between(packet.Minecraft_1_14, packet.Minecraft_1_16)),
		m(0x0E, Between(packet.Minecraft_1_13, packet.Minecraft_1_14)),
		m(0x0B, Between(packet.Minecraft_1_12_2, packet.Minecraft_1_13)),
	)
	e = register(e, sb, packet.StatePlay, keepAliveVarInt,
		m(0x0B, Between(packet.Minecraft_1_12_1, packet.Minecraft_1_12_2)),
		m(0x0C, Between(packet.Minecraft_1_12, packet.Minecraft_1_12_1)),
		m(0x0B, Between(packet.Minecraft_1_9, packet.Minecraft_1_12)),
		m(0x00, Between(packet.Minecraft_1_8, packet.Minecraft_1_9)),
	)

	e = register(e, sb, packet.StatePlay, clientSettings755, m(0x05, Since(packet.Minecraft_1_17)))
	e = register(e, sb, packet.StatePlay, clientSettings107,
		m(0x05, Between(packet.Minecraft_1_14, packet.Minecraft_1_17)),
		m(0x04, Between(packet.Minecraft_1_12_1, packet.Minecraft_1_14)),
		m(0x05, Between(packet.Minecraft_1_12, packet.Minecraft_1_12_1)),
		m(0x04, Between(packet.Minecraft_1_9, packet.Minecraft_1_12)),
	)
	e = register(e, sb, packet.StatePlay, clientSettings47,
		m(0x15, Between(packet.Minecraft_1_8, packet.Minecraft_1_9)),
	)

	return e
}
