package server

import (
	"errors"
	"strings"

	"go.minekube.com/common/minecraft/color"
	"go.minekube.com/common/minecraft/component"
	"go.minekube.com/common/minecraft/component/codec"
	"go.minekube.com/common/minecraft/component/codec/legacy"

	"github.com/gstoney/arrow/packet"
)

var (
	// Clients before 1.16 do not understand hex colors.
	jsonCodecPre116 = &codec.Json{}
	jsonCodec       = &codec.Json{NoDownsampleColor: true, NoLegacyHover: true}

	ampersandCodec = &legacy.Legacy{Char: legacy.AmpersandChar}
	sectionCodec   = &legacy.Legacy{}
)

func jsonCodecFor(protocol int32) codec.Codec {
	if protocol >= packet.Minecraft_1_16 {
		return jsonCodec
	}
	return jsonCodecPre116
}

// parseText reads a configured text: a JSON component when it starts with
// '{', otherwise text with '&' color codes.
func parseText(s string) (*component.Text, error) {
	var (
		c   component.Component
		err error
	)
	if strings.HasPrefix(s, "{") {
		c, err = jsonCodec.Unmarshal([]byte(s))
	} else {
		c, err = ampersandCodec.Unmarshal([]byte(s))
	}
	if err != nil {
		return nil, err
	}
	t, ok := c.(*component.Text)
	if !ok {
		return nil, errors.New("invalid text component")
	}
	return t, nil
}

func marshalJSON(protocol int32, c component.Component) (string, error) {
	b := new(strings.Builder)
	if err := jsonCodecFor(protocol).Marshal(b, c); err != nil {
		return "", err
	}
	return b.String(), nil
}

// marshalLegacy renders c with '§' codes for the legacy server list.
func marshalLegacy(c component.Component) string {
	b := new(strings.Builder)
	if err := sectionCodec.Marshal(b, c); err != nil {
		return ""
	}
	return b.String()
}

// reason builds the JSON of a red disconnect message.
func reason(protocol int32, msg string) string {
	s, err := marshalJSON(protocol, &component.Text{
		Content: msg,
		S:       component.Style{Color: color.Red},
	})
	if err != nil {
		return `{"text":""}`
	}
	return s
}
