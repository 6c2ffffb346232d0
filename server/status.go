package server

import (
	"encoding/json"

	"github.com/jellydator/ttlcache/v3"
)

// maxSample caps the players listed in the server list hover.
const maxSample = 12

type statusResponse struct {
	Version     statusVersion   `json:"version"`
	Players     statusPlayers   `json:"players"`
	Description json.RawMessage `json:"description"`
	Favicon     string          `json:"favicon,omitempty"`
}

type statusVersion struct {
	Name     string `json:"name"`
	Protocol int32  `json:"protocol"`
}

type statusPlayers struct {
	Max    int            `json:"max"`
	Online int            `json:"online"`
	Sample []samplePlayer `json:"sample,omitempty"`
}

type samplePlayer struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// statusJSON returns the server list document for a client on protocol.
// Clients outside the supported range are told the newest supported
// version so they show as incompatible.
func (s *Server) statusJSON(protocol int32) (string, error) {
	v := s.cfg.Server.Version
	if !v.Contains(protocol) {
		protocol = v.Max
	}
	if s.statusCache != nil {
		if item := s.statusCache.Get(protocol); item != nil {
			return item.Value(), nil
		}
	}

	desc, err := marshalJSON(protocol, s.motd)
	if err != nil {
		return "", err
	}
	players := s.players.Players()
	resp := statusResponse{
		Version: statusVersion{Name: v.Name, Protocol: protocol},
		Players: statusPlayers{
			Max:    s.cfg.Server.MaxPlayers,
			Online: len(players),
		},
		Description: json.RawMessage(desc),
		Favicon:     s.favicon,
	}
	for _, p := range players[:min(len(players), maxSample)] {
		resp.Players.Sample = append(resp.Players.Sample, samplePlayer{Name: p.Name, ID: p.UUID.String()})
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	js := string(b)
	if s.statusCache != nil {
		s.statusCache.Set(protocol, js, ttlcache.DefaultTTL)
	}
	return js, nil
}
