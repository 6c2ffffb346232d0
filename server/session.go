package server

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/rs/xid"
	"go.uber.org/atomic"

	"github.com/gstoney/arrow"
	"github.com/gstoney/arrow/packet"
	"github.com/gstoney/arrow/world"
)

var (
	errUnexpectedPacket = errors.New("unexpected packet")
	errKeepAliveTimeout = errors.New("keep-alive timed out")

	validName = regexp.MustCompile(`^[A-Za-z0-9_]{1,16}$`)
)

func newConnID() string { return xid.New().String() }

// OfflineUUID derives the UUID of a player logging in without
// authentication.
func OfflineUUID(name string) uuid.UUID {
	return uuid.NewMD5(uuid.NameSpaceOID, []byte(name))
}

// session is the state of one client connection, owned by its goroutine.
type session struct {
	server *Server
	conn   *arrow.Conn
	log    logr.Logger
}

func (s *session) run() error {
	b, err := s.conn.Peek(1)
	if err != nil {
		return err
	}
	if b[0] == legacyPingID {
		// 1.4+ clients follow up with a second byte that may arrive in a
		// later read. Without it within the wait the client is older.
		b, err = s.conn.PeekWithin(2, legacyFollowUpWait)
		if err != nil && !arrow.IsConnClosed(err) {
			return err
		}
		return s.legacyPing(b)
	}

	p, err := s.conn.NextPacket()
	if err != nil {
		return err
	}
	h, ok := p.(*packet.Handshake)
	if !ok {
		return fmt.Errorf("%w: %s during handshake", errUnexpectedPacket, p.Kind())
	}
	s.log = s.log.WithValues("protocol", h.ProtocolVersion)
	s.log.V(1).Info("handshake", "serverAddress", h.ServerAddress, "nextState", h.NextState)

	if h.NextState == packet.NextStateStatus {
		return s.status()
	}
	return s.login()
}

func (s *session) status() error {
	for {
		p, err := s.conn.NextPacket()
		if err != nil {
			return err
		}
		switch p := p.(type) {
		case *packet.StatusRequest:
			js, err := s.server.statusJSON(s.conn.Protocol())
			if err != nil {
				return fmt.Errorf("build status response: %w", err)
			}
			if err = s.conn.Send(&packet.StatusResponse{JSON: js}); err != nil {
				return err
			}
		case *packet.StatusPing:
			// The client closes after the pong.
			return s.conn.Send(&packet.StatusPong{Payload: p.Payload})
		default:
			return fmt.Errorf("%w: %s during status", errUnexpectedPacket, p.Kind())
		}
	}
}

func (s *session) disconnect(msg string) error {
	return s.conn.Send(&packet.Disconnect{Reason: reason(s.conn.Protocol(), msg)})
}

func (s *session) login() error {
	p, err := s.conn.NextPacket()
	if err != nil {
		return err
	}
	start, ok := p.(*packet.LoginStart)
	if !ok {
		return fmt.Errorf("%w: %s during login", errUnexpectedPacket, p.Kind())
	}

	cfg := s.server.cfg
	protocol := s.conn.Protocol()
	log := s.log.WithValues("name", start.Name)
	if v := cfg.Server.Version; !v.Contains(protocol) {
		newest := packet.VersionName(v.Max)
		msg := "Outdated client! Please use " + newest
		if protocol > v.Max {
			msg = "Outdated server! I'm still on " + newest
		}
		log.Info("rejected unsupported version")
		return s.disconnect(msg)
	}
	if !validName.MatchString(start.Name) {
		log.Info("rejected invalid name")
		return s.disconnect("Invalid username")
	}

	pl := &Player{
		Name:     start.Name,
		UUID:     OfflineUUID(start.Name),
		Protocol: protocol,
		EntityID: s.server.nextEntityID.Inc(),
	}
	log = log.WithValues("uuid", pl.UUID.String())
	if !s.server.players.Add(pl) {
		log.Info("player is already online")
		return s.disconnect("You are already connected to this server!")
	}
	defer s.server.players.Remove(pl)

	if t := cfg.Network.CompressionThreshold; t >= 0 {
		if err = s.conn.Send(&packet.SetCompression{Threshold: int32(t)}); err != nil {
			return err
		}
		s.conn.SetCompression(t)
	}
	if err = s.conn.Send(&packet.LoginSuccess{UUID: pl.UUID, Username: pl.Name}); err != nil {
		return err
	}
	if err = s.conn.EnterPlay(); err != nil {
		return err
	}
	if err = s.joinGame(pl); err != nil {
		return err
	}
	log.Info("player logged in", "entityID", pl.EntityID)

	s.log = log
	err = s.play(pl)
	log.Info("player disconnected")
	return err
}

func (s *session) joinGame(pl *Player) error {
	srv := s.server
	w := srv.cfg.World
	join := &packet.JoinGame{
		EntityID:            pl.EntityID,
		Hardcore:            w.Hardcore,
		Gamemode:            srv.gamemode,
		PreviousGamemode:    packet.NoGamemode,
		Dimension:           packet.Overworld,
		Difficulty:          srv.difficulty,
		MaxPlayers:          int32(srv.cfg.Server.MaxPlayers),
		LevelType:           srv.levelType,
		ViewDistance:        int32(w.ViewDistance),
		HashedSeed:          HashSeed(w.Seed),
		EnableRespawnScreen: true,
		WorldNames:          world.WorldNames(),
		DimensionCodec:      srv.dimensionCodec,
		DimensionType:       srv.dimensionType,
		WorldName:           packet.Overworld.String(),
		IsFlat:              srv.levelType == packet.LevelFlat,
	}
	for _, p := range []packet.Packet{
		join,
		&packet.ServerDifficulty{Difficulty: srv.difficulty},
		&packet.HeldItemChange{Slot: 0},
	} {
		if err := s.conn.Send(p); err != nil {
			return err
		}
	}
	return nil
}

// HashSeed returns the first eight bytes of the SHA-256 of the world seed,
// the form clients use for biome noise.
func HashSeed(seed int64) int64 {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(seed))
	sum := sha256.Sum256(b[:])
	return int64(binary.BigEndian.Uint64(sum[:8]))
}

func (s *session) play(pl *Player) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var pending atomic.Int64 // unanswered keep-alive id, 0 if none
	timedOut := make(chan struct{})
	go s.keepAlive(ctx, &pending, timedOut)

	for {
		p, err := s.conn.NextPacket()
		if err != nil {
			select {
			case <-timedOut:
				return errKeepAliveTimeout
			default:
			}
			return err
		}
		switch p := p.(type) {
		case *packet.KeepAlive:
			if !pending.CompareAndSwap(p.ID, 0) {
				s.log.Info("wrong keep-alive id", "id", p.ID)
				_ = s.disconnect("Invalid keep-alive")
				return fmt.Errorf("%w: keep-alive id %d", errUnexpectedPacket, p.ID)
			}
		case *packet.ClientSettings:
			pl.setSettings(p)
			s.log.V(1).Info("client settings", "locale", p.Locale, "viewDistance", p.ViewDistance)
		case *packet.Unknown:
			s.log.V(1).Info("unhandled packet", "opcode", fmt.Sprintf("0x%02X", p.Opcode), "len", len(p.Data))
		default:
			s.log.V(1).Info("ignored packet", "kind", p.Kind())
		}
	}
}

// keepAlive sends a keep-alive every interval. When the previous one is
// still unanswered it disconnects the client instead.
func (s *session) keepAlive(ctx context.Context, pending *atomic.Int64, timedOut chan<- struct{}) {
	t := time.NewTicker(time.Duration(s.server.cfg.Network.KeepAliveInterval))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if pending.Load() != 0 {
				s.log.Info("keep-alive timed out")
				close(timedOut)
				_ = s.disconnect("Timed out")
				_ = s.conn.Close()
				return
			}
			// Ids fit in 31 bits so VarInt layouts carry them unchanged.
			id := now.UnixMilli() & 0x7FFFFFFF
			if id == 0 {
				id = 1
			}
			pending.Store(id)
			if err := s.conn.Send(&packet.KeepAlive{ID: id}); err != nil {
				s.log.V(1).Info("send keep-alive", "error", err)
				_ = s.conn.Close()
				return
			}
		}
	}
}
