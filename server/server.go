// Package server runs the login flow on top of arrow connections: it
// answers server list pings, logs players in and keeps them alive in Play.
package server

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/jellydator/ttlcache/v3"
	"github.com/pires/go-proxyproto"
	"go.minekube.com/common/minecraft/component"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/gstoney/arrow"
	"github.com/gstoney/arrow/catalog"
	"github.com/gstoney/arrow/config"
	"github.com/gstoney/arrow/packet"
	"github.com/gstoney/arrow/world"
)

// Options are the collaborators a Server uses. Zero values get defaults.
type Options struct {
	Logger   logr.Logger
	Registry *Registry
	Catalog  *catalog.Catalog
}

// A Server accepts client connections and drives each through the
// handshake, status and login states into Play.
type Server struct {
	cfg     *config.Config
	log     logr.Logger
	catalog *catalog.Catalog
	players *Registry
	quota   *Quota

	gamemode   packet.Gamemode
	difficulty packet.Difficulty
	levelType  packet.LevelType
	motd       *component.Text
	favicon    string

	dimensionCodec []byte
	dimensionType  []byte

	statusCache *ttlcache.Cache[int32, string]

	openConns    atomic.Int64
	nextEntityID atomic.Int32

	mu    sync.Mutex // protects conns
	conns map[*arrow.Conn]struct{}
}

// New validates cfg and prepares everything sessions share.
func New(cfg *config.Config, opts Options) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	s := &Server{
		cfg:     cfg,
		log:     opts.Logger,
		catalog: opts.Catalog,
		players: opts.Registry,
		conns:   make(map[*arrow.Conn]struct{}),
	}
	if s.log.GetSink() == nil {
		s.log = logr.Discard()
	}
	if s.catalog == nil {
		s.catalog = catalog.Default()
	}
	if s.players == nil {
		s.players = NewRegistry()
	}
	if q := cfg.Network.Quota; q.ConnectionsPerSecond > 0 {
		s.quota = NewQuota(q.ConnectionsPerSecond, q.Burst, q.MaxEntries)
	}

	// Validate already checked these parse.
	s.gamemode, _ = packet.ParseGamemode(cfg.World.Gamemode)
	s.difficulty, _ = packet.ParseDifficulty(cfg.World.Difficulty)
	s.levelType, _ = packet.ParseLevelType(cfg.World.LevelType)

	var err error
	if s.motd, err = parseText(cfg.Server.Motd); err != nil {
		return nil, fmt.Errorf("invalid motd: %w", err)
	}
	if cfg.Server.Favicon != "" {
		if s.favicon, err = loadFavicon(cfg.Server.Favicon); err != nil {
			return nil, err
		}
	}
	if s.dimensionCodec, err = world.DimensionCodec(); err != nil {
		return nil, fmt.Errorf("encode dimension codec: %w", err)
	}
	if s.dimensionType, err = world.Overworld(); err != nil {
		return nil, fmt.Errorf("encode dimension type: %w", err)
	}
	if ttl := time.Duration(cfg.Network.StatusCacheTTL); ttl > 0 {
		s.statusCache = ttlcache.New[int32, string](
			ttlcache.WithTTL[int32, string](ttl),
			ttlcache.WithDisableTouchOnHit[int32, string](),
		)
	}
	if err = s.initMeter(); err != nil {
		return nil, fmt.Errorf("init meter: %w", err)
	}
	return s, nil
}

// Players returns the registry of online players.
func (s *Server) Players() *Registry { return s.players }

// ListenAndServe listens on the configured address and serves until ctx is
// canceled, then closes the listener and every open connection.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return err
	}
	if s.cfg.Network.ProxyProtocol {
		ln = &proxyproto.Listener{Listener: ln}
	}
	s.log.Info("listening", "addr", ln.Addr().String(), "proxyProtocol", s.cfg.Network.ProxyProtocol)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		<-ctx.Done()
		_ = ln.Close()
		s.closeAll()
		return nil
	})
	eg.Go(func() error { return s.Serve(ln) })
	if s.statusCache != nil {
		go s.statusCache.Start()
		defer s.statusCache.Stop()
	}
	return eg.Wait()
}

// Serve accepts incoming connections on the Listener l, creating a new
// goroutine for each. It returns nil once l is closed.
func (s *Server) Serve(l net.Listener) error {
	for {
		c, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.log.V(1).Info("temporary accept error", "error", err)
				time.Sleep(10 * time.Millisecond)
				continue
			}
			return fmt.Errorf("error accepting new connection: %w", err)
		}
		go s.handleRawConn(c)
	}
}

// handleRawConn serves a just-accepted connection that has not had any I/O
// performed on it yet.
func (s *Server) handleRawConn(raw net.Conn) {
	if s.quota != nil && s.quota.Blocked(raw.RemoteAddr()) {
		_ = raw.Close()
		s.log.Info("connection exceeded the rate limit", "remoteAddr", raw.RemoteAddr().String())
		return
	}

	log := s.log.WithValues("conn", newConnID(), "remoteAddr", raw.RemoteAddr().String())
	conn := arrow.Accept(raw, arrow.ConnConfig{
		Catalog:      s.catalog,
		StrictPlay:   s.cfg.Network.StrictPlay,
		ReadTimeout:  time.Duration(s.cfg.Network.ReadTimeout),
		WriteTimeout: time.Duration(s.cfg.Network.ReadTimeout),
		Logger:       log,
	})
	if !s.track(conn) {
		_ = conn.Close()
		return
	}
	defer s.untrack(conn)

	sess := &session{server: s, conn: conn, log: log}
	err := sess.run()
	switch {
	case err == nil:
	case arrow.IsConnClosed(err):
		log.V(1).Info("connection closed", "error", err)
	default:
		log.Error(err, "connection failed")
	}
}

func (s *Server) track(c *arrow.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns == nil {
		return false
	}
	s.conns[c] = struct{}{}
	s.openConns.Inc()
	return true
}

func (s *Server) untrack(c *arrow.Conn) {
	_ = c.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conns[c]; ok {
		delete(s.conns, c)
		s.openConns.Dec()
	}
}

// closeAll closes every open connection and refuses new ones.
func (s *Server) closeAll() {
	s.mu.Lock()
	conns := s.conns
	s.conns = nil
	s.mu.Unlock()
	for c := range conns {
		_ = c.Close()
	}
}

// OpenConnections is the number of connections currently being served.
func (s *Server) OpenConnections() int64 { return s.openConns.Load() }

func loadFavicon(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read favicon: %w", err)
	}
	if len(b) < 8 || string(b[1:4]) != "PNG" {
		return "", fmt.Errorf("favicon %s is not a PNG image", path)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(b), nil
}
