package server

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gstoney/arrow"
	"github.com/gstoney/arrow/config"
	"github.com/gstoney/arrow/packet"
)

func newTestServer(t *testing.T, modify func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Network.Quota.ConnectionsPerSecond = 0
	if modify != nil {
		modify(&cfg)
	}
	s, err := New(&cfg, Options{Logger: logr.Discard()})
	require.NoError(t, err)
	return s
}

// dial serves one side of a pipe and returns a client on the other.
func dial(t *testing.T, s *Server) *arrow.Conn {
	t.Helper()
	c, sc := net.Pipe()
	go s.handleRawConn(sc)
	client := arrow.Connect(c, arrow.ConnConfig{ReadTimeout: 5 * time.Second})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func handshake(t *testing.T, c *arrow.Conn, protocol, next int32) {
	t.Helper()
	require.NoError(t, c.Send(&packet.Handshake{
		ProtocolVersion: protocol,
		ServerAddress:   "localhost",
		ServerPort:      25565,
		NextState:       next,
	}))
}

func next[T packet.Packet](t *testing.T, c *arrow.Conn) T {
	t.Helper()
	p, err := c.NextPacket()
	require.NoError(t, err)
	typed, ok := p.(T)
	require.Truef(t, ok, "got %T (%+v)", p, p)
	return typed
}

func TestStatus(t *testing.T) {
	s := newTestServer(t, nil)
	c := dial(t, s)

	handshake(t, c, packet.Minecraft_1_12_2, packet.NextStateStatus)
	require.NoError(t, c.Send(&packet.StatusRequest{}))
	resp := next[*packet.StatusResponse](t, c)

	var doc statusResponse
	require.NoError(t, json.Unmarshal([]byte(resp.JSON), &doc))
	assert.Equal(t, "Arrow", doc.Version.Name)
	assert.Equal(t, packet.Minecraft_1_12_2, doc.Version.Protocol)
	assert.Equal(t, 42, doc.Players.Max)
	assert.Zero(t, doc.Players.Online)
	assert.Contains(t, string(doc.Description), "Arrow - A minecraft server written in Go")

	require.NoError(t, c.Send(&packet.StatusPing{Payload: 1234567890}))
	pong := next[*packet.StatusPong](t, c)
	assert.Equal(t, int64(1234567890), pong.Payload)

	// The server closes after the pong.
	_, err := c.NextPacket()
	assert.True(t, arrow.IsConnClosed(err), "got %v", err)
}

func TestStatus_UnsupportedProtocolAnnouncesNewest(t *testing.T) {
	s := newTestServer(t, nil)

	js, err := s.statusJSON(900)
	require.NoError(t, err)
	var doc statusResponse
	require.NoError(t, json.Unmarshal([]byte(js), &doc))
	assert.Equal(t, packet.Minecraft_1_16_4, doc.Version.Protocol)
}

func TestStatus_Cached(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Network.StatusCacheTTL = config.Duration(time.Hour)
	})

	before, err := s.statusJSON(packet.Minecraft_1_16_4)
	require.NoError(t, err)
	require.True(t, s.players.Add(&Player{Name: "Steve", UUID: OfflineUUID("Steve")}))

	after, err := s.statusJSON(packet.Minecraft_1_16_4)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	// Other protocols are cached separately.
	other, err := s.statusJSON(packet.Minecraft_1_8)
	require.NoError(t, err)
	assert.Contains(t, other, `"online":1`)
	assert.Contains(t, other, `"name":"Steve"`)
}

func TestStatus_Favicon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "icon.png")
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n', 0, 0}
	require.NoError(t, os.WriteFile(path, png, 0o644))

	s := newTestServer(t, func(c *config.Config) { c.Server.Favicon = path })
	js, err := s.statusJSON(packet.Minecraft_1_16_4)
	require.NoError(t, err)
	assert.Contains(t, js, `"favicon":"data:image/png;base64,iVBORw0KGgoAAA=="`)

	cfg := config.Default()
	cfg.Server.Favicon = filepath.Join(t.TempDir(), "missing.png")
	_, err = New(&cfg, Options{})
	assert.Error(t, err)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(&config.Config{}, Options{})
	assert.ErrorContains(t, err, "invalid config")
}

func TestLogin_1_16_4(t *testing.T) {
	s := newTestServer(t, nil)
	c := dial(t, s)

	handshake(t, c, packet.Minecraft_1_16_4, packet.NextStateLogin)
	require.NoError(t, c.Send(&packet.LoginStart{Name: "Steve"}))

	comp := next[*packet.SetCompression](t, c)
	assert.Equal(t, int32(256), comp.Threshold)
	c.SetCompression(int(comp.Threshold))

	success := next[*packet.LoginSuccess](t, c)
	assert.Equal(t, "Steve", success.Username)
	assert.Equal(t, OfflineUUID("Steve"), success.UUID)
	require.NoError(t, c.EnterPlay())

	join := next[*packet.JoinGame](t, c)
	assert.Equal(t, packet.Survival, join.Gamemode)
	assert.Equal(t, packet.NoGamemode, join.PreviousGamemode)
	assert.Equal(t, int32(42), join.MaxPlayers)
	assert.Equal(t, int32(10), join.ViewDistance)
	assert.Equal(t, "minecraft:overworld", join.WorldName)
	assert.Contains(t, join.WorldNames, "minecraft:overworld")
	assert.NotEmpty(t, join.DimensionCodec)
	assert.NotEmpty(t, join.DimensionType)

	diff := next[*packet.ServerDifficulty](t, c)
	assert.Equal(t, packet.Peaceful, diff.Difficulty)
	held := next[*packet.HeldItemChange](t, c)
	assert.Equal(t, int8(0), held.Slot)

	assert.True(t, s.Players().Has(OfflineUUID("Steve")))
	assert.Equal(t, int64(1), s.OpenConnections())

	require.NoError(t, c.Send(&packet.ClientSettings{Locale: "en_us", ViewDistance: 8, ChatColors: true, SkinParts: 0x7F, MainHand: 1}))
	require.Eventually(t, func() bool {
		p, ok := s.Players().Get(OfflineUUID("Steve"))
		return ok && p.Settings() != nil && p.Settings().Locale == "en_us"
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, c.Close())
	require.Eventually(t, func() bool {
		return s.Players().Len() == 0 && s.OpenConnections() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestLogin_1_8_Uncompressed(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Network.CompressionThreshold = -1
		c.World.Gamemode = "creative"
		c.World.Difficulty = "hard"
		c.World.Hardcore = true
	})
	c := dial(t, s)

	handshake(t, c, packet.Minecraft_1_8, packet.NextStateLogin)
	require.NoError(t, c.Send(&packet.LoginStart{Name: "Alex_1"}))

	success := next[*packet.LoginSuccess](t, c)
	assert.Equal(t, OfflineUUID("Alex_1"), success.UUID)
	require.NoError(t, c.EnterPlay())

	join := next[*packet.JoinGame](t, c)
	assert.Equal(t, packet.Creative, join.Gamemode)
	assert.True(t, join.Hardcore)
	assert.Equal(t, packet.Hard, join.Difficulty)
	assert.Equal(t, packet.LevelDefault, join.LevelType)
	assert.Equal(t, packet.Overworld, join.Dimension)

	diff := next[*packet.ServerDifficulty](t, c)
	assert.Equal(t, packet.Hard, diff.Difficulty)
	next[*packet.HeldItemChange](t, c)
}

func TestLogin_Rejected(t *testing.T) {
	cases := []struct {
		desc     string
		protocol int32
		name     string
		setup    func(*Server)
		reason   string
	}{
		{"old client", 5, "Steve", nil, "Outdated client! Please use 1.16.4"},
		{"new client", packet.Minecraft_1_17, "Steve", nil, "Outdated server! I'm still on 1.16.4"},
		{"invalid name", packet.Minecraft_1_16_4, "no spaces", nil, "Invalid username"},
		{"duplicate", packet.Minecraft_1_16_4, "Steve", func(s *Server) {
			s.players.Add(&Player{Name: "Steve", UUID: OfflineUUID("Steve")})
		}, "already connected"},
	}
	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			s := newTestServer(t, nil)
			if tc.setup != nil {
				tc.setup(s)
			}
			c := dial(t, s)

			handshake(t, c, tc.protocol, packet.NextStateLogin)
			require.NoError(t, c.Send(&packet.LoginStart{Name: tc.name}))
			d := next[*packet.Disconnect](t, c)
			assert.Contains(t, d.Reason, tc.reason)

			_, err := c.NextPacket()
			assert.True(t, arrow.IsConnClosed(err), "got %v", err)
		})
	}
}

// login runs the login sequence up to HeldItemChange.
func login(t *testing.T, c *arrow.Conn, name string) {
	t.Helper()
	handshake(t, c, packet.Minecraft_1_16_4, packet.NextStateLogin)
	require.NoError(t, c.Send(&packet.LoginStart{Name: name}))
	next[*packet.LoginSuccess](t, c)
	require.NoError(t, c.EnterPlay())
	next[*packet.JoinGame](t, c)
	next[*packet.ServerDifficulty](t, c)
	next[*packet.HeldItemChange](t, c)
}

func TestKeepAlive(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Network.CompressionThreshold = -1
		c.Network.KeepAliveInterval = config.Duration(50 * time.Millisecond)
	})
	c := dial(t, s)
	login(t, c, "Steve")

	for range 3 {
		ka := next[*packet.KeepAlive](t, c)
		assert.NotZero(t, ka.ID)
		require.NoError(t, c.Send(&packet.KeepAlive{ID: ka.ID}))
	}

	// No reply: the next tick disconnects.
	next[*packet.KeepAlive](t, c)
	d := next[*packet.Disconnect](t, c)
	assert.Contains(t, d.Reason, "Timed out")

	require.Eventually(t, func() bool { return s.Players().Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestKeepAlive_WrongID(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Network.CompressionThreshold = -1
		c.Network.KeepAliveInterval = config.Duration(50 * time.Millisecond)
	})
	c := dial(t, s)
	login(t, c, "Steve")

	ka := next[*packet.KeepAlive](t, c)
	require.NoError(t, c.Send(&packet.KeepAlive{ID: ka.ID + 1}))
	d := next[*packet.Disconnect](t, c)
	assert.Contains(t, d.Reason, "Invalid keep-alive")
}

func TestServe_StopsWhenListenerCloses(t *testing.T) {
	s := newTestServer(t, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Serve(ln) }()

	nc, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	c := arrow.Connect(nc, arrow.ConnConfig{ReadTimeout: 5 * time.Second})
	defer c.Close()
	handshake(t, c, packet.Minecraft_1_16_4, packet.NextStateStatus)
	require.NoError(t, c.Send(&packet.StatusRequest{}))
	next[*packet.StatusResponse](t, c)

	require.NoError(t, ln.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return")
	}
}

func TestHandleRawConn_Quota(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Network.Quota = config.Quota{ConnectionsPerSecond: 0.001, Burst: 1, MaxEntries: 16}
	})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() { _ = s.Serve(ln) }()

	first, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer first.Close()

	second, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer second.Close()
	require.NoError(t, second.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, err = second.Read(make([]byte, 1))
	assert.True(t, arrow.IsConnClosed(err), "got %v", err)
}

func TestOfflineUUID(t *testing.T) {
	id := OfflineUUID("Steve")
	assert.Equal(t, id, OfflineUUID("Steve"))
	assert.NotEqual(t, id, OfflineUUID("steve"))
	assert.EqualValues(t, 3, id.Version())
}

func TestHashSeed(t *testing.T) {
	assert.Equal(t, HashSeed(42), HashSeed(42))
	assert.NotEqual(t, HashSeed(42), HashSeed(43))
}
