package server

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gstoney/arrow/packet"
)

func newPlayer(name string) *Player {
	return &Player{Name: name, UUID: OfflineUUID(name)}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	steve, alex := newPlayer("Steve"), newPlayer("Alex")

	require.True(t, r.Add(steve))
	require.True(t, r.Add(alex))
	assert.False(t, r.Add(newPlayer("Steve")), "duplicate uuid")
	assert.Equal(t, 2, r.Len())
	assert.True(t, r.Has(steve.UUID))

	got, ok := r.Get(alex.UUID)
	require.True(t, ok)
	assert.Same(t, alex, got)

	assert.Equal(t, []*Player{alex, steve}, r.Players())

	// Removing a stale player leaves the registered one alone.
	r.Remove(newPlayer("Steve"))
	assert.True(t, r.Has(steve.UUID))

	r.Remove(steve)
	assert.False(t, r.Has(steve.UUID))
	_, ok = r.Get(steve.UUID)
	assert.False(t, ok)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	var wg sync.WaitGroup
	for _, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := newPlayer(name)
			for range 100 {
				r.Add(p)
				_ = r.Players()
				r.Remove(p)
			}
			r.Add(p)
		}()
	}
	wg.Wait()
	assert.Equal(t, len(names), r.Len())
}

func TestPlayer_Settings(t *testing.T) {
	p := newPlayer("Steve")
	assert.Nil(t, p.Settings())
	s := &packet.ClientSettings{Locale: "de_de"}
	p.setSettings(s)
	assert.Same(t, s, p.Settings())
}
