package server

import (
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/gstoney/arrow/packet"
)

// Player is a client that completed login.
type Player struct {
	Name     string
	UUID     uuid.UUID
	Protocol int32
	EntityID int32

	mu       sync.Mutex
	settings *packet.ClientSettings
}

// Settings returns the last ClientSettings the player sent, or nil.
func (p *Player) Settings() *packet.ClientSettings {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settings
}

func (p *Player) setSettings(s *packet.ClientSettings) {
	p.mu.Lock()
	p.settings = s
	p.mu.Unlock()
}

// Registry is the set of online players keyed by UUID.
type Registry struct {
	mu      sync.RWMutex
	players map[uuid.UUID]*Player
}

func NewRegistry() *Registry {
	return &Registry{players: make(map[uuid.UUID]*Player)}
}

// Add registers p. It returns false, leaving the registry unchanged, when a
// player with the same UUID is already online.
func (r *Registry) Add(p *Player) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[p.UUID]; ok {
		return false
	}
	r.players[p.UUID] = p
	return true
}

// Remove unregisters p if it is the player registered under its UUID.
func (r *Registry) Remove(p *Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.players[p.UUID] == p {
		delete(r.players, p.UUID)
	}
}

func (r *Registry) Has(id uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.players[id]
	return ok
}

func (r *Registry) Get(id uuid.UUID) (*Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[id]
	return p, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

// Players returns a snapshot sorted by name.
func (r *Registry) Players() []*Player {
	r.mu.RLock()
	list := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		list = append(list, p)
	}
	r.mu.RUnlock()
	slices.SortFunc(list, func(a, b *Player) int {
		return strings.Compare(a.Name, b.Name)
	})
	return list
}
