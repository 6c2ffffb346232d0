package server

import (
	"net"
	"sync"

	"github.com/golang/groupcache/lru"
	"golang.org/x/time/rate"
)

// Quota throttles new connections per address block. Addresses sharing
// all but the low-order byte share one limiter; limiters live in an LRU
// of maxEntries.
type Quota struct {
	eps   float32
	burst int
	mu    sync.Mutex // protects cache
	cache *lru.Cache
}

func NewQuota(connectionsPerSecond float32, burst, maxEntries int) *Quota {
	return &Quota{
		eps:   connectionsPerSecond,
		burst: burst,
		cache: lru.New(maxEntries),
	}
}

// Blocked reports whether a connection from addr exceeds its block's rate.
// Addresses that are not IPs are never blocked.
func (q *Quota) Blocked(addr net.Addr) bool {
	key := blockKey(addr)
	if key == "" {
		return false
	}
	q.mu.Lock()
	var limiter *rate.Limiter
	if v, ok := q.cache.Get(key); ok {
		limiter = v.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(rate.Limit(q.eps), q.burst)
		q.cache.Add(key, limiter)
	}
	q.mu.Unlock()
	return !limiter.Allow()
}

func blockKey(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		host = addr.String()
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return ""
	}
	if v4 := ip.To4(); v4 != nil {
		ip = v4
	}
	ip[len(ip)-1] = 0
	return ip.String()
}
