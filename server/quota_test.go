package server

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func tcpAddr(ip string) net.Addr {
	return &net.TCPAddr{IP: net.ParseIP(ip), Port: 50000}
}

func TestQuota_Blocked(t *testing.T) {
	q := NewQuota(0.001, 2, 16)

	assert.False(t, q.Blocked(tcpAddr("10.0.0.1")))
	assert.False(t, q.Blocked(tcpAddr("10.0.0.2")), "same block, within burst")
	assert.True(t, q.Blocked(tcpAddr("10.0.0.3")), "same block, burst spent")
	assert.False(t, q.Blocked(tcpAddr("10.0.1.1")), "other block")

	assert.False(t, q.Blocked(tcpAddr("2001:db8::1")))
	assert.False(t, q.Blocked(tcpAddr("2001:db8::2")))
	assert.True(t, q.Blocked(tcpAddr("2001:db8::3")))
}

func TestQuota_NonIPNeverBlocked(t *testing.T) {
	q := NewQuota(0.001, 1, 16)
	c, s := net.Pipe()
	defer c.Close()
	defer s.Close()
	for range 3 {
		assert.False(t, q.Blocked(c.RemoteAddr()))
	}
	assert.False(t, q.Blocked(nil))
}

func TestBlockKey(t *testing.T) {
	assert.Equal(t, "192.168.1.0", blockKey(tcpAddr("192.168.1.77")))
	assert.Equal(t, "2001:db8::", blockKey(tcpAddr("2001:db8::ff")))
}
