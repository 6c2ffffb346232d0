package arrow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gstoney/arrow/packet"
)

// TestConnState_Advance verifies that a Handshake moves the state once and
// records the protocol version.
func TestConnState_Advance(t *testing.T) {
	var s ConnState
	assert.Equal(t, packet.StateHandshake, s.State())

	require.NoError(t, s.Advance(&packet.Handshake{ProtocolVersion: 578, NextState: packet.NextStateStatus}))
	assert.Equal(t, packet.StateStatus, s.State())
	assert.Equal(t, int32(578), s.Protocol())

	// A second Handshake is not allowed.
	err := s.Advance(&packet.Handshake{ProtocolVersion: 754, NextState: packet.NextStateLogin})
	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, packet.StateStatus, invalid.From)
	assert.Equal(t, int32(578), s.Protocol())
}

// TestConnState_InvalidNextState verifies that unknown next states are
// refused and leave the state untouched.
func TestConnState_InvalidNextState(t *testing.T) {
	for _, next := range []int32{0, 3, -1, 1 << 20} {
		var s ConnState
		err := s.Advance(&packet.Handshake{ProtocolVersion: 754, NextState: next})
		var invalid *InvalidTransitionError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, next, invalid.Value)
		assert.Equal(t, packet.StateHandshake, s.State())
		assert.Zero(t, s.Protocol())
	}
}

// TestConnState_EnterPlay verifies that Play is only reachable from Login.
func TestConnState_EnterPlay(t *testing.T) {
	var s ConnState
	require.Error(t, s.EnterPlay())

	require.NoError(t, s.Advance(&packet.Handshake{ProtocolVersion: 754, NextState: packet.NextStateLogin}))
	require.NoError(t, s.EnterPlay())
	assert.Equal(t, packet.StatePlay, s.State())

	var invalid *InvalidTransitionError
	require.ErrorAs(t, s.EnterPlay(), &invalid)
	assert.Equal(t, packet.StatePlay, invalid.From)
}
