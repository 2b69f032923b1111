package client

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDropConnectionClearsState(t *testing.T) {
	c, _ := newTestClient(t)

	c.handleLine("S0|slice 0 in_use=1 freq=14.1")
	c.SendCommandWithReply(func(_ uint32, _ uint32, _ string) {}, "info")
	require.Equal(t, 1, c.Slices.Count())
	require.Equal(t, 1, c.PendingReplies())

	var removed []string
	c.Slices.Removed.Subscribe(func(s *Slice) {
		removed = append(removed, s.EntityID())
	})

	c.abort()

	assert.False(t, c.Connected())
	assert.Equal(t, 0, c.Slices.Count())
	assert.Equal(t, 0, c.PendingReplies())
	assert.Equal(t, []string{"0"}, removed)

	// abort keeps the client itself open for a reconnect
	select {
	case <-c.closed:
		t.Error("abort must not close the client")
	default:
	}
}

func TestDisconnectClosesClient(t *testing.T) {
	c, _ := newTestClient(t)

	c.Disconnect()
	c.Disconnect() // idempotent

	assert.False(t, c.Connected())
	select {
	case <-c.closed:
	default:
		t.Error("Disconnect must close the client")
	}
}

func TestRemovedAudioStreamWakesReaders(t *testing.T) {
	c, _ := newTestClient(t)

	c.handleLine("S0|audio_stream 0x04000008 in_use=1 dax=1")
	stream, ok := c.AudioStreams.FindByID("0x4000008")
	require.True(t, ok)

	done := make(chan error, 1)
	go func() {
		buf := make([]float32, 1)
		_, err := stream.Read(buf)
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	c.handleLine("S0|audio_stream 0x04000008 removed")

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("Read did not return after the stream was removed")
	}
}

func TestWhenDisconnectedWithoutConnection(t *testing.T) {
	c := newClient(&net.TCPAddr{}, Options{})

	called := make(chan struct{})
	c.WhenDisconnected(func() {
		close(called)
	})

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("WhenDisconnected must fire immediately without a connection")
	}
}

func TestWhenDisconnectedFiresOnAbort(t *testing.T) {
	c, _ := newTestClient(t)

	called := make(chan struct{})
	c.WhenDisconnected(func() {
		close(called)
	})

	c.abort()

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("WhenDisconnected must fire on abort")
	}
}

func TestStateTransitionsAreEmitted(t *testing.T) {
	c, _ := newTestClient(t)

	var states []SessionState
	c.StateChanged.Subscribe(func(state SessionState) {
		states = append(states, state)
	})

	c.setState(StateConnecting)
	c.setState(StateConnecting) // no duplicate emission
	c.setState(StateHandshaking)
	c.setState(StateSteady)

	assert.Equal(t, []SessionState{StateConnecting, StateHandshaking, StateSteady}, states)
	assert.Equal(t, StateSteady, c.State())
}

func TestConnectedReflectsLifecycle(t *testing.T) {
	c := newClient(&net.TCPAddr{}, Options{})
	assert.False(t, c.Connected())

	c.disconnectChan = make(chan struct{})
	assert.True(t, c.Connected())

	close(c.disconnectChan)
	assert.False(t, c.Connected())
}
