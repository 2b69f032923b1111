package client

import (
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLine is an in-memory LineTransport that records the written lines.
type fakeLine struct {
	mu       sync.Mutex
	written  []string
	writeErr error
}

func (f *fakeLine) ReadLine() (string, error) {
	return "", fmt.Errorf("fakeLine does not read")
}

func (f *fakeLine) WriteLine(line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written = append(f.written, line)
	return nil
}

func (f *fakeLine) Close() error         { return nil }
func (f *fakeLine) LocalAddr() net.Addr  { return &net.TCPAddr{} }
func (f *fakeLine) RemoteAddr() net.Addr { return &net.TCPAddr{} }

func (f *fakeLine) writtenLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]string, len(f.written))
	copy(result, f.written)
	return result
}

// newTestClient returns a client that believes it is connected, writing
// to an in-memory transport. Inbound lines are fed via handleLine.
func newTestClient(t *testing.T) (*Client, *fakeLine) {
	t.Helper()
	c := newClient(&net.TCPAddr{}, Options{})
	line := &fakeLine{}
	c.line = line
	c.disconnectChan = make(chan struct{})
	return c, line
}

func TestSequenceNumbersUnique(t *testing.T) {
	c, _ := newTestClient(t)

	const goroutines = 20
	const perGoroutine = 50

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[uint32]bool)

	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				seq := c.SendCommand("ping")
				mu.Lock()
				assert.False(t, seen[seq], "sequence number %d assigned twice", seq)
				seen[seq] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, goroutines*perGoroutine)
	assert.False(t, seen[NotSent], "the sentinel must never be assigned")
}

func TestReplyDeliveredAtMostOnce(t *testing.T) {
	c, _ := newTestClient(t)

	delivered := 0
	seq := c.SendCommandWithReply(func(_ uint32, _ uint32, _ string) {
		delivered++
	}, "info")
	require.NotEqual(t, NotSent, seq)

	reply := fmt.Sprintf("R%d|0|OK", seq)
	c.handleLine(reply)
	c.handleLine(reply)

	assert.Equal(t, 1, delivered)
	assert.Equal(t, 0, c.PendingReplies())
}

func TestSendWhenDisconnected(t *testing.T) {
	c := newClient(&net.TCPAddr{}, Options{})

	assert.Equal(t, NotSent, c.SendCommand("ping"))

	_, _, err := c.SendCommandAwait("ping", 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestSendEmptyCommand(t *testing.T) {
	c, line := newTestClient(t)

	assert.Equal(t, NotSent, c.SendCommand(""))
	assert.Equal(t, NotSent, c.SendCommand("\n"))
	assert.Empty(t, line.writtenLines())
}

func TestSendCommandFormat(t *testing.T) {
	c, line := newTestClient(t)

	seq := c.SendCommand("slice tune 0 14.100\n")
	require.NotEqual(t, NotSent, seq)

	written := line.writtenLines()
	require.Len(t, written, 1)
	assert.Equal(t, fmt.Sprintf("C%d|slice tune 0 14.100\n", seq), written[0])
}

func TestVerboseCommandFormat(t *testing.T) {
	c, line := newTestClient(t)
	c.options.Verbose = true

	seq := c.SendCommand("info")
	written := line.writtenLines()
	require.Len(t, written, 1)
	assert.Equal(t, fmt.Sprintf("CD%d|info\n", seq), written[0])
}

func TestWriteErrorUnregistersHandler(t *testing.T) {
	c, line := newTestClient(t)
	line.writeErr = fmt.Errorf("broken pipe")

	seq := c.SendCommandWithReply(func(_ uint32, _ uint32, _ string) {
		t.Error("handler must not be invoked")
	}, "info")

	assert.Equal(t, NotSent, seq)
	assert.Equal(t, 0, c.PendingReplies())
}

func TestSendCommandAwait(t *testing.T) {
	c, line := newTestClient(t)

	go func() {
		for len(line.writtenLines()) == 0 {
			time.Sleep(time.Millisecond)
		}
		c.handleLine("R1|50000015|unknown command")
	}()

	code, message, err := c.SendCommandAwait("bogus", time.Second)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x50000015), code)
	assert.Equal(t, "unknown command", message)
}

func TestSendCommandAwaitTimeout(t *testing.T) {
	c, _ := newTestClient(t)

	_, _, err := c.SendCommandAwait("info", 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrReplyTimeout)

	// the pending entry stays registered until a late reply arrives
	assert.Equal(t, 1, c.PendingReplies())
	c.handleLine("R1|0|late")
	assert.Equal(t, 0, c.PendingReplies())
}

func TestClearPendingReplies(t *testing.T) {
	c, _ := newTestClient(t)

	c.SendCommandWithReply(func(_ uint32, _ uint32, _ string) {}, "one")
	c.SendCommandWithReply(func(_ uint32, _ uint32, _ string) {}, "two")
	require.Equal(t, 2, c.PendingReplies())

	c.clearPendingReplies()
	assert.Equal(t, 0, c.PendingReplies())
}
