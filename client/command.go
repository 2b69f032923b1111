package client

import (
	"log"
	"strings"
	"time"
)

// NotSent is the sentinel sequence number returned when a command could
// not be sent, e.g. because there is currently no connection.
const NotSent uint32 = 0

// ReplyHandler is invoked with the sequence number of the original
// command, the numeric response code, and the reply text. A response
// code of 0 indicates success.
type ReplyHandler func(seq uint32, code uint32, message string)

// SendCommand sends the given command text to the radio, fire-and-forget.
// It returns the sequence number assigned to the command, or NotSent if
// there is currently no connection.
func (c *Client) SendCommand(text string) uint32 {
	return c.sendCommand(nil, text)
}

// SendCommandWithReply sends the given command text and registers the
// given handler for the reply. The handler is invoked at most once, from
// the command channel's receive context. It returns the sequence number,
// or NotSent if there is currently no connection.
func (c *Client) SendCommandWithReply(handler ReplyHandler, text string) uint32 {
	return c.sendCommand(handler, text)
}

func (c *Client) sendCommand(handler ReplyHandler, text string) uint32 {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return NotSent
	}
	if !c.Connected() {
		return NotSent
	}

	seq := c.seq.Add(1)

	// The handler must be registered before the command goes onto the
	// wire: a reply may arrive before the write call returns.
	if handler != nil {
		c.pendingMu.Lock()
		c.pending[seq] = handler
		c.pendingMu.Unlock()
	}

	err := c.writeLine(formatCommand(seq, text, c.options.Verbose))
	if err != nil {
		log.Printf("cannot send command %q: %v", text, err)
		if handler != nil {
			c.pendingMu.Lock()
			delete(c.pending, seq)
			c.pendingMu.Unlock()
		}
		return NotSent
	}

	c.metrics.commandsSent.Inc()
	return seq
}

// SendCommandAwait sends the given command and waits for its reply, at
// most for the given timeout. A zero timeout uses AwaitTimeout. On
// timeout it returns ErrReplyTimeout; the pending entry stays registered
// and is discarded when a late reply or the session teardown clears it.
func (c *Client) SendCommandAwait(text string, timeout time.Duration) (uint32, string, error) {
	if timeout == 0 {
		timeout = AwaitTimeout
	}

	type result struct {
		code    uint32
		message string
	}
	replyChan := make(chan result, 1)
	seq := c.SendCommandWithReply(func(_ uint32, code uint32, message string) {
		replyChan <- result{code: code, message: message}
	}, text)
	if seq == NotSent {
		return 0, "", ErrNotConnected
	}

	select {
	case reply := <-replyChan:
		return reply.code, reply.message, nil
	case <-time.After(timeout):
		return 0, "", ErrReplyTimeout
	}
}

// takeReplyHandler removes and returns the handler registered for the
// given sequence number. Removal is atomic with the lookup, so a handler
// is handed out at most once even for duplicate replies.
func (c *Client) takeReplyHandler(seq uint32) (ReplyHandler, bool) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()

	handler, ok := c.pending[seq]
	if ok {
		delete(c.pending, seq)
	}
	return handler, ok
}

// PendingReplies returns the number of commands still waiting for a
// reply. There is no expiry for orphaned entries during a connected
// session; callers can watch this to detect leakage.
func (c *Client) PendingReplies() int {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	return len(c.pending)
}

func (c *Client) clearPendingReplies() {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	c.pending = make(map[uint32]ReplyHandler)
}
