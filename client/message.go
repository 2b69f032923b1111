package client

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/hashicorp/go-version"
)

// formatCommand renders an outbound command line. Verbose mode asks the
// radio to echo the command in a debug field of the reply.
func formatCommand(seq uint32, text string, verbose bool) string {
	if verbose {
		return fmt.Sprintf("CD%d|%s\n", seq, text)
	}
	return fmt.Sprintf("C%d|%s\n", seq, text)
}

// Reply is a solicited response correlated to a previously sent command.
type Reply struct {
	Seq     uint32
	Code    uint32
	Message string
	Debug   string
}

// parseReply parses the body of an R line (without the leading 'R').
func parseReply(body string) (Reply, error) {
	fields := strings.SplitN(body, "|", 4)
	if len(fields) < 3 {
		return Reply{}, fmt.Errorf("reply with %d fields: %q", len(fields), body)
	}
	seq, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return Reply{}, fmt.Errorf("reply with invalid sequence number: %q", body)
	}
	code, err := strconv.ParseUint(fields[1], 16, 32)
	if err != nil {
		return Reply{}, fmt.Errorf("reply with invalid response code: %q", body)
	}
	result := Reply{
		Seq:     uint32(seq),
		Code:    uint32(code),
		Message: fields[2],
	}
	if len(fields) == 4 {
		result.Debug = fields[3]
	}
	return result, nil
}

// parseHandle parses the body of an H line: the client's own session
// handle as hex.
func parseHandle(body string) (uint32, error) {
	handle, err := strconv.ParseUint(strings.TrimSpace(body), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid client handle: %q", body)
	}
	return uint32(handle), nil
}

// Version is the negotiated protocol version, encoded on the wire as a
// 64-bit value with four 16-bit fields.
type Version struct {
	Major uint16
	Minor uint16
	Patch uint16
	Build uint16
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Patch, v.Build)
}

// parseWireVersion parses the body of a V line.
func parseWireVersion(body string) (Version, error) {
	body = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(body), "0x"))
	encoded, err := strconv.ParseUint(body, 16, 64)
	if err != nil {
		return Version{}, fmt.Errorf("invalid protocol version: %q", body)
	}
	return Version{
		Major: uint16(encoded >> 48),
		Minor: uint16(encoded >> 32),
		Patch: uint16(encoded >> 16),
		Build: uint16(encoded),
	}, nil
}

// The supported protocol version window. A radio outside this window is
// reported as a fatal broadcast message but not disconnected; the policy
// is left to the caller.
var (
	minSupportedVersion = version.Must(version.NewVersion("1.4.0.0"))
	maxSupportedVersion = version.Must(version.NewVersion("3.255.0.0"))
)

func versionSupported(v Version) bool {
	parsed, err := version.NewVersion(v.String())
	if err != nil {
		return false
	}
	return parsed.GreaterThanOrEqual(minSupportedVersion) && parsed.LessThanOrEqual(maxSupportedVersion)
}

// Severity classifies a broadcast message.
type Severity uint32

// All broadcast message severities.
const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return fmt.Sprintf("severity(%d)", uint32(s))
	}
}

// BroadcastMessage is an unsolicited human-readable message from the
// radio, or one synthesized locally (e.g. for an unsupported protocol
// version).
type BroadcastMessage struct {
	Severity Severity
	Code     uint32
	Text     string
}

// parseBroadcast parses the body of an M line: a hex-encoded 32-bit
// value carrying the severity in bits 24-25, followed by the text.
func parseBroadcast(body string) (BroadcastMessage, error) {
	fields := strings.SplitN(body, "|", 2)
	if len(fields) < 2 {
		return BroadcastMessage{}, fmt.Errorf("broadcast message with %d fields: %q", len(fields), body)
	}
	code, err := strconv.ParseUint(fields[0], 16, 32)
	if err != nil {
		return BroadcastMessage{}, fmt.Errorf("broadcast message with invalid code: %q", body)
	}
	return BroadcastMessage{
		Severity: Severity((code >> 24) & 0x3),
		Code:     uint32(code),
		Text:     fields[1],
	}, nil
}

// handleLine classifies one inbound line from the command channel by its
// leading type tag and routes it. Malformed lines are logged and dropped;
// nothing on this path fails the receive loop.
func (c *Client) handleLine(line string) {
	if line == "" {
		return
	}
	c.metrics.linesReceived.Inc()

	switch line[0] {
	case 'R':
		reply, err := parseReply(line[1:])
		if err != nil {
			log.Printf("dropping malformed reply: %v", err)
			return
		}
		handler, ok := c.takeReplyHandler(reply.Seq)
		if !ok {
			// Fire-and-forget commands have no handler.
			c.metrics.repliesUnmatched.Inc()
			return
		}
		c.metrics.repliesMatched.Inc()
		handler(reply.Seq, reply.Code, reply.Message)
	case 'S':
		fields := strings.SplitN(line[1:], "|", 2)
		if len(fields) < 2 {
			log.Printf("dropping malformed status line: %q", line)
			return
		}
		c.handleStatus(fields[1])
	case 'H':
		handle, err := parseHandle(line[1:])
		if err != nil {
			log.Printf("dropping malformed handle line: %v", err)
			return
		}
		c.setHandle(handle)
	case 'V':
		v, err := parseWireVersion(line[1:])
		if err != nil {
			log.Printf("dropping malformed version line: %v", err)
			return
		}
		c.setVersion(v)
	case 'M':
		msg, err := parseBroadcast(line[1:])
		if err != nil {
			log.Printf("dropping malformed broadcast message: %v", err)
			return
		}
		c.Messages.emit(msg)
	default:
		log.Printf("dropping line with unknown type tag: %q", line)
	}
}
