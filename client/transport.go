package client

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// LineTransport is a reliable, ordered transport for newline-terminated
// text lines. The radio's TCP command channel is the default
// implementation; a websocket variant exists for proxied deployments.
type LineTransport interface {
	ReadLine() (string, error)
	WriteLine(line string) error
	Close() error
	LocalAddr() net.Addr
	RemoteAddr() net.Addr
}

// FrameTransport is an unreliable, unordered transport for binary
// datagrams.
type FrameTransport interface {
	ReadFrame(buf []byte) (int, error)
	WriteFrame(frame []byte) error
	Close() error
	LocalPort() int
}

// DialTCP opens the radio's TCP command channel.
func DialTCP(host *net.TCPAddr) (LineTransport, error) {
	conn, err := net.DialTCP("tcp", nil, host)
	if err != nil {
		return nil, fmt.Errorf("cannot open command connection: %w", err)
	}
	conn.SetNoDelay(true)
	return &tcpLineTransport{conn: conn, reader: bufio.NewReader(conn)}, nil
}

type tcpLineTransport struct {
	conn   *net.TCPConn
	reader *bufio.Reader
}

func (t *tcpLineTransport) ReadLine() (string, error) {
	line, err := t.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (t *tcpLineTransport) WriteLine(line string) error {
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	_, err := t.conn.Write([]byte(line))
	return err
}

func (t *tcpLineTransport) Close() error {
	return t.conn.Close()
}

func (t *tcpLineTransport) LocalAddr() net.Addr {
	return t.conn.LocalAddr()
}

func (t *tcpLineTransport) RemoteAddr() net.Addr {
	return t.conn.RemoteAddr()
}

// DialWebsocket opens the command channel through a websocket proxy.
// Each websocket text message carries exactly one protocol line.
func DialWebsocket(url string) (LineTransport, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot open websocket connection: %w", err)
	}
	return &wsLineTransport{conn: conn}, nil
}

type wsLineTransport struct {
	conn *websocket.Conn
}

func (t *wsLineTransport) ReadLine() (string, error) {
	for {
		msgType, msg, err := t.conn.ReadMessage()
		if err != nil {
			return "", err
		}
		if msgType != websocket.TextMessage {
			continue
		}
		return strings.TrimRight(string(msg), "\r\n"), nil
	}
}

func (t *wsLineTransport) WriteLine(line string) error {
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	return t.conn.WriteMessage(websocket.TextMessage, []byte(line))
}

func (t *wsLineTransport) Close() error {
	return t.conn.Close()
}

func (t *wsLineTransport) LocalAddr() net.Addr {
	return t.conn.LocalAddr()
}

func (t *wsLineTransport) RemoteAddr() net.Addr {
	return t.conn.RemoteAddr()
}

// ListenUDP opens the local datagram endpoint for the radio's streaming
// channel on an ephemeral port.
func ListenUDP() (FrameTransport, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return nil, fmt.Errorf("cannot open streaming endpoint: %w", err)
	}
	return &udpFrameTransport{conn: conn}, nil
}

type udpFrameTransport struct {
	conn *net.UDPConn
}

func (t *udpFrameTransport) ReadFrame(buf []byte) (int, error) {
	n, _, err := t.conn.ReadFromUDP(buf)
	return n, err
}

func (t *udpFrameTransport) WriteFrame(frame []byte) error {
	_, err := t.conn.Write(frame)
	return err
}

func (t *udpFrameTransport) Close() error {
	// Unblocks a pending ReadFrame within a bounded time.
	t.conn.SetReadDeadline(time.Now())
	return t.conn.Close()
}

func (t *udpFrameTransport) LocalPort() int {
	return t.conn.LocalAddr().(*net.UDPAddr).Port
}
