package client

import (
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultPort of the radio's TCP command channel.
const DefaultPort = 4992

// ErrNotConnected indicates that there is currently no connection to a radio.
var ErrNotConnected = errors.New("not connected")

// ErrReplyTimeout indicates that the radio did not reply within the given time.
var ErrReplyTimeout = errors.New("reply timeout")

// ErrNoHandle indicates that the radio did not assign a session handle in time.
var ErrNoHandle = errors.New("no client handle received")

// SessionState describes where in its lifecycle a session currently is.
type SessionState int

// All session states.
const (
	StateDisconnected SessionState = iota
	StateConnecting
	StateHandshaking
	StateSubscribing
	StateSteady
	StateDisconnecting
)

func (s SessionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateHandshaking:
		return "handshaking"
	case StateSubscribing:
		return "subscribing"
	case StateSteady:
		return "steady"
	case StateDisconnecting:
		return "disconnecting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options configures a client. The zero value is usable.
type Options struct {
	// Program and Station identify this client to the radio and to
	// other clients connected to it.
	Program string
	Station string
	// Verbose asks the radio to echo each command in its reply.
	Verbose bool
	// DisableTimeoutCheck keeps a session alive even when the radio
	// stops replying to keepalive pings. Useful when debugging.
	DisableTimeoutCheck bool
	// Registerer receives this client's metrics collectors. When nil
	// the metrics are still collected but not exported.
	Registerer prometheus.Registerer
}

// Client maintains a session with one radio: the TCP command channel,
// the UDP streaming channel, and the entity state fed by both.
type Client struct {
	host    *net.TCPAddr
	options Options
	metrics *metricsSet

	closed chan struct{}

	connectMu sync.Mutex

	mu             sync.Mutex
	line           LineTransport
	frames         FrameTransport
	demux          *demux
	health         *healthMonitor
	disconnectChan chan struct{}
	state          SessionState
	handle         uint32
	handleReady    chan struct{}
	version        Version
	publicIP       string

	writeMu sync.Mutex

	seq       atomic.Uint32
	pendingMu sync.Mutex
	pending   map[uint32]ReplyHandler

	// Messages is emitted for every broadcast message from the radio,
	// and for locally synthesized ones (e.g. an unsupported protocol
	// version).
	Messages Event[BroadcastMessage]
	// StateChanged is emitted on every session state transition.
	StateChanged Event[SessionState]
	// LinkChanged is emitted when the link quality changes its level.
	LinkChanged Event[LinkQuality]

	Slices       *Collection[*Slice]
	Panadapters  *Collection[*Panadapter]
	Waterfalls   *Collection[*Waterfall]
	Meters       *Collection[*Meter]
	AudioStreams *Collection[*AudioStream]
	IQStreams    *Collection[*IQStream]
	Spots        *Collection[*Spot]
	GUIClients   *Collection[*GUIClient]
	Memories     *Collection[*Memory]
	USBCables    *Collection[*USBCable]
	Equalizers   *Collection[*Equalizer]

	Radio     *RadioInfo
	Transmit  *Transmit
	Interlock *Interlock
	ATU       *ATU
	GPS       *GPS
	Profiles  *Profiles
}

func newClient(host *net.TCPAddr, options Options) *Client {
	c := &Client{
		host:    host,
		options: options,
		metrics: newMetricsSet(options.Registerer),
		closed:  make(chan struct{}),
		pending: make(map[uint32]ReplyHandler),

		Slices:       NewCollection[*Slice](),
		Panadapters:  NewCollection[*Panadapter](),
		Waterfalls:   NewCollection[*Waterfall](),
		Meters:       NewCollection[*Meter](),
		AudioStreams: NewCollection[*AudioStream](),
		IQStreams:    NewCollection[*IQStream](),
		Spots:        NewCollection[*Spot](),
		GUIClients:   NewCollection[*GUIClient](),
		Memories:     NewCollection[*Memory](),
		USBCables:    NewCollection[*USBCable](),
		Equalizers:   NewCollection[*Equalizer](),

		Radio:     newRadioInfo(),
		Transmit:  newTransmit(),
		Interlock: newInterlock(),
		ATU:       newATU(),
		GPS:       newGPS(),
		Profiles:  newProfiles(),
	}

	// A removed stream must wake its pending readers.
	c.AudioStreams.Removed.Subscribe(func(s *AudioStream) { s.close() })
	c.IQStreams.Removed.Subscribe(func(s *IQStream) { s.close() })

	return c
}

// Open connects to the given radio and performs the handshake. It fails
// when the radio is not reachable or does not complete the handshake.
func Open(host *net.TCPAddr, options Options) (*Client, error) {
	client := newClient(host, options)
	err := client.connect()
	if err != nil {
		return nil, err
	}
	return client, nil
}

// KeepOpen returns a client that connects to the given radio and
// reconnects with the given retry interval whenever the connection is
// lost, until Disconnect is called.
func KeepOpen(host *net.TCPAddr, retryInterval time.Duration, options Options) *Client {
	client := newClient(host, options)
	go func() {
		disconnected := make(chan bool, 1)
		for {
			err := client.connect()
			if err == nil {
				client.WhenDisconnected(func() {
					disconnected <- true
				})
				select {
				case <-disconnected:
					log.Printf("connection lost to %s, waiting for retry", host.IP.String())
				case <-client.closed:
					log.Printf("connection closed")
					return
				}
			} else {
				log.Printf("cannot connect to %s, waiting for retry: %v", host.IP.String(), err)
			}

			select {
			case <-time.After(retryInterval):
				log.Printf("retrying to connect to %s", host.IP.String())
			case <-client.closed:
				log.Print("connection closed")
				return
			}
		}
	}()
	return client
}

func (c *Client) connect() error {
	c.connectMu.Lock()
	defer c.connectMu.Unlock()

	if c.Connected() {
		return nil
	}

	host := *c.host
	if host.Port == 0 {
		host.Port = DefaultPort
	}

	c.setState(StateConnecting)
	line, err := DialTCP(&host)
	if err != nil {
		c.setState(StateDisconnected)
		return err
	}
	frames, err := ListenUDP()
	if err != nil {
		line.Close()
		c.setState(StateDisconnected)
		return err
	}

	c.mu.Lock()
	c.line = line
	c.frames = frames
	c.disconnectChan = make(chan struct{})
	c.handleReady = make(chan struct{})
	c.demux = newDemux(c)
	c.health = newHealthMonitor(c)
	disconnect := c.disconnectChan
	demux := c.demux
	c.mu.Unlock()

	log.Printf("connected to %s", line.RemoteAddr())

	demux.start()
	go c.readLoop(line, disconnect)
	go c.frameLoop(frames, demux, disconnect)

	err = c.handshake(frames.LocalPort())
	if err != nil {
		c.dropConnection(disconnect)
		return fmt.Errorf("handshake failed: %w", err)
	}
	return nil
}

// handshake identifies this client to the radio, registers the local
// UDP port, and subscribes to all status categories.
func (c *Client) handshake(udpPort int) error {
	c.setState(StateHandshaking)

	c.mu.Lock()
	ready := c.handleReady
	c.mu.Unlock()
	select {
	case <-ready:
	case <-time.After(AwaitTimeout):
		return ErrNoHandle
	}

	_, _, err := c.SendCommandAwait("client gui "+uuid.NewString(), 0)
	if err != nil {
		return fmt.Errorf("cannot identify client: %w", err)
	}
	if c.options.Program != "" {
		c.SendCommand("client program " + c.options.Program)
	}
	if c.options.Station != "" {
		c.SendCommand("client station " + c.options.Station)
	}

	code, ip, err := c.SendCommandAwait("client ip", 0)
	if err != nil {
		return fmt.Errorf("cannot read own address: %w", err)
	}
	if code == 0 {
		c.mu.Lock()
		c.publicIP = ip
		c.mu.Unlock()
	}

	_, _, err = c.SendCommandAwait(fmt.Sprintf("client udpport %d", udpPort), 0)
	if err != nil {
		return fmt.Errorf("cannot register streaming port: %w", err)
	}

	c.setState(StateSubscribing)
	for _, category := range subscribeCategories {
		c.SendCommand("sub " + category + " all")
	}

	c.mu.Lock()
	health := c.health
	c.mu.Unlock()
	if health == nil {
		// the connection was dropped while subscribing
		return ErrNotConnected
	}
	health.start()

	c.setState(StateSteady)
	return nil
}

var subscribeCategories = []string{
	"radio",
	"tx",
	"atu",
	"slice",
	"pan",
	"meter",
	"audio_stream",
	"daxiq",
	"spot",
	"client",
	"memories",
	"usb_cable",
	"gps",
}

func (c *Client) readLoop(line LineTransport, disconnect chan struct{}) {
	for {
		text, err := line.ReadLine()
		if err != nil {
			select {
			case <-disconnect:
			default:
				log.Printf("command channel closed: %v", err)
			}
			c.dropConnection(disconnect)
			return
		}
		c.handleLine(text)
	}
}

func (c *Client) frameLoop(frames FrameTransport, demux *demux, disconnect chan struct{}) {
	buf := make([]byte, 9000)
	for {
		n, err := frames.ReadFrame(buf)
		if err != nil {
			select {
			case <-disconnect:
			default:
				log.Printf("streaming channel closed: %v", err)
				c.dropConnection(disconnect)
			}
			return
		}
		demux.OnFrame(buf[:n])
	}
}

// dropConnection tears the given connection down: stop and join the
// workers, close the transports, forget the pending replies, and clear
// all entity collections (emitting a removal for each entity). It is a
// no-op when the connection was already dropped or replaced.
func (c *Client) dropConnection(disconnect chan struct{}) {
	c.mu.Lock()
	if c.disconnectChan != disconnect {
		c.mu.Unlock()
		return
	}
	select {
	case <-disconnect:
		c.mu.Unlock()
		return
	default:
	}
	close(disconnect)
	line := c.line
	frames := c.frames
	demux := c.demux
	health := c.health
	c.line = nil
	c.frames = nil
	c.demux = nil
	c.health = nil
	c.mu.Unlock()

	c.setState(StateDisconnecting)
	if health != nil {
		health.stop()
	}
	if demux != nil {
		demux.stop()
	}
	if line != nil {
		line.Close()
	}
	if frames != nil {
		frames.Close()
	}

	c.clearPendingReplies()
	c.clearCollections()
	c.setState(StateDisconnected)
	log.Print("disconnected")
}

func (c *Client) clearCollections() {
	c.Slices.clear()
	c.Panadapters.clear()
	c.Waterfalls.clear()
	c.Meters.clear()
	c.AudioStreams.clear()
	c.IQStreams.clear()
	c.Spots.clear()
	c.GUIClients.clear()
	c.Memories.clear()
	c.USBCables.clear()
	c.Equalizers.clear()
}

// abort drops the current connection without closing the client, so a
// KeepOpen wrapper will reconnect.
func (c *Client) abort() {
	c.mu.Lock()
	disconnect := c.disconnectChan
	c.mu.Unlock()
	if disconnect == nil {
		return
	}
	c.dropConnection(disconnect)
}

// Connected indicates if there currently is a usable connection.
func (c *Client) Connected() bool {
	c.mu.Lock()
	disconnect := c.disconnectChan
	c.mu.Unlock()
	if disconnect == nil {
		return false
	}
	select {
	case <-disconnect:
		return false
	default:
		return true
	}
}

// Disconnect closes the connection and the client. A client opened with
// KeepOpen stops reconnecting.
func (c *Client) Disconnect() {
	// When the connection was disconnected from the outside, we keep it closed.
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}
	c.abort()
}

// WhenDisconnected calls f as soon as the current connection is gone.
func (c *Client) WhenDisconnected(f func()) {
	c.mu.Lock()
	disconnect := c.disconnectChan
	c.mu.Unlock()
	if disconnect == nil {
		f()
		return
	}
	go func() {
		<-disconnect
		f()
	}()
}

func (c *Client) writeLine(line string) error {
	c.mu.Lock()
	transport := c.line
	c.mu.Unlock()
	if transport == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return transport.WriteLine(line)
}

func (c *Client) setState(state SessionState) {
	c.mu.Lock()
	if c.state == state {
		c.mu.Unlock()
		return
	}
	c.state = state
	c.mu.Unlock()

	c.StateChanged.emit(state)
}

// State returns the current session state.
func (c *Client) State() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) setHandle(handle uint32) {
	c.mu.Lock()
	c.handle = handle
	ready := c.handleReady
	c.mu.Unlock()

	if ready == nil {
		return
	}
	select {
	case <-ready:
	default:
		close(ready)
	}
}

// Handle returns the session handle assigned by the radio.
func (c *Client) Handle() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle
}

func (c *Client) setVersion(v Version) {
	c.mu.Lock()
	c.version = v
	c.mu.Unlock()

	if !versionSupported(v) {
		log.Printf("unsupported protocol version %s", v)
		c.Messages.emit(BroadcastMessage{
			Severity: SeverityFatal,
			Text:     fmt.Sprintf("unsupported protocol version %s", v),
		})
	}
}

// ProtocolVersion returns the protocol version announced by the radio.
func (c *Client) ProtocolVersion() Version {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// PublicIP returns this client's address as seen by the radio.
func (c *Client) PublicIP() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.publicIP
}

// frameLossTotals returns the streaming channel's running frame and gap
// counts, or zeros without an active session.
func (c *Client) frameLossTotals() (frames, gaps uint64) {
	c.mu.Lock()
	demux := c.demux
	c.mu.Unlock()
	if demux == nil {
		return 0, 0
	}
	return demux.lossTotals()
}

// LinkQuality returns the current link quality grade. Without an active
// session it returns LinkBad.
func (c *Client) LinkQuality() LinkQuality {
	c.mu.Lock()
	health := c.health
	c.mu.Unlock()
	if health == nil {
		return LinkBad
	}
	return health.Quality()
}
