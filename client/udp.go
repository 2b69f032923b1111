package client

import (
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/ftl/flexsdr/vita"
)

const (
	frameQueueSize   = 512
	meterQueueSize   = 64
	displayQueueSize = 256
)

// demux fans the frames from the streaming channel out to the entities
// they belong to. The receive path only enqueues; classification,
// meter coalescing, and display dispatch each run on their own
// goroutine so that a slow consumer never backs up the UDP socket.
type demux struct {
	client *Client

	frames   chan []byte
	meters   chan []vita.MeterSample
	displays chan displayFrame

	// loss is only touched by the classifier goroutine.
	loss map[uint32]*lossCounter

	frameTotal atomic.Uint64
	gapTotal   atomic.Uint64

	done chan struct{}
	wg   sync.WaitGroup
}

type displayFrame struct {
	streamID uint32
	class    vita.PacketClass
	fft      vita.FFTPacket
	tile     vita.WaterfallTile
}

func newDemux(client *Client) *demux {
	return &demux{
		client:   client,
		frames:   make(chan []byte, frameQueueSize),
		meters:   make(chan []vita.MeterSample, meterQueueSize),
		displays: make(chan displayFrame, displayQueueSize),
		loss:     make(map[uint32]*lossCounter),
		done:     make(chan struct{}),
	}
}

func (d *demux) start() {
	d.wg.Add(3)
	go d.classifyFrames()
	go d.coalesceMeters()
	go d.dispatchDisplays()
}

func (d *demux) stop() {
	select {
	case <-d.done:
	default:
		close(d.done)
	}
	d.wg.Wait()
}

// OnFrame takes one raw datagram from the receive loop. It copies the
// bytes and enqueues them; it never blocks and never parses on the
// caller's goroutine. When the queue is full the frame is dropped.
func (d *demux) OnFrame(data []byte) {
	select {
	case <-d.done:
		return
	default:
	}

	frame := make([]byte, len(data))
	copy(frame, data)

	select {
	case d.frames <- frame:
	default:
		d.client.metrics.framesDropped.Inc()
	}
}

func (d *demux) classifyFrames() {
	defer d.wg.Done()
	for {
		select {
		case <-d.done:
			return
		case frame := <-d.frames:
			d.classifyFrame(frame)
		}
	}
}

func (d *demux) classifyFrame(frame []byte) {
	header, payload, err := vita.ParseFrame(frame)
	if err != nil {
		log.Printf("dropping malformed frame: %v", err)
		return
	}
	if header.OUI != vita.FlexOUI {
		d.client.metrics.framesUnroutable.Inc()
		return
	}

	d.client.metrics.framesReceived.WithLabelValues(header.PacketClass.String()).Inc()
	d.frameTotal.Add(1)
	if d.observeCount(header.StreamID, header.Count) {
		d.client.metrics.sequenceGaps.Inc()
		d.gapTotal.Add(1)
		log.Printf("packet loss on stream %s (%s)", formatStreamID(header.StreamID), header.PacketClass)
	}

	switch {
	case header.PacketClass == vita.ClassMeter:
		select {
		case d.meters <- vita.ParseMeterPayload(payload):
		default:
			d.client.metrics.framesDropped.Inc()
		}
	case header.PacketClass == vita.ClassFFT:
		packet, err := vita.ParseFFTPayload(payload)
		if err != nil {
			log.Printf("dropping malformed fft payload: %v", err)
			return
		}
		d.enqueueDisplay(displayFrame{streamID: header.StreamID, class: header.PacketClass, fft: packet})
	case header.PacketClass == vita.ClassWaterfall:
		tile, err := vita.ParseWaterfallPayload(payload)
		if err != nil {
			log.Printf("dropping malformed waterfall payload: %v", err)
			return
		}
		d.enqueueDisplay(displayFrame{streamID: header.StreamID, class: header.PacketClass, tile: tile})
	case header.PacketClass == vita.ClassDAXAudio:
		d.dispatchAudio(header.StreamID, vita.ParseFloatSamples(payload))
	case header.PacketClass == vita.ClassDAXReducedBW:
		d.dispatchAudio(header.StreamID, vita.ParseInt16Samples(payload))
	case header.PacketClass.IsIQ():
		d.dispatchIQ(header.StreamID, vita.ParseFloatSamples(payload))
	default:
		// opus and discovery frames are not consumed here
		d.client.metrics.framesUnroutable.Inc()
	}
}

func (d *demux) enqueueDisplay(frame displayFrame) {
	select {
	case d.displays <- frame:
	default:
		d.client.metrics.framesDropped.Inc()
	}
}

// dispatchAudio routes audio samples to their stream inline. Ingest
// never blocks, so there is no need for another queue on this path.
func (d *demux) dispatchAudio(streamID uint32, samples []float32) {
	stream, ok := d.client.AudioStreams.FindByID(formatStreamID(streamID))
	if !ok {
		d.client.metrics.framesUnroutable.Inc()
		return
	}
	stream.Ingest(samples)
}

func (d *demux) dispatchIQ(streamID uint32, samples []float32) {
	stream, ok := d.client.IQStreams.FindByID(formatStreamID(streamID))
	if !ok {
		d.client.metrics.framesUnroutable.Inc()
		return
	}
	stream.Ingest(samples)
}

// coalesceMeters drains the meter queue in cycles: all batches queued at
// the start of a cycle collapse to the last value per meter, then each
// meter gets exactly one application. A consumer that cannot keep up
// with the meter rate thus sees fresh values instead of a growing lag.
func (d *demux) coalesceMeters() {
	defer d.wg.Done()
	latest := make(map[uint16]int16)
	for {
		select {
		case <-d.done:
			return
		case batch := <-d.meters:
			for _, sample := range batch {
				latest[sample.ID] = sample.Value
			}
		}

	drain:
		for {
			select {
			case batch := <-d.meters:
				for _, sample := range batch {
					latest[sample.ID] = sample.Value
				}
			default:
				break drain
			}
		}

		for id, raw := range latest {
			meter, ok := d.client.Meters.FindByID(strconv.Itoa(int(id)))
			if !ok {
				continue
			}
			meter.applyRawValue(raw)
		}
		clear(latest)
	}
}

// dispatchDisplays delivers FFT and waterfall tiles strictly in arrival
// order. Tiles for a display that does not exist (yet) are dropped.
func (d *demux) dispatchDisplays() {
	defer d.wg.Done()
	for {
		select {
		case <-d.done:
			return
		case frame := <-d.displays:
			id := formatStreamID(frame.streamID)
			switch frame.class {
			case vita.ClassFFT:
				panadapter, ok := d.client.Panadapters.FindByID(id)
				if !ok {
					d.client.metrics.framesUnroutable.Inc()
					continue
				}
				panadapter.IngestFFT(frame.fft)
			case vita.ClassWaterfall:
				waterfall, ok := d.client.Waterfalls.FindByID(id)
				if !ok {
					d.client.metrics.framesUnroutable.Inc()
					continue
				}
				waterfall.IngestTile(frame.tile)
			}
		}
	}
}

// lossCounter tracks the modulo-16 packet counter of one stream. A jump
// of any width counts as one gap; the very first packet of a stream can
// never be a gap.
type lossCounter struct {
	last byte
}

// lossTotals returns the running counts of frames seen and counter gaps
// detected on this connection. The health monitor samples them to grade
// the packet-error ratio.
func (d *demux) lossTotals() (frames, gaps uint64) {
	return d.frameTotal.Load(), d.gapTotal.Load()
}

func (d *demux) observeCount(streamID uint32, count byte) bool {
	counter, ok := d.loss[streamID]
	if !ok {
		d.loss[streamID] = &lossCounter{last: count}
		return false
	}
	gap := count != (counter.last+1)&0xF
	counter.last = count
	return gap
}
