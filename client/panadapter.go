package client

import (
	"sync"

	"github.com/ftl/flexsdr/vita"
)

// Panadapter is one spectrum display of the radio, fed with FFT bin
// tiles over the streaming channel.
type Panadapter struct {
	id string

	mu        sync.RWMutex
	center    float64 // MHz
	bandwidth float64 // MHz
	minDBM    float64
	maxDBM    float64
	fps       int
	average   int // 0..100
	xPixels   int
	yPixels   int
	rfGain    int
	band      string
	rxAnt     string
	wideNB    bool
	waterfall string // stream id of the attached waterfall

	// Updated is emitted with the attribute key after the attribute
	// changed its value.
	Updated Event[string]
	// Data is emitted for every FFT tile arriving for this panadapter,
	// in arrival order.
	Data Event[vita.FFTPacket]
}

func newPanadapter(id string) *Panadapter {
	return &Panadapter{id: id}
}

// EntityID returns the panadapter's stream identifier.
func (p *Panadapter) EntityID() string { return p.id }

// ApplyStatus applies the given key/value pairs as attribute mutations.
// Unrecognized keys are ignored without error.
func (p *Panadapter) ApplyStatus(kvs []KV) {
	var changed []string

	p.mu.Lock()
	for _, kv := range kvs {
		switch kv.Key {
		case "center":
			p.center = parseFloatValue(kv.Value, p.center)
		case "bandwidth":
			p.bandwidth = parseFloatValue(kv.Value, p.bandwidth)
		case "min_dbm":
			p.minDBM = parseFloatValue(kv.Value, p.minDBM)
		case "max_dbm":
			p.maxDBM = parseFloatValue(kv.Value, p.maxDBM)
		case "fps":
			p.fps = parseIntClamped(kv.Value, 0, 60, p.fps)
		case "average":
			p.average = parseIntClamped(kv.Value, 0, 100, p.average)
		case "x_pixels":
			p.xPixels = parseIntValue(kv.Value, p.xPixels)
		case "y_pixels":
			p.yPixels = parseIntValue(kv.Value, p.yPixels)
		case "rfgain":
			p.rfGain = parseIntValue(kv.Value, p.rfGain)
		case "band":
			p.band = kv.Value
		case "rxant":
			p.rxAnt = kv.Value
		case "wnb":
			p.wideNB = parseBoolValue(kv.Value, p.wideNB)
		case "waterfall":
			p.waterfall = normalizeStreamID(kv.Value)
		default:
			continue
		}
		changed = append(changed, kv.Key)
	}
	p.mu.Unlock()

	for _, key := range changed {
		p.Updated.emit(key)
	}
}

// IngestFFT appends one FFT tile, preserving arrival order.
func (p *Panadapter) IngestFFT(packet vita.FFTPacket) {
	p.Data.emit(packet)
}

// Center returns the center frequency in MHz.
func (p *Panadapter) Center() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.center
}

// Bandwidth returns the displayed bandwidth in MHz.
func (p *Panadapter) Bandwidth() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.bandwidth
}

// DBMRange returns the displayed power range.
func (p *Panadapter) DBMRange() (min, max float64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.minDBM, p.maxDBM
}

// Dimensions returns the requested display size in pixels.
func (p *Panadapter) Dimensions() (x, y int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.xPixels, p.yPixels
}

// FPS returns the tile rate.
func (p *Panadapter) FPS() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.fps
}

// Band returns the selected band.
func (p *Panadapter) Band() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.band
}

// Waterfall returns the stream id of the attached waterfall display.
func (p *Panadapter) Waterfall() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.waterfall
}
