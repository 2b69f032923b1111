package client

import (
	"sync"

	"github.com/ftl/flexsdr/vita"
)

// Waterfall is one waterfall display of the radio, fed with line tiles
// over the streaming channel.
type Waterfall struct {
	id string

	mu           sync.RWMutex
	panadapter   string // stream id of the owning panadapter
	lineDuration int    // ms
	colorGain    int    // 0..100
	blackLevel   int    // 0..100
	autoBlack    bool
	gradient     int

	Updated Event[string]
	// Tiles is emitted for every waterfall tile arriving for this
	// display, in arrival order.
	Tiles Event[vita.WaterfallTile]
}

func newWaterfall(id string) *Waterfall {
	return &Waterfall{id: id}
}

// EntityID returns the waterfall's stream identifier.
func (w *Waterfall) EntityID() string { return w.id }

// ApplyStatus applies the given key/value pairs as attribute mutations.
// Unrecognized keys are ignored without error.
func (w *Waterfall) ApplyStatus(kvs []KV) {
	var changed []string

	w.mu.Lock()
	for _, kv := range kvs {
		switch kv.Key {
		case "panadapter":
			w.panadapter = normalizeStreamID(kv.Value)
		case "line_duration":
			w.lineDuration = parseIntClamped(kv.Value, 1, 1000, w.lineDuration)
		case "color_gain":
			w.colorGain = parseIntClamped(kv.Value, 0, 100, w.colorGain)
		case "black_level":
			w.blackLevel = parseIntClamped(kv.Value, 0, 100, w.blackLevel)
		case "auto_black":
			w.autoBlack = parseBoolValue(kv.Value, w.autoBlack)
		case "gradient_index":
			w.gradient = parseIntValue(kv.Value, w.gradient)
		default:
			continue
		}
		changed = append(changed, kv.Key)
	}
	w.mu.Unlock()

	for _, key := range changed {
		w.Updated.emit(key)
	}
}

// IngestTile appends one waterfall tile, preserving arrival order.
func (w *Waterfall) IngestTile(tile vita.WaterfallTile) {
	w.Tiles.emit(tile)
}

// Panadapter returns the stream id of the owning panadapter.
func (w *Waterfall) Panadapter() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.panadapter
}

// LineDuration returns the duration of one waterfall line in ms.
func (w *Waterfall) LineDuration() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lineDuration
}
