package client

import "sync"

// Equalizer is one of the radio's audio equalizers, keyed by its scope
// token ("rx" and "tx" today, any future scope passes through as-is).
// The band keys follow the status grammar: "63Hz", "125Hz", ... "8000Hz".
type Equalizer struct {
	id string

	mu      sync.RWMutex
	enabled bool
	bands   map[string]int // -10..10 dB per band

	Updated Event[string]
}

func newEqualizer(id string) *Equalizer {
	return &Equalizer{id: id, bands: make(map[string]int)}
}

// EntityID returns the equalizer's scope token, e.g. "rx" or "tx".
func (e *Equalizer) EntityID() string { return e.id }

// ApplyStatus applies the given key/value pairs as attribute mutations.
// Unrecognized keys are ignored without error.
func (e *Equalizer) ApplyStatus(kvs []KV) {
	var changed []string

	e.mu.Lock()
	for _, kv := range kvs {
		switch kv.Key {
		case "mode":
			e.enabled = parseBoolValue(kv.Value, e.enabled)
		case "63Hz", "125Hz", "250Hz", "500Hz", "1000Hz", "2000Hz", "4000Hz", "8000Hz":
			e.bands[kv.Key] = parseIntClamped(kv.Value, -10, 10, e.bands[kv.Key])
		default:
			continue
		}
		changed = append(changed, kv.Key)
	}
	e.mu.Unlock()

	for _, key := range changed {
		e.Updated.emit(key)
	}
}

// Enabled indicates if the equalizer is active.
func (e *Equalizer) Enabled() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.enabled
}

// Band returns the level of the given band in dB.
func (e *Equalizer) Band(name string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.bands[name]
}
