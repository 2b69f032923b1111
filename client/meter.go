package client

import (
	"strconv"
	"strings"
	"sync"
)

// Meter is one metering point of the radio. Its descriptive attributes
// arrive as status text; its values arrive as raw samples over the
// streaming channel and are scaled according to the meter's unit.
type Meter struct {
	id string

	mu          sync.RWMutex
	source      string
	sourceIndex int
	name        string
	unit        string
	low         float64
	lowSet      bool
	high        float64
	highSet     bool
	fps         int
	description string
	value       float64

	Updated Event[string]
	// Value is emitted with the scaled value after a new sample was
	// applied. Samples arriving within one drain cycle are coalesced
	// upstream, so observers see at most the last value per cycle.
	Value Event[float64]
}

func newMeter(id string) *Meter {
	return &Meter{id: id}
}

// EntityID returns the meter number as reported by the radio.
func (m *Meter) EntityID() string { return m.id }

// ApplyStatus applies the given key/value pairs as attribute mutations.
// Unrecognized keys are ignored without error.
func (m *Meter) ApplyStatus(kvs []KV) {
	var changed []string

	m.mu.Lock()
	for _, kv := range kvs {
		switch kv.Key {
		case "src":
			m.source = kv.Value
		case "num":
			m.sourceIndex = parseIntValue(kv.Value, m.sourceIndex)
		case "nam", "name":
			m.name = kv.Value
		case "unit":
			m.unit = kv.Value
		case "lo", "low":
			m.low = parseFloatValue(kv.Value, m.low)
			m.lowSet = true
		case "hi", "high":
			m.high = parseFloatValue(kv.Value, m.high)
			m.highSet = true
		case "fps":
			m.fps = parseIntClamped(kv.Value, 0, 60, m.fps)
		case "desc":
			m.description = kv.Value
		default:
			continue
		}
		changed = append(changed, kv.Key)
	}
	m.mu.Unlock()

	for _, key := range changed {
		m.Updated.emit(key)
	}
}

// applyRawValue scales and stores one raw sample from a meter frame. The
// value is clamped to the documented bounds once they are known, a bound
// of 0 included.
func (m *Meter) applyRawValue(raw int16) {
	m.mu.Lock()
	value := scaleMeterValue(m.unit, raw)
	if m.lowSet && value < m.low {
		value = m.low
	}
	if m.highSet && value > m.high {
		value = m.high
	}
	m.value = value
	m.mu.Unlock()

	m.Value.emit(value)
}

// scaleMeterValue converts a raw 16-bit sample into the meter's unit.
func scaleMeterValue(unit string, raw int16) float64 {
	switch unit {
	case "dB", "dBm", "dBFS", "SWR":
		return float64(raw) / 128.0
	case "volts", "amps":
		return float64(raw) / 256.0
	case "degC", "degF":
		return float64(raw) / 64.0
	default:
		return float64(raw)
	}
}

// CurrentValue returns the most recently applied, scaled value.
func (m *Meter) CurrentValue() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.value
}

// Name returns the short meter name.
func (m *Meter) Name() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.name
}

// Unit returns the meter's unit.
func (m *Meter) Unit() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.unit
}

// Source returns the subsystem this meter belongs to (e.g. "slc" for a
// slice) and the index within that subsystem.
func (m *Meter) Source() (string, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.source, m.sourceIndex
}

// Range returns the documented value bounds.
func (m *Meter) Range() (low, high float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.low, m.high
}

// Description returns the human-readable meter description.
func (m *Meter) Description() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.description
}

// SliceMeters returns all meters attached to the slice with the given
// identifier. The attachment is resolved on demand, so it does not
// matter whether the meter or its slice was announced first.
func (c *Client) SliceMeters(sliceID string) []*Meter {
	index, err := strconv.Atoi(sliceID)
	if err != nil {
		return nil
	}

	var result []*Meter
	for _, meter := range c.Meters.All() {
		source, num := meter.Source()
		if strings.EqualFold(source, "slc") && num == index {
			result = append(result, meter)
		}
	}
	return result
}
