package client

import "sync"

// Memory is one stored frequency memory of the radio.
type Memory struct {
	id string

	mu         sync.RWMutex
	name       string
	group      string
	owner      string
	frequency  float64 // MHz
	mode       string
	filterLow  int
	filterHigh int
	power      int // 0..100
	squelch    bool

	Updated Event[string]
}

func newMemory(id string) *Memory {
	return &Memory{id: id}
}

// EntityID returns the memory index as reported by the radio.
func (m *Memory) EntityID() string { return m.id }

// ApplyStatus applies the given key/value pairs as attribute mutations.
// Unrecognized keys are ignored without error.
func (m *Memory) ApplyStatus(kvs []KV) {
	var changed []string

	m.mu.Lock()
	for _, kv := range kvs {
		switch kv.Key {
		case "name":
			m.name = kv.Value
		case "group":
			m.group = kv.Value
		case "owner":
			m.owner = kv.Value
		case "freq":
			m.frequency = parseFloatValue(kv.Value, m.frequency)
		case "mode":
			m.mode = kv.Value
		case "rx_filter_low":
			m.filterLow = parseIntValue(kv.Value, m.filterLow)
		case "rx_filter_high":
			m.filterHigh = parseIntValue(kv.Value, m.filterHigh)
		case "power":
			m.power = parseIntClamped(kv.Value, 0, 100, m.power)
		case "squelch":
			m.squelch = parseBoolValue(kv.Value, m.squelch)
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

// Name returns the memory's name.
func (m *Memory) Name() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.name
}

// Frequency returns the stored frequency in MHz.
func (m *Memory) Frequency() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.frequency
}

// Mode returns the stored mode.
func (m *Memory) Mode() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mode
}
