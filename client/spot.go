package client

import "sync"

// Spot is one callsign marker on the panadapter display.
type Spot struct {
	id string

	mu          sync.RWMutex
	callsign    string
	frequency   float64 // MHz
	mode        string
	color       string
	source      string
	comment     string
	lifetime    int // seconds
	priority    int
	triggerable bool

	Updated Event[string]
}

func newSpot(id string) *Spot {
	return &Spot{id: id}
}

// EntityID returns the spot index as reported by the radio.
func (s *Spot) EntityID() string { return s.id }

// ApplyStatus applies the given key/value pairs as attribute mutations.
// Unrecognized keys are ignored without error.
func (s *Spot) ApplyStatus(kvs []KV) {
	var changed []string

	s.mu.Lock()
	for _, kv := range kvs {
		switch kv.Key {
		case "callsign":
			s.callsign = kv.Value
		case "rx_freq", "freq":
			s.frequency = parseFloatValue(kv.Value, s.frequency)
		case "mode":
			s.mode = kv.Value
		case "color":
			s.color = kv.Value
		case "source":
			s.source = kv.Value
		case "comment":
			s.comment = kv.Value
		case "lifetime_seconds":
			s.lifetime = parseIntValue(kv.Value, s.lifetime)
		case "priority":
			s.priority = parseIntClamped(kv.Value, 0, 9, s.priority)
		case "trigger_action":
			s.triggerable = kv.Value == "tune"
		default:
			continue
		}
		changed = append(changed, kv.Key)
	}
	s.mu.Unlock()

	for _, key := range changed {
		s.Updated.emit(key)
	}
}

// Callsign returns the spotted callsign.
func (s *Spot) Callsign() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.callsign
}

// Frequency returns the spot frequency in MHz.
func (s *Spot) Frequency() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frequency
}

// Mode returns the spotted mode.
func (s *Spot) Mode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Source returns where this spot came from.
func (s *Spot) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}
