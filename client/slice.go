package client

import (
	"sync"
)

// Slice is one receiver channel of the radio.
type Slice struct {
	id string

	mu         sync.RWMutex
	frequency  float64 // MHz
	mode       string
	rxAnt      string
	txAnt      string
	filterLow  int // Hz, relative to the slice frequency
	filterHigh int
	audioGain  int // 0..100
	audioPan   int // 0..100
	agcMode    string
	agcLevel   int // 0..100
	active     bool
	locked     bool
	muted      bool
	transmit   bool
	daxChannel int
	panadapter string // stream id of the owning panadapter

	// Updated is emitted with the attribute key after the attribute
	// changed its value.
	Updated Event[string]
}

func newSlice(id string) *Slice {
	return &Slice{id: id}
}

// EntityID returns the slice index as reported by the radio.
func (s *Slice) EntityID() string { return s.id }

// ApplyStatus applies the given key/value pairs as attribute mutations.
// Unrecognized keys are ignored without error.
func (s *Slice) ApplyStatus(kvs []KV) {
	var changed []string

	s.mu.Lock()
	for _, kv := range kvs {
		switch kv.Key {
		case "rf_frequency", "freq":
			s.frequency = parseFloatValue(kv.Value, s.frequency)
		case "mode":
			s.mode = kv.Value
		case "rxant":
			s.rxAnt = kv.Value
		case "txant":
			s.txAnt = kv.Value
		case "filter_lo":
			s.filterLow = parseIntValue(kv.Value, s.filterLow)
		case "filter_hi":
			s.filterHigh = parseIntValue(kv.Value, s.filterHigh)
		case "audio_gain":
			s.audioGain = parseIntClamped(kv.Value, 0, 100, s.audioGain)
		case "audio_pan":
			s.audioPan = parseIntClamped(kv.Value, 0, 100, s.audioPan)
		case "agc_mode":
			s.agcMode = kv.Value
		case "agc_threshold":
			s.agcLevel = parseIntClamped(kv.Value, 0, 100, s.agcLevel)
		case "active":
			s.active = parseBoolValue(kv.Value, s.active)
		case "lock":
			s.locked = parseBoolValue(kv.Value, s.locked)
		case "mute":
			s.muted = parseBoolValue(kv.Value, s.muted)
		case "tx":
			s.transmit = parseBoolValue(kv.Value, s.transmit)
		case "dax":
			s.daxChannel = parseIntValue(kv.Value, s.daxChannel)
		case "pan":
			s.panadapter = normalizeStreamID(kv.Value)
		case "in_use":
			// handled by the router
			continue
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

// Frequency returns the tuning frequency in MHz.
func (s *Slice) Frequency() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frequency
}

// Mode returns the demodulation mode.
func (s *Slice) Mode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Filter returns the filter edges in Hz relative to the slice frequency.
func (s *Slice) Filter() (low, high int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterLow, s.filterHigh
}

// AudioGain returns the audio gain in percent.
func (s *Slice) AudioGain() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.audioGain
}

// AudioPan returns the audio panning in percent (0 = left, 100 = right).
func (s *Slice) AudioPan() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.audioPan
}

// Active indicates if this is the active slice.
func (s *Slice) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Locked indicates if tuning is locked.
func (s *Slice) Locked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locked
}

// Muted indicates if the slice audio is muted.
func (s *Slice) Muted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.muted
}

// Transmit indicates if this slice is the transmit slice.
func (s *Slice) Transmit() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transmit
}

// DAXChannel returns the DAX audio channel, 0 if none is assigned.
func (s *Slice) DAXChannel() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.daxChannel
}

// Panadapter returns the stream id of the owning panadapter.
func (s *Slice) Panadapter() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.panadapter
}

// Antennas returns the selected RX and TX antenna ports.
func (s *Slice) Antennas() (rx, tx string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rxAnt, s.txAnt
}

// AGC returns the AGC mode and threshold.
func (s *Slice) AGC() (mode string, threshold int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.agcMode, s.agcLevel
}
