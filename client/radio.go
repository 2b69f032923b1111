package client

import "sync"

// RadioInfo is the singleton record describing the radio itself. It is
// populated incrementally from "radio" status lines during the handshake
// and whenever a setting changes.
type RadioInfo struct {
	mu              sync.RWMutex
	model           string
	name            string
	callsign        string
	serial          string
	softwareVersion string
	screensaver     string
	sliceCount      int
	panadapterCount int
	lineoutGain     int // 0..100
	lineoutMute     bool
	headphoneGain   int // 0..100
	headphoneMute   bool
	remoteOnEnabled bool

	Updated Event[string]
}

func newRadioInfo() *RadioInfo {
	return &RadioInfo{}
}

// ApplyStatus applies the given key/value pairs as attribute mutations.
// Unrecognized keys are ignored without error.
func (r *RadioInfo) ApplyStatus(kvs []KV) {
	var changed []string

	r.mu.Lock()
	for _, kv := range kvs {
		switch kv.Key {
		case "model":
			r.model = kv.Value
		case "name":
			r.name = kv.Value
		case "callsign":
			r.callsign = kv.Value
		case "serial":
			r.serial = kv.Value
		case "software_ver", "version":
			r.softwareVersion = kv.Value
		case "screensaver":
			r.screensaver = kv.Value
		case "slices":
			r.sliceCount = parseIntValue(kv.Value, r.sliceCount)
		case "panadapters":
			r.panadapterCount = parseIntValue(kv.Value, r.panadapterCount)
		case "lineout_gain":
			r.lineoutGain = parseIntClamped(kv.Value, 0, 100, r.lineoutGain)
		case "lineout_mute":
			r.lineoutMute = parseBoolValue(kv.Value, r.lineoutMute)
		case "headphone_gain":
			r.headphoneGain = parseIntClamped(kv.Value, 0, 100, r.headphoneGain)
		case "headphone_mute":
			r.headphoneMute = parseBoolValue(kv.Value, r.headphoneMute)
		case "remote_on_enabled":
			r.remoteOnEnabled = parseBoolValue(kv.Value, r.remoteOnEnabled)
		default:
			continue
		}
		changed = append(changed, kv.Key)
	}
	r.mu.Unlock()

	for _, key := range changed {
		r.Updated.emit(key)
	}
}

// Model returns the radio's model designation.
func (r *RadioInfo) Model() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.model
}

// Name returns the radio's configured name.
func (r *RadioInfo) Name() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.name
}

// Callsign returns the configured callsign.
func (r *RadioInfo) Callsign() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.callsign
}

// Serial returns the radio's serial number.
func (r *RadioInfo) Serial() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.serial
}

// SoftwareVersion returns the radio's firmware version string.
func (r *RadioInfo) SoftwareVersion() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.softwareVersion
}

// Resources returns the radio's slice and panadapter capacity.
func (r *RadioInfo) Resources() (slices, panadapters int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sliceCount, r.panadapterCount
}

// LineoutGain returns the lineout gain in percent and its mute state.
func (r *RadioInfo) LineoutGain() (gain int, mute bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lineoutGain, r.lineoutMute
}

// HeadphoneGain returns the headphone gain in percent and its mute state.
func (r *RadioInfo) HeadphoneGain() (gain int, mute bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.headphoneGain, r.headphoneMute
}
