package client

import "sync"

// USBCable is one USB control cable plugged into the radio.
type USBCable struct {
	id string

	mu        sync.RWMutex
	cableType string
	name      string
	enabled   bool
	pluggedIn bool
	source    string

	Updated Event[string]
}

func newUSBCable(id string) *USBCable {
	return &USBCable{id: id}
}

// EntityID returns the cable's serial number.
func (u *USBCable) EntityID() string { return u.id }

// ApplyStatus applies the given key/value pairs as attribute mutations.
// Unrecognized keys are ignored without error.
func (u *USBCable) ApplyStatus(kvs []KV) {
	var changed []string

	u.mu.Lock()
	for _, kv := range kvs {
		switch kv.Key {
		case "type":
			u.cableType = kv.Value
		case "name":
			u.name = kv.Value
		case "enable":
			u.enabled = parseBoolValue(kv.Value, u.enabled)
		case "plugged_in":
			u.pluggedIn = parseBoolValue(kv.Value, u.pluggedIn)
		case "source":
			u.source = kv.Value
		default:
			continue
		}
		changed = append(changed, kv.Key)
	}
	u.mu.Unlock()

	for _, key := range changed {
		u.Updated.emit(key)
	}
}

// Type returns the cable type (e.g. "cat", "bit").
func (u *USBCable) Type() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.cableType
}

// Name returns the cable's configured name.
func (u *USBCable) Name() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.name
}

// Enabled indicates if the cable is enabled.
func (u *USBCable) Enabled() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.enabled
}
