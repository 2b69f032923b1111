package client

import "sync"

// Transmit is the singleton record of the radio's transmitter settings.
type Transmit struct {
	mu         sync.RWMutex
	frequency  float64 // MHz
	power      int     // 0..100
	tunePower  int     // 0..100
	transmit   bool
	tune       bool
	voxEnabled bool
	voxLevel   int // 0..100
	micLevel   int // 0..100
	micBoost   bool
	companding bool
	monitor    bool

	Updated Event[string]
}

func newTransmit() *Transmit {
	return &Transmit{}
}

// ApplyStatus applies the given key/value pairs as attribute mutations.
// Unrecognized keys are ignored without error.
func (t *Transmit) ApplyStatus(kvs []KV) {
	var changed []string

	t.mu.Lock()
	for _, kv := range kvs {
		switch kv.Key {
		case "freq":
			t.frequency = parseFloatValue(kv.Value, t.frequency)
		case "rfpower":
			t.power = parseIntClamped(kv.Value, 0, 100, t.power)
		case "tunepower":
			t.tunePower = parseIntClamped(kv.Value, 0, 100, t.tunePower)
		case "tx":
			t.transmit = parseBoolValue(kv.Value, t.transmit)
		case "tune":
			t.tune = parseBoolValue(kv.Value, t.tune)
		case "vox_enable":
			t.voxEnabled = parseBoolValue(kv.Value, t.voxEnabled)
		case "vox_level":
			t.voxLevel = parseIntClamped(kv.Value, 0, 100, t.voxLevel)
		case "mic_level":
			t.micLevel = parseIntClamped(kv.Value, 0, 100, t.micLevel)
		case "mic_boost":
			t.micBoost = parseBoolValue(kv.Value, t.micBoost)
		case "compander":
			t.companding = parseBoolValue(kv.Value, t.companding)
		case "mon":
			t.monitor = parseBoolValue(kv.Value, t.monitor)
		default:
			continue
		}
		changed = append(changed, kv.Key)
	}
	t.mu.Unlock()

	for _, key := range changed {
		t.Updated.emit(key)
	}
}

// Frequency returns the transmit frequency in MHz.
func (t *Transmit) Frequency() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.frequency
}

// Power returns the RF power in percent.
func (t *Transmit) Power() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.power
}

// Transmitting indicates if the transmitter is keyed.
func (t *Transmit) Transmitting() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.transmit
}

// Tuning indicates if the transmitter is keyed for tuning.
func (t *Transmit) Tuning() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tune
}

// Interlock is the singleton record of the transmit interlock state.
type Interlock struct {
	mu        sync.RWMutex
	state     string
	reason    string
	source    string
	timeout   int // ms
	txAllowed bool

	Updated Event[string]
}

func newInterlock() *Interlock {
	return &Interlock{}
}

// ApplyStatus applies the given key/value pairs as attribute mutations.
// Unrecognized keys are ignored without error.
func (i *Interlock) ApplyStatus(kvs []KV) {
	var changed []string

	i.mu.Lock()
	for _, kv := range kvs {
		switch kv.Key {
		case "state":
			i.state = kv.Value
		case "reason":
			i.reason = kv.Value
		case "source":
			i.source = kv.Value
		case "timeout":
			i.timeout = parseIntValue(kv.Value, i.timeout)
		case "tx_allowed":
			i.txAllowed = parseBoolValue(kv.Value, i.txAllowed)
		default:
			continue
		}
		changed = append(changed, kv.Key)
	}
	i.mu.Unlock()

	for _, key := range changed {
		i.Updated.emit(key)
	}
}

// State returns the interlock state machine's current state.
func (i *Interlock) State() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.state
}

// Reason returns why the interlock is in its current state.
func (i *Interlock) Reason() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.reason
}

// TXAllowed indicates if transmitting is currently permitted.
func (i *Interlock) TXAllowed() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.txAllowed
}

// ATU is the singleton record of the antenna tuner state.
type ATU struct {
	mu              sync.RWMutex
	status          string
	enabled         bool
	memoriesEnabled bool
	usingMemory     bool

	Updated Event[string]
}

func newATU() *ATU {
	return &ATU{}
}

// ApplyStatus applies the given key/value pairs as attribute mutations.
// Unrecognized keys are ignored without error.
func (a *ATU) ApplyStatus(kvs []KV) {
	var changed []string

	a.mu.Lock()
	for _, kv := range kvs {
		switch kv.Key {
		case "status":
			a.status = kv.Value
		case "atu_enabled":
			a.enabled = parseBoolValue(kv.Value, a.enabled)
		case "memories_enabled":
			a.memoriesEnabled = parseBoolValue(kv.Value, a.memoriesEnabled)
		case "using_mem":
			a.usingMemory = parseBoolValue(kv.Value, a.usingMemory)
		default:
			continue
		}
		changed = append(changed, kv.Key)
	}
	a.mu.Unlock()

	for _, key := range changed {
		a.Updated.emit(key)
	}
}

// Status returns the tuner status.
func (a *ATU) Status() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// Enabled indicates if the tuner is enabled.
func (a *ATU) Enabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}
