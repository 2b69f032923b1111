package client

import "sync"

// GUIClient is another client connected to the same radio. Tracking them
// lets a consumer tell its own streams apart from streams addressed to
// other clients sharing the hardware.
type GUIClient struct {
	id string

	mu       sync.RWMutex
	program  string
	station  string
	host     string
	ip       string
	localPTT bool

	Updated Event[string]
}

func newGUIClient(id string) *GUIClient {
	return &GUIClient{id: id}
}

// EntityID returns the client handle as reported by the radio.
func (g *GUIClient) EntityID() string { return g.id }

// ApplyStatus applies the given key/value pairs as attribute mutations.
// Unrecognized keys are ignored without error.
func (g *GUIClient) ApplyStatus(kvs []KV) {
	var changed []string

	g.mu.Lock()
	for _, kv := range kvs {
		switch kv.Key {
		case "program":
			g.program = kv.Value
		case "station":
			g.station = kv.Value
		case "host":
			g.host = kv.Value
		case "ip":
			g.ip = kv.Value
		case "local_ptt":
			g.localPTT = parseBoolValue(kv.Value, g.localPTT)
		case "connected":
			continue
		default:
			continue
		}
		changed = append(changed, kv.Key)
	}
	g.mu.Unlock()

	for _, key := range changed {
		g.Updated.emit(key)
	}
}

// Program returns the client program's name.
func (g *GUIClient) Program() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.program
}

// Station returns the client's station name.
func (g *GUIClient) Station() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.station
}

// IP returns the client's address as seen by the radio.
func (g *GUIClient) IP() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.ip
}
