package client

import "sync"

// GPS is the singleton record of the radio's GPS receiver state.
type GPS struct {
	mu        sync.RWMutex
	latitude  string
	longitude string
	grid      string
	altitude  string
	speed     string
	time      string
	track     float64
	visible   bool
	status    string

	Updated Event[string]
}

func newGPS() *GPS {
	return &GPS{}
}

// ApplyStatus applies the given key/value pairs as attribute mutations.
// Unrecognized keys are ignored without error.
func (g *GPS) ApplyStatus(kvs []KV) {
	var changed []string

	g.mu.Lock()
	for _, kv := range kvs {
		switch kv.Key {
		case "lat":
			g.latitude = kv.Value
		case "lon":
			g.longitude = kv.Value
		case "grid":
			g.grid = kv.Value
		case "altitude":
			g.altitude = kv.Value
		case "speed":
			g.speed = kv.Value
		case "time":
			g.time = kv.Value
		case "track":
			g.track = parseFloatValue(kv.Value, g.track)
		case "visible":
			g.visible = parseBoolValue(kv.Value, g.visible)
		case "status":
			g.status = kv.Value
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

// Position returns latitude, longitude, and the Maidenhead grid square
// as reported by the radio.
func (g *GPS) Position() (lat, lon, grid string) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.latitude, g.longitude, g.grid
}

// Visible indicates if the GPS has satellite visibility.
func (g *GPS) Visible() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.visible
}

// Status returns the GPS status text.
func (g *GPS) Status() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.status
}
