package client

import (
	"strings"
	"sync"
)

// Profiles is the singleton record of the radio's settings profiles.
// Profile lists arrive as a single value with '^'-separated entries.
type Profiles struct {
	mu      sync.RWMutex
	global  []string
	tx      []string
	mic     []string
	current map[string]string // scope -> selected profile

	Updated Event[string]
}

func newProfiles() *Profiles {
	return &Profiles{current: make(map[string]string)}
}

// applyStatus parses a profile status line: the scope keyword ("global",
// "tx", "mic") followed by either "list=a^b^c" or "current=name".
func (p *Profiles) applyStatus(text string) {
	scope, rest, ok := cutIdentifier(text)
	if !ok {
		return
	}

	var changed []string
	p.mu.Lock()
	for _, kv := range parseKeyValues(rest) {
		switch kv.Key {
		case "list":
			list := splitProfileList(kv.Value)
			switch scope {
			case "global":
				p.global = list
			case "tx":
				p.tx = list
			case "mic":
				p.mic = list
			default:
				continue
			}
		case "current":
			p.current[scope] = kv.Value
		default:
			continue
		}
		changed = append(changed, scope+" "+kv.Key)
	}
	p.mu.Unlock()

	for _, key := range changed {
		p.Updated.emit(key)
	}
}

func splitProfileList(value string) []string {
	parts := strings.Split(value, "^")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		result = append(result, part)
	}
	return result
}

// Global returns the list of global profiles.
func (p *Profiles) Global() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.global...)
}

// TX returns the list of transmit profiles.
func (p *Profiles) TX() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.tx...)
}

// Mic returns the list of microphone profiles.
func (p *Profiles) Mic() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.mic...)
}

// Current returns the selected profile for the given scope.
func (p *Profiles) Current(scope string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current[scope]
}
