package client

import (
	"log"
	"strconv"
	"strings"
)

// KV is one key=value token from a status line. A token without '=' is
// represented with an empty Value (a bare flag like "removed").
type KV struct {
	Key   string
	Value string
}

// parseKeyValues splits status text into whitespace-delimited key=value
// tokens. Values may contain '=' themselves, so each token is split on
// the first '=' only.
func parseKeyValues(text string) []KV {
	fields := strings.Fields(text)
	result := make([]KV, 0, len(fields))
	for _, field := range fields {
		key, value, _ := strings.Cut(field, "=")
		result = append(result, KV{Key: key, Value: value})
	}
	return result
}

func hasFlag(kvs []KV, flag string) bool {
	for _, kv := range kvs {
		if kv.Key == flag && kv.Value == "" {
			return true
		}
	}
	return false
}

func findValue(kvs []KV, key string) (string, bool) {
	for _, kv := range kvs {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// normalizeStreamID brings a stream identifier into its canonical
// lowercase 0x-prefixed form, so that identifiers from status text and
// from binary frames compare equal.
func normalizeStreamID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return id
	}
	if !strings.HasPrefix(id, "0x") {
		id = "0x" + id
	}
	if value, err := strconv.ParseUint(id[2:], 16, 32); err == nil {
		return formatStreamID(uint32(value))
	}
	return id
}

// formatStreamID renders a binary stream identifier in the canonical
// form used as entity identifier.
func formatStreamID(id uint32) string {
	return "0x" + strconv.FormatUint(uint64(id), 16)
}

// cutIdentifier takes the leading whitespace-delimited token of the
// given text as the entity identifier and returns it with the remainder.
func cutIdentifier(text string) (string, string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", "", false
	}
	id, rest, _ := strings.Cut(text, " ")
	return strings.ToLower(id), rest, true
}

// Attribute value helpers, shared by all entity kinds. The status grammar
// is forgiving: out-of-range numbers are clamped, booleans are the
// literal bytes "0"/"1" (with "true"/"false" tolerated), and parse
// failures leave the previous value untouched.

func parseBoolValue(value string, previous bool) bool {
	switch strings.ToLower(value) {
	case "1", "true", "t":
		return true
	case "0", "false", "f":
		return false
	default:
		return previous
	}
}

func parseIntValue(value string, previous int) int {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return previous
	}
	return parsed
}

func parseIntClamped(value string, min, max, previous int) int {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return previous
	}
	if parsed < min {
		return min
	}
	if parsed > max {
		return max
	}
	return parsed
}

func parseFloatValue(value string, previous float64) float64 {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return previous
	}
	return parsed
}

// StatusEntity is the contract the status router uses to feed raw
// key/value status text to an entity kind. Domain logic beyond attribute
// storage lives in the entity implementations, outside the router.
type StatusEntity interface {
	Entity
	ApplyStatus(kvs []KV)
}

// routeEntityStatus applies the uniform micro-protocol for dynamically
// lived entities: a removal for an unknown identifier is a silent no-op,
// a new identifier gets its attributes applied before it is added, so no
// observer ever sees a partially populated new entity.
func routeEntityStatus[E StatusEntity](collection *Collection[E], id string, kvs []KV, removed bool, construct func(string) E) {
	if removed {
		collection.Remove(id)
		return
	}
	entity, ok := collection.FindByID(id)
	if !ok {
		entity = construct(id)
		entity.ApplyStatus(kvs)
		collection.Add(entity)
		return
	}
	entity.ApplyStatus(kvs)
}

// handleStatus routes one status line (without the S<handle>| prefix) to
// the sub-parser for its subsystem. Unknown keywords are logged and
// dropped; a malformed or future-unknown line never interrupts the
// processing of subsequent lines.
func (c *Client) handleStatus(text string) {
	keyword, rest, found := strings.Cut(strings.TrimSpace(text), " ")
	if !found {
		rest = ""
	}

	switch strings.ToLower(keyword) {
	case "slice":
		c.statusSlice(rest)
	case "display":
		c.statusDisplay(rest)
	case "meter":
		c.statusMeter(rest)
	case "audio_stream", "dax":
		c.statusAudioStream(rest)
	case "dax_iq", "daxiq":
		c.statusIQStream(rest)
	case "spot":
		c.statusSpot(rest)
	case "client":
		c.statusGUIClient(rest)
	case "memory":
		c.statusMemory(rest)
	case "usb_cable":
		c.statusUSBCable(rest)
	case "eq":
		c.statusEqualizer(rest)
	case "radio":
		c.Radio.ApplyStatus(parseKeyValues(rest))
	case "transmit":
		c.Transmit.ApplyStatus(parseKeyValues(rest))
	case "interlock":
		c.Interlock.ApplyStatus(parseKeyValues(rest))
	case "atu":
		c.ATU.ApplyStatus(parseKeyValues(rest))
	case "gps":
		c.GPS.ApplyStatus(parseKeyValues(rest))
	case "profile":
		c.Profiles.applyStatus(rest)
	default:
		log.Printf("ignoring status with unknown keyword %q", keyword)
	}
}

func (c *Client) statusSlice(rest string) {
	id, body, ok := cutIdentifier(rest)
	if !ok {
		log.Printf("dropping slice status without identifier")
		return
	}
	kvs := parseKeyValues(body)
	// A slice that goes out of use disappears.
	removed := hasFlag(kvs, "removed")
	if inUse, ok := findValue(kvs, "in_use"); ok && !parseBoolValue(inUse, true) {
		removed = true
	}
	routeEntityStatus(c.Slices, id, kvs, removed, newSlice)
}

func (c *Client) statusDisplay(rest string) {
	kind, rest, found := strings.Cut(strings.TrimSpace(rest), " ")
	if !found {
		log.Printf("dropping display status without kind")
		return
	}
	id, body, ok := cutIdentifier(rest)
	if !ok {
		log.Printf("dropping display status without identifier")
		return
	}
	id = normalizeStreamID(id)
	kvs := parseKeyValues(body)
	removed := hasFlag(kvs, "removed")

	switch strings.ToLower(kind) {
	case "pan", "panadapter":
		routeEntityStatus(c.Panadapters, id, kvs, removed, newPanadapter)
	case "waterfall":
		routeEntityStatus(c.Waterfalls, id, kvs, removed, newWaterfall)
	default:
		log.Printf("ignoring display status with unknown kind %q", kind)
	}
}

func (c *Client) statusMeter(rest string) {
	id, body, ok := cutIdentifier(rest)
	if !ok {
		log.Printf("dropping meter status without identifier")
		return
	}
	kvs := parseKeyValues(body)
	routeEntityStatus(c.Meters, id, kvs, hasFlag(kvs, "removed"), newMeter)
}

func (c *Client) statusAudioStream(rest string) {
	id, body, ok := cutIdentifier(rest)
	if !ok {
		log.Printf("dropping audio stream status without identifier")
		return
	}
	kvs := parseKeyValues(body)
	removed := hasFlag(kvs, "removed")
	if inUse, ok := findValue(kvs, "in_use"); ok && !parseBoolValue(inUse, true) {
		removed = true
	}
	routeEntityStatus(c.AudioStreams, normalizeStreamID(id), kvs, removed, newAudioStream)
}

func (c *Client) statusIQStream(rest string) {
	id, body, ok := cutIdentifier(rest)
	if !ok {
		log.Printf("dropping IQ stream status without identifier")
		return
	}
	kvs := parseKeyValues(body)
	removed := hasFlag(kvs, "removed")
	if inUse, ok := findValue(kvs, "in_use"); ok && !parseBoolValue(inUse, true) {
		removed = true
	}
	routeEntityStatus(c.IQStreams, normalizeStreamID(id), kvs, removed, newIQStream)
}

func (c *Client) statusSpot(rest string) {
	id, body, ok := cutIdentifier(rest)
	if !ok {
		log.Printf("dropping spot status without identifier")
		return
	}
	kvs := parseKeyValues(body)
	routeEntityStatus(c.Spots, id, kvs, hasFlag(kvs, "removed"), newSpot)
}

func (c *Client) statusGUIClient(rest string) {
	id, body, ok := cutIdentifier(rest)
	if !ok {
		log.Printf("dropping client status without identifier")
		return
	}
	kvs := parseKeyValues(body)
	removed := hasFlag(kvs, "disconnected") || hasFlag(kvs, "removed")
	routeEntityStatus(c.GUIClients, normalizeStreamID(id), kvs, removed, newGUIClient)
}

func (c *Client) statusMemory(rest string) {
	id, body, ok := cutIdentifier(rest)
	if !ok {
		log.Printf("dropping memory status without identifier")
		return
	}
	kvs := parseKeyValues(body)
	routeEntityStatus(c.Memories, id, kvs, hasFlag(kvs, "removed"), newMemory)
}

func (c *Client) statusUSBCable(rest string) {
	id, body, ok := cutIdentifier(rest)
	if !ok {
		log.Printf("dropping usb_cable status without identifier")
		return
	}
	kvs := parseKeyValues(body)
	routeEntityStatus(c.USBCables, id, kvs, hasFlag(kvs, "removed"), newUSBCable)
}

func (c *Client) statusEqualizer(rest string) {
	id, body, ok := cutIdentifier(rest)
	if !ok {
		log.Printf("dropping eq status without identifier")
		return
	}
	kvs := parseKeyValues(body)
	routeEntityStatus(c.Equalizers, id, kvs, false, newEqualizer)
}
