package client

import (
	"fmt"
	"log"
	"sync"
)

const (
	audioBufferSize = 2 * 8192
	iqBufferSize    = 2 * 4096
)

// AudioStream is one DAX audio stream. Incoming sample frames are
// dispatched to it synchronously by the stream demultiplexer; the stream
// buffers them internally so that a consumer can read at its own pace.
type AudioStream struct {
	id string

	mu         sync.RWMutex
	daxChannel int
	slice      string
	gain       int // 0..100
	buffer     *sampleBuffer
	wait       chan bool
	closed     chan struct{}

	Updated Event[string]
}

func newAudioStream(id string) *AudioStream {
	return &AudioStream{
		id:     id,
		buffer: newSampleBuffer(audioBufferSize),
		wait:   make(chan bool, 1),
		closed: make(chan struct{}),
	}
}

// EntityID returns the stream identifier.
func (s *AudioStream) EntityID() string { return s.id }

// ApplyStatus applies the given key/value pairs as attribute mutations.
// Unrecognized keys are ignored without error.
func (s *AudioStream) ApplyStatus(kvs []KV) {
	var changed []string

	s.mu.Lock()
	for _, kv := range kvs {
		switch kv.Key {
		case "dax":
			s.daxChannel = parseIntValue(kv.Value, s.daxChannel)
		case "slice":
			s.slice = kv.Value
		case "dax_clients":
			// visible in the grammar, not tracked
			continue
		case "gain":
			s.gain = parseIntClamped(kv.Value, 0, 100, s.gain)
		case "in_use":
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

// Ingest appends the given samples to the stream's buffer and wakes a
// pending reader. It never blocks; on overflow the oldest samples are
// dropped.
func (s *AudioStream) Ingest(samples []float32) {
	select {
	case <-s.closed:
		return
	default:
	}

	s.mu.Lock()
	s.buffer.Write(samples)
	s.mu.Unlock()

	select {
	case s.wait <- true:
	default:
	}
}

// Read fills the given buffer with buffered samples, blocking until at
// least one sample is available or the stream is closed.
func (s *AudioStream) Read(to []float32) (int, error) {
	for {
		s.mu.Lock()
		if s.buffer.HasNext() {
			n, err := s.buffer.Read(to)
			s.mu.Unlock()
			return n, err
		}
		s.mu.Unlock()

		select {
		case <-s.wait:
		case <-s.closed:
			return 0, fmt.Errorf("audio stream %s closed", s.id)
		}
	}
}

// DAXChannel returns the DAX channel number of this stream.
func (s *AudioStream) DAXChannel() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.daxChannel
}

// Slice returns the index of the slice feeding this stream.
func (s *AudioStream) Slice() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slice
}

// Gain returns the stream gain in percent.
func (s *AudioStream) Gain() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gain
}

func (s *AudioStream) close() {
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
}

// IQStream is one DAX IQ stream. It buffers interleaved I/Q sample pairs
// the same way an AudioStream buffers audio samples.
type IQStream struct {
	id string

	mu         sync.RWMutex
	daxIQRate  int
	pan        string // stream id of the associated panadapter
	daxChannel int
	buffer     *sampleBuffer
	wait       chan bool
	closed     chan struct{}

	Updated Event[string]
}

func newIQStream(id string) *IQStream {
	return &IQStream{
		id:     id,
		buffer: newSampleBuffer(iqBufferSize),
		wait:   make(chan bool, 1),
		closed: make(chan struct{}),
	}
}

// EntityID returns the stream identifier.
func (s *IQStream) EntityID() string { return s.id }

// ApplyStatus applies the given key/value pairs as attribute mutations.
// Unrecognized keys are ignored without error.
func (s *IQStream) ApplyStatus(kvs []KV) {
	var changed []string

	s.mu.Lock()
	for _, kv := range kvs {
		switch kv.Key {
		case "rate":
			s.daxIQRate = parseIntValue(kv.Value, s.daxIQRate)
		case "pan":
			s.pan = normalizeStreamID(kv.Value)
		case "daxiq_channel", "channel":
			s.daxChannel = parseIntValue(kv.Value, s.daxChannel)
		case "in_use":
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

// Ingest appends the given interleaved I/Q samples to the stream's
// buffer and wakes a pending reader. It never blocks.
func (s *IQStream) Ingest(samples []float32) {
	select {
	case <-s.closed:
		return
	default:
	}

	s.mu.Lock()
	s.buffer.Write(samples)
	s.mu.Unlock()

	select {
	case s.wait <- true:
	default:
	}
}

// Read fills the given buffer with buffered samples, blocking until at
// least one sample is available or the stream is closed.
func (s *IQStream) Read(to []float32) (int, error) {
	for {
		s.mu.Lock()
		if s.buffer.HasNext() {
			n, err := s.buffer.Read(to)
			s.mu.Unlock()
			return n, err
		}
		s.mu.Unlock()

		select {
		case <-s.wait:
		case <-s.closed:
			return 0, fmt.Errorf("IQ stream %s closed", s.id)
		}
	}
}

// Rate returns the IQ sample rate in samples per second.
func (s *IQStream) Rate() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.daxIQRate
}

// Panadapter returns the stream id of the associated panadapter.
func (s *IQStream) Panadapter() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pan
}

func (s *IQStream) close() {
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
}

/*
	sampleBuffer
*/

func newSampleBuffer(capacity int) *sampleBuffer {
	if capacity < 1 {
		panic("sampleBuffer must have a capacity > 0")
	}
	return &sampleBuffer{samples: make([]float32, capacity+1)}
}

// sampleBuffer is a ring buffer for float32 samples. On overflow it
// drops the oldest samples, so a slow consumer falls behind instead of
// stalling the ingestion path.
type sampleBuffer struct {
	read    int
	write   int
	samples []float32
}

func (b sampleBuffer) String() string {
	return fmt.Sprintf("buffer: read %04d write %04d", b.read, b.write)
}

func (b *sampleBuffer) Length() int {
	switch {
	case b.write == b.read:
		return 0
	case b.write < b.read:
		return len(b.samples) - (b.read - b.write)
	default:
		return b.write - b.read
	}
}

func (b *sampleBuffer) HasNext() bool {
	return b.read != b.write
}

func (b *sampleBuffer) Read(to []float32) (int, error) {
	capacity := len(b.samples)
	count := len(to)
	if count > b.Length() {
		count = b.Length()
	}

	if b.read+count < capacity {
		copy(to, b.samples[b.read:b.read+count])
		b.read += count
		return count, nil
	}

	pivot := capacity - b.read
	remainder := count - pivot
	copy(to, b.samples[b.read:capacity])
	copy(to[pivot:], b.samples[0:remainder])
	b.read = remainder

	return count, nil
}

func (b *sampleBuffer) Write(from []float32) (int, error) {
	capacity := len(b.samples)
	count := len(from)
	newWrite := (b.write + count) % capacity

	if count > capacity {
		pivot := count - newWrite
		copy(b.samples[0:newWrite], from[pivot:count])
		copy(b.samples[newWrite:], from[pivot-(capacity-newWrite):pivot])

		log.Printf("buffer overflow, dropping %d samples (0)", newWrite-b.read)
		b.read = (newWrite + 1) % capacity
		b.write = newWrite
		return count, nil
	}

	if b.write+count >= capacity {
		pivot := capacity - b.write
		copy(b.samples[b.write:], from[0:pivot])
		copy(b.samples, from[pivot:])

		if newWrite >= b.read {
			log.Printf("buffer overflow, dropping %d samples (1)", newWrite-b.read)
			b.read = (newWrite + 1) % capacity
		}
		b.write = newWrite
		return count, nil
	}

	copy(b.samples[b.write:], from)

	if b.write < b.read && newWrite >= b.read {
		log.Printf("buffer overflow, dropping %d samples (2)", newWrite-b.read)
		b.read = (newWrite + 1) % capacity
	}
	b.write = newWrite
	return count, nil
}
