package vita

import (
	"encoding/binary"
	"fmt"
	"math"
)

// MeterSample is one raw meter reading from a meter-class frame.
type MeterSample struct {
	ID    uint16
	Value int16
}

// ParseMeterPayload decodes a meter-class payload into its raw samples.
// The payload is a sequence of big-endian id/value pairs; a trailing odd
// half-pair is ignored.
func ParseMeterPayload(payload []byte) []MeterSample {
	count := len(payload) / 4
	samples := make([]MeterSample, count)
	for i := 0; i < count; i++ {
		samples[i] = MeterSample{
			ID:    binary.BigEndian.Uint16(payload[i*4 : i*4+2]),
			Value: int16(binary.BigEndian.Uint16(payload[i*4+2 : i*4+4])),
		}
	}
	return samples
}

// EncodeMeterPayload is the inverse of ParseMeterPayload.
func EncodeMeterPayload(samples []MeterSample) []byte {
	buf := make([]byte, len(samples)*4)
	for i, sample := range samples {
		binary.BigEndian.PutUint16(buf[i*4:i*4+2], sample.ID)
		binary.BigEndian.PutUint16(buf[i*4+2:i*4+4], uint16(sample.Value))
	}
	return buf
}

// FFTPacket is one tile of spectral bins for a panadapter.
type FFTPacket struct {
	StartBin   uint16
	BinsInThis uint16
	BinSize    uint16
	TotalBins  uint16
	FrameIndex uint32
	Bins       []uint16
}

// ParseFFTPayload decodes an FFT-class payload.
func ParseFFTPayload(payload []byte) (FFTPacket, error) {
	if len(payload) < 12 {
		return FFTPacket{}, fmt.Errorf("fft payload too short: %d bytes", len(payload))
	}
	packet := FFTPacket{
		StartBin:   binary.BigEndian.Uint16(payload[0:2]),
		BinsInThis: binary.BigEndian.Uint16(payload[2:4]),
		BinSize:    binary.BigEndian.Uint16(payload[4:6]),
		TotalBins:  binary.BigEndian.Uint16(payload[6:8]),
		FrameIndex: binary.BigEndian.Uint32(payload[8:12]),
	}
	available := (len(payload) - 12) / 2
	count := int(packet.BinsInThis)
	if count > available {
		count = available
	}
	packet.Bins = make([]uint16, count)
	for i := 0; i < count; i++ {
		packet.Bins[i] = binary.BigEndian.Uint16(payload[12+i*2 : 14+i*2])
	}
	return packet, nil
}

// WaterfallTile is one row block of waterfall data.
type WaterfallTile struct {
	FirstBinFreq   uint64 // 64-bit fixed point, 20-bit fraction
	BinBandwidth   uint64 // same encoding
	LineDuration   uint32 // ms
	Width          uint16
	Height         uint16
	Timecode       uint32
	AutoBlackLevel uint32
	Data           []uint16
}

// ParseWaterfallPayload decodes a waterfall-class payload.
func ParseWaterfallPayload(payload []byte) (WaterfallTile, error) {
	if len(payload) < 32 {
		return WaterfallTile{}, fmt.Errorf("waterfall payload too short: %d bytes", len(payload))
	}
	tile := WaterfallTile{
		FirstBinFreq:   binary.BigEndian.Uint64(payload[0:8]),
		BinBandwidth:   binary.BigEndian.Uint64(payload[8:16]),
		LineDuration:   binary.BigEndian.Uint32(payload[16:20]),
		Width:          binary.BigEndian.Uint16(payload[20:22]),
		Height:         binary.BigEndian.Uint16(payload[22:24]),
		Timecode:       binary.BigEndian.Uint32(payload[24:28]),
		AutoBlackLevel: binary.BigEndian.Uint32(payload[28:32]),
	}
	available := (len(payload) - 32) / 2
	count := int(tile.Width) * int(tile.Height)
	if count > available {
		count = available
	}
	tile.Data = make([]uint16, count)
	for i := 0; i < count; i++ {
		tile.Data[i] = binary.BigEndian.Uint16(payload[32+i*2 : 34+i*2])
	}
	return tile, nil
}

// ParseFloatSamples decodes a payload of big-endian float32 samples,
// as carried by DAX audio and DAX IQ frames.
func ParseFloatSamples(payload []byte) []float32 {
	count := len(payload) / 4
	samples := make([]float32, count)
	for i := 0; i < count; i++ {
		samples[i] = math.Float32frombits(binary.BigEndian.Uint32(payload[i*4 : i*4+4]))
	}
	return samples
}

// EncodeFloatSamples is the inverse of ParseFloatSamples.
func EncodeFloatSamples(samples []float32) []byte {
	buf := make([]byte, len(samples)*4)
	for i, sample := range samples {
		binary.BigEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(sample))
	}
	return buf
}

// ParseInt16Samples decodes a payload of big-endian signed 16-bit
// samples, as carried by reduced-bandwidth DAX audio frames.
func ParseInt16Samples(payload []byte) []float32 {
	count := len(payload) / 2
	samples := make([]float32, count)
	for i := 0; i < count; i++ {
		raw := int16(binary.BigEndian.Uint16(payload[i*2 : i*2+2]))
		samples[i] = float32(raw) / float32(math.MaxInt16)
	}
	return samples
}
