package vita

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrameRoundtrip(t *testing.T) {
	payload := EncodeMeterPayload([]MeterSample{{ID: 1, Value: -1280}, {ID: 7, Value: 640}})
	frame := EncodeFrame(Header{
		Type:        ExtDataWithStream,
		Count:       5,
		StreamID:    0x40000001,
		OUI:         FlexOUI,
		PacketClass: ClassMeter,
	}, payload)

	header, parsedPayload, err := ParseFrame(frame)
	require.NoError(t, err)
	assert.Equal(t, ExtDataWithStream, header.Type)
	assert.Equal(t, byte(5), header.Count)
	assert.Equal(t, uint32(0x40000001), header.StreamID)
	assert.Equal(t, FlexOUI, header.OUI)
	assert.Equal(t, ClassMeter, header.PacketClass)
	assert.Equal(t, payload, parsedPayload)
}

func TestParseFrameInvalid(t *testing.T) {
	tt := []struct {
		desc  string
		frame []byte
	}{
		{"empty", nil},
		{"truncated", make([]byte, HeaderBytes-1)},
		{"no stream id", EncodeFrame(Header{Type: ExtData, OUI: FlexOUI, PacketClass: ClassMeter}, nil)},
		{"size exceeds datagram", func() []byte {
			frame := EncodeFrame(Header{Type: ExtDataWithStream, OUI: FlexOUI, PacketClass: ClassMeter}, make([]byte, 8))
			return frame[:len(frame)-4]
		}()},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			_, _, err := ParseFrame(tc.frame)
			assert.Error(t, err)
		})
	}
}

func TestParseFrameWithoutClassID(t *testing.T) {
	frame := EncodeFrame(Header{Type: ExtDataWithStream, OUI: FlexOUI, PacketClass: ClassMeter}, nil)
	frame[0] &^= 0x08 // clear the class-present bit

	_, _, err := ParseFrame(frame)
	assert.Error(t, err)
}

func TestMeterPayloadRoundtrip(t *testing.T) {
	samples := []MeterSample{
		{ID: 0, Value: 0},
		{ID: 12, Value: -32768},
		{ID: 4095, Value: 32767},
	}
	assert.Equal(t, samples, ParseMeterPayload(EncodeMeterPayload(samples)))
}

func TestMeterPayloadIgnoresTrailingHalfPair(t *testing.T) {
	payload := append(EncodeMeterPayload([]MeterSample{{ID: 3, Value: 100}}), 0x00, 0x01)
	samples := ParseMeterPayload(payload)
	require.Len(t, samples, 1)
	assert.Equal(t, MeterSample{ID: 3, Value: 100}, samples[0])
}

func TestParseFFTPayload(t *testing.T) {
	payload := []byte{
		0x00, 0x10, // start bin 16
		0x00, 0x03, // 3 bins in this packet
		0x00, 0x02, // bin size
		0x02, 0x00, // 512 bins total
		0x00, 0x00, 0x00, 0x2A, // frame index 42
		0x00, 0x64, 0x00, 0x65, 0x00, 0x66, // bins 100, 101, 102
	}

	packet, err := ParseFFTPayload(payload)
	require.NoError(t, err)
	assert.Equal(t, uint16(16), packet.StartBin)
	assert.Equal(t, uint16(3), packet.BinsInThis)
	assert.Equal(t, uint16(512), packet.TotalBins)
	assert.Equal(t, uint32(42), packet.FrameIndex)
	assert.Equal(t, []uint16{100, 101, 102}, packet.Bins)
}

func TestParseFFTPayloadTooShort(t *testing.T) {
	_, err := ParseFFTPayload(make([]byte, 11))
	assert.Error(t, err)
}

func TestParseFFTPayloadClampsBinCount(t *testing.T) {
	payload := make([]byte, 12+4)
	payload[3] = 10 // claims 10 bins, only 2 present

	packet, err := ParseFFTPayload(payload)
	require.NoError(t, err)
	assert.Len(t, packet.Bins, 2)
}

func TestParseWaterfallPayload(t *testing.T) {
	payload := make([]byte, 32+8)
	payload[19] = 100 // line duration
	payload[21] = 4   // width
	payload[23] = 1   // height
	payload[33] = 7   // first data value

	tile, err := ParseWaterfallPayload(payload)
	require.NoError(t, err)
	assert.Equal(t, uint32(100), tile.LineDuration)
	assert.Equal(t, uint16(4), tile.Width)
	assert.Equal(t, uint16(1), tile.Height)
	require.Len(t, tile.Data, 4)
	assert.Equal(t, uint16(7), tile.Data[0])
}

func TestParseWaterfallPayloadTooShort(t *testing.T) {
	_, err := ParseWaterfallPayload(make([]byte, 31))
	assert.Error(t, err)
}

func TestFloatSamplesRoundtrip(t *testing.T) {
	samples := []float32{0, 1, -1, 0.5, -0.25}
	assert.Equal(t, samples, ParseFloatSamples(EncodeFloatSamples(samples)))
}

func TestParseInt16Samples(t *testing.T) {
	payload := []byte{0x7F, 0xFF, 0x00, 0x00, 0x80, 0x01}
	samples := ParseInt16Samples(payload)
	require.Len(t, samples, 3)
	assert.InDelta(t, 1.0, samples[0], 0.001)
	assert.Equal(t, float32(0), samples[1])
	assert.InDelta(t, -1.0, samples[2], 0.001)
}

func TestPacketClassIsIQ(t *testing.T) {
	assert.True(t, ClassDAXIQ24.IsIQ())
	assert.True(t, ClassDAXIQ192.IsIQ())
	assert.False(t, ClassDAXAudio.IsIQ())
	assert.False(t, ClassMeter.IsIQ())
}
