// Package vita implements the VITA-49 framing used on the radio's UDP
// streaming channel. It only covers the subset of the standard that the
// radio actually emits: extension data packets with a class identifier,
// a stream identifier, and a modulo-16 packet counter.
package vita

import (
	"encoding/binary"
	"fmt"
)

// FlexOUI is the vendor organizational identifier carried in the class
// identifier word of every frame originating from the radio.
const FlexOUI uint32 = 0x00001C2D

// PacketType is the 4-bit packet type from the first header word.
type PacketType byte

// All packet types the radio uses.
const (
	IFData PacketType = iota
	IFDataWithStream
	ExtData
	ExtDataWithStream
	Context
	ExtContext
)

// PacketClass identifies the payload semantics of a frame.
type PacketClass uint16

// All packet classes the radio emits.
const (
	ClassMeter        = PacketClass(0x8002)
	ClassFFT          = PacketClass(0x8003)
	ClassWaterfall    = PacketClass(0x8004)
	ClassOpus         = PacketClass(0x8005)
	ClassDAXReducedBW = PacketClass(0x0123)
	ClassDAXIQ24      = PacketClass(0x02E3)
	ClassDAXIQ48      = PacketClass(0x02E4)
	ClassDAXIQ96      = PacketClass(0x02E5)
	ClassDAXIQ192     = PacketClass(0x02E6)
	ClassDAXAudio     = PacketClass(0x03E3)
	ClassDiscovery    = PacketClass(0xFFFF)
)

func (c PacketClass) String() string {
	switch c {
	case ClassMeter:
		return "meter"
	case ClassFFT:
		return "fft"
	case ClassWaterfall:
		return "waterfall"
	case ClassOpus:
		return "opus"
	case ClassDAXReducedBW:
		return "dax_reduced"
	case ClassDAXIQ24, ClassDAXIQ48, ClassDAXIQ96, ClassDAXIQ192:
		return "dax_iq"
	case ClassDAXAudio:
		return "dax_audio"
	case ClassDiscovery:
		return "discovery"
	default:
		return fmt.Sprintf("0x%04X", uint16(c))
	}
}

// IsIQ indicates if this class carries DAX IQ samples.
func (c PacketClass) IsIQ() bool {
	switch c {
	case ClassDAXIQ24, ClassDAXIQ48, ClassDAXIQ96, ClassDAXIQ192:
		return true
	default:
		return false
	}
}

// Header is the fixed framing header preceding every payload.
type Header struct {
	Type             PacketType
	HasClassID       bool
	HasTrailer       bool
	TSI              byte
	TSF              byte
	Count            byte // modulo-16 packet counter
	Size             uint16
	StreamID         uint32
	OUI              uint32
	InformationClass uint16
	PacketClass      PacketClass
	IntTimestamp     uint32
	FracTimestamp    uint64
}

// headerWords is the size of a full extension data header in 32-bit words:
// header word, stream id, 2 class id words, int timestamp, 2 frac timestamp words.
const headerWords = 7

// HeaderBytes is the encoded size of a full header.
const HeaderBytes = headerWords * 4

// ParseFrame decodes the framing header and returns it together with the
// raw payload bytes. It fails on truncated input or on packet types that
// do not carry a stream identifier.
func ParseFrame(data []byte) (Header, []byte, error) {
	if len(data) < HeaderBytes {
		return Header{}, nil, fmt.Errorf("frame too short: %d bytes", len(data))
	}

	word := binary.BigEndian.Uint32(data[0:4])
	header := Header{
		Type:       PacketType(word >> 28),
		HasClassID: word&0x08000000 != 0,
		HasTrailer: word&0x04000000 != 0,
		TSI:        byte((word >> 22) & 0x3),
		TSF:        byte((word >> 20) & 0x3),
		Count:      byte((word >> 16) & 0xF),
		Size:       uint16(word & 0xFFFF),
	}

	switch header.Type {
	case IFDataWithStream, ExtDataWithStream:
	default:
		return Header{}, nil, fmt.Errorf("unsupported packet type: %d", header.Type)
	}
	if !header.HasClassID {
		return Header{}, nil, fmt.Errorf("frame without class identifier")
	}
	if int(header.Size)*4 > len(data) {
		return Header{}, nil, fmt.Errorf("frame size field %d words exceeds datagram of %d bytes", header.Size, len(data))
	}

	header.StreamID = binary.BigEndian.Uint32(data[4:8])
	classWord := binary.BigEndian.Uint32(data[8:12])
	header.OUI = classWord & 0x00FFFFFF
	infoAndClass := binary.BigEndian.Uint32(data[12:16])
	header.InformationClass = uint16(infoAndClass >> 16)
	header.PacketClass = PacketClass(infoAndClass & 0xFFFF)
	header.IntTimestamp = binary.BigEndian.Uint32(data[16:20])
	header.FracTimestamp = binary.BigEndian.Uint64(data[20:28])

	end := int(header.Size) * 4
	if header.HasTrailer {
		end -= 4
	}
	if end < HeaderBytes {
		return Header{}, nil, fmt.Errorf("frame size field too small: %d words", header.Size)
	}

	return header, data[HeaderBytes:end], nil
}

// EncodeFrame encodes the given header and payload into a datagram. The
// size field and the class-present flag are derived, all other header
// fields are taken as given.
func EncodeFrame(header Header, payload []byte) []byte {
	padded := (len(payload) + 3) / 4 * 4
	size := headerWords + padded/4

	buf := make([]byte, HeaderBytes+padded)
	word := uint32(header.Type)<<28 |
		0x08000000 |
		uint32(header.TSI&0x3)<<22 |
		uint32(header.TSF&0x3)<<20 |
		uint32(header.Count&0xF)<<16 |
		uint32(size)&0xFFFF
	binary.BigEndian.PutUint32(buf[0:4], word)
	binary.BigEndian.PutUint32(buf[4:8], header.StreamID)
	binary.BigEndian.PutUint32(buf[8:12], header.OUI&0x00FFFFFF)
	binary.BigEndian.PutUint32(buf[12:16], uint32(header.InformationClass)<<16|uint32(header.PacketClass))
	binary.BigEndian.PutUint32(buf[16:20], header.IntTimestamp)
	binary.BigEndian.PutUint64(buf[20:28], header.FracTimestamp)
	copy(buf[HeaderBytes:], payload)

	return buf
}
