// Package mus converts DMX MUS scores, the music format used by DOOM-engine
// games, into single-track standard MIDI files.
package mus

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

// Magic is the four-byte tag at the start of every MUS lump.
var Magic = [4]byte{'M', 'U', 'S', 0x1a}

// Header is the fixed record at the start of a MUS lump. All fields are
// little-endian on disk.
type Header struct {
	ID          [4]byte
	ScoreLen    uint16
	ScoreStart  uint16
	Channels    uint16 // count of primary channels
	SecChannels uint16 // count of secondary channels
	Instruments uint16
	Reserved    uint16
}

// headerSize is the encoded size of Header.
const headerSize = 16

// MUS event types, stored in bits 4-6 of the event byte.
const (
	eventKeyOff = iota
	eventKeyOn
	eventPitchWheel
	eventChannelMode
	eventControllerChange
	eventEndOfMeasure // unused by DMX, carries no payload
	eventEnd
)

// controllerMap translates MUS controller numbers to their MIDI
// equivalents. Index 0 (program change) is handled separately.
var controllerMap = [15]uint8{
	0,    // 0  program change
	0,    // 1  bank selection
	0x01, // 2  modulation
	0x07, // 3  volume
	0x0a, // 4  pan
	0x0b, // 5  expression
	0x5b, // 6  reverb depth
	0x5d, // 7  chorus depth
	0x40, // 8  sustain pedal
	0x43, // 9  soft pedal
	0x78, // 10 all sounds off
	0x7b, // 11 all notes off
	0x7e, // 12 mono
	0x7f, // 13 poly
	0x79, // 14 reset all controllers
}

// IsScore reports whether data starts with the MUS magic tag.
func IsScore(data []byte) bool {
	return len(data) >= len(Magic) && bytes.Equal(data[:len(Magic)], Magic[:])
}

// DecodeHeader reads the MUS header record from the start of data.
func DecodeHeader(data []byte) (Header, error) {
	var h Header
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &h); err != nil {
		return h, errors.Wrap(err, "mus: reading header")
	}
	return h, nil
}

// Instruments returns the instrument patch list that follows the header.
func Instruments(data []byte) ([]uint16, error) {
	h, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}
	patches := make([]uint16, h.Instruments)
	if err := binary.Read(bytes.NewReader(data[headerSize:]), binary.LittleEndian, patches); err != nil {
		return nil, errors.Wrap(err, "mus: reading instrument list")
	}
	return patches, nil
}

// readDelay decodes the delay that follows an event whose high bit is set:
// 7-bit groups accumulated most significant first, continuation flagged by
// the high bit. This is not the MIDI variable-length quantity; the two
// encodings differ in bit order and must not be conflated. Delays too long
// for 32 bits saturate rather than wrap.
func readDelay(data []byte, pos int) (uint32, int) {
	var d uint32
	for pos < len(data) {
		b := data[pos]
		pos++
		v := uint32(b & 0x7f)
		if d > (^uint32(0)-v)/128 {
			d = ^uint32(0)
		} else {
			d = d*128 + v
		}
		if b&0x80 == 0 {
			break
		}
	}
	return d, pos
}
