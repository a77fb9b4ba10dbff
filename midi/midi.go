// Package midi writes standard MIDI files (SMF). It provides the chunk
// headers, the variable-length delta-time encoding and the event encoders
// needed to build a format 0 file, plus a growable output buffer that
// supports patching chunk length fields after the fact.
package midi

import (
	"encoding/binary"
	"io"
)

func writeBE(w io.Writer, data interface{}) error {
	return binary.Write(w, binary.BigEndian, data)
}

// writeUvarintBE writes x as a MIDI variable-length quantity: 7-bit groups,
// most significant first, continuation bit set on every byte but the last.
// Zero encodes as a single zero byte. A full 32-bit value needs five bytes.
func writeUvarintBE(w io.Writer, x uint32) (int, error) {
	var buf [5]byte
	n := 1
	for ; x > 0x7f; n++ {
		buf[5-n] = uint8(x & 0x7f)
		x >>= 7
	}
	buf[5-n] = uint8(x)
	for i := 5 - n; i < 4; i++ {
		buf[i] |= 0x80
	}
	return w.Write(buf[5-n:])
}

type Header struct {
	Format    uint16
	NumTracks uint16
	Division  uint16
}

func (h *Header) Size() int {
	return 14
}

func (h *Header) WriteTo(w io.Writer) (n int64, err error) {
	if err = writeBE(w, []byte("MThd")); err != nil {
		return
	}
	n += 4

	if err = writeBE(w, uint32(6)); err != nil {
		return
	}
	n += 4

	if err = writeBE(w, []uint16{
		h.Format,
		h.NumTracks,
		h.Division,
	}); err != nil {
		return
	}
	n += 6
	return
}

// TrackHeader is the 8-byte prefix of a track chunk. Len is usually not
// known until the chunk body has been written; write the header once as a
// placeholder, then seek back and write it again with the final length.
type TrackHeader struct {
	Len uint32
}

func (th *TrackHeader) WriteTo(w io.Writer) (n int64, err error) {
	if err = writeBE(w, []byte("MTrk")); err != nil {
		return
	}
	n += 4

	if err = writeBE(w, th.Len); err != nil {
		return
	}
	n += 4
	return
}

func (th *TrackHeader) Size() int {
	return 8
}

type DeltaTime uint32

func (d DeltaTime) Size() int {
	x, n := uint32(d), 1
	for ; x >= 0x80; n++ {
		x >>= 7
	}
	return n
}

func (d DeltaTime) WriteTo(w io.Writer) (int64, error) {
	l, err := writeUvarintBE(w, uint32(d))
	return int64(l), err
}
