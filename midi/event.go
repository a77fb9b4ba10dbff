package midi

import (
	"io"

	"golang.org/x/text/transform"
)

type NoteOnEvent struct {
	Channel  uint8
	Key      uint8
	Velocity uint8
}

func (no *NoteOnEvent) Size() int {
	return 3
}

func (no *NoteOnEvent) WriteTo(w io.Writer) (int64, error) {
	if err := writeBE(w, []byte{
		0x90 | (no.Channel & 0x0f),
		no.Key & 0x7f,
		no.Velocity & 0x7f,
	}); err != nil {
		return 0, err
	}
	return 3, nil
}

type NoteOffEvent struct {
	Channel  uint8
	Key      uint8
	Velocity uint8
}

func (no *NoteOffEvent) Size() int {
	return 3
}

func (no *NoteOffEvent) WriteTo(w io.Writer) (int64, error) {
	if err := writeBE(w, []byte{
		0x80 | (no.Channel & 0x0f),
		no.Key & 0x7f,
		no.Velocity & 0x7f,
	}); err != nil {
		return 0, err
	}
	return 3, nil
}

type ControllerChangeEvent struct {
	Channel    uint8
	Controller uint8
	Value      uint8
}

func (cc *ControllerChangeEvent) Size() int {
	return 3
}

func (cc *ControllerChangeEvent) WriteTo(w io.Writer) (int64, error) {
	if err := writeBE(w, []byte{
		0xb0 | (cc.Channel & 0x0f),
		cc.Controller & 0x7f,
		cc.Value & 0x7f,
	}); err != nil {
		return 0, err
	}
	return 3, nil
}

type ProgramChangeEvent struct {
	Channel uint8
	Program uint8
}

func (pc *ProgramChangeEvent) Size() int {
	return 2
}

func (pc *ProgramChangeEvent) WriteTo(w io.Writer) (int64, error) {
	if err := writeBE(w, []byte{
		0xc0 | (pc.Channel & 0x0f),
		pc.Program & 0x7f,
	}); err != nil {
		return 0, err
	}
	return 2, nil
}

// PitchBendEvent carries the full 14-bit bend value; the low 7 bits become
// the first data byte.
type PitchBendEvent struct {
	Channel uint8
	Value   uint16
}

func (pb *PitchBendEvent) Size() int {
	return 3
}

func (pb *PitchBendEvent) WriteTo(w io.Writer) (int64, error) {
	if err := writeBE(w, []byte{
		0xe0 | (pb.Channel & 0x0f),
		uint8(pb.Value) & 0x7f,
		uint8(pb.Value>>7) & 0x7f,
	}); err != nil {
		return 0, err
	}
	return 3, nil
}

type TempoEvent struct {
	// MicrosecondsPerQuarterNote is the raw 24-bit tempo payload.
	MicrosecondsPerQuarterNote uint32
}

func (te *TempoEvent) Size() int {
	return 6
}

func (te *TempoEvent) WriteTo(w io.Writer) (int64, error) {
	t := te.MicrosecondsPerQuarterNote
	if err := writeBE(w, []byte{
		0xff,
		0x51,
		0x03,
		uint8((t >> 16) & 0xff),
		uint8((t >> 8) & 0xff),
		uint8(t & 0xff),
	}); err != nil {
		return 0, err
	}
	return 6, nil
}

type TextEvent struct {
	Type        TextEventType
	Text        string
	Transformer transform.Transformer
}
type TextEventType uint8

const TextEventTypeTrackName = TextEventType(0x03)

func (te *TextEvent) Size() int {
	if te.Transformer != nil {
		buf, _, _ := transform.Bytes(te.Transformer, []byte(te.Text))
		return 3 + len(buf)
	}
	return 3 + len(te.Text)
}

func (te *TextEvent) WriteTo(w io.Writer) (n int64, err error) {
	var buf []byte
	if te.Transformer != nil {
		buf, _, err = transform.Bytes(te.Transformer, []byte(te.Text))
		if err != nil {
			return
		}
	} else {
		buf = []byte(te.Text)
	}

	if err = writeBE(w, []byte{
		0xff,
		uint8(te.Type),
		uint8(len(buf)),
	}); err != nil {
		return
	}
	n += 3

	if err = writeBE(w, buf); err != nil {
		return
	}
	n += int64(len(buf))
	return
}

type EndOfTrackEvent struct {
}

func (eote *EndOfTrackEvent) Size() int {
	return 3
}

func (eote *EndOfTrackEvent) WriteTo(w io.Writer) (int64, error) {
	if err := writeBE(w, []byte{
		0xff,
		0x2f,
		0x00,
	}); err != nil {
		return 0, err
	}
	return 3, nil
}
