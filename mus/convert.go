package mus

import (
	"log"

	"github.com/pkg/errors"
	"golang.org/x/text/transform"

	"github.com/gitarent/wildmidi/midi"
)

const (
	// division and tempo reproduce the values DMX-derived converters have
	// always written; the tempo payload appears on the wire as 09 A3 1A.
	division = 0x0059
	tempo    = 0x09a31a

	maxChannels       = 15
	percussionChannel = 9
	musPercussion     = 15
)

// ErrTooManyChannels is returned when the header declares more primary
// channels than MIDI can hold alongside the reserved percussion channel.
var ErrTooManyChannels = errors.New("mus: more than 15 primary channels")

// Converter translates a MUS score into a format 0 standard MIDI file.
// The zero value is a valid converter.
type Converter struct {
	// TrackName, if non-empty, is written as a track name meta event at
	// the start of the track.
	TrackName string

	// TrackNameTransformer re-encodes TrackName for players that expect a
	// legacy charset. Nil writes the name as-is.
	TrackNameTransformer transform.Transformer

	// Log receives diagnostics about tolerated irregularities in the
	// score. Nil uses the standard logger.
	Log *log.Logger
}

// Convert translates data with a zero Converter.
func Convert(data []byte) ([]byte, error) {
	return (&Converter{}).Convert(data)
}

// Convert translates the MUS score in data and returns the complete MIDI
// file. The input is only read; the returned buffer is owned by the caller.
// A header declaring more than 15 channels yields ErrTooManyChannels and no
// buffer.
func (c *Converter) Convert(data []byte) ([]byte, error) {
	h, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}
	if h.Channels > maxChannels {
		return nil, ErrTooManyChannels
	}

	tr := &translator{conv: c, data: data, header: h}
	for i := range tr.channelMap {
		tr.channelMap[i] = -1
		tr.channelVolume[i] = 0x40
	}
	tr.channelMap[musPercussion] = percussionChannel

	out := &tr.out
	(&midi.Header{Format: 0, NumTracks: 1, Division: division}).WriteTo(out)

	trackStart := out.Pos()
	var th midi.TrackHeader
	th.WriteTo(out) // length patched below

	if c.TrackName != "" {
		midi.DeltaTime(0).WriteTo(out)
		_, err := (&midi.TextEvent{
			Type:        midi.TextEventTypeTrackName,
			Text:        c.TrackName,
			Transformer: c.TrackNameTransformer,
		}).WriteTo(out)
		if err != nil {
			return nil, errors.Wrap(err, "mus: writing track name")
		}
	}

	midi.DeltaTime(0).WriteTo(out)
	(&midi.TempoEvent{MicrosecondsPerQuarterNote: tempo}).WriteTo(out)

	// The percussion channel starts out at full volume.
	midi.DeltaTime(0).WriteTo(out)
	(&midi.ControllerChangeEvent{Channel: percussionChannel, Controller: 7, Value: 127}).WriteTo(out)

	tr.pos = int(h.ScoreStart)
	tr.end = tr.pos + int(h.ScoreLen)
	if tr.end > len(data) {
		c.logf("mus: score range %d..%d exceeds input length %d", tr.pos, tr.end, len(data))
		tr.end = len(data)
	}

	tr.run()

	endPos := out.Pos()
	th.Len = uint32(endPos - trackStart - th.Size())
	out.Seek(trackStart)
	th.WriteTo(out)
	out.Seek(endPos)

	return out.Bytes(), nil
}

func (c *Converter) logf(format string, args ...interface{}) {
	if c.Log != nil {
		c.Log.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

type translator struct {
	conv   *Converter
	header Header

	data     []byte
	pos, end int

	out midi.Buffer

	// channelMap assigns MIDI channels to MUS channels on first use; -1 is
	// unassigned. channelVolume caches the last KeyOn volume per assigned
	// MIDI channel.
	channelMap    [16]int
	channelVolume [16]uint8
	nextChannel   int

	delta uint32
	ended bool
}

func (tr *translator) readByte() byte {
	if tr.pos >= len(tr.data) {
		tr.pos++
		return 0
	}
	b := tr.data[tr.pos]
	tr.pos++
	return b
}

// begin writes the pending delta-time and resolves a MUS channel to its
// MIDI channel, assigning the next free one on first use. A newly assigned
// melodic channel is brought up to full volume before its first event,
// inside the same delta-time slot.
func (tr *translator) begin(musCh byte) uint8 {
	midi.DeltaTime(tr.delta).WriteTo(&tr.out)
	tr.delta = 0
	ch := tr.channelMap[musCh]
	if ch < 0 {
		ch = tr.nextChannel
		tr.nextChannel++
		if tr.nextChannel == percussionChannel {
			tr.nextChannel++
		}
		tr.channelMap[musCh] = ch
		(&midi.ControllerChangeEvent{Channel: uint8(ch), Controller: 7, Value: 127}).WriteTo(&tr.out)
		midi.DeltaTime(0).WriteTo(&tr.out)
	}
	return uint8(ch)
}

func (tr *translator) run() {
	out := &tr.out
	for tr.pos < tr.end && !tr.ended {
		b := tr.readByte()
		musCh := b & 0x0f

		switch (b >> 4) & 7 {
		case eventKeyOff:
			note := tr.readByte()
			ch := tr.begin(musCh)
			(&midi.NoteOffEvent{Channel: ch, Key: note, Velocity: 0x40}).WriteTo(out)

		case eventKeyOn:
			note := tr.readByte()
			ch := tr.begin(musCh)
			if note&0x80 != 0 {
				tr.channelVolume[ch] = tr.readByte()
			}
			(&midi.NoteOnEvent{Channel: ch, Key: note & 0x7f, Velocity: tr.channelVolume[ch]}).WriteTo(out)

		case eventPitchWheel:
			v := tr.readByte()
			ch := tr.begin(musCh)
			// Only the top seven bits of the bend survive the source
			// format; the low seven always come out as zero. Kept as-is
			// for byte compatibility with DMX-derived converters.
			(&midi.PitchBendEvent{Channel: ch, Value: uint16(v>>1&0x7f) << 7}).WriteTo(out)

		case eventChannelMode:
			idx := tr.readByte()
			var ctrl uint8
			if int(idx) < len(controllerMap) {
				ctrl = controllerMap[idx]
			} else {
				tr.conv.logf("mus: channel mode %d out of range at offset %d", idx, tr.pos-1)
			}
			var val uint8
			if idx == 12 { // mono mode wants the voice count
				val = uint8(tr.header.Channels + 1)
			}
			ch := tr.begin(musCh)
			(&midi.ControllerChangeEvent{Channel: ch, Controller: ctrl, Value: val}).WriteTo(out)

		case eventControllerChange:
			idx := tr.readByte()
			if idx == 0 {
				prog := tr.readByte()
				ch := tr.begin(musCh)
				(&midi.ProgramChangeEvent{Channel: ch, Program: prog}).WriteTo(out)
				break
			}
			var ctrl uint8
			if int(idx) < len(controllerMap) {
				ctrl = controllerMap[idx]
			} else {
				tr.conv.logf("mus: controller %d out of range at offset %d", idx, tr.pos-1)
			}
			val := tr.readByte()
			ch := tr.begin(musCh)
			(&midi.ControllerChangeEvent{Channel: ch, Controller: ctrl, Value: val}).WriteTo(out)

		case eventEnd:
			tr.begin(musCh)
			(&midi.EndOfTrackEvent{}).WriteTo(out)
			tr.ended = true
			if tr.pos != tr.end {
				tr.conv.logf("mus: end of score at offset %d, expected %d", tr.pos, tr.end)
			}

		default:
			// Types 5 (end of measure) and 7 carry no payload and have no
			// MIDI equivalent.
		}

		if b&0x80 != 0 {
			tr.delta, tr.pos = readDelay(tr.data, tr.pos)
		} else {
			tr.delta = 0
		}
	}

	if !tr.ended {
		tr.conv.logf("mus: score ended without end-of-score event")
		midi.DeltaTime(tr.delta).WriteTo(out)
		(&midi.EndOfTrackEvent{}).WriteTo(out)
	}
}
