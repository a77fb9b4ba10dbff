package midi

import (
	"bytes"
	"testing"
)

func TestBufferWrite(t *testing.T) {
	var b Buffer
	if b.Pos() != 0 || b.Len() != 0 {
		t.Fatalf("zero buffer: pos=%d len=%d", b.Pos(), b.Len())
	}
	b.Write([]byte{1, 2, 3})
	b.WriteByte(4)
	if b.Pos() != 4 {
		t.Errorf("pos = %d, want 4", b.Pos())
	}
	if !bytes.Equal(b.Bytes(), []byte{1, 2, 3, 4}) {
		t.Errorf("bytes = % x", b.Bytes())
	}
}

func TestBufferGrowth(t *testing.T) {
	var b Buffer
	data := make([]byte, 3*bufferChunk+17)
	for i := range data {
		data[i] = byte(i)
	}
	// Write in odd-sized pieces so growth happens mid-write.
	for pos := 0; pos < len(data); {
		n := 4097
		if pos+n > len(data) {
			n = len(data) - pos
		}
		b.Write(data[pos : pos+n])
		pos += n
	}
	if b.Len() != len(data) {
		t.Fatalf("len = %d, want %d", b.Len(), len(data))
	}
	if !bytes.Equal(b.Bytes(), data) {
		t.Error("buffer content does not match written data")
	}
}

func TestBufferSeekPatch(t *testing.T) {
	var b Buffer
	b.Write([]byte("MTrk"))
	lenPos := b.Pos()
	b.Skip(4) // room for the length
	b.Write([]byte{0x00, 0xff, 0x2f, 0x00})
	end := b.Pos()

	b.Seek(lenPos)
	b.Write([]byte{0x00, 0x00, 0x00, 0x04})
	b.Seek(end)

	if b.Pos() != end {
		t.Errorf("pos = %d, want %d", b.Pos(), end)
	}
	want := []byte{'M', 'T', 'r', 'k', 0x00, 0x00, 0x00, 0x04, 0x00, 0xff, 0x2f, 0x00}
	if !bytes.Equal(b.Bytes(), want) {
		t.Errorf("bytes = % x, want % x", b.Bytes(), want)
	}
}

func TestBufferHighWater(t *testing.T) {
	var b Buffer
	b.Write(make([]byte, 100))
	b.Seek(10)
	if b.Len() != 100 {
		t.Errorf("len after seek back = %d, want 100", b.Len())
	}
	b.Write([]byte{0xaa})
	if b.Len() != 100 {
		t.Errorf("len after patch = %d, want 100", b.Len())
	}
	if got := len(b.Bytes()); got != 100 {
		t.Errorf("Bytes() length = %d, want 100", got)
	}
	if b.Bytes()[10] != 0xaa {
		t.Error("patched byte not visible in Bytes()")
	}
}
