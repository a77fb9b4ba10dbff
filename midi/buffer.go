package midi

// bufferChunk is the growth increment for Buffer storage.
const bufferChunk = 8192

// Buffer is an in-memory destination for SMF data. It grows on demand and
// keeps the write cursor separate from the furthest byte ever written, so a
// chunk length field can be reserved, written over later and the cursor
// restored without losing track of the real end of the file.
//
// The zero value is ready to use.
type Buffer struct {
	data []byte
	pos  int
	high int
}

func (b *Buffer) grow(n int) {
	for len(b.data) < n {
		b.data = append(b.data, make([]byte, bufferChunk)...)
	}
}

// Write implements io.Writer. It never returns an error.
func (b *Buffer) Write(p []byte) (int, error) {
	b.grow(b.pos + len(p))
	copy(b.data[b.pos:], p)
	b.pos += len(p)
	if b.pos > b.high {
		b.high = b.pos
	}
	return len(p), nil
}

func (b *Buffer) WriteByte(c byte) error {
	_, err := b.Write([]byte{c})
	return err
}

// Pos returns the write cursor's offset from the start of the buffer.
func (b *Buffer) Pos() int {
	return b.pos
}

// Seek moves the write cursor to an absolute offset, growing the buffer as
// needed. Content between the old high-water mark and pos is not zeroed;
// seeking past it is only valid if every skipped byte is written before the
// buffer is read out.
func (b *Buffer) Seek(pos int) {
	b.grow(pos)
	b.pos = pos
}

// Skip advances the cursor by n bytes, reserving room for a field that will
// be patched in later.
func (b *Buffer) Skip(n int) {
	b.Seek(b.pos + n)
}

// Bytes returns the written portion of the buffer, up to the high-water
// mark. The slice aliases the buffer's storage.
func (b *Buffer) Bytes() []byte {
	return b.data[:b.high]
}

// Len returns the length of the written portion.
func (b *Buffer) Len() int {
	return b.high
}
