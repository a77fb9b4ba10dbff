// Package wad provides read access to Doom WAD archives. A WAD is a flat
// collection of named lumps; music lumps hold MUS scores and are
// conventionally named D_*.
package wad

import (
	"encoding/binary"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/gitarent/wildmidi/mus"
)

type binHeader struct {
	Magic        [4]byte
	NumLumps     int32
	InfoTableOfs int32
}

type binLumpInfo struct {
	Filepos int32
	Size    int32
	Name    [8]byte
}

type LumpInfo struct {
	Name    string
	Filepos int
	Size    int
}

// Archive is an open WAD file. It keeps the underlying file handle; lump
// contents are read on demand.
type Archive struct {
	file     *os.File
	lumps    []LumpInfo
	lumpNums map[string]int
}

// Open reads the WAD directory from the file at path.
func Open(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "wad: open")
	}
	var h binHeader
	if err := binary.Read(f, binary.LittleEndian, &h); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "wad: reading header")
	}
	if magic := string(h.Magic[:]); magic != "IWAD" && magic != "PWAD" {
		f.Close()
		return nil, errors.Errorf("wad: bad magic %q", magic)
	}
	if _, err := f.Seek(int64(h.InfoTableOfs), io.SeekStart); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "wad: seeking lump directory")
	}
	a := &Archive{file: f, lumpNums: make(map[string]int)}
	for i := 0; i < int(h.NumLumps); i++ {
		var li binLumpInfo
		if err := binary.Read(f, binary.LittleEndian, &li); err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "wad: reading lump directory entry %d", i)
		}
		name := strings.TrimRight(string(li.Name[:]), "\x00")
		a.lumpNums[name] = len(a.lumps)
		a.lumps = append(a.lumps, LumpInfo{
			Name:    name,
			Filepos: int(li.Filepos),
			Size:    int(li.Size),
		})
	}
	return a, nil
}

func (a *Archive) Close() error {
	return a.file.Close()
}

// Lumps returns the lump directory in file order.
func (a *Archive) Lumps() []LumpInfo {
	return a.lumps
}

// Lump returns the contents of the named lump.
func (a *Archive) Lump(name string) ([]byte, error) {
	i, ok := a.lumpNums[strings.ToUpper(name)]
	if !ok {
		return nil, errors.Errorf("wad: no lump %q", name)
	}
	li := a.lumps[i]
	buf := make([]byte, li.Size)
	if _, err := a.file.ReadAt(buf, int64(li.Filepos)); err != nil {
		return nil, errors.Wrapf(err, "wad: reading lump %q", name)
	}
	return buf, nil
}

// MusicLumps returns the names of the lumps that hold MUS scores.
func (a *Archive) MusicLumps() ([]string, error) {
	var names []string
	for _, li := range a.lumps {
		if !strings.HasPrefix(li.Name, "D_") {
			continue
		}
		data, err := a.Lump(li.Name)
		if err != nil {
			return nil, err
		}
		if mus.IsScore(data) {
			names = append(names, li.Name)
		}
	}
	return names, nil
}
