package lsdj

import (
	"bytes"

	"github.com/mewkiz/lsdj/song"
)

// ProjectNameLength is the length of a project name in the save header.
const ProjectNameLength = 8

// A Project is one song slot within a save: an 8-byte name (zero- or
// space-padded, not necessarily terminated), a version byte the tracker
// bumps on each store, and the decompressed song, if any. A project with no
// song is empty; its name and version bytes remain in the header but are
// ignored.
type Project struct {
	Name    [ProjectNameLength]byte
	Version uint8
	Song    *song.Song
}

// NameString returns the project name with trailing padding removed.
func (p *Project) NameString() string {
	return string(bytes.TrimRight(p.Name[:], "\x00 "))
}

// SetName sets the project name, truncating to 8 bytes and zero-padding the
// remainder.
func (p *Project) SetName(name string) {
	p.Name = [ProjectNameLength]byte{}
	copy(p.Name[:], name)
}

// SetSong assigns a song to the slot, making it non-empty.
func (p *Project) SetSong(s *song.Song) {
	p.Song = s
}

// IsEmpty reports whether the slot holds no song and therefore owns no
// blocks.
func (p *Project) IsEmpty() bool {
	return p.Song == nil
}

// Clear empties the slot: the name and version are zeroed and the song is
// dropped.
func (p *Project) Clear() {
	p.Name = [ProjectNameLength]byte{}
	p.Version = 0
	p.Song = nil
}
