// Package lsdj provides access to the battery-backed save files of the LSDJ
// Game Boy music tracker.
//
// A save is 131,072 bytes: a working song held decompressed at the front,
// a header naming up to 32 stored projects, a block-owner table, and a
// 191-block region holding each project's song in compressed form. The
// basic structure is:
//
//	0x0000  working song, uncompressed 32 KiB image
//	0x8000  header: 32 project names (8 bytes each), 32 versions,
//	        30 bytes padding, the init marker "jk", active project
//	0x8141  block-owner table, one byte per block (0xFF = free)
//	0x8200  191 blocks of 512 bytes
package lsdj

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/mewkiz/lsdj/compress"
	"github.com/mewkiz/lsdj/song"
	"github.com/pkg/errors"
)

// initMarker is present in the header of every initialized save.
var initMarker = []byte("jk")

// SaveSize is the total size in bytes of a save file.
const SaveSize = 0x20000

// ProjectCount is the number of project slots in a save.
const ProjectCount = 32

// Save file layout.
const (
	headerOffset     = 0x8000 // project names
	versionsOffset   = 0x8100 // one byte per project
	initOffset       = 0x813E // "jk"
	activeOffset     = 0x8140
	blockOwnerOffset = 0x8141 // one byte per block
	blockAnchor      = 0x8200 // block 0
	ownerFree        = 0xFF
)

// A Save is one parsed save file: the working song, the 32 project slots
// and the index of the project the working song was loaded from.
type Save struct {
	// Working song held decompressed at the front of the save.
	WorkingSong *song.Song
	// Project slots; a slot with no song owns no blocks.
	Projects [ProjectCount]Project
	// Slot the working song was last loaded from or saved to.
	Active uint8
}

// New returns an initialized save with all project slots empty, the active
// project cleared, and a default working song.
func New() *Save {
	return &Save{WorkingSong: song.New()}
}

// ParseFile opens the file at the given path and returns the parsed save.
func ParseFile(path string) (*Save, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads and parses a save from r.
//
// The header is read and its init marker validated first. Each allocated
// block whose owning project does not yet have a song starts a compressed
// chain; the chain is followed through its jump markers and decompressed
// into that project. Blocks visited through a jump are skipped by the outer
// scan, since their owner already carries a song. The working song is
// parsed last.
func Parse(r io.ReadSeeker) (*Save, error) {
	if _, err := r.Seek(headerOffset, io.SeekStart); err != nil {
		return nil, errors.WithStack(err)
	}
	// Header and block-owner table pack into exactly one block.
	hdr := make([]byte, blockAnchor-headerOffset)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, errors.WithStack(err)
	}
	if !bytes.Equal(hdr[initOffset-headerOffset:initOffset-headerOffset+2], initMarker) {
		return nil, song.FormatError(fmt.Sprintf("lsdj: invalid init marker; expected %q, got %q", initMarker, hdr[initOffset-headerOffset:initOffset-headerOffset+2]))
	}

	sav := new(Save)
	sav.Active = hdr[activeOffset-headerOffset]
	for i := range sav.Projects {
		p := &sav.Projects[i]
		copy(p.Name[:], hdr[i*8:])
		p.Version = hdr[versionsOffset-headerOffset+i]
	}

	owners := hdr[blockOwnerOffset-headerOffset : blockOwnerOffset-headerOffset+compress.BlockCount]
	for i, owner := range owners {
		if owner == ownerFree {
			continue
		}
		if int(owner) >= ProjectCount {
			return nil, song.FormatError(fmt.Sprintf("lsdj: invalid block owner; block %d names project %d, expected < %d", i, owner, ProjectCount))
		}
		p := &sav.Projects[owner]
		if p.Song != nil {
			// Reached earlier through a jump marker.
			continue
		}
		if _, err := r.Seek(blockAnchor+int64(i)*compress.BlockSize, io.SeekStart); err != nil {
			return nil, errors.WithStack(err)
		}
		image := new(bytes.Buffer)
		if err := compress.Decompress(r, image, blockAnchor, true); err != nil {
			return nil, errors.Wrapf(err, "lsdj: project %d (block %d)", owner, i)
		}
		s, err := song.Parse(image)
		if err != nil {
			return nil, errors.Wrapf(err, "lsdj: project %d", owner)
		}
		p.Song = s
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, errors.WithStack(err)
	}
	working, err := song.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, "lsdj: working song")
	}
	sav.WorkingSong = working
	return sav, nil
}

// Allocated reports whether the given project slot holds a song, i.e.
// whether writing the save would assign it blocks in the owner table.
func (sav *Save) Allocated(slot int) bool {
	return slot >= 0 && slot < ProjectCount && sav.Projects[slot].Song != nil
}
