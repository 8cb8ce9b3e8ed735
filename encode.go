package lsdj

import (
	"bytes"
	"io"
	"os"

	"github.com/mewkiz/lsdj/compress"
	"github.com/mewkiz/lsdj/internal/memio"
	"github.com/mewkiz/lsdj/song"
	"github.com/mewkiz/pkg/errutil"
	"github.com/pkg/errors"
)

// Encode writes the save to w in its canonical 131,072-byte form.
//
// The save is assembled in memory first: the working song image, the
// header, the owner table initialized to all-free, and then each project
// slot in order, compressed into the block region with first-fit allocation
// starting at block 0. Owner-table entries are marked per consumed block as
// each project lands. A project that no longer fits surfaces the codec's
// CapacityError; nothing is flushed to w in that case.
func Encode(w io.Writer, sav *Save) error {
	if sav.WorkingSong == nil {
		return errors.New("lsdj.Encode: save has no working song")
	}
	buf := make([]byte, SaveSize)

	working := new(bytes.Buffer)
	if err := song.Encode(working, sav.WorkingSong); err != nil {
		return errutil.Err(err)
	}
	copy(buf, working.Bytes())

	for i := range sav.Projects {
		copy(buf[headerOffset+i*8:headerOffset+i*8+8], sav.Projects[i].Name[:])
		buf[versionsOffset+i] = sav.Projects[i].Version
	}
	copy(buf[initOffset:], initMarker)
	buf[activeOffset] = sav.Active
	for i := 0; i < compress.BlockCount; i++ {
		buf[blockOwnerOffset+i] = ownerFree
	}

	blocks := memio.NewBuffer(buf[blockAnchor:])
	current := 0
	for i := range sav.Projects {
		p := &sav.Projects[i]
		if p.Song == nil {
			continue
		}
		image := new(bytes.Buffer)
		if err := song.Encode(image, p.Song); err != nil {
			return errutil.Err(err)
		}
		if _, err := blocks.Seek(int64(current)*compress.BlockSize, io.SeekStart); err != nil {
			return errutil.Err(err)
		}
		used, err := compress.Compress(image.Bytes(), blocks, current)
		if err != nil {
			return errors.Wrapf(err, "lsdj.Encode: project %d", i)
		}
		for b := current; b < current+used; b++ {
			buf[blockOwnerOffset+b] = byte(i)
		}
		current += used
	}

	if _, err := w.Write(buf); err != nil {
		return errutil.Err(err)
	}
	return nil
}

// WriteFile encodes the save to the file at the given path.
func WriteFile(path string, sav *Save) error {
	f, err := os.Create(path)
	if err != nil {
		return errutil.Err(err)
	}
	defer f.Close()
	return Encode(f, sav)
}
