package lsdj

import (
	"bytes"
	"io"
	"os"

	"github.com/mewkiz/lsdj/compress"
	"github.com/mewkiz/lsdj/song"
	"github.com/mewkiz/pkg/errutil"
	"github.com/pkg/errors"
)

// An .lsdsng project file is one project lifted out of a save: the 8-byte
// name, the version byte, and the compressed song with its blocks laid out
// back to back from block 0. The jump markers of such a chain are strictly
// sequential, so the block anchor is simply the position right after the
// 9-byte preamble.

// lsdsngPreamble is the size of the name and version prefix.
const lsdsngPreamble = ProjectNameLength + 1

// ReadLSDSng reads a project file from r and returns the project with its
// song decompressed.
func ReadLSDSng(r io.ReadSeeker) (*Project, error) {
	p := new(Project)
	var preamble [lsdsngPreamble]byte
	if _, err := io.ReadFull(r, preamble[:]); err != nil {
		return nil, errors.WithStack(err)
	}
	copy(p.Name[:], preamble[:ProjectNameLength])
	p.Version = preamble[ProjectNameLength]

	// Block 0 of the chain starts right after the preamble.
	anchor, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	image := new(bytes.Buffer)
	if err := compress.Decompress(r, image, anchor, true); err != nil {
		return nil, err
	}
	s, err := song.Parse(image)
	if err != nil {
		return nil, err
	}
	p.Song = s
	return p, nil
}

// ReadLSDSngFile reads the project file at the given path.
func ReadLSDSngFile(path string) (*Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()
	return ReadLSDSng(f)
}

// WriteLSDSng writes the project to w as a project file. The project must
// hold a song.
func WriteLSDSng(w io.WriteSeeker, p *Project) error {
	if p.Song == nil {
		return errors.New("lsdj.WriteLSDSng: project has no song")
	}
	if _, err := w.Write(p.Name[:]); err != nil {
		return errutil.Err(err)
	}
	if _, err := w.Write([]byte{p.Version}); err != nil {
		return errutil.Err(err)
	}
	image := new(bytes.Buffer)
	if err := song.Encode(image, p.Song); err != nil {
		return errutil.Err(err)
	}
	if _, err := compress.Compress(image.Bytes(), w, 0); err != nil {
		return err
	}
	return nil
}

// WriteLSDSngFile writes the project to the file at the given path.
func WriteLSDSngFile(path string, p *Project) error {
	f, err := os.Create(path)
	if err != nil {
		return errutil.Err(err)
	}
	defer f.Close()
	return WriteLSDSng(f, p)
}
