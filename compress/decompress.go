// Package compress implements the block-packed stream codec that carries
// song images inside the compressed region of an LSDJ save.
//
// The save region is carved into 191 blocks of 512 bytes. A compressed song
// occupies a chain of blocks linked by in-band jump markers; the codec is a
// run-length scheme with two dictionary markers for the 16-byte default
// wave and default instrument constants:
//
//	C0 C0       one literal 0xC0
//	C0 XX NN    byte XX repeated NN times
//	E0 E0       one literal 0xE0
//	E0 F0 NN    the default wave constant NN times
//	E0 F1 NN    the default instrument constant NN times
//	E0 BB       jump to block BB (1-based)
//	E0 FF       end of stream
//
// Any other byte is emitted verbatim.
package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/mewkiz/lsdj/song"
	"github.com/mewkiz/pkg/readerutil"
	"github.com/pkg/errors"
)

// Block geometry of the compressed save region.
const (
	BlockSize  = 512
	BlockCount = 191
)

// Stream codec markers.
const (
	runMarker        = 0xC0
	specialMarker    = 0xE0
	defaultWaveByte  = 0xF0
	defaultInstrByte = 0xF1
	endOfStream      = 0xFF
)

// Decompress reads one compressed song chain from r and writes the
// reconstructed 32 KiB image to w. The anchor is the absolute position of
// block 0 of the save's block region; jump markers seek the reader to
// anchor+(value-1)*512. r must be positioned at the first block of the
// chain.
//
// With followJumps false a jump marker does not seek across the region;
// decoding continues at the next 512-byte boundary past the anchor instead.
// This reads a chain whose blocks are laid out back to back, as in project
// files, and lets diagnostic tooling walk a single block in isolation.
func Decompress(r io.ReadSeeker, w io.Writer, anchor int64, followJumps bool) error {
	var written int64
	for {
		b, err := readByte(r)
		if err != nil {
			return err
		}
		switch b {
		case runMarker:
			if b, err = readByte(r); err != nil {
				return err
			}
			if b == runMarker {
				err = emit(w, &written, []byte{runMarker})
				break
			}
			var count byte
			if count, err = readByte(r); err != nil {
				return err
			}
			err = emit(w, &written, bytes.Repeat([]byte{b}, int(count)))
		case specialMarker:
			if b, err = readByte(r); err != nil {
				return err
			}
			switch {
			case b == specialMarker:
				err = emit(w, &written, []byte{specialMarker})
			case b == defaultWaveByte:
				var count byte
				if count, err = readByte(r); err != nil {
					return err
				}
				err = emit(w, &written, bytes.Repeat(song.DefaultWave[:], int(count)))
			case b == defaultInstrByte:
				var count byte
				if count, err = readByte(r); err != nil {
					return err
				}
				err = emit(w, &written, bytes.Repeat(song.DefaultInstrument[:], int(count)))
			case b == endOfStream:
				if written != song.ImageSize {
					return song.FormatError(fmt.Sprintf("compress: decompressed size mismatch; expected %d, got %d", song.ImageSize, written))
				}
				return nil
			case b >= 1 && b <= BlockCount:
				err = jump(r, anchor, b, followJumps)
			default:
				return song.FormatError(fmt.Sprintf("compress: invalid special marker byte %#02x", b))
			}
		default:
			err = emit(w, &written, []byte{b})
		}
		if err != nil {
			return err
		}
	}
}

// jump moves the reader to the block named by the in-band marker, or to the
// next block boundary when jumps are not being followed.
func jump(r io.ReadSeeker, anchor int64, block byte, followJumps bool) error {
	if followJumps {
		if _, err := r.Seek(anchor+int64(block-1)*BlockSize, io.SeekStart); err != nil {
			return errors.WithStack(err)
		}
		return nil
	}
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return errors.WithStack(err)
	}
	rel := pos - anchor
	if rem := rel % BlockSize; rem != 0 {
		rel += BlockSize - rem
	}
	if _, err := r.Seek(anchor+rel, io.SeekStart); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// emit writes buf to w, tracking the total so that a stream expanding past
// the image size is caught as it happens rather than at end of stream.
func emit(w io.Writer, written *int64, buf []byte) error {
	*written += int64(len(buf))
	if *written > song.ImageSize {
		return song.FormatError(fmt.Sprintf("compress: decompressed size mismatch; expected at most %d, got %d", song.ImageSize, *written))
	}
	if _, err := w.Write(buf); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// readByte reads a single stream byte. Running out of input mid-stream is a
// format violation, since every well-formed chain ends with an explicit end
// of stream marker.
func readByte(r io.Reader) (byte, error) {
	b, err := readerutil.ReadByte(r)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return 0, song.FormatError("compress: unexpected EOF before end of stream marker")
		}
		return 0, errors.WithStack(err)
	}
	return b, nil
}
