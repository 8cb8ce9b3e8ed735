package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/mewkiz/lsdj/song"
	"github.com/pkg/errors"
)

// A CapacityError reports that a song image does not fit within the blocks
// remaining in the save region.
type CapacityError struct {
	// First block the compression was asked to place output at.
	StartBlock int
}

func (e CapacityError) Error() string {
	return fmt.Sprintf("compress: song does not fit in the %d blocks available from block %d", BlockCount-e.StartBlock, e.StartBlock)
}

// minRunLength is the shortest byte run worth a run-length event.
const minRunLength = 4

// maxCount is the largest repeat count a single event can carry.
const maxCount = 255

// Compress encodes the 32 KiB song image into the block region on w,
// starting at the given block index. w must be positioned at the start of
// that block. The number of blocks consumed is returned.
//
// Output is produced greedily. At each position the encoder prefers, in
// order: a run of default wave constants, a run of default instrument
// constants, the two-byte escape for a literal marker byte, a plain byte
// run of length four or more, and finally a verbatim literal. A block is
// terminated early whenever the next event plus a two-byte jump marker
// would fill or overflow it, and the jump names the block that continues
// the chain.
//
// When the image cannot be packed into the blocks remaining before the
// region ends, the stream is rolled back: everything written is zero-filled,
// w is repositioned where it started, and a CapacityError is returned.
func Compress(image []byte, w io.WriteSeeker, startBlock int) (nblocks int, err error) {
	if len(image) != song.ImageSize {
		return 0, song.FormatError(fmt.Sprintf("compress: invalid song image size; expected %d, got %d", song.ImageSize, len(image)))
	}
	if startBlock < 0 || startBlock >= BlockCount {
		return 0, errors.Errorf("compress: invalid start block %d; expected 0 through %d", startBlock, BlockCount-1)
	}
	start, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	enc := &encoder{w: w, block: startBlock, start: startBlock}
	for pos := 0; pos < len(image); {
		switch {
		case constRun(image, pos, song.DefaultWave[:]) > 0:
			n := constRun(image, pos, song.DefaultWave[:])
			err = enc.write([]byte{specialMarker, defaultWaveByte, byte(n)})
			pos += n * len(song.DefaultWave)
		case constRun(image, pos, song.DefaultInstrument[:]) > 0:
			n := constRun(image, pos, song.DefaultInstrument[:])
			err = enc.write([]byte{specialMarker, defaultInstrByte, byte(n)})
			pos += n * len(song.DefaultInstrument)
		case image[pos] == runMarker:
			err = enc.write([]byte{runMarker, runMarker})
			pos++
		case image[pos] == specialMarker:
			err = enc.write([]byte{specialMarker, specialMarker})
			pos++
		case byteRun(image, pos) >= minRunLength:
			n := byteRun(image, pos)
			err = enc.write([]byte{runMarker, image[pos], byte(n)})
			pos += n
		default:
			err = enc.write(image[pos : pos+1])
			pos++
		}
		if err != nil {
			return 0, enc.rollback(start, err)
		}
	}
	if err := enc.write([]byte{specialMarker, endOfStream}); err != nil {
		return 0, enc.rollback(start, err)
	}
	if err := enc.pad(); err != nil {
		return 0, enc.rollback(start, err)
	}
	return enc.block - startBlock + 1, nil
}

// constRun counts how many back-to-back copies of the 16-byte constant sit
// at image[pos:], capped at the largest count one event can carry.
func constRun(image []byte, pos int, constant []byte) int {
	n := 0
	for n < maxCount && pos+len(constant) <= len(image) && bytes.Equal(image[pos:pos+len(constant)], constant) {
		n++
		pos += len(constant)
	}
	return n
}

// byteRun counts the repetitions of image[pos] from pos on, capped at the
// largest count one event can carry.
func byteRun(image []byte, pos int) int {
	n := 1
	for n < maxCount && pos+n < len(image) && image[pos+n] == image[pos] {
		n++
	}
	return n
}

// An encoder tracks the block packing state of one compression pass.
type encoder struct {
	w io.WriteSeeker
	// First block of the chain.
	start int
	// Absolute index of the block being written.
	block int
	// Bytes emitted into the current block so far.
	blockSize int
	// Total bytes emitted, for rollback.
	written int
}

// write emits one event, terminating the current block first when the
// event plus a jump marker would fill or overflow it.
func (enc *encoder) write(event []byte) error {
	if enc.blockSize+len(event)+2 >= BlockSize {
		if enc.block+1 >= BlockCount {
			return CapacityError{StartBlock: enc.start}
		}
		// Jump markers carry 1-based block indices.
		if err := enc.emit([]byte{specialMarker, byte(enc.block + 2)}); err != nil {
			return err
		}
		if err := enc.pad(); err != nil {
			return err
		}
		enc.block++
		enc.blockSize = 0
	}
	return enc.emit(event)
}

// emit writes raw bytes and accounts for them.
func (enc *encoder) emit(buf []byte) error {
	if _, err := enc.w.Write(buf); err != nil {
		return errors.WithStack(err)
	}
	enc.blockSize += len(buf)
	enc.written += len(buf)
	return nil
}

// pad zero-fills the remainder of the current block.
func (enc *encoder) pad() error {
	if enc.blockSize == BlockSize {
		return nil
	}
	return enc.emit(make([]byte, BlockSize-enc.blockSize))
}

// rollback zero-fills the region written so far and repositions the stream
// at its initial position, so that a failed compression leaves no partial
// chain behind.
func (enc *encoder) rollback(start int64, cause error) error {
	if _, err := enc.w.Seek(start, io.SeekStart); err != nil {
		return errors.WithStack(err)
	}
	if _, err := enc.w.Write(make([]byte, enc.written)); err != nil {
		return errors.WithStack(err)
	}
	if _, err := enc.w.Seek(start, io.SeekStart); err != nil {
		return errors.WithStack(err)
	}
	return cause
}
