package song

import (
	"bytes"

	"github.com/icza/bitio"
)

// A Wave is one 16-byte wave frame holding 32 packed 4-bit samples, high
// nibble first.
type Wave [16]byte

// DefaultWave is the wave frame the tracker initializes every synth with, a
// gentle saw. Like DefaultInstrument it has a dedicated marker in the
// stream codec and its bytes are frozen.
var DefaultWave = Wave{
	0x8E, 0xCD, 0xCC, 0xBB, 0xAA, 0xA9, 0x99, 0x88,
	0x87, 0x76, 0x66, 0x55, 0x54, 0x43, 0x32, 0x31,
}

// Samples unpacks the 32 4-bit samples of the wave frame in playback order.
func (w Wave) Samples() [32]uint8 {
	var samples [32]uint8
	br := bitio.NewReader(bytes.NewReader(w[:]))
	for i := range samples {
		// Reading from an in-memory 16-byte frame cannot fail.
		s, _ := br.ReadBits(4)
		samples[i] = uint8(s)
	}
	return samples
}

// SetSamples packs 32 4-bit samples into the wave frame. Sample values are
// masked to their low nibble.
func (w *Wave) SetSamples(samples [32]uint8) {
	buf := new(bytes.Buffer)
	bw := bitio.NewWriter(buf)
	for _, s := range samples {
		bw.WriteBits(uint64(s&0x0F), 4)
	}
	bw.Close()
	copy(w[:], buf.Bytes())
}
