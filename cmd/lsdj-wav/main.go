// lsdj-wav exports the wave-frame sample data of a save's working song as a
// WAV file, so that hand-drawn waveforms can be auditioned outside the
// tracker. Each 16-byte frame holds 32 4-bit samples; frames are repeated
// to give them audible length. This is plain sample export, not playback of
// the song.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mewkiz/lsdj"
	"github.com/mewkiz/lsdj/song"
	"github.com/mewkiz/pkg/osutil"
	"github.com/mewkiz/pkg/pathutil"
	"github.com/pkg/errors"
)

func main() {
	// Parse command line arguments.
	var (
		// force overwrite WAV file if already present.
		force bool
		// first wave frame to export.
		first int
		// number of wave frames to export.
		count int
		// repetitions of each frame.
		repeat int
		// output sample rate in Hz.
		rate int
	)
	flag.BoolVar(&force, "f", false, "force overwrite")
	flag.IntVar(&first, "first", 0, "first wave frame to export")
	flag.IntVar(&count, "n", song.SynthWaveCount, "number of wave frames to export")
	flag.IntVar(&repeat, "repeat", 256, "repetitions of each wave frame")
	flag.IntVar(&rate, "rate", 44100, "output sample rate in Hz")
	flag.Parse()
	for _, savPath := range flag.Args() {
		if err := waves2wav(savPath, force, first, count, repeat, rate); err != nil {
			log.Fatalf("%+v", err)
		}
	}
}

// waves2wav exports wave frames of the working song of the given save file.
func waves2wav(savPath string, force bool, first, count, repeat, rate int) error {
	sav, err := lsdj.ParseFile(savPath)
	if err != nil {
		return err
	}
	if first < 0 || first+count > song.WaveCount {
		return errors.Errorf("invalid wave frame range [%d, %d); expected within [0, %d)", first, first+count, song.WaveCount)
	}

	// Create WAV encoder.
	wavPath := pathutil.TrimExt(savPath) + ".wav"
	if !force && osutil.Exists(wavPath) {
		return errors.Errorf("WAV file %q already present; use -f flag to force overwrite", wavPath)
	}
	w, err := os.Create(wavPath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer w.Close()
	enc := wav.NewEncoder(w, rate, 16, 1, 1)
	defer enc.Close()

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		SourceBitDepth: 16,
	}
	for i := first; i < first+count; i++ {
		samples := sav.WorkingSong.Waves[i].Samples()
		for r := 0; r < repeat; r++ {
			for _, s := range samples {
				// Center the 4-bit sample and scale it to 16 bits.
				buf.Data = append(buf.Data, (int(s)-8)<<12)
			}
		}
	}
	if err := enc.Write(buf); err != nil {
		return errors.WithStack(err)
	}
	return nil
}
