package song

import "fmt"

// decode interprets a raw 32 KiB image. The "rb" markers are verified
// before anything else; the format version and the four allocation tables
// are read next, since they drive every conditional section that follows.
func decode(buf []byte) (*Song, error) {
	if err := VerifyImage(buf); err != nil {
		return nil, err
	}

	s := new(Song)
	s.Version = buf[offVersion]

	// Allocation tables.
	tableAlloc := buf[offTableAlloc : offTableAlloc+TableCount]
	instrAlloc := buf[offInstrAlloc : offInstrAlloc+InstrumentCount]
	phraseAlloc := buf[offPhraseAlloc : offPhraseAlloc+PhraseCount/8+1]
	chainAlloc := buf[offChainAlloc : offChainAlloc+ChainCount/8]

	// Bank 0.
	for i := range s.Phrases {
		if !bitSet(phraseAlloc, i) {
			continue
		}
		phrase := new(Phrase)
		copy(phrase.Notes[:], buf[offPhraseNotes+i*StepCount:])
		s.Phrases[i] = phrase
	}
	copy(s.Bookmarks[:], buf[offBookmarks:])
	copy(s.Reserved1030[:], buf[offReserved1030:])
	for i := range s.Grooves {
		copy(s.Grooves[i][:], buf[offGrooves+i*StepCount:])
	}
	for i := range s.Rows {
		row := buf[offRows+i*4 : offRows+i*4+4]
		s.Rows[i] = Row{Pulse1: row[0], Pulse2: row[1], Wave: row[2], Noise: row[3]}
	}
	for i := range s.Words {
		off := offWords + i*2*StepCount
		copy(s.Words[i].Allophones[:], buf[off:])
		copy(s.Words[i].Lengths[:], buf[off+StepCount:])
	}
	for i := range s.WordNames {
		copy(s.WordNames[i][:], buf[offWordNames+i*WordNameLength:])
	}
	copy(s.Reserved1FBA[:], buf[offReserved1FBA:])

	// Bank 1.
	copy(s.Reserved2000[:], buf[offReserved2000:])
	for i := range s.Chains {
		if !bitSet(chainAlloc, i) {
			continue
		}
		chain := new(Chain)
		copy(chain.Phrases[:], buf[offChainPhrases+i*StepCount:])
		copy(chain.Transposes[:], buf[offChainTransposes+i*StepCount:])
		s.Chains[i] = chain
	}
	for i := range s.Instruments {
		switch instrAlloc[i] {
		case 0:
			continue
		case 1:
			instr := new(Instrument)
			copy(instr.Name[:], buf[offInstrNames+i*InstrumentNameLength:])
			copy(instr.Params[:], buf[offInstrParams+i*16:])
			s.Instruments[i] = instr
		default:
			return nil, FormatError(fmt.Sprintf("song: invalid instrument allocation byte at index %d; expected 0 or 1, got %d", i, instrAlloc[i]))
		}
	}
	for i := range s.Tables {
		switch tableAlloc[i] {
		case 0:
			continue
		case 1:
			table := new(Table)
			copy(table.Envelopes[:], buf[offTableEnvelopes+i*StepCount:])
			copy(table.Transposes[:], buf[offTableTransposes+i*StepCount:])
			for j := 0; j < StepCount; j++ {
				table.Commands1[j] = decodeCommand(buf[offTableCommands1+i*StepCount+j], s.Version)
				table.Commands2[j] = decodeCommand(buf[offTableCommands2+i*StepCount+j], s.Version)
			}
			copy(table.Values1[:], buf[offTableValues1+i*StepCount:])
			copy(table.Values2[:], buf[offTableValues2+i*StepCount:])
			s.Tables[i] = table
		default:
			return nil, FormatError(fmt.Sprintf("song: invalid table allocation byte at index %d; expected 0 or 1, got %d", i, tableAlloc[i]))
		}
	}
	for i := range s.Synths {
		copy(s.Synths[i].Params[:], buf[offSynths+i*16:])
		s.Synths[i].OverwriteLock = waveLockSet(buf[offWaveLocks:offWaveLocks+2], i)
	}
	s.Meta = Meta{
		WorkHours:    buf[offWorkHours],
		WorkMinutes:  buf[offWorkMinutes],
		Tempo:        buf[offTempo],
		Transpose:    buf[offTranspose],
		TotalDays:    buf[offTotalDays],
		TotalHours:   buf[offTotalHours],
		TotalMinutes: buf[offTotalMinutes],
		Reserved3FB9: buf[offReserved3FB9],
		KeyDelay:     buf[offKeyDelay],
		KeyRepeat:    buf[offKeyRepeat],
		Font:         buf[offFont],
		Sync:         buf[offSync],
		ColorSet:     buf[offColorSet],
		Reserved3FBF: buf[offReserved3FBF],
		Clone:        buf[offClone],
		FileChanged:  buf[offFileChanged],
		PowerSave:    buf[offPowerSave],
		PreListen:    buf[offPreListen],
	}
	copy(s.Reserved3FC6[:], buf[offReserved3FC6:])

	// Bank 2.
	for i, phrase := range s.Phrases {
		if phrase == nil {
			continue
		}
		copy(phrase.Commands[:], buf[offPhraseCommands+i*StepCount:])
		copy(phrase.CommandValues[:], buf[offPhraseCommandValues+i*StepCount:])
	}
	copy(s.Reserved5FE0[:], buf[offReserved5FE0:])

	// Bank 3.
	for i := range s.Waves {
		copy(s.Waves[i][:], buf[offWaves+i*16:])
	}
	for i, phrase := range s.Phrases {
		if phrase == nil {
			continue
		}
		copy(phrase.Instruments[:], buf[offPhraseInstruments+i*StepCount:])
	}
	copy(s.Reserved7FF2[:], buf[offReserved7FF2:])

	return s, nil
}
