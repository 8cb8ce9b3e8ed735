package song

// encode produces the canonical 32 KiB image of s. The offsets mirror
// decode exactly. The buffer starts zeroed, so only the non-zero fill
// conventions need explicit passes: 0xFF for absent chain phrase and phrase
// instrument references, and the default instrument constant for absent
// instrument payloads.
func encode(s *Song) ([]byte, error) {
	buf := make([]byte, ImageSize)

	buf[offMarker0], buf[offMarker0+1] = 'r', 'b'
	buf[offMarker1], buf[offMarker1+1] = 'r', 'b'
	buf[offMarker2], buf[offMarker2+1] = 'r', 'b'
	buf[offVersion] = s.Version

	// Bank 0.
	for i, phrase := range s.Phrases {
		if phrase == nil {
			continue
		}
		copy(buf[offPhraseNotes+i*StepCount:], phrase.Notes[:])
	}
	copy(buf[offBookmarks:], s.Bookmarks[:])
	copy(buf[offReserved1030:], s.Reserved1030[:])
	for i := range s.Grooves {
		copy(buf[offGrooves+i*StepCount:], s.Grooves[i][:])
	}
	for i, row := range s.Rows {
		buf[offRows+i*4] = row.Pulse1
		buf[offRows+i*4+1] = row.Pulse2
		buf[offRows+i*4+2] = row.Wave
		buf[offRows+i*4+3] = row.Noise
	}
	for i := range s.Words {
		off := offWords + i*2*StepCount
		copy(buf[off:], s.Words[i].Allophones[:])
		copy(buf[off+StepCount:], s.Words[i].Lengths[:])
	}
	for i := range s.WordNames {
		copy(buf[offWordNames+i*WordNameLength:], s.WordNames[i][:])
	}
	copy(buf[offReserved1FBA:], s.Reserved1FBA[:])

	// Bank 1.
	copy(buf[offReserved2000:], s.Reserved2000[:])
	for i, chain := range s.Chains {
		if chain == nil {
			// Absent chains read back as empty steps.
			for j := 0; j < StepCount; j++ {
				buf[offChainPhrases+i*StepCount+j] = 0xFF
			}
			continue
		}
		setBit(buf[offChainAlloc:], i)
		copy(buf[offChainPhrases+i*StepCount:], chain.Phrases[:])
		copy(buf[offChainTransposes+i*StepCount:], chain.Transposes[:])
	}
	for i, instr := range s.Instruments {
		if instr == nil {
			copy(buf[offInstrParams+i*16:], DefaultInstrument[:])
			continue
		}
		buf[offInstrAlloc+i] = 1
		copy(buf[offInstrNames+i*InstrumentNameLength:], instr.Name[:])
		copy(buf[offInstrParams+i*16:], instr.Params[:])
	}
	for i, table := range s.Tables {
		if table == nil {
			continue
		}
		buf[offTableAlloc+i] = 1
		copy(buf[offTableEnvelopes+i*StepCount:], table.Envelopes[:])
		copy(buf[offTableTransposes+i*StepCount:], table.Transposes[:])
		for j := 0; j < StepCount; j++ {
			b, err := encodeCommand(table.Commands1[j], s.Version)
			if err != nil {
				return nil, err
			}
			buf[offTableCommands1+i*StepCount+j] = b
			if b, err = encodeCommand(table.Commands2[j], s.Version); err != nil {
				return nil, err
			}
			buf[offTableCommands2+i*StepCount+j] = b
		}
		copy(buf[offTableValues1+i*StepCount:], table.Values1[:])
		copy(buf[offTableValues2+i*StepCount:], table.Values2[:])
	}
	for i := range s.Synths {
		copy(buf[offSynths+i*16:], s.Synths[i].Params[:])
		if s.Synths[i].OverwriteLock {
			setWaveLock(buf[offWaveLocks:offWaveLocks+2], i)
		}
	}
	buf[offWorkHours] = s.Meta.WorkHours
	buf[offWorkMinutes] = s.Meta.WorkMinutes
	buf[offTempo] = s.Meta.Tempo
	buf[offTranspose] = s.Meta.Transpose
	buf[offTotalDays] = s.Meta.TotalDays
	buf[offTotalHours] = s.Meta.TotalHours
	buf[offTotalMinutes] = s.Meta.TotalMinutes
	buf[offReserved3FB9] = s.Meta.Reserved3FB9
	buf[offKeyDelay] = s.Meta.KeyDelay
	buf[offKeyRepeat] = s.Meta.KeyRepeat
	buf[offFont] = s.Meta.Font
	buf[offSync] = s.Meta.Sync
	buf[offColorSet] = s.Meta.ColorSet
	buf[offReserved3FBF] = s.Meta.Reserved3FBF
	buf[offClone] = s.Meta.Clone
	buf[offFileChanged] = s.Meta.FileChanged
	buf[offPowerSave] = s.Meta.PowerSave
	buf[offPreListen] = s.Meta.PreListen
	copy(buf[offReserved3FC6:], s.Reserved3FC6[:])

	// Bank 2.
	for i, phrase := range s.Phrases {
		if phrase == nil {
			continue
		}
		setBit(buf[offPhraseAlloc:], i)
		copy(buf[offPhraseCommands+i*StepCount:], phrase.Commands[:])
		copy(buf[offPhraseCommandValues+i*StepCount:], phrase.CommandValues[:])
	}
	copy(buf[offReserved5FE0:], s.Reserved5FE0[:])

	// Bank 3.
	for i := range s.Waves {
		copy(buf[offWaves+i*16:], s.Waves[i][:])
	}
	for i, phrase := range s.Phrases {
		if phrase == nil {
			for j := 0; j < StepCount; j++ {
				buf[offPhraseInstruments+i*StepCount+j] = 0xFF
			}
			continue
		}
		copy(buf[offPhraseInstruments+i*StepCount:], phrase.Instruments[:])
	}
	copy(buf[offReserved7FF2:], s.Reserved7FF2[:])

	return buf, nil
}
