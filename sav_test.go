package lsdj_test

import (
	"bytes"
	"io"
	"reflect"
	"testing"

	"github.com/mewkiz/lsdj"
	"github.com/mewkiz/lsdj/compress"
	"github.com/mewkiz/lsdj/internal/memio"
	"github.com/mewkiz/lsdj/song"
	"github.com/pkg/errors"
)

// testProjectSong returns a song whose content differs per seed, populated
// enough to occupy several blocks once compressed.
func testProjectSong(seed uint8) *song.Song {
	s := song.New()
	s.Meta.Tempo = 100 + seed
	for i := 0; i < 32; i++ {
		phrase := &song.Phrase{}
		for j := range phrase.Notes {
			phrase.Notes[j] = seed + uint8(i*song.StepCount+j)
			phrase.Instruments[j] = 0xFF
			phrase.Commands[j] = uint8((i + j) % 5)
			phrase.CommandValues[j] = seed ^ uint8(j*17)
		}
		s.Phrases[i] = phrase
	}
	for i := 0; i < 8; i++ {
		chain := &song.Chain{}
		for j := range chain.Phrases {
			chain.Phrases[j] = uint8((i*song.StepCount + j) % 32)
		}
		s.Chains[i] = chain
	}
	s.Rows[0] = song.Row{Pulse1: 0, Pulse2: 1, Wave: 2, Noise: 3}
	return s
}

// incompressibleSong returns a song whose image barely compresses, for
// exhausting the block region.
func incompressibleSong(seed uint32) *song.Song {
	s := song.New()
	x := seed
	next := func() uint8 {
		x = x*1664525 + 1013904223
		return uint8(x >> 24)
	}
	for i := range s.Phrases {
		phrase := &song.Phrase{}
		for j := 0; j < song.StepCount; j++ {
			phrase.Notes[j] = next()
			phrase.Instruments[j] = next()
			phrase.Commands[j] = next()
			phrase.CommandValues[j] = next()
		}
		s.Phrases[i] = phrase
	}
	for i := range s.Chains {
		chain := &song.Chain{}
		for j := 0; j < song.StepCount; j++ {
			chain.Phrases[j] = next()
			chain.Transposes[j] = next()
		}
		s.Chains[i] = chain
	}
	for i := range s.Waves {
		var w song.Wave
		for j := range w {
			w[j] = next()
		}
		s.Waves[i] = w
	}
	return s
}

func TestEmptySaveRoundTrip(t *testing.T) {
	sav := lsdj.New()
	buf := new(bytes.Buffer)
	if err := lsdj.Encode(buf, sav); err != nil {
		t.Fatalf("unable to encode save; %v", err)
	}
	if buf.Len() != lsdj.SaveSize {
		t.Fatalf("invalid save size; expected %d, got %d", lsdj.SaveSize, buf.Len())
	}
	got, err := lsdj.Parse(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("unable to parse encoded save; %v", err)
	}
	if !reflect.DeepEqual(sav, got) {
		t.Error("save mismatch after round trip")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	sav := lsdj.New()
	sav.Active = 1
	sav.WorkingSong = testProjectSong(9)
	sav.Projects[0].SetName("FIRST")
	sav.Projects[0].Version = 2
	sav.Projects[0].SetSong(testProjectSong(1))
	sav.Projects[1].SetName("SECOND")
	sav.Projects[1].Version = 7
	sav.Projects[1].SetSong(testProjectSong(2))
	sav.Projects[31].SetName("LAST")
	sav.Projects[31].Version = 1
	sav.Projects[31].SetSong(testProjectSong(3))

	buf := new(bytes.Buffer)
	if err := lsdj.Encode(buf, sav); err != nil {
		t.Fatalf("unable to encode save; %v", err)
	}
	got, err := lsdj.Parse(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("unable to parse encoded save; %v", err)
	}
	if !reflect.DeepEqual(sav, got) {
		t.Error("save mismatch after round trip")
	}
}

func TestFirstFitAllocation(t *testing.T) {
	sav := lsdj.New()
	sav.Projects[0].SetName("A")
	sav.Projects[0].SetSong(testProjectSong(1))
	sav.Projects[1].SetName("B")
	sav.Projects[1].SetSong(testProjectSong(2))

	// Expected block counts, from compressing the same images standalone.
	want := make([]int, 2)
	for i := 0; i < 2; i++ {
		image := new(bytes.Buffer)
		if err := song.Encode(image, sav.Projects[i].Song); err != nil {
			t.Fatalf("unable to encode song; %v", err)
		}
		blocks := memio.NewBuffer(make([]byte, compress.BlockCount*compress.BlockSize))
		n, err := compress.Compress(image.Bytes(), blocks, 0)
		if err != nil {
			t.Fatalf("unable to compress song; %v", err)
		}
		want[i] = n
	}

	buf := new(bytes.Buffer)
	if err := lsdj.Encode(buf, sav); err != nil {
		t.Fatalf("unable to encode save; %v", err)
	}
	// Block-owner table at 0x8141: project 0 first, project 1 directly
	// after, the rest free.
	owners := buf.Bytes()[0x8141 : 0x8141+compress.BlockCount]
	for i, owner := range owners {
		var expected byte = 0xFF
		switch {
		case i < want[0]:
			expected = 0
		case i < want[0]+want[1]:
			expected = 1
		}
		if owner != expected {
			t.Fatalf("block %d owner mismatch; expected %#02x, got %#02x", i, expected, owner)
		}
	}
}

func TestBadInitMarker(t *testing.T) {
	buf := new(bytes.Buffer)
	if err := lsdj.Encode(buf, lsdj.New()); err != nil {
		t.Fatalf("unable to encode save; %v", err)
	}
	raw := buf.Bytes()
	// "jk" lives at 0x813E; corrupt its first byte.
	raw[0x813E] = 'X'
	_, err := lsdj.Parse(bytes.NewReader(raw))
	if err == nil {
		t.Fatal("expected error for corrupted init marker, got none")
	}
	ferr, ok := errors.Cause(err).(song.FormatError)
	if !ok {
		t.Fatalf("expected FormatError, got %T: %v", err, err)
	}
	if !bytes.Contains([]byte(ferr.Error()), []byte("init")) {
		t.Errorf("error does not identify the init check; got %q", ferr.Error())
	}
}

func TestSaveCapacity(t *testing.T) {
	sav := lsdj.New()
	for i := 0; i < 5; i++ {
		sav.Projects[i].SetName("BIG")
		sav.Projects[i].SetSong(incompressibleSong(uint32(i + 1)))
	}
	err := lsdj.Encode(new(bytes.Buffer), sav)
	if err == nil {
		t.Fatal("expected capacity error, got none")
	}
	if _, ok := errors.Cause(err).(compress.CapacityError); !ok {
		t.Fatalf("expected CapacityError, got %T: %v", err, err)
	}
}

func TestProjectLifecycle(t *testing.T) {
	sav := lsdj.New()
	if sav.Allocated(0) {
		t.Error("fresh save reports slot 0 allocated")
	}
	sav.Projects[0].SetName("TUNE")
	sav.Projects[0].Version = 1
	sav.Projects[0].SetSong(song.New())
	if !sav.Allocated(0) {
		t.Error("slot 0 not allocated after song assignment")
	}
	if got := sav.Projects[0].NameString(); got != "TUNE" {
		t.Errorf("name mismatch; expected %q, got %q", "TUNE", got)
	}
	sav.Projects[0].Clear()
	if sav.Allocated(0) {
		t.Error("slot 0 still allocated after clear")
	}
	if sav.Projects[0].Version != 0 {
		t.Errorf("version not reset on clear; got %d", sav.Projects[0].Version)
	}
	if got := sav.Projects[0].NameString(); got != "" {
		t.Errorf("name not reset on clear; got %q", got)
	}
	if sav.Allocated(-1) || sav.Allocated(lsdj.ProjectCount) {
		t.Error("out-of-range slots report allocated")
	}
}

func TestParseFromFileLikeStream(t *testing.T) {
	// Parse drives any io.ReadSeeker; exercise it through memio, the
	// in-memory stream implementation the encoder itself uses.
	sav := lsdj.New()
	sav.Projects[4].SetName("MEM")
	sav.Projects[4].SetSong(testProjectSong(4))
	buf := new(bytes.Buffer)
	if err := lsdj.Encode(buf, sav); err != nil {
		t.Fatalf("unable to encode save; %v", err)
	}
	stream := memio.NewBuffer(buf.Bytes())
	got, err := lsdj.Parse(stream)
	if err != nil {
		t.Fatalf("unable to parse save; %v", err)
	}
	if !reflect.DeepEqual(sav, got) {
		t.Error("save mismatch after round trip")
	}
	var _ io.ReadWriteSeeker = stream
}
