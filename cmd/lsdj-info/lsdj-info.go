// lsdj-info lists the contents of LSDJ save files: the working song, the
// active project, and every stored project with its name, version and
// allocation state.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mewkiz/lsdj"
)

// flagVerbose specifies if per-project song details should be printed.
var flagVerbose bool

func init() {
	flag.BoolVar(&flagVerbose, "v", false, "Print per-project song details.")
	flag.Usage = usage
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: lsdj-info [OPTION]... FILE...")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
}

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	for _, path := range flag.Args() {
		if err := info(path); err != nil {
			fmt.Fprintf(os.Stderr, "%+v\n", err)
			os.Exit(1)
		}
	}
}

// info prints a summary of the save file at the given path.
func info(path string) error {
	sav, err := lsdj.ParseFile(path)
	if err != nil {
		return err
	}
	fmt.Printf("%s:\n", path)
	fmt.Printf("  working song: format version %d, tempo %d\n", sav.WorkingSong.Version, sav.WorkingSong.Meta.Tempo)
	fmt.Printf("  active project: %d\n", sav.Active)
	for i := range sav.Projects {
		p := &sav.Projects[i]
		if p.IsEmpty() {
			continue
		}
		fmt.Printf("  project %2d: %-8s (version %d)\n", i, p.NameString(), p.Version)
		if flagVerbose {
			printSong(p)
		}
	}
	return nil
}

// printSong prints the entity usage of a project's song.
func printSong(p *lsdj.Project) {
	var chains, phrases, instruments, tables int
	for _, c := range p.Song.Chains {
		if c != nil {
			chains++
		}
	}
	for _, ph := range p.Song.Phrases {
		if ph != nil {
			phrases++
		}
	}
	for _, instr := range p.Song.Instruments {
		if instr != nil {
			instruments++
		}
	}
	for _, t := range p.Song.Tables {
		if t != nil {
			tables++
		}
	}
	fmt.Printf("      format version: %d\n", p.Song.Version)
	fmt.Printf("      tempo: %d\n", p.Song.Meta.Tempo)
	fmt.Printf("      chains: %d, phrases: %d, instruments: %d, tables: %d\n", chains, phrases, instruments, tables)
	fmt.Printf("      work time: %dh%02dm\n", p.Song.Meta.WorkHours, p.Song.Meta.WorkMinutes)
}
