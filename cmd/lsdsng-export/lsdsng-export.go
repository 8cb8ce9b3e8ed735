// lsdsng-export extracts the stored projects of an LSDJ save file into
// individual .lsdsng project files.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/mewkiz/lsdj"
	"github.com/mewkiz/pkg/osutil"
	"github.com/pkg/errors"
)

func main() {
	// Parse command line arguments.
	var (
		// force overwrite project files already present.
		force bool
		// output directory.
		outDir string
	)
	flag.BoolVar(&force, "f", false, "force overwrite")
	flag.StringVar(&outDir, "o", ".", "output directory")
	flag.Parse()
	for _, savPath := range flag.Args() {
		if err := export(savPath, outDir, force); err != nil {
			log.Fatalf("%+v", err)
		}
	}
}

// export writes one .lsdsng per non-empty project of the given save file.
func export(savPath, outDir string, force bool) error {
	sav, err := lsdj.ParseFile(savPath)
	if err != nil {
		return err
	}
	for i := range sav.Projects {
		p := &sav.Projects[i]
		if p.IsEmpty() {
			continue
		}
		name := p.NameString()
		if name == "" {
			name = fmt.Sprintf("slot%02d", i)
		}
		outPath := filepath.Join(outDir, fmt.Sprintf("%s.lsdsng", name))
		if !force && osutil.Exists(outPath) {
			return errors.Errorf("project file %q already present; use -f flag to force overwrite", outPath)
		}
		if err := lsdj.WriteLSDSngFile(outPath, p); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "exported project %d to %q\n", i, outPath)
	}
	return nil
}
