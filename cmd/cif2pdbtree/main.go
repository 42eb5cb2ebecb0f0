// Convert every mmcif file in a directory tree, like a local copy of
// the PDB, to old style PDB files.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"

	"github.com/andrew-torda/cif2pdb/pkg/cif2pdb"
	. "github.com/andrew-torda/cif2pdb/pkg/common"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage:", path.Base(os.Args[0]), "[flags] indir outdir")
	flag.PrintDefaults()
}

func main() {
	var flags cif2pdb.TreeFlag
	flag.IntVar(&flags.NWorker, "r", cif2pdb.NWorkerDflt, "num converting threads")
	flag.IntVar(&flags.MaxFile, "f", 0, "max num files to convert, 0 for all")
	flag.IntVar(&flags.MaxErr, "e", cif2pdb.MaxErrDflt, "give up after this many broken files, 0 never")
	flag.StringVar(&flags.CPUProf, "c", "", "write cpuprofile to file")
	flag.BoolVar(&flags.Verbose, "v", false, "verbose, say what is happening")
	flag.StringVar(&flags.LogFile, "log", "", "send log output to a file, or stdout")
	flag.StringVar(&flags.MapFile, "m", "", "write a yaml file with the chain renaming of every file")
	flag.BoolVar(&flags.DryRun, "n", false, "dry run, rename chains but write no pdb files")
	flag.IntVar(&flags.ModelMax, "model", -1, "highest model number to keep, -1 for all")
	flag.StringVar(&flags.Chains, "chains", "", "comma separated chains to keep, default all")
	flag.StringVar(&flags.Atoms, "atoms", "", "comma separated atom names to keep, default all")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 2 {
		usage()
		os.Exit(ExitUsageError)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	r := cif2pdb.TreeMain(ctx, &flags, flag.Arg(0), flag.Arg(1))
	stop()
	os.Exit(r)
}
