// Convert an mmcif file to an old style PDB file, renaming chains
// whose names will not fit into one column.

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
	fmt.Fprintln(os.Stderr, "usage:", path.Base(os.Args[0]), "[flags] input.cif [output.pdb]")
	long := `Given one argument, write next to the input file, with .pdb
instead of .cif. With -fetch, the argument is a four letter PDB code.`
	fmt.Fprintln(os.Stderr, long)
	flag.PrintDefaults()
}

func main() {
	var flags cif2pdb.CmdFlag
	var infile, outfile string

	flag.BoolVar(&flags.Verbose, "v", false, "verbose, say what is happening")
	flag.StringVar(&flags.LogFile, "log", "", "send log output to a file, or stdout")
	flag.StringVar(&flags.MapFile, "m", "", "write a yaml file with the chain renaming")
	flag.BoolVar(&flags.DryRun, "n", false, "dry run, rename chains but write no pdb file")
	flag.BoolVar(&flags.Fetch, "fetch", false, "input is a PDB code to download")
	flag.IntVar(&flags.SiteNum, "site", 0, "which archive site to download from (0, 1, 2)")
	flag.IntVar(&flags.ModelMax, "model", -1, "highest model number to keep, -1 for all")
	flag.StringVar(&flags.Chains, "chains", "", "comma separated chains to keep, default all")
	flag.StringVar(&flags.Atoms, "atoms", "", "comma separated atom names to keep, default all")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 || flag.NArg() > 2 {
		usage()
		os.Exit(ExitUsageError)
	}
	infile = flag.Arg(0)
	if flag.NArg() > 1 {
		outfile = flag.Arg(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	r := cif2pdb.MyMain(ctx, &flags, infile, outfile)
	stop()
	os.Exit(r)
}
