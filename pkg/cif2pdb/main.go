// Package cif2pdb reads an mmcif file, gives chains single character
// names and writes an old style PDB file. TreeMain does the same for
// every file in a directory tree.
package cif2pdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/andrew-torda/cif2pdb/chainid"
	"github.com/andrew-torda/cif2pdb/pdb"
	"github.com/andrew-torda/cif2pdb/pdb/cmmn"
	"github.com/andrew-torda/cif2pdb/pdb/pdbwrite"
	"github.com/andrew-torda/cif2pdb/pdb/zwrap"
	. "github.com/andrew-torda/cif2pdb/pkg/common"
)

// errors go here. Tests swap it.
var stderr io.Writer = os.Stderr

type CmdFlag struct {
	Verbose  bool   // log what we do
	LogFile  string // send the log here, "stdout" is allowed
	MapFile  string // write the yaml report of renamed chains
	DryRun   bool   // read and rename, but write no pdb file
	Fetch    bool   // input is a four letter code, not a file
	SiteNum  int    // which archive site to fetch from
	ModelMax int    // -1 for all models
	Chains   string // comma separated list of chains to keep
	Atoms    string // comma separated list of atom names to keep
}

// logWhere decides where to send the informational output.
// With no log file and no verbose flag, it is thrown away.
func logWhere(flags *CmdFlag) (*log.Logger, io.Closer, error) {
	var iowriter io.Writer
	var closer io.Closer
	switch { // Decide where to send the logged output
	case flags.LogFile == "stdout":
		iowriter = os.Stdout
	case flags.LogFile != "":
		fp, err := os.OpenFile(flags.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, err
		}
		iowriter, closer = fp, fp
	case flags.Verbose:
		iowriter = stderr
	default:
		iowriter = io.Discard
	}
	return log.New(iowriter, "INFO: ", 0), closer, nil
}

// checkFlags catches values that cannot be passed on to the reader.
func checkFlags(flags *CmdFlag) error {
	if flags.ModelMax < -1 || flags.ModelMax > math.MaxInt16 {
		return fmt.Errorf("model number %d should be -1 or from 0 to %d",
			flags.ModelMax, math.MaxInt16)
	}
	return nil
}

// splitList turns "A,B, C" into a slice. Empty gives nil.
func splitList(s string) []string {
	var ret []string
	for _, x := range strings.Split(s, ",") {
		if x = strings.TrimSpace(x); x != "" {
			ret = append(ret, x)
		}
	}
	return ret
}

// DefaultOutput takes off .gz and then one extension and adds .pdb,
// so dir/1abc.cif.gz becomes dir/1abc.pdb.
func DefaultOutput(infile string) string {
	dir, base := filepath.Split(infile)
	base = zwrap.StripGz(base)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+".pdb")
}

// writeReport writes the yaml rename report.
func writeReport(fname string, r *chainid.Report) error {
	fp, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("map file: %w", err)
	}
	if err := chainid.WriteReport(fp, r); err != nil {
		fp.Close()
		return err
	}
	return fp.Close()
}

// readOptions turns the command line into reader options.
func readOptions(flags *CmdFlag, infoLog *log.Logger) *pdb.Options {
	opts := pdb.DefaultOptions()
	opts.Log = infoLog
	opts.ModelMax = int16(flags.ModelMax)
	opts.Chains = splitList(flags.Chains)
	opts.Atoms = splitList(flags.Atoms)
	if flags.Fetch {
		opts.Src = cmmn.HTTPSrc
		opts.SiteNum = flags.SiteNum
	}
	return opts
}

// convert reads one structure, renames its chains and writes it.
// On a dry run, nothing is written, but we still check that it could be.
func convert(ctx context.Context, flags *CmdFlag, infile, outfile string, infoLog *log.Logger) (chainid.RenameMap, error) {
	s, err := pdb.ReadStructure(ctx, infile, readOptions(flags, infoLog))
	if err != nil {
		return nil, err
	}
	plan, m, err := chainid.Plan(s)
	if err != nil {
		return nil, err
	}
	for _, r := range m.Renamed() {
		infoLog.Printf("Renamed chain '%s' to '%s' for PDB compatibility.", r.Old, r.New)
	}
	chainid.Apply(s, plan)

	if flags.DryRun {
		if err := pdbwrite.Check(s); err != nil {
			return nil, err
		}
		infoLog.Printf("Dry run, %d of %d chains would be renamed, nothing written",
			len(plan), s.NChain())
		return m, nil
	}
	if err := pdbwrite.WriteFile(outfile, s); err != nil {
		return nil, err
	}
	return m, nil
}

// MyMain is the top level main, after parsing the command line.
func MyMain(ctx context.Context, flags *CmdFlag, infile, outfile string) int {
	errLog := log.New(stderr, "ERROR: ", 0)
	if infile == "" {
		errLog.Println("no input file given")
		return ExitUsageError
	}
	if err := checkFlags(flags); err != nil {
		errLog.Println(err)
		return ExitUsageError
	}
	infoLog, closer, err := logWhere(flags)
	if err != nil {
		errLog.Println("log file:", err)
		return ExitUsageError
	}
	if closer != nil {
		defer closer.Close()
	}

	if flags.Fetch {
		if outfile == "" {
			outfile = strings.ToLower(infile) + ".pdb"
		}
	} else {
		if _, err := os.Stat(infile); errors.Is(err, os.ErrNotExist) {
			errLog.Println("Input file not found:", infile)
			return ExitFailure
		}
		if outfile == "" {
			outfile = DefaultOutput(infile)
		}
		if filepath.Clean(outfile) == filepath.Clean(infile) {
			errLog.Println("output would overwrite input:", infile)
			return ExitUsageError
		}
	}
	infoLog.Println("Input CIF:", infile)
	infoLog.Println("Output PDB:", outfile)

	m, err := convert(ctx, flags, infile, outfile, infoLog)
	if err != nil {
		errLog.Println("Failed to convert:", err)
		return ExitFailure
	}

	if flags.MapFile != "" {
		out := outfile
		if flags.DryRun {
			out = ""
		}
		if err := writeReport(flags.MapFile, chainid.NewReport(infile, out, m)); err != nil {
			errLog.Println(err)
			return ExitFailure
		}
		infoLog.Println("Wrote chain map to", flags.MapFile)
	}
	if !flags.DryRun {
		infoLog.Printf("Successfully converted %s to %s", infile, outfile)
	}
	return ExitSuccess
}
