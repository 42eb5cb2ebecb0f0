package cif2pdb

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strings"
	"sync"

	"github.com/andrew-torda/cif2pdb/chainid"
	"github.com/andrew-torda/cif2pdb/pdb/zwrap"
	. "github.com/andrew-torda/cif2pdb/pkg/common"
)

// TreeFlag has the options for converting a whole directory tree,
// like a mirror of the PDB.
type TreeFlag struct {
	CmdFlag
	NWorker int    // number of converting goroutines
	MaxFile int    // stop after this many files, 0 for no limit
	MaxErr  int    // give up after this many broken files, 0 for no limit
	CPUProf string // write a cpu profile here
}

const (
	NWorkerDflt = 3
	MaxErrDflt  = 5 // broken files before we give up
)

// fileRes gives us the name of the next file and where its output goes,
// but also has room for an error from walking the tree.
type fileRes struct {
	name string
	out  string
	err  error
}

// rslt is what a worker sends back for one file.
type rslt struct {
	name string
	out  string
	m    chainid.RenameMap
	err  error
}

// isCif says if a file name looks like something we can convert.
func isCif(name string) bool {
	ext := strings.ToLower(filepath.Ext(zwrap.StripGz(name)))
	return ext == ".cif" || ext == ".mmcif"
}

// treeOutput puts the output for name at the same place under outdir
// as name is under indir.
func treeOutput(indir, outdir, name string) (string, error) {
	rel, err := filepath.Rel(indir, name)
	if err != nil {
		return "", err
	}
	return filepath.Join(outdir, DefaultOutput(rel)), nil
}

// nextFile walks the tree under indir and sends the names of mmcif
// files down nmChan. It does not go into skipDir, so we do not trip over
// our own output. After maxFile files we stop, unless maxFile <= 0.
// Two inputs like 1abc.cif and 1abc.cif.gz would both write
// 1abc.pdb. The first one found keeps it and the second is sent as an
// error.
func nextFile(ctx context.Context, nmChan chan<- fileRes, indir, outdir, skipDir string, maxFile int) {
	defer close(nmChan)
	var n int
	owner := make(map[string]string) // output -> input
	send := func(f fileRes) error {
		select {
		case nmChan <- f:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	err := filepath.WalkDir(indir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == indir {
				return nil
			}
			if abs, _ := filepath.Abs(path); abs == skipDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !isCif(d.Name()) {
			return nil
		}
		if maxFile > 0 && n >= maxFile {
			return filepath.SkipAll
		}
		out, err := treeOutput(indir, outdir, path)
		if err != nil {
			return send(fileRes{name: path, err: err})
		}
		if prev, ok := owner[out]; ok {
			return send(fileRes{name: path,
				err: fmt.Errorf("output %s already produced by %s", out, prev)})
		}
		owner[out] = path
		n++
		return send(fileRes{name: path, out: out})
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		select {
		case nmChan <- fileRes{err: err}:
		case <-ctx.Done():
		}
	}
}

// treeWorker converts files until the names run out. After a cancel,
// it only empties the name channel.
func treeWorker(ctx context.Context, flags *CmdFlag, nmChan <-chan fileRes, res chan<- rslt,
	wg *sync.WaitGroup, infoLog *log.Logger) {
	defer wg.Done()
	for f := range nmChan {
		if f.err != nil {
			res <- rslt{name: f.name, err: f.err}
			continue
		}
		if ctx.Err() != nil {
			continue
		}
		r := rslt{name: f.name, out: f.out}
		if !flags.DryRun {
			r.err = os.MkdirAll(filepath.Dir(r.out), 0o755)
		}
		if r.err == nil {
			infoLog.Println("Input CIF:", r.name)
			r.m, r.err = convert(ctx, flags, r.name, r.out, infoLog)
		}
		res <- r
	}
}

// TreeMain converts every mmcif file under indir and puts the pdb files
// under outdir, in the same layout. One broken file does not stop the
// others, but after flags.MaxErr of them we give up.
func TreeMain(ctx context.Context, flags *TreeFlag, indir, outdir string) int {
	errLog := log.New(stderr, "ERROR: ", 0)
	if indir == "" || outdir == "" {
		errLog.Println("need an input and an output directory")
		return ExitUsageError
	}
	if flags.Fetch {
		errLog.Println("cannot fetch a directory tree")
		return ExitUsageError
	}
	if err := checkFlags(&flags.CmdFlag); err != nil {
		errLog.Println(err)
		return ExitUsageError
	}
	infoLog, closer, err := logWhere(&flags.CmdFlag)
	if err != nil {
		errLog.Println("log file:", err)
		return ExitUsageError
	}
	if closer != nil {
		defer closer.Close()
	}
	if fi, err := os.Stat(indir); err != nil || !fi.IsDir() {
		errLog.Println("Input directory not found:", indir)
		return ExitFailure
	}
	absOut, err := filepath.Abs(outdir)
	if err != nil {
		errLog.Println(err)
		return ExitFailure
	}

	if flags.CPUProf != "" {
		fprof, err := os.Create(flags.CPUProf)
		if err != nil {
			errLog.Println(err)
			return ExitFailure
		}
		defer fprof.Close()
		if err := pprof.StartCPUProfile(fprof); err != nil {
			errLog.Println(err)
			return ExitFailure
		}
		defer pprof.StopCPUProfile()
	}

	var rs *chainid.ReportStream
	if flags.MapFile != "" {
		fp, err := os.Create(flags.MapFile)
		if err != nil {
			errLog.Println("map file:", err)
			return ExitFailure
		}
		defer fp.Close()
		rs = chainid.NewReportStream(fp)
	}

	nWorker := flags.NWorker
	if nWorker < 1 {
		nWorker = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	nmChan := make(chan fileRes)
	res := make(chan rslt)
	go nextFile(ctx, nmChan, indir, outdir, absOut, flags.MaxFile)
	var wg sync.WaitGroup
	for i := 0; i < nWorker; i++ {
		wg.Add(1)
		go treeWorker(ctx, &flags.CmdFlag, nmChan, res, &wg, infoLog)
	}
	go func() {
		wg.Wait()
		close(res)
	}()

	var nDone, nErr int
	for r := range res {
		if r.err != nil {
			nErr++
			if r.name == "" {
				errLog.Println("walking", indir+":", r.err)
			} else {
				errLog.Println("Failed to convert", r.name+":", r.err)
			}
			if flags.MaxErr > 0 && nErr == flags.MaxErr {
				errLog.Println("giving up after", nErr, "errors")
				cancel()
			}
			continue
		}
		nDone++
		out := r.out
		if flags.DryRun {
			out = ""
		} else {
			infoLog.Printf("Successfully converted %s to %s", r.name, r.out)
		}
		if rs != nil {
			if err := rs.Write(chainid.NewReport(r.name, out, r.m)); err != nil {
				errLog.Println(err)
				nErr++
			}
		}
	}
	if rs != nil {
		if err := rs.Close(); err != nil {
			errLog.Println(err)
			nErr++
		}
	}
	infoLog.Printf("converted %d files, %d errors", nDone, nErr)
	if nErr > 0 || ctx.Err() != nil {
		return ExitFailure
	}
	return ExitSuccess
}
