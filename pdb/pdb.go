// This is the upper level for reading PDB files.
// Decide if a file is compressed or not, and what format
// we are going to read. Then call the mmcif reader.

package pdb

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andrew-torda/cif2pdb/pdb/cmmn"
	"github.com/andrew-torda/cif2pdb/pdb/mapfile"
	"github.com/andrew-torda/cif2pdb/pdb/mmcif"
	"github.com/andrew-torda/cif2pdb/pdb/zwrap"
)

const (
	OldFmt byte = iota
	MmcifFmt
	UnkFmt
)

var (
	ErrOldFormat     = errors.New("input is in old PDB format, not mmcif")
	ErrUnknownFormat = errors.New("cannot recognise format")
)

// Options says where to read from and what to keep.
type Options struct {
	Src      byte     // cmmn.FileSrc or cmmn.HTTPSrc
	SiteNum  int      // Which archive site to download from
	ModelMax int16    // Highest model to keep, -1 for all
	Chains   []string // Empty means all chains
	Atoms    []string // Empty means all atoms
	Log      *log.Logger
}

// DefaultOptions reads everything from a file.
func DefaultOptions() *Options {
	return &Options{Src: cmmn.FileSrc, ModelMax: -1}
}

func (o *Options) logf(format string, v ...interface{}) {
	if o.Log != nil {
		o.Log.Printf(format, v...)
	}
}

// lookInFile opens a file and guesses if it is in old PDB format or
// in mmcif.
func lookInFile(fname string) (byte, error) {
	pdbWords := []string{"HEADER", "COMPND", "SOURCE", "REMARK", "SEQRES", "HETATM", "ATOM"}
	mmcifWords := []string{"data_", "_entry.id", "loop_"}
	fp, err := mapfile.Open(fname)
	if err != nil {
		return UnkFmt, err
	}
	rdr, e2 := zwrap.WrapMaybe(fp)
	if e2 != nil {
		fp.Close()
		return UnkFmt, errors.New("reading " + fname + " " + e2.Error())
	}
	defer rdr.Close()

	const maxTestLines = 5000
	scnnr := bufio.NewScanner(rdr)
	for i := 0; i < maxTestLines && scnnr.Scan(); i++ {
		s := scnnr.Text()
		for _, w := range mmcifWords {
			if strings.HasPrefix(s, w) {
				return MmcifFmt, nil
			}
		}
		for _, w := range pdbWords {
			if strings.HasPrefix(s, w) {
				return OldFmt, nil
			}
		}
	}
	return UnkFmt, fmt.Errorf("%s: %w", fname, ErrUnknownFormat)
}

// oldOrMmcif decides what format we will use.
// Maybe is uses the file name or maybe it peeks inside.
// We strip .gz before asking for the extension, since a.pdb.gz
// would otherwise give us .gz.
func oldOrMmcif(fname string) (byte, error) {
	ext := strings.ToLower(filepath.Ext(zwrap.StripGz(filepath.Base(fname))))
	switch ext {
	case ".pdb", ".ent":
		return OldFmt, nil
	case ".cif", ".mmcif":
		return MmcifFmt, nil
	}
	return lookInFile(fname)
}

// openFile maps a file and puts a decompressor in front of it if
// it is gzipped.
func openFile(fname string) (io.ReadCloser, error) {
	typ, err := oldOrMmcif(fname)
	if err != nil {
		return nil, err
	}
	if typ == OldFmt {
		return nil, fmt.Errorf("%s: %w", fname, ErrOldFormat)
	}
	m, err := mapfile.Open(fname)
	if err != nil {
		return nil, err
	}
	rdr, err := zwrap.WrapMaybe(m)
	if err != nil {
		m.Close()
		return nil, errors.New("reading " + fname + " " + err.Error())
	}
	return rdr, nil
}

const (
	itemResRefine = "_refine.ls_d_res_high"
	itemResData   = "_reflns.d_resolution_high"
)

// resolution takes the refinement resolution, or failing that, the
// one from data collection. Zero if neither is there or usable.
func resolution(data map[string]string) float32 {
	for _, k := range []string{itemResRefine, itemResData} {
		v := data[k]
		if v == "" || v == "." || v == "?" {
			continue
		}
		if f, err := strconv.ParseFloat(v, 32); err == nil && f > 0 {
			return float32(f)
		}
	}
	return 0
}

// ReadStructure takes a filename, or with HTTPSrc a four letter code,
// and reads it as an mmcif file. ctx is only used for downloads.
func ReadStructure(ctx context.Context, fname string, opts *Options) (*cmmn.Structure, error) {
	cmmnWanted := []string{
		"_pdbx_database_status.entry_id",
		itemResRefine,
		itemResData,
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	var rdr io.ReadCloser
	var err error
	switch opts.Src {
	case cmmn.FileSrc:
		rdr, err = openFile(fname)
	case cmmn.HTTPSrc:
		rdr, err = getHTTP(ctx, fname, opts.SiteNum)
	default:
		return nil, errors.New("programming bug, unknown source type")
	}
	if err != nil {
		return nil, err
	}
	defer rdr.Close()
	mr := mmcif.NewMmcifReader(rdr)
	mr.AddItems(cmmnWanted)
	mr.SetChains(opts.Chains)
	mr.SetAtoms(opts.Atoms)
	mr.SetModelMax(opts.ModelMax)
	md, err := mr.DoFile()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	s, err := md.Structure()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	if s.ID == "" {
		s.ID = md.Data["_pdbx_database_status.entry_id"]
	}
	if s.ID == "" && opts.Src == cmmn.HTTPSrc {
		s.ID = strings.ToUpper(fname)
	}
	s.Resolution = resolution(md.Data)
	opts.logf("read %s: %d chains, %d atoms, %d models",
		fname, s.NChain(), s.NAtom(), len(s.Models()))
	return s, nil
}
