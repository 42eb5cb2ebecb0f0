// Package pdbwrite writes a structure in the old fixed column PDB
// format. Chain names must already be single characters. Use
// chainid.Remap first if they are not.
package pdbwrite

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/andrew-torda/cif2pdb/chainid"
	"github.com/andrew-torda/cif2pdb/pdb/cmmn"
	"github.com/andrew-torda/cif2pdb/pdb/zwrap"
)

var (
	ErrChainID    = errors.New("chain name is not a single PDB character")
	ErrFieldWidth = errors.New("value too wide for PDB column")
)

const (
	maxSerial = 100000 // 5 columns
	maxResNum = 10000  // 4 columns
	titleLen  = 70     // text per TITLE line
)

// Open limits for numbers, after rounding to the printed precision.
const (
	xyzLo, xyzHi = -999.9995, 9999.9995 // %8.3f
	occLo, occHi = -99.995, 999.995     // %6.2f, occupancy and B
)

// One line, 80 columns. The blank before the element is the segment id.
const atomFmt = "%-6s%5d %-4s%c%3s %c%4d%c   %8.3f%8.3f%8.3f%6.2f%6.2f      %4s%2s%2s\n"
const terFmt = "TER   %5d      %3s %c%4d%c\n"

// field checks one string against its column width.
func field(what, s string, width int) error {
	if utf8.RuneCountInString(s) > width {
		return fmt.Errorf("%w: %s %q longer than %d", ErrFieldWidth, what, s, width)
	}
	return nil
}

// number checks a value will not overflow its column.
func number(what string, v float32, lo, hi float64) error {
	if f := float64(v); f <= lo || f >= hi {
		return fmt.Errorf("%w: %s %g", ErrFieldWidth, what, v)
	}
	return nil
}

// Check looks for anything that cannot go into a PDB file, without
// writing anything.
func Check(s *cmmn.Structure) error {
	for _, c := range s.Chains {
		if !chainid.Valid(c.ChainID) {
			return fmt.Errorf("%w: %q", ErrChainID, c.ChainID)
		}
		for i := range c.Atoms {
			a := &c.Atoms[i]
			if err := field("atom name", a.Name, 4); err != nil {
				return err
			}
			if err := field("residue name", a.ResName, 3); err != nil {
				return err
			}
			if err := field("element", a.Element, 2); err != nil {
				return err
			}
			if err := field("charge", a.Charge, 2); err != nil {
				return err
			}
			xyz := c.Xyz(i)
			for _, x := range []struct {
				what   string
				v      float32
				lo, hi float64
			}{
				{"x", xyz.X, xyzLo, xyzHi}, {"y", xyz.Y, xyzLo, xyzHi}, {"z", xyz.Z, xyzLo, xyzHi},
				{"occupancy", a.Occ, occLo, occHi}, {"B factor", a.Bfac, occLo, occHi},
			} {
				if err := number(x.what, x.v, x.lo, x.hi); err != nil {
					return fmt.Errorf("%w in chain %s residue %d", err, c.ChainID, a.ResNum)
				}
			}
		}
	}
	return nil
}

// atomName pads a name the way PDB files do. Names of one letter
// elements start in column 14, so " CA " is carbon alpha and "CA  "
// would be calcium.
func atomName(a *cmmn.Atom) string {
	if len(a.Name) < 4 && len(a.Element) < 2 && a.Name != "" {
		if c := a.Name[0]; c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' {
			return " " + a.Name
		}
	}
	return a.Name
}

// resNum squeezes a residue number into four columns.
func resNum(n int) int {
	switch {
	case n == cmmn.BrokenResNum:
		return 0
	case n >= maxResNum || n < -999:
		return ((n % maxResNum) + maxResNum) % maxResNum
	}
	return n
}

// blankIfZero turns a missing alt loc or insertion code into a space.
func blankIfZero(b byte) byte {
	if b == 0 {
		return ' '
	}
	return b
}

type writer struct {
	w      *bufio.Writer
	serial int // last serial written in this model
}

func (wr *writer) header(s *cmmn.Structure) {
	if s.ID != "" {
		fmt.Fprintf(wr.w, "HEADER    %-40s%9s   %-4s\n", "", "", s.ID)
	}
	title := strings.Join(strings.Fields(s.Title), " ")
	for n := 1; title != ""; n++ {
		cut := len(title)
		if cut > titleLen {
			cut = titleLen
			for cut > 0 && !utf8.RuneStart(title[cut]) {
				cut--
			}
			if cut == 0 { // not utf-8
				cut = titleLen
			}
		}
		line := title[:cut]
		title = title[cut:]
		if n == 1 {
			fmt.Fprintf(wr.w, "TITLE     %s\n", line)
		} else {
			fmt.Fprintf(wr.w, "TITLE   %2d%s\n", n, line)
		}
	}
	if s.Resolution > 0 {
		fmt.Fprintln(wr.w, "REMARK   2")
		fmt.Fprintf(wr.w, "REMARK   2 RESOLUTION. %7.2f ANGSTROMS.\n", s.Resolution)
	}
}

func (wr *writer) atom(chn byte, a *cmmn.Atom, xyz cmmn.Xyz) {
	wr.serial++
	rec := "ATOM"
	if a.Het {
		rec = "HETATM"
	}
	fmt.Fprintf(wr.w, atomFmt, rec, wr.serial%maxSerial, atomName(a),
		blankIfZero(a.AltLoc), a.ResName, chn, resNum(a.ResNum), blankIfZero(a.InsCode),
		xyz.X, xyz.Y, xyz.Z, a.Occ, a.Bfac, "", strings.ToUpper(a.Element), a.Charge)
}

// ter closes a chain. It takes a serial number like an atom.
func (wr *writer) ter(chn byte, a *cmmn.Atom) {
	wr.serial++
	fmt.Fprintf(wr.w, terFmt, wr.serial%maxSerial, a.ResName, chn,
		resNum(a.ResNum), blankIfZero(a.InsCode))
}

// model writes the atoms of one model, chain by chain. A chain that
// ends with an ATOM record gets a TER. Ligands and water do not.
func (wr *writer) model(s *cmmn.Structure, mdl int16) {
	wr.serial = 0
	for _, c := range s.Chains {
		chn := c.ChainID[0]
		var last *cmmn.Atom
		for i := range c.Atoms {
			a := &c.Atoms[i]
			if a.MdlNum != mdl {
				continue
			}
			wr.atom(chn, a, c.Xyz(i))
			last = a
		}
		if last != nil && !last.Het {
			wr.ter(chn, last)
		}
	}
}

// Write puts s on w in PDB format. Nothing is written if a chain name
// or some field will not fit.
// Atoms are numbered from 1 in each model. MODEL and ENDMDL records
// only appear if there is more than one model.
func Write(w io.Writer, s *cmmn.Structure) error {
	if err := Check(s); err != nil {
		return err
	}
	wr := &writer{w: bufio.NewWriter(w)}
	wr.header(s)
	mdls := s.Models()
	for _, m := range mdls {
		if len(mdls) > 1 {
			fmt.Fprintf(wr.w, "MODEL     %4d\n", m)
		}
		wr.model(s, m)
		if len(mdls) > 1 {
			fmt.Fprintln(wr.w, "ENDMDL")
		}
	}
	fmt.Fprintln(wr.w, "END")
	return wr.w.Flush()
}

// syncCloser makes sure the data is on disk before we rename.
type syncCloser struct{ *os.File }

func (f syncCloser) Close() error {
	if err := f.Sync(); err != nil {
		f.File.Close()
		return err
	}
	return f.File.Close()
}

// WriteFile writes to a temporary file in the same directory, then
// renames it, so fname is either complete or untouched. If fname ends
// in .gz, the output is compressed.
func WriteFile(fname string, s *cmmn.Structure) error {
	if err := Check(s); err != nil {
		return err
	}
	dir := filepath.Dir(fname)
	tmp, err := os.CreateTemp(dir, ".cif2pdb-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	fail := func(err error) error {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", fname, err)
	}
	w := zwrap.WrapWriter(syncCloser{tmp}, zwrap.HasGz(fname))
	if err := Write(w, s); err != nil {
		w.Close()
		return fail(err)
	}
	if err := w.Close(); err != nil {
		return fail(err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fail(err)
	}
	if err := os.Rename(tmpPath, fname); err != nil {
		return fail(err)
	}
	return nil
}
