// This file is for parsing atom_site lines and putting atoms into a
// cmmn.Structure.
package mmcif

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/andrew-torda/cif2pdb/pdb/cmmn"
)

const atomSitePrefix = "_atom_site."

const bust = -99.0 // Returned for coordinates when something breaks

// cifCol says where to find a column. If there is no cifName column,
// we try altName. If neither is there and the column is optional, n
// is set to -1 and a default value is used.
type cifCol struct {
	cifName  string // name in mmcif file, like auth_asym_id
	altName  string // an alternative, label_asym_id is the alt for auth_asym_id
	optional bool
	n        int8 // where it was found
}

// acn is the set of atom_site columns we look at.
type acn struct {
	groupPDB,
	id,
	typeSymbol,
	atomID,
	altID,
	compID,
	asymID,
	seqID,
	insCode,
	cartnX,
	cartnY,
	cartnZ,
	occupancy,
	bIso,
	formalCharge,
	modelNum cifCol
}

func newAcn() *acn {
	return &acn{
		groupPDB:     cifCol{"group_PDB", "", true, -1},
		id:           cifCol{"id", "", true, -1},
		typeSymbol:   cifCol{"type_symbol", "", true, -1},
		atomID:       cifCol{"auth_atom_id", "label_atom_id", false, -1},
		altID:        cifCol{"label_alt_id", "", true, -1},
		compID:       cifCol{"auth_comp_id", "label_comp_id", false, -1},
		asymID:       cifCol{"auth_asym_id", "label_asym_id", false, -1},
		seqID:        cifCol{"auth_seq_id", "label_seq_id", false, -1},
		insCode:      cifCol{"pdbx_PDB_ins_code", "", true, -1},
		cartnX:       cifCol{"Cartn_x", "", false, -1},
		cartnY:       cifCol{"Cartn_y", "", false, -1},
		cartnZ:       cifCol{"Cartn_z", "", false, -1},
		occupancy:    cifCol{"occupancy", "", true, -1},
		bIso:         cifCol{"B_iso_or_equiv", "", true, -1},
		formalCharge: cifCol{"pdbx_formal_charge", "", true, -1},
		modelNum:     cifCol{"pdbx_PDB_model_num", "", true, -1},
	}
}

// all returns pointers to every column, so we can loop over them.
func (a *acn) all() []*cifCol {
	return []*cifCol{&a.groupPDB, &a.id, &a.typeSymbol, &a.atomID, &a.altID,
		&a.compID, &a.asymID, &a.seqID, &a.insCode, &a.cartnX, &a.cartnY,
		&a.cartnZ, &a.occupancy, &a.bIso, &a.formalCharge, &a.modelNum}
}

// sliceAfterASite takes a header and returns the part after
// "_atom_site.".
func sliceAfterASite(s bSlice) bSlice {
	if len(s) < len(atomSitePrefix) {
		return nil
	}
	return s[len(atomSitePrefix):]
}

// getColPos looks for a column in the headers. If a name is not found,
// we do not return an error. We set the error that was given to us, so
// a set of calls can be checked once at the end.
func (cf *cifCol) getColPos(headers []bSlice, err *error) {
	if *err != nil {
		return
	}
	for _, want := range []string{cf.cifName, cf.altName} {
		if want == "" {
			continue
		}
		for i, h := range headers {
			if string(sliceAfterASite(h)) == want {
				cf.n = int8(i)
				return
			}
		}
	}
	if cf.optional {
		cf.n = -1
		return
	}
	*err = errors.New("Could not find atomsite column: " + cf.cifName)
}

// searchColNames finds every column we want. If a required one is
// missing, we stop at the first.
func searchColNames(acn *acn, headers []bSlice) (minLen int, err error) {
	if len(headers) > 127 {
		return 0, fmt.Errorf("%d atom_site columns is too many", len(headers))
	}
	for _, c := range acn.all() {
		c.getColPos(headers, &err)
		if int(c.n) >= minLen {
			minLen = int(c.n) + 1
		}
	}
	return minLen, err
}

// isDotOrQ returns true if the string is a dot or question mark
func isDotOrQ(s bSlice) bool {
	return len(s) == 1 && (s[0] == '.' || s[0] == '?')
}

// col returns the entry for a column, or nil if the column is absent or
// has one of the "no value" markers.
func col(cmpnt []bSlice, c cifCol) bSlice {
	if c.n < 0 {
		return nil
	}
	s := cmpnt[c.n]
	if isDotOrQ(s) {
		return nil
	}
	return s
}

// getint16 is a helper used to convert a string to int16 with error messages.
func getint16(toparse bSlice, name string) (int16, error) {
	if len(toparse) == 0 {
		return bust, errors.New("zero length string. Looked for " + name)
	}
	r, err := strconv.ParseInt(string(toparse), 10, 16)
	if err != nil {
		return bust, errors.New(err.Error() + ". Looked for " + name)
	}
	return int16(r), nil
}

// getf32 converts a column to float32. An absent value gives dflt.
func getf32(cmpnt []bSlice, c cifCol, dflt float32) (float32, error) {
	s := col(cmpnt, c)
	if s == nil {
		return dflt, nil
	}
	x, err := strconv.ParseFloat(string(s), 32)
	if err != nil {
		return bust, fmt.Errorf("%s: parsing %s", err, c.cifName)
	}
	return float32(x), nil
}

// getxyz gets the x, y and z coordinates from an input line.
// Subsequent calls are no-ops if an error has already occurred.
func getxyz(cmpnt []bSlice, acn *acn) (cmmn.Xyz, error) {
	var err error
	ff := func(c cifCol) float32 {
		if err != nil { // If an error has already occurred,
			return bust //  go no further.
		}
		var x float64
		if x, err = strconv.ParseFloat(string(cmpnt[c.n]), 32); err != nil {
			return bust
		}
		return float32(x)
	}
	var xyz cmmn.Xyz
	xyz.X = ff(acn.cartnX)
	xyz.Y = ff(acn.cartnY)
	xyz.Z = ff(acn.cartnZ)
	return xyz, err
}

// getResnumNum returns the residue number. A dot or question mark
// gives BrokenResNum, not an error.
func getResnumNum(cmpnt []bSlice, acn *acn) (int, error) {
	s := col(cmpnt, acn.seqID)
	if s == nil {
		return cmmn.BrokenResNum, nil
	}
	t, err := strconv.ParseInt(string(s), 10, 32)
	if err != nil {
		return -1, fmt.Errorf("%s: Converting residue number %s", err.Error(), s)
	}
	return int(t), nil
}

// oneByte is used for insertion codes and alternate locations.
func oneByte(cmpnt []bSlice, c cifCol, what string) (byte, error) {
	t := col(cmpnt, c)
	if t == nil {
		return 0, nil
	}
	if len(t) > 1 {
		return 0, errors.New(what + " length > 1: \"" + string(t) + "\"")
	}
	return t[0], nil
}

func getChainID(cmpnt []bSlice, acn *acn) chainID {
	if s := col(cmpnt, acn.asymID); s != nil {
		return chainID(s)
	}
	return ""
}

// getMdlNumNum converts the model number to an int. No column means
// there is only model 1.
func getMdlNumNum(cmpnt []bSlice, acn *acn) (int16, error) {
	s := col(cmpnt, acn.modelNum)
	if s == nil {
		return 1, nil
	}
	mdlNum, err := getint16(s, "model num")
	if err != nil {
		return -1, err
	}
	return mdlNum, nil
}

// charge turns "-1" into the "1-" one sees in PDB files.
func charge(s bSlice) (string, error) {
	if s == nil {
		return "", nil
	}
	q, err := strconv.Atoi(string(s))
	if err != nil {
		return "", fmt.Errorf("formal charge %q: %w", s, err)
	}
	switch {
	case q > 0:
		return strconv.Itoa(q) + "+", nil
	case q < 0:
		return strconv.Itoa(-q) + "-", nil
	}
	return "", nil
}

// getAtom fills an atom from a line.
func getAtom(cmpnt []bSlice, acn *acn) (at cmmn.Atom, xyz cmmn.Xyz, err error) {
	if at.ResNum, err = getResnumNum(cmpnt, acn); err != nil {
		return
	}
	if at.InsCode, err = oneByte(cmpnt, acn.insCode, "insertion code"); err != nil {
		return
	}
	if at.AltLoc, err = oneByte(cmpnt, acn.altID, "alt loc"); err != nil {
		return
	}
	if at.MdlNum, err = getMdlNumNum(cmpnt, acn); err != nil {
		return
	}
	if at.Occ, err = getf32(cmpnt, acn.occupancy, 1.0); err != nil {
		return
	}
	if at.Bfac, err = getf32(cmpnt, acn.bIso, 0.0); err != nil {
		return
	}
	if at.Charge, err = charge(col(cmpnt, acn.formalCharge)); err != nil {
		return
	}
	if s := col(cmpnt, acn.id); s != nil {
		at.Serial, _ = strconv.Atoi(string(s)) // writer renumbers anyway
	}
	at.Het = string(col(cmpnt, acn.groupPDB)) == "HETATM"
	at.Name = string(cmpnt[acn.atomID.n])
	at.ResName = string(cmpnt[acn.compID.n])
	at.Element = string(col(cmpnt, acn.typeSymbol))
	xyz, err = getxyz(cmpnt, acn)
	return
}

// boringAtom returns true if the atom name is not on our list of
// interesting atoms. An empty list means everything is interesting.
func boringAtom(name bSlice, intrstAtoms []atName) bool {
	if len(intrstAtoms) == 0 {
		return false
	}
	for _, s := range intrstAtoms {
		if string(name) == string(s) {
			return false
		}
	}
	return true
}

// boringLine determines if an input line is of no interest, usually
// because the model or chain is not wanted.
func boringLine(cmpnt []bSlice, acn *acn, fltr *fltr) (bool, error) {
	if fltr.modelMax >= 0 {
		nMdl, err := getMdlNumNum(cmpnt, acn)
		if err != nil {
			return true, err
		}
		if nMdl > fltr.modelMax {
			return true, nil
		}
	}
	if len(fltr.chains) > 0 {
		found := false
		id := getChainID(cmpnt, acn)
		for _, wanted := range fltr.chains {
			if wanted == id {
				found = true
				break
			}
		}
		if !found {
			return true, nil
		}
	}
	return boringAtom(cmpnt[acn.atomID.n], fltr.intrstAtoms), nil
}

// chanWrap wraps a channel and stores the slice we get from it.
type chanWrap struct {
	c       chan []bSlice // The slice of byte slices with our lines
	cs      []bSlice      //
	bufPool *sync.Pool    // Pool created in the caller and shared here
	scrtch  [40]bSlice    // Scratch space
	ndx     int
}

// linechan returns the next line from the channel which has slices of lines.
func (cw *chanWrap) linechan() bSlice {
	for cw.ndx == len(cw.cs) { // refill
		if cw.cs != nil {
			cw.bufPool.Put(cw.cs[:cap(cw.cs)])
		}
		var ok bool
		if cw.cs, ok = <-cw.c; !ok {
			cw.cs = nil
			return nil
		}
		cw.ndx = 0
	}
	cw.ndx++
	return cw.cs[cw.ndx-1]
}

// cmpntChan calls linechan to get the next line of input and
// returns it, broken into components.
func (cw *chanWrap) cmpntChan() ([]bSlice, error) {
	s := cw.linechan()
	if s == nil {
		return nil, nil
	}
	if notNasty(s) {
		return fields(s, cw.scrtch[:]), nil
	}
	ret, err := splitCifLine(s, cw.scrtch[:0])
	if err != nil {
		return nil, fmt.Errorf("atom_site line %q: %w", firstPart(string(s)), err)
	}
	return ret, nil
}

// addAtom puts an atom in the right chain, making the chain if this
// is the first time we see it.
func (md *MmcifData) addAtom(id chainID, at cmmn.Atom, xyz cmmn.Xyz) {
	c, ok := md.chnNdx[id]
	if !ok {
		c = cmmn.NewChain(string(id))
		md.chnNdx[id] = c
		md.strct.Chains = append(md.strct.Chains, c)
	}
	c.Add(at, xyz)
}

// fillme does the work reading atom_site lines
func (md *MmcifData) fillme(cw *chanWrap, fltr *fltr, acn *acn, minLen int) error {
	for {
		cmpnt, err := cw.cmpntChan()
		if err != nil {
			return err
		}
		if cmpnt == nil {
			return nil
		}
		if len(cmpnt) < minLen {
			return fmt.Errorf("Too few components (%d) on line %q", len(cmpnt), cmpnt)
		}
		if boring, err := boringLine(cmpnt, acn, fltr); err != nil {
			return err
		} else if boring {
			continue
		}
		at, xyz, err := getAtom(cmpnt, acn)
		if err != nil {
			return fmt.Errorf("parsing atom line: %w", err)
		}
		md.addAtom(getChainID(cmpnt, acn), at, xyz)
	}
}

// drain discards anything in the channel
func drain(c chan []bSlice) {
	for range c {
	}
}

// atomSite reads lines of input from the channel, but it gets a
// few of them at once - a slice is fed into the channel.
// Anything other than nil on rChan is an error.
func atomSite(headers []bSlice, fltr *fltr, md *MmcifData,
	c chan []bSlice, rChan chan error, bufPool *sync.Pool) {
	defer close(rChan)
	if md.strct == nil {
		md.strct = &cmmn.Structure{}
		md.chnNdx = make(map[chainID]*cmmn.Chain)
	}
	acn := newAcn()
	minLen, err := searchColNames(acn, headers)
	if err != nil {
		drain(c)
		rChan <- err
		return
	}
	cw := &chanWrap{c: c, bufPool: bufPool}
	if err := md.fillme(cw, fltr, acn, minLen); err != nil {
		drain(c)
		rChan <- err
		return
	}
}
