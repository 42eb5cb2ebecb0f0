package mmcif

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/andrew-torda/cif2pdb/pdb/cmmn"
)

const (
	squote byte = '\''
	dquote byte = '"'
)

// Data items we always want, since they go into the PDB header.
const (
	ItemEntryID = "_entry.id"
	ItemTitle   = "_struct.title"
)

// ErrNoAtoms is returned by Structure if there was no atom_site table,
// or all atoms were filtered away.
var ErrNoAtoms = errors.New("no atoms found")

// Most of a file is of no interest. We handle this in two ways.
// 1. There is a list of data items and tables to keep. Anything else
// is skipped.
// 2. The atom_site table is special. It goes into a cmmn.Structure.

type bSlice []byte // byte slice
type stSlice []string
type keepTable struct {
	Names []string  // table headings
	Vals  []stSlice // each entry is a slice of values
}

type chainID string

type atName string

type stringhash map[string]string
type tablehash map[string]keepTable

// MmcifData is what DoFile returns.
type MmcifData struct {
	Data   stringhash // Data items to keep
	Tables tablehash  // Tables we keep
	strct  *cmmn.Structure
	chnNdx map[chainID]*cmmn.Chain
}

// What criteria do we use when deciding whether or not to keep
// an atom
type fltr struct {
	modelMax    int16 // Highest model number to keep, -1 for all
	chains      []chainID
	intrstAtoms []atName // Interesting atoms - those we keep
}

// MmcifReader holds the instructions to the reader. Nothing read from
// the file is stored here.
type MmcifReader struct {
	cmmtScanner
	dataToKeep   map[string]bool
	tablesToKeep map[string]bool
	fltr         *fltr
	headers      []bSlice
	scrtchBytes  []bSlice
}

// NewMmcifReader returns an object to read mmcif files.
// It is given a reader, so the caller must have decided if it is
// a file, compressed file, http source, whatever.
// By default, everything is read, all models, chains and atoms.
func NewMmcifReader(r io.Reader) *MmcifReader {
	if r == nil {
		return nil
	}
	mr := &MmcifReader{
		cmmtScanner:  newCmmtScanner(r, '#'),
		dataToKeep:   make(map[string]bool),
		tablesToKeep: make(map[string]bool),
		fltr:         &fltr{modelMax: -1},
		scrtchBytes:  make([]bSlice, 25),
	}
	mr.AddItems([]string{ItemEntryID, ItemTitle})
	return mr
}

// SetChains restricts reading to a list of chains. An empty list
// means all chains.
func (mr *MmcifReader) SetChains(s []string) {
	mr.fltr.chains = mr.fltr.chains[:0]
	for _, c := range s {
		if c != "" {
			mr.fltr.chains = append(mr.fltr.chains, chainID(c))
		}
	}
}

// SetAtoms sets the slice of atom names which we will keep. An empty
// list means all atoms.
func (mr *MmcifReader) SetAtoms(s []string) {
	mr.fltr.intrstAtoms = mr.fltr.intrstAtoms[:0]
	for _, a := range s {
		if a != "" {
			mr.fltr.intrstAtoms = append(mr.fltr.intrstAtoms, atName(a))
		}
	}
}

// SetModelMax sets the highest model number to read.
//
//	-1 means get everything
//	 0 means get nothing
//	 a positive int is the highest model number kept
func (mr *MmcifReader) SetModelMax(modelMax int16) {
	mr.fltr.modelMax = modelMax
}

// AddItems adds data items like "_entry.id" that we will keep.
func (mr *MmcifReader) AddItems(s []string) {
	for _, a := range s {
		mr.dataToKeep[a] = true
	}
}

// AddTable tells us that if we see a table / loop with a certain word as
// the first entry, like "_entity_poly.", then we will keep this table.
func (mr *MmcifReader) AddTable(s []string) {
	for _, a := range s {
		mr.tablesToKeep[a] = true
	}
}

// cmmtScanner is a wrapper around bufio.Scanner that will jump over
// blank lines and comments. It also counts lines in n, so we can print
// the line number in error messages.
type cmmtScanner struct {
	*bufio.Scanner           // standard library scanner
	lErr           readError // fill this out as soon as an error happens
	ctoken         []byte    // Store the bytes that will be returned by cbytes()
	n              int       // line number in the mmcif file
	cmmt           byte      // Comment character
	Ok             bool      // Are we OK or have we had an error ?
}

// maxLine is the longest line we can read. Some _struct.title lines
// and sequence lines are long.
const maxLine = 1024 * 1024

// newCmmtScanner wraps a scanner. An MmcifReader contains one.
func newCmmtScanner(r io.Reader, cmmt byte) cmmtScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	return cmmtScanner{
		Scanner: sc,
		cmmt:    cmmt,
		Ok:      true,
	}
}

// cscan is a wrapper around the library Scan(). It counts lines and
// jumps over blank lines and lines starting with the comment
// character. Comment characters are only recognised as the first
// character, since they are legitimate elsewhere in the text.
// At the end of input, it returns true, but cbytes() will be nil.
func (s *cmmtScanner) cscan() (ok bool) {
	var b []byte
	if !s.Ok { // We have already had an error, but nobody has noticed.
		s.ctoken = nil
		s.fill("pre-existing error missed. Small bug ?", false)
		return false
	}
	ok = true
	for len(b) == 0 && ok {
		if ok = s.Scan(); ok {
			s.n++
		} else {
			s.ctoken = nil
			if s.Err() != nil {
				s.fill(s.Err().Error(), true)
				return false
			}
			return true // No error, just EOF
		}
		b = bytes.TrimRight(s.Bytes(), " \t\r")
		if len(b) > 0 && b[0] == s.cmmt {
			b = nil
		}
	}
	s.ctoken = b
	return ok
}

// cbytes is like Bytes from the library, but returns the processed line.
func (s *cmmtScanner) cbytes() []byte {
	return s.ctoken
}

// stateFn is the type of state function. It returns the next
// state function that should act on its input.
type stateFn func(*MmcifReader, *MmcifData) stateFn

// stateData reads lines that start with data_
func stateData(mr *MmcifReader, _ *MmcifData) stateFn {
	if !mr.cscan() {
		return nil
	}
	return stateTop
}

// stateUnknown is reached if we are confused and do not know
// what to do. It is an error and we should stop
func stateUnknown(mr *MmcifReader, _ *MmcifData) stateFn {
	mr.fill("Unknown line type", true)
	return nil
}

// stateLoopHdr gets the headers from a loop directive and decides
// what to do with the table.
func stateLoopHdr(mr *MmcifReader, _ *MmcifData) stateFn {
	if len(mr.headers) != 0 {
		mr.fill("probable bug, headers slice not empty", false)
		return nil
	}
	for ok := true; ok && len(mr.cbytes()) > 0 && mr.cbytes()[0] == '_'; ok = mr.cscan() {
		s := make([]byte, len(mr.cbytes()))
		copy(s, mr.cbytes())
		mr.headers = append(mr.headers, s)
	}
	if len(mr.headers) < 1 {
		mr.fill("no contents found while reading loop headers", true)
		return nil
	}

	kword := bytes.SplitAfter(mr.headers[0], []byte{'.'})
	if bytes.Equal(kword[0], []byte(atomSitePrefix)) {
		return stateAtomTable
	}
	if _, ok := mr.tablesToKeep[string(kword[0])]; ok {
		return stateLoopTable
	}
	mr.headers = mr.headers[:0]
	return stateSkipLoopTable
}

// isSpecial returns true if the input in inline is not simply
// more of a table. Usually this means there is a new directive
// coming.
// If we have end of input, we also return true, so a caller knows
// it has to do something special.
func isSpecial(inline []byte) bool {
	switch {
	case inline == nil:
		return true
	case bytes.HasPrefix(inline, []byte("_")):
		return true
	case bytes.HasPrefix(inline, []byte("loop_")):
		return true
	case bytes.HasPrefix(inline, []byte("data_")):
		return true
	default:
		return false
	}
}

// stateLoopTable reads a table we were asked to keep and puts it in
// the hash of tables.
func stateLoopTable(mr *MmcifReader, md *MmcifData) stateFn {
	const notSplit string = "Could not split string at dot: "
	dots := []byte{'.'}
	ncol := len(mr.headers)
	var table keepTable
	var tblName string
	{
		t := bytes.SplitAfterN(mr.headers[0], dots, 2)
		if len(t) < 2 {
			mr.fill(notSplit+string(mr.headers[0]), true)
			return nil
		}
		s := string(t[0])
		tblName = s[0 : len(s)-1]
	}
	table.Names = make([]string, 0, len(mr.headers))
	table.Vals = make([]stSlice, 0, 5)

	for _, word := range mr.headers { // given _atom_site.foo, save foo
		t := bytes.SplitAfterN(word, dots, 2)
		if len(t) < 2 {
			mr.fill(notSplit+string(word), true)
			return nil
		}
		table.Names = append(table.Names, string(t[1]))
	}
	mr.headers = mr.headers[:0]
	for b, ok := getNpieces(mr, ncol); len(b) == ncol && ok; {
		table.Vals = append(table.Vals, b)
		b, ok = getNpieces(mr, ncol)
	}
	md.Tables[tblName] = table
	return stateTop
}

const lineSiz = 92 // A line from PDB is 88 bytes long
const slSiz = 50    // This comes from benchmarking.

// newLineBuf creates the slice of lines (byte slices) that are
// filled and used to send information to the reader (atomSite()).
func newLineBuf() interface{} {
	var tmp [slSiz * lineSiz]byte
	var x [slSiz]bSlice
	for i, start, end := 0, 0, lineSiz; i < slSiz; i++ {
		x[i] = tmp[start:end:end]
		start = end
		end += lineSiz
	}
	return x[:]
}

// stateAtomTable is like stateLoopTable, but we special case it
// because it is the biggest, most important and slowest to
// process.
// We read lines into a slice of lines. When we have enough, we
// push the slice into the channel. atomSite() does the processing.
// In the meantime, we continue reading the file.
func stateAtomTable(mr *MmcifReader, md *MmcifData) stateFn {
	c := make(chan []bSlice, 3) // buffer size 3 came from benchmarking
	rChan := make(chan error, 1)
	// The other end of the channel puts the buffers back in the pool
	// when it has processed all the lines.
	var bufPool = sync.Pool{
		New: newLineBuf,
	}

	{
		headers := make([]bSlice, len(mr.headers))
		copy(headers, mr.headers)
		go atomSite(headers, mr.fltr, md, c, rChan, &bufPool)
	}
	mr.headers = nil

	i := 0
	lines := bufPool.Get().([]bSlice)
	for !isSpecial(mr.cbytes()) {
		t := mr.cbytes()
		if t[0] == ';' {
			close(c)
			<-rChan
			mr.fill("text field in atom_site table", true)
			return nil
		}
		if len(t) > cap(lines[i]) { // Only if the default line length is too small.
			lines[i] = make([]byte, len(t))
		}
		lines[i] = lines[i][:len(t)]
		copy(lines[i], t)

		if i == (slSiz - 1) { // send the accumulated lines to atomSite()
			i = 0                            // and get fresh storage
			c <- lines                       // from the pool
			lines = bufPool.Get().([]bSlice)
		} else {
			i++
		}
		if !mr.cscan() {
			break
		}
	}
	if i > 0 { // Push any leftover lines down the channel
		c <- lines[0:i]
	}
	close(c)
	if err := <-rChan; err != nil {
		mr.fill(err.Error(), false)
		return nil
	}
	return stateTop
}

// stateSkipLoopTable reads lines from a table, but does not
// save them anywhere. Most of the tables we encounter are not
// to be saved.
func stateSkipLoopTable(mr *MmcifReader, _ *MmcifData) stateFn {
	foundSomething := false
	for ; !isSpecial(mr.cbytes()); mr.cscan() {
		foundSomething = true
		if b := mr.cbytes(); b[0] == ';' { // text lines can start with anything
			if _, ok := textField(mr, b); !ok {
				mr.fill("unterminated text field", true)
				return nil
			}
		}
	}
	if !foundSomething {
		mr.fill("empty table", true)
		return nil
	}
	return stateTop
}

// stateLoop is where you are if you have a loop directive.
// You just have to jump over the line and go to reading the
// headers.
func stateLoop(mr *MmcifReader, _ *MmcifData) stateFn {
	if !mr.cscan() {
		return nil
	}
	if mr.cbytes() == nil {
		mr.fill("loop_ at end of file", true)
		return nil
	}
	return stateLoopHdr
}

// textField reads a multi-line field. The current line starts with
// a semicolon and the field ends with a line that starts with one.
// On return, the scanner is on the closing line.
func textField(mr *MmcifReader, first []byte) (string, bool) {
	var b bytes.Buffer
	b.Write(first[1:])
	for ok := mr.cscan(); ok; ok = mr.cscan() {
		x := mr.cbytes()
		if x == nil {
			return "", false // eof before the closing ;
		}
		if x[0] == ';' {
			return b.String(), true
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.Write(x)
	}
	return "", false
}

// stateDItem gets a data item. This is often on one line, but
// if there is only the name, the value is on subsequent lines
func stateDItem(mr *MmcifReader, md *MmcifData) stateFn {
	const msg string = "data split on two lines"
	var value string
	t, err := splitCifLine(mr.cbytes(), mr.scrtchBytes)
	if err != nil {
		mr.fillSplit(err)
		return nil
	}
	itemName := string(t[0])

	switch len(t) {
	case 2:
		value = string(t[1])
	case 1:
		if !mr.cscan() || mr.cbytes() == nil {
			mr.fill(msg, true)
			return nil
		}
		bIn := mr.cbytes()
		if bIn[0] == ';' {
			var ok bool
			if value, ok = textField(mr, bIn); !ok {
				mr.fill(msg, true)
				return nil
			}
		} else {
			u, err := splitCifLine(bIn, mr.scrtchBytes)
			if err != nil || len(u) != 1 {
				mr.fill("value for "+itemName, true)
				return nil
			}
			value = string(u[0])
		}
	default:
		mr.fill(fmt.Sprintf("%d words for data item %s", len(t), itemName), true)
		return nil
	}
	mr.cscan() // If an error occurs, the next function will pick it up

	if mr.dataToKeep[itemName] {
		md.Data[itemName] = value
	}
	return stateTop
}

// stateTop is the general state that looks at the current line and
// decides what state to jump to next.
func stateTop(mr *MmcifReader, _ *MmcifData) stateFn {
	b := mr.cbytes() // Does not advance scanner
	if !mr.Ok {
		return nil
	}
	switch {
	case b == nil:
		return nil
	case bytes.HasPrefix(b, []byte("loop_")):
		return stateLoop
	case bytes.HasPrefix(b, []byte("data_")):
		return stateData
	case bytes.HasPrefix(b, []byte("_")):
		return stateDItem
	default:
		return stateUnknown
	}
}

// notNasty returns true if we can use the library split
// function. That is, there are no quotes.
func notNasty(b []byte) bool {
	return bytes.IndexByte(b, dquote) == -1 && bytes.IndexByte(b, squote) == -1
}

// getNpieces asks the scanner for lines and returns N items
// as an array of strings. We have to use new strings, since
// calls to scan() will update the underlying buffer.
func getNpieces(mr *MmcifReader, npiece int) (ret []string, ok bool) {
	for ok = true; len(ret) < npiece && ok; ok = mr.cscan() {
		bIn := mr.cbytes()
		if isSpecial(bIn) {
			return nil, ok
		}
		if bIn[0] == ';' {
			tmp, tok := textField(mr, bIn)
			if !tok {
				mr.fill("getNpieces", true)
				return nil, false
			}
			ret = append(ret, tmp)
			continue
		}
		if notNasty(bIn) {
			for _, u := range bytes.Fields(bIn) {
				ret = append(ret, string(u))
			}
			continue
		}
		t, err := splitCifLine(bIn, mr.scrtchBytes)
		if err != nil {
			mr.fillSplit(err)
			return nil, false
		}
		for _, u := range t {
			ret = append(ret, string(u))
		}
	}
	return
}

// DoFile parses the file we were given.
func (mr *MmcifReader) DoFile() (*MmcifData, error) {
	if mr == nil {
		return nil, errors.New("Start of file, nil mmcifReader")
	}
	if !mr.cscan() {
		return nil, mr.lErr
	}
	md := &MmcifData{
		Data:   make(stringhash),
		Tables: make(tablehash),
	}
	for state := stateTop; (state != nil) && mr.Ok; {
		state = state(mr, md)
	}
	if mr.Ok && mr.n == 0 {
		mr.fill("zero length file", false)
	}
	if !mr.Ok {
		return nil, mr.lErr
	}
	return md, nil
}

// Structure returns the chains that were read, with the entry id and
// title if they were in the file.
func (md *MmcifData) Structure() (*cmmn.Structure, error) {
	if md.strct == nil || len(md.strct.Chains) == 0 {
		return nil, ErrNoAtoms
	}
	md.strct.ID = md.Data[ItemEntryID]
	md.strct.Title = md.Data[ItemTitle]
	md.strct.Seal()
	return md.strct, nil
}

// NAtom counts all the atoms we kept.
func (md *MmcifData) NAtom() int {
	if md == nil || md.strct == nil {
		return 0
	}
	return md.strct.NAtom()
}

// nAtomType gives us the number of atoms with a name, summed
// over all models and chains
func (md *MmcifData) nAtomType(a string) (n int) {
	if md.strct == nil {
		return 0
	}
	for _, c := range md.strct.Chains {
		for i := range c.Atoms {
			if c.Atoms[i].Name == a {
				n++
			}
		}
	}
	return n
}

// getXyz returns a slice of xyz's given a model, chain and atom type
func (md *MmcifData) getXyz(mdlNum int16, chn string, at string) ([]cmmn.Xyz, error) {
	if md.strct == nil {
		return nil, ErrNoAtoms
	}
	c := md.strct.Chain(chn)
	if c == nil {
		return nil, fmt.Errorf("no chain %s", chn)
	}
	var ret []cmmn.Xyz
	for i := range c.Atoms {
		if c.Atoms[i].MdlNum == mdlNum && c.Atoms[i].Name == at {
			ret = append(ret, c.Xyz(i))
		}
	}
	if ret == nil {
		return nil, fmt.Errorf("no atom of type %s in model %d chain %s", at, mdlNum, chn)
	}
	return ret, nil
}
