// Package pdb/cmmn has common definitions for coordinates and
// structures. The mmcif reader fills them, the pdb writer empties them.
package cmmn

import (
	"math"

	"github.com/andrew-torda/matrix"
)

// Does our data come from a file or http source ?
const (
	FileSrc byte = iota
	HTTPSrc
)

type Xyz struct{ X, Y, Z float32 }

var BrokenXyz = Xyz{math.MaxFloat32, 0, -math.MaxFloat32}

var BrokenResNum int = -9999

func (xyz *Xyz) Ok() bool {
	if *xyz != BrokenXyz {
		return true
	}
	return false
}

// Atom is everything from an atom_site line, except the chain name
// and the coordinates. Those live in the Chain.
type Atom struct {
	Het     bool   // HETATM, not ATOM
	Serial  int    // Number in the input. The writer renumbers
	Name    string // like "CA"
	AltLoc  byte   // 0 if there is none
	ResName string // like "GLY"
	ResNum  int    // Residue number as label, not an index
	InsCode byte   // Insertion code, 0 if there is none
	Occ     float32
	Bfac    float32
	Element string // like "C" or "FE"
	Charge  string // like "2+", empty if there is none
	MdlNum  int16  // Model number
}

// A Chain is all the atoms with one chain name, over all models.
// Coordinates are in Coords, one row per atom with x, y, z in the columns.
// While reading, they go in pending and Seal moves them into Coords.
type Chain struct {
	ChainID string // Name, like "A" or "B" or "AAA"
	Atoms   []Atom
	Coords  *matrix.FMatrix2d
	pending []Xyz
}

// NewChain makes an empty chain with a name.
func NewChain(id string) *Chain {
	return &Chain{ChainID: id}
}

// Add appends an atom and its coordinates.
func (c *Chain) Add(a Atom, xyz Xyz) {
	c.Atoms = append(c.Atoms, a)
	c.pending = append(c.pending, xyz)
}

// Seal copies coordinates into the matrix. It can be called more
// than once, but each call copies everything again.
func (c *Chain) Seal() {
	if len(c.pending) == 0 && c.Coords != nil {
		return
	}
	if c.Coords != nil { // Atoms were added after an earlier Seal
		old := c.Coords.Mat
		tmp := make([]Xyz, len(old), len(old)+len(c.pending))
		for i, r := range old {
			tmp[i] = Xyz{r[0], r[1], r[2]}
		}
		c.pending = append(tmp, c.pending...)
	}
	c.Coords = matrix.NewFMatrix2d(len(c.pending), 3)
	for i, x := range c.pending {
		row := c.Coords.Mat[i]
		row[0], row[1], row[2] = x.X, x.Y, x.Z
	}
	c.pending = nil
}

// Xyz returns the coordinates of atom i.
func (c *Chain) Xyz(i int) Xyz {
	if c.pending != nil {
		c.Seal()
	}
	r := c.Coords.Mat[i]
	return Xyz{r[0], r[1], r[2]}
}

// NAtom is the number of atoms in all models of the chain.
func (c *Chain) NAtom() int { return len(c.Atoms) }

// Structure is a set of chains in the order we first met them.
type Structure struct {
	ID         string // Entry name, like "1abc"
	Title      string
	Resolution float32 // Angstrom, 0 if not known
	Chains     []*Chain
}

// NChain, ChainID and SetChainID let a structure have its chains
// renamed by position.
func (s *Structure) NChain() int                 { return len(s.Chains) }
func (s *Structure) ChainID(i int) string        { return s.Chains[i].ChainID }
func (s *Structure) SetChainID(i int, id string) { s.Chains[i].ChainID = id }

// Chain returns the first chain called id, or nil.
func (s *Structure) Chain(id string) *Chain {
	for _, c := range s.Chains {
		if c.ChainID == id {
			return c
		}
	}
	return nil
}

// ChainNames returns a slice with the names of the chains.
func (s *Structure) ChainNames() []string {
	ret := make([]string, len(s.Chains))
	for i, c := range s.Chains {
		ret[i] = c.ChainID
	}
	return ret
}

// Models returns the model numbers in the order they first appear.
func (s *Structure) Models() []int16 {
	var ret []int16
	seen := make(map[int16]bool)
	for _, c := range s.Chains {
		for i := range c.Atoms {
			if m := c.Atoms[i].MdlNum; !seen[m] {
				seen[m] = true
				ret = append(ret, m)
			}
		}
	}
	return ret
}

// NAtom counts atoms over all chains and models.
func (s *Structure) NAtom() (n int) {
	for _, c := range s.Chains {
		n += c.NAtom()
	}
	return n
}

// Seal calls Seal on every chain.
func (s *Structure) Seal() {
	for _, c := range s.Chains {
		c.Seal()
	}
}
