package cmmn_test

import (
	"testing"

	"github.com/andrew-torda/cif2pdb/chainid"
	. "github.com/andrew-torda/cif2pdb/pdb/cmmn"
)

var _ chainid.Chains = (*Structure)(nil)

func TestXyzOk(t *testing.T) {
	var xyz Xyz
	xyz = BrokenXyz
	if xyz.Ok() {
		t.Error("cannot even check if a value is OK")
	}
	xyz = Xyz{1, 1, 1}
	if !xyz.Ok() {
		t.Error("OK should be true")
	}
}

func TestSeal(t *testing.T) {
	c := NewChain("AAA")
	c.Add(Atom{Name: "N"}, Xyz{1, 2, 3})
	c.Add(Atom{Name: "CA"}, Xyz{4, 5, 6})
	if got := c.Xyz(1); got != (Xyz{4, 5, 6}) {
		t.Errorf("got %v", got)
	}
	if nr, nc := c.Coords.Size(); nr != 2 || nc != 3 {
		t.Errorf("matrix is %d x %d", nr, nc)
	}
	c.Add(Atom{Name: "C"}, Xyz{7, 8, 9}) // after sealing
	c.Seal()
	if nr, _ := c.Coords.Size(); nr != 3 {
		t.Errorf("want 3 rows, got %d", nr)
	}
	if got := c.Xyz(0); got != (Xyz{1, 2, 3}) {
		t.Errorf("lost first atom, got %v", got)
	}
	if got := c.Xyz(2); got != (Xyz{7, 8, 9}) {
		t.Errorf("got %v", got)
	}
}

func TestStructure(t *testing.T) {
	a, b := NewChain("A"), NewChain("BB")
	a.Add(Atom{MdlNum: 1}, Xyz{})
	a.Add(Atom{MdlNum: 2}, Xyz{})
	b.Add(Atom{MdlNum: 3}, Xyz{})
	b.Add(Atom{MdlNum: 1}, Xyz{})
	s := &Structure{Chains: []*Chain{a, b}}
	mdls := s.Models()
	if len(mdls) != 3 || mdls[0] != 1 || mdls[1] != 2 || mdls[2] != 3 {
		t.Errorf("models %v", mdls)
	}
	if s.NAtom() != 4 {
		t.Errorf("natom %d", s.NAtom())
	}
	s.SetChainID(1, "B")
	if s.Chain("B") != b || s.Chain("BB") != nil {
		t.Error("rename by position did not work")
	}
	if n := s.ChainNames(); n[0] != "A" || n[1] != "B" {
		t.Errorf("names %v", n)
	}
}
