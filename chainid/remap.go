package chainid

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"
)

// ErrIdentifierSpaceExhausted means a structure needs more one-character
// chain names than the alphabet has.
var ErrIdentifierSpaceExhausted = errors.New("exceeded 62 chains, cannot generate new unique chain IDs")

// Chains is what we need from a structure. Chains are addressed by
// position, since a broken file may give two chains the same name.
type Chains interface {
	NChain() int
	ChainID(i int) string
	SetChainID(i int, id string)
}

// RenameMap goes from the new chain identifier to the original one.
// Chains which already had a one-character name map to themselves.
type RenameMap map[string]string

// Assignment is one planned change, chain number Ndx goes from Old to New.
type Assignment struct {
	Ndx int
	Old string
	New string
}

// Rename is one entry of a RenameMap, used when the order matters.
type Rename struct {
	New string `yaml:"new"`
	Old string `yaml:"old"`
}

// isShort is true if a chain name can stay as it is.
func isShort(id string) bool { return utf8.RuneCountInString(id) == 1 }

// Plan works out the new chain names, but does not touch the structure.
// The cursor into the alphabet only ever moves forward, over all chains,
// so a chain may skip names an earlier one passed by. This keeps the
// result the same from run to run.
func Plan(s Chains) ([]Assignment, RenameMap, error) {
	n := s.NChain()
	reserved := make(map[string]bool, n)
	rmap := make(RenameMap, n)
	for i := 0; i < n; i++ {
		if id := s.ChainID(i); isShort(id) {
			reserved[id] = true
			rmap[id] = id
		}
	}

	var plan []Assignment
	next := 0
	for i := 0; i < n; i++ {
		old := s.ChainID(i)
		if isShort(old) {
			continue
		}
		if next >= NSym {
			return nil, nil, exhausted(s)
		}
		cand, err := Allocate(next)
		for err == nil && reserved[cand] {
			if next++; next >= NSym {
				return nil, nil, exhausted(s)
			}
			cand, err = Allocate(next)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("prog bug allocating chain for %q: %w", old, err)
		}
		rmap[cand] = old
		reserved[cand] = true
		plan = append(plan, Assignment{Ndx: i, Old: old, New: cand})
		next++
	}
	return plan, rmap, nil
}

// exhausted builds the error with a count so a user has a hint of how
// far over the limit the structure is.
func exhausted(s Chains) error {
	var nLong, nShort int
	for i := 0; i < s.NChain(); i++ {
		if isShort(s.ChainID(i)) {
			nShort++
		} else {
			nLong++
		}
	}
	return fmt.Errorf("%w (%d chains to rename, %d names already taken)",
		ErrIdentifierSpaceExhausted, nLong, nShort)
}

// Apply writes a plan into the structure.
func Apply(s Chains, plan []Assignment) {
	for _, a := range plan {
		s.SetChainID(a.Ndx, a.New)
	}
}

// Remap gives every chain with a name that is not exactly one character
// long a new one-character name. If there are not enough names, nothing
// in the structure is changed and the error wraps
// ErrIdentifierSpaceExhausted.
func Remap(s Chains) (RenameMap, error) {
	plan, rmap, err := Plan(s)
	if err != nil {
		return nil, err
	}
	Apply(s, plan)
	return rmap, nil
}

// Entries returns the map as a slice. Names from the alphabet come
// first, in alphabet order. Anything else (a one-character name we did
// not hand out, like "*") follows in byte order.
func (m RenameMap) Entries() []Rename {
	ret := make([]Rename, 0, len(m))
	for k, v := range m {
		ret = append(ret, Rename{New: k, Old: v})
	}
	sort.Slice(ret, func(i, j int) bool {
		a, aok := Index(ret[i].New)
		b, bok := Index(ret[j].New)
		switch {
		case aok && bok:
			return a < b
		case aok != bok:
			return aok
		default:
			return ret[i].New < ret[j].New
		}
	})
	return ret
}

// Renamed is like Entries, but leaves out chains that kept their name.
func (m RenameMap) Renamed() []Rename {
	var ret []Rename
	for _, e := range m.Entries() {
		if e.New != e.Old {
			ret = append(ret, e)
		}
	}
	return ret
}
