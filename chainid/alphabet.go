// 19 Oct 2026
// Chain identifiers in old PDB format are one character. The
// characters we hand out come from a fixed alphabet.

package chainid

import (
	"errors"
	"fmt"
	"strings"
)

// Alphabet is the order in which new chain identifiers are given out,
// capitals first, then digits, then lower case.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789abcdefghijklmnopqrstuvwxyz"

// NSym is the number of identifiers there are to give out.
const NSym = len(Alphabet)

// ErrOutOfRange is returned by Allocate for an index outside the alphabet.
// If a caller sees this, the caller has a bug.
var ErrOutOfRange = errors.New("chain index out of range")

// Allocate returns the identifier at position ndx of the alphabet.
func Allocate(ndx int) (string, error) {
	if ndx < 0 || ndx >= NSym {
		return "", fmt.Errorf("%w: %d not in [0,%d)", ErrOutOfRange, ndx, NSym)
	}
	return Alphabet[ndx : ndx+1], nil
}

// Index is the inverse of Allocate. ok is false if id is not a single
// character from the alphabet.
func Index(id string) (ndx int, ok bool) {
	if len(id) != 1 {
		return -1, false
	}
	if ndx = strings.IndexByte(Alphabet, id[0]); ndx == -1 {
		return -1, false
	}
	return ndx, true
}

// Valid says if id can be written as a chain identifier in a PDB file.
func Valid(id string) bool {
	_, ok := Index(id)
	return ok
}
