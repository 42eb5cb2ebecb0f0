package mmcif

// Breaking mmcif lines into words. A word may be quoted with ' or ",
// and then it can hold spaces. The closing quote must be followed by
// white space or the end of the line, so 'O5'B x' is the one word O5'B x.
// A quote in the middle of a word, as in O5', is just a character.

import "fmt"

// quoteError says where a quote that never closes starts. Columns
// count from 1.
type quoteError struct {
	col int
	q   byte
}

func (e *quoteError) Error() string {
	return fmt.Sprintf("unterminated %c quote starting at column %d", e.q, e.col)
}

// isWhite is only for ascii.
func isWhite(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// skipWhite returns the first non-white index at or after i.
func skipWhite(b []byte, i int) int {
	for i < len(b) && isWhite(b[i]) {
		i++
	}
	return i
}

// wordEnd returns the index just after the word starting at i.
func wordEnd(b []byte, i int) int {
	for i < len(b) && !isWhite(b[i]) {
		i++
	}
	return i
}

// closeQuote looks for the quote that ends a word opened just before
// from. It gives -1 if there is none.
func closeQuote(b []byte, from int, q byte) int {
	for k := from; k < len(b); k++ {
		if b[k] == q && (k+1 == len(b) || isWhite(b[k+1])) {
			return k
		}
	}
	return -1
}

// fields is for atom_site lines with no quotes. It fills scrtch
// without allocating. Words past cap(scrtch) are dropped, so the caller
// checks the count against the columns it needs. An empty line gives
// nil.
func fields(s bSlice, scrtch []bSlice) []bSlice {
	scrtch = scrtch[:cap(scrtch)]
	var n int
	for i := skipWhite(s, 0); i < len(s) && n < len(scrtch); i = skipWhite(s, i) {
		j := wordEnd(s, i)
		scrtch[n] = s[i:j]
		n++
		i = j
	}
	if n == 0 {
		return nil
	}
	return scrtch[:n]
}

// splitCifLine breaks a line that may have quotes into words, appending
// to ret[:0]. Quotes are not part of the returned words. An unclosed
// quote gives a *quoteError.
func splitCifLine(b []byte, ret []bSlice) ([]bSlice, error) {
	ret = ret[:0]
	for i := skipWhite(b, 0); i < len(b); i = skipWhite(b, i) {
		if q := b[i]; q == squote || q == dquote {
			end := closeQuote(b, i+1, q)
			if end < 0 {
				return nil, &quoteError{col: i + 1, q: q}
			}
			ret = append(ret, b[i+1:end])
			i = end + 1
			continue
		}
		j := wordEnd(b, i)
		ret = append(ret, b[i:j])
		i = j
	}
	return ret, nil
}
