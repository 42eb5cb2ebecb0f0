// An error implementation that saves the line number and the
// line we were trying to read.
// The key is to call xxxx.fill() where xxxx is the comment
// scanner or the mmcif reader.
package mmcif

import (
	"errors"
	"strconv"
)

const maxMsgLen = 70

// ParseError is what a caller can look for with errors.As if it
// wants the line number.
type ParseError = readError

type readError struct {
	n      int    // line number
	col    int    // column, if we know it
	inline string // The line that provoked the error
	desc   string // Description of error
}

// fill stores the problem we have seen for printing
// out when it is convenient. If there was already an error that nobody
// looked at, the old message is kept in front of the new one.
func (m *cmmtScanner) fill(desc string, saveLine bool) {
	const multErrStr string = "\nNew error, but there was already an error from line "
	if !m.Ok {
		ln := strconv.Itoa(m.lErr.n)
		desc = m.lErr.desc + multErrStr + ln + ":\n" + desc
	}
	m.Ok = false
	if saveLine {
		m.lErr.n = m.n
		m.lErr.col = 0
		m.lErr.inline = string(m.cbytes())
	}
	m.lErr.desc = desc
}

// fillSplit is fill for an error from splitCifLine on the current line.
// A bad quote also gives us the column.
func (m *cmmtScanner) fillSplit(err error) {
	m.fill(err.Error(), true)
	var qe *quoteError
	if errors.As(err, &qe) {
		m.lErr.col = qe.col
	}
}

func firstPart(s string) string {
	if len(s) > maxMsgLen {
		return s[:maxMsgLen]
	}
	return s
}

// Line is the line number where the problem was seen, or zero if
// we do not know.
func (e readError) Line() int { return e.n }

// Column is where on the line the problem starts, counting from 1,
// or zero if only the line is known.
func (e readError) Column() int { return e.col }

// Error returns the description, line number and the start of the
// line that was being read.
func (e readError) Error() string {
	var errmsg string
	if e.n != 0 {
		errmsg = "Line: " + strconv.Itoa(e.n) + " "
	}
	errmsg += e.desc
	if e.n != 0 && e.inline != "" {
		errmsg += "\nLine starting with\n" + firstPart(e.inline)
	}
	return errmsg
}
