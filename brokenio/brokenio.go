// brokenio wraps readers and writers so they fail. It is for testing
// what the mmcif reader and the pdb writer do when a file is cut
// short, a download dies half way or the disk fills up.
// Typical use: You get a file pointer, a reader from a compressed
// source or an http source. You write
// reader = brokenio.NewReader(reader, 1000)
// and everything works as before until 1000 bytes have gone through.
// A zero length file is not an error, so SetZeroFile makes the first
// read return io.EOF with no data.

package brokenio

import (
	"errors"
	"fmt"
	"io"
)

// ErrBroken is returned once the byte limit has been reached.
var ErrBroken = errors.New("brokenio: artificial failure")

// A BrknRdrClsr passes reads through to the wrapped reader until
// failAfter bytes have been delivered.
type BrknRdrClsr struct {
	rdrOrig   io.Reader // Wrapped reader
	failAfter int       // Negative means never fail
	zeroFile  bool      // Return EOF on the first read
	nCalled   int
	nByte     int
	verbose   bool
}

// NewReader wraps rIn. After failAfter bytes, every Read returns
// ErrBroken. A negative failAfter gives a reader that never breaks.
func NewReader(rIn io.Reader, failAfter int) *BrknRdrClsr {
	return &BrknRdrClsr{rdrOrig: rIn, failAfter: failAfter}
}

// SetVerbose sets the verbosity flag to true or false
func (r *BrknRdrClsr) SetVerbose(newV bool) { r.verbose = newV }

// SetZeroFile makes the reader look like an empty file.
func (r *BrknRdrClsr) SetZeroFile() { r.zeroFile = true }

// Read wraps the original reader and sums up the amount of data that
// has gone through. It may return fewer bytes than the wrapped reader
// offered, along with the error.
func (r *BrknRdrClsr) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	r.nCalled++
	if r.zeroFile {
		return 0, io.EOF
	}
	if r.failAfter >= 0 {
		left := r.failAfter - r.nByte
		if left <= 0 {
			return 0, ErrBroken
		}
		if len(p) > left {
			p = p[:left]
		}
	}
	n, err = r.rdrOrig.Read(p)
	r.nByte += n
	return n, err
}

// Close closes the wrapped reader if it is a Closer.
func (r *BrknRdrClsr) Close() error {
	if r.verbose {
		fmt.Println("Closing", r.nCalled, "calls and", r.nByte, "bytes")
	}
	if c, ok := r.rdrOrig.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// A Writer accepts failAfter bytes and then returns ErrBroken.
type Writer struct {
	w         io.Writer
	failAfter int
	nByte     int
}

// NewWriter wraps w.
func NewWriter(w io.Writer, failAfter int) *Writer {
	return &Writer{w: w, failAfter: failAfter}
}

// Write passes on as much of p as the limit allows. A short write
// comes with ErrBroken.
func (bw *Writer) Write(p []byte) (int, error) {
	left := bw.failAfter - bw.nByte
	if left <= 0 {
		return 0, ErrBroken
	}
	short := false
	if len(p) > left {
		p = p[:left]
		short = true
	}
	n, err := bw.w.Write(p)
	bw.nByte += n
	if err == nil && short {
		err = ErrBroken
	}
	return n, err
}

// N is the number of bytes that got through.
func (bw *Writer) N() int { return bw.nByte }
