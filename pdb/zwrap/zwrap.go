// Package zwrap takes a file pointer and optionally wraps it so upon
// calling Close, the decompressor will be closed, followed by the
// underlying file.
// It goes the other way too. A writer can be wrapped so the output is
// gzipped and Close flushes the compressor before closing the file.
// I benchmarked with and without buffering in Wrap(). I could not measure
// any difference.

package zwrap

import (
	"errors"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// GzSuffix is what we look for at the end of a file name.
const GzSuffix = ".gz"

type FpGzip struct { // This is what we return.
	fp   io.ReadCloser
	zrdr *gzip.Reader
}

// joinErr puts the close errors of the compressor and the file
// into one.
func joinErr(e1, e2 error) error {
	var s string
	if e1 != nil {
		s = e1.Error()
	}
	if e2 != nil {
		s = s + " " + e2.Error()
	}
	if s == "" {
		return nil
	}
	return errors.New(s)
}

// Close closes the compressor, then the underlying backing readCloser.
// It should work if the source is a file or an http stream.
func (fc *FpGzip) Close() error {
	if fc.zrdr == nil {
		return fc.fp.Close()
	}
	return joinErr(fc.zrdr.Close(), fc.fp.Close())
}

// Read makes sure we read from the compressed stream and
// not the underlying file stream.
func (fc *FpGzip) Read(p []byte) (int, error) {
	if fc.zrdr != nil {
		return fc.zrdr.Read(p)
	}
	return fc.fp.Read(p)
}

// Gzipped says if we are decompressing.
func (fc *FpGzip) Gzipped() bool { return fc.zrdr != nil }

// Wrap takes a source like a file pointer or http stream and wraps it
// so the correct Close and Read will be called. Although we use the
// name fp, it should be happy if it is fed an http stream.
func Wrap(fp io.ReadCloser) (*FpGzip, error) {
	var fpz FpGzip
	var err error
	fpz.fp = fp
	fpz.zrdr, err = gzip.NewReader(fpz.fp) // No need to check error.
	return &fpz, err                       // Just pass it back
}

// ReadSeekCloser is what a file or a mapped file gives us.
type ReadSeekCloser interface {
	io.Reader
	io.Seeker
	io.Closer
}

// WrapMaybe will decide if the underlying stream is compressed
// and wrap the file pointer if necessary.
// You do lose something. If you pass in something which can seek,
// you get back a ReadCloser which cannot seek. This is the price
// one pays for reading from a compressed reader.
func WrapMaybe(fpIn ReadSeekCloser) (*FpGzip, error) {
	if out, err := Wrap(fpIn); err == nil {
		return out, nil // It was compressed. Return compressed reader.
	}
	_, err := fpIn.Seek(0, io.SeekStart)
	r := &FpGzip{
		fp: fpIn, // Leave the zrdr implicitly nil
	}

	return r, err
}

// HasGz says if a file name ends in .gz, ignoring case.
func HasGz(fname string) bool {
	return strings.HasSuffix(strings.ToLower(fname), GzSuffix)
}

// StripGz removes a trailing .gz from a file name.
func StripGz(fname string) string {
	if HasGz(fname) {
		return fname[:len(fname)-len(GzSuffix)]
	}
	return fname
}

// FpGzipW is the writing version of FpGzip.
type FpGzipW struct {
	fp   io.WriteCloser
	zwrt *gzip.Writer
}

// WrapWriter returns a writer that compresses if gzipped is true
// and otherwise passes everything straight through.
func WrapWriter(fp io.WriteCloser, gzipped bool) *FpGzipW {
	w := &FpGzipW{fp: fp}
	if gzipped {
		w.zwrt = gzip.NewWriter(fp)
	}
	return w
}

// Write goes to the compressor if there is one.
func (fw *FpGzipW) Write(p []byte) (int, error) {
	if fw.zwrt != nil {
		return fw.zwrt.Write(p)
	}
	return fw.fp.Write(p)
}

// Close flushes and closes the compressor, then closes the
// underlying writer.
func (fw *FpGzipW) Close() error {
	if fw.zwrt == nil {
		return fw.fp.Close()
	}
	return joinErr(fw.zwrt.Close(), fw.fp.Close())
}
