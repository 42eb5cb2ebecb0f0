// Package mapfile opens a file by mapping it into memory. The result
// can be read and seeked like a file, so zwrap can look inside it to
// see if it is compressed.
// An mmcif file is read once from start to end, and mapping it saves
// a copy from the kernel into our buffers.
package mapfile

import (
	"bytes"
	"errors"
	"os"

	"github.com/edsrzf/mmap-go"
)

// Mapped is a read only view of a file.
type Mapped struct {
	*bytes.Reader
	fp *os.File
	mm mmap.MMap // nil for an empty file
}

// Open maps fname. A zero length file cannot be mapped, so we give
// back something that reads nothing.
func Open(fname string) (*Mapped, error) {
	fp, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	info, err := fp.Stat()
	if err != nil {
		fp.Close()
		return nil, err
	}
	if info.IsDir() {
		fp.Close()
		return nil, errors.New(fname + " is a directory")
	}
	m := &Mapped{fp: fp}
	if info.Size() == 0 {
		m.Reader = bytes.NewReader(nil)
		return m, nil
	}
	if m.mm, err = mmap.Map(fp, mmap.RDONLY, 0); err != nil {
		fp.Close()
		return nil, err
	}
	m.Reader = bytes.NewReader(m.mm)
	return m, nil
}

// Len is the size of the whole file, not what is left to read.
func (m *Mapped) Len() int { return int(m.Reader.Size()) }

// Close unmaps and closes the file. It is safe to call twice.
func (m *Mapped) Close() error {
	var err error
	if m.mm != nil {
		err = m.mm.Unmap()
		m.mm = nil
		m.Reader = bytes.NewReader(nil)
	}
	if m.fp != nil {
		if e := m.fp.Close(); err == nil {
			err = e
		}
		m.fp = nil
	}
	return err
}
