package brokenio_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andrew-torda/cif2pdb/brokenio"
)

var longstring = "0123456789012345678901234567890123456789"

func TestFailAfter(t *testing.T) {
	for _, n := range []int{0, 1, 7, 39} {
		rdr := brokenio.NewReader(strings.NewReader(longstring), n)
		got, err := io.ReadAll(rdr)
		if !errors.Is(err, brokenio.ErrBroken) {
			t.Errorf("failAfter %d: want ErrBroken, got %v", n, err)
		}
		if string(got) != longstring[:n] {
			t.Errorf("failAfter %d: got %q", n, got)
		}
	}
}

func TestReaderSimple(t *testing.T) {
	rdr := brokenio.NewReader(strings.NewReader(longstring), -1)
	got, err := io.ReadAll(rdr)
	if err != nil || string(got) != longstring {
		t.Errorf("simple read fail got %q wanted %q err %v", got, longstring, err)
	}
}

func TestZeroFile(t *testing.T) {
	rdr := brokenio.NewReader(strings.NewReader(longstring), -1)
	rdr.SetZeroFile()
	tmp := make([]byte, len(longstring))
	n, err := rdr.Read(tmp)
	if n > 0 {
		t.Error("should have received zero bytes")
	}
	if err != io.EOF {
		t.Errorf("Should have received EOF")
	}
}

func TestWriter(t *testing.T) {
	var b bytes.Buffer
	w := brokenio.NewWriter(&b, 5)
	if n, err := w.Write([]byte("abc")); n != 3 || err != nil {
		t.Fatal("first write", n, err)
	}
	if n, err := w.Write([]byte("defg")); n != 2 || !errors.Is(err, brokenio.ErrBroken) {
		t.Error("second write", n, err)
	}
	if _, err := w.Write([]byte("x")); err == nil {
		t.Error("writer should stay broken")
	}
	if b.String() != "abcde" || w.N() != 5 {
		t.Errorf("got %q", b.String())
	}
}

func Example_setVerbose() {
	rdr := brokenio.NewReader(strings.NewReader(longstring), -1)
	rdr.SetVerbose(true)
	tmp := make([]byte, len(longstring))
	rdr.Read(tmp)
	rdr.Close()
	// Output: Closing 1 calls and 40 bytes
}

// TestClose checks the reader really is calling the file's close method.
func TestClose(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "testclose")
	if err := os.WriteFile(fname, []byte(longstring), 0o644); err != nil {
		t.Fatal(err)
	}
	fp, err := os.Open(fname)
	if err != nil {
		t.Fatal("reading from tempfile, err = ", err)
	}
	rdr := brokenio.NewReader(fp, -1)
	if err = rdr.Close(); err != nil {
		t.Error("failed on close of reader")
	}
	if _, err := fp.Read(make([]byte, 1)); err == nil {
		t.Error("file should be closed")
	}
}
