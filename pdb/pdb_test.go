package pdb_test

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/andrew-torda/cif2pdb/pdb"
	"github.com/andrew-torda/cif2pdb/pdb/cmmn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testdir = filepath.Join("mmcif", "testdata")

// TestBrokenFile checks if we get sensible error messages when we open
// something that is not an mmcif file.
func TestBrokenFile(t *testing.T) {
	testfiles := []string{
		t.TempDir(),
		"/does/not/exist.cif",
		filepath.Join("mmcif", "testerrors", "rubbish.cif"),
		filepath.Join("mmcif", "testerrors", "empty.cif"),
	}
	for _, s := range testfiles {
		strct, err := ReadStructure(context.Background(), s, nil)
		if strct != nil {
			t.Error("structure should be nil")
		}
		if err == nil {
			t.Error("Did not get expected error on", s)
		}
	}
}

// writeTmp puts contents in a file with a name that does not give
// away the format.
func writeTmp(t *testing.T, name, contents string) string {
	t.Helper()
	fname := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(fname, []byte(contents), 0o644))
	return fname
}

func TestOldOrMmcif(t *testing.T) {
	var fnameTypes = []struct {
		fname string
		ftype byte
	}{
		{"boo.mmcif", MmcifFmt},
		{"boo.mmcif.gz", MmcifFmt},
		{"a/b/c.ent", OldFmt},
		{"a/b.ent.gz", OldFmt},
		{"a.pdb", OldFmt},
		{"A.PDB.GZ", OldFmt},
		{"x.cif", MmcifFmt},
		{writeTmp(t, "ememcif", "# comment\ndata_1abc\n"), MmcifFmt},
		{writeTmp(t, "ememcif2", "loop_\n"), MmcifFmt},
		{writeTmp(t, "peedeebee1", "HEADER    PLANT PROTEIN\n"), OldFmt},
		{writeTmp(t, "peedeebee2", "ATOM      1  N   MET A   1\n"), OldFmt},
		{filepath.Join(testdir, "twomodel.cif.gz"), MmcifFmt},
	}
	for _, f := range fnameTypes {
		r, err := OldOrMmcif(f.fname)
		if err != nil {
			t.Error("unexpected problem in", t.Name(), err)
		}
		if r != f.ftype {
			t.Error("in", t.Name(), "working on ", f.fname)
		}
	}
	_, err := OldOrMmcif(writeTmp(t, "rubbish", "nothing to see\n"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestReadStructure(t *testing.T) {
	for _, fname := range []string{"twomodel.cif", "twomodel.cif.gz"} {
		s, err := ReadStructure(context.Background(), filepath.Join(testdir, fname), nil)
		require.NoError(t, err, fname)
		assert.Equal(t, "1TST", s.ID)
		assert.Equal(t, []string{"A", "AAA", "B"}, s.ChainNames())
		assert.Equal(t, 9, s.NAtom())
	}
	opts := DefaultOptions()
	opts.ModelMax = 1
	opts.Atoms = []string{"CA"}
	s, err := ReadStructure(context.Background(), filepath.Join(testdir, "twomodel.cif"), opts)
	require.NoError(t, err)
	assert.Equal(t, 2, s.NAtom())
	assert.Equal(t, []string{"A", "AAA"}, s.ChainNames())
}

func TestOldFormat(t *testing.T) {
	_, err := ReadStructure(context.Background(),
		writeTmp(t, "1abc.pdb", "ATOM      1  N   MET A   1\n"), nil)
	assert.ErrorIs(t, err, ErrOldFormat)
}

func TestNoAtoms(t *testing.T) {
	_, err := ReadStructure(context.Background(),
		writeTmp(t, "x.cif", "data_x\n_entry.id x\n"), nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no atoms")
}

func TestDownload(t *testing.T) {
	body, err := os.ReadFile(filepath.Join(testdir, "twomodel.cif"))
	require.NoError(t, err)
	gzBody, err := os.ReadFile(filepath.Join(testdir, "twomodel.cif.gz"))
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/plain/1tst"):
			w.Write(body)
		case strings.HasPrefix(r.URL.Path, "/gz/1tst"):
			w.Write(gzBody)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	restore := SetSites([]string{srv.URL + "/plain/", srv.URL + "/gz/"}, []bool{false, true})
	defer restore()
	ctx := context.Background()

	for _, siteNum := range []int{0, 1, 2, 3, -1, math.MinInt, math.MaxInt} { // all wrap around
		b, err := GetHTTP(ctx, "1TST", siteNum)
		require.NoError(t, err, siteNum)
		assert.Equal(t, string(body), string(b), siteNum)
	}

	_, err = GetHTTP(ctx, "2bad", 0)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	_, err = GetHTTP(ctx, "toolong", 0)
	assert.Error(t, err)

	opts := DefaultOptions()
	opts.Src = cmmn.HTTPSrc
	opts.SiteNum = 1
	s, err := ReadStructure(ctx, "1tst", opts)
	require.NoError(t, err)
	assert.Equal(t, 9, s.NAtom())

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = GetHTTP(cctx, "1tst", 0)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestResolution(t *testing.T) {
	body, err := os.ReadFile(filepath.Join(testdir, "twomodel.cif"))
	require.NoError(t, err)
	for _, x := range []struct {
		extra string
		want  float32
	}{
		{"", 0},
		{"_refine.ls_d_res_high 1.80\n_reflns.d_resolution_high 1.75\n", 1.8},
		{"_refine.ls_d_res_high ?\n_reflns.d_resolution_high 2.5\n", 2.5},
		{"_reflns.d_resolution_high .\n", 0},
		{"_refine.ls_d_res_high rubbish\n", 0},
	} {
		fname := writeTmp(t, "res.cif", string(body)+x.extra)
		s, err := ReadStructure(context.Background(), fname, nil)
		require.NoError(t, err, x.extra)
		assert.InDelta(t, x.want, s.Resolution, 1e-5, x.extra)
	}
}
