package cif2pdb_test

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andrew-torda/cif2pdb/chainid"
	. "github.com/andrew-torda/cif2pdb/pkg/cif2pdb"
	"github.com/andrew-torda/cif2pdb/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var twomodel = filepath.Join("..", "..", "pdb", "mmcif", "testdata", "twomodel.cif")

func newFlags() *CmdFlag { return &CmdFlag{ModelMax: -1} }

// copyIn puts a test file in a fresh directory, so the default output
// lands there too.
func copyIn(t *testing.T, src, name string) string {
	t.Helper()
	b, err := os.ReadFile(src)
	require.NoError(t, err)
	fname := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(fname, b, 0o644))
	return fname
}

// nChains makes an mmcif file with n chains, all with long names.
func nChains(t *testing.T, n int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(`data_MANY
loop_
_atom_site.group_PDB
_atom_site.label_atom_id
_atom_site.label_comp_id
_atom_site.auth_asym_id
_atom_site.auth_seq_id
_atom_site.Cartn_x
_atom_site.Cartn_y
_atom_site.Cartn_z
`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "ATOM CA GLY L%02d 1 %d.0 0.0 0.0\n", i, i)
	}
	fname, err := common.WrtTemp(t.TempDir(), b.String())
	require.NoError(t, err)
	return fname
}

func run(t *testing.T, flags *CmdFlag, in, out string) (int, string) {
	t.Helper()
	var errs bytes.Buffer
	defer SetStderr(&errs)()
	r := MyMain(context.Background(), flags, in, out)
	return r, errs.String()
}

func TestConvert(t *testing.T) {
	in := copyIn(t, twomodel, "1tst.cif")
	dir := filepath.Dir(in)
	flags := newFlags()
	flags.LogFile = filepath.Join(dir, "log")
	flags.MapFile = filepath.Join(dir, "map.yaml")
	r, errs := run(t, flags, in, "")
	require.Equal(t, common.ExitSuccess, r, errs)
	assert.Empty(t, errs)

	out := filepath.Join(dir, "1tst.pdb")
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(b), "  GLY C   1")
	assert.NotContains(t, string(b), "AAA")

	logTxt, err := os.ReadFile(flags.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(logTxt), "INFO: Renamed chain 'AAA' to 'C' for PDB compatibility.")
	assert.Contains(t, string(logTxt), "INFO: Successfully converted "+in+" to "+out)
	assert.Equal(t, 1, strings.Count(string(logTxt), "Renamed chain"))

	fp, err := os.Open(flags.MapFile)
	require.NoError(t, err)
	defer fp.Close()
	rpt, m, err := chainid.ReadReport(fp)
	require.NoError(t, err)
	assert.Equal(t, chainid.RenameMap{"A": "A", "B": "B", "C": "AAA"}, m)
	assert.Equal(t, 1, rpt.NRename)
	assert.Equal(t, out, rpt.Output)
}

func TestDefaultOutput(t *testing.T) {
	for _, x := range []struct{ in, out string }{
		{"1abc.cif", "1abc.pdb"},
		{filepath.Join("dir", "1abc.cif.gz"), filepath.Join("dir", "1abc.pdb")},
		{filepath.Join("a.d", "x.y.mmcif"), filepath.Join("a.d", "x.y.pdb")},
		{"noext", "noext.pdb"},
	} {
		assert.Equal(t, x.out, DefaultOutput(x.in), x.in)
	}
}

func TestDryRun(t *testing.T) {
	in := copyIn(t, twomodel, "1tst.cif")
	dir := filepath.Dir(in)
	flags := newFlags()
	flags.DryRun = true
	flags.MapFile = filepath.Join(dir, "map.yaml")
	r, errs := run(t, flags, in, "")
	require.Equal(t, common.ExitSuccess, r, errs)
	_, err := os.Stat(filepath.Join(dir, "1tst.pdb"))
	assert.True(t, os.IsNotExist(err), "dry run wrote a pdb file")
	b, err := os.ReadFile(flags.MapFile)
	require.NoError(t, err)
	assert.Contains(t, string(b), "old: AAA")
	assert.NotContains(t, string(b), "output:")
}

func TestExhausted(t *testing.T) {
	in := nChains(t, 63)
	out := filepath.Join(filepath.Dir(in), "many.pdb")
	r, errs := run(t, newFlags(), in, out)
	assert.Equal(t, common.ExitFailure, r)
	assert.True(t, strings.HasPrefix(errs, "ERROR: Failed to convert: exceeded 62 chains"), errs)
	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err), "wrote output after failing")

	in = nChains(t, 62)
	out = filepath.Join(filepath.Dir(in), "many.pdb")
	r, errs = run(t, newFlags(), in, out)
	require.Equal(t, common.ExitSuccess, r, errs)
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(b), "  GLY z   1")
}

func TestMissingInput(t *testing.T) {
	in := filepath.Join(t.TempDir(), "nope.cif")
	r, errs := run(t, newFlags(), in, "")
	assert.Equal(t, common.ExitFailure, r)
	assert.Equal(t, "ERROR: Input file not found: "+in+"\n", errs)
}

func TestUsage(t *testing.T) {
	r, _ := run(t, newFlags(), "", "")
	assert.Equal(t, common.ExitUsageError, r)
	in := copyIn(t, twomodel, "x.cif")
	r, errs := run(t, newFlags(), in, in)
	assert.Equal(t, common.ExitUsageError, r)
	assert.Contains(t, errs, "overwrite")

	for _, m := range []int{70000, math.MaxInt16 + 1, -2} {
		flags := newFlags()
		flags.ModelMax = m
		r, errs = run(t, flags, in, "")
		assert.Equal(t, common.ExitUsageError, r, m)
		assert.Contains(t, errs, "model number", m)
		_, err := os.Stat(DefaultOutput(in))
		assert.True(t, os.IsNotExist(err), "wrote output with -model %d", m)
	}
	flags := newFlags()
	flags.ModelMax = math.MaxInt16
	r, errs = run(t, flags, in, "")
	assert.Equal(t, common.ExitSuccess, r, errs)
}

func TestBadInput(t *testing.T) {
	in := copyIn(t, filepath.Join("..", "..", "pdb", "mmcif", "testerrors", "rubbish.cif"), "r.cif")
	r, errs := run(t, newFlags(), in, "")
	assert.Equal(t, common.ExitFailure, r)
	assert.Contains(t, errs, "ERROR: Failed to convert:")
	assert.Contains(t, errs, "Unknown line type")
}

func TestGzAndFilters(t *testing.T) {
	in := copyIn(t, twomodel, "1tst.cif")
	out := filepath.Join(filepath.Dir(in), "ca.pdb.gz")
	flags := newFlags()
	flags.Atoms = "CA"
	flags.Chains = "AAA, B"
	flags.ModelMax = 1
	r, errs := run(t, flags, in, out)
	require.Equal(t, common.ExitSuccess, r, errs)
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Greater(t, len(b), 2)
	assert.Equal(t, []byte{0x1f, 0x8b}, b[:2])
}
