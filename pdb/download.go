// Package pdb covers reading PDB coordinates, from a file or from
// one of the archive sites.
// pdb europe files are at http://www.ebi.ac.uk/pdbe/entry-files/download/5pti.cif
// The main point is to visit the web page and return a reader that
// can be used like the file readers.
package pdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andrew-torda/cif2pdb/pdb/zwrap"
)

type site struct {
	urlBase   string
	urlSuffix string
	gzipped   bool
}

var sites = []site{
	{"https://files.rcsb.org/download/", ".cif.gz", true},
	{"http://www.ebi.ac.uk/pdbe/entry-files/download/", ".cif", false},
	{"http://ftp.pdbj.org/mmcif/", ".cif.gz", true},
}

// NSite is the number of archive sites we know about.
func NSite() int { return len(sites) }

// validCode checks for a four character PDB code, like 1abc.
func validCode(acqCode string) bool {
	if len(acqCode) != 4 {
		return false
	}
	for i := 0; i < len(acqCode); i++ {
		c := acqCode[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}

// getHTTP is given a four letter pdb code. It goes to the protein data
// bank and should return a reader.
// There are three sites for structures. You can pick which one you want with
// siteNum. If you give a value that is too big or negative, we use a
// modulo to wrap it around, rather than generate an error. This makes it easier to cycle
// through them or pick one at random.
// Sites return normal or gzipped data, but if it is a gzipping site, we
// call zwrap to decompress and return that as the reader.
func getHTTP(ctx context.Context, acqCode string, siteNum int) (io.ReadCloser, error) {
	if !validCode(acqCode) {
		return nil, fmt.Errorf("acq code should be four letters or digits, not %q", acqCode)
	}
	n := len(sites)
	st := sites[((siteNum%n)+n)%n]
	url := st.urlBase + strings.ToLower(acqCode) + st.urlSuffix

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("wanted %s using %s, got %s", acqCode, url, resp.Status)
	}

	if st.gzipped {
		zr, err := zwrap.Wrap(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("%s from %s: %w", acqCode, url, err)
		}
		return zr, nil
	}
	return resp.Body, nil
}
