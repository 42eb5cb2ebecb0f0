package pdb

import (
	"context"
	"io"
)

var OldOrMmcif = oldOrMmcif

// SetSites points the downloader at test servers. Call the returned
// function to put the real sites back.
func SetSites(urlBase []string, gzipped []bool) func() {
	old := sites
	sites = nil
	for i := range urlBase {
		sites = append(sites, site{urlBase[i], ".cif", gzipped[i]})
	}
	return func() { sites = old }
}

func GetHTTP(ctx context.Context, acqCode string, siteNum int) ([]byte, error) {
	rdr, err := getHTTP(ctx, acqCode, siteNum)
	if err != nil {
		return nil, err
	}
	defer rdr.Close()
	return io.ReadAll(rdr)
}
