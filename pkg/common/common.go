// Package common has the few things the command line programs share.
package common

import (
	"fmt"
	"io"
	"os"
)

const (
	ExitSuccess = iota
	ExitFailure
	ExitUsageError
)

// WrtTemp writes a string to a temporary file in dir and returns
// the filename. It is used all over the place in testing.
// An empty dir means the system temporary directory.
func WrtTemp(dir, s string) (string, error) {
	fTmp, err := os.CreateTemp(dir, "_del_me_testing*.cif")
	if err != nil {
		return "", fmt.Errorf("tempfile fail: %w", err)
	}
	defer fTmp.Close()
	if _, err := io.WriteString(fTmp, s); err != nil {
		return "", fmt.Errorf("writing string to temp file %v", fTmp.Name())
	}
	return fTmp.Name(), nil
}
