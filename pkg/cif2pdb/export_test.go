package cif2pdb

import "io"

// SetStderr sends error messages to w until the returned function is called.
func SetStderr(w io.Writer) func() {
	old := stderr
	stderr = w
	return func() { stderr = old }
}
