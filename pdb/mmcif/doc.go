// Package mmcif reads a file in mmcif/cif format.
// The first thing to do is build an MmcifReader, tell it what you want
// and then call DoFile. Structure then gives the chains.
//
// Reading mmcif files is interesting because they are so big,
// but we do not want much information from them.
// If one looks at the format there are some features that make it
// simpler.
// 1. The first character on the line is decisive. If it is a data item
// it has to be a "_". A loop starts with loop_.
// 2. The pdb promises that they will restrict themselves to a certain
// style. In the atom_site records, the columns are nearly always the
// same, but we look them up by name from the loop header anyway.
//
// Multi-line text fields look like
//
//	;a
//	  b
//	;
//
// We join the lines with a single space.
//
// Overall structure
// Most tables are of no interest (solvents, crystallisation details, ..).
// We jump over anything not in our lists of interesting data items and
// tables. The atom_site table is read by a second goroutine, which is fed
// slices of lines through a channel while we carry on reading the file.
//
// Notes about the mmcif format...
// A question mark, ?, means a missing value.
// A dot, ., means not appropriate or deliberately left out.
// Chain names come from _atom_site.auth_asym_id, which is the
// author's name and what an old PDB file would have had. If it is
// missing, we use label_asym_id. The same goes for residue numbers,
// names and atom names. Names can be longer than one character, so
// "AAA" or "A-2" are fine here. It is the job of someone else to make
// them fit into a PDB file.
package mmcif
