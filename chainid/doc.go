// Package chainid gives chains one-character names so a structure
// can be written in old PDB format.
//
// mmCIF files let a chain be called anything, "AAA" or "A-2". PDB
// files have one column for the chain. Chains that already have a
// one-character name keep it. The others get the first free names from
// Alphabet, A-Z, then 0-9, then a-z. If there are more than 62 names
// needed, Remap fails and the structure is left as it was.
package chainid
