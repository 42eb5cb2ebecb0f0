/*
Cif2pdb converts an mmcif file to the old fixed column PDB format.

PDB files have one column for the chain name. An mmcif file can have
names like "AAA" or "A-2". Chains with a one character name keep it.
Every other chain gets the next free name from
	A-Z, then 0-9, then a-z
If there are more than 62 chains, nothing is written and the exit
status is 1.

Usage:
	cif2pdb [flags] input.cif [output.pdb]

Without an output name, the output goes next to the input, so
dir/1abc.cif.gz becomes dir/1abc.pdb. An output name ending in .gz is
compressed.

The flags are:
	-v
		Verbose. Log the input and output names and every renamed chain.
	-log file
		Send the log to a file instead of standard error. "stdout" works too.
	-m mapfile
		Write a yaml file listing new and old chain names.
	-n
		Dry run. Read and rename, check the result would fit, but do
		not write a PDB file. With -m, the map is still written.
	-fetch
		The input is a four letter PDB code. Download it.
	-site n
		Which archive site to download from.
	-model n
		Keep models up to n. -1 means all.
	-chains A,B
		Only keep these chains, using the names in the mmcif file.
	-atoms CA,CB
		Only keep atoms with these names.

Exit status is 0 on success, 1 if the conversion failed and 2 for a
usage error.
*/
package main
