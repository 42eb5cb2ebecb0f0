/*
Cif2pdbtree converts all the mmcif files below a directory.

Usage:
	cif2pdbtree [flags] indir outdir

Files ending in .cif, .mmcif, .cif.gz or .mmcif.gz are read. Each
output goes to the same place under outdir as its input was under
indir, so indir/ab/1abc.cif.gz becomes outdir/ab/1abc.pdb. Chains are
renamed as by cif2pdb.

A broken file is reported and the others carry on. After -e broken
files, we stop. With -m, the map file has one yaml document per
converted file.

Besides the cif2pdb flags -v -log -m -n -model -chains and -atoms:
	-r n
		Number of files converted at once.
	-f n
		Stop after n files.
	-e n
		Give up after n broken files. 0 means never.
	-c file
		Write a cpu profile.

Exit status is 0 if every file was converted, 1 if any failed and 2 for
a usage error.
*/
package main
