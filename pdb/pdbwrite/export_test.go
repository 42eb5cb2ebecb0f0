package pdbwrite

var ResNum = resNum
var AtomName = atomName
