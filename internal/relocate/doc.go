// Package relocate finds the cloud mask Fmask left in a working directory and
// moves it to its final location.
//
// Exactly one "*Fmask4.tif" file must exist below the working directory; none
// is a discovery failure and several is an ambiguity failure. When an output
// directory is given the mask moves there and an enclosing FMASK_DATA folder
// is deleted. Otherwise the mask moves to the user's home directory and the
// folder stays.
package relocate
