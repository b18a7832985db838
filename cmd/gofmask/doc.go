// Package main hosts the gofmask CLI entrypoint and command graph.
//
// The process commands collect product paths from arguments, a directory, or
// a list file, check the Fmask toolchain, and hand the batch to the
// dispatcher. The remaining commands maintain the configuration file, leftover
// extraction directories, and the run history.
package main
