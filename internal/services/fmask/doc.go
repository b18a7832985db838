// Package fmask runs the Fmask 4.x launcher for one product.
//
// The invocation is a single shell command line built from a Command
// template: launcher, MATLAB Runtime directory, cloud, cloud shadow and snow
// dilation sizes, and an optional cloud probability threshold. The tool runs
// in the product's working directory with stdout and stderr passed through,
// and the client prints "cwd:" and "shell cmd:" progress lines before each
// run, prefixed with "[n] " when jobs run concurrently.
//
// A non-zero exit is reported in the Outcome but never retried; the caller
// decides what a missing artifact means.
package fmask
