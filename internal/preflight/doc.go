// Package preflight checks that the Fmask toolchain and the filesystem paths a
// batch depends on are usable before any job starts.
//
// The process commands call RunAll and abort with a configuration error when
// a check fails, so a mistyped runtime path is reported once instead of once
// per product. "gofmask check" renders the same results as a table.
package preflight
