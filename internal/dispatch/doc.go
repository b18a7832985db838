// Package dispatch turns a batch of product paths into Fmask jobs.
//
// The worker count is the minimum of the physical core count, the number of
// products, and an optional user limit. With more than one worker, jobs run on
// a bounded pool, carry 1-based ordinals that prefix their progress lines, and
// every outcome is collected. With one worker, jobs run in input order and the
// first failure skips the remainder.
//
// Each job stages archives into a private extraction directory, resolves the
// working directory, runs Fmask there and relocates the resulting cloud mask.
// Extraction directories are removed on every exit path except a failed move,
// which would otherwise destroy the only copy of the mask.
package dispatch
