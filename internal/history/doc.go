// Package history keeps a SQLite record of every batch: when it ran, how many
// workers it used, and how each job ended. Recording failures are logged by
// the caller and never fail a batch.
package history
