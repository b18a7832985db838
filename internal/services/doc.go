// Package services defines shared utilities consumed by the job pipeline and
// the external tool wrappers beneath it.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, job ordinals, and product paths for
//     logging.
//   - Structured error markers plus the Wrap helper that classify job failures
//     (resolution, staging, discovery, relocation) for the run summary.
//
// Subpackages wrap individual external executables behind testable
// interfaces.
package services
