// Package services contains the core business logic for Extracta.
//
// Services orchestrate domain entities and driven ports:
//
//   - QueryCache: tiered cache lookup, upgrade and analyzer fallback
//   - merge helpers: combine extracted output with other handler output
//   - property normalisation: canonical names and value shapes for
//     raw analyzer properties
//   - failure suppression: per-facet ignore policy from the profile
//
// # Import Rules
//
//   - Can Import: domain, ports, logger
//   - Cannot Import: Any adapter package
package services
