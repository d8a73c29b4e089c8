// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for resolution to function:
//
//   - Analyzer: Queries the external content-analysis service
//   - Hasher: Computes content keys for local files
//   - CacheTier: One layer of the response cache (local tier at minimum)
//   - ProfileStore: Resolves per-mime-type profiles
//
// # Optional Interfaces
//
// These can be absent - resolution degrades gracefully:
//
//   - BlobStore: Backs the persistent tier. Without any configured
//     backend, resolution runs on the local tier and the analyzer alone.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
