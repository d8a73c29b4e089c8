// Package domain defines the core business entities for Extracta.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Entry: everything currently known about the analyzer's output
//     for one content key, as an immutable value
//   - ContentKey: content-addressing hash of a file's bytes
//   - Profile: per-mime-type handling configuration
//   - SystemError / ParserError: the two classified failure kinds
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
