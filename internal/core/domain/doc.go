// Package domain defines the core business entities for billfeed.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Bill: A single version of a legislative bill
//   - LineageKey: The identity of a bill across versions
//   - RemoteSummary: A lightweight search hit from the remote API
//   - RunResult: The aggregated outcome of one ingestion run
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
