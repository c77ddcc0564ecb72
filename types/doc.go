// Package types provides core type definitions and interfaces for the collective library.
//
// This package contains shared types that are used across multiple packages in the
// library. By keeping these types in a separate package, the root collective package,
// the partitioner, and the transport implementations can share them without import
// cycles.
//
// Key types:
//   - Identity: Participant rank and host label
//   - Phase: Participant lifecycle phase
//   - Tag: Point-to-point message channel
//   - Transport: Group collaborator (scatter, broadcast, send, receive)
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
