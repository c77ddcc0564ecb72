// Package testing provides test utilities for the collective library.
//
// It follows Go's convention of providing testing helpers in a dedicated
// package (similar to net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: In-process NATS server with JetStream
//   - CreateJetStreamKV: Memory-backed KV bucket for a test
//   - NewTestLogger: types.Logger writing to testing.T
//
// Example usage:
//
//	import (
//	    "testing"
//	    coltest "github.com/arloliu/collective/testing"
//	)
//
//	func TestKVGroup(t *testing.T) {
//	    _, nc := coltest.StartEmbeddedNATS(t)
//	    // Use nc for your tests
//	}
package testing
