package types

import "context"

// Hooks defines callbacks for participant lifecycle events.
//
// All hooks are optional. OnPhaseChanged runs on a per-session goroutine, one
// call at a time, in the order the transitions happened; a slow hook delays
// later hook calls but never the participant. OnLocalResult and OnError run
// synchronously on the participant's goroutine.
//
// Hook errors are logged but never fail the run.
type Hooks struct {
	// OnPhaseChanged is called when the participant changes phase.
	OnPhaseChanged func(ctx context.Context, from, to Phase) error

	// OnLocalResult is called after the local compute unit produced a result
	// of the given length.
	OnLocalResult func(ctx context.Context, id Identity, length int) error

	// OnError is called when the run fails.
	OnError func(ctx context.Context, err error) error
}
