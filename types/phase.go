package types

// Phase represents the participant lifecycle phase within one run.
//
// Phases follow a fixed progression on the coordinator:
//
//	PhaseInit → PhaseConfigured → PhaseDistributing → PhaseComputing → PhaseCollecting → PhaseReporting → PhaseDone
//
// Non-coordinators skip collecting and reporting:
//
//	PhaseInit → PhaseConfigured → PhaseDistributing → PhaseComputing → PhaseDone
//
// A configuration failure moves PhaseConfigured directly to PhaseDone.
// All participants must enter the communicating phases in the same order;
// the phase is therefore an implicit, group-wide protocol position.
type Phase int

const (
	// PhaseInit is the initial phase: rank, group size and host are being discovered.
	PhaseInit Phase = iota

	// PhaseConfigured indicates the group size was validated against the dataset.
	PhaseConfigured

	// PhaseDistributing indicates scatter and broadcast calls are in progress.
	PhaseDistributing

	// PhaseComputing indicates the local compute unit is running.
	PhaseComputing

	// PhaseCollecting indicates the coordinator is gathering local results.
	PhaseCollecting

	// PhaseReporting indicates the coordinator is emitting the final result.
	PhaseReporting

	// PhaseDone is terminal; group resources are released.
	PhaseDone
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "Init"
	case PhaseConfigured:
		return "Configured"
	case PhaseDistributing:
		return "Distributing"
	case PhaseComputing:
		return "Computing"
	case PhaseCollecting:
		return "Collecting"
	case PhaseReporting:
		return "Reporting"
	case PhaseDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// IsCommunicating reports whether the phase issues group or point-to-point calls.
func (p Phase) IsCommunicating() bool {
	return p == PhaseDistributing || p == PhaseCollecting
}
