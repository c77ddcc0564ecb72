package collective

import "github.com/arloliu/collective/types"

// Re-export types from the types package.
//
// Internal packages depend on types rather than on the root package; the
// aliases give users collective.Identity, collective.Phase and so on.
type (
	Identity    = types.Identity
	Phase       = types.Phase
	Tag         = types.Tag
	ConfigError = types.ConfigError
)

// Re-export interfaces from the types package.
type (
	Transport        = types.Transport
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
	Hooks            = types.Hooks
)

// Re-export Phase constants.
const (
	PhaseInit         = types.PhaseInit
	PhaseConfigured   = types.PhaseConfigured
	PhaseDistributing = types.PhaseDistributing
	PhaseComputing    = types.PhaseComputing
	PhaseCollecting   = types.PhaseCollecting
	PhaseReporting    = types.PhaseReporting
	PhaseDone         = types.PhaseDone
)

// Re-export message tags and the coordinator rank.
const (
	TagIdentity     = types.TagIdentity
	TagResult       = types.TagResult
	CoordinatorRank = types.CoordinatorRank
)
