package collective

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/arloliu/collective/internal/hooks"
	"github.com/arloliu/collective/internal/logging"
	"github.com/arloliu/collective/internal/metrics"
	"github.com/arloliu/collective/types"
)

// Session is one participant's context for a run.
//
// A Session binds the participant identity (rank and host label), the group
// size reported by the transport, the configuration and the ambient
// collaborators. It tracks the participant phase and rejects out-of-order
// phase changes. Everything a participant needs is reachable from its
// Session; there is no package-level state.
//
// A Session runs at most one round and is driven by one goroutine.
type Session struct {
	cfg       Config
	transport Transport
	id        Identity
	size      int

	logger  Logger
	metrics MetricsCollector
	hooks   Hooks

	mu         sync.Mutex
	phase      Phase
	phaseSince time.Time

	// phaseEvents feeds OnPhaseChanged in transition order and is closed on
	// entering PhaseDone.
	phaseEvents chan phaseEvent
}

type phaseEvent struct {
	ctx      context.Context
	from, to Phase
}

// phaseEventBuffer holds every transition a session can make, so enqueueing
// never blocks.
const phaseEventBuffer = 8

// NewSession creates a participant session on top of a joined transport.
//
// The configuration is copied, defaults are applied and it is validated.
// Rank and group size come from the transport.
//
// Parameters:
//   - cfg: Configuration (nil uses DefaultConfig)
//   - tr: Transport the participant communicates through
//   - opts: Optional logger, metrics, hooks and host label
//
// Returns:
//   - *Session: Session in PhaseInit
//   - error: ErrTransportRequired or ErrInvalidConfig
//
// Example:
//
//	g, _ := transport.Join(ctx, store, transport.GroupConfig{RunID: "run-1", Rank: 0, Size: 4})
//	sess, err := collective.NewSession(&cfg, g, collective.WithLogger(logger))
func NewSession(cfg *Config, tr Transport, opts ...Option) (*Session, error) {
	if tr == nil {
		return nil, ErrTransportRequired
	}

	conf := DefaultConfig()
	if cfg != nil {
		conf = *cfg
	}
	SetDefaults(&conf)
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	options := sessionOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	if options.logger == nil {
		options.logger = logging.NewNop()
	}
	if options.metrics == nil {
		options.metrics = metrics.NewNop()
	}
	if options.host == "" {
		options.host = localHost()
	}

	if tr.Size() < 1 || tr.Rank() < 0 || tr.Rank() >= tr.Size() {
		return nil, fmt.Errorf("%w: transport reports rank %d in group of %d", ErrInvalidRank, tr.Rank(), tr.Size())
	}

	conf.ValidateWithWarnings(options.logger)

	s := &Session{
		cfg:         conf,
		transport:   tr,
		id:          Identity{Rank: tr.Rank(), Host: options.host},
		size:        tr.Size(),
		logger:      options.logger,
		metrics:     options.metrics,
		hooks:       hooks.Fill(options.hooks),
		phase:       PhaseInit,
		phaseSince:  time.Now(),
		phaseEvents: make(chan phaseEvent, phaseEventBuffer),
	}
	go s.deliverPhaseEvents()

	return s, nil
}

// deliverPhaseEvents runs OnPhaseChanged for each transition, one at a time,
// until the session reaches PhaseDone.
func (s *Session) deliverPhaseEvents() {
	for ev := range s.phaseEvents {
		if err := s.hooks.OnPhaseChanged(ev.ctx, ev.from, ev.to); err != nil {
			s.logger.Error("phase change hook error", "from", ev.from, "to", ev.to, "error", err)
		}
	}
}

func localHost() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "unknown"
	}

	return host
}

// Identity returns the participant identity.
func (s *Session) Identity() Identity { return s.id }

// Rank returns the participant rank.
func (s *Session) Rank() int { return s.id.Rank }

// Size returns the group size.
func (s *Session) Size() int { return s.size }

// Config returns a copy of the session configuration.
func (s *Session) Config() Config { return s.cfg }

// Logger returns the session logger.
func (s *Session) Logger() Logger { return s.logger }

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.phase
}

// Close moves the session to PhaseDone and closes the transport.
//
// Parameters:
//   - ctx: Context for transport shutdown
//
// Returns:
//   - error: Transport close error
func (s *Session) Close(ctx context.Context) error {
	if s.Phase() != PhaseDone {
		_ = s.transitionTo(ctx, PhaseDone)
	}

	return s.transport.Close(ctx)
}

// transitionTo moves the session to phase to.
//
// Invalid transitions are logged and rejected with ErrInvalidPhaseTransition.
func (s *Session) transitionTo(ctx context.Context, to Phase) error {
	s.mu.Lock()
	from := s.phase
	if !s.isValidTransition(from, to) {
		s.mu.Unlock()
		s.logger.Error("invalid phase transition attempted",
			"from", from.String(),
			"to", to.String(),
			"rank", s.id.Rank,
		)

		return fmt.Errorf("%w: %s -> %s", ErrInvalidPhaseTransition, from, to)
	}

	now := time.Now()
	elapsed := now.Sub(s.phaseSince)
	s.phase = to
	s.phaseSince = now
	s.phaseEvents <- phaseEvent{ctx: context.WithoutCancel(ctx), from: from, to: to}
	if to == PhaseDone {
		close(s.phaseEvents)
	}
	s.mu.Unlock()

	s.logger.Debug("phase transition",
		"from", from.String(),
		"to", to.String(),
		"rank", s.id.Rank,
		"host", s.id.Host,
	)

	s.metrics.RecordPhaseTransition(from, to, elapsed.Seconds())

	return nil
}

// isValidTransition validates that a phase transition is allowed.
//
// Returns:
//   - bool: true if transition is valid, false otherwise
func (s *Session) isValidTransition(from, to Phase) bool {
	validTransitions := map[Phase][]Phase{
		PhaseInit:         {PhaseConfigured, PhaseDone},
		PhaseConfigured:   {PhaseDistributing, PhaseDone},
		PhaseDistributing: {PhaseComputing, PhaseDone},
		PhaseComputing:    {PhaseCollecting, PhaseDone},
		PhaseCollecting:   {PhaseReporting, PhaseDone},
		PhaseReporting:    {PhaseDone},
		PhaseDone:         {}, // Terminal phase - no transitions allowed
	}

	// Only the coordinator collects
	if to == PhaseCollecting && !s.id.IsCoordinator() {
		return false
	}

	allowed, exists := validTransitions[from]
	if !exists {
		return false
	}

	for _, phase := range allowed {
		if phase == to {
			return true
		}
	}

	return false
}

// bounded derives the context for one blocking call.
//
// With OperationTimeout == 0 the parent is returned unchanged.
func (s *Session) bounded(parent context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.OperationTimeout <= 0 {
		return parent, func() {}
	}

	return context.WithTimeout(parent, s.cfg.OperationTimeout)
}

// stalled turns the expiry of an operation timeout into ErrStalled.
//
// A deadline inherited from the parent context is returned unchanged.
func (s *Session) stalled(parent context.Context, err error, op string, peer int) error {
	if err == nil || s.cfg.OperationTimeout <= 0 {
		return err
	}
	if !errors.Is(err, context.DeadlineExceeded) || parent.Err() != nil {
		return err
	}

	return fmt.Errorf("%w: %s with rank %d did not complete within %v: %w",
		ErrStalled, op, peer, s.cfg.OperationTimeout, err)
}

// fail finishes a run that ended with err.
func (s *Session) fail(ctx context.Context, err error) error {
	if s.Phase() != PhaseDone {
		_ = s.transitionTo(ctx, PhaseDone)
	}

	s.metrics.RecordRunResult(runResult(err))
	s.logger.Error("run failed", "rank", s.id.Rank, "host", s.id.Host, "error", err)

	if hookErr := s.hooks.OnError(context.WithoutCancel(ctx), err); hookErr != nil {
		s.logger.Error("error hook failed", "error", hookErr)
	}

	return err
}

// runResult classifies a run outcome for metrics.
func runResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, types.ErrConfiguration):
		return "config_error"
	case errors.Is(err, types.ErrStalled):
		return "stalled"
	case errors.Is(err, types.ErrTransport):
		return "transport_error"
	default:
		return "error"
	}
}
