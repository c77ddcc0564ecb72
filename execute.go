package collective

import (
	"context"
	"fmt"
	"time"

	"github.com/arloliu/collective/partition"
)

// Report is what one participant knows after a round.
type Report[E, S, R any] struct {
	// Workload is the workload name.
	Workload string

	// Identity is the reporting participant.
	Identity Identity

	// Size is the group size.
	Size int

	// InputNames and ResultName label the data for printing.
	InputNames []string
	ResultName string

	// Partitions holds this rank's partition of every input.
	Partitions [][]E

	// Shared is the broadcast value (zero when the workload has none).
	Shared S

	// Local is this rank's local result.
	Local []R

	// Inputs holds the full datasets. Coordinator only.
	Inputs [][]E

	// Ranks holds every rank's labelled result. Coordinator only.
	Ranks []RankResult[R]

	// Final is the recombined result in dataset order. Coordinator only.
	Final []R
}

// IsCoordinator reports whether the report carries the recombined result.
func (r *Report[E, S, R]) IsCoordinator() bool {
	return r.Identity.IsCoordinator()
}

// Execute runs one round of w on this participant.
//
// Every participant calls Execute with the same workload. The run proceeds:
//
//  1. CONFIGURED: the group size is checked against the dataset length on
//     every participant, before any communication. A violation ends the run
//     on every participant with a *ConfigError and nothing is sent.
//  2. DISTRIBUTING: the coordinator builds the datasets, every input is
//     scattered in order, then the shared value is broadcast.
//  3. COMPUTING: the local compute unit runs on this rank's partitions.
//  4. Non-coordinators submit identity and result and finish. The coordinator
//     COLLECTs all results in rank order and moves to REPORTING.
//
// Parameters:
//   - ctx: Context for cancellation
//   - s: Participant session in PhaseInit
//   - w: Workload
//
// Returns:
//   - *Report: Local view; the coordinator's includes the final result
//   - error: *ConfigError, ErrShapeMismatch, ErrStalled, a transport error
//     or the compute unit's error
//
// Example:
//
//	report, err := collective.Execute(ctx, sess, kernel.VectorSumWorkload(48))
//	if err != nil {
//	    return err
//	}
//	collective.WriteReport(os.Stdout, report)
func Execute[E, S, R any](ctx context.Context, s *Session, w Workload[E, S, R]) (*Report[E, S, R], error) {
	if err := s.transitionTo(ctx, PhaseConfigured); err != nil {
		return nil, err
	}

	if err := w.validate(); err != nil {
		return nil, s.fail(ctx, err)
	}
	if err := partition.Check(w.Length, s.Size(), s.cfg.MaxParticipants); err != nil {
		s.logger.Warn("group size cannot partition the dataset",
			"length", w.Length,
			"participants", s.Size(),
			"max_participants", s.cfg.MaxParticipants,
		)

		return nil, s.fail(ctx, err)
	}

	chunk := partition.ChunkSize(w.Length, s.Size())
	root := s.cfg.Root

	report := &Report[E, S, R]{
		Workload:   w.Name,
		Identity:   s.Identity(),
		Size:       s.Size(),
		ResultName: w.resultName(),
		InputNames: make([]string, w.Inputs),
	}
	for i := range w.Inputs {
		report.InputNames[i] = w.inputName(i)
	}

	if err := s.transitionTo(ctx, PhaseDistributing); err != nil {
		return nil, s.fail(ctx, err)
	}
	if err := distribute(ctx, s, &w, report, root, chunk); err != nil {
		return nil, s.fail(ctx, err)
	}

	if err := s.transitionTo(ctx, PhaseComputing); err != nil {
		return nil, s.fail(ctx, err)
	}
	start := time.Now()
	local, err := w.Compute(report.Partitions, report.Shared)
	if err != nil {
		return nil, s.fail(ctx, fmt.Errorf("local compute of %s failed: %w", w.Name, err))
	}
	s.metrics.RecordComputeDuration(w.Name, time.Since(start).Seconds())

	if len(local) != chunk {
		return nil, s.fail(ctx, fmt.Errorf("%w: %s produced %d elements for a partition of %d",
			ErrShapeMismatch, w.Name, len(local), chunk))
	}
	report.Local = local

	if err := s.hooks.OnLocalResult(ctx, s.Identity(), len(local)); err != nil {
		s.logger.Error("local result hook error", "error", err)
	}

	if !s.Identity().IsCoordinator() {
		if err := Submit(ctx, s, local); err != nil {
			return nil, s.fail(ctx, err)
		}
		s.logger.Info("sent identity and local result to coordinator", "rank", s.Rank(), "host", s.Identity().Host)

		if err := s.transitionTo(ctx, PhaseDone); err != nil {
			return nil, err
		}
		s.metrics.RecordRunResult(runResult(nil))

		return report, nil
	}

	if err := s.transitionTo(ctx, PhaseCollecting); err != nil {
		return nil, s.fail(ctx, err)
	}
	gathered, err := Collect(ctx, s, local, chunk)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	report.Ranks = gathered.Ranks
	report.Final = gathered.Final

	if err := s.transitionTo(ctx, PhaseReporting); err != nil {
		return nil, s.fail(ctx, err)
	}
	s.logger.Info("run complete", "workload", w.Name, "participants", s.Size(), "elements", len(report.Final))

	if err := s.transitionTo(ctx, PhaseDone); err != nil {
		return nil, err
	}
	s.metrics.RecordRunResult(runResult(nil))

	return report, nil
}

// distribute scatters every input and broadcasts the shared value.
func distribute[E, S, R any](ctx context.Context, s *Session, w *Workload[E, S, R], report *Report[E, S, R], root, chunk int) error {
	var (
		inputs [][]E
		shared S
	)

	if s.Rank() == root {
		var err error
		inputs, shared, err = w.Build()
		if err != nil {
			return fmt.Errorf("failed to build %s datasets: %w", w.Name, err)
		}
		if len(inputs) != w.Inputs {
			return fmt.Errorf("%w: %s built %d inputs, declared %d", ErrInvalidConfig, w.Name, len(inputs), w.Inputs)
		}
		for i, in := range inputs {
			if len(in) != w.Length {
				return fmt.Errorf("%w: %s input %d has %d elements, declared %d", ErrInvalidConfig, w.Name, i, len(in), w.Length)
			}
		}
		report.Inputs = inputs

		s.logger.Info("distributing datasets",
			"workload", w.Name,
			"rank", s.Rank(),
			"host", s.Identity().Host,
			"participants", s.Size(),
		)
	} else {
		s.logger.Info("receiving scattered datasets", "rank", s.Rank(), "host", s.Identity().Host)
	}

	report.Partitions = make([][]E, w.Inputs)
	for i := range w.Inputs {
		var data []E
		if inputs != nil {
			data = inputs[i]
		}

		part, err := Scatter(ctx, s, root, data, chunk)
		if err != nil {
			return fmt.Errorf("failed to scatter %s: %w", w.inputName(i), err)
		}
		report.Partitions[i] = part
	}

	if w.Shared {
		value, err := Broadcast(ctx, s, root, shared)
		if err != nil {
			return fmt.Errorf("failed to broadcast shared value: %w", err)
		}
		report.Shared = value
	}

	return nil
}
