package collective

import "fmt"

// Workload describes one partition, compute, recombine round.
//
// E is the dataset element (an int, or a matrix row), S the broadcast value
// every rank needs in full, and R the local result element.
type Workload[E, S, R any] struct {
	// Name identifies the workload in logs and metrics.
	Name string

	// Length is the number of elements (or rows) in every scattered dataset.
	Length int

	// Inputs is the number of datasets scattered, in order.
	Inputs int

	// InputNames labels the datasets in the report ("A", "B"). Optional.
	InputNames []string

	// ResultName labels the local result in the report. Optional.
	ResultName string

	// Shared reports whether Build's shared value is broadcast.
	Shared bool

	// Build constructs the datasets and the shared value. It runs on the
	// coordinator only.
	Build func() (inputs [][]E, shared S, err error)

	// Compute is the local compute unit. It receives this rank's partition of
	// every input, in input order, and the shared value (zero when Shared is
	// false). It must return one result element per partition element.
	Compute func(parts [][]E, shared S) ([]R, error)
}

func (w *Workload[E, S, R]) validate() error {
	switch {
	case w.Length < 1:
		return fmt.Errorf("%w: workload %q length must be positive, got %d", ErrInvalidConfig, w.Name, w.Length)
	case w.Inputs < 1:
		return fmt.Errorf("%w: workload %q must scatter at least one input", ErrInvalidConfig, w.Name)
	case w.Compute == nil:
		return fmt.Errorf("%w: workload %q has no compute function", ErrInvalidConfig, w.Name)
	case w.Build == nil:
		return fmt.Errorf("%w: workload %q has no build function", ErrInvalidConfig, w.Name)
	}

	return nil
}

func (w *Workload[E, S, R]) inputName(i int) string {
	if i < len(w.InputNames) && w.InputNames[i] != "" {
		return w.InputNames[i]
	}

	return fmt.Sprintf("Input %d", i)
}

func (w *Workload[E, S, R]) resultName() string {
	if w.ResultName != "" {
		return w.ResultName
	}

	return "Result"
}
