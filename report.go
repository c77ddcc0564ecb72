package collective

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteReport prints a participant's report to w.
//
// Every participant prints its identity, its partitions and its local
// result. The coordinator also prints the datasets it distributed, every
// rank's result labelled with that rank's host, and the final result.
// The layout is for humans and carries no compatibility promise.
//
// Parameters:
//   - w: Destination
//   - r: Report returned by Execute
//
// Returns:
//   - error: Write error
func WriteReport[E, S, R any](w io.Writer, r *Report[E, S, R]) error {
	bw := bufio.NewWriter(w)

	if r.IsCoordinator() {
		fmt.Fprintf(bw, "Process %d on host %s distributed %s to all %d processes\n\n",
			r.Identity.Rank, r.Identity.Host, strings.Join(r.InputNames, " and "), r.Size)
	}

	fmt.Fprintf(bw, "Process %d on host %s has:\n", r.Identity.Rank, r.Identity.Host)
	for i, part := range r.Partitions {
		fmt.Fprintf(bw, "  %s elements:%s\n", r.InputNames[i], formatValues(part))
	}
	fmt.Fprintf(bw, "  %s elements:%s\n\n", r.ResultName, formatValues(r.Local))

	if r.IsCoordinator() {
		for _, rr := range r.Ranks[1:] {
			fmt.Fprintf(bw, "Process %d on host %s has %s elements:%s\n",
				rr.Identity.Rank, rr.Identity.Host, strings.ToLower(r.ResultName), formatValues(rr.Values))
		}
		fmt.Fprintf(bw, "\n%s (%d elements):%s\n", r.Workload, len(r.Final), formatValues(r.Final))
		fmt.Fprintln(bw, "Ready")
	}

	return bw.Flush()
}

// WriteInputs prints the full datasets and the shared value. Coordinator only.
//
// Parameters:
//   - w: Destination
//   - r: Coordinator report
//
// Returns:
//   - error: Write error
func WriteInputs[E, S, R any](w io.Writer, r *Report[E, S, R]) error {
	if !r.IsCoordinator() {
		return fmt.Errorf("%w: only the coordinator holds the datasets", ErrNotCoordinator)
	}

	bw := bufio.NewWriter(w)
	for i, in := range r.Inputs {
		fmt.Fprintf(bw, "%s:\n", r.InputNames[i])
		for _, v := range in {
			fmt.Fprintf(bw, "%s\n", strings.TrimSpace(formatValue(v)))
		}
	}

	if shared := formatValue(r.Shared); shared != "" {
		fmt.Fprintf(bw, "Shared:\n%s\n", strings.TrimSpace(shared))
	}

	return bw.Flush()
}

func formatValues[T any](values []T) string {
	var sb strings.Builder
	for _, v := range values {
		sb.WriteString(formatValue(v))
	}

	return sb.String()
}

// formatValue renders one element with a leading space.
func formatValue(v any) string {
	switch x := v.(type) {
	case float64:
		return fmt.Sprintf(" %6.2f", x)
	case float32:
		return fmt.Sprintf(" %6.2f", x)
	case []float64:
		return " [" + strings.TrimSpace(formatValues(x)) + "]"
	case []int:
		return " [" + strings.TrimSpace(formatValues(x)) + "]"
	case struct{}:
		return ""
	default:
		return fmt.Sprintf(" %v", x)
	}
}
