package kernel

import (
	"errors"
	"fmt"
)

// ErrShape is returned when compute inputs have incompatible shapes.
var ErrShape = errors.New("incompatible input shapes")

// VectorSum adds its inputs elementwise.
//
// Parameters:
//   - parts: One or more vectors of equal length
//
// Returns:
//   - []int: out[i] = parts[0][i] + parts[1][i] + ...
//   - error: ErrShape when no input is given or lengths differ
//
// Example:
//
//	sum, _ := kernel.VectorSum([][]int{{0, 1}, {48, 49}}) // [48 50]
func VectorSum(parts [][]int) ([]int, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: vector sum needs at least one input", ErrShape)
	}

	out := make([]int, len(parts[0]))
	for k, p := range parts {
		if len(p) != len(out) {
			return nil, fmt.Errorf("%w: input %d has %d elements, input 0 has %d", ErrShape, k, len(p), len(out))
		}
		for i, v := range p {
			out[i] += v
		}
	}

	return out, nil
}

// MatVec multiplies a block of matrix rows by x.
//
// Parameters:
//   - rows: Matrix rows, each len(x) wide
//   - x: Vector
//
// Returns:
//   - []float64: One dot product per row
//   - error: ErrShape when a row width differs from len(x)
func MatVec(rows [][]float64, x []float64) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		if len(row) != len(x) {
			return nil, fmt.Errorf("%w: row %d has %d columns, vector has %d", ErrShape, i, len(row), len(x))
		}

		var dot float64
		for j, a := range row {
			dot += a * x[j]
		}
		out[i] = dot
	}

	return out, nil
}
