package kernel

import (
	"fmt"

	"github.com/arloliu/collective"
)

// Workload names.
const (
	VectorSumName = "vecsum"
	MatVecName    = "matvec"
)

// VectorSumWorkload adds two vectors of the given length.
//
// The coordinator builds A = [0, length) and B = [length, 2*length), scatters
// A then B, and every rank adds its two partitions elementwise. Nothing is
// broadcast. For length 48 the final result is 48, 50, ..., 142.
func VectorSumWorkload(length int) collective.Workload[int, struct{}, int] {
	return collective.Workload[int, struct{}, int]{
		Name:       VectorSumName,
		Length:     length,
		Inputs:     2,
		InputNames: []string{"A", "B"},
		ResultName: "Sum",
		Build: func() ([][]int, struct{}, error) {
			a := make([]int, length)
			b := make([]int, length)
			for i := range length {
				a[i] = i
				b[i] = length + i
			}

			return [][]int{a, b}, struct{}{}, nil
		},
		Compute: func(parts [][]int, _ struct{}) ([]int, error) {
			return VectorSum(parts)
		},
	}
}

// MatVecWorkload multiplies an n x n matrix by a vector of length n.
//
// The coordinator builds A[i][j] = i*n + j and X[i] = i + 1, scatters the
// rows of A and broadcasts X. Every rank computes one dot product per row it
// holds.
func MatVecWorkload(n int) collective.Workload[[]float64, []float64, float64] {
	return collective.Workload[[]float64, []float64, float64]{
		Name:       MatVecName,
		Length:     n,
		Inputs:     1,
		InputNames: []string{"A rows"},
		ResultName: "A*X",
		Shared:     true,
		Build: func() ([][][]float64, []float64, error) {
			a := make([][]float64, n)
			x := make([]float64, n)
			for i := range n {
				a[i] = make([]float64, n)
				for j := range n {
					a[i][j] = float64(i*n + j)
				}
				x[i] = float64(i + 1)
			}

			return [][][]float64{a}, x, nil
		},
		Compute: func(parts [][][]float64, x []float64) ([]float64, error) {
			if len(parts) != 1 {
				return nil, fmt.Errorf("%w: matvec expects one input, got %d", ErrShape, len(parts))
			}

			return MatVec(parts[0], x)
		},
	}
}
