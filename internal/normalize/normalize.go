// Package normalize standardizes data matrices, optionally within groups.
package normalize

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"goplsc/domain/core"
	"goplsc/domain/plsc"
	"goplsc/internal/grouping"
)

// Apply standardizes X according to mode and returns the normalized matrix
// together with the per-column (or per-group-per-column) location and scale
// statistics used. Zero-variance columns are recorded on warnings as
// DEGENERATE_COLUMN; their scale is forced to 1 so the column propagates as
// exact values (zeros when centered) rather than NaN.
//
// label names the matrix in warning details, e.g. "imaging" or "behavior".
func Apply(X *mat.Dense, part *grouping.Partition, mode plsc.NormalizationMode, warnings *plsc.WarningSet, label string) (plsc.NormalizedMatrix, error) {
	if !mode.Valid() {
		return plsc.NormalizedMatrix{}, fmt.Errorf("%w %d", core.ErrInvalidNormalizationMode, mode)
	}

	n, v := X.Dims()
	if part.Subjects() != n {
		return plsc.NormalizedMatrix{}, core.NewDimensionMismatchError(label+" matrix", part.Subjects(), n)
	}

	out := mat.NewDense(n, v, nil)
	out.Copy(X)

	if mode == plsc.NormNone {
		return plsc.NormalizedMatrix{
			Data:     out,
			Location: mat.NewDense(1, v, nil),
			Scale:    ones(1, v),
		}, nil
	}

	blocks := part.Blocks(mode.Grouped())
	ids := part.IDs()

	location := mat.NewDense(len(blocks), v, nil)
	scale := ones(len(blocks), v)

	col := make([]float64, 0, n)
	for b, rows := range blocks {
		for j := 0; j < v; j++ {
			col = col[:0]
			for _, r := range rows {
				col = append(col, X.At(r, j))
			}

			var loc, sc float64
			if mode.Centered() {
				loc = stat.Mean(col, nil)
				sc = stat.StdDev(col, nil)
			} else {
				sc = rootMeanSquare(col)
			}

			if sc == 0 || math.IsNaN(sc) {
				warnings.Add(plsc.WarnDegenerateColumn, degenerateDetail(label, j, mode, blocks, ids, b))
				sc = 1
			}

			location.Set(b, j, loc)
			scale.Set(b, j, sc)

			for _, r := range rows {
				out.Set(r, j, (X.At(r, j)-loc)/sc)
			}
		}
	}

	return plsc.NormalizedMatrix{Data: out, Location: location, Scale: scale}, nil
}

// rootMeanSquare returns sqrt(mean(x^2))
func rootMeanSquare(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

func degenerateDetail(label string, col int, mode plsc.NormalizationMode, blocks [][]int, ids []int, b int) string {
	if mode.Grouped() && len(blocks) == len(ids) {
		return fmt.Sprintf("%s column %d has zero variance in group %d", label, col, ids[b])
	}
	return fmt.Sprintf("%s column %d has zero variance", label, col)
}

func ones(r, c int) *mat.Dense {
	m := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Set(i, j, 1)
		}
	}
	return m
}
