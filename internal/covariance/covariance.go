// Package covariance computes the cross-covariance matrix between normalized
// imaging and design data.
package covariance

import (
	"gonum.org/v1/gonum/mat"

	"goplsc/domain/core"
	"goplsc/internal/grouping"
)

// Build computes R as the row-wise stack of Y_g' * X_g across groups in
// ascending group-ID order. With grouped false all subjects form one group and
// R is simply Y' * X. The stacking order is what lets per-group design
// saliences be separated from a single decomposition downstream.
func Build(X, Y *mat.Dense, part *grouping.Partition, grouped bool) (*mat.Dense, error) {
	n, m := X.Dims()
	ny, d := Y.Dims()
	if ny != n {
		return nil, core.NewDimensionMismatchError("design matrix", n, ny)
	}
	if part.Subjects() != n {
		return nil, core.NewDimensionMismatchError("grouping", n, part.Subjects())
	}

	blocks := part.Blocks(grouped)
	r := mat.NewDense(d*len(blocks), m, nil)

	for g, idx := range blocks {
		xg := grouping.Rows(X, idx)
		yg := grouping.Rows(Y, idx)

		var rg mat.Dense
		rg.Mul(yg.T(), xg)

		r.Slice(g*d, (g+1)*d, 0, m).(*mat.Dense).Copy(&rg)
	}

	return r, nil
}
