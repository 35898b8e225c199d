// Package project computes subject scores and structure-coefficient loadings
// from a decomposition.
package project

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"goplsc/domain/core"
	"goplsc/domain/plsc"
	"goplsc/internal/grouping"
)

// Project computes imaging scores Lx = X*V, design scores Ly (each subject's
// rows of Y projected through its own group's block of U), and all loading
// variants. Loadings are Pearson correlations of scores against the
// normalized variables; a zero-variance variable in the correlated subset is
// recorded as DEGENERATE_CORRELATION and its loading reported as 0.
func Project(X, Y, u, v *mat.Dense, part *grouping.Partition, grouped bool, warnings *plsc.WarningSet) (plsc.Scores, plsc.Loadings, error) {
	n, m := X.Dims()
	_, d := Y.Dims()
	uRows, l := u.Dims()

	blocks := part.Blocks(grouped)
	if uRows != d*len(blocks) {
		return plsc.Scores{}, plsc.Loadings{}, core.NewDimensionMismatchError("design saliences", d*len(blocks), uRows)
	}

	var lx mat.Dense
	lx.Mul(X, v)

	// Per-group projection of Y through that group's U block, merged back by
	// subject index.
	ly := mat.NewDense(n, l, nil)
	for g, idx := range blocks {
		ug := u.Slice(g*d, (g+1)*d, 0, l)
		yg := grouping.Rows(Y, idx)

		var lyg mat.Dense
		lyg.Mul(yg, ug)
		for i, r := range idx {
			ly.SetRow(r, lyg.RawRowView(i))
		}
	}

	scores := plsc.Scores{Imaging: &lx, Design: ly}

	loadings := plsc.Loadings{
		Imaging:       corrMatrix(X, &lx, nil, m, l, warnings, "imaging"),
		ImagingDesign: corrMatrix(X, ly, nil, m, l, warnings, "imaging"),
		Design:        groupedCorrMatrix(Y, ly, blocks, d, l, warnings),
		DesignImaging: groupedCorrMatrix(Y, &lx, blocks, d, l, warnings),
	}

	return scores, loadings, nil
}

// corrMatrix correlates every column of vars against every column of scores,
// restricted to rows (all rows when nil).
func corrMatrix(vars, scores *mat.Dense, rows []int, nVars, nComp int, warnings *plsc.WarningSet, label string) *mat.Dense {
	out := mat.NewDense(nVars, nComp, nil)

	varCol := make([]float64, 0)
	scoreCol := make([]float64, 0)
	for j := 0; j < nVars; j++ {
		varCol = column(vars, j, rows, varCol)
		degenerate := stat.Variance(varCol, nil) == 0
		if degenerate {
			warnings.Add(plsc.WarnDegenerateCorrelation, fmt.Sprintf("%s column %d has zero variance in correlated subset", label, j))
		}
		for c := 0; c < nComp; c++ {
			if degenerate {
				continue
			}
			scoreCol = column(scores, c, rows, scoreCol)
			if stat.Variance(scoreCol, nil) == 0 {
				warnings.Add(plsc.WarnDegenerateCorrelation, fmt.Sprintf("component %d scores have zero variance in correlated subset", c+1))
				continue
			}
			out.Set(j, c, stat.Correlation(varCol, scoreCol, nil))
		}
	}
	return out
}

// groupedCorrMatrix stacks per-group correlation blocks in the same group
// order used for the covariance matrix.
func groupedCorrMatrix(vars, scores *mat.Dense, blocks [][]int, nVars, nComp int, warnings *plsc.WarningSet) *mat.Dense {
	out := mat.NewDense(nVars*len(blocks), nComp, nil)
	for g, idx := range blocks {
		block := corrMatrix(vars, scores, idx, nVars, nComp, warnings, "design")
		out.Slice(g*nVars, (g+1)*nVars, 0, nComp).(*mat.Dense).Copy(block)
	}
	return out
}

// column gathers one column of m at the given rows, reusing buf
func column(m *mat.Dense, j int, rows []int, buf []float64) []float64 {
	buf = buf[:0]
	if rows == nil {
		r, _ := m.Dims()
		for i := 0; i < r; i++ {
			buf = append(buf, m.At(i, j))
		}
		return buf
	}
	for _, i := range rows {
		buf = append(buf, m.At(i, j))
	}
	return buf
}
