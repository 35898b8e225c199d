// Package decompose performs the singular value decomposition of the
// cross-covariance matrix and fixes its sign convention.
package decompose

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"goplsc/domain/core"
	"goplsc/domain/plsc"
)

// Decompose factorizes R = U*S*V' with L = min(rows, cols) components and
// applies the sign convention: each component is oriented so that the imaging
// salience of largest magnitude is non-negative. The same convention must be
// reapplied to every permutation and bootstrap recomputation before any
// comparison against the observed decomposition.
func Decompose(r *mat.Dense) (plsc.Decomposition, error) {
	var svd mat.SVD
	if ok := svd.Factorize(r, mat.SVDThin); !ok {
		return plsc.Decomposition{}, core.ErrDecompositionFailed
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	s := svd.Values(nil)

	applySignConvention(&u, &v)

	total := 0.0
	for _, sv := range s {
		total += sv * sv
	}
	explained := make([]float64, len(s))
	if total > 0 {
		for l, sv := range s {
			explained[l] = sv * sv / total
		}
	}

	return plsc.Decomposition{
		U:                   &u,
		V:                   &v,
		Singular:            s,
		ExplainedCovariance: explained,
	}, nil
}

// applySignConvention negates paired U/V columns so the dominant imaging
// salience in each component is non-negative. U and V are only defined up to a
// simultaneous sign flip per component.
func applySignConvention(u, v *mat.Dense) {
	mRows, l := v.Dims()
	uRows, _ := u.Dims()

	for c := 0; c < l; c++ {
		maxIdx := 0
		maxAbs := 0.0
		for i := 0; i < mRows; i++ {
			if a := math.Abs(v.At(i, c)); a > maxAbs {
				maxAbs = a
				maxIdx = i
			}
		}
		if v.At(maxIdx, c) < 0 {
			for i := 0; i < mRows; i++ {
				v.Set(i, c, -v.At(i, c))
			}
			for i := 0; i < uRows; i++ {
				u.Set(i, c, -u.At(i, c))
			}
		}
	}
}
