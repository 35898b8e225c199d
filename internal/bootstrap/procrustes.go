package bootstrap

import (
	"gonum.org/v1/gonum/mat"

	"goplsc/domain/core"
)

// rotationTo computes the orthogonal Procrustes rotation that aligns boot to
// observed: with SVD(observed' * boot) = P*S*Q', the rotation is Q*P',
// applied as boot * rotation. Bootstrap SVD solutions are only identifiable
// up to an orthogonal rotation among components with similar singular values,
// so this alignment must happen before draws can be averaged.
func rotationTo(observed, boot *mat.Dense) (*mat.Dense, error) {
	var cross mat.Dense
	cross.Mul(observed.T(), boot)

	var svd mat.SVD
	if ok := svd.Factorize(&cross, mat.SVDThin); !ok {
		return nil, core.ErrDecompositionFailed
	}

	var p, q mat.Dense
	svd.UTo(&p)
	svd.VTo(&q)

	var rot mat.Dense
	rot.Mul(&q, p.T())
	return &rot, nil
}

// blendRotations averages two rotations and projects the blend back onto the
// orthogonal group through its polar factor (SVD with singular values
// dropped). A raw linear blend of two orthogonal matrices is generally not
// orthogonal.
func blendRotations(a, b *mat.Dense) (*mat.Dense, error) {
	var blend mat.Dense
	blend.Add(a, b)
	blend.Scale(0.5, &blend)

	var svd mat.SVD
	if ok := svd.Factorize(&blend, mat.SVDThin); !ok {
		return nil, core.ErrDecompositionFailed
	}

	var p, q mat.Dense
	svd.UTo(&p)
	svd.VTo(&q)

	var rot mat.Dense
	rot.Mul(&p, q.T())
	return &rot, nil
}
