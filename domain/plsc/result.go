package plsc

import "gonum.org/v1/gonum/mat"

// NormalizedMatrix pairs standardized data with the location/scale statistics
// that produced it. Location and Scale have one row per group for grouped
// normalization modes, otherwise a single row.
type NormalizedMatrix struct {
	Data     *mat.Dense
	Location *mat.Dense
	Scale    *mat.Dense
}

// Decomposition holds the SVD of the cross-covariance matrix after the sign
// convention has been applied. Columns of U and V are unit-norm and mutually
// orthogonal per side.
type Decomposition struct {
	U *mat.Dense // design saliences, D_eff x L
	V *mat.Dense // imaging saliences, M x L

	Singular            []float64 // descending, non-negative, length L
	ExplainedCovariance []float64 // S_l^2 / sum(S_k^2), length L
}

// Components returns the number of latent components L
func (d *Decomposition) Components() int {
	return len(d.Singular)
}

// LatentComponent summarizes one paired imaging/design direction, ranked by
// singular value. Index is 1-based as conventionally reported.
type LatentComponent struct {
	Index               int     `json:"index"`
	SingularValue       float64 `json:"singular_value"`
	ExplainedCovariance float64 `json:"explained_covariance"`
	PValue              float64 `json:"p_value"`
	Significant         bool    `json:"significant"`
}

// Scores are subject-level projections onto the latent components
type Scores struct {
	Imaging *mat.Dense // Lx = X*V, N x L
	Design  *mat.Dense // Ly, each subject projected through its group's U block, N x L
}

// Loadings are structure coefficients: Pearson correlations between subject
// scores and the normalized variables. Design-side loadings are stacked per
// group in the same order as the covariance matrix when the PLS is grouped.
type Loadings struct {
	Imaging *mat.Dense // corr(X, Lx), M x L
	Design  *mat.Dense // corr(Y_g, Ly_g), (D*G_eff) x L

	// Cross loadings
	ImagingDesign *mat.Dense // corr(X, Ly), M x L
	DesignImaging *mat.Dense // corr(Y_g, Lx_g), (D*G_eff) x L
}

// PermutationResult holds the null distribution of singular values and the
// derived component-wise p-values.
type PermutationResult struct {
	// NullSingular is L x nPerms: one column of singular values per draw.
	NullSingular *mat.Dense
	PValues      []float64
}

// BootstrapStats reduces one accumulated statistic across the draw axis
type BootstrapStats struct {
	Mean  *mat.Dense
	Std   *mat.Dense
	Lower *mat.Dense // 2.5th percentile
	Upper *mat.Dense // 97.5th percentile
}

// BootstrapSummary carries the reduced bootstrap distributions for saliences,
// scores, and loadings, plus stability-adjusted bootstrap ratios.
type BootstrapSummary struct {
	USaliences BootstrapStats
	VSaliences BootstrapStats

	ImagingScores BootstrapStats
	DesignScores  BootstrapStats

	ImagingLoadings BootstrapStats
	DesignLoadings  BootstrapStats

	// BootstrapRatio* divide the observed salience by its bootstrap standard
	// deviation; entries where the standard deviation is zero are reported
	// as 0.
	BootstrapRatioU *mat.Dense
	BootstrapRatioV *mat.Dense

	// Raw per-draw saliences, retained only when requested
	RawU []*mat.Dense
	RawV []*mat.Dense

	NumDraws int
}

// Result is the full bundle produced by one analysis invocation. It is the
// sole interface consumed by downstream reporting/visualization layers.
type Result struct {
	Manifest Manifest
	Options  Options

	ImagingNormalized NormalizedMatrix
	DesignNormalized  NormalizedMatrix

	DesignMatrix *mat.Dense // Y0, N x D
	DesignNames  []string

	Covariance *mat.Dense // R, (D*G_eff) x M

	Decomposition Decomposition
	Components    []LatentComponent

	Scores   Scores
	Loadings Loadings

	Permutation PermutationResult
	Bootstrap   *BootstrapSummary

	Warnings []Warning
}

// SignificantComponents returns the components whose permutation p-value is
// below the configured alpha, in rank order.
func (r *Result) SignificantComponents() []LatentComponent {
	var out []LatentComponent
	for _, lc := range r.Components {
		if lc.Significant {
			out = append(out, lc)
		}
	}
	return out
}
