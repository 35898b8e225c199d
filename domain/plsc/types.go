package plsc

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"goplsc/domain/core"
)

// ============================================================================
// ANALYSIS MODES (closed enumerations, validated at construction)
// ============================================================================

// NormalizationMode selects how a data matrix is standardized before analysis
type NormalizationMode int

const (
	NormNone          NormalizationMode = 0 // identity
	NormZScore        NormalizationMode = 1 // mean-center + unit variance, all subjects
	NormZScoreGrouped NormalizationMode = 2 // mean-center + unit variance within each group
	NormRMS           NormalizationMode = 3 // scale by root-mean-square, no centering
	NormRMSGrouped    NormalizationMode = 4 // root-mean-square scaling within each group
)

// Valid reports whether the mode is one of the defined normalization modes
func (m NormalizationMode) Valid() bool {
	return m >= NormNone && m <= NormRMSGrouped
}

// Grouped reports whether statistics are computed independently within each group
func (m NormalizationMode) Grouped() bool {
	return m == NormZScoreGrouped || m == NormRMSGrouped
}

// Centered reports whether the mode subtracts a per-column location
func (m NormalizationMode) Centered() bool {
	return m == NormZScore || m == NormZScoreGrouped
}

// DesignMode selects how the behavioral design matrix is constructed
type DesignMode string

const (
	DesignBehavior              DesignMode = "behavior"
	DesignContrast              DesignMode = "contrast"
	DesignContrastBehav         DesignMode = "contrastBehav"
	DesignContrastBehavInteract DesignMode = "contrastBehavInteract"
)

// Valid reports whether the mode is one of the defined design modes
func (m DesignMode) Valid() bool {
	switch m {
	case DesignBehavior, DesignContrast, DesignContrastBehav, DesignContrastBehavInteract:
		return true
	}
	return false
}

// UsesContrast reports whether the mode includes group-contrast columns
func (m DesignMode) UsesContrast() bool {
	return m != DesignBehavior
}

// ProcrustesMode selects how bootstrap saliences are rotated back to the
// observed orientation
type ProcrustesMode int

const (
	// ProcrustesStandard derives the rotation from the design saliences (U)
	// alone and applies it to both sides.
	ProcrustesStandard ProcrustesMode = 1
	// ProcrustesAverage blends the U-derived and V-derived rotations and
	// re-orthogonalizes the blend. Avoids near-zero imaging-side standard
	// errors seen with U-only rotation.
	ProcrustesAverage ProcrustesMode = 2
)

// Valid reports whether the mode is one of the defined Procrustes modes
func (m ProcrustesMode) Valid() bool {
	return m == ProcrustesStandard || m == ProcrustesAverage
}

// ============================================================================
// INPUT DATASET
// ============================================================================

// Dataset is the in-memory input to an analysis: subjects (rows) by imaging
// and behavioral variables (columns), plus a group label per subject.
// Group labels are arbitrary integers; they need not be contiguous or 1-based.
type Dataset struct {
	Imaging  *mat.Dense // N x M
	Behavior *mat.Dense // N x B
	Grouping []int      // length N

	GroupNames    []string // optional, one per distinct group value
	ImagingNames  []string // optional, length M
	BehaviorNames []string // optional, length B
}

// Subjects returns the number of subjects N
func (d *Dataset) Subjects() int {
	if d.Imaging == nil {
		return 0
	}
	n, _ := d.Imaging.Dims()
	return n
}

// Validate checks the dataset invariants: consistent subject counts across all
// inputs, at least one subject and one distinct group value, and name vectors
// (when present) matching their matrix dimensions.
func (d *Dataset) Validate() error {
	if d.Imaging == nil || d.Behavior == nil {
		return fmt.Errorf("%w: imaging and behavior matrices are required", core.ErrInsufficientData)
	}
	n, m := d.Imaging.Dims()
	nb, b := d.Behavior.Dims()
	if n == 0 || m == 0 {
		return fmt.Errorf("%w: imaging matrix is empty", core.ErrInsufficientData)
	}
	if nb != n {
		return core.NewDimensionMismatchError("behavior matrix", n, nb)
	}
	if len(d.Grouping) != n {
		return core.NewDimensionMismatchError("grouping", n, len(d.Grouping))
	}
	if len(d.ImagingNames) != 0 && len(d.ImagingNames) != m {
		return core.NewDimensionMismatchError("imaging names", m, len(d.ImagingNames))
	}
	if len(d.BehaviorNames) != 0 && len(d.BehaviorNames) != b {
		return core.NewDimensionMismatchError("behavior names", b, len(d.BehaviorNames))
	}
	return nil
}

// ============================================================================
// OPTIONS
// ============================================================================

// Options carries the complete analysis configuration. The zero value is not
// usable; start from DefaultOptions.
type Options struct {
	DesignMode DesignMode

	ImagingNorm  NormalizationMode
	BehaviorNorm NormalizationMode

	// GroupedPLS stacks the cross-covariance matrix per group, yielding
	// group-specific design saliences from a single decomposition.
	GroupedPLS bool

	NumPermutations    int
	GroupedPermutation bool // permute within groups only

	NumBootstraps    int
	GroupedBootstrap bool // resample within groups, preserving group sizes
	ProcrustesMode   ProcrustesMode

	// SaveBootstrapSamples retains raw per-draw saliences. Memory-heavy for
	// large imaging dimensions.
	SaveBootstrapSamples bool

	Alpha   float64 // significance threshold for component flags
	Seed    int64   // base seed for all resampling streams
	Workers int     // worker pool size for permutation/bootstrap draws
}

// DefaultOptions returns the standard configuration: grouped z-scoring,
// behavioral design, 1000 draws of each resampling scheme.
func DefaultOptions() Options {
	return Options{
		DesignMode:         DesignBehavior,
		ImagingNorm:        NormZScoreGrouped,
		BehaviorNorm:       NormZScoreGrouped,
		GroupedPLS:         true,
		NumPermutations:    1000,
		GroupedPermutation: true,
		NumBootstraps:      1000,
		GroupedBootstrap:   true,
		ProcrustesMode:     ProcrustesStandard,
		Alpha:              0.05,
		Seed:               42,
		Workers:            4,
	}
}

// Validate checks every option against its defined domain. Called by the
// orchestrator before any computation begins.
func (o Options) Validate() error {
	if !o.DesignMode.Valid() {
		return fmt.Errorf("%w %q", core.ErrUndefinedDesignMode, o.DesignMode)
	}
	if !o.ImagingNorm.Valid() {
		return fmt.Errorf("%w %d for imaging data", core.ErrInvalidNormalizationMode, o.ImagingNorm)
	}
	if !o.BehaviorNorm.Valid() {
		return fmt.Errorf("%w %d for behavioral data", core.ErrInvalidNormalizationMode, o.BehaviorNorm)
	}
	if o.NumPermutations < 1 {
		return core.NewConfigurationError("NumPermutations", fmt.Sprintf("must be >= 1, got %d", o.NumPermutations))
	}
	if o.NumBootstraps < 1 {
		return core.NewConfigurationError("NumBootstraps", fmt.Sprintf("must be >= 1, got %d", o.NumBootstraps))
	}
	if !o.ProcrustesMode.Valid() {
		return fmt.Errorf("%w %d", core.ErrInvalidProcrustesMode, o.ProcrustesMode)
	}
	if o.Alpha <= 0 || o.Alpha >= 1 {
		return core.NewConfigurationError("Alpha", fmt.Sprintf("must be in (0,1), got %g", o.Alpha))
	}
	if o.Workers < 1 {
		return core.NewConfigurationError("Workers", fmt.Sprintf("must be >= 1, got %d", o.Workers))
	}
	return nil
}
