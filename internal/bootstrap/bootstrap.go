// Package bootstrap estimates the stability of saliences, scores, and
// loadings by resampling subjects with replacement and aligning each draw's
// decomposition to the observed orientation.
package bootstrap

import (
	"context"
	"fmt"
	"math/rand"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"goplsc/domain/core"
	"goplsc/domain/plsc"
	"goplsc/internal"
	"goplsc/internal/covariance"
	"goplsc/internal/decompose"
	"goplsc/internal/grouping"
	"goplsc/internal/normalize"
	"goplsc/internal/project"
	"goplsc/ports"
)

// Config carries the bootstrap parameters. Normalization modes and the
// covariance policy must match the observed analysis exactly; the whole point
// of each draw is to repeat the observed pipeline on resampled subjects.
type Config struct {
	NumDraws int
	// Grouped resamples independently within each group, preserving each
	// group's original size. Ungrouped resamples all subjects jointly.
	Grouped bool

	GroupedPLS   bool
	ImagingNorm  plsc.NormalizationMode
	BehaviorNorm plsc.NormalizationMode

	Procrustes plsc.ProcrustesMode

	// SaveRaw retains the rotated per-draw saliences. Memory-heavy for large
	// imaging dimensions.
	SaveRaw bool

	Seed    int64
	Workers int
}

// Estimator runs the bootstrap resampling scheme
type Estimator struct {
	rng    ports.RNGPort
	logger *internal.Logger
}

// NewEstimator creates a bootstrap estimator
func NewEstimator(rng ports.RNGPort, logger *internal.Logger) *Estimator {
	return &Estimator{rng: rng, logger: logger}
}

// drawResult carries one draw's rotated statistics back to the accumulator
type drawResult struct {
	u, v           *mat.Dense
	lx, ly         *mat.Dense
	imgLoad, dLoad *mat.Dense
}

// Run resamples subjects with replacement cfg.NumDraws times. Each draw
// re-normalizes the resampled raw data, recomputes the covariance and its
// SVD under the observed policy, rotates the draw's saliences onto the
// observed orientation via orthogonal Procrustes alignment, recomputes scores
// and loadings from the rotated saliences, and accumulates everything. The
// accumulated distributions are reduced to mean, standard deviation, and the
// empirical 95% interval per statistic.
//
// X0 and Y0 are the raw (unnormalized) imaging and design matrices of the
// observed analysis; obs is the observed decomposition after sign correction.
func (e *Estimator) Run(ctx context.Context, X0, Y0 *mat.Dense, obs plsc.Decomposition, part *grouping.Partition, cfg Config, warnings *plsc.WarningSet) (*plsc.BootstrapSummary, error) {
	if cfg.NumDraws < 1 {
		return nil, core.NewConfigurationError("NumBootstraps", fmt.Sprintf("must be >= 1, got %d", cfg.NumDraws))
	}
	if !cfg.Procrustes.Valid() {
		return nil, fmt.Errorf("%w %d", core.ErrInvalidProcrustesMode, cfg.Procrustes)
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	draws := make([]drawResult, cfg.NumDraws)
	labels := part.Labels()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for draw := 0; draw < cfg.NumDraws; draw++ {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return fmt.Errorf("%w: %v", core.ErrAborted, gctx.Err())
			default:
			}

			stream := e.rng.DrawStream("bootstrap", cfg.Seed, draw)
			res, err := e.runDraw(X0, Y0, obs, part, labels, cfg, stream, warnings)
			if err != nil {
				return fmt.Errorf("bootstrap draw %d: %w", draw, err)
			}
			draws[draw] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	e.logger.Debug("bootstrap completed: %d draws", cfg.NumDraws)

	return e.summarize(draws, obs, cfg)
}

// runDraw executes a single bootstrap draw
func (e *Estimator) runDraw(X0, Y0 *mat.Dense, obs plsc.Decomposition, part *grouping.Partition, labels []int, cfg Config, stream *rand.Rand, warnings *plsc.WarningSet) (drawResult, error) {
	idx := resampleIndices(part, cfg.Grouped, stream)

	resampledLabels := make([]int, len(idx))
	for i, r := range idx {
		resampledLabels[i] = labels[r]
	}
	partB, err := grouping.New(resampledLabels)
	if err != nil {
		return drawResult{}, err
	}

	// A vanished group changes the covariance stacking and makes the draw
	// incomparable to the observed decomposition; undefined, so fatal.
	if partB.Groups() != part.Groups() {
		return drawResult{}, fmt.Errorf("%w: resample dropped a group (%d of %d remain)",
			core.ErrEmptyGroup, partB.Groups(), part.Groups())
	}
	for _, gid := range partB.IDs() {
		if partB.Size(gid) < 2 {
			warnings.Add(plsc.WarnDegenerateResample, fmt.Sprintf("resampled group %d has fewer than 2 subjects", gid))
		}
	}

	xb := grouping.Rows(X0, idx)
	yb := grouping.Rows(Y0, idx)

	// Re-normalize the resampled data under the observed policy. Degenerate
	// columns in a resample are warnings on the draw, not the input data.
	drawWarnings := plsc.NewWarningSet()
	xn, err := normalize.Apply(xb, partB, cfg.ImagingNorm, drawWarnings, "imaging")
	if err != nil {
		return drawResult{}, err
	}
	yn, err := normalize.Apply(yb, partB, cfg.BehaviorNorm, drawWarnings, "behavior")
	if err != nil {
		return drawResult{}, err
	}
	if drawWarnings.Has(plsc.WarnDegenerateColumn) {
		warnings.Add(plsc.WarnDegenerateResample, "resample produced a zero-variance column")
	}

	r, err := covariance.Build(xn.Data, yn.Data, partB, cfg.GroupedPLS)
	if err != nil {
		return drawResult{}, err
	}
	dec, err := decompose.Decompose(r)
	if err != nil {
		return drawResult{}, err
	}

	rot, err := alignmentRotation(obs, dec, cfg.Procrustes)
	if err != nil {
		return drawResult{}, err
	}

	var uRot, vRot mat.Dense
	uRot.Mul(dec.U, rot)
	vRot.Mul(dec.V, rot)

	scores, loadings, err := project.Project(xn.Data, yn.Data, &uRot, &vRot, partB, cfg.GroupedPLS, drawWarnings)
	if err != nil {
		return drawResult{}, err
	}

	return drawResult{
		u:       &uRot,
		v:       &vRot,
		lx:      scores.Imaging,
		ly:      scores.Design,
		imgLoad: loadings.Imaging,
		dLoad:   loadings.Design,
	}, nil
}

// alignmentRotation computes the Procrustes rotation for one draw. The
// standard mode derives it from the design saliences alone; the average mode
// blends the U-derived and V-derived rotations and re-orthogonalizes, which
// avoids the near-zero imaging-side standard errors of U-only rotation.
func alignmentRotation(obs plsc.Decomposition, boot plsc.Decomposition, mode plsc.ProcrustesMode) (*mat.Dense, error) {
	rotU, err := rotationTo(obs.U, boot.U)
	if err != nil {
		return nil, err
	}
	if mode == plsc.ProcrustesStandard {
		return rotU, nil
	}

	rotV, err := rotationTo(obs.V, boot.V)
	if err != nil {
		return nil, err
	}
	return blendRotations(rotU, rotV)
}

// resampleIndices draws subject indices with replacement, jointly or within
// each group (preserving group sizes).
func resampleIndices(part *grouping.Partition, grouped bool, stream *rand.Rand) []int {
	n := part.Subjects()
	out := make([]int, n)

	if !grouped {
		for i := range out {
			out[i] = stream.Intn(n)
		}
		return out
	}

	for _, idx := range part.Blocks(true) {
		for _, pos := range idx {
			out[pos] = idx[stream.Intn(len(idx))]
		}
	}
	return out
}
