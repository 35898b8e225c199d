// Package app wires the statistical engine into a single analysis pipeline.
package app

import (
	"context"
	"fmt"

	"goplsc/domain/core"
	"goplsc/domain/plsc"
	"goplsc/internal"
	"goplsc/internal/bootstrap"
	"goplsc/internal/covariance"
	"goplsc/internal/decompose"
	"goplsc/internal/design"
	"goplsc/internal/grouping"
	"goplsc/internal/normalize"
	"goplsc/internal/permutation"
	"goplsc/internal/project"
	"goplsc/ports"
)

// AnalysisService orchestrates one full PLSC analysis: normalization, design
// construction, cross-covariance, decomposition, projection, permutation
// testing, and bootstrap stability estimation. Each invocation is
// independent; the service holds no mutable state across runs.
type AnalysisService struct {
	rng    ports.RNGPort
	logger *internal.Logger
}

// NewAnalysisService creates the orchestrator
func NewAnalysisService(rng ports.RNGPort, logger *internal.Logger) *AnalysisService {
	return &AnalysisService{rng: rng, logger: logger}
}

// Run executes the pipeline once and returns the complete result bundle.
// Configuration and dimension errors fail before any expensive computation.
// Any component failure aborts the whole analysis; a partial bundle is never
// returned. Degenerate-data conditions that do not prevent computation are
// attached to the bundle as warnings.
func (s *AnalysisService) Run(ctx context.Context, data *plsc.Dataset, opts plsc.Options) (*plsc.Result, error) {
	// Fail fast: options and input shape before anything else
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}

	manifest := plsc.NewManifest(opts.Seed)
	warnings := plsc.NewWarningSet()

	part, err := grouping.New(data.Grouping)
	if err != nil {
		return nil, err
	}
	if opts.DesignMode.UsesContrast() && part.Groups() != 2 && part.Groups() != 3 {
		return nil, core.NewGroupCountError(part.Groups())
	}

	s.logger.Info("analysis %s: %d subjects, %d groups, design mode %q",
		manifest.AnalysisID, part.Subjects(), part.Groups(), opts.DesignMode)

	y0, designNames, err := design.Build(opts.DesignMode, data.Behavior, part, data.GroupNames, data.BehaviorNames)
	if err != nil {
		return nil, err
	}

	xn, err := normalize.Apply(data.Imaging, part, opts.ImagingNorm, warnings, "imaging")
	if err != nil {
		return nil, err
	}
	yn, err := normalize.Apply(y0, part, opts.BehaviorNorm, warnings, "behavior")
	if err != nil {
		return nil, err
	}

	r, err := covariance.Build(xn.Data, yn.Data, part, opts.GroupedPLS)
	if err != nil {
		return nil, err
	}

	dec, err := decompose.Decompose(r)
	if err != nil {
		return nil, err
	}

	scores, loadings, err := project.Project(xn.Data, yn.Data, dec.U, dec.V, part, opts.GroupedPLS, warnings)
	if err != nil {
		return nil, err
	}

	if err := aborted(ctx); err != nil {
		return nil, err
	}

	tester := permutation.NewTester(s.rng, s.logger)
	perm, err := tester.Run(ctx, xn.Data, yn.Data, dec.Singular, part, permutation.Config{
		NumDraws:   opts.NumPermutations,
		Grouped:    opts.GroupedPermutation,
		GroupedPLS: opts.GroupedPLS,
		Seed:       opts.Seed,
		Workers:    opts.Workers,
	})
	if err != nil {
		return nil, err
	}

	if err := aborted(ctx); err != nil {
		return nil, err
	}

	estimator := bootstrap.NewEstimator(s.rng, s.logger)
	boot, err := estimator.Run(ctx, data.Imaging, y0, dec, part, bootstrap.Config{
		NumDraws:     opts.NumBootstraps,
		Grouped:      opts.GroupedBootstrap,
		GroupedPLS:   opts.GroupedPLS,
		ImagingNorm:  opts.ImagingNorm,
		BehaviorNorm: opts.BehaviorNorm,
		Procrustes:   opts.ProcrustesMode,
		SaveRaw:      opts.SaveBootstrapSamples,
		Seed:         opts.Seed,
		Workers:      opts.Workers,
	}, warnings)
	if err != nil {
		return nil, err
	}

	components := make([]plsc.LatentComponent, dec.Components())
	for l := range components {
		components[l] = plsc.LatentComponent{
			Index:               l + 1,
			SingularValue:       dec.Singular[l],
			ExplainedCovariance: dec.ExplainedCovariance[l],
			PValue:              perm.PValues[l],
			Significant:         perm.PValues[l] < opts.Alpha,
		}
	}

	_, m := data.Imaging.Dims()
	_, b := data.Behavior.Dims()
	_, d := y0.Dims()
	allWarnings := warnings.Warnings()

	manifest.Subjects = part.Subjects()
	manifest.ImagingVars = m
	manifest.BehaviorVars = b
	manifest.DesignVars = d
	manifest.Groups = part.Groups()
	manifest.Components = dec.Components()
	manifest.NumPermutations = opts.NumPermutations
	manifest.NumBootstraps = opts.NumBootstraps
	manifest.WarningCount = len(allWarnings)
	manifest.Complete()

	s.logger.Info("analysis %s completed in %dms: %d components, %d significant",
		manifest.AnalysisID, manifest.RuntimeMs, len(components), countSignificant(components))

	return &plsc.Result{
		Manifest:          manifest,
		Options:           opts,
		ImagingNormalized: xn,
		DesignNormalized:  yn,
		DesignMatrix:      y0,
		DesignNames:       designNames,
		Covariance:        r,
		Decomposition:     dec,
		Components:        components,
		Scores:            scores,
		Loadings:          loadings,
		Permutation:       perm,
		Bootstrap:         boot,
		Warnings:          allWarnings,
	}, nil
}

func aborted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrAborted, err)
	}
	return nil
}

func countSignificant(components []plsc.LatentComponent) int {
	n := 0
	for _, lc := range components {
		if lc.Significant {
			n++
		}
	}
	return n
}
