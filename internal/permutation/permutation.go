// Package permutation builds a null distribution of singular values by
// repeatedly permuting the design matrix and recomputing the decomposition.
package permutation

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
	"goplsc/ports"
)

// Config carries the permutation-test parameters
type Config struct {
	NumDraws int
	// Grouped permutes each group's rows among themselves only, preserving
	// group sizes. Ungrouped applies a single full permutation.
	Grouped bool
	// GroupedPLS is the covariance stacking policy of the observed analysis;
	// every draw recomputes R under the same policy.
	GroupedPLS bool
	Seed       int64
	Workers    int
}

// Tester recomputes the decomposition under permuted designs
type Tester struct {
	rng    ports.RNGPort
	logger *internal.Logger
}

// NewTester creates a permutation tester
func NewTester(rng ports.RNGPort, logger *internal.Logger) *Tester {
	return &Tester{rng: rng, logger: logger}
}

// Run permutes the rows of Y cfg.NumDraws times, recomputes R and its SVD for
// each draw under the observed covariance policy, and converts the null
// distribution into one-sided upper-tail p-values with a +1 continuity
// correction: p_l = (#{null_l >= observed_l} + 1) / (draws + 1).
//
// Components are compared by position because the sign convention is
// reapplied identically on every draw. Draws are independent and run on a
// fixed-size worker pool; each draw owns a non-overlapping RNG stream keyed by
// its index, so results do not depend on worker count.
func (t *Tester) Run(ctx context.Context, X, Y *mat.Dense, observed []float64, part *grouping.Partition, cfg Config) (plsc.PermutationResult, error) {
	if cfg.NumDraws < 1 {
		return plsc.PermutationResult{}, core.NewConfigurationError("NumPermutations", fmt.Sprintf("must be >= 1, got %d", cfg.NumDraws))
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	l := len(observed)
	null := mat.NewDense(l, cfg.NumDraws, nil)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for draw := 0; draw < cfg.NumDraws; draw++ {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return fmt.Errorf("%w: %v", core.ErrAborted, gctx.Err())
			default:
			}

			stream := t.rng.DrawStream("permutation", cfg.Seed, draw)
			perm := permutedIndices(part, cfg.Grouped, stream)

			yp := grouping.Rows(Y, perm)
			r, err := covariance.Build(X, yp, part, cfg.GroupedPLS)
			if err != nil {
				return fmt.Errorf("permutation draw %d: %w", draw, err)
			}

			dec, err := decompose.Decompose(r)
			if err != nil {
				return fmt.Errorf("permutation draw %d: %w", draw, err)
			}

			// Each draw writes only its own column
			for c := 0; c < l && c < len(dec.Singular); c++ {
				null.Set(c, draw, dec.Singular[c])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return plsc.PermutationResult{}, err
	}
	t.logger.Debug("permutation test completed: %d draws, %d components", cfg.NumDraws, l)

	pValues := make([]float64, l)
	for c := 0; c < l; c++ {
		count := 0
		for draw := 0; draw < cfg.NumDraws; draw++ {
			if null.At(c, draw) >= observed[c] {
				count++
			}
		}
		pValues[c] = float64(count+1) / float64(cfg.NumDraws+1)
	}

	return plsc.PermutationResult{NullSingular: null, PValues: pValues}, nil
}

// permutedIndices returns a permutation of row indices, either a single full
// shuffle or independent within-group shuffles.
func permutedIndices(part *grouping.Partition, grouped bool, stream *rand.Rand) []int {
	n := part.Subjects()
	if !grouped {
		return stream.Perm(n)
	}

	out := make([]int, n)
	for _, idx := range part.Blocks(true) {
		shuffled := stream.Perm(len(idx))
		for pos, s := range shuffled {
			out[idx[pos]] = idx[s]
		}
	}
	return out
}
