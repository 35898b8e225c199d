package permutation

import (
	"context"
	"errors"
	"math"
	"testing"

	"goplsc/adapters/rng"
	"goplsc/domain/core"
	"goplsc/domain/plsc"
	"goplsc/internal"
	"goplsc/internal/covariance"
	"goplsc/internal/decompose"
	"goplsc/internal/grouping"
	"goplsc/internal/normalize"
	"goplsc/internal/testkit"
)

func setup(t *testing.T, seed int64) (*Tester, *grouping.Partition, *plsc.Dataset, plsc.NormalizedMatrix, plsc.NormalizedMatrix, plsc.Decomposition) {
	t.Helper()

	kit := testkit.New(seed)
	data := kit.Generate(testkit.SignalSpec{
		Subjects: 24, ImagingVars: 5, BehaviorVars: 2, Groups: 2,
		SignalImagingVar: 0, SignalBehaviorVar: 0, SignalGroup: -1, Correlation: 0.6,
	})

	part, err := grouping.New(data.Grouping)
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	warnings := plsc.NewWarningSet()

	xn, err := normalize.Apply(data.Imaging, part, plsc.NormZScore, warnings, "imaging")
	if err != nil {
		t.Fatalf("normalize imaging: %v", err)
	}
	yn, err := normalize.Apply(data.Behavior, part, plsc.NormZScore, warnings, "behavior")
	if err != nil {
		t.Fatalf("normalize behavior: %v", err)
	}

	r, err := covariance.Build(xn.Data, yn.Data, part, false)
	if err != nil {
		t.Fatalf("covariance: %v", err)
	}
	dec, err := decompose.Decompose(r)
	if err != nil {
		t.Fatalf("decompose: %v", err)
	}

	tester := NewTester(rng.NewDeterministic(), internal.NewLogger(internal.LogLevelError))
	return tester, part, data, xn, yn, dec
}

func TestRun_PValuesInRange(t *testing.T) {
	tester, part, _, xn, yn, dec := setup(t, 11)

	const nDraws = 99
	res, err := tester.Run(context.Background(), xn.Data, yn.Data, dec.Singular, part, Config{
		NumDraws: nDraws, Grouped: false, GroupedPLS: false, Seed: 42, Workers: 2,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(res.PValues) != len(dec.Singular) {
		t.Fatalf("got %d p-values for %d components", len(res.PValues), len(dec.Singular))
	}

	step := 1.0 / float64(nDraws+1)
	for c, p := range res.PValues {
		if p <= 0 || p > 1 {
			t.Errorf("component %d: p = %g, outside (0, 1]", c+1, p)
		}
		// Continuity correction makes every p an exact multiple of 1/(n+1)
		if r := p / step; math.Abs(r-math.Round(r)) > 1e-9 {
			t.Errorf("component %d: p = %g is not a multiple of 1/(draws+1)", c+1, p)
		}
	}
}

func TestRun_NullMatrixShape(t *testing.T) {
	tester, part, _, xn, yn, dec := setup(t, 3)

	res, err := tester.Run(context.Background(), xn.Data, yn.Data, dec.Singular, part, Config{
		NumDraws: 10, Seed: 42, Workers: 1,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	rows, cols := res.NullSingular.Dims()
	if rows != len(dec.Singular) || cols != 10 {
		t.Errorf("null distribution is %dx%d, want %dx10", rows, cols, len(dec.Singular))
	}
}

func TestRun_DeterministicAcrossWorkerCounts(t *testing.T) {
	tester, part, _, xn, yn, dec := setup(t, 17)

	run := func(workers int) plsc.PermutationResult {
		res, err := tester.Run(context.Background(), xn.Data, yn.Data, dec.Singular, part, Config{
			NumDraws: 50, Grouped: true, GroupedPLS: false, Seed: 99, Workers: workers,
		})
		if err != nil {
			t.Fatalf("Run with %d workers failed: %v", workers, err)
		}
		return res
	}

	serial := run(1)
	parallel := run(4)

	for c := range serial.PValues {
		if serial.PValues[c] != parallel.PValues[c] {
			t.Errorf("component %d: p differs across worker counts (%g vs %g)",
				c+1, serial.PValues[c], parallel.PValues[c])
		}
	}
	for c := 0; c < len(serial.PValues); c++ {
		for d := 0; d < 50; d++ {
			if serial.NullSingular.At(c, d) != parallel.NullSingular.At(c, d) {
				t.Fatalf("null value [%d,%d] differs across worker counts", c, d)
			}
		}
	}
}

func TestRun_GroupedPermutationPreservesGroupRows(t *testing.T) {
	tester, part, _, xn, yn, dec := setup(t, 5)

	// Grouped permutation with a grouped covariance policy keeps each group's
	// design rows inside the group, so every draw is well defined.
	res, err := tester.Run(context.Background(), xn.Data, yn.Data, dec.Singular, part, Config{
		NumDraws: 20, Grouped: true, GroupedPLS: true, Seed: 7, Workers: 2,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for c, p := range res.PValues {
		if math.IsNaN(p) {
			t.Errorf("component %d: p is NaN", c+1)
		}
	}
}

func TestRun_InvalidDrawCount(t *testing.T) {
	tester, part, _, xn, yn, dec := setup(t, 1)

	_, err := tester.Run(context.Background(), xn.Data, yn.Data, dec.Singular, part, Config{
		NumDraws: 0, Seed: 42, Workers: 1,
	})
	if !errors.Is(err, core.ErrInvalidConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRun_CanceledContext(t *testing.T) {
	tester, part, _, xn, yn, dec := setup(t, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tester.Run(ctx, xn.Data, yn.Data, dec.Singular, part, Config{
		NumDraws: 200, Seed: 42, Workers: 2,
	})
	if !errors.Is(err, core.ErrAborted) {
		t.Fatalf("expected aborted error, got %v", err)
	}
}
