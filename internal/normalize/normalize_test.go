package normalize

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"goplsc/domain/core"
	"goplsc/domain/plsc"
	"goplsc/internal/grouping"
)

func newPartition(t *testing.T, labels []int) *grouping.Partition {
	t.Helper()
	p, err := grouping.New(labels)
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	return p
}

func TestApply_IdentityMode(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{1, 10, 2, 20, 3, 30})
	part := newPartition(t, []int{1, 1, 2})
	warnings := plsc.NewWarningSet()

	got, err := Apply(x, part, plsc.NormNone, warnings, "imaging")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if !mat.EqualApprox(got.Data, x, 0) {
		t.Error("mode 0 must leave the data untouched")
	}
	if got.Location.At(0, 0) != 0 || got.Scale.At(0, 1) != 1 {
		t.Error("mode 0 must report zero location and unit scale")
	}
}

func TestApply_ZScoreColumns(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{
		1, 100,
		2, 200,
		3, 300,
		4, 400,
	})
	part := newPartition(t, []int{1, 1, 1, 1})
	warnings := plsc.NewWarningSet()

	got, err := Apply(x, part, plsc.NormZScore, warnings, "imaging")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	n, v := got.Data.Dims()
	for j := 0; j < v; j++ {
		var sum, sumSq float64
		for i := 0; i < n; i++ {
			sum += got.Data.At(i, j)
		}
		mean := sum / float64(n)
		for i := 0; i < n; i++ {
			d := got.Data.At(i, j) - mean
			sumSq += d * d
		}
		sd := math.Sqrt(sumSq / float64(n-1))

		if math.Abs(mean) > 1e-12 {
			t.Errorf("column %d mean = %g, want 0", j, mean)
		}
		if math.Abs(sd-1) > 1e-12 {
			t.Errorf("column %d sd = %g, want 1", j, sd)
		}
	}
}

func TestApply_Idempotent(t *testing.T) {
	tests := []struct {
		name string
		mode plsc.NormalizationMode
	}{
		{"z-score all subjects", plsc.NormZScore},
		{"z-score within groups", plsc.NormZScoreGrouped},
	}

	x := mat.NewDense(6, 2, []float64{
		1.2, -4,
		0.7, 2.5,
		-3, 1.1,
		5, 0.4,
		2.2, -1.7,
		-0.9, 3.3,
	})
	part := newPartition(t, []int{1, 1, 1, 2, 2, 2})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := plsc.NewWarningSet()
			once, err := Apply(x, part, tt.mode, warnings, "imaging")
			if err != nil {
				t.Fatalf("first Apply failed: %v", err)
			}
			twice, err := Apply(once.Data, part, tt.mode, warnings, "imaging")
			if err != nil {
				t.Fatalf("second Apply failed: %v", err)
			}
			if !mat.EqualApprox(once.Data, twice.Data, 1e-12) {
				t.Error("re-normalizing already normalized data must be a no-op")
			}
		})
	}
}

func TestApply_RMSLeavesMeanAlone(t *testing.T) {
	x := mat.NewDense(3, 1, []float64{3, 4, 5})
	part := newPartition(t, []int{1, 1, 1})
	warnings := plsc.NewWarningSet()

	got, err := Apply(x, part, plsc.NormRMS, warnings, "behavior")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	// rms = sqrt((9+16+25)/3)
	rms := math.Sqrt(50.0 / 3.0)
	for i, want := range []float64{3 / rms, 4 / rms, 5 / rms} {
		if math.Abs(got.Data.At(i, 0)-want) > 1e-12 {
			t.Errorf("row %d = %g, want %g", i, got.Data.At(i, 0), want)
		}
	}
	if got.Location.At(0, 0) != 0 {
		t.Error("RMS mode must not center")
	}
}

func TestApply_GroupedStatsPerGroup(t *testing.T) {
	x := mat.NewDense(4, 1, []float64{1, 3, 10, 30})
	part := newPartition(t, []int{1, 1, 2, 2})
	warnings := plsc.NewWarningSet()

	got, err := Apply(x, part, plsc.NormZScoreGrouped, warnings, "imaging")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	rows, _ := got.Location.Dims()
	if rows != 2 {
		t.Fatalf("expected one location row per group, got %d", rows)
	}
	if got.Location.At(0, 0) != 2 || got.Location.At(1, 0) != 20 {
		t.Errorf("group means = %g, %g; want 2, 20",
			got.Location.At(0, 0), got.Location.At(1, 0))
	}
}

func TestApply_DegenerateColumn(t *testing.T) {
	// Second column is constant
	x := mat.NewDense(4, 2, []float64{
		1, 5,
		2, 5,
		3, 5,
		4, 5,
	})
	part := newPartition(t, []int{1, 1, 1, 1})
	warnings := plsc.NewWarningSet()

	got, err := Apply(x, part, plsc.NormZScore, warnings, "imaging")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if !warnings.Has(plsc.WarnDegenerateColumn) {
		t.Error("expected a DEGENERATE_COLUMN warning")
	}
	for i := 0; i < 4; i++ {
		if v := got.Data.At(i, 1); v != 0 {
			t.Errorf("degenerate column row %d = %g, want exact 0", i, v)
		}
	}
	if got.Scale.At(0, 1) != 1 {
		t.Errorf("degenerate column scale = %g, want 1", got.Scale.At(0, 1))
	}
}

func TestApply_InvalidMode(t *testing.T) {
	x := mat.NewDense(2, 1, []float64{1, 2})
	part := newPartition(t, []int{1, 1})

	_, err := Apply(x, part, plsc.NormalizationMode(9), plsc.NewWarningSet(), "imaging")
	if !errors.Is(err, core.ErrInvalidConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestApply_RowCountMismatch(t *testing.T) {
	x := mat.NewDense(3, 1, []float64{1, 2, 3})
	part := newPartition(t, []int{1, 1})

	_, err := Apply(x, part, plsc.NormZScore, plsc.NewWarningSet(), "imaging")
	if !errors.Is(err, core.ErrDimensionMismatch) {
		t.Fatalf("expected dimension mismatch, got %v", err)
	}
}
