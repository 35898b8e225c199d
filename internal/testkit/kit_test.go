package testkit

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"
)

func TestGenerate_ShapesAndGrouping(t *testing.T) {
	kit := New(1)
	data := kit.Generate(SignalSpec{
		Subjects: 20, ImagingVars: 4, BehaviorVars: 2, Groups: 2,
		SignalImagingVar: 0, SignalBehaviorVar: 0, SignalGroup: -1, Correlation: 0.5,
	})

	if err := data.Validate(); err != nil {
		t.Fatalf("generated dataset invalid: %v", err)
	}

	n, m := data.Imaging.Dims()
	_, b := data.Behavior.Dims()
	if n != 20 || m != 4 || b != 2 {
		t.Errorf("dims = %dx%d imaging, %d behavior", n, m, b)
	}

	counts := map[int]int{}
	for _, g := range data.Grouping {
		counts[g]++
	}
	if counts[1] != 10 || counts[2] != 10 {
		t.Errorf("group sizes = %v, want 10/10", counts)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	spec := SignalSpec{
		Subjects: 10, ImagingVars: 3, BehaviorVars: 2, Groups: 2,
		SignalImagingVar: 0, SignalBehaviorVar: 0, SignalGroup: -1, Correlation: 0.5,
	}

	a := New(42).Generate(spec)
	b := New(42).Generate(spec)
	c := New(43).Generate(spec)

	if a.Imaging.At(0, 0) != b.Imaging.At(0, 0) {
		t.Error("same seed must generate identical data")
	}
	if a.Imaging.At(0, 0) == c.Imaging.At(0, 0) {
		t.Error("different seeds must generate different data")
	}
}

func TestGenerate_PlantedCorrelation(t *testing.T) {
	kit := New(99)
	data := kit.Generate(SignalSpec{
		Subjects: 500, ImagingVars: 2, BehaviorVars: 2, Groups: 2,
		SignalImagingVar: 0, SignalBehaviorVar: 1, SignalGroup: -1, Correlation: 0.7,
	})

	n, _ := data.Imaging.Dims()
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = data.Imaging.At(i, 0)
		y[i] = data.Behavior.At(i, 1)
	}

	if r := stat.Correlation(x, y, nil); math.Abs(r-0.7) > 0.1 {
		t.Errorf("planted correlation = %g, want about 0.7", r)
	}
}

func TestGenerate_SignalConfinedToGroup(t *testing.T) {
	kit := New(7)
	data := kit.Generate(SignalSpec{
		Subjects: 600, ImagingVars: 2, BehaviorVars: 1, Groups: 2,
		SignalImagingVar: 0, SignalBehaviorVar: 0, SignalGroup: 0, Correlation: 0.8,
	})

	var x1, y1, x2, y2 []float64
	n, _ := data.Imaging.Dims()
	for i := 0; i < n; i++ {
		if data.Grouping[i] == 1 {
			x1 = append(x1, data.Imaging.At(i, 0))
			y1 = append(y1, data.Behavior.At(i, 0))
		} else {
			x2 = append(x2, data.Imaging.At(i, 0))
			y2 = append(y2, data.Behavior.At(i, 0))
		}
	}

	if r := stat.Correlation(x1, y1, nil); math.Abs(r-0.8) > 0.1 {
		t.Errorf("signal group correlation = %g, want about 0.8", r)
	}
	if r := stat.Correlation(x2, y2, nil); math.Abs(r) > 0.2 {
		t.Errorf("noise group correlation = %g, want about 0", r)
	}
}
