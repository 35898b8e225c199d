// Package testkit generates synthetic datasets with known structure for
// exercising the analysis pipeline.
package testkit

import (
	"fmt"
	"math"
	randv2 "math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"goplsc/domain/plsc"
)

// SignalSpec describes a synthetic dataset: dimensions, equal-size groups,
// and one planted correlation between an imaging and a behavioral variable.
type SignalSpec struct {
	Subjects     int
	ImagingVars  int
	BehaviorVars int
	Groups       int

	// SignalImagingVar correlates with SignalBehaviorVar at roughly
	// Correlation, within SignalGroup only (0-based group position; -1 plants
	// the signal across all subjects). Everything else is independent noise.
	SignalImagingVar  int
	SignalBehaviorVar int
	SignalGroup       int
	Correlation       float64
}

// Kit produces deterministic synthetic datasets
type Kit struct {
	normal distuv.Normal
}

// New creates a kit seeded for reproducible generation
func New(seed int64) *Kit {
	src := randv2.NewPCG(uint64(seed), uint64(seed)+1)
	return &Kit{normal: distuv.Normal{Mu: 0, Sigma: 1, Src: src}}
}

// Generate builds a dataset matching spec. Group labels are 1..Groups,
// assigned in contiguous equal-size blocks.
func (k *Kit) Generate(spec SignalSpec) *plsc.Dataset {
	n, m, b := spec.Subjects, spec.ImagingVars, spec.BehaviorVars

	imaging := mat.NewDense(n, m, nil)
	behavior := mat.NewDense(n, b, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			imaging.Set(i, j, k.normal.Rand())
		}
		for j := 0; j < b; j++ {
			behavior.Set(i, j, k.normal.Rand())
		}
	}

	grouping := make([]int, n)
	perGroup := n / spec.Groups
	for i := range grouping {
		g := i / perGroup
		if g >= spec.Groups {
			g = spec.Groups - 1
		}
		grouping[i] = g + 1
	}

	// Plant the signal: x = r*y + sqrt(1-r^2)*noise keeps x standard normal
	// while correlating it with y at r.
	r := spec.Correlation
	mix := math.Sqrt(1 - r*r)
	for i := 0; i < n; i++ {
		if spec.SignalGroup >= 0 && grouping[i] != spec.SignalGroup+1 {
			continue
		}
		y := behavior.At(i, spec.SignalBehaviorVar)
		imaging.Set(i, spec.SignalImagingVar, r*y+mix*k.normal.Rand())
	}

	groupNames := make([]string, spec.Groups)
	for g := range groupNames {
		groupNames[g] = fmt.Sprintf("Group %d", g+1)
	}
	imagingNames := make([]string, m)
	for j := range imagingNames {
		imagingNames[j] = fmt.Sprintf("img_%d", j+1)
	}
	behaviorNames := make([]string, b)
	for j := range behaviorNames {
		behaviorNames[j] = fmt.Sprintf("behav_%d", j+1)
	}

	return &plsc.Dataset{
		Imaging:       imaging,
		Behavior:      behavior,
		Grouping:      grouping,
		GroupNames:    groupNames,
		ImagingNames:  imagingNames,
		BehaviorNames: behaviorNames,
	}
}
