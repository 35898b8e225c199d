// Package design constructs the analysis design matrix from behavioral data
// and group membership.
package design

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"goplsc/domain/core"
	"goplsc/domain/plsc"
	"goplsc/internal/grouping"
)

// Build converts raw behavioral data and group labels into the design matrix
// Y0 and its column names. Contrast-based modes require exactly 2 or 3
// distinct groups.
func Build(mode plsc.DesignMode, behavior *mat.Dense, part *grouping.Partition, groupNames, behavNames []string) (*mat.Dense, []string, error) {
	if !mode.Valid() {
		return nil, nil, fmt.Errorf("%w %q", core.ErrUndefinedDesignMode, mode)
	}

	n, b := behavior.Dims()
	if part.Subjects() != n {
		return nil, nil, core.NewDimensionMismatchError("behavior matrix", part.Subjects(), n)
	}

	groupNames = canonicalGroupNames(groupNames, part)
	behavNames = canonicalBehavNames(behavNames, b)

	if mode == plsc.DesignBehavior {
		y := mat.NewDense(n, b, nil)
		y.Copy(behavior)
		return y, behavNames, nil
	}

	contrasts, contrastNames, err := buildContrasts(part, groupNames)
	if err != nil {
		return nil, nil, err
	}
	nc := len(contrasts)

	switch mode {
	case plsc.DesignContrast:
		y := mat.NewDense(n, nc, nil)
		for c, col := range contrasts {
			y.SetCol(c, col)
		}
		return y, contrastNames, nil

	case plsc.DesignContrastBehav:
		y := mat.NewDense(n, nc+b, nil)
		for c, col := range contrasts {
			y.SetCol(c, col)
		}
		for j := 0; j < b; j++ {
			y.SetCol(nc+j, mat.Col(nil, j, behavior))
		}
		names := append(append([]string{}, contrastNames...), behavNames...)
		return y, names, nil

	case plsc.DesignContrastBehavInteract:
		// [contrast columns | per behavioral variable: raw column followed by
		// one interaction per contrast column]
		cols := nc + b*(1+nc)
		y := mat.NewDense(n, cols, nil)
		names := make([]string, 0, cols)

		for c, col := range contrasts {
			y.SetCol(c, col)
		}
		names = append(names, contrastNames...)

		next := nc
		for j := 0; j < b; j++ {
			raw := mat.Col(nil, j, behavior)
			y.SetCol(next, raw)
			names = append(names, behavNames[j])
			next++

			z := zscore(raw)
			for c, col := range contrasts {
				inter := make([]float64, n)
				for i := range inter {
					inter[i] = z[i] * col[i]
				}
				y.SetCol(next, inter)
				names = append(names, fmt.Sprintf("%s x %s", behavNames[j], contrastNames[c]))
				next++
			}
		}
		return y, names, nil
	}

	return nil, nil, fmt.Errorf("%w %q", core.ErrUndefinedDesignMode, mode)
}

// buildContrasts returns the unit-norm contrast column(s) for the partition.
// Two groups yield a single group-2-vs-group-1 contrast; three groups yield
// group-3-vs-pooled and group-2-vs-group-1 contrasts.
func buildContrasts(part *grouping.Partition, groupNames []string) ([][]float64, []string, error) {
	g := part.Groups()
	if g != 2 && g != 3 {
		return nil, nil, core.NewGroupCountError(g)
	}

	ids := part.IDs()
	n := part.Subjects()

	assign := func(weights map[int]float64) []float64 {
		col := make([]float64, n)
		for gid, w := range weights {
			for _, r := range part.Indices(gid) {
				col[r] = w
			}
		}
		return col
	}

	n1 := float64(part.Size(ids[0]))
	n2 := float64(part.Size(ids[1]))

	if g == 2 {
		col := assign(map[int]float64{ids[0]: -1 / n1, ids[1]: 1 / n2})
		normalizeContrast(col)
		name := fmt.Sprintf("%s vs %s", groupNames[1], groupNames[0])
		return [][]float64{col}, []string{name}, nil
	}

	n3 := float64(part.Size(ids[2]))

	// Group 3 against groups 1 and 2 pooled
	a := assign(map[int]float64{ids[0]: -1 / (n1 + n2), ids[1]: -1 / (n1 + n2), ids[2]: 1 / n3})
	normalizeContrast(a)

	// Group 2 against group 1
	b := assign(map[int]float64{ids[0]: -1 / n1, ids[1]: 1 / n2})
	normalizeContrast(b)

	names := []string{
		fmt.Sprintf("%s vs %s+%s", groupNames[2], groupNames[0], groupNames[1]),
		fmt.Sprintf("%s vs %s", groupNames[1], groupNames[0]),
	}
	return [][]float64{a, b}, names, nil
}

// normalizeContrast scales the column to unit norm, preserving the sign of the
// first non-zero entry relative to the raw weights.
func normalizeContrast(col []float64) {
	norm := 0.0
	for _, v := range col {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return
	}

	firstIdx := -1
	for i, v := range col {
		if v != 0 {
			firstIdx = i
			break
		}
	}

	rawSign := math.Signbit(col[firstIdx])
	for i := range col {
		col[i] /= norm
	}
	// Guard against an orientation flip from the normalization step; the sign
	// of the first weighted subject must match the raw contrast.
	if firstIdx >= 0 && math.Signbit(col[firstIdx]) != rawSign {
		for i := range col {
			col[i] = -col[i]
		}
	}
}

// zscore standardizes a vector across all entries; constant vectors return
// all zeros.
func zscore(x []float64) []float64 {
	mean := stat.Mean(x, nil)
	sd := stat.StdDev(x, nil)
	out := make([]float64, len(x))
	if sd == 0 || math.IsNaN(sd) {
		return out
	}
	for i, v := range x {
		out[i] = (v - mean) / sd
	}
	return out
}

func canonicalGroupNames(names []string, part *grouping.Partition) []string {
	if len(names) == part.Groups() {
		return names
	}
	out := make([]string, part.Groups())
	for i, id := range part.IDs() {
		out[i] = fmt.Sprintf("Group %d", id)
	}
	return out
}

func canonicalBehavNames(names []string, b int) []string {
	if len(names) == b {
		return names
	}
	out := make([]string, b)
	for j := range out {
		out[j] = fmt.Sprintf("Behavior %d", j+1)
	}
	return out
}
