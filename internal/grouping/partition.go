// Package grouping provides the shared partition-by-group abstraction used by
// every group-aware component. Building the partition once per analysis
// guarantees that the covariance row-stacking order, the permutation blocks,
// and the bootstrap strata all agree on group ordering.
package grouping

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"goplsc/domain/core"
)

// Partition is an ordered mapping from group ID to the row indices belonging
// to it. Group IDs are sorted ascending; row indices within a group keep their
// original order. Immutable after construction.
type Partition struct {
	labels  []int
	ids     []int
	indices map[int][]int
}

// New builds a partition from per-subject group labels. Labels are arbitrary
// integers; they need not be contiguous or 1-based.
func New(labels []int) (*Partition, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: no group labels", core.ErrInsufficientData)
	}

	indices := make(map[int][]int)
	for i, g := range labels {
		indices[g] = append(indices[g], i)
	}

	ids := make([]int, 0, len(indices))
	for g := range indices {
		ids = append(ids, g)
	}
	sort.Ints(ids)

	cp := make([]int, len(labels))
	copy(cp, labels)

	return &Partition{labels: cp, ids: ids, indices: indices}, nil
}

// Subjects returns the total number of rows N
func (p *Partition) Subjects() int { return len(p.labels) }

// Groups returns the number of distinct group IDs
func (p *Partition) Groups() int { return len(p.ids) }

// IDs returns the distinct group IDs in ascending order
func (p *Partition) IDs() []int {
	out := make([]int, len(p.ids))
	copy(out, p.ids)
	return out
}

// Labels returns the original per-subject labels
func (p *Partition) Labels() []int {
	out := make([]int, len(p.labels))
	copy(out, p.labels)
	return out
}

// Indices returns the row indices of one group, in original row order
func (p *Partition) Indices(groupID int) []int {
	src := p.indices[groupID]
	out := make([]int, len(src))
	copy(out, src)
	return out
}

// Size returns the number of rows in one group
func (p *Partition) Size(groupID int) int { return len(p.indices[groupID]) }

// Blocks returns the row-index blocks an operation iterates over: one block
// per group in ascending group-ID order when grouped, otherwise a single block
// covering all rows. This single switch is what keeps grouped behavior
// identical across normalization, covariance, permutation, and bootstrap.
func (p *Partition) Blocks(grouped bool) [][]int {
	if !grouped {
		all := make([]int, len(p.labels))
		for i := range all {
			all[i] = i
		}
		return [][]int{all}
	}
	blocks := make([][]int, 0, len(p.ids))
	for _, g := range p.ids {
		blocks = append(blocks, p.Indices(g))
	}
	return blocks
}

// EffectiveGroups returns the number of blocks Blocks would produce
func (p *Partition) EffectiveGroups(grouped bool) int {
	if !grouped {
		return 1
	}
	return len(p.ids)
}

// Rows extracts the given rows of src into a new matrix, in index order
func Rows(src *mat.Dense, idx []int) *mat.Dense {
	_, c := src.Dims()
	out := mat.NewDense(len(idx), c, nil)
	for i, r := range idx {
		out.SetRow(i, src.RawRowView(r))
	}
	return out
}
