package coder

import (
	"fmt"
	"math"
	"slices"

	"github.com/AlexWan0/go-wavelet/errs"
)

// huTuckerDepths returns the leaf depths of an optimal alphabetic tree over
// the weights, computed with the Garsia–Wachs procedure. The depths are those
// of the Hu-Tucker tree; alphabeticCodes turns them into codes.
func huTuckerDepths(weights []uint64) ([]int, error) {
	k := len(weights)
	if k == 1 {
		return []int{0}, nil
	}
	type item struct {
		w  uint64
		id int
	}
	const inf = math.MaxUint64
	seq := make([]item, 0, k+2)
	seq = append(seq, item{w: inf, id: -1})
	for i, w := range weights {
		seq = append(seq, item{w: w, id: i})
	}
	seq = append(seq, item{w: inf, id: -1})

	children := make([][2]int, 0, k-1)
	for len(seq) > 3 {
		// leftmost pair (i-1, i) with w[i-1] <= w[i+1]
		i := 2
		for i < len(seq)-2 && seq[i-1].w > seq[i+1].w {
			i++
		}
		x := item{w: seq[i-1].w + seq[i].w, id: k + len(children)}
		children = append(children, [2]int{seq[i-1].id, seq[i].id})
		seq = slices.Delete(seq, i-1, i+1)
		// move the merged node left past every lighter item
		j := i - 2
		for seq[j].w < x.w {
			j--
		}
		seq = slices.Insert(seq, j+1, x)
	}

	depths := make([]int, k)
	type frame struct{ node, depth int }
	stack := []frame{{node: seq[1].id}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.node < k {
			depths[f.node] = f.depth
			continue
		}
		if f.depth == MaxCodeLen {
			return nil, fmt.Errorf("%w: hu-tucker code longer than %d bits", errs.ErrConstruction, MaxCodeLen)
		}
		ch := children[f.node-k]
		stack = append(stack, frame{ch[0], f.depth + 1}, frame{ch[1], f.depth + 1})
	}
	return depths, nil
}
