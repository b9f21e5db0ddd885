package coder

import (
	"container/heap"
	"fmt"

	"github.com/AlexWan0/go-wavelet/errs"
)

type huffItem struct {
	weight uint64
	minSym uint64 // smallest symbol below the subtree, breaks weight ties
	node   int
}

type huffHeap []huffItem

func (h huffHeap) Len() int { return len(h) }
func (h huffHeap) Less(i, j int) bool {
	if h[i].weight != h[j].weight {
		return h[i].weight < h[j].weight
	}
	return h[i].minSym < h[j].minSym
}
func (h huffHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *huffHeap) Push(x any)   { *h = append(*h, x.(huffItem)) }
func (h *huffHeap) Pop() any {
	old := *h
	it := old[len(old)-1]
	*h = old[:len(old)-1]
	return it
}

// huffmanCodes merges the two lightest subtrees until one remains. The
// lighter subtree becomes the 0-child.
func huffmanCodes(symbols, freqs []uint64) ([]Code, error) {
	k := len(symbols)
	codes := make([]Code, k)
	if k == 1 {
		return codes, nil
	}
	h := make(huffHeap, k)
	for i := range symbols {
		h[i] = huffItem{weight: freqs[i], minSym: symbols[i], node: i}
	}
	heap.Init(&h)
	children := make([][2]int, 0, k-1)
	for h.Len() > 1 {
		a := heap.Pop(&h).(huffItem)
		b := heap.Pop(&h).(huffItem)
		children = append(children, [2]int{a.node, b.node})
		heap.Push(&h, huffItem{
			weight: a.weight + b.weight,
			minSym: min(a.minSym, b.minSym),
			node:   k + len(children) - 1,
		})
	}

	type frame struct {
		node int
		code Code
	}
	stack := []frame{{node: h[0].node}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.node < k {
			codes[f.node] = f.code
			continue
		}
		if f.code.Len == MaxCodeLen {
			return nil, fmt.Errorf("%w: huffman code longer than %d bits", errs.ErrConstruction, MaxCodeLen)
		}
		ch := children[f.node-k]
		stack = append(stack,
			frame{node: ch[0], code: Code{Bits: f.code.Bits << 1, Len: f.code.Len + 1}},
			frame{node: ch[1], code: Code{Bits: f.code.Bits<<1 | 1, Len: f.code.Len + 1}},
		)
	}
	return codes, nil
}
