package wavelet

import (
	"cmp"
	"slices"

	"github.com/bits-and-blooms/bitset"

	"github.com/AlexWan0/go-wavelet/coder"
)

// leftAligned places the code in the high bits so that codes compare in
// code order. Prefix-free codes never tie.
func leftAligned(c coder.Code) uint64 {
	return c.Bits << (64 - uint(c.Len))
}

// layoutTree lays out the node table of the code tree of alpha. It does not
// touch level bits and is shared by construction and decoding.
func layoutTree(alpha *coder.Alphabet) *Tree {
	sigma := alpha.Sigma()
	t := &Tree{
		rootID:   noNode,
		leafSym:  make([]uint64, sigma),
		leafLb:   make([]uint64, sigma),
		leafFreq: make([]uint64, sigma),
		leafOf:   make([]int32, sigma),
	}
	order := make([]int, sigma)
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		return cmp.Compare(leftAligned(alpha.Codes[a]), leftAligned(alpha.Codes[b]))
	})
	lb := uint64(0)
	for leaf, a := range order {
		t.leafSym[leaf] = alpha.Symbols[a]
		t.leafFreq[leaf] = alpha.Freqs[a]
		t.leafLb[leaf] = lb
		t.leafOf[a] = int32(leaf)
		lb += alpha.Freqs[a]
	}
	if sigma == 0 {
		return t
	}
	codeOfLeaf := func(leaf int) coder.Code { return alpha.Codes[order[leaf]] }

	type span struct {
		a, b   int
		level  int
		parent int32
		side   int
	}
	queue := []span{{a: 0, b: sigma, parent: noNode}}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]

		var id int32
		if s.b-s.a == 1 && int(codeOfLeaf(s.a).Len) == s.level {
			id = ^int32(s.a)
		} else {
			id = int32(len(t.nodes))
			nd := treeNode{
				level:     s.level,
				lb:        t.leafLb[s.a],
				size:      t.leafLb[s.b-1] + t.leafFreq[s.b-1] - t.leafLb[s.a],
				child:     [2]int32{noNode, noNode},
				firstLeaf: int32(s.a),
				lastLeaf:  int32(s.b - 1),
				minSym:    t.leafSym[s.a],
				maxSym:    t.leafSym[s.a],
			}
			for leaf := s.a; leaf < s.b; leaf++ {
				nd.minSym = min(nd.minSym, t.leafSym[leaf])
				nd.maxSym = max(nd.maxSym, t.leafSym[leaf])
			}
			t.nodes = append(t.nodes, nd)
			m := s.a
			for m < s.b && !codeOfLeaf(m).Bit(s.level) {
				m++
			}
			if m > s.a {
				queue = append(queue, span{a: s.a, b: m, level: s.level + 1, parent: id, side: 0})
			}
			if s.b > m {
				queue = append(queue, span{a: m, b: s.b, level: s.level + 1, parent: id, side: 1})
			}
		}
		if s.parent == noNode {
			t.rootID = id
		} else {
			t.nodes[s.parent].child[s.side] = id
		}
	}

	// ids are level-major and left to right within a level
	level, off := -1, uint64(0)
	for i := range t.nodes {
		nd := &t.nodes[i]
		if nd.level != level {
			level, off = nd.level, 0
		}
		nd.off = off
		off += nd.size
	}
	return t
}

// levelLens returns the length of every level bit vector.
func (t *Tree) levelLens(maxLevel int) []uint64 {
	lens := make([]uint64, maxLevel)
	for i := range t.nodes {
		lens[t.nodes[i].level] += t.nodes[i].size
	}
	return lens
}

// levelBits distributes the sequence over the node table. Elements of a
// node keep their relative order and are regrouped zeros first for the
// next level; elements reaching a leaf drop out.
func (t *Tree) levelBits(seq []uint64, alpha *coder.Alphabet) []*bitset.BitSet {
	lens := t.levelLens(alpha.MaxLevel())
	raws := make([]*bitset.BitSet, len(lens))
	for l := range raws {
		raws[l] = bitset.New(uint(lens[l]))
	}
	cur := make([]int32, len(seq))
	for i, c := range seq {
		idx, _ := alpha.Index(c)
		cur[i] = int32(idx)
	}
	next := make([]int32, 0, len(seq))
	id := 0
	for l := range raws {
		next = next[:0]
		pos := 0
		ones := uint64(0)
		for ; id < len(t.nodes) && t.nodes[id].level == l; id++ {
			nd := &t.nodes[id]
			nd.ones = ones
			seg := cur[pos : pos+int(nd.size)]
			pos += int(nd.size)
			for j, a := range seg {
				if alpha.Codes[a].Bit(l) {
					raws[l].Set(uint(nd.off) + uint(j))
					ones++
				}
			}
			for side, child := range nd.child {
				if child < 0 {
					continue
				}
				for _, a := range seg {
					if b2i(alpha.Codes[a].Bit(l)) == side {
						next = append(next, a)
					}
				}
			}
		}
		cur, next = next, cur
	}
	return raws
}

// countOnes fills the ones field of every node from the level bit vectors.
func (t *Tree) countOnes() {
	for i := range t.nodes {
		nd := &t.nodes[i]
		nd.ones = t.levels[nd.level].Rank(nd.off, true)
	}
}

func buildTree(seq []uint64, alpha *coder.Alphabet, c core) (*Tree, error) {
	t := layoutTree(alpha)
	raws := t.levelBits(seq, alpha)
	levels, err := materialize(raws, c.cfg)
	if err != nil {
		return nil, err
	}
	c.levels = levels
	t.core = c
	t.lay = t
	return t, nil
}
