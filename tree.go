package wavelet

import (
	"fmt"
	"math"

	"github.com/AlexWan0/go-wavelet/coder"
)

// noNode marks an absent child. Bit-plane trees have internal nodes with a
// single child when a code prefix is shared by one symbol only.
const noNode int32 = math.MinInt32

// treeNode is an internal node. Its bits occupy [off, off+size) of the
// level bit vector; ones is the number of set bits before off.
type treeNode struct {
	level     int
	off       uint64
	size      uint64
	ones      uint64
	lb        uint64 // first code-sorted position below the node
	minSym    uint64
	maxSym    uint64
	child     [2]int32
	firstLeaf int32
	lastLeaf  int32
}

// Tree is a wavelet tree shaped by the codes of its alphabet. Level l holds,
// left to right, the bit vectors of all internal nodes at depth l.
//
// Node ids are indexes into nodes for internal nodes and ^leaf for leaves,
// where leaves are numbered in code order.
type Tree struct {
	core
	nodes  []treeNode
	rootID int32

	leafSym  []uint64 // code order
	leafLb   []uint64
	leafFreq []uint64
	leafOf   []int32 // alphabet index to leaf
}

func isLeafID(id int32) bool { return id < 0 && id != noNode }

// Scheme returns the coding scheme the tree is shaped by.
func (t *Tree) Scheme() coder.Scheme { return t.alpha.Scheme }

// Code returns the code of sym.
func (t *Tree) Code(sym uint64) (coder.Code, error) {
	code, ok := t.alpha.CodeOf(sym)
	if !ok {
		return coder.Code{}, fmt.Errorf("%w: symbol %d not in the alphabet", ErrNotFound, sym)
	}
	return code, nil
}

func (t *Tree) root() cursor { return cursor{id: t.rootID} }

func (t *Tree) leaf(c cursor) (uint64, bool) {
	if !isLeafID(c.id) {
		return 0, false
	}
	return t.leafSym[^c.id], true
}

func (t *Tree) child(c cursor, bit bool) (cursor, bool) {
	if c.id < 0 {
		return cursor{}, false
	}
	id := t.nodes[c.id].child[b2i(bit)]
	if id == noNode {
		return cursor{}, false
	}
	return cursor{level: c.level + 1, id: id}, true
}

// ones1 returns the number of ones in the node-local prefix [0, pos).
func (t *Tree) ones1(nd *treeNode, pos uint64) uint64 {
	return t.levels[nd.level].Rank(nd.off+pos, true) - nd.ones
}

func (t *Tree) split(c cursor, r Range) (Range, Range) {
	nd := &t.nodes[c.id]
	ob := t.ones1(nd, r.Bpos)
	oe := t.ones1(nd, r.Epos)
	return Range{r.Bpos - ob, r.Epos - oe}, Range{ob, oe}
}

func (t *Tree) bounds(c cursor) (uint64, uint64) {
	if isLeafID(c.id) {
		s := t.leafSym[^c.id]
		return s, s
	}
	nd := &t.nodes[c.id]
	return nd.minSym, nd.maxSym
}

func (t *Tree) rankOf(i uint64, sym int) uint64 {
	code := t.alpha.Codes[sym]
	id, pos := t.rootID, i
	for l := 0; l < int(code.Len); l++ {
		nd := &t.nodes[id]
		ones := t.ones1(nd, pos)
		bit := code.Bit(l)
		if bit {
			pos = ones
		} else {
			pos -= ones
		}
		id = nd.child[b2i(bit)]
	}
	return pos
}

// selectOf records the path of the code, then translates the k-th position
// of the leaf back to the root with select.
func (t *Tree) selectOf(k uint64, sym int) (uint64, error) {
	code := t.alpha.Codes[sym]
	var path [coder.MaxCodeLen]int32
	id := t.rootID
	for l := 0; l < int(code.Len); l++ {
		path[l] = id
		id = t.nodes[id].child[b2i(code.Bit(l))]
	}
	pos := k - 1
	for l := int(code.Len) - 1; l >= 0; l-- {
		nd := &t.nodes[path[l]]
		lv := t.levels[l]
		var (
			g   uint64
			err error
		)
		if code.Bit(l) {
			g, err = lv.Select(nd.ones+pos+1, true)
		} else {
			g, err = lv.Select(nd.off-nd.ones+pos+1, false)
		}
		if err != nil {
			return 0, fmt.Errorf("%w: level %d: %v", ErrCorrupt, l, err)
		}
		pos = g - nd.off
	}
	return pos, nil
}

func (t *Tree) inverseSelect(i uint64) (uint64, uint64) {
	id, pos := t.rootID, i
	for id >= 0 {
		nd := &t.nodes[id]
		bit := t.levels[nd.level].Bit(nd.off + pos)
		ones := t.ones1(nd, pos)
		if bit {
			pos = ones
		} else {
			pos -= ones
		}
		id = nd.child[b2i(bit)]
	}
	return pos, t.leafSym[^id]
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
