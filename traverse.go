package wavelet

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// Node is a view of a tree node: the code-sorted positions [Lb, Rb) whose
// code starts with the node's prefix of length Level. Nodes are only valid
// with the tree that produced them.
type Node struct {
	Level int
	Lb    uint64
	Rb    uint64

	id   int32
	tree *Tree
}

func (t *Tree) nodeOf(id int32) Node {
	if isLeafID(id) {
		leaf := ^id
		code, _ := t.alpha.CodeOf(t.leafSym[leaf])
		return Node{Level: int(code.Len), Lb: t.leafLb[leaf], Rb: t.leafLb[leaf] + t.leafFreq[leaf], id: id, tree: t}
	}
	nd := &t.nodes[id]
	return Node{Level: nd.level, Lb: nd.lb, Rb: nd.lb + nd.size, id: id, tree: t}
}

func (t *Tree) emptyNode(level int, at uint64) Node {
	return Node{Level: level, Lb: at, Rb: at, id: noNode, tree: t}
}

// check verifies that v was produced by t and still matches its table.
func (t *Tree) check(v Node) error {
	if v.tree != t {
		return fmt.Errorf("%w: node belongs to another structure", ErrInvalidState)
	}
	if err := t.checkOpen(); err != nil {
		return err
	}
	switch {
	case v.id == noNode:
		if v.Lb != v.Rb {
			return fmt.Errorf("%w: absent node with non-empty range", ErrInvalidState)
		}
		return nil
	case isLeafID(v.id):
		if int(^v.id) >= len(t.leafSym) {
			return fmt.Errorf("%w: unknown leaf %d", ErrInvalidState, ^v.id)
		}
	case int(v.id) >= len(t.nodes):
		return fmt.Errorf("%w: unknown node %d", ErrInvalidState, v.id)
	}
	want := t.nodeOf(v.id)
	if want.Level != v.Level || want.Lb != v.Lb || want.Rb != v.Rb {
		return fmt.Errorf("%w: node (%d, %d, %d) does not match the tree", ErrInvalidState, v.Level, v.Lb, v.Rb)
	}
	return nil
}

// checkInternal verifies that v is a valid, non-empty internal node.
func (t *Tree) checkInternal(v Node, op string) error {
	if err := t.check(v); err != nil {
		return err
	}
	if v.id < 0 {
		return fmt.Errorf("%w: %s on a leaf or empty node", ErrInvalidState, op)
	}
	return nil
}

// Root returns the root node. The root of an empty tree is empty.
func (t *Tree) Root() Node {
	if t.rootID == noNode {
		return t.emptyNode(0, 0)
	}
	return t.nodeOf(t.rootID)
}

// IsLeaf reports whether v stands for a single symbol.
func (t *Tree) IsLeaf(v Node) bool {
	return t.check(v) == nil && isLeafID(v.id)
}

// Empty reports whether v covers no position. Nodes not valid for t are
// empty.
func (t *Tree) Empty(v Node) bool { return t.Size(v) == 0 }

// Size returns the number of positions covered by v, 0 for nodes not valid
// for t.
func (t *Tree) Size(v Node) uint64 {
	if t.check(v) != nil {
		return 0
	}
	return Range{v.Lb, v.Rb}.Len()
}

// Symbol returns the symbol of a leaf.
func (t *Tree) Symbol(v Node) (uint64, error) {
	if err := t.check(v); err != nil {
		return 0, err
	}
	if !isLeafID(v.id) {
		return 0, fmt.Errorf("%w: symbol of a non-leaf node", ErrInvalidState)
	}
	return t.leafSym[^v.id], nil
}

// Expand returns the children of an internal node. An absent child of a
// bit-plane tree is returned as an empty node.
func (t *Tree) Expand(v Node) (Node, Node, error) {
	if err := t.checkInternal(v, "expand"); err != nil {
		return Node{}, Node{}, err
	}
	nd := &t.nodes[v.id]
	left := t.emptyNode(v.Level+1, v.Lb)
	right := t.emptyNode(v.Level+1, v.Rb)
	if id := nd.child[0]; id != noNode {
		left = t.nodeOf(id)
	}
	if id := nd.child[1]; id != noNode {
		right = t.nodeOf(id)
	}
	return left, right, nil
}

// ExpandRanges maps node-local ranges of v to the local ranges of each
// child of v.
func (t *Tree) ExpandRanges(v Node, ranges []Range) ([]Range, []Range, error) {
	if err := t.checkInternal(v, "expand"); err != nil {
		return nil, nil, err
	}
	size := t.Size(v)
	left := make([]Range, len(ranges))
	right := make([]Range, len(ranges))
	for i, r := range ranges {
		if r.Bpos > r.Epos || r.Epos > size {
			return nil, nil, fmt.Errorf("%w: range [%d, %d) outside node of size %d", ErrInvalidQuery, r.Bpos, r.Epos, size)
		}
		left[i], right[i] = t.split(cursor{level: v.Level, id: v.id}, r)
	}
	return left, right, nil
}

// BitVec returns the bits of v. Leaves and empty nodes have no bits.
func (t *Tree) BitVec(v Node) (*bitset.BitSet, error) {
	if err := t.check(v); err != nil {
		return nil, err
	}
	if v.id < 0 {
		return bitset.New(0), nil
	}
	nd := &t.nodes[v.id]
	lv := t.levels[nd.level]
	bs := bitset.New(uint(nd.size))
	for p := uint64(0); p < nd.size; p++ {
		if lv.Bit(nd.off + p) {
			bs.Set(uint(p))
		}
	}
	return bs, nil
}

// Bits returns the bits of every level concatenated, level 0 first. Within a
// level the nodes are laid out left to right.
func (t *Tree) Bits() (*bitset.BitSet, error) {
	if err := t.checkOpen(); err != nil {
		return nil, err
	}
	total := uint64(0)
	for _, lv := range t.levels {
		total += lv.Num()
	}
	bs := bitset.New(uint(total))
	at := uint64(0)
	for _, lv := range t.levels {
		for p := uint64(0); p < lv.Num(); p++ {
			if lv.Bit(p) {
				bs.Set(uint(at + p))
			}
		}
		at += lv.Num()
	}
	return bs, nil
}

// Seq returns the symbols covered by v in node order.
func (t *Tree) Seq(v Node) ([]uint64, error) {
	if err := t.check(v); err != nil {
		return nil, err
	}
	seq := make([]uint64, t.Size(v))
	for p := range seq {
		seq[p] = t.symbolAt(v.id, uint64(p))
	}
	return seq, nil
}

// symbolAt descends from node id to the leaf of node-local position pos.
func (t *Tree) symbolAt(id int32, pos uint64) uint64 {
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
	return t.leafSym[^id]
}
