package wavelet

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// walk checks every internal node against its children. Each child must see
// the parent sequence filtered by the parent bits, in order.
func walk(tr *Tree, v Node, leaves *[]uint64) {
	seq, err := tr.Seq(v)
	So(err, ShouldBeNil)
	So(uint64(len(seq)), ShouldEqual, tr.Size(v))
	if tr.IsLeaf(v) {
		sym, err := tr.Symbol(v)
		So(err, ShouldBeNil)
		for _, s := range seq {
			So(s, ShouldEqual, sym)
		}
		*leaves = append(*leaves, sym)
		return
	}
	if tr.Empty(v) {
		return
	}
	left, right, err := tr.Expand(v)
	So(err, ShouldBeNil)
	So(left.Level, ShouldEqual, v.Level+1)
	So(right.Level, ShouldEqual, v.Level+1)
	So(tr.Size(left)+tr.Size(right), ShouldEqual, tr.Size(v))

	bv, err := tr.BitVec(v)
	So(err, ShouldBeNil)
	So(uint64(bv.Len()), ShouldEqual, tr.Size(v))
	So(uint64(bv.Count()), ShouldEqual, tr.Size(right))

	var zeros, ones []uint64
	for p, s := range seq {
		if bv.Test(uint(p)) {
			ones = append(ones, s)
		} else {
			zeros = append(zeros, s)
		}
	}
	leftSeq, _ := tr.Seq(left)
	rightSeq, _ := tr.Seq(right)
	So(leftSeq, ShouldResemble, orEmpty(zeros))
	So(rightSeq, ShouldResemble, orEmpty(ones))

	walk(tr, left, leaves)
	walk(tr, right, leaves)
}

func orEmpty(s []uint64) []uint64 {
	if s == nil {
		return []uint64{}
	}
	return s
}

func TestTraversal(t *testing.T) {
	Convey("Given a bit-plane tree over 3 1 2 3 1 3", t, func() {
		seq := []uint64{3, 1, 2, 3, 1, 3}
		tr := mustBuild(t, KindTreeInt, seq).(*Tree)
		root := tr.Root()

		Convey("the root covers the whole sequence", func() {
			So(root.Level, ShouldEqual, 0)
			So(root.Lb, ShouldEqual, 0)
			So(root.Rb, ShouldEqual, 6)
			So(tr.IsLeaf(root), ShouldBeFalse)
			got, err := tr.Seq(root)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, seq)
			bv, err := tr.BitVec(root)
			So(err, ShouldBeNil)
			var bits []bool
			for p := uint(0); p < bv.Len(); p++ {
				bits = append(bits, bv.Test(p))
			}
			So(bits, ShouldResemble, []bool{true, false, true, true, false, true})
		})

		Convey("expanding follows the codes", func() {
			left, right, err := tr.Expand(root)
			So(err, ShouldBeNil)
			So(left.Lb, ShouldEqual, 0)
			So(left.Rb, ShouldEqual, 2)
			So(right.Lb, ShouldEqual, 2)
			So(right.Rb, ShouldEqual, 6)
			rs, _ := tr.Seq(right)
			So(rs, ShouldResemble, []uint64{3, 2, 3, 3})

			// 1 is coded 01: the left node has no zero child
			absent, leaf, err := tr.Expand(left)
			So(err, ShouldBeNil)
			So(tr.Empty(absent), ShouldBeTrue)
			So(tr.IsLeaf(absent), ShouldBeFalse)
			So(tr.IsLeaf(leaf), ShouldBeTrue)
			sym, err := tr.Symbol(leaf)
			So(err, ShouldBeNil)
			So(sym, ShouldEqual, 1)
			So(tr.Size(leaf), ShouldEqual, 2)

			_, _, err = tr.Expand(leaf)
			So(errors.Is(err, ErrInvalidState), ShouldBeTrue)
			_, _, err = tr.Expand(absent)
			So(errors.Is(err, ErrInvalidState), ShouldBeTrue)
			_, err = tr.Symbol(absent)
			So(errors.Is(err, ErrInvalidState), ShouldBeTrue)
			_, err = tr.Symbol(root)
			So(errors.Is(err, ErrInvalidState), ShouldBeTrue)
			bv, err := tr.BitVec(leaf)
			So(err, ShouldBeNil)
			So(bv.Len(), ShouldEqual, 0)
		})

		Convey("the levels concatenate into one bit vector", func() {
			bs, err := tr.Bits()
			So(err, ShouldBeNil)
			var bits []bool
			for p := uint(0); p < bs.Len(); p++ {
				bits = append(bits, bs.Test(p))
			}
			So(bits, ShouldResemble, []bool{
				true, false, true, true, false, true,
				true, true, true, false, true, true,
			})
		})

		Convey("ranges map into the children", func() {
			left, right, err := tr.ExpandRanges(root, []Range{{0, 6}, {1, 4}, {2, 2}})
			So(err, ShouldBeNil)
			So(left, ShouldResemble, []Range{{0, 2}, {0, 1}, {1, 1}})
			So(right, ShouldResemble, []Range{{0, 4}, {1, 3}, {1, 1}})

			_, _, err = tr.ExpandRanges(root, []Range{{0, 7}})
			So(errors.Is(err, ErrInvalidQuery), ShouldBeTrue)
			_, _, err = tr.ExpandRanges(root, []Range{{3, 2}})
			So(errors.Is(err, ErrInvalidQuery), ShouldBeTrue)
		})

		Convey("nodes of another tree are rejected", func() {
			other := mustBuild(t, KindTreeInt, seq).(*Tree)
			_, _, err := tr.Expand(other.Root())
			So(errors.Is(err, ErrInvalidState), ShouldBeTrue)
			So(tr.IsLeaf(other.Root()), ShouldBeFalse)
			So(tr.Size(other.Root()), ShouldEqual, 0)
			So(tr.Empty(other.Root()), ShouldBeTrue)
			So(other.Size(other.Root()), ShouldEqual, 6)

			forged := root
			forged.Rb = 5
			_, err = tr.Seq(forged)
			So(errors.Is(err, ErrInvalidState), ShouldBeTrue)
			So(tr.Size(forged), ShouldEqual, 0)
			So(tr.Empty(forged), ShouldBeTrue)
		})
	})

	for _, kind := range []Kind{KindTreeInt, KindTreeHuffman, KindTreeHuTucker, KindTreeBalanced} {
		Convey(fmt.Sprintf("Walking a %v", kind), t, func() {
			rng := rand.New(rand.NewSource(int64(kind)))
			orig := skewedSeq(rng, 400, 9)
			tr := mustBuild(t, kind, orig).(*Tree)

			var leaves []uint64
			walk(tr, tr.Root(), &leaves)
			So(len(leaves), ShouldEqual, tr.Sigma())
			if tr.LexOrdered() {
				So(leaves, ShouldResemble, tr.Alphabet())
			}
			for _, s := range leaves {
				code, err := tr.Code(s)
				So(err, ShouldBeNil)
				So(int(code.Len), ShouldBeLessThanOrEqualTo, tr.MaxLevel())
			}
			_, err := tr.Code(1 << 50)
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})
	}

	Convey("A tree over one symbol is a single leaf", t, func() {
		tr := mustBuild(t, KindTreeHuffman, []uint64{4, 4}).(*Tree)
		root := tr.Root()
		So(tr.IsLeaf(root), ShouldBeTrue)
		So(root.Level, ShouldEqual, 0)
		sym, err := tr.Symbol(root)
		So(err, ShouldBeNil)
		So(sym, ShouldEqual, 4)
	})
}
