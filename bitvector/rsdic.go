package bitvector

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/hillbig/rsdic"
)

type rsdicVector struct {
	rs *rsdic.RSDic
}

func newRSDic(_ Options, _ string, raw *bitset.BitSet) (BitVector, error) {
	rs := rsdic.New()
	for i := uint(0); i < raw.Len(); i++ {
		rs.PushBack(raw.Test(i))
	}
	return &rsdicVector{rs: rs}, nil
}

func (v *rsdicVector) Num() uint64     { return v.rs.Num() }
func (v *rsdicVector) OneNum() uint64  { return v.rs.OneNum() }
func (v *rsdicVector) ZeroNum() uint64 { return v.rs.ZeroNum() }

func (v *rsdicVector) Bit(pos uint64) bool {
	return v.rs.Bit(pos)
}

func (v *rsdicVector) Rank(pos uint64, bit bool) uint64 {
	return v.rs.Rank(pos, bit)
}

func (v *rsdicVector) Select(k uint64, bit bool) (uint64, error) {
	if err := checkSelect(v, k, bit); err != nil {
		return 0, err
	}
	return v.rs.Select(k-1, bit), nil
}

func (v *rsdicVector) AllocSize() int {
	return v.rs.AllocSize()
}
