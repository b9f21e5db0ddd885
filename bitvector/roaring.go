package bitvector

import (
	"fmt"
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"

	"github.com/AlexWan0/go-wavelet/errs"
)

type roaringVector struct {
	bm  *roaring.Bitmap
	num uint64
}

func newRoaring(_ Options, _ string, raw *bitset.BitSet) (BitVector, error) {
	if uint64(raw.Len()) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %s bit vector holds at most %d bits, got %d",
			errs.ErrConstruction, KindRoaring, uint64(math.MaxUint32), raw.Len())
	}
	positions := make([]uint32, 0, raw.Count())
	for i, ok := raw.NextSet(0); ok; i, ok = raw.NextSet(i + 1) {
		positions = append(positions, uint32(i))
	}
	bm := roaring.New()
	bm.AddMany(positions)
	bm.RunOptimize()
	return &roaringVector{bm: bm, num: uint64(raw.Len())}, nil
}

func (v *roaringVector) Num() uint64     { return v.num }
func (v *roaringVector) OneNum() uint64  { return v.bm.GetCardinality() }
func (v *roaringVector) ZeroNum() uint64 { return v.num - v.bm.GetCardinality() }

func (v *roaringVector) Bit(pos uint64) bool {
	return v.bm.Contains(uint32(pos))
}

func (v *roaringVector) Rank(pos uint64, bit bool) uint64 {
	if pos > v.num {
		pos = v.num
	}
	ones := uint64(0)
	if pos > 0 {
		ones = v.bm.Rank(uint32(pos - 1))
	}
	return bitNum(ones, pos, bit)
}

func (v *roaringVector) Select(k uint64, bit bool) (uint64, error) {
	if err := checkSelect(v, k, bit); err != nil {
		return 0, err
	}
	if bit {
		pos, err := v.bm.Select(uint32(k - 1))
		if err != nil {
			return 0, err
		}
		return uint64(pos), nil
	}
	// smallest pos such that B[0...pos] holds k zeros
	pos := sort.Search(int(v.num), func(i int) bool {
		return v.Rank(uint64(i)+1, false) >= k
	})
	return uint64(pos), nil
}

func (v *roaringVector) AllocSize() int {
	return int(v.bm.GetSizeInBytes())
}
