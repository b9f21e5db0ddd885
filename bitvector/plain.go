package bitvector

import (
	"math/bits"
	"sort"

	"github.com/bits-and-blooms/bitset"
)

const (
	superBlockBits = 512
	wordsPerSuper  = superBlockBits / 64
	wordBits       = 64
	log2WordBits   = 6
	wordOffsetMask = wordBits - 1
)

// plainVector keeps the raw words and the number of ones before every superblock.
type plainVector struct {
	bs    *bitset.BitSet
	words []uint64
	num   uint64
	ones  uint64
	super []uint64
}

func newPlain(_ Options, _ string, raw *bitset.BitSet) (BitVector, error) {
	bs := raw.Clone()
	words := bs.Words()
	num := uint64(bs.Len())
	super := make([]uint64, num/superBlockBits+1)
	ones := uint64(0)
	for w, word := range words {
		if w%wordsPerSuper == 0 && w/wordsPerSuper < len(super) {
			super[w/wordsPerSuper] = ones
		}
		ones += uint64(bits.OnesCount64(word))
	}
	// superblocks starting at or past the end hold the total
	for sb := (len(words) + wordsPerSuper - 1) / wordsPerSuper; sb < len(super); sb++ {
		super[sb] = ones
	}
	return &plainVector{bs: bs, words: words, num: num, ones: ones, super: super}, nil
}

func (v *plainVector) Num() uint64     { return v.num }
func (v *plainVector) OneNum() uint64  { return v.ones }
func (v *plainVector) ZeroNum() uint64 { return v.num - v.ones }

func (v *plainVector) Bit(pos uint64) bool {
	return v.bs.Test(uint(pos))
}

func (v *plainVector) Rank(pos uint64, bit bool) uint64 {
	if pos >= v.num {
		return bitNum(v.ones, v.num, bit)
	}
	sb := pos / superBlockBits
	rank := v.super[sb]
	last := pos >> log2WordBits
	for w := sb * wordsPerSuper; w < last; w++ {
		rank += uint64(bits.OnesCount64(v.words[w]))
	}
	if off := pos & wordOffsetMask; off != 0 {
		rank += uint64(bits.OnesCount64(v.words[last] & (1<<off - 1)))
	}
	return bitNum(rank, pos, bit)
}

func (v *plainVector) Select(k uint64, bit bool) (uint64, error) {
	if err := checkSelect(v, k, bit); err != nil {
		return 0, err
	}
	before := func(sb int) uint64 {
		if bit {
			return v.super[sb]
		}
		return min(uint64(sb)*superBlockBits, v.num) - v.super[sb]
	}
	// last superblock with fewer than k occurrences before it
	sb := sort.Search(len(v.super), func(i int) bool { return before(i) >= k }) - 1
	remain := k - before(sb)
	for w := sb * wordsPerSuper; w < len(v.words); w++ {
		word := v.words[w]
		if !bit {
			word = ^word
		}
		c := uint64(bits.OnesCount64(word))
		if remain <= c {
			for ; remain > 1; remain-- {
				word &= word - 1
			}
			return uint64(w)<<log2WordBits + uint64(bits.TrailingZeros64(word)), nil
		}
		remain -= c
	}
	return v.num, nil
}

func (v *plainVector) AllocSize() int {
	return len(v.words)*8 + len(v.super)*8
}
