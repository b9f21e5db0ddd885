// Package bitvector provides rank/select bit vectors over several base
// representations. Every level of a wavelet structure is one BitVector.
package bitvector

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/AlexWan0/go-wavelet/errs"
)

// Kind identifies the base representation of a BitVector.
type Kind uint8

const (
	// KindRSDic stores bits enum-coded in small blocks (github.com/hillbig/rsdic).
	KindRSDic Kind = iota + 1
	// KindPlain stores uncompressed words with a superblock rank directory.
	KindPlain
	// KindRoaring stores the set positions in a roaring bitmap.
	KindRoaring
	// KindMmap stores an rsdic dictionary in files under Options.Dir.
	KindMmap
)

func (k Kind) String() string {
	switch k {
	case KindRSDic:
		return "rsdic"
	case KindPlain:
		return "plain"
	case KindRoaring:
		return "roaring"
	case KindMmap:
		return "mmap"
	default:
		return "unknown"
	}
}

// ParseKind returns the Kind named s.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown bit vector kind %q", errs.ErrConstruction, s)
}

// Kinds returns all supported kinds.
func Kinds() []Kind {
	return []Kind{KindRSDic, KindPlain, KindRoaring, KindMmap}
}

// BitVector represents an immutable bit vector B[0...Num) supporting rank and select.
type BitVector interface {
	// Num returns the number of bits.
	Num() uint64
	// OneNum returns the number of ones.
	OneNum() uint64
	// ZeroNum returns the number of zeros.
	ZeroNum() uint64
	// Bit returns B[pos]. pos must be less than Num().
	Bit(pos uint64) bool
	// Rank returns the number of bit's in B[0...pos). pos above Num() counts the whole vector.
	Rank(pos uint64, bit bool) uint64
	// Select returns the position of the k-th (1-indexed) occurrence of bit.
	Select(k uint64, bit bool) (uint64, error)
	// AllocSize returns the allocated size in bytes.
	AllocSize() int
}

// Options selects and configures the base representation.
type Options struct {
	Kind Kind
	// Dir is the root directory of file-backed vectors.
	Dir string
}

type constructor func(o Options, name string, raw *bitset.BitSet) (BitVector, error)

var constructors = map[Kind]constructor{
	KindRSDic:   newRSDic,
	KindPlain:   newPlain,
	KindRoaring: newRoaring,
	KindMmap:    newMmap,
}

// New builds a BitVector of the configured kind holding the bits of raw.
// raw.Len() is the length of the vector. name identifies the vector among
// its siblings and names its directory for file-backed kinds.
func New(o Options, name string, raw *bitset.BitSet) (BitVector, error) {
	if o.Kind == 0 {
		o.Kind = KindRSDic
	}
	ctor, ok := constructors[o.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown bit vector kind %d", errs.ErrConstruction, o.Kind)
	}
	return ctor(o, name, raw)
}

// Raw returns the bits of bv as a bitset of length bv.Num().
func Raw(bv BitVector) *bitset.BitSet {
	if p, ok := bv.(*plainVector); ok {
		return p.bs.Clone()
	}
	n := bv.Num()
	raw := bitset.New(uint(n))
	for pos := uint64(0); pos < n; pos++ {
		if bv.Bit(pos) {
			raw.Set(uint(pos))
		}
	}
	return raw
}

func checkSelect(bv BitVector, k uint64, bit bool) error {
	count := bv.OneNum()
	if !bit {
		count = bv.ZeroNum()
	}
	if k == 0 || k > count {
		return fmt.Errorf("%w: select(%d, %t) on %d occurrences", errs.ErrIndexOutOfRange, k, bit, count)
	}
	return nil
}

func bitNum(ones, pos uint64, bit bool) uint64 {
	if bit {
		return ones
	}
	return pos - ones
}
