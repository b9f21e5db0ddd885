// Package wavelet provides wavelet trees and wavelet matrices over uint64
// sequences, supporting rank/select, access, lexicographic counting,
// quantile, intersection and 2D range queries without decompressing the
// sequence.
//
// A structure is built once from a sequence (Build, NewBuilder, FromBytes,
// ParseString) or decoded from a serialized image (Unmarshal, FromBinaryFile,
// Load) and is immutable afterwards. All queries are safe for concurrent use.
package wavelet

import (
	"fmt"
	"strings"

	"github.com/AlexWan0/go-wavelet/coder"
)

// Range represents a range [Bpos, Epos)
// only valid for Bpos <= Epos
type Range struct {
	Bpos uint64
	Epos uint64
}

// Len returns the number of positions in r.
func (r Range) Len() uint64 {
	if r.Epos < r.Bpos {
		return 0
	}
	return r.Epos - r.Bpos
}

// Empty reports whether r covers no position.
func (r Range) Empty() bool { return r.Epos <= r.Bpos }

// Kind names a wavelet variant: a layout together with a coding scheme.
type Kind uint8

const (
	// KindTreeInt is a wavelet tree over fixed-width binary codes.
	KindTreeInt Kind = iota + 1
	// KindMatrixInt is a wavelet matrix over fixed-width binary codes.
	KindMatrixInt
	// KindTreeHuffman is a Huffman-shaped wavelet tree.
	KindTreeHuffman
	// KindTreeHuTucker is a Hu-Tucker-shaped wavelet tree.
	KindTreeHuTucker
	// KindTreeBalanced is a balanced wavelet tree over the effective alphabet.
	KindTreeBalanced
)

var kindNames = map[Kind]string{
	KindTreeInt:      "wt_int",
	KindMatrixInt:    "wm_int",
	KindTreeHuffman:  "wt_huff",
	KindTreeHuTucker: "wt_hutu",
	KindTreeBalanced: "wt_blcd",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Kinds returns every supported kind.
func Kinds() []Kind {
	return []Kind{KindTreeInt, KindMatrixInt, KindTreeHuffman, KindTreeHuTucker, KindTreeBalanced}
}

// ParseKind returns the kind named s, e.g. "wt_huff".
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(name, s) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown wavelet kind %q", ErrConstruction, s)
}

// Scheme returns the coding scheme of the kind.
func (k Kind) Scheme() coder.Scheme {
	switch k {
	case KindTreeHuffman:
		return coder.SchemeHuffman
	case KindTreeHuTucker:
		return coder.SchemeHuTucker
	case KindTreeBalanced:
		return coder.SchemeBalanced
	default:
		return coder.SchemeBitPlane
	}
}

// Flat reports whether the kind uses the matrix layout.
func (k Kind) Flat() bool { return k == KindMatrixInt }

func (k Kind) valid() bool {
	_, ok := kindNames[k]
	return ok
}

// LexCount is the result of a lexicographic count around a symbol c.
type LexCount struct {
	Rank    uint64 // occurrences of c before the interval
	Smaller uint64 // values < c inside the interval
	Greater uint64 // values > c inside the interval
}

// SymbolFreq pairs a symbol with an accumulated frequency.
type SymbolFreq struct {
	Symbol uint64
	Freq   uint64
}

// IntervalSymbols lists the distinct symbols of an interval [i, j) together
// with their ranks at both ends. All slices have length K.
type IntervalSymbols struct {
	K       int
	Symbols []uint64
	RankI   []uint64
	RankJ   []uint64
}

// Point is a (position, value) pair reported by a 2D range search.
type Point struct {
	Pos   uint64
	Value uint64
}

// Wavelet supports several range queries.
type Wavelet interface {
	// Len returns the length of the indexed sequence.
	Len() uint64
	// Sigma returns the number of distinct symbols.
	Sigma() int
	// MaxLevel returns the number of levels, the longest code length.
	MaxLevel() int
	// LexOrdered reports whether code order equals symbol order.
	LexOrdered() bool
	Kind() Kind
	// Alphabet returns the symbols present, ascending.
	Alphabet() []uint64

	// Access returns S[i].
	Access(i uint64) (uint64, error)
	// Rank returns the number of c in S[0...i).
	Rank(i, c uint64) (uint64, error)
	// Select returns the position of the k-th (1-indexed) c.
	Select(k, c uint64) (uint64, error)
	// InverseSelect returns S[i] and Rank(i, S[i]).
	InverseSelect(i uint64) (rank, sym uint64, err error)

	// QuantileFreq returns the q-th smallest symbol (0-indexed) in S[lb..rb]
	// and its frequency there.
	QuantileFreq(lb, rb, q uint64) (sym, freq uint64, err error)
	// LexCount counts around c in S[i...j).
	LexCount(i, j, c uint64) (LexCount, error)
	// LexSmallerCount returns Rank(i, c) and the number of values < c in S[0...i).
	LexSmallerCount(i, c uint64) (rank, smaller uint64, err error)
	// SymbolLTE returns the largest symbol present that is <= c.
	SymbolLTE(c uint64) (uint64, error)
	// SymbolGTE returns the smallest symbol present that is >= c.
	SymbolGTE(c uint64) (uint64, error)
	// RestrictedUniqueRangeValues returns the distinct values in [yi, yj]
	// occurring in S[xi..xj], ascending.
	RestrictedUniqueRangeValues(xi, xj, yi, yj uint64) ([]uint64, error)

	// Intersect returns the symbols occurring in at least threshold of the
	// ranges, each with its frequency summed over all ranges. A threshold
	// of 0 means all ranges.
	Intersect(ranges []Range, threshold int) ([]SymbolFreq, error)
	// IntervalSymbols returns the distinct symbols of S[i...j) with ranks.
	IntervalSymbols(i, j uint64) (IntervalSymbols, error)

	// Sizes breaks down the memory held by the structure.
	Sizes() SizeReport
	MarshalBinary() ([]byte, error)
	// String renders the decoded sequence, space separated.
	String() string
	// Close releases the level bit vectors. Later queries fail with
	// ErrInvalidState.
	Close() error
}

var (
	_ Wavelet = (*Tree)(nil)
	_ Wavelet = (*Matrix)(nil)
)
