// Package coder assigns binary codes to the symbols of a sequence.
//
// A code is the root-to-leaf path of a symbol in a wavelet tree: bit ℓ of the
// code decides the child taken at level ℓ. Four schemes are provided:
//
//   - bit-plane: the binary representation of the symbol, fixed width
//   - Huffman: minimum expected code length, no order guarantee
//   - Hu-Tucker: minimum expected code length among order-preserving codes
//   - balanced: complete binary tree over the sorted alphabet
package coder

import (
	"fmt"
	"math/bits"
	"slices"
	"strings"

	"github.com/dgryski/go-boomphf"

	"github.com/AlexWan0/go-wavelet/errs"
)

// MaxCodeLen is the longest code a scheme may assign.
const MaxCodeLen = 64

// Scheme selects the coding strategy.
type Scheme uint8

const (
	SchemeBitPlane Scheme = iota + 1
	SchemeHuffman
	SchemeHuTucker
	SchemeBalanced
)

func (s Scheme) String() string {
	switch s {
	case SchemeBitPlane:
		return "bitplane"
	case SchemeHuffman:
		return "huffman"
	case SchemeHuTucker:
		return "hutucker"
	case SchemeBalanced:
		return "balanced"
	default:
		return "unknown"
	}
}

// LexOrdered reports whether codes of the scheme preserve symbol order.
func (s Scheme) LexOrdered() bool {
	return s != SchemeHuffman
}

// Code is a bit string of length Len stored in the low bits of Bits, MSB first.
type Code struct {
	Bits uint64
	Len  uint8
}

// Bit returns bit level of the code (level 0 is the first bit).
func (c Code) Bit(level int) bool {
	return (c.Bits>>(uint(c.Len)-1-uint(level)))&1 == 1
}

func (c Code) String() string {
	if c.Len == 0 {
		return "ε"
	}
	var sb strings.Builder
	for l := 0; l < int(c.Len); l++ {
		if c.Bit(l) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Alphabet is the effective alphabet of a sequence together with the code of
// every symbol. Symbols are ascending; Freqs and Codes are parallel to Symbols.
type Alphabet struct {
	Scheme  Scheme
	Symbols []uint64
	Freqs   []uint64
	Codes   []Code

	maxLevel int
	dir      *boomphf.H
	slot     []int32
}

// Build counts the symbols of seq and codes them with scheme.
func Build(scheme Scheme, seq []uint64) (*Alphabet, error) {
	counts := make(map[uint64]uint64)
	for _, c := range seq {
		counts[c]++
	}
	symbols := make([]uint64, 0, len(counts))
	for c := range counts {
		symbols = append(symbols, c)
	}
	slices.Sort(symbols)
	freqs := make([]uint64, len(symbols))
	for i, c := range symbols {
		freqs[i] = counts[c]
	}
	return FromFrequencies(scheme, symbols, freqs)
}

// FromFrequencies codes an alphabet given its ascending symbols and their
// frequencies. The result is a pure function of the arguments.
func FromFrequencies(scheme Scheme, symbols, freqs []uint64) (*Alphabet, error) {
	if len(symbols) != len(freqs) {
		return nil, fmt.Errorf("%w: %d symbols with %d frequencies", errs.ErrConstruction, len(symbols), len(freqs))
	}
	for i := range symbols {
		if i > 0 && symbols[i-1] >= symbols[i] {
			return nil, fmt.Errorf("%w: symbols not strictly ascending at %d", errs.ErrConstruction, i)
		}
		if freqs[i] == 0 {
			return nil, fmt.Errorf("%w: symbol %d has zero frequency", errs.ErrConstruction, symbols[i])
		}
	}
	if len(symbols) == 0 && scheme != SchemeBitPlane {
		return nil, fmt.Errorf("%w: %s coding needs a non-empty sequence", errs.ErrConstruction, scheme)
	}

	var (
		codes []Code
		err   error
	)
	switch scheme {
	case SchemeBitPlane:
		codes = bitPlaneCodes(symbols)
	case SchemeHuffman:
		codes, err = huffmanCodes(symbols, freqs)
	case SchemeHuTucker:
		var depths []int
		depths, err = huTuckerDepths(freqs)
		if err == nil {
			codes, err = alphabeticCodes(depths)
		}
	case SchemeBalanced:
		codes, err = alphabeticCodes(balancedDepths(len(symbols)))
	default:
		return nil, fmt.Errorf("%w: unknown coding scheme %d", errs.ErrConstruction, scheme)
	}
	if err != nil {
		return nil, err
	}

	a := &Alphabet{
		Scheme:  scheme,
		Symbols: symbols,
		Freqs:   freqs,
		Codes:   codes,
	}
	for _, c := range codes {
		a.maxLevel = max(a.maxLevel, int(c.Len))
	}
	a.buildDirectory()
	return a, nil
}

// buildDirectory indexes the symbols with a minimal perfect hash.
func (a *Alphabet) buildDirectory() {
	if len(a.Symbols) == 0 {
		return
	}
	keys := slices.Clone(a.Symbols)
	a.dir = boomphf.New(2.0, keys)
	a.slot = make([]int32, len(a.Symbols))
	for i, c := range a.Symbols {
		a.slot[a.dir.Query(c)-1] = int32(i)
	}
}

// Sigma returns the number of distinct symbols.
func (a *Alphabet) Sigma() int { return len(a.Symbols) }

// MaxLevel returns the longest code length.
func (a *Alphabet) MaxLevel() int { return a.maxLevel }

// LexOrdered reports whether code order equals symbol order.
func (a *Alphabet) LexOrdered() bool { return a.Scheme.LexOrdered() }

// Index returns the position of c in Symbols.
func (a *Alphabet) Index(c uint64) (int, bool) {
	if a.dir == nil {
		return 0, false
	}
	q := a.dir.Query(c)
	if q == 0 || q > uint64(len(a.slot)) {
		return 0, false
	}
	i := int(a.slot[q-1])
	if a.Symbols[i] != c {
		return 0, false
	}
	return i, true
}

// CodeOf returns the code of c.
func (a *Alphabet) CodeOf(c uint64) (Code, bool) {
	i, ok := a.Index(c)
	if !ok {
		return Code{}, false
	}
	return a.Codes[i], true
}

// AllocSize returns the bytes held by the alphabet.
func (a *Alphabet) AllocSize() int {
	size := len(a.Symbols)*8 + len(a.Freqs)*8 + len(a.Codes)*16 + len(a.slot)*4
	if a.dir != nil {
		size += len(a.Symbols) * 3 // boomphf bit vectors and rank samples, roughly
	}
	return size
}

// Width returns the number of bits of the binary representation of c, at least 1.
func Width(c uint64) int {
	return max(bits.Len64(c), 1)
}

func bitPlaneCodes(symbols []uint64) []Code {
	if len(symbols) == 0 {
		return nil
	}
	width := uint8(Width(symbols[len(symbols)-1]))
	codes := make([]Code, len(symbols))
	for i, c := range symbols {
		codes[i] = Code{Bits: c, Len: width}
	}
	return codes
}

// alphabeticCodes assigns order-preserving codes to leaves at the given depths,
// left to right. Each code starts where the previous code's interval ends.
func alphabeticCodes(depths []int) ([]Code, error) {
	codes := make([]Code, len(depths))
	next := uint64(0)
	prev := 0
	for i, d := range depths {
		if d > MaxCodeLen {
			return nil, fmt.Errorf("%w: code length %d exceeds %d", errs.ErrConstruction, d, MaxCodeLen)
		}
		if i > 0 {
			if d >= prev {
				next <<= uint(d - prev)
			} else {
				shift := uint(prev - d)
				if next&(1<<shift-1) != 0 {
					return nil, fmt.Errorf("%w: depth sequence is not alphabetic at %d", errs.ErrConstruction, i)
				}
				next >>= shift
			}
		}
		if d < MaxCodeLen && next >= 1<<uint(d) {
			return nil, fmt.Errorf("%w: depth sequence overflows at %d", errs.ErrConstruction, i)
		}
		codes[i] = Code{Bits: next, Len: uint8(d)}
		next++
		prev = d
	}
	return codes, nil
}

// balancedDepths returns the leaf depths of the complete binary tree over k
// sorted leaves where every left half holds ⌈k/2⌉ leaves.
func balancedDepths(k int) []int {
	depths := make([]int, k)
	var split func(lo, hi, d int)
	split = func(lo, hi, d int) {
		if hi-lo == 1 {
			depths[lo] = d
			return
		}
		mid := lo + (hi-lo+1)/2
		split(lo, mid, d+1)
		split(mid, hi, d+1)
	}
	if k > 0 {
		split(0, k, 0)
	}
	return depths
}
