package wavelet

import (
	"fmt"

	"github.com/AlexWan0/go-wavelet/coder"
)

// Op selects the comparison of RangedRankOp.
type Op int

const (
	// OpEqual is used in RangedRankOp()
	OpEqual Op = iota
	// OpLessThan is used in RangedRankOp()
	OpLessThan
	// OpMoreThan is used in RangedRankOp()
	OpMoreThan
	// OpMax is upper boundary for OpXXXX constants
	OpMax
)

// Matrix is a wavelet matrix: one bit vector of length n per bit plane,
// most significant plane first. After each plane the positions are stably
// regrouped zeros first.
type Matrix struct {
	core
	blen int
}

func newMatrix(c core) *Matrix {
	m := &Matrix{core: c, blen: c.alpha.MaxLevel()}
	m.lay = m
	return m
}

// Dim returns (max. of S[0...Len)) + 1, or 0 for an empty sequence.
func (m *Matrix) Dim() uint64 {
	if m.alpha.Sigma() == 0 {
		return 0
	}
	return m.alpha.Symbols[m.alpha.Sigma()-1] + 1
}

func (m *Matrix) getMSB(x uint64, depth int) bool {
	return (x>>uint(m.blen-depth-1))&1 == 1
}

// fits reports whether val can be stored in blen bits.
func (m *Matrix) fits(val uint64) bool {
	return val>>uint(m.blen) == 0
}

func (m *Matrix) root() cursor { return cursor{} }

func (m *Matrix) leaf(c cursor) (uint64, bool) {
	return c.prefix, c.level == m.blen
}

func (m *Matrix) child(c cursor, bit bool) (cursor, bool) {
	if c.level >= m.blen {
		return cursor{}, false
	}
	next := cursor{level: c.level + 1, prefix: c.prefix << 1}
	if bit {
		next.prefix |= 1
	}
	return next, true
}

func (m *Matrix) split(c cursor, r Range) (Range, Range) {
	rsd := m.levels[c.level]
	nzBpos := rsd.Rank(r.Bpos, false)
	nzEpos := rsd.Rank(r.Epos, false)
	z := rsd.ZeroNum()
	return Range{nzBpos, nzEpos}, Range{z + r.Bpos - nzBpos, z + r.Epos - nzEpos}
}

func (m *Matrix) bounds(c cursor) (uint64, uint64) {
	rem := uint(m.blen - c.level)
	lo := c.prefix << rem
	return lo, lo | ^uint64(0)>>(64-rem)
}

func (m *Matrix) rankOf(i uint64, sym int) uint64 {
	r, _ := m.rangedRankOp(Range{0, i}, m.alpha.Symbols[sym], OpEqual)
	return r
}

// selectOf finds the block of the symbol on the last plane and walks the
// k-th position of the block back up with select.
func (m *Matrix) selectOf(k uint64, sym int) (uint64, error) {
	val := m.alpha.Symbols[sym]
	r := m.rangedRankIgnoreLSBsHelper(Range{0, 0}, val, 0)
	return m.rangedSelectIgnoreLSBsHelper(r.Bpos+k-1, val, 0)
}

// inverseSelect returns S[pos] and Rank(pos, S[pos]) in one descent.
func (m *Matrix) inverseSelect(pos uint64) (uint64, uint64) {
	val := uint64(0)
	bpos := uint64(0)
	epos := pos
	for depth := 0; depth < m.blen; depth++ {
		rsd := m.levels[depth]
		bit := rsd.Bit(epos)
		bpos = rsd.Rank(bpos, bit)
		epos = rsd.Rank(epos, bit)
		val <<= 1
		if bit {
			bpos += rsd.ZeroNum()
			epos += rsd.ZeroNum()
			val |= 1
		}
	}
	return epos - bpos, val
}

// RankLessThan returns the number of c (< val) in S[0...pos)
func (m *Matrix) RankLessThan(pos, val uint64) (uint64, error) {
	return m.RangedRankOp(Range{0, pos}, val, OpLessThan)
}

// RankMoreThan returns the number of c (> val) in S[0...pos)
func (m *Matrix) RankMoreThan(pos, val uint64) (uint64, error) {
	return m.RangedRankOp(Range{0, pos}, val, OpMoreThan)
}

// RangedRankOp returns the number of c that satisfies 'c op val'
// in S[r.Bpos, r.Epos).
func (m *Matrix) RangedRankOp(r Range, val uint64, op Op) (uint64, error) {
	if op < OpEqual || op >= OpMax {
		return 0, fmt.Errorf("%w: unknown op %d", ErrInvalidQuery, op)
	}
	if err := m.checkRange(r); err != nil {
		return 0, err
	}
	return m.rangedRankOp(r, val, op)
}

func (m *Matrix) rangedRankOp(r Range, val uint64, op Op) (uint64, error) {
	if !m.fits(val) {
		// val is above every stored value
		switch op {
		case OpLessThan:
			return r.Len(), nil
		default:
			return 0, nil
		}
	}
	rankLessThan := uint64(0)
	rankMoreThan := uint64(0)
	for depth := 0; depth < m.blen; depth++ {
		bit := m.getMSB(val, depth)
		rsd := m.levels[depth]
		if bit {
			if op == OpLessThan {
				rankLessThan += rsd.Rank(r.Epos, false) - rsd.Rank(r.Bpos, false)
			}
			r.Bpos = rsd.ZeroNum() + rsd.Rank(r.Bpos, bit)
			r.Epos = rsd.ZeroNum() + rsd.Rank(r.Epos, bit)
		} else {
			if op == OpMoreThan {
				rankMoreThan += rsd.Rank(r.Epos, true) - rsd.Rank(r.Bpos, true)
			}
			r.Bpos = rsd.Rank(r.Bpos, bit)
			r.Epos = rsd.Rank(r.Epos, bit)
		}
	}
	switch op {
	case OpEqual:
		return r.Epos - r.Bpos, nil
	case OpLessThan:
		return rankLessThan, nil
	default:
		return rankMoreThan, nil
	}
}

// CountRange searches S[r.Bpos, r.Epos) and returns the number of values
// that fall within [vr.Bpos, vr.Epos).
func (m *Matrix) CountRange(r, vr Range) (uint64, error) {
	if err := m.checkRange(r); err != nil {
		return 0, err
	}
	if vr.Empty() {
		return 0, nil
	}
	end, _ := m.rangedRankOp(r, vr.Epos, OpLessThan)
	beg, _ := m.rangedRankOp(r, vr.Bpos, OpLessThan)
	return end - beg, nil
}

func (m *Matrix) rangedRankIgnoreLSBsHelper(r Range, val uint64, ignoreBits int) Range {
	for depth := 0; depth+ignoreBits < m.blen; depth++ {
		bit := m.getMSB(val, depth)
		rsd := m.levels[depth]
		if bit {
			r.Bpos = rsd.ZeroNum() + rsd.Rank(r.Bpos, bit)
			r.Epos = rsd.ZeroNum() + rsd.Rank(r.Epos, bit)
		} else {
			r.Bpos = rsd.Rank(r.Bpos, bit)
			r.Epos = rsd.Rank(r.Epos, bit)
		}
	}
	return r
}

// matchesIgnoringLSBs reports whether some stored value can share the bits
// of val above ignoreBits.
func (m *Matrix) matchesIgnoringLSBs(val uint64, ignoreBits int) bool {
	return val>>uint(max(ignoreBits, m.blen)) == 0
}

// RangedRankIgnoreLSBs searches S[r.Bpos, r.Epos) and
// returns the number of c that matches the val.
//
// If ignoreBits > 0, ignoreBits-bit portion from LSB are not considered
// for match.
// This behavior is useful for IP address prefix search such as 192.168.10.0/24
// (ignoreBits in this case, is 8).
func (m *Matrix) RangedRankIgnoreLSBs(r Range, val uint64, ignoreBits int) (uint64, error) {
	if err := m.checkRange(r); err != nil {
		return 0, err
	}
	if ignoreBits < 0 {
		return 0, fmt.Errorf("%w: negative ignoreBits %d", ErrInvalidQuery, ignoreBits)
	}
	if !m.matchesIgnoringLSBs(val, ignoreBits) {
		return 0, nil
	}
	res := m.rangedRankIgnoreLSBsHelper(r, val, ignoreBits)
	return res.Len(), nil
}

func (m *Matrix) rangedSelectIgnoreLSBsHelper(pos, val uint64, ignoreBits int) (uint64, error) {
	var err error
	for depth := m.blen - 1 - ignoreBits; depth >= 0; depth-- {
		rsd := m.levels[depth]
		if m.getMSB(val, depth) {
			pos, err = rsd.Select(pos-rsd.ZeroNum()+1, true)
		} else {
			pos, err = rsd.Select(pos+1, false)
		}
		if err != nil {
			return 0, fmt.Errorf("%w: plane %d: %v", ErrCorrupt, depth, err)
		}
	}
	return pos, nil
}

// RangedSelectIgnoreLSBs searches S[r.Bpos, r.Epos) and returns the
// position of the (rank+1)-th c that matches val, ignoring ignoreBits low
// bits as in RangedRankIgnoreLSBs. It fails with ErrNotFound when fewer
// than rank+1 values match.
func (m *Matrix) RangedSelectIgnoreLSBs(r Range, rank, val uint64, ignoreBits int) (uint64, error) {
	if err := m.checkRange(r); err != nil {
		return 0, err
	}
	if ignoreBits < 0 {
		return 0, fmt.Errorf("%w: negative ignoreBits %d", ErrInvalidQuery, ignoreBits)
	}
	if m.matchesIgnoringLSBs(val, ignoreBits) {
		res := m.rangedRankIgnoreLSBsHelper(r, val, ignoreBits)
		if pos := res.Bpos + rank; pos < res.Epos {
			return m.rangedSelectIgnoreLSBsHelper(pos, val, ignoreBits)
		}
	}
	return 0, fmt.Errorf("%w: occurrence %d of %d in [%d, %d)", ErrNotFound, rank+1, val, r.Bpos, r.Epos)
}

// RangedSelect returns the position of the (rank+1)-th val in S[r.Bpos, r.Epos).
func (m *Matrix) RangedSelect(r Range, rank, val uint64) (uint64, error) {
	return m.RangedSelectIgnoreLSBs(r, rank, val, 0)
}

// LookupAndRank returns S[pos] and Rank(pos, S[pos]).
func (m *Matrix) LookupAndRank(pos uint64) (uint64, uint64, error) {
	rank, val, err := m.InverseSelect(pos)
	return val, rank, err
}

// Scheme returns the coding scheme, always bit-plane.
func (m *Matrix) Scheme() coder.Scheme { return coder.SchemeBitPlane }
