package wavelet

import "fmt"

// QuantileFreq returns the q-th smallest symbol (0-indexed) in S[lb..rb]
// and its frequency in that range.
func (c *core) QuantileFreq(lb, rb, q uint64) (sym, freq uint64, err error) {
	if err := c.requireLex("quantile_freq"); err != nil {
		return 0, 0, err
	}
	if rb < lb || rb >= c.n || q > rb-lb {
		return 0, 0, fmt.Errorf("%w: quantile %d of [%d, %d] on length %d", ErrInvalidQuery, q, lb, rb, c.n)
	}
	cur, r := c.lay.root(), Range{lb, rb + 1}
	for {
		if s, ok := c.lay.leaf(cur); ok {
			return s, r.Len(), nil
		}
		r0, r1 := c.lay.split(cur, r)
		if nz := r0.Len(); q < nz {
			cur, _ = c.lay.child(cur, false)
			r = r0
		} else {
			q -= nz
			cur, _ = c.lay.child(cur, true)
			r = r1
		}
	}
}

// LexCount returns Rank(i, sym) and the number of values smaller and
// greater than sym in S[i...j). sym need not occur in the sequence.
func (c *core) LexCount(i, j, sym uint64) (LexCount, error) {
	if err := c.requireLex("lex_count"); err != nil {
		return LexCount{}, err
	}
	if i >= j || j > c.n {
		return LexCount{}, fmt.Errorf("%w: lex_count on [%d, %d) of length %d", ErrInvalidQuery, i, j, c.n)
	}
	rank, smaller, greater := c.lexCount(Range{0, i}, Range{i, j}, sym)
	return LexCount{Rank: rank, Smaller: smaller, Greater: greater}, nil
}

// LexSmallerCount returns Rank(i, sym) and the number of values smaller
// than sym in S[0...i).
func (c *core) LexSmallerCount(i, sym uint64) (rank, smaller uint64, err error) {
	if err := c.requireLex("lex_smaller_count"); err != nil {
		return 0, 0, err
	}
	if i > c.n {
		return 0, 0, fmt.Errorf("%w: position %d > length %d", ErrIndexOutOfRange, i, c.n)
	}
	rank, smaller, _ = c.lexCount(Range{0, i}, Range{0, i}, sym)
	return rank, smaller, nil
}

// lexCount descends towards sym carrying the rank range a and the counted
// range b together. Values branching off to the left of the path are
// smaller than sym, values branching off to the right are greater.
func (c *core) lexCount(a, b Range, sym uint64) (rank, smaller, greater uint64) {
	cur := c.lay.root()
	for !a.Empty() || !b.Empty() {
		lo, hi := c.lay.bounds(cur)
		if sym < lo {
			return 0, smaller, greater + b.Len()
		}
		if sym > hi {
			return 0, smaller + b.Len(), greater
		}
		if _, ok := c.lay.leaf(cur); ok {
			return a.Len(), smaller, greater
		}
		a0, a1 := c.lay.split(cur, a)
		b0, b1 := c.lay.split(cur, b)
		if c1, ok := c.lay.child(cur, true); ok && sym >= c.lowerBound(c1) {
			smaller += b0.Len()
			cur, a, b = c1, a1, b1
		} else {
			greater += b1.Len()
			cur, _ = c.lay.child(cur, false)
			a, b = a0, b0
		}
	}
	return 0, smaller, greater
}

func (c *core) lowerBound(cur cursor) uint64 {
	lo, _ := c.lay.bounds(cur)
	return lo
}

// SymbolLTE returns the largest symbol present that is <= sym.
func (c *core) SymbolLTE(sym uint64) (uint64, error) {
	if err := c.requireLex("symbol_lte"); err != nil {
		return 0, err
	}
	if s, ok := c.lte(c.lay.root(), fullRange(c.n), sym); ok {
		return s, nil
	}
	return 0, fmt.Errorf("%w: no symbol <= %d", ErrNotFound, sym)
}

// SymbolGTE returns the smallest symbol present that is >= sym.
func (c *core) SymbolGTE(sym uint64) (uint64, error) {
	if err := c.requireLex("symbol_gte"); err != nil {
		return 0, err
	}
	if s, ok := c.gte(c.lay.root(), fullRange(c.n), sym); ok {
		return s, nil
	}
	return 0, fmt.Errorf("%w: no symbol >= %d", ErrNotFound, sym)
}

func (c *core) lte(cur cursor, r Range, v uint64) (uint64, bool) {
	if r.Empty() {
		return 0, false
	}
	if lo, _ := c.lay.bounds(cur); lo > v {
		return 0, false
	}
	if s, ok := c.lay.leaf(cur); ok {
		return s, true
	}
	r0, r1 := c.lay.split(cur, r)
	if c1, ok := c.lay.child(cur, true); ok {
		if s, ok := c.lte(c1, r1, v); ok {
			return s, true
		}
	}
	if c0, ok := c.lay.child(cur, false); ok {
		return c.lte(c0, r0, v)
	}
	return 0, false
}

func (c *core) gte(cur cursor, r Range, v uint64) (uint64, bool) {
	if r.Empty() {
		return 0, false
	}
	if _, hi := c.lay.bounds(cur); hi < v {
		return 0, false
	}
	if s, ok := c.lay.leaf(cur); ok {
		return s, true
	}
	r0, r1 := c.lay.split(cur, r)
	if c0, ok := c.lay.child(cur, false); ok {
		if s, ok := c.gte(c0, r0, v); ok {
			return s, true
		}
	}
	if c1, ok := c.lay.child(cur, true); ok {
		return c.gte(c1, r1, v)
	}
	return 0, false
}

// RestrictedUniqueRangeValues returns, ascending, every distinct value in
// [yi, yj] occurring in S[xi..xj].
func (c *core) RestrictedUniqueRangeValues(xi, xj, yi, yj uint64) ([]uint64, error) {
	if err := c.requireLex("restricted_unique_range_values"); err != nil {
		return nil, err
	}
	if xi > xj || xj >= c.n || yi > yj {
		return nil, fmt.Errorf("%w: positions [%d, %d] values [%d, %d] on length %d", ErrInvalidQuery, xi, xj, yi, yj, c.n)
	}
	var out []uint64
	var visit func(cur cursor, r Range)
	visit = func(cur cursor, r Range) {
		if r.Empty() {
			return
		}
		if lo, hi := c.lay.bounds(cur); hi < yi || lo > yj {
			return
		}
		if s, ok := c.lay.leaf(cur); ok {
			out = append(out, s)
			return
		}
		r0, r1 := c.lay.split(cur, r)
		if c0, ok := c.lay.child(cur, false); ok {
			visit(c0, r0)
		}
		if c1, ok := c.lay.child(cur, true); ok {
			visit(c1, r1)
		}
	}
	visit(c.lay.root(), Range{xi, xj + 1})
	return out, nil
}
