package wavelet

import "fmt"

func (c *core) checkRange(r Range) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if r.Bpos > r.Epos || r.Epos > c.n {
		return fmt.Errorf("%w: range [%d, %d) on length %d", ErrInvalidQuery, r.Bpos, r.Epos, c.n)
	}
	return nil
}

// Intersect returns the symbols occurring in at least threshold of the
// ranges with their frequencies summed over all ranges. threshold 0 means
// len(ranges). Symbols are ascending on lex-ordered structures and in code
// order otherwise.
func (c *core) Intersect(ranges []Range, threshold int) ([]SymbolFreq, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if threshold < 0 || threshold > len(ranges) {
		return nil, fmt.Errorf("%w: threshold %d with %d ranges", ErrInvalidQuery, threshold, len(ranges))
	}
	for _, r := range ranges {
		if err := c.checkRange(r); err != nil {
			return nil, err
		}
	}
	if threshold == 0 {
		threshold = len(ranges)
	}
	nonEmpty := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		if !r.Empty() {
			nonEmpty = append(nonEmpty, r)
		}
	}
	if threshold == 0 || len(nonEmpty) < threshold {
		return nil, nil
	}
	var out []SymbolFreq
	c.intersectHelper(c.lay.root(), nonEmpty, threshold, &out)
	return out, nil
}

func (c *core) intersectHelper(cur cursor, ranges []Range, k int, out *[]SymbolFreq) {
	if s, ok := c.lay.leaf(cur); ok {
		freq := uint64(0)
		for _, r := range ranges {
			freq += r.Len()
		}
		*out = append(*out, SymbolFreq{Symbol: s, Freq: freq})
		return
	}
	zeroRanges := make([]Range, 0, len(ranges))
	oneRanges := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		r0, r1 := c.lay.split(cur, r)
		if !r0.Empty() {
			zeroRanges = append(zeroRanges, r0)
		}
		if !r1.Empty() {
			oneRanges = append(oneRanges, r1)
		}
	}
	if len(zeroRanges) >= k {
		c0, _ := c.lay.child(cur, false)
		c.intersectHelper(c0, zeroRanges, k, out)
	}
	if len(oneRanges) >= k {
		c1, _ := c.lay.child(cur, true)
		c.intersectHelper(c1, oneRanges, k, out)
	}
}

// IntervalSymbols returns every distinct symbol of S[i...j) with its rank
// at i and at j, in code order.
func (c *core) IntervalSymbols(i, j uint64) (IntervalSymbols, error) {
	if err := c.checkOpen(); err != nil {
		return IntervalSymbols{}, err
	}
	if i > j || j > c.n {
		return IntervalSymbols{}, fmt.Errorf("%w: interval [%d, %d) on length %d", ErrInvalidQuery, i, j, c.n)
	}
	var res IntervalSymbols
	var visit func(cur cursor, a, b Range)
	visit = func(cur cursor, a, b Range) {
		if s, ok := c.lay.leaf(cur); ok {
			res.Symbols = append(res.Symbols, s)
			res.RankI = append(res.RankI, a.Len())
			res.RankJ = append(res.RankJ, a.Len()+b.Len())
			return
		}
		a0, a1 := c.lay.split(cur, a)
		b0, b1 := c.lay.split(cur, b)
		if !b0.Empty() {
			c0, _ := c.lay.child(cur, false)
			visit(c0, a0, b0)
		}
		if !b1.Empty() {
			c1, _ := c.lay.child(cur, true)
			visit(c1, a1, b1)
		}
	}
	if i < j {
		visit(c.lay.root(), Range{0, i}, Range{i, j})
	}
	res.K = len(res.Symbols)
	return res, nil
}
