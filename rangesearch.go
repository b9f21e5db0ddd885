package wavelet

import "fmt"

// RangeSearch2D counts the points (i, S[i]) with lb <= i <= rb and
// vlb <= S[i] <= vrb. When report is set the points are returned ordered by
// value, then position.
func (m *Matrix) RangeSearch2D(lb, rb, vlb, vrb uint64, report bool) (uint64, []Point, error) {
	if err := m.checkOpen(); err != nil {
		return 0, nil, err
	}
	if lb > rb || vlb > vrb || rb >= m.n {
		return 0, nil, fmt.Errorf("%w: positions [%d, %d] values [%d, %d] on length %d", ErrInvalidQuery, lb, rb, vlb, vrb, m.n)
	}
	var (
		count  uint64
		points []Point
		err    error
	)
	var visit func(cur cursor, r Range)
	visit = func(cur cursor, r Range) {
		if r.Empty() || err != nil {
			return
		}
		lo, hi := m.bounds(cur)
		if hi < vlb || lo > vrb {
			return
		}
		if !report && vlb <= lo && hi <= vrb {
			count += r.Len()
			return
		}
		if cur.level == m.blen {
			count += r.Len()
			for p := r.Bpos; p < r.Epos; p++ {
				var pos uint64
				if pos, err = m.rangedSelectIgnoreLSBsHelper(p, cur.prefix, 0); err != nil {
					return
				}
				points = append(points, Point{Pos: pos, Value: cur.prefix})
			}
			return
		}
		r0, r1 := m.split(cur, r)
		c0, _ := m.child(cur, false)
		c1, _ := m.child(cur, true)
		visit(c0, r0)
		visit(c1, r1)
	}
	visit(m.root(), Range{lb, rb + 1})
	if err != nil {
		return 0, nil, err
	}
	return count, points, nil
}
