package wavelet

import (
	"math/rand"
	"slices"
	"sort"
	"testing"

	"github.com/AlexWan0/go-wavelet/bitvector"
)

func generateRange(num uint64) Range {
	bpos := uint64(rand.Intn(int(num)))
	epos := bpos + uint64(rand.Intn(int(num-bpos)))
	return Range{bpos, epos}
}

type uint64Slice []uint64

func (wt uint64Slice) Len() int {
	return len(wt)
}

func (wt uint64Slice) Swap(i, j int) {
	wt[i], wt[j] = wt[j], wt[i]
}

func (wt uint64Slice) Less(i, j int) bool {
	return wt[i] < wt[j]
}

func origIntersect(orig []uint64, ranges []Range, k int) []SymbolFreq {
	cand := make(map[uint64]int)
	freq := make(map[uint64]uint64)
	for _, ranze := range ranges {
		set := make(map[uint64]struct{})
		for i := ranze.Bpos; i < ranze.Epos; i++ {
			set[orig[i]] = struct{}{}
			freq[orig[i]]++
		}
		for v := range set {
			cand[v]++
		}
	}
	keys := make([]uint64, 0)
	for key, val := range cand {
		if val >= k {
			keys = append(keys, key)
		}
	}
	sort.Sort(uint64Slice(keys))
	ret := make([]SymbolFreq, len(keys))
	for i, key := range keys {
		ret[i] = SymbolFreq{Symbol: key, Freq: freq[key]}
	}
	return ret
}

func origRank(orig []uint64, i, c uint64) uint64 {
	n := uint64(0)
	for _, v := range orig[:i] {
		if v == c {
			n++
		}
	}
	return n
}

// origSelect returns the position of the k-th (1-indexed) c, or false.
func origSelect(orig []uint64, k, c uint64) (uint64, bool) {
	for i, v := range orig {
		if v == c {
			k--
			if k == 0 {
				return uint64(i), true
			}
		}
	}
	return 0, false
}

func origQuantile(orig []uint64, lb, rb, q uint64) (uint64, uint64) {
	vs := slices.Clone(orig[lb : rb+1])
	slices.Sort(vs)
	sym := vs[q]
	freq := uint64(0)
	for _, v := range vs {
		if v == sym {
			freq++
		}
	}
	return sym, freq
}

func origLexCount(orig []uint64, i, j, c uint64) LexCount {
	res := LexCount{Rank: origRank(orig, i, c)}
	for _, v := range orig[i:j] {
		switch {
		case v < c:
			res.Smaller++
		case v > c:
			res.Greater++
		}
	}
	return res
}

func origAlphabet(orig []uint64) []uint64 {
	alpha := slices.Clone(orig)
	slices.Sort(alpha)
	return slices.Compact(alpha)
}

func origLTE(orig []uint64, c uint64) (uint64, bool) {
	best, ok := uint64(0), false
	for _, v := range orig {
		if v <= c && (!ok || v > best) {
			best, ok = v, true
		}
	}
	return best, ok
}

func origGTE(orig []uint64, c uint64) (uint64, bool) {
	best, ok := uint64(0), false
	for _, v := range orig {
		if v >= c && (!ok || v < best) {
			best, ok = v, true
		}
	}
	return best, ok
}

func origRestricted(orig []uint64, xi, xj, yi, yj uint64) []uint64 {
	var out []uint64
	for _, v := range orig[xi : xj+1] {
		if yi <= v && v <= yj {
			out = append(out, v)
		}
	}
	if out == nil {
		return nil
	}
	return origAlphabet(out)
}

func origRangeSearch(orig []uint64, lb, rb, vlb, vrb uint64) []Point {
	var pts []Point
	for i := lb; i <= rb; i++ {
		if vlb <= orig[i] && orig[i] <= vrb {
			pts = append(pts, Point{Pos: i, Value: orig[i]})
		}
	}
	sort.SliceStable(pts, func(a, b int) bool { return pts[a].Value < pts[b].Value })
	return pts
}

func randomSeq(rng *rand.Rand, n int, dim uint64) []uint64 {
	seq := make([]uint64, n)
	for i := range seq {
		seq[i] = uint64(rng.Int63n(int64(dim)))
	}
	return seq
}

// skewedSeq draws from a geometric-like distribution so that Huffman and
// Hu-Tucker codes get uneven lengths.
func skewedSeq(rng *rand.Rand, n int, dim uint64) []uint64 {
	seq := make([]uint64, n)
	for i := range seq {
		v := uint64(0)
		for v+1 < dim && rng.Intn(3) > 0 {
			v++
		}
		seq[i] = v * 7
	}
	return seq
}

// baseOptions returns the options needed to build over base; file-backed
// vectors get a fresh directory.
func baseOptions(t testing.TB, base bitvector.Kind) []Option {
	opts := []Option{WithBitVector(base)}
	if base == bitvector.KindMmap {
		opts = append(opts, WithDir(t.TempDir()))
	}
	return opts
}

func mustBuild(t testing.TB, kind Kind, seq []uint64, opts ...Option) Wavelet {
	t.Helper()
	w, err := Build(kind, seq, opts...)
	if err != nil {
		t.Fatalf("build %s: %v", kind, err)
	}
	return w
}
