package coder

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexWan0/go-wavelet/errs"
)

var allSchemes = []Scheme{SchemeBitPlane, SchemeHuffman, SchemeHuTucker, SchemeBalanced}

func requirePrefixFree(t *testing.T, a *Alphabet) {
	t.Helper()
	for i, ci := range a.Codes {
		for j, cj := range a.Codes {
			if i == j {
				continue
			}
			si, sj := ci.String(), cj.String()
			require.False(t, strings.HasPrefix(sj, si) && ci.Len > 0, "%s is a prefix of %s", si, sj)
		}
	}
}

func cost(a *Alphabet) uint64 {
	total := uint64(0)
	for i, c := range a.Codes {
		total += a.Freqs[i] * uint64(c.Len)
	}
	return total
}

// optimalAlphabeticCost is the textbook O(k^3) dynamic program.
func optimalAlphabeticCost(w []uint64) uint64 {
	k := len(w)
	prefix := make([]uint64, k+1)
	for i, x := range w {
		prefix[i+1] = prefix[i] + x
	}
	dp := make([][]uint64, k+1)
	for i := range dp {
		dp[i] = make([]uint64, k+1)
	}
	for size := 2; size <= k; size++ {
		for i := 0; i+size <= k; i++ {
			j := i + size
			best := ^uint64(0)
			for m := i + 1; m < j; m++ {
				best = min(best, dp[i][m]+dp[m][j])
			}
			dp[i][j] = best + prefix[j] - prefix[i]
		}
	}
	return dp[0][k]
}

func TestSmallAlphabet(t *testing.T) {
	seq := []uint64{3, 1, 2, 3, 1, 3}
	for _, s := range allSchemes {
		t.Run(s.String(), func(t *testing.T) {
			a, err := Build(s, seq)
			require.NoError(t, err)
			require.Equal(t, []uint64{1, 2, 3}, a.Symbols)
			require.Equal(t, []uint64{2, 1, 3}, a.Freqs)
			require.Equal(t, 3, a.Sigma())
			require.Equal(t, s != SchemeHuffman, a.LexOrdered())
			requirePrefixFree(t, a)
			for i, c := range a.Symbols {
				idx, ok := a.Index(c)
				require.True(t, ok)
				require.Equal(t, i, idx)
				code, ok := a.CodeOf(c)
				require.True(t, ok)
				require.Equal(t, a.Codes[i], code)
			}
			_, ok := a.Index(0)
			require.False(t, ok)
			_, ok = a.CodeOf(4)
			require.False(t, ok)
		})
	}
}

func TestBitPlaneWidth(t *testing.T) {
	a, err := Build(SchemeBitPlane, []uint64{3, 1, 2, 3, 1, 3})
	require.NoError(t, err)
	require.Equal(t, 2, a.MaxLevel())
	for i, c := range a.Symbols {
		require.Equal(t, Code{Bits: c, Len: 2}, a.Codes[i])
	}

	a, err = Build(SchemeBitPlane, []uint64{0, 0})
	require.NoError(t, err)
	require.Equal(t, 1, a.MaxLevel())

	a, err = Build(SchemeBitPlane, nil)
	require.NoError(t, err)
	require.Equal(t, 0, a.MaxLevel())
	require.Equal(t, 0, a.Sigma())
}

func TestHuffmanCost(t *testing.T) {
	a, err := FromFrequencies(SchemeHuffman, []uint64{10, 20, 30, 40}, []uint64{5, 2, 1, 1})
	require.NoError(t, err)
	require.Equal(t, uint64(15), cost(a))
	require.Equal(t, uint8(1), a.Codes[0].Len)
	requirePrefixFree(t, a)
}

func TestHuffmanDeterministicTies(t *testing.T) {
	symbols := []uint64{1, 2, 3, 4, 5, 6, 7, 8}
	freqs := []uint64{1, 1, 1, 1, 1, 1, 1, 1}
	a, err := FromFrequencies(SchemeHuffman, symbols, freqs)
	require.NoError(t, err)
	b, err := FromFrequencies(SchemeHuffman, symbols, freqs)
	require.NoError(t, err)
	require.Equal(t, a.Codes, b.Codes)
	for _, c := range a.Codes {
		require.Equal(t, uint8(3), c.Len)
	}
}

func TestHuTuckerOptimalAndAlphabetic(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for round := 0; round < 200; round++ {
		k := 1 + rng.Intn(12)
		symbols := make([]uint64, k)
		freqs := make([]uint64, k)
		for i := range symbols {
			symbols[i] = uint64(i*3 + 1)
			freqs[i] = 1 + uint64(rng.Intn(50))
		}
		a, err := FromFrequencies(SchemeHuTucker, symbols, freqs)
		require.NoError(t, err)
		requirePrefixFree(t, a)
		for i := 1; i < k; i++ {
			assert.Less(t, a.Codes[i-1].String(), a.Codes[i].String(), "codes must ascend")
		}
		assert.Equal(t, optimalAlphabeticCost(freqs), cost(a), "freqs %v", freqs)
	}
}

func TestBalancedShape(t *testing.T) {
	for k := 1; k <= 40; k++ {
		symbols := make([]uint64, k)
		freqs := make([]uint64, k)
		for i := range symbols {
			symbols[i] = uint64(i)
			freqs[i] = uint64(k - i)
		}
		a, err := FromFrequencies(SchemeBalanced, symbols, freqs)
		require.NoError(t, err)
		requirePrefixFree(t, a)
		ceil := 0
		for 1<<ceil < k {
			ceil++
		}
		for i, c := range a.Codes {
			assert.True(t, int(c.Len) == ceil || int(c.Len) == ceil-1, "k=%d depth=%d", k, c.Len)
			if i > 0 {
				assert.Less(t, a.Codes[i-1].String(), c.String())
			}
		}
	}
}

func TestConstructionErrors(t *testing.T) {
	for _, s := range []Scheme{SchemeHuffman, SchemeHuTucker, SchemeBalanced} {
		_, err := Build(s, nil)
		require.ErrorIs(t, err, errs.ErrConstruction, s.String())
	}
	_, err := FromFrequencies(SchemeHuffman, []uint64{1, 2}, []uint64{1})
	require.ErrorIs(t, err, errs.ErrConstruction)
	_, err = FromFrequencies(SchemeHuffman, []uint64{2, 1}, []uint64{1, 1})
	require.ErrorIs(t, err, errs.ErrConstruction)
	_, err = FromFrequencies(SchemeHuffman, []uint64{1, 2}, []uint64{1, 0})
	require.ErrorIs(t, err, errs.ErrConstruction)
	_, err = FromFrequencies(Scheme(0), []uint64{1}, []uint64{1})
	require.ErrorIs(t, err, errs.ErrConstruction)
}

func TestSingleSymbol(t *testing.T) {
	for _, s := range allSchemes {
		a, err := Build(s, []uint64{7, 7, 7})
		require.NoError(t, err)
		if s == SchemeBitPlane {
			require.Equal(t, 3, a.MaxLevel())
			continue
		}
		require.Equal(t, 0, a.MaxLevel(), s.String())
		require.Equal(t, "ε", a.Codes[0].String())
	}
}
