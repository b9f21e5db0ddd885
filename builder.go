package wavelet

import (
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/exp/constraints"
	"golang.org/x/sync/errgroup"

	"github.com/AlexWan0/go-wavelet/bitvector"
	"github.com/AlexWan0/go-wavelet/coder"
)

// Builder collects a sequence with PushBack and builds a structure of its
// kind. A Builder may be reused; Build does not consume the values.
type Builder struct {
	kind Kind
	opts []Option
	vals []uint64
}

// NewBuilder returns a builder for structures of the given kind.
func NewBuilder(kind Kind, opts ...Option) *Builder {
	return &Builder{kind: kind, opts: opts}
}

// PushBack appends val to the sequence.
func (b *Builder) PushBack(val uint64) {
	b.vals = append(b.vals, val)
}

// Len returns the number of values pushed so far.
func (b *Builder) Len() int { return len(b.vals) }

// Build builds the structure over the values pushed so far.
func (b *Builder) Build() (Wavelet, error) {
	return Build(b.kind, b.vals, b.opts...)
}

// Build builds a structure of the given kind over seq.
func Build(kind Kind, seq []uint64, opts ...Option) (Wavelet, error) {
	if !kind.valid() {
		return nil, fmt.Errorf("%w: unknown wavelet kind %d", ErrConstruction, kind)
	}
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	alpha, err := coder.Build(kind.Scheme(), seq)
	if err != nil {
		return nil, err
	}
	c := core{kind: kind, n: uint64(len(seq)), alpha: alpha, cfg: cfg}
	var w Wavelet
	if kind.Flat() {
		w, err = buildMatrix(seq, c)
	} else {
		w, err = buildTree(seq, alpha, c)
	}
	if err != nil {
		return nil, err
	}
	cfg.logger.Debug("wavelet built",
		"kind", kind.String(),
		"n", len(seq),
		"sigma", alpha.Sigma(),
		"levels", alpha.MaxLevel(),
		"bitvector", cfg.base.String())
	return w, nil
}

// FromSlice builds a structure over a slice of any unsigned integer type.
func FromSlice[T constraints.Unsigned](kind Kind, vals []T, opts ...Option) (Wavelet, error) {
	seq := make([]uint64, len(vals))
	for i, v := range vals {
		seq[i] = uint64(v)
	}
	return Build(kind, seq, opts...)
}

// FromBytes builds a structure over little-endian symbols of width bytes
// each. width must be 1, 2, 4 or 8.
func FromBytes(kind Kind, data []byte, width int, opts ...Option) (Wavelet, error) {
	switch width {
	case 1, 2, 4, 8:
	default:
		return nil, fmt.Errorf("%w: symbol width %d, want 1, 2, 4 or 8", ErrConstruction, width)
	}
	if len(data)%width != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of width %d", ErrConstruction, len(data), width)
	}
	seq := make([]uint64, len(data)/width)
	for i := range seq {
		p := data[i*width:]
		switch width {
		case 1:
			seq[i] = uint64(p[0])
		case 2:
			seq[i] = uint64(binary.LittleEndian.Uint16(p))
		case 4:
			seq[i] = uint64(binary.LittleEndian.Uint32(p))
		case 8:
			seq[i] = binary.LittleEndian.Uint64(p)
		}
	}
	return Build(kind, seq, opts...)
}

// ParseString builds a structure over whitespace-separated decimal integers.
func ParseString(kind Kind, s string, opts ...Option) (Wavelet, error) {
	fields := strings.Fields(s)
	seq := make([]uint64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: token %d %q: %v", ErrConstruction, i, f, err)
		}
		seq[i] = v
	}
	return Build(kind, seq, opts...)
}

// FromBinaryFile reads a structure serialized by MarshalBinary or WriteFile.
func FromBinaryFile(path string, opts ...Option) (Wavelet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data, opts...)
}

func buildMatrix(seq []uint64, c core) (*Matrix, error) {
	n := uint64(len(seq))
	blen := c.alpha.MaxLevel()
	raws := make([]*bitset.BitSet, blen)
	zeros := seq
	ones := make([]uint64, 0)
	for depth := 0; depth < blen; depth++ {
		raw := bitset.New(uint(n))
		nextZeros := make([]uint64, 0, n)
		nextOnes := make([]uint64, 0, n)
		shift := uint(blen - depth - 1)
		pos := filter(zeros, shift, 0, raw, &nextZeros, &nextOnes)
		filter(ones, shift, pos, raw, &nextZeros, &nextOnes)
		zeros = nextZeros
		ones = nextOnes
		raws[depth] = raw
	}
	levels, err := materialize(raws, c.cfg)
	if err != nil {
		return nil, err
	}
	c.levels = levels
	return newMatrix(c), nil
}

func filter(vals []uint64, shift uint, pos uint, raw *bitset.BitSet, nextZeros *[]uint64, nextOnes *[]uint64) uint {
	for _, val := range vals {
		if (val>>shift)&1 == 1 {
			raw.Set(pos)
			*nextOnes = append(*nextOnes, val)
		} else {
			*nextZeros = append(*nextZeros, val)
		}
		pos++
	}
	return pos
}

// materialize turns staged level bits into bit vectors of the configured
// kind, several levels at a time.
func materialize(raws []*bitset.BitSet, cfg *config) ([]bitvector.BitVector, error) {
	bo, err := privateDir(cfg.bitvectorOptions())
	if err != nil {
		return nil, err
	}
	levels := make([]bitvector.BitVector, len(raws))
	var g errgroup.Group
	g.SetLimit(cfg.parallelism)
	for i, raw := range raws {
		g.Go(func() error {
			bv, err := bitvector.New(bo, fmt.Sprintf("level-%03d", i), raw)
			if err != nil {
				return fmt.Errorf("level %d: %w", i, err)
			}
			levels[i] = bv
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return levels, nil
}

// privateDir gives file-backed levels a fresh subdirectory of o.Dir, so
// structures sharing a directory never write to each other's files.
func privateDir(o bitvector.Options) (bitvector.Options, error) {
	if o.Kind != bitvector.KindMmap || o.Dir == "" {
		return o, nil
	}
	if err := os.MkdirAll(o.Dir, 0o777); err != nil {
		return o, fmt.Errorf("%w: %v", ErrConstruction, err)
	}
	dir, err := os.MkdirTemp(o.Dir, "wavelet-*")
	if err != nil {
		return o, fmt.Errorf("%w: %v", ErrConstruction, err)
	}
	o.Dir = dir
	return o, nil
}
