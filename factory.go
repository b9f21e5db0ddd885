package wavelet

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/AlexWan0/go-wavelet/bitvector"
)

// Variant is a wavelet kind over a base bit vector kind.
type Variant struct {
	Kind Kind
	Base bitvector.Kind
}

func (v Variant) String() string {
	return v.Kind.String() + "/" + v.Base.String()
}

// ParseVariant parses names like "wt_huff/rsdic". A missing base selects rsdic.
func ParseVariant(s string) (Variant, error) {
	kindName, baseName, found := strings.Cut(s, "/")
	kind, err := ParseKind(kindName)
	if err != nil {
		return Variant{}, err
	}
	v := Variant{Kind: kind, Base: bitvector.KindRSDic}
	if found {
		if v.Base, err = bitvector.ParseKind(baseName); err != nil {
			return Variant{}, err
		}
	}
	return v, nil
}

// Constructor builds a structure over a sequence. The base bit vector of
// the variant takes precedence over WithBitVector in opts.
type Constructor func(seq []uint64, opts ...Option) (Wavelet, error)

// Factory maps variants to constructors. It is filled once by NewFactory
// and read-only afterwards.
type Factory struct {
	ctors map[Variant]Constructor
}

// NewFactory returns a factory knowing every kind over every base.
func NewFactory() *Factory {
	f := &Factory{ctors: make(map[Variant]Constructor)}
	for _, kind := range Kinds() {
		for _, base := range bitvector.Kinds() {
			f.ctors[Variant{Kind: kind, Base: base}] = func(seq []uint64, opts ...Option) (Wavelet, error) {
				return Build(kind, seq, append(slices.Clone(opts), WithBitVector(base))...)
			}
		}
	}
	return f
}

// Variants returns the known variants, ordered by kind then base.
func (f *Factory) Variants() []Variant {
	vs := make([]Variant, 0, len(f.ctors))
	for v := range f.ctors {
		vs = append(vs, v)
	}
	slices.SortFunc(vs, func(a, b Variant) int {
		return cmp.Or(cmp.Compare(a.Kind, b.Kind), cmp.Compare(a.Base, b.Base))
	})
	return vs
}

// New builds a structure of variant v over seq.
func (f *Factory) New(v Variant, seq []uint64, opts ...Option) (Wavelet, error) {
	ctor, ok := f.ctors[v]
	if !ok {
		return nil, fmt.Errorf("%w: variant %s", ErrUnsupported, v)
	}
	return ctor(seq, opts...)
}
