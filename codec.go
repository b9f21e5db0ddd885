package wavelet

import (
	"fmt"
	"slices"

	"github.com/bits-and-blooms/bitset"
	"github.com/cespare/xxhash/v2"
	"github.com/ugorji/go/codec"

	"github.com/AlexWan0/go-wavelet/bitvector"
	"github.com/AlexWan0/go-wavelet/coder"
	"github.com/AlexWan0/go-wavelet/compress"
)

const (
	imageMagic   = "GOWAVELET"
	imageVersion = 1
)

// image is the outer envelope of a serialized structure. Checksum covers
// the uncompressed payload.
type image struct {
	Magic       string         `codec:"magic"`
	Version     int            `codec:"version"`
	Kind        Kind           `codec:"kind"`
	Base        bitvector.Kind `codec:"base"`
	Compression compress.Type  `codec:"compression"`
	Checksum    uint64         `codec:"checksum"`
	Payload     []byte         `codec:"payload"`
}

// payload holds what is needed to rebuild a structure. Codes are not
// stored: coding is a pure function of scheme, symbols and frequencies.
type payload struct {
	N       uint64       `codec:"n"`
	Scheme  coder.Scheme `codec:"scheme"`
	Symbols []uint64     `codec:"symbols"`
	Freqs   []uint64     `codec:"freqs"`
	Levels  [][]byte     `codec:"levels"`
}

func msgpackHandle() *codec.MsgpackHandle {
	var mh codec.MsgpackHandle
	mh.WriteExt = true
	return &mh
}

func encodeMsgpack(v any) ([]byte, error) {
	var out []byte
	err := codec.NewEncoderBytes(&out, msgpackHandle()).Encode(v)
	return out, err
}

func decodeMsgpack(data []byte, v any) error {
	return codec.NewDecoderBytes(data, msgpackHandle()).Decode(v)
}

// MarshalBinary encodes the structure into a self-describing image.
func (c *core) MarshalBinary() ([]byte, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	p := payload{
		N:       c.n,
		Scheme:  c.alpha.Scheme,
		Symbols: c.alpha.Symbols,
		Freqs:   c.alpha.Freqs,
		Levels:  make([][]byte, len(c.levels)),
	}
	for i, lv := range c.levels {
		data, err := bitvector.Raw(lv).MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", i, err)
		}
		p.Levels[i] = data
	}
	raw, err := encodeMsgpack(&p)
	if err != nil {
		return nil, err
	}
	cc, err := compress.GetCodec(c.cfg.compression)
	if err != nil {
		return nil, err
	}
	compressed, err := cc.Compress(raw)
	if err != nil {
		return nil, err
	}
	out, err := encodeMsgpack(&image{
		Magic:       imageMagic,
		Version:     imageVersion,
		Kind:        c.kind,
		Base:        c.cfg.base,
		Compression: c.cfg.compression,
		Checksum:    xxhash.Sum64(raw),
		Payload:     compressed,
	})
	if err != nil {
		return nil, err
	}
	c.cfg.logger.Debug("wavelet encoded",
		"kind", c.kind.String(),
		"compression", c.cfg.compression.String(),
		"payload_bytes", len(raw),
		"image_bytes", len(out))
	return out, nil
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorrupt, fmt.Sprintf(format, args...))
}

// Unmarshal decodes an image produced by MarshalBinary. The base bit vector
// and compression recorded in the image are kept unless overridden by opts.
func Unmarshal(data []byte, opts ...Option) (Wavelet, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	var img image
	if err := decodeMsgpack(data, &img); err != nil {
		return nil, corrupt("envelope: %v", err)
	}
	if img.Magic != imageMagic {
		return nil, corrupt("bad magic %q", img.Magic)
	}
	if img.Version != imageVersion {
		return nil, corrupt("unsupported version %d", img.Version)
	}
	if !img.Kind.valid() {
		return nil, corrupt("unknown kind %d", img.Kind)
	}
	cc, err := compress.GetCodec(img.Compression)
	if err != nil {
		return nil, corrupt("%v", err)
	}
	raw, err := cc.Decompress(img.Payload)
	if err != nil {
		return nil, corrupt("payload: %v", err)
	}
	if sum := xxhash.Sum64(raw); sum != img.Checksum {
		return nil, corrupt("checksum %x, want %x", sum, img.Checksum)
	}
	var p payload
	if err := decodeMsgpack(raw, &p); err != nil {
		return nil, corrupt("payload: %v", err)
	}
	if !cfg.baseSet {
		if !slices.Contains(bitvector.Kinds(), img.Base) {
			return nil, corrupt("unknown bit vector kind %d", img.Base)
		}
		cfg.base = img.Base
	}
	if !cfg.compSet {
		cfg.compression = img.Compression
	}

	w, err := decodePayload(img.Kind, &p, cfg)
	if err != nil {
		return nil, err
	}
	cfg.logger.Debug("wavelet decoded",
		"kind", img.Kind.String(),
		"n", p.N,
		"levels", len(p.Levels),
		"image_bytes", len(data))
	return w, nil
}

func decodePayload(kind Kind, p *payload, cfg *config) (Wavelet, error) {
	if p.Scheme != kind.Scheme() {
		return nil, corrupt("scheme %s does not match kind %s", p.Scheme, kind)
	}
	alpha, err := coder.FromFrequencies(p.Scheme, p.Symbols, p.Freqs)
	if err != nil {
		return nil, corrupt("alphabet: %v", err)
	}
	total := uint64(0)
	for _, f := range p.Freqs {
		total += f
	}
	if total != p.N {
		return nil, corrupt("frequencies sum to %d, length is %d", total, p.N)
	}
	if len(p.Levels) != alpha.MaxLevel() {
		return nil, corrupt("%d levels, want %d", len(p.Levels), alpha.MaxLevel())
	}
	raws := make([]*bitset.BitSet, len(p.Levels))
	for i, data := range p.Levels {
		raws[i] = &bitset.BitSet{}
		if err := raws[i].UnmarshalBinary(data); err != nil {
			return nil, corrupt("level %d: %v", i, err)
		}
	}
	c := core{kind: kind, n: p.N, alpha: alpha, cfg: cfg}
	if kind.Flat() {
		return decodeMatrix(raws, c)
	}
	return decodeTree(raws, c)
}

func decodeMatrix(raws []*bitset.BitSet, c core) (*Matrix, error) {
	blen := c.alpha.MaxLevel()
	for depth, raw := range raws {
		if uint64(raw.Len()) != c.n {
			return nil, corrupt("level %d has %d bits, want %d", depth, raw.Len(), c.n)
		}
		ones := uint64(0)
		for i, sym := range c.alpha.Symbols {
			if (sym>>uint(blen-depth-1))&1 == 1 {
				ones += c.alpha.Freqs[i]
			}
		}
		if uint64(raw.Count()) != ones {
			return nil, corrupt("level %d has %d ones, want %d", depth, raw.Count(), ones)
		}
	}
	levels, err := materialize(raws, c.cfg)
	if err != nil {
		return nil, err
	}
	c.levels = levels
	return newMatrix(c), nil
}

func decodeTree(raws []*bitset.BitSet, c core) (*Tree, error) {
	t := layoutTree(c.alpha)
	for l, want := range t.levelLens(c.alpha.MaxLevel()) {
		if uint64(raws[l].Len()) != want {
			return nil, corrupt("level %d has %d bits, want %d", l, raws[l].Len(), want)
		}
	}
	levels, err := materialize(raws, c.cfg)
	if err != nil {
		return nil, err
	}
	c.levels = levels
	t.core = c
	t.lay = t
	t.countOnes()
	// every node must send exactly the size of its right subtree right
	for i := range t.nodes {
		nd := &t.nodes[i]
		want := uint64(0)
		if id := nd.child[1]; isLeafID(id) {
			want = t.leafFreq[^id]
		} else if id >= 0 {
			want = t.nodes[id].size
		}
		if got := t.ones1(nd, nd.size); got != want {
			return nil, corrupt("node %d at level %d has %d ones, want %d", i, nd.level, got, want)
		}
	}
	return t, nil
}
