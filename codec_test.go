package wavelet

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash/v2"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/AlexWan0/go-wavelet/bitvector"
	"github.com/AlexWan0/go-wavelet/compress"
	"github.com/AlexWan0/go-wavelet/store"
)

func decodeAll(w Wavelet) []uint64 {
	seq := make([]uint64, w.Len())
	for i := range seq {
		v, err := w.Access(uint64(i))
		So(err, ShouldBeNil)
		seq[i] = v
	}
	return seq
}

func TestMarshalRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	orig := skewedSeq(rng, 1500, 10)
	for _, kind := range Kinds() {
		for _, ct := range compress.Types() {
			Convey(fmt.Sprintf("Given %v compressed with %v", kind, ct), t, func() {
				w := mustBuild(t, kind, orig, WithCompression(ct))
				data, err := w.MarshalBinary()
				So(err, ShouldBeNil)

				Convey("decoding restores the same sequence", func() {
					back, err := Unmarshal(data)
					So(err, ShouldBeNil)
					So(back.Kind(), ShouldEqual, kind)
					So(back.MaxLevel(), ShouldEqual, w.MaxLevel())
					So(decodeAll(back), ShouldResemble, orig)

					again, err := back.MarshalBinary()
					So(err, ShouldBeNil)
					So(again, ShouldResemble, data)
				})
				Convey("the base bit vector can be changed on decode", func() {
					for _, base := range bitvector.Kinds() {
						opts := append(baseOptions(t, base), WithCompression(compress.None))
						back, err := Unmarshal(data, opts...)
						So(err, ShouldBeNil)
						So(back.String(), ShouldEqual, w.String())
					}
				})
			})
		}
	}
}

func TestUnmarshalKeepsImageSettings(t *testing.T) {
	Convey("A decoded structure keeps the base and compression of its image", t, func() {
		w := mustBuild(t, KindTreeBalanced, []uint64{4, 8, 15, 16, 23, 42},
			WithBitVector(bitvector.KindRoaring), WithCompression(compress.Zstd))
		data, err := w.MarshalBinary()
		So(err, ShouldBeNil)
		back, err := Unmarshal(data)
		So(err, ShouldBeNil)
		tr := back.(*Tree)
		So(tr.cfg.base, ShouldEqual, bitvector.KindRoaring)
		So(tr.cfg.compression, ShouldEqual, compress.Zstd)

		back, err = Unmarshal(data, WithBitVector(bitvector.KindPlain))
		So(err, ShouldBeNil)
		So(back.(*Tree).cfg.base, ShouldEqual, bitvector.KindPlain)
	})
}

func TestUnmarshalCorrupt(t *testing.T) {
	Convey("Given a valid image", t, func() {
		w := mustBuild(t, KindTreeInt, []uint64{3, 1, 2, 3, 1, 3})
		data, err := w.MarshalBinary()
		So(err, ShouldBeNil)
		var img image
		So(decodeMsgpack(data, &img), ShouldBeNil)

		reencode := func(mutate func(*image)) []byte {
			cp := img
			mutate(&cp)
			out, err := encodeMsgpack(&cp)
			So(err, ShouldBeNil)
			return out
		}
		shouldBeCorrupt := func(data []byte) {
			_, err := Unmarshal(data)
			So(errors.Is(err, ErrCorrupt), ShouldBeTrue)
		}

		Convey("garbage is rejected", func() {
			shouldBeCorrupt([]byte("not an image"))
			shouldBeCorrupt(nil)
			shouldBeCorrupt(data[:len(data)/2])
		})
		Convey("a bad magic is rejected", func() {
			shouldBeCorrupt(reencode(func(i *image) { i.Magic = "NOTMAGIC" }))
		})
		Convey("an unknown version is rejected", func() {
			shouldBeCorrupt(reencode(func(i *image) { i.Version = 2 }))
		})
		Convey("an unknown kind is rejected", func() {
			shouldBeCorrupt(reencode(func(i *image) { i.Kind = 42 }))
		})
		Convey("a kind not matching the payload scheme is rejected", func() {
			shouldBeCorrupt(reencode(func(i *image) { i.Kind = KindTreeHuffman }))
		})
		Convey("a flipped checksum is rejected", func() {
			shouldBeCorrupt(reencode(func(i *image) { i.Checksum ^= 1 }))
		})
		Convey("an unknown base is rejected", func() {
			shouldBeCorrupt(reencode(func(i *image) { i.Base = 77 }))
		})
		Convey("an unknown compression is rejected", func() {
			shouldBeCorrupt(reencode(func(i *image) { i.Compression = 9 }))
		})
		Convey("a payload that disagrees with itself is rejected", func() {
			var p payload
			So(decodeMsgpack(img.Payload, &p), ShouldBeNil)
			withPayload := func(mutate func(*payload)) []byte {
				cp := p
				cp.Freqs = append([]uint64(nil), p.Freqs...)
				cp.Levels = append([][]byte(nil), p.Levels...)
				mutate(&cp)
				raw, err := encodeMsgpack(&cp)
				So(err, ShouldBeNil)
				return reencode(func(i *image) {
					i.Payload = raw
					i.Checksum = xxhash.Sum64(raw)
				})
			}
			shouldBeCorrupt(withPayload(func(p *payload) { p.N++ }))
			shouldBeCorrupt(withPayload(func(p *payload) { p.Levels = p.Levels[:1] }))
			shouldBeCorrupt(withPayload(func(p *payload) { p.Freqs[0], p.Freqs[1] = p.Freqs[1], p.Freqs[0] }))
			shouldBeCorrupt(withPayload(func(p *payload) { p.Levels[1] = p.Levels[0] }))
		})
	})
}

func TestPersistence(t *testing.T) {
	ctx := context.Background()
	seq := []uint64{9, 9, 1, 4, 4, 4, 0, 2}
	Convey("Given a structure", t, func() {
		w := mustBuild(t, KindTreeHuTucker, seq, WithCompression(compress.S2))

		Convey("it round trips through a memory store", func() {
			st := store.NewMemory()
			So(Save(ctx, st, "indexes/a.wt", w), ShouldBeNil)
			back, err := Load(ctx, st, "indexes/a.wt")
			So(err, ShouldBeNil)
			So(decodeAll(back), ShouldResemble, seq)

			_, err = Load(ctx, st, "indexes/missing.wt")
			So(errors.Is(err, store.ErrNotFound), ShouldBeTrue)
		})
		Convey("it round trips through a local store", func() {
			st := store.NewLocal(t.TempDir())
			So(Save(ctx, st, "a.wt", w), ShouldBeNil)
			names, err := st.List(ctx, "")
			So(err, ShouldBeNil)
			So(names, ShouldResemble, []string{"a.wt"})
			back, err := Load(ctx, st, "a.wt", WithBitVector(bitvector.KindPlain))
			So(err, ShouldBeNil)
			So(back.String(), ShouldEqual, w.String())
		})
		Convey("it round trips through a file", func() {
			path := filepath.Join(t.TempDir(), "seq.wt")
			So(WriteFile(path, w), ShouldBeNil)
			back, err := FromBinaryFile(path)
			So(err, ShouldBeNil)
			So(decodeAll(back), ShouldResemble, seq)

			entries, err := os.ReadDir(filepath.Dir(path))
			So(err, ShouldBeNil)
			So(len(entries), ShouldEqual, 1)

			_, err = FromBinaryFile(path + ".missing")
			So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
		})
	})
}
