package bitvector

import (
	"fmt"
	"os"
	"path/filepath"

	rsdicmmap "github.com/AlexWan0/rsdic-mmap"
	"github.com/bits-and-blooms/bitset"

	"github.com/AlexWan0/go-wavelet/errs"
)

// mmapVector is an rsdic dictionary whose blocks live in files under path.
type mmapVector struct {
	rs   *rsdicmmap.RSDic
	path string
}

func newMmap(o Options, name string, raw *bitset.BitSet) (BitVector, error) {
	if o.Dir == "" {
		return nil, fmt.Errorf("%w: %s bit vector needs a directory", errs.ErrConstruction, KindMmap)
	}
	if err := os.MkdirAll(o.Dir, 0o777); err != nil {
		return nil, err
	}
	path := filepath.Join(o.Dir, name)
	rs, err := rsdicmmap.New(path)
	if err != nil {
		return nil, err
	}
	if err := rs.LoadWriter(); err != nil {
		return nil, err
	}
	for i := uint(0); i < raw.Len(); i++ {
		rs.PushBack(raw.Test(i))
	}
	if err := rs.CloseWriter(); err != nil {
		return nil, err
	}
	if err := rs.LoadReader(); err != nil {
		return nil, err
	}
	return &mmapVector{rs: rs, path: path}, nil
}

func (v *mmapVector) Num() uint64     { return v.rs.Num() }
func (v *mmapVector) OneNum() uint64  { return v.rs.OneNum() }
func (v *mmapVector) ZeroNum() uint64 { return v.rs.ZeroNum() }

func (v *mmapVector) Bit(pos uint64) bool {
	return v.rs.Bit(pos)
}

func (v *mmapVector) Rank(pos uint64, bit bool) uint64 {
	return v.rs.Rank(pos, bit)
}

func (v *mmapVector) Select(k uint64, bit bool) (uint64, error) {
	if err := checkSelect(v, k, bit); err != nil {
		return 0, err
	}
	return v.rs.Select(k-1, bit), nil
}

// AllocSize reports the packed size of the bits; the directories are on disk.
func (v *mmapVector) AllocSize() int {
	return int((v.rs.Num() + 7) / 8)
}
