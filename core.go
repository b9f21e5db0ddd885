package wavelet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AlexWan0/go-wavelet/bitvector"
	"github.com/AlexWan0/go-wavelet/coder"
)

// cursor addresses a node during a descent. Trees use id, matrices use
// prefix; both track the level.
type cursor struct {
	level  int
	id     int32
	prefix uint64
}

// layout is what the generic query algorithms need from a concrete
// structure. Ranges passed to split are in the coordinates of the cursor
// and are mapped into the coordinates of each child.
type layout interface {
	root() cursor
	// leaf reports whether c is a leaf and the symbol it stands for.
	leaf(c cursor) (uint64, bool)
	// child returns the child of c in direction bit; false when absent.
	child(c cursor, bit bool) (cursor, bool)
	split(c cursor, r Range) (r0, r1 Range)
	// bounds returns an interval containing every symbol below c. It is
	// exact for trees and derived from the code prefix for matrices.
	bounds(c cursor) (lo, hi uint64)

	// rankOf, selectOf and inverseSelect run on validated arguments; sym is
	// an index into the alphabet.
	rankOf(i uint64, sym int) uint64
	selectOf(k uint64, sym int) (uint64, error)
	inverseSelect(i uint64) (rank, sym uint64)
}

// core holds the state and the operations shared by Tree and Matrix.
type core struct {
	kind   Kind
	n      uint64
	alpha  *coder.Alphabet
	levels []bitvector.BitVector
	cfg    *config
	lay    layout
	closed bool
}

func (c *core) Len() uint64        { return c.n }
func (c *core) Sigma() int         { return c.alpha.Sigma() }
func (c *core) MaxLevel() int      { return c.alpha.MaxLevel() }
func (c *core) LexOrdered() bool   { return c.alpha.LexOrdered() }
func (c *core) Kind() Kind         { return c.kind }
func (c *core) Alphabet() []uint64 { return append([]uint64(nil), c.alpha.Symbols...) }

func (c *core) Access(i uint64) (uint64, error) {
	_, sym, err := c.InverseSelect(i)
	return sym, err
}

func (c *core) Rank(i, sym uint64) (uint64, error) {
	if err := c.checkOpen(); err != nil {
		return 0, err
	}
	if i > c.n {
		return 0, fmt.Errorf("%w: rank position %d > length %d", ErrIndexOutOfRange, i, c.n)
	}
	idx, ok := c.alpha.Index(sym)
	if !ok {
		return 0, nil
	}
	return c.lay.rankOf(i, idx), nil
}

func (c *core) Select(k, sym uint64) (uint64, error) {
	if err := c.checkOpen(); err != nil {
		return 0, err
	}
	if k == 0 || k > c.n {
		return 0, fmt.Errorf("%w: select(%d) on length %d", ErrIndexOutOfRange, k, c.n)
	}
	idx, ok := c.alpha.Index(sym)
	if !ok || k > c.alpha.Freqs[idx] {
		return 0, fmt.Errorf("%w: no occurrence %d of symbol %d", ErrInvalidQuery, k, sym)
	}
	return c.lay.selectOf(k, idx)
}

func (c *core) InverseSelect(i uint64) (rank, sym uint64, err error) {
	if err := c.checkOpen(); err != nil {
		return 0, 0, err
	}
	if i >= c.n {
		return 0, 0, fmt.Errorf("%w: position %d >= length %d", ErrIndexOutOfRange, i, c.n)
	}
	rank, sym = c.lay.inverseSelect(i)
	return rank, sym, nil
}

// checkOpen fails once Close has run.
func (c *core) checkOpen() error {
	if c.closed {
		return fmt.Errorf("%w: %s is closed", ErrInvalidState, c.kind)
	}
	return nil
}

func (c *core) requireLex(op string) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if !c.LexOrdered() {
		return fmt.Errorf("%w: %s needs a lex-ordered structure, %s is not", ErrUnsupported, op, c.kind)
	}
	return nil
}

// String renders the decoded sequence, space separated. A closed
// structure renders empty.
func (c *core) String() string {
	if c.closed {
		return ""
	}
	var sb strings.Builder
	for i := uint64(0); i < c.n; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		_, sym := c.lay.inverseSelect(i)
		sb.WriteString(strconv.FormatUint(sym, 10))
	}
	return sb.String()
}

// Close drops the level bit vectors. Queries on a closed structure fail
// with ErrInvalidState. File-backed vectors keep their files.
func (c *core) Close() error {
	c.levels = nil
	c.closed = true
	return nil
}

// decode reconstructs the whole sequence.
func (c *core) decode() []uint64 {
	seq := make([]uint64, c.n)
	for i := range seq {
		_, seq[i] = c.lay.inverseSelect(uint64(i))
	}
	return seq
}

func fullRange(n uint64) Range { return Range{0, n} }
