package wavelet

import (
	"fmt"
	"log/slog"

	"github.com/AlexWan0/go-wavelet/bitvector"
	"github.com/AlexWan0/go-wavelet/compress"
	"github.com/AlexWan0/go-wavelet/internal/options"
)

type config struct {
	base        bitvector.Kind
	baseSet     bool
	dir         string
	compression compress.Type
	compSet     bool
	parallelism int
	logger      *slog.Logger
}

// Option configures construction, decoding and serialization.
type Option = options.Option[*config]

func defaultConfig() *config {
	return &config{
		base:        bitvector.KindRSDic,
		compression: compress.None,
		parallelism: 4,
		logger:      slog.New(slog.DiscardHandler),
	}
}

func newConfig(opts []Option) (*config, error) {
	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *config) bitvectorOptions() bitvector.Options {
	return bitvector.Options{Kind: c.base, Dir: c.dir}
}

// WithBitVector selects the base bit vector of every level. Decoding keeps
// the kind recorded in the image unless this option is given.
func WithBitVector(kind bitvector.Kind) Option {
	return options.New(func(c *config) error {
		if kind < bitvector.KindRSDic || kind > bitvector.KindMmap {
			return fmt.Errorf("%w: unknown bit vector kind %d", ErrConstruction, kind)
		}
		c.base = kind
		c.baseSet = true
		return nil
	})
}

// WithDir sets the directory file-backed bit vectors are written to. Each
// structure gets its own subdirectory below dir.
func WithDir(dir string) Option {
	return options.NoError(func(c *config) {
		c.dir = dir
	})
}

// WithCompression sets the payload compression used by MarshalBinary and
// the persistence helpers. Decoded structures keep the compression of their
// image unless this option is given.
func WithCompression(t compress.Type) Option {
	return options.New(func(c *config) error {
		if _, err := compress.GetCodec(t); err != nil {
			return fmt.Errorf("%w: %v", ErrConstruction, err)
		}
		c.compression = t
		c.compSet = true
		return nil
	})
}

// WithParallelism bounds the number of level bit vectors materialized at once.
func WithParallelism(n int) Option {
	return options.New(func(c *config) error {
		if n < 1 {
			return fmt.Errorf("%w: parallelism must be positive, got %d", ErrConstruction, n)
		}
		c.parallelism = n
		return nil
	})
}

// WithLogger sets the logger for construction and serialization events.
// A nil logger discards.
func WithLogger(l *slog.Logger) Option {
	return options.NoError(func(c *config) {
		if l == nil {
			l = slog.New(slog.DiscardHandler)
		}
		c.logger = l
	})
}
