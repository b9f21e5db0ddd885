package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type target struct {
	a int
	b string
}

func TestApply(t *testing.T) {
	tg := &target{}
	err := Apply(tg,
		NoError(func(t *target) { t.a = 3 }),
		New(func(t *target) error { t.b = "x"; return nil }),
	)
	require.NoError(t, err)
	require.Equal(t, 3, tg.a)
	require.Equal(t, "x", tg.b)
}

func TestApplyStopsAtError(t *testing.T) {
	boom := errors.New("boom")
	tg := &target{}
	err := Apply(tg,
		New(func(*target) error { return boom }),
		NoError(func(t *target) { t.a = 1 }),
	)
	require.ErrorIs(t, err, boom)
	require.Zero(t, tg.a)
}
