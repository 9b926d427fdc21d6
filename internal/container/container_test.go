package container

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClose_ReverseOrderAndJoinedErrors(t *testing.T) {
	var order []int
	errFirst := errors.New("first")

	c := &Container{closers: []io.Closer{
		closerFunc(func() error { order = append(order, 1); return errFirst }),
		closerFunc(func() error { order = append(order, 2); return nil }),
	}}

	err := c.Close()
	require.ErrorIs(t, err, errFirst)
	require.Equal(t, []int{2, 1}, order)
	require.NoError(t, c.Close())
}
