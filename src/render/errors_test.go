package render

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vulkan-go/vulkan"
)

func TestNewError(t *testing.T) {
	require.NoError(t, NewError(vulkan.Success))
	require.False(t, IsError(vulkan.Success))
	require.True(t, IsError(vulkan.ErrorDeviceLost))

	err := NewError(vulkan.ErrorDeviceLost)
	require.Error(t, err)
	require.Contains(t, err.Error(), "vulkan error")
	require.Contains(t, err.Error(), "TestNewError")
	require.Contains(t, err.Error(), "errors_test.go")
}

func TestOrPanic(t *testing.T) {
	OrPanic(nil, func() { t.Fatal("finalizer ran without an error") })

	ran := 0
	require.Panics(t, func() {
		OrPanic(errors.New("boom"), func() { ran++ }, func() { ran++ })
	})
	require.Equal(t, 2, ran)
}

func TestCheckError(t *testing.T) {
	fn := func() (err error) {
		defer CheckError(&err)
		OrPanic(errors.New("boom"))
		return nil
	}
	err := fn()
	require.Error(t, err)
	require.Contains(t, err.Error(), "boom")

	ok := func() (err error) {
		defer CheckError(&err)
		return nil
	}
	require.NoError(t, ok())
}
