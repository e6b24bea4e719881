package vkt

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestNewError(t *testing.T) {
	assert.NoError(t, NewError(vk.Success))
	assert.NoError(t, Result(vk.Success, "noop"))

	err := Result(vk.ErrorDeviceLost, "queue submit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue submit")
}

func TestGuardRecovers(t *testing.T) {
	sentinel := errors.New("lost")
	err := Guard(func() error {
		orPanic(errors.Wrap(sentinel, "inside builder"))
		return nil
	})
	assert.ErrorIs(t, err, sentinel)

	err = Guard(func() error { panic("raw") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "raw")

	assert.NoError(t, Guard(func() error { return nil }))
}

func TestSubmitRejectsMismatchedWaits(t *testing.T) {
	err := Submit(Queue{}, nil, Submission{Wait: []vk.Semaphore{nil}})
	assert.Error(t, err)
}
