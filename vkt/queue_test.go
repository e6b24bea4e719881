package vkt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

const (
	qG = vk.QueueFlags(vk.QueueGraphicsBit)
	qC = vk.QueueFlags(vk.QueueComputeBit)
	qX = vk.QueueFlags(vk.QueueTransferBit)
)

func TestResolveSingleUniversalFamily(t *testing.T) {
	q, ok := ResolveQueueFamilies([]vk.QueueFlags{qG | qC | qX})
	require.True(t, ok)
	assert.Equal(t, QueueFamilies{}, q)
	assert.Equal(t, []uint32{0}, q.Distinct())
}

func TestResolvePrefersSpecialisedFamilies(t *testing.T) {
	// typical discrete layout: universal, compute+transfer, transfer only
	q, ok := ResolveQueueFamilies([]vk.QueueFlags{qG | qC | qX, qC | qX, qX})
	require.True(t, ok)
	assert.Equal(t, uint32(0), q.Graphics)
	assert.Equal(t, uint32(2), q.Transfer)
	assert.Equal(t, uint32(1), q.Compute)
	assert.Equal(t, []uint32{0, 2, 1}, q.Distinct())
}

func TestResolveTiesKeepEnumerationOrder(t *testing.T) {
	q, ok := ResolveQueueFamilies([]vk.QueueFlags{qG | qC | qX, qX, qX, qC})
	require.True(t, ok)
	assert.Equal(t, uint32(1), q.Transfer)
	assert.Equal(t, uint32(3), q.Compute)
}

func TestResolveIgnoresNonRoleBits(t *testing.T) {
	sparse := vk.QueueFlags(vk.QueueSparseBindingBit)
	q, ok := ResolveQueueFamilies([]vk.QueueFlags{sparse, qG | qC | qX | sparse, qX | sparse})
	require.True(t, ok)
	assert.Equal(t, uint32(1), q.Graphics)
	assert.Equal(t, uint32(2), q.Transfer)
	assert.Equal(t, uint32(1), q.Compute)
}

func TestResolveWithoutGraphics(t *testing.T) {
	_, ok := ResolveQueueFamilies([]vk.QueueFlags{qC | qX, qX})
	assert.False(t, ok)
	_, ok = ResolveQueueFamilies(nil)
	assert.False(t, ok)
}

func TestHasGraphicsFamily(t *testing.T) {
	assert.True(t, HasGraphicsFamily([]vk.QueueFlags{qX, qG}))
	assert.False(t, HasGraphicsFamily([]vk.QueueFlags{qX, qC}))
	assert.False(t, HasGraphicsFamily(nil))
}

func TestQueueCreateInfos(t *testing.T) {
	infos := queueCreateInfos([]uint32{0, 2})
	require.Len(t, infos, 2)
	assert.Equal(t, uint32(2), infos[1].QueueFamilyIndex)
	assert.Equal(t, uint32(1), infos[1].QueueCount)
	assert.Equal(t, []float32{1}, infos[0].PQueuePriorities)
}
