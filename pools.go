package meshvk

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// CorePool owns a command pool whose buffers can be reset individually.
type CorePool struct {
	device vk.Device
	pool   vk.CommandPool
}

func NewCorePool(device vk.Device, family_index uint32) (*CorePool, error) {
	var cmdPool vk.CommandPool
	ret := vk.CreateCommandPool(device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: family_index,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}, nil, &cmdPool)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "create command pool")
	}
	return &CorePool{device: device, pool: cmdPool}, nil
}

// Allocate returns count primary command buffers.
func (c *CorePool) Allocate(count int) ([]vk.CommandBuffer, error) {
	cmds := make([]vk.CommandBuffer, count)
	ret := vk.AllocateCommandBuffers(c.device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        c.pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(count),
	}, cmds)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "allocate command buffers")
	}
	return cmds, nil
}

func (c *CorePool) Free(cmds []vk.CommandBuffer) {
	if len(cmds) == 0 {
		return
	}
	vk.FreeCommandBuffers(c.device, c.pool, uint32(len(cmds)), cmds)
}

func (c *CorePool) Destroy() {
	if c == nil || c.device == nil {
		return
	}
	vk.DestroyCommandPool(c.device, c.pool, nil)
	c.device = nil
}
