package meshvk

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// findMemoryType returns the first memory type allowed by typeBits whose
// property flags include every bit in required.
func findMemoryType(props vk.PhysicalDeviceMemoryProperties, typeBits uint32, required vk.MemoryPropertyFlags) (uint32, error) {
	count := props.MemoryTypeCount
	if count > vk.MaxMemoryTypes {
		count = vk.MaxMemoryTypes
	}
	for i := uint32(0); i < count; i++ {
		if typeBits&(1<<i) == 0 {
			continue
		}
		props.MemoryTypes[i].Deref()
		if props.MemoryTypes[i].PropertyFlags&required == required {
			return i, nil
		}
	}
	return 0, errors.Wrapf(ErrNoMemoryType, "bits %#x, properties %#x", typeBits, required)
}

// allocate reserves memory for reqs; the caller binds it.
func allocate(device vk.Device, props vk.PhysicalDeviceMemoryProperties, reqs vk.MemoryRequirements, required vk.MemoryPropertyFlags) (vk.DeviceMemory, error) {
	memType, err := findMemoryType(props, reqs.MemoryTypeBits, required)
	if err != nil {
		return vk.NullDeviceMemory, err
	}
	var memory vk.DeviceMemory
	ret := vk.AllocateMemory(device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: memType,
	}, nil, &memory)
	if isError(ret) {
		return vk.NullDeviceMemory, errors.Wrap(NewError(ret), "allocate memory")
	}
	return memory, nil
}
