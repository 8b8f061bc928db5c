package meshvk

import (
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// CoreBuffer is a buffer object with its backing memory.
type CoreBuffer struct {
	// device for destroy purposes.
	device vk.Device
	buffer vk.Buffer
	memory vk.DeviceMemory
	size   vk.DeviceSize
	usage  vk.BufferUsageFlagBits
	// mapped is set while the memory is persistently mapped.
	mapped []byte
}

func newBuffer(dev *CoreDevice, size int, usage vk.BufferUsageFlagBits, props vk.MemoryPropertyFlagBits) (*CoreBuffer, error) {
	b := &CoreBuffer{
		device: dev.handle,
		size:   vk.DeviceSize(size),
		usage:  usage,
	}
	ret := vk.CreateBuffer(dev.handle, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        b.size,
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}, nil, &b.buffer)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "create buffer")
	}

	// Ask device about its memory requirements.
	var reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(dev.handle, b.buffer, &reqs)
	reqs.Deref()

	memory, err := allocate(dev.handle, dev.memory_properties, reqs, vk.MemoryPropertyFlags(props))
	if err != nil {
		vk.DestroyBuffer(dev.handle, b.buffer, nil)
		return nil, errors.Wrap(err, "buffer memory")
	}
	b.memory = memory
	if ret := vk.BindBufferMemory(dev.handle, b.buffer, memory, 0); isError(ret) {
		b.Destroy()
		return nil, errors.Wrap(NewError(ret), "bind buffer memory")
	}
	return b, nil
}

// newHostBuffer creates a host visible, coherent buffer.
func newHostBuffer(dev *CoreDevice, size int, usage vk.BufferUsageFlagBits) (*CoreBuffer, error) {
	return newBuffer(dev, size, usage, vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
}

// Write maps the memory, copies data and unmaps it again.
func (b *CoreBuffer) Write(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if vk.DeviceSize(len(data)) > b.size {
		return errors.Errorf("write of %d bytes into %d byte buffer", len(data), b.size)
	}
	var pData unsafe.Pointer
	ret := vk.MapMemory(b.device, b.memory, 0, vk.DeviceSize(len(data)), 0, &pData)
	if isError(ret) {
		return errors.Wrapf(NewError(ret), "map memory (len=%d)", len(data))
	}
	n := vk.Memcopy(pData, data)
	vk.UnmapMemory(b.device, b.memory)
	if n != len(data) {
		return errors.Errorf("copied %d of %d bytes", n, len(data))
	}
	return nil
}

// Map maps the whole buffer until Destroy. Uniform buffers are rewritten through it every frame.
func (b *CoreBuffer) Map() ([]byte, error) {
	if b.mapped != nil {
		return b.mapped, nil
	}
	var pData unsafe.Pointer
	ret := vk.MapMemory(b.device, b.memory, 0, b.size, 0, &pData)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "map memory")
	}
	b.mapped = toBytes(pData, int(b.size))
	return b.mapped, nil
}

func (b *CoreBuffer) Size() int { return int(b.size) }

func (b *CoreBuffer) Destroy() {
	if b == nil || b.device == nil {
		return
	}
	if b.mapped != nil {
		vk.UnmapMemory(b.device, b.memory)
		b.mapped = nil
	}
	vk.DestroyBuffer(b.device, b.buffer, nil)
	vk.FreeMemory(b.device, b.memory, nil)
	b.device = nil
}
