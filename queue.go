package meshvk

import (
	vk "github.com/vulkan-go/vulkan"
)

// queueFamilies holds the chosen graphics and present family indices.
type queueFamilies struct {
	graphics uint32
	present  uint32
}

// shared reports whether one family serves both graphics and present.
func (q queueFamilies) shared() bool {
	return q.graphics == q.present
}

// unique lists the distinct family indices, graphics first.
func (q queueFamilies) unique() []uint32 {
	if q.shared() {
		return []uint32{q.graphics}
	}
	return []uint32{q.graphics, q.present}
}

// findQueueFamilies picks the first graphics-capable family and, independently,
// the first family for which supportsPresent reports true.
func findQueueFamilies(props []vk.QueueFamilyProperties, supportsPresent func(index uint32) bool) (queueFamilies, error) {
	graphics, present := -1, -1
	for index := range props {
		queue := props[index]
		queue.Deref()
		if graphics < 0 && queue.QueueCount > 0 && queue.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			graphics = index
		}
		if present < 0 && supportsPresent(uint32(index)) {
			present = index
		}
	}
	if graphics < 0 {
		return queueFamilies{}, ErrNoGraphicsQueue
	}
	if present < 0 {
		return queueFamilies{}, ErrNoPresentQueue
	}
	return queueFamilies{graphics: uint32(graphics), present: uint32(present)}, nil
}

// queueFamilyProperties lists the queue families of gpu.
func queueFamilyProperties(gpu vk.PhysicalDevice) []vk.QueueFamilyProperties {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, nil)
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, props)
	return props
}

// queueCreateInfos requests a single queue from each distinct family.
func (q queueFamilies) queueCreateInfos() []vk.DeviceQueueCreateInfo {
	families := q.unique()
	infos := make([]vk.DeviceQueueCreateInfo, len(families))
	for i, family := range families {
		infos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}
	return infos
}
