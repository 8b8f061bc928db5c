package meshvk

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

const swapchainExtension = "VK_KHR_swapchain"

// CoreDevice owns the instance, surface, physical and logical device and its queues.
// There is one per process.
type CoreDevice struct {
	instance          vk.Instance
	debug_callback    vk.DebugReportCallback
	surface           vk.Surface
	gpu               vk.PhysicalDevice
	properties        vk.PhysicalDeviceProperties
	memory_properties vk.PhysicalDeviceMemoryProperties
	handle            vk.Device
	families          queueFamilies
	graphics_queue    vk.Queue
	present_queue     vk.Queue
	log               *Logger
}

// NewCoreDevice creates the instance and surface for display, selects the first
// physical device and creates a logical device with graphics and present queues.
func NewCoreDevice(cfg Config, display Display, log *Logger) (dev *CoreDevice, err error) {
	dev = &CoreDevice{log: log}
	defer func() {
		if err != nil {
			dev.Destroy()
			dev = nil
		}
	}()

	dev.instance, dev.debug_callback, err = newInstance(cfg, display, log)
	if err != nil {
		return dev, err
	}
	dev.surface, err = display.CreateSurface(dev.instance)
	if err != nil {
		return dev, errors.Wrap(err, "create surface")
	}

	dev.gpu, err = firstPhysicalDevice(dev.instance)
	if err != nil {
		return dev, err
	}
	vk.GetPhysicalDeviceProperties(dev.gpu, &dev.properties)
	dev.properties.Deref()
	vk.GetPhysicalDeviceMemoryProperties(dev.gpu, &dev.memory_properties)
	dev.memory_properties.Deref()
	log.Infof("using GPU %s", vk.ToString(dev.properties.DeviceName[:]))

	dev.families, err = findQueueFamilies(queueFamilyProperties(dev.gpu), func(index uint32) bool {
		var supported vk.Bool32
		vk.GetPhysicalDeviceSurfaceSupport(dev.gpu, index, dev.surface, &supported)
		return supported.B()
	})
	if err != nil {
		return dev, err
	}
	log.Debugf("queue families: graphics %d, present %d", dev.families.graphics, dev.families.present)

	available, err := DeviceExtensions(dev.gpu)
	if err != nil {
		return dev, errors.Wrap(err, "enumerate device extensions")
	}
	exts := newExtensionSet(nil, []string{swapchainExtension}, available)
	if err := exts.Check("device"); err != nil {
		return dev, err
	}
	enabled := exts.GetExtensions()

	queueInfos := dev.families.queueCreateInfos()
	var device vk.Device
	ret := vk.CreateDevice(dev.gpu, &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(enabled)),
		PpEnabledExtensionNames: safeStrings(enabled),
		PEnabledFeatures: []vk.PhysicalDeviceFeatures{{
			SamplerAnisotropy: vk.False,
		}},
	}, nil, &device)
	if isError(ret) {
		return dev, errors.Wrap(NewError(ret), "create device")
	}
	dev.handle = device

	vk.GetDeviceQueue(device, dev.families.graphics, 0, &dev.graphics_queue)
	vk.GetDeviceQueue(device, dev.families.present, 0, &dev.present_queue)
	return dev, nil
}

// firstPhysicalDevice returns the first enumerated GPU.
func firstPhysicalDevice(instance vk.Instance) (vk.PhysicalDevice, error) {
	var count uint32
	ret := vk.EnumeratePhysicalDevices(instance, &count, nil)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "enumerate physical devices")
	}
	if count == 0 {
		return nil, ErrNoPhysicalDevice
	}
	gpus := make([]vk.PhysicalDevice, count)
	ret = vk.EnumeratePhysicalDevices(instance, &count, gpus)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "enumerate physical devices")
	}
	return gpus[0], nil
}

// FormatFeatures returns the optimal tiling features of format.
func (dev *CoreDevice) FormatFeatures(format vk.Format) vk.FormatFeatureFlags {
	var props vk.FormatProperties
	vk.GetPhysicalDeviceFormatProperties(dev.gpu, format, &props)
	props.Deref()
	return props.OptimalTilingFeatures
}

func (dev *CoreDevice) WaitIdle() error {
	if ret := vk.DeviceWaitIdle(dev.handle); isError(ret) {
		return errors.Wrap(NewError(ret), "device wait idle")
	}
	return nil
}

func (dev *CoreDevice) Destroy() {
	if dev == nil {
		return
	}
	if dev.handle != nil {
		vk.DestroyDevice(dev.handle, nil)
		dev.handle = nil
	}
	if dev.instance == nil {
		return
	}
	if dev.surface != vk.NullSurface {
		vk.DestroySurface(dev.instance, dev.surface, nil)
		dev.surface = vk.NullSurface
	}
	if dev.debug_callback != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(dev.instance, dev.debug_callback, nil)
		dev.debug_callback = vk.NullDebugReportCallback
	}
	vk.DestroyInstance(dev.instance, nil)
	dev.instance = nil
}
