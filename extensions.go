package meshvk

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// InstanceExtensions gets a list of instance extensions available on the platform.
func InstanceExtensions() ([]string, error) {
	var count uint32
	if ret := vk.EnumerateInstanceExtensionProperties("", &count, nil); isError(ret) {
		return nil, NewError(ret)
	}
	list := make([]vk.ExtensionProperties, count)
	if ret := vk.EnumerateInstanceExtensionProperties("", &count, list); isError(ret) {
		return nil, NewError(ret)
	}
	return extensionNames(list[:count]), nil
}

// DeviceExtensions gets a list of extensions available on the provided physical device.
func DeviceExtensions(gpu vk.PhysicalDevice) ([]string, error) {
	var count uint32
	if ret := vk.EnumerateDeviceExtensionProperties(gpu, "", &count, nil); isError(ret) {
		return nil, NewError(ret)
	}
	list := make([]vk.ExtensionProperties, count)
	if ret := vk.EnumerateDeviceExtensionProperties(gpu, "", &count, list); isError(ret) {
		return nil, NewError(ret)
	}
	return extensionNames(list[:count]), nil
}

// ValidationLayers gets a list of validation layers available on the platform.
func ValidationLayers() ([]string, error) {
	var count uint32
	if ret := vk.EnumerateInstanceLayerProperties(&count, nil); isError(ret) {
		return nil, NewError(ret)
	}
	list := make([]vk.LayerProperties, count)
	if ret := vk.EnumerateInstanceLayerProperties(&count, list); isError(ret) {
		return nil, NewError(ret)
	}
	names := make([]string, 0, count)
	for _, layer := range list[:count] {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, nil
}

func extensionNames(list []vk.ExtensionProperties) []string {
	names := make([]string, 0, len(list))
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names
}

// extensionSet separates names that must be present from ones enabled only when available.
type extensionSet struct {
	wanted   []string
	required []string
	actual   []string
}

func newExtensionSet(wanted, required, actual []string) *extensionSet {
	return &extensionSet{wanted: wanted, required: required, actual: actual}
}

func (e *extensionSet) HasRequired() (bool, []string) {
	m := missing(e.required, e.actual)
	return len(m) == 0, m
}

func (e *extensionSet) HasWanted() (bool, []string) {
	m := missing(e.wanted, e.actual)
	return len(m) == 0, m
}

// GetExtensions lists every required name followed by the available wanted ones, without duplicates.
func (e *extensionSet) GetExtensions() []string {
	implement := append([]string{}, e.required...)
	for _, want := range e.wanted {
		if len(missing([]string{want}, implement)) == 0 {
			continue
		}
		if len(missing([]string{want}, e.actual)) == 0 {
			implement = append(implement, want)
		}
	}
	return implement
}

// Check fails with ErrMissingExtensions naming what is absent.
func (e *extensionSet) Check(kind string) error {
	if ok, m := e.HasRequired(); !ok {
		return errors.Wrapf(ErrMissingExtensions, "%s: %v", kind, m)
	}
	return nil
}
