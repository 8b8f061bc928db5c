package meshvk

import (
	"runtime"
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

const (
	debugReportExtension   = "VK_EXT_debug_report"
	portabilityEnumeration = "VK_KHR_portability_enumeration"
	// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
	instanceCreateEnumeratePortability = 0x00000001
)

// newInstance creates the instance with the display's required extensions and,
// when validation is on, the configured layers and a debug report callback.
func newInstance(cfg Config, display Display, log *Logger) (vk.Instance, vk.DebugReportCallback, error) {
	available, err := InstanceExtensions()
	if err != nil {
		return nil, vk.NullDebugReportCallback, errors.Wrap(err, "enumerate instance extensions")
	}

	var wanted []string
	if cfg.Validation {
		wanted = append(wanted, debugReportExtension)
	}
	var flags vk.InstanceCreateFlags
	if runtime.GOOS == "darwin" {
		wanted = append(wanted, portabilityEnumeration)
		flags = vk.InstanceCreateFlags(instanceCreateEnumeratePortability)
	}

	exts := newExtensionSet(wanted, display.RequiredInstanceExtensions(), available)
	if err := exts.Check("instance"); err != nil {
		return nil, vk.NullDebugReportCallback, err
	}
	if ok, m := exts.HasWanted(); !ok {
		log.Warnf("instance extensions not available: %v", m)
	}

	var layers []string
	if cfg.Validation {
		have, err := ValidationLayers()
		if err != nil {
			return nil, vk.NullDebugReportCallback, errors.Wrap(err, "enumerate layers")
		}
		layer_set := newExtensionSet(cfg.Layers, nil, have)
		if ok, m := layer_set.HasWanted(); !ok {
			log.Warnf("validation layers not available: %v", m)
		}
		layers = layer_set.GetExtensions()
	}

	enabled := exts.GetExtensions()
	log.Debugf("instance extensions: %v, layers: %v", enabled, layers)

	var instance vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         uint32(DefaultVulkanAPIVersion),
			ApplicationVersion: uint32(DefaultVulkanAppVersion),
			PApplicationName:   safeString(cfg.Title),
			PEngineName:        safeString(engineName),
		},
		EnabledExtensionCount:   uint32(len(enabled)),
		PpEnabledExtensionNames: safeStrings(enabled),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     safeStrings(layers),
		Flags:                   flags,
	}, nil, &instance)
	if isError(ret) {
		return nil, vk.NullDebugReportCallback, errors.Wrap(NewError(ret), "create instance")
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, vk.NullDebugReportCallback, errors.Wrap(err, "init instance")
	}

	dbg := vk.NullDebugReportCallback
	if cfg.Validation && len(missing([]string{debugReportExtension}, enabled)) == 0 {
		ret := vk.CreateDebugReportCallback(instance, &vk.DebugReportCallbackCreateInfo{
			SType: vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags: vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit |
				vk.DebugReportPerformanceWarningBit | vk.DebugReportInformationBit),
			PfnCallback: log.debugReport,
		}, nil, &dbg)
		if isError(ret) {
			log.Warnf("debug report callback unavailable: %v", NewError(ret))
			dbg = vk.NullDebugReportCallback
		}
	}
	return instance, dbg, nil
}

// debugReport routes validation layer messages to the matching log level.
func (l *Logger) debugReport(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, pLayerPrefix string,
	pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		l.Errorf("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		l.Warnf("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		l.Warnf("performance: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		l.Debugf("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
