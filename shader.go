package meshvk

import (
	"os"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// CoreShader holds the vertex and fragment modules of the mesh program.
type CoreShader struct {
	device   vk.Device
	vertex   vk.ShaderModule
	fragment vk.ShaderModule
}

// NewCoreShader loads both stages from precompiled SPIR-V files.
func NewCoreShader(device vk.Device, vertexPath, fragmentPath string) (*CoreShader, error) {
	vertex, err := LoadShaderModule(device, vertexPath)
	if err != nil {
		return nil, err
	}
	fragment, err := LoadShaderModule(device, fragmentPath)
	if err != nil {
		vk.DestroyShaderModule(device, vertex, nil)
		return nil, err
	}
	return &CoreShader{device: device, vertex: vertex, fragment: fragment}, nil
}

// LoadShaderModule reads path and passes its bytes to vkCreateShaderModule unchanged.
func LoadShaderModule(device vk.Device, path string) (vk.ShaderModule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return vk.NullShaderModule, errors.Wrap(err, "read shader")
	}
	module, err := CreateShaderModule(device, data)
	if err != nil {
		return vk.NullShaderModule, errors.Wrapf(err, "shader %s", path)
	}
	return module, nil
}

// CreateShaderModule wraps SPIR-V bytecode, which must be a non-empty whole number of 32-bit words.
func CreateShaderModule(device vk.Device, data []byte) (vk.ShaderModule, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return vk.NullShaderModule, errors.Errorf("invalid SPIR-V size %d, want a non-zero multiple of 4", len(data))
	}
	var module vk.ShaderModule
	ret := vk.CreateShaderModule(device, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(data)),
		PCode:    sliceUint32(data),
	}, nil, &module)
	if isError(ret) {
		return vk.NullShaderModule, NewError(ret)
	}
	return module, nil
}

func (s *CoreShader) stages() []vk.PipelineShaderStageCreateInfo {
	return []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: s.vertex,
			PName:  safeString("main"),
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: s.fragment,
			PName:  safeString("main"),
		},
	}
}

// Destroy releases the modules; they are not needed once the pipeline exists.
func (s *CoreShader) Destroy() {
	if s == nil || s.device == nil {
		return
	}
	vk.DestroyShaderModule(s.device, s.vertex, nil)
	vk.DestroyShaderModule(s.device, s.fragment, nil)
	s.device = nil
}
