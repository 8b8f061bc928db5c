package meshvk

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

const (
	uniformBinding = 0
	samplerBinding = 1
)

// CoreDescriptors owns the set layout, pool, sampler and one set per frame slot.
// Each set binds its slot's uniform buffer and the shared texture.
type CoreDescriptors struct {
	device  vk.Device
	layout  vk.DescriptorSetLayout
	pool    vk.DescriptorPool
	sampler vk.Sampler
	sets    []vk.DescriptorSet
}

func newDescriptorSetLayout(device vk.Device) (vk.DescriptorSetLayout, error) {
	bindings := []vk.DescriptorSetLayoutBinding{
		{
			Binding:         uniformBinding,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		},
		{
			Binding:         samplerBinding,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
	}
	var layout vk.DescriptorSetLayout
	ret := vk.CreateDescriptorSetLayout(device, &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}, nil, &layout)
	if isError(ret) {
		return layout, errors.Wrap(NewError(ret), "create descriptor set layout")
	}
	return layout, nil
}

func newSampler(device vk.Device) (vk.Sampler, error) {
	var sampler vk.Sampler
	ret := vk.CreateSampler(device, &vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
	}, nil, &sampler)
	if isError(ret) {
		return sampler, errors.Wrap(NewError(ret), "create sampler")
	}
	return sampler, nil
}

// NewCoreDescriptors creates a set per uniform buffer, each pointing at texture.
func NewCoreDescriptors(device vk.Device, uniforms []*CoreBuffer, texture *CoreImage) (d *CoreDescriptors, err error) {
	d = &CoreDescriptors{device: device}
	defer func() {
		if err != nil {
			d.Destroy()
		}
	}()

	if d.layout, err = newDescriptorSetLayout(device); err != nil {
		return nil, err
	}
	if d.sampler, err = newSampler(device); err != nil {
		return nil, err
	}

	count := uint32(len(uniforms))
	sizes := []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: count},
		{Type: vk.DescriptorTypeCombinedImageSampler, DescriptorCount: count},
	}
	ret := vk.CreateDescriptorPool(device, &vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       count,
		PoolSizeCount: uint32(len(sizes)),
		PPoolSizes:    sizes,
	}, nil, &d.pool)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "create descriptor pool")
	}

	layouts := make([]vk.DescriptorSetLayout, count)
	for i := range layouts {
		layouts[i] = d.layout
	}
	d.sets = make([]vk.DescriptorSet, count)
	ret = vk.AllocateDescriptorSets(device, &vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     d.pool,
		DescriptorSetCount: count,
		PSetLayouts:        layouts,
	}, &d.sets[0])
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "allocate descriptor sets")
	}

	for i, ubo := range uniforms {
		writes := []vk.WriteDescriptorSet{
			{
				SType:           vk.StructureTypeWriteDescriptorSet,
				DstSet:          d.sets[i],
				DstBinding:      uniformBinding,
				DescriptorCount: 1,
				DescriptorType:  vk.DescriptorTypeUniformBuffer,
				PBufferInfo: []vk.DescriptorBufferInfo{{
					Buffer: ubo.buffer,
					Range:  vk.DeviceSize(ubo.Size()),
				}},
			},
			{
				SType:           vk.StructureTypeWriteDescriptorSet,
				DstSet:          d.sets[i],
				DstBinding:      samplerBinding,
				DescriptorCount: 1,
				DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
				PImageInfo: []vk.DescriptorImageInfo{{
					Sampler:     d.sampler,
					ImageView:   texture.View(),
					ImageLayout: texture.Layout(),
				}},
			},
		}
		vk.UpdateDescriptorSets(device, uint32(len(writes)), writes, 0, nil)
	}
	return d, nil
}

func (d *CoreDescriptors) Layout() vk.DescriptorSetLayout { return d.layout }

// Set returns the descriptor set of a frame slot.
func (d *CoreDescriptors) Set(slot int) vk.DescriptorSet { return d.sets[slot] }

func (d *CoreDescriptors) Destroy() {
	if d == nil || d.device == nil {
		return
	}
	// Destroying a null handle is a no-op, so partial construction is fine here.
	vk.DestroyDescriptorPool(d.device, d.pool, nil)
	vk.DestroySampler(d.device, d.sampler, nil)
	vk.DestroyDescriptorSetLayout(d.device, d.layout, nil)
	d.device = nil
}
