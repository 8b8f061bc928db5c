package meshvk

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

type layoutPair struct {
	old_layout vk.ImageLayout
	new_layout vk.ImageLayout
}

// transitionMasks holds the barrier scopes of one supported layout change.
type transitionMasks struct {
	src_access vk.AccessFlags
	dst_access vk.AccessFlags
	src_stage  vk.PipelineStageFlags
	dst_stage  vk.PipelineStageFlags
}

var transitions = map[layoutPair]transitionMasks{
	{vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal}: {
		src_access: 0,
		dst_access: vk.AccessFlags(vk.AccessTransferWriteBit),
		src_stage:  vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
		dst_stage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
	},
	{vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal}: {
		src_access: vk.AccessFlags(vk.AccessTransferWriteBit),
		dst_access: vk.AccessFlags(vk.AccessShaderReadBit),
		src_stage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		dst_stage:  vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
	},
	{vk.ImageLayoutUndefined, vk.ImageLayoutDepthStencilAttachmentOptimal}: {
		src_access: 0,
		dst_access: vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit | vk.AccessDepthStencilAttachmentWriteBit),
		src_stage:  vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
		dst_stage:  vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit),
	},
}

func lookupTransition(old_layout, new_layout vk.ImageLayout) (transitionMasks, error) {
	m, ok := transitions[layoutPair{old_layout, new_layout}]
	if !ok {
		return transitionMasks{}, errors.Wrapf(ErrUnsupportedTransition, "%d -> %d", old_layout, new_layout)
	}
	return m, nil
}

func hasStencil(format vk.Format) bool {
	return format == vk.FormatD32SfloatS8Uint || format == vk.FormatD24UnormS8Uint
}

// aspectFor picks the barrier aspect: depth (plus stencil when the format has one)
// for depth attachments, color otherwise.
func aspectFor(new_layout vk.ImageLayout, format vk.Format) vk.ImageAspectFlags {
	if new_layout != vk.ImageLayoutDepthStencilAttachmentOptimal {
		return vk.ImageAspectFlags(vk.ImageAspectColorBit)
	}
	aspect := vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	if hasStencil(format) {
		aspect |= vk.ImageAspectFlags(vk.ImageAspectStencilBit)
	}
	return aspect
}

// transitionBarrier builds the barrier for img moving from old_layout to new_layout.
func transitionBarrier(img vk.Image, format vk.Format, old_layout, new_layout vk.ImageLayout) (vk.ImageMemoryBarrier, transitionMasks, error) {
	masks, err := lookupTransition(old_layout, new_layout)
	if err != nil {
		return vk.ImageMemoryBarrier{}, masks, err
	}
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       masks.src_access,
		DstAccessMask:       masks.dst_access,
		OldLayout:           old_layout,
		NewLayout:           new_layout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               img,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: aspectFor(new_layout, format),
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	return barrier, masks, nil
}

func cmdTransition(cmd vk.CommandBuffer, barrier vk.ImageMemoryBarrier, masks transitionMasks) {
	vk.CmdPipelineBarrier(cmd, masks.src_stage, masks.dst_stage, 0,
		0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}
