package meshvk

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// CorePipeline is the graphics pipeline and its layout. Viewport and scissor are
// dynamic, so a swapchain rebuild leaves it untouched.
type CorePipeline struct {
	device   vk.Device
	layout   vk.PipelineLayout
	pipeline vk.Pipeline
}

// PipelineBuilder collects the fixed-function state of the mesh pipeline.
type PipelineBuilder struct {
	shaderStages         []vk.PipelineShaderStageCreateInfo
	vertexBindings       []vk.VertexInputBindingDescription
	vertexAttributes     []vk.VertexInputAttributeDescription
	inputAssembly        vk.PipelineInputAssemblyStateCreateInfo
	rasterizer           vk.PipelineRasterizationStateCreateInfo
	multisampling        vk.PipelineMultisampleStateCreateInfo
	depthStencil         vk.PipelineDepthStencilStateCreateInfo
	colorBlendAttachment vk.PipelineColorBlendAttachmentState
	dynamicStates        []vk.DynamicState
}

func NewPipelineBuilder(shader *CoreShader) *PipelineBuilder {
	return &PipelineBuilder{
		shaderStages:     shader.stages(),
		vertexBindings:   vertexBindings(),
		vertexAttributes: vertexAttributes(),
		inputAssembly: vk.PipelineInputAssemblyStateCreateInfo{
			SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology:               vk.PrimitiveTopologyTriangleList,
			PrimitiveRestartEnable: vk.False,
		},
		rasterizer: vk.PipelineRasterizationStateCreateInfo{
			SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
			DepthClampEnable:        vk.False,
			RasterizerDiscardEnable: vk.False,
			PolygonMode:             vk.PolygonModeFill,
			CullMode:                vk.CullModeFlags(vk.CullModeBackBit),
			// The projection flips Y, which turns counter-clockwise faces front facing.
			FrontFace:               vk.FrontFaceCounterClockwise,
			DepthBiasEnable:         vk.False,
			LineWidth:               1.0,
		},
		multisampling: vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: vk.SampleCount1Bit,
			SampleShadingEnable:  vk.False,
			MinSampleShading:     1.0,
		},
		depthStencil: vk.PipelineDepthStencilStateCreateInfo{
			SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
			DepthTestEnable:       vk.True,
			DepthWriteEnable:      vk.True,
			DepthCompareOp:        vk.CompareOpLess,
			DepthBoundsTestEnable: vk.False,
			StencilTestEnable:     vk.False,
			MaxDepthBounds:        1.0,
		},
		colorBlendAttachment: vk.PipelineColorBlendAttachmentState{
			ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit |
				vk.ColorComponentBBit | vk.ColorComponentABit),
			BlendEnable: vk.False,
		},
		dynamicStates: []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor},
	}
}

// Build creates the pipeline layout for setLayout and the pipeline for renderPass.
func (p *PipelineBuilder) Build(device vk.Device, renderPass vk.RenderPass, setLayout vk.DescriptorSetLayout) (*CorePipeline, error) {
	core := &CorePipeline{device: device}

	ret := vk.CreatePipelineLayout(device, &vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: 1,
		PSetLayouts:    []vk.DescriptorSetLayout{setLayout},
	}, nil, &core.layout)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "create pipeline layout")
	}

	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(p.vertexBindings)),
		PVertexBindingDescriptions:      p.vertexBindings,
		VertexAttributeDescriptionCount: uint32(len(p.vertexAttributes)),
		PVertexAttributeDescriptions:    p.vertexAttributes,
	}
	// Counts only; the actual rectangles are set per frame.
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}
	blendState := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{p.colorBlendAttachment},
	}
	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(p.dynamicStates)),
		PDynamicStates:    p.dynamicStates,
	}

	pipelineInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(p.shaderStages)),
		PStages:             p.shaderStages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &p.inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &p.rasterizer,
		PMultisampleState:   &p.multisampling,
		PDepthStencilState:  &p.depthStencil,
		PColorBlendState:    &blendState,
		PDynamicState:       &dynamicState,
		Layout:              core.layout,
		RenderPass:          renderPass,
		Subpass:             0,
	}

	pipelines := make([]vk.Pipeline, 1)
	ret = vk.CreateGraphicsPipelines(device, nil, 1,
		[]vk.GraphicsPipelineCreateInfo{pipelineInfo}, nil, pipelines)
	if isError(ret) {
		vk.DestroyPipelineLayout(device, core.layout, nil)
		return nil, errors.Wrap(NewError(ret), "create graphics pipeline")
	}
	core.pipeline = pipelines[0]
	return core, nil
}

func (c *CorePipeline) Handle() vk.Pipeline       { return c.pipeline }
func (c *CorePipeline) Layout() vk.PipelineLayout { return c.layout }

func (c *CorePipeline) Destroy() {
	if c == nil || c.device == nil {
		return
	}
	vk.DestroyPipeline(c.device, c.pipeline, nil)
	vk.DestroyPipelineLayout(c.device, c.layout, nil)
	c.device = nil
}
