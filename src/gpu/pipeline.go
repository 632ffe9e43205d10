package gpu

import (
	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

// Pipeline draws Vertex triangle lists into a render pass. Viewport and
// scissor are dynamic so the pipeline survives swap chain recreation.
type Pipeline struct {
	layout vulkan.PipelineLayout
	handle vulkan.Pipeline
}

func NewPipeline(d *Device, pass vulkan.RenderPass, vert, frag []uint32) (*Pipeline, error) {
	vertModule, err := newShaderModule(d, vert)
	if err != nil {
		return nil, errors.Wrap(err, "vertex shader")
	}
	defer vulkan.DestroyShaderModule(d.handle, vertModule, nil)
	fragModule, err := newShaderModule(d, frag)
	if err != nil {
		return nil, errors.Wrap(err, "fragment shader")
	}
	defer vulkan.DestroyShaderModule(d.handle, fragModule, nil)

	stages := []vulkan.PipelineShaderStageCreateInfo{
		{
			SType:  vulkan.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vulkan.ShaderStageVertexBit,
			Module: vertModule,
			PName:  safeString("main"),
		},
		{
			SType:  vulkan.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vulkan.ShaderStageFragmentBit,
			Module: fragModule,
			PName:  safeString("main"),
		},
	}

	attributes := vertexAttributes()
	vertexInput := vulkan.PipelineVertexInputStateCreateInfo{
		SType:                           vulkan.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   1,
		PVertexBindingDescriptions:      []vulkan.VertexInputBindingDescription{vertexBinding()},
		VertexAttributeDescriptionCount: uint32(len(attributes)),
		PVertexAttributeDescriptions:    attributes,
	}
	inputAssembly := vulkan.PipelineInputAssemblyStateCreateInfo{
		SType:                  vulkan.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vulkan.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vulkan.False,
	}
	viewport := vulkan.PipelineViewportStateCreateInfo{
		SType:         vulkan.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}
	rasterizer := vulkan.PipelineRasterizationStateCreateInfo{
		SType:                   vulkan.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vulkan.False,
		RasterizerDiscardEnable: vulkan.False,
		PolygonMode:             vulkan.PolygonModeFill,
		LineWidth:               1.0,
		CullMode:                vulkan.CullModeFlags(vulkan.CullModeBackBit),
		FrontFace:               vulkan.FrontFaceClockwise,
		DepthBiasEnable:         vulkan.False,
	}
	multisample := vulkan.PipelineMultisampleStateCreateInfo{
		SType:                vulkan.StructureTypePipelineMultisampleStateCreateInfo,
		SampleShadingEnable:  vulkan.False,
		RasterizationSamples: vulkan.SampleCount1Bit,
	}
	blend := vulkan.PipelineColorBlendStateCreateInfo{
		SType:           vulkan.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vulkan.False,
		LogicOp:         vulkan.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments: []vulkan.PipelineColorBlendAttachmentState{{
			ColorWriteMask: vulkan.ColorComponentFlags(vulkan.ColorComponentRBit | vulkan.ColorComponentGBit |
				vulkan.ColorComponentBBit | vulkan.ColorComponentABit),
			BlendEnable: vulkan.False,
		}},
	}
	dynamicStates := []vulkan.DynamicState{
		vulkan.DynamicStateViewport,
		vulkan.DynamicStateScissor,
	}
	dynamic := vulkan.PipelineDynamicStateCreateInfo{
		SType:             vulkan.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	p := &Pipeline{}
	layoutInfo := vulkan.PipelineLayoutCreateInfo{
		SType: vulkan.StructureTypePipelineLayoutCreateInfo,
	}
	if ret := vulkan.CreatePipelineLayout(d.handle, &layoutInfo, nil, &p.layout); ret != vulkan.Success {
		return nil, errors.Wrap(vulkan.Error(ret), "create pipeline layout")
	}

	infos := []vulkan.GraphicsPipelineCreateInfo{{
		SType:               vulkan.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewport,
		PRasterizationState: &rasterizer,
		PMultisampleState:   &multisample,
		PColorBlendState:    &blend,
		PDynamicState:       &dynamic,
		Layout:              p.layout,
		RenderPass:          pass,
		Subpass:             0,
		BasePipelineIndex:   -1,
	}}
	pipelines := make([]vulkan.Pipeline, 1)
	if ret := vulkan.CreateGraphicsPipelines(d.handle, vulkan.PipelineCache(vulkan.NullHandle), 1, infos, nil, pipelines); ret != vulkan.Success {
		vulkan.DestroyPipelineLayout(d.handle, p.layout, nil)
		return nil, errors.Wrap(vulkan.Error(ret), "create graphics pipeline")
	}
	p.handle = pipelines[0]
	logger.IPrintf("Created graphics pipeline")
	return p, nil
}

func (p *Pipeline) Handle() vulkan.Pipeline {
	return p.handle
}

func (p *Pipeline) Destroy(d *Device) {
	vulkan.DestroyPipeline(d.handle, p.handle, nil)
	vulkan.DestroyPipelineLayout(d.handle, p.layout, nil)
}
