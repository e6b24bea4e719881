package vkt

import (
	"github.com/andewx/framevk/lifetime"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Material is a built graphics pipeline with its layout and cache. A material
// never changes after Build.
type Material struct {
	Name     string
	Pipeline vk.Pipeline
	Layout   vk.PipelineLayout
	Cache    vk.PipelineCache
	//Texture set bound at set 2, nil when the material samples nothing
	TextureSet vk.DescriptorSet
}

// PipelineBuilder collects the fixed function state of one material. Dynamic
// viewport and scissor are always enabled.
type PipelineBuilder struct {
	name           string
	vertex         vk.ShaderModule
	fragment       vk.ShaderModule
	input          VertexInput
	setLayouts     []vk.DescriptorSetLayout
	pushConstants  uint32
	depthTest      bool
	depthWrite     bool
	depthCompare   vk.CompareOp
	blend          bool
	cullMode       vk.CullModeFlagBits
	frontFace      vk.FrontFace
	hasShaders     bool
	hasVertexInput bool
}

func NewPipelineBuilder(name string) *PipelineBuilder {
	return &PipelineBuilder{
		name:         name,
		depthCompare: vk.CompareOpLessOrEqual,
		cullMode:     vk.CullModeNone,
		frontFace:    vk.FrontFaceCounterClockwise,
	}
}

func (p *PipelineBuilder) Shaders(vertex, fragment vk.ShaderModule) *PipelineBuilder {
	p.vertex, p.fragment = vertex, fragment
	p.hasShaders = true
	return p
}

func (p *PipelineBuilder) VertexInput(input VertexInput) *PipelineBuilder {
	p.input = input
	p.hasVertexInput = true
	return p
}

func (p *PipelineBuilder) Layout(setLayouts []vk.DescriptorSetLayout, pushConstantSize uint32) *PipelineBuilder {
	p.setLayouts = setLayouts
	p.pushConstants = pushConstantSize
	return p
}

func (p *PipelineBuilder) Depth(test, write bool, compare vk.CompareOp) *PipelineBuilder {
	p.depthTest, p.depthWrite, p.depthCompare = test, write, compare
	return p
}

func (p *PipelineBuilder) AlphaBlend(enabled bool) *PipelineBuilder {
	p.blend = enabled
	return p
}

func (p *PipelineBuilder) Rasterizer(cull vk.CullModeFlagBits, front vk.FrontFace) *PipelineBuilder {
	p.cullMode, p.frontFace = cull, front
	return p
}

func (p *PipelineBuilder) validate() error {
	if !p.hasShaders {
		return errors.Wrapf(ErrIncomplete, "material %s has no shaders", p.name)
	}
	if !p.hasVertexInput {
		return errors.Wrapf(ErrIncomplete, "material %s has no vertex input", p.name)
	}
	if p.pushConstants%4 != 0 {
		return errors.Wrapf(ErrIncomplete, "material %s push constant size %d is not a multiple of 4", p.name, p.pushConstants)
	}
	return nil
}

func (p *PipelineBuilder) colorBlend() vk.PipelineColorBlendAttachmentState {
	state := vk.PipelineColorBlendAttachmentState{
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit |
			vk.ColorComponentBBit | vk.ColorComponentABit),
		BlendEnable: vk.False,
	}
	if p.blend {
		state.BlendEnable = vk.True
		state.SrcColorBlendFactor = vk.BlendFactorSrcAlpha
		state.DstColorBlendFactor = vk.BlendFactorOneMinusSrcAlpha
		state.ColorBlendOp = vk.BlendOpAdd
		state.SrcAlphaBlendFactor = vk.BlendFactorOne
		state.DstAlphaBlendFactor = vk.BlendFactorZero
		state.AlphaBlendOp = vk.BlendOpAdd
	}
	return state
}

func (p *PipelineBuilder) pushConstantRanges() []vk.PushConstantRange {
	if p.pushConstants == 0 {
		return nil
	}
	return []vk.PushConstantRange{{
		StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit | vk.ShaderStageFragmentBit),
		Offset:     0,
		Size:       p.pushConstants,
	}}
}

func bool32(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}

// Build creates the pipeline layout, a pipeline cache and the pipeline for
// subpass 0 of pass. Destruction is registered into scope.
func (p *PipelineBuilder) Build(device vk.Device, pass vk.RenderPass, scope *lifetime.Queue) (mat *Material, err error) {
	defer checkErr(&err)
	if err := p.validate(); err != nil {
		return nil, err
	}
	mat = &Material{Name: p.name}

	ranges := p.pushConstantRanges()
	ret := vk.CreatePipelineLayout(device, &vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         uint32(len(p.setLayouts)),
		PSetLayouts:            p.setLayouts,
		PushConstantRangeCount: uint32(len(ranges)),
		PPushConstantRanges:    ranges,
	}, nil, &mat.Layout)
	orPanic(errors.Wrapf(Result(ret, "create pipeline layout"), "material %s", p.name))
	layout := mat.Layout
	scope.Push(func() { vk.DestroyPipelineLayout(device, layout, nil) })

	ret = vk.CreatePipelineCache(device, &vk.PipelineCacheCreateInfo{
		SType: vk.StructureTypePipelineCacheCreateInfo,
	}, nil, &mat.Cache)
	orPanic(errors.Wrapf(Result(ret, "create pipeline cache"), "material %s", p.name))
	cache := mat.Cache
	scope.Push(func() { vk.DestroyPipelineCache(device, cache, nil) })

	stages := []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: p.vertex,
			PName:  safeString("main"),
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: p.fragment,
			PName:  safeString("main"),
		},
	}

	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(p.input.Bindings)),
		PVertexBindingDescriptions:      p.input.Bindings,
		VertexAttributeDescriptionCount: uint32(len(p.input.Attributes)),
		PVertexAttributeDescriptions:    p.input.Attributes,
	}
	assembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vk.False,
	}
	viewport := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}
	rasterizer := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		CullMode:                vk.CullModeFlags(p.cullMode),
		FrontFace:               p.frontFace,
		DepthBiasEnable:         vk.False,
		LineWidth:               1.0,
	}
	multisample := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCount1Bit,
		SampleShadingEnable:  vk.False,
		MinSampleShading:     1.0,
	}
	depth := vk.PipelineDepthStencilStateCreateInfo{
		SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:       bool32(p.depthTest),
		DepthWriteEnable:      bool32(p.depthWrite),
		DepthCompareOp:        p.depthCompare,
		DepthBoundsTestEnable: vk.False,
		StencilTestEnable:     vk.False,
		MinDepthBounds:        0.0,
		MaxDepthBounds:        1.0,
	}
	if !p.depthTest {
		depth.DepthCompareOp = vk.CompareOpAlways
	}
	blend := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{p.colorBlend()},
	}
	dynamics := []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor}
	dynamic := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamics)),
		PDynamicStates:    dynamics,
	}

	info := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &assembly,
		PViewportState:      &viewport,
		PRasterizationState: &rasterizer,
		PMultisampleState:   &multisample,
		PDepthStencilState:  &depth,
		PColorBlendState:    &blend,
		PDynamicState:       &dynamic,
		Layout:              mat.Layout,
		RenderPass:          pass,
		Subpass:             0,
		BasePipelineIndex:   -1,
	}
	pipelines := []vk.Pipeline{vk.NullPipeline}
	ret = vk.CreateGraphicsPipelines(device, mat.Cache, 1, []vk.GraphicsPipelineCreateInfo{info}, nil, pipelines)
	orPanic(errors.Wrapf(Result(ret, "create graphics pipeline"), "material %s", p.name))
	mat.Pipeline = pipelines[0]
	pipeline := mat.Pipeline
	scope.Push(func() { vk.DestroyPipeline(device, pipeline, nil) })
	return mat, nil
}
