package vkt

import (
	"github.com/andewx/framevk/lifetime"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// LayoutBuilder collects the bindings of one descriptor set layout.
type LayoutBuilder struct {
	bindings []vk.DescriptorSetLayoutBinding
}

func (b *LayoutBuilder) Add(binding uint32, typ vk.DescriptorType, stages vk.ShaderStageFlagBits) *LayoutBuilder {
	b.bindings = append(b.bindings, vk.DescriptorSetLayoutBinding{
		Binding:         binding,
		DescriptorType:  typ,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(stages),
	})
	return b
}

func (b *LayoutBuilder) validate() error {
	if len(b.bindings) == 0 {
		return errors.Wrap(ErrIncomplete, "descriptor layout without bindings")
	}
	seen := map[uint32]bool{}
	for _, binding := range b.bindings {
		if seen[binding.Binding] {
			return errors.Wrapf(ErrIncomplete, "binding %d declared twice", binding.Binding)
		}
		seen[binding.Binding] = true
		if binding.StageFlags == 0 {
			return errors.Wrapf(ErrIncomplete, "binding %d has no shader stage", binding.Binding)
		}
	}
	return nil
}

func (b *LayoutBuilder) Build(device vk.Device, scope *lifetime.Queue) (vk.DescriptorSetLayout, error) {
	var layout vk.DescriptorSetLayout
	if err := b.validate(); err != nil {
		return layout, err
	}
	ret := vk.CreateDescriptorSetLayout(device, &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(b.bindings)),
		PBindings:    b.bindings,
	}, nil, &layout)
	if isError(ret) {
		return layout, errors.Wrap(NewError(ret), "create descriptor set layout")
	}
	scope.Push(func() { vk.DestroyDescriptorSetLayout(device, layout, nil) })
	return layout, nil
}

type PoolSize struct {
	Type  vk.DescriptorType
	Count uint32
}

type DescriptorPool struct {
	device vk.Device
	pool   vk.DescriptorPool
}

func NewDescriptorPool(device vk.Device, maxSets uint32, sizes []PoolSize, scope *lifetime.Queue) (*DescriptorPool, error) {
	if maxSets == 0 || len(sizes) == 0 {
		return nil, errors.Wrap(ErrIncomplete, "descriptor pool without sets or sizes")
	}
	poolSizes := make([]vk.DescriptorPoolSize, len(sizes))
	for i, s := range sizes {
		poolSizes[i] = vk.DescriptorPoolSize{Type: s.Type, DescriptorCount: s.Count}
	}
	p := &DescriptorPool{device: device}
	ret := vk.CreateDescriptorPool(device, &vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       maxSets,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
	}, nil, &p.pool)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "create descriptor pool")
	}
	pool := p.pool
	scope.Push(func() { vk.DestroyDescriptorPool(device, pool, nil) })
	return p, nil
}

//Allocates one set, sets are released with the pool
func (p *DescriptorPool) Allocate(layout vk.DescriptorSetLayout) (vk.DescriptorSet, error) {
	var set vk.DescriptorSet
	ret := vk.AllocateDescriptorSets(p.device, &vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     p.pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{layout},
	}, &set)
	if isError(ret) {
		return set, errors.Wrap(NewError(ret), "allocate descriptor set")
	}
	return set, nil
}

type pendingWrite struct {
	binding uint32
	typ     vk.DescriptorType
	buffer  *vk.DescriptorBufferInfo
	image   *vk.DescriptorImageInfo
}

// DescriptorWriter batches buffer and image writes into one update.
type DescriptorWriter struct {
	pending []pendingWrite
}

func (w *DescriptorWriter) Buffer(binding uint32, typ vk.DescriptorType, info vk.DescriptorBufferInfo) *DescriptorWriter {
	w.pending = append(w.pending, pendingWrite{binding: binding, typ: typ, buffer: &info})
	return w
}

func (w *DescriptorWriter) Image(binding uint32, typ vk.DescriptorType, info vk.DescriptorImageInfo) *DescriptorWriter {
	w.pending = append(w.pending, pendingWrite{binding: binding, typ: typ, image: &info})
	return w
}

func isImageDescriptor(typ vk.DescriptorType) bool {
	switch typ {
	case vk.DescriptorTypeSampler, vk.DescriptorTypeCombinedImageSampler, vk.DescriptorTypeSampledImage,
		vk.DescriptorTypeStorageImage, vk.DescriptorTypeInputAttachment:
		return true
	}
	return false
}

func (w *DescriptorWriter) build(set vk.DescriptorSet) ([]vk.WriteDescriptorSet, error) {
	if len(w.pending) == 0 {
		return nil, errors.Wrap(ErrIncomplete, "descriptor writer without writes")
	}
	writes := make([]vk.WriteDescriptorSet, 0, len(w.pending))
	for _, p := range w.pending {
		write := vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      p.binding,
			DescriptorCount: 1,
			DescriptorType:  p.typ,
		}
		if isImageDescriptor(p.typ) {
			if p.image == nil {
				return nil, errors.Wrapf(ErrIncomplete, "binding %d needs image info", p.binding)
			}
			write.PImageInfo = []vk.DescriptorImageInfo{*p.image}
		} else {
			if p.buffer == nil {
				return nil, errors.Wrapf(ErrIncomplete, "binding %d needs buffer info", p.binding)
			}
			write.PBufferInfo = []vk.DescriptorBufferInfo{*p.buffer}
		}
		writes = append(writes, write)
	}
	return writes, nil
}

// Update applies every pending write to set.
func (w *DescriptorWriter) Update(device vk.Device, set vk.DescriptorSet) error {
	writes, err := w.build(set)
	if err != nil {
		return err
	}
	vk.UpdateDescriptorSets(device, uint32(len(writes)), writes, 0, nil)
	return nil
}
