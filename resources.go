package framevk

import (
	"image"
	"image/color"
	"log/slog"

	"github.com/andewx/framevk/lifetime"
	"github.com/andewx/framevk/scene"
	"github.com/andewx/framevk/vkt"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

//go:generate glslc assets/shaders/opaque.vert -o assets/shaders/opaque.vert.spv
//go:generate glslc assets/shaders/opaque.frag -o assets/shaders/opaque.frag.spv
//go:generate glslc assets/shaders/post_process.vert -o assets/shaders/post_process.vert.spv
//go:generate glslc assets/shaders/post_process.frag -o assets/shaders/post_process.frag.spv

// Descriptor bindings, grouped by set.
const (
	bindingCamera = 0
	bindingScene  = 1

	bindingObjects = 0

	bindingLogo  = 0
	bindingFrame = 1
)

// sceneResources holds everything the draw phase binds: meshes, materials,
// the uniform and storage buffers and their descriptor sets. All of it lives
// in the device scope.
type sceneResources struct {
	dev *vkt.Device

	meshes    []*vkt.Mesh
	materials []*vkt.Material
	objects   []scene.RenderObject

	cameraBuf *vkt.Buffer
	sceneBuf  *vkt.Buffer
	objectBuf *vkt.Buffer

	globalSet  vk.DescriptorSet
	objectSet  vk.DescriptorSet
	textureSet vk.DescriptorSet

	logo    *vkt.Image
	linear  vk.Sampler
	nearest vk.Sampler
}

func newSceneResources(cfg Config, dev *vkt.Device, pass vk.RenderPass, scope *lifetime.Queue, logger *slog.Logger) (res *sceneResources, err error) {
	err = vkt.Guard(func() error {
		res = &sceneResources{dev: dev}
		if err := res.loadMeshes(cfg, scope); err != nil {
			return err
		}
		if err := res.loadLogo(cfg, scope); err != nil {
			return err
		}
		layouts, err := res.createDescriptors(scope)
		if err != nil {
			return err
		}
		if err := res.createMaterials(cfg, pass, layouts, scope); err != nil {
			return err
		}
		logger.Info("scene resources ready",
			"meshes", len(res.meshes), "materials", len(res.materials), "objects", len(res.objects))
		return nil
	})
	return res, err
}

func builtinMesh(name string) *vkt.MeshData {
	switch name {
	case MeshQuad:
		return vkt.Quad()
	case MeshTriangle:
		return vkt.Triangle()
	}
	return nil
}

// loadMeshes uploads the meshes the objects reference, in order of first
// use, and builds the object list.
func (r *sceneResources) loadMeshes(cfg Config, scope *lifetime.Queue) error {
	if len(cfg.Objects) > scene.MaxObjects {
		return errors.Wrapf(scene.ErrTooManyObjects, "%d configured", len(cfg.Objects))
	}
	ids := map[string]scene.MeshID{}
	for _, obj := range cfg.Objects {
		id, ok := ids[obj.Mesh]
		if !ok {
			data := builtinMesh(obj.Mesh)
			if data == nil {
				path, found := cfg.Meshes[obj.Mesh]
				if !found {
					return errors.Errorf("unknown mesh %q", obj.Mesh)
				}
				var err error
				if data, err = vkt.LoadOBJ(obj.Mesh, cfg.Asset(path)); err != nil {
					return err
				}
			}
			mesh, err := data.Upload(r.dev, scope)
			if err != nil {
				return err
			}
			id = scene.MeshID(len(r.meshes))
			ids[obj.Mesh] = id
			r.meshes = append(r.meshes, mesh)
		}

		material, err := materialID(obj.Material)
		if err != nil {
			return err
		}
		r.objects = append(r.objects, scene.RenderObject{
			Mesh:      id,
			Material:  material,
			Transform: scene.Rotation(obj.Rotate),
		})
	}
	return nil
}

func (r *sceneResources) loadLogo(cfg Config, scope *lifetime.Queue) error {
	var pixels *image.RGBA
	if cfg.Logo == "" {
		pixels = image.NewRGBA(image.Rect(0, 0, 1, 1))
		pixels.SetRGBA(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	} else {
		var err error
		if pixels, err = vkt.LoadImage(cfg.Asset(cfg.Logo)); err != nil {
			return err
		}
	}
	logo, err := vkt.UploadTexture(r.dev, "logo", pixels, logoFormat, scope)
	if err != nil {
		return err
	}
	r.logo = logo
	if r.linear, err = vkt.NewSampler(r.dev.Handle, vk.FilterLinear, scope); err != nil {
		return err
	}
	r.nearest, err = vkt.NewSampler(r.dev.Handle, vk.FilterNearest, scope)
	return err
}

func (r *sceneResources) createDescriptors(scope *lifetime.Queue) ([]vk.DescriptorSetLayout, error) {
	device := r.dev.Handle
	vertexFragment := vk.ShaderStageVertexBit | vk.ShaderStageFragmentBit

	global, err := (&vkt.LayoutBuilder{}).
		Add(bindingCamera, vk.DescriptorTypeUniformBuffer, vk.ShaderStageVertexBit).
		Add(bindingScene, vk.DescriptorTypeUniformBufferDynamic, vertexFragment).
		Build(device, scope)
	if err != nil {
		return nil, errors.Wrap(err, "global set layout")
	}
	objects, err := (&vkt.LayoutBuilder{}).
		Add(bindingObjects, vk.DescriptorTypeStorageBuffer, vk.ShaderStageVertexBit).
		Build(device, scope)
	if err != nil {
		return nil, errors.Wrap(err, "object set layout")
	}
	textures, err := (&vkt.LayoutBuilder{}).
		Add(bindingLogo, vk.DescriptorTypeCombinedImageSampler, vk.ShaderStageFragmentBit).
		Add(bindingFrame, vk.DescriptorTypeCombinedImageSampler, vk.ShaderStageFragmentBit).
		Build(device, scope)
	if err != nil {
		return nil, errors.Wrap(err, "texture set layout")
	}

	pool, err := vkt.NewDescriptorPool(device, 5, []vkt.PoolSize{
		{Type: vk.DescriptorTypeUniformBuffer, Count: 5},
		{Type: vk.DescriptorTypeUniformBufferDynamic, Count: 5},
		{Type: vk.DescriptorTypeStorageBuffer, Count: 5},
		{Type: vk.DescriptorTypeCombinedImageSampler, Count: 5},
	}, scope)
	if err != nil {
		return nil, err
	}
	for _, s := range []struct {
		set    *vk.DescriptorSet
		layout vk.DescriptorSetLayout
	}{{&r.globalSet, global}, {&r.objectSet, objects}, {&r.textureSet, textures}} {
		if *s.set, err = pool.Allocate(s.layout); err != nil {
			return nil, err
		}
	}

	if r.cameraBuf, err = vkt.NewBuffer(r.dev, scene.CameraDataSize, vk.BufferUsageUniformBufferBit, vkt.HostVisible, scope); err != nil {
		return nil, err
	}
	if r.sceneBuf, err = vkt.NewBuffer(r.dev, scene.SceneDataSize, vk.BufferUsageUniformBufferBit, vkt.HostVisible, scope); err != nil {
		return nil, err
	}
	if r.objectBuf, err = vkt.NewBuffer(r.dev, scene.ObjectDataSize*scene.MaxObjects, vk.BufferUsageStorageBufferBit, vkt.HostVisible, scope); err != nil {
		return nil, err
	}

	err = (&vkt.DescriptorWriter{}).
		Buffer(bindingCamera, vk.DescriptorTypeUniformBuffer, r.cameraBuf.Descriptor()).
		Buffer(bindingScene, vk.DescriptorTypeUniformBufferDynamic, r.sceneBuf.DescriptorRange(scene.SceneDataSize)).
		Update(device, r.globalSet)
	if err != nil {
		return nil, err
	}
	err = (&vkt.DescriptorWriter{}).
		Buffer(bindingObjects, vk.DescriptorTypeStorageBuffer, r.objectBuf.Descriptor()).
		Update(device, r.objectSet)
	if err != nil {
		return nil, err
	}
	err = (&vkt.DescriptorWriter{}).
		Image(bindingLogo, vk.DescriptorTypeCombinedImageSampler, vk.DescriptorImageInfo{
			Sampler:     r.linear,
			ImageView:   r.logo.View,
			ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		}).
		Update(device, r.textureSet)
	if err != nil {
		return nil, err
	}
	return []vk.DescriptorSetLayout{global, objects, textures}, nil
}

// bindFrame points the sampled frame binding at the post-process source.
// Nearest filtering keeps the identity pass exact.
func (r *sceneResources) bindFrame(source *vkt.Image) error {
	return (&vkt.DescriptorWriter{}).
		Image(bindingFrame, vk.DescriptorTypeCombinedImageSampler, vk.DescriptorImageInfo{
			Sampler:     r.nearest,
			ImageView:   source.View,
			ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		}).
		Update(r.dev.Handle, r.textureSet)
}

func materialID(name string) (scene.MaterialID, error) {
	switch name {
	case MaterialOpaque:
		return materialOpaque, nil
	case MaterialPostProcess:
		return materialPostProcess, nil
	}
	return 0, errors.Errorf("unknown material %q", name)
}

const (
	materialOpaque scene.MaterialID = iota
	materialPostProcess
)

func (r *sceneResources) createMaterials(cfg Config, pass vk.RenderPass, layouts []vk.DescriptorSetLayout, scope *lifetime.Queue) error {
	// shader modules are only needed until the pipelines exist
	shaders := lifetime.New("shader modules")
	defer shaders.Flush()

	load := func(name string) (vk.ShaderModule, vk.ShaderModule, error) {
		vert, err := vkt.LoadShaderModule(r.dev.Handle, cfg.Shader(name+".vert"), shaders)
		if err != nil {
			return nil, nil, err
		}
		frag, err := vkt.LoadShaderModule(r.dev.Handle, cfg.Shader(name+".frag"), shaders)
		return vert, frag, err
	}
	pushSize := uint32(scene.PushConstantsSize)

	vert, frag, err := load(MaterialOpaque)
	if err != nil {
		return err
	}
	opaque, err := vkt.NewPipelineBuilder(MaterialOpaque).
		Shaders(vert, frag).
		VertexInput(vkt.VertexDescription()).
		Layout(layouts, pushSize).
		Depth(true, true, vk.CompareOpLessOrEqual).
		AlphaBlend(true).
		Build(r.dev.Handle, pass, scope)
	if err != nil {
		return err
	}

	vert, frag, err = load(MaterialPostProcess)
	if err != nil {
		return err
	}
	post, err := vkt.NewPipelineBuilder(MaterialPostProcess).
		Shaders(vert, frag).
		VertexInput(vkt.VertexDescription()).
		Layout(layouts, pushSize).
		Depth(false, false, vk.CompareOpAlways).
		AlphaBlend(false).
		Build(r.dev.Handle, pass, scope)
	if err != nil {
		return err
	}

	opaque.TextureSet = r.textureSet
	post.TextureSet = r.textureSet
	r.materials = make([]*vkt.Material, 2)
	r.materials[materialOpaque] = opaque
	r.materials[materialPostProcess] = post
	return nil
}
