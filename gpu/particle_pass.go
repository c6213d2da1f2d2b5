package gpu

import (
	"errors"
	"fmt"
	"image"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/flare/gpu/shaders"
	"github.com/gekko3d/flare/particle"
)

var (
	// ErrUnsupportedMesh is returned by Draw for meshes that expose no texture.
	ErrUnsupportedMesh = errors.New("mesh has no texture")
	errNoFrame         = errors.New("draw outside of a frame")
)

// TexturedMesh is what ParticlePass needs from a mesh handle.
type TexturedMesh interface {
	particle.Mesh
	TextureKey() string
	Image() *image.RGBA
}

type releaseNotifier interface {
	OnRelease(fn func())
}

type spriteTexture struct {
	texture   *wgpu.Texture
	view      *wgpu.TextureView
	bindGroup *wgpu.BindGroup
}

func (t *spriteTexture) release() {
	if t.bindGroup != nil {
		t.bindGroup.Release()
	}
	if t.view != nil {
		t.view.Release()
	}
	if t.texture != nil {
		t.texture.Release()
	}
}

type drawCmd struct {
	key           pipelineKey
	texture       string
	uniformOffset uint32
	firstInstance uint32
	instanceCount uint32
}

// ParticlePass draws particle batches as instanced quads into the surface.
// Draw only records; the frame is encoded and submitted in EndFrame.
type ParticlePass struct {
	ctx *Context

	ClearColor wgpu.Color

	shader         *wgpu.ShaderModule
	uniformLayout  *wgpu.BindGroupLayout
	textureLayout  *wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
	pipelines      map[pipelineKey]*wgpu.RenderPipeline
	sampler        *wgpu.Sampler
	textures       map[string]*spriteTexture

	quadBuffer      *wgpu.Buffer
	instanceBuffer  *wgpu.Buffer
	instanceCap     uint64
	uniformBuffer   *wgpu.Buffer
	uniformCap      uint64
	uniformBindGrp  *wgpu.BindGroup

	depthWrite bool
	blend      particle.BlendMode

	inFrame   bool
	surface   *wgpu.Texture
	view      *wgpu.TextureView
	instances []instanceData
	uniforms  []byte
	draws     []drawCmd
}

func NewParticlePass(ctx *Context) (*ParticlePass, error) {
	p := &ParticlePass{
		ctx:        ctx,
		ClearColor: wgpu.Color{R: 0.02, G: 0.02, B: 0.04, A: 1},
		pipelines:  make(map[pipelineKey]*wgpu.RenderPipeline),
		textures:   make(map[string]*spriteTexture),
		depthWrite: true,
		blend:      particle.BlendNone,
	}

	var err error
	p.shader, err = ctx.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "ParticleShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.ParticlesWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("creating particle shader: %w", err)
	}

	p.uniformLayout, err = ctx.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "ParticleUniformBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					MinBindingSize:   uniformSize,
					HasDynamicOffset: true,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating uniform layout: %w", err)
	}

	p.textureLayout, err = ctx.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "ParticleTextureBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
					Multisampled:  false,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating texture layout: %w", err)
	}

	p.pipelineLayout, err = ctx.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{
			p.uniformLayout,
			p.textureLayout,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating pipeline layout: %w", err)
	}

	p.sampler, err = ctx.Device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("creating sampler: %w", err)
	}

	p.quadBuffer, err = ctx.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "ParticleQuad",
		Contents: wgpu.ToBytes(unitQuad),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return nil, fmt.Errorf("creating quad buffer: %w", err)
	}

	return p, nil
}

func (p *ParticlePass) DepthWrite() bool {
	return p.depthWrite
}

func (p *ParticlePass) SetDepthWrite(enabled bool) {
	p.depthWrite = enabled
}

func (p *ParticlePass) Blend() particle.BlendMode {
	return p.blend
}

func (p *ParticlePass) SetBlend(mode particle.BlendMode) {
	p.blend = mode
}

// BeginFrame acquires the next surface texture. view and projection are not
// needed here since every batch carries its own matrices.
func (p *ParticlePass) BeginFrame(view, projection mgl32.Mat4) error {
	if p.inFrame {
		return errors.New("frame already begun")
	}
	surfaceTexture, err := p.ctx.Surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("acquiring surface texture: %w", err)
	}
	surfaceView, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return fmt.Errorf("creating surface view: %w", err)
	}
	p.surface = surfaceTexture
	p.view = surfaceView
	p.inFrame = true
	p.instances = p.instances[:0]
	p.uniforms = p.uniforms[:0]
	p.draws = p.draws[:0]
	return nil
}

// Draw records batch with the current blend and depth state.
func (p *ParticlePass) Draw(batch particle.Batch) error {
	if !p.inFrame {
		return errNoFrame
	}
	if len(batch.Instances) == 0 {
		return nil
	}
	mesh, ok := batch.Mesh.(TexturedMesh)
	if !ok {
		return fmt.Errorf("%T: %w", batch.Mesh, ErrUnsupportedMesh)
	}
	key := pipelineKey{blend: p.blend, depthWrite: p.depthWrite}
	if _, err := p.pipeline(key); err != nil {
		return err
	}
	if _, err := p.texture(mesh); err != nil {
		return err
	}

	var uniformOffset uint32
	p.uniforms, uniformOffset = appendUniforms(p.uniforms, batch.Projection, batch.Cols, batch.Rows)

	first := uint32(len(p.instances))
	p.instances = appendInstances(p.instances, batch.Instances)
	p.draws = append(p.draws, drawCmd{
		key:           key,
		texture:       mesh.TextureKey(),
		uniformOffset: uniformOffset,
		firstInstance: first,
		instanceCount: uint32(len(batch.Instances)),
	})
	return nil
}

// EndFrame uploads the recorded instances, encodes one render pass and
// presents.
func (p *ParticlePass) EndFrame() error {
	if !p.inFrame {
		return errNoFrame
	}
	defer p.endFrame()

	if err := p.upload(); err != nil {
		return err
	}

	encoder, err := p.ctx.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("creating command encoder: %w", err)
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       p.view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: p.ClearColor,
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            p.ctx.DepthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})

	if len(p.draws) > 0 {
		pass.SetVertexBuffer(0, p.quadBuffer, 0, p.quadBuffer.GetSize())
		pass.SetVertexBuffer(1, p.instanceBuffer, 0, p.instanceBuffer.GetSize())
	}
	for _, d := range p.draws {
		pass.SetPipeline(p.pipelines[d.key])
		pass.SetBindGroup(0, p.uniformBindGrp, []uint32{d.uniformOffset})
		pass.SetBindGroup(1, p.textures[d.texture].bindGroup, nil)
		pass.Draw(uint32(len(unitQuad)), d.instanceCount, 0, d.firstInstance)
	}

	if err := pass.End(); err != nil {
		return fmt.Errorf("ending particle pass: %w", err)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finishing command encoder: %w", err)
	}
	defer cmd.Release()
	p.ctx.Queue.Submit(cmd)
	p.ctx.Surface.Present()
	return nil
}

func (p *ParticlePass) endFrame() {
	p.inFrame = false
	if p.view != nil {
		p.view.Release()
		p.view = nil
	}
	if p.surface != nil {
		p.surface.Release()
		p.surface = nil
	}
}

func (p *ParticlePass) upload() error {
	if len(p.draws) == 0 {
		return nil
	}

	instanceBytes := uint64(len(p.instances)) * instanceStride
	if p.instanceBuffer == nil || p.instanceCap < instanceBytes {
		if p.instanceBuffer != nil {
			p.instanceBuffer.Release()
		}
		p.instanceCap = instanceBytes * 2
		var err error
		p.instanceBuffer, err = p.ctx.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "ParticleInstances",
			Size:  p.instanceCap,
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("creating instance buffer: %w", err)
		}
	}

	uniformBytes := uint64(len(p.uniforms))
	if p.uniformBuffer == nil || p.uniformCap < uniformBytes {
		if p.uniformBindGrp != nil {
			p.uniformBindGrp.Release()
			p.uniformBindGrp = nil
		}
		if p.uniformBuffer != nil {
			p.uniformBuffer.Release()
		}
		p.uniformCap = uniformBytes * 2
		var err error
		p.uniformBuffer, err = p.ctx.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "ParticleUniforms",
			Size:  p.uniformCap,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("creating uniform buffer: %w", err)
		}
		p.uniformBindGrp, err = p.ctx.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  "ParticleUniformBG",
			Layout: p.uniformLayout,
			Entries: []wgpu.BindGroupEntry{
				{
					Binding: 0,
					Buffer:  p.uniformBuffer,
					Size:    uniformSize,
				},
			},
		})
		if err != nil {
			return fmt.Errorf("creating uniform bind group: %w", err)
		}
	}
	return writeFrameBuffers(p.ctx.Queue, p.instanceBuffer, p.instances, p.uniformBuffer, p.uniforms)
}

type bufferWriter interface {
	WriteBuffer(buffer *wgpu.Buffer, offset uint64, data []byte) error
}

// writeFrameBuffers copies the recorded instances and uniforms into their
// GPU buffers.
func writeFrameBuffers(q bufferWriter, instanceBuf *wgpu.Buffer, instances []instanceData, uniformBuf *wgpu.Buffer, uniforms []byte) error {
	if len(instances) > 0 {
		data := unsafe.Slice((*byte)(unsafe.Pointer(&instances[0])), uint64(len(instances))*instanceStride)
		if err := q.WriteBuffer(instanceBuf, 0, data); err != nil {
			return fmt.Errorf("writing instance buffer: %w", err)
		}
	}
	if len(uniforms) > 0 {
		if err := q.WriteBuffer(uniformBuf, 0, uniforms); err != nil {
			return fmt.Errorf("writing uniform buffer: %w", err)
		}
	}
	return nil
}

func (p *ParticlePass) pipeline(key pipelineKey) (*wgpu.RenderPipeline, error) {
	if pl, ok := p.pipelines[key]; ok {
		return pl, nil
	}

	pl, err := p.ctx.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("ParticlePipeline/%s/depthWrite=%v", key.blend, key.depthWrite),
		Layout: p.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: uint64(unsafe.Sizeof(quadVertex{})),
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
						{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
					},
				},
				{
					ArrayStride: instanceStride,
					StepMode:    wgpu.VertexStepModeInstance,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 2},
						{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 3},
						{Format: wgpu.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 4},
						{Format: wgpu.VertexFormatFloat32x4, Offset: 48, ShaderLocation: 5},
						{Format: wgpu.VertexFormatFloat32x2, Offset: 64, ShaderLocation: 6},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    p.ctx.Format(),
					Blend:     blendState(key.blend),
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		DepthStencil: depthStencilState(key.depthWrite),
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating pipeline %s: %w", key.blend, err)
	}
	p.pipelines[key] = pl
	return pl, nil
}

// texture uploads the mesh texture on first use. Meshes that announce their
// release drop the GPU copy with them.
func (p *ParticlePass) texture(mesh TexturedMesh) (*spriteTexture, error) {
	key := mesh.TextureKey()
	if t, ok := p.textures[key]; ok {
		return t, nil
	}
	img := mesh.Image()
	if img == nil {
		return nil, fmt.Errorf("texture %s: %w", key, ErrUnsupportedMesh)
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	extent := wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1}
	t := &spriteTexture{}
	var err error
	t.texture, err = p.ctx.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "ParticleSprite",
		Size:          extent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("creating texture %s: %w", key, err)
	}
	err = p.ctx.Queue.WriteTexture(t.texture.AsImageCopy(), img.Pix, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(img.Stride),
		RowsPerImage: uint32(h),
	}, &extent)
	if err != nil {
		t.release()
		return nil, fmt.Errorf("uploading texture %s: %w", key, err)
	}
	t.view, err = t.texture.CreateView(nil)
	if err != nil {
		t.release()
		return nil, fmt.Errorf("creating texture view %s: %w", key, err)
	}
	t.bindGroup, err = p.ctx.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "ParticleTextureBG",
		Layout: p.textureLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: t.view},
			{Binding: 1, Sampler: p.sampler},
		},
	})
	if err != nil {
		t.release()
		return nil, fmt.Errorf("creating texture bind group %s: %w", key, err)
	}

	p.textures[key] = t
	if n, ok := mesh.(releaseNotifier); ok {
		n.OnRelease(func() { p.dropTexture(key) })
	}
	return t, nil
}

func (p *ParticlePass) dropTexture(key string) {
	t, ok := p.textures[key]
	if !ok {
		return
	}
	delete(p.textures, key)
	t.release()
}

func (p *ParticlePass) TextureCount() int {
	return len(p.textures)
}

func (p *ParticlePass) Release() {
	for key := range p.textures {
		p.dropTexture(key)
	}
	for key, pl := range p.pipelines {
		pl.Release()
		delete(p.pipelines, key)
	}
	if p.uniformBindGrp != nil {
		p.uniformBindGrp.Release()
	}
	if p.uniformBuffer != nil {
		p.uniformBuffer.Release()
	}
	if p.instanceBuffer != nil {
		p.instanceBuffer.Release()
	}
	p.quadBuffer.Release()
	p.sampler.Release()
	p.pipelineLayout.Release()
	p.textureLayout.Release()
	p.uniformLayout.Release()
	p.shader.Release()
}
