package gpu

import (
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/flare/particle"
)

// quadVertex matches the WGSL VertexInput.
type quadVertex struct {
	Pos [2]float32
	UV  [2]float32
}

// unitQuad is a camera-facing quad centered on the origin, two triangles.
// V grows downwards in texture space.
var unitQuad = []quadVertex{
	{Pos: [2]float32{-0.5, -0.5}, UV: [2]float32{0, 1}},
	{Pos: [2]float32{0.5, -0.5}, UV: [2]float32{1, 1}},
	{Pos: [2]float32{0.5, 0.5}, UV: [2]float32{1, 0}},
	{Pos: [2]float32{-0.5, -0.5}, UV: [2]float32{0, 1}},
	{Pos: [2]float32{0.5, 0.5}, UV: [2]float32{1, 0}},
	{Pos: [2]float32{-0.5, 0.5}, UV: [2]float32{0, 0}},
}

// instanceData matches the WGSL InstanceInput.
type instanceData struct {
	ModelView mgl32.Mat4
	Offset    [2]float32
	_         [2]float32
}

const instanceStride = uint64(unsafe.Sizeof(instanceData{}))

// drawUniforms matches the WGSL DrawUniforms.
type drawUniforms struct {
	Proj  mgl32.Mat4
	Atlas [4]float32
}

// uniformSlot is the stride between per-draw uniforms. It satisfies the
// default minUniformBufferOffsetAlignment.
const uniformSlot = 256

const uniformSize = uint64(unsafe.Sizeof(drawUniforms{}))

func appendInstances(dst []instanceData, src []particle.Instance) []instanceData {
	for _, in := range src {
		dst = append(dst, instanceData{
			ModelView: in.ModelView,
			Offset:    [2]float32{in.Offset.X(), in.Offset.Y()},
		})
	}
	return dst
}

// appendUniforms writes one slot-aligned drawUniforms and returns its offset.
func appendUniforms(dst []byte, proj mgl32.Mat4, cols, rows int) ([]byte, uint32) {
	offset := uint32(len(dst))
	if cols <= 0 {
		cols = 1
	}
	if rows <= 0 {
		rows = 1
	}
	u := drawUniforms{Proj: proj, Atlas: [4]float32{float32(cols), float32(rows), 0, 0}}
	dst = append(dst, unsafe.Slice((*byte)(unsafe.Pointer(&u)), uniformSize)...)
	for i := uniformSize; i < uniformSlot; i++ {
		dst = append(dst, 0)
	}
	return dst, offset
}

// pipelineKey selects one of the lazily created pipelines.
type pipelineKey struct {
	blend      particle.BlendMode
	depthWrite bool
}

func blendState(mode particle.BlendMode) *wgpu.BlendState {
	switch mode {
	case particle.BlendAlpha:
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			},
			Alpha: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			},
		}
	case particle.BlendAdditive:
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOne,
			},
			Alpha: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOne,
			},
		}
	}
	return nil
}

func depthStencilState(depthWrite bool) *wgpu.DepthStencilState {
	keep := wgpu.StencilFaceState{
		Compare:     wgpu.CompareFunctionAlways,
		FailOp:      wgpu.StencilOperationKeep,
		DepthFailOp: wgpu.StencilOperationKeep,
		PassOp:      wgpu.StencilOperationKeep,
	}
	return &wgpu.DepthStencilState{
		Format:            DepthFormat,
		DepthWriteEnabled: depthWrite,
		DepthCompare:      wgpu.CompareFunctionLess,
		StencilFront:      keep,
		StencilBack:       keep,
		StencilReadMask:   0xFFFFFFFF,
		StencilWriteMask:  0xFFFFFFFF,
	}
}
