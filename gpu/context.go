package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

const DepthFormat = wgpu.TextureFormatDepth24Plus

// Context owns the WebGPU device, the configured surface and a depth buffer
// matching the surface size.
type Context struct {
	Instance *wgpu.Instance
	Surface  *wgpu.Surface
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Config   *wgpu.SurfaceConfiguration

	DepthTexture *wgpu.Texture
	DepthView    *wgpu.TextureView
}

// NewContext creates a device for the surface described by desc and
// configures it with vsync.
func NewContext(desc *wgpu.SurfaceDescriptor, width, height int) (*Context, error) {
	c := &Context{}
	c.Instance = wgpu.CreateInstance(nil)

	c.Surface = c.Instance.CreateSurface(desc)

	adapter, err := c.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: c.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		c.Release()
		return nil, fmt.Errorf("requesting adapter: %w", err)
	}
	c.Adapter = adapter

	c.Device, err = adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "flare device",
	})
	if err != nil {
		c.Release()
		return nil, fmt.Errorf("requesting device: %w", err)
	}
	c.Queue = c.Device.GetQueue()

	caps := c.Surface.GetCapabilities(adapter)
	if len(caps.Formats) == 0 || len(caps.AlphaModes) == 0 {
		c.Release()
		return nil, fmt.Errorf("surface reports no formats")
	}
	c.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	c.Surface.Configure(adapter, c.Device, c.Config)

	if err := c.createDepth(); err != nil {
		c.Release()
		return nil, err
	}
	return c, nil
}

func (c *Context) Format() wgpu.TextureFormat {
	return c.Config.Format
}

// Resize reconfigures the surface and recreates the depth buffer. Zero sizes
// (minimized windows) are ignored.
func (c *Context) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	if uint32(width) == c.Config.Width && uint32(height) == c.Config.Height {
		return nil
	}
	c.Config.Width = uint32(width)
	c.Config.Height = uint32(height)
	c.Surface.Configure(c.Adapter, c.Device, c.Config)
	return c.createDepth()
}

func (c *Context) createDepth() error {
	if c.DepthView != nil {
		c.DepthView.Release()
		c.DepthView = nil
	}
	if c.DepthTexture != nil {
		c.DepthTexture.Release()
		c.DepthTexture = nil
	}

	var err error
	c.DepthTexture, err = c.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth",
		Size:          wgpu.Extent3D{Width: c.Config.Width, Height: c.Config.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("creating depth texture: %w", err)
	}
	c.DepthView, err = c.DepthTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("creating depth view: %w", err)
	}
	return nil
}

func (c *Context) Release() {
	if c.DepthView != nil {
		c.DepthView.Release()
	}
	if c.DepthTexture != nil {
		c.DepthTexture.Release()
	}
	if c.Queue != nil {
		c.Queue.Release()
	}
	if c.Device != nil {
		c.Device.Release()
	}
	if c.Adapter != nil {
		c.Adapter.Release()
	}
	if c.Surface != nil {
		c.Surface.Release()
	}
	if c.Instance != nil {
		c.Instance.Release()
	}
	*c = Context{}
}
