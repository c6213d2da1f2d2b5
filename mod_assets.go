package flare

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var ErrAssetNotFound = errors.New("asset not found")

type AssetId string

type TextureAsset struct {
	version uint
	name    string
	image   *image.RGBA
}

func (t TextureAsset) Name() string {
	return t.name
}

func (t TextureAsset) Image() *image.RGBA {
	return t.image
}

func (t TextureAsset) Size() (width, height int) {
	b := t.image.Bounds()
	return b.Dx(), b.Dy()
}

type AssetServer struct {
	textures map[AssetId]TextureAsset
	meshes   map[AssetId]*AtlasMesh
}

type AssetServerModule struct{}

func (AssetServerModule) Install(app *App, cmd *Commands) {
	server := NewAssetServer()
	cmd.AddResources(server)
	cmd.OnClose(func() {
		released := server.ReleaseAll()
		if released > 0 {
			app.Logger().Debugf("Released %d meshes on shutdown", released)
		}
	})
}

func NewAssetServer() *AssetServer {
	return &AssetServer{
		textures: make(map[AssetId]TextureAsset),
		meshes:   make(map[AssetId]*AtlasMesh),
	}
}

// LoadTexture decodes a png, jpeg, bmp or webp file into an RGBA texture.
func (server *AssetServer) LoadTexture(filename string) (AssetId, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", fmt.Errorf("opening texture %s: %w", filename, err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return "", fmt.Errorf("decoding texture %s: %w", filename, err)
	}

	id := server.CreateTexture(filename+" ("+format+")", img)
	return id, nil
}

// CreateTexture stores img, converting it to RGBA when needed.
func (server *AssetServer) CreateTexture(name string, img image.Image) AssetId {
	id := makeAssetId()

	bounds := img.Bounds()
	rgbaImg, ok := img.(*image.RGBA)
	if !ok || bounds.Min != (image.Point{}) {
		rgbaImg = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgbaImg, rgbaImg.Bounds(), img, bounds.Min, draw.Src)
	}

	server.textures[id] = TextureAsset{
		version: 0,
		name:    name,
		image:   rgbaImg,
	}

	return id
}

// CreateSoftSprite generates a white radial sprite whose alpha falls off
// smoothly towards the edge.
func (server *AssetServer) CreateSoftSprite(size int) AssetId {
	if size <= 0 {
		size = 64
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	half := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := (float64(x) + 0.5 - half) / half
			dy := (float64(y) + 0.5 - half) / half
			d := math.Sqrt(dx*dx + dy*dy)
			a := 1 - d
			if a < 0 {
				a = 0
			}
			a = a * a
			img.SetRGBA(x, y, color.RGBA{255, 255, 255, uint8(a * 255)})
		}
	}
	return server.CreateTexture(fmt.Sprintf("soft sprite %dx%d", size, size), img)
}

// ResizeTexture replaces the texture with a bilinear-scaled copy and bumps
// its version so stages upload it again.
func (server *AssetServer) ResizeTexture(id AssetId, width, height int) error {
	tex, ok := server.textures[id]
	if !ok {
		return fmt.Errorf("texture %s: %w", id, ErrAssetNotFound)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("texture %s: invalid size %dx%d", id, width, height)
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), tex.image, tex.image.Bounds(), draw.Src, nil)
	tex.image = dst
	tex.version++
	server.textures[id] = tex
	return nil
}

func (server *AssetServer) Texture(id AssetId) (TextureAsset, error) {
	tex, ok := server.textures[id]
	if !ok {
		return TextureAsset{}, fmt.Errorf("texture %s: %w", id, ErrAssetNotFound)
	}
	return tex, nil
}

func (server *AssetServer) TextureCount() int {
	return len(server.textures)
}

// CreateAtlasMesh wraps a texture as a quad mesh whose texture is divided
// into cols x rows frames.
func (server *AssetServer) CreateAtlasMesh(texture AssetId, cols, rows int) (*AtlasMesh, error) {
	if _, ok := server.textures[texture]; !ok {
		return nil, fmt.Errorf("atlas texture %s: %w", texture, ErrAssetNotFound)
	}
	mesh := &AtlasMesh{
		id:      makeAssetId(),
		server:  server,
		texture: texture,
		cols:    cols,
		rows:    rows,
	}
	server.meshes[mesh.id] = mesh
	return mesh, nil
}

func (server *AssetServer) MeshCount() int {
	return len(server.meshes)
}

// ReleaseAll releases every mesh still alive and returns how many there were.
func (server *AssetServer) ReleaseAll() int {
	n := 0
	for _, mesh := range server.meshes {
		mesh.Release()
		n++
	}
	return n
}

func (server *AssetServer) releaseMesh(mesh *AtlasMesh) {
	delete(server.meshes, mesh.id)
	for _, other := range server.meshes {
		if other.texture == mesh.texture {
			return
		}
	}
	delete(server.textures, mesh.texture)
}

// AtlasMesh is the mesh handle shared by every particle of an emitter.
type AtlasMesh struct {
	id        AssetId
	server    *AssetServer
	texture   AssetId
	cols      int
	rows      int
	released  bool
	onRelease []func()
}

func (m *AtlasMesh) Atlas() (cols, rows int) {
	return m.cols, m.rows
}

func (m *AtlasMesh) Texture() AssetId {
	return m.texture
}

// TextureKey identifies the texture contents for stages that cache GPU
// resources. It changes when the texture is resized.
func (m *AtlasMesh) TextureKey() string {
	return fmt.Sprintf("%s@%d", m.texture, m.server.textures[m.texture].version)
}

// Image returns the texture pixels or nil once released.
func (m *AtlasMesh) Image() *image.RGBA {
	if m.released {
		return nil
	}
	tex, ok := m.server.textures[m.texture]
	if !ok {
		return nil
	}
	return tex.image
}

// OnRelease registers fn to run when the mesh is released. Stages use it to
// drop cached GPU resources.
func (m *AtlasMesh) OnRelease(fn func()) {
	m.onRelease = append(m.onRelease, fn)
}

func (m *AtlasMesh) Released() bool {
	return m.released
}

// Release drops the mesh and, when no other mesh uses it, its texture.
// Calling it again does nothing.
func (m *AtlasMesh) Release() {
	if m.released {
		return
	}
	m.released = true
	for _, fn := range m.onRelease {
		fn()
	}
	m.onRelease = nil
	m.server.releaseMesh(m)
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
