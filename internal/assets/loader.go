package assets

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/modelview/gpucore"
	"github.com/gogpu/modelview/internal/logging"
	"github.com/gogpu/modelview/scene"
)

// ErrNilDestination is returned when a load is requested into a nil
// pointer.
var ErrNilDestination = errors.New("assets: nil destination")

// DefaultWorkers bounds concurrent file decoding.
const DefaultWorkers = 4

type textureJob struct {
	path string
	dst  *gpucore.TextureID
	data *ImageData
}

type meshJob struct {
	path string
	dst  *scene.Mesh
	data *MeshData
}

// Loader batches asset loads. LoadMesh and LoadTexture start decoding in
// the background; WaitAll waits for decoding and creates the GPU objects.
type Loader struct {
	dev gpucore.Device

	group *errgroup.Group
	ctx   context.Context

	mu       sync.Mutex
	textures []*textureJob
	meshes   []*meshJob
}

// NewLoader returns a loader that creates resources on dev.
func NewLoader(dev gpucore.Device) *Loader {
	l := &Loader{dev: dev}
	l.reset()
	return l
}

func (l *Loader) reset() {
	l.group, l.ctx = errgroup.WithContext(context.Background())
	l.group.SetLimit(DefaultWorkers)
	l.textures = nil
	l.meshes = nil
}

// LoadTexture schedules the image at path to be loaded into dst.
func (l *Loader) LoadTexture(path string, dst *gpucore.TextureID) {
	job := &textureJob{path: path, dst: dst}
	l.mu.Lock()
	l.textures = append(l.textures, job)
	l.mu.Unlock()

	l.group.Go(func() error {
		if dst == nil {
			return fmt.Errorf("%w: texture %s", ErrNilDestination, path)
		}
		if err := l.ctx.Err(); err != nil {
			return err
		}
		img, err := OpenImage(path)
		if err != nil {
			return fmt.Errorf("assets: load texture %s: %w", path, err)
		}
		job.data = img
		return nil
	})
}

// LoadMesh schedules the mesh at path to be loaded into dst.
func (l *Loader) LoadMesh(path string, dst *scene.Mesh) {
	job := &meshJob{path: path, dst: dst}
	l.mu.Lock()
	l.meshes = append(l.meshes, job)
	l.mu.Unlock()

	l.group.Go(func() error {
		if dst == nil {
			return fmt.Errorf("%w: mesh %s", ErrNilDestination, path)
		}
		if err := l.ctx.Err(); err != nil {
			return err
		}
		m, err := OpenMesh(path)
		if err != nil {
			return fmt.Errorf("assets: load mesh %s: %w", path, err)
		}
		job.data = m
		return nil
	})
}

// WaitAll waits for every scheduled load and creates its GPU objects. On
// error no destination is written and objects already created by this
// call are destroyed. The loader can be reused afterwards.
func (l *Loader) WaitAll() error {
	err := l.group.Wait()

	l.mu.Lock()
	textures, meshes := l.textures, l.meshes
	l.reset()
	l.mu.Unlock()

	if err != nil {
		return err
	}

	var (
		createdTex  = make([]gpucore.TextureID, len(textures))
		createdMesh = make([]scene.Mesh, len(meshes))
	)
	rollback := func() {
		for _, t := range createdTex {
			if t != gpucore.InvalidID {
				l.dev.DestroyTexture(t)
			}
		}
		for _, m := range createdMesh {
			if m != nil {
				m.Destroy(l.dev)
			}
		}
	}

	for i, job := range textures {
		id, err := CreateTexture(l.dev, filepath.Base(job.path), job.data)
		if err != nil {
			rollback()
			return fmt.Errorf("assets: create texture %s: %w", job.path, err)
		}
		createdTex[i] = id
	}
	for i, job := range meshes {
		m, err := CreateMesh(l.dev, filepath.Base(job.path), job.data)
		if err != nil {
			rollback()
			return fmt.Errorf("assets: create mesh %s: %w", job.path, err)
		}
		createdMesh[i] = m
	}

	for i, job := range textures {
		*job.dst = createdTex[i]
	}
	for i, job := range meshes {
		*job.dst = createdMesh[i]
	}
	logging.L().Debug("assets: loaded", "textures", len(textures), "meshes", len(meshes))
	return nil
}

// CreateTexture uploads img as an RGBA8 texture.
func CreateTexture(dev gpucore.Device, label string, img *ImageData) (gpucore.TextureID, error) {
	return dev.CreateTexture(&gpucore.TextureDesc{
		Label:  label,
		Width:  img.Width,
		Height: img.Height,
		Format: gpucore.TextureFormatRGBA8Unorm,
		Data:   img.Pixels,
	})
}

// CreateMesh uploads m. Raw data becomes a *scene.Raw, anything else a
// *scene.Preprocessed that keeps the CPU copy.
func CreateMesh(dev gpucore.Device, label string, m *MeshData) (scene.Mesh, error) {
	vb, err := dev.CreateBuffer(&gpucore.BufferDesc{
		Label: label + " vertices",
		Size:  uint64(len(m.Vertices)),
		Usage: gpucore.BufferUsageVertex | gpucore.BufferUsageCopyDst,
		Data:  m.Vertices,
	})
	if err != nil {
		return nil, err
	}
	ib, err := dev.CreateBuffer(&gpucore.BufferDesc{
		Label: label + " indices",
		Size:  uint64(len(m.Indices)),
		Usage: gpucore.BufferUsageIndex | gpucore.BufferUsageCopyDst,
		Data:  m.Indices,
	})
	if err != nil {
		dev.DestroyBuffer(vb)
		return nil, err
	}

	if m.Raw {
		return &scene.Raw{
			VertexBuffer: vb,
			Index:        ib,
			Count:        uint32(m.IndexCount()),
		}, nil
	}
	return &scene.Preprocessed{
		Geometry: &scene.Geometry{
			VertexBuffers: []gpucore.BufferID{vb},
			IndexBuffer:   ib,
			IndexCount:    uint32(m.IndexCount()),
			IndexFormat:   m.IndexFormat,
		},
		Data: &scene.GeometryData{
			Vertices: m.Vertices,
			Indices:  m.Indices,
		},
	}, nil
}
