// Package shaders holds the WGSL sources of the viewer's render systems.
//
// Sources are embedded at build time. When an override directory is set,
// a file with the same name found there replaces the embedded copy, which
// is how shader hot reload picks up edits.
package shaders

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Shader names.
const (
	Basic  = "basic"
	SkyBox = "skybox"
)

// Ext is the file extension of shader sources.
const Ext = ".wgsl"

//go:embed basic.wgsl
var basicSource string

//go:embed skybox.wgsl
var skyboxSource string

// ErrUnknown is returned for a shader name that has no embedded source.
var ErrUnknown = errors.New("shaders: unknown shader")

var embedded = map[string]string{
	Basic:  basicSource,
	SkyBox: skyboxSource,
}

// Library resolves shader sources by name.
type Library struct {
	mu  sync.RWMutex
	dir string
}

// NewLibrary returns a library that prefers files in dir over embedded
// sources. An empty dir uses embedded sources only.
func NewLibrary(dir string) *Library {
	return &Library{dir: dir}
}

// Dir returns the override directory.
func (l *Library) Dir() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.dir
}

// SetDir changes the override directory.
func (l *Library) SetDir(dir string) {
	l.mu.Lock()
	l.dir = dir
	l.mu.Unlock()
}

// Source returns the WGSL source of the named shader.
func (l *Library) Source(name string) (string, error) {
	src, ok := embedded[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	dir := l.Dir()
	if dir == "" {
		return src, nil
	}
	data, err := os.ReadFile(filepath.Join(dir, name+Ext))
	switch {
	case err == nil:
		return string(data), nil
	case errors.Is(err, fs.ErrNotExist):
		return src, nil
	default:
		return "", fmt.Errorf("shaders: read %s: %w", name, err)
	}
}

// Names returns the names of all known shaders.
func Names() []string {
	return []string{Basic, SkyBox}
}
