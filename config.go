package modelview

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/modelview/camera"
	"github.com/gogpu/modelview/gui"
	"github.com/gogpu/modelview/scene"
)

// DefaultAppName is the application name used for logs and labels.
const DefaultAppName = "ModelViewer"

// Config holds everything the viewer reads at startup.
type Config struct {
	AppName string `toml:"app_name" yaml:"app_name"`

	Width  uint32 `toml:"width" yaml:"width"`
	Height uint32 `toml:"height" yaml:"height"`
	VSync  bool   `toml:"vsync" yaml:"vsync"`

	// Mesh is a .bin geometry blob or a .obj file.
	Mesh string `toml:"mesh" yaml:"mesh"`

	// SkyBoxDir holds the six face images named by SkyBoxFaces.
	SkyBoxDir   string   `toml:"skybox_dir" yaml:"skybox_dir"`
	SkyBoxFaces []string `toml:"skybox_faces" yaml:"skybox_faces"`

	// ShaderDir overrides the embedded shaders when set.
	ShaderDir    string `toml:"shader_dir" yaml:"shader_dir"`
	WatchShaders bool   `toml:"watch_shaders" yaml:"watch_shaders"`

	Camera CameraConfig `toml:"camera" yaml:"camera"`

	SceneScale float32 `toml:"scene_scale" yaml:"scene_scale"`
}

// CameraConfig places and tunes the orbit camera.
type CameraConfig struct {
	Eye    []float32               `toml:"eye" yaml:"eye"`
	LookAt []float32               `toml:"look_at" yaml:"look_at"`
	Motion camera.MotionParameters `toml:"motion" yaml:"motion"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		AppName:     DefaultAppName,
		Width:       1280,
		Height:      720,
		VSync:       false,
		Mesh:        "castle.bin",
		SkyBoxDir:   "textures",
		SkyBoxFaces: append([]string(nil), scene.DefaultFaceFiles[:]...),
		Camera: CameraConfig{
			Eye:    []float32{0, 0, 10},
			LookAt: []float32{0, 0, 0},
			Motion: camera.DefaultMotionParameters(),
		},
		SceneScale: 1,
	}
}

// LoadConfig reads a TOML or YAML file, chosen by extension, over the
// defaults and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("modelview: read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
	default:
		return cfg, fmt.Errorf("%w: %s", ErrUnknownConfigFormat, path)
	}
	if err != nil {
		return cfg, fmt.Errorf("modelview: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects unusable settings and clamps the tunables into the
// ranges their sliders allow.
func (c *Config) Validate() error {
	var errs []error
	if c.Width == 0 || c.Height == 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Width, c.Height))
	}
	if c.Mesh == "" {
		errs = append(errs, errors.New("mesh path is empty"))
	}
	if len(c.SkyBoxFaces) != scene.SideCount {
		errs = append(errs, fmt.Errorf("skybox needs %d faces, got %d", scene.SideCount, len(c.SkyBoxFaces)))
	}
	if len(c.Camera.Eye) != 3 {
		errs = append(errs, fmt.Errorf("camera eye needs 3 components, got %d", len(c.Camera.Eye)))
	}
	if len(c.Camera.LookAt) != 3 {
		errs = append(errs, fmt.Errorf("camera look_at needs 3 components, got %d", len(c.Camera.LookAt)))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}

	if c.AppName == "" {
		c.AppName = DefaultAppName
	}
	m := &c.Camera.Motion
	for _, v := range []*float32{&m.Acceleration, &m.Braking, &m.MovementSpeed, &m.RotationSpeed} {
		*v = clamp(*v, gui.CameraMin, gui.CameraMax)
	}
	c.SceneScale = clamp(c.SceneScale, gui.ScaleMin, gui.ScaleMax)
	return nil
}

// FacePaths returns the skybox face files joined with SkyBoxDir.
func (c *Config) FacePaths() [scene.SideCount]string {
	var out [scene.SideCount]string
	for i := range out {
		if i < len(c.SkyBoxFaces) {
			out[i] = filepath.Join(c.SkyBoxDir, c.SkyBoxFaces[i])
		}
	}
	return out
}

func clamp(v, lo, hi float32) float32 {
	if math32.IsNaN(v) {
		return lo
	}
	return math32.Max(lo, math32.Min(hi, v))
}
