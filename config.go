package framevk

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Built in mesh and material names. Meshes named in Config.Meshes are loaded
// from OBJ files next to these.
const (
	MeshQuad     = "quad"
	MeshTriangle = "triangle"
	MeshLogo     = "logo"

	MaterialOpaque      = "opaque"
	MaterialPostProcess = "post_process"
)

type ObjectConfig struct {
	Mesh     string `toml:"mesh"`
	Material string `toml:"material"`
	//Axis x, y, z and an angle in degrees
	Rotate [4]float32 `toml:"rotate"`
}

// Config is the renderer configuration, usually read from a TOML file.
type Config struct {
	//Root for shaders, meshes and images, relative paths below resolve here
	AssetsDir  string            `toml:"assets_dir"`
	Width      uint32            `toml:"width"`
	Height     uint32            `toml:"height"`
	Validation bool              `toml:"validation"`
	Log        LogConfig         `toml:"log"`
	Meshes     map[string]string `toml:"meshes"`
	Objects    []ObjectConfig    `toml:"objects"`
	Logo       string            `toml:"logo"`
}

func DefaultConfig() Config {
	return Config{
		AssetsDir: "assets",
		Width:     1280,
		Height:    720,
		Log:       LogConfig{Level: "info"},
		Meshes:    map[string]string{MeshLogo: "meshes/logo.obj"},
		Objects: []ObjectConfig{
			{Mesh: MeshQuad, Material: MaterialPostProcess},
			{Mesh: MeshLogo, Material: MaterialOpaque, Rotate: [4]float32{1, 0, 0, 90}},
		},
		Logo: "images/logo.png",
	}
}

// LoadConfig reads path over the defaults. Keys missing from the file keep
// their default value, meshes are merged with the built in set.
func LoadConfig(path string) (Config, error) {
	defaults := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return defaults, errors.Wrap(err, "read config")
	}
	cfg := defaults
	cfg.Meshes = nil
	cfg.Objects = nil
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return defaults, errors.Wrapf(err, "parse config %s", path)
	}
	if cfg.Objects == nil {
		cfg.Objects = defaults.Objects
	}
	if cfg.Meshes == nil {
		cfg.Meshes = map[string]string{}
	}
	for name, path := range defaults.Meshes {
		if _, ok := cfg.Meshes[name]; !ok {
			cfg.Meshes[name] = path
		}
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	for i, obj := range c.Objects {
		switch obj.Mesh {
		case MeshQuad, MeshTriangle:
		default:
			if _, ok := c.Meshes[obj.Mesh]; !ok {
				return errors.Errorf("object %d: unknown mesh %q", i, obj.Mesh)
			}
		}
		switch obj.Material {
		case MaterialOpaque, MaterialPostProcess:
		default:
			return errors.Errorf("object %d: unknown material %q", i, obj.Material)
		}
	}
	return nil
}

//Resolves an asset path against AssetsDir unless it is absolute
func (c Config) Asset(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.AssetsDir, path)
}

func (c Config) Shader(name string) string {
	return c.Asset(filepath.Join("shaders", name+".spv"))
}
