package meshvk

import (
	"os"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
	"gopkg.in/yaml.v3"
)

// Config describes one meshview session. Zero fields fall back to DefaultConfig.
type Config struct {
	Title          string   `yaml:"title"`
	Width          int      `yaml:"width"`
	Height         int      `yaml:"height"`
	Resizable      *bool    `yaml:"resizable"`
	Validation     bool     `yaml:"validation"`
	Layers         []string `yaml:"layers"`
	VertexShader   string   `yaml:"vertex_shader"`
	FragmentShader string   `yaml:"fragment_shader"`
	Model          string   `yaml:"model"`
	Texture        string   `yaml:"texture"`
	MaxTextureSize int      `yaml:"max_texture_size"`
	LogFile        string   `yaml:"log_file"`
}

var (
	DefaultVulkanAppVersion = vk.MakeVersion(1, 0, 0)
	DefaultVulkanAPIVersion = vk.MakeVersion(1, 0, 0)
)

const engineName = "meshvk"

func DefaultConfig() Config {
	resizable := true
	return Config{
		Title:          "meshview",
		Width:          800,
		Height:         640,
		Resizable:      &resizable,
		Layers:         []string{"VK_LAYER_KHRONOS_validation"},
		VertexShader:   "shaders/vert.spv",
		FragmentShader: "shaders/frag.spv",
		Model:          "models/viking_room.obj",
		Texture:        "textures/viking_room.png",
	}
}

// IsResizable reports whether the window may be resized, defaulting to true.
func (c Config) IsResizable() bool {
	return c.Resizable == nil || *c.Resizable
}

// LoadConfig reads a YAML file on top of DefaultConfig. An empty path yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "parse config")
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Errorf("invalid window size %dx%d", c.Width, c.Height)
	}
	if c.MaxTextureSize < 0 {
		return errors.Errorf("invalid max_texture_size %d", c.MaxTextureSize)
	}
	if c.VertexShader == "" || c.FragmentShader == "" {
		return errors.New("shader paths must be set")
	}
	return nil
}
