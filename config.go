package imgresize

import (
	"errors"
	"fmt"
	"io/ioutil"
	"math"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultWidth and DefaultHeight define the absolute target used when
	// no resize mode is configured.
	DefaultWidth  = 6000
	DefaultHeight = 6000

	// DefaultSuffix is appended to the stem of every output file.
	DefaultSuffix = "_resized"

	// DefaultIntermediateExt defines the lossless format of the resized image.
	DefaultIntermediateExt = ".png"

	// DefaultFinalExt defines the format produced by the converter.
	DefaultFinalExt = ".jpg"

	// DefaultConvertCommand is the ImageMagick executable.
	DefaultConvertCommand = "convert"
)

// ErrResizeMode is returned when both or neither of absolute and scale
// resize modes are configured.
var ErrResizeMode = errors.New("exactly one of width/height or scale must be set")

// ResizeMode tells how the target size of an image is computed.
type ResizeMode int

// Resize modes.
const (
	ModeInvalid ResizeMode = iota
	ModeAbsolute
	ModeScale
)

func (m ResizeMode) String() string {
	switch m {
	case ModeAbsolute:
		return "absolute"
	case ModeScale:
		return "scale"
	}
	return "invalid"
}

// ResizeSpec holds either absolute target dimensions or a scale factor.
type ResizeSpec struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Scale  float64 `yaml:"scale"`
}

// Absolute returns ResizeSpec for fixed target dimensions.
func Absolute(width, height int) ResizeSpec {
	return ResizeSpec{Width: width, Height: height}
}

// Scaled returns ResizeSpec multiplying both source dimensions by factor.
func Scaled(factor float64) ResizeSpec {
	return ResizeSpec{Scale: factor}
}

// Mode returns the active resize mode, ModeInvalid if the spec is ambiguous.
func (rs ResizeSpec) Mode() ResizeMode {
	abs := rs.Width != 0 || rs.Height != 0
	switch {
	case abs && rs.Scale == 0:
		return ModeAbsolute
	case !abs && rs.Scale != 0:
		return ModeScale
	}
	return ModeInvalid
}

// Validate checks that exactly one mode is set and its values are positive.
func (rs ResizeSpec) Validate() error {
	switch rs.Mode() {
	case ModeAbsolute:
		if rs.Width <= 0 || rs.Height <= 0 {
			return fmt.Errorf("width and height must be positive, got %dx%d", rs.Width, rs.Height)
		}
	case ModeScale:
		if rs.Scale <= 0 || math.IsInf(rs.Scale, 0) || math.IsNaN(rs.Scale) {
			return fmt.Errorf("scale must be a positive number, got %v", rs.Scale)
		}
	default:
		return ErrResizeMode
	}
	return nil
}

// Target returns the dimensions an image of srcW x srcH is resized to.
// Absolute mode ignores the source aspect ratio. Scale mode floors both
// scaled dimensions.
func (rs ResizeSpec) Target(srcW, srcH int) (int, int) {
	if rs.Mode() == ModeScale {
		return int(math.Floor(float64(srcW) * rs.Scale)), int(math.Floor(float64(srcH) * rs.Scale))
	}
	return rs.Width, rs.Height
}

func (rs ResizeSpec) String() string {
	if rs.Mode() == ModeScale {
		return fmt.Sprintf("x%g", rs.Scale)
	}
	return fmt.Sprintf("%dx%d", rs.Width, rs.Height)
}

// Config holds pipeline settings. It is passed by value and never changed
// by the pipeline.
type Config struct {
	Resize          ResizeSpec    `yaml:"resize"`
	Suffix          string        `yaml:"suffix"`
	IntermediateExt string        `yaml:"intermediate_ext"`
	FinalExt        string        `yaml:"final_ext"`
	ConvertCommand  string        `yaml:"convert_command"`
	ConvertTimeout  time.Duration `yaml:"convert_timeout"`
	Workers         int           `yaml:"workers"`
	DownloadDir     string        `yaml:"download_dir"`
}

// DefaultConfig returns configuration with absolute 6000x6000 resize,
// png intermediate and jpg final artifacts.
func DefaultConfig() Config {
	return Config{
		Resize:          Absolute(DefaultWidth, DefaultHeight),
		Suffix:          DefaultSuffix,
		IntermediateExt: DefaultIntermediateExt,
		FinalExt:        DefaultFinalExt,
		ConvertCommand:  DefaultConvertCommand,
		Workers:         1,
		DownloadDir:     ".",
	}
}

// Validate checks configuration consistency.
func (c Config) Validate() error {
	if err := c.Resize.Validate(); err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	if !strings.HasPrefix(c.IntermediateExt, ".") || len(c.IntermediateExt) < 2 {
		return fmt.Errorf("intermediate_ext %q must start with a dot", c.IntermediateExt)
	}
	if !strings.HasPrefix(c.FinalExt, ".") || len(c.FinalExt) < 2 {
		return fmt.Errorf("final_ext %q must start with a dot", c.FinalExt)
	}
	if strings.EqualFold(c.IntermediateExt, c.FinalExt) {
		return errors.New("intermediate_ext and final_ext must differ")
	}
	// an empty suffix would let the intermediate overwrite its source.
	if c.Suffix == "" {
		return errors.New("suffix is required")
	}
	if c.ConvertCommand == "" {
		return errors.New("convert_command is required")
	}
	if c.ConvertTimeout < 0 {
		return errors.New("convert_timeout must not be negative")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// LoadConfig reads YAML configuration file. Fields absent in the file keep
// DefaultConfig values, a resize section replaces the default resize spec
// as a whole.
func LoadConfig(path string) (Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Resize = ResizeSpec{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Resize == (ResizeSpec{}) {
		cfg.Resize = Absolute(DefaultWidth, DefaultHeight)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
