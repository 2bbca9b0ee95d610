package reconstruct

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// ConfigFileName is the run configuration file searched for by FindConfig.
const ConfigFileName = "reconstruct.toml"

// RunConfig represents a reconstruct.toml file.
type RunConfig struct {
	Container ContainerConfig `toml:"container"`
	Naming    NamingConfig    `toml:"naming"`
	Locator   LocatorConfig   `toml:"locator"`

	// Dir is the directory containing the file (set at load time).  Relative paths in the file are
	// relative to it.
	Dir string `toml:"-"`
}

// ContainerConfig configures the container boot.
type ContainerConfig struct {
	Manifest    string `toml:"manifest"`
	Environment string `toml:"environment"`
	Debug       *bool  `toml:"debug"`
	CacheDir    string `toml:"cache-dir"`
}

// NamingConfig configures member naming.
type NamingConfig struct {
	StripSuffixes []string `toml:"strip-suffixes"`
}

// LocatorConfig configures which calls are service lookups.
type LocatorConfig struct {
	Method string `toml:"method"`
}

// LoadConfig parses the run configuration at path.  Unknown keys are rejected.
func LoadConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read %s", path)
	}

	var c RunConfig
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, errors.Wrapf(err, "parse error in %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}

	c.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot resolve path %s", path)
	}
	return &c, nil
}

// FindConfig walks up from startDir to find a reconstruct.toml file, then loads it.  Returns nil if no
// file is found.
func FindConfig(startDir string) (*RunConfig, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return LoadConfig(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// path resolves p against the configuration's directory.
func (c *RunConfig) path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}
