package kernel

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Manifest declares the services of a container.
//
//	[services.logger]
//	class = 'App\Logging\LoggerImpl'
//	debug-class = 'App\Logging\DebugLogger'
//
//	[services.log]
//	alias = "logger"
//
//	[environments.test.services.logger]
//	class = 'App\Logging\NullLogger'
type Manifest struct {
	Services     map[string]ServiceDef     `toml:"services" yaml:"services"`
	Environments map[string]EnvironmentDef `toml:"environments" yaml:"environments"`

	// Path is the file the manifest was read from (set at load time).
	Path string `toml:"-" yaml:"-"`
}

// ServiceDef is a single service definition.  Exactly one of Class and Alias is set.
type ServiceDef struct {
	Class      string `toml:"class" yaml:"class"`
	Alias      string `toml:"alias" yaml:"alias"`
	Public     *bool  `toml:"public" yaml:"public"`
	DebugClass string `toml:"debug-class" yaml:"debug-class"`
}

// IsPublic reports whether the service can be fetched from the container.  Services are public unless
// marked otherwise.
func (d ServiceDef) IsPublic() bool {
	return d.Public == nil || *d.Public
}

// EnvironmentDef overrides service definitions for one environment.
type EnvironmentDef struct {
	Services map[string]ServiceDef `toml:"services" yaml:"services"`
}

// LoadManifest reads a TOML or YAML manifest; the format is chosen by file extension.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read manifest %s", path)
	}

	var m Manifest
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, errors.Wrapf(err, "parse error in %s", path)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, errors.Wrapf(err, "parse error in %s", path)
		}
	default:
		return nil, errors.Errorf("manifest %s: unsupported format %q (want .toml, .yaml or .yml)", path, ext)
	}
	m.Path = path
	return &m, nil
}

// Resolve returns the service definitions in effect for env, with that environment's overrides merged
// field by field over the base definitions.
func (m *Manifest) Resolve(env string) map[string]ServiceDef {
	defs := make(map[string]ServiceDef, len(m.Services))
	for key, def := range m.Services {
		defs[key] = def
	}

	for key, override := range m.Environments[env].Services {
		def := defs[key]
		if override.Class != "" {
			def.Class, def.Alias = override.Class, ""
		}
		if override.Alias != "" {
			def.Alias, def.Class = override.Alias, ""
		}
		if override.Public != nil {
			def.Public = override.Public
		}
		if override.DebugClass != "" {
			def.DebugClass = override.DebugClass
		}
		defs[key] = def
	}
	return defs
}

// validate checks that every definition is usable and every alias chain ends at a class.
func validate(defs map[string]ServiceDef) error {
	for _, key := range sortedKeys(defs) {
		def := defs[key]
		switch {
		case def.Class == "" && def.Alias == "":
			return errors.Errorf("service %q: neither class nor alias set", key)
		case def.Class != "" && def.Alias != "":
			return errors.Errorf("service %q: both class and alias set", key)
		}
		if _, err := target(defs, key); err != nil {
			return err
		}
	}
	return nil
}

// target follows aliases from key to the service that defines a class.
func target(defs map[string]ServiceDef, key string) (string, error) {
	seen := map[string]bool{}
	for {
		def, ok := defs[key]
		if !ok {
			return "", errors.Errorf("alias to unknown service %q", key)
		}
		if def.Alias == "" {
			return key, nil
		}
		if seen[key] {
			return "", errors.Errorf("alias cycle through service %q", key)
		}
		seen[key] = true
		key = def.Alias
	}
}

func sortedKeys(defs map[string]ServiceDef) []string {
	keys := make([]string, 0, len(defs))
	for key := range defs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
