// Package kernel boots the dependency container the rewrite consults.
//
// A kernel is booted once per run from a service manifest, shared read-only by every worker, and shut
// down when the run ends.
package kernel

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/arjunmahishi/reconstruct/container"
	"github.com/arjunmahishi/reconstruct/util/contract"
	"github.com/arjunmahishi/reconstruct/util/logging"
)

// DefaultEnvironment is used when Config.Environment is empty.
const DefaultEnvironment = "dev"

// Config configures Boot.
type Config struct {
	Environment string
	Debug       bool   // use debug-class where a service declares one.
	Manifest    string // path to a .toml, .yaml or .yml manifest.  Empty boots an empty container.
	CacheDir    string // if set, the resolved service map is written here and removed on Shutdown.
}

// DefaultConfig returns the configuration the tool runs with when nothing is set.
func DefaultConfig() Config {
	return Config{Environment: DefaultEnvironment, Debug: true}
}

// Instance is what the booted container hands out for a service.  Its only job is to report the class it
// was built from.
type Instance struct {
	Key   string
	Class container.TypeName
}

func (i *Instance) TypeName() container.TypeName { return i.Class }

// Kernel owns a booted container.
type Kernel struct {
	cfg       Config
	services  *container.Map
	classes   map[string]container.TypeName
	ownsCache bool

	mu       sync.Mutex
	shutdown bool
}

// Boot loads the manifest and builds the container.
func Boot(cfg Config) (*Kernel, error) {
	if cfg.Environment == "" {
		cfg.Environment = DefaultEnvironment
	}

	defs := map[string]ServiceDef{}
	if cfg.Manifest != "" {
		m, err := LoadManifest(cfg.Manifest)
		if err != nil {
			return nil, err
		}
		defs = m.Resolve(cfg.Environment)
	}
	if err := validate(defs); err != nil {
		return nil, errors.Wrapf(err, "booting %s container", cfg.Environment)
	}

	k := &Kernel{cfg: cfg, services: container.NewMap(), classes: map[string]container.TypeName{}}
	for _, key := range sortedKeys(defs) {
		def := defs[key]
		if !def.IsPublic() {
			continue
		}
		to, _ := target(defs, key)
		if def.Alias != "" && defs[to].IsPublic() {
			k.services.Alias(key, to)
			k.classes[key] = k.class(defs[to])
			continue
		}
		class := k.class(defs[to])
		k.classes[key] = class
		k.services.Provide(key, newFactory(key, class))
	}

	if cfg.CacheDir != "" {
		if err := k.writeCache(); err != nil {
			return nil, err
		}
	}

	logging.V(3).Infof("booted %s container (debug=%v) with %d services", cfg.Environment, cfg.Debug,
		len(k.classes))
	return k, nil
}

func (k *Kernel) class(def ServiceDef) container.TypeName {
	if k.cfg.Debug && def.DebugClass != "" {
		return container.TypeName(def.DebugClass)
	}
	return container.TypeName(def.Class)
}

func newFactory(key string, class container.TypeName) container.Factory {
	return func() (any, error) {
		return &Instance{Key: key, Class: class}, nil
	}
}

// Environment returns the environment the kernel was booted for.
func (k *Kernel) Environment() string { return k.cfg.Environment }

// Container returns the booted container.  It must not be used after Shutdown.
func (k *Kernel) Container() container.Container {
	k.mu.Lock()
	defer k.mu.Unlock()
	contract.Assertf(!k.shutdown, "kernel container used after shutdown")
	return k.services
}

// Keys returns every public service key, sorted.
func (k *Kernel) Keys() []string {
	return k.services.Keys()
}

// Shutdown releases the kernel.  It is safe to call more than once.
func (k *Kernel) Shutdown() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.shutdown {
		return nil
	}
	k.shutdown = true

	if k.ownsCache {
		if err := os.RemoveAll(k.cfg.CacheDir); err != nil {
			return errors.Wrapf(err, "removing cache dir %s", k.cfg.CacheDir)
		}
	}
	logging.V(3).Infof("shut down %s container", k.cfg.Environment)
	return nil
}

// cacheFile holds the resolved service map inside Config.CacheDir.
const cacheFile = "services.json"

func (k *Kernel) writeCache() error {
	if _, err := os.Stat(k.cfg.CacheDir); os.IsNotExist(err) {
		k.ownsCache = true
	}
	if err := os.MkdirAll(k.cfg.CacheDir, 0o755); err != nil {
		return errors.Wrapf(err, "creating cache dir %s", k.cfg.CacheDir)
	}

	data, err := json.MarshalIndent(k.classes, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding service cache")
	}
	path := filepath.Join(k.cfg.CacheDir, cacheFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}
