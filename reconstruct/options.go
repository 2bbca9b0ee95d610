package reconstruct

// Options configures Process, Locate and Services.
type Options struct {
	// Path is the root directory to scan for files.
	// If empty, current directory is used.
	Path string

	// File is a single file to process.
	// If set, Path is ignored.
	File string

	// Config is the run configuration file.
	// If empty, reconstruct.toml is searched for upwards from Path (or File's directory).
	Config string

	// Manifest is the service manifest the container is booted from.
	// Overrides [container] manifest.
	Manifest string

	// Environment selects the manifest environment.
	// Defaults to "dev".
	Environment string

	// Debug boots the container with debug classes.
	// If nil, the configuration file decides; without one it defaults to true.
	Debug *bool

	// CacheDir is where the booted container writes its service map.
	CacheDir string

	// LookupName is the locator method, `this.<LookupName>("key")`.
	// Defaults to "get".
	LookupName string

	// StripSuffixes are removed from type names before they become member names.
	// If nil, the configuration file or the naming defaults apply.
	StripSuffixes []string

	// Language restricts processing to one language (e.g., "typescript").
	// If empty, every registered language is processed.
	Language string

	// DryRun computes the rewrite without writing files.
	DryRun bool

	// Diff includes a unified diff of each changed file in its result.
	Diff bool

	// Jobs is the number of parallel workers.
	// If 0, defaults to number of CPUs.
	Jobs int

	// MaxBytes skips files larger than this size.
	// If 0, defaults to 2 MiB.
	MaxBytes int64
}
