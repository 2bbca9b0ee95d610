// Package lang registers the languages reconstruct can rewrite.
package lang

import (
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
)

// Language defines the interface for a supported programming language.
type Language interface {
	// Name returns the language identifier (e.g., "typescript", "tsx").
	Name() string

	// Extensions returns file extensions for this language (e.g., [".ts"]).
	Extensions() []string

	// TreeSitterLang returns the tree-sitter language grammar.
	TreeSitterLang() *sitter.Language

	// LocatorQuery returns the tree-sitter query matching `this.<method>("key")` calls.
	LocatorQuery() string
}

// registry holds all registered languages.
var registry = make(map[string]Language)

// Register adds a language to the registry.
// This is typically called from init() functions in language implementation files.
func Register(lang Language) {
	registry[lang.Name()] = lang
}

// Get returns a language by name, or nil if not found.
func Get(name string) Language {
	return registry[name]
}

// List returns all registered language names, sorted.
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByExtension finds a language by file extension.
func ByExtension(ext string) Language {
	for _, lang := range registry {
		for _, e := range lang.Extensions() {
			if e == ext {
				return lang
			}
		}
	}
	return nil
}

// Extensions returns every extension handled by a registered language, sorted.
func Extensions() []string {
	var exts []string
	for _, lang := range registry {
		exts = append(exts, lang.Extensions()...)
	}
	sort.Strings(exts)
	return exts
}
