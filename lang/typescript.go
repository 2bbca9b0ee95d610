package lang

import (
	_ "embed"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// The TSX grammar shares the TypeScript node types, so one query serves both.
//
//go:embed queries/typescript/locator.scm
var typescriptLocatorQuery string

// TypeScript implements the Language interface for TypeScript source code.
type TypeScript struct{}

// TSX implements the Language interface for TypeScript with JSX.
type TSX struct{}

func init() {
	Register(&TypeScript{})
	Register(&TSX{})
}

func (t *TypeScript) Name() string {
	return "typescript"
}

func (t *TypeScript) Extensions() []string {
	return []string{".ts", ".mts", ".cts"}
}

func (t *TypeScript) TreeSitterLang() *sitter.Language {
	return typescript.GetLanguage()
}

func (t *TypeScript) LocatorQuery() string {
	return typescriptLocatorQuery
}

func (t *TSX) Name() string {
	return "tsx"
}

func (t *TSX) Extensions() []string {
	return []string{".tsx"}
}

func (t *TSX) TreeSitterLang() *sitter.Language {
	return tsx.GetLanguage()
}

func (t *TSX) LocatorQuery() string {
	return typescriptLocatorQuery
}
