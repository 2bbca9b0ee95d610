// Package parser parses TypeScript with tree-sitter and lowers the syntax tree into an ast.Program.
package parser

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/errors"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/arjunmahishi/reconstruct/ast"
	"github.com/arjunmahishi/reconstruct/lang"
	"github.com/arjunmahishi/reconstruct/types"
)

// Parser wraps a tree-sitter parser for a specific language.  A Parser is not safe for concurrent use.
type Parser struct {
	parser *sitter.Parser
	lang   lang.Language
}

// New creates a new Parser for the given language.
func New(language lang.Language) *Parser {
	p := sitter.NewParser()
	p.SetLanguage(language.TreeSitterLang())
	return &Parser{
		parser: p,
		lang:   language,
	}
}

// Language returns the language the parser was created for.
func (p *Parser) Language() lang.Language { return p.lang }

// Span is the byte range of a top-level statement in the source.
type Span struct {
	Start, End int
}

// File is a parsed source file.
type File struct {
	Program *ast.Program
	Source  []byte
	// Spans holds the source range of each of Program.Stmts, index for index.
	Spans []Span
}

// SyntaxError reports source the grammar could not parse.
type SyntaxError struct {
	Pos  types.Position
	Near string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d:%d near %s", e.Pos.Line, e.Pos.Column, strconv.Quote(e.Near))
}

// ParseTree parses source and returns the raw syntax tree.
func (p *Parser) ParseTree(ctx context.Context, source []byte) (*sitter.Tree, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, errors.Wrap(err, "parse")
	}
	return tree, nil
}

// Parse parses source and lowers it.  Source with syntax errors is rejected with a *SyntaxError.
func (p *Parser) Parse(ctx context.Context, source []byte) (*File, error) {
	tree, err := p.ParseTree(ctx, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, syntaxError(root, source)
	}

	l := &lowerer{src: source}
	prog, spans := l.program(root)
	return &File{Program: prog, Source: source, Spans: spans}, nil
}

// ParseFile reads and parses a file.
func (p *Parser) ParseFile(ctx context.Context, path string) (*File, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}
	file, err := p.Parse(ctx, source)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return file, nil
}

// syntaxError locates the first error or missing node under n.
func syntaxError(n *sitter.Node, source []byte) *SyntaxError {
	bad := firstError(n)
	if bad == nil {
		bad = n
	}
	start := bad.StartPoint()
	near := bad.Content(source)
	if len(near) > 40 {
		near = near[:40]
	}
	if bad.IsMissing() {
		near = "missing " + bad.Type()
	}
	return &SyntaxError{
		Pos:  types.Position{Line: int(start.Row) + 1, Column: int(start.Column) + 1},
		Near: near,
	}
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if bad := firstError(n.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}

// Query represents a compiled tree-sitter query.
type Query struct {
	query        *sitter.Query
	captureNames []string
}

// NewQuery compiles a tree-sitter query string.
func NewQuery(queryStr string, language lang.Language) (*Query, error) {
	q, err := sitter.NewQuery([]byte(queryStr), language.TreeSitterLang())
	if err != nil {
		return nil, errors.Wrap(err, "compile query")
	}

	captureCount := int(q.CaptureCount())
	captureNames := make([]string, captureCount)
	for i := 0; i < captureCount; i++ {
		captureNames[i] = q.CaptureNameForId(uint32(i))
	}

	return &Query{
		query:        q,
		captureNames: captureNames,
	}, nil
}

// Capture is a single captured node of a match.
type Capture struct {
	Name string
	Node *sitter.Node
}

// Run executes the query on a syntax tree and calls fn with the captures of each match, in order.
func (q *Query) Run(tree *sitter.Tree, fn func(captures []Capture)) {
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(q.query, tree.RootNode())

	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}

		captures := make([]Capture, 0, len(match.Captures))
		for _, capture := range match.Captures {
			node := capture.Node
			captures = append(captures, Capture{Name: q.captureName(capture.Index), Node: node})
		}
		fn(captures)
	}
}

func (q *Query) captureName(index uint32) string {
	if int(index) >= len(q.captureNames) {
		return fmt.Sprintf("capture_%d", index)
	}
	return q.captureNames[index]
}

// RangeOf converts a node's extent to 1-based positions.
func RangeOf(n *sitter.Node) types.Range {
	start := n.StartPoint()
	end := n.EndPoint()
	return types.Range{
		Start: types.Position{Line: int(start.Row) + 1, Column: int(start.Column) + 1},
		End:   types.Position{Line: int(end.Row) + 1, Column: int(end.Column) + 1},
	}
}
