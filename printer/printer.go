// Package printer renders ast nodes as TypeScript source.
//
// Output is canonical: two-space indentation, one member per line, a blank line around methods.
// Raw nodes are written verbatim, with continuation lines re-indented to the current level.
package printer

import (
	"bytes"
	"io"
	"strings"

	"github.com/arjunmahishi/reconstruct/ast"
	"github.com/arjunmahishi/reconstruct/util/contract"
)

// Print renders a whole program.
func Print(prog *ast.Program) []byte {
	e := &emitter{}
	e.program(prog)
	return e.buffer.Bytes()
}

// Fprint writes node to w.  Statements and class members are written at indent level 0.
func Fprint(w io.Writer, node ast.Node) error {
	e := &emitter{}
	e.node(node)
	_, err := w.Write(e.buffer.Bytes())
	return err
}

// String renders node.
func String(node ast.Node) string {
	e := &emitter{}
	e.node(node)
	return e.buffer.String()
}

type emitter struct {
	indentLevel int
	buffer      bytes.Buffer
}

func (e *emitter) indent() {
	e.indentLevel++
}

func (e *emitter) dedent() {
	if e.indentLevel > 0 {
		e.indentLevel--
	}
}

func (e *emitter) writeIndent() {
	for i := 0; i < e.indentLevel; i++ {
		e.buffer.WriteString("  ")
	}
}

func (e *emitter) write(s string) {
	e.buffer.WriteString(s)
}

// writeRaw writes verbatim text whose continuation lines are relative to its first line.
func (e *emitter) writeRaw(text string) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i > 0 {
			e.write("\n")
			if strings.TrimSpace(line) != "" {
				e.writeIndent()
			}
		}
		e.write(line)
	}
}

func (e *emitter) node(node ast.Node) {
	switch n := node.(type) {
	case *ast.Program:
		e.program(n)
	case ast.Stmt:
		e.stmt(n)
	case ast.ClassMember:
		e.member(n)
	case *ast.Param:
		e.param(n)
	case *ast.Block:
		e.block(n)
		e.write("\n")
	case ast.Expr:
		e.expr(n)
	default:
		contract.Failf("printer: unexpected node %T", node)
	}
}

func (e *emitter) program(prog *ast.Program) {
	for i, stmt := range prog.Stmts {
		if i > 0 {
			_, prevClass := prog.Stmts[i-1].(*ast.Class)
			_, isClass := stmt.(*ast.Class)
			if prevClass || isClass {
				e.write("\n")
			}
		}
		e.stmt(stmt)
	}
}

// stmt writes an indented statement followed by a newline.
func (e *emitter) stmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Class:
		e.class(s)
	case *ast.ExprStmt:
		e.writeIndent()
		e.expr(s.X)
		e.write(";\n")
	case *ast.VarDecl:
		e.writeIndent()
		e.write(s.Keyword + " " + s.Name)
		if s.Type != "" {
			e.write(": " + s.Type)
		}
		if s.Value != nil {
			e.write(" = ")
			e.expr(s.Value)
		}
		e.write(";\n")
	case *ast.Return:
		e.writeIndent()
		e.write("return")
		if s.Result != nil {
			e.write(" ")
			e.expr(s.Result)
		}
		e.write(";\n")
	case *ast.RawStmt:
		e.writeIndent()
		e.writeRaw(s.Text)
		e.write("\n")
	default:
		contract.Failf("printer: unexpected statement %T", stmt)
	}
}

func (e *emitter) class(c *ast.Class) {
	for _, dec := range c.Decorators {
		e.writeIndent()
		e.write(dec + "\n")
	}
	e.writeIndent()
	if c.Exported {
		e.write("export ")
	}
	if c.Default {
		e.write("default ")
	}
	if c.Declare {
		e.write("declare ")
	}
	if c.Abstract {
		e.write("abstract ")
	}
	e.write("class")
	if c.Name != "" {
		e.write(" " + c.Name)
	}
	e.write(c.TypeParams)
	if c.Heritage != "" {
		e.write(" " + c.Heritage)
	}
	if len(c.Members) == 0 {
		e.write(" {}\n")
		return
	}

	e.write(" {\n")
	e.indent()
	for i, member := range c.Members {
		if i > 0 && needsBlankLine(c.Members[i-1], member) {
			e.write("\n")
		}
		e.member(member)
	}
	e.dedent()
	e.writeIndent()
	e.write("}\n")
}

// needsBlankLine separates methods from their neighbours.  A comment stays attached to what follows.
func needsBlankLine(prev, cur ast.ClassMember) bool {
	if isComment(prev) {
		return false
	}
	_, prevMethod := prev.(*ast.Method)
	_, curMethod := cur.(*ast.Method)
	if prevMethod || curMethod {
		return true
	}
	return isComment(cur)
}

func isComment(m ast.ClassMember) bool {
	raw, ok := m.(*ast.RawMember)
	if !ok {
		return false
	}
	return strings.HasPrefix(raw.Text, "//") || strings.HasPrefix(raw.Text, "/*")
}

func (e *emitter) member(m ast.ClassMember) {
	switch m := m.(type) {
	case *ast.Property:
		e.writeIndent()
		for _, dec := range m.Decorators {
			e.write(dec + " ")
		}
		e.modifiers(m.Modifiers)
		e.write(m.Name)
		if m.Optional {
			e.write("?")
		}
		if m.Definite {
			e.write("!")
		}
		if m.Type != "" {
			e.write(": " + m.Type)
		}
		if m.Value != nil {
			e.write(" = ")
			e.expr(m.Value)
		}
		e.write(";\n")
	case *ast.Method:
		e.method(m)
	case *ast.RawMember:
		e.writeIndent()
		e.writeRaw(m.Text)
		e.write("\n")
	default:
		contract.Failf("printer: unexpected class member %T", m)
	}
}

func (e *emitter) modifiers(mods []string) {
	for _, mod := range mods {
		e.write(mod + " ")
	}
}

func (e *emitter) method(m *ast.Method) {
	for _, dec := range m.Decorators {
		e.writeIndent()
		e.write(dec + "\n")
	}
	e.writeIndent()
	e.modifiers(m.Modifiers)
	if m.Async {
		e.write("async ")
	}
	if m.Accessor != "" {
		e.write(m.Accessor + " ")
	}
	if m.Generator {
		e.write("*")
	}
	e.write(m.Name)
	if m.Optional {
		e.write("?")
	}
	e.write(m.TypeParams)
	e.write("(")
	for i, p := range m.Params {
		if i > 0 {
			e.write(", ")
		}
		e.param(p)
	}
	e.write(")")
	if m.ReturnType != "" {
		e.write(": " + m.ReturnType)
	}
	if m.Body == nil {
		e.write(";\n")
		return
	}
	e.write(" ")
	e.block(m.Body)
	e.write("\n")
}

func (e *emitter) param(p *ast.Param) {
	for _, dec := range p.Decorators {
		e.write(dec + " ")
	}
	e.modifiers(p.Modifiers)
	if p.Rest {
		e.write("...")
	}
	e.write(p.Name)
	if p.Optional {
		e.write("?")
	}
	if p.Type != "" {
		e.write(": " + p.Type)
	}
	if p.Default != nil {
		e.write(" = ")
		e.expr(p.Default)
	}
}

// block writes `{ ... }` starting at the current position, without a trailing newline.
func (e *emitter) block(b *ast.Block) {
	if len(b.Stmts) == 0 {
		e.write("{}")
		return
	}
	e.write("{\n")
	e.indent()
	for _, stmt := range b.Stmts {
		e.stmt(stmt)
	}
	e.dedent()
	e.writeIndent()
	e.write("}")
}

func (e *emitter) expr(x ast.Expr) {
	switch x := x.(type) {
	case *ast.This:
		e.write("this")
	case *ast.Ident:
		e.write(x.Name)
	case *ast.StringLit:
		quote := x.Quote
		if quote == 0 {
			quote = '"'
		}
		body := x.Raw
		if body == "" {
			body = escapeString(x.Value, quote)
		}
		e.write(string(quote) + body + string(quote))
	case *ast.Member:
		e.expr(x.X)
		e.write("." + x.Name)
	case *ast.Call:
		e.expr(x.Fun)
		e.write("(")
		for i, arg := range x.Args {
			if i > 0 {
				e.write(", ")
			}
			e.expr(arg)
		}
		e.write(")")
	case *ast.Assign:
		e.expr(x.Left)
		e.write(" = ")
		e.expr(x.Right)
	case *ast.RawExpr:
		e.writeRaw(x.Text)
	default:
		contract.Failf("printer: unexpected expression %T", x)
	}
}

// escapeString writes value as the body of a string literal delimited by quote.
func escapeString(value string, quote byte) string {
	if !strings.ContainsAny(value, "\\\n\r\t"+string(quote)) {
		return value
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == rune(quote):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
