package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/arjunmahishi/reconstruct/ast"
)

// lowerer turns a tree-sitter tree into ast nodes.  Syntax the ast does not model becomes a Raw node
// holding the source text, re-based so continuation lines are relative to the node's first line.
type lowerer struct {
	src []byte
}

func (l *lowerer) text(n *sitter.Node) string {
	return n.Content(l.src)
}

// rawText returns the node's source with continuation lines dedented by the node's start column.
func (l *lowerer) rawText(n *sitter.Node) string {
	text := l.text(n)
	col := int(n.StartPoint().Column)
	if col == 0 || !strings.Contains(text, "\n") {
		return text
	}
	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = dedent(lines[i], col)
	}
	return strings.Join(lines, "\n")
}

// dedent removes up to n leading blanks.
func dedent(line string, n int) string {
	i := 0
	for i < n && i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return line[i:]
}

func (l *lowerer) program(root *sitter.Node) (*ast.Program, []Span) {
	prog := &ast.Program{}
	var spans []Span
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		prog.Stmts = append(prog.Stmts, l.topLevel(child))
		spans = append(spans, Span{Start: int(child.StartByte()), End: int(child.EndByte())})
	}
	return prog, spans
}

func (l *lowerer) topLevel(n *sitter.Node) ast.Stmt {
	if class := l.classStmt(n); class != nil {
		return class
	}
	return &ast.RawStmt{Text: l.rawText(n)}
}

// classStmt lowers class declarations, possibly wrapped in `export`, `export default` or `declare`.
// It returns nil for anything else.
func (l *lowerer) classStmt(n *sitter.Node) *ast.Class {
	switch n.Type() {
	case "class_declaration", "abstract_class_declaration", "class":
		return l.class(n)
	case "ambient_declaration":
		if n.NamedChildCount() != 1 {
			return nil
		}
		class := l.classStmt(n.NamedChild(0))
		if class != nil {
			class.Declare = true
		}
		return class
	case "export_statement":
		decl := n.ChildByFieldName("declaration")
		if decl == nil {
			// `export default class {}` can come out as a class expression.
			decl = n.ChildByFieldName("value")
		}
		if decl == nil {
			return nil
		}
		class := l.classStmt(decl)
		if class == nil {
			return nil
		}
		class.Exported = true
		var decorators []string
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			switch child.Type() {
			case "default":
				class.Default = true
			case "decorator":
				decorators = append(decorators, l.text(child))
			}
		}
		class.Decorators = append(decorators, class.Decorators...)
		return class
	}
	return nil
}

func (l *lowerer) class(n *sitter.Node) *ast.Class {
	class := &ast.Class{}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "decorator":
			class.Decorators = append(class.Decorators, l.text(child))
		case "abstract":
			class.Abstract = true
		case "class_heritage":
			class.Heritage = l.text(child)
		}
	}
	if name := n.ChildByFieldName("name"); name != nil {
		class.Name = l.text(name)
	}
	if tp := n.ChildByFieldName("type_parameters"); tp != nil {
		class.TypeParams = l.text(tp)
	}
	if body := n.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			class.Members = append(class.Members, l.member(body.NamedChild(i)))
		}
	}
	return class
}

func (l *lowerer) member(n *sitter.Node) ast.ClassMember {
	switch n.Type() {
	case "public_field_definition":
		if prop := l.property(n); prop != nil {
			return prop
		}
	case "method_definition", "method_signature", "abstract_method_signature":
		if method := l.method(n); method != nil {
			return method
		}
		return &ast.RawMember{Name: l.simpleName(n.ChildByFieldName("name")), Text: l.rawText(n)}
	}
	return &ast.RawMember{Text: l.rawText(n)}
}

// simpleName returns the text of a plain or #private member name, or "" for computed and quoted names.
func (l *lowerer) simpleName(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "property_identifier", "private_property_identifier", "identifier":
		return l.text(n)
	}
	return ""
}

func (l *lowerer) property(n *sitter.Node) *ast.Property {
	nameNode := n.ChildByFieldName("name")
	name := l.simpleName(nameNode)
	if name == "" {
		return nil
	}

	prop := &ast.Property{Name: name}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "decorator":
			prop.Decorators = append(prop.Decorators, l.text(child))
		case "accessibility_modifier", "override_modifier":
			prop.Modifiers = append(prop.Modifiers, l.text(child))
		case "static", "readonly", "declare", "abstract", "accessor":
			if !child.IsNamed() {
				prop.Modifiers = append(prop.Modifiers, child.Type())
			}
		case "?":
			prop.Optional = true
		case "!":
			prop.Definite = true
		}
	}
	if typ := n.ChildByFieldName("type"); typ != nil {
		prop.Type = annotation(l.text(typ))
	}
	if value := n.ChildByFieldName("value"); value != nil {
		prop.Value = l.expr(value)
	}
	return prop
}

func (l *lowerer) method(n *sitter.Node) *ast.Method {
	nameNode := n.ChildByFieldName("name")
	name := l.simpleName(nameNode)
	if name == "" {
		return nil
	}

	m := &ast.Method{Name: name}
	nameStart := nameNode.StartByte()
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		before := child.StartByte() < nameStart
		switch child.Type() {
		case "decorator":
			m.Decorators = append(m.Decorators, l.text(child))
		case "accessibility_modifier", "override_modifier":
			m.Modifiers = append(m.Modifiers, l.text(child))
		case "static", "readonly", "abstract":
			if before && !child.IsNamed() {
				m.Modifiers = append(m.Modifiers, child.Type())
			}
		case "async":
			m.Async = before
		case "get", "set":
			if before && !child.IsNamed() {
				m.Accessor = child.Type()
			}
		case "*":
			m.Generator = before
		case "?":
			if !before {
				m.Optional = true
			}
		}
	}
	if tp := n.ChildByFieldName("type_parameters"); tp != nil {
		m.TypeParams = l.text(tp)
	}
	if rt := n.ChildByFieldName("return_type"); rt != nil {
		m.ReturnType = annotation(l.text(rt))
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			param := l.param(params.NamedChild(i))
			if param == nil {
				// The whole method stays verbatim.
				return nil
			}
			m.Params = append(m.Params, param)
		}
	}
	if body := n.ChildByFieldName("body"); body != nil {
		m.Body = l.block(body)
	}
	return m
}

// param lowers a parameter.  Destructuring patterns keep their source text as the name.  It returns
// nil for parameters that cannot be represented, such as comments inside the list.
func (l *lowerer) param(n *sitter.Node) *ast.Param {
	switch n.Type() {
	case "required_parameter", "optional_parameter":
	default:
		return nil
	}

	p := &ast.Param{Optional: n.Type() == "optional_parameter"}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "decorator":
			p.Decorators = append(p.Decorators, l.text(child))
		case "accessibility_modifier", "override_modifier":
			p.Modifiers = append(p.Modifiers, l.text(child))
		case "readonly":
			if !child.IsNamed() {
				p.Modifiers = append(p.Modifiers, "readonly")
			}
		}
	}

	pattern := n.ChildByFieldName("pattern")
	if pattern == nil {
		return nil
	}
	if pattern.Type() == "rest_pattern" {
		p.Rest = true
		p.Name = strings.TrimSpace(strings.TrimPrefix(l.text(pattern), "..."))
	} else {
		p.Name = l.text(pattern)
	}
	if typ := n.ChildByFieldName("type"); typ != nil {
		p.Type = annotation(l.text(typ))
	}
	if value := n.ChildByFieldName("value"); value != nil {
		p.Default = l.expr(value)
	}
	return p
}

func (l *lowerer) block(n *sitter.Node) *ast.Block {
	b := &ast.Block{}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		b.Stmts = append(b.Stmts, l.stmt(n.NamedChild(i)))
	}
	return b
}

func (l *lowerer) stmt(n *sitter.Node) ast.Stmt {
	switch n.Type() {
	case "expression_statement":
		if n.NamedChildCount() == 1 {
			return &ast.ExprStmt{X: l.expr(n.NamedChild(0))}
		}
	case "lexical_declaration", "variable_declaration":
		if decl := l.varDecl(n); decl != nil {
			return decl
		}
	case "return_statement":
		switch n.NamedChildCount() {
		case 0:
			return &ast.Return{}
		case 1:
			return &ast.Return{Result: l.expr(n.NamedChild(0))}
		}
	}
	return &ast.RawStmt{Text: l.rawText(n)}
}

// varDecl lowers single-binding declarations such as `const x: T = v;`.
func (l *lowerer) varDecl(n *sitter.Node) *ast.VarDecl {
	if n.NamedChildCount() != 1 || n.ChildCount() == 0 {
		return nil
	}
	declarator := n.NamedChild(0)
	if declarator.Type() != "variable_declarator" {
		return nil
	}
	name := declarator.ChildByFieldName("name")
	if name == nil || name.Type() != "identifier" {
		return nil
	}

	decl := &ast.VarDecl{Keyword: n.Child(0).Type(), Name: l.text(name)}
	for i := 0; i < int(declarator.ChildCount()); i++ {
		if declarator.Child(i).Type() == "!" {
			return nil
		}
	}
	if typ := declarator.ChildByFieldName("type"); typ != nil {
		decl.Type = annotation(l.text(typ))
	}
	if value := declarator.ChildByFieldName("value"); value != nil {
		decl.Value = l.expr(value)
	}
	return decl
}

func (l *lowerer) expr(n *sitter.Node) ast.Expr {
	switch n.Type() {
	case "this":
		return &ast.This{}
	case "identifier", "super":
		return &ast.Ident{Name: l.text(n)}
	case "string":
		text := l.text(n)
		if value, ok := Unquote(text); ok {
			lit := &ast.StringLit{Value: value, Quote: text[0]}
			if strings.ContainsRune(text, '\\') {
				lit.Raw = text[1 : len(text)-1]
			}
			return lit
		}
	case "member_expression":
		object := n.ChildByFieldName("object")
		property := n.ChildByFieldName("property")
		if object != nil && property != nil && l.simpleName(property) != "" &&
			!strings.Contains(string(l.src[object.EndByte():property.StartByte()]), "?") {
			return &ast.Member{X: l.expr(object), Name: l.text(property)}
		}
	case "call_expression":
		if call := l.call(n); call != nil {
			return call
		}
	case "assignment_expression":
		left := n.ChildByFieldName("left")
		right := n.ChildByFieldName("right")
		if left != nil && right != nil {
			return &ast.Assign{Left: l.expr(left), Right: l.expr(right)}
		}
	}
	return &ast.RawExpr{Text: l.rawText(n)}
}

// call lowers plain calls.  Calls with type arguments, optional chaining or comments between the
// arguments stay raw.
func (l *lowerer) call(n *sitter.Node) *ast.Call {
	fun := n.ChildByFieldName("function")
	args := n.ChildByFieldName("arguments")
	if fun == nil || args == nil || args.Type() != "arguments" || n.ChildByFieldName("type_arguments") != nil {
		return nil
	}
	if strings.Contains(string(l.src[fun.EndByte():args.StartByte()]), "?") {
		return nil
	}

	call := &ast.Call{Fun: l.expr(fun)}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		if arg.Type() == "comment" {
			return nil
		}
		call.Args = append(call.Args, l.expr(arg))
	}
	return call
}

// annotation strips the leading colon of a type annotation.
func annotation(text string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), ":"))
}
