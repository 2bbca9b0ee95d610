package ast

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var equalOpts = []cmp.Option{cmpopts.EquateEmpty()}

// Equal reports whether two trees are structurally equal.  Nil and empty lists compare equal.
func Equal(a, b Node) bool {
	return cmp.Equal(a, b, equalOpts...)
}

// Diff returns a human-readable report of the differences between two trees, or "" if they are equal.
func Diff(a, b Node) string {
	return cmp.Diff(a, b, equalOpts...)
}

// Clone returns a deep copy of the tree rooted at node.
func Clone(node Node) Node {
	switch n := node.(type) {
	case nil:
		return nil
	case *Program:
		return &Program{Stmts: cloneStmts(n.Stmts)}
	case *Class:
		c := *n
		c.Decorators = cloneStrings(n.Decorators)
		if n.Members != nil {
			c.Members = make([]ClassMember, len(n.Members))
			for i, member := range n.Members {
				c.Members[i] = Clone(member).(ClassMember)
			}
		}
		return &c
	case *Property:
		p := *n
		p.Modifiers = cloneStrings(n.Modifiers)
		p.Decorators = cloneStrings(n.Decorators)
		p.Value = cloneExpr(n.Value)
		return &p
	case *Method:
		m := *n
		m.Modifiers = cloneStrings(n.Modifiers)
		m.Decorators = cloneStrings(n.Decorators)
		if n.Params != nil {
			m.Params = make([]*Param, len(n.Params))
			for i, param := range n.Params {
				m.Params[i] = Clone(param).(*Param)
			}
		}
		if n.Body != nil {
			m.Body = Clone(n.Body).(*Block)
		}
		return &m
	case *RawMember:
		r := *n
		return &r
	case *Param:
		p := *n
		p.Modifiers = cloneStrings(n.Modifiers)
		p.Decorators = cloneStrings(n.Decorators)
		p.Default = cloneExpr(n.Default)
		return &p
	case *Block:
		return &Block{Stmts: cloneStmts(n.Stmts)}
	case *ExprStmt:
		return &ExprStmt{X: cloneExpr(n.X)}
	case *VarDecl:
		d := *n
		d.Value = cloneExpr(n.Value)
		return &d
	case *Return:
		return &Return{Result: cloneExpr(n.Result)}
	case *RawStmt:
		r := *n
		return &r
	case *This:
		return &This{}
	case *Ident:
		i := *n
		return &i
	case *StringLit:
		s := *n
		return &s
	case *Member:
		return &Member{X: cloneExpr(n.X), Name: n.Name}
	case *Call:
		c := &Call{Fun: cloneExpr(n.Fun)}
		if n.Args != nil {
			c.Args = make([]Expr, len(n.Args))
			for i, arg := range n.Args {
				c.Args[i] = cloneExpr(arg)
			}
		}
		return c
	case *Assign:
		return &Assign{Left: cloneExpr(n.Left), Right: cloneExpr(n.Right)}
	case *RawExpr:
		r := *n
		return &r
	}
	return node
}

func cloneStmts(stmts []Stmt) []Stmt {
	if stmts == nil {
		return nil
	}
	out := make([]Stmt, len(stmts))
	for i, stmt := range stmts {
		if stmt != nil {
			out[i] = Clone(stmt).(Stmt)
		}
	}
	return out
}

func cloneExpr(expr Expr) Expr {
	if expr == nil {
		return nil
	}
	return Clone(expr).(Expr)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
