package ast

import (
	"reflect"

	"github.com/golang/glog"

	"github.com/arjunmahishi/reconstruct/util/contract"
)

// Visitor is a pluggable interface invoked during walks of a tree.
type Visitor interface {
	// Visit visits the given node.  If it returns nil, the walk does not descend into the node's children.
	// Otherwise the returned visitor is used for the children.
	Visit(node Node) Visitor

	// After is invoked after the node's children have been visited.
	After(node Node)
}

// Walk visits a node and all of its children in depth-first order.  Children are read after Visit
// returns, so a visitor that rewrites a node in place sees its walk continue over the rewritten children.
func Walk(v Visitor, node Node) {
	contract.Requiref(node != nil, "node", "!= nil")

	if glog.V(9) {
		glog.V(9).Infof("ast walk: pre-visit %v", reflect.TypeOf(node))
	}

	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, stmt := range n.Stmts {
			Walk(v, stmt)
		}
	case *Class:
		for _, member := range n.Members {
			Walk(v, member)
		}
	case *Property:
		if n.Value != nil {
			Walk(v, n.Value)
		}
	case *Method:
		for _, param := range n.Params {
			Walk(v, param)
		}
		if n.Body != nil {
			Walk(v, n.Body)
		}
	case *Param:
		if n.Default != nil {
			Walk(v, n.Default)
		}
	case *Block:
		for _, stmt := range n.Stmts {
			Walk(v, stmt)
		}
	case *ExprStmt:
		Walk(v, n.X)
	case *VarDecl:
		if n.Value != nil {
			Walk(v, n.Value)
		}
	case *Return:
		if n.Result != nil {
			Walk(v, n.Result)
		}
	case *Member:
		Walk(v, n.X)
	case *Call:
		Walk(v, n.Fun)
		for _, arg := range n.Args {
			Walk(v, arg)
		}
	case *Assign:
		Walk(v, n.Left)
		Walk(v, n.Right)
	case *RawMember, *RawStmt, *RawExpr, *This, *Ident, *StringLit:
		// No children, nothing to do.
	default:
		contract.Failf("unrecognized node type in walk: %v", reflect.TypeOf(node))
	}

	v.After(node)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

func (f inspector) After(Node) {}

// Inspect walks the tree in depth-first order, calling f for each node.  Children are skipped when f
// returns false.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}
