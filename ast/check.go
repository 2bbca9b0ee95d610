package ast

import (
	"reflect"
	"strconv"
)

// MalformedError reports a node that violates the tree's own structural invariants.
type MalformedError struct {
	Kind   NodeKind
	Name   string
	Reason string
}

func (e *MalformedError) Error() string {
	msg := "ast: malformed " + string(e.Kind)
	if e.Name != "" {
		msg += " " + strconv.Quote(e.Name)
	}
	return msg + ": " + e.Reason
}

// Check verifies the structural invariants of the tree rooted at node: required children are present,
// declarations are named, and typed nil nodes do not appear in node slices.
func Check(node Node) error {
	if isNil(node) {
		return &MalformedError{Kind: "<nil>", Reason: "nil root"}
	}

	switch n := node.(type) {
	case *Program:
		for _, stmt := range n.Stmts {
			if isNil(stmt) {
				return &MalformedError{Kind: ProgramKind, Reason: "nil statement"}
			}
			if err := Check(stmt); err != nil {
				return err
			}
		}
	case *Class:
		if n.Name == "" && !n.Default {
			return &MalformedError{Kind: ClassKind, Reason: "missing name"}
		}
		for _, member := range n.Members {
			if isNil(member) {
				return &MalformedError{Kind: ClassKind, Name: n.Name, Reason: "nil member"}
			}
			if err := Check(member); err != nil {
				return err
			}
		}
	case *Property:
		if n.Name == "" {
			return &MalformedError{Kind: PropertyKind, Reason: "missing name"}
		}
		return checkOptional(PropertyKind, n.Value)
	case *Method:
		if n.Name == "" {
			return &MalformedError{Kind: MethodKind, Reason: "missing name"}
		}
		for _, param := range n.Params {
			if param == nil {
				return &MalformedError{Kind: MethodKind, Name: n.Name, Reason: "nil parameter"}
			}
			if err := Check(param); err != nil {
				return err
			}
		}
		if n.Body != nil {
			return Check(n.Body)
		}
	case *Param:
		if n.Name == "" {
			return &MalformedError{Kind: ParamKind, Reason: "missing name"}
		}
		return checkOptional(ParamKind, n.Default)
	case *Block:
		for _, stmt := range n.Stmts {
			if isNil(stmt) {
				return &MalformedError{Kind: BlockKind, Reason: "nil statement"}
			}
			if err := Check(stmt); err != nil {
				return err
			}
		}
	case *ExprStmt:
		return checkRequired(ExprStmtKind, "expression", n.X)
	case *VarDecl:
		if n.Name == "" {
			return &MalformedError{Kind: VarDeclKind, Reason: "missing name"}
		}
		return checkOptional(VarDeclKind, n.Value)
	case *Return:
		return checkOptional(ReturnKind, n.Result)
	case *Ident:
		if n.Name == "" {
			return &MalformedError{Kind: IdentKind, Reason: "missing name"}
		}
	case *Member:
		if n.Name == "" {
			return &MalformedError{Kind: MemberKind, Reason: "missing property name"}
		}
		return checkRequired(MemberKind, "object", n.X)
	case *Call:
		if err := checkRequired(CallKind, "callee", n.Fun); err != nil {
			return err
		}
		for _, arg := range n.Args {
			if err := checkRequired(CallKind, "argument", arg); err != nil {
				return err
			}
		}
	case *Assign:
		if err := checkRequired(AssignKind, "left operand", n.Left); err != nil {
			return err
		}
		return checkRequired(AssignKind, "right operand", n.Right)
	}
	return nil
}

func checkRequired(kind NodeKind, what string, child Node) error {
	if isNil(child) {
		return &MalformedError{Kind: kind, Reason: "missing " + what}
	}
	return Check(child)
}

func checkOptional(kind NodeKind, child Node) error {
	if child == nil {
		return nil
	}
	if isNil(child) {
		return &MalformedError{Kind: kind, Reason: "typed nil child"}
	}
	return Check(child)
}

// isNil catches both untyped nil interfaces and typed nil pointers stored in an interface.
func isNil(node Node) bool {
	if node == nil {
		return true
	}
	v := reflect.ValueOf(node)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
