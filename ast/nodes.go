// Package ast contains the mutable syntax tree the reconstructor rewrites.
//
// The tree models the subset of TypeScript that service-locator migration needs to see: classes, their
// properties, methods and constructor parameters, and the top-level statements of method bodies.
// Everything else is kept as Raw* nodes holding verbatim source text, so a tree that is never touched
// prints back to equivalent code.
//
// Nodes are mutated in place.  The Program owns every node; no node holds a reference to its parent.
// Code that needs the enclosing class passes it down explicitly.
package ast

// NodeKind is a type discriminator, indicating what sort of kind a node instance represents.
type NodeKind string

// Node is a discriminated type for all tree nodes.
type Node interface {
	Kind() NodeKind
	node()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmt()
}

// Expr is an expression node.
type Expr interface {
	Node
	expr()
}

// ClassMember is a node that can appear directly inside a class body.
type ClassMember interface {
	Node
	classMember()
	// MemberName returns the declared name, or "" for members without one.
	MemberName() string
}

const (
	ProgramKind   NodeKind = "Program"
	ClassKind     NodeKind = "Class"
	PropertyKind  NodeKind = "Property"
	MethodKind    NodeKind = "Method"
	RawMemberKind NodeKind = "RawMember"
	ParamKind     NodeKind = "Param"
	BlockKind     NodeKind = "Block"
	ExprStmtKind  NodeKind = "ExprStmt"
	VarDeclKind   NodeKind = "VarDecl"
	ReturnKind    NodeKind = "Return"
	RawStmtKind   NodeKind = "RawStmt"
	ThisKind      NodeKind = "This"
	IdentKind     NodeKind = "Ident"
	StringLitKind NodeKind = "StringLit"
	MemberKind    NodeKind = "Member"
	CallKind      NodeKind = "Call"
	AssignKind    NodeKind = "Assign"
	RawExprKind   NodeKind = "RawExpr"
)

// ConstructorName is the method name that marks a class constructor.
const ConstructorName = "constructor"

// Program is the root of a parsed source file.
type Program struct {
	Stmts []Stmt
}

func (*Program) Kind() NodeKind { return ProgramKind }
func (*Program) node()          {}

// Block is a braced statement list, used for method bodies.
type Block struct {
	Stmts []Stmt
}

func (*Block) Kind() NodeKind { return BlockKind }
func (*Block) node()          {}
