package ast

// ExprStmt is an expression evaluated for its effect: `this.get("logger").info("x");`.
type ExprStmt struct {
	X Expr
}

var _ Stmt = (*ExprStmt)(nil)

func (*ExprStmt) Kind() NodeKind { return ExprStmtKind }
func (*ExprStmt) node()          {}
func (*ExprStmt) stmt()          {}

// VarDecl declares a single binding: `const logger: Logger = this.get("logger");`.
type VarDecl struct {
	Keyword string // "const", "let" or "var".
	Name    string
	Type    string
	Value   Expr // optional initializer.
}

var _ Stmt = (*VarDecl)(nil)

func (*VarDecl) Kind() NodeKind { return VarDeclKind }
func (*VarDecl) node()          {}
func (*VarDecl) stmt()          {}

// Return is a return statement with an optional result.
type Return struct {
	Result Expr
}

var _ Stmt = (*Return)(nil)

func (*Return) Kind() NodeKind { return ReturnKind }
func (*Return) node()          {}
func (*Return) stmt()          {}

// RawStmt is a statement kept verbatim.  Nested blocks (if, for, try, ...) are raw: locator lookups are
// only detected at the top level of a method body.
type RawStmt struct {
	Text string
}

var _ Stmt = (*RawStmt)(nil)

func (*RawStmt) Kind() NodeKind { return RawStmtKind }
func (*RawStmt) node()          {}
func (*RawStmt) stmt()          {}
