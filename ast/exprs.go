package ast

// This is the implicit self reference.  The parser produces it for the `this` keyword, so matching a
// receiver never compares identifier text.
type This struct{}

var _ Expr = (*This)(nil)

func (*This) Kind() NodeKind { return ThisKind }
func (*This) node()          {}
func (*This) expr()          {}

// Ident is a plain identifier reference.
type Ident struct {
	Name string
}

var _ Expr = (*Ident)(nil)

func (*Ident) Kind() NodeKind { return IdentKind }
func (*Ident) node()          {}
func (*Ident) expr()          {}

// StringLit is a single- or double-quoted string literal.  Template strings are raw expressions.
type StringLit struct {
	Value string // the decoded value.
	Quote byte   // '"' or '\''; zero means '"'.
	Raw   string // source text between the quotes when it holds escapes; printed instead of Value.
}

var _ Expr = (*StringLit)(nil)

func (*StringLit) Kind() NodeKind { return StringLitKind }
func (*StringLit) node()          {}
func (*StringLit) expr()          {}

// Member is a non-computed property access: `X.Name`.
type Member struct {
	X    Expr
	Name string
}

var _ Expr = (*Member)(nil)

func (*Member) Kind() NodeKind { return MemberKind }
func (*Member) node()          {}
func (*Member) expr()          {}

// Call is a call expression without type arguments.
type Call struct {
	Fun  Expr
	Args []Expr
}

var _ Expr = (*Call)(nil)

func (*Call) Kind() NodeKind { return CallKind }
func (*Call) node()          {}
func (*Call) expr()          {}

// Assign is a plain `=` assignment.  Compound assignments are raw.
type Assign struct {
	Left  Expr
	Right Expr
}

var _ Expr = (*Assign)(nil)

func (*Assign) Kind() NodeKind { return AssignKind }
func (*Assign) node()          {}
func (*Assign) expr()          {}

// RawExpr is an expression kept verbatim.
type RawExpr struct {
	Text string
}

var _ Expr = (*RawExpr)(nil)

func (*RawExpr) Kind() NodeKind { return RawExprKind }
func (*RawExpr) node()          {}
func (*RawExpr) expr()          {}

// ThisMember builds `this.<name>`.
func ThisMember(name string) *Member {
	return &Member{X: &This{}, Name: name}
}
