package builder

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/arjunmahishi/reconstruct/ast"
)

var (
	// ErrConstructorWithoutBody is returned when a class only declares constructor overload signatures.
	ErrConstructorWithoutBody = errors.New("builder: constructor has no body")

	// ErrAmbientClass is returned for `declare class` declarations, which cannot hold a constructor body.
	ErrAmbientClass = errors.New("builder: ambient class cannot take constructor code")

	// ErrOpaqueConstructor is returned when the constructor is only known as verbatim source.
	ErrOpaqueConstructor = errors.New("builder: constructor cannot be edited")
)

// ConstructorBuilder ensures a constructor accepts a dependency and stores it on the instance.
type ConstructorBuilder struct{}

// NewConstructorBuilder creates a ConstructorBuilder.
func NewConstructorBuilder() *ConstructorBuilder {
	return &ConstructorBuilder{}
}

// CanAddPropertyAssign reports whether AddPropertyAssign can succeed on class.  It never mutates.
func (b *ConstructorBuilder) CanAddPropertyAssign(class *ast.Class) error {
	if class.Declare {
		return errors.Wrapf(ErrAmbientClass, "class %s", class.Name)
	}
	for _, member := range class.Members {
		if raw, ok := member.(*ast.RawMember); ok && raw.Name == ast.ConstructorName {
			return errors.Wrapf(ErrOpaqueConstructor, "class %s", class.Name)
		}
	}
	if class.Constructor() == nil && len(class.Constructors()) > 0 {
		return errors.Wrapf(ErrConstructorWithoutBody, "class %s", class.Name)
	}
	return nil
}

// AddPropertyAssign makes the class constructor take `name: typ` and assign it to `this.name`.
//
// A constructor is created after the properties when the class has none; in a derived class it forwards
// its remaining arguments to `super`.  The parameter is appended,
// but kept ahead of trailing optional, default and rest parameters.  The assignment goes after the
// leading `super(...)` call and existing parameter assignments, and after any other top-level
// assignment to `this.name` so the parameter is what the member ends up holding.  The parameter and
// constructor steps are skipped when they already exist by name, the assignment when `this.name = name`
// is already the last write to the member.  On error the class is left untouched.
func (b *ConstructorBuilder) AddPropertyAssign(class *ast.Class, typ, name string) error {
	if err := b.CanAddPropertyAssign(class); err != nil {
		return err
	}

	ctor := class.Constructor()
	if ctor == nil {
		ctor = newConstructor(class)
		class.InsertMember(afterLastProperty(class), ctor)
	}

	param := findParam(ctor, name)
	if param == nil {
		param = &ast.Param{Name: name, Type: typ}
		insertParam(ctor, param)
	}

	if param.IsPropertyParam() || hasAssign(ctor.Body, name) {
		return nil
	}
	at := assignPrefixLen(ctor.Body)
	if last := lastAssign(ctor.Body, name); last >= at {
		at = last + 1
	}
	insertStmt(ctor.Body, at, propertyAssign(name))
	return nil
}

// forwardedArgs names the rest parameter a created constructor of a derived class hands to `super`.
const forwardedArgs = "args"

func newConstructor(class *ast.Class) *ast.Method {
	ctor := &ast.Method{Name: ast.ConstructorName, Body: &ast.Block{}}
	if !strings.HasPrefix(strings.TrimSpace(class.Heritage), "extends") {
		return ctor
	}
	ctor.Params = []*ast.Param{{Name: forwardedArgs, Type: "any[]", Rest: true}}
	ctor.Body.Stmts = []ast.Stmt{&ast.ExprStmt{X: &ast.Call{
		Fun:  &ast.Ident{Name: "super"},
		Args: []ast.Expr{&ast.RawExpr{Text: "..." + forwardedArgs}},
	}}}
	return ctor
}

func findParam(ctor *ast.Method, name string) *ast.Param {
	for _, p := range ctor.Params {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func insertParam(ctor *ast.Method, param *ast.Param) {
	at := len(ctor.Params)
	for at > 0 && ctor.Params[at-1].IsTrailing() {
		at--
	}
	ctor.Params = append(ctor.Params, nil)
	copy(ctor.Params[at+1:], ctor.Params[at:])
	ctor.Params[at] = param
}

// propertyAssign builds `this.name = name;`.
func propertyAssign(name string) ast.Stmt {
	return &ast.ExprStmt{X: &ast.Assign{
		Left:  ast.ThisMember(name),
		Right: &ast.Ident{Name: name},
	}}
}

// hasAssign reports whether the last top-level assignment to `this.name` in body is `this.name = name`.
func hasAssign(body *ast.Block, name string) bool {
	last := lastAssign(body, name)
	if last < 0 {
		return false
	}
	_, value, _ := memberAssign(body.Stmts[last])
	ident, ok := value.(*ast.Ident)
	return ok && ident.Name == name
}

// lastAssign returns the index of the last top-level assignment to `this.name`, or -1.
func lastAssign(body *ast.Block, name string) int {
	last := -1
	for i, stmt := range body.Stmts {
		if target, _, ok := memberAssign(stmt); ok && target == name {
			last = i
		}
	}
	return last
}

// assignPrefixLen returns the number of leading statements that are `super(...)` calls or
// `this.x = y` assignments from a plain identifier.
func assignPrefixLen(body *ast.Block) int {
	n := 0
	for _, stmt := range body.Stmts {
		if _, value, ok := memberAssign(stmt); ok {
			if _, isIdent := value.(*ast.Ident); isIdent {
				n++
				continue
			}
		}
		if isSuperCall(stmt) {
			n++
			continue
		}
		break
	}
	return n
}

// memberAssign matches `this.<target> = <value>;`.
func memberAssign(stmt ast.Stmt) (target string, value ast.Expr, ok bool) {
	es, isExpr := stmt.(*ast.ExprStmt)
	if !isExpr {
		return "", nil, false
	}
	assign, isAssign := es.X.(*ast.Assign)
	if !isAssign {
		return "", nil, false
	}
	member, isMember := assign.Left.(*ast.Member)
	if !isMember {
		return "", nil, false
	}
	if _, isThis := member.X.(*ast.This); !isThis {
		return "", nil, false
	}
	return member.Name, assign.Right, true
}

func isSuperCall(stmt ast.Stmt) bool {
	es, ok := stmt.(*ast.ExprStmt)
	if !ok {
		return false
	}
	call, ok := es.X.(*ast.Call)
	if !ok {
		return false
	}
	ident, ok := call.Fun.(*ast.Ident)
	return ok && ident.Name == "super"
}

func insertStmt(body *ast.Block, at int, stmt ast.Stmt) {
	body.Stmts = append(body.Stmts, nil)
	copy(body.Stmts[at+1:], body.Stmts[at:])
	body.Stmts[at] = stmt
}
