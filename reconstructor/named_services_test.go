package reconstructor

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjunmahishi/reconstruct/ast"
	"github.com/arjunmahishi/reconstruct/container"
	"github.com/arjunmahishi/reconstruct/naming"
	"github.com/arjunmahishi/reconstruct/types"
)

// fakeBridge resolves keys from a map.  Keys in broken are registered but fail to build.
type fakeBridge struct {
	types  map[string]container.TypeName
	broken map[string]bool
	calls  int
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{
		types: map[string]container.TypeName{
			"logger": `App\Logging\LoggerImpl`,
			"log":    `App\Logging\LoggerImpl`,
			"mailer": "app/mail.Mailer",
			"cache":  "Cache",
		},
		broken: map[string]bool{"broken": true},
	}
}

func (b *fakeBridge) HasService(key string) bool {
	_, ok := b.types[key]
	return ok || b.broken[key]
}

func (b *fakeBridge) ResolveType(key string) (container.TypeName, error) {
	b.calls++
	if b.broken[key] {
		return "", errors.Errorf("service %q failed to build", key)
	}
	typ, ok := b.types[key]
	if !ok {
		return "", container.MissingServiceError{Key: key}
	}
	return typ, nil
}

func locator(key string) *ast.Call {
	return &ast.Call{Fun: ast.ThisMember("get"), Args: []ast.Expr{&ast.StringLit{Value: key, Quote: '"'}}}
}

// chained builds `<recv>.<method>(...args);`.
func chained(recv ast.Expr, method string, args ...ast.Expr) *ast.ExprStmt {
	return &ast.ExprStmt{X: &ast.Call{Fun: &ast.Member{X: recv, Name: method}, Args: args}}
}

func str(s string) *ast.StringLit { return &ast.StringLit{Value: s, Quote: '"'} }

func assignStmt(left, right ast.Expr) *ast.ExprStmt {
	return &ast.ExprStmt{X: &ast.Assign{Left: left, Right: right}}
}

func requireEqualTree(t *testing.T, want, got ast.Node) {
	t.Helper()
	require.True(t, ast.Equal(want, got), ast.Diff(want, got))
}

func TestScenarioAChainedCall(t *testing.T) {
	class := &ast.Class{Name: "Controller", Members: []ast.ClassMember{
		&ast.Method{Name: "run", Body: &ast.Block{Stmts: []ast.Stmt{
			chained(locator("logger"), "info", str("x")),
		}}},
	}}

	rule := NewNamedServices(newFakeBridge())
	require.True(t, rule.IsCandidate(class))
	require.NoError(t, rule.Reconstruct(class))

	requireEqualTree(t, &ast.Class{Name: "Controller", Members: []ast.ClassMember{
		&ast.Property{Name: "logger", Type: "LoggerImpl", Modifiers: []string{"private"}},
		&ast.Method{
			Name:   ast.ConstructorName,
			Params: []*ast.Param{{Name: "logger", Type: "LoggerImpl"}},
			Body: &ast.Block{Stmts: []ast.Stmt{
				assignStmt(ast.ThisMember("logger"), &ast.Ident{Name: "logger"}),
			}},
		},
		&ast.Method{Name: "run", Body: &ast.Block{Stmts: []ast.Stmt{
			chained(ast.ThisMember("logger"), "info", str("x")),
		}}},
	}}, class)
	assert.Equal(t, Stats{Sites: 1, Migrated: 1}, rule.Stats())
	assert.Equal(t, 1, rule.Rewrites())
	assert.Equal(t, []types.Migration{{
		Class:    "Controller",
		Method:   "run",
		Key:      "logger",
		Property: "logger",
		Type:     `App\Logging\LoggerImpl`,
	}}, rule.Migrations())
}

func TestScenarioBUnknownServiceLeavesTreeAlone(t *testing.T) {
	class := &ast.Class{Name: "Controller", Members: []ast.ClassMember{
		&ast.Method{Name: "run", Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.VarDecl{Keyword: "const", Name: "svc", Value: locator("unknown")},
			assignStmt(&ast.Ident{Name: "other"}, locator("broken")),
		}}},
	}}
	before := ast.Clone(class)

	rule := NewNamedServices(newFakeBridge())
	require.NoError(t, rule.Reconstruct(class))

	requireEqualTree(t, before, class)
	assert.Equal(t, Stats{Sites: 2, Skipped: 2}, rule.Stats())
}

func TestScenarioCExistingConstructor(t *testing.T) {
	class := &ast.Class{Name: "Controller", Heritage: "extends Base", Members: []ast.ClassMember{
		&ast.Property{Name: "id", Type: "string", Modifiers: []string{"private"}},
		&ast.Method{
			Name: ast.ConstructorName,
			Params: []*ast.Param{
				{Name: "id", Type: "string"},
				{Name: "label", Type: "string", Optional: true},
			},
			Body: &ast.Block{Stmts: []ast.Stmt{
				&ast.ExprStmt{X: &ast.Call{Fun: &ast.Ident{Name: "super"}}},
				assignStmt(ast.ThisMember("id"), &ast.Ident{Name: "id"}),
				&ast.RawStmt{Text: "this.boot(label);"},
			}},
		},
		&ast.Method{Name: "send", Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.Return{Result: &ast.Call{Fun: &ast.Member{X: locator("mailer"), Name: "send"}}},
		}}},
	}}

	require.NoError(t, NewNamedServices(newFakeBridge()).Reconstruct(class))

	requireEqualTree(t, &ast.Class{Name: "Controller", Heritage: "extends Base", Members: []ast.ClassMember{
		&ast.Property{Name: "id", Type: "string", Modifiers: []string{"private"}},
		&ast.Property{Name: "mailer", Type: "Mailer", Modifiers: []string{"private"}},
		&ast.Method{
			Name: ast.ConstructorName,
			Params: []*ast.Param{
				{Name: "id", Type: "string"},
				{Name: "mailer", Type: "Mailer"},
				{Name: "label", Type: "string", Optional: true},
			},
			Body: &ast.Block{Stmts: []ast.Stmt{
				&ast.ExprStmt{X: &ast.Call{Fun: &ast.Ident{Name: "super"}}},
				assignStmt(ast.ThisMember("id"), &ast.Ident{Name: "id"}),
				assignStmt(ast.ThisMember("mailer"), &ast.Ident{Name: "mailer"}),
				&ast.RawStmt{Text: "this.boot(label);"},
			}},
		},
		&ast.Method{Name: "send", Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.Return{Result: &ast.Call{Fun: &ast.Member{X: ast.ThisMember("mailer"), Name: "send"}}},
		}}},
	}}, class)
}

func TestScenarioDSameKeyTwice(t *testing.T) {
	class := &ast.Class{Name: "Controller", Members: []ast.ClassMember{
		&ast.Method{Name: "a", Body: &ast.Block{Stmts: []ast.Stmt{
			chained(locator("logger"), "info", str("a")),
		}}},
		&ast.Method{Name: "b", Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.VarDecl{Keyword: "const", Name: "l", Value: locator("logger")},
			chained(locator("log"), "warn", str("b")),
		}}},
	}}

	require.NoError(t, NewNamedServices(newFakeBridge()).Reconstruct(class))

	require.Len(t, class.Properties(), 1)
	ctor := class.Constructor()
	require.Len(t, ctor.Params, 1)
	require.Len(t, ctor.Body.Stmts, 1)

	a := class.Members[2].(*ast.Method)
	b := class.Members[3].(*ast.Method)
	requireEqualTree(t, chained(ast.ThisMember("logger"), "info", str("a")), a.Body.Stmts[0])
	requireEqualTree(t, &ast.VarDecl{Keyword: "const", Name: "l", Value: ast.ThisMember("logger")}, b.Body.Stmts[0])
	requireEqualTree(t, chained(ast.ThisMember("logger"), "warn", str("b")), b.Body.Stmts[1])
}

func TestCollidingMemberGetsSuffix(t *testing.T) {
	class := &ast.Class{Name: "Controller", Members: []ast.ClassMember{
		&ast.Property{Name: "logger", Type: "string"},
		&ast.Method{Name: "run", Body: &ast.Block{Stmts: []ast.Stmt{
			assignStmt(&ast.Ident{Name: "l"}, locator("logger")),
		}}},
	}}

	require.NoError(t, NewNamedServices(newFakeBridge()).Reconstruct(class))

	require.NotNil(t, class.Property("logger2"))
	assert.Equal(t, "LoggerImpl", class.Property("logger2").Type)
	assert.Equal(t, "string", class.Property("logger").Type)
	run := class.Members[len(class.Members)-1].(*ast.Method)
	requireEqualTree(t, assignStmt(&ast.Ident{Name: "l"}, ast.ThisMember("logger2")), run.Body.Stmts[0])
}

func TestParameterPropertyIsReused(t *testing.T) {
	class := &ast.Class{Name: "Controller", Members: []ast.ClassMember{
		&ast.Method{Name: ast.ConstructorName, Body: &ast.Block{}, Params: []*ast.Param{
			{Name: "logger", Type: "LoggerImpl", Modifiers: []string{"private", "readonly"}},
		}},
		&ast.Method{Name: "run", Body: &ast.Block{Stmts: []ast.Stmt{
			chained(locator("logger"), "info"),
		}}},
	}}

	require.NoError(t, NewNamedServices(newFakeBridge()).Reconstruct(class))

	require.Len(t, class.Members, 2)
	assert.Empty(t, class.Constructor().Body.Stmts)
	requireEqualTree(t, chained(ast.ThisMember("logger"), "info"), class.Members[1].(*ast.Method).Body.Stmts[0])
}

func TestLookupInsideConstructor(t *testing.T) {
	class := &ast.Class{Name: "Controller", Members: []ast.ClassMember{
		&ast.Method{Name: ast.ConstructorName, Body: &ast.Block{Stmts: []ast.Stmt{
			chained(locator("logger"), "info", str("boot")),
			chained(locator("mailer"), "ping"),
		}}},
	}}

	require.NoError(t, NewNamedServices(newFakeBridge()).Reconstruct(class))

	requireEqualTree(t, &ast.Block{Stmts: []ast.Stmt{
		assignStmt(ast.ThisMember("logger"), &ast.Ident{Name: "logger"}),
		assignStmt(ast.ThisMember("mailer"), &ast.Ident{Name: "mailer"}),
		chained(ast.ThisMember("logger"), "info", str("boot")),
		chained(ast.ThisMember("mailer"), "ping"),
	}}, class.Constructor().Body)
}

func TestOverloadOnlyConstructorIsSkipped(t *testing.T) {
	class := &ast.Class{Name: "Controller", Members: []ast.ClassMember{
		&ast.Method{Name: ast.ConstructorName, Params: []*ast.Param{{Name: "a", Type: "string"}}},
		&ast.Method{Name: "run", Body: &ast.Block{Stmts: []ast.Stmt{
			chained(locator("logger"), "info"),
		}}},
	}}
	before := ast.Clone(class)

	rule := NewNamedServices(newFakeBridge())
	require.NoError(t, rule.Reconstruct(class))
	requireEqualTree(t, before, class)
	assert.Equal(t, Stats{Sites: 1, Skipped: 1}, rule.Stats())
}

func TestOnlyMatchingShapesAreRewritten(t *testing.T) {
	other := &ast.Call{Fun: &ast.Member{X: &ast.Ident{Name: "container"}, Name: "get"}, Args: []ast.Expr{str("logger")}}
	class := &ast.Class{Name: "Controller", Members: []ast.ClassMember{
		&ast.Method{Name: "run", Body: &ast.Block{Stmts: []ast.Stmt{
			// Receiver is not `this`.
			chained(other, "info"),
			// Key is not a string literal.
			chained(&ast.Call{Fun: ast.ThisMember("get"), Args: []ast.Expr{&ast.Ident{Name: "key"}}}, "info"),
			// Wrong number of arguments.
			chained(&ast.Call{Fun: ast.ThisMember("get"), Args: []ast.Expr{str("logger"), str("x")}}, "info"),
			// A bare lookup statement is neither form.
			&ast.ExprStmt{X: locator("logger")},
			// Nested statements are opaque.
			&ast.RawStmt{Text: `if (x) { this.get("logger").info(); }`},
		}}},
		&ast.Method{Name: "signature"},
	}}
	before := ast.Clone(class)

	rule := NewNamedServices(newFakeBridge())
	require.NoError(t, rule.Reconstruct(class))
	requireEqualTree(t, before, class)
	assert.Zero(t, rule.Stats().Sites)
}

func TestWithLookupName(t *testing.T) {
	class := &ast.Class{Name: "Controller", Members: []ast.ClassMember{
		&ast.Method{Name: "run", Body: &ast.Block{Stmts: []ast.Stmt{
			chained(&ast.Call{Fun: ast.ThisMember("service"), Args: []ast.Expr{str("cache")}}, "clear"),
			chained(locator("logger"), "info"),
		}}},
	}}

	rule := NewNamedServices(newFakeBridge(), WithLookupName("service"))
	require.NoError(t, rule.Reconstruct(class))
	assert.NotNil(t, class.Property("cache"))
	assert.Nil(t, class.Property("logger"))
}

func TestWithResolver(t *testing.T) {
	class := &ast.Class{Name: "Controller", Members: []ast.ClassMember{
		&ast.Method{Name: "run", Body: &ast.Block{Stmts: []ast.Stmt{
			chained(locator("logger"), "info"),
		}}},
	}}

	resolver := naming.New(naming.Config{StripSuffixes: []string{}})
	require.NoError(t, NewNamedServices(newFakeBridge(), WithResolver(resolver)).Reconstruct(class))
	assert.NotNil(t, class.Property("loggerImpl"))
}

func TestReconstructRejectsNonClass(t *testing.T) {
	rule := NewNamedServices(newFakeBridge())
	assert.False(t, rule.IsCandidate(&ast.Program{}))
	assert.Error(t, rule.Reconstruct(&ast.Program{}))
}

func TestConstructorLookupBecomesParameterAssign(t *testing.T) {
	class := &ast.Class{Name: "Controller", Members: []ast.ClassMember{
		&ast.Property{Name: "logger", Type: "LoggerImpl"},
		&ast.Method{Name: ast.ConstructorName, Body: &ast.Block{Stmts: []ast.Stmt{
			assignStmt(ast.ThisMember("logger"), locator("logger")),
		}}},
	}}

	rule := NewNamedServices(newFakeBridge())
	require.NoError(t, rule.Reconstruct(class))

	requireEqualTree(t, &ast.Class{Name: "Controller", Members: []ast.ClassMember{
		&ast.Property{Name: "logger", Type: "LoggerImpl"},
		&ast.Method{
			Name:   ast.ConstructorName,
			Params: []*ast.Param{{Name: "logger", Type: "LoggerImpl"}},
			Body: &ast.Block{Stmts: []ast.Stmt{
				assignStmt(ast.ThisMember("logger"), &ast.Ident{Name: "logger"}),
			}},
		},
	}}, class)
	assert.Equal(t, Stats{Sites: 1, Migrated: 1}, rule.Stats())
}

func TestConstructorOverwriteStillStoresParameter(t *testing.T) {
	class := &ast.Class{Name: "Controller", Members: []ast.ClassMember{
		&ast.Property{Name: "logger", Type: "LoggerImpl"},
		&ast.Method{Name: ast.ConstructorName, Body: &ast.Block{Stmts: []ast.Stmt{
			assignStmt(ast.ThisMember("logger"), &ast.RawExpr{Text: "null"}),
			assignStmt(ast.ThisMember("other"), ast.ThisMember("other")),
		}}},
		&ast.Method{Name: "run", Body: &ast.Block{Stmts: []ast.Stmt{
			chained(locator("logger"), "info", str("x")),
		}}},
	}}

	rule := NewNamedServices(newFakeBridge())
	require.NoError(t, rule.Reconstruct(class))

	ctor := class.Constructor()
	require.Equal(t, []*ast.Param{{Name: "logger", Type: "LoggerImpl"}}, ctor.Params)
	requireEqualTree(t, &ast.Block{Stmts: []ast.Stmt{
		assignStmt(ast.ThisMember("logger"), &ast.RawExpr{Text: "null"}),
		assignStmt(ast.ThisMember("logger"), &ast.Ident{Name: "logger"}),
		// Written by hand, so it stays.
		assignStmt(ast.ThisMember("other"), ast.ThisMember("other")),
	}}, ctor.Body)
}

func TestConstructorLookupReadsParameter(t *testing.T) {
	class := &ast.Class{Name: "Controller", Members: []ast.ClassMember{
		&ast.Method{Name: ast.ConstructorName, Body: &ast.Block{Stmts: []ast.Stmt{
			chained(locator("logger"), "info", str("boot")),
		}}},
	}}

	rule := NewNamedServices(newFakeBridge())
	require.NoError(t, rule.Reconstruct(class))

	requireEqualTree(t, &ast.Block{Stmts: []ast.Stmt{
		assignStmt(ast.ThisMember("logger"), &ast.Ident{Name: "logger"}),
		chained(&ast.Ident{Name: "logger"}, "info", str("boot")),
	}}, class.Constructor().Body)
	assert.Equal(t, "constructor", rule.Migrations()[0].Method)
}

func TestMethodSelfAssignIsDropped(t *testing.T) {
	class := &ast.Class{Name: "Controller", Members: []ast.ClassMember{
		&ast.Method{Name: "init", Body: &ast.Block{Stmts: []ast.Stmt{
			assignStmt(ast.ThisMember("logger"), locator("logger")),
			chained(ast.ThisMember("logger"), "info", str("ready")),
		}}},
	}}

	require.NoError(t, NewNamedServices(newFakeBridge()).Reconstruct(class))

	method := class.Members[len(class.Members)-1].(*ast.Method)
	require.Equal(t, "init", method.Name)
	requireEqualTree(t, &ast.Block{Stmts: []ast.Stmt{
		chained(ast.ThisMember("logger"), "info", str("ready")),
	}}, method.Body)
	requireEqualTree(t, &ast.Block{Stmts: []ast.Stmt{
		assignStmt(ast.ThisMember("logger"), &ast.Ident{Name: "logger"}),
	}}, class.Constructor().Body)
}
