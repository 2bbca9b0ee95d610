package reconstructor

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/arjunmahishi/reconstruct/ast"
)

var keys = []string{"logger", "log", "mailer", "cache", "unknown", "broken"}

func keyGen() *rapid.Generator[string] { return rapid.SampledFrom(keys) }

// stmtGen draws one method statement, with or without a lookup.
func stmtGen() *rapid.Generator[ast.Stmt] {
	return rapid.Custom(func(t *rapid.T) ast.Stmt {
		switch rapid.IntRange(0, 6).Draw(t, "form") {
		case 0:
			return chained(locator(keyGen().Draw(t, "key")), "run")
		case 1:
			return assignStmt(&ast.Ident{Name: "x"}, locator(keyGen().Draw(t, "key")))
		case 2:
			return &ast.VarDecl{Keyword: "const", Name: "y", Value: locator(keyGen().Draw(t, "key"))}
		case 3:
			return &ast.Return{Result: &ast.Call{Fun: &ast.Member{X: locator(keyGen().Draw(t, "key")), Name: "value"}}}
		case 4:
			// Member assignment from a lookup, the usual constructor shape.
			target := rapid.SampledFrom([]string{"logger", "cache"}).Draw(t, "target")
			return assignStmt(ast.ThisMember(target), locator(keyGen().Draw(t, "key")))
		case 5:
			target := rapid.SampledFrom([]string{"logger", "cache"}).Draw(t, "target")
			return assignStmt(ast.ThisMember(target), &ast.RawExpr{Text: "null"})
		default:
			return &ast.RawStmt{Text: "tick();"}
		}
	})
}

// classGen draws a class with a mix of existing members, possibly colliding with the names the rule
// would pick, and an optional constructor.
func classGen() *rapid.Generator[*ast.Class] {
	return rapid.Custom(func(t *rapid.T) *ast.Class {
		class := &ast.Class{Name: "Subject"}
		used := map[string]bool{}

		props := rapid.SliceOfDistinct(rapid.SampledFrom([]string{"title", "logger", "cache", "mailer2"}),
			func(s string) string { return s }).Draw(t, "props")
		for _, name := range props {
			typ := rapid.SampledFrom([]string{"", "string", "LoggerImpl", "Cache"}).Draw(t, "propType")
			class.Members = append(class.Members, &ast.Property{Name: name, Type: typ})
			used[name] = true
		}

		switch rapid.IntRange(0, 2).Draw(t, "ctor") {
		case 1:
			ctor := &ast.Method{Name: ast.ConstructorName, Params: []*ast.Param{{Name: "id", Type: "string"}}, Body: &ast.Block{}}
			if rapid.Bool().Draw(t, "super") {
				ctor.Body.Stmts = append(ctor.Body.Stmts, &ast.ExprStmt{X: &ast.Call{Fun: &ast.Ident{Name: "super"}}})
			}
			if rapid.Bool().Draw(t, "optional") {
				ctor.Params = append(ctor.Params, &ast.Param{Name: "label", Type: "string", Optional: true})
			}
			ctor.Body.Stmts = append(ctor.Body.Stmts, rapid.SliceOfN(stmtGen(), 0, 2).Draw(t, "ctorBody")...)
			class.Members = append(class.Members, ctor)
		case 2:
			class.Members = append(class.Members, &ast.Method{Name: ast.ConstructorName})
		}

		methods := rapid.SliceOfDistinct(rapid.SampledFrom([]string{"run", "mailer", "handle", "log"}),
			func(s string) string { return s }).Draw(t, "methods")
		for _, name := range methods {
			if used[name] {
				continue
			}
			body := rapid.SliceOfN(stmtGen(), 0, 4).Draw(t, "body")
			class.Members = append(class.Members, &ast.Method{Name: name, Body: &ast.Block{Stmts: body}})
		}
		return class
	})
}

func TestReconstructIsIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		class := classGen().Draw(t, "class")

		require.NoError(t, NewNamedServices(newFakeBridge()).Reconstruct(class))
		once := ast.Clone(class)
		require.NoError(t, NewNamedServices(newFakeBridge()).Reconstruct(class))
		require.True(t, ast.Equal(once, class), ast.Diff(once, class))
	})
}

func TestReconstructKeepsMemberNamesUnique(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		class := classGen().Draw(t, "class")
		require.NoError(t, NewNamedServices(newFakeBridge()).Reconstruct(class))

		seen := map[string]bool{}
		for _, member := range class.Members {
			name := member.MemberName()
			if name == ast.ConstructorName {
				continue
			}
			require.False(t, seen[name], "duplicate member %q", name)
			seen[name] = true
		}
		if ctor := class.Constructor(); ctor != nil {
			params := map[string]bool{}
			for _, p := range ctor.Params {
				require.False(t, params[p.Name], "duplicate parameter %q", p.Name)
				params[p.Name] = true
			}
		}
	})
}

func TestReconstructKeepsInjectionConsistent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		class := classGen().Draw(t, "class")
		before := ast.Clone(class).(*ast.Class)
		rule := NewNamedServices(newFakeBridge())
		require.NoError(t, rule.Reconstruct(class))

		for _, prop := range class.Properties() {
			if before.Property(prop.Name) != nil {
				continue
			}
			ctor := class.Constructor()
			require.NotNil(t, ctor, "property %q added without a constructor", prop.Name)

			var param *ast.Param
			for _, p := range ctor.Params {
				if p.Name == prop.Name {
					param = p
				}
			}
			require.NotNil(t, param, "property %q has no constructor parameter", prop.Name)
			require.Equal(t, prop.Type, param.Type)

			assigns := 0
			for _, stmt := range ctor.Body.Stmts {
				if ast.Equal(stmt, assignStmt(ast.ThisMember(prop.Name), &ast.Ident{Name: prop.Name})) {
					assigns++
				}
			}
			require.GreaterOrEqual(t, assigns, 1, "property %q is never assigned", prop.Name)
		}

		// The last top-level write to an injected member in the constructor stores its parameter.
		for _, m := range rule.Migrations() {
			ctor := class.Constructor()
			if class.PropertyParam(m.Property) != nil {
				continue
			}
			var last ast.Stmt
			for _, stmt := range ctor.Body.Stmts {
				if es, ok := stmt.(*ast.ExprStmt); ok {
					if assign, ok := es.X.(*ast.Assign); ok && ast.Equal(assign.Left, ast.ThisMember(m.Property)) {
						last = stmt
					}
				}
			}
			require.True(t, ast.Equal(assignStmt(ast.ThisMember(m.Property), &ast.Ident{Name: m.Property}), last),
				"constructor does not end up storing %q", m.Property)
		}

		// Every rewritten site points at a declared member.
		ast.Inspect(class, func(n ast.Node) bool {
			if m, ok := n.(*ast.Member); ok {
				if _, isThis := m.X.(*ast.This); isThis && m.Name != "get" && before.Property(m.Name) == nil {
					require.True(t, class.Property(m.Name) != nil || class.PropertyParam(m.Name) != nil,
						"this.%s is not declared", m.Name)
				}
			}
			return true
		})
	})
}

func TestReconstructWithoutResolvableServicesIsNoop(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		class := classGen().Draw(t, "class")
		before := ast.Clone(class)

		bridge := newFakeBridge()
		bridge.types = nil
		require.NoError(t, NewNamedServices(bridge).Reconstruct(class))
		require.True(t, ast.Equal(before, class), ast.Diff(before, class))
	})
}
