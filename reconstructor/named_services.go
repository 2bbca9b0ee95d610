// Package reconstructor holds the rule that replaces service-locator lookups with constructor injection.
//
// Inside each method of a class, lookups such as
//
//	this.get("logger").info("x");
//	const mailer = this.get("mailer");
//
// are resolved against the live container.  A resolved service becomes a typed property that the
// constructor receives and assigns, and the lookup is replaced by `this.logger` (by the parameter
// itself inside the constructor).  Lookups that cannot
// be resolved are left exactly as they are.
package reconstructor

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/arjunmahishi/reconstruct/ast"
	"github.com/arjunmahishi/reconstruct/builder"
	"github.com/arjunmahishi/reconstruct/container"
	"github.com/arjunmahishi/reconstruct/dispatcher"
	"github.com/arjunmahishi/reconstruct/naming"
	"github.com/arjunmahishi/reconstruct/types"
	"github.com/arjunmahishi/reconstruct/util/logging"
)

// RuleName identifies the rule in reports.
const RuleName = "named-services-to-constructor"

// DefaultLookupName is the locator method looked for on `this`.
const DefaultLookupName = "get"

// Bridge is the container query surface the rule needs.
type Bridge interface {
	HasService(key string) bool
	ResolveType(key string) (container.TypeName, error)
}

// Stats counts what the rule has seen since it was created.
type Stats struct {
	Sites    int // locator calls found.
	Migrated int // locator calls replaced.
	Skipped  int // locator calls left alone.
}

// Option configures NamedServices.
type Option func(*NamedServices)

// WithLookupName sets the locator method name; `this.<name>("key")` is what gets rewritten.
func WithLookupName(name string) Option {
	return func(r *NamedServices) { r.lookup = name }
}

// WithResolver sets the name resolver used for new members.
func WithResolver(names *naming.Resolver) Option {
	return func(r *NamedServices) { r.names = names }
}

// NamedServices is the service-locator rule.  A value is not safe for concurrent use; give every worker
// its own.
type NamedServices struct {
	bridge Bridge
	lookup string
	names  *naming.Resolver
	props  *builder.PropertyBuilder
	ctors  *builder.ConstructorBuilder
	stats  Stats
	done   []types.Migration
}

var (
	_ dispatcher.Rule    = (*NamedServices)(nil)
	_ dispatcher.Counter = (*NamedServices)(nil)
)

// NewNamedServices creates the rule over bridge.
func NewNamedServices(bridge Bridge, opts ...Option) *NamedServices {
	r := &NamedServices{
		bridge: bridge,
		lookup: DefaultLookupName,
		names:  naming.New(naming.Config{}),
		props:  builder.NewPropertyBuilder(),
		ctors:  builder.NewConstructorBuilder(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *NamedServices) Name() string { return RuleName }

// Stats returns the counters accumulated so far.
func (r *NamedServices) Stats() Stats { return r.stats }

// Migrations returns the lookups replaced so far, in the order they were replaced.
func (r *NamedServices) Migrations() []types.Migration { return r.done }

// Rewrites returns the number of lookups replaced so far.
func (r *NamedServices) Rewrites() int { return r.stats.Migrated }

// IsCandidate reports whether node may contain lookups to rewrite.
func (r *NamedServices) IsCandidate(node ast.Node) bool {
	return isCandidateClass(node)
}

// isCandidateClass accepts every class declaration.  Narrowing candidacy (to particular base classes,
// say) only needs to change this predicate.
func isCandidateClass(node ast.Node) bool {
	_, ok := node.(*ast.Class)
	return ok
}

// Reconstruct rewrites the lookups found in the top-level statements of the class's methods.
func (r *NamedServices) Reconstruct(node ast.Node) error {
	class, ok := node.(*ast.Class)
	if !ok {
		return errors.Errorf("expected a class, got %s", node.Kind())
	}

	for _, method := range class.Methods() {
		if method.Body == nil {
			continue
		}
		// The constructor body can grow while it is scanned.
		stmts := append([]ast.Stmt(nil), method.Body.Stmts...)
		var noops map[ast.Stmt]bool
		for _, stmt := range stmts {
			wasNoop := isSelfAssign(stmt)
			for _, slot := range lookupSlots(stmt) {
				key, ok := r.locatorKey(*slot)
				if !ok {
					continue
				}
				r.stats.Sites++
				if err := r.migrate(class, method, slot, key); err != nil {
					return err
				}
			}
			if !wasNoop && isSelfAssign(stmt) {
				if noops == nil {
					noops = make(map[ast.Stmt]bool)
				}
				noops[stmt] = true
			}
		}
		dropStmts(method.Body, noops)
	}
	return nil
}

// isSelfAssign matches `this.x = this.x;`, which is what `this.x = this.get("k")` outside the
// constructor turns into once the lookup is replaced by the member it is assigned to.
func isSelfAssign(stmt ast.Stmt) bool {
	es, ok := stmt.(*ast.ExprStmt)
	if !ok {
		return false
	}
	assign, ok := es.X.(*ast.Assign)
	if !ok {
		return false
	}
	left, ok := assign.Left.(*ast.Member)
	if !ok {
		return false
	}
	right, ok := assign.Right.(*ast.Member)
	if !ok || left.Name != right.Name {
		return false
	}
	_, leftThis := left.X.(*ast.This)
	_, rightThis := right.X.(*ast.This)
	return leftThis && rightThis
}

func dropStmts(body *ast.Block, drop map[ast.Stmt]bool) {
	if len(drop) == 0 {
		return
	}
	kept := body.Stmts[:0]
	for _, stmt := range body.Stmts {
		if !drop[stmt] {
			kept = append(kept, stmt)
		}
	}
	body.Stmts = kept
}

// migrate rewrites a single lookup.  Every check that can fail runs before the class is touched.
func (r *NamedServices) migrate(class *ast.Class, method *ast.Method, slot *ast.Expr, key string) error {
	if !r.bridge.HasService(key) {
		r.skip(class, method, key, "service not registered")
		return nil
	}
	typ, err := r.bridge.ResolveType(key)
	if err != nil {
		r.skip(class, method, key, err.Error())
		return nil
	}
	short := typ.Short()
	if short == "" {
		r.skip(class, method, key, "empty type name "+typ.String())
		return nil
	}
	if err := r.ctors.CanAddPropertyAssign(class); err != nil {
		glog.Warningf("%s.%s: cannot inject %q: %v", className(class), method.Name, key, err)
		r.stats.Skipped++
		return nil
	}

	name := r.names.PropertyName(class, string(typ))
	// Inside the constructor the lookup reads the parameter, so `this.x = this.get("k")` is already
	// the assignment AddPropertyAssign looks for.
	lookup := *slot
	if method.IsConstructor() {
		*slot = &ast.Ident{Name: name}
	}
	if err := r.ctors.AddPropertyAssign(class, short, name); err != nil {
		*slot = lookup
		return errors.Wrapf(err, "injecting %q into %s", key, className(class))
	}
	r.props.AddProperty(class, short, name)
	if !method.IsConstructor() {
		*slot = ast.ThisMember(name)
	}

	r.stats.Migrated++
	r.done = append(r.done, types.Migration{
		Class:    className(class),
		Method:   method.Name,
		Key:      key,
		Property: name,
		Type:     string(typ),
	})
	logging.V(5).Infof("%s.%s: this.%s(%q) -> this.%s: %s",
		className(class), method.Name, r.lookup, key, name, short)
	return nil
}

func (r *NamedServices) skip(class *ast.Class, method *ast.Method, key, reason string) {
	r.stats.Skipped++
	logging.V(7).Infof("%s.%s: leaving this.%s(%q): %s", className(class), method.Name, r.lookup, key, reason)
}

// locatorKey matches `this.<lookup>("key")` and returns the key.
func (r *NamedServices) locatorKey(expr ast.Expr) (string, bool) {
	call, ok := expr.(*ast.Call)
	if !ok || len(call.Args) != 1 {
		return "", false
	}
	fun, ok := call.Fun.(*ast.Member)
	if !ok || fun.Name != r.lookup {
		return "", false
	}
	if _, isThis := fun.X.(*ast.This); !isThis {
		return "", false
	}
	lit, ok := call.Args[0].(*ast.StringLit)
	if !ok {
		return "", false
	}
	return lit.Value, true
}

// lookupSlots returns the expression slots of a statement that may hold a lookup:
//
//	this.get("k").m();           receiver of a chained call
//	x = this.get("k").m();       receiver of a chained call on the right of an assignment
//	return this.get("k").m();    receiver of a returned chained call
//	const x = this.get("k").m(); receiver of a chained call in an initializer
//	x = this.get("k");           right side of an assignment
//	const x = this.get("k");     initializer
func lookupSlots(stmt ast.Stmt) []*ast.Expr {
	var slots []*ast.Expr
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		if assign, ok := s.X.(*ast.Assign); ok {
			slots = append(slots, &assign.Right)
			slots = appendReceiver(slots, assign.Right)
		} else {
			slots = appendReceiver(slots, s.X)
		}
	case *ast.Return:
		slots = appendReceiver(slots, s.Result)
	case *ast.VarDecl:
		slots = append(slots, &s.Value)
		slots = appendReceiver(slots, s.Value)
	}
	return slots
}

// appendReceiver adds the receiver slot of a chained call `<recv>.m(...)`.
func appendReceiver(slots []*ast.Expr, expr ast.Expr) []*ast.Expr {
	call, ok := expr.(*ast.Call)
	if !ok {
		return slots
	}
	fun, ok := call.Fun.(*ast.Member)
	if !ok {
		return slots
	}
	return append(slots, &fun.X)
}

func className(class *ast.Class) string {
	if class.Name == "" {
		return "<default>"
	}
	return class.Name
}
