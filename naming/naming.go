// Package naming derives class member names from fully qualified type names.
package naming

import (
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/arjunmahishi/reconstruct/ast"
)

// DefaultStripSuffixes are removed from a type's short name before it becomes a member name, so
// `LoggerImpl` is injected as `logger`.
var DefaultStripSuffixes = []string{"Implementation", "Impl", "Interface"}

// Config configures a Resolver.
type Config struct {
	// StripSuffixes are tried in order; the first one that matches is removed.  Nil means
	// DefaultStripSuffixes; an empty non-nil slice disables stripping.
	StripSuffixes []string
}

// Resolver derives member names.  It holds no state besides its configuration, so the same input always
// yields the same output.
type Resolver struct {
	stripSuffixes []string
}

// New creates a Resolver.
func New(cfg Config) *Resolver {
	suffixes := cfg.StripSuffixes
	if suffixes == nil {
		suffixes = DefaultStripSuffixes
	}
	return &Resolver{stripSuffixes: suffixes}
}

// ShortName returns the last segment of a qualified type name.  Namespace separators of the common
// ecosystems are understood: `App\Log\Logger`, `app/log.Logger`, `pkg::Logger`, `./log#Logger`.
func ShortName(typeName string) string {
	name := strings.TrimSpace(typeName)
	name = strings.TrimLeft(name, "*&")
	if i := strings.IndexByte(name, '<'); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndexAny(name, `\/.#:`); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// BaseName returns the preferred member name for a type, before collision handling.
func (r *Resolver) BaseName(typeName string) string {
	short := ShortName(typeName)
	for _, suffix := range r.stripSuffixes {
		if suffix != "" && len(short) > len(suffix) && strings.HasSuffix(short, suffix) {
			short = strings.TrimSuffix(short, suffix)
			break
		}
	}

	name := strcase.ToLowerCamel(short)
	if name == "" {
		name = "service"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "service" + name
	}
	if _, reserved := reservedWords[name]; reserved {
		name += "Service"
	}
	return name
}

// PropertyName returns the member name under which a dependency of typeName is injected into class.
//
// The base name is used unless the class already declares something unrelated under it; a property or
// parameter property of the same type is related and its name is reused.  Otherwise numeric suffixes
// are tried in order.
func (r *Resolver) PropertyName(class *ast.Class, typeName string) string {
	base := r.BaseName(typeName)
	short := ShortName(typeName)

	taken := takenNames(class)
	for i := 1; ; i++ {
		name := base
		if i > 1 {
			name = base + strconv.Itoa(i)
		}
		typ, used := taken[name]
		if !used || typ == short {
			return name
		}
	}
}

// unrelated marks a taken name that can never be reused for an injected dependency.
const unrelated = "\x00"

// takenNames maps every name that is in scope for a new member to the type it holds, or to unrelated.
func takenNames(class *ast.Class) map[string]string {
	taken := make(map[string]string)
	for _, member := range class.Members {
		switch m := member.(type) {
		case *ast.Property:
			if m.Type != "" {
				taken[m.Name] = ShortName(m.Type)
			} else {
				taken[m.Name] = unrelated
			}
		case *ast.Method:
			if !m.IsConstructor() {
				taken[m.Name] = unrelated
			}
		case *ast.RawMember:
			if m.Name != "" && m.Name != ast.ConstructorName {
				taken[m.Name] = unrelated
			}
		}
	}

	ctor := class.Constructor()
	if ctor == nil {
		return taken
	}
	for _, p := range ctor.Params {
		typ := unrelated
		if p.Type != "" && !p.Rest {
			typ = ShortName(p.Type)
		}
		if prev, ok := taken[p.Name]; ok && prev != typ {
			typ = unrelated
		}
		taken[p.Name] = typ
	}
	for _, stmt := range ctor.Body.Stmts {
		if decl, ok := stmt.(*ast.VarDecl); ok {
			taken[decl.Name] = unrelated
		}
	}
	return taken
}

var reservedWords = map[string]struct{}{
	"break": {}, "case": {}, "catch": {}, "class": {}, "const": {}, "continue": {}, "debugger": {},
	"default": {}, "delete": {}, "do": {}, "else": {}, "enum": {}, "export": {}, "extends": {},
	"false": {}, "finally": {}, "for": {}, "function": {}, "if": {}, "import": {}, "in": {},
	"instanceof": {}, "new": {}, "null": {}, "return": {}, "super": {}, "switch": {}, "this": {},
	"throw": {}, "true": {}, "try": {}, "typeof": {}, "var": {}, "void": {}, "while": {}, "with": {},
	"constructor": {},
}
